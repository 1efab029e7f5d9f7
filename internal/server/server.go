package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// Server serves the table API and the WebSocket game protocol.
type Server struct {
	config      *ServerConfig
	registry    *TableRegistry
	router      *gin.Engine
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewServer creates a server for the registry's tables. The connection
// lifecycle loop starts immediately and stops with Stop.
func NewServer(config *ServerConfig, registry *TableRegistry, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:   config,
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
	}
	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || s.allowOrigin(origin)
	}
	s.router = s.routes()

	go s.run()
	return s
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", srv.Addr, "tables", len(s.registry.tables))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Stop()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Stop()
	return err
}

// Stop closes every connection and cancels pending table timers.
func (s *Server) Stop() {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	s.registry.Close()
}

// ConnectionCount returns the number of open WebSocket connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(cors.New(cors.Config{
		AllowOriginFunc:  s.allowOrigin,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "Accept", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}))

	r.GET("/health", s.handleHealth)
	r.GET("/api/tables", s.handleListTables)
	r.GET("/api/tables/:id", s.handleGetTable)
	r.GET("/ws", s.handleWebSocket)
	return r
}

func (s *Server) allowOrigin(origin string) bool {
	allowed := s.config.Server.AllowedOrigins
	return len(allowed) == 0 || slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	logger := s.logger.WithPrefix("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("Request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}

			if tableID := conn.GetTable(); tableID != "" {
				s.logger.Info("Cleaning up disconnected player", "conn", conn.SubscriberID(), "table", tableID)
				conn.disconnect()
			}
			_ = conn.Close()
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Server) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	limiter := rate.NewLimiter(rate.Limit(s.config.Server.ActionsPerSecond), s.config.Server.ActionBurst)
	client := NewConnection(conn, s.logger, s.registry, limiter)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = client.Close()
		return
	}
	client.Start()

	go func() {
		<-client.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"tables":      len(s.registry.tables),
		"connections": s.ConnectionCount(),
	})
}

func (s *Server) handleListTables(c *gin.Context) {
	c.JSON(http.StatusOK, TableListData{Tables: s.registry.List()})
}

// handleGetTable returns the spectator view of one table.
func (s *Server) handleGetTable(c *gin.Context) {
	table, err := s.registry.Table(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
		return
	}
	c.JSON(http.StatusOK, table.Snapshot(""))
}
