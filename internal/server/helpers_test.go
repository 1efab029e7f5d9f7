package server

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/require"
)

// fakeSubscriber records every message sent to it.
type fakeSubscriber struct {
	id string

	mu   sync.Mutex
	msgs []*Message
}

func newFakeSubscriber(id string) *fakeSubscriber {
	return &fakeSubscriber{id: id}
}

func (f *fakeSubscriber) SubscriberID() string { return f.id }

func (f *fakeSubscriber) Send(msg *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, msg)
	return nil
}

func (f *fakeSubscriber) ofType(mt MessageType) []*Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*Message
	for _, m := range f.msgs {
		if m.Type == mt {
			out = append(out, m)
		}
	}
	return out
}

func (f *fakeSubscriber) last(t *testing.T, mt MessageType) *Message {
	t.Helper()
	msgs := f.ofType(mt)
	require.NotEmpty(t, msgs, "%s received no %s", f.id, mt)
	return msgs[len(msgs)-1]
}

func (f *fakeSubscriber) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = nil
}

func decode[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(msg.Data, &out))
	return out
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func testTableConfig(id string) TableConfig {
	return TableConfig{
		ID:            id,
		DisplayName:   "Table " + id,
		MaxPlayers:    8,
		SmallBlind:    10,
		BigBlind:      20,
		StartingChips: 1000,
		HandDelay:     "2s",
	}
}

func newTestRegistry(t *testing.T, configs ...TableConfig) (*TableRegistry, *quartz.Mock) {
	t.Helper()
	if len(configs) == 0 {
		configs = []TableConfig{testTableConfig("t1")}
	}
	clock := quartz.NewMock(t)
	reg := NewTableRegistry(configs,
		WithRegistryClock(clock),
		WithRegistryLogger(quietLogger()),
		WithSeed(42),
		WithStartDelay(time.Second),
	)
	t.Cleanup(reg.Close)
	return reg, clock
}
