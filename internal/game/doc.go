// Package game implements the table state machine for a single Texas
// Hold'em table of up to eight seats.
//
// The main type is Table, which owns the seated players and one GameState
// and moves them through a hand: blinds, dealing, four betting streets and
// showdown. A Table is not safe for concurrent use; callers serialize access,
// typically with one mutex per table.
//
// # Basic Usage
//
//	t := game.NewTable("main", game.WithRNG(randutil.New(42)))
//	_, _ = t.SeatPlayer(game.SeatRequest{ID: "a", Name: "Alice", Chips: 1000})
//	_, _ = t.SeatPlayer(game.SeatRequest{ID: "b", Name: "Bob", Chips: 1000})
//	if err := t.StartNewHand(); err != nil {
//	    // not enough players
//	}
//	err := t.ProcessPlayerAction("a", game.Call, 0)
//
// # Events
//
// Every state transition produces a narrative Event. Events are appended to
// the table's bounded message history and published to the EventSink given
// with WithEventSink. Events are commentary only; no game decision reads them.
//
// # Deterministic Testing
//
// WithRNG fixes the shuffle and WithClock fixes event timestamps, so two
// tables built with the same options replay identically.
package game
