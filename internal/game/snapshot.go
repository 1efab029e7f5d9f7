package game

import "slices"

// Snapshot is the view of a table sent to one seat. Only the viewer's own
// hole cards are included.
type Snapshot struct {
	TableID        string        `json:"tableId"`
	Players        []Player      `json:"players"`
	GameState      GameState     `json:"gameState"`
	IsYourTurn     bool          `json:"isYourTurn"`
	ValidActions   []ValidAction `json:"validActions,omitempty"`
	MessageHistory []Event       `json:"messageHistory"`
}

// Snapshot builds the view of the table for viewerID. An empty or unknown
// viewer sees no hole cards.
func (t *Table) Snapshot(viewerID string) Snapshot {
	snap := Snapshot{
		TableID:        t.ID,
		Players:        make([]Player, 0, MaxSeats),
		GameState:      t.State,
		MessageHistory: t.MessageHistory(),
	}
	snap.GameState.Deck = nil
	snap.GameState.CommunityCards = slices.Clone(t.State.CommunityCards)
	snap.GameState.Winners = slices.Clone(t.State.Winners)

	for _, p := range t.seats {
		if p == nil {
			continue
		}
		snap.Players = append(snap.Players, p.view(viewerID != "" && p.ID == viewerID))
	}

	if viewer := t.PlayerByID(viewerID); viewer != nil && t.State.InHand() && t.State.CurrentPlayer == viewer.Position {
		snap.IsYourTurn = true
		snap.ValidActions = t.ValidActions()
	}
	return snap
}
