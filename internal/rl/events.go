package rl

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Only the first few recommendations are snapshotted per shown event; the
// cap mirrors the frontend display limit.
const shownSnapshotCap = 5

// ShownItem is the minimal snapshot of a recommended item kept on a
// shown-recommendation event.
type ShownItem struct {
	ItemID int    `json:"item_id"`
	Name   string `json:"name"`
}

// ShownEvent records that a batch of recommendations was shown to a user.
// Events are append-only; SelectedItemID is filled in if the caller later
// correlates a selection back to this event.
type ShownEvent struct {
	ID             string      `json:"event_id"`
	UserID         int         `json:"user_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Items          []ShownItem `json:"items"`
	SelectedItemID int         `json:"selected_item_id,omitempty"`
	Completed      bool        `json:"completed"`
	Reward         float64     `json:"reward"`
}

// EventRecorder keeps an append-only log of shown-recommendation events for
// traceability between a recommendation batch and later selections.
type EventRecorder struct {
	mu     sync.Mutex
	events []ShownEvent
	byID   map[string]int
}

// NewEventRecorder creates an empty event recorder.
func NewEventRecorder() *EventRecorder {
	return &EventRecorder{
		byID: make(map[string]int),
	}
}

// RecordShown appends a shown-recommendation event and returns its
// generated identifier so callers can correlate later selections.
func (r *EventRecorder) RecordShown(userID int, recommendations []ShownItem) string {
	snapshot := recommendations
	if len(snapshot) > shownSnapshotCap {
		snapshot = snapshot[:shownSnapshotCap]
	}

	items := make([]ShownItem, len(snapshot))
	copy(items, snapshot)

	event := ShownEvent{
		ID:        uuid.New().String(),
		UserID:    userID,
		Timestamp: time.Now(),
		Items:     items,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[event.ID] = len(r.events)
	r.events = append(r.events, event)

	return event.ID
}

// MarkSelected records which item the user picked from a previously shown
// batch. Unknown event IDs are ignored.
func (r *EventRecorder) MarkSelected(eventID string, itemID int) {
	if eventID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if idx, ok := r.byID[eventID]; ok {
		r.events[idx].SelectedItemID = itemID
	}
}

// Lookup returns a copy of the event with the given identifier.
func (r *EventRecorder) Lookup(eventID string) (ShownEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[eventID]
	if !ok {
		return ShownEvent{}, false
	}
	return r.events[idx], true
}

// TotalInteractions counts the shown events recorded for a user.
func (r *EventRecorder) TotalInteractions(userID int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, event := range r.events {
		if event.UserID == userID {
			count++
		}
	}
	return count
}

// Len returns the total number of recorded events.
func (r *EventRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
