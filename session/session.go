// Package session holds the user's current selection and last-fetched
// contract data across screens.
package session

import (
	"errors"
	"sync"
	"time"
)

// ErrNoSelection means a snapshot arrived with no selection confirmed.
var ErrNoSelection = errors.New("session: no selection confirmed")

// ErrStaleSnapshot means the snapshot was fetched for a selection that has
// since been replaced; it must not be stored or reused.
var ErrStaleSnapshot = errors.New("session: snapshot belongs to a replaced selection")

// Selection is the user's confirmed pick from the first screen.
type Selection struct {
	Underlying string  `json:"underlying"`
	Expiry     string  `json:"expiry"`     // display form, e.g. "27JUN2025"
	ExpiryISO  string  `json:"expiry_iso"` // yyyy-mm-dd
	Strike     float64 `json:"strike"`
	Side       string  `json:"side"` // CE or PE
}

// ContractSnapshot is the resolved and fetched result for one selection,
// immutable once stored. The maps pass through from the chain response
// untouched; consumers tolerate absent keys.
type ContractSnapshot struct {
	Selection     Selection          `json:"selection"`
	InstrumentKey string             `json:"instrument_key"`
	AssetKey      string             `json:"asset_key"`
	SpotPrice     float64            `json:"spot_price,omitempty"`
	MarketData    map[string]float64 `json:"market_data"`
	OptionGreeks  map[string]float64 `json:"option_greeks"`
	FetchedAt     time.Time          `json:"fetched_at"`
}

// Session is the single current-focus slot for one user: at most one
// Selection and one snapshot fetched for it. Not a history. Transitions:
// empty -> selection (Confirm) -> snapshot attached -> empty (Reset).
type Session struct {
	mu        sync.Mutex
	selection *Selection
	snapshot  *ContractSnapshot
}

func New() *Session {
	return &Session{}
}

// Confirm stores a new selection. Any snapshot fetched for a previous
// selection is dropped: it must be refetched, never reused.
func (s *Session) Confirm(sel Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = &sel
	s.snapshot = nil
}

// Selection returns the current selection, if one is confirmed.
func (s *Session) Selection() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return Selection{}, false
	}
	return *s.selection, true
}

// AttachSnapshot stores the fetched snapshot for the current selection.
// A snapshot fetched for a selection that was replaced mid-flight is
// rejected rather than silently shown against the wrong contract.
func (s *Session) AttachSnapshot(snap ContractSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection == nil {
		return ErrNoSelection
	}
	if snap.Selection != *s.selection {
		return ErrStaleSnapshot
	}
	s.snapshot = &snap
	return nil
}

// Snapshot returns the stored snapshot, if any.
func (s *Session) Snapshot() (ContractSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		return ContractSnapshot{}, false
	}
	return *s.snapshot, true
}

// Reset clears the slot back to empty.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
	s.snapshot = nil
}
