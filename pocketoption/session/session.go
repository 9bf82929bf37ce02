// Package session holds the client's replicated state: balance,
// opened/closed deals, the payout table, server-time drift, and the
// subscribed-asset tick registry. It is owned exclusively by the event
// loop; the facade reads it (its only writes are ClearClosedDeals and
// stream registration through AddStream), through the same mutex-guarded
// struct with O(1) critical sections that
// adapter/websocket/saxo_websocket.go uses for its own session fields
// (lastMessageTimestamps, uicToTicker, etc).
package session

import (
	"sync"

	"github.com/bjoelf/pocketoption-core/pocketoption/internal/broadcast"
	"github.com/bjoelf/pocketoption-core/pocketoption/model"
)

const tickStreamCapacity = 64

// State is the session-state container. The zero value is not usable;
// construct with New.
type State struct {
	mu sync.Mutex

	balance float64
	isDemo  bool

	payouts map[string]model.PayoutEntry
	opened  []model.Deal
	closed  map[string]model.Deal // keyed by Deal.ID.String()

	serverTime float64

	streams map[string]*broadcast.Broadcaster[model.Tick]
}

// New constructs an empty session state.
func New() *State {
	return &State{
		payouts: make(map[string]model.PayoutEntry),
		closed:  make(map[string]model.Deal),
		streams: make(map[string]*broadcast.Broadcaster[model.Tick]),
	}
}

// UpdateBalance replaces the cached balance with an O(1) write. The
// listener sub-loop calls it for every UpdateBalance message; neither
// this method nor the listener checks whether the new value is lower
// than the old one or which message kind carried it.
func (s *State) UpdateBalance(balance float64, isDemo bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balance = balance
	s.isDemo = isDemo
}

// Balance returns the last observed balance.
func (s *State) Balance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance
}

// UpdatePayouts rebuilds the payout map from the asset descriptor
// list. Unknown assets already tracked are retained; the server's
// descriptor list is otherwise authoritative for assets it names.
func (s *State) UpdatePayouts(entries []model.PayoutEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range entries {
		s.payouts[e.Asset] = e
	}
}

// Payout returns the payout entry for an asset and whether it's known.
func (s *State) Payout(asset string) (model.PayoutEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.payouts[asset]
	return e, ok
}

// UpdateOpenedDeals replaces the opened-deals list wholesale; it is
// authoritative from the server side.
func (s *State) UpdateOpenedDeals(deals []model.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append([]model.Deal(nil), deals...)
}

// OpenedDeals returns a snapshot of the opened-deals list.
func (s *State) OpenedDeals() []model.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Deal(nil), s.opened...)
}

// UpdateClosedDeals merges the given deals into the closed set by id;
// ids already present are left unchanged, keeping the set
// deduplicated and monotonically growing.
func (s *State) UpdateClosedDeals(deals []model.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range deals {
		key := d.ID.String()
		if _, exists := s.closed[key]; exists {
			continue
		}
		s.closed[key] = d
	}
	s.pruneOpenedLocked()
}

// CloseDeal moves a single deal from opened to closed (the
// SuccesscloseOrder path); a repeat close for an id already closed is
// a no-op, preserving the same dedup invariant as UpdateClosedDeals.
func (s *State) CloseDeal(deal model.Deal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := deal.ID.String()
	if _, exists := s.closed[key]; !exists {
		s.closed[key] = deal
	}
	s.pruneOpenedLocked()
}

func (s *State) pruneOpenedLocked() {
	kept := s.opened[:0]
	for _, d := range s.opened {
		if _, closed := s.closed[d.ID.String()]; closed {
			continue
		}
		kept = append(kept, d)
	}
	s.opened = kept
}

// ClosedDeals returns a snapshot of the closed-deals set.
func (s *State) ClosedDeals() []model.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Deal, 0, len(s.closed))
	for _, d := range s.closed {
		out = append(out, d)
	}
	return out
}

// ClosedDeal returns a single closed deal by id, if present.
func (s *State) ClosedDeal(id string) (model.Deal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.closed[id]
	return d, ok
}

// ClearClosedDeals empties the closed-deals set. Exposed to
// collaborators per spec.md §6's clear_closed_deals operation.
func (s *State) ClearClosedDeals() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = make(map[string]model.Deal)
}

// UpdateServerTime records seconds as the server-time reference point
// if it is later than the current one; earlier timestamps are ignored,
// so server time never decreases.
func (s *State) UpdateServerTime(seconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seconds > s.serverTime {
		s.serverTime = seconds
	}
}

// ServerTime returns the latest tick time observed so far, in seconds.
func (s *State) ServerTime() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.serverTime
}

// AddStream returns a tick receiver for asset, creating the
// broadcaster if this is the first subscription.
func (s *State) AddStream(asset string) (<-chan model.Tick, func()) {
	s.mu.Lock()
	b, ok := s.streams[asset]
	if !ok {
		b = broadcast.New[model.Tick](tickStreamCapacity)
		s.streams[asset] = b
	}
	s.mu.Unlock()
	return b.Subscribe()
}

// PublishTick fans a tick out to asset's stream, if anyone has
// subscribed to it. Ticks for assets nobody subscribed to are simply
// not published anywhere (there is no broadcaster to create).
func (s *State) PublishTick(tick model.Tick) {
	s.mu.Lock()
	b, ok := s.streams[tick.Asset]
	s.mu.Unlock()
	if !ok {
		return
	}
	b.Publish(tick)
}

// StreamAssets returns a snapshot of every asset with at least one
// live subscriber, used by the reconnect callback to re-subscribe
// after a reconnect. An asset whose last subscriber has unsubscribed
// keeps its (now-empty) broadcaster in s.streams so a later AddStream
// call can still find it, but is no longer reported here — nobody is
// listening, so there is nothing to resume streaming for.
func (s *State) StreamAssets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	assets := make([]string, 0, len(s.streams))
	for asset, b := range s.streams {
		if b.Len() == 0 {
			continue
		}
		assets = append(assets, asset)
	}
	return assets
}

// CloseStreams closes every per-asset broadcaster, waking any blocked
// subscriber with a channel-closed signal. Called on client shutdown.
func (s *State) CloseStreams() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.streams {
		b.Close()
	}
}
