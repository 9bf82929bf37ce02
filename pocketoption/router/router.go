// Package router implements the request/response correlation layer:
// a mapping info-kind -> broadcast channel that callers subscribe to
// and the listener sub-loop dispatches into. Per spec.md §9's
// redesign, the predicate that selects which message a caller actually
// wanted lives entirely on the caller side (see package client); the
// router itself never sees user-supplied code, unlike the upstream
// source's boxed-validator-in-request-table design.
package router

import (
	"sync"

	"github.com/bjoelf/pocketoption-core/pocketoption/internal/broadcast"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
)

// DefaultCapacity is the bounded channel capacity used for a newly
// created entry, matching spec.md's "bounded capacity (default 128)".
const DefaultCapacity = 128

// Router maps info-kind to a broadcast entry, created lazily on first
// subscription and reused thereafter for the life of the client.
type Router struct {
	mu       sync.Mutex
	entries  map[protocol.InfoKind]*broadcast.Broadcaster[protocol.Transfer]
	capacity int
}

// New constructs an empty router.
func New() *Router {
	return &Router{
		entries:  make(map[protocol.InfoKind]*broadcast.Broadcaster[protocol.Transfer]),
		capacity: DefaultCapacity,
	}
}

// Subscribe returns a receiver for info, idempotently: repeated calls
// for the same info share the same underlying broadcaster, but each
// call gets its own receiver channel and unsubscribe function.
func (r *Router) Subscribe(info protocol.InfoKind) (<-chan protocol.Transfer, func()) {
	r.mu.Lock()
	entry, ok := r.entries[info]
	if !ok {
		entry = broadcast.New[protocol.Transfer](r.capacity)
		r.entries[info] = entry
	}
	r.mu.Unlock()
	return entry.Subscribe()
}

// Dispatch looks up the sender(s) for transfer.Info(), and — if
// transfer is itself an error variant — also dispatches to every kind
// named in transfer.ErrorInfo(), so e.g. a FailOpenOrder also wakes
// SuccessopenOrder waiters. Sends are non-blocking with drop-on-full;
// a message no waiter has subscribed to is not an error, it is simply
// not dispatched anywhere. Returns the total number of subscribers
// notified across every kind touched.
func (r *Router) Dispatch(transfer protocol.Transfer) int {
	notified := 0
	notified += r.dispatchKind(transfer.Info(), transfer)
	for _, errInfo := range transfer.ErrorInfo() {
		notified += r.dispatchKind(errInfo, transfer)
	}
	return notified
}

func (r *Router) dispatchKind(info protocol.InfoKind, transfer protocol.Transfer) int {
	r.mu.Lock()
	entry, ok := r.entries[info]
	r.mu.Unlock()
	if !ok {
		return 0
	}
	return entry.Publish(transfer)
}

// Close shuts down every entry, waking blocked subscribers with a
// channel-closed signal — used when the supervisor exhausts its
// redial budget and the client becomes permanently unhealthy.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.entries {
		entry.Close()
	}
}
