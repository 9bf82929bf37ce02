// Package outbound implements the two-priority sender queue: a
// bootstrap phase that drains only the priority queue for a
// configured settle window (so auth/resubscribe frames win the race
// after a reconnect), then a steady phase that fair-merges both
// queues. Grounded on the sender_loop in the upstream source's event
// loop, translated from its fused-stream-of-two-receivers idiom into
// Go's native select fairness.
package outbound

import (
	"context"
	"fmt"
	"time"

	"github.com/bjoelf/pocketoption-core/pocketoption/wire"
)

// DefaultCapacity is the bounded channel capacity for each of the two
// queues.
const DefaultCapacity = 128

// Frame is a single outbound Engine.IO text frame body, already
// encoded by the protocol codec.
type Frame string

// Queue is the two-priority outbound queue. Any number of producers
// may call Send/SendPriority; the sender sub-loop is the single
// consumer.
type Queue struct {
	normal   chan Frame
	priority chan Frame
}

// New constructs a Queue with DefaultCapacity-sized channels.
func New() *Queue {
	return &Queue{
		normal:   make(chan Frame, DefaultCapacity),
		priority: make(chan Frame, DefaultCapacity),
	}
}

// Send enqueues a frame on the normal queue, blocking if full until ctx
// is done.
func (q *Queue) Send(ctx context.Context, f Frame) error {
	select {
	case q.normal <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendPriority enqueues a frame on the priority queue. Used for the
// auth envelope, pings, and reconnect-callback resubscribe frames —
// anything that must win the bootstrap-phase race after a reconnect.
func (q *Queue) SendPriority(ctx context.Context, f Frame) error {
	select {
	case q.priority <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run drives the sender sub-loop against conn until ctx is canceled or
// a write fails. bootstrapDuration is the configured reconnect_time:
// for that long after Run starts, only the priority queue is drained;
// afterwards both queues are fair-merged via Go's native
// pseudo-random select fairness across ready cases, matching the
// upstream source's fused round-robin select over two channels.
func (q *Queue) Run(ctx context.Context, conn *wire.Conn, bootstrapDuration time.Duration) error {
	if err := q.bootstrap(ctx, conn, bootstrapDuration); err != nil {
		return err
	}
	return q.steady(ctx, conn)
}

func (q *Queue) bootstrap(ctx context.Context, conn *wire.Conn, duration time.Duration) error {
	if duration <= 0 {
		return nil
	}
	timer := time.NewTimer(duration)
	defer timer.Stop()
	for {
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case f := <-q.priority:
			if err := conn.WriteText(string(f)); err != nil {
				return fmt.Errorf("writing priority frame: %w", err)
			}
		}
	}
}

func (q *Queue) steady(ctx context.Context, conn *wire.Conn) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case f := <-q.priority:
			if err := conn.WriteText(string(f)); err != nil {
				return fmt.Errorf("writing priority frame: %w", err)
			}
		case f := <-q.normal:
			if err := conn.WriteText(string(f)); err != nil {
				return fmt.Errorf("writing normal frame: %w", err)
			}
		}
	}
}
