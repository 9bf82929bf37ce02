package client

import (
	"context"
	"time"

	"github.com/bjoelf/pocketoption-core/pocketoption/outbound"
	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/wire"
)

// supervise is the top-level state machine from spec.md §4.G:
//
//	Start -> Dialing -> Running -> (sub-loop error)
//	                 ^                  v
//	                 +----- Dialing <---+
//	Dialing -> (N failures) -> Fatal
func (c *Client) supervise(ctx context.Context) {
	attempts := 0
	reconnected := false

	for {
		if ctx.Err() != nil {
			c.fail(ctx.Err())
			return
		}

		conn, endpoint, err := c.cfg.Dialer.Dial(ctx, c.isDemo())
		if err != nil {
			attempts++
			c.cfg.Logger.Warn().Err(err).Int("attempt", attempts).Msg("dial failed")
			if attempts >= c.cfg.MaxRedials {
				c.fail(&pocketerr.FatalError{Attempts: attempts})
				return
			}
			select {
			case <-time.After(c.cfg.RedialBackoff):
			case <-ctx.Done():
				c.fail(ctx.Err())
				return
			}
			continue
		}
		attempts = 0
		c.cfg.Logger.Info().Str("endpoint", endpoint).Bool("reconnected", reconnected).Msg("connected")

		loopErr := c.runLoops(ctx, conn, reconnected)
		conn.Close()
		reconnected = true

		if ctx.Err() != nil {
			c.fail(ctx.Err())
			return
		}
		c.cfg.Logger.Warn().Err(loopErr).Msg("session loop exited, redialing")
	}
}

// runLoops starts the listener, sender, and reconnect-callback
// sub-loops and joins them with first-error semantics: the first to
// return (with or without an error) cancels the other two via the
// child context, and runLoops waits for all three to exit before
// returning, matching the upstream source's try_join3 over the three
// futures.
func (c *Client) runLoops(parentCtx context.Context, conn *wire.Conn, reconnected bool) error {
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	errCh := make(chan error, 3)
	go func() { errCh <- c.listenerLoop(ctx, conn) }()
	go func() { errCh <- c.queue.Run(ctx, conn, c.cfg.ReconnectTime) }()
	go func() { errCh <- c.reconnectCallbackLoop(ctx, conn, reconnected) }()

	first := <-errCh
	cancel()
	<-errCh
	<-errCh
	return first
}

// reconnectCallbackLoop sleeps ReconnectTime and, only if this loop
// iteration was entered because of a reconnect (not the first
// connect), invokes the configured callback with a priority-only
// sender, matching spec.md §4.G/§9. After firing (or deciding not to)
// it blocks until ctx is canceled so runLoops' join waits on it
// exactly once per connection, like the other two sub-loops.
func (c *Client) reconnectCallbackLoop(ctx context.Context, conn *wire.Conn, reconnected bool) error {
	select {
	case <-time.After(c.cfg.ReconnectTime):
	case <-ctx.Done():
		return ctx.Err()
	}

	if reconnected && c.cfg.ReconnectCallback != nil {
		send := func(t protocol.Transfer) error {
			name, payload, err := t.Encode()
			if err != nil {
				return err
			}
			frame, err := wire.EncodeEvent(name, payload)
			if err != nil {
				return err
			}
			return c.queue.SendPriority(ctx, outbound.Frame(frame))
		}
		c.cfg.ReconnectCallback(ctx, c.state, send)
	}

	<-ctx.Done()
	return ctx.Err()
}
