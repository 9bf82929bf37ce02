package client

import (
	"context"
	"fmt"

	"github.com/bjoelf/pocketoption-core/pocketoption/model"
	"github.com/bjoelf/pocketoption-core/pocketoption/outbound"
	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/wire"
)

// listenerLoop reads frames from conn, applies the framing codec
// (§4.B) then the message codec (§4.C), updates session state (§4.D),
// and dispatches through the router (§4.E), tracking the "previous
// info" tag a 451- announcement sets for the following binary frame.
func (c *Client) listenerLoop(ctx context.Context, conn *wire.Conn) error {
	var previousInfo protocol.InfoKind
	hasPrevious := false

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		frame, binaryPayload, isBinary, err := conn.ReadTextFrame()
		if err != nil {
			return &pocketerr.ChannelError{Loop: "listener", Err: err}
		}

		if isBinary {
			if !hasPrevious {
				c.cfg.Logger.Warn().Msg("binary frame with no preceding announcement, discarding")
				continue
			}
			transfer, err := protocol.DecodePhase2(previousInfo, binaryPayload)
			if err != nil {
				c.cfg.Logger.Warn().Err(err).Msg("phase-2 parse failed, discarding frame")
				hasPrevious = false
				continue
			}
			c.applyAndDispatch(transfer)
			hasPrevious = false
			continue
		}

		switch frame.Kind {
		case wire.FrameOpen:
			if err := c.queue.SendPriority(ctx, outbound.Frame("40")); err != nil {
				return &pocketerr.ChannelError{Loop: "listener", Err: err}
			}

		case wire.FrameConnect:
			if c.cfg.RevalidateCredentials != nil {
				if err := c.credential.Revalidate(ctx, c.cfg.RevalidateCredentials); err != nil {
					c.cfg.Logger.Warn().Err(err).Msg("credential revalidation failed, re-emitting last known envelope")
				}
			}
			envelope, err := c.credential.Current().Envelope()
			if err != nil {
				return fmt.Errorf("rendering auth envelope: %w", err)
			}
			if err := c.queue.SendPriority(ctx, outbound.Frame(envelope)); err != nil {
				return &pocketerr.ChannelError{Loop: "listener", Err: err}
			}

		case wire.FramePing:
			if err := c.queue.SendPriority(ctx, outbound.Frame("3")); err != nil {
				return &pocketerr.ChannelError{Loop: "listener", Err: err}
			}

		case wire.FrameBinaryAnnounce:
			previousInfo = nameToInfo(frame.Name)
			hasPrevious = true

		case wire.FrameEvent:
			transfer, err := protocol.DecodeInline(frame.Name, frame.Payload)
			if err != nil {
				c.cfg.Logger.Warn().Err(err).Str("event", frame.Name).Msg("phase-1 parse failed, discarding frame")
				continue
			}
			c.applyAndDispatch(transfer)

		case wire.FrameClose:
			return &pocketerr.ChannelError{Loop: "listener", Err: fmt.Errorf("server closed the session")}
		}
	}
}

// applyAndDispatch updates session state for transfer before
// dispatching it through the router, per spec.md §5's ordering
// guarantee: readers of state via the facade observe an update at the
// moment a waiter receives the corresponding notification.
func (c *Client) applyAndDispatch(transfer protocol.Transfer) {
	switch t := transfer.(type) {
	case protocol.UpdateBalance:
		c.state.UpdateBalance(t.Balance, t.IsDemo == 1)

	case protocol.UpdateAssets:
		entries := make([]model.PayoutEntry, 0, len(t))
		for _, a := range t {
			entries = append(entries, model.PayoutEntry{Asset: a.Asset, Payout: a.Payout, IsOpen: a.IsOpen})
		}
		c.state.UpdatePayouts(entries)

	case protocol.UpdateOpenedDeals:
		c.state.UpdateOpenedDeals(t.Deals)

	case protocol.UpdateClosedDeals:
		c.state.UpdateClosedDeals(t.Deals)

	case protocol.SuccessCloseOrder:
		for _, d := range t.Deals {
			c.state.CloseDeal(d)
		}

	case protocol.UpdateStream:
		for _, tick := range t {
			c.state.UpdateServerTime(tick.Timestamp)
			c.state.PublishTick(tick)
		}

	case protocol.UpdateHistoryNew:
		for _, tick := range t.History {
			c.state.UpdateServerTime(tick.Timestamp)
		}
	}

	c.router.Dispatch(transfer)
}

// nameToInfo maps a wire event name back to its InfoKind, falling back
// to the Raw catch-all for names the codec has no typed variant for —
// used when a 451- announcement names the next binary frame's shape.
func nameToInfo(name string) protocol.InfoKind {
	for _, kind := range knownKinds {
		if kind.String() == name {
			return kind
		}
	}
	return protocol.RawInfo(name)
}

var knownKinds = []protocol.InfoKind{
	protocol.InfoOpenOrder,
	protocol.InfoUpdateStream,
	protocol.InfoUpdateHistoryNew,
	protocol.InfoUpdateAssets,
	protocol.InfoUpdateBalance,
	protocol.InfoSuccesscloseOrder,
	protocol.InfoSuccessopenOrder,
	protocol.InfoSuccessAuth,
	protocol.InfoChangeSymbol,
	protocol.InfoSubscribeSymbol,
	protocol.InfoLoadHistoryPeriod,
	protocol.InfoFailOpenOrder,
	protocol.InfoUpdateOpenedDeals,
	protocol.InfoUpdateClosedDeals,
	protocol.InfoGetCandles,
}
