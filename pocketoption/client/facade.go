package client

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bjoelf/pocketoption-core/pocketoption/model"
	"github.com/bjoelf/pocketoption-core/pocketoption/outbound"
	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/wire"
)

// enqueue encodes transfer as an outbound frame and pushes it on the
// normal (or, if priority, the priority) queue.
func (c *Client) enqueue(ctx context.Context, transfer protocol.Transfer, priority bool) error {
	name, payload, err := transfer.Encode()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", transfer.Info(), err)
	}
	frame, err := wire.EncodeEvent(name, payload)
	if err != nil {
		return err
	}
	if priority {
		return c.queue.SendPriority(ctx, outbound.Frame(frame))
	}
	return c.queue.Send(ctx, outbound.Frame(frame))
}

// SendMessage implements spec.md §4.H: subscribe to infoKind, push msg
// on the normal outbound queue, then await messages on the router
// subscription until one both satisfies predicate and is this call's
// own message — an error variant is returned as an error, anything
// else as the result. Because the router fans every message of
// infoKind out to every waiter on that kind (§4.E), predicate is what
// keeps one caller's FailOpenOrder from failing every other
// concurrently pending caller on the same kind: callers whose error
// variants carry a correlation id (e.g. OpenOrder's RequestID) must
// match it in predicate, the same way they already do for the success
// shape. It never gives up on its own; wrap it in
// SendMessageWithTimeout for a deadline.
func (c *Client) SendMessage(ctx context.Context, msg protocol.Transfer, infoKind protocol.InfoKind, predicate func(protocol.Transfer) bool) (protocol.Transfer, error) {
	rx, unsubscribe := c.router.Subscribe(infoKind)
	defer unsubscribe()

	if msg != nil {
		if err := c.enqueue(ctx, msg, false); err != nil {
			return nil, err
		}
	}

	for {
		select {
		case t, ok := <-rx:
			if !ok {
				return nil, fmt.Errorf("router channel closed while awaiting %s", infoKind)
			}
			if !predicate(t) {
				continue
			}
			if isErrorVariant(t) {
				return nil, &pocketerr.WebSocketMessageError{Info: infoKind.String(), Inner: fmt.Errorf("%v", t)}
			}
			return t, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// SendMessageWithTimeout wraps SendMessage in a deadline. On expiry it
// returns TimeoutError; only this call's own receiver is dropped, the
// shared router entry for infoKind stays in place, and a late response
// simply finds no claiming predicate.
func (c *Client) SendMessageWithTimeout(ctx context.Context, taskLabel string, d time.Duration, msg protocol.Transfer, infoKind protocol.InfoKind, predicate func(protocol.Transfer) bool) (protocol.Transfer, error) {
	deadlineCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	t, err := c.SendMessage(deadlineCtx, msg, infoKind, predicate)
	if err != nil && deadlineCtx.Err() != nil {
		return nil, &pocketerr.TimeoutError{Task: taskLabel, Duration: d}
	}
	return t, err
}

// SendMessageWithTimeoutAndRetry attempts SendMessageWithTimeout up to
// RetryAttempts times (default 3), sleeping RetryDelay (default 0.5s)
// between attempts and re-pushing the same frame on each retry. The
// attempt count and delay are undocumented in the upstream source;
// preserved here as configuration per spec.md §9.
func (c *Client) SendMessageWithTimeoutAndRetry(ctx context.Context, taskLabel string, d time.Duration, msg protocol.Transfer, infoKind protocol.InfoKind, predicate func(protocol.Transfer) bool) (protocol.Transfer, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		t, err := c.SendMessageWithTimeout(ctx, taskLabel, d, msg, infoKind, predicate)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// SubscribeSymbol primes the server to stream asset by sending
// ChangeSymbol and awaiting the matching UpdateHistoryNew, registers
// the asset in session state, then returns a tick receiver.
func (c *Client) SubscribeSymbol(ctx context.Context, asset string) (<-chan model.Tick, func(), error) {
	_, err := c.SendMessageWithTimeout(ctx, "subscribe_symbol", c.cfg.RequestTimeout,
		protocol.ChangeSymbol{Asset: asset, Period: 1},
		protocol.InfoUpdateHistoryNew,
		func(t protocol.Transfer) bool {
			h, ok := t.(protocol.UpdateHistoryNew)
			return ok && h.Asset == asset
		},
	)
	if err != nil {
		return nil, nil, err
	}
	rx, unsubscribe := c.state.AddStream(asset)
	return rx, unsubscribe, nil
}

// SubscribeSymbolChunked aggregates n consecutive ticks per yielded
// slice.
func (c *Client) SubscribeSymbolChunked(ctx context.Context, asset string, n int) (<-chan []model.Tick, func(), error) {
	rx, unsubscribe, err := c.SubscribeSymbol(ctx, asset)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan []model.Tick, 1)
	go func() {
		defer close(out)
		batch := make([]model.Tick, 0, n)
		for tick := range rx {
			batch = append(batch, tick)
			if len(batch) == n {
				out <- batch
				batch = make([]model.Tick, 0, n)
			}
		}
	}()
	return out, unsubscribe, nil
}

// SubscribeSymbolTimed aggregates ticks collected over duration d per
// yielded slice.
func (c *Client) SubscribeSymbolTimed(ctx context.Context, asset string, d time.Duration) (<-chan []model.Tick, func(), error) {
	rx, unsubscribe, err := c.SubscribeSymbol(ctx, asset)
	if err != nil {
		return nil, nil, err
	}
	out := make(chan []model.Tick, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(d)
		defer ticker.Stop()
		var batch []model.Tick
		for {
			select {
			case tick, ok := <-rx:
				if !ok {
					if len(batch) > 0 {
						out <- batch
					}
					return
				}
				batch = append(batch, tick)
			case <-ticker.C:
				if len(batch) > 0 {
					out <- batch
					batch = nil
				}
			}
		}
	}()
	return out, unsubscribe, nil
}

// Buy places a "call" order; Sell places a "put" order. Both compose
// on top of SendMessage with a request-id predicate, per spec.md §6.
func (c *Client) Buy(ctx context.Context, asset string, amount float64, timeSeconds int) (uuid.UUID, model.Deal, error) {
	return c.order(ctx, asset, amount, timeSeconds, "call")
}

func (c *Client) Sell(ctx context.Context, asset string, amount float64, timeSeconds int) (uuid.UUID, model.Deal, error) {
	return c.order(ctx, asset, amount, timeSeconds, "put")
}

func (c *Client) order(ctx context.Context, asset string, amount float64, timeSeconds int, action string) (uuid.UUID, model.Deal, error) {
	requestID := uuid.NewString()
	order := protocol.OpenOrder{
		Asset:      asset,
		Amount:     amount,
		Action:     action,
		IsDemo:     boolToInt(c.isDemo()),
		RequestID:  requestID,
		Time:       timeSeconds,
		OptionType: protocol.OptionTypeTurbo,
	}

	result, err := c.SendMessageWithTimeout(ctx, "buy_sell", c.cfg.RequestTimeout, order, protocol.InfoSuccessopenOrder,
		func(t protocol.Transfer) bool {
			switch v := t.(type) {
			case protocol.SuccessOpenOrder:
				return v.RequestID == requestID
			case protocol.FailOpenOrder:
				return v.RequestID == requestID
			default:
				return false
			}
		},
	)
	if err != nil {
		return uuid.UUID{}, model.Deal{}, err
	}
	success, ok := result.(protocol.SuccessOpenOrder)
	if !ok {
		return uuid.UUID{}, model.Deal{}, &pocketerr.UnexpectedVariantError{Info: protocol.InfoSuccessopenOrder.String()}
	}
	return success.Deal.ID, success.Deal, nil
}

// CheckResults returns immediately if dealID is already in the closed
// list; otherwise it awaits the next SuccesscloseOrder carrying that
// id.
func (c *Client) CheckResults(ctx context.Context, dealID uuid.UUID) (model.Deal, error) {
	if d, ok := c.state.ClosedDeal(dealID.String()); ok {
		return d, nil
	}
	result, err := c.SendMessageWithTimeout(ctx, "check_results", c.cfg.RequestTimeout, nil, protocol.InfoSuccesscloseOrder,
		func(t protocol.Transfer) bool {
			s, ok := t.(protocol.SuccessCloseOrder)
			if !ok {
				return false
			}
			for _, d := range s.Deals {
				if d.ID == dealID {
					return true
				}
			}
			return false
		},
	)
	if err != nil {
		return model.Deal{}, err
	}
	success := result.(protocol.SuccessCloseOrder)
	for _, d := range success.Deals {
		if d.ID == dealID {
			return d, nil
		}
	}
	return model.Deal{}, &pocketerr.UnexpectedVariantError{Info: protocol.InfoSuccesscloseOrder.String()}
}

// GetCandles requests a block of candles for asset/period starting at
// offset.
func (c *Client) GetCandles(ctx context.Context, asset string, period, offset int) ([]model.Tick, error) {
	result, err := c.SendMessageWithTimeout(ctx, "get_candles", c.cfg.RequestTimeout,
		protocol.GetCandles{Asset: asset, Period: period, Offset: offset},
		protocol.InfoUpdateHistoryNew,
		func(t protocol.Transfer) bool {
			h, ok := t.(protocol.UpdateHistoryNew)
			return ok && h.Asset == asset && h.Period == period
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(protocol.UpdateHistoryNew).History, nil
}

// History requests a window of history for asset/period.
func (c *Client) History(ctx context.Context, asset string, period int) ([]model.Tick, error) {
	result, err := c.SendMessageWithTimeout(ctx, "history", c.cfg.RequestTimeout,
		protocol.LoadHistoryPeriod{Asset: asset, Period: period},
		protocol.InfoUpdateHistoryNew,
		func(t protocol.Transfer) bool {
			h, ok := t.(protocol.UpdateHistoryNew)
			return ok && h.Asset == asset && h.Period == period
		},
	)
	if err != nil {
		return nil, err
	}
	return result.(protocol.UpdateHistoryNew).History, nil
}

// Balance, ClosedDeals, OpenedDeals, Payout and ClearClosedDeals are
// snapshots of session state, exposed directly per spec.md §6.
func (c *Client) Balance() float64                 { return c.state.Balance() }
func (c *Client) ClosedDeals() []model.Deal         { return c.state.ClosedDeals() }
func (c *Client) OpenedDeals() []model.Deal         { return c.state.OpenedDeals() }
func (c *Client) ClearClosedDeals()                 { c.state.ClearClosedDeals() }
func (c *Client) Payout(asset string) (int, bool) {
	e, ok := c.state.Payout(asset)
	return e.Payout, ok
}

func isErrorVariant(t protocol.Transfer) bool {
	switch t.(type) {
	case protocol.FailOpenOrder:
		return true
	default:
		return false
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
