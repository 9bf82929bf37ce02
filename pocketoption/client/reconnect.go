package client

import (
	"context"
	"time"

	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/session"
)

// DefaultReconnectCallback iterates the subscribed asset set and
// re-emits ChangeSymbol so the server resumes sending ticks, pacing
// itself exactly as the upstream source's reconnect callback does: an
// initial settle delay, then one asset per PerAssetResubscribeDelay.
// Both delays select on ctx so a connection that has already failed
// (and whose runLoops is waiting on this sub-loop to join) doesn't
// sit out the remainder of the pacing schedule before reporting back.
// Callers hosting a different protocol on this core can supply their
// own ReconnectCallback instead.
func DefaultReconnectCallback(settleDelay, perAssetDelay time.Duration) ReconnectCallback {
	return func(ctx context.Context, sess *session.State, send func(protocol.Transfer) error) {
		if !sleepOrDone(ctx, settleDelay) {
			return
		}
		for _, asset := range sess.StreamAssets() {
			_ = send(protocol.ChangeSymbol{Asset: asset, Period: 1})
			if !sleepOrDone(ctx, perAssetDelay) {
				return
			}
		}
	}
}

// sleepOrDone waits for d or ctx's cancellation, whichever comes
// first, reporting whether the sleep ran to completion.
func sleepOrDone(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
