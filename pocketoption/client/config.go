// Package client implements the event-loop supervisor (§4.G) and the
// client facade (§4.H): the three cooperating sub-loops (listener,
// sender, reconnect callback), bounded redial with backoff, and the
// send_message/subscribe_symbol surface collaborators call into.
// Grounded on the upstream source's WebSocketClient/start_loops and on
// adapter/websocket/saxo_websocket.go's goroutine-lifecycle tracking.
package client

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/bjoelf/pocketoption-core/internal/geoip"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/session"
	"github.com/bjoelf/pocketoption-core/pocketoption/transport"
)

// ReconnectCallback is invoked once per reconnect (never on the first
// connect) after the configured settle delay, with a snapshot handle
// to session state and a priority-only outbound sender. ctx is the
// same per-connection context runLoops cancels on first sub-loop
// error; implementations that sleep between actions must select on
// ctx.Done() so a dropped connection doesn't leave the redial
// blocked waiting out a pacing delay that no longer matters. The
// default implementation (DefaultReconnectCallback) re-subscribes
// every previously streamed asset; callers may supply their own for
// other protocols hosted on this same core, per spec.md §9's "same
// core can host other protocols" design note.
type ReconnectCallback func(ctx context.Context, sess *session.State, send func(protocol.Transfer) error)

// Config configures a Client. Zero-value fields take the defaults
// documented below, mirroring the "preserve but expose as
// configuration" guidance in spec.md §9 for every constant the
// upstream source hard-coded.
type Config struct {
	Credentials protocol.Credentials

	// ReconnectTime is both the sender's bootstrap-phase duration and
	// the reconnect-callback's settle delay. The upstream source
	// calls this "reconnect_time" and documents it only as "default
	// small"; DefaultReconnectTime carries that forward as a concrete
	// value.
	ReconnectTime time.Duration

	// MaxRedials bounds consecutive dial failures before the
	// supervisor gives up and the client becomes permanently
	// unhealthy.
	MaxRedials int

	// RedialBackoff is the fixed sleep between redial attempts.
	RedialBackoff time.Duration

	// HandshakeTimeout bounds a single dial attempt.
	HandshakeTimeout time.Duration

	// RequestTimeout is the default deadline used by
	// SendMessageWithTimeout when the caller doesn't override it.
	RequestTimeout time.Duration

	// RetryAttempts and RetryDelay configure
	// SendMessageWithTimeoutAndRetry; the upstream source's own
	// values (3 attempts, 0.5s between) are undocumented but
	// preserved as defaults per spec.md §9.
	RetryAttempts int
	RetryDelay    time.Duration

	Dialer            *transport.Dialer
	ReconnectCallback ReconnectCallback
	Logger            zerolog.Logger

	// RevalidateCredentials, if set, is called every time the server
	// sends a Socket.IO CONNECT ack (including on every reconnect)
	// before the auth envelope is re-emitted, via
	// session.CredentialKeeper.Revalidate. Demo sessions have nothing
	// to revalidate and typically leave this nil.
	RevalidateCredentials func(ctx context.Context, current protocol.Credentials) (protocol.Credentials, error)
}

const (
	DefaultReconnectTime    = 2 * time.Second
	DefaultMaxRedials       = 8
	DefaultRedialBackoff    = 2 * time.Second
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultRequestTimeout   = 10 * time.Second
	DefaultRetryAttempts    = 3
	DefaultRetryDelay       = 500 * time.Millisecond

	// DefaultReconnectSettleDelay and DefaultPerAssetResubscribeDelay
	// are the concrete pacing constants from the upstream reconnect
	// callback (5s initial settle, 1s between each asset).
	DefaultReconnectSettleDelay    = 5 * time.Second
	DefaultPerAssetResubscribeDelay = time.Second
)

func (c *Config) setDefaults() {
	if c.ReconnectTime <= 0 {
		c.ReconnectTime = DefaultReconnectTime
	}
	if c.MaxRedials <= 0 {
		c.MaxRedials = DefaultMaxRedials
	}
	if c.RedialBackoff <= 0 {
		c.RedialBackoff = DefaultRedialBackoff
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.RetryAttempts <= 0 {
		c.RetryAttempts = DefaultRetryAttempts
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = DefaultRetryDelay
	}
	if c.Dialer == nil {
		c.Dialer = &transport.Dialer{HandshakeTimeout: c.HandshakeTimeout}
	}
	if c.Dialer.Geo == nil {
		c.Dialer.Geo = &geoip.Client{}
	}
}
