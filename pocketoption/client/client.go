package client

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/bjoelf/pocketoption-core/pocketoption/outbound"
	"github.com/bjoelf/pocketoption-core/pocketoption/router"
	"github.com/bjoelf/pocketoption-core/pocketoption/session"
)

// Client is the core client runtime: one supervised event loop over
// one transport connection at a time, shared session state, a request
// router, and an outbound sender queue. Construct with Connect.
type Client struct {
	cfg        Config
	state      *session.State
	router     *router.Router
	queue      *outbound.Queue
	credential *session.CredentialKeeper

	healthy atomic.Bool
	done    chan struct{}
	runErr  error
	runOnce sync.Once
}

// Connect constructs a Client and starts its supervisor loop in the
// background. It does not block for the first successful dial —
// callers that need that guarantee should use a short-deadline
// SendMessageWithTimeout for their first request, same as the
// upstream source's init() which dials once before returning but still
// leaves the rest of the session async.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	cfg.setDefaults()
	if cfg.Credentials.Demo == nil && cfg.Credentials.Real == nil {
		return nil, fmt.Errorf("connect: no credentials supplied")
	}

	c := &Client{
		cfg:        cfg,
		state:      session.New(),
		router:     router.New(),
		queue:      outbound.New(),
		credential: session.NewCredentialKeeper(cfg.Credentials),
		done:       make(chan struct{}),
	}
	c.healthy.Store(true)

	go c.supervise(ctx)
	return c, nil
}

// Healthy reports whether the supervisor has not yet exhausted its
// redial budget.
func (c *Client) Healthy() bool { return c.healthy.Load() }

// State returns the shared session-state handle for read access by
// collaborators.
func (c *Client) State() *session.State { return c.state }

// Done is closed when the supervisor exits permanently (redial budget
// exhausted or the connecting context was canceled).
func (c *Client) Done() <-chan struct{} { return c.done }

// Err returns the reason the supervisor exited, valid only after Done
// is closed.
func (c *Client) Err() error { return c.runErr }

// isDemo reports whether this client's credentials are a demo session.
func (c *Client) isDemo() bool { return c.credential.Current().IsDemo() }

func (c *Client) fail(err error) {
	c.runOnce.Do(func() {
		c.runErr = err
		c.healthy.Store(false)
		c.router.Close()
		c.state.CloseStreams()
		close(c.done)
	})
}
