package session

import (
	"context"
	"sync"

	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
)

// CredentialKeeper hands the event loop the current auth envelope and
// can be told to revalidate it. PocketOption sessions are an opaque
// string handed over once at connect time, not an authorization-code
// grant with a token endpoint to call, so this is a plain
// mutex-guarded holder rather than anything oauth2-shaped.
type CredentialKeeper struct {
	mu    sync.Mutex
	creds protocol.Credentials
}

// NewCredentialKeeper seeds a keeper with creds.
func NewCredentialKeeper(creds protocol.Credentials) *CredentialKeeper {
	return &CredentialKeeper{creds: creds}
}

// Current returns the live Credentials value.
func (k *CredentialKeeper) Current() protocol.Credentials {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.creds
}

// Revalidate calls revalidate with the current credentials and stores
// whatever it returns as the new current value; on error the current
// value is left unchanged. The listener sub-loop calls this on every
// Socket.IO CONNECT ack, before re-emitting the auth envelope, when
// Config.RevalidateCredentials is set; demo sessions typically leave
// that unset.
func (k *CredentialKeeper) Revalidate(ctx context.Context, revalidate func(context.Context, protocol.Credentials) (protocol.Credentials, error)) error {
	k.mu.Lock()
	current := k.creds
	k.mu.Unlock()

	next, err := revalidate(ctx, current)
	if err != nil {
		return err
	}

	k.mu.Lock()
	k.creds = next
	k.mu.Unlock()
	return nil
}
