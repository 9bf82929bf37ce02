package protocol

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
)

const (
	authPrefix = `42["auth",`
	authSuffix = `]`
	// authTrailingTab is observed appended to every known-good auth
	// envelope on the wire; preserved verbatim on re-emission even
	// though nothing in the payload explains it.
	authTrailingTab = "\t"
)

// demoEnvelope mirrors the JSON body inside 42["auth", <here>]. Field
// names are camelCase to match the wire exactly.
type demoEnvelope struct {
	Session  string `json:"session"`
	IsDemo   int    `json:"isDemo"`
	UID      int64  `json:"uid"`
	Platform int    `json:"platform"`
}

// Credentials is the parsed auth envelope. Exactly one of Demo or Real
// is non-nil.
type Credentials struct {
	Demo *DemoCredentials
	Real *RealCredentials
}

// DemoCredentials is a demo (isDemo=1) session, always routed to the
// demo regional endpoint.
type DemoCredentials struct {
	Session  string
	UID      int64
	Platform int
}

// RealCredentials is a non-demo session. Raw holds the entire original
// auth envelope string (prefix, body, suffix, trailing tab) so it can
// be re-emitted byte-identical — the server echoes fields back that
// aren't all captured by demoEnvelope's schema.
type RealCredentials struct {
	Session  string
	UID      int64
	Platform int
	Raw      string
}

// ParseCredentials parses a `42["auth",{...}]` envelope, optionally
// followed by the trailing tab byte. It returns SsidParsingError on any
// malformed input — this is fatal at connect time.
func ParseCredentials(envelope string) (Credentials, error) {
	raw := envelope
	body := strings.TrimSuffix(envelope, authTrailingTab)
	if !strings.HasPrefix(body, authPrefix) || !strings.HasSuffix(body, authSuffix) {
		return Credentials{}, &pocketerr.SsidParsingError{
			Raw: envelope,
			Err: fmt.Errorf("missing auth envelope prefix/suffix"),
		}
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(body, authPrefix), authSuffix)

	var env demoEnvelope
	if err := json.Unmarshal([]byte(inner), &env); err != nil {
		return Credentials{}, &pocketerr.SsidParsingError{Raw: envelope, Err: err}
	}

	if env.IsDemo == 1 {
		return Credentials{Demo: &DemoCredentials{
			Session:  env.Session,
			UID:      env.UID,
			Platform: env.Platform,
		}}, nil
	}
	return Credentials{Real: &RealCredentials{
		Session:  env.Session,
		UID:      env.UID,
		Platform: env.Platform,
		Raw:      raw,
	}}, nil
}

// Envelope re-serialises the credentials to the exact wire shape,
// including the trailing tab byte. For a demo session this rebuilds
// the envelope from the parsed fields (round-trips byte-identical per
// spec.md's invariant); for a real session it echoes the stored raw
// string verbatim.
func (c Credentials) Envelope() (string, error) {
	if c.Real != nil {
		if strings.HasSuffix(c.Real.Raw, authTrailingTab) {
			return c.Real.Raw, nil
		}
		return c.Real.Raw + authTrailingTab, nil
	}
	if c.Demo == nil {
		return "", fmt.Errorf("empty credentials")
	}
	env := demoEnvelope{
		Session:  c.Demo.Session,
		IsDemo:   1,
		UID:      c.Demo.UID,
		Platform: c.Demo.Platform,
	}
	body, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshalling auth envelope: %w", err)
	}
	return authPrefix + string(body) + authSuffix + authTrailingTab, nil
}

// IsDemo reports whether these credentials are a demo session.
func (c Credentials) IsDemo() bool { return c.Demo != nil }
