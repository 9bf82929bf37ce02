package transport

import (
	"context"
	"crypto/tls"
	"net/url"
	"sort"
	"time"

	"github.com/bjoelf/pocketoption-core/internal/geoip"
	"github.com/bjoelf/pocketoption-core/pocketoption/pocketerr"
	"github.com/bjoelf/pocketoption-core/pocketoption/wire"
)

// Candidates orders the regional endpoint list by great-circle
// distance to loc, matching Regions::get_closest_server.
func Candidates(loc geoip.Location) []Endpoint {
	ordered := make([]Endpoint, len(Production))
	copy(ordered, Production)
	sort.SliceStable(ordered, func(i, j int) bool {
		return geoip.Distance(loc, ordered[i].Location) < geoip.Distance(loc, ordered[j].Location)
	})
	return ordered
}

// Dialer dials the PocketOption Socket.IO endpoint, trying regional
// candidates closest-first until one completes the handshake. Demo
// sessions are pinned to the single demo endpoint and never consult
// geolocation.
type Dialer struct {
	Geo              *geoip.Client
	HandshakeTimeout time.Duration
	UserAgent        string

	// DemoEndpoint overrides the package-level Demo endpoint when set;
	// tests point this at a local mock server instead of the real
	// PocketOption demo gateway.
	DemoEndpoint *Endpoint

	// TLSClientConfig, if set, is passed through to every dial attempt.
	TLSClientConfig *tls.Config
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) pocketoption-core/1.0"

// Dial connects to the demo endpoint (isDemo) or, for a real session,
// geolocates the caller and tries production candidates closest-first.
// On exhaustion it returns MultipleAttemptsConnectionError.
func (d *Dialer) Dial(ctx context.Context, isDemo bool) (*wire.Conn, string, error) {
	timeout := d.HandshakeTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	ua := d.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	if isDemo {
		ep := Demo
		if d.DemoEndpoint != nil {
			ep = *d.DemoEndpoint
		}
		conn, err := d.dialOne(ctx, ep, timeout, ua)
		if err != nil {
			return nil, "", &pocketerr.MultipleAttemptsConnectionError{NTried: 1}
		}
		return conn, ep.Name, nil
	}

	loc := geoip.Location{}
	if d.Geo != nil {
		if ip, err := d.Geo.PublicIP(ctx); err == nil {
			if l, err := d.Geo.Locate(ctx, ip); err == nil {
				loc = l
			}
		}
	}
	candidates := Candidates(loc)

	var attempt int
	for _, ep := range candidates {
		attempt++
		conn, err := d.dialOne(ctx, ep, timeout, ua)
		if err == nil {
			return conn, ep.Name, nil
		}
	}
	return nil, "", &pocketerr.MultipleAttemptsConnectionError{NTried: attempt}
}

func (d *Dialer) dialOne(ctx context.Context, ep Endpoint, timeout time.Duration, ua string) (*wire.Conn, error) {
	u, err := url.Parse(ep.URL)
	if err != nil {
		return nil, err
	}
	origin := "https://" + u.Host

	return wire.Dial(ctx, wire.DialOptions{
		URL:              ep.URL,
		Origin:           origin,
		UserAgent:        ua,
		HandshakeTimeout: timeout,
		TLSClientConfig:  d.TLSClientConfig,
	})
}
