// Package config loads runtime configuration from environment
// variables, following the LoadTestConfig pattern from the adapter
// this module grew out of: plain os.Getenv reads, safe defaults, and a
// panic-on-misuse guard against running a real-money session by
// accident.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
)

// Settings holds everything the example collaborators (cmd/ticker,
// cmd/buyer) need to construct a client.
type Settings struct {
	SSID          string
	ForceDemo     bool
	ReconnectTime time.Duration
	MaxRedials    int
}

// Load reads POCKETOPTION_SSID, POCKETOPTION_FORCE_DEMO,
// POCKETOPTION_RECONNECT_TIME_SECONDS and POCKETOPTION_MAX_REDIALS.
func Load() (Settings, error) {
	ssid := os.Getenv("POCKETOPTION_SSID")
	if ssid == "" {
		return Settings{}, fmt.Errorf("POCKETOPTION_SSID is not set")
	}

	forceDemo, _ := strconv.ParseBool(os.Getenv("POCKETOPTION_FORCE_DEMO"))

	reconnectSeconds := 0
	if v := os.Getenv("POCKETOPTION_RECONNECT_TIME_SECONDS"); v != "" {
		reconnectSeconds, _ = strconv.Atoi(v)
	}

	maxRedials := 0
	if v := os.Getenv("POCKETOPTION_MAX_REDIALS"); v != "" {
		maxRedials, _ = strconv.Atoi(v)
	}

	return Settings{
		SSID:          ssid,
		ForceDemo:     forceDemo,
		ReconnectTime: time.Duration(reconnectSeconds) * time.Second,
		MaxRedials:    maxRedials,
	}, nil
}

// ParseCredentials parses the configured SSID envelope, refusing a
// real-money session when ForceDemo is set — the same safety-guard
// idiom as GetSIMCredentials in the adapter this grew out of, just
// inverted (refuse Real instead of refusing non-SIM).
func (s Settings) ParseCredentials() (protocol.Credentials, error) {
	creds, err := protocol.ParseCredentials(s.SSID)
	if err != nil {
		return protocol.Credentials{}, err
	}
	if s.ForceDemo && !creds.IsDemo() {
		panic("POCKETOPTION_FORCE_DEMO is set but the configured SSID is a real-money session")
	}
	return creds, nil
}
