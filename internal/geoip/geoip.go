// Package geoip resolves the caller's public IP and approximate
// geolocation so package transport can sort regional endpoints by
// great-circle distance, the way the upstream source's Regions type
// does via its own get_public_ip/get_user_location helpers.
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// Location is a coarse (latitude, longitude) position.
type Location struct {
	Lat float64
	Lon float64
}

// Client resolves the caller's public IP and geolocation over HTTP.
// The zero value is usable; HTTPClient defaults to a 5s-timeout client
// tuned the way adapter/websocket/connection_manager.go tunes its own
// dial timeouts, carrying forward golang.org/x/net's HTTP/2 transport
// rather than the bare http.DefaultTransport.
type Client struct {
	HTTPClient *http.Client
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	transport := &http.Transport{}
	// These are short, low-volume lookups hit once per real (non-demo)
	// connect; explicitly configuring HTTP/2 avoids a silent fallback
	// to HTTP/1.1 keep-alives against hosts that support h2.
	_ = http2.ConfigureTransport(transport)
	return &http.Client{Timeout: 5 * time.Second, Transport: transport}
}

// PublicIP fetches the caller's public IP address.
func (c *Client) PublicIP(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://api.ipify.org?format=json", nil)
	if err != nil {
		return "", fmt.Errorf("building public-ip request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching public ip: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decoding public-ip response: %w", err)
	}
	if body.IP == "" {
		return "", fmt.Errorf("empty public ip response")
	}
	return body.IP, nil
}

// Locate geolocates an IP address.
func (c *Client) Locate(ctx context.Context, ip string) (Location, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("https://ipapi.co/%s/json/", ip), nil)
	if err != nil {
		return Location{}, fmt.Errorf("building geolocation request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("fetching geolocation: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Location{}, fmt.Errorf("decoding geolocation response: %w", err)
	}
	return Location{Lat: body.Latitude, Lon: body.Longitude}, nil
}

// Distance returns the great-circle distance in kilometers between two
// (lat, lon) points using the haversine formula, matching the
// calculate_distance helper the upstream Regions type uses to sort
// candidate endpoints.
func Distance(a, b Location) float64 {
	const earthRadiusKM = 6371.0
	lat1, lon1 := toRadians(a.Lat), toRadians(a.Lon)
	lat2, lon2 := toRadians(b.Lat), toRadians(b.Lon)

	dLat := lat2 - lat1
	dLon := lon2 - lon1

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
