// Package transport dials the PocketOption Socket.IO endpoint over TLS
// WebSocket, choosing among a static table of regional candidates
// sorted by great-circle distance to the caller's geolocated public
// IP, matching the upstream source's Regions table byte-for-byte.
package transport

import "github.com/bjoelf/pocketoption-core/internal/geoip"

// Endpoint is one regional Socket.IO candidate.
type Endpoint struct {
	Name     string
	URL      string
	Location geoip.Location
}

// Demo is the single demo-session endpoint. Demo sessions are pinned
// to it; it is never included in the distance-sorted production list.
var Demo = Endpoint{
	Name: "demo",
	URL:  "wss://demo-api-eu.po.market/socket.io/?EIO=4&transport=websocket",
}

// Production is the static table of 15 production regional endpoints
// with their approximate coordinates, carried forward verbatim from
// the upstream source's Regions type.
var Production = []Endpoint{
	{Name: "europe", URL: "wss://api-eu.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 50.0, Lon: 10.0}},
	{Name: "seychelles", URL: "wss://api-sc.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: -4.0, Lon: 55.0}},
	{Name: "hong_kong", URL: "wss://api-hk.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 22.0, Lon: 114.0}},
	{Name: "russia_spb", URL: "wss://api-spb.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 60.0, Lon: 30.0}},
	{Name: "france_2", URL: "wss://api-fr2.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 46.0, Lon: 2.0}},
	{Name: "us_west_4", URL: "wss://api-us4.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 37.0, Lon: -122.0}},
	{Name: "us_west_3", URL: "wss://api-us3.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 34.0, Lon: -118.0}},
	{Name: "us_west_2", URL: "wss://api-us2.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 39.0, Lon: -77.0}},
	{Name: "us_north", URL: "wss://api-us-north.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 42.0, Lon: -71.0}},
	{Name: "russia_moscow", URL: "wss://api-msk.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 55.0, Lon: 37.0}},
	{Name: "latin_america", URL: "wss://api-l.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 0.0, Lon: -45.0}},
	{Name: "india", URL: "wss://api-in.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 20.0, Lon: 77.0}},
	{Name: "france", URL: "wss://api-fr.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 46.0, Lon: 2.0}},
	{Name: "finland", URL: "wss://api-fin.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 62.0, Lon: 27.0}},
	{Name: "china", URL: "wss://api-c.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 35.0, Lon: 105.0}},
	{Name: "asia", URL: "wss://api-asia.po.market/socket.io/?EIO=4&transport=websocket", Location: geoip.Location{Lat: 10.0, Lon: 100.0}},
}
