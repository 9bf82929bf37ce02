// Package wiretest provides a mock Engine.IO server for exercising
// pocketoption/client against a scripted peer, following the shape of
// the mock WebSocket test server this module grew out of: an
// httptest.Server wrapping a gorilla/websocket upgrader, with an
// OnConnect hook and a Broadcast helper the test drives directly
// instead of a real exchange on the other end.
package wiretest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/gorilla/websocket"
)

// Server is a scriptable Engine.IO peer. Each connection gets a fresh
// sid and immediately receives the "0{sid}" open frame; the test then
// drives the connection directly through the OnConnect hook.
type Server struct {
	server   *httptest.Server
	upgrader websocket.Upgrader

	mu      sync.Mutex
	conns   []*websocket.Conn
	nextSid int

	// OnConnect, if set, runs synchronously for every accepted
	// connection after it is appended to conns and sent the open
	// frame. Tests use this to
	// script the open/connect/auth handshake and any scripted replies.
	OnConnect func(conn *websocket.Conn, sid string)
}

// New starts a TLS test server at "/socket.io/".
func New() *Server {
	s := &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", s.handle)
	s.server = httptest.NewTLSServer(mux)
	return s
}

// URL returns the wss:// URL a wire.Dial call should target.
func (s *Server) URL() string {
	return "wss" + s.server.URL[len("https"):] + "/socket.io/?EIO=4&transport=websocket"
}

// Client returns an *http.Client trusting the test server's
// self-signed certificate, for callers that need it directly.
func (s *Server) Client() *http.Client { return s.server.Client() }

// Close tears down every tracked connection and the test server.
func (s *Server) Close() {
	s.mu.Lock()
	for _, c := range s.conns {
		c.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.server.Close()
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.nextSid++
	sid := fmt.Sprintf("wiretest-sid-%d", s.nextSid)
	s.conns = append(s.conns, conn)
	s.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"`+sid+`","pingInterval":25000,"pingTimeout":20000}`)); err != nil {
		conn.Close()
		return
	}

	if s.OnConnect != nil {
		s.OnConnect(conn, sid)
	}
}

// Broadcast writes frame as a text message to every live connection.
func (s *Server) Broadcast(frame string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		if err := c.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
			return err
		}
	}
	return nil
}
