package client_test

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bjoelf/pocketoption-core/pocketoption/client"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/transport"
	"github.com/bjoelf/pocketoption-core/pocketoption/wiretest"
)

const demoAuthEnvelope = `42["auth",{"session":"test-session","isDemo":1,"uid":1,"platform":1}]` + "\t"

func scriptedDialer(srv *wiretest.Server) *transport.Dialer {
	ep := transport.Endpoint{Name: "wiretest", URL: srv.URL()}
	return &transport.Dialer{
		DemoEndpoint:    &ep,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // local test server only
	}
}

func connectAndAuth(t *testing.T, srv *wiretest.Server, onAuthed func(conn *websocket.Conn)) {
	t.Helper()
	srv.OnConnect = func(conn *websocket.Conn, sid string) {
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				switch string(msg) {
				case "40":
					conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"`+sid+`"}`))
				case "3":
					// pong, nothing to do
				default:
					if len(msg) >= len(`42["auth"`) && string(msg[:9]) == `42["auth"` {
						conn.WriteMessage(websocket.TextMessage, []byte(`42["successauth",{}]`))
						if onAuthed != nil {
							onAuthed(conn)
						}
					}
				}
			}
		}()
	}
}

func TestClientSubscribeSymbolReceivesTicks(t *testing.T) {
	srv := wiretest.New()
	defer srv.Close()

	connectAndAuth(t, srv, func(conn *websocket.Conn) {
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if len(msg) >= len(`42["changeSymbol"`) && string(msg[:17]) == `42["changeSymbol"` {
					conn.WriteMessage(websocket.TextMessage, []byte(`42["updateHistoryNew",{"asset":"EURUSD_otc","period":1,"history":[]}]`))
					conn.WriteMessage(websocket.TextMessage, []byte(`451-["updateStream",{"_placeholder":true,"num":0}]`))
					conn.WriteMessage(websocket.BinaryMessage, []byte(`["EURUSD_otc",1.5,1.2345]`))
				}
			}
		}()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creds, err := protocol.ParseCredentials(demoAuthEnvelope)
	if err != nil {
		t.Fatalf("parsing test credentials: %v", err)
	}

	c, err := client.Connect(ctx, client.Config{
		Credentials: creds,
		Dialer:      scriptedDialer(srv),
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	ticks, unsubscribe, err := c.SubscribeSymbol(ctx, "EURUSD_otc")
	if err != nil {
		t.Fatalf("subscribe_symbol: %v", err)
	}
	defer unsubscribe()

	select {
	case tick := <-ticks:
		if tick.Price != 1.2345 {
			t.Fatalf("unexpected tick: %+v", tick)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for tick")
	case <-c.Done():
		t.Fatalf("client became unhealthy: %v", c.Err())
	}
}

func TestClientBuyMatchesRequestID(t *testing.T) {
	srv := wiretest.New()
	defer srv.Close()

	connectAndAuth(t, srv, func(conn *websocket.Conn) {
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if len(msg) >= len(`42["openOrder"`) && string(msg[:14]) == `42["openOrder"` {
					requestID := requestIDFromOpenOrderFrame(t, msg)
					reply := `42["successopenOrder",{"requestId":"` + requestID + `","deal":{"id":"6c7c61c6-2e9f-4a1c-9e6a-1f2f2f2f2f2f","asset":"EURUSD_otc","amount":1}}]`
					conn.WriteMessage(websocket.TextMessage, []byte(reply))
				}
			}
		}()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creds, err := protocol.ParseCredentials(demoAuthEnvelope)
	if err != nil {
		t.Fatalf("parsing test credentials: %v", err)
	}

	c, err := client.Connect(ctx, client.Config{
		Credentials: creds,
		Dialer:      scriptedDialer(srv),
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	id, deal, err := c.Buy(ctx, "EURUSD_otc", 1, 60)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if id.String() != deal.ID.String() {
		t.Fatalf("expected returned id to match deal id")
	}
	if deal.Asset != "EURUSD_otc" {
		t.Fatalf("unexpected deal: %+v", deal)
	}
}

func TestClientFailOpenOrderDoesNotFailUnrelatedConcurrentBuy(t *testing.T) {
	srv := wiretest.New()
	defer srv.Close()

	var mu sync.Mutex
	failed := false

	connectAndAuth(t, srv, func(conn *websocket.Conn) {
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if len(msg) < len(`42["openOrder"`) || string(msg[:14]) != `42["openOrder"` {
					continue
				}
				requestID := requestIDFromOpenOrderFrame(t, msg)
				if requestID == "" {
					continue
				}
				// Fail exactly the first order request the server
				// sees and succeed every other one — this exercises
				// the router's fan-out of one FailOpenOrder to every
				// concurrent SuccessopenOrder waiter (per
				// FailOpenOrder.ErrorInfo) while only the caller whose
				// own RequestID matches should ever treat it as theirs.
				mu.Lock()
				shouldFail := !failed
				failed = true
				mu.Unlock()

				if shouldFail {
					reply := `42["failOpenOrder",{"requestId":"` + requestID + `","reason":"insufficient funds"}]`
					conn.WriteMessage(websocket.TextMessage, []byte(reply))
					continue
				}
				reply := `42["successopenOrder",{"requestId":"` + requestID + `","deal":{"id":"6c7c61c6-2e9f-4a1c-9e6a-1f2f2f2f2f2f","asset":"EURUSD_otc","amount":1}}]`
				conn.WriteMessage(websocket.TextMessage, []byte(reply))
			}
		}()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	creds, err := protocol.ParseCredentials(demoAuthEnvelope)
	if err != nil {
		t.Fatalf("parsing test credentials: %v", err)
	}

	c, err := client.Connect(ctx, client.Config{
		Credentials: creds,
		Dialer:      scriptedDialer(srv),
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	type result struct {
		err error
	}
	results := make(chan result, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, _, err := c.Buy(ctx, "EURUSD_otc", 1, 60)
			results <- result{err: err}
		}()
	}

	successes, failures := 0, 0
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil {
			successes++
		} else {
			failures++
		}
	}
	if successes != 1 || failures != 1 {
		t.Fatalf("expected exactly one success and one failure, got %d successes and %d failures", successes, failures)
	}
}

// requestIDFromOpenOrderFrame pulls requestId out of an inline
// `42["openOrder",{...}]` event frame body.
func requestIDFromOpenOrderFrame(t *testing.T, frame []byte) string {
	t.Helper()
	var arr []json.RawMessage
	if err := json.Unmarshal(frame[2:], &arr); err != nil {
		t.Fatalf("unmarshalling openOrder frame: %v", err)
	}
	var payload struct {
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(arr[1], &payload); err != nil {
		t.Fatalf("unmarshalling openOrder payload: %v", err)
	}
	return payload.RequestID
}
