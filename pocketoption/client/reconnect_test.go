package client_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/bjoelf/pocketoption-core/pocketoption/client"
	"github.com/bjoelf/pocketoption-core/pocketoption/protocol"
	"github.com/bjoelf/pocketoption-core/pocketoption/session"
	"github.com/bjoelf/pocketoption-core/pocketoption/wiretest"
)

// TestDefaultReconnectCallbackReturnsOnCanceledContext exercises the
// context-cancellation path directly: a canceled context must cut the
// settle delay short rather than sleeping it out in full.
func TestDefaultReconnectCallbackReturnsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		cb := client.DefaultReconnectCallback(time.Hour, time.Hour)
		cb(ctx, session.New(), func(protocol.Transfer) error { return nil })
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected DefaultReconnectCallback to return promptly on a canceled context")
	}
}

// TestClientReconnectResubscribesStreamedAssets exercises testable
// property 6: after the transport drops and the supervisor redials,
// the reconnect callback re-emits ChangeSymbol for every asset that
// still has an active stream registration, without the caller ever
// calling SubscribeSymbol a second time.
func TestClientReconnectResubscribesStreamedAssets(t *testing.T) {
	srv := wiretest.New()
	defer srv.Close()

	var connNumber int32
	var firstConn atomic.Value // *websocket.Conn

	srv.OnConnect = func(conn *websocket.Conn, sid string) {
		n := atomic.AddInt32(&connNumber, 1)
		if n == 1 {
			firstConn.Store(conn)
		}
		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				switch {
				case string(msg) == "40":
					conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`40{"sid":"%s"}`, sid)))
				case string(msg) == "3":
				case len(msg) >= 9 && string(msg[:9]) == `42["auth"`:
					conn.WriteMessage(websocket.TextMessage, []byte(`42["successauth",{}]`))
				case len(msg) >= 17 && string(msg[:17]) == `42["changeSymbol"`:
					price := 1.10 + float64(n)*0.01
					conn.WriteMessage(websocket.TextMessage, []byte(`42["updateHistoryNew",{"asset":"EURUSD_otc","period":1,"history":[]}]`))
					conn.WriteMessage(websocket.TextMessage, []byte(`451-["updateStream",{"_placeholder":true,"num":0}]`))
					tickFrame := fmt.Sprintf(`["EURUSD_otc",%d.0,%.4f]`, n, price)
					conn.WriteMessage(websocket.BinaryMessage, []byte(tickFrame))
				}
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	creds, err := protocol.ParseCredentials(demoAuthEnvelope)
	if err != nil {
		t.Fatalf("parsing test credentials: %v", err)
	}

	c, err := client.Connect(ctx, client.Config{
		Credentials:       creds,
		Dialer:            scriptedDialer(srv),
		Logger:            zerolog.Nop(),
		ReconnectTime:     100 * time.Millisecond,
		RedialBackoff:     50 * time.Millisecond,
		ReconnectCallback: client.DefaultReconnectCallback(50*time.Millisecond, 10*time.Millisecond),
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
		if tick.Price >= 1.1150 {
			t.Fatalf("expected first connection's lower price, got %+v", tick)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for first connection's tick")
	case <-c.Done():
		t.Fatalf("client became unhealthy: %v", c.Err())
	}

	if conn, ok := firstConn.Load().(*websocket.Conn); ok {
		conn.Close()
	}

	select {
	case tick := <-ticks:
		if tick.Price <= 1.1150 {
			t.Fatalf("expected a post-reconnect tick with the second connection's higher price, got %+v", tick)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for post-reconnect resubscribe tick")
	case <-c.Done():
		t.Fatalf("client became unhealthy: %v", c.Err())
	}

	if atomic.LoadInt32(&connNumber) < 2 {
		t.Fatalf("expected at least 2 connections, got %d", connNumber)
	}
}
