package wsclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dkeye/Collab/internal/domain"
	"github.com/gorilla/websocket"
)

// echoServer sends every frame back, then a welcome for good measure.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	up := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := up.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(domain.Envelope{Type: domain.EventWelcome, From: "me"})
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, data); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func next(t *testing.T, c *Client) domain.Envelope {
	t.Helper()
	select {
	case env, ok := <-c.Incoming():
		if !ok {
			t.Fatal("incoming closed")
		}
		return env
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
	return domain.Envelope{}
}

func TestClientRoundTrip(t *testing.T) {
	srv := echoServer(t)
	c, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if w := next(t, c); w.Type != domain.EventWelcome || w.From != "me" {
		t.Fatalf("unexpected first frame %+v", w)
	}

	if err := c.Join("R", "me"); err != nil {
		t.Fatal(err)
	}
	if env := next(t, c); env.Type != domain.EventJoinRoom || env.Room != "R" || env.Media != "me" {
		t.Fatalf("join frame mangled: %+v", env)
	}

	if err := c.Signal("peer", domain.SignalPayload{Kind: domain.SignalOffer, SDP: "v=0"}); err != nil {
		t.Fatal(err)
	}
	env := next(t, c)
	var p domain.SignalPayload
	if err := env.Decode(&p); err != nil {
		t.Fatal(err)
	}
	if env.To != "peer" || p.Kind != domain.SignalOffer || p.SDP != "v=0" {
		t.Fatalf("signal frame mangled: %+v %+v", env, p)
	}
}

func TestSendAfterClose(t *testing.T) {
	srv := echoServer(t)
	c, err := Dial(context.Background(), wsURL(srv))
	if err != nil {
		t.Fatal(err)
	}
	c.Close()
	c.Close()
	if err := c.Emit(domain.EventClearBoard, nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}

	// incoming drains and closes once the connection is gone
	timeout := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-c.Incoming():
			if !ok {
				return
			}
		case <-timeout:
			t.Fatal("incoming never closed")
		}
	}
}

func TestDialFailure(t *testing.T) {
	if _, err := Dial(context.Background(), "ws://127.0.0.1:1/none"); err == nil {
		t.Fatal("expected dial error")
	}
}
