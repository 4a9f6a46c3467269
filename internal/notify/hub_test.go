package notify

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"launchpool/internal/domain"
)

func TestHub_BroadcastsToSubscriber(t *testing.T) {
	hub := NewHub(nil, testLogger())
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	received := make(chan domain.PoolEvent, 1)
	go func() {
		conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var e domain.PoolEvent
		if json.Unmarshal(msg, &e) == nil {
			received <- e
		}
	}()

	want := domain.PoolEvent{
		EventID:   "evt-ws-1",
		Type:      domain.EventClaimCompleted,
		Amount:    490,
		Fee:       10,
		Reward:    1000,
		Timestamp: 1700000000,
		Sequence:  1,
	}

	// Registration happens on the server goroutine; keep emitting until
	// the subscriber sees the event or the deadline passes.
	deadline := time.After(5 * time.Second)
	for {
		hub.Emit(context.Background(), want)
		select {
		case got := <-received:
			if got.EventID != want.EventID || got.Reward != want.Reward {
				t.Fatalf("received %+v, want %+v", got, want)
			}
			return
		case <-deadline:
			t.Fatal("subscriber never received the event")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub := NewHub(nil, testLogger())
	srv := httptest.NewServer(hub)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	hub.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return // connection torn down as expected
		}
	}
}
