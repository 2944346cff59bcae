package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"podcast-studio/pkg/extraction"
	"podcast-studio/pkg/review"
)

func TestSessionWS_StreamsStagedProgress(t *testing.T) {
	ts := newTestServer(t, &fakeAI{}, &fakeStore{})
	id := createSession(t, ts)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/sessions/" + id
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	extractText(t, ts, id)

	var percents []int
	var states []string
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		conn.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
		var event progressEvent
		if err := conn.ReadJSON(&event); err != nil {
			break
		}
		switch event.Type {
		case "progress":
			percents = append(percents, event.Percent)
		case "state":
			states = append(states, event.State)
		}
		if event.State == "extracted" {
			break
		}
	}

	if len(percents) == 0 {
		t.Fatal("expected progress events on the websocket")
	}
	if percents[len(percents)-1] != 100 {
		t.Errorf("expected the stream to end at 100, got %v", percents)
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Errorf("progress must be monotonic, got %v", percents)
			break
		}
	}

	sawExtracted := false
	for _, state := range states {
		if state == "extracted" {
			sawExtracted = true
		}
	}
	if !sawExtracted {
		t.Errorf("expected an extracted state event, got %v", states)
	}
}

func TestBroadcast_ConcurrentWritesToOneSubscriber(t *testing.T) {
	logger := slog.New(slog.DiscardHandler)
	srv := New(logger, review.NewManager(), nil, nil, &fakeStore{})
	session := srv.sessions.Create()

	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/sessions/" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial websocket: %v", err)
	}
	defer conn.Close()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.broadcastProgress(session.ID, extraction.StageAnalyzing)
		}()
	}

	received := 0
	for received < writers {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event progressEvent
		if err := conn.ReadJSON(&event); err != nil {
			t.Fatalf("read after %d events: %v", received, err)
		}
		if event.Type != "progress" || event.Percent != extraction.StageAnalyzing.Percent {
			t.Fatalf("corrupted event: %+v", event)
		}
		received++
	}
	wg.Wait()
}

func TestSessionWS_UnknownSession(t *testing.T) {
	ts := newTestServer(t, &fakeAI{}, &fakeStore{})

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/sessions/nope"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected the upgrade to fail for an unknown session")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 upgrade rejection, got %+v", resp)
	}
}
