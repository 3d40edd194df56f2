package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-guildsync/internal/events/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub(4)
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.Publish(models.Event{Type: models.EventStateChanged, State: "READY"})

	select {
	case ev := <-ch:
		assert.Equal(t, models.EventStateChanged, ev.Type)
		assert.Equal(t, "READY", ev.State)
		assert.NotEmpty(t, ev.ID)
		assert.False(t, ev.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestHubPublishNeverBlocks(t *testing.T) {
	hub := NewHub(1)
	_, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Publish(models.Event{Type: models.EventRosterUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}

	subs, dropped := hub.Stats()
	assert.Equal(t, 1, subs)
	assert.Equal(t, uint64(9), dropped)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(1)
	ch, unsubscribe := hub.Subscribe()
	unsubscribe()
	unsubscribe()

	_, ok := <-ch
	assert.False(t, ok)

	subs, _ := hub.Stats()
	assert.Zero(t, subs)

	hub.Publish(models.Event{Type: models.EventRosterUpdated})
}

func TestHubRecentKeepsTail(t *testing.T) {
	hub := NewHub(1)
	for i := 0; i < defaultHistorySize+5; i++ {
		hub.Publish(models.Event{Type: models.EventGameDataUpdated})
	}
	assert.Len(t, hub.Recent(), defaultHistorySize)
}

func TestHubReportError(t *testing.T) {
	hub := NewHub(1)
	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.ReportError(context.Background(), "Error fetching titles", errors.New("boom"))

	ev := <-ch
	assert.Equal(t, models.EventErrorReported, ev.Type)
	assert.Equal(t, "Error fetching titles", ev.Message)
	assert.Equal(t, map[string]interface{}{"error": "boom"}, ev.Data)
}

func TestHubStream(t *testing.T) {
	hub := NewHub(4)
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Stream(r.Context(), conn)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		subs, _ := hub.Stats()
		return subs == 1
	}, time.Second, 10*time.Millisecond)

	hub.Publish(models.Event{Type: models.EventRosterUpdated, Message: "roster pulled"})

	var ev models.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, models.EventRosterUpdated, ev.Type)
	assert.Equal(t, "roster pulled", ev.Message)
}
