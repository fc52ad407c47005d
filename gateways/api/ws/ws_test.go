package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
	"github.com/Princerai504/meetingbot/services/meeting/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFeedServer(t *testing.T, st storage.Storage) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	NewFeed(st, testLogger()).RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestStatusFeedTerminalState(t *testing.T) {
	st := storage.New()
	m, err := st.CreateMeeting(context.Background(), &entity.Meeting{
		Title:  "Standup",
		Status: entity.StatusCompleted,
	})
	require.NoError(t, err)

	srv := newFeedServer(t, st)
	conn := dial(t, srv, "/meeting/ws/1")

	var update StatusUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, "meeting.status", update.Topic)
	assert.Equal(t, m.ID, update.MeetingID)
	assert.True(t, update.Found)
	assert.Equal(t, entity.StatusCompleted, update.Status)

	// Terminal status closes the feed after one frame.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
}

func TestStatusFeedUnknownMeeting(t *testing.T) {
	srv := newFeedServer(t, storage.New())
	conn := dial(t, srv, "/meeting/ws/42")

	var update StatusUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.False(t, update.Found)
	assert.Equal(t, int64(42), update.MeetingID)
	assert.Empty(t, update.Status)
}

func TestStatusFeedTracksProgress(t *testing.T) {
	st := storage.New()
	m, err := st.CreateMeeting(context.Background(), &entity.Meeting{
		Title:  "In progress",
		Status: entity.StatusProcessing,
	})
	require.NoError(t, err)

	srv := newFeedServer(t, st)
	conn := dial(t, srv, "/meeting/ws/1")

	var update StatusUpdate
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, entity.StatusProcessing, update.Status)

	// Flip the meeting to completed; the next push reflects it and ends
	// the stream.
	m.Status = entity.StatusCompleted
	require.NoError(t, st.UpdateMeeting(context.Background(), m))

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&update))
	assert.Equal(t, entity.StatusCompleted, update.Status)
}

func TestStatusSocketBadID(t *testing.T) {
	srv := newFeedServer(t, storage.New())

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/meeting/ws/abc"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 400, resp.StatusCode)
}
