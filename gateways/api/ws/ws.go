package ws

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
	"github.com/Princerai504/meetingbot/services/meeting/storage"
	"github.com/Princerai504/meetingbot/topics"
)

const (
	pushInterval = 2 * time.Second
	writeWait    = 10 * time.Second
)

var statusTopic = topics.New("meeting", "status")

// StatusUpdate is one frame of the status feed.
type StatusUpdate struct {
	Topic     string        `json:"topic"`
	MeetingID int64         `json:"meeting_id"`
	Status    entity.Status `json:"status"`
	Found     bool          `json:"found"`
}

// Feed pushes a meeting's status to websocket subscribers every two seconds
// until the meeting reaches a terminal state or the client goes away.
type Feed struct {
	storage  storage.Storage
	upgrader websocket.Upgrader
	log      *slog.Logger
}

func NewFeed(st storage.Storage, log *slog.Logger) *Feed {
	return &Feed{
		storage: st,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log,
	}
}

func (f *Feed) RegisterRoutes(r chi.Router) {
	r.Get("/meeting/ws/{id}", f.StatusSocket)
}

func (f *Feed) StatusSocket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid meeting id", http.StatusBadRequest)
		return
	}

	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.log.Error("websocket upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()
	f.log.Info("status subscriber connected",
		slog.Int64("meeting_id", id),
		slog.String("remote_addr", r.RemoteAddr))

	// Discard inbound frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for {
		update := f.snapshot(r, id)

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(update); err != nil {
			f.log.Debug("subscriber gone", slog.Int64("meeting_id", id), slog.String("error", err.Error()))
			return
		}

		if update.Status == entity.StatusCompleted || update.Status == entity.StatusError {
			f.log.Info("meeting reached terminal state, closing feed",
				slog.Int64("meeting_id", id),
				slog.String("status", string(update.Status)))
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

func (f *Feed) snapshot(r *http.Request, id int64) StatusUpdate {
	update := StatusUpdate{
		Topic:     statusTopic.FullName(),
		MeetingID: id,
	}

	meeting, err := f.storage.GetMeeting(r.Context(), id)
	if err != nil {
		if !errors.Is(err, storage.ErrMeetingNotFound) {
			f.log.Error("status lookup failed", slog.Int64("meeting_id", id), slog.String("error", err.Error()))
		}
		return update
	}

	update.Found = true
	update.Status = meeting.Status
	return update
}
