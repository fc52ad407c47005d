package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	pkgjson "github.com/Princerai504/meetingbot/pkg/json"
	"github.com/Princerai504/meetingbot/services/meeting/entity"
	"github.com/Princerai504/meetingbot/services/meeting/storage"
	"github.com/Princerai504/meetingbot/services/meeting/usecase"
)

// maxUploadSize caps multipart bodies; recordings beyond this are rejected.
const maxUploadSize = 50 << 20

type Handler struct {
	usecase usecase.Usecase
	log     *slog.Logger
}

func New(uc usecase.Usecase, log *slog.Logger) *Handler {
	log.Debug("creating api handler")
	return &Handler{
		usecase: uc,
		log:     log,
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	h.log.Debug("registering HTTP routes")
	r.Post("/meeting/create", h.CreateMeeting)
	r.Get("/meetings", h.ListMeetings)
	r.Get("/meetings/{id}", h.GetMeeting)
	r.Delete("/meetings/{id}", h.DeleteMeeting)
	r.Get("/health", h.HealthCheck)
	h.log.Info("all routes registered successfully")
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.log.Debug("health check request received", slog.String("remote_addr", r.RemoteAddr))
	pkgjson.WriteJSON(w, http.StatusOK, map[string]bool{"status": true})
}

func (h *Handler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	h.log.Info("create meeting request received",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("user_agent", r.UserAgent()))

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		h.log.Error("failed to parse multipart form", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart form: %w", err))
		return
	}

	req := &entity.CreateMeetingRequest{
		Title:      r.FormValue("title"),
		Type:       r.FormValue("type"),
		Transcript: r.FormValue("transcript"),
	}
	if req.Title == "" {
		h.log.Warn("title is empty")
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("title is required"))
		return
	}
	if req.Type == "" {
		h.log.Warn("type is empty")
		pkgjson.WriteError(w, http.StatusBadRequest, errors.New("type is required"))
		return
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			h.log.Error("failed to read upload", slog.String("error", err.Error()))
			pkgjson.WriteError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload: %w", err))
			return
		}
		req.FileName = header.Filename
		req.FileData = data
		h.log.Debug("upload received",
			slog.String("filename", header.Filename),
			slog.Int("bytes", len(data)))
	case errors.Is(err, http.ErrMissingFile):
		// Transcript-only and no-content requests are valid.
	default:
		h.log.Error("failed to read form file", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusBadRequest, err)
		return
	}

	meeting, err := h.usecase.CreateMeeting(r.Context(), req)
	if err != nil {
		h.log.Error("create meeting failed", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusInternalServerError, err)
		return
	}

	h.log.Info("meeting created", slog.Int64("id", meeting.ID))
	pkgjson.WriteJSON(w, http.StatusOK, meeting)
}

func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	h.log.Debug("list meetings request", slog.Int("skip", skip), slog.Int("limit", limit))

	meetings, err := h.usecase.ListMeetings(r.Context(), skip, limit)
	if err != nil {
		h.log.Error("list meetings failed", slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	if meetings == nil {
		meetings = []*entity.Meeting{}
	}
	pkgjson.WriteJSON(w, http.StatusOK, meetings)
}

func (h *Handler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := meetingID(r)
	if err != nil {
		pkgjson.WriteError(w, http.StatusBadRequest, err)
		return
	}

	meeting, err := h.usecase.GetMeeting(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			pkgjson.WriteError(w, http.StatusNotFound, errors.New("Meeting not found"))
			return
		}
		h.log.Error("get meeting failed", slog.Int64("id", id), slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	pkgjson.WriteJSON(w, http.StatusOK, meeting)
}

func (h *Handler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	id, err := meetingID(r)
	if err != nil {
		pkgjson.WriteError(w, http.StatusBadRequest, err)
		return
	}

	h.log.Info("delete meeting request", slog.Int64("id", id))
	if err := h.usecase.DeleteMeeting(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrMeetingNotFound) {
			pkgjson.WriteError(w, http.StatusNotFound, errors.New("Meeting not found"))
			return
		}
		h.log.Error("delete meeting failed", slog.Int64("id", id), slog.String("error", err.Error()))
		pkgjson.WriteError(w, http.StatusInternalServerError, err)
		return
	}
	pkgjson.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func meetingID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid meeting id %q", raw)
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
