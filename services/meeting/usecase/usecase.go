package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
	"github.com/Princerai504/meetingbot/services/meeting/storage"
	"github.com/Princerai504/meetingbot/services/meeting/summarizer"
)

type Usecase interface {
	CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error)
	ListMeetings(ctx context.Context, skip, limit int) ([]*entity.Meeting, error)
	GetMeeting(ctx context.Context, id int64) (*entity.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
	IngestRecording(ctx context.Context, path string) (*entity.Meeting, error)
}

type usecase struct {
	storage    storage.Storage
	summarizer summarizer.Summarizer
	uploadDir  string
	log        *slog.Logger
}

func New(st storage.Storage, sm summarizer.Summarizer, uploadDir string, log *slog.Logger) Usecase {
	return &usecase{
		storage:    st,
		summarizer: sm,
		uploadDir:  uploadDir,
		log:        log,
	}
}

// CreateMeeting persists the upload, summarizes its content, and stores the
// resulting record. A request with neither transcript nor file still
// succeeds, carrying a "no content" summary.
func (u *usecase) CreateMeeting(ctx context.Context, req *entity.CreateMeetingRequest) (*entity.Meeting, error) {
	u.log.Info("create meeting requested",
		slog.String("title", req.Title),
		slog.String("type", req.Type),
		slog.Bool("has_transcript", req.Transcript != ""),
		slog.Bool("has_file", len(req.FileData) > 0))

	var filePath string
	if len(req.FileData) > 0 {
		if err := os.MkdirAll(u.uploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload dir: %w", err)
		}
		filePath = filepath.Join(u.uploadDir, filepath.Base(req.FileName))
		if err := os.WriteFile(filePath, req.FileData, 0o644); err != nil {
			return nil, fmt.Errorf("failed to save upload: %w", err)
		}
		u.log.Debug("upload saved", slog.String("path", filePath), slog.Int("bytes", len(req.FileData)))
	}

	aiOutput := u.summarize(ctx, req.Transcript, filePath)

	meeting := &entity.Meeting{
		Title:      req.Title,
		Type:       req.Type,
		Timestamp:  time.Now().UTC(),
		Transcript: req.Transcript,
		AIOutput:   aiOutput,
		FilePath:   filePath,
		Source:     entity.SourceUpload,
		Status:     entity.StatusCompleted,
	}

	created, err := u.storage.CreateMeeting(ctx, meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to store meeting: %w", err)
	}
	u.log.Info("meeting created", slog.Int64("id", created.ID))
	return created, nil
}

// IngestRecording picks up a finished recording file dropped into the
// recordings directory and runs it through the same summarize-and-store
// pipeline. The file stays where it is.
func (u *usecase) IngestRecording(ctx context.Context, path string) (*entity.Meeting, error) {
	u.log.Info("ingesting recording", slog.String("path", path))

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	aiOutput := u.summarize(ctx, "", path)

	meeting := &entity.Meeting{
		Title:     name,
		Type:      "bot_recording",
		Timestamp: time.Now().UTC(),
		AIOutput:  aiOutput,
		FilePath:  path,
		Source:    entity.SourceBot,
		Status:    entity.StatusCompleted,
	}

	created, err := u.storage.CreateMeeting(ctx, meeting)
	if err != nil {
		return nil, fmt.Errorf("failed to store ingested meeting: %w", err)
	}
	u.log.Info("recording ingested", slog.Int64("id", created.ID), slog.String("path", path))
	return created, nil
}

func (u *usecase) summarize(ctx context.Context, transcript, filePath string) *entity.AIOutput {
	if transcript == "" && filePath == "" {
		u.log.Warn("no content provided, using empty summary")
		return &entity.AIOutput{
			Summary:     "No content provided for analysis.",
			KeyPoints:   []string{},
			Decisions:   []string{},
			ActionItems: []entity.ActionItem{},
			Agenda:      []string{},
		}
	}

	var (
		out *entity.AIOutput
		err error
	)
	if filePath != "" {
		out, err = u.summarizer.SummarizeAudio(ctx, filePath)
	} else {
		out, err = u.summarizer.SummarizeTranscript(ctx, transcript)
	}
	if err != nil {
		u.log.Error("summarization failed", slog.String("error", err.Error()))
		return &entity.AIOutput{
			Summary:     fmt.Sprintf("Error generating summary: %s", err),
			KeyPoints:   []string{},
			Decisions:   []string{},
			ActionItems: []entity.ActionItem{},
			Agenda:      []string{},
		}
	}
	return out
}

func (u *usecase) ListMeetings(ctx context.Context, skip, limit int) ([]*entity.Meeting, error) {
	if limit <= 0 {
		limit = 100
	}
	return u.storage.ListMeetings(ctx, skip, limit)
}

func (u *usecase) GetMeeting(ctx context.Context, id int64) (*entity.Meeting, error) {
	return u.storage.GetMeeting(ctx, id)
}

// DeleteMeeting removes the record and its stored file, if any.
func (u *usecase) DeleteMeeting(ctx context.Context, id int64) error {
	meeting, err := u.storage.DeleteMeeting(ctx, id)
	if err != nil {
		return err
	}

	if meeting.FilePath != "" {
		if err := os.Remove(meeting.FilePath); err != nil && !os.IsNotExist(err) {
			u.log.Warn("failed to remove meeting file",
				slog.String("path", meeting.FilePath),
				slog.String("error", err.Error()))
		}
	}
	u.log.Info("meeting deleted", slog.Int64("id", id))
	return nil
}
