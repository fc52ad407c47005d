package presentation

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/coordinator"
	"github.com/Princerai504/meetingbot/services/capture/entity"
	"github.com/Princerai504/meetingbot/services/capture/stream"
)

// ViewState is what the surface currently shows. It is derived state only;
// the surface never mutates session state itself.
type ViewState string

const (
	ViewIdle       ViewState = "idle"
	ViewRecording  ViewState = "recording"
	ViewProcessing ViewState = "processing"
	ViewResults    ViewState = "results"
	ViewError      ViewState = "error"
)

// FileUploader covers the manual file-upload path, which bypasses the
// coordinator entirely.
type FileUploader interface {
	UploadFile(ctx context.Context, filename string, data []byte, label string) (*entity.SummaryResult, error)
}

// Surface is a pure state-driven renderer over the coordinator. Surfaces are
// short-lived: one may be torn down while recording continues in the
// coordinator's context, so every new surface reconciles through
// QueryStatus before rendering anything.
type Surface struct {
	coord *coordinator.Coordinator
	files FileUploader
	out   *Formatter
	log   *slog.Logger

	state     ViewState
	startedAt time.Time
	result    *entity.SummaryResult
	message   string
}

func New(coord *coordinator.Coordinator, files FileUploader, w io.Writer, log *slog.Logger) *Surface {
	return &Surface{
		coord: coord,
		files: files,
		out:   NewFormatter(w),
		log:   log,
		state: ViewIdle,
	}
}

func (s *Surface) State() ViewState {
	return s.state
}

func (s *Surface) StartedAt() time.Time {
	return s.startedAt
}

func (s *Surface) Result() *entity.SummaryResult {
	return s.result
}

func (s *Surface) Message() string {
	return s.message
}

// Activate reconciles the view with the coordinator's true state. A closed
// channel means the remote state is unknown, so the query is retried rather
// than assumed failed.
func (s *Surface) Activate(ctx context.Context) error {
	var snap entity.StatusSnapshot
	var err error
	for attempt := 0; attempt < 3; attempt++ {
		snap, err = s.coord.QueryStatus(ctx)
		if err == nil {
			break
		}
		if !errors.Is(err, entity.ErrChannelClosed) {
			s.setError(err)
			return err
		}
		s.log.Warn("status query channel closed, re-querying", slog.Int("attempt", attempt+1))
	}
	if err != nil {
		s.setError(err)
		return err
	}

	switch snap.Status {
	case entity.StatusRecording:
		s.state = ViewRecording
		s.startedAt = snap.StartedAt
	case entity.StatusRequesting, entity.StatusStopping, entity.StatusFinalizing:
		s.state = ViewProcessing
	case entity.StatusFailed:
		s.state = ViewError
		s.message = "recording failed"
	default:
		s.state = ViewIdle
	}
	s.log.Debug("surface reconciled",
		slog.String("session_status", string(snap.Status)),
		slog.String("view", string(s.state)))
	return nil
}

// Start issues a start command. The gesture must still be live when the
// coordinator acquires the stream.
func (s *Surface) Start(ctx context.Context, tabID string, gesture *stream.Gesture) error {
	if err := s.coord.Start(ctx, tabID, gesture); err != nil {
		if errors.Is(err, entity.ErrChannelClosed) {
			// Unknown remote state: reconcile instead of assuming failure.
			return s.Activate(ctx)
		}
		s.setError(err)
		return err
	}

	snap, err := s.coord.QueryStatus(ctx)
	if err == nil {
		s.startedAt = snap.StartedAt
	}
	s.state = ViewRecording
	s.result = nil
	s.message = ""
	return nil
}

// Stop finalizes the session. On success the surface shows processing until
// AwaitUpload resolves the outcome.
func (s *Surface) Stop(ctx context.Context) (*entity.AudioAsset, error) {
	asset, err := s.coord.Stop(ctx)
	if err != nil {
		if errors.Is(err, entity.ErrChannelClosed) {
			return nil, s.Activate(ctx)
		}
		s.setError(err)
		return nil, err
	}
	s.state = ViewProcessing
	return asset, nil
}

// AwaitUpload blocks until the handed-off upload finishes and moves the view
// to results or error accordingly.
func (s *Surface) AwaitUpload(ctx context.Context) error {
	select {
	case ev := <-s.coord.Events():
		if ev.Err != nil {
			s.setError(ev.Err)
			return ev.Err
		}
		s.state = ViewResults
		s.result = ev.Result
		return nil
	case <-ctx.Done():
		s.setError(ctx.Err())
		return ctx.Err()
	}
}

// UploadLocalFile sends a user-selected file straight to the backend.
func (s *Surface) UploadLocalFile(ctx context.Context, path, label string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		s.setError(err)
		return err
	}

	s.state = ViewProcessing
	s.Render()

	result, err := s.files.UploadFile(ctx, filepath.Base(path), data, label)
	if err != nil {
		s.setError(err)
		return err
	}
	s.state = ViewResults
	s.result = result
	return nil
}

// Reset discards the session and clears the view.
func (s *Surface) Reset(ctx context.Context) error {
	if err := s.coord.Reset(ctx); err != nil && !errors.Is(err, entity.ErrChannelClosed) {
		return err
	}
	s.state = ViewIdle
	s.startedAt = time.Time{}
	s.result = nil
	s.message = ""
	return nil
}

// setError resolves any failure to a human-readable error display. Server
// errors show the response body verbatim.
func (s *Surface) setError(err error) {
	s.state = ViewError
	var se *entity.ServerError
	if errors.As(err, &se) {
		s.message = se.Body
		return
	}
	s.message = err.Error()
}

// Render writes the current view to the surface's writer.
func (s *Surface) Render() {
	switch s.state {
	case ViewRecording:
		s.out.Recording(time.Since(s.startedAt))
	case ViewProcessing:
		s.out.Processing()
	case ViewResults:
		s.out.Results(s.result)
	case ViewError:
		s.out.Error(s.message)
	default:
		s.out.Idle()
	}
}
