package entity

import "time"

// SessionStatus is the lifecycle state of one capture attempt.
type SessionStatus string

const (
	StatusIdle       SessionStatus = "idle"
	StatusRequesting SessionStatus = "requesting"
	StatusRecording  SessionStatus = "recording"
	StatusStopping   SessionStatus = "stopping"
	StatusFinalizing SessionStatus = "finalizing"
	StatusFailed     SessionStatus = "failed"
)

// RecordingSession is the ephemeral record of a single capture attempt.
// It is owned exclusively by the session coordinator; the recorder mutates
// segments and status only through calls issued by the coordinator.
type RecordingSession struct {
	ID          string
	Status      SessionStatus
	StartedAt   time.Time
	TargetTabID string
	Segments    [][]byte
}

// Reset discards all session state back to idle.
func (s *RecordingSession) Reset() {
	s.ID = ""
	s.Status = StatusIdle
	s.StartedAt = time.Time{}
	s.TargetTabID = ""
	s.Segments = nil
}

// AudioAsset is the immutable result of finalizing a recording session:
// all segments concatenated into a single binary object.
type AudioAsset struct {
	Data     []byte
	MIMEType string
	Segments int
	Duration time.Duration
}

// StatusSnapshot is what QueryStatus returns to a presentation context.
type StatusSnapshot struct {
	SessionID string
	Status    SessionStatus
	StartedAt time.Time
}

// ActionItem is one task extracted by the summarization collaborator.
type ActionItem struct {
	Task   string `json:"task"`
	Owner  string `json:"owner"`
	Status string `json:"status"`
}

// SummaryResult is the structured output of the external summarizer. Every
// field is optional; renderers must cope with any of them being absent.
type SummaryResult struct {
	Summary     string       `json:"summary,omitempty"`
	KeyPoints   []string     `json:"key_points,omitempty"`
	Decisions   []string     `json:"decisions,omitempty"`
	ActionItems []ActionItem `json:"action_items,omitempty"`
	Agenda      []string     `json:"agenda,omitempty"`
}

// UploadResponse is the ingestion endpoint's reply to /meeting/create.
type UploadResponse struct {
	ID       int64          `json:"id"`
	AIOutput *SummaryResult `json:"ai_output"`
}
