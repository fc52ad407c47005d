package entity

import "time"

type Source string

const (
	SourceUpload Source = "upload"
	SourceBot    Source = "bot"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusRecording  Status = "recording"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

type ActionItem struct {
	Task   string `json:"task"`
	Owner  string `json:"owner"`
	Status string `json:"status"`
}

// AIOutput is the structured summary produced by the Gemini collaborator.
type AIOutput struct {
	Summary     string       `json:"summary"`
	KeyPoints   []string     `json:"key_points"`
	Decisions   []string     `json:"decisions"`
	ActionItems []ActionItem `json:"action_items"`
	Agenda      []string     `json:"agenda"`
}

type Meeting struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	Transcript string    `json:"transcript,omitempty"`
	AIOutput   *AIOutput `json:"ai_output,omitempty"`
	FilePath   string    `json:"file_path,omitempty"`
	Source     Source    `json:"source"`
	Status     Status    `json:"status"`
}

// CreateMeetingRequest carries one ingestion request through the usecase.
// FileName and FileData are set when a binary upload accompanies the form.
type CreateMeetingRequest struct {
	Title      string
	Type       string
	Transcript string
	FileName   string
	FileData   []byte
}
