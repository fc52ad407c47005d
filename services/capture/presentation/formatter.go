package presentation

import (
	"fmt"
	"io"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/entity"
)

// Formatter renders view states as terminal output.
type Formatter struct {
	w io.Writer
}

func NewFormatter(w io.Writer) *Formatter {
	return &Formatter{w: w}
}

func (f *Formatter) Idle() {
	fmt.Fprintf(f.w, "💤 Idle. Start a recording or upload a file.\n")
}

func (f *Formatter) Recording(elapsed time.Duration) {
	fmt.Fprintf(f.w, "🔴 Recording... (%s)\n", formatDuration(elapsed))
}

func (f *Formatter) Processing() {
	fmt.Fprintf(f.w, "🤖 Processing meeting audio...\n")
}

func (f *Formatter) Error(msg string) {
	fmt.Fprintf(f.w, "❌ %s\n", msg)
}

func (f *Formatter) RecordingStarted(tabID string) {
	fmt.Fprintf(f.w, "🎙️  Recording started on tab %s\n", tabID)
}

func (f *Formatter) RecordingStopped(elapsed time.Duration) {
	fmt.Fprintf(f.w, "⏹️  Recording stopped (%s)\n", formatDuration(elapsed))
}

// Results prints whichever summary fields are present; a sparse result is
// rendered without placeholders for the missing sections.
func (f *Formatter) Results(r *entity.SummaryResult) {
	fmt.Fprintf(f.w, "✅ Meeting summary ready\n\n")
	if r == nil {
		return
	}

	if r.Summary != "" {
		fmt.Fprintf(f.w, "%s\n", r.Summary)
	}
	if len(r.Agenda) > 0 {
		fmt.Fprintf(f.w, "\n📋 Agenda:\n")
		for _, item := range r.Agenda {
			fmt.Fprintf(f.w, "  • %s\n", item)
		}
	}
	if len(r.KeyPoints) > 0 {
		fmt.Fprintf(f.w, "\n💡 Key points:\n")
		for _, p := range r.KeyPoints {
			fmt.Fprintf(f.w, "  • %s\n", p)
		}
	}
	if len(r.Decisions) > 0 {
		fmt.Fprintf(f.w, "\n⚖️  Decisions:\n")
		for _, d := range r.Decisions {
			fmt.Fprintf(f.w, "  • %s\n", d)
		}
	}
	if len(r.ActionItems) > 0 {
		fmt.Fprintf(f.w, "\n📌 Action items:\n")
		for _, a := range r.ActionItems {
			owner := a.Owner
			if owner == "" {
				owner = "Unassigned"
			}
			fmt.Fprintf(f.w, "  • %s (%s, %s)\n", a.Task, owner, a.Status)
		}
	}
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
