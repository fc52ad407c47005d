package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/Princerai504/meetingbot/services/meeting/entity"
)

const summaryPrompt = `
Analyze this meeting and provide a comprehensive structured summary.

Return ONLY valid JSON in this exact structure:
{
    "summary": "Brief 2-3 sentence overview of the meeting",
    "key_points": ["Point 1", "Point 2", "Point 3"],
    "decisions": ["Decision 1", "Decision 2"],
    "action_items": [
        {"task": "Task description", "owner": "Person Name", "status": "Pending"}
    ],
    "agenda": ["Topic 1", "Topic 2", "Topic 3"]
}
`

var mimeTypes = map[string]string{
	".webm": "audio/webm",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
}

// Summarizer turns meeting audio or a transcript into a structured summary.
// Implementations never return an error payload the caller cannot display:
// on exhaustion a deterministic fallback output is produced instead.
type Summarizer interface {
	SummarizeAudio(ctx context.Context, path string) (*entity.AIOutput, error)
	SummarizeTranscript(ctx context.Context, transcript string) (*entity.AIOutput, error)
}

type gemini struct {
	apiKey     string
	model      string
	maxRetries int
	retryDelay time.Duration
	log        *slog.Logger
}

// New builds a Gemini-backed summarizer. Audio is sent as inline bytes, so
// no file upload or polling round trips are involved.
func New(apiKey string, log *slog.Logger) Summarizer {
	log.Debug("creating gemini summarizer",
		slog.String("model", "gemini-3-flash-preview"),
		slog.Bool("api_key_set", apiKey != ""))
	return &gemini{
		apiKey:     apiKey,
		model:      "gemini-3-flash-preview",
		maxRetries: 3,
		retryDelay: 3 * time.Second,
		log:        log,
	}
}

func (g *gemini) SummarizeAudio(ctx context.Context, path string) (*entity.AIOutput, error) {
	g.log.Info("summarizing audio", slog.String("path", path))

	if g.apiKey == "" {
		g.log.Error("gemini api key not configured")
		return fallback("Gemini client not initialized. Check API key."), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		mimeType = "audio/webm"
	}
	g.log.Debug("audio loaded",
		slog.Int("bytes", len(data)),
		slog.String("mime_type", mimeType))

	parts := []*genai.Part{
		genai.NewPartFromText(summaryPrompt),
		genai.NewPartFromBytes(data, mimeType),
	}
	return g.generate(ctx, []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)})
}

func (g *gemini) SummarizeTranscript(ctx context.Context, transcript string) (*entity.AIOutput, error) {
	g.log.Info("summarizing transcript", slog.Int("length", len(transcript)))

	if g.apiKey == "" {
		g.log.Error("gemini api key not configured")
		return fallback("Gemini client not initialized. Check API key."), nil
	}

	prompt := fmt.Sprintf("%s\n\nMeeting Transcript:\n%s", summaryPrompt, transcript)
	return g.generate(ctx, genai.Text(prompt))
}

func (g *gemini) generate(ctx context.Context, contents []*genai.Content) (*entity.AIOutput, error) {
	var lastErr error

	for attempt := 1; attempt <= g.maxRetries; attempt++ {
		out, err := g.generateOnce(ctx, contents)
		if err == nil {
			g.log.Info("content generation successful", slog.Int("attempt", attempt))
			return out, nil
		}

		lastErr = err
		g.log.Error("generation attempt failed",
			slog.Int("attempt", attempt),
			slog.Int("max_retries", g.maxRetries),
			slog.String("error", err.Error()))
		if attempt < g.maxRetries {
			select {
			case <-time.After(g.retryDelay):
			case <-ctx.Done():
				return fallback(ctx.Err().Error()), nil
			}
		}
	}

	return fallback(lastErr.Error()), nil
}

func (g *gemini) generateOnce(ctx context.Context, contents []*genai.Content) (*entity.AIOutput, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	result, err := client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, fmt.Errorf("empty response from gemini")
	}

	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return parseAIOutput(text)
}

// parseAIOutput decodes the model's strict-JSON reply. Some model versions
// wrap the object in a one-element array.
func parseAIOutput(text string) (*entity.AIOutput, error) {
	var out entity.AIOutput
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return &out, nil
	}

	var list []entity.AIOutput
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("model returned an empty array")
	}
	return &list[0], nil
}

// fallback is the deterministic payload returned when AI processing fails,
// so the record pipeline still completes with something displayable.
func fallback(errMsg string) *entity.AIOutput {
	summary := "AI generation failed."
	if errMsg != "" {
		summary += " Error: " + errMsg
	}

	return &entity.AIOutput{
		Summary:   summary,
		KeyPoints: []string{"Unable to process meeting content", "Check API configuration", "Ensure audio file is valid"},
		Decisions: []string{"Review API key and try again"},
		ActionItems: []entity.ActionItem{
			{Task: "Check Gemini API Key", Owner: "Developer", Status: "Pending"},
			{Task: "Verify audio format", Owner: "Developer", Status: "Pending"},
		},
		Agenda: []string{"API Configuration", "File Format"},
	}
}
