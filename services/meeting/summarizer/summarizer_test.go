package summarizer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMissingAPIKeyFallsBack(t *testing.T) {
	s := New("", testLogger())
	ctx := context.Background()

	out, err := s.SummarizeTranscript(ctx, "some transcript")
	require.NoError(t, err, "a missing key degrades, it does not fail the pipeline")
	assert.Contains(t, out.Summary, "Gemini client not initialized")
	assert.NotEmpty(t, out.KeyPoints)
	assert.NotEmpty(t, out.ActionItems)
}

func TestSummarizeAudioMissingFile(t *testing.T) {
	s := New("test-key", testLogger())
	_, err := s.SummarizeAudio(context.Background(), "/nonexistent/recording.webm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read audio file")
}

func TestParseAIOutput(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		out, err := parseAIOutput(`{"summary":"short sync","key_points":["a"],"agenda":["intro"]}`)
		require.NoError(t, err)
		assert.Equal(t, "short sync", out.Summary)
		assert.Equal(t, []string{"a"}, out.KeyPoints)
		assert.Equal(t, []string{"intro"}, out.Agenda)
	})

	t.Run("object wrapped in array", func(t *testing.T) {
		out, err := parseAIOutput(`[{"summary":"wrapped"}]`)
		require.NoError(t, err)
		assert.Equal(t, "wrapped", out.Summary)
	})

	t.Run("action items decode", func(t *testing.T) {
		out, err := parseAIOutput(`{"action_items":[{"task":"send notes","owner":"Sam","status":"Pending"}]}`)
		require.NoError(t, err)
		require.Len(t, out.ActionItems, 1)
		assert.Equal(t, "send notes", out.ActionItems[0].Task)
		assert.Equal(t, "Sam", out.ActionItems[0].Owner)
	})

	t.Run("not json", func(t *testing.T) {
		_, err := parseAIOutput("I am not JSON")
		assert.Error(t, err)
	})

	t.Run("empty array", func(t *testing.T) {
		_, err := parseAIOutput(`[]`)
		assert.Error(t, err)
	})
}

func TestFallbackPayload(t *testing.T) {
	out := fallback("deadline exceeded")
	assert.Equal(t, "AI generation failed. Error: deadline exceeded", out.Summary)
	assert.Len(t, out.KeyPoints, 3)
	assert.Len(t, out.ActionItems, 2)
	assert.Equal(t, "Developer", out.ActionItems[0].Owner)

	out = fallback("")
	assert.Equal(t, "AI generation failed.", out.Summary)
}

func TestAudioMIMETypes(t *testing.T) {
	assert.Equal(t, "audio/webm", mimeTypes[".webm"])
	assert.Equal(t, "audio/mpeg", mimeTypes[".mp3"])
	assert.Equal(t, "audio/mp4", mimeTypes[".m4a"])
	assert.Equal(t, "audio/flac", mimeTypes[".flac"])
}
