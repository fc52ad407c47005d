package uploader

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Princerai504/meetingbot/services/capture/entity"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUploadSendsMultipartAsset(t *testing.T) {
	var gotTitle, gotType, gotFilename string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/meeting/create", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		gotTitle = r.FormValue("title")
		gotType = r.FormValue("type")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		gotFile, err = io.ReadAll(file)
		require.NoError(t, err)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":7,"ai_output":{"summary":"short sync","key_points":["a","b"]}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "team_meeting", time.Second, testLogger())

	asset := &entity.AudioAsset{
		Data:     []byte("webm bytes"),
		MIMEType: "audio/webm",
		Segments: 3,
	}
	result, err := c.Upload(context.Background(), asset, "Tab Recording 2026-08-27 10:00")
	require.NoError(t, err)

	assert.Equal(t, "Tab Recording 2026-08-27 10:00", gotTitle)
	assert.Equal(t, "team_meeting", gotType)
	assert.Contains(t, gotFilename, "recording-")
	assert.Contains(t, gotFilename, ".webm")
	assert.Equal(t, []byte("webm bytes"), gotFile, "payload bytes pass through untouched")

	require.NotNil(t, result)
	assert.Equal(t, "short sync", result.Summary)
	assert.Equal(t, []string{"a", "b"}, result.KeyPoints)
}

func TestUploadTranscriptOmitsFilePart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		assert.Equal(t, "notes from the call", r.FormValue("transcript"))

		_, _, err := r.FormFile("file")
		assert.ErrorIs(t, err, http.ErrMissingFile)

		w.Write([]byte(`{"id":8,"ai_output":{"summary":"from text"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "team_meeting", time.Second, testLogger())
	result, err := c.UploadTranscript(context.Background(), "notes from the call", "Pasted transcript")
	require.NoError(t, err)
	assert.Equal(t, "from text", result.Summary)
}

func TestUploadFileUsesGivenFilename(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "standup.mp3", header.Filename)
		w.Write([]byte(`{"id":9,"ai_output":null}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "team_meeting", time.Second, testLogger())
	result, err := c.UploadFile(context.Background(), "standup.mp3", []byte("mp3"), "Standup")
	require.NoError(t, err)
	require.NotNil(t, result, "a null ai_output still yields an empty result")
	assert.Empty(t, result.Summary)
}

func TestServerErrorPreservesBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("internal error"))
	}))
	defer srv.Close()

	c := New(srv.URL, "team_meeting", time.Second, testLogger())
	_, err := c.Upload(context.Background(), &entity.AudioAsset{MIMEType: "audio/webm"}, "x")

	var se *entity.ServerError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusInternalServerError, se.Code)
	assert.Equal(t, "internal error", se.Body, "response body kept verbatim for display")
}

func TestTransportFailureIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refused connection

	c := New(srv.URL, "team_meeting", time.Second, testLogger())
	_, err := c.Upload(context.Background(), &entity.AudioAsset{MIMEType: "audio/webm"}, "x")
	assert.ErrorIs(t, err, entity.ErrNetwork)
}

func TestUnknownMIMEFallsBackToWebm(t *testing.T) {
	var filename string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(10<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		filename = header.Filename
		w.Write([]byte(`{"id":1,"ai_output":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "team_meeting", time.Second, testLogger())
	_, err := c.Upload(context.Background(), &entity.AudioAsset{MIMEType: "audio/x-unknown"}, "x")
	require.NoError(t, err)
	assert.Contains(t, filename, ".webm")
}
