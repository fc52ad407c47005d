package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/entity"
)

const createPath = "/meeting/create"

var extByMIME = map[string]string{
	"audio/webm": ".webm",
	"audio/mpeg": ".mp3",
	"audio/mp4":  ".mp4",
	"audio/wav":  ".wav",
	"audio/ogg":  ".ogg",
	"audio/flac": ".flac",
}

// Client packages audio assets, raw files, and transcripts into multipart
// requests against the backend ingestion endpoint. Payload bytes are passed
// through untouched, never re-encoded. One attempt, no retry; failures
// surface verbatim.
type Client struct {
	baseURL     string
	meetingType string
	httpClient  *http.Client
	log         *slog.Logger
}

func New(baseURL, meetingType string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	log.Debug("creating uploader client",
		slog.String("base_url", baseURL),
		slog.String("meeting_type", meetingType),
		slog.Duration("timeout", timeout))
	return &Client{
		baseURL:     baseURL,
		meetingType: meetingType,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

type filePart struct {
	filename string
	data     []byte
}

// Upload sends a finalized recording asset.
func (c *Client) Upload(ctx context.Context, asset *entity.AudioAsset, label string) (*entity.SummaryResult, error) {
	ext, ok := extByMIME[asset.MIMEType]
	if !ok {
		ext = ".webm"
	}
	filename := fmt.Sprintf("recording-%d%s", time.Now().Unix(), ext)

	c.log.Info("uploading recording asset",
		slog.String("label", label),
		slog.String("filename", filename),
		slog.Int("bytes", len(asset.Data)))
	return c.create(ctx, label, "", &filePart{filename: filename, data: asset.Data})
}

// UploadFile sends a user-selected file as-is.
func (c *Client) UploadFile(ctx context.Context, filename string, data []byte, label string) (*entity.SummaryResult, error) {
	c.log.Info("uploading file",
		slog.String("label", label),
		slog.String("filename", filename),
		slog.Int("bytes", len(data)))
	return c.create(ctx, label, "", &filePart{filename: filename, data: data})
}

// UploadTranscript sends pasted transcript text instead of audio.
func (c *Client) UploadTranscript(ctx context.Context, transcript, label string) (*entity.SummaryResult, error) {
	c.log.Info("uploading transcript",
		slog.String("label", label),
		slog.Int("length", len(transcript)))
	return c.create(ctx, label, transcript, nil)
}

func (c *Client) create(ctx context.Context, label, transcript string, file *filePart) (*entity.SummaryResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("title", label); err != nil {
		return nil, err
	}
	if err := writer.WriteField("type", c.meetingType); err != nil {
		return nil, err
	}
	if transcript != "" {
		if err := writer.WriteField("transcript", transcript); err != nil {
			return nil, err
		}
	}
	if file != nil {
		part, err := writer.CreateFormFile("file", file.filename)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(file.data); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	url := c.baseURL + createPath
	c.log.Debug("sending multipart request", slog.String("url", url), slog.Int("body_size", body.Len()))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("request failed", slog.String("url", url), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", entity.ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", entity.ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error("server rejected upload",
			slog.Int("status_code", resp.StatusCode),
			slog.String("body", string(respBody)))
		return nil, &entity.ServerError{Code: resp.StatusCode, Body: string(respBody)}
	}

	var out entity.UploadResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	c.log.Info("upload accepted", slog.Int64("meeting_id", out.ID))

	if out.AIOutput == nil {
		return &entity.SummaryResult{}, nil
	}
	return out.AIOutput, nil
}
