package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Princerai504/meetingbot/services/meeting/usecase"
)

// settleDelay gives the writer time to finish before the file is read.
const settleDelay = 500 * time.Millisecond

var audioExts = map[string]bool{
	".webm": true,
	".mp3":  true,
	".mp4":  true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
	".flac": true,
}

// Watcher ingests finished recordings dropped into the recordings directory.
// Ingestion runs concurrently up to a bounded number of workers.
type Watcher struct {
	dir       string
	usecase   usecase.Usecase
	log       *slog.Logger
	watcher   *fsnotify.Watcher
	semaphore chan struct{}
	wg        sync.WaitGroup
}

func New(dir string, uc usecase.Usecase, maxConcurrent int, log *slog.Logger) (*Watcher, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = 2
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fs watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	return &Watcher{
		dir:       dir,
		usecase:   uc,
		log:       log,
		watcher:   fsw,
		semaphore: make(chan struct{}, maxConcurrent),
	}, nil
}

// Start blocks until the context is canceled, ingesting each new audio file
// that appears in the watched directory.
func (w *Watcher) Start(ctx context.Context) error {
	w.log.Info("recording ingest watcher started",
		slog.String("dir", w.dir),
		slog.Int("max_concurrent", cap(w.semaphore)))

	for {
		select {
		case <-ctx.Done():
			w.log.Info("waiting for in-flight ingestions")
			w.wg.Wait()
			w.log.Info("ingest watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&fsnotify.Create != fsnotify.Create {
				continue
			}
			if !isAudioFile(event.Name) {
				w.log.Debug("ignoring non-audio file", slog.String("path", event.Name))
				continue
			}

			w.log.Info("new recording detected", slog.String("path", event.Name))
			time.Sleep(settleDelay)

			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(path string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()

					if _, err := w.usecase.IngestRecording(ctx, path); err != nil {
						w.log.Error("failed to ingest recording",
							slog.String("path", path),
							slog.String("error", err.Error()))
					}
				}(event.Name)
			case <-ctx.Done():
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.log.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

// Stop closes the underlying fs watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func isAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}
