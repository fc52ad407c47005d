package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	config "github.com/Princerai504/meetingbot/config/capture"
	"github.com/Princerai504/meetingbot/services/capture/coordinator"
	"github.com/Princerai504/meetingbot/services/capture/presentation"
	"github.com/Princerai504/meetingbot/services/capture/recorder"
	"github.com/Princerai504/meetingbot/services/capture/stream"
	"github.com/Princerai504/meetingbot/services/capture/uploader"
)

// gestureTTL is how long the command invocation counts as a live user
// gesture for stream acquisition.
const gestureTTL = 2 * time.Second

func newRecordCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	var tabID string
	var tabURL string
	var streaming bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record tab audio until interrupted, then upload",
		Long:  "Start a recording session over audio piped to stdin, stop on Ctrl+C, and upload the finalized asset for summarization.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cfg, log, tabID, tabURL, streaming)
		},
	}

	cmd.Flags().StringVar(&tabID, "tab", "tab-1", "Identifier of the tab being captured")
	cmd.Flags().StringVar(&tabURL, "url", "https://meet.google.com/", "URL of the tab being captured")
	cmd.Flags().BoolVar(&streaming, "streaming", false, "Flush 10s segments instead of 1s")

	return cmd
}

func runRecord(cfg *config.Config, log *slog.Logger, tabID, tabURL string, streaming bool) error {
	tabs := stream.NewTabSource(stream.PermitAll)
	tabs.RegisterTab(tabID, stream.TabInfo{URL: tabURL, Active: true})
	src := stream.NewReaderSource(tabs, os.Stdin)

	rec := recorder.New(recorder.Capabilities{OffscreenDocument: cfg.OffscreenRecorder}, log)

	up := uploader.New(cfg.BackendURL, cfg.MeetingType,
		time.Duration(cfg.UploadTimeoutSec)*time.Second, log)

	chunkInterval := time.Duration(cfg.ChunkIntervalMS) * time.Millisecond
	if streaming {
		chunkInterval = recorder.StreamingChunkInterval
	}

	coord := coordinator.New(coordinator.Config{
		ChunkInterval: chunkInterval,
		UploadTimeout: time.Duration(cfg.UploadTimeoutSec) * time.Second,
		TitlePrefix:   cfg.TitlePrefix,
	}, src, rec, up, log)
	defer coord.Close()

	surface := presentation.New(coord, up, os.Stdout, log)

	ctx := context.Background()
	if err := surface.Activate(ctx); err != nil {
		surface.Render()
		return err
	}

	if err := surface.Start(ctx, tabID, stream.NewGesture(gestureTTL)); err != nil {
		surface.Render()
		return err
	}
	surface.Render()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	asset, err := surface.Stop(ctx)
	if err != nil {
		surface.Render()
		return err
	}
	log.Info("recording finalized",
		slog.Int("segments", asset.Segments),
		slog.Int("bytes", len(asset.Data)))
	surface.Render()

	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(cfg.UploadTimeoutSec)*time.Second)
	defer cancel()
	if err := surface.AwaitUpload(waitCtx); err != nil {
		surface.Render()
		return err
	}
	surface.Render()
	return nil
}
