package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	config "github.com/Princerai504/meetingbot/config/capture"
	"github.com/Princerai504/meetingbot/services/capture/presentation"
	"github.com/Princerai504/meetingbot/services/capture/uploader"
)

func newUploadCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "upload <file>",
		Short: "Upload an audio file for summarization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if title == "" {
				title = filepath.Base(path)
			}

			up := uploader.New(cfg.BackendURL, cfg.MeetingType,
				time.Duration(cfg.UploadTimeoutSec)*time.Second, log)
			surface := presentation.New(nil, up, os.Stdout, log)

			ctx, cancel := context.WithTimeout(context.Background(),
				time.Duration(cfg.UploadTimeoutSec)*time.Second)
			defer cancel()

			err := surface.UploadLocalFile(ctx, path, title)
			surface.Render()
			return err
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (defaults to the file name)")
	return cmd
}

func newTranscriptCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "transcript <file>",
		Short: "Upload a text transcript for summarization",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if title == "" {
				title = filepath.Base(path)
			}

			text, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			up := uploader.New(cfg.BackendURL, cfg.MeetingType,
				time.Duration(cfg.UploadTimeoutSec)*time.Second, log)
			out := presentation.NewFormatter(os.Stdout)

			ctx, cancel := context.WithTimeout(context.Background(),
				time.Duration(cfg.UploadTimeoutSec)*time.Second)
			defer cancel()

			out.Processing()
			result, err := up.UploadTranscript(ctx, string(text), title)
			if err != nil {
				out.Error(err.Error())
				return err
			}
			out.Results(result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "Meeting title (defaults to the file name)")
	return cmd
}
