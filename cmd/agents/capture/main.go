package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	config "github.com/Princerai504/meetingbot/config/capture"
	"github.com/Princerai504/meetingbot/pkg/logger"
)

func main() {
	log := logger.New(logger.Config{
		Level:      slog.LevelInfo,
		Output:     os.Stderr,
		AddSource:  false,
		JSONFormat: false,
	})

	cfg := config.MustLoad()

	rootCmd := &cobra.Command{
		Use:   "capture",
		Short: "Record tab audio and send it to the meeting backend",
		Long:  "Capture agent: records tab audio (fed on stdin), uploads finished recordings to the meeting backend, and prints the AI summary.",
	}
	rootCmd.AddCommand(newRecordCmd(cfg, log))
	rootCmd.AddCommand(newUploadCmd(cfg, log))
	rootCmd.AddCommand(newTranscriptCmd(cfg, log))
	rootCmd.AddCommand(newStatusCmd(cfg, log))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
