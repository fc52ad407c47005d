package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	config "github.com/Princerai504/meetingbot/config/capture"
	"github.com/Princerai504/meetingbot/gateways/api/ws"
	"github.com/Princerai504/meetingbot/services/meeting/entity"
)

func newStatusCmd(cfg *config.Config, log *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "status <meeting-id>",
		Short: "Follow a meeting's processing status",
		Long:  "Subscribe to the backend status feed for a meeting and print updates until it reaches a terminal state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid meeting id %q", args[0])
			}
			return followStatus(cfg, log, id)
		},
	}
}

func followStatus(cfg *config.Config, log *slog.Logger, id int64) error {
	wsURL, err := statusFeedURL(cfg.BackendURL, id)
	if err != nil {
		return err
	}
	log.Debug("dialing status feed", slog.String("url", wsURL))

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to status feed: %w", err)
	}
	defer conn.Close()

	for {
		var update ws.StatusUpdate
		if err := conn.ReadJSON(&update); err != nil {
			// The feed closes itself after the terminal frame.
			return nil
		}

		if !update.Found {
			fmt.Fprintf(os.Stdout, "❓ Meeting %d not found\n", update.MeetingID)
			continue
		}
		fmt.Fprintf(os.Stdout, "📡 Meeting %d: %s\n", update.MeetingID, update.Status)

		if update.Status == entity.StatusCompleted || update.Status == entity.StatusError {
			return nil
		}
	}
}

func statusFeedURL(backendURL string, id int64) (string, error) {
	u, err := url.Parse(backendURL)
	if err != nil {
		return "", fmt.Errorf("invalid backend url: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/meeting/ws/" + strconv.FormatInt(id, 10)
	return u.String(), nil
}
