package coordinator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Princerai504/meetingbot/pkg/gen"
	"github.com/Princerai504/meetingbot/services/capture/entity"
	"github.com/Princerai504/meetingbot/services/capture/recorder"
	"github.com/Princerai504/meetingbot/services/capture/stream"
)

// Uploader receives finalized assets. Upload must not mutate the payload.
type Uploader interface {
	Upload(ctx context.Context, asset *entity.AudioAsset, label string) (*entity.SummaryResult, error)
}

// UploadDone is the fire-and-forget event emitted when a handed-off upload
// finishes, success or not.
type UploadDone struct {
	Label  string
	Result *entity.SummaryResult
	Err    error
}

type Config struct {
	// ChunkInterval is forwarded to the recorder. Zero means the recorder
	// default.
	ChunkInterval time.Duration
	// ReplyWait bounds every cross-context call; an unanswered command is
	// ErrChannelClosed, never a hang.
	ReplyWait time.Duration
	// UploadTimeout bounds the backend call for a handed-off asset.
	UploadTimeout time.Duration
	// TitlePrefix labels uploaded recordings.
	TitlePrefix string
}

func (c *Config) defaults() {
	if c.ReplyWait <= 0 {
		c.ReplyWait = 5 * time.Second
	}
	if c.UploadTimeout <= 0 {
		c.UploadTimeout = 2 * time.Minute
	}
	if c.TitlePrefix == "" {
		c.TitlePrefix = "Tab Recording"
	}
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdStop
	cmdQuery
	cmdReset
)

type command struct {
	kind    cmdKind
	ctx     context.Context
	tabID   string
	gesture *stream.Gesture
	reply   chan result
}

type result struct {
	asset *entity.AudioAsset
	snap  entity.StatusSnapshot
	err   error
}

// Coordinator is the only process-wide authority on "is a recording active
// right now". All session state lives inside its message loop; callers in
// other contexts reach it exclusively through command messages, so the
// at-most-one-session invariant holds by construction, not by locking.
type Coordinator struct {
	cfg      Config
	log      *slog.Logger
	src      stream.Source
	rec      recorder.Recorder
	uploader Uploader

	cmds    chan command
	events  chan UploadDone
	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	ids     gen.UUIDGenerator

	// Owned by the loop goroutine; never touched elsewhere.
	session entity.RecordingSession
}

func New(cfg Config, src stream.Source, rec recorder.Recorder, up Uploader, log *slog.Logger) *Coordinator {
	cfg.defaults()
	log.Debug("creating session coordinator",
		slog.Duration("reply_wait", cfg.ReplyWait),
		slog.Duration("upload_timeout", cfg.UploadTimeout))

	c := &Coordinator{
		cfg:      cfg,
		log:      log,
		src:      src,
		rec:      rec,
		uploader: up,
		cmds:     make(chan command),
		events:   make(chan UploadDone, 4),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
		ids:      gen.UUID(),
	}
	c.session.Reset()
	go c.loop()
	return c
}

// Events delivers upload outcomes to whichever presentation context is
// listening. Events are dropped, not queued forever, when nobody listens.
func (c *Coordinator) Events() <-chan UploadDone {
	return c.events
}

// Close tears the coordinator down. A recording still in flight is finalized
// and discarded so the capture indicator does not outlive the process.
func (c *Coordinator) Close() {
	c.once.Do(func() { close(c.closing) })
	<-c.done
}

func (c *Coordinator) loop() {
	defer close(c.done)
	c.log.Info("session coordinator started")

	for {
		select {
		case <-c.closing:
			if c.session.Status == entity.StatusRecording {
				c.log.Warn("shutting down with active recording, discarding")
				if _, err := c.rec.End(); err != nil {
					c.log.Error("failed to finalize on shutdown", slog.String("error", err.Error()))
				}
			}
			c.session.Reset()
			c.log.Info("session coordinator stopped")
			return
		case fault := <-c.rec.Faults():
			c.handleFault(fault)
		case cmd := <-c.cmds:
			c.dispatch(cmd)
		}
	}
}

func (c *Coordinator) dispatch(cmd command) {
	switch cmd.kind {
	case cmdStart:
		cmd.reply <- result{err: c.handleStart(cmd)}
	case cmdStop:
		asset, err := c.handleStop()
		cmd.reply <- result{asset: asset, err: err}
	case cmdQuery:
		cmd.reply <- result{snap: entity.StatusSnapshot{
			SessionID: c.session.ID,
			Status:    c.session.Status,
			StartedAt: c.session.StartedAt,
		}}
	case cmdReset:
		cmd.reply <- result{err: c.handleReset()}
	}
}

func (c *Coordinator) handleStart(cmd command) error {
	c.log.Info("start requested", slog.String("tab_id", cmd.tabID))

	if c.session.Status != entity.StatusIdle {
		c.log.Warn("start rejected, session already active",
			slog.String("status", string(c.session.Status)),
			slog.String("active_tab", c.session.TargetTabID))
		return entity.ErrAlreadyRecording
	}

	c.session.ID = c.ids.NextString()
	c.session.Status = entity.StatusRequesting
	c.session.TargetTabID = cmd.tabID

	// Acquire synchronously inside the command so the user gesture is not
	// deferred across an async boundary that loses it.
	handle, err := c.src.Acquire(cmd.ctx, cmd.tabID, cmd.gesture)
	if err != nil {
		c.log.Error("stream acquisition failed",
			slog.String("tab_id", cmd.tabID),
			slog.String("error", err.Error()))
		c.session.Reset()
		return err
	}
	c.log.Debug("stream handle acquired", slog.String("tab_id", cmd.tabID))

	if err := c.rec.Arm(handle); err != nil {
		c.log.Error("recorder arm failed", slog.String("error", err.Error()))
		handle.Release()
		c.session.Reset()
		return err
	}

	if err := c.rec.Begin(c.cfg.ChunkInterval); err != nil {
		c.log.Error("recorder begin failed", slog.String("error", err.Error()))
		handle.Release()
		c.session.Reset()
		return err
	}

	c.session.Status = entity.StatusRecording
	c.session.StartedAt = time.Now()
	c.log.Info("recording session started",
		slog.String("session_id", c.session.ID),
		slog.String("tab_id", cmd.tabID),
		slog.Time("started_at", c.session.StartedAt))
	return nil
}

func (c *Coordinator) handleStop() (*entity.AudioAsset, error) {
	c.log.Info("stop requested", slog.String("status", string(c.session.Status)))

	if c.session.Status != entity.StatusRecording {
		c.log.Debug("stop is a no-op, nothing recording")
		return nil, entity.ErrNotRecording
	}

	c.session.Status = entity.StatusStopping
	asset, err := c.rec.End()
	if err != nil {
		c.log.Error("finalize failed", slog.String("error", err.Error()))
		c.session.Reset()
		return nil, err
	}

	c.session.Status = entity.StatusFinalizing
	label := fmt.Sprintf("%s %s", c.cfg.TitlePrefix, c.session.StartedAt.Format("2006-01-02 15:04"))
	c.log.Info("asset finalized, handing off to uploader",
		slog.String("label", label),
		slog.Int("segments", asset.Segments),
		slog.Int("bytes", len(asset.Data)))

	// Upload proceeds independently; stop does not block on the network.
	go c.upload(asset, label)

	c.session.Reset()
	return asset, nil
}

func (c *Coordinator) handleReset() error {
	c.log.Info("reset requested", slog.String("status", string(c.session.Status)))

	if c.session.Status == entity.StatusRecording {
		// Abort-without-upload is a stop whose asset is discarded.
		if _, err := c.rec.End(); err != nil {
			c.log.Error("failed to finalize during reset", slog.String("error", err.Error()))
		}
	}
	c.session.Reset()
	return nil
}

func (c *Coordinator) handleFault(fault error) {
	c.log.Error("recorder fault received, discarding session",
		slog.String("error", fault.Error()),
		slog.String("status", string(c.session.Status)))
	c.session.Reset()
}

func (c *Coordinator) upload(asset *entity.AudioAsset, label string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.UploadTimeout)
	defer cancel()

	res, err := c.uploader.Upload(ctx, asset, label)
	if err != nil {
		c.log.Error("upload failed",
			slog.String("label", label),
			slog.String("error", err.Error()))
	} else {
		c.log.Info("upload completed", slog.String("label", label))
	}

	select {
	case c.events <- UploadDone{Label: label, Result: res, Err: err}:
	default:
		c.log.Warn("no listener for upload event, dropping", slog.String("label", label))
	}
}

func (c *Coordinator) send(ctx context.Context, cmd command) (result, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan result, 1)

	select {
	case c.cmds <- cmd:
	case <-c.done:
		return result{}, entity.ErrChannelClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}

	select {
	case res := <-cmd.reply:
		return res, nil
	case <-c.done:
		return result{}, entity.ErrChannelClosed
	case <-time.After(c.cfg.ReplyWait):
		return result{}, entity.ErrChannelClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// Start begins a new recording session on the given tab. At most one session
// may be recording process-wide; a conflicting start fails with
// ErrAlreadyRecording and has no side effects.
func (c *Coordinator) Start(ctx context.Context, tabID string, gesture *stream.Gesture) error {
	res, err := c.send(ctx, command{kind: cmdStart, tabID: tabID, gesture: gesture})
	if err != nil {
		return err
	}
	return res.err
}

// Stop finalizes the active session and returns its asset. The asset has
// already been handed to the uploader by the time Stop returns.
func (c *Coordinator) Stop(ctx context.Context) (*entity.AudioAsset, error) {
	res, err := c.send(ctx, command{kind: cmdStop})
	if err != nil {
		return nil, err
	}
	return res.asset, res.err
}

// QueryStatus reports the true current state. A freshly (re)created
// presentation context must reconcile through this before rendering anything.
func (c *Coordinator) QueryStatus(ctx context.Context) (entity.StatusSnapshot, error) {
	res, err := c.send(ctx, command{kind: cmdQuery})
	if err != nil {
		return entity.StatusSnapshot{}, err
	}
	return res.snap, nil
}

// Reset explicitly discards the current session without uploading.
func (c *Coordinator) Reset(ctx context.Context) error {
	res, err := c.send(ctx, command{kind: cmdReset})
	if err != nil {
		return err
	}
	return res.err
}
