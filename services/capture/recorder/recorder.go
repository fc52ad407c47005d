package recorder

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/entity"
	"github.com/Princerai504/meetingbot/services/capture/stream"
)

// State is the recorder's own lifecycle, narrower than the session status
// the coordinator tracks.
type State string

const (
	StateIdle      State = "idle"
	StateArmed     State = "armed"
	StateRecording State = "recording"
	StateStopping  State = "stopping"
)

const (
	// DefaultChunkInterval is the design-default flush cadence.
	DefaultChunkInterval = time.Second
	// StreamingChunkInterval is the coarser cadence the upload-chunking
	// variant runs with. Both are valid configurations of the same path.
	StreamingChunkInterval = 10 * time.Second

	// DefaultMIMEType tags finalized assets.
	DefaultMIMEType = "audio/webm"
)

// Recorder owns a single active recording: it consumes a stream handle,
// buffers flushed segments, and on End produces one concatenated asset.
// Faults delivers asynchronous failures (encoder death, stream torn down
// mid-session); any fault discards partial segments and resets to idle.
type Recorder interface {
	Arm(h *stream.Handle) error
	Begin(chunkInterval time.Duration) error
	End() (*entity.AudioAsset, error)
	State() State
	Faults() <-chan error
}

// Capabilities describes what the hosting platform supports. Newer platforms
// delegate recording to an offscreen worker context; older ones record
// directly in the long-lived context.
type Capabilities struct {
	OffscreenDocument bool
}

// New selects a recorder implementation for the detected capabilities.
func New(caps Capabilities, log *slog.Logger) Recorder {
	if caps.OffscreenDocument {
		log.Debug("offscreen capability detected, using delegated recorder")
		return NewOffscreen(log)
	}
	log.Debug("using direct recorder")
	return NewDirect(log)
}

// Direct records in the calling context. A single loop goroutine does every
// flush, which is what guarantees segment arrival order.
type Direct struct {
	log      *slog.Logger
	mimeType string

	mu        sync.Mutex
	state     State
	handle    *stream.Handle
	segments  [][]byte
	startedAt time.Time
	stop      chan chan struct{}
	exited    chan struct{}

	faults chan error
}

func NewDirect(log *slog.Logger) *Direct {
	return &Direct{
		log:      log,
		mimeType: DefaultMIMEType,
		state:    StateIdle,
		faults:   make(chan error, 4),
	}
}

func (d *Direct) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *Direct) Faults() <-chan error {
	return d.faults
}

// Arm binds the recorder to a stream and resets the segment buffer.
func (d *Direct) Arm(h *stream.Handle) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateIdle {
		d.log.Warn("arm rejected", slog.String("state", string(d.state)))
		return entity.ErrAlreadyArmed
	}

	d.handle = h
	d.segments = nil
	d.state = StateArmed
	d.log.Debug("recorder armed", slog.String("tab_id", h.TabID()))
	return nil
}

// Begin starts the periodic flush loop.
func (d *Direct) Begin(chunkInterval time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.state != StateArmed {
		d.log.Warn("begin rejected", slog.String("state", string(d.state)))
		return entity.ErrNotArmed
	}
	if chunkInterval <= 0 {
		chunkInterval = DefaultChunkInterval
	}

	d.state = StateRecording
	d.startedAt = time.Now()
	d.stop = make(chan chan struct{})
	d.exited = make(chan struct{})

	go d.loop(d.handle, chunkInterval, d.stop, d.exited)

	d.log.Info("recording started",
		slog.String("tab_id", d.handle.TabID()),
		slog.Duration("chunk_interval", chunkInterval))
	return nil
}

func (d *Direct) loop(h *stream.Handle, interval time.Duration, stop chan chan struct{}, exited chan struct{}) {
	defer close(exited)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !h.Live() {
				d.fail("stream tracks ended mid-session")
				return
			}
			d.flush(h)
		case done := <-stop:
			// Final in-flight segment.
			d.flush(h)
			close(done)
			return
		}
	}
}

func (d *Direct) flush(h *stream.Handle) {
	b := h.Drain()
	if b == nil {
		return
	}
	d.mu.Lock()
	d.segments = append(d.segments, b)
	n := len(d.segments)
	d.mu.Unlock()
	d.log.Debug("segment flushed", slog.Int("segment", n), slog.Int("bytes", len(b)))
}

// fail tears the session down from inside the loop. Partial segments are
// discarded, never salvaged.
func (d *Direct) fail(reason string) {
	d.mu.Lock()
	if d.handle != nil {
		d.handle.Release()
	}
	d.handle = nil
	d.segments = nil
	d.state = StateIdle
	d.mu.Unlock()

	d.log.Error("recorder fault", slog.String("reason", reason))
	select {
	case d.faults <- &entity.RecorderFault{Reason: reason}:
	default:
	}
}

// End stops the loop, waits for the final flush, concatenates all segments
// into one asset, and releases the stream's tracks.
func (d *Direct) End() (*entity.AudioAsset, error) {
	d.mu.Lock()
	if d.state != StateRecording {
		d.mu.Unlock()
		return nil, entity.ErrNotRecording
	}
	d.state = StateStopping
	stop := d.stop
	exited := d.exited
	d.mu.Unlock()

	done := make(chan struct{})
	select {
	case stop <- done:
		<-done
	case <-exited:
		// A fault won the race and already discarded the session.
		return nil, entity.ErrNotRecording
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var total int
	for _, seg := range d.segments {
		total += len(seg)
	}
	data := make([]byte, 0, total)
	for _, seg := range d.segments {
		data = append(data, seg...)
	}

	asset := &entity.AudioAsset{
		Data:     data,
		MIMEType: d.mimeType,
		Segments: len(d.segments),
		Duration: time.Since(d.startedAt),
	}

	d.handle.Release()
	d.handle = nil
	d.segments = nil
	d.state = StateIdle

	d.log.Info("recording finalized",
		slog.Int("segments", asset.Segments),
		slog.Int("bytes", len(asset.Data)),
		slog.Duration("duration", asset.Duration))
	return asset, nil
}
