package stream

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/entity"
)

// Track is one audio track of a captured stream. The host platform keeps its
// recording indicator visible for as long as any track is not stopped.
type Track struct {
	mu      sync.Mutex
	kind    string
	stopped bool
}

func (t *Track) Kind() string {
	return t.kind
}

func (t *Track) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
}

func (t *Track) Stopped() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

// Handle is an opaque reference to a live audio-only capture stream bound to
// a specific tab. The capture side pushes encoded chunks in; the recorder
// drains them on each flush tick. Between Arm and End the recorder is the
// only component allowed to drain or stop the stream.
type Handle struct {
	tabID  string
	tracks []*Track

	mu     sync.Mutex
	buf    bytes.Buffer
	closed bool
}

func newHandle(tabID string) *Handle {
	return &Handle{
		tabID:  tabID,
		tracks: []*Track{{kind: "audio"}},
	}
}

func (h *Handle) TabID() string {
	return h.tabID
}

func (h *Handle) Tracks() []*Track {
	return h.tracks
}

// Live reports whether any track is still producing data.
func (h *Handle) Live() bool {
	for _, t := range h.tracks {
		if !t.Stopped() {
			return true
		}
	}
	return false
}

// Push appends encoded audio bytes arriving from the capture source.
// Pushes after release are dropped.
func (h *Handle) Push(b []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed || !h.Live() {
		return
	}
	h.buf.Write(b)
}

// Drain takes everything buffered since the previous drain. Returns nil when
// nothing arrived in the interval.
func (h *Handle) Drain() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.buf.Len() == 0 {
		return nil
	}
	out := make([]byte, h.buf.Len())
	copy(out, h.buf.Bytes())
	h.buf.Reset()
	return out
}

// Release stops every track. Failing to call this leaves the platform's
// capture indicator active indefinitely.
func (h *Handle) Release() {
	h.mu.Lock()
	h.closed = true
	h.mu.Unlock()
	for _, t := range h.tracks {
		t.Stop()
	}
}

// Gesture is proof of a live user interaction. The platform only grants tab
// capture while a gesture is active, so callers must not carry one across an
// asynchronous boundary that outlasts its validity.
type Gesture struct {
	expires time.Time
}

func NewGesture(ttl time.Duration) *Gesture {
	return &Gesture{expires: time.Now().Add(ttl)}
}

func (g *Gesture) Active() bool {
	return g != nil && time.Now().Before(g.expires)
}

// Source acquires tab-audio stream handles. Acquire does not itself start
// recording; it only opens the stream.
type Source interface {
	Acquire(ctx context.Context, tabID string, gesture *Gesture) (*Handle, error)
}

// ReaderSource wraps a TabSource and feeds every acquired handle from an
// io.Reader, bridging real encoded audio (e.g. an ffmpeg pipe on stdin)
// into the capture pipeline.
type ReaderSource struct {
	tabs *TabSource
	r    io.Reader
}

func NewReaderSource(tabs *TabSource, r io.Reader) *ReaderSource {
	return &ReaderSource{tabs: tabs, r: r}
}

func (s *ReaderSource) Acquire(ctx context.Context, tabID string, gesture *Gesture) (*Handle, error) {
	h, err := s.tabs.Acquire(ctx, tabID, gesture)
	if err != nil {
		return nil, err
	}

	go func() {
		buf := make([]byte, 32*1024)
		for {
			n, err := s.r.Read(buf)
			if n > 0 {
				b := make([]byte, n)
				copy(b, buf[:n])
				h.Push(b)
			}
			if err != nil {
				return
			}
		}
	}()
	return h, nil
}

// TabInfo describes a candidate tab in the registry backing TabSource.
type TabInfo struct {
	URL    string
	Active bool
}

// TabSource is a Source over a registry of known tabs, mimicking the host
// platform's tab-capture permission surface. A PermissionFunc decides whether
// the user/platform grants capture for a given tab.
type TabSource struct {
	mu     sync.Mutex
	tabs   map[string]TabInfo
	permit PermissionFunc
}

type PermissionFunc func(tabID string, info TabInfo) bool

// PermitAll grants capture for every known tab.
func PermitAll(string, TabInfo) bool { return true }

func NewTabSource(permit PermissionFunc) *TabSource {
	if permit == nil {
		permit = PermitAll
	}
	return &TabSource{
		tabs:   make(map[string]TabInfo),
		permit: permit,
	}
}

// RegisterTab makes a tab visible to Acquire. Re-registering replaces the
// previous info.
func (s *TabSource) RegisterTab(tabID string, info TabInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs[tabID] = info
}

// CloseTab removes a tab, turning its id stale.
func (s *TabSource) CloseTab(tabID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tabs, tabID)
}

func (s *TabSource) Acquire(ctx context.Context, tabID string, gesture *Gesture) (*Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !gesture.Active() {
		return nil, entity.ErrCaptureDenied
	}

	s.mu.Lock()
	info, ok := s.tabs[tabID]
	s.mu.Unlock()
	if !ok || !info.Active {
		return nil, entity.ErrNoActiveTab
	}
	if !s.permit(tabID, info) {
		return nil, entity.ErrCaptureDenied
	}

	return newHandle(tabID), nil
}
