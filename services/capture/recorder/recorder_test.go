package recorder

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Princerai504/meetingbot/services/capture/entity"
	"github.com/Princerai504/meetingbot/services/capture/stream"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func acquireHandle(t *testing.T) *stream.Handle {
	t.Helper()
	src := stream.NewTabSource(stream.PermitAll)
	src.RegisterTab("tab-1", stream.TabInfo{URL: "https://meet.google.com/abc", Active: true})
	h, err := src.Acquire(context.Background(), "tab-1", stream.NewGesture(time.Second))
	require.NoError(t, err)
	return h
}

func TestNewSelectsImplementation(t *testing.T) {
	log := testLogger()

	direct := New(Capabilities{OffscreenDocument: false}, log)
	_, ok := direct.(*Direct)
	assert.True(t, ok)

	off := New(Capabilities{OffscreenDocument: true}, log)
	o, ok := off.(*Offscreen)
	require.True(t, ok)
	o.Close()
}

func TestDirectStateMachine(t *testing.T) {
	rec := NewDirect(testLogger())
	h := acquireHandle(t)

	assert.Equal(t, StateIdle, rec.State())

	// Out-of-order calls are rejected without side effects.
	assert.ErrorIs(t, rec.Begin(DefaultChunkInterval), entity.ErrNotArmed)
	_, err := rec.End()
	assert.ErrorIs(t, err, entity.ErrNotRecording)

	require.NoError(t, rec.Arm(h))
	assert.Equal(t, StateArmed, rec.State())
	assert.ErrorIs(t, rec.Arm(h), entity.ErrAlreadyArmed)

	require.NoError(t, rec.Begin(10*time.Millisecond))
	assert.Equal(t, StateRecording, rec.State())
	assert.ErrorIs(t, rec.Begin(DefaultChunkInterval), entity.ErrNotArmed)
	assert.ErrorIs(t, rec.Arm(h), entity.ErrAlreadyArmed)

	_, err = rec.End()
	require.NoError(t, err)
	assert.Equal(t, StateIdle, rec.State())
}

func TestDirectSegmentsArriveInOrder(t *testing.T) {
	rec := NewDirect(testLogger())
	h := acquireHandle(t)

	require.NoError(t, rec.Arm(h))
	require.NoError(t, rec.Begin(10*time.Millisecond))

	h.Push([]byte("first"))
	time.Sleep(40 * time.Millisecond)
	h.Push([]byte("second"))
	time.Sleep(40 * time.Millisecond)
	h.Push([]byte("third"))

	asset, err := rec.End()
	require.NoError(t, err)

	// Segment boundaries depend on tick timing, but a single flush loop
	// means concatenation always reproduces push order.
	assert.Equal(t, "firstsecondthird", string(asset.Data))
	assert.GreaterOrEqual(t, asset.Segments, 2)
	assert.Equal(t, DefaultMIMEType, asset.MIMEType)
	assert.Greater(t, asset.Duration, time.Duration(0))
}

func TestDirectEndIncludesFinalPartialSegment(t *testing.T) {
	rec := NewDirect(testLogger())
	h := acquireHandle(t)

	require.NoError(t, rec.Arm(h))
	require.NoError(t, rec.Begin(time.Hour))

	// Nothing has ticked yet; End must still drain the in-flight bytes.
	h.Push([]byte("tail"))

	asset, err := rec.End()
	require.NoError(t, err)
	assert.Equal(t, "tail", string(asset.Data))
	assert.Equal(t, 1, asset.Segments)
}

func TestDirectEndReleasesTracks(t *testing.T) {
	rec := NewDirect(testLogger())
	h := acquireHandle(t)

	require.NoError(t, rec.Arm(h))
	require.NoError(t, rec.Begin(10*time.Millisecond))

	_, err := rec.End()
	require.NoError(t, err)

	for _, tr := range h.Tracks() {
		assert.True(t, tr.Stopped(), "every track must be stopped after End")
	}
	assert.False(t, h.Live())

	// The recorder is reusable for the next session.
	h2 := acquireHandle(t)
	require.NoError(t, rec.Arm(h2))
	require.NoError(t, rec.Begin(10*time.Millisecond))
	_, err = rec.End()
	require.NoError(t, err)
}

func TestDirectFaultDiscardsSession(t *testing.T) {
	rec := NewDirect(testLogger())
	h := acquireHandle(t)

	require.NoError(t, rec.Arm(h))
	require.NoError(t, rec.Begin(10*time.Millisecond))
	h.Push([]byte("partial"))

	// Kill the tracks out from under the loop, as a dying stream would.
	for _, tr := range h.Tracks() {
		tr.Stop()
	}

	select {
	case fault := <-rec.Faults():
		var rf *entity.RecorderFault
		require.ErrorAs(t, fault, &rf)
	case <-time.After(time.Second):
		t.Fatal("no fault delivered")
	}

	assert.Equal(t, StateIdle, rec.State())

	// Partial segments are discarded, never salvaged.
	_, err := rec.End()
	assert.ErrorIs(t, err, entity.ErrNotRecording)
}

func TestOffscreenParity(t *testing.T) {
	rec := NewOffscreen(testLogger())
	defer rec.Close()
	h := acquireHandle(t)

	assert.Equal(t, StateIdle, rec.State())
	assert.ErrorIs(t, rec.Begin(DefaultChunkInterval), entity.ErrNotArmed)

	require.NoError(t, rec.Arm(h))
	require.NoError(t, rec.Begin(10*time.Millisecond))
	assert.Equal(t, StateRecording, rec.State())

	h.Push([]byte("delegated"))

	asset, err := rec.End()
	require.NoError(t, err)
	assert.Equal(t, "delegated", string(asset.Data))
	assert.False(t, h.Live())
}

func TestOffscreenClosedChannel(t *testing.T) {
	rec := NewOffscreen(testLogger())
	h := acquireHandle(t)

	rec.Close()
	rec.Close() // idempotent

	assert.ErrorIs(t, rec.Arm(h), entity.ErrChannelClosed)
	assert.ErrorIs(t, rec.Begin(DefaultChunkInterval), entity.ErrChannelClosed)
	_, err := rec.End()
	assert.ErrorIs(t, err, entity.ErrChannelClosed)
	assert.Equal(t, StateIdle, rec.State())
}
