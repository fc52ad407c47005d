package recorder

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Princerai504/meetingbot/services/capture/entity"
	"github.com/Princerai504/meetingbot/services/capture/stream"
)

// replyWait bounds how long a caller waits for the worker context to answer.
// A worker that never replies surfaces as ErrChannelClosed, not a hang.
const replyWait = 5 * time.Second

type offscreenOp int

const (
	opArm offscreenOp = iota
	opBegin
	opEnd
	opState
)

type offscreenRequest struct {
	op       offscreenOp
	handle   *stream.Handle
	interval time.Duration
	reply    chan offscreenReply
}

type offscreenReply struct {
	asset *entity.AudioAsset
	state State
	err   error
}

// Offscreen delegates recording to a separate worker context and talks to it
// purely over a message channel, the way platforms without in-context
// recording require. The worker owns a Direct recorder; callers only ever
// see request/response messages.
type Offscreen struct {
	log    *slog.Logger
	inner  *Direct
	reqs   chan offscreenRequest
	closed chan struct{}
	once   sync.Once
}

func NewOffscreen(log *slog.Logger) *Offscreen {
	o := &Offscreen{
		log:    log,
		inner:  NewDirect(log),
		reqs:   make(chan offscreenRequest),
		closed: make(chan struct{}),
	}
	go o.serve()
	return o
}

func (o *Offscreen) serve() {
	for {
		select {
		case <-o.closed:
			return
		case req := <-o.reqs:
			var rep offscreenReply
			switch req.op {
			case opArm:
				rep.err = o.inner.Arm(req.handle)
			case opBegin:
				rep.err = o.inner.Begin(req.interval)
			case opEnd:
				rep.asset, rep.err = o.inner.End()
			case opState:
				rep.state = o.inner.State()
			}
			req.reply <- rep
		}
	}
}

// Close reclaims the worker context. Any in-flight or later call observes
// ErrChannelClosed.
func (o *Offscreen) Close() {
	o.once.Do(func() { close(o.closed) })
}

func (o *Offscreen) call(req offscreenRequest) (offscreenReply, error) {
	req.reply = make(chan offscreenReply, 1)

	select {
	case o.reqs <- req:
	case <-o.closed:
		return offscreenReply{}, entity.ErrChannelClosed
	}

	select {
	case rep := <-req.reply:
		return rep, nil
	case <-o.closed:
		return offscreenReply{}, entity.ErrChannelClosed
	case <-time.After(replyWait):
		o.log.Error("offscreen worker did not reply in time")
		return offscreenReply{}, entity.ErrChannelClosed
	}
}

func (o *Offscreen) Arm(h *stream.Handle) error {
	rep, err := o.call(offscreenRequest{op: opArm, handle: h})
	if err != nil {
		return err
	}
	return rep.err
}

func (o *Offscreen) Begin(chunkInterval time.Duration) error {
	rep, err := o.call(offscreenRequest{op: opBegin, interval: chunkInterval})
	if err != nil {
		return err
	}
	return rep.err
}

func (o *Offscreen) End() (*entity.AudioAsset, error) {
	rep, err := o.call(offscreenRequest{op: opEnd})
	if err != nil {
		return nil, err
	}
	return rep.asset, rep.err
}

func (o *Offscreen) State() State {
	rep, err := o.call(offscreenRequest{op: opState})
	if err != nil {
		return StateIdle
	}
	return rep.state
}

func (o *Offscreen) Faults() <-chan error {
	return o.inner.Faults()
}
