// Package receiver simulates the polling side of a Smart Port bus.
package receiver

import (
	"context"
	"errors"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sport/pkg/sport"
)

// ErrNoReply indicates no frame was received for a poll.
var ErrNoReply = errors.New("no reply")

// Default timings, close to what receivers use on the bus.
const (
	DefaultInterval     = 12 * time.Millisecond
	DefaultReplyTimeout = 4 * time.Millisecond
)

// FrameHandler is called with each received frame.
type FrameHandler interface {
	HandleFrame(ctx context.Context, busID byte, f sport.Frame)
}

// HandleFrameFunc is func form of FrameHandler.
type HandleFrameFunc func(ctx context.Context, busID byte, f sport.Frame)

// HandleFrame implements FrameHandler.
func (f HandleFrameFunc) HandleFrame(ctx context.Context, busID byte, frame sport.Frame) {
	f(ctx, busID, frame)
}

// Receiver polls bus IDs round-robin.
type Receiver struct {
	Transport    sport.Transport
	Handler      FrameHandler
	IDs          []byte
	Interval     time.Duration
	ReplyTimeout time.Duration

	next int
}

// New creates a Receiver polling all physical IDs.
func New(t sport.Transport) *Receiver {
	return &Receiver{
		Transport:    t,
		IDs:          sport.PhysicalIDs[:],
		Interval:     DefaultInterval,
		ReplyTimeout: DefaultReplyTimeout,
	}
}

// Poll sends one poll request and waits for the reply.
func (r *Receiver) Poll(busID byte) (sport.Frame, error) {
	if err := r.request(busID); err != nil {
		return sport.Frame{}, err
	}
	timeout := r.ReplyTimeout
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	deadline := time.Now().Add(timeout)
	var dec sport.Decoder
	for {
		remains := time.Until(deadline)
		if remains <= 0 || !sport.WaitByte(r.Transport, remains) {
			return sport.Frame{}, ErrNoReply
		}
		b, err := r.Transport.ReadByte()
		if err != nil {
			return sport.Frame{}, err
		}
		f, ok, err := dec.Feed(b)
		if err != nil {
			return sport.Frame{}, err
		}
		if ok {
			return f, nil
		}
	}
}

func (r *Receiver) request(busID byte) (err error) {
	if err = r.Transport.SetTransmit(true); err != nil {
		return
	}
	defer func() {
		if rerr := r.Transport.SetTransmit(false); err == nil {
			err = rerr
		}
	}()
	if err = r.Transport.WriteByte(sport.FrameBegin); err != nil {
		return
	}
	if err = r.Transport.WriteByte(busID); err != nil {
		return
	}
	return r.Transport.Flush()
}

// PollNext polls the next ID in round-robin order.
func (r *Receiver) PollNext(ctx context.Context) (busID byte, err error) {
	if len(r.IDs) == 0 {
		return 0, errors.New("no IDs to poll")
	}
	busID = r.IDs[r.next]
	r.next = (r.next + 1) % len(r.IDs)
	frame, err := r.Poll(busID)
	if err != nil {
		return
	}
	if glog.V(3) {
		glog.Infof("RECV [%02x] %04x=%d", busID, frame.SensorID, frame.Value)
	}
	if h := r.Handler; h != nil {
		h.HandleFrame(ctx, busID, frame)
	}
	return
}

// Run implements Runnable.
func (r *Receiver) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			busID, err := r.PollNext(ctx)
			var crcErr *sport.CRCError
			switch {
			case err == nil, err == ErrNoReply:
			case errors.As(err, &crcErr):
				glog.Warningf("[%02x] %v", busID, err)
			default:
				return err
			}
			if e, ok := r.Transport.(interface{ Err() error }); ok {
				if err = e.Err(); err != nil {
					return err
				}
			}
		}
	}
}
