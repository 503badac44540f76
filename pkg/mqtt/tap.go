package mqtt

import (
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sport/pkg/msgs"
	"github.com/robotalks/sport/pkg/sport"
)

// Tap publishes every frame a device sends.
type Tap struct {
	Ref       Ref
	BusID     byte
	Publisher Publisher
	Now       func() time.Time
}

// FrameSent implements sport.FrameHandler.
func (t *Tap) FrameSent(f sport.Frame) {
	now := time.Now
	if t.Now != nil {
		now = t.Now
	}
	payload, err := msgs.Encode(msgs.NewFrameRecord(t.BusID, f, now()))
	if err != nil {
		glog.Errorf("encode frame: %v", err)
		return
	}
	// no wait for the token; Publish itself may still block while paho's
	// outbound queue is full.
	t.Publisher.Pub(t.Ref.FramesTopic(), payload)
}
