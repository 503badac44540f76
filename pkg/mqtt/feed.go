package mqtt

import (
	"github.com/golang/glog"

	"github.com/robotalks/sport/pkg/msgs"
)

// SensorSetter accepts sensor updates.
type SensorSetter interface {
	SetSensorData(slot int, id uint16, value uint32) error
}

// Feed applies SensorUpdate messages to a device sensor table.
type Feed struct {
	Ref    Ref
	Target SensorSetter
}

// Subscribe registers the feed on the queue.
func (f *Feed) Subscribe(q *Queue) {
	q.Sub(f.Ref.SensorsTopic(), f.HandleMessage)
}

// HandleMessage implements Handler.
func (f *Feed) HandleMessage(topic string, payload []byte) {
	if err := f.apply(payload); err != nil {
		glog.Warningf("%s: %v", topic, err)
	}
}

func (f *Feed) apply(payload []byte) error {
	u, err := msgs.DecodeSensorUpdate(payload)
	if err != nil {
		return err
	}
	glog.V(3).Infof("SENSOR slot=%d id=%04x value=%08x", u.Slot, u.SensorId, u.Value)
	return f.Target.SetSensorData(int(u.Slot), uint16(u.SensorId), u.Value)
}
