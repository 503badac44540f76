package sport

import (
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultIDTimeout bounds the wait for the ID byte following a marker.
// A byte takes ~174us at 57600 baud and receivers send the ID right after
// the marker.
const DefaultIDTimeout = 5 * time.Millisecond

// DeviceConfig is the fixed configuration of a Device.
type DeviceConfig struct {
	// BusID is the physical ID answered on the bus.
	BusID byte
	// ActiveSlots is the number of table slots sent round-robin.
	ActiveSlots int
	// IDTimeout bounds the wait for the ID byte. 0 uses DefaultIDTimeout,
	// negative waits forever.
	IDTimeout time.Duration
}

// Stats are counters of bus activity.
type Stats struct {
	Polls      uint64 // polls addressed to any ID
	Matched    uint64 // polls addressed to BusID
	Sent       uint64
	Timeouts   uint64 // marker not followed by an ID in time
	SendErrors uint64
}

// FrameHandler is notified after a frame is sent.
type FrameHandler interface {
	FrameSent(Frame)
}

// FrameSentFunc is func form of FrameHandler.
type FrameSentFunc func(Frame)

// FrameSent implements FrameHandler.
func (f FrameSentFunc) FrameSent(frame Frame) {
	f(frame)
}

// Device answers polls for one bus ID from its sensor table.
type Device struct {
	Transport Transport
	Handler   FrameHandler

	conf   DeviceConfig
	parser Parser

	lock   sync.Mutex
	table  SensorTable
	cursor int
	stats  Stats
}

// New initializes a Device.
func New(t Transport, conf DeviceConfig) (*Device, error) {
	if conf.ActiveSlots < 0 || conf.ActiveSlots > MaxSensors {
		return nil, ErrInvalidSlotCount
	}
	if conf.IDTimeout == 0 {
		conf.IDTimeout = DefaultIDTimeout
	}
	return &Device{
		Transport: t,
		conf:      conf,
		parser:    Parser{BusID: conf.BusID},
	}, nil
}

// Config returns the configuration.
func (d *Device) Config() DeviceConfig {
	return d.conf
}

// SetSensorData updates a table slot. It's safe to call concurrently
// with Poll.
func (d *Device) SetSensorData(slot int, id uint16, value uint32) error {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.table.Set(slot, id, value)
}

// SensorData gets a table slot.
func (d *Device) SensorData(slot int) (SensorEntry, error) {
	if slot < 0 || slot >= MaxSensors {
		return SensorEntry{}, &SlotError{Slot: slot}
	}
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.table.Get(slot), nil
}

// Stats returns a snapshot of the counters.
func (d *Device) Stats() Stats {
	d.lock.Lock()
	defer d.lock.Unlock()
	return d.stats
}

// Poll processes all bytes currently available from the transport.
func (d *Device) Poll() {
	for d.Transport.ByteAvailable() {
		if !d.step() {
			return
		}
	}
}

func (d *Device) step() bool {
	b, err := d.Transport.ReadByte()
	if err != nil {
		return false
	}
	if !d.parser.Parse(b) {
		if !d.parser.AwaitingID() {
			return true
		}
		if !WaitByte(d.Transport, d.conf.IDTimeout) {
			d.parser.Reset()
			d.count(func(s *Stats) { s.Timeouts++ })
			glog.V(3).Info("no ID after frame begin")
			return false
		}
		if b, err = d.Transport.ReadByte(); err != nil {
			d.parser.Reset()
			return false
		}
		if !d.parser.Parse(b) {
			d.count(func(s *Stats) { s.Polls++ })
			return true
		}
	}
	d.reply()
	return true
}

func (d *Device) reply() {
	d.lock.Lock()
	d.stats.Polls++
	d.stats.Matched++
	if d.conf.ActiveSlots == 0 {
		d.lock.Unlock()
		return
	}
	entry := d.table[d.cursor]
	d.cursor = (d.cursor + 1) % d.conf.ActiveSlots
	d.lock.Unlock()

	frame := NewDataFrame(entry.ID, entry.Value)
	if err := Send(d.Transport, frame); err != nil {
		d.count(func(s *Stats) { s.SendErrors++ })
		glog.V(2).Infof("send frame %04x error: %v", frame.SensorID, err)
		return
	}
	d.count(func(s *Stats) { s.Sent++ })
	if glog.V(3) {
		glog.Infof("SENT %04x=%d", frame.SensorID, frame.Value)
	}
	if h := d.Handler; h != nil {
		h.FrameSent(frame)
	}
}

func (d *Device) count(fn func(*Stats)) {
	d.lock.Lock()
	fn(&d.stats)
	d.lock.Unlock()
}
