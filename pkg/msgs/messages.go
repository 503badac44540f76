package msgs

import (
	"time"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/sport/pkg/sport"
)

// The messages below are proto3 messages declared with struct tags,
// equivalent to:
//
//   message SensorUpdate {
//     uint32 slot = 1;
//     uint32 sensor_id = 2;
//     uint32 value = 3;
//   }
//
//   message FrameRecord {
//     uint32 bus_id = 1;
//     uint32 type = 2;
//     uint32 sensor_id = 3;
//     sint32 value = 4;
//     int64 timestamp = 5; // unix nano
//   }

// SensorUpdate sets one slot of a device sensor table.
type SensorUpdate struct {
	Slot     uint32 `protobuf:"varint,1,opt,name=slot,proto3" json:"slot,omitempty"`
	SensorId uint32 `protobuf:"varint,2,opt,name=sensor_id,json=sensorId,proto3" json:"sensor_id,omitempty"`
	Value    uint32 `protobuf:"varint,3,opt,name=value,proto3" json:"value,omitempty"`
}

// Reset implements proto.Message.
func (m *SensorUpdate) Reset() { *m = SensorUpdate{} }

// String implements proto.Message.
func (m *SensorUpdate) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*SensorUpdate) ProtoMessage() {}

// FrameRecord is a frame sent by a device.
type FrameRecord struct {
	BusId     uint32 `protobuf:"varint,1,opt,name=bus_id,json=busId,proto3" json:"bus_id,omitempty"`
	Type      uint32 `protobuf:"varint,2,opt,name=type,proto3" json:"type,omitempty"`
	SensorId  uint32 `protobuf:"varint,3,opt,name=sensor_id,json=sensorId,proto3" json:"sensor_id,omitempty"`
	Value     int32  `protobuf:"zigzag32,4,opt,name=value,proto3" json:"value,omitempty"`
	Timestamp int64  `protobuf:"varint,5,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

// Reset implements proto.Message.
func (m *FrameRecord) Reset() { *m = FrameRecord{} }

// String implements proto.Message.
func (m *FrameRecord) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*FrameRecord) ProtoMessage() {}

// NewFrameRecord creates a FrameRecord.
func NewFrameRecord(busID byte, f sport.Frame, at time.Time) *FrameRecord {
	return &FrameRecord{
		BusId:     uint32(busID),
		Type:      uint32(f.Type),
		SensorId:  uint32(f.SensorID),
		Value:     f.Value,
		Timestamp: at.UnixNano(),
	}
}

// Frame converts back to sport.Frame.
func (m *FrameRecord) Frame() sport.Frame {
	return sport.Frame{Type: byte(m.Type), SensorID: uint16(m.SensorId), Value: m.Value}
}

// Time returns the timestamp.
func (m *FrameRecord) Time() time.Time {
	return time.Unix(0, m.Timestamp)
}
