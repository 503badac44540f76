package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/sport/pkg/sport"
)

// ErrFieldRange indicates a field doesn't fit the protocol width.
type ErrFieldRange struct {
	Field string
	Value uint32
}

// Error implements error.
func (e *ErrFieldRange) Error() string {
	return fmt.Sprintf("%s out of range: %d", e.Field, e.Value)
}

// Encode marshals a message.
func Encode(msg proto.Message) ([]byte, error) {
	return proto.Marshal(msg)
}

// DecodeSensorUpdate unmarshals and validates a SensorUpdate.
func DecodeSensorUpdate(data []byte) (*SensorUpdate, error) {
	var m SensorUpdate
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Slot >= sport.MaxSensors {
		return nil, &ErrFieldRange{Field: "slot", Value: m.Slot}
	}
	if m.SensorId > 0xffff {
		return nil, &ErrFieldRange{Field: "sensor_id", Value: m.SensorId}
	}
	return &m, nil
}

// DecodeFrameRecord unmarshals a FrameRecord.
func DecodeFrameRecord(data []byte) (*FrameRecord, error) {
	var m FrameRecord
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
