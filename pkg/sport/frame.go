package sport

import (
	"encoding/binary"

	"github.com/golang/glog"
)

// Protocol constants.
const (
	FrameSize = 8

	FrameBegin  byte = 0x7e
	StuffMarker byte = 0x7d
	StuffMask   byte = 0x20

	// DataFrame is the frame type used for sensor data.
	DataFrame byte = 0x10
)

// Frame is a decoded Smart Port frame.
type Frame struct {
	Type     byte
	SensorID uint16
	Value    int32
}

// NewDataFrame creates a sensor data frame.
func NewDataFrame(id uint16, value uint32) Frame {
	return Frame{Type: DataFrame, SensorID: id, Value: int32(value)}
}

// Bytes returns the raw (unstuffed) frame including the CRC.
func (f Frame) Bytes() (raw [FrameSize]byte) {
	// value is widened without sign extension so byte 7 stays 0 until the
	// CRC is stored.
	u := uint64(f.Type) | uint64(f.SensorID)<<8 | uint64(uint32(f.Value))<<24
	binary.LittleEndian.PutUint64(raw[:], u)
	raw[FrameSize-1] = Checksum(raw[:])
	return
}

// AppendStuffed appends the raw frame to dst with reserved bytes escaped.
func AppendStuffed(dst []byte, raw [FrameSize]byte) []byte {
	for _, b := range raw {
		if b == FrameBegin || b == StuffMarker {
			dst = append(dst, StuffMarker, b^StuffMask)
		} else {
			dst = append(dst, b)
		}
	}
	return dst
}

// ParseFrame decodes a raw (unstuffed) frame and verifies its CRC.
func ParseFrame(raw [FrameSize]byte) (Frame, error) {
	if Checksum(raw[:]) != 0 {
		return Frame{}, &CRCError{Want: FrameCRC(raw), Got: raw[FrameSize-1]}
	}
	u := binary.LittleEndian.Uint64(raw[:])
	return Frame{
		Type:     byte(u),
		SensorID: uint16(u >> 8),
		Value:    int32(uint32(u >> 24)),
	}, nil
}

// Send transmits the frame on the transport.
// The transport is switched to transmit direction for the duration of the
// frame and always restored to receive direction before returning.
// It returns the first transport error, which callers on the poll path
// only count: the bus has no way to report a lost reply.
func Send(t Transport, f Frame) (err error) {
	var buf [FrameSize * 2]byte
	out := AppendStuffed(buf[:0], f.Bytes())

	if err = t.SetTransmit(true); err != nil {
		return
	}
	defer func() {
		if rerr := t.SetTransmit(false); err == nil {
			err = rerr
		}
	}()
	for _, b := range out {
		if werr := t.WriteByte(b); werr != nil && err == nil {
			err = werr
		}
	}
	if ferr := t.Flush(); err == nil {
		err = ferr
	}
	if glog.V(4) {
		glog.Infof("TX % x", out)
	}
	return
}
