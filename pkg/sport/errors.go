package sport

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSlotCount indicates the active slot count exceeds MaxSensors.
	ErrInvalidSlotCount = errors.New("invalid active slot count")
	// ErrNoData indicates no byte is available from the transport.
	ErrNoData = errors.New("no data")
)

// SlotError reports a sensor table slot out of range.
type SlotError struct {
	Slot int
}

// Error implements error.
func (e *SlotError) Error() string {
	return fmt.Sprintf("sensor slot %d out of range [0, %d)", e.Slot, MaxSensors)
}

// CRCError reports a received frame with a bad checksum.
type CRCError struct {
	Want byte
	Got  byte
}

// Error implements error.
func (e *CRCError) Error() string {
	return fmt.Sprintf("crc mismatch: want %02x, got %02x", e.Want, e.Got)
}
