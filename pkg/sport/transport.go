package sport

import (
	"runtime"
	"time"
)

// Transport is the byte-oriented half-duplex line the protocol runs on.
// All methods are called from the single poll goroutine.
type Transport interface {
	// WriteByte queues one byte for transmission.
	WriteByte(byte) error
	// Flush blocks until all queued bytes are on the wire.
	Flush() error
	// ByteAvailable reports if ReadByte would return a byte immediately.
	ByteAvailable() bool
	// ReadByte reads one received byte, ErrNoData if none is available.
	ReadByte() (byte, error)
	// SetTransmit switches the line direction.
	SetTransmit(transmit bool) error
}

// ByteWaiter is implemented by transports able to block for input.
type ByteWaiter interface {
	// WaitByte blocks until a byte is available or timeout expires.
	// A negative timeout waits forever.
	WaitByte(timeout time.Duration) bool
}

// WaitByte waits until the transport has a byte available.
// Transports not implementing ByteWaiter are spun on.
func WaitByte(t Transport, timeout time.Duration) bool {
	if w, ok := t.(ByteWaiter); ok {
		return w.WaitByte(timeout)
	}
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for !t.ByteAvailable() {
		if timeout >= 0 && !time.Now().Before(deadline) {
			return false
		}
		runtime.Gosched()
	}
	return true
}
