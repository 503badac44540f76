package sport

import (
	"errors"
	"time"
)

// fakeLine is an in-memory Transport recording direction changes.
type fakeLine struct {
	input    []byte
	output   []byte
	frames   [][]byte
	txOn     bool
	txLog    []bool
	writeErr error
}

func (l *fakeLine) inject(bs ...byte) *fakeLine {
	l.input = append(l.input, bs...)
	return l
}

func (l *fakeLine) WriteByte(b byte) error {
	if !l.txOn {
		return errors.New("write in receive direction")
	}
	if l.writeErr != nil {
		return l.writeErr
	}
	l.output = append(l.output, b)
	return nil
}

func (l *fakeLine) Flush() error {
	l.frames = append(l.frames, l.output)
	l.output = nil
	return nil
}

func (l *fakeLine) ByteAvailable() bool {
	return len(l.input) > 0
}

func (l *fakeLine) ReadByte() (byte, error) {
	if len(l.input) == 0 {
		return 0, ErrNoData
	}
	b := l.input[0]
	l.input = l.input[1:]
	return b, nil
}

func (l *fakeLine) SetTransmit(transmit bool) error {
	l.txOn = transmit
	l.txLog = append(l.txLog, transmit)
	return nil
}

// lateLine delivers queued bytes only after the marker has been consumed,
// through WaitByte.
type lateLine struct {
	fakeLine
	late   []byte
	waited []time.Duration
}

func (l *lateLine) WaitByte(timeout time.Duration) bool {
	l.waited = append(l.waited, timeout)
	if len(l.input) == 0 && len(l.late) > 0 {
		l.input, l.late = l.late, nil
	}
	return len(l.input) > 0
}
