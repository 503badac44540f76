// Package stream adapts an io.ReadWriter into a sport.Transport.
package stream

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sport/pkg/sport"
)

// Transport implements sport.Transport over a byte stream.
// Received bytes are collected by Run in the background; the
// sport.Transport methods must be called from a single goroutine.
type Transport struct {
	// Direction switches line direction, nil for links without a
	// direction control (e.g. full duplex or auto-direction adapters).
	Direction func(transmit bool) error
	// EchoCancel drops as many received bytes as were transmitted.
	// Required on single-wire links where the receiver sees its own output.
	EchoCancel bool
	// OnData is called from the reader when bytes arrive.
	OnData func()

	rw     io.ReadWriter
	writer *bufio.Writer
	byteCh chan byte
	peek   byte
	peeked bool
	echo   int32

	errLock sync.Mutex
	err     error
}

// DefaultBufferSize is the default number of received bytes buffered.
const DefaultBufferSize = 256

// New creates a Transport.
func New(rw io.ReadWriter) *Transport {
	return &Transport{
		rw:     rw,
		writer: bufio.NewWriterSize(rw, sport.FrameSize*2),
		byteCh: make(chan byte, DefaultBufferSize),
	}
}

// WriteByte implements sport.Transport.
func (t *Transport) WriteByte(b byte) error {
	return t.writer.WriteByte(b)
}

// Flush implements sport.Transport.
func (t *Transport) Flush() error {
	// echo is counted before writing, the reader may see it any time after.
	if t.EchoCancel {
		atomic.AddInt32(&t.echo, int32(t.writer.Buffered()))
	}
	if err := t.writer.Flush(); err != nil {
		// bufio keeps the error and the unwritten bytes; drop both so the
		// next frame starts clean.
		if t.EchoCancel {
			atomic.AddInt32(&t.echo, -int32(t.writer.Buffered()))
		}
		t.writer.Reset(t.rw)
		return err
	}
	if d, ok := t.rw.(interface{ Drain() error }); ok {
		return d.Drain()
	}
	return nil
}

// SetTransmit implements sport.Transport.
func (t *Transport) SetTransmit(transmit bool) error {
	if fn := t.Direction; fn != nil {
		return fn(transmit)
	}
	return nil
}

// ByteAvailable implements sport.Transport.
func (t *Transport) ByteAvailable() bool {
	return t.peeked || len(t.byteCh) > 0
}

// ReadByte implements sport.Transport.
func (t *Transport) ReadByte() (byte, error) {
	if t.peeked {
		t.peeked = false
		return t.peek, nil
	}
	select {
	case b := <-t.byteCh:
		return b, nil
	default:
		return 0, sport.ErrNoData
	}
}

// WaitByte implements sport.ByteWaiter.
func (t *Transport) WaitByte(timeout time.Duration) bool {
	if t.ByteAvailable() {
		return true
	}
	var expire <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		expire = timer.C
	}
	select {
	case b := <-t.byteCh:
		t.peek, t.peeked = b, true
		return true
	case <-expire:
		return false
	}
}

// Err returns the error which stopped the reader.
func (t *Transport) Err() error {
	t.errLock.Lock()
	defer t.errLock.Unlock()
	return t.err
}

// Close closes the underlying stream if possible.
func (t *Transport) Close() error {
	if closer, ok := t.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Run implements Runnable. It reads the stream until ctx is done or a read
// error occurs.
func (t *Transport) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- t.readLoop(ctx)
	}()
	var err error
	select {
	case <-ctx.Done():
		t.Close()
		<-errCh
		err = ctx.Err()
	case err = <-errCh:
	}
	t.errLock.Lock()
	t.err = err
	t.errLock.Unlock()
	return err
}

func (t *Transport) readLoop(ctx context.Context) error {
	buf := make([]byte, 64)
	for {
		n, err := t.rw.Read(buf)
		for _, b := range buf[:n] {
			if t.EchoCancel && atomic.LoadInt32(&t.echo) > 0 {
				atomic.AddInt32(&t.echo, -1)
				continue
			}
			select {
			case t.byteCh <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if n > 0 {
			if glog.V(5) {
				glog.Infof("RX % x", buf[:n])
			}
			if fn := t.OnData; fn != nil {
				fn()
			}
		}
		if err != nil {
			if os.IsTimeout(err) {
				continue
			}
			return err
		}
	}
}
