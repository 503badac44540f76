package sport

// Decoder reassembles frames from a stuffed reply stream.
// A frame-begin marker discards any partial frame.
type Decoder struct {
	raw     [FrameSize]byte
	n       int
	escaped bool
}

// Reset drops any partial frame.
func (d *Decoder) Reset() {
	d.n, d.escaped = 0, false
}

// Feed consumes one byte. ok is true when a complete frame is available,
// err is set if the completed frame fails the CRC check.
func (d *Decoder) Feed(b byte) (f Frame, ok bool, err error) {
	switch {
	case b == FrameBegin:
		d.Reset()
		return
	case b == StuffMarker:
		d.escaped = true
		return
	case d.escaped:
		b ^= StuffMask
		d.escaped = false
	}
	d.raw[d.n] = b
	if d.n++; d.n < FrameSize {
		return
	}
	d.n = 0
	if f, err = ParseFrame(d.raw); err == nil {
		ok = true
	}
	return
}
