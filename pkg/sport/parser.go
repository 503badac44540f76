package sport

// Parser is the poll request state machine.
type Parser struct {
	BusID byte

	state pollState
}

type pollState int

const (
	stateIdle    pollState = iota // waiting for FrameBegin
	stateAwaitID                  // FrameBegin seen, waiting for the bus ID
)

// AwaitingID indicates a marker has been seen and the ID byte is expected.
func (p *Parser) AwaitingID() bool {
	return p.state == stateAwaitID
}

// Reset returns the parser to idle.
func (p *Parser) Reset() {
	p.state = stateIdle
}

// Parse consumes one byte and reports if it completes a poll of BusID.
func (p *Parser) Parse(b byte) (matched bool) {
	switch p.state {
	case stateIdle:
		if b == FrameBegin {
			p.state = stateAwaitID
		}
	case stateAwaitID:
		// any byte ends the request, including another marker.
		p.state = stateIdle
		matched = b == p.BusID
	}
	return
}
