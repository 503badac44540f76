// Package websocket carries a Smart Port line over a websocket, used to
// attach devices to a simulated receiver.
package websocket

import (
	"fmt"
	"net/http"

	"golang.org/x/net/websocket"

	"github.com/robotalks/sport/pkg/transport/stream"
)

// Dial connects to a bus served by Handler.
func Dial(url, origin string) (*stream.Transport, error) {
	conn, err := websocket.Dial(url, "", origin)
	if err != nil {
		return nil, fmt.Errorf("dial %s error: %v", url, err)
	}
	return Wrap(conn), nil
}

// Wrap creates a Transport from a websocket connection. Each flush is sent
// as one binary message.
func Wrap(conn *websocket.Conn) *stream.Transport {
	conn.PayloadType = websocket.BinaryFrame
	return stream.New(conn)
}

// Handler serves the bus side of connections; fn owns the Transport until it
// returns.
func Handler(fn func(*stream.Transport)) http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		fn(Wrap(conn))
	})
}
