package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"strconv"
	"strings"

	fx "github.com/robotalks/sport/pkg/framework"
	"github.com/robotalks/sport/pkg/receiver"
	"github.com/robotalks/sport/pkg/sport"
	"github.com/robotalks/sport/pkg/transport/serial"
	"github.com/robotalks/sport/pkg/transport/stream"
	"github.com/robotalks/sport/pkg/transport/websocket"
)

var (
	listenAddr = ":8080"
	port       string
	ids        string
	interval   = receiver.DefaultInterval
	echo       bool
)

func init() {
	flag.StringVar(&listenAddr, "listen", listenAddr, "Serve websocket bus at /bus on the address.")
	flag.StringVar(&port, "port", port, "Poll a serial port instead of serving websocket.")
	flag.StringVar(&ids, "ids", ids, "Comma separated bus IDs to poll, default all physical IDs.")
	flag.DurationVar(&interval, "interval", interval, "Poll interval.")
	flag.BoolVar(&echo, "echo", echo, "Drop local echo on single-wire serial line.")
}

func parseIDs(s string) ([]byte, error) {
	if s == "" {
		return sport.PhysicalIDs[:], nil
	}
	var result []byte
	for _, item := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(item), 0, 8)
		if err != nil {
			return nil, err
		}
		result = append(result, byte(n))
	}
	return result, nil
}

func serialConfig() serial.Config {
	return serial.Config{Port: port, EchoCancel: echo}
}

func logFrame(ctx context.Context, busID byte, f sport.Frame) {
	log.Printf("0x%02x: type=0x%02x id=0x%04x value=%d (0x%08x)",
		busID, f.Type, f.SensorID, f.Value, uint32(f.Value))
}

func newReceiver(t *stream.Transport, busIDs []byte) *receiver.Receiver {
	r := receiver.New(t)
	r.IDs = busIDs
	r.Interval = interval
	r.Handler = receiver.HandleFrameFunc(logFrame)
	return r
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	busIDs, err := parseIDs(ids)
	if err != nil {
		log.Fatalln(err)
	}

	if port != "" {
		t, err := serial.Open(serialConfig())
		if err != nil {
			log.Fatalln(err)
		}
		runner := fx.NewRunner().HandleSignals()
		runner.Go(fx.NamedRun("bus", t), fx.NamedRun("receiver", newReceiver(t, busIDs)))
		if err := runner.Wait(); err != nil {
			log.Fatalln(err)
		}
		return
	}

	http.Handle("/bus", websocket.Handler(func(t *stream.Transport) {
		log.Println("device connected")
		runner := fx.NewRunner()
		runner.Go(fx.NamedRun("bus", t), fx.NamedRun("receiver", newReceiver(t, busIDs)))
		runner.Wait()
		log.Printf("device disconnected: %v", runner.Err())
	}))
	log.Fatalln(http.ListenAndServe(listenAddr, nil))
}
