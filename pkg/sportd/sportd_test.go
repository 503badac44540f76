package sportd

import (
	"context"
	"net"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sport/pkg/config"
	fx "github.com/robotalks/sport/pkg/framework"
	"github.com/robotalks/sport/pkg/receiver"
	"github.com/robotalks/sport/pkg/sport"
	"github.com/robotalks/sport/pkg/transport/stream"
	"github.com/robotalks/sport/pkg/transport/websocket"
)

func testConfig() *config.Config {
	return &config.Config{
		Device: config.Device{
			Type:      "sport",
			ID:        "test",
			BusID:     0xa1,
			Slots:     2,
			IDTimeout: 100 * time.Millisecond,
		},
		Sensors: []config.Sensor{
			{Slot: 0, ID: 0x0100, Value: 42},
			{Slot: 1, ID: 0x0110, Value: 7},
		},
		PollInterval: time.Millisecond,
	}
}

type frameRecorder struct {
	lock   sync.Mutex
	frames []sport.Frame
}

func (r *frameRecorder) FrameSent(f sport.Frame) {
	r.lock.Lock()
	r.frames = append(r.frames, f)
	r.lock.Unlock()
}

func (r *frameRecorder) Frames() []sport.Frame {
	r.lock.Lock()
	defer r.lock.Unlock()
	return append([]sport.Frame(nil), r.frames...)
}

func idleTransport() *stream.Transport {
	conn, _ := net.Pipe()
	return stream.New(conn)
}

func runLoop(ctx context.Context, d *Daemon) <-chan error {
	loop := fx.NewLoop()
	loop.Add(d)
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()
	return errCh
}

func TestDaemonAnswersPolls(t *testing.T) {
	devSide, rxSide := net.Pipe()
	d, err := NewWithTransport(testConfig(), stream.New(devSide))
	require.NoError(t, err)
	require.Nil(t, d.Registrar)
	rec := &frameRecorder{}
	d.AddFrameHandler(rec)

	ctx, cancel := context.WithCancel(context.TODO())
	errCh := runLoop(ctx, d)
	rxTr := stream.New(rxSide)
	go rxTr.Run(ctx)

	rx := receiver.New(rxTr)
	rx.ReplyTimeout = 500 * time.Millisecond
	f, err := rx.Poll(0xa1)
	require.NoError(t, err)
	require.Equal(t, sport.NewDataFrame(0x0100, 42), f, "first frame mismatch")
	f, err = rx.Poll(0xa1)
	require.NoError(t, err)
	require.Equal(t, sport.NewDataFrame(0x0110, 7), f, "second frame mismatch")

	rx.ReplyTimeout = 20 * time.Millisecond
	_, err = rx.Poll(0x22)
	require.Equal(t, receiver.ErrNoReply, err)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Len(t, rec.Frames(), 2)
	stats := d.Device.Stats()
	require.Equal(t, uint64(2), stats.Sent, "sent mismatch")
	require.Equal(t, uint64(2), stats.Matched, "matched mismatch")
}

func TestDaemonOverWebSocket(t *testing.T) {
	frameCh := make(chan sport.Frame, 1)
	server := httptest.NewServer(websocket.Handler(func(bus *stream.Transport) {
		ctx, cancel := context.WithCancel(context.TODO())
		defer cancel()
		go bus.Run(ctx)
		rx := receiver.New(bus)
		rx.ReplyTimeout = time.Second
		if f, err := rx.Poll(0xa1); err == nil {
			frameCh <- f
		}
	}))
	defer server.Close()

	conf := testConfig()
	conf.Bus.WebSocket = "ws" + strings.TrimPrefix(server.URL, "http")
	d, err := New(conf)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.TODO())
	defer cancel()
	runLoop(ctx, d)

	select {
	case f := <-frameCh:
		require.Equal(t, sport.NewDataFrame(0x0100, 42), f)
	case <-time.After(2 * time.Second):
		t.Fatal("no frame received")
	}
}

func TestDaemonMQTTSetup(t *testing.T) {
	conf := testConfig()
	conf.MQTT.URL = "mqtt://localhost:1883/robots/"
	d, err := NewWithTransport(conf, idleTransport())
	require.NoError(t, err)
	require.NotNil(t, d.Registrar)
	require.Equal(t, "robots/", d.Registrar.Queue.TopicPrefix)
	require.Equal(t, []uint16{0x0100, 0x0110}, d.Registrar.Meta.SensorIDs)
	require.Len(t, d.handlers, 1)
}

func TestDaemonRejectsBadConfig(t *testing.T) {
	conf := testConfig()
	conf.Device.Slots = 9
	_, err := NewWithTransport(conf, idleTransport())
	require.Error(t, err)

	conf = testConfig()
	conf.Sensors = append(conf.Sensors, config.Sensor{Slot: 8})
	_, err = NewWithTransport(conf, idleTransport())
	require.Error(t, err)
}
