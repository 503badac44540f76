package receiver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sport/pkg/sport"
	"github.com/robotalks/sport/pkg/transport/stream"
)

type busTestEnv struct {
	t        *testing.T
	ctx      context.Context
	cancel   func()
	device   *sport.Device
	receiver *Receiver
}

func newBusTestEnv(t *testing.T, busID byte, slots int) *busTestEnv {
	env := &busTestEnv{t: t}
	env.ctx, env.cancel = context.WithCancel(context.TODO())
	devSide, rxSide := net.Pipe()
	devTr, rxTr := stream.New(devSide), stream.New(rxSide)
	go devTr.Run(env.ctx)
	go rxTr.Run(env.ctx)

	var err error
	env.device, err = sport.New(devTr, sport.DeviceConfig{BusID: busID, ActiveSlots: slots, IDTimeout: 100 * time.Millisecond})
	require.NoError(t, err)
	go func() {
		for env.ctx.Err() == nil {
			if devTr.WaitByte(10 * time.Millisecond) {
				env.device.Poll()
			}
		}
	}()

	env.receiver = New(rxTr)
	env.receiver.ReplyTimeout = 200 * time.Millisecond
	return env
}

func TestReceiverPoll(t *testing.T) {
	env := newBusTestEnv(t, 0x83, 2)
	defer env.cancel()
	require.NoError(t, env.device.SetSensorData(0, 0x0100, 42))
	require.NoError(t, env.device.SetSensorData(1, 0x0210, 0xfffffff6))

	f, err := env.receiver.Poll(0x83)
	require.NoError(t, err)
	require.Equal(t, sport.Frame{Type: sport.DataFrame, SensorID: 0x0100, Value: 42}, f)
	f, err = env.receiver.Poll(0x83)
	require.NoError(t, err)
	require.Equal(t, sport.Frame{Type: sport.DataFrame, SensorID: 0x0210, Value: -10}, f)
}

func TestReceiverNoReply(t *testing.T) {
	env := newBusTestEnv(t, 0x83, 1)
	defer env.cancel()
	env.receiver.ReplyTimeout = 20 * time.Millisecond
	_, err := env.receiver.Poll(0x22)
	require.Equal(t, ErrNoReply, err)
}

func TestReceiverRun(t *testing.T) {
	env := newBusTestEnv(t, 0xa1, 1)
	defer env.cancel()
	require.NoError(t, env.device.SetSensorData(0, 0x0500, 7))

	frameCh := make(chan sport.Frame, 1)
	env.receiver.IDs = []byte{0x00, 0xa1}
	env.receiver.Interval = time.Millisecond
	env.receiver.ReplyTimeout = 20 * time.Millisecond
	env.receiver.Handler = HandleFrameFunc(func(ctx context.Context, busID byte, f sport.Frame) {
		require.Equal(t, byte(0xa1), busID)
		select {
		case frameCh <- f:
		default:
		}
	})
	go env.receiver.Run(env.ctx)

	select {
	case f := <-frameCh:
		require.Equal(t, sport.NewDataFrame(0x0500, 7), f)
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
}
