// Package sportd hosts a sensor device on a bus: it polls the protocol
// engine from the loop, seeds static sensors and bridges MQTT.
package sportd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/sport/pkg/config"
	"github.com/robotalks/sport/pkg/env"
	fx "github.com/robotalks/sport/pkg/framework"
	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/sport"
	"github.com/robotalks/sport/pkg/transport/serial"
	"github.com/robotalks/sport/pkg/transport/stream"
	"github.com/robotalks/sport/pkg/transport/websocket"
)

// DefaultStatsInterval is the interval stats are logged.
const DefaultStatsInterval = time.Minute

// Daemon is a sensor device attached to a bus.
type Daemon struct {
	Config        *config.Config
	Transport     *stream.Transport
	Device        *sport.Device
	Registrar     *mqtt.Registrar
	StatsInterval time.Duration

	handlers []sport.FrameHandler
}

// OpenTransport opens the bus configured.
func OpenTransport(conf *config.Config) (*stream.Transport, error) {
	if conf.Bus.WebSocket != "" {
		return websocket.Dial(conf.Bus.WebSocket, "http://localhost/")
	}
	return serial.Open(conf.SerialConfig())
}

// New opens the bus and creates a Daemon.
func New(conf *config.Config) (*Daemon, error) {
	t, err := OpenTransport(conf)
	if err != nil {
		return nil, err
	}
	d, err := NewWithTransport(conf, t)
	if err != nil {
		t.Close()
		return nil, err
	}
	return d, nil
}

// NewWithTransport creates a Daemon on an opened transport.
func NewWithTransport(conf *config.Config, t *stream.Transport) (*Daemon, error) {
	dev, err := sport.New(t, conf.DeviceConfig())
	if err != nil {
		return nil, fmt.Errorf("create device error: %v", err)
	}
	d := &Daemon{
		Config:        conf,
		Transport:     t,
		Device:        dev,
		StatsInterval: DefaultStatsInterval,
	}
	dev.Handler = d
	for _, s := range conf.Sensors {
		if err = dev.SetSensorData(s.Slot, s.ID, s.Value); err != nil {
			return nil, err
		}
	}
	if conf.MQTT.URL != "" {
		if err = d.setupMQTT(); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MustNew creates a Daemon and fails on error.
func MustNew(conf *config.Config) *Daemon {
	d, err := New(conf)
	if err != nil {
		log.Fatalln(err)
	}
	return d
}

func (d *Daemon) setupMQTT() error {
	conf := d.Config
	ref := mqtt.Ref{Type: conf.Device.Type, ID: conf.Device.ID}
	meta := mqtt.Meta{
		Ref:     ref,
		Machine: env.MachineID(),
		BusID:   conf.Device.BusID,
		Slots:   conf.Device.Slots,
	}
	for _, s := range conf.Sensors {
		meta.SensorIDs = append(meta.SensorIDs, s.ID)
	}
	reg, err := mqtt.NewRegistrar(conf.MQTT.URL, meta)
	if err != nil {
		return fmt.Errorf("create MQTT registrar error: %v", err)
	}
	d.Registrar = reg
	(&mqtt.Feed{Ref: ref, Target: d.Device}).Subscribe(reg.Queue)
	d.AddFrameHandler(&mqtt.Tap{Ref: ref, BusID: conf.Device.BusID, Publisher: reg.Queue})
	return nil
}

// AddFrameHandler adds a handler called after each frame is sent.
// It must be called before the loop runs.
func (d *Daemon) AddFrameHandler(h sport.FrameHandler) {
	d.handlers = append(d.handlers, h)
}

// FrameSent implements sport.FrameHandler.
func (d *Daemon) FrameSent(f sport.Frame) {
	for _, h := range d.handlers {
		h.FrameSent(f)
	}
}

// Control implements Controller.
func (d *Daemon) Control(ctx context.Context) error {
	d.Device.Poll()
	return nil
}

// AddToLoop implements LoopAdder.
func (d *Daemon) AddToLoop(loop *fx.Loop) {
	loop.Interval = d.Config.PollInterval
	d.Transport.OnData = loop.TriggerNext
	loop.AddController(d)
	loop.AddRunnable(fx.NamedRun("bus", d.Transport))
	if d.Registrar != nil {
		loop.AddRunnable(fx.NamedRun("mqtt", d.Registrar))
	}
	if d.StatsInterval > 0 {
		loop.AddRunnable(fx.NamedRun("stats", fx.RunnableFunc(d.logStats)))
	}
}

func (d *Daemon) logStats(ctx context.Context) error {
	ticker := time.NewTicker(d.StatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s := d.Device.Stats()
			glog.V(1).Infof("polls=%d matched=%d sent=%d timeouts=%d errors=%d",
				s.Polls, s.Matched, s.Sent, s.Timeouts, s.SendErrors)
		}
	}
}
