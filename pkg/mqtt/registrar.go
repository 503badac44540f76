package mqtt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang/glog"
)

// Meta describes a device on the broker.
type Meta struct {
	Ref       Ref      `json:"ref"`
	Machine   string   `json:"machine,omitempty"`
	BusID     byte     `json:"bus-id"`
	Slots     int      `json:"slots"`
	SensorIDs []uint16 `json:"sensor-ids,omitempty"`
}

// Registrar owns the device connection to the broker. It keeps the
// metadata retained while connected and clears it through the will.
type Registrar struct {
	Queue *Queue
	Meta  Meta

	metaJSON []byte
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, meta Meta) (*Registrar, error) {
	metaJSON, err := json.Marshal(&meta)
	if err != nil {
		return nil, err
	}
	opts, topicPrefix, err := ClientOptionsFromURL(brokerURL)
	if err != nil {
		return nil, err
	}
	opts.SetBinaryWill(topicPrefix+meta.Ref.MetaTopic(), nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("sport:" + meta.Ref.Name())
	}
	r := &Registrar{
		Queue:    NewQueue(opts, topicPrefix),
		Meta:     meta,
		metaJSON: metaJSON,
	}
	r.Queue.OnConnect = func(q *Queue) {
		glog.V(1).Infof("register %s", meta.Ref.Name())
		q.PubWith(meta.Ref.MetaTopic(), r.metaJSON, 1, true)
	}
	return r, nil
}

// Run implements Runnable.
func (r *Registrar) Run(ctx context.Context) error {
	if token := r.Queue.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %v", token.Error())
	}
	<-ctx.Done()
	r.Queue.PubWith(r.Meta.Ref.MetaTopic(), nil, 1, true).Wait()
	return r.Queue.Close()
}
