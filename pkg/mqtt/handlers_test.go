package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/sport/pkg/msgs"
	"github.com/robotalks/sport/pkg/sport"
)

type fakePublisher struct {
	topics   []string
	payloads [][]byte
}

func (p *fakePublisher) Pub(topic string, payload []byte) paho.Token {
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return &paho.DummyToken{}
}

func TestFeedAppliesUpdate(t *testing.T) {
	dev, err := sport.New(nil, sport.DeviceConfig{BusID: 0x05, ActiveSlots: 2})
	require.NoError(t, err)
	feed := &Feed{Ref: Ref{ID: "dev1"}, Target: dev}

	payload, err := msgs.Encode(&msgs.SensorUpdate{Slot: 1, SensorId: 0x0100, Value: 42})
	require.NoError(t, err)
	require.NoError(t, feed.apply(payload))
	entry, err := dev.SensorData(1)
	require.NoError(t, err)
	require.Equal(t, sport.SensorEntry{ID: 0x0100, Value: 42}, entry, "entry mismatch")

	payload, err = msgs.Encode(&msgs.SensorUpdate{Slot: 9, SensorId: 0x0100})
	require.NoError(t, err)
	require.Error(t, feed.apply(payload))
	require.Error(t, feed.apply([]byte{0xff}))
}

func TestTapPublishesFrames(t *testing.T) {
	pub := &fakePublisher{}
	at := time.Unix(1500000000, 0)
	tap := &Tap{Ref: Ref{ID: "dev1"}, BusID: 0x05, Publisher: pub, Now: func() time.Time { return at }}
	tap.FrameSent(sport.NewDataFrame(0x0100, 42))

	require.Equal(t, []string{"sport/dev1/frames"}, pub.topics)
	rec, err := msgs.DecodeFrameRecord(pub.payloads[0])
	require.NoError(t, err)
	require.Equal(t, uint32(0x05), rec.BusId, "bus id mismatch")
	require.Equal(t, sport.NewDataFrame(0x0100, 42), rec.Frame(), "frame mismatch")
	require.True(t, at.Equal(rec.Time()), "timestamp mismatch")
}

func TestRegistrarMeta(t *testing.T) {
	meta := Meta{Ref: Ref{ID: "dev1"}, BusID: 0xa1, Slots: 2, SensorIDs: []uint16{0x0100, 0x0110}}
	r, err := NewRegistrar("tcp://localhost:1883/robots/", meta)
	require.NoError(t, err)
	require.Equal(t, "robots/", r.Queue.TopicPrefix)

	var decoded Meta
	require.NoError(t, json.Unmarshal(r.metaJSON, &decoded))
	require.Equal(t, meta, decoded, "meta mismatch")
}
