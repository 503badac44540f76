package sh

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/msgs"
	"github.com/robotalks/sport/pkg/sport"
)

func TestParseSetArgs(t *testing.T) {
	cases := []struct {
		args  []string
		slot  int
		id    uint16
		value uint32
		ok    bool
	}{
		{[]string{"0", "0x0100", "42"}, 0, 0x0100, 42, true},
		{[]string{"7", "272", "0xffffffff"}, 7, 0x0110, 0xffffffff, true},
		{[]string{"1", "0x0100", "-10"}, 1, 0x0100, 0xfffffff6, true},
		{[]string{"8", "0x0100", "1"}, 0, 0, 0, false},
		{[]string{"1", "0x10000", "1"}, 0, 0, 0, false},
		{[]string{"1", "0x0100", "0x100000000"}, 0, 0, 0, false},
		{[]string{"1", "0x0100"}, 0, 0, 0, false},
	}
	for _, c := range cases {
		slot, id, value, err := parseSetArgs(c.args)
		if !c.ok {
			require.Error(t, err, "%v mismatch", c.args)
			continue
		}
		require.NoError(t, err, "%v mismatch", c.args)
		require.Equal(t, c.slot, slot, "%v slot mismatch", c.args)
		require.Equal(t, c.id, id, "%v id mismatch", c.args)
		require.Equal(t, c.value, value, "%v value mismatch", c.args)
	}
}

func TestMetaCollector(t *testing.T) {
	var c metaCollector
	for _, meta := range []mqtt.Meta{
		{Ref: mqtt.Ref{Type: "sport", ID: "b"}, BusID: 0xa1, Slots: 1},
		{Ref: mqtt.Ref{Type: "sport", ID: "a"}, BusID: 0x22, Slots: 2},
		{Ref: mqtt.Ref{Type: "vario", ID: "c"}},
	} {
		payload, err := json.Marshal(&meta)
		require.NoError(t, err)
		c.handle(meta.Ref.MetaTopic(), payload)
	}
	c.handle("sport/gone/meta", nil)
	c.handle("sport/bad/meta", []byte("{"))

	metas := c.list(nil)
	require.Len(t, metas, 3)
	require.Equal(t, "sport/a", metas[0].Ref.Name())
	require.Equal(t, "sport/b", metas[1].Ref.Name())
	metas = c.list(func(m mqtt.Meta) bool { return m.Ref.Type == "vario" })
	require.Len(t, metas, 1)
}

func TestFormat(t *testing.T) {
	meta := mqtt.Meta{Ref: mqtt.Ref{Type: "sport", ID: "a"}, BusID: 0xa1, Slots: 2, SensorIDs: []uint16{0x0100, 0x0110}}
	require.Equal(t, "sport/a bus=0xa1 slots=2 sensors=0100,0110", FormatMeta(meta))

	rec := msgs.NewFrameRecord(0xa1, sport.NewDataFrame(0x0100, 0xfffffff6), time.Now())
	require.True(t, strings.HasSuffix(FormatFrame(rec), "bus=0xa1 type=0x10 id=0x0100 value=-10 (0xfffffff6)"), FormatFrame(rec))

	lines := strings.Split(strings.TrimSpace(FormatIDs()), "\n")
	require.Len(t, lines, len(sport.PhysicalIDs))
	require.Equal(t, " 1  0xa1", lines[1])
}
