package sport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSensorTable(t *testing.T) {
	var table SensorTable
	for slot := 0; slot < MaxSensors; slot++ {
		require.Equal(t, SensorEntry{}, table.Get(slot))
		require.NoError(t, table.Set(slot, uint16(slot), uint32(slot*10)))
	}
	require.NoError(t, table.Set(3, 0x0210, 99))
	require.Equal(t, SensorEntry{ID: 0x0210, Value: 99}, table.Get(3))
	require.Equal(t, SensorEntry{ID: 4, Value: 40}, table.Get(4))
}

func TestSensorTableSlotRange(t *testing.T) {
	var table SensorTable
	for _, slot := range []int{-1, MaxSensors, 255} {
		err := table.Set(slot, 1, 1)
		var slotErr *SlotError
		require.Truef(t, errors.As(err, &slotErr), "slot %d", slot)
		require.Equal(t, slot, slotErr.Slot)
	}
	require.Equal(t, SensorTable{}, table)
}
