package sport

// MaxSensors is the capacity of a SensorTable.
const MaxSensors = 8

// SensorEntry is one pre-formatted sensor reading.
type SensorEntry struct {
	ID    uint16
	Value uint32
}

// SensorTable is a fixed-capacity slot table. Entries are overwritten, never
// removed.
type SensorTable [MaxSensors]SensorEntry

// Set overwrites the entry at slot.
func (t *SensorTable) Set(slot int, id uint16, value uint32) error {
	if slot < 0 || slot >= MaxSensors {
		return &SlotError{Slot: slot}
	}
	t[slot] = SensorEntry{ID: id, Value: value}
	return nil
}

// Get returns the entry at slot. slot must be in range.
func (t *SensorTable) Get(slot int) SensorEntry {
	return t[slot]
}
