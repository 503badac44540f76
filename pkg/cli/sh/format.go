package sh

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/msgs"
	"github.com/robotalks/sport/pkg/sport"
)

// FormatMeta prints Meta into friendly string for display.
func FormatMeta(meta mqtt.Meta) string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "%s bus=0x%02x slots=%d", meta.Ref.Name(), meta.BusID, meta.Slots)
	if len(meta.SensorIDs) > 0 {
		ids := make([]string, len(meta.SensorIDs))
		for n, id := range meta.SensorIDs {
			ids[n] = fmt.Sprintf("%04x", id)
		}
		fmt.Fprintf(&w, " sensors=%s", strings.Join(ids, ","))
	}
	if meta.Machine != "" {
		fmt.Fprintf(&w, " machine=%s", meta.Machine)
	}
	return w.String()
}

// FormatFrame prints a FrameRecord.
func FormatFrame(rec *msgs.FrameRecord) string {
	f := rec.Frame()
	return fmt.Sprintf("%s bus=0x%02x type=0x%02x id=0x%04x value=%d (0x%08x)",
		rec.Time().Format("15:04:05.000"), rec.BusId, f.Type, f.SensorID, f.Value, uint32(f.Value))
}

// FormatIDs lists the physical sensor IDs.
func FormatIDs() string {
	var w bytes.Buffer
	for n, id := range sport.PhysicalIDs {
		fmt.Fprintf(&w, "%2d  0x%02x\n", n, id)
	}
	return w.String()
}

// parseValue accepts signed and unsigned values in any base, signed values
// are sent as two's complement.
func parseValue(s string) (uint32, error) {
	if strings.HasPrefix(s, "-") {
		v, err := strconv.ParseInt(s, 0, 32)
		return uint32(int32(v)), err
	}
	v, err := strconv.ParseUint(s, 0, 32)
	return uint32(v), err
}

func parseSetArgs(args []string) (slot int, id uint16, value uint32, err error) {
	if len(args) != 3 {
		err = fmt.Errorf("SLOT ID VALUE expected")
		return
	}
	if slot, err = strconv.Atoi(args[0]); err != nil {
		return
	}
	if slot < 0 || slot >= sport.MaxSensors {
		err = &sport.SlotError{Slot: slot}
		return
	}
	var n uint64
	if n, err = strconv.ParseUint(args[1], 0, 16); err != nil {
		return
	}
	id = uint16(n)
	value, err = parseValue(args[2])
	return
}
