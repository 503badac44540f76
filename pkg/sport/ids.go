package sport

// PhysicalIDs are the bus IDs a receiver polls, in ID order. The upper three
// bits of each are parity over the lower five.
var PhysicalIDs = [...]byte{
	0x00, 0xa1, 0x22, 0x83, 0xe4, 0x45, 0xc6, 0x67,
	0x48, 0xe9, 0x6a, 0xcb, 0xac, 0x0d, 0x8e, 0x2f,
	0xd0, 0x71, 0xf2, 0x53, 0x34, 0x95, 0x16, 0xb7,
	0x98, 0x39, 0xba, 0x1b,
}

// PhysicalID returns the bus ID of the n-th physical sensor (0-based).
func PhysicalID(n int) (byte, bool) {
	if n < 0 || n >= len(PhysicalIDs) {
		return 0, false
	}
	return PhysicalIDs[n], true
}

// IsPhysicalID checks if b is one of PhysicalIDs.
func IsPhysicalID(b byte) bool {
	return PhysicalIndex(b) >= 0
}

// PhysicalIndex returns the index of b in PhysicalIDs or -1.
func PhysicalIndex(b byte) int {
	if n := int(b & 0x1f); n < len(PhysicalIDs) && PhysicalIDs[n] == b {
		return n
	}
	return -1
}
