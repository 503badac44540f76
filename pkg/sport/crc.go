package sport

// Checksum folds bytes into the Smart Port checksum: an 8-bit sum with
// end-around carry, complemented.
//
// For a frame with byte 7 set to 0 the result is the CRC to store in byte 7.
// For a complete frame (CRC included) the result is 0.
func Checksum(b []byte) byte {
	var crc uint16
	for _, v := range b {
		crc += uint16(v) // 0-1FF
		crc += crc >> 8  // 0-100
		crc &= 0xff
		crc += crc >> 8 // 0-FF
		crc &= 0xff
	}
	return ^byte(crc)
}

// FrameCRC computes the CRC of a raw frame ignoring whatever is in byte 7.
func FrameCRC(raw [FrameSize]byte) byte {
	raw[FrameSize-1] = 0
	return Checksum(raw[:])
}
