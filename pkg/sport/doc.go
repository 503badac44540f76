// Package sport implements the sensor side of the FrSky Smart Port protocol.
package sport

// Smart Port is a single-wire half-duplex serial link (57600 8N1) shared by
// a receiver and multiple sensors. The receiver polls the bus by sending the
// frame-begin marker 0x7E followed by a physical ID. The sensor owning that ID
// answers immediately with one 8-byte data frame:
//
//   type | id (2 bytes LE) | value (4 bytes LE) | crc
//
// Bytes equal to 0x7E or 0x7D inside a frame are stuffed as 0x7D, b^0x20.
//
// Producer: sensor device (this package)
// Consumer: receiver
