// Package msgs defines the protobuf payloads exchanged over MQTT.
package msgs

// Sensor values are pushed to a device as SensorUpdate; a device publishes
// each frame it sends on the bus as FrameRecord.
//
// Producer: applications (SensorUpdate), sensor device (FrameRecord)
// Consumer: sensor device (SensorUpdate), monitors (FrameRecord)
