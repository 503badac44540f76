package mqtt

// DefaultDeviceType is the type segment of device topics.
const DefaultDeviceType = "sport"

// Ref identifies a device on the broker.
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Name returns the topic path of the device.
func (r Ref) Name() string {
	t := r.Type
	if t == "" {
		t = DefaultDeviceType
	}
	return t + "/" + r.ID
}

// SensorsTopic carries SensorUpdate messages to the device.
func (r Ref) SensorsTopic() string {
	return r.Name() + "/sensors"
}

// FramesTopic carries FrameRecord messages for every frame sent.
func (r Ref) FramesTopic() string {
	return r.Name() + "/frames"
}

// MetaTopic holds the retained device metadata.
func (r Ref) MetaTopic() string {
	return r.Name() + "/meta"
}
