package sh

import (
	"flag"
	"os"

	"github.com/robotalks/sport/pkg/mqtt"
)

// Config provides options to reach devices.
type Config struct {
	Ref mqtt.Ref

	// MQTTBrokerURL specifies the broker devices register to.
	// e.g. mqtt://host:port/topic-prefix/
	MQTTBrokerURL string
}

var defaultConfig = Config{
	MQTTBrokerURL: "mqtt://localhost:1883/",
}

func init() {
	if val := os.Getenv("SPORT_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("SPORT_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("SPORT_MQTT_URL"); val != "" {
		defaultConfig.MQTTBrokerURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "type", defaultConfig.Ref.Type, "Device type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "id", defaultConfig.Ref.ID, "Device ID to connect.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL.")
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}
