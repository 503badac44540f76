// Package config loads the sensor device daemon configuration.
//
// Values are resolved in order: built-in defaults, SPORT_* environment
// variables, the YAML config file, then command line flags.
package config

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/sport/pkg/env"
	"github.com/robotalks/sport/pkg/sport"
	"github.com/robotalks/sport/pkg/transport/serial"
)

// DefaultPollInterval is the interval the host loop polls the bus when
// no data wakes it up earlier.
const DefaultPollInterval = 2 * time.Millisecond

// Device configures the protocol engine.
type Device struct {
	Type      string        `yaml:"type"`
	ID        string        `yaml:"id"`
	BusID     uint8         `yaml:"bus-id"`
	Slots     int           `yaml:"slots"`
	IDTimeout time.Duration `yaml:"id-timeout"`
}

// Bus configures the line. Exactly one of Port and WebSocket is used.
type Bus struct {
	Port         string `yaml:"port"`
	Baud         int    `yaml:"baud"`
	RTSDirection bool   `yaml:"rts-direction"`
	InvertRTS    bool   `yaml:"invert-rts"`
	EchoCancel   bool   `yaml:"echo-cancel"`
	WebSocket    string `yaml:"websocket"`
}

// MQTT configures the broker connection. Empty URL disables MQTT.
type MQTT struct {
	// URL like mqtt://host:port/topic-prefix/
	URL string `yaml:"url"`
}

// Sensor is a static sensor seeded at startup.
type Sensor struct {
	Slot  int    `yaml:"slot"`
	ID    uint16 `yaml:"id"`
	Value uint32 `yaml:"value"`
}

// Config is the daemon configuration.
type Config struct {
	File         string        `yaml:"-"`
	Device       Device        `yaml:"device"`
	Bus          Bus           `yaml:"bus"`
	MQTT         MQTT          `yaml:"mqtt"`
	Sensors      []Sensor      `yaml:"sensors"`
	PollInterval time.Duration `yaml:"poll-interval"`
}

var baseConfig = Config{
	Device: Device{
		Type:      "sport",
		BusID:     sport.PhysicalIDs[0],
		IDTimeout: sport.DefaultIDTimeout,
	},
	Bus: Bus{
		Baud: serial.DefaultBaudRate,
	},
	PollInterval: DefaultPollInterval,
}

// defaultConfig receives the flag values.
var defaultConfig Config

func init() {
	baseConfig.Device.ID = env.MachineID()
	applyEnv(&baseConfig, os.Getenv)
	defaultConfig = baseConfig
}

func applyEnv(c *Config, getenv func(string) string) {
	if val := getenv("SPORT_CONFIG"); val != "" {
		c.File = val
	}
	if val := getenv("SPORT_PORT"); val != "" {
		c.Bus.Port = val
	}
	if val := getenv("SPORT_WS_URL"); val != "" {
		c.Bus.WebSocket = val
	}
	if val := getenv("SPORT_MQTT_URL"); val != "" {
		c.MQTT.URL = val
	}
	if val := getenv("SPORT_BUS_ID"); val != "" {
		if id, err := strconv.ParseUint(val, 0, 8); err == nil {
			c.Device.BusID = uint8(id)
		} else {
			glog.Warningf("ignore SPORT_BUS_ID=%q: %v", val, err)
		}
	}
}

type byteValue struct{ p *uint8 }

func (v byteValue) String() string {
	if v.p == nil {
		return ""
	}
	return fmt.Sprintf("0x%02x", *v.p)
}

func (v byteValue) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return err
	}
	*v.p = uint8(n)
	return nil
}

// flagFields copies a flag-bound field.
var flagFields = map[string]func(dst, src *Config){
	"config":     func(d, s *Config) { d.File = s.File },
	"type":       func(d, s *Config) { d.Device.Type = s.Device.Type },
	"id":         func(d, s *Config) { d.Device.ID = s.Device.ID },
	"bus-id":     func(d, s *Config) { d.Device.BusID = s.Device.BusID },
	"slots":      func(d, s *Config) { d.Device.Slots = s.Device.Slots },
	"id-timeout": func(d, s *Config) { d.Device.IDTimeout = s.Device.IDTimeout },
	"port":       func(d, s *Config) { d.Bus.Port = s.Bus.Port },
	"baud":       func(d, s *Config) { d.Bus.Baud = s.Bus.Baud },
	"rts":        func(d, s *Config) { d.Bus.RTSDirection = s.Bus.RTSDirection },
	"invert-rts": func(d, s *Config) { d.Bus.InvertRTS = s.Bus.InvertRTS },
	"echo":       func(d, s *Config) { d.Bus.EchoCancel = s.Bus.EchoCancel },
	"ws":         func(d, s *Config) { d.Bus.WebSocket = s.Bus.WebSocket },
	"mqtt":       func(d, s *Config) { d.MQTT.URL = s.MQTT.URL },
	"interval":   func(d, s *Config) { d.PollInterval = s.PollInterval },
}

// SetupFlags sets command line flags.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.File, "config", c.File, "YAML config file")
	flag.StringVar(&c.Device.Type, "type", c.Device.Type, "Device type")
	flag.StringVar(&c.Device.ID, "id", c.Device.ID, "Device ID")
	flag.Var(byteValue{&c.Device.BusID}, "bus-id", "Bus ID to answer")
	flag.IntVar(&c.Device.Slots, "slots", c.Device.Slots, "Active sensor slots")
	flag.DurationVar(&c.Device.IDTimeout, "id-timeout", c.Device.IDTimeout, "Wait for ID byte, negative waits forever")
	flag.StringVar(&c.Bus.Port, "port", c.Bus.Port, "Serial port")
	flag.IntVar(&c.Bus.Baud, "baud", c.Bus.Baud, "Baud rate")
	flag.BoolVar(&c.Bus.RTSDirection, "rts", c.Bus.RTSDirection, "Drive line direction with RTS")
	flag.BoolVar(&c.Bus.InvertRTS, "invert-rts", c.Bus.InvertRTS, "Deassert RTS while transmitting")
	flag.BoolVar(&c.Bus.EchoCancel, "echo", c.Bus.EchoCancel, "Drop local echo on single-wire line")
	flag.StringVar(&c.Bus.WebSocket, "ws", c.Bus.WebSocket, "WebSocket bus URL instead of serial port")
	flag.StringVar(&c.MQTT.URL, "mqtt", c.MQTT.URL, "MQTT broker URL")
	flag.DurationVar(&c.PollInterval, "interval", c.PollInterval, "Poll interval")
}

// NewConfig creates a Config from defaults, the config file and
// command line flags. It must be called after flag.Parse.
func NewConfig() (*Config, error) {
	var set []string
	flag.Visit(func(f *flag.Flag) {
		if _, ok := flagFields[f.Name]; ok {
			set = append(set, f.Name)
		}
	})
	return resolve(&defaultConfig, set)
}

func resolve(flags *Config, set []string) (*Config, error) {
	conf := baseConfig
	for _, name := range set {
		flagFields[name](&conf, flags)
	}
	if conf.File != "" {
		if err := conf.LoadFile(conf.File); err != nil {
			return nil, err
		}
		for _, name := range set {
			flagFields[name](&conf, flags)
		}
	}
	conf.normalize()
	return &conf, conf.Validate()
}

// LoadFile merges a YAML file into the config.
func (c *Config) LoadFile(fn string) error {
	data, err := ioutil.ReadFile(fn)
	if err != nil {
		return err
	}
	return c.Load(data)
}

// Load merges YAML content into the config.
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %v", c.File, err)
	}
	return nil
}

// normalize derives the slot count from static sensors when unset.
func (c *Config) normalize() {
	if c.Device.Slots != 0 {
		return
	}
	for _, s := range c.Sensors {
		if s.Slot >= c.Device.Slots {
			c.Device.Slots = s.Slot + 1
		}
	}
}

// Validate checks the config.
func (c *Config) Validate() error {
	if c.Device.ID == "" {
		return fmt.Errorf("device id must be specified")
	}
	if c.Device.Slots < 0 || c.Device.Slots > sport.MaxSensors {
		return fmt.Errorf("slots %d: %v", c.Device.Slots, sport.ErrInvalidSlotCount)
	}
	if !sport.IsPhysicalID(c.Device.BusID) {
		glog.Warningf("bus id 0x%02x is not a physical sensor ID", c.Device.BusID)
	}
	if (c.Bus.Port == "") == (c.Bus.WebSocket == "") {
		return fmt.Errorf("exactly one of serial port and websocket must be specified")
	}
	if c.Bus.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Bus.Baud)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("invalid poll interval %v", c.PollInterval)
	}
	for _, s := range c.Sensors {
		if s.Slot < 0 || s.Slot >= sport.MaxSensors {
			return &sport.SlotError{Slot: s.Slot}
		}
		if s.Slot >= c.Device.Slots {
			glog.Warningf("sensor %04x in slot %d is never sent with %d active slots", s.ID, s.Slot, c.Device.Slots)
		}
	}
	return nil
}

// DeviceConfig returns the protocol engine config.
func (c *Config) DeviceConfig() sport.DeviceConfig {
	return sport.DeviceConfig{
		BusID:       c.Device.BusID,
		ActiveSlots: c.Device.Slots,
		IDTimeout:   c.Device.IDTimeout,
	}
}

// SerialConfig returns the serial port config.
func (c *Config) SerialConfig() serial.Config {
	return serial.Config{
		Port:         c.Bus.Port,
		BaudRate:     c.Bus.Baud,
		RTSDirection: c.Bus.RTSDirection,
		InvertRTS:    c.Bus.InvertRTS,
		EchoCancel:   c.Bus.EchoCancel,
	}
}
