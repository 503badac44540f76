package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/msgs"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	// Wait is how long discovery collects retained metadata.
	Wait time.Duration

	Shell  *ishell.Shell
	Config *Config
	Queue  *mqtt.Queue
	Device *mqtt.Meta
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	metaPattern       = "+/+/meta"
	// DefaultWait is the default discovery wait.
	DefaultWait = 500 * time.Millisecond
	cmdTimeout  = time.Second
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&MetaCmd,
		&SetCmd,
		&WatchCmd,
		&IDsCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// New creates a new shell.
func New(conf *Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Wait:        DefaultWait,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a device.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Device == nil {
			c.Err(fmt.Errorf("not connected"))
			return
		}
		fn(c)
	}
}

func waitToken(token interface {
	WaitTimeout(time.Duration) bool
	Error() error
}) error {
	if !token.WaitTimeout(cmdTimeout) {
		return fmt.Errorf("broker timeout")
	}
	return token.Error()
}

// Broker returns the broker connection, connecting on first use.
func (s *Shell) Broker() (*mqtt.Queue, error) {
	if s.Queue != nil {
		return s.Queue, nil
	}
	q, err := mqtt.NewQueueFromURL(s.Config.MQTTBrokerURL)
	if err != nil {
		return nil, err
	}
	if err = waitToken(q.Connect()); err != nil {
		return nil, fmt.Errorf("connect %s error: %v", s.Config.MQTTBrokerURL, err)
	}
	s.Queue = q
	return q, nil
}

// metaCollector gathers retained device metadata.
type metaCollector struct {
	lock  sync.Mutex
	metas map[string]mqtt.Meta
}

func (c *metaCollector) handle(topic string, payload []byte) {
	if len(payload) == 0 {
		return
	}
	var meta mqtt.Meta
	if err := json.Unmarshal(payload, &meta); err != nil {
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.metas == nil {
		c.metas = make(map[string]mqtt.Meta)
	}
	c.metas[meta.Ref.Name()] = meta
}

func (c *metaCollector) list(filter func(mqtt.Meta) bool) []mqtt.Meta {
	c.lock.Lock()
	defer c.lock.Unlock()
	metas := make([]mqtt.Meta, 0, len(c.metas))
	for _, meta := range c.metas {
		if filter == nil || filter(meta) {
			metas = append(metas, meta)
		}
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].Ref.Name() < metas[j].Ref.Name()
	})
	return metas
}

// Discover collects registered devices.
func (s *Shell) Discover(filter func(mqtt.Meta) bool) ([]mqtt.Meta, error) {
	q, err := s.Broker()
	if err != nil {
		return nil, err
	}
	var collector metaCollector
	if err = waitToken(q.Sub(metaPattern, collector.handle)); err != nil {
		return nil, err
	}
	time.Sleep(s.Wait)
	q.Unsub(metaPattern)
	return collector.list(filter), nil
}

// SelectDevice discovers devices and asks for a choice.
func (s *Shell) SelectDevice(filter func(mqtt.Meta) bool) (*mqtt.Meta, error) {
	metas, err := s.Discover(filter)
	if err != nil || len(metas) == 0 {
		return nil, err
	}
	var index int
	if len(metas) > 1 {
		if !s.Interactive {
			return nil, fmt.Errorf("more than 1 devices discovered in non-interactive mode")
		}
		items := make([]string, len(metas))
		for n, meta := range metas {
			items[n] = FormatMeta(meta)
		}
		index = s.Shell.MultiChoice(items, "Which one to connect?")
	}
	return &metas[index], nil
}

// Connect selects the device with ref.
func (s *Shell) Connect(ref mqtt.Ref) error {
	metas, err := s.Discover(func(meta mqtt.Meta) bool {
		return meta.Ref.Name() == ref.Name()
	})
	if err != nil {
		return err
	}
	if len(metas) == 0 {
		return fmt.Errorf("device %s not registered", ref.Name())
	}
	s.Use(&metas[0])
	return nil
}

// Use sets the current device.
func (s *Shell) Use(meta *mqtt.Meta) {
	s.Device = meta
	if meta == nil {
		s.Shell.SetPrompt(unconnectedPrompt)
		return
	}
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", meta.Ref.Name()))
}

// SetSensor publishes a sensor update to the current device.
func (s *Shell) SetSensor(slot int, id uint16, value uint32) error {
	q, err := s.Broker()
	if err != nil {
		return err
	}
	payload, err := msgs.Encode(&msgs.SensorUpdate{Slot: uint32(slot), SensorId: uint32(id), Value: value})
	if err != nil {
		return err
	}
	return waitToken(q.Pub(s.Device.Ref.SensorsTopic(), payload))
}

// Watch prints frames sent by the current device until count frames are
// received or the timeout expires.
func (s *Shell) Watch(count int, timeout time.Duration, fn func(*msgs.FrameRecord)) error {
	q, err := s.Broker()
	if err != nil {
		return err
	}
	recCh := make(chan *msgs.FrameRecord, 16)
	topic := s.Device.Ref.FramesTopic()
	token := q.Sub(topic, func(_ string, payload []byte) {
		if rec, err := msgs.DecodeFrameRecord(payload); err == nil {
			select {
			case recCh <- rec:
			default:
			}
		}
	})
	if err = waitToken(token); err != nil {
		return err
	}
	defer q.Unsub(topic)
	deadline := time.After(timeout)
	for n := 0; count <= 0 || n < count; n++ {
		select {
		case rec := <-recCh:
			fn(rec)
		case <-deadline:
			return nil
		}
	}
	return nil
}

// Close disconnects the broker.
func (s *Shell) Close() {
	if s.Queue != nil {
		s.Queue.Close()
		s.Queue = nil
	}
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Close()
	if ref := s.Config.Ref; ref.ID != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref.Name())
		}
		if err := s.Connect(ref); err != nil {
			log.Fatalf("connect %q failed: %v", ref.Name(), err)
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(NewConfig()).Run(flag.Args()...)
}
