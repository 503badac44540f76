package sh

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/msgs"
	"github.com/robotalks/sport/pkg/sport"
)

func printJSON(c *ishell.Context, v interface{}) {
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

var (
	// DiscoverCmd lists registered devices.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			metas, err := s.Discover(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				printJSON(c, metas)
				return
			}
			if len(metas) == 0 {
				c.Println("No devices found")
				return
			}
			for _, meta := range metas {
				c.Println(FormatMeta(meta))
			}
		},
	}

	// ConnectCmd selects a device.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "TYPE ID",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) >= 2 {
				if err := s.Connect(mqtt.Ref{Type: c.Args[0], ID: c.Args[1]}); err != nil {
					c.Err(err)
				}
				return
			}
			var filter func(mqtt.Meta) bool
			if len(c.Args) == 1 {
				filter = func(meta mqtt.Meta) bool {
					return meta.Ref.Type == c.Args[0]
				}
			}
			meta, err := s.SelectDevice(filter)
			if err != nil {
				c.Err(err)
				return
			}
			if meta == nil {
				c.Err(fmt.Errorf("no device discovered"))
				return
			}
			s.Use(meta)
		},
	}

	// DisconnectCmd deselects current device.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Use(nil)
		},
	}

	// MetaCmd prints the metadata of current device.
	MetaCmd = ishell.Cmd{
		Name: "meta",
		Help: "",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if s.OutputJSON {
				printJSON(c, s.Device)
				return
			}
			c.Println(FormatMeta(*s.Device))
		}),
	}

	// SetCmd updates a sensor slot of current device.
	SetCmd = ishell.Cmd{
		Name: "set",
		Help: "SLOT ID VALUE",
		Func: MustBeConnected(func(c *ishell.Context) {
			slot, id, value, err := parseSetArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if err = ShellFrom(c).SetSensor(slot, id, value); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// WatchCmd prints frames sent by current device.
	WatchCmd = ishell.Cmd{
		Name: "watch",
		Help: "[COUNT [SECONDS]]",
		Func: MustBeConnected(func(c *ishell.Context) {
			count, timeout := 10, 10*time.Second
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				count = n
			}
			if len(c.Args) > 1 {
				secs, err := strconv.Atoi(c.Args[1])
				if err != nil {
					c.Err(err)
					return
				}
				timeout = time.Duration(secs) * time.Second
			}
			s := ShellFrom(c)
			err := s.Watch(count, timeout, func(rec *msgs.FrameRecord) {
				if s.OutputJSON {
					printJSON(c, rec)
					return
				}
				c.Println(FormatFrame(rec))
			})
			if err != nil {
				c.Err(err)
			}
		}),
	}

	// IDsCmd lists physical sensor IDs.
	IDsCmd = ishell.Cmd{
		Name: "ids",
		Help: "",
		Func: func(c *ishell.Context) {
			if ShellFrom(c).OutputJSON {
				ids := make([]int, len(sport.PhysicalIDs))
				for n, id := range sport.PhysicalIDs {
					ids[n] = int(id)
				}
				printJSON(c, ids)
				return
			}
			c.Print(FormatIDs())
		},
	}
)
