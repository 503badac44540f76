package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/sport/pkg/mqtt"
	"github.com/robotalks/sport/pkg/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/"
)

func init() {
	if val := os.Getenv("SPORT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("#", func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/frames"):
			rec, err := msgs.DecodeFrameRecord(payload)
			if err != nil {
				log.Printf("%s: bad frame: %v", topic, err)
				return
			}
			f := rec.Frame()
			log.Printf("%s: bus=0x%02x id=0x%04x value=%d", topic, rec.BusId, f.SensorID, f.Value)
		case strings.HasSuffix(topic, "/sensors"):
			u, err := msgs.DecodeSensorUpdate(payload)
			if err != nil {
				log.Printf("%s: bad update: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, u.String())
		}
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
