package main

//go-build: CGO_ENABLED=0

import (
	"flag"
	"log"

	"github.com/robotalks/sport/pkg/config"
	"github.com/robotalks/sport/pkg/framework"
	"github.com/robotalks/sport/pkg/sportd"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()

	conf, err := config.NewConfig()
	if err != nil {
		log.Fatalln(err)
	}
	d := sportd.MustNew(conf)
	framework.NewLoop().Add(d).RunOrFail()
}
