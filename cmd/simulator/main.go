package main

import (
	"log"

	"github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/simulator"
)

func main() {
	log.SetFlags(0)
	c := config.NewSimulator()
	libol.SetLogger(c.Log.File, c.Log.Verbose)
	libol.Debug("main %v", c)
	s := simulator.NewSimulator(c)
	libol.PreNotify()
	s.Initialize()
	s.Start()
	libol.SdNotify()
	libol.Wait()
	libol.SdStopping()
	s.Stop()
}
