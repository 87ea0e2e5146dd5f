// Package simulator runs the engine behind its HTTP surface.
package simulator

import (
	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/vpn"
)

type Simulator struct {
	cfg     *co.Simulator
	manager *vpn.Manager
	http    *Http
	out     *libol.SubLogger
}

func NewSimulator(c *co.Simulator) *Simulator {
	m := vpn.NewManager(c)
	return &Simulator{
		cfg:     c,
		manager: m,
		http:    NewHttp(m, c),
		out:     libol.NewSubLogger("simulator"),
	}
}

func (s *Simulator) Manager() *vpn.Manager {
	return s.manager
}

func (s *Simulator) Http() *Http {
	return s.http
}

func (s *Simulator) Initialize() {
	s.manager.Initialize()
}

func (s *Simulator) Start() {
	s.out.Info("Simulator.Start")
	s.manager.Start()
	s.http.Start()
}

func (s *Simulator) Stop() {
	s.out.Info("Simulator.Stop")
	s.http.Shutdown()
	s.manager.Stop()
}
