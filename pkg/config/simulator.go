package config

import (
	"flag"
	"path/filepath"

	"github.com/luscis/vpnsim/pkg/libol"
)

type Simulator struct {
	File      string    `json:"-" yaml:"-"`
	Log       Log       `json:"log"`
	Http      *Http     `json:"http,omitempty"`
	Engine    Engine    `json:"engine"`
	Limit     Limit     `json:"limit"`
	Tunnels   []*Tunnel `json:"tunnels,omitempty"`
	ConfDir   string    `json:"-" yaml:"-"`
	TokenFile string    `json:"-" yaml:"-"`
}

var sim = &Simulator{}

func Get() *Simulator {
	return sim
}

func NewSimulator() *Simulator {
	s := &Simulator{}
	s.Parse()
	s.Initialize()
	sim = s
	return s
}

func (s *Simulator) Parse() {
	flag.StringVar(&s.Log.File, "log:file", "", "Configure log file")
	flag.StringVar(&s.ConfDir, "conf:dir", "/etc/vpnsim", "Configure simulator's directory")
	flag.IntVar(&s.Log.Verbose, "log:level", 20, "Configure log level")
	flag.Parse()
}

func (s *Simulator) Initialize() {
	s.File = s.findFile()
	if err := s.Load(); err != nil {
		libol.Error("Simulator.Initialize %s", err)
	}
	s.Correct()
	libol.Debug("Simulator.Initialize %v", s)
}

// findFile prefers simulator.json and falls back to the yaml flavors.
func (s *Simulator) findFile() string {
	for _, name := range []string{"simulator.json", "simulator.yaml", "simulator.yml"} {
		file := s.Dir(name)
		if libol.FileExist(file) == nil {
			return file
		}
	}
	return s.Dir("simulator.json")
}

func (s *Simulator) Correct() {
	s.Log.Correct()
	if s.Http == nil {
		s.Http = &Http{}
	}
	s.Http.Correct()
	s.Engine.Correct()
	s.Limit.Correct()
	for _, t := range s.Tunnels {
		t.Correct()
	}
	s.TokenFile = s.Dir("token")
}

func (s *Simulator) Dir(elem ...string) string {
	args := append([]string{s.ConfDir}, elem...)
	return filepath.Join(args...)
}

func (s *Simulator) Load() error {
	return libol.UnmarshalLoad(s, s.File)
}

func (s *Simulator) Save() error {
	return libol.MarshalSave(s, s.File, true)
}
