package api

import (
	"github.com/gorilla/mux"
	"github.com/luscis/vpnsim/pkg/schema"
)

type Enginer interface {
	Start()
	Stop()
	Running() bool
	UpTime() int64
}

type Tunneler interface {
	CreateTunnel(p schema.TunnelParams) (schema.Tunnel, error)
	DeleteTunnel(id string) error
	GetTunnel(id string) (schema.Tunnel, error)
	ListTunnels() []schema.Tunnel
	Connect(id string) (schema.Tunnel, error)
	Disconnect(id string) (schema.Tunnel, error)
	Rekey(id string) (schema.Tunnel, error)
	RunDeadPeerDetection(id string) (schema.Tunnel, error)
	SetPeerAlive(id string, alive bool) (schema.Tunnel, error)
	SelectTunnel(id string) error
	Selected() string
}

type Packeter interface {
	EncryptPacket(p schema.Packet) (*schema.ESPPacket, error)
	Encapsulate(id string, p schema.Packet) (*schema.ESPPacket, error)
	DecryptPacket(p *schema.ESPPacket) (*schema.Packet, error)
	ListPackets(limit int) []schema.ESPPacket
}

type Viewer interface {
	ListMessages(tunnel string, limit int) []schema.IKEMessage
	ListEvents(limit int) []schema.Event
	ListSAs(class string) []schema.SA
	Stats() schema.Stats
	Index() schema.Index
	SetActive(active bool)
	Subscribe(size int) (<-chan schema.Event, func())
}

type Simulator interface {
	Enginer
	Tunneler
	Packeter
	Viewer
}

func Add(router *mux.Router, sim Simulator, rate int) {
	Tunnel{Simulator: sim}.Router(router)
	NewPacket(sim, rate).Router(router)
	Message{Simulator: sim}.Router(router)
	Event{Simulator: sim}.Router(router)
	SA{Simulator: sim}.Router(router)
	Stats{Simulator: sim}.Router(router)
	Engine{Simulator: sim}.Router(router)
	Proposal{}.Router(router)
	Log{}.Router(router)
	Version{}.Router(router)
}
