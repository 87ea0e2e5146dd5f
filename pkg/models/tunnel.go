package models

import (
	"fmt"
	"time"

	"github.com/luscis/vpnsim/pkg/schema"
)

type Status string

const (
	StatusDown        Status = "down"
	StatusConnecting  Status = "connecting"
	StatusEstablished Status = "established"
	StatusError       Status = "error"
)

var Statuses = []Status{StatusDown, StatusConnecting, StatusEstablished, StatusError}

type TunnelType string

const (
	SiteToSite   TunnelType = "site-to-site"
	RemoteAccess TunnelType = "remote-access"
	HubSpoke     TunnelType = "hub-spoke"
)

func (t TunnelType) Valid() bool {
	switch t {
	case SiteToSite, RemoteAccess, HubSpoke:
		return true
	}
	return false
}

type Tunnel struct {
	ID            string
	Name          string
	Type          TunnelType
	Local         schema.Endpoint
	Remote        schema.Endpoint
	IKEProposal   schema.IKEProposal
	IPSecProposal schema.IPSecProposal
	PSK           string
	DPD           bool
	NATTraversal  bool
	// Peer is the simulated responder, it plays the far end of every
	// exchange.
	Peer          schema.Peer
	Status        Status
	State         string
	Reason        Code
	CreatedAt     time.Time
	EstablishedAt time.Time
	RekeyCount    int
	PacketsIn     int64
	PacketsOut    int64
	IKESpi        uint32
	InboundSpi    uint32
	OutboundSpi   uint32
	LastSeen      time.Time
	ProbeAt       time.Time
	RekeyPending  bool
	MessageID     uint32
}

func (t *Tunnel) String() string {
	return fmt.Sprintf("{ID: %s Name: %s %s -> %s Status: %s}", t.ID, t.Name,
		t.Local.PublicIP, t.Remote.PublicIP, t.Status)
}

// Bound reports whether the tunnel holds a full set of SAs.
func (t *Tunnel) Bound() bool {
	return t.IKESpi != 0 && t.InboundSpi != 0 && t.OutboundSpi != 0
}

func (t *Tunnel) Bind(ike, in, out uint32) {
	t.IKESpi = ike
	t.InboundSpi = in
	t.OutboundSpi = out
}

func (t *Tunnel) Unbind() {
	t.Bind(0, 0, 0)
}

func (t *Tunnel) NextMessageID() uint32 {
	id := t.MessageID
	t.MessageID++
	return id
}

func (t *Tunnel) UpTime(now time.Time) int64 {
	if t.EstablishedAt.IsZero() {
		return 0
	}
	return int64(now.Sub(t.EstablishedAt).Seconds())
}

func NewTunnelSchema(t *Tunnel) schema.Tunnel {
	st := schema.Tunnel{
		ID:             t.ID,
		Name:           t.Name,
		Type:           string(t.Type),
		LocalEndpoint:  t.Local,
		RemoteEndpoint: t.Remote,
		IKEProposal:    t.IKEProposal.ID,
		IPSecProposal:  t.IPSecProposal.ID,
		DPDEnabled:     t.DPD,
		NATTraversal:   t.NATTraversal,
		Status:         string(t.Status),
		State:          t.State,
		Reason:         string(t.Reason),
		CreatedAt:      t.CreatedAt.Unix(),
		RekeyCount:     t.RekeyCount,
		PacketsIn:      t.PacketsIn,
		PacketsOut:     t.PacketsOut,
		IKESpi:         t.IKESpi,
		InboundSpi:     t.InboundSpi,
		OutboundSpi:    t.OutboundSpi,
		Peer:           t.Peer,
	}
	// the peer secret never leaves the engine.
	st.Peer.PSK = ""
	if !t.EstablishedAt.IsZero() {
		st.EstablishedAt = t.EstablishedAt.Unix()
	}
	return st
}
