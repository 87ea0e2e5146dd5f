package config

import "github.com/luscis/vpnsim/pkg/schema"

// Tunnel is a tunnel created when the engine initializes.
type Tunnel struct {
	Name          string       `json:"name"`
	Type          string       `json:"type,omitempty"`
	Local         string       `json:"local"`
	Remote        string       `json:"remote"`
	IKEProposal   string       `json:"ikeProposal" yaml:"ikeProposal"`
	IPSecProposal string       `json:"ipsecProposal" yaml:"ipsecProposal"`
	PSK           string       `json:"psk"`
	DPD           *bool        `json:"dpd,omitempty"`
	NATTraversal  bool         `json:"natTraversal,omitempty" yaml:"natTraversal,omitempty"`
	Peer          *schema.Peer `json:"peer,omitempty"`
}

func (t *Tunnel) Correct() {
	if t.Type == "" {
		t.Type = "site-to-site"
	}
	if t.DPD == nil {
		enabled := true
		t.DPD = &enabled
	}
}

func (t *Tunnel) Params() schema.TunnelParams {
	natt := t.NATTraversal
	return schema.TunnelParams{
		Name:          t.Name,
		Type:          t.Type,
		Local:         t.Local,
		Remote:        t.Remote,
		IKEProposal:   t.IKEProposal,
		IPSecProposal: t.IPSecProposal,
		PSK:           t.PSK,
		DPDEnabled:    t.DPD,
		NATTraversal:  &natt,
		Peer:          t.Peer,
	}
}
