package models

import (
	"net"

	"github.com/luscis/vpnsim/pkg/schema"
	nl "github.com/vishvananda/netlink"
)

// XfrmState renders an IPSec SA the way the kernel would hold it, so the
// simulated state can be compared with `ip xfrm state` output.
func XfrmState(sa *SecurityAssociation, t *Tunnel) *nl.XfrmState {
	src, dst := t.Local.PublicIP, t.Remote.PublicIP
	if sa.Direction == Inbound {
		src, dst = dst, src
	}
	state := &nl.XfrmState{
		Src:          net.ParseIP(src),
		Dst:          net.ParseIP(dst),
		Proto:        nl.XFRM_PROTO_ESP,
		Mode:         nl.XFRM_MODE_TUNNEL,
		Spi:          int(sa.Spi),
		ReplayWindow: int(sa.Replay.size()),
		Auth: &nl.XfrmStateAlgo{
			Name: t.IPSecProposal.Integrity,
		},
		Crypt: &nl.XfrmStateAlgo{
			Name: t.IPSecProposal.Encryption,
		},
	}
	state.Limits.TimeHard = uint64(sa.ExpiresAt.Sub(sa.CreatedAt).Seconds())
	if t.NATTraversal {
		state.Encap = &nl.XfrmStateEncap{
			Type:    nl.XFRM_ENCAP_ESPINUDP,
			SrcPort: NATTPort,
			DstPort: NATTPort,
		}
	}
	return state
}

const NATTPort = 4500

// NewXfrmSASchema is NewSASchema plus the kernel view of an IPSec SA.
func NewXfrmSASchema(sa *SecurityAssociation, t *Tunnel) schema.SA {
	obj := NewSASchema(sa)
	if sa.Class != ClassIPSec || t == nil {
		return obj
	}
	state := XfrmState(sa, t)
	obj.Mode = uint8(state.Mode)
	obj.Proto = uint8(state.Proto)
	obj.Source = state.Src.String()
	obj.Dest = state.Dst.String()
	return obj
}
