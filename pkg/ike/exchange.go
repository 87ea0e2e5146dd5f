package ike

import (
	"fmt"
	"time"

	"github.com/luscis/vpnsim/pkg/cache"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
)

// Exchange runs the exchanges of an established IKE SA.
type Exchange struct {
	Tunnel *models.Tunnel
	Store  *cache.SAStore
	Out    Journal
	now    time.Time
	out    *libol.SubLogger
}

func NewExchange(t *models.Tunnel, store *cache.SAStore, out Journal, now time.Time) *Exchange {
	return &Exchange{
		Tunnel: t,
		Store:  store,
		Out:    out,
		now:    now,
		out:    libol.NewSubLogger(t.ID),
	}
}

func (e *Exchange) send(typ string, id uint32, payloads ...string) {
	e.Out.Message(models.NewMessage(e.Tunnel.ID, models.Sent, typ, id, true, e.now, payloads...))
}

func (e *Exchange) recv(typ string, id uint32, payloads ...string) {
	e.Out.Message(models.NewMessage(e.Tunnel.ID, models.Received, typ, id, false, e.now, payloads...))
}

func (e *Exchange) reachable() bool {
	return Reachable(e.Tunnel)
}

// Rekey replaces the IKE SA and the IPSec pair of an established tunnel.
// The new SAs are installed before the old ones are deleted. On failure
// the tunnel keeps its old SAs.
func (e *Exchange) Rekey() error {
	t := e.Tunnel
	if t.Status != models.StatusEstablished || !t.Bound() {
		return models.NewError(models.TunnelNotEstablished, "tunnel %s is %s", t.ID, t.Status)
	}
	oldIKE, oldIn, oldOut := t.IKESpi, t.InboundSpi, t.OutboundSpi

	id := t.NextMessageID()
	e.send(CreateChildSA, id, "SA", "Ni", "KEi")
	if !e.reachable() {
		return models.NewError(models.Timeout, "no rekey response from %s", t.Remote.PublicIP)
	}
	if !ikeAgreed(t) {
		e.recv(CreateChildSA, id, "N(NO_PROPOSAL_CHOSEN)")
		return models.NewError(models.ProposalMismatch, "peer refused ike proposal %s", t.IKEProposal.ID)
	}
	ike, err := e.Store.Allocate(models.ClassIKE, t.ID, t.IKEProposal.ID,
		lifetime(t.IKEProposal.Lifetime), "", e.now)
	if err != nil {
		return models.NewError(models.InvalidParams, "%s", err)
	}
	e.recv(CreateChildSA, id, "SA", "Nr", "KEr")

	id = t.NextMessageID()
	rekeySA := fmt.Sprintf("N(REKEY_SA,%08x)", oldOut)
	e.send(CreateChildSA, id, childPayloads(t, "Ni", rekeySA)...)
	if !ipsecAgreed(t) {
		e.recv(CreateChildSA, id, "N(NO_PROPOSAL_CHOSEN)")
		e.Store.Release(ike.Class, ike.Spi)
		return models.NewError(models.ProposalMismatch, "peer refused ipsec proposal %s", t.IPSecProposal.ID)
	}
	in, out, err := allocateChild(e.Store, t, e.now)
	if err != nil {
		e.Store.Release(ike.Class, ike.Spi)
		return err
	}
	e.recv(CreateChildSA, id, childPayloads(t, "Nr")...)

	t.Bind(ike.Spi, in.Spi, out.Spi)
	t.RekeyCount++
	t.RekeyPending = false

	id = t.NextMessageID()
	e.send(Informational, id, fmt.Sprintf("D(ESP,%08x,%08x)", oldIn, oldOut), fmt.Sprintf("D(IKE,%08x)", oldIKE))
	e.recv(Informational, id, "D(ESP)")
	e.Store.Release(models.ClassIPSec, oldIn)
	e.Store.Release(models.ClassIPSec, oldOut)
	e.Store.Release(models.ClassIKE, oldIKE)
	e.out.Info("Exchange.Rekey %s ike %08x -> %08x", t, oldIKE, ike.Spi)
	return nil
}

// Delete tells the peer the SAs are going away and releases them. An
// unreachable peer gets the request only.
func (e *Exchange) Delete() {
	t := e.Tunnel
	if t.IKESpi != 0 {
		id := t.NextMessageID()
		payloads := []string{fmt.Sprintf("D(IKE,%08x)", t.IKESpi)}
		if t.InboundSpi != 0 {
			payloads = append(payloads, fmt.Sprintf("D(ESP,%08x,%08x)", t.InboundSpi, t.OutboundSpi))
		}
		e.send(Informational, id, payloads...)
		if e.reachable() {
			e.recv(Informational, id)
		}
	}
	e.Release()
}

// Release drops every SA of the tunnel without signalling.
func (e *Exchange) Release() {
	t := e.Tunnel
	for _, sa := range e.Store.ByTunnel(t.ID) {
		e.Store.Release(sa.Class, sa.Spi)
	}
	t.Unbind()
}

// Probe sends an empty INFORMATIONAL request and reports whether the peer
// answered it.
func (e *Exchange) Probe() bool {
	t := e.Tunnel
	id := t.NextMessageID()
	e.send(Informational, id)
	if !e.reachable() {
		return false
	}
	e.recv(Informational, id)
	return true
}
