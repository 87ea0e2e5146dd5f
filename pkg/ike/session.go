// Package ike drives the simulated IKEv2 exchanges of a tunnel. The
// simulation plays both ends: every request is answered by the tunnel's
// Peer settings, which is how mismatches and timeouts get injected.
package ike

import (
	"time"

	"github.com/luscis/vpnsim/pkg/cache"
	"github.com/luscis/vpnsim/pkg/catalog"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

// Journal receives what a negotiation produces.
type Journal interface {
	Message(msg schema.IKEMessage)
	Event(ev schema.Event)
}

type Session struct {
	Tunnel *models.Tunnel
	Store  *cache.SAStore
	Out    Journal
	State  State
	Err    *models.Error
	now    time.Time
	ikeSA  *models.SecurityAssociation
	inSA   *models.SecurityAssociation
	outSA  *models.SecurityAssociation
	out    *libol.SubLogger
}

func NewSession(t *models.Tunnel, store *cache.SAStore, out Journal) *Session {
	return &Session{
		Tunnel: t,
		Store:  store,
		Out:    out,
		State:  Idle,
		out:    libol.NewSubLogger(t.ID),
	}
}

func (s *Session) Done() bool {
	return s.State.Final()
}

// Step runs one transition at now. Stepping a finished session does
// nothing.
func (s *Session) Step(now time.Time) State {
	if s.Done() {
		return s.State
	}
	call, ok := transitions[s.State]
	if !ok {
		s.fail(models.NewError(models.InvalidParams, "no transition from %s", s.State))
		return s.State
	}
	s.now = now
	from := s.State
	next, err := call(s)
	if err != nil {
		s.fail(err)
		return s.State
	}
	s.State = next
	if next != Established {
		s.Tunnel.State = next.String()
	}
	s.out.Debug("Session.Step %s -> %s", from, next)
	return next
}

// Run steps until the session is finished and returns the failure, if
// any.
func (s *Session) Run(now time.Time) error {
	for !s.Done() {
		s.Step(now)
	}
	if s.Err != nil {
		return s.Err
	}
	return nil
}

// Abort stops an unfinished session and releases what it allocated.
func (s *Session) Abort(now time.Time, format string, v ...interface{}) {
	if s.Done() {
		return
	}
	s.now = now
	s.fail(models.NewError(models.Aborted, format, v...))
}

func (s *Session) fail(err error) {
	e, ok := err.(*models.Error)
	if !ok {
		e = models.NewError(models.InvalidParams, "%s", err)
	}
	from := s.State
	s.release()
	t := s.Tunnel
	t.Unbind()
	t.Status = models.StatusError
	t.State = Error.String()
	t.Reason = e.Code
	t.EstablishedAt = time.Time{}
	s.State = Error
	s.Err = e
	s.out.Warn("Session.fail %s in %s: %s", t, from, e)
	s.event(models.SevError, e.Code, "negotiation failed in %s: %s", from, e.Message)
}

func (s *Session) release() {
	for _, sa := range []*models.SecurityAssociation{s.ikeSA, s.inSA, s.outSA} {
		if sa != nil {
			s.Store.Release(sa.Class, sa.Spi)
		}
	}
	s.ikeSA, s.inSA, s.outSA = nil, nil, nil
}

func (s *Session) send(typ string, id uint32, payloads ...string) {
	s.Out.Message(models.NewMessage(s.Tunnel.ID, models.Sent, typ, id, true, s.now, payloads...))
}

func (s *Session) recv(typ string, id uint32, payloads ...string) {
	s.Out.Message(models.NewMessage(s.Tunnel.ID, models.Received, typ, id, false, s.now, payloads...))
}

func (s *Session) event(sev models.Severity, code models.Code, format string, v ...interface{}) {
	s.Out.Event(models.NewEvent(s.Tunnel.ID, sev, code, s.now, format, v...))
}

func (s *Session) saInit() (State, error) {
	t := s.Tunnel
	t.Status = models.StatusConnecting
	t.Reason = ""
	t.MessageID = 0
	id := t.NextMessageID()
	payloads := []string{"SA", "KE", "Ni"}
	if t.NATTraversal {
		payloads = append(payloads, "N(NAT_DETECTION_SOURCE_IP)", "N(NAT_DETECTION_DESTINATION_IP)")
	}
	s.send(IKESAInit, id, payloads...)
	if !Reachable(t) {
		return Error, models.NewError(models.Timeout, "no IKE_SA_INIT response from %s", t.Remote.PublicIP)
	}
	if !ikeAgreed(t) {
		s.recv(IKESAInit, id, "N(NO_PROPOSAL_CHOSEN)")
		return Phase1Init, nil
	}
	payloads = []string{"SA", "KE", "Nr"}
	if t.NATTraversal {
		payloads = append(payloads, "N(NAT_DETECTION_SOURCE_IP)", "N(NAT_DETECTION_DESTINATION_IP)")
	}
	s.recv(IKESAInit, id, payloads...)
	return Phase1Init, nil
}

func (s *Session) auth() (State, error) {
	t := s.Tunnel
	if !ikeAgreed(t) {
		return Error, models.NewError(models.ProposalMismatch, "peer refused ike proposal %s", t.IKEProposal.ID)
	}
	sa, err := s.Store.Allocate(models.ClassIKE, t.ID, t.IKEProposal.ID,
		lifetime(t.IKEProposal.Lifetime), "", s.now)
	if err != nil {
		return Error, models.NewError(models.InvalidParams, "%s", err)
	}
	s.ikeSA = sa
	t.IKESpi = sa.Spi

	id := t.NextMessageID()
	s.send(IKEAuth, id, "IDi", "AUTH", "SA", "TSi", "TSr")
	if PeerPSK(t) != t.PSK {
		s.recv(IKEAuth, id, "N(AUTHENTICATION_FAILED)")
		return Error, models.NewError(models.AuthFailure, "pre-shared key mismatch with %s", t.Remote.PublicIP)
	}
	s.recv(IKEAuth, id, "IDr", "AUTH", "SA", "TSi", "TSr")
	return Phase1Auth, nil
}

func (s *Session) createChild() (State, error) {
	t := s.Tunnel
	id := t.NextMessageID()
	s.send(CreateChildSA, id, childPayloads(t, "Ni")...)
	if !ipsecAgreed(t) {
		s.recv(CreateChildSA, id, "N(NO_PROPOSAL_CHOSEN)")
		return Error, models.NewError(models.ProposalMismatch, "peer refused ipsec proposal %s", t.IPSecProposal.ID)
	}
	in, out, err := allocateChild(s.Store, t, s.now)
	if err != nil {
		return Error, err
	}
	s.inSA, s.outSA = in, out
	t.InboundSpi, t.OutboundSpi = in.Spi, out.Spi
	s.recv(CreateChildSA, id, childPayloads(t, "Nr")...)
	return Phase2, nil
}

func (s *Session) establish() (State, error) {
	t := s.Tunnel
	t.Bind(s.ikeSA.Spi, s.inSA.Spi, s.outSA.Spi)
	t.Status = models.StatusEstablished
	t.State = Established.String()
	t.EstablishedAt = s.now
	t.LastSeen = s.now
	t.ProbeAt = time.Time{}
	t.RekeyPending = false
	s.out.Info("Session.establish %s ike %08x in %08x out %08x", t, t.IKESpi, t.InboundSpi, t.OutboundSpi)
	s.event(models.SevInfo, "", "tunnel %s established", t.Name)
	return Established, nil
}

// Reachable reports whether the simulated peer answers requests.
func Reachable(t *models.Tunnel) bool {
	return !t.Peer.Unreachable && t.Peer.Alive
}

// PeerPSK is the secret the simulated responder holds, the tunnel's own
// unless overridden.
func PeerPSK(t *models.Tunnel) string {
	if t.Peer.PSK != "" {
		return t.Peer.PSK
	}
	return t.PSK
}

func ikeAgreed(t *models.Tunnel) bool {
	obj, err := catalog.GetIKE(t.IKEProposal.ID)
	if err != nil || obj != t.IKEProposal {
		return false
	}
	return t.Peer.IKEProposal == "" || t.Peer.IKEProposal == t.IKEProposal.ID
}

func ipsecAgreed(t *models.Tunnel) bool {
	obj, err := catalog.GetIPSec(t.IPSecProposal.ID)
	if err != nil || obj != t.IPSecProposal {
		return false
	}
	return t.Peer.IPSecProposal == "" || t.Peer.IPSecProposal == t.IPSecProposal.ID
}

func childPayloads(t *models.Tunnel, nonce string, extra ...string) []string {
	payloads := append(extra, "SA", nonce)
	if t.IPSecProposal.PFSGroup != "" {
		if nonce == "Ni" {
			payloads = append(payloads, "KEi")
		} else {
			payloads = append(payloads, "KEr")
		}
	}
	return append(payloads, "TSi", "TSr")
}

func lifetime(seconds int) time.Duration {
	return time.Duration(seconds) * time.Second
}

// allocateChild mints the inbound and outbound IPSec pair, leaving
// nothing behind on failure.
func allocateChild(store *cache.SAStore, t *models.Tunnel, now time.Time) (*models.SecurityAssociation, *models.SecurityAssociation, error) {
	life := lifetime(t.IPSecProposal.Lifetime)
	in, err := store.Allocate(models.ClassIPSec, t.ID, t.IPSecProposal.ID, life, models.Inbound, now)
	if err != nil {
		return nil, nil, models.NewError(models.InvalidParams, "%s", err)
	}
	out, err := store.Allocate(models.ClassIPSec, t.ID, t.IPSecProposal.ID, life, models.Outbound, now)
	if err != nil {
		store.Release(in.Class, in.Spi)
		return nil, nil, models.NewError(models.InvalidParams, "%s", err)
	}
	return in, out, nil
}
