package vpn

import (
	"net"
	"time"

	"github.com/luscis/vpnsim/pkg/catalog"
	"github.com/luscis/vpnsim/pkg/ike"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

func endpoint(id string, obj *schema.Endpoint, side string) (schema.Endpoint, error) {
	if obj == nil {
		if id == "" {
			return schema.Endpoint{}, models.NewError(models.InvalidParams, "%s endpoint required", side)
		}
		return catalog.GetEndpoint(id)
	}
	ep := *obj
	if net.ParseIP(ep.PublicIP) == nil {
		return ep, models.NewError(models.InvalidParams, "%s public ip %q", side, ep.PublicIP)
	}
	if ep.PrivateNetwork != "" {
		if _, _, err := net.ParseCIDR(ep.PrivateNetwork); err != nil {
			return ep, models.NewError(models.InvalidParams, "%s private network %q", side, ep.PrivateNetwork)
		}
	}
	if ep.ID == "" {
		ep.ID = side
	}
	if ep.Name == "" {
		ep.Name = ep.ID
	}
	return ep, nil
}

func newTunnel(p schema.TunnelParams, now time.Time) (*models.Tunnel, error) {
	typ := models.TunnelType(p.Type)
	if typ == "" {
		typ = models.SiteToSite
	}
	if !typ.Valid() {
		return nil, models.NewError(models.InvalidParams, "tunnel type %q", p.Type)
	}
	local, err := endpoint(p.Local, p.LocalEndpoint, "local")
	if err != nil {
		return nil, err
	}
	remote, err := endpoint(p.Remote, p.RemoteEndpoint, "remote")
	if err != nil {
		return nil, err
	}
	if local.PublicIP == remote.PublicIP {
		return nil, models.NewError(models.InvalidParams, "both ends use %s", local.PublicIP)
	}
	ikeP, err := catalog.GetIKE(p.IKEProposal)
	if err != nil {
		return nil, err
	}
	ipsecP, err := catalog.GetIPSec(p.IPSecProposal)
	if err != nil {
		return nil, err
	}
	if p.PSK == "" {
		return nil, models.NewError(models.InvalidParams, "pre-shared key required")
	}
	t := &models.Tunnel{
		ID:            models.NewID("tun-"),
		Name:          p.Name,
		Type:          typ,
		Local:         local,
		Remote:        remote,
		IKEProposal:   ikeP,
		IPSecProposal: ipsecP,
		PSK:           p.PSK,
		DPD:           true,
		Status:        models.StatusDown,
		State:         ike.Idle.String(),
		CreatedAt:     now,
	}
	if t.Name == "" {
		t.Name = local.ID + "-" + remote.ID
	}
	if p.DPDEnabled != nil {
		t.DPD = *p.DPDEnabled
	}
	if p.NATTraversal != nil {
		t.NATTraversal = *p.NATTraversal
	}
	if p.Peer != nil {
		t.Peer = *p.Peer
	}
	// liveness is only changed through SetPeerAlive.
	t.Peer.Alive = true
	return t, nil
}

// CreateTunnel validates p, stores the tunnel and negotiates it at once.
// Negotiation failures do not fail the call, the returned tunnel carries
// the outcome.
func (m *Manager) CreateTunnel(p schema.TunnelParams) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.createTunnel(p, m.Clock())
	if err != nil {
		return schema.Tunnel{}, err
	}
	return m.tunnelSchema(t), nil
}

func (m *Manager) createTunnel(p schema.TunnelParams, now time.Time) (*models.Tunnel, error) {
	t, err := newTunnel(p, now)
	if err != nil {
		return nil, err
	}
	if err := m.tunnels.Add(t); err != nil {
		return nil, models.NewError(models.InvalidParams, "%s", err)
	}
	m.out.Info("Manager.createTunnel %s", t)
	m.event(t.ID, models.SevInfo, "", now, "tunnel %s created", t.Name)
	m.negotiate(t, now)
	return t, nil
}

func (m *Manager) negotiate(t *models.Tunnel, now time.Time) {
	if s, ok := m.sessions[t.ID]; ok && !s.Done() {
		return
	}
	if t.Status == models.StatusEstablished {
		return
	}
	s := ike.NewSession(t, m.store, m.journal())
	if m.cfg.Engine.Stepwise {
		s.Step(now)
		if !s.Done() {
			m.sessions[t.ID] = s
			return
		}
	} else {
		_ = s.Run(now)
	}
	m.finish(s)
}

func (m *Manager) finish(s *ike.Session) {
	delete(m.sessions, s.Tunnel.ID)
	if s.State == ike.Established {
		m.totals.Negotiations++
	}
}

// abort stops a negotiation still in flight for t.
func (m *Manager) abort(t *models.Tunnel, now time.Time, reason string) {
	if s, ok := m.sessions[t.ID]; ok {
		s.Abort(now, "%s", reason)
		delete(m.sessions, t.ID)
	}
}

func (m *Manager) getTunnel(id string) (*models.Tunnel, error) {
	if t := m.tunnels.Get(id); t != nil {
		return t, nil
	}
	return nil, models.NewError(models.TunnelNotFound, "tunnel %q", id)
}

// DeleteTunnel tears the tunnel down and forgets it. Deleting an unknown
// tunnel does nothing.
func (m *Manager) DeleteTunnel(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return err
	}
	t := m.tunnels.Get(id)
	if t == nil {
		return nil
	}
	now := m.Clock()
	m.abort(t, now, "tunnel deleted")
	ike.NewExchange(t, m.store, m.journal(), now).Delete()
	t.Status = models.StatusDown
	t.State = ike.Idle.String()
	m.tunnels.Del(id)
	if m.selected == id {
		m.selected = ""
	}
	m.event(t.ID, models.SevInfo, "", now, "tunnel %s deleted", t.Name)
	return nil
}

// Connect negotiates a tunnel that is down or failed. It does nothing for
// a tunnel established or negotiating.
func (m *Manager) Connect(id string) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	m.negotiate(t, m.Clock())
	return m.tunnelSchema(t), nil
}

// Disconnect deletes the SAs of the tunnel and brings it down.
func (m *Manager) Disconnect(id string) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	now := m.Clock()
	m.abort(t, now, "tunnel disconnected")
	ike.NewExchange(t, m.store, m.journal(), now).Delete()
	if t.Status != models.StatusDown {
		m.event(t.ID, models.SevInfo, "", now, "tunnel %s disconnected", t.Name)
	}
	t.Status = models.StatusDown
	t.State = ike.Idle.String()
	t.Reason = ""
	t.EstablishedAt = time.Time{}
	t.RekeyPending = false
	return m.tunnelSchema(t), nil
}

// SelectTunnel points packet submission at a tunnel, "" clears it.
func (m *Manager) SelectTunnel(id string) error {
	m.lock.Lock()
	defer m.lock.Unlock()

	if id != "" {
		if _, err := m.getTunnel(id); err != nil {
			return err
		}
	}
	m.selected = id
	return nil
}

func (m *Manager) Selected() string {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.selected
}

// SetActive flips the presentation flag reported in the statistics.
func (m *Manager) SetActive(active bool) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.active = active
}

func (m *Manager) SetPeerAlive(id string, alive bool) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	if t.Peer.Alive != alive {
		t.Peer.Alive = alive
		m.event(t.ID, models.SevInfo, "", m.Clock(), "peer %s alive %t", t.Remote.PublicIP, alive)
	}
	return m.tunnelSchema(t), nil
}

// Rekey replaces the SAs of an established tunnel. On failure the old
// SAs stay installed.
func (m *Manager) Rekey(id string) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	err = m.rekey(t, m.Clock())
	return m.tunnelSchema(t), err
}

func (m *Manager) rekey(t *models.Tunnel, now time.Time) error {
	err := ike.NewExchange(t, m.store, m.journal(), now).Rekey()
	if err != nil {
		m.event(t.ID, models.SevWarning, models.CodeOf(err), now, "rekey of %s failed: %s", t.Name, err)
		return err
	}
	m.totals.Rekeys++
	m.event(t.ID, models.SevInfo, "", now, "tunnel %s rekeyed, %d so far", t.Name, t.RekeyCount)
	return nil
}

// RunDeadPeerDetection probes the peer now. Without an answer for a
// whole DPD interval the tunnel fails with DPDTimeout.
func (m *Manager) RunDeadPeerDetection(id string) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return schema.Tunnel{}, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	err = m.dpd(t, m.Clock(), true)
	return m.tunnelSchema(t), err
}

// teardown fails an established tunnel and drops its SAs without
// signalling the peer.
func (m *Manager) teardown(t *models.Tunnel, now time.Time, code models.Code, format string, v ...interface{}) {
	ike.NewExchange(t, m.store, m.journal(), now).Release()
	t.Status = models.StatusError
	t.State = ike.Error.String()
	t.Reason = code
	t.EstablishedAt = time.Time{}
	t.RekeyPending = false
	m.event(t.ID, models.SevError, code, now, format, v...)
}
