package vpn

import (
	"sort"
	"time"

	"github.com/luscis/vpnsim/pkg/ike"
	"github.com/luscis/vpnsim/pkg/models"
)

func (m *Manager) onTick() {
	m.Tick(m.Clock())
}

// Tick advances stepwise negotiations, rekeys SAs close to expiry and
// runs dead peer detection. It does nothing while stopped.
func (m *Manager) Tick(now time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.running {
		return
	}
	m.stepSessions(now)
	for _, t := range m.tunnels.List() {
		if t.Status != models.StatusEstablished {
			continue
		}
		m.checkExpiry(t, now)
		if t.Status == models.StatusEstablished {
			_ = m.dpd(t, now, false)
		}
	}
}

func (m *Manager) stepSessions(now time.Time) {
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		s := m.sessions[id]
		s.Step(now)
		if s.Done() {
			m.finish(s)
		}
	}
}

func (m *Manager) boundSAs(t *models.Tunnel) []*models.SecurityAssociation {
	return []*models.SecurityAssociation{
		m.store.Get(models.ClassIKE, t.IKESpi),
		m.store.Get(models.ClassIPSec, t.InboundSpi),
		m.store.Get(models.ClassIPSec, t.OutboundSpi),
	}
}

func (m *Manager) checkExpiry(t *models.Tunnel, now time.Time) {
	margin := m.cfg.Engine.GetRekeyMargin()
	need := t.RekeyPending
	for _, sa := range m.boundSAs(t) {
		if sa == nil || sa.SoftExpired(now, margin) {
			need = true
		}
	}
	if !need {
		return
	}
	if err := m.rekey(t, now); err == nil {
		return
	}
	for _, sa := range m.boundSAs(t) {
		if sa == nil || !sa.Live(now) {
			m.teardown(t, now, models.SAExpired, "tunnel %s lost its sas without rekey", t.Name)
			return
		}
	}
}

// dpd probes a silent peer once per interval. A tick fails the tunnel
// after DPDTimeout of silence, a forced run after DPDInterval.
func (m *Manager) dpd(t *models.Tunnel, now time.Time, force bool) error {
	if !t.DPD || t.Status != models.StatusEstablished {
		return nil
	}
	interval := m.cfg.Engine.GetDPDInterval()
	deadline := m.cfg.Engine.GetDPDTimeout()
	silent := now.Sub(t.LastSeen)
	if force {
		deadline = interval
	} else if silent < interval || now.Sub(t.ProbeAt) < interval {
		return nil
	}
	t.ProbeAt = now
	if ike.NewExchange(t, m.store, m.journal(), now).Probe() {
		t.LastSeen = now
		return nil
	}
	if silent < deadline {
		m.out.Debug("Manager.dpd %s silent for %s", t, silent)
		return nil
	}
	m.teardown(t, now, models.DPDTimeout, "peer %s silent for %s", t.Remote.PublicIP, silent)
	return models.NewError(models.DPDTimeout, "peer %s silent for %s", t.Remote.PublicIP, silent)
}
