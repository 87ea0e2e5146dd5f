package vpn

import (
	"time"

	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

func (m *Manager) tunnelSchema(t *models.Tunnel) schema.Tunnel {
	obj := models.NewTunnelSchema(t)
	obj.Selected = t.ID == m.selected
	return obj
}

func (m *Manager) ListTunnels() []schema.Tunnel {
	m.lock.Lock()
	defer m.lock.Unlock()

	items := make([]schema.Tunnel, 0, m.tunnels.Len())
	for _, t := range m.tunnels.List() {
		items = append(items, m.tunnelSchema(t))
	}
	return items
}

func (m *Manager) GetTunnel(id string) (schema.Tunnel, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	t, err := m.getTunnel(id)
	if err != nil {
		return schema.Tunnel{}, err
	}
	return m.tunnelSchema(t), nil
}

// ListMessages returns the most recent IKE messages, of one tunnel when
// tunnel is not empty.
func (m *Manager) ListMessages(tunnel string, limit int) []schema.IKEMessage {
	if tunnel == "" {
		return m.messages.List(limit)
	}
	items := m.messages.Filter(func(v schema.IKEMessage) bool {
		return v.TunnelID == tunnel
	})
	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items
}

func (m *Manager) ListPackets(limit int) []schema.ESPPacket {
	return m.packets.List(limit)
}

func (m *Manager) ListEvents(limit int) []schema.Event {
	return m.events.List(limit)
}

// ListSAs returns the stored SAs of class, all for "".
func (m *Manager) ListSAs(class string) []schema.SA {
	m.lock.Lock()
	defer m.lock.Unlock()

	sas := m.store.List(models.Class(class))
	items := make([]schema.SA, 0, len(sas))
	for _, sa := range sas {
		items = append(items, models.NewXfrmSASchema(sa, m.tunnels.Get(sa.TunnelID)))
	}
	return items
}

func (m *Manager) Stats() schema.Stats {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.stats(m.Clock())
}

// stats is derived from the stores on every call, only the monotonic
// totals are kept aside.
func (m *Manager) stats(now time.Time) schema.Stats {
	obj := schema.Stats{
		Tunnels:      make(map[string]int, len(models.Statuses)),
		IKESAs:       m.store.Count(models.ClassIKE, now),
		IPSecSAs:     m.store.Count(models.ClassIPSec, now),
		Encrypted:    m.totals.Encrypted,
		Decrypted:    m.totals.Decrypted,
		Negotiations: m.totals.Negotiations,
		Rekeys:       m.totals.Rekeys,
		Running:      m.running,
		Active:       m.active,
	}
	for _, s := range models.Statuses {
		obj.Tunnels[string(s)] = 0
	}
	for _, t := range m.tunnels.List() {
		obj.Tunnels[string(t.Status)]++
	}
	obj.Established = obj.Tunnels[string(models.StatusEstablished)]
	return obj
}

func (m *Manager) Index() schema.Index {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.Clock()
	obj := schema.Index{
		Version:  schema.NewVersionSchema(),
		Uptime:   m.uptime(now),
		Selected: m.selected,
		Stats:    m.stats(now),
		Messages: m.messages.List(32),
		Packets:  m.packets.List(16),
		Events:   m.events.List(32),
	}
	for _, t := range m.tunnels.List() {
		obj.Tunnels = append(obj.Tunnels, m.tunnelSchema(t))
	}
	return obj
}
