package vpn

import (
	"errors"
	"net"
	"time"

	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

func checkPacket(p schema.Packet) error {
	if net.ParseIP(p.SourceIP) == nil {
		return models.NewError(models.InvalidParams, "source ip %q", p.SourceIP)
	}
	if net.ParseIP(p.DestIP) == nil {
		return models.NewError(models.InvalidParams, "destination ip %q", p.DestIP)
	}
	if p.SourcePort < 0 || p.SourcePort > 65535 || p.DestPort < 0 || p.DestPort > 65535 {
		return models.NewError(models.InvalidParams, "port out of range")
	}
	return nil
}

// EncryptPacket encapsulates p on the selected tunnel, or else on the
// first established one. Without an established tunnel it returns nil.
func (m *Manager) EncryptPacket(p schema.Packet) (*schema.ESPPacket, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return nil, err
	}
	var target *models.Tunnel
	if t := m.tunnels.Get(m.selected); t != nil && t.Status == models.StatusEstablished {
		target = t
	} else {
		for _, t := range m.tunnels.List() {
			if t.Status == models.StatusEstablished {
				target = t
				break
			}
		}
	}
	if target == nil {
		return nil, nil
	}
	return m.encapsulate(target, p, m.Clock())
}

// Encapsulate seals p on the given tunnel.
func (m *Manager) Encapsulate(id string, p schema.Packet) (*schema.ESPPacket, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return nil, err
	}
	t, err := m.getTunnel(id)
	if err != nil {
		return nil, err
	}
	return m.encapsulate(t, p, m.Clock())
}

func (m *Manager) encapsulate(t *models.Tunnel, p schema.Packet, now time.Time) (*schema.ESPPacket, error) {
	if err := checkPacket(p); err != nil {
		return nil, err
	}
	obj, err := m.codec.Encapsulate(t, p, now)
	if err != nil {
		if errors.Is(err, models.ErrSAExhausted) && !t.RekeyPending {
			t.RekeyPending = true
			m.event(t.ID, models.SevWarning, models.SAExhausted, now,
				"tunnel %s ran out of sequence numbers, rekey recommended", t.Name)
		}
		return nil, err
	}
	m.packets.Add(*obj)
	m.totals.Encrypted++
	return obj, nil
}

// DecryptPacket verifies and opens an ESP packet produced by any tunnel.
// Traffic from the peer counts as liveness.
func (m *Manager) DecryptPacket(p *schema.ESPPacket) (*schema.Packet, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if err := m.mutable(); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, models.NewError(models.InvalidParams, "no packet")
	}
	now := m.Clock()
	inner, sa, err := m.codec.Decapsulate(p, now)
	if err != nil {
		tunnel := ""
		if sa != nil {
			tunnel = sa.TunnelID
		}
		m.event(tunnel, models.SevWarning, models.CodeOf(err), now, "packet dropped: %s", err)
		return nil, err
	}
	if t := m.tunnels.Get(sa.TunnelID); t != nil {
		t.PacketsIn++
		t.LastSeen = now
	}
	m.totals.Decrypted++
	return inner, nil
}
