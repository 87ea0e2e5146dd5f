package vpn

import (
	"errors"
	"fmt"
	"testing"
	"time"

	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/stretchr/testify/assert"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time {
	return c.now
}

func (c *clock) Add(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

func newManager(t *testing.T, engine co.Engine) (*Manager, *clock) {
	// keep the background ticker out of the way.
	engine.Tick = 3600
	m := NewManager(&co.Simulator{Engine: engine})
	c := &clock{now: time.Unix(1700000000, 0)}
	m.Clock = c.Now
	m.Start()
	t.Cleanup(m.Stop)
	return m, c
}

func params() schema.TunnelParams {
	return schema.TunnelParams{
		Name:          "branch-hq",
		Type:          "site-to-site",
		Local:         "branch",
		Remote:        "hq",
		IKEProposal:   "ike-aes256-sha256-modp2048",
		IPSecProposal: "esp-aes256-sha256-modp2048",
		PSK:           "secret",
	}
}

var sample = schema.Packet{
	SourceIP:   "192.168.10.100",
	DestIP:     "192.168.1.50",
	Protocol:   "tcp",
	SourcePort: 54321,
	DestPort:   80,
}

func tunnelSAs(m *Manager, id string) []schema.SA {
	items := make([]schema.SA, 0, 4)
	for _, sa := range m.ListSAs("") {
		if sa.TunnelID == id {
			items = append(items, sa)
		}
	}
	return items
}

// checkInvariant asserts established tunnels hold a live bundle and the
// others hold nothing.
func checkInvariant(t *testing.T, m *Manager) {
	now := m.Clock()
	for _, obj := range m.ListTunnels() {
		sas := tunnelSAs(m, obj.ID)
		switch obj.Status {
		case "established":
			live := map[uint32]bool{}
			for _, sa := range sas {
				if now.Unix() < sa.ExpiresAt {
					live[sa.Spi] = true
				}
			}
			assert.True(t, live[obj.IKESpi], "%s ike sa", obj.Name)
			assert.True(t, live[obj.InboundSpi], "%s inbound sa", obj.Name)
			assert.True(t, live[obj.OutboundSpi], "%s outbound sa", obj.Name)
			assert.Equal(t, 3, len(sas), "%s holds one bundle", obj.Name)
		case "down", "error":
			assert.Equal(t, 0, len(sas), "%s holds no sa", obj.Name)
			assert.Equal(t, uint32(0), obj.IKESpi)
		}
	}
}

func TestCreateTunnelRoundTrip(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	obj, err := m.CreateTunnel(params())
	assert.Nil(t, err)
	assert.Equal(t, "established", obj.Status)
	assert.NotEqual(t, int64(0), obj.EstablishedAt)
	checkInvariant(t, m)

	p, err := m.EncryptPacket(sample)
	assert.Nil(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, uint64(1), p.ESPHeader.SequenceNumber)
	assert.Equal(t, obj.LocalEndpoint.PublicIP, p.OuterHeader.SourceIP)
	assert.Equal(t, obj.RemoteEndpoint.PublicIP, p.OuterHeader.DestIP)
	assert.Equal(t, obj.ID, p.TunnelID)

	inner, err := m.DecryptPacket(p)
	assert.Nil(t, err)
	assert.Equal(t, sample, *inner, "be the same.")

	obj, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, int64(1), obj.PacketsOut)
	assert.Equal(t, int64(1), obj.PacketsIn)
	assert.Equal(t, 1, len(m.ListPackets(0)))

	s := m.Stats()
	assert.Equal(t, 1, s.Established)
	assert.Equal(t, 1, s.IKESAs)
	assert.Equal(t, 2, s.IPSecSAs)
	assert.Equal(t, int64(1), s.Encrypted)
	assert.Equal(t, int64(1), s.Decrypted)
	assert.Equal(t, int64(1), s.Negotiations)
	assert.True(t, s.Running)
}

func TestCreateTunnelAuthFailure(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	p := params()
	p.Peer = &schema.Peer{PSK: "not-secret"}
	obj, err := m.CreateTunnel(p)
	assert.Nil(t, err, "negotiation failures are recorded, not returned")
	assert.Equal(t, "error", obj.Status)
	assert.Equal(t, string(models.AuthFailure), obj.Reason)
	assert.Equal(t, 0, len(tunnelSAs(m, obj.ID)))

	errs := 0
	for _, ev := range m.ListEvents(0) {
		if ev.TunnelID == obj.ID && ev.Severity == "error" {
			errs++
		}
	}
	assert.Equal(t, 1, errs, "one error event")
	assert.Equal(t, int64(0), m.Stats().Negotiations)
	checkInvariant(t, m)

	out, err := m.EncryptPacket(sample)
	assert.Nil(t, err)
	assert.Nil(t, out, "no established tunnel")
	_, err = m.Encapsulate(obj.ID, sample)
	assert.True(t, errors.Is(err, models.ErrTunnelNotEstablished))
}

func TestCreateTunnelInvalid(t *testing.T) {
	m, _ := newManager(t, co.Engine{})

	p := params()
	p.IKEProposal = "ike-rot13"
	_, err := m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrProposalNotFound))

	p = params()
	p.IPSecProposal = ""
	_, err = m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrProposalNotFound))

	p = params()
	p.Remote = "moon"
	_, err = m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrEndpointNotFound))

	p = params()
	p.Type = "mesh"
	_, err = m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrInvalidParams))

	p = params()
	p.PSK = ""
	_, err = m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrInvalidParams))

	p = params()
	p.Remote = ""
	p.RemoteEndpoint = &schema.Endpoint{PublicIP: "not-an-ip"}
	_, err = m.CreateTunnel(p)
	assert.True(t, errors.Is(err, models.ErrInvalidParams))

	assert.Equal(t, 0, len(m.ListTunnels()))

	p.RemoteEndpoint = &schema.Endpoint{PublicIP: "192.0.2.99", PrivateNetwork: "10.99.0.0/16"}
	obj, err := m.CreateTunnel(p)
	assert.Nil(t, err)
	assert.Equal(t, "remote", obj.RemoteEndpoint.ID)
	assert.Equal(t, "established", obj.Status)
}

func TestDeleteTunnelIdempotent(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())
	assert.Nil(t, m.SelectTunnel(obj.ID))

	assert.Nil(t, m.DeleteTunnel(obj.ID))
	assert.Equal(t, 0, len(m.ListSAs("")))
	assert.Equal(t, "", m.Selected())
	messages := len(m.ListMessages("", 0))
	events := len(m.ListEvents(0))

	assert.Nil(t, m.DeleteTunnel(obj.ID))
	assert.Nil(t, m.DeleteTunnel("tun-unknown"))
	assert.Equal(t, messages, len(m.ListMessages("", 0)), "second delete is a no-op")
	assert.Equal(t, events, len(m.ListEvents(0)))
	_, err := m.GetTunnel(obj.ID)
	assert.True(t, errors.Is(err, models.ErrTunnelNotFound))
}

func TestSPIUniqueness(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	ids := make([]string, 0, 16)
	for i := 0; i < 16; i++ {
		obj, err := m.CreateTunnel(params())
		assert.Nil(t, err)
		ids = append(ids, obj.ID)
	}
	for _, id := range ids[:8] {
		_, err := m.Rekey(id)
		assert.Nil(t, err)
	}
	for _, id := range ids[8:12] {
		assert.Nil(t, m.DeleteTunnel(id))
	}
	seen := map[string]bool{}
	for _, sa := range m.ListSAs("") {
		key := fmt.Sprintf("%s:%08x", sa.Class, sa.Spi)
		assert.False(t, seen[key], "duplicate %s %08x", sa.Class, sa.Spi)
		seen[key] = true
	}
	assert.Equal(t, 12*3, len(seen))
	checkInvariant(t, m)
}

func TestSequenceMonotonic(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())
	var last uint64
	for i := 0; i < 10; i++ {
		p, err := m.Encapsulate(obj.ID, sample)
		assert.Nil(t, err)
		assert.True(t, p.ESPHeader.SequenceNumber > last)
		last = p.ESPHeader.SequenceNumber
	}
	assert.Equal(t, uint64(10), last)
}

func TestRekey(t *testing.T) {
	m, c := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())
	c.Add(time.Minute)

	after, err := m.Rekey(obj.ID)
	assert.Nil(t, err)
	assert.Equal(t, 1, after.RekeyCount)
	assert.Equal(t, "established", after.Status)
	assert.NotEqual(t, obj.OutboundSpi, after.OutboundSpi)
	assert.Equal(t, int64(1), m.Stats().Rekeys)
	checkInvariant(t, m)

	p, _ := m.Encapsulate(obj.ID, sample)
	assert.Equal(t, uint64(1), p.ESPHeader.SequenceNumber, "fresh outbound sa")

	_, err = m.SetPeerAlive(obj.ID, false)
	assert.Nil(t, err)
	failed, err := m.Rekey(obj.ID)
	assert.True(t, errors.Is(err, models.ErrTimeout))
	assert.Equal(t, "established", failed.Status, "old sas kept")
	assert.Equal(t, after.OutboundSpi, failed.OutboundSpi)
	assert.Equal(t, 1, failed.RekeyCount)
	checkInvariant(t, m)

	_, err = m.Rekey("tun-unknown")
	assert.True(t, errors.Is(err, models.ErrTunnelNotFound))
}

func TestTickRekeysBeforeExpiry(t *testing.T) {
	m, c := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())

	m.Tick(c.Add(30 * time.Minute))
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, 0, now.RekeyCount)

	m.Tick(c.Add(29 * time.Minute))
	now, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, 1, now.RekeyCount, "within the margin")
	assert.Equal(t, "established", now.Status)
	checkInvariant(t, m)
}

func TestTickExpiresWithoutRekey(t *testing.T) {
	m, c := newManager(t, co.Engine{})
	p := params()
	f := false
	p.DPDEnabled = &f
	obj, _ := m.CreateTunnel(p)
	_, _ = m.SetPeerAlive(obj.ID, false)

	m.Tick(c.Add(59 * time.Minute))
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, "established", now.Status, "soft expiry keeps old sas")

	m.Tick(c.Add(time.Minute))
	now, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, "error", now.Status)
	assert.Equal(t, string(models.SAExpired), now.Reason)
	checkInvariant(t, m)
}

func TestDeadPeerDetection(t *testing.T) {
	m, c := newManager(t, co.Engine{DPDInterval: 10, DPDTimeout: 30})
	alive, _ := m.CreateTunnel(params())
	dead, _ := m.CreateTunnel(params())
	_, _ = m.SetPeerAlive(dead.ID, false)

	for i := 0; i < 2; i++ {
		m.Tick(c.Add(10 * time.Second))
		obj, _ := m.GetTunnel(dead.ID)
		assert.Equal(t, "established", obj.Status, "within timeout")
	}
	m.Tick(c.Add(10 * time.Second))
	obj, _ := m.GetTunnel(dead.ID)
	assert.Equal(t, "error", obj.Status)
	assert.Equal(t, string(models.DPDTimeout), obj.Reason)

	obj, _ = m.GetTunnel(alive.ID)
	assert.Equal(t, "established", obj.Status)
	checkInvariant(t, m)

	probes := 0
	for _, msg := range m.ListMessages(dead.ID, 0) {
		if msg.MessageType == "INFORMATIONAL" {
			probes++
		}
	}
	assert.Equal(t, 3, probes, "one probe per interval")
}

func TestRunDeadPeerDetection(t *testing.T) {
	m, c := newManager(t, co.Engine{DPDInterval: 10})
	obj, _ := m.CreateTunnel(params())
	_, err := m.RunDeadPeerDetection(obj.ID)
	assert.Nil(t, err)

	_, _ = m.SetPeerAlive(obj.ID, false)
	c.Add(5 * time.Second)
	now, err := m.RunDeadPeerDetection(obj.ID)
	assert.Nil(t, err)
	assert.Equal(t, "established", now.Status)

	c.Add(5 * time.Second)
	now, err = m.RunDeadPeerDetection(obj.ID)
	assert.True(t, errors.Is(err, models.ErrDPDTimeout))
	assert.Equal(t, "error", now.Status)
	checkInvariant(t, m)

	_, err = m.Connect(obj.ID)
	assert.Nil(t, err)
	now, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, string(models.Timeout), now.Reason, "dead peer does not answer")

	_, _ = m.SetPeerAlive(obj.ID, true)
	now, _ = m.Connect(obj.ID)
	assert.Equal(t, "established", now.Status)
	checkInvariant(t, m)
}

func TestSequenceExhaustion(t *testing.T) {
	m, c := newManager(t, co.Engine{MaxSequence: 2})
	obj, _ := m.CreateTunnel(params())
	for i := 0; i < 2; i++ {
		_, err := m.Encapsulate(obj.ID, sample)
		assert.Nil(t, err)
	}
	_, err := m.Encapsulate(obj.ID, sample)
	assert.True(t, errors.Is(err, models.ErrSAExhausted))
	_, _ = m.Encapsulate(obj.ID, sample)
	warnings := 0
	for _, ev := range m.ListEvents(0) {
		if ev.Code == string(models.SAExhausted) {
			warnings++
			assert.Equal(t, "warning", ev.Severity)
		}
	}
	assert.Equal(t, 1, warnings, "recommended once")

	m.Tick(c.Add(time.Second))
	p, err := m.Encapsulate(obj.ID, sample)
	assert.Nil(t, err)
	assert.Equal(t, uint64(1), p.ESPHeader.SequenceNumber)
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, 1, now.RekeyCount)
}

func TestDecryptFailures(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())
	p, _ := m.Encapsulate(obj.ID, sample)

	bad := *p
	bad.Authentication.ICV = "00"
	_, err := m.DecryptPacket(&bad)
	assert.True(t, errors.Is(err, models.ErrAuthenticationFailed))
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, int64(0), now.PacketsIn)

	_, err = m.DecryptPacket(p)
	assert.Nil(t, err)
	_, err = m.DecryptPacket(p)
	assert.True(t, errors.Is(err, models.ErrReplayDetected))
	now, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, int64(1), now.PacketsIn)

	bad = *p
	bad.ESPHeader.Spi = 1
	_, err = m.DecryptPacket(&bad)
	assert.True(t, errors.Is(err, models.ErrUnknownSPI))
	assert.Equal(t, "established", now.Status, "bad packets do not hurt the tunnel")
}

func TestStoppedEngine(t *testing.T) {
	m, c := newManager(t, co.Engine{})
	obj, _ := m.CreateTunnel(params())
	m.Stop()

	_, err := m.CreateTunnel(params())
	assert.True(t, errors.Is(err, models.ErrEngineStopped))
	assert.True(t, errors.Is(m.DeleteTunnel(obj.ID), models.ErrEngineStopped))
	_, err = m.EncryptPacket(sample)
	assert.True(t, errors.Is(err, models.ErrEngineStopped))

	m.Tick(c.Add(2 * time.Hour))
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, "established", now.Status, "no ticking while stopped")
	assert.Equal(t, 0, now.RekeyCount)
	assert.False(t, m.Stats().Running)

	m.Start()
	assert.True(t, m.Running())
}

func TestEncryptPacketSelection(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	p, err := m.EncryptPacket(sample)
	assert.Nil(t, err)
	assert.Nil(t, p)

	first, _ := m.CreateTunnel(params())
	second, _ := m.CreateTunnel(params())
	p, _ = m.EncryptPacket(sample)
	assert.Equal(t, first.ID, p.TunnelID, "first established")

	assert.Nil(t, m.SelectTunnel(second.ID))
	p, _ = m.EncryptPacket(sample)
	assert.Equal(t, second.ID, p.TunnelID)
	for _, obj := range m.ListTunnels() {
		assert.Equal(t, obj.ID == second.ID, obj.Selected)
	}

	_, _ = m.Disconnect(second.ID)
	p, _ = m.EncryptPacket(sample)
	assert.Equal(t, first.ID, p.TunnelID, "selected is down")

	assert.True(t, errors.Is(m.SelectTunnel("tun-unknown"), models.ErrTunnelNotFound))
	assert.Nil(t, m.SelectTunnel(""))

	_, err = m.EncryptPacket(schema.Packet{SourceIP: "x", DestIP: "192.168.1.1"})
	assert.True(t, errors.Is(err, models.ErrInvalidParams))

	m.SetActive(false)
	assert.False(t, m.Stats().Active)
}

func TestStepwiseNegotiation(t *testing.T) {
	m, c := newManager(t, co.Engine{Stepwise: true})
	obj, _ := m.CreateTunnel(params())
	assert.Equal(t, "connecting", obj.Status)
	assert.Equal(t, "Phase1Init", obj.State)

	m.Tick(c.Add(time.Second))
	now, _ := m.GetTunnel(obj.ID)
	assert.Equal(t, "Phase1Auth", now.State)
	assert.Equal(t, 1, len(tunnelSAs(m, obj.ID)))

	m.Tick(c.Add(time.Second))
	m.Tick(c.Add(time.Second))
	now, _ = m.GetTunnel(obj.ID)
	assert.Equal(t, "established", now.Status)
	assert.Equal(t, int64(1), m.Stats().Negotiations)
	checkInvariant(t, m)

	other, _ := m.CreateTunnel(params())
	m.Tick(c.Add(time.Second))
	m.Tick(c.Add(time.Second))
	assert.Equal(t, 3, len(tunnelSAs(m, other.ID)))
	assert.Nil(t, m.DeleteTunnel(other.ID))
	assert.Equal(t, 0, len(tunnelSAs(m, other.ID)), "partial sas released")
	m.Tick(c.Add(time.Second))
	assert.Equal(t, int64(1), m.Stats().Negotiations)
}

func TestSubscribe(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	ch, cancel := m.Subscribe(8)
	obj, _ := m.CreateTunnel(params())

	ev := <-ch
	assert.Equal(t, obj.ID, ev.TunnelID)
	assert.Equal(t, "info", ev.Severity)
	cancel()
	cancel()
	for range ch {
	}
	_, _ = m.Disconnect(obj.ID)
}

func TestStatsByStatus(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	_, _ = m.CreateTunnel(params())
	p := params()
	p.Peer = &schema.Peer{IKEProposal: "ike-3des-md5-modp1024"}
	_, _ = m.CreateTunnel(p)
	down, _ := m.CreateTunnel(params())
	_, _ = m.Disconnect(down.ID)

	s := m.Stats()
	assert.Equal(t, 1, s.Tunnels["established"])
	assert.Equal(t, 1, s.Tunnels["error"])
	assert.Equal(t, 1, s.Tunnels["down"])
	assert.Equal(t, 0, s.Tunnels["connecting"])
	assert.Equal(t, 1, s.IKESAs)
	assert.Equal(t, 2, s.IPSecSAs)
	checkInvariant(t, m)

	idx := m.Index()
	assert.Equal(t, 3, len(idx.Tunnels))
	assert.Equal(t, s.Tunnels, idx.Stats.Tunnels)
}

func TestInitializePresets(t *testing.T) {
	cfg := &co.Simulator{
		Engine: co.Engine{Tick: 3600},
		Tunnels: []*co.Tunnel{
			{Name: "hq-dc", Local: "hq", Remote: "datacenter", IKEProposal: "ike-aes128-sha1-modp1024",
				IPSecProposal: "esp-aes128-sha1", PSK: "k"},
			{Name: "broken", Local: "hq", Remote: "datacenter", IKEProposal: "nope", PSK: "k"},
		},
	}
	m := NewManager(cfg)
	m.Initialize()
	items := m.ListTunnels()
	assert.Equal(t, 1, len(items))
	assert.Equal(t, "established", items[0].Status)
	assert.True(t, items[0].DPDEnabled)
	assert.False(t, m.Running())
}

func TestMetrics(t *testing.T) {
	m, _ := newManager(t, co.Engine{})
	_, _ = m.CreateTunnel(params())
	families, err := m.Metrics().Gather()
	assert.Nil(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["vpnsim_tunnels"])
	assert.True(t, names["vpnsim_security_associations"])
	assert.True(t, names["vpnsim_negotiations_total"])
}
