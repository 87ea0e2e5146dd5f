// Package vpn owns the simulated tunnels. Every operation runs under one
// lock, so readers never see a tunnel between two transitions of an
// operation.
package vpn

import (
	"sync"
	"time"

	"github.com/luscis/vpnsim/pkg/cache"
	co "github.com/luscis/vpnsim/pkg/config"
	"github.com/luscis/vpnsim/pkg/esp"
	"github.com/luscis/vpnsim/pkg/ike"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
)

type totals struct {
	Encrypted    int64
	Decrypted    int64
	Negotiations int64
	Rekeys       int64
}

type Manager struct {
	lock     sync.Mutex
	cfg      *co.Simulator
	store    *cache.SAStore
	tunnels  *cache.Tunnels
	events   *cache.History[schema.Event]
	messages *cache.History[schema.IKEMessage]
	packets  *cache.History[schema.ESPPacket]
	codec    *esp.Codec
	sessions map[string]*ike.Session
	subs     map[int]chan schema.Event
	subId    int
	selected string
	active   bool
	running  bool
	startAt  time.Time
	totals   totals
	ticker   *Ticker
	metrics  *prometheus.Registry
	// Clock is where operations read now from.
	Clock func() time.Time
	out   *libol.SubLogger
}

func NewManager(cfg *co.Simulator) *Manager {
	if cfg == nil {
		cfg = &co.Simulator{}
	}
	cfg.Correct()
	store := cache.NewSAStore(cfg.Limit.SA)
	store.Window = cfg.Engine.ReplayWindow
	m := &Manager{
		cfg:      cfg,
		store:    store,
		tunnels:  cache.NewTunnels(cfg.Limit.Tunnel),
		events:   cache.NewHistory[schema.Event](cfg.Limit.Event),
		messages: cache.NewHistory[schema.IKEMessage](cfg.Limit.Message),
		packets:  cache.NewHistory[schema.ESPPacket](cfg.Limit.Packet),
		codec:    esp.NewCodec(store, cfg.Engine.MaxSequence),
		sessions: make(map[string]*ike.Session, 32),
		subs:     make(map[int]chan schema.Event, 8),
		active:   true,
		Clock:    time.Now,
		out:      libol.NewSubLogger("manager"),
	}
	m.metrics = prometheus.NewRegistry()
	m.metrics.MustRegister(&collector{m: m})
	return m
}

func (m *Manager) Config() *co.Simulator {
	return m.cfg
}

func (m *Manager) Metrics() *prometheus.Registry {
	return m.metrics
}

// Initialize creates the configured tunnels. It may run before Start.
func (m *Manager) Initialize() {
	m.lock.Lock()
	defer m.lock.Unlock()

	now := m.Clock()
	for _, obj := range m.cfg.Tunnels {
		if _, err := m.createTunnel(obj.Params(), now); err != nil {
			m.out.Error("Manager.Initialize %s: %s", obj.Name, err)
		}
	}
	m.out.Info("Manager.Initialize %d tunnels", m.tunnels.Len())
}

func (m *Manager) Start() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.running {
		return
	}
	now := m.Clock()
	m.running = true
	m.startAt = now
	if m.ticker == nil {
		m.ticker = NewTicker(m.cfg.Engine.GetTick(), m.onTick)
	}
	if err := m.ticker.Start(); err != nil {
		m.out.Error("Manager.Start %s", err)
	}
	m.event("", models.SevInfo, "", now, "engine started")
}

// Stop pauses ticking and rejects mutations. Tunnels and SAs are kept.
func (m *Manager) Stop() {
	m.lock.Lock()
	defer m.lock.Unlock()

	if !m.running {
		return
	}
	m.running = false
	if m.ticker != nil {
		m.ticker.Stop()
	}
	m.event("", models.SevInfo, "", m.Clock(), "engine stopped")
}

func (m *Manager) Running() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.running
}

func (m *Manager) UpTime() int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.uptime(m.Clock())
}

func (m *Manager) uptime(now time.Time) int64 {
	if !m.running {
		return 0
	}
	return int64(now.Sub(m.startAt).Seconds())
}

func (m *Manager) mutable() error {
	if !m.running {
		return models.NewError(models.EngineStopped, "engine is stopped")
	}
	return nil
}

// Subscribe returns a channel receiving every event recorded from now on
// and a function to cancel it. A subscriber that does not keep up misses
// events.
func (m *Manager) Subscribe(size int) (<-chan schema.Event, func()) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if size <= 0 {
		size = 64
	}
	m.subId++
	id := m.subId
	ch := make(chan schema.Event, size)
	m.subs[id] = ch
	return ch, func() {
		m.lock.Lock()
		defer m.lock.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

func (m *Manager) publish(ev schema.Event) {
	m.events.Add(ev)
	switch models.Severity(ev.Severity) {
	case models.SevError:
		m.out.Error("Manager.Event %s %s: %s", ev.TunnelID, ev.Code, ev.Message)
	case models.SevWarning:
		m.out.Warn("Manager.Event %s %s: %s", ev.TunnelID, ev.Code, ev.Message)
	default:
		m.out.Info("Manager.Event %s: %s", ev.TunnelID, ev.Message)
	}
	for _, ch := range m.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (m *Manager) event(tunnel string, sev models.Severity, code models.Code, now time.Time, format string, v ...interface{}) {
	m.publish(models.NewEvent(tunnel, sev, code, now, format, v...))
}

// journal feeds what the negotiator produces into the logs.
type journal struct {
	m *Manager
}

func (j journal) Message(msg schema.IKEMessage) {
	j.m.messages.Add(msg)
}

func (j journal) Event(ev schema.Event) {
	j.m.publish(ev)
}

func (m *Manager) journal() journal {
	return journal{m: m}
}
