package vpn

import (
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	tunnelsDesc = prometheus.NewDesc("vpnsim_tunnels",
		"The number of tunnels by status", []string{"status"}, nil)
	sasDesc = prometheus.NewDesc("vpnsim_security_associations",
		"The number of live security associations by class", []string{"class"}, nil)
	packetsDesc = prometheus.NewDesc("vpnsim_packets_total",
		"The total ESP packets by operation", []string{"op"}, nil)
	negotiationsDesc = prometheus.NewDesc("vpnsim_negotiations_total",
		"The total completed negotiations", nil, nil)
	rekeysDesc = prometheus.NewDesc("vpnsim_rekeys_total",
		"The total successful rekeys", nil, nil)
	runningDesc = prometheus.NewDesc("vpnsim_running",
		"Whether the engine is ticking", nil, nil)
)

// collector reads the statistics of a manager on every scrape.
type collector struct {
	m *Manager
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- tunnelsDesc
	ch <- sasDesc
	ch <- packetsDesc
	ch <- negotiationsDesc
	ch <- rekeysDesc
	ch <- runningDesc
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	s := c.m.Stats()
	for status, count := range s.Tunnels {
		ch <- prometheus.MustNewConstMetric(tunnelsDesc, prometheus.GaugeValue, float64(count), status)
	}
	ch <- prometheus.MustNewConstMetric(sasDesc, prometheus.GaugeValue, float64(s.IKESAs), string(models.ClassIKE))
	ch <- prometheus.MustNewConstMetric(sasDesc, prometheus.GaugeValue, float64(s.IPSecSAs), string(models.ClassIPSec))
	ch <- prometheus.MustNewConstMetric(packetsDesc, prometheus.CounterValue, float64(s.Encrypted), "encrypt")
	ch <- prometheus.MustNewConstMetric(packetsDesc, prometheus.CounterValue, float64(s.Decrypted), "decrypt")
	ch <- prometheus.MustNewConstMetric(negotiationsDesc, prometheus.CounterValue, float64(s.Negotiations))
	ch <- prometheus.MustNewConstMetric(rekeysDesc, prometheus.CounterValue, float64(s.Rekeys))
	running := 0.0
	if s.Running {
		running = 1
	}
	ch <- prometheus.MustNewConstMetric(runningDesc, prometheus.GaugeValue, running)
}
