package config

import (
	"math"
	"time"
)

// Engine carries the timing of the manager. Durations are in seconds.
type Engine struct {
	Tick         int    `json:"tick"`
	DPDInterval  int    `json:"dpdInterval" yaml:"dpdInterval"`
	DPDTimeout   int    `json:"dpdTimeout" yaml:"dpdTimeout"`
	RekeyMargin  int    `json:"rekeyMargin" yaml:"rekeyMargin"`
	MaxSequence  uint64 `json:"maxSequence" yaml:"maxSequence"`
	ReplayWindow uint64 `json:"replayWindow" yaml:"replayWindow"`
	Stepwise     bool   `json:"stepwise,omitempty"`
}

func (e *Engine) Correct() {
	if e.Tick == 0 {
		e.Tick = 1
	}
	if e.DPDInterval == 0 {
		e.DPDInterval = 10
	}
	if e.DPDTimeout == 0 {
		e.DPDTimeout = 3 * e.DPDInterval
	}
	if e.DPDTimeout < e.DPDInterval {
		e.DPDTimeout = e.DPDInterval
	}
	if e.RekeyMargin == 0 {
		e.RekeyMargin = 60
	}
	if e.MaxSequence == 0 {
		e.MaxSequence = math.MaxUint32
	}
	if e.ReplayWindow == 0 || e.ReplayWindow > 64 {
		e.ReplayWindow = 64
	}
}

func seconds(v int) time.Duration {
	return time.Duration(v) * time.Second
}

func (e *Engine) GetTick() time.Duration {
	return seconds(e.Tick)
}

func (e *Engine) GetDPDInterval() time.Duration {
	return seconds(e.DPDInterval)
}

func (e *Engine) GetDPDTimeout() time.Duration {
	return seconds(e.DPDTimeout)
}

func (e *Engine) GetRekeyMargin() time.Duration {
	return seconds(e.RekeyMargin)
}
