package libol

import "time"

// Promise retries a call with growing delay until it succeeds, MaxTry is
// reached or Done is closed.
type Promise struct {
	Count  int
	MaxTry int
	First  time.Duration // the delay time.
	MinInt time.Duration // the step added per retry.
	MaxInt time.Duration // the max delay time.
	Done   chan struct{}
}

func NewPromise() *Promise {
	return &Promise{
		First:  time.Second * 2,
		MaxInt: time.Minute,
		MinInt: time.Second * 10,
		MaxTry: 10,
		Done:   make(chan struct{}),
	}
}

func (p *Promise) Do(call func() error) {
	for {
		p.Count++
		if p.MaxTry > 0 && p.Count > p.MaxTry {
			return
		}
		if err := call(); err == nil {
			return
		}
		select {
		case <-p.Done:
			return
		case <-time.After(p.First):
		}
		if p.First < p.MaxInt {
			p.First += p.MinInt
		}
	}
}

func (p *Promise) Go(call func() error) {
	Go(func() {
		p.Do(call)
	})
}

func (p *Promise) Stop() {
	if p.Done == nil {
		return
	}
	select {
	case <-p.Done:
	default:
		close(p.Done)
	}
}
