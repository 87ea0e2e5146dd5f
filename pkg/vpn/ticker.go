package vpn

import (
	"fmt"
	"log"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/robfig/cron/v3"
)

// cronLogger sends the scheduler's own logging to the libol sink.
func cronLogger() logr.Logger {
	return stdr.New(log.New(libol.Logger.Writer(), "cron|", log.LstdFlags))
}

// Ticker calls back at a fixed interval. A slow callback is skipped, not
// stacked.
type Ticker struct {
	cron     *cron.Cron
	id       cron.EntryID
	interval time.Duration
	call     func()
	out      *libol.SubLogger
}

func NewTicker(interval time.Duration, call func()) *Ticker {
	if interval < time.Second {
		interval = time.Second
	}
	logger := cronLogger()
	return &Ticker{
		cron: cron.New(
			cron.WithLogger(logger),
			cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
		),
		interval: interval,
		call:     call,
		out:      libol.NewSubLogger("ticker"),
	}
}

func (t *Ticker) Spec() string {
	return fmt.Sprintf("@every %s", t.interval)
}

func (t *Ticker) Start() error {
	if t.id == 0 {
		id, err := t.cron.AddFunc(t.Spec(), t.call)
		if err != nil {
			return err
		}
		t.id = id
	}
	t.out.Info("Ticker.Start %s", t.Spec())
	t.cron.Start()
	return nil
}

// Stop does not wait for a running callback, which may be blocked on
// the caller.
func (t *Ticker) Stop() {
	t.out.Info("Ticker.Stop")
	t.cron.Stop()
}

func (t *Ticker) Next() time.Time {
	return t.cron.Entry(t.id).Next
}
