package ike

import (
	"errors"
	"testing"
	"time"

	"github.com/luscis/vpnsim/pkg/cache"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/stretchr/testify/assert"
)

func established(t *testing.T) (*models.Tunnel, *cache.SAStore, *journal) {
	tun := newTunnel()
	store := cache.NewSAStore(0)
	j := &journal{}
	assert.Nil(t, NewSession(tun, store, j).Run(time.Unix(1000, 0)))
	j.messages = nil
	j.events = nil
	return tun, store, j
}

func TestExchangeRekey(t *testing.T) {
	tun, store, j := established(t)
	now := time.Unix(2000, 0)
	ike, in, out := tun.IKESpi, tun.InboundSpi, tun.OutboundSpi

	assert.Nil(t, NewExchange(tun, store, j, now).Rekey())
	assert.Equal(t, 1, tun.RekeyCount)
	assert.True(t, tun.Bound())
	assert.NotEqual(t, ike, tun.IKESpi)
	assert.NotEqual(t, in, tun.InboundSpi)
	assert.NotEqual(t, out, tun.OutboundSpi)
	assert.Nil(t, store.Get(models.ClassIPSec, out), "old released")
	assert.Equal(t, 3, len(store.ByTunnel(tun.ID)))
	assert.Equal(t, now.Add(time.Hour), store.Get(models.ClassIPSec, tun.OutboundSpi).ExpiresAt)
	assert.Equal(t, []string{CreateChildSA, CreateChildSA, CreateChildSA, CreateChildSA, Informational, Informational}, j.types())
}

func TestExchangeRekeyFailure(t *testing.T) {
	tun, store, j := established(t)
	tun.Peer.Unreachable = true
	ike := tun.IKESpi
	err := NewExchange(tun, store, j, time.Unix(2000, 0)).Rekey()
	assert.True(t, errors.Is(err, models.ErrTimeout))
	assert.Equal(t, ike, tun.IKESpi, "old SAs kept")
	assert.Equal(t, 3, len(store.ByTunnel(tun.ID)))
	assert.Equal(t, 0, tun.RekeyCount)

	tun.Status = models.StatusDown
	err = NewExchange(tun, store, j, time.Unix(2000, 0)).Rekey()
	assert.True(t, errors.Is(err, models.ErrTunnelNotEstablished))
}

func TestExchangeDelete(t *testing.T) {
	tun, store, j := established(t)
	NewExchange(tun, store, j, time.Unix(2000, 0)).Delete()
	assert.False(t, tun.Bound())
	assert.Equal(t, 0, len(store.ByTunnel(tun.ID)))
	assert.Equal(t, 2, len(j.messages))
	assert.Equal(t, 2, len(j.messages[0].Payloads))

	NewExchange(tun, store, j, time.Unix(2000, 0)).Delete()
	assert.Equal(t, 2, len(j.messages), "nothing left to delete")
}

func TestExchangeProbe(t *testing.T) {
	tun, store, j := established(t)
	assert.True(t, NewExchange(tun, store, j, time.Unix(2000, 0)).Probe())
	tun.Peer.Alive = false
	assert.False(t, NewExchange(tun, store, j, time.Unix(2000, 0)).Probe())
	assert.Equal(t, 3, len(j.messages))
}
