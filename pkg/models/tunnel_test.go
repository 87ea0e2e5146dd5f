package models

import (
	"errors"
	"testing"
	"time"

	"github.com/luscis/vpnsim/pkg/schema"
	"github.com/stretchr/testify/assert"
)

func TestTunnelBind(t *testing.T) {
	tun := &Tunnel{ID: "t1", Status: StatusDown}
	assert.False(t, tun.Bound())
	tun.Bind(1, 2, 3)
	assert.True(t, tun.Bound())
	tun.Unbind()
	assert.False(t, tun.Bound())

	assert.Equal(t, uint32(0), tun.NextMessageID())
	assert.Equal(t, uint32(1), tun.NextMessageID())
}

func TestNewTunnelSchema(t *testing.T) {
	now := time.Unix(1700000000, 0)
	tun := &Tunnel{
		ID:        "t1",
		Type:      SiteToSite,
		CreatedAt: now,
		Peer:      schema.Peer{PSK: "secret", Alive: true},
		Status:    StatusEstablished,
	}
	obj := NewTunnelSchema(tun)
	assert.Equal(t, "", obj.Peer.PSK, "MUST hide peer secret")
	assert.Equal(t, "established", obj.Status)
	assert.Equal(t, int64(0), obj.EstablishedAt)
	tun.EstablishedAt = now
	assert.Equal(t, now.Unix(), NewTunnelSchema(tun).EstablishedAt)
	assert.Equal(t, "secret", tun.Peer.PSK, "MUST not touch the tunnel")
}

func TestTunnelType(t *testing.T) {
	assert.True(t, HubSpoke.Valid())
	assert.False(t, TunnelType("mesh").Valid())
}

func TestErrorIs(t *testing.T) {
	err := NewError(UnknownSPI, "spi %08x", 0x1001)
	assert.True(t, errors.Is(err, ErrUnknownSPI))
	assert.False(t, errors.Is(err, ErrSAExpired))
	assert.Equal(t, UnknownSPI, CodeOf(err))
	assert.Equal(t, "UnknownSPI: spi 00001001", err.Error())
	assert.Equal(t, Code(""), CodeOf(errors.New("plain")))
}

func TestSAExpiry(t *testing.T) {
	now := time.Unix(1000, 0)
	sa := &SecurityAssociation{
		Spi:       0x1001,
		Class:     ClassIPSec,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	assert.False(t, sa.IsExpired(now))
	assert.True(t, sa.IsExpired(now.Add(time.Hour)))
	assert.True(t, sa.Live(now))
	assert.True(t, sa.SoftExpired(now.Add(59*time.Minute), 2*time.Minute))
	sa.Retired = true
	assert.False(t, sa.Live(now))
	assert.Equal(t, "ipsec:00001001", sa.ID())
}

func TestNewID(t *testing.T) {
	a := NewID("tun-")
	b := NewID("tun-")
	assert.NotEqual(t, a, b)
	assert.Equal(t, 16, len(a))
}
