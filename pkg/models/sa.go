package models

import (
	"fmt"
	"time"

	"github.com/luscis/vpnsim/pkg/schema"
)

type Class string

const (
	ClassIKE   Class = "ike"
	ClassIPSec Class = "ipsec"
)

type Direction string

const (
	Inbound  Direction = "inbound"
	Outbound Direction = "outbound"
)

type SecurityAssociation struct {
	Spi       uint32
	Class     Class
	TunnelID  string
	Proposal  string
	Direction Direction
	CreatedAt time.Time
	ExpiresAt time.Time
	Sequence  uint64
	Replay    ReplayWindow
	Key       []byte
	Retired   bool
}

func (sa *SecurityAssociation) ID() string {
	return fmt.Sprintf("%s:%08x", sa.Class, sa.Spi)
}

func (sa *SecurityAssociation) String() string {
	if sa.Direction == "" {
		return fmt.Sprintf("{Spi: %08x Class: %s Tunnel: %s}", sa.Spi, sa.Class, sa.TunnelID)
	}
	return fmt.Sprintf("{Spi: %08x Class: %s Tunnel: %s Dir: %s}", sa.Spi, sa.Class, sa.TunnelID, sa.Direction)
}

// IsExpired reports whether now is at or past the hard lifetime.
func (sa *SecurityAssociation) IsExpired(now time.Time) bool {
	return !now.Before(sa.ExpiresAt)
}

// Live is an SA that is neither retired nor expired at now.
func (sa *SecurityAssociation) Live(now time.Time) bool {
	return !sa.Retired && !sa.IsExpired(now)
}

// SoftExpired reports whether the SA is within margin of its expiry.
func (sa *SecurityAssociation) SoftExpired(now time.Time, margin time.Duration) bool {
	return !now.Before(sa.ExpiresAt.Add(-margin))
}

func NewSASchema(sa *SecurityAssociation) schema.SA {
	return schema.SA{
		Spi:       sa.Spi,
		Class:     string(sa.Class),
		TunnelID:  sa.TunnelID,
		Proposal:  sa.Proposal,
		Direction: string(sa.Direction),
		CreatedAt: sa.CreatedAt.Unix(),
		ExpiresAt: sa.ExpiresAt.Unix(),
		Sequence:  sa.Sequence,
	}
}
