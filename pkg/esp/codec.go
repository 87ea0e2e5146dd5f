// Package esp builds and opens tunnel mode ESP packets, RFC 4303 in
// shape only.
package esp

import (
	"bytes"
	"encoding/hex"
	"net"
	"time"

	"github.com/luscis/vpnsim/pkg/cache"
	"github.com/luscis/vpnsim/pkg/catalog"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
	"github.com/luscis/vpnsim/pkg/schema"
)

const (
	NextHeaderIPv4 = 4
	NextHeaderIPv6 = 41
)

type Codec struct {
	Store       *cache.SAStore
	MaxSequence uint64
	out         *libol.SubLogger
}

func NewCodec(store *cache.SAStore, maxSeq uint64) *Codec {
	return &Codec{
		Store:       store,
		MaxSequence: maxSeq,
		out:         libol.NewSubLogger("esp"),
	}
}

func nextHeader(p schema.Packet) int {
	if ip := net.ParseIP(p.SourceIP); ip != nil && ip.To4() == nil {
		return NextHeaderIPv6
	}
	return NextHeaderIPv4
}

func OuterHeader(t *models.Tunnel) *schema.OuterHeader {
	h := &schema.OuterHeader{
		SourceIP: t.Local.PublicIP,
		DestIP:   t.Remote.PublicIP,
		Protocol: "esp",
	}
	if t.NATTraversal {
		h.Protocol = "udp"
		h.UDPPort = models.NATTPort
	}
	return h
}

// Encapsulate seals p under the outbound SA of t. It fails with
// TunnelNotEstablished without a live outbound SA, and with SAExhausted
// once the sequence space is used up.
func (c *Codec) Encapsulate(t *models.Tunnel, p schema.Packet, now time.Time) (*schema.ESPPacket, error) {
	if t.Status != models.StatusEstablished || t.OutboundSpi == 0 {
		return nil, models.NewError(models.TunnelNotEstablished, "tunnel %s is %s", t.ID, t.Status)
	}
	sa := c.Store.Get(models.ClassIPSec, t.OutboundSpi)
	if sa == nil || !sa.Live(now) {
		return nil, models.NewError(models.TunnelNotEstablished, "tunnel %s has no live outbound sa", t.ID)
	}
	plain, err := libol.Marshal(p, false)
	if err != nil {
		return nil, models.NewError(models.InvalidParams, "%s", err)
	}
	seq, err := c.Store.NextSequence(sa, c.MaxSequence)
	if err != nil {
		return nil, err
	}
	cipher := catalog.GetCipher(t.IPSecProposal.Encryption, t.IPSecProposal.Integrity)
	next := nextHeader(p)
	padLen := (cipher.BlockSize - (len(plain)+2)%cipher.BlockSize) % cipher.BlockSize
	// payload | padding 1,2,3.. | pad length | next header
	buf := bytes.NewBuffer(plain)
	for i := 1; i <= padLen; i++ {
		buf.WriteByte(byte(i))
	}
	buf.WriteByte(byte(padLen))
	buf.WriteByte(byte(next))

	iv := makeIV(sa.Key, seq, cipher.IVSize)
	data := encrypt(sa.Key, iv, buf.Bytes())
	icv := makeICV(sa.Key, sa.Spi, seq, iv, data, cipher.ICVSize)
	orig := p
	t.PacketsOut++
	return &schema.ESPPacket{
		ID:          models.NewID("esp-"),
		TunnelID:    t.ID,
		OuterHeader: OuterHeader(t),
		ESPHeader: schema.ESPHeader{
			Spi:            sa.Spi,
			SequenceNumber: seq,
		},
		Payload: schema.ESPPayload{
			IV:            hex.EncodeToString(iv),
			PaddingLength: padLen,
			NextHeader:    next,
			CipherData:    hex.EncodeToString(data),
		},
		Authentication: schema.ESPAuth{
			ICV: hex.EncodeToString(icv),
		},
		OriginalPacket: &orig,
		Timestamp:      now.UnixMilli(),
	}, nil
}

// Decapsulate verifies and opens p. The engine plays both ends, so the
// SPI may name either SA of a pair: what one side sends on its outbound
// SA the other receives on the same SPI. The replay window only moves
// for packets that pass the integrity check.
func (c *Codec) Decapsulate(p *schema.ESPPacket, now time.Time) (*schema.Packet, *models.SecurityAssociation, error) {
	spi := p.ESPHeader.Spi
	seq := p.ESPHeader.SequenceNumber
	sa := c.Store.Get(models.ClassIPSec, spi)
	if sa == nil || sa.Retired {
		return nil, nil, models.NewError(models.UnknownSPI, "no sa for spi %08x", spi)
	}
	if sa.IsExpired(now) {
		return nil, sa, models.NewError(models.SAExpired, "sa %08x expired at %s", spi, sa.ExpiresAt.Format(time.RFC3339))
	}
	if !sa.Replay.Check(seq) {
		return nil, sa, models.NewError(models.ReplayDetected, "sa %08x sequence %d replayed", spi, seq)
	}
	iv, err := hex.DecodeString(p.Payload.IV)
	if err != nil {
		return nil, sa, models.NewError(models.AuthenticationFailed, "bad iv: %s", err)
	}
	data, err := hex.DecodeString(p.Payload.CipherData)
	if err != nil {
		return nil, sa, models.NewError(models.AuthenticationFailed, "bad cipher data: %s", err)
	}
	icv, err := hex.DecodeString(p.Authentication.ICV)
	if err != nil {
		return nil, sa, models.NewError(models.AuthenticationFailed, "bad icv: %s", err)
	}
	size := len(icv)
	if obj, err := catalog.GetIPSec(sa.Proposal); err == nil {
		size = catalog.GetCipher(obj.Encryption, obj.Integrity).ICVSize
	}
	expect := makeICV(sa.Key, spi, seq, iv, data, size)
	if len(icv) == 0 || len(icv) != size || !bytes.Equal(icv, expect) {
		return nil, sa, models.NewError(models.AuthenticationFailed, "icv mismatch on sa %08x sequence %d", spi, seq)
	}
	sa.Replay.Update(seq)

	plain := decrypt(sa.Key, iv, data)
	if len(plain) < 2 {
		return nil, sa, models.NewError(models.InvalidParams, "short payload")
	}
	padLen := int(plain[len(plain)-2])
	end := len(plain) - 2 - padLen
	if end < 0 {
		return nil, sa, models.NewError(models.InvalidParams, "bad padding length %d", padLen)
	}
	inner := &schema.Packet{}
	if err := libol.Unmarshal(inner, plain[:end]); err != nil {
		return nil, sa, models.NewError(models.InvalidParams, "%s", err)
	}
	return inner, sa, nil
}
