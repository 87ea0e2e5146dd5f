package cache

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
)

// SPIs below 256 are reserved by RFC 4303.
const minSpi = 0x100

// SAStore keeps the IKE and IPSec SAs keyed by SPI within their class.
// SPIs come from a single counter, so allocation is atomic even when
// callers are not serialized.
type SAStore struct {
	lock   sync.Mutex
	next   uint32
	sas    map[models.Class]*libol.SafeStrMap
	Window uint64
}

func NewSAStore(size int) *SAStore {
	s := &SAStore{
		Window: models.MaxReplayWindow,
	}
	s.Init(size)
	return s
}

func (s *SAStore) Init(size int) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.next = 0x1000 + uint32(rand.Intn(0xf000))
	s.sas = map[models.Class]*libol.SafeStrMap{
		models.ClassIKE:   libol.NewSafeStrMap(size),
		models.ClassIPSec: libol.NewSafeStrMap(size),
	}
}

func spiKey(spi uint32) string {
	return fmt.Sprintf("%08x", spi)
}

func (s *SAStore) nextSpi(sas *libol.SafeStrMap) uint32 {
	for {
		s.next++
		if s.next < minSpi {
			s.next = minSpi
		}
		if _, ok := sas.GetEx(spiKey(s.next)); !ok {
			return s.next
		}
	}
}

// Allocate mints an SA with a SPI no stored SA of its class holds.
func (s *SAStore) Allocate(class models.Class, tunnel, proposal string, lifetime time.Duration,
	dir models.Direction, now time.Time) (*models.SecurityAssociation, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	sas, ok := s.sas[class]
	if !ok {
		return nil, libol.NewErr("unknown sa class %s", class)
	}
	if sas.Full() {
		return nil, libol.NewErr("too many %s sas", class)
	}
	key := uuid.New()
	sa := &models.SecurityAssociation{
		Spi:       s.nextSpi(sas),
		Class:     class,
		TunnelID:  tunnel,
		Proposal:  proposal,
		Direction: dir,
		CreatedAt: now,
		ExpiresAt: now.Add(lifetime),
		Replay:    models.ReplayWindow{Size: s.Window},
		Key:       key[:],
	}
	if err := sas.Set(spiKey(sa.Spi), sa); err != nil {
		return nil, err
	}
	return sa, nil
}

// Release retires the SA and forgets it. Releasing an unknown SPI is a
// no-op.
func (s *SAStore) Release(class models.Class, spi uint32) {
	sas, ok := s.sas[class]
	if !ok || spi == 0 {
		return
	}
	key := spiKey(spi)
	if v, ok := sas.GetEx(key); ok {
		v.(*models.SecurityAssociation).Retired = true
		sas.Del(key)
	}
}

func (s *SAStore) Get(class models.Class, spi uint32) *models.SecurityAssociation {
	sas, ok := s.sas[class]
	if !ok {
		return nil
	}
	if v := sas.Get(spiKey(spi)); v != nil {
		return v.(*models.SecurityAssociation)
	}
	return nil
}

// IsExpired reports whether the SA is unknown or past its hard lifetime.
func (s *SAStore) IsExpired(class models.Class, spi uint32, now time.Time) bool {
	sa := s.Get(class, spi)
	if sa == nil {
		return true
	}
	return sa.IsExpired(now)
}

// List returns the SAs of class ordered by creation, all classes for "".
func (s *SAStore) List(class models.Class) []*models.SecurityAssociation {
	items := make([]*models.SecurityAssociation, 0, 32)
	for c, sas := range s.sas {
		if class != "" && c != class {
			continue
		}
		sas.Iter(func(k string, v interface{}) {
			items = append(items, v.(*models.SecurityAssociation))
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		return a.Spi < b.Spi
	})
	return items
}

// Count is the number of SAs of class live at now.
func (s *SAStore) Count(class models.Class, now time.Time) int {
	count := 0
	for _, sa := range s.List(class) {
		if sa.Live(now) {
			count++
		}
	}
	return count
}

func (s *SAStore) ByTunnel(tunnel string) []*models.SecurityAssociation {
	items := make([]*models.SecurityAssociation, 0, 4)
	for _, sa := range s.List("") {
		if sa.TunnelID == tunnel {
			items = append(items, sa)
		}
	}
	return items
}

// NextSequence advances the outbound counter of sa. The counter starts at
// 1 and never wraps: past max it fails with SAExhausted.
func (s *SAStore) NextSequence(sa *models.SecurityAssociation, max uint64) (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if max > 0 && sa.Sequence >= max {
		return 0, models.NewError(models.SAExhausted, "sa %08x reached sequence %d", sa.Spi, sa.Sequence)
	}
	sa.Sequence++
	return sa.Sequence, nil
}
