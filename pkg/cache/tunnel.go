package cache

import (
	"sort"

	"github.com/luscis/vpnsim/pkg/libol"
	"github.com/luscis/vpnsim/pkg/models"
)

type Tunnels struct {
	Tunnels *libol.SafeStrMap
}

func NewTunnels(size int) *Tunnels {
	return &Tunnels{
		Tunnels: libol.NewSafeStrMap(size),
	}
}

func (p *Tunnels) Init(size int) {
	p.Tunnels = libol.NewSafeStrMap(size)
}

func (p *Tunnels) Add(t *models.Tunnel) error {
	return p.Tunnels.Set(t.ID, t)
}

func (p *Tunnels) Get(id string) *models.Tunnel {
	if ret := p.Tunnels.Get(id); ret != nil {
		return ret.(*models.Tunnel)
	}
	return nil
}

func (p *Tunnels) Del(id string) {
	p.Tunnels.Del(id)
}

func (p *Tunnels) Len() int {
	return p.Tunnels.Len()
}

// List returns the tunnels in creation order.
func (p *Tunnels) List() []*models.Tunnel {
	items := make([]*models.Tunnel, 0, p.Tunnels.Len())
	p.Tunnels.Iter(func(k string, v interface{}) {
		items = append(items, v.(*models.Tunnel))
	})
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return items
}
