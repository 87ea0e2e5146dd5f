package libol

import (
	"sync"
)

type gos struct {
	lock  sync.Mutex
	total uint64
}

var Gos = gos{}

func (t *gos) Add(call interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.total++
	Debug("gos.Add %d %p", t.total, call)
}

func (t *gos) Del(call interface{}) {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.total--
	Debug("gos.Del %d %p", t.total, call)
}

func (t *gos) Total() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()
	return t.total
}

// Go runs call in a goroutine that recovers and logs panics.
func Go(call func()) {
	name := FunName(call)
	go func() {
		defer Catch("Go." + name)
		Gos.Add(call)
		call()
		Gos.Del(call)
	}()
}
