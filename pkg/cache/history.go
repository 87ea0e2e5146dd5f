package cache

import (
	"container/list"
	"sync"
)

// History is an append-only log holding the most recent Size entries.
type History[T any] struct {
	lock  sync.RWMutex
	size  int
	items *list.List
}

func NewHistory[T any](size int) *History[T] {
	if size <= 0 {
		size = 128
	}
	return &History[T]{
		size:  size,
		items: list.New(),
	}
}

func (h *History[T]) Add(v T) {
	h.lock.Lock()
	defer h.lock.Unlock()
	for h.items.Len() >= h.size {
		h.items.Remove(h.items.Front())
	}
	h.items.PushBack(v)
}

func (h *History[T]) Len() int {
	h.lock.RLock()
	defer h.lock.RUnlock()
	return h.items.Len()
}

// List returns at most limit entries, oldest first. A non positive limit
// returns all.
func (h *History[T]) List(limit int) []T {
	h.lock.RLock()
	defer h.lock.RUnlock()
	n := h.items.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	items := make([]T, n)
	i := n - 1
	for ele := h.items.Back(); ele != nil && i >= 0; ele = ele.Prev() {
		items[i] = ele.Value.(T)
		i--
	}
	return items
}

// Filter returns the entries for which match holds, oldest first.
func (h *History[T]) Filter(match func(v T) bool) []T {
	h.lock.RLock()
	defer h.lock.RUnlock()
	items := make([]T, 0, 16)
	for ele := h.items.Front(); ele != nil; ele = ele.Next() {
		if v := ele.Value.(T); match(v) {
			items = append(items, v)
		}
	}
	return items
}

func (h *History[T]) Clear() {
	h.lock.Lock()
	defer h.lock.Unlock()
	h.items.Init()
}
