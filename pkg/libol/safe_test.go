package libol

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestZeroSafeStrMapSet(t *testing.T) {
	m := NewSafeStrMap(0)
	_ = m.Set("hi", 1)
	i := m.Get("hi")
	assert.Equal(t, i, 1, "be the same.")

	_ = m.Set("hi", 3)
	c := m.Get("hi").(int)
	assert.Equal(t, c, 1, "be the same.")
	assert.Equal(t, 1, m.Len(), "be the same.")

	_ = m.Mod("hi", 3)
	assert.Equal(t, 3, m.Get("hi").(int), "be the same.")
}

func TestSafeStrMapFull(t *testing.T) {
	m := NewSafeStrMap(2)
	assert.Nil(t, m.Set("a", 1))
	assert.Nil(t, m.Set("b", 2))
	assert.True(t, m.Full())
	assert.NotNil(t, m.Set("c", 3), "MUST be full")
	assert.Equal(t, 2, m.Len())

	m.Del("a")
	assert.False(t, m.Full())
	_, ok := m.GetEx("a")
	assert.False(t, ok)
}

func TestSafeStrMapIterKeys(t *testing.T) {
	ms := NewSafeStrMap(0)
	cm := 0
	for i := 1024; i < 1024+64; i++ {
		cm += i
		_ = ms.Set(fmt.Sprintf("%d", i), i)
	}
	cmt := 0
	ms.Iter(func(k string, v interface{}) {
		cmt += v.(int)
	})
	assert.Equal(t, cmt, cm, "be the same")

	keys := ms.Keys()
	sort.Strings(keys)
	assert.Equal(t, 64, len(keys))
	assert.Equal(t, "1024", keys[0])

	ms.Clear()
	assert.Equal(t, 0, ms.Len())
}

func BenchmarkSafeStrMapGet(b *testing.B) {
	m := NewSafeStrMap(2)
	_ = m.Set("hi", 2)

	for i := 0; i < b.N; i++ {
		v := m.Get("hi").(int)
		assert.Equal(b, v, 2, "")
	}
}
