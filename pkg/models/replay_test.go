package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReplayWindow(t *testing.T) {
	w := &ReplayWindow{Size: 8}
	assert.False(t, w.Check(0), "zero is never valid")
	for _, seq := range []uint64{1, 2, 5, 3} {
		assert.True(t, w.Check(seq), "MUST accept %d", seq)
		w.Update(seq)
	}
	assert.Equal(t, uint64(5), w.Top)
	assert.False(t, w.Check(5), "MUST reject duplicate")
	assert.False(t, w.Check(3), "MUST reject duplicate")
	assert.True(t, w.Check(4), "hole in window")

	w.Update(20)
	assert.False(t, w.Check(12), "left of window")
	assert.True(t, w.Check(13))
	assert.True(t, w.Check(21))
}

func TestReplayWindowLargeJump(t *testing.T) {
	w := &ReplayWindow{}
	w.Update(1)
	w.Update(1000)
	assert.Equal(t, uint64(1), w.Bitmap)
	assert.True(t, w.Check(999))
	assert.False(t, w.Check(1000))
}
