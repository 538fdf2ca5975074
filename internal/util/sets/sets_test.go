package sets

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSet(t *testing.T) {
	s := New("b", "a")
	assert.True(t, s.Has("a"))
	assert.False(t, s.Has("c"))

	assert.True(t, s.TryAdd("c"))
	assert.False(t, s.TryAdd("c"))

	c := s.Clone()
	s.Delete("a")
	assert.False(t, s.Has("a"))
	assert.True(t, c.Has("a"))

	assert.Equal(t, []string{"a", "b", "c"}, Sorted(c))
}
