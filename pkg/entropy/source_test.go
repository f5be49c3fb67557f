package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandomLength(t *testing.T) {
	s, err := New()
	assert.NoError(t, err)

	b, err := s.Random(256)
	assert.NoError(t, err)
	assert.Len(t, b, 256)
}

func TestRandomNeverRepeats(t *testing.T) {
	s, err := New()
	assert.NoError(t, err)

	a, err := s.Random(64)
	assert.NoError(t, err)
	b, err := s.Random(64)
	assert.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestMixDoesNotPanic(t *testing.T) {
	s, err := New()
	assert.NoError(t, err)
	s.Mix([]byte("pointer deltas, timestamps, etc"))
	b, err := s.Random(16)
	assert.NoError(t, err)
	assert.Len(t, b, 16)
}
