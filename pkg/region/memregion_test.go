package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemReadWrite(t *testing.T) {
	m := NewMem(1024)
	assert.NoError(t, m.Write(100, []byte("hello")))
	got, err := m.Read(100, 5)
	assert.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestMemOutOfRange(t *testing.T) {
	m := NewMem(64)
	_, err := m.Read(60, 10)
	assert.Error(t, err)
	assert.Error(t, m.Write(60, make([]byte, 10)))
}
