package secret

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferWipe(t *testing.T) {
	b, err := New(32)
	assert.NoError(t, err)
	copy(b.Bytes(), []byte("super secret passphrase bytes!!"))
	assert.NotEqual(t, make([]byte, 32), b.Bytes())

	b.Wipe()
	assert.Equal(t, make([]byte, 32), b.Bytes())
}

func TestWipeNilSafe(t *testing.T) {
	var b *Buffer
	assert.NotPanics(t, func() { b.Wipe() })
	assert.Equal(t, 0, b.Len())
	assert.Nil(t, b.Bytes())
}

func TestFromBytes(t *testing.T) {
	src := []byte("hello")
	b := FromBytes(src)
	assert.Equal(t, "hello", string(b.Bytes()))
	b.Wipe()
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, src)
}
