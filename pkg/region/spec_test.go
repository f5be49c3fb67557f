package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSize(t *testing.T) {
	cases := map[string]int64{
		"0":    0,
		"1024": 1024,
		"4K":   4096,
		"2M":   2 * 1024 * 1024,
		"1G":   1024 * 1024 * 1024,
		"-512": -512,
	}
	for spec, want := range cases {
		got, err := ParseSize(spec)
		assert.NoError(t, err, spec)
		assert.Equal(t, want, got, spec)
	}

	_, err := ParseSize("")
	assert.Error(t, err)
	_, err = ParseSize("abc")
	assert.Error(t, err)
}

func TestResolveOffsetNegative(t *testing.T) {
	off, err := ResolveOffset("-1024", 8192)
	assert.NoError(t, err)
	assert.Equal(t, int64(7168), off)
}

func TestResolveOffsetAbsolute(t *testing.T) {
	off, err := ResolveOffset("4K", 8192)
	assert.NoError(t, err)
	assert.Equal(t, int64(4096), off)
}

func TestResolveLengthDefault(t *testing.T) {
	length, err := ResolveLength("1M", 0, 8192)
	assert.NoError(t, err)
	assert.Equal(t, int64(1024*1024), length)
}
