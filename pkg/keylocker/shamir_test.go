package keylocker

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validateExact(want []byte) func([]byte) bool {
	return func(got []byte) bool { return bytes.Equal(got, want) }
}

func TestSplitCombineThreshold(t *testing.T) {
	rnd := newTestSource(t)
	secret := []byte("the quick brown fox jumps")

	shares, err := Split(secret, 7, 4, rnd)
	require.NoError(t, err)
	assert.Len(t, shares, 7)

	got, err := Combine(shares[:4], 4, validateExact(secret))
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	got, err = Combine([]Share{shares[1], shares[3], shares[5], shares[6]}, 4, validateExact(secret))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestCombineInsufficientShares(t *testing.T) {
	rnd := newTestSource(t)
	secret := []byte("short secret")
	shares, err := Split(secret, 5, 3, rnd)
	require.NoError(t, err)

	_, err = Combine(shares[:2], 3, validateExact(secret))
	assert.ErrorIs(t, err, errInsufficientShares)
}

func TestCombineSkipsSubsetsWithBadShare(t *testing.T) {
	rnd := newTestSource(t)
	secret := []byte("another secret value")
	shares, err := Split(secret, 6, 3, rnd)
	require.NoError(t, err)

	corrupted := append([]Share{}, shares...)
	corrupted[0].Data = append([]byte{}, corrupted[0].Data...)
	corrupted[0].Data[0] ^= 0xFF

	got, err := Combine(corrupted[:4], 3, validateExact(secret))
	require.NoError(t, err)
	assert.Equal(t, secret, got)
}

func TestCombineUnrecoverable(t *testing.T) {
	rnd := newTestSource(t)
	secret := []byte("yet another secret")
	shares, err := Split(secret, 5, 3, rnd)
	require.NoError(t, err)

	for i := range shares {
		shares[i].Data = append([]byte{}, shares[i].Data...)
		shares[i].Data[0] ^= byte(i + 1)
	}
	_, err = Combine(shares, 3, validateExact(secret))
	assert.ErrorIs(t, err, errUnrecoverableEntry)
}

func TestSplitRejectsInvalidMode(t *testing.T) {
	rnd := newTestSource(t)
	_, err := Split([]byte("x"), 2, 5, rnd)
	assert.ErrorIs(t, err, ErrInvalidMode)
}
