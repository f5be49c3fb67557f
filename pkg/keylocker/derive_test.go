package keylocker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastDeriver(t *testing.T) *Deriver {
	d, err := NewDeriver(WithArgon2Cost(Argon2Cost{Time: 1, MemKiB: 8 * 1024, Threads: 1, KeyLen: 32}))
	require.NoError(t, err)
	return d
}

func TestMasterKeyDeterministic(t *testing.T) {
	d := fastDeriver(t)
	head, tail := []byte("head-salt"), []byte("tail-salt")

	k1, err := d.MasterKey(Passphrase("correct horse"), head, tail, DeviceID("/dev/sdb1"))
	require.NoError(t, err)
	k2, err := d.MasterKey(Passphrase("correct horse"), head, tail, DeviceID("/dev/sdb1"))
	require.NoError(t, err)
	assert.Equal(t, k1.Bytes(), k2.Bytes())

	k3, err := d.MasterKey(Passphrase("correct horse"), head, tail, DeviceID("/dev/sdc1"))
	require.NoError(t, err)
	assert.NotEqual(t, k1.Bytes(), k3.Bytes())
}

func TestMasterKeyRejectsEmptyPassphrase(t *testing.T) {
	d := fastDeriver(t)
	_, err := d.MasterKey(Passphrase(nil), []byte("h"), []byte("t"), DeviceID("dev"))
	assert.ErrorIs(t, err, ErrEmptyPassphrase)
}

func TestSlotIndicesDistinctAndDeterministic(t *testing.T) {
	d := fastDeriver(t)
	key, err := d.MasterKey(Passphrase("swordfish"), []byte("h"), []byte("t"), DeviceID("dev0"))
	require.NoError(t, err)

	idx1, err := d.SlotIndices(key.Bytes(), 7, 200)
	require.NoError(t, err)
	idx2, err := d.SlotIndices(key.Bytes(), 7, 200)
	require.NoError(t, err)
	assert.Equal(t, idx1, idx2)

	seen := make(map[int]bool)
	for _, idx := range idx1 {
		assert.False(t, seen[idx], "duplicate slot index %d", idx)
		assert.GreaterOrEqual(t, idx, 0)
		assert.Less(t, idx, 200)
		seen[idx] = true
	}
}

func TestSlotIndicesRejectsImpossibleCount(t *testing.T) {
	d := fastDeriver(t)
	key, err := d.MasterKey(Passphrase("swordfish"), []byte("h"), []byte("t"), DeviceID("dev0"))
	require.NoError(t, err)
	_, err = d.SlotIndices(key.Bytes(), 10, 5)
	assert.Error(t, err)
}

func TestSlotKeyAndNonceSizesAndDistinctness(t *testing.T) {
	d := fastDeriver(t)
	key, err := d.MasterKey(Passphrase("swordfish"), []byte("h"), []byte("t"), DeviceID("dev0"))
	require.NoError(t, err)

	k0 := d.SlotKey(key.Bytes(), 0)
	k1 := d.SlotKey(key.Bytes(), 1)
	assert.Len(t, k0, 32)
	assert.Len(t, k1, 32)
	assert.NotEqual(t, k0, k1)

	n0 := d.SlotNonce(key.Bytes(), 0)
	n1 := d.SlotNonce(key.Bytes(), 1)
	assert.Len(t, n0, 12)
	assert.Len(t, n1, 12)
	assert.NotEqual(t, n0, n1)
	assert.NotEqual(t, k0[:12], n0)
}
