package keylocker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SurpriseDog/KeyLocker/pkg/entropy"
	"github.com/SurpriseDog/KeyLocker/pkg/region"
)

func newTestSource(t *testing.T) *entropy.Source {
	s, err := entropy.New()
	require.NoError(t, err)
	return s
}

func TestEncodeDecodeSlotPayloadRoundTrip(t *testing.T) {
	rnd := newTestSource(t)
	data := []byte("a tiny secret share")
	encoded, err := EncodeSlotPayload(data, int(SlotSize), rnd)
	require.NoError(t, err)
	assert.Len(t, encoded, int(SlotSize))

	got, ok := DecodeSlotPayload(encoded)
	require.True(t, ok)
	assert.Equal(t, data, got)
}

func TestDecodeSlotPayloadRejectsNoise(t *testing.T) {
	rnd := newTestSource(t)
	noise, err := rnd.Random(int(SlotSize))
	require.NoError(t, err)
	_, ok := DecodeSlotPayload(noise)
	assert.False(t, ok)
}

func TestEncodeSlotPayloadRejectsOversize(t *testing.T) {
	rnd := newTestSource(t)
	_, err := EncodeSlotPayload(make([]byte, 60), int(SlotSize), rnd)
	assert.Error(t, err)
}

func TestWriteReadSlotRoundTrip(t *testing.T) {
	rnd := newTestSource(t)
	mem := region.NewMem(4096)
	d := fastDeriver(t)
	key, err := d.MasterKey(Passphrase("hunter2"), []byte("h"), []byte("t"), DeviceID("dev"))
	require.NoError(t, err)

	slotKey := d.SlotKey(key.Bytes(), 3)
	slotNonce := d.SlotNonce(key.Bytes(), 3)

	payload, err := EncodeSlotPayload([]byte("share-data"), int(SlotSize), rnd)
	require.NoError(t, err)

	offset := int64(512)
	require.NoError(t, WriteSlot(mem, offset, slotKey, slotNonce, payload))

	plain, err := ReadSlot(mem, offset, int(SlotSize), slotKey, slotNonce)
	require.NoError(t, err)
	data, ok := DecodeSlotPayload(plain)
	require.True(t, ok)
	assert.Equal(t, "share-data", string(data))
}

func TestReadSlotWrongKeyFailsDecode(t *testing.T) {
	rnd := newTestSource(t)
	mem := region.NewMem(4096)
	d := fastDeriver(t)
	key, err := d.MasterKey(Passphrase("hunter2"), []byte("h"), []byte("t"), DeviceID("dev"))
	require.NoError(t, err)
	wrongKey, err := d.MasterKey(Passphrase("wrong"), []byte("h"), []byte("t"), DeviceID("dev"))
	require.NoError(t, err)

	payload, err := EncodeSlotPayload([]byte("secret"), int(SlotSize), rnd)
	require.NoError(t, err)
	offset := int64(0)
	sk := d.SlotKey(key.Bytes(), 0)
	sn := d.SlotNonce(key.Bytes(), 0)
	require.NoError(t, WriteSlot(mem, offset, sk, sn, payload))

	wsk := d.SlotKey(wrongKey.Bytes(), 0)
	wsn := d.SlotNonce(wrongKey.Bytes(), 0)
	plain, err := ReadSlot(mem, offset, int(SlotSize), wsk, wsn)
	require.NoError(t, err)
	_, ok := DecodeSlotPayload(plain)
	assert.False(t, ok)
}
