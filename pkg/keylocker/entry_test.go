package keylocker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryMarshalUnmarshalRoundTrip(t *testing.T) {
	e := Entry{
		Device: "/dev/sdb1",
		Start:  4096,
		Length: 32,
		Key:    []byte{1, 2, 3, 4, 5, 6, 7, 8},
		Text:   "backup key",
	}
	b, err := e.Marshal()
	require.NoError(t, err)

	got, err := Unmarshal(b)
	require.NoError(t, err)
	assert.Equal(t, e, got)
}

func TestEntryFitsDefaultSlotCapacity(t *testing.T) {
	e := Entry{
		Device: "sda1",
		Start:  0,
		Length: 16,
		Key:    make([]byte, 32),
	}
	b, err := e.Marshal()
	require.NoError(t, err)
	maxShamir := int(SlotSize) - slotHeaderLen - 1
	assert.LessOrEqual(t, len(b), maxShamir, "entry must fit a default shamir slot's share capacity")
}

func TestUnmarshalRejectsCorruption(t *testing.T) {
	e := Entry{Device: "dev", Key: []byte{9, 9}}
	b, err := e.Marshal()
	require.NoError(t, err)
	b[len(b)-1] ^= 0xFF

	_, err = Unmarshal(b)
	assert.ErrorIs(t, err, errCorruptEntry)
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	_, err := Unmarshal([]byte{1, 2, 3})
	assert.Error(t, err)
}
