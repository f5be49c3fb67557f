package keylocker

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/chacha20"

	"github.com/SurpriseDog/KeyLocker/pkg/region"
)

// randomSource supplies padding bytes for slot encoding. entropy.Source
// satisfies this, as does anything else exposing Random(n).
type randomSource interface {
	Random(n int) ([]byte, error)
}

// EncodeSlotPayload wraps data in the short plausibility tag every slot
// carries: an 8-byte truncated checksum, a 1-byte length, the data itself,
// and random padding out to slotSize. The tag lets ReadSlot tell a real
// payload from random noise without ever touching a magic byte or version
// marker.
func EncodeSlotPayload(data []byte, slotSize int, rnd randomSource) ([]byte, error) {
	if len(data) > 0xFF {
		return nil, fmt.Errorf("keylocker: slot payload of %d bytes exceeds the 255-byte length field", len(data))
	}
	if slotHeaderLen+len(data) > slotSize {
		return nil, fmt.Errorf("keylocker: slot payload of %d bytes doesn't fit a %d-byte slot", len(data), slotSize)
	}
	sum := sha256.Sum256(data)
	buf := make([]byte, 0, slotSize)
	buf = append(buf, sum[:slotTagLen]...)
	buf = append(buf, byte(len(data)))
	buf = append(buf, data...)

	padLen := slotSize - len(buf)
	if padLen > 0 {
		pad, err := rnd.Random(padLen)
		if err != nil {
			return nil, fmt.Errorf("keylocker: padding slot payload: %w", err)
		}
		buf = append(buf, pad...)
	}
	return buf, nil
}

// DecodeSlotPayload reverses EncodeSlotPayload, reporting ok=false for
// anything that isn't a checksum-consistent payload — the expected outcome
// for a slot holding an unrelated entry, a decoy, or plain noise.
func DecodeSlotPayload(buf []byte) (data []byte, ok bool) {
	if len(buf) < slotHeaderLen {
		return nil, false
	}
	tag := buf[:slotTagLen]
	length := int(buf[slotTagLen])
	if slotHeaderLen+length > len(buf) {
		return nil, false
	}
	payload := buf[slotHeaderLen : slotHeaderLen+length]
	sum := sha256.Sum256(payload)
	if !bytes.Equal(tag, sum[:slotTagLen]) {
		return nil, false
	}
	out := make([]byte, length)
	copy(out, payload)
	return out, true
}

// WriteSlot encrypts an already-tagged, slot-sized payload with a
// streaming cipher (no authentication tag, so ciphertext length equals
// plaintext length) and writes it at offset.
func WriteSlot(r region.Region, offset int64, key, nonce, taggedPayload []byte) error {
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return fmt.Errorf("keylocker: building slot cipher: %w", err)
	}
	ciphertext := make([]byte, len(taggedPayload))
	stream.XORKeyStream(ciphertext, taggedPayload)
	return r.Write(offset, ciphertext)
}

// ReadSlot reads slotSize bytes at offset and decrypts them with the
// given key and nonce, returning the raw (still tagged) bytes for the
// caller to pass to DecodeSlotPayload.
func ReadSlot(r region.Region, offset int64, slotSize int, key, nonce []byte) ([]byte, error) {
	ciphertext, err := r.Read(offset, slotSize)
	if err != nil {
		return nil, err
	}
	stream, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, fmt.Errorf("keylocker: building slot cipher: %w", err)
	}
	plaintext := make([]byte, len(ciphertext))
	stream.XORKeyStream(plaintext, ciphertext)
	return plaintext, nil
}
