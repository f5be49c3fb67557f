package keylocker

import (
	"bytes"
	"compress/flate"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"
)

// entryChecksumLen is the width of the checksum prefixed to every
// compressed entry, used by Shamir reconstruction to recognize which
// candidate subset interpolated the real secret rather than noise.
const entryChecksumLen = 4

// Entry is the payload KeyFile.Put writes and KeyFile.Get recovers: the
// location and cipher key of whatever is actually being protected,
// together with an optional free-text note.
type Entry struct {
	// Device names the drive or partition the protected ciphertext lives
	// on. Usually identical to the KeyFile's own device id, but kept
	// explicit so one KeyFile can vault keys for other devices too.
	Device string
	// Start and Length describe the byte range on Device that the
	// protected ciphertext occupies.
	Start, Length uint32
	// Key is the cipher key (or key material) being protected.
	Key []byte
	// Text is an optional free-text note, e.g. a reminder of what Key
	// opens.
	Text string
}

// Marshal serializes e into a compressed, checksummed byte slice suitable
// for splitting into Shamir shares or duplicating as plain copies.
func (e Entry) Marshal() ([]byte, error) {
	if len(e.Device) > 0xFF {
		return nil, fmt.Errorf("keylocker: device id of %d bytes exceeds the 255-byte field", len(e.Device))
	}
	if len(e.Key) > 0xFF {
		return nil, fmt.Errorf("keylocker: entry key of %d bytes exceeds the 255-byte field", len(e.Key))
	}
	if len(e.Text) > 0xFFFF {
		return nil, fmt.Errorf("keylocker: entry text of %d bytes exceeds the 65535-byte field", len(e.Text))
	}

	var raw bytes.Buffer
	raw.WriteByte(byte(len(e.Device)))
	raw.WriteString(e.Device)
	writeUint32(&raw, e.Start)
	writeUint32(&raw, e.Length)
	raw.WriteByte(byte(len(e.Key)))
	raw.Write(e.Key)
	writeUint16(&raw, uint16(len(e.Text)))
	raw.WriteString(e.Text)

	compressed, err := deflate(raw.Bytes())
	if err != nil {
		return nil, fmt.Errorf("keylocker: compressing entry: %w", err)
	}
	sum := sha256.Sum256(compressed)
	out := make([]byte, 0, entryChecksumLen+len(compressed))
	out = append(out, sum[:entryChecksumLen]...)
	out = append(out, compressed...)
	return out, nil
}

// Unmarshal is the inverse of Marshal. It fails with errCorruptEntry if
// the checksum doesn't match — the signal Combine's validate
// callback uses to reject a wrongly-assembled candidate — and never
// distinguishes a checksum failure from a decompression failure, both of
// which mean "this is not really an entry".
func Unmarshal(b []byte) (Entry, error) {
	if len(b) < entryChecksumLen {
		return Entry{}, errCorruptEntry
	}
	wantSum := b[:entryChecksumLen]
	compressed := b[entryChecksumLen:]
	gotSum := sha256.Sum256(compressed)
	if !bytes.Equal(wantSum, gotSum[:entryChecksumLen]) {
		return Entry{}, errCorruptEntry
	}

	raw, err := inflate(compressed)
	if err != nil {
		return Entry{}, errCorruptEntry
	}
	return decodeEntryFields(raw)
}

func decodeEntryFields(raw []byte) (Entry, error) {
	r := bytes.NewReader(raw)
	var e Entry

	devLen, err := r.ReadByte()
	if err != nil {
		return Entry{}, errCorruptEntry
	}
	dev := make([]byte, devLen)
	if _, err := io.ReadFull(r, dev); err != nil {
		return Entry{}, errCorruptEntry
	}
	e.Device = string(dev)

	if e.Start, err = readUint32(r); err != nil {
		return Entry{}, errCorruptEntry
	}
	if e.Length, err = readUint32(r); err != nil {
		return Entry{}, errCorruptEntry
	}

	keyLen, err := r.ReadByte()
	if err != nil {
		return Entry{}, errCorruptEntry
	}
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return Entry{}, errCorruptEntry
	}
	e.Key = key

	textLen, err := readUint16(r)
	if err != nil {
		return Entry{}, errCorruptEntry
	}
	text := make([]byte, textLen)
	if _, err := io.ReadFull(r, text); err != nil {
		return Entry{}, errCorruptEntry
	}
	e.Text = string(text)

	return e, nil
}

// deflate and inflate use raw DEFLATE rather than gzip: gzip's ~18-byte
// header and footer would swallow most of a 54-byte slot's capacity
// before any actual entry bytes fit.
func deflate(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflate(compressed []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()
	return io.ReadAll(r)
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeUint16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readUint16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}
