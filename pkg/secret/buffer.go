// Package secret provides scoped, zeroizing byte buffers for password
// material, derived keys, and plaintext shares.
//
// Secret material should never transit an immutable string, and every
// buffer holding it should be overwritten on every exit path, including
// error paths. Buffer is the mutable container that discipline is built
// around: New allocates it, Wipe (normally deferred immediately after
// New) overwrites it with zeros, and the platform-specific lock/unlock
// helpers pin it out of swap where the platform supports it.
package secret

// Buffer is a mutable byte container intended to hold secret material for
// a short, explicitly bounded lifetime.
type Buffer struct {
	data   []byte
	locked bool
}

// New allocates a Buffer of the given length and attempts to lock it out
// of swap. Locking failures are not fatal — not every platform or
// container grants mlock — but are reported so callers can decide whether
// to continue.
func New(n int) (*Buffer, error) {
	b := &Buffer{data: make([]byte, n)}
	err := lockMemory(b.data)
	b.locked = err == nil
	return b, err
}

// FromBytes wraps an existing slice as a Buffer, taking ownership of it.
// The caller must not retain any other reference to src.
func FromBytes(src []byte) *Buffer {
	return &Buffer{data: src}
}

// Bytes returns the live backing slice. The returned slice is only valid
// until the next Wipe call.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// Len returns the number of bytes in the buffer.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Wipe overwrites the buffer with zeros and releases any memory lock. It is
// safe to call multiple times and safe to call on a nil Buffer.
func (b *Buffer) Wipe() {
	if b == nil {
		return
	}
	for i := range b.data {
		b.data[i] = 0
	}
	if b.locked {
		_ = unlockMemory(b.data)
		b.locked = false
	}
}

// Wipe overwrites an arbitrary byte slice with zeros. Used for scratch
// buffers that never warranted a full Buffer (mlock included).
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
