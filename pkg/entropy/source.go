// Package entropy provides the cryptographically strong random byte
// source KeyLocker fills new KeyFiles and slot padding from.
//
// Grounded on original_source/sd/hash_mouse.py: a running hash state
// accumulates entropy from whatever is folded into it with Mix, and output
// bytes are drawn by keying a stream cipher from the current digest. An
// external pointer-motion or timestamp-jitter sampler is the out-of-scope
// collaborator that would call Mix; this package does not sample a
// pointer device itself.
package entropy

import (
	"crypto/rand"
	"crypto/sha512"
	"fmt"
	"hash"
	"sync"

	"golang.org/x/crypto/chacha20"
)

// Source is an entropy pool passed explicitly into operations rather than
// held as an ambient singleton, so each caller, tests included, holds its
// own. A Source always seeds from OS randomness and cannot be seeded
// deterministically; consumers that take a Random(n) interface instead of
// a *Source can be handed a deterministic stand-in.
type Source struct {
	mu sync.Mutex
	h  hash.Hash
}

// New creates a Source seeded from the operating system's secure
// randomness.
func New() (*Source, error) {
	s := &Source{h: sha512.New()}
	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("entropy: seeding from OS randomness: %w", err)
	}
	s.h.Write(seed)
	return s, nil
}

// Mix folds additional entropy — e.g. pointer-position deltas or timestamp
// jitter supplied by an external collaborator — into the pool's internal
// state. It never decreases the pool's uncertainty, only adds to it.
func (s *Source) Mix(extra []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.h.Write(extra)
}

// Random returns n bytes indistinguishable from uniform, regardless of how
// many times Mix has been called or with what. Each call keys a fresh
// ChaCha20 keystream from the pool's current digest and a freshly drawn OS
// nonce, then ratchets the pool forward so no two calls ever reuse
// keystream.
func (s *Source) Random(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	s.mu.Lock()
	digest := s.h.Sum(nil)
	s.mu.Unlock()
	defer wipe(digest)

	nonce := make([]byte, chacha20.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("entropy: reading nonce: %w", err)
	}

	cipher, err := chacha20.NewUnauthenticatedCipher(digest[:chacha20.KeySize], nonce)
	if err != nil {
		return nil, fmt.Errorf("entropy: constructing stream: %w", err)
	}
	out := make([]byte, n)
	cipher.XORKeyStream(out, out)

	// Ratchet the pool so Random is never called twice against the same
	// state, even with no intervening Mix.
	reseed := make([]byte, 64)
	if _, err := rand.Read(reseed); err != nil {
		return nil, fmt.Errorf("entropy: ratcheting pool: %w", err)
	}
	s.mu.Lock()
	s.h.Write(reseed)
	s.h.Write(nonce)
	s.mu.Unlock()
	wipe(reseed)

	return out, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
