package keylocker

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/hkdf"

	"github.com/SurpriseDog/KeyLocker/pkg/secret"
)

// Argon2Cost holds the memory-hard KDF's tuning parameters. Defaults are
// chosen so a single derivation takes at least half a second and touches
// several hundred MiB, making offline slot-position guessing expensive.
// Grounded on absfs-encryptfs/key_provider.go's Argon2idParams and
// Chehabb2003…/internal/crypto/kdf_argon2id.go's KDFParams.
type Argon2Cost struct {
	Time    uint32
	MemKiB  uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Cost targets roughly 0.5-1s and at least 256MiB on a
// contemporary CPU: 1GiB of memory, 2 passes, 4 lanes.
func DefaultArgon2Cost() Argon2Cost {
	return Argon2Cost{Time: 2, MemKiB: 1 << 20, Threads: 4, KeyLen: 32}
}

// InteractiveArgon2Cost trades KDF hardness for responsiveness, the same
// dimension passlock.SetShortDelayIterations trades off for scrypt.
func InteractiveArgon2Cost() Argon2Cost {
	return Argon2Cost{Time: 1, MemKiB: 64 * 1024, Threads: 4, KeyLen: 32}
}

// DeriverOpt configures a Deriver, matching passlock.GeneratorOpt's
// functional-options shape.
type DeriverOpt = func(*Deriver) error

// WithArgon2Cost overrides the KDF cost parameters.
func WithArgon2Cost(cost Argon2Cost) DeriverOpt {
	return func(d *Deriver) error {
		if cost.KeyLen == 0 || cost.Time == 0 || cost.Threads == 0 {
			return fmt.Errorf("keylocker: invalid argon2 cost %+v", cost)
		}
		d.cost = cost
		return nil
	}
}

// Deriver implements the password-to-slot derivation pipeline: one
// memory-hard master key per (passphrase, device), expanded into distinct
// slot positions and independent per-slot keys and nonces.
type Deriver struct {
	cost Argon2Cost
}

// NewDeriver builds a Deriver with DefaultArgon2Cost unless overridden.
func NewDeriver(opts ...DeriverOpt) (*Deriver, error) {
	d := &Deriver{cost: DefaultArgon2Cost()}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// MasterKey computes dkey = kdf(P, H||T||h(D), cost), the entry's master
// key. The returned Buffer is owned by the caller, who must Wipe it once
// derived slot keys are no longer needed.
func (d *Deriver) MasterKey(pass Passphrase, headSalt, tailSalt []byte, device DeviceID) (*secret.Buffer, error) {
	if len(pass) == 0 {
		return nil, ErrEmptyPassphrase
	}
	devHash := sha256.Sum256([]byte(device))
	salt := make([]byte, 0, len(headSalt)+len(tailSalt)+len(devHash))
	salt = append(salt, headSalt...)
	salt = append(salt, tailSalt...)
	salt = append(salt, devHash[:]...)

	key := argon2.IDKey(pass, salt, d.cost.Time, d.cost.MemKiB, d.cost.Threads, d.cost.KeyLen)
	return secret.FromBytes(key), nil
}

// SlotIndices derives count distinct slot indices in [0, slotCount) from
// the master key: ss = h(dkey||"slots") expanded via an HKDF stream, read
// four bytes at a time modulo slotCount, rejecting duplicates.
func (d *Deriver) SlotIndices(masterKey []byte, count, slotCount int) ([]int, error) {
	if slotCount <= 0 || count <= 0 || count > slotCount {
		return nil, fmt.Errorf("keylocker: cannot pick %d distinct slots out of %d", count, slotCount)
	}
	seed := sha256.Sum256(append(append([]byte{}, masterKey...), []byte("slots")...))
	expander := hkdf.Expand(sha256.New, seed[:], nil)

	seen := make(map[int]bool, count)
	indices := make([]int, 0, count)
	word := make([]byte, 4)
	for len(indices) < count {
		if _, err := io.ReadFull(expander, word); err != nil {
			return nil, fmt.Errorf("keylocker: expanding slot-selection stream: %w", err)
		}
		idx := int(binary.BigEndian.Uint32(word) % uint32(slotCount))
		if seen[idx] {
			continue
		}
		seen[idx] = true
		indices = append(indices, idx)
	}
	return indices, nil
}

// SlotKey derives the per-slot encryption key sk_i = h(dkey||"slot"||i).
// The result is exactly chacha20.KeySize bytes.
func (d *Deriver) SlotKey(masterKey []byte, slotIdx int) []byte {
	return labeledHash(masterKey, "slot", slotIdx, chacha20.KeySize)
}

// SlotNonce derives the per-slot nonce sn_i = h(dkey||"nonce"||i). The
// result is exactly chacha20.NonceSize bytes.
func (d *Deriver) SlotNonce(masterKey []byte, slotIdx int) []byte {
	return labeledHash(masterKey, "nonce", slotIdx, chacha20.NonceSize)
}

// labeledHash computes sha256(masterKey || label || index) and truncates
// (or, if n > sha256.Size, expands via HKDF) to exactly n bytes.
func labeledHash(masterKey []byte, label string, index int, n int) []byte {
	buf := make([]byte, 0, len(masterKey)+len(label)+4)
	buf = append(buf, masterKey...)
	buf = append(buf, label...)
	idxBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(idxBytes, uint32(index))
	buf = append(buf, idxBytes...)
	sum := sha256.Sum256(buf)
	if n <= len(sum) {
		return sum[:n]
	}
	out := make([]byte, n)
	expander := hkdf.Expand(sha256.New, sum[:], []byte(label))
	io.ReadFull(expander, out) //nolint:errcheck // hkdf.Expand reader never errors short of a misconfigured hash
	return out
}
