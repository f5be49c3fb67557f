package keylocker

import (
	"fmt"

	"github.com/SurpriseDog/KeyLocker/pkg/gf256"
)

// Share is one Shamir share of an Entry's serialized bytes: the byte at
// x, and the polynomial evaluation at that x for every byte position of
// the secret. All shares of one entry carry the same Data length, equal
// to len(E), so the slot codec's own length field already captures
// 1+len(E) without a redundant length inside the share itself.
type Share struct {
	X    byte
	Data []byte
}

// Split breaks secret into n Shamir shares reconstructable from any t of
// them, generating one independent degree-(t-1) polynomial per byte
// position (byte-wise GF(2^8) sharing, grounded on
// other_examples/Skpow1234-Vaultpack__sss.go). X coordinates are drawn
// from rnd and are guaranteed nonzero and pairwise distinct, since x=0
// would leak that byte of the secret directly.
func Split(secret []byte, n, t int, rnd randomSource) ([]Share, error) {
	if t < 1 || n < t {
		return nil, ErrInvalidMode
	}
	xs, err := distinctNonzeroXs(n, rnd)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, n)
	for i, x := range xs {
		shares[i] = Share{X: x, Data: make([]byte, len(secret))}
	}

	coeffs := make([]byte, t-1)
	for pos, b := range secret {
		raw, err := rnd.Random(t - 1)
		if err != nil {
			return nil, fmt.Errorf("keylocker: drawing shamir coefficients: %w", err)
		}
		copy(coeffs, raw)
		for i, x := range xs {
			shares[i].Data[pos] = gf256.EvalPoly(b, coeffs, x)
		}
	}
	return shares, nil
}

// distinctNonzeroXs draws n distinct, nonzero byte values from rnd for use
// as Shamir x-coordinates.
func distinctNonzeroXs(n int, rnd randomSource) ([]byte, error) {
	if n > 255 {
		return nil, fmt.Errorf("keylocker: cannot split into more than 255 shares")
	}
	seen := make(map[byte]bool, n)
	xs := make([]byte, 0, n)
	for len(xs) < n {
		buf, err := rnd.Random(1)
		if err != nil {
			return nil, fmt.Errorf("keylocker: drawing shamir x-coordinate: %w", err)
		}
		x := buf[0]
		if x == 0 || seen[x] {
			continue
		}
		seen[x] = true
		xs = append(xs, x)
	}
	return xs, nil
}

// Combine attempts to reconstruct a secret from a capped set of
// tag-plausible candidate shares. It tries subsets in ascending size
// starting at threshold, within each size in a fixed lexicographic
// order — never shuffled — so the same set of shares always walks the
// same subsets. The search stops at the first subset that validates, so
// its running time depends on where that subset falls in the order; the
// worst case is every subset of the offered shares. validate reports
// whether a reconstructed byte slice is the real secret (the Entry
// checksum, in practice); the first subset whose interpolation satisfies
// it wins.
//
// Combine returns errInsufficientShares if fewer than threshold shares
// were even offered, or errUnrecoverableEntry if every subset up to the
// full share set failed validation.
func Combine(shares []Share, threshold int, validate func([]byte) bool) ([]byte, error) {
	if len(shares) < threshold {
		return nil, errInsufficientShares
	}
	secretLen := 0
	for _, s := range shares {
		if len(s.Data) > secretLen {
			secretLen = len(s.Data)
		}
	}

	for size := threshold; size <= len(shares); size++ {
		result, found := tryCombinations(shares, size, secretLen, validate)
		if found {
			return result, nil
		}
	}
	return nil, errUnrecoverableEntry
}

// tryCombinations walks every size-sized subset of shares in ascending
// lexicographic index order, interpolating and validating each.
func tryCombinations(shares []Share, size, secretLen int, validate func([]byte) bool) ([]byte, bool) {
	n := len(shares)
	idx := make([]int, size)
	for i := range idx {
		idx[i] = i
	}

	xs := make([]byte, size)
	ys := make([]byte, size)
	for {
		candidate := make([]byte, secretLen)
		for pos := 0; pos < secretLen; pos++ {
			for i, si := range idx {
				xs[i] = shares[si].X
				ys[i] = shares[si].Data[pos]
			}
			candidate[pos] = gf256.InterpolateAtZero(xs, ys)
		}
		if validate(candidate) {
			return candidate, true
		}
		if !nextCombination(idx, n) {
			return nil, false
		}
	}
}

// nextCombination advances idx to the next size-length combination of
// [0, n) in lexicographic order, returning false once combinations are
// exhausted.
func nextCombination(idx []int, n int) bool {
	size := len(idx)
	i := size - 1
	for i >= 0 && idx[i] == n-size+i {
		i--
	}
	if i < 0 {
		return false
	}
	idx[i]++
	for j := i + 1; j < size; j++ {
		idx[j] = idx[j-1] + 1
	}
	return true
}
