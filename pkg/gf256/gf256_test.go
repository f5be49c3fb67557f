package gf256

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulInvIdentity(t *testing.T) {
	for a := 1; a < 256; a++ {
		inv := Inv(byte(a))
		assert.Equal(t, byte(1), Mul(byte(a), inv), "a=%d", a)
	}
}

func TestInterpolateRecoversSecret(t *testing.T) {
	secret := byte(0x42)
	coeffs := []byte{0x07, 0x99, 0x01}
	xs := []byte{1, 2, 3, 4, 5}
	ys := make([]byte, len(xs))
	for i, x := range xs {
		ys[i] = EvalPoly(secret, coeffs, x)
	}

	// Any subset of size len(coeffs)+1 must recover the secret.
	got := InterpolateAtZero(xs[:len(coeffs)+1], ys[:len(coeffs)+1])
	assert.Equal(t, secret, got)

	got2 := InterpolateAtZero(xs[1:], ys[1:])
	assert.Equal(t, secret, got2)
}

func TestDivByItself(t *testing.T) {
	for a := 1; a < 256; a++ {
		assert.Equal(t, byte(1), Div(byte(a), byte(a)))
	}
}
