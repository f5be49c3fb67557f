// Package gf256 implements arithmetic in GF(2^8) using the AES reduction
// polynomial x^8 + x^4 + x^3 + x + 1 (0x11B). It backs the Shamir secret
// sharing layer's byte-wise polynomial evaluation and Lagrange
// interpolation.
package gf256

// Add returns a+b in GF(2^8), which is XOR since the field has
// characteristic 2.
func Add(a, b byte) byte {
	return a ^ b
}

// Mul returns a*b in GF(2^8) using Russian-peasant multiplication with
// reduction by 0x1B whenever the top bit would otherwise overflow.
func Mul(a, b byte) byte {
	var result byte
	for b > 0 {
		if b&1 != 0 {
			result ^= a
		}
		hi := a & 0x80
		a <<= 1
		if hi != 0 {
			a ^= 0x1B
		}
		b >>= 1
	}
	return result
}

// Inv returns the multiplicative inverse of a in GF(2^8), computed as
// a^254 (every nonzero element has order dividing 255). Inv(0) returns 0;
// callers must never ask for the inverse of 0, since it is undefined.
func Inv(a byte) byte {
	if a == 0 {
		return 0
	}
	result := a
	for i := 0; i < 6; i++ {
		result = Mul(result, result)
		result = Mul(result, a)
	}
	return Mul(result, result)
}

// Div returns a/b in GF(2^8). b must be nonzero.
func Div(a, b byte) byte {
	return Mul(a, Inv(b))
}

// EvalPoly evaluates, at the field element x, the polynomial whose constant
// term is secret and whose remaining coefficients (lowest degree first) are
// coeffs, using Horner's method.
func EvalPoly(secret byte, coeffs []byte, x byte) byte {
	result := byte(0)
	for i := len(coeffs) - 1; i >= 0; i-- {
		result = Mul(result, x) ^ coeffs[i]
	}
	return Mul(result, x) ^ secret
}

// InterpolateAtZero performs Lagrange interpolation at x=0 given a set of
// (x, y) samples, returning the reconstructed constant term of the
// polynomial those samples lie on.
func InterpolateAtZero(xs, ys []byte) byte {
	result := byte(0)
	n := len(xs)
	for i := 0; i < n; i++ {
		basis := byte(1)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			num := xs[j]
			den := xs[i] ^ xs[j]
			basis = Mul(basis, Div(num, den))
		}
		result ^= Mul(ys[i], basis)
	}
	return result
}
