// Package shamir implements byte-wise Shamir secret sharing over GF(2^8),
// using the wire format the client-side combiner expects: each share is
// [xCoordinate byte] ∥ [y-values, one per chunk of the padded secret,
// ordered so the first chunk of the secret lands in the LAST y-byte].
//
// The field arithmetic and the Horner/Lagrange routines follow the
// table-driven GF(2^8) approach in HashiCorp Vault's shamir package (see
// _examples/aquarelle-tech-darkmatter/shamir/shamir.go); the share framing
// itself — bit-packed leading-1 prefix, fixed per-level x-coordinates,
// chunk-reversed y-bytes — is spec-defined and has no precedent in the pack.
package shamir

import (
	"fmt"
	"io"

	"github.com/imagegate/gatebuilder/internal/gf256"
)

// Share is one party's fragment of a split secret.
type Share []byte

// XCoordinate returns the share's x coordinate (1..n).
func (s Share) XCoordinate() uint8 {
	return s[0]
}

// YBytes returns the share's y-values with the x-coordinate byte stripped.
// Callers that already know a share's x coordinate by context (levelcrypto
// embeds one share per level, and the level index fixes x) can store just
// this, and re-attach XCoordinate when reassembling a Share for Combine.
func (s Share) YBytes() []byte {
	return s[1:]
}

// NewShare re-attaches an x coordinate to bytes previously returned by
// YBytes, producing a Share usable with Combine.
func NewShare(x uint8, yBytes []byte) Share {
	s := make(Share, 1+len(yBytes))
	s[0] = x
	copy(s[1:], yBytes)
	return s
}

func validateParams(n, k int) error {
	if n < 2 {
		return fmt.Errorf("shamir: n must be at least 2, got %d", n)
	}
	if n > 255 {
		return fmt.Errorf("shamir: n must not exceed 255, got %d", n)
	}
	if k < 2 {
		return fmt.Errorf("shamir: threshold must be at least 2, got %d", k)
	}
	if k > 255 {
		return fmt.Errorf("shamir: threshold must not exceed 255, got %d", k)
	}
	if k > n {
		return fmt.Errorf("shamir: threshold %d cannot exceed n %d", k, n)
	}
	return nil
}

// Split divides secret into n shares, k of which are required to
// reconstruct it. coeffSource supplies the random (k-1) coefficients per
// byte-chunk of the padded secret; callers pass a deterministic source
// (DeterministicSource) when the caller needs replayable output, or
// crypto/rand.Reader otherwise.
func Split(secret []byte, n, k int, coeffSource io.Reader) ([]Share, error) {
	if err := validateParams(n, k); err != nil {
		return nil, err
	}
	if len(secret) == 0 {
		return nil, fmt.Errorf("shamir: cannot split an empty secret")
	}

	padded := prependLeadingBit(secret)
	numChunks := len(padded)

	shares := make([]Share, n)
	for i := range shares {
		shares[i] = make(Share, 1+numChunks)
		shares[i][0] = byte(i + 1)
	}

	coeffs := make([]byte, k)
	for c := 0; c < numChunks; c++ {
		coeffs[0] = padded[c]
		if k > 1 {
			if _, err := io.ReadFull(coeffSource, coeffs[1:]); err != nil {
				return nil, fmt.Errorf("shamir: drawing coefficients: %w", err)
			}
		}
		// Chunk c lands in y-byte position (numChunks-1-c): chunk 0 is the
		// least-significant (last) y-byte once all chunks are packed.
		yPos := numChunks - 1 - c
		for levelIdx := 0; levelIdx < n; levelIdx++ {
			x := uint8(levelIdx + 1)
			shares[levelIdx][1+yPos] = evaluatePolynomial(coeffs, x)
		}
	}
	return shares, nil
}

// Combine reconstructs the original secret from at least threshold shares.
// It returns an error when fewer than threshold shares (or fewer than two)
// are supplied, when two shares have the same x coordinate, or when the
// shares differ in length; it does not check that the shares came from the
// same Split call.
func Combine(shares []Share, threshold int) ([]byte, error) {
	if len(shares) < 2 {
		return nil, fmt.Errorf("shamir: need at least 2 shares to combine, got %d", len(shares))
	}
	if len(shares) < threshold {
		return nil, fmt.Errorf("shamir: need at least %d shares, got %d", threshold, len(shares))
	}
	shareLen := len(shares[0])
	if shareLen < 2 {
		return nil, fmt.Errorf("shamir: shares must be at least 2 bytes")
	}
	xs := make([]uint8, len(shares))
	seen := make(map[uint8]bool, len(shares))
	for i, s := range shares {
		if len(s) != shareLen {
			return nil, fmt.Errorf("shamir: all shares must be the same length")
		}
		x := s.XCoordinate()
		if seen[x] {
			return nil, fmt.Errorf("shamir: duplicate share with x=%d", x)
		}
		seen[x] = true
		xs[i] = x
	}

	numChunks := shareLen - 1
	padded := make([]byte, numChunks)
	ys := make([]uint8, len(shares))
	for c := 0; c < numChunks; c++ {
		yPos := numChunks - 1 - c
		for i, s := range shares {
			ys[i] = s[1+yPos]
		}
		padded[c] = interpolateAtZero(xs, ys)
	}
	return stripLeadingBit(padded)
}

// evaluatePolynomial evaluates the polynomial whose coefficients are
// coeffs[0..degree] (coeffs[0] is the intercept) at point x, using Horner's
// method in GF(2^8).
func evaluatePolynomial(coeffs []byte, x uint8) uint8 {
	if x == 0 {
		return coeffs[0]
	}
	degree := len(coeffs) - 1
	out := coeffs[degree]
	for i := degree - 1; i >= 0; i-- {
		out = gf256.Add(gf256.Mul(out, x), coeffs[i])
	}
	return out
}

// interpolateAtZero performs Lagrange interpolation of the polynomial
// passing through (xs[i], ys[i]) at x=0, recovering the intercept.
func interpolateAtZero(xs, ys []uint8) uint8 {
	var result uint8
	for i := range xs {
		basis := uint8(1)
		for j := range xs {
			if i == j {
				continue
			}
			num := xs[j] // add(0, xs[j]) == xs[j]
			denom := gf256.Add(xs[i], xs[j])
			basis = gf256.Mul(basis, gf256.Div(num, denom))
		}
		result = gf256.Add(result, gf256.Mul(ys[i], basis))
	}
	return result
}

// prependLeadingBit prepends a single set bit to the MSB-first bitstream of
// secret and right-pads with zero bits to the next byte boundary. This
// preserves leading zero bytes of secret across a Split/Combine round trip
// (spec.md §4.2, I1/P2/S3): without it, a secret with a leading 0x00 byte
// would be indistinguishable from a shorter secret after reconstruction.
func prependLeadingBit(secret []byte) []byte {
	out := make([]byte, len(secret)+1)
	var carry byte = 0x80
	for i, b := range secret {
		out[i] = carry | (b >> 1)
		carry = b << 7
	}
	out[len(secret)] = carry
	return out
}

// stripLeadingBit is the inverse of prependLeadingBit: it drops the leading
// set bit and the trailing zero padding, recovering the original secret.
func stripLeadingBit(padded []byte) ([]byte, error) {
	if len(padded) == 0 || padded[0]&0x80 == 0 {
		return nil, fmt.Errorf("shamir: reconstructed value is missing its leading marker bit")
	}
	out := make([]byte, len(padded)-1)
	for i := range out {
		out[i] = (padded[i] << 1) | (padded[i+1] >> 7)
	}
	return out, nil
}
