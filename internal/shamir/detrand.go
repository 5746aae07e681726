package shamir

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha512"
	"io"
)

// DeterministicSource builds a reproducible CSPRNG keystream from a label
// derived off gameRandomSalt. It is an AES-CTR keystream under a
// secret-derived key, which is why it still counts as a cryptographically
// strong random source (spec.md §4.2) while remaining fully replayable
// (spec.md §8 P1) — a plain crypto/rand.Reader draw could not be replayed,
// and a non-cryptographic PRNG would not satisfy the CSPRNG requirement.
//
// label is typically "<gameRandomSalt>-shamir-<hintIndex>".
func DeterministicSource(label string) (io.Reader, error) {
	key := sha512.Sum512([]byte(label))
	block, err := aes.NewCipher(key[:32])
	if err != nil {
		return nil, err
	}
	iv := make([]byte, aes.BlockSize)
	return &ctrKeystream{stream: cipher.NewCTR(block, iv)}, nil
}

type ctrKeystream struct {
	stream cipher.Stream
}

func (k *ctrKeystream) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	k.stream.XORKeyStream(p, p)
	return len(p), nil
}
