// Package levelcrypto implements the per-level encryption pipeline
// (spec.md §4.5): deriving each level's encryption key from its perceptual
// image hash, wrapping the level key, shrinking and desaturating the level
// thumbnail, and assembling + sealing the level secret blob.
package levelcrypto

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"

	"golang.org/x/crypto/pbkdf2"
	xdraw "golang.org/x/image/draw"

	"github.com/imagegate/gatebuilder/internal/aesgcm"
	"github.com/imagegate/gatebuilder/internal/bgerrors"
	"github.com/imagegate/gatebuilder/internal/derive"
)

const (
	pbkdf2Iterations = 10000
	encryptionKeyLen = 16
	thumbnailSide    = 64
	thumbnailQuality = 50
	desaturateAmount = 0.25
	// thumbnailHeaderCap bounds how many leading bytes of every thumbnail
	// are allowed to be factored into the shared ThumbnailHeader (spec.md
	// §9, resolved Open Question: prefix length is capped, not unbounded).
	thumbnailHeaderCap = 1000
)

// EncryptionKey derives the PBKDF2 key used to wrap LevelKey[i] (spec.md
// §4.5 step 2): PBKDF2-HMAC-SHA1 over imageHash with LevelSalt[i] as salt.
func EncryptionKey(imageHash []byte, salt derive.Key16) []byte {
	return pbkdf2.Key(imageHash, salt[:], pbkdf2Iterations, encryptionKeyLen, sha1.New)
}

// WrapLevelKey seals LevelKey[i] under encryptionKey, using LevelSalt[i] as
// the GCM nonce (spec.md §4.5 step 3). The deliberate iv reuse with
// SealLevelSecret below is intentional: the keys differ even though the
// nonce does not.
func WrapLevelKey(encryptionKey []byte, salt derive.Key16, levelKey derive.Key16) ([]byte, error) {
	ct, err := aesgcm.Seal(encryptionKey, salt[:], levelKey[:])
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrCrypto, "wrapping level key", err)
	}
	return ct, nil
}

// SealLevelSecret encrypts plaintext (the assembled level secret, see
// AssembleSecret) under levelKey using salt as the nonce, and prepends salt
// to the result so the client can recover it without a side channel
// (spec.md §4.5 step 7: "Emit LevelSalt[i] ∥ ciphertext ∥ tag as data").
func SealLevelSecret(levelKey derive.Key16, salt derive.Key16, plaintext []byte) ([]byte, error) {
	ct, err := aesgcm.Seal(levelKey[:], salt[:], plaintext)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrCrypto, "sealing level secret", err)
	}
	out := make([]byte, 0, len(salt)+len(ct))
	out = append(out, salt[:]...)
	out = append(out, ct...)
	return out, nil
}

// AssembleSecret concatenates, in the fixed order spec.md I2/P5 requires,
// the level's privateKeyJWK, its hint shares (one per configured hint
// threshold, ordered by threshold index), and the thumbnail tail (the
// level's resized thumbnail with the shared ThumbnailHeader prefix
// stripped off).
func AssembleSecret(privateKeyJWK []byte, hintShareYBytes [][]byte, thumbnailTail []byte) []byte {
	n := len(privateKeyJWK) + len(thumbnailTail)
	for _, s := range hintShareYBytes {
		n += len(s)
	}
	out := make([]byte, 0, n)
	out = append(out, privateKeyJWK...)
	for _, s := range hintShareYBytes {
		out = append(out, s...)
	}
	out = append(out, thumbnailTail...)
	return out
}

// Thumbnail resizes src to a 64x64 JPEG at quality 50 with its saturation
// reduced by 25%, matching the scaled-down preview image embedded in every
// level secret.
func Thumbnail(src image.Image) ([]byte, error) {
	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, bgerrors.New(bgerrors.ErrImage, "thumbnail source image has zero area")
	}
	resized := image.NewRGBA(image.Rect(0, 0, thumbnailSide, thumbnailSide))
	xdraw.CatmullRom.Scale(resized, resized.Bounds(), src, bounds, draw.Over, nil)
	desaturate(resized, desaturateAmount)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrImage, "encoding thumbnail JPEG", err)
	}
	return buf.Bytes(), nil
}

// desaturate blends every pixel toward its luminance-weighted gray by
// amount (0..1), in place.
func desaturate(img *image.RGBA, amount float64) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			r8, g8, b8 := float64(r>>8), float64(g>>8), float64(bl>>8)
			gray := 0.299*r8 + 0.587*g8 + 0.114*b8
			nr := r8 + (gray-r8)*amount
			ng := g8 + (gray-g8)*amount
			nb := b8 + (gray-b8)*amount
			img.SetRGBA(x, y, color.RGBA{
				R: clamp8(nr), G: clamp8(ng), B: clamp8(nb), A: uint8(a >> 8),
			})
		}
	}
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// ThumbnailHeader returns the longest shared byte prefix across every
// level's thumbnail, capped at thumbnailHeaderCap. A JPEG's leading
// bytes are near-identical across images of the same dimensions and
// quality (APPn markers, quantization tables), so factoring this out
// trims every LevelSecret by the header's length (spec.md §9).
//
// An empty thumbnails slice, or thumbnails sharing no common prefix,
// yields a nil header: every level then embeds its thumbnail in full,
// which is still correct, just larger.
func ThumbnailHeader(thumbnails [][]byte) []byte {
	if len(thumbnails) == 0 {
		return nil
	}
	maxLen := thumbnailHeaderCap
	for _, t := range thumbnails {
		if len(t) < maxLen {
			maxLen = len(t)
		}
	}
	first := thumbnails[0]
	n := 0
	for ; n < maxLen; n++ {
		b := first[n]
		match := true
		for _, t := range thumbnails[1:] {
			if t[n] != b {
				match = false
				break
			}
		}
		if !match {
			break
		}
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, first[:n])
	return out
}

// ThumbnailTail strips header off thumbnail. header must be a prefix of
// thumbnail (guaranteed by construction, since ThumbnailHeader only ever
// returns a common prefix of the same set of thumbnails).
func ThumbnailTail(thumbnail, header []byte) ([]byte, error) {
	if len(header) > len(thumbnail) || !bytes.Equal(thumbnail[:len(header)], header) {
		return nil, fmt.Errorf("levelcrypto: thumbnail does not start with the shared header")
	}
	return thumbnail[len(header):], nil
}
