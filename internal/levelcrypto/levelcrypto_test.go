package levelcrypto

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/imagegate/gatebuilder/internal/aesgcm"
	"github.com/imagegate/gatebuilder/internal/derive"
)

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x + y) % 256), A: 255})
		}
	}
	return img
}

func TestWrapLevelKeyRoundTrip(t *testing.T) {
	salt := derive.LevelSalt("game-secret", 3)
	levelKey := derive.LevelKey("game-secret", 3)
	encKey := EncryptionKey(bytes.Repeat([]byte{0xAB}, 18), salt)

	wrapped, err := WrapLevelKey(encKey, salt, levelKey)
	if err != nil {
		t.Fatal(err)
	}
	if len(wrapped) != 16+16 {
		t.Fatalf("wrapped level key length = %d, want 32", len(wrapped))
	}
	unwrapped, err := aesgcm.Open(encKey, salt[:], wrapped)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(unwrapped, levelKey[:]) {
		t.Fatal("unwrapping with the same encryption key and salt must recover the level key")
	}
}

func TestSealLevelSecretPrependsSalt(t *testing.T) {
	salt := derive.LevelSalt("game-secret", 0)
	levelKey := derive.LevelKey("game-secret", 0)
	plaintext := []byte("some level secret payload")

	data, err := SealLevelSecret(levelKey, salt, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data[:16], salt[:]) {
		t.Fatal("sealed level secret must begin with the raw LevelSalt")
	}
	if len(data) != 16+len(plaintext)+16 {
		t.Fatalf("sealed data length = %d, want %d", len(data), 16+len(plaintext)+16)
	}
}

func TestAssembleSecretOrderAndOffsets(t *testing.T) {
	jwk := bytes.Repeat([]byte{0x01}, 206)
	hintShares := [][]byte{bytes.Repeat([]byte{0x02}, 17), bytes.Repeat([]byte{0x03}, 17)}
	tail := []byte("jpegtail")

	secret := AssembleSecret(jwk, hintShares, tail)
	if !bytes.Equal(secret[:206], jwk) {
		t.Fatal("secret must start with the full JWK")
	}
	if !bytes.Equal(secret[206:223], hintShares[0]) {
		t.Fatal("first hint share must start immediately after the JWK")
	}
	if !bytes.Equal(secret[223:240], hintShares[1]) {
		t.Fatal("second hint share must follow the first")
	}
	if !bytes.Equal(secret[240:], tail) {
		t.Fatal("thumbnail tail must be the final segment")
	}
}

func TestThumbnailProducesDecodeableJPEG(t *testing.T) {
	img := gradientImage(200, 150)
	thumb, err := Thumbnail(img)
	if err != nil {
		t.Fatal(err)
	}
	if len(thumb) == 0 {
		t.Fatal("thumbnail must not be empty")
	}
	if thumb[0] != 0xFF || thumb[1] != 0xD8 {
		t.Fatal("thumbnail must be a JPEG (FF D8 SOI marker)")
	}
}

func TestThumbnailRejectsDegenerateImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 0, 0))
	if _, err := Thumbnail(img); err == nil {
		t.Fatal("expected error for zero-area source image")
	}
}

func TestThumbnailHeaderCommonPrefix(t *testing.T) {
	a := []byte("ABCDEFXXXX")
	b := []byte("ABCDEFYYYY")
	c := []byte("ABCDEFZZZZ")
	header := ThumbnailHeader([][]byte{a, b, c})
	if string(header) != "ABCDEF" {
		t.Fatalf("header = %q, want %q", header, "ABCDEF")
	}

	tailA, err := ThumbnailTail(a, header)
	if err != nil {
		t.Fatal(err)
	}
	if string(tailA) != "XXXX" {
		t.Fatalf("tail = %q, want %q", tailA, "XXXX")
	}
}

func TestThumbnailHeaderNoCommonPrefix(t *testing.T) {
	header := ThumbnailHeader([][]byte{[]byte("AAA"), []byte("BBB")})
	if header != nil {
		t.Fatalf("expected nil header for disjoint thumbnails, got %q", header)
	}
}

func TestThumbnailHeaderEmptyInput(t *testing.T) {
	if h := ThumbnailHeader(nil); h != nil {
		t.Fatalf("expected nil header for empty input, got %q", h)
	}
}

func TestThumbnailHeaderCappedLength(t *testing.T) {
	long := bytes.Repeat([]byte{0x7A}, thumbnailHeaderCap+500)
	a := append([]byte{}, long...)
	b := append([]byte{}, long...)
	header := ThumbnailHeader([][]byte{a, b})
	if len(header) != thumbnailHeaderCap {
		t.Fatalf("header length = %d, want cap %d", len(header), thumbnailHeaderCap)
	}
}
