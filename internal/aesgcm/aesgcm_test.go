package aesgcm

import (
	"bytes"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x11}, 16)
	iv := bytes.Repeat([]byte{0x22}, 16)
	plaintext := []byte("level secret payload")

	ct, err := Seal(key, iv, plaintext)
	if err != nil {
		t.Fatal(err)
	}
	if len(ct) != len(plaintext)+16 {
		t.Fatalf("ciphertext length = %d, want %d (plaintext + 16-byte tag)", len(ct), len(plaintext)+16)
	}
	got, err := Open(key, iv, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Fatalf("Open = %q, want %q", got, plaintext)
	}
}

func TestOpenRejectsTamperedCiphertext(t *testing.T) {
	key := bytes.Repeat([]byte{0x33}, 16)
	iv := bytes.Repeat([]byte{0x44}, 32)
	ct, err := Seal(key, iv, []byte("hint text"))
	if err != nil {
		t.Fatal(err)
	}
	ct[0] ^= 0xFF
	if _, err := Open(key, iv, ct); err == nil {
		t.Fatal("expected authentication failure on tampered ciphertext")
	}
}

func TestDistinctNonceSizesSupported(t *testing.T) {
	key := bytes.Repeat([]byte{0x55}, 16)
	for _, n := range []int{12, 16, 32} {
		iv := bytes.Repeat([]byte{0x66}, n)
		ct, err := Seal(key, iv, []byte("x"))
		if err != nil {
			t.Fatalf("nonce size %d: %v", n, err)
		}
		if _, err := Open(key, iv, ct); err != nil {
			t.Fatalf("nonce size %d: %v", n, err)
		}
	}
}
