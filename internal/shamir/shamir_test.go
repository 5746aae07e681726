package shamir

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestSplitCombineRoundTrip(t *testing.T) {
	secret := []byte{0x42}
	shares, err := Split(secret, 5, 3, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Combine(shares[:3], 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("Combine = %x, want %x", got, secret)
	}
	// Any 3 of 5 shares must work, in any subset.
	got, err = Combine([]Share{shares[0], shares[2], shares[4]}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("Combine(subset) = %x, want %x", got, secret)
	}
}

func TestLeadingZeroPreservation(t *testing.T) {
	secret := []byte{0x00, 0x00, 0x01}
	shares, err := Split(secret, 5, 3, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Combine(shares[1:4], 3)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("Combine = %x, want %x (leading zeros must survive)", got, secret)
	}
}

func TestZeroByteSecret(t *testing.T) {
	secret := []byte{0x00}
	shares, err := Split(secret, 3, 2, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Combine(shares[:2], 2)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, secret) {
		t.Fatalf("Combine = %x, want %x", got, secret)
	}
}

func TestDeterministicSourceReplayable(t *testing.T) {
	secret := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	src1, err := DeterministicSource("salt-shamir-0")
	if err != nil {
		t.Fatal(err)
	}
	shares1, err := Split(secret, 4, 2, src1)
	if err != nil {
		t.Fatal(err)
	}
	src2, err := DeterministicSource("salt-shamir-0")
	if err != nil {
		t.Fatal(err)
	}
	shares2, err := Split(secret, 4, 2, src2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range shares1 {
		if !bytes.Equal(shares1[i], shares2[i]) {
			t.Fatalf("share %d differs across runs with the same label: %x vs %x", i, shares1[i], shares2[i])
		}
	}
}

func TestInvalidParams(t *testing.T) {
	if _, err := Split([]byte{1}, 1, 2, rand.Reader); err == nil {
		t.Fatal("expected error for n < 2")
	}
	if _, err := Split([]byte{1}, 5, 1, rand.Reader); err == nil {
		t.Fatal("expected error for k < 2")
	}
	if _, err := Split([]byte{1}, 5, 6, rand.Reader); err == nil {
		t.Fatal("expected error for k > n")
	}
	if _, err := Split([]byte{1}, 256, 2, rand.Reader); err == nil {
		t.Fatal("expected error for n > 255")
	}
	if _, err := Split([]byte{}, 5, 2, rand.Reader); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestCombineRejectsTooFewShares(t *testing.T) {
	shares, err := Split([]byte{1, 2, 3}, 5, 4, rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Combine(shares[:2], 4); err == nil {
		t.Fatal("expected error when fewer than threshold shares are supplied")
	}
}
