package genkeys

import (
	"crypto/x509"
	"encoding/base64"
	"testing"

	"github.com/imagegate/gatebuilder/internal/keys"
)

func TestGenerateProducesRequestedCount(t *testing.T) {
	records, err := Generate(5)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 5 {
		t.Fatalf("got %d records, want 5", len(records))
	}
}

func TestGenerateDefaultsWhenCountNotPositive(t *testing.T) {
	records, err := Generate(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != DefaultCount {
		t.Fatalf("got %d records, want default %d", len(records), DefaultCount)
	}
}

func TestGenerateRecordsAreValidDistinctKeys(t *testing.T) {
	records, err := Generate(3)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[string]bool{}
	for i, rec := range records {
		privDER, err := base64.StdEncoding.DecodeString(rec.PrivateKey)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		if _, err := x509.ParsePKCS8PrivateKey(privDER); err != nil {
			t.Fatalf("record %d: not a valid PKCS8 key: %v", i, err)
		}
		if seen[rec.PrivateKey] {
			t.Fatalf("record %d: duplicate private key", i)
		}
		seen[rec.PrivateKey] = true
	}
}

func TestGeneratedRecordsLoadAsVerificationKeys(t *testing.T) {
	records, err := Generate(2)
	if err != nil {
		t.Fatal(err)
	}
	vks, err := keys.LoadVerificationKeys(records, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(vks) != 2 {
		t.Fatalf("got %d verification keys, want 2", len(vks))
	}
}

func TestMarshalJSONRoundTrips(t *testing.T) {
	records, err := Generate(1)
	if err != nil {
		t.Fatal(err)
	}
	out, err := MarshalJSON(records)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) == 0 {
		t.Fatal("expected non-empty JSON output")
	}
}
