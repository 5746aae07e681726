package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func makeRecord(t *testing.T) (Record, *ecdsa.PrivateKey) {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		t.Fatal(err)
	}
	return Record{
		PublicKey:  base64.StdEncoding.EncodeToString(pubDER),
		PrivateKey: base64.StdEncoding.EncodeToString(privDER),
	}, priv
}

func TestExportJWKIsExactly206Bytes(t *testing.T) {
	for i := 0; i < 20; i++ {
		priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			t.Fatal(err)
		}
		jwk, err := ExportJWK(priv)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		if len(jwk) != 206 {
			t.Fatalf("iteration %d: JWK length = %d, want 206", i, len(jwk))
		}
	}
}

func TestExportJWKFieldOrderAndContent(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	jwk, err := ExportJWK(priv)
	if err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Crv    string   `json:"crv"`
		D      string   `json:"d"`
		Ext    bool     `json:"ext"`
		KeyOps []string `json:"key_ops"`
		Kty    string   `json:"kty"`
		X      string   `json:"x"`
		Y      string   `json:"y"`
	}
	if err := json.Unmarshal(jwk, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Crv != "P-256" || decoded.Kty != "EC" || !decoded.Ext {
		t.Fatalf("unexpected JWK fields: %+v", decoded)
	}
	if len(decoded.KeyOps) != 1 || decoded.KeyOps[0] != "sign" {
		t.Fatalf("unexpected key_ops: %v", decoded.KeyOps)
	}
	wantPrefix := `{"crv":"P-256","d":"`
	if string(jwk[:len(wantPrefix)]) != wantPrefix {
		t.Fatalf("JWK does not start with canonical field order: %s", jwk)
	}
}

func TestLoadVerificationKeysRejectsShortList(t *testing.T) {
	rec, _ := makeRecord(t)
	if _, err := LoadVerificationKeys([]Record{rec}, 2); err == nil {
		t.Fatal("expected error when fewer records than levelCount")
	}
}

func TestLoadVerificationKeysRoundTrip(t *testing.T) {
	rec, priv := makeRecord(t)
	vks, err := LoadVerificationKeys([]Record{rec}, 1)
	if err != nil {
		t.Fatal(err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(vks[0].PublicKeySPKI) != string(pubDER) {
		t.Fatal("public key SPKI bytes must be passed through unmodified")
	}
	if len(vks[0].PrivateKeyJWK) != 206 {
		t.Fatalf("PrivateKeyJWK length = %d, want 206", len(vks[0].PrivateKeyJWK))
	}
}
