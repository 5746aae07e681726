// Package keys loads the precomputed ECDSA P-256 verification key pairs
// (spec.md §4.4) and re-exports each private key as the canonical 206-byte
// JWK byte layout the client decryptor expects.
//
// No JOSE/JWK library appears anywhere in the retrieved example pack, so
// this is hand-rolled on top of crypto/x509 and crypto/ecdsa: a literal Go
// struct with json.Marshal (which preserves declared field order) is the
// simplest way to guarantee the exact {crv,d,ext,key_ops,kty,x,y} field
// order and fixed-width base64url encoding the 206-byte contract depends on.
package keys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
)

// jwkKeyByteLength is the exact serialized size spec.md I2 requires.
const jwkKeyByteLength = 206

// coordByteLength is the fixed-width encoding of a P-256 field element.
const coordByteLength = 32

// Record is one base64-encoded {publicKey, privateKey} pair as read from
// data/data-keys.json.
type Record struct {
	PublicKey  string `json:"publicKey"`
	PrivateKey string `json:"privateKey"`
}

// VerificationKey is one level's signing key material.
type VerificationKey struct {
	// PublicKeySPKI is the raw SPKI DER bytes, emitted as-is in the bundle.
	PublicKeySPKI []byte
	// PrivateKeyJWK is the canonical 206-byte JWK serialization of the
	// private key, embedded (encrypted) inside the level secret.
	PrivateKeyJWK []byte
}

// jwkPrivateKey's field order is load-bearing: json.Marshal serializes
// struct fields in declaration order, and the client's decryptor expects
// exactly this order with no extra whitespace.
type jwkPrivateKey struct {
	Crv    string   `json:"crv"`
	D      string   `json:"d"`
	Ext    bool     `json:"ext"`
	KeyOps []string `json:"key_ops"`
	Kty    string   `json:"kty"`
	X      string   `json:"x"`
	Y      string   `json:"y"`
}

// LoadVerificationKeys decodes records and validates there are at least
// levelCount of them, returning the first levelCount as VerificationKeys.
func LoadVerificationKeys(records []Record, levelCount int) ([]VerificationKey, error) {
	if len(records) < levelCount {
		return nil, bgerrors.New(bgerrors.ErrMissingKey,
			fmt.Sprintf("need %d verification keys, found %d", levelCount, len(records)))
	}
	out := make([]VerificationKey, levelCount)
	for i := 0; i < levelCount; i++ {
		vk, err := decodeRecord(records[i])
		if err != nil {
			return nil, bgerrors.Wrap(bgerrors.ErrMissingKey, fmt.Sprintf("level %d", i), err)
		}
		out[i] = vk
	}
	return out, nil
}

func decodeRecord(rec Record) (VerificationKey, error) {
	pub, err := base64.StdEncoding.DecodeString(rec.PublicKey)
	if err != nil {
		return VerificationKey{}, fmt.Errorf("decoding public key: %w", err)
	}
	privDER, err := base64.StdEncoding.DecodeString(rec.PrivateKey)
	if err != nil {
		return VerificationKey{}, fmt.Errorf("decoding private key: %w", err)
	}
	priv, err := x509.ParsePKCS8PrivateKey(privDER)
	if err != nil {
		return VerificationKey{}, fmt.Errorf("parsing PKCS8 private key: %w", err)
	}
	ecPriv, ok := priv.(*ecdsa.PrivateKey)
	if !ok {
		return VerificationKey{}, fmt.Errorf("private key is not ECDSA")
	}
	if ecPriv.Curve != elliptic.P256() {
		return VerificationKey{}, fmt.Errorf("private key is not on curve P-256")
	}
	jwk, err := ExportJWK(ecPriv)
	if err != nil {
		return VerificationKey{}, err
	}
	return VerificationKey{PublicKeySPKI: pub, PrivateKeyJWK: jwk}, nil
}

// ExportJWK serializes priv's private scalar and public point as the
// canonical compact JSON JWK the client decryptor parses by fixed offset.
// Any result other than 206 bytes is a fatal KeyShapeError (spec.md I2):
// it signals a malformed key or a non-compatible serializer.
func ExportJWK(priv *ecdsa.PrivateKey) ([]byte, error) {
	d := fixedWidthBytes(priv.D.Bytes(), coordByteLength)
	x := fixedWidthBytes(priv.X.Bytes(), coordByteLength)
	y := fixedWidthBytes(priv.Y.Bytes(), coordByteLength)

	jwk := jwkPrivateKey{
		Crv:    "P-256",
		D:      base64.RawURLEncoding.EncodeToString(d),
		Ext:    true,
		KeyOps: []string{"sign"},
		Kty:    "EC",
		X:      base64.RawURLEncoding.EncodeToString(x),
		Y:      base64.RawURLEncoding.EncodeToString(y),
	}
	out, err := json.Marshal(jwk)
	if err != nil {
		return nil, fmt.Errorf("marshaling JWK: %w", err)
	}
	if len(out) != jwkKeyByteLength {
		return nil, bgerrors.New(bgerrors.ErrKeyShape,
			fmt.Sprintf("serialized private JWK is %d bytes, want %d", len(out), jwkKeyByteLength))
	}
	return out, nil
}

// fixedWidthBytes left-pads b with zeros to exactly n bytes, matching how
// a JS runtime zero-pads EC key components to the curve's coordinate size.
// A P-256 scalar never exceeds n bytes, so the truncating branch only
// guards against a malformed key rather than a real code path.
func fixedWidthBytes(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}
