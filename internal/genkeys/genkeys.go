// Package genkeys implements the one-shot key generator mode (spec.md
// §4.8, `--generate-keys`): producing N fresh ECDSA P-256 key pairs and
// printing them as the JSON array data/data-keys.json expects, with no
// file writes of its own.
package genkeys

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/imagegate/gatebuilder/internal/keys"
)

// DefaultCount is how many key pairs `--generate-keys` with no explicit N
// produces.
const DefaultCount = 30

// Generate produces count fresh ECDSA P-256 key pairs, each serialized the
// same way data-keys.json stores them (SPKI public / PKCS8 private,
// base64). Every key is generated independently from crypto/rand: unlike
// the rest of the build, this mode is explicitly non-deterministic
// (spec.md §4.8), so a failed draw for one key does not abort the others
// — failures are collected with go-multierror and returned together once
// generation finishes.
func Generate(count int) ([]keys.Record, error) {
	if count <= 0 {
		count = DefaultCount
	}
	records := make([]keys.Record, 0, count)
	var errs *multierror.Error
	for i := 0; i < count; i++ {
		rec, err := generateOne()
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("key %d: %w", i, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errs.ErrorOrNil()
}

func generateOne() (keys.Record, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return keys.Record{}, fmt.Errorf("generating P-256 key: %w", err)
	}
	pubDER, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		return keys.Record{}, fmt.Errorf("marshaling SPKI public key: %w", err)
	}
	privDER, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return keys.Record{}, fmt.Errorf("marshaling PKCS8 private key: %w", err)
	}
	return keys.Record{
		PublicKey:  base64.StdEncoding.EncodeToString(pubDER),
		PrivateKey: base64.StdEncoding.EncodeToString(privDER),
	}, nil
}

// MarshalJSON serializes records the same compact way the rest of the
// build's JSON output is written, ready for the CLI to print to stdout.
func MarshalJSON(records []keys.Record) ([]byte, error) {
	out, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("marshaling generated keys: %w", err)
	}
	return out, nil
}
