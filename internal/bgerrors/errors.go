// Package bgerrors defines the fatal error kinds gatebuilder can raise
// (spec.md §7), following the teacher's sentinel-error style
// (common/util/error.go: package-level `var Err... = fmt.Errorf(...)`).
// Every build failure is one of these, wrapped with call-site context via
// %w so callers can still test with errors.Is.
package bgerrors

import "fmt"

var (
	// ErrConfig covers missing or malformed config files.
	ErrConfig = fmt.Errorf("config error")
	// ErrMissingKey covers a verification-keys array shorter than levelCount.
	ErrMissingKey = fmt.Errorf("missing verification key")
	// ErrKeyShape covers a serialized private JWK that is not exactly 206 bytes.
	ErrKeyShape = fmt.Errorf("key shape error")
	// ErrImage covers an image that cannot be decoded or has degenerate dimensions.
	ErrImage = fmt.Errorf("image error")
	// ErrCrypto covers any primitive failure; this indicates an environment bug.
	ErrCrypto = fmt.Errorf("crypto error")
	// ErrFetch covers a CSV fetch failure or non-OK HTTP status.
	ErrFetch = fmt.Errorf("fetch error")
	// ErrCSVShape covers a required level's row missing or with fewer than 3 hint fields.
	ErrCSVShape = fmt.Errorf("csv shape error")
	// ErrTemplate covers an absent or non-unique HTML placeholder.
	ErrTemplate = fmt.Errorf("template error")
)

// Wrap annotates err with msg and marks it as stemming from kind, so both
// errors.Is(wrapped, kind) and errors.Is(wrapped, err) hold.
func Wrap(kind error, msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, kind, err)
}

// New builds a fresh fatal error of the given kind with no underlying cause.
func New(kind error, msg string) error {
	return fmt.Errorf("%s: %w", msg, kind)
}
