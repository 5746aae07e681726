// Package bundle assembles the per-language GameData payload and injects
// it into the static HTML template (spec.md §4.7), plus writes the
// operator-facing build manifest this module supplements on top of the
// client-facing bundle.
package bundle

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/youtube/vitess/go/ioutil2"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
)

// placeholder is the exact template marker spec.md §4.7 requires; only the
// "{}" inside it is replaced.
const placeholder = `<script id="game-data" type="application/json">{}</script>`

// atomicFileMode matches the permission kryptco-kr's
// common/version/latest_version.go passes to ioutil2.WriteFileAtomic.
const atomicFileMode = 0700

// Level is one entry of GameData.levels.
type Level struct {
	// Key is LevelSalt-less (see internal/levelcrypto): the wrapped
	// LevelKey ciphertext ∥ tag, 32 bytes once decoded. The client
	// recovers the nonce it needs from the prefix of Data below, per the
	// deliberate iv reuse documented in internal/levelcrypto.
	Key []byte `json:"key"`
	// Data is LevelSalt ∥ ciphertext ∥ tag: the sealed LevelSecret.
	Data []byte `json:"data"`
	// Hints holds this level's hint strings: the first three entries are
	// plaintext, the rest are base64 AES-GCM ciphertext.
	Hints []string `json:"hints"`
	// PublicKey is the level's SPKI-encoded ECDSA public key, unencrypted
	// (needed by the client before any level is solved, to verify score
	// submissions).
	PublicKey []byte `json:"publicKey"`
}

// GameData is one language's complete client-facing payload (spec.md §3).
type GameData struct {
	Levels          []Level  `json:"levels"`
	HintThresholds  []int    `json:"hintThresholds"`
	HintSalt        []byte   `json:"hintSalt"`
	ThumbnailHeader []byte   `json:"thumbnailHeader"`
	UnlockedLevels  int      `json:"unlockedLevels"`
}

// Manifest is the operator-facing summary of a build invocation, written
// alongside the client bundle as build-manifest.json. It is never read by
// the client runtime.
type Manifest struct {
	BuildID               string   `json:"buildID"`
	Languages             []string `json:"languages"`
	LevelCount            int      `json:"levelCount"`
	ThumbnailHeaderLength int      `json:"thumbnailHeaderLength"`
	GeneratedAt           string   `json:"generatedAt"`
}

// Inject replaces the unique game-data placeholder in template with
// gameDataJSON, returning the finished HTML. It is an ErrTemplate for the
// placeholder to be absent or to occur more than once (spec.md §7).
func Inject(template []byte, gameDataJSON []byte) ([]byte, error) {
	count := bytes.Count(template, []byte(placeholder))
	if count == 0 {
		return nil, bgerrors.New(bgerrors.ErrTemplate, "game-data placeholder not found in template")
	}
	if count > 1 {
		return nil, bgerrors.New(bgerrors.ErrTemplate, "game-data placeholder is not unique in template")
	}
	replacement := `<script id="game-data" type="application/json">` + string(gameDataJSON) + `</script>`
	return bytes.Replace(template, []byte(placeholder), []byte(replacement), 1), nil
}

// WriteLanguageBundle atomically writes html to <outDir>/index-<lang>.html.
func WriteLanguageBundle(outDir, lang string, html []byte) error {
	safeLang, err := sanitizeLang(lang)
	if err != nil {
		return err
	}
	path := filepath.Join(outDir, fmt.Sprintf("index-%s.html", safeLang))
	if err := ioutil2.WriteFileAtomic(path, html, atomicFileMode); err != nil {
		return bgerrors.Wrap(bgerrors.ErrTemplate, fmt.Sprintf("writing %s", path), err)
	}
	return nil
}

// WriteManifest atomically writes manifestJSON as build-manifest.json in outDir.
func WriteManifest(outDir string, manifestJSON []byte) error {
	path := filepath.Join(outDir, "build-manifest.json")
	if err := ioutil2.WriteFileAtomic(path, manifestJSON, atomicFileMode); err != nil {
		return fmt.Errorf("writing build manifest: %w", err)
	}
	return nil
}

// TemplatePath returns the expected input template path for lang, per
// spec.md §6 ("base-html/index-<lang>.html").
func TemplatePath(root, lang string) (string, error) {
	safeLang, err := sanitizeLang(lang)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, "base-html", fmt.Sprintf("index-%s.html", safeLang)), nil
}

// sanitizeLang guards against a language code escaping the output
// directory via a path separator; GlobalConfig.Languages is operator
// controlled but filenames derived from it still shouldn't traverse.
func sanitizeLang(lang string) (string, error) {
	if strings.ContainsAny(lang, `/\`) || lang == "." || lang == ".." {
		return "", fmt.Errorf("bundle: invalid language code %q", lang)
	}
	return lang, nil
}
