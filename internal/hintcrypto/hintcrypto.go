// Package hintcrypto implements the hint unlock pipeline (spec.md §4.6):
// splitting each hint-tier key across every level via Shamir sharing, and
// encrypting each language's hint text under that tier's key, with a
// per-(language, level) nonce built from the language and level salts.
package hintcrypto

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"github.com/imagegate/gatebuilder/internal/aesgcm"
	"github.com/imagegate/gatebuilder/internal/bgerrors"
	"github.com/imagegate/gatebuilder/internal/derive"
	"github.com/imagegate/gatebuilder/internal/shamir"
)

// freeHints is how many of a level's hints are shipped in the clear,
// regardless of hintThresholds (spec.md §4.6).
const freeHints = 3

// Setup derives HintKey[h] for every configured threshold and splits each
// one across levelCount levels at that threshold's (k, n) parameters,
// assigning share j (x-coordinate j+1) to level j. Splitting is
// deterministic: the Shamir polynomial coefficients are drawn from
// shamir.DeterministicSource, keyed on gameRandomSalt and the hint index,
// so rebuilding the same config always yields byte-identical shares.
func Setup(gameRandomSalt string, hintThresholds []int, levelCount int) (hintKeys []derive.Key16, shares [][]shamir.Share, err error) {
	hintKeys = make([]derive.Key16, len(hintThresholds))
	shares = make([][]shamir.Share, len(hintThresholds))
	for h, k := range hintThresholds {
		hintKeys[h] = derive.HintKey(gameRandomSalt, h)
		src, err := shamir.DeterministicSource(gameRandomSalt + "-shamir-" + strconv.Itoa(h))
		if err != nil {
			return nil, nil, bgerrors.Wrap(bgerrors.ErrCrypto, "building deterministic share source", err)
		}
		sh, err := shamir.Split(hintKeys[h][:], levelCount, k, src)
		if err != nil {
			return nil, nil, bgerrors.Wrap(bgerrors.ErrCrypto, fmt.Sprintf("splitting hint key %d", h), err)
		}
		shares[h] = sh
	}
	return hintKeys, shares, nil
}

// HintSharesForLevel gathers, for level i, the y-bytes of its share of
// every hint tier, in threshold order. The x-coordinate (i+1) is not
// stored: the client already knows its own level index, so re-deriving
// the coordinate at reconstruction time costs nothing and shrinks every
// LevelSecret by one byte per hint tier.
func HintSharesForLevel(shares [][]shamir.Share, level int) [][]byte {
	out := make([][]byte, len(shares))
	for h, sh := range shares {
		out[h] = sh[level].YBytes()
	}
	return out
}

// Warner is the subset of *logging.Logger EncryptHints needs to surface a
// truncation warning; satisfied by internal/build's Logger.
type Warner interface {
	Warningf(format string, args ...interface{})
}

// EncryptHints builds the per-level "hints" array emitted into GameData:
// the first freeHints entries of hintsForLevel pass through unencrypted,
// and the rest are sealed under hintKeys[idx-freeHints] with
// languageSalt ∥ levelSalt as the nonce, then base64-encoded so the whole
// array is safely representable as a []string of JSON strings.
//
// If hintsForLevel has more encrypted-tier entries than there are
// configured hint keys, the extra hints are dropped (truncated) rather
// than erroring: this lets an operator add hint thresholds after most
// hint text has already been written. Per spec §7 this truncation is a
// warning, not fatal, so it is reported through warn (nil is accepted,
// and silently skips the warning, for callers that don't have a logger).
func EncryptHints(hintsForLevel []string, hintKeys []derive.Key16, languageSalt, levelSalt derive.Key16, warn Warner) ([]string, error) {
	iv := make([]byte, 0, len(languageSalt)+len(levelSalt))
	iv = append(iv, languageSalt[:]...)
	iv = append(iv, levelSalt[:]...)

	limit := len(hintsForLevel)
	if maxEncrypted := freeHints + len(hintKeys); limit > maxEncrypted {
		if warn != nil {
			warn.Warningf("dropping %d hint(s) beyond the %d configured hint keys", limit-maxEncrypted, len(hintKeys))
		}
		limit = maxEncrypted
	}
	out := make([]string, limit)
	for idx := 0; idx < limit; idx++ {
		hint := hintsForLevel[idx]
		if idx < freeHints {
			out[idx] = hint
			continue
		}
		key := hintKeys[idx-freeHints]
		ct, err := aesgcm.Seal(key[:], iv, []byte(hint))
		if err != nil {
			return nil, bgerrors.Wrap(bgerrors.ErrCrypto, "sealing hint text", err)
		}
		out[idx] = base64.StdEncoding.EncodeToString(ct)
	}
	return out, nil
}

// ParseCSV parses the hint sheet format described in spec.md §9: one
// header row (discarded), then one row per level where the first and
// last columns are ignored and every column in between is a hint string.
// Fields may be double-quoted to contain literal commas; escaped quotes
// within a quoted field are not supported, matching the sheet export
// format this was designed against.
func ParseCSV(data []byte) (map[int][]string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	levels := make(map[int][]string)
	for i, line := range lines {
		if i == 0 {
			continue
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := parseCSVLine(line)
		if len(fields) < 3 {
			continue
		}
		levelID, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		levels[levelID] = fields[1 : len(fields)-1]
	}
	return levels, nil
}

// HintsForLevel looks up level's hint row (1-indexed, matching the sheet's
// level column) and validates it carries at least freeHints entries, so
// the unencrypted prefix is always fully populated.
func HintsForLevel(levels map[int][]string, level int) ([]string, error) {
	row, ok := levels[level]
	if !ok {
		return nil, bgerrors.New(bgerrors.ErrCSVShape, fmt.Sprintf("no hint row for level %d", level))
	}
	if len(row) < freeHints {
		return nil, bgerrors.New(bgerrors.ErrCSVShape,
			fmt.Sprintf("level %d has %d hint fields, need at least %d", level, len(row), freeHints))
	}
	return row, nil
}

func parseCSVLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}
