// Package derive computes the deterministic salts and keys described in
// spec.md I1: every derived value is the first 16 bytes of
// SHA-512(gameRandomSalt ∥ suffix), so identical inputs always yield
// identical outputs.
package derive

import (
	"crypto/sha512"
	"strconv"
)

// Key16 is a 16-byte deterministic salt or key.
type Key16 [16]byte

func derive16(s string) Key16 {
	sum := sha512.Sum512([]byte(s))
	var out Key16
	copy(out[:], sum[:16])
	return out
}

// LevelSalt derives LevelSalt[i] (spec.md §4.5 step 1).
func LevelSalt(gameRandomSalt string, level int) Key16 {
	return derive16(gameRandomSalt + "-salt-" + strconv.Itoa(level))
}

// LevelKey derives LevelKey[i] (spec.md §4.5 step 4).
func LevelKey(gameRandomSalt string, level int) Key16 {
	return derive16(gameRandomSalt + "-key-" + strconv.Itoa(level))
}

// HintKey derives HintKey[h] (spec.md §4.6).
func HintKey(gameRandomSalt string, hintIndex int) Key16 {
	return derive16(gameRandomSalt + "-hint-" + strconv.Itoa(hintIndex))
}

// LanguageSalt derives LanguageSalt[lang] (spec.md §4.6).
func LanguageSalt(gameRandomSalt, lang string) Key16 {
	return derive16(gameRandomSalt + "-language-" + lang)
}
