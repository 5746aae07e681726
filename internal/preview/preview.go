// Package preview implements `--open`: launching the first generated
// language bundle in the operator's default browser, grounded on
// kryptco-kr's src/kr/kr_windows.go (browser.OpenURL(url)).
package preview

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/browser"
)

// Open launches htmlPath in the default browser.
func Open(htmlPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("preview: resolving %s: %w", htmlPath, err)
	}
	if err := browser.OpenFile(abs); err != nil {
		return fmt.Errorf("preview: opening %s: %w", abs, err)
	}
	return nil
}
