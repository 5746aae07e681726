// Package imageload decodes the level source images and thumbnails from
// disk (spec.md §6: "any supported format, decodable to RGBA"). Treated
// as an external collaborator per spec.md §1, so this is a thin interface
// plus the obvious default filesystem implementation, registering every
// format decoder the standard library ships so "any supported format"
// holds in practice.
package imageload

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/imagegate/gatebuilder/internal/bgerrors"
)

// Loader decodes the source image and thumbnail source for a level.
type Loader interface {
	LoadImage(level int) (image.Image, error)
	LoadThumbnailSource(level int) (image.Image, error)
}

// FileLoader reads data/<i>.png and data/<i>_thumb.png under Root
// (spec.md §6). Despite the ".png" suffix in the filename convention,
// decode dispatches on the actual file contents, so any registered format
// works.
type FileLoader struct {
	Root string
}

func (f FileLoader) LoadImage(level int) (image.Image, error) {
	return f.decode(filepath.Join(f.Root, "data", fmt.Sprintf("%d.png", level)))
}

func (f FileLoader) LoadThumbnailSource(level int) (image.Image, error) {
	return f.decode(filepath.Join(f.Root, "data", fmt.Sprintf("%d_thumb.png", level)))
}

func (f FileLoader) decode(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrImage, fmt.Sprintf("opening %s", path), err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, bgerrors.Wrap(bgerrors.ErrImage, fmt.Sprintf("decoding %s", path), err)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, bgerrors.New(bgerrors.ErrImage, fmt.Sprintf("%s has degenerate dimensions", path))
	}
	return img, nil
}
