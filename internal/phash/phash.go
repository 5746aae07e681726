// Package phash computes the 18-byte perceptual hash used as password
// material for a level's encryption key (spec.md §4.3). There is no
// perceptual-hash library anywhere in the retrieved example pack, so this
// is built directly from the spec's sampling grid rather than grounded on
// a teacher file.
package phash

import (
	"fmt"
	"image"
)

// Size is the digest length in bytes (144 bits).
const Size = 18

const gridN = 6

// Hash computes the perceptual hash of img per spec.md §4.3:
//   - crop to a centered 16:9 window,
//   - partition into a 6x6 grid, skipping cell (5,0),
//   - sample each (25%-expanded) cell in a checkerboard pattern and average
//     a weighted luminance,
//   - emit 25 horizontal-gradient bits followed by 25 vertical-gradient
//     bits, right-padded to 144 bits and packed MSB-first.
func Hash(img image.Image) ([Size]byte, error) {
	var out [Size]byte

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return out, fmt.Errorf("phash: degenerate image dimensions %dx%d", w, h)
	}

	winX0, winY0, winW, winH := window(w, h)

	var gray [gridN][gridN]float64
	cellW := float64(winW) / gridN
	cellH := float64(winH) / gridN

	for gy := 0; gy < gridN; gy++ {
		for gx := 0; gx < gridN; gx++ {
			if gx == gridN-1 && gy == 0 {
				continue // the one cell the gradient passes never read
			}
			cellX0 := bounds.Min.X + winX0 + int(float64(gx)*cellW)
			cellX1 := bounds.Min.X + winX0 + int(float64(gx+1)*cellW)
			cellY0 := bounds.Min.Y + winY0 + int(float64(gy)*cellH)
			cellY1 := bounds.Min.Y + winY0 + int(float64(gy+1)*cellH)
			if gx == gridN-1 {
				cellX1 = bounds.Min.X + winX0 + winW
			}
			if gy == gridN-1 {
				cellY1 = bounds.Min.Y + winY0 + winH
			}

			padX := int(cellW * 0.25)
			padY := int(cellH * 0.25)
			minX := clamp(cellX0-padX, bounds.Min.X+winX0, bounds.Min.X+winX0+winW)
			maxX := clamp(cellX1+padX, bounds.Min.X+winX0, bounds.Min.X+winX0+winW)
			minY := clamp(cellY0-padY, bounds.Min.Y+winY0, bounds.Min.Y+winY0+winH)
			maxY := clamp(cellY1+padY, bounds.Min.Y+winY0, bounds.Min.Y+winY0+winH)

			gray[gx][gy] = sampleChecker(img, minX, minY, maxX, maxY)
		}
	}

	bits := make([]bool, 0, 50)
	// Horizontal gradient pass, row-major.
	for y := 0; y < gridN-1; y++ {
		for x := 0; x < gridN-1; x++ {
			bits = append(bits, gray[x][y+1] < gray[x+1][y+1])
		}
	}
	// Vertical gradient pass, column-major.
	for x := 0; x < gridN-1; x++ {
		for y := 0; y < gridN-1; y++ {
			bits = append(bits, gray[x][y] < gray[x][y+1])
		}
	}
	for len(bits) < Size*8 {
		bits = append(bits, false)
	}
	packBits(bits, out[:])
	return out, nil
}

// window computes the centered 16:9 crop (origin + size) within a w x h
// image, per spec.md §4.3 step 1.
func window(w, h int) (x0, y0, winW, winH int) {
	if float64(w) > float64(h)*16.0/9.0 {
		winH = h
		winW = int(float64(h) * 16.0 / 9.0)
	} else {
		winW = w
		winH = int(float64(w) * 9.0 / 16.0)
	}
	x0 = (w - winW) / 2
	y0 = (h - winH) / 2
	return
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// sampleChecker averages the 3R+5G+B weighted luminance of pixels in
// [minX,maxX) x [minY,maxY), sampled in a checkerboard pattern: every row
// steps by 2 starting at an x offset that alternates with the row's
// absolute parity.
func sampleChecker(img image.Image, minX, minY, maxX, maxY int) float64 {
	var sum float64
	var count int
	for y := minY; y < maxY; y++ {
		start := minX + (((y % 2) + 2) % 2)
		for x := start; x < maxX; x += 2 {
			r, g, b, _ := img.At(x, y).RGBA()
			// RGBA() returns 16-bit-per-channel values; scale to 8-bit.
			r8 := float64(r >> 8)
			g8 := float64(g >> 8)
			b8 := float64(b >> 8)
			sum += 3*r8 + 5*g8 + b8
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// packBits packs MSB-first bits into out, which must have len(bits)/8
// (rounded up) capacity; unset trailing bits are zero.
func packBits(bits []bool, out []byte) {
	for i, bit := range bits {
		if !bit {
			continue
		}
		out[i/8] |= 1 << uint(7-i%8)
	}
}
