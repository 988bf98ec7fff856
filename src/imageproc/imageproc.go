// Package imageproc prepares captured regions for Tesseract: grayscale,
// Otsu binarization, upscaling, height normalization and shear correction.
package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

const (
	// NormalizedHeight is the label height Tesseract reads most reliably.
	NormalizedHeight = 50
	NormalizedPad    = 10
)

// Gray converts img to 8-bit grayscale.
func Gray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// OtsuThreshold returns the threshold that maximizes between-class variance
// of the gray histogram.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]int
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[(y-b.Min.Y)*g.Stride : (y-b.Min.Y)*g.Stride+b.Dx()]
		for _, p := range row {
			hist[p]++
		}
	}

	total := b.Dx() * b.Dy()
	if total == 0 {
		return 0
	}
	var sum float64
	for i, n := range hist {
		sum += float64(i * n)
	}

	var sumB, best float64
	var wB int
	threshold := 0
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)
		between := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = t
		}
	}
	return uint8(threshold)
}

// Binarize maps pixels above the Otsu threshold to white and the rest to
// black. With invert the mapping is swapped, for light text on dark panels.
func Binarize(img image.Image, invert bool) *image.Gray {
	g := Gray(img)
	t := OtsuThreshold(g)
	var hi, lo uint8 = 255, 0
	if invert {
		hi, lo = 0, 255
	}
	for i, p := range g.Pix {
		if p > t {
			g.Pix[i] = hi
		} else {
			g.Pix[i] = lo
		}
	}
	return g
}

// Upscale enlarges img by factor. Factors at or below 1 return img unchanged.
func Upscale(img image.Image, factor float64) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Normalize scales img to NormalizedHeight keeping the aspect ratio and pads
// it with a white border.
func Normalize(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dy() == 0 {
		return img
	}
	w := b.Dx() * NormalizedHeight / b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w+2*NormalizedPad, NormalizedHeight+2*NormalizedPad))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	inner := image.Rect(NormalizedPad, NormalizedPad, NormalizedPad+w, NormalizedPad+NormalizedHeight)
	draw.CatmullRom.Scale(dst, inner, img, b, draw.Src, nil)
	return dst
}

// Shear undoes italic slant: each row y moves right by factor*y.
func Shear(g *image.Gray, factor float64) *image.Gray {
	if factor == 0 {
		return g
	}
	b := g.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	s2d := f64.Aff3{1, factor, -float64(b.Min.X) - factor*float64(b.Min.Y), 0, 1, -float64(b.Min.Y)}
	draw.CatmullRom.Transform(dst, s2d, g, b, draw.Src, nil)
	return dst
}

// IsLabelCorner reports whether c is pure white or pure black, the two
// corner colors of a filled ingredient slot. Empty slots are a flat grey.
func IsLabelCorner(c color.RGBA) bool {
	white := c.R == 255 && c.G == 255 && c.B == 255
	black := c.R == 0 && c.G == 0 && c.B == 0
	return white || black
}

// EncodePNG serializes img for the OCR engine.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}
