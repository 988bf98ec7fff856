package screenshot

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/kbinani/screenshot"
)

var ErrInvalidRegion = errors.New("invalid region dimensions")

// Region represents a screen region to capture
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

type Point struct {
	X int
	Y int
}

// FromRect converts an image rectangle to a Region.
func FromRect(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Grabber captures screen content. The reader and the probes depend on it so
// tests can substitute a fixed image.
type Grabber interface {
	CaptureRegion(region Region) (*image.RGBA, error)
	PixelAt(x, y int) (color.RGBA, error)
}

// Screen is the Grabber backed by the real displays.
type Screen struct{}

func (Screen) CaptureRegion(region Region) (*image.RGBA, error) { return CaptureRegion(region) }
func (Screen) PixelAt(x, y int) (color.RGBA, error)             { return PixelAt(x, y) }

// CaptureRegion captures a specific region of the screen
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidRegion, region.Width, region.Height)
	}

	img, err := screenshot.CaptureRect(region.Rect())
	if err != nil {
		return nil, fmt.Errorf("failed to capture region: %w", err)
	}
	return img, nil
}

// PixelAt samples one screen pixel.
func PixelAt(x, y int) (color.RGBA, error) {
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+1, y+1))
	if err != nil {
		return color.RGBA{}, fmt.Errorf("failed to sample pixel (%d,%d): %w", x, y, err)
	}
	return img.RGBAAt(img.Bounds().Min.X, img.Bounds().Min.Y), nil
}

// MaskOutside whites out every pixel of img outside polygon. The polygon is
// relative to the image origin, so it works on sub-images too.
func MaskOutside(img *image.RGBA, polygon []Point) {
	if len(polygon) < 3 {
		return
	}
	b := img.Bounds()
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			lx := float64(x-b.Min.X) + 0.5
			ly := float64(y-b.Min.Y) + 0.5
			if !pointInPolygon(lx, ly, polygon) {
				img.SetRGBA(x, y, white)
			}
		}
	}
}

func pointInPolygon(px, py float64, polygon []Point) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi := float64(polygon[i].X)
		yi := float64(polygon[i].Y)
		xj := float64(polygon[j].X)
		yj := float64(polygon[j].Y)

		if pointOnSegment(px, py, xi, yi, xj, yj) {
			return true
		}

		intersects := ((yi > py) != (yj > py)) &&
			(px < (xj-xi)*(py-yi)/(yj-yi)+xi)
		if intersects {
			inside = !inside
		}
	}

	return inside
}

func pointOnSegment(px, py, x1, y1, x2, y2 float64) bool {
	const epsilon = 0.5
	cross := (px-x1)*(y2-y1) - (py-y1)*(x2-x1)
	if math.Abs(cross) > epsilon {
		return false
	}

	minX := math.Min(x1, x2) - epsilon
	maxX := math.Max(x1, x2) + epsilon
	minY := math.Min(y1, y2) - epsilon
	maxY := math.Max(y1, y2) + epsilon
	return px >= minX && px <= maxX && py >= minY && py <= maxY
}
