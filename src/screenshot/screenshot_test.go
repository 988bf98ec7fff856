package screenshot

import (
	"errors"
	"testing"
)

func TestCaptureRegion(t *testing.T) {
	_, err := CaptureRegion(Region{X: 0, Y: 0, Width: 0, Height: 0})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("Expected ErrInvalidRegion, got %v", err)
	}

	_, err = CaptureRegion(Region{X: 10, Y: 10, Width: 40, Height: -1})
	if !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("Expected ErrInvalidRegion for negative height, got %v", err)
	}

	// Test with valid region (may fail if no display available)
	img, err := CaptureRegion(Region{X: 0, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Logf("Failed to capture region (expected in headless environment): %v", err)
		return
	}
	if img.Bounds().Dx() != 100 || img.Bounds().Dy() != 100 {
		t.Errorf("Expected 100x100 capture, got %v", img.Bounds())
	}
}

func TestPixelAt(t *testing.T) {
	if _, err := PixelAt(0, 0); err != nil {
		t.Logf("Failed to sample pixel (expected in headless environment): %v", err)
	}
}
