package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func bimodal(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(20)
			if x >= w/2 {
				v = 200
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestOtsuThreshold(t *testing.T) {
	got := OtsuThreshold(Gray(bimodal(10, 4)))
	if got < 20 || got >= 200 {
		t.Fatalf("threshold %d does not separate 20 from 200", got)
	}
}

func TestBinarize(t *testing.T) {
	tests := []struct {
		name      string
		invert    bool
		darkSide  uint8
		lightSide uint8
	}{
		{"dark text on light", false, 0, 255},
		{"light text on dark", true, 255, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Binarize(bimodal(10, 4), tt.invert)
			if got := g.GrayAt(0, 0).Y; got != tt.darkSide {
				t.Errorf("dark side = %d, want %d", got, tt.darkSide)
			}
			if got := g.GrayAt(9, 3).Y; got != tt.lightSide {
				t.Errorf("light side = %d, want %d", got, tt.lightSide)
			}
		})
	}
}

func TestUpscale(t *testing.T) {
	src := bimodal(10, 4)
	if got := Upscale(src, 1); got != image.Image(src) {
		t.Error("factor 1 should return the input")
	}
	if got := Upscale(src, 0.5); got != image.Image(src) {
		t.Error("downscaling should return the input")
	}
	if b := Upscale(src, 2).Bounds(); b.Dx() != 20 || b.Dy() != 8 {
		t.Errorf("unexpected upscaled bounds %v", b)
	}
}

func TestNormalize(t *testing.T) {
	b := Normalize(bimodal(100, 25)).Bounds()
	if b.Dx() != 200+2*NormalizedPad || b.Dy() != NormalizedHeight+2*NormalizedPad {
		t.Errorf("unexpected normalized bounds %v", b)
	}
}

func TestShearKeepsBounds(t *testing.T) {
	g := Binarize(bimodal(10, 4), false)
	if Shear(g, 0) != g {
		t.Error("zero shear should return the input")
	}
	if b := Shear(g, 0.14).Bounds(); b.Dx() != 10 || b.Dy() != 4 {
		t.Errorf("unexpected sheared bounds %v", b)
	}
}

func TestIsLabelCorner(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want bool
	}{
		{color.RGBA{255, 255, 255, 255}, true},
		{color.RGBA{0, 0, 0, 255}, true},
		{color.RGBA{128, 128, 128, 255}, false},
		{color.RGBA{255, 255, 254, 255}, false},
	}
	for _, tt := range tests {
		if got := IsLabelCorner(tt.c); got != tt.want {
			t.Errorf("IsLabelCorner(%v) = %v, want %v", tt.c, got, tt.want)
		}
	}
}

func TestEncodePNG(t *testing.T) {
	data, err := EncodePNG(bimodal(4, 4))
	if err != nil {
		t.Fatalf("EncodePNG: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("unexpected decoded bounds %v", img.Bounds())
	}
}
