package tray

import (
	"image"
	"image/color"

	"csd2-bot/src/imageproc"
)

const iconSize = 32

var (
	idleColor = color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff}
	busyColor = color.RGBA{R: 0xf5, G: 0x8a, B: 0x07, A: 0xff}
)

// Icon renders the tray icon: a filled disc, orange while an order is being
// worked and grey otherwise.
func Icon(busy bool) []byte {
	fill := idleColor
	if busy {
		fill = busyColor
	}
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	r := iconSize/2 - 2
	c := iconSize / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := x-c, y-c
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	data, err := imageproc.EncodePNG(img)
	if err != nil {
		return nil
	}
	return data
}
