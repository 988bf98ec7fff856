// Package vision samples single screen pixels to detect game state.
package vision

import (
	"image/color"
	"math"

	"go.uber.org/zap"

	"csd2-bot/src/config"
	"csd2-bot/src/screenshot"
)

// ColorMatches reports whether every RGB channel of got is within tolerance
// of want.
func ColorMatches(got, want color.RGBA, tolerance int) bool {
	return channelDiff(got.R, want.R) <= tolerance &&
		channelDiff(got.G, want.G) <= tolerance &&
		channelDiff(got.B, want.B) <= tolerance
}

// Saturation returns the HSV saturation of c in [0,1].
func Saturation(c color.RGBA) float64 {
	maxC := math.Max(float64(c.R), math.Max(float64(c.G), float64(c.B)))
	if maxC == 0 {
		return 0
	}
	minC := math.Min(float64(c.R), math.Min(float64(c.G), float64(c.B)))
	return (maxC - minC) / maxC
}

// PageForColor returns the 1-based page whose colour matches c, or 0.
func PageForColor(c color.RGBA, pages []config.PageColor) int {
	for i, p := range pages {
		if ColorMatches(c, p.Color(), p.Tolerance) {
			return i + 1
		}
	}
	return 0
}

func channelDiff(a, b uint8) int {
	d := int(a) - int(b)
	if d < 0 {
		return -d
	}
	return d
}

// Probes answers the trigger and page indicator questions from live pixels.
type Probes struct {
	grab       screenshot.Grabber
	trigger    config.RecipeTrigger
	indicators []config.Point
	minSat     float64
	log        *zap.Logger
}

func NewProbes(grab screenshot.Grabber, cfg *config.Config, logger *zap.Logger) *Probes {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Probes{
		grab:       grab,
		trigger:    cfg.BotSettings.RecipeTrigger,
		indicators: cfg.Layout.PageIndicators,
		minSat:     cfg.Layout.IndicatorMinSaturation,
		log:        logger.Named("vision"),
	}
}

// IsRecipeTriggerActive reports whether a new order is on screen. An
// unconfigured trigger colour never fires.
func (p *Probes) IsRecipeTriggerActive() bool {
	if len(p.trigger.ExpectedColorRGB) != 3 {
		return false
	}
	pt := p.trigger.Point()
	got, err := p.grab.PixelAt(pt.X, pt.Y)
	if err != nil {
		p.log.Warn("trigger pixel unavailable", zap.Error(err))
		return false
	}
	return ColorMatches(got, p.trigger.Color(), p.trigger.Tolerance)
}

// IsPageActive reports whether the indicator for ingredient page 2 or 3 is
// lit. Pages without a configured indicator are inactive.
func (p *Probes) IsPageActive(page int) bool {
	idx := page - 2
	if idx < 0 || idx >= len(p.indicators) {
		return false
	}
	pt := p.indicators[idx]
	got, err := p.grab.PixelAt(pt.X, pt.Y)
	if err != nil {
		p.log.Warn("page indicator unavailable", zap.Int("page", page), zap.Error(err))
		return false
	}
	sat := Saturation(got)
	p.log.Debug("page indicator", zap.Int("page", page), zap.Float64("saturation", sat))
	return sat >= p.minSat
}

// PageAt samples a recipe slot indicator and maps it to a page, 0 when
// nothing matches.
func (p *Probes) PageAt(pt config.Point, pages []config.PageColor) int {
	got, err := p.grab.PixelAt(pt.X, pt.Y)
	if err != nil {
		p.log.Warn("recipe indicator unavailable", zap.Int("x", pt.X), zap.Int("y", pt.Y), zap.Error(err))
		return 0
	}
	return PageForColor(got, pages)
}
