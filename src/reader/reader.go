// Package reader runs the capture and OCR pipeline that turns the recipe
// list and the ingredient panel into text.
package reader

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"csd2-bot/src/config"
	"csd2-bot/src/imageproc"
	"csd2-bot/src/logutil"
	"csd2-bot/src/ocr"
	"csd2-bot/src/recipe"
	"csd2-bot/src/screenshot"
	"csd2-bot/src/vision"
)

var ErrPanelNotConfigured = errors.New("ingredient panel ROI is not configured")

// Reader implements the session's recipe reader and probes on top of the
// live screen.
type Reader struct {
	grab     screenshot.Grabber
	engine   ocr.Engine
	probes   *vision.Probes
	regions  config.OCRRegions
	layout   config.RecipeLayout
	settings config.BotSettings
	log      *zap.Logger
}

func New(grab screenshot.Grabber, engine ocr.Engine, cfg *config.Config, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		grab:     grab,
		engine:   engine,
		probes:   vision.NewProbes(grab, cfg, logger),
		regions:  cfg.OCRRegions,
		layout:   cfg.Layout,
		settings: cfg.BotSettings,
		log:      logger.Named("reader"),
	}
}

func (r *Reader) IsRecipeTriggerActive() bool { return r.probes.IsRecipeTriggerActive() }

func (r *Reader) IsPageActive(page int) bool { return r.probes.IsPageActive(page) }

// ReadRecipe reads the recipe steps. With per-slot layout configured each
// slot's indicator colour picks its page and unmatched slots go to the
// overflow list; otherwise the whole list is page 1.
func (r *Reader) ReadRecipe(ctx context.Context) (recipe.RecipeData, error) {
	var data recipe.RecipeData

	if len(r.layout.RecipeSlotROIs) == 0 {
		steps, err := r.readBlock(ctx, r.regions.RecipeListROI)
		if err != nil {
			return data, err
		}
		data[0] = steps
		r.log.Debug("recipe list read", zap.Strings("steps", logutil.Steps(steps)))
		return data, nil
	}

	for i, roi := range r.layout.RecipeSlotROIs {
		steps, err := r.readBlock(ctx, roi)
		if err != nil {
			if ctx.Err() != nil {
				return data, ctx.Err()
			}
			r.log.Warn("recipe slot unreadable", zap.Int("slot", i), zap.Error(err))
			continue
		}
		if len(steps) == 0 {
			continue
		}
		step := strings.Join(steps, " ")

		page := 1
		if len(r.layout.RecipeIndicatorPoints) > i {
			page = r.probes.PageAt(r.layout.RecipeIndicatorPoints[i], r.layout.PageColors)
		}
		idx := recipe.PageCount
		if page >= 1 && page <= recipe.PageCount {
			idx = page - 1
		}
		data[idx] = append(data[idx], step)
		r.log.Debug("recipe slot read", zap.Int("slot", i), zap.Int("page", page), zap.String("step", logutil.Sanitize(step)))
	}
	return data, nil
}

func (r *Reader) readBlock(ctx context.Context, roi config.ROI) ([]string, error) {
	if roi.Empty() {
		return nil, fmt.Errorf("%w: recipe region %+v", screenshot.ErrInvalidRegion, roi)
	}
	img, err := r.grab.CaptureRegion(screenshot.FromRect(roi.Rect()))
	if err != nil {
		return nil, err
	}

	prepared := imageproc.Binarize(imageproc.Upscale(img, r.settings.OCRUpscaleFactor), true)
	png, err := imageproc.EncodePNG(prepared)
	if err != nil {
		return nil, err
	}
	words, err := r.engine.Words(ctx, png, ocr.SingleBlock)
	if errors.Is(err, ocr.ErrNoText) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	phrases := ocr.GroupPhrases(words, r.settings.MinConfidence, r.settings.HorizontalGapThreshold)
	return ocr.Texts(phrases), nil
}

// ReadIngredientPanel returns one label per configured slot. Empty,
// malformed and unreadable slots yield "".
func (r *Reader) ReadIngredientPanel(ctx context.Context) ([]string, error) {
	slots := r.regions.IngredientSlotROIs
	if len(slots) == 0 {
		return []string{}, nil
	}
	if r.regions.IngredientPanelROI.Empty() {
		return nil, ErrPanelNotConfigured
	}

	panel, err := r.grab.CaptureRegion(screenshot.FromRect(r.regions.IngredientPanelROI.Rect()))
	if err != nil {
		return nil, fmt.Errorf("capture ingredient panel: %w", err)
	}

	polygon := make([]screenshot.Point, len(r.regions.SlotLabelPolygon))
	for i, p := range r.regions.SlotLabelPolygon {
		polygon[i] = screenshot.Point{X: p.X, Y: p.Y}
	}

	labels := make([]string, len(slots))
	sawEmpty := false
	for i, slot := range slots {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rect := slot.Rect().Add(panel.Bounds().Min)
		if slot.Empty() || !rect.In(panel.Bounds()) {
			r.log.Warn("ingredient slot outside panel", zap.Int("slot", i), zap.Any("roi", slot))
			continue
		}

		if !imageproc.IsLabelCorner(panel.RGBAAt(rect.Min.X, rect.Min.Y)) {
			sawEmpty = true
			continue
		}
		if sawEmpty {
			r.log.Warn("filled slot after an empty one, the panel may have been missed", zap.Int("slot", i))
		}

		label, err := r.readLabel(ctx, panel, rect, polygon)
		if errors.Is(err, ocr.ErrNoText) {
			r.log.Debug("no confident text on filled slot", zap.Int("slot", i))
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Warn("ingredient slot unreadable", zap.Int("slot", i), zap.Error(err))
			continue
		}
		labels[i] = label
	}

	r.log.Debug("ingredient panel read", zap.Strings("labels", logutil.Steps(labels)))
	return labels, nil
}

func (r *Reader) readLabel(ctx context.Context, panel *image.RGBA, rect image.Rectangle, polygon []screenshot.Point) (string, error) {
	slot := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(slot, slot.Bounds(), panel, rect.Min, draw.Src)
	screenshot.MaskOutside(slot, polygon)

	prepared := imageproc.Shear(imageproc.Binarize(imageproc.Normalize(slot), false), r.settings.RightPanelShearFactor)
	png, err := imageproc.EncodePNG(prepared)
	if err != nil {
		return "", err
	}
	words, err := r.engine.Words(ctx, png, ocr.SingleLine)
	if err != nil {
		return "", err
	}
	return ocr.Label(words, r.settings.MinConfidence)
}
