package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/otiai10/gosseract"
	"go.uber.org/zap"
)

// CharWhitelist limits recognition to the glyphs the game renders.
const CharWhitelist = " 0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ErrNoText is returned when a read finds no usable words.
var ErrNoText = errors.New("no text recognized")

// PageSegMode mirrors the Tesseract segmentation modes the bot uses.
type PageSegMode int

const (
	// SingleBlock reads a uniform block such as the recipe list.
	SingleBlock PageSegMode = 6
	// SingleLine reads one ingredient label.
	SingleLine PageSegMode = 7
)

// Word is one recognized word with its box in image pixels and a confidence
// in [0,100].
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// Engine recognizes words in a PNG image.
type Engine interface {
	Words(ctx context.Context, png []byte, mode PageSegMode) ([]Word, error)
}

// Tesseract is an Engine backed by libtesseract. A single client is reused
// and calls are serialized.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	log    *zap.Logger
}

var _ Engine = (*Tesseract)(nil)

func NewTesseract(language string, logger *zap.Logger) (*Tesseract, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := gosseract.NewClient()
	if language != "" {
		if err := client.SetLanguage(language); err != nil {
			client.Close()
			return nil, fmt.Errorf("set OCR language %q: %w", language, err)
		}
	}
	if err := client.SetWhitelist(CharWhitelist); err != nil {
		client.Close()
		return nil, fmt.Errorf("set OCR whitelist: %w", err)
	}
	return &Tesseract{client: client, log: logger.Named("ocr")}, nil
}

func (t *Tesseract) Words(ctx context.Context, png []byte, mode PageSegMode) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.client.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return nil, fmt.Errorf("set page segmentation mode %d: %w", mode, err)
	}
	if err := t.client.SetImageFromBytes(png); err != nil {
		return nil, fmt.Errorf("load image for OCR: %w", err)
	}
	boxes, err := t.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}
	if len(boxes) == 0 {
		return nil, ErrNoText
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Box: b.Box, Confidence: b.Confidence})
	}
	t.log.Debug("recognized words", zap.Int("mode", int(mode)), zap.Int("count", len(words)))
	return words, nil
}

func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
