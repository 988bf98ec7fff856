package recorder

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"csd2-bot/src/config"
	"csd2-bot/src/hotkey"
	"csd2-bot/src/keyboard"
	"csd2-bot/src/logutil"
	"csd2-bot/src/recipe"
	"csd2-bot/src/session"
)

const abortKey = "backspace"

var ErrAborted = errors.New("recording aborted")

// Screen is the part of the reader the recorder needs.
type Screen interface {
	IsRecipeTriggerActive() bool
	ReadRecipe(ctx context.Context) (recipe.RecipeData, error)
	ReadIngredientPanel(ctx context.Context) ([]string, error)
}

type Recorder struct {
	screen      Screen
	keys        <-chan hotkey.KeyEvent
	root        string
	confirmKey  string
	pageTurnKey string
	pollDelay   time.Duration
	pageDelay   time.Duration

	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
	log   *zap.Logger
}

// New builds a recorder that saves below root. keys is normally
// hotkey.Stream.
func New(screen Screen, keys <-chan hotkey.KeyEvent, cfg *config.Config, root string, logger *zap.Logger) (*Recorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	confirm, err := keyboard.KeyName(cfg.Controls.ConfirmKey)
	if err != nil {
		return nil, err
	}
	turn, err := keyboard.KeyName(cfg.Controls.PageTurnKey)
	if err != nil {
		return nil, err
	}
	return &Recorder{
		screen:      screen,
		keys:        keys,
		root:        root,
		confirmKey:  confirm,
		pageTurnKey: turn,
		pollDelay:   cfg.BotSettings.MainLoopDelayDuration(),
		pageDelay:   cfg.BotSettings.PageDelayDuration(),
		Sleep:       session.Sleep,
		Now:         time.Now,
		log:         logger.Named("recorder"),
	}, nil
}

// Record waits for an order, follows the player's key presses and saves the
// fixtures when the order is confirmed.
func (r *Recorder) Record(ctx context.Context) (string, error) {
	data, err := r.waitForRecipe(ctx)
	if err != nil {
		return "", err
	}
	first, err := r.screen.ReadIngredientPanel(ctx)
	if err != nil {
		return "", err
	}
	s := NewSession(data, first)
	r.log.Info("recording started, play the order",
		zap.String("confirm", r.confirmKey), zap.String("next_page", r.pageTurnKey), zap.String("abort", abortKey))

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case ev, ok := <-r.keys:
			if !ok {
				return "", errors.New("key stream closed")
			}
			if !ev.Down {
				continue
			}
			switch ev.Name {
			case r.confirmKey:
				dir, err := s.Save(r.root, r.Now())
				if err != nil {
					return "", err
				}
				r.log.Info("recording saved", zap.String("dir", dir), zap.Int("pages", len(s.Pages)))
				return dir, nil
			case abortKey:
				r.log.Info("recording aborted")
				return "", ErrAborted
			case r.pageTurnKey:
				if err := r.Sleep(ctx, r.pageDelay); err != nil {
					return "", err
				}
				labels, err := r.screen.ReadIngredientPanel(ctx)
				if err != nil {
					return "", err
				}
				s.TurnPage(labels)
				r.log.Info("page turned", zap.Int("page", len(s.Pages)), zap.Strings("available", logutil.Steps(labels)))
			default:
				if s.AddKey(ev.Name) {
					r.log.Debug("key recorded", zap.String("key", ev.Name))
				}
			}
		}
	}
}

func (r *Recorder) waitForRecipe(ctx context.Context) (recipe.RecipeData, error) {
	r.log.Info("waiting for an order")
	for {
		if r.screen.IsRecipeTriggerActive() {
			data, err := r.screen.ReadRecipe(ctx)
			if err != nil && ctx.Err() != nil {
				return data, ctx.Err()
			}
			if err == nil && !data.Empty() {
				return data, nil
			}
			r.log.Warn("order detected but no recipe read", zap.Error(err))
		}
		if err := r.Sleep(ctx, r.pollDelay); err != nil {
			return recipe.RecipeData{}, err
		}
	}
}
