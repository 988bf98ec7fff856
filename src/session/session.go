// Package session drives one serving cycle of the cooking minigame: wait
// for an order, read it, enter every ingredient page and serve.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"csd2-bot/src/logutil"
	"csd2-bot/src/recipe"
)

var ErrAttemptPanicked = errors.New("attempt panicked")

// RecipeReader reads the order and the visible ingredient slots.
type RecipeReader interface {
	ReadRecipe(ctx context.Context) (recipe.RecipeData, error)
	ReadIngredientPanel(ctx context.Context) ([]string, error)
}

type Keyboard interface {
	Press(keys ...string) error
	Hold(ctx context.Context, key string, d time.Duration) error
}

type TriggerProbe interface {
	IsRecipeTriggerActive() bool
}

type State int

const (
	WaitingForTrigger State = iota
	ReadingRecipe
	ProcessingPage
	ServingOrder
)

func (s State) String() string {
	switch s {
	case ReadingRecipe:
		return "reading recipe"
	case ProcessingPage:
		return "processing page"
	case ServingOrder:
		return "serving order"
	default:
		return "waiting for order"
	}
}

// Outcome is the result of a single RunAttempt call.
type Outcome int

const (
	OutcomeIdle Outcome = iota
	OutcomeNoRecipe
	OutcomeServed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoRecipe:
		return "no recipe"
	case OutcomeServed:
		return "served"
	default:
		return "idle"
	}
}

type Options struct {
	Reader   RecipeReader
	Keyboard Keyboard
	Trigger  TriggerProbe
	Pages    recipe.PageProbe
	Mapper   *recipe.Mapper

	ConfirmKey  string
	PageTurnKey string
	KeyDelay    time.Duration
	PageDelay   time.Duration

	// Sleep defaults to the context-aware Sleep of this package.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

// Controller runs attempts one at a time. State may be read from other
// goroutines.
type Controller struct {
	opts Options
	log  *zap.Logger

	mu    sync.Mutex
	state State
	page  int
}

func NewController(opts Options) (*Controller, error) {
	if opts.Reader == nil || opts.Keyboard == nil || opts.Trigger == nil || opts.Mapper == nil {
		return nil, errors.New("session: Reader, Keyboard, Trigger and Mapper are required")
	}
	if opts.Sleep == nil {
		opts.Sleep = Sleep
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Controller{opts: opts, log: lg.Named("session")}, nil
}

// State returns the current state and, while processing, the 1-based page.
func (c *Controller) State() (State, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.page
}

func (c *Controller) setState(s State, page int) {
	c.mu.Lock()
	c.state, c.page = s, page
	c.mu.Unlock()
}

// RunAttempt polls the trigger once and, when an order is up, completes it.
// Failures inside the attempt are logged and returned; the controller is
// back in WaitingForTrigger afterwards either way.
func (c *Controller) RunAttempt(ctx context.Context) (out Outcome, err error) {
	if err := ctx.Err(); err != nil {
		return OutcomeIdle, err
	}

	log := c.log
	defer c.setState(WaitingForTrigger, 0)
	defer func() {
		if r := recover(); r != nil {
			log.Error("attempt panicked", zap.Any("panic", r), zap.Stack("stack"))
			out, err = OutcomeIdle, fmt.Errorf("%w: %v", ErrAttemptPanicked, r)
		}
	}()

	if !c.opts.Trigger.IsRecipeTriggerActive() {
		return OutcomeIdle, nil
	}

	log = log.With(zap.String("attempt", uuid.NewString()))
	log.Info("order detected")
	c.setState(ReadingRecipe, 0)
	raw, err := c.opts.Reader.ReadRecipe(ctx)
	if err != nil {
		return c.fail(ctx, log, "read recipe", err)
	}
	if raw.Empty() {
		log.Warn("recipe OCR returned nothing, waiting for the next order")
		return OutcomeNoRecipe, nil
	}

	pages, last := recipe.Consolidate(raw, c.opts.Pages)
	log.Info("recipe read", zap.Int("pages", len(pages)), zap.Int("extra", len(raw.Extra())))

	var unmatched []string
	for n := 0; n <= last; n++ {
		c.setState(ProcessingPage, n+1)
		plog := log.With(zap.Int("page", n+1))

		available, err := c.opts.Reader.ReadIngredientPanel(ctx)
		if err != nil {
			return c.fail(ctx, plog, "read ingredient panel", err)
		}
		plog.Debug("page read", zap.Strings("steps", logutil.Steps(pages[n])), zap.Strings("available", logutil.Steps(available)))

		var res recipe.MapResult
		if kind := recipe.DetectSpecial(available); kind != recipe.SpecialNone {
			res = c.opts.Mapper.Special(kind)
		} else {
			res = c.opts.Mapper.Map(pages[n], available)
		}

		if err := c.enter(ctx, res); err != nil {
			return c.fail(ctx, plog, "enter keys", err)
		}
		if res.Special != recipe.SpecialNone {
			plog.Info("special page handled", zap.Stringer("kind", res.Special))
			break
		}
		unmatched = append(unmatched, res.Unmatched...)

		if n < last {
			if err := c.opts.Keyboard.Press(c.opts.PageTurnKey); err != nil {
				return c.fail(ctx, plog, "turn page", err)
			}
			if err := c.opts.Sleep(ctx, c.opts.PageDelay); err != nil {
				return OutcomeIdle, err
			}
		}
	}

	c.setState(ServingOrder, 0)
	if len(unmatched) > 0 {
		log.Warn("serving with unmatched steps", zap.Strings("unmatched", logutil.Steps(unmatched)))
	}
	if err := c.opts.Keyboard.Press(c.opts.ConfirmKey); err != nil {
		return c.fail(ctx, log, "serve order", err)
	}
	log.Info("order served")
	return OutcomeServed, nil
}

func (c *Controller) enter(ctx context.Context, res recipe.MapResult) error {
	for i, key := range res.Keys {
		if i > 0 {
			if err := c.opts.Sleep(ctx, c.opts.KeyDelay); err != nil {
				return err
			}
		}
		if err := c.opts.Keyboard.Press(key); err != nil {
			return err
		}
	}
	if res.Hold != nil {
		return c.opts.Keyboard.Hold(ctx, res.Hold.Key, res.Hold.Duration)
	}
	return nil
}

func (c *Controller) fail(ctx context.Context, log *zap.Logger, op string, err error) (Outcome, error) {
	if ctx.Err() != nil {
		return OutcomeIdle, ctx.Err()
	}
	log.Error("attempt failed", zap.String("op", op), zap.Error(err))
	return OutcomeIdle, fmt.Errorf("%s: %w", op, err)
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
