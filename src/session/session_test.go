package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csd2-bot/src/recipe"
)

type fakeReader struct {
	recipe    recipe.RecipeData
	recipeErr error
	panels    [][]string
	panelErr  error
	reads     int
	onPanel   func()
}

func (f *fakeReader) ReadRecipe(context.Context) (recipe.RecipeData, error) {
	return f.recipe, f.recipeErr
}

func (f *fakeReader) ReadIngredientPanel(context.Context) ([]string, error) {
	if f.onPanel != nil {
		f.onPanel()
	}
	if f.panelErr != nil {
		return nil, f.panelErr
	}
	p := f.panels[min(f.reads, len(f.panels)-1)]
	f.reads++
	return p, nil
}

type fakeKeyboard struct {
	events []string
	err    error
	onHold func()
}

func (f *fakeKeyboard) Press(keys ...string) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, keys...)
	return nil
}

func (f *fakeKeyboard) Hold(ctx context.Context, key string, d time.Duration) error {
	f.events = append(f.events, "hold "+key+" "+d.String())
	if f.onHold != nil {
		f.onHold()
	}
	return ctx.Err()
}

type triggerFunc func() bool

func (f triggerFunc) IsRecipeTriggerActive() bool { return f() }

func active() bool { return true }

type harness struct {
	reader *fakeReader
	kb     *fakeKeyboard
	sleeps []time.Duration
	ctrl   *Controller
}

func newHarness(t *testing.T, reader *fakeReader, pages recipe.PageProbe) *harness {
	t.Helper()
	h := &harness{reader: reader, kb: &fakeKeyboard{}}
	mapper := recipe.NewMapper(recipe.MapperOptions{
		InputKeys:      []string{"A", "S", "D", "F"},
		FuzzyEnabled:   true,
		MatchThreshold: recipe.DefaultMatchThreshold,
		Special: recipe.SpecialActions{
			ChoresSequence: []string{"A", "S", "D", "F"},
			PourKey:        "A",
			PourHold:       2500 * time.Millisecond,
		},
	})
	ctrl, err := NewController(Options{
		Reader:      reader,
		Keyboard:    h.kb,
		Trigger:     triggerFunc(active),
		Pages:       pages,
		Mapper:      mapper,
		ConfirmKey:  "Enter",
		PageTurnKey: "Tab",
		KeyDelay:    50 * time.Millisecond,
		PageDelay:   250 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			h.sleeps = append(h.sleeps, d)
			return ctx.Err()
		},
	})
	require.NoError(t, err)
	h.ctrl = ctrl
	return h
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "waiting for order", WaitingForTrigger.String())
	assert.Equal(t, "reading recipe", ReadingRecipe.String())
	assert.Equal(t, "processing page", ProcessingPage.String())
	assert.Equal(t, "serving order", ServingOrder.String())
	assert.Equal(t, "served", OutcomeServed.String())
}

func TestNewControllerRequiresDependencies(t *testing.T) {
	_, err := NewController(Options{})
	assert.Error(t, err)
}

func TestRunAttemptIdle(t *testing.T) {
	h := newHarness(t, &fakeReader{}, nil)
	h.ctrl.opts.Trigger = triggerFunc(func() bool { return false })

	out, err := h.ctrl.RunAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeIdle, out)
	assert.Empty(t, h.kb.events)
}

func TestRunAttemptNoRecipe(t *testing.T) {
	h := newHarness(t, &fakeReader{}, nil)

	out, err := h.ctrl.RunAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeNoRecipe, out)
	assert.Empty(t, h.kb.events)
	state, _ := h.ctrl.State()
	assert.Equal(t, WaitingForTrigger, state)
}

func TestRunAttemptSinglePage(t *testing.T) {
	reader := &fakeReader{
		recipe: recipe.RecipeData{{"Buns", "Beef", "Ketchup"}},
		panels: [][]string{{"Ketchup", "Buns", "Cheese", "Beef"}},
	}
	h := newHarness(t, reader, nil)

	out, err := h.ctrl.RunAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeServed, out)
	assert.Equal(t, []string{"S", "F", "A", "Enter"}, h.kb.events)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, h.sleeps)
}

func TestRunAttemptTurnsPages(t *testing.T) {
	reader := &fakeReader{
		recipe: recipe.RecipeData{{"Buns"}, {"Lettuce"}, nil, {"Tomato"}},
		panels: [][]string{{"Buns", "Beef"}, {"Lettuce", "Tomato"}},
	}
	probe := recipe.PageProbeFunc(func(page int) bool { return page == 2 })
	h := newHarness(t, reader, probe)

	var seen []int
	reader.onPanel = func() {
		_, page := h.ctrl.State()
		seen = append(seen, page)
	}

	out, err := h.ctrl.RunAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeServed, out)
	assert.Equal(t, []string{"A", "Tab", "A", "S", "Enter"}, h.kb.events)
	assert.Equal(t, []int{1, 2}, seen)
	assert.Contains(t, h.sleeps, 250*time.Millisecond)
}

func TestRunAttemptServesWithUnmatched(t *testing.T) {
	reader := &fakeReader{
		recipe: recipe.RecipeData{{"Lettuce"}},
		panels: [][]string{{"Onions", "", ""}},
	}
	h := newHarness(t, reader, nil)

	out, err := h.ctrl.RunAttempt(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeServed, out)
	assert.Equal(t, []string{"Enter"}, h.kb.events)
}

func TestRunAttemptSpecialPages(t *testing.T) {
	t.Run("chores", func(t *testing.T) {
		reader := &fakeReader{
			recipe: recipe.RecipeData{{"Clean"}, {"More"}},
			panels: [][]string{{"Sanitize"}},
		}
		h := newHarness(t, reader, nil)
		out, err := h.ctrl.RunAttempt(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeServed, out)
		assert.Equal(t, []string{"A", "S", "D", "F", "Enter"}, h.kb.events)
		assert.Equal(t, 1, reader.reads)
	})

	t.Run("beverage without steps", func(t *testing.T) {
		reader := &fakeReader{
			recipe: recipe.RecipeData{nil, nil, nil, {"Soda"}},
			panels: [][]string{{"Pour"}},
		}
		h := newHarness(t, reader, nil)
		out, err := h.ctrl.RunAttempt(context.Background())
		require.NoError(t, err)
		assert.Equal(t, OutcomeServed, out)
		assert.Equal(t, []string{"hold A 2.5s", "Enter"}, h.kb.events)
	})
}

func TestRunAttemptReadError(t *testing.T) {
	boom := errors.New("tesseract missing")
	h := newHarness(t, &fakeReader{recipeErr: boom}, nil)

	out, err := h.ctrl.RunAttempt(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, OutcomeIdle, out)
	assert.Empty(t, h.kb.events)
}

func TestRunAttemptRecoversPanic(t *testing.T) {
	reader := &fakeReader{recipe: recipe.RecipeData{{"Buns"}}}
	reader.onPanel = func() { panic("slot index out of range") }
	h := newHarness(t, reader, nil)

	out, err := h.ctrl.RunAttempt(context.Background())
	assert.ErrorIs(t, err, ErrAttemptPanicked)
	assert.Equal(t, OutcomeIdle, out)
	state, page := h.ctrl.State()
	assert.Equal(t, WaitingForTrigger, state)
	assert.Zero(t, page)
}

func TestRunAttemptCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{
		recipe: recipe.RecipeData{{"Buns", "Beef"}},
		panels: [][]string{{"Buns", "Beef"}},
	}
	h := newHarness(t, reader, nil)
	reader.onPanel = cancel

	_, err := h.ctrl.RunAttempt(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotContains(t, h.kb.events, "Enter")
}

func TestRunAttemptCancelledDuringHold(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	reader := &fakeReader{
		recipe: recipe.RecipeData{{"Soda"}},
		panels: [][]string{{"Pour"}},
	}
	h := newHarness(t, reader, nil)
	h.kb.onHold = cancel

	out, err := h.ctrl.RunAttempt(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OutcomeIdle, out)
	assert.Equal(t, []string{"hold A 2.5s"}, h.kb.events)
}

func TestRunAttemptRecoversTriggerPanic(t *testing.T) {
	h := newHarness(t, &fakeReader{}, nil)
	h.ctrl.opts.Trigger = triggerFunc(func() bool { panic("pixel read failed") })

	var out Outcome
	var err error
	require.NotPanics(t, func() { out, err = h.ctrl.RunAttempt(context.Background()) })
	assert.ErrorIs(t, err, ErrAttemptPanicked)
	assert.Equal(t, OutcomeIdle, out)
	state, _ := h.ctrl.State()
	assert.Equal(t, WaitingForTrigger, state)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, Sleep(context.Background(), time.Millisecond))
	assert.NoError(t, Sleep(context.Background(), 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
