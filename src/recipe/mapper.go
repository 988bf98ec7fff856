package recipe

import (
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultMatchThreshold is the minimum combined score a fuzzy match needs.
const DefaultMatchThreshold = 0.6

// Sentinel label fragments of the minigame variants that are not solved by
// ingredient matching.
// They only match as whole words, so "Potpourri" stays an ingredient.
var (
	choresSentinel   = regexp.MustCompile(`\bsanitize\b`)
	beverageSentinel = regexp.MustCompile(`\bpour\b`)
)

// SpecialActions are the hardcoded inputs for special pages.
type SpecialActions struct {
	ChoresSequence []string
	PourKey        string
	PourHold       time.Duration
}

// MapperOptions configures a Mapper. InputKeys is index-aligned with the
// ingredient slots of a page.
type MapperOptions struct {
	InputKeys              []string
	FuzzyEnabled           bool
	MultiStepCharThreshold int
	MatchThreshold         float64
	// CaseSensitive only applies to exact mode.
	CaseSensitive bool
	// ReuseSlots lets one slot satisfy several fuzzy steps on a page.
	ReuseSlots bool
	Special    SpecialActions
	Logger     *zap.Logger
}

// Mapper maps the required steps of a page onto the keys of the visible
// ingredient slots. It holds no per-call state and is safe to reuse.
type Mapper struct {
	opts MapperOptions
	log  *zap.Logger
}

func NewMapper(opts MapperOptions) *Mapper {
	if opts.MultiStepCharThreshold <= 0 {
		opts.MultiStepCharThreshold = DefaultMultiStepCharThreshold
	}
	lg := opts.Logger
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Mapper{opts: opts, log: lg.Named("mapper")}
}

// Map computes the keys for one page. An empty step list always yields no
// keys. Special pages bypass matching and return their fixed input instead.
func (m *Mapper) Map(required, available []string) MapResult {
	if len(required) == 0 {
		return MapResult{Keys: []string{}}
	}

	if kind := DetectSpecial(available); kind != SpecialNone {
		return m.Special(kind)
	}

	if m.opts.FuzzyEnabled {
		return m.mapFuzzy(required, available)
	}
	return m.mapExact(required, available)
}

// Special returns the fixed input of a special page kind.
func (m *Mapper) Special(kind SpecialKind) MapResult {
	switch kind {
	case SpecialChores:
		m.log.Info("chores page detected", zap.Strings("sequence", m.opts.Special.ChoresSequence))
		return MapResult{Special: kind, Keys: append([]string{}, m.opts.Special.ChoresSequence...)}
	case SpecialBeverage:
		m.log.Info("beverage page detected", zap.String("key", m.opts.Special.PourKey), zap.Duration("hold", m.opts.Special.PourHold))
		return MapResult{Special: kind, Keys: []string{}, Hold: &HoldAction{Key: m.opts.Special.PourKey, Duration: m.opts.Special.PourHold}}
	}
	return MapResult{Keys: []string{}}
}

// mapExact walks the steps in order and stops at the first step with no
// remaining slot: the game never lets a later step on the same page be
// completed before an earlier one.
func (m *Mapper) mapExact(required, available []string) MapResult {
	res := MapResult{Keys: []string{}}
	used := make([]bool, len(available))

	for i, step := range required {
		idx := -1
		for j, text := range available {
			if used[j] || text == "" {
				continue
			}
			if m.equal(step, text) {
				idx = j
				break
			}
		}
		if idx < 0 {
			m.log.Debug("exact match stopped", zap.String("step", step), zap.Int("position", i))
			res.Unmatched = append(res.Unmatched, required[i:]...)
			break
		}
		key, ok := m.keyFor(idx)
		if !ok {
			res.Unmatched = append(res.Unmatched, required[i:]...)
			break
		}
		used[idx] = true
		res.Keys = append(res.Keys, key)
		res.Matches = append(res.Matches, Match{Target: step, Text: available[idx], Index: idx, Ratio: 1, Score: 1})
	}

	m.log.Debug("exact mapped page", zap.Strings("keys", res.Keys))
	return res
}

func (m *Mapper) mapFuzzy(required, available []string) MapResult {
	res := MapResult{Keys: []string{}}
	candidates := append([]string(nil), available...)

	for _, step := range ExpandSteps(required, m.opts.MultiStepCharThreshold) {
		parsed := ParseStep(step)
		best, ok := BestMatch(parsed.Action, candidates)
		if !ok || best.Score < m.opts.MatchThreshold {
			m.log.Debug("no match above threshold",
				zap.String("step", step),
				zap.Float64("score", best.Score),
				zap.Float64("threshold", m.opts.MatchThreshold))
			res.Unmatched = append(res.Unmatched, step)
			continue
		}
		key, ok := m.keyFor(best.Index)
		if !ok {
			res.Unmatched = append(res.Unmatched, step)
			continue
		}
		if !m.opts.ReuseSlots {
			candidates[best.Index] = ""
		}
		best.Text = available[best.Index]
		res.Matches = append(res.Matches, best)
		for n := 0; n < parsed.Count; n++ {
			res.Keys = append(res.Keys, key)
		}
		m.log.Debug("matched step",
			zap.String("step", step),
			zap.String("ingredient", best.Text),
			zap.Int("count", parsed.Count),
			zap.Float64("score", best.Score))
	}

	if len(res.Matches) == 0 {
		m.log.Debug("no matches found on this page")
	}
	return res
}

func (m *Mapper) equal(a, b string) bool {
	if m.opts.CaseSensitive {
		return a == b
	}
	return strings.EqualFold(a, b)
}

func (m *Mapper) keyFor(idx int) (string, bool) {
	if idx < 0 || idx >= len(m.opts.InputKeys) {
		m.log.Warn("slot has no input key", zap.Int("slot", idx), zap.Int("keys", len(m.opts.InputKeys)))
		return "", false
	}
	return m.opts.InputKeys[idx], true
}

// DetectSpecial reports whether the visible labels belong to a chores or
// beverage page.
func DetectSpecial(available []string) SpecialKind {
	for _, text := range available {
		lower := strings.ToLower(text)
		switch {
		case choresSentinel.MatchString(lower):
			return SpecialChores
		case beverageSentinel.MatchString(lower):
			return SpecialBeverage
		}
	}
	return SpecialNone
}
