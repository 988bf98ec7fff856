// Package recipe turns OCR'd recipe steps and ingredient labels into the
// ordered key presses that complete a cooking order.
package recipe

import "time"

// PageCount is the number of ingredient pages a recipe can span.
const PageCount = 3

// RecipeData holds the steps read for pages 1-3 followed by the overflow
// ("extra") list that did not fit on any page indicator.
type RecipeData [PageCount + 1][]string

// Extra returns the overflow list.
func (d RecipeData) Extra() []string { return d[PageCount] }

// Empty reports whether no step was read at all.
func (d RecipeData) Empty() bool {
	for _, steps := range d {
		if len(steps) > 0 {
			return false
		}
	}
	return true
}

// ParsedStep is a step reduced to its base action and repetition count.
type ParsedStep struct {
	Action string
	Count  int
}

// Match is the best candidate found for a target action.
type Match struct {
	Target string
	Text   string
	Index  int
	Ratio  float64
	Score  float64
}

// SpecialKind marks ingredient pages that are not solved by matching.
type SpecialKind int

const (
	SpecialNone SpecialKind = iota
	SpecialChores
	SpecialBeverage
)

func (k SpecialKind) String() string {
	switch k {
	case SpecialChores:
		return "chores"
	case SpecialBeverage:
		return "beverage"
	default:
		return "none"
	}
}

// HoldAction is a single key held down for a fixed duration.
type HoldAction struct {
	Key      string
	Duration time.Duration
}

// MapResult is the outcome of mapping one page.
type MapResult struct {
	Keys      []string
	Hold      *HoldAction
	Special   SpecialKind
	Matches   []Match
	Unmatched []string
}
