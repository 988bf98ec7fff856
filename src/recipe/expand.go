package recipe

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMultiStepCharThreshold is the step length above which a step may be
// split into sub-steps.
const DefaultMultiStepCharThreshold = 20

// Digits and parentheses are excluded so "(4)" survives a split.
var stepSeparatorRe = regexp.MustCompile(`[^\d\sA-Za-z()]| and `)

// ExpandSteps splits long compound steps ("Cut twice, add Cheese") into
// independent sub-steps. Steps no longer than threshold are kept whole even
// when they contain separators. Empty steps and empty pieces are dropped.
func ExpandSteps(steps []string, threshold int) []string {
	out := make([]string, 0, len(steps))
	for _, step := range steps {
		if utf8.RuneCountInString(step) > threshold && stepSeparatorRe.MatchString(step) {
			for _, part := range stepSeparatorRe.Split(step, -1) {
				if part = strings.TrimSpace(part); part != "" {
					out = append(out, part)
				}
			}
			continue
		}
		if step != "" {
			out = append(out, step)
		}
	}
	return out
}
