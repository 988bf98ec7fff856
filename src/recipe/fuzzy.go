package recipe

import (
	"regexp"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// FirstLetterBonus is added for every positional word pair whose first
// letters agree. It lets abbreviated panel labels ("L") beat longer
// unrelated strings.
const FirstLetterBonus = 0.15

var wordSplitRe = regexp.MustCompile(`[.\s]+`)

// BestMatch returns the candidate most similar to target. The score is the
// difflib sequence ratio plus FirstLetterBonus per matching word initial.
// Empty candidates are skipped; ties keep the lowest index.
func BestMatch(target string, candidates []string) (Match, bool) {
	if target == "" || len(candidates) == 0 {
		return Match{}, false
	}

	t := fold(target)
	tChars := chars(t)
	tWords := wordSplitRe.Split(t, -1)

	// b is fixed to the target so its index is built once.
	matcher := difflib.NewMatcher(nil, tChars)

	best := Match{}
	found := false
	highest := -1.0
	for i, c := range candidates {
		if c == "" {
			continue
		}
		o := fold(c)
		matcher.SetSeq1(chars(o))
		ratio := matcher.Ratio()
		score := ratio + initialsBonus(wordSplitRe.Split(o, -1), tWords)

		if score > highest {
			highest = score
			best = Match{Target: target, Text: c, Index: i, Ratio: ratio, Score: score}
			found = true
		}
	}
	return best, found
}

func initialsBonus(a, b []string) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	bonus := 0.0
	for i := 0; i < n; i++ {
		if a[i] == "" || b[i] == "" {
			continue
		}
		ra, _ := utf8.DecodeRuneInString(a[i])
		rb, _ := utf8.DecodeRuneInString(b[i])
		if ra == rb {
			bonus += FirstLetterBonus
		}
	}
	return bonus
}

// chars splits s into single-rune elements for a character level ratio.
func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
