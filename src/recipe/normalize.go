package recipe

import (
	"regexp"
	"strconv"
	"strings"
)

var numberWords = map[string]int{
	"once": 1, "twice": 2, "thrice": 3,
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

var (
	bracketCountRe = regexp.MustCompile(`[({}](\d+)[)}]`)
	bracketStripRe = regexp.MustCompile(`\s*[({}]\d+[)}]`)
	numberWordRe   = regexp.MustCompile(`(?i)\b(once|twice|thrice|one|two|three|four|five|six|seven|eight|nine|ten)\b(?:\s+times)?$`)
)

// ParseStep splits a recipe step into its action and repetition count.
// "Nuggets (4)" yields ("Nuggets", 4), "Cut eight times" yields ("Cut", 8)
// and anything without a marker is returned unchanged with a count of 1.
func ParseStep(step string) ParsedStep {
	if m := bracketCountRe.FindStringSubmatch(step); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			action := strings.TrimSpace(bracketStripRe.ReplaceAllString(step, ""))
			if action != "" {
				return ParsedStep{Action: action, Count: n}
			}
		}
		return ParsedStep{Action: step, Count: 1}
	}

	if loc := numberWordRe.FindStringSubmatchIndex(step); loc != nil {
		word := strings.ToLower(step[loc[2]:loc[3]])
		action := strings.TrimSpace(step[:loc[0]])
		if action != "" {
			return ParsedStep{Action: action, Count: numberWords[word]}
		}
	}

	return ParsedStep{Action: step, Count: 1}
}
