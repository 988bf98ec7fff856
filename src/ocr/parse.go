package ocr

import (
	"sort"
	"strings"
)

// Phrase is a run of words read as one step or label.
type Phrase struct {
	Text       string
	Confidence float64
}

// FilterByConfidence drops blank words and words below minConfidence.
func FilterByConfidence(words []Word, minConfidence float64) []Word {
	out := make([]Word, 0, len(words))
	for _, w := range words {
		text := strings.TrimSpace(w.Text)
		if text == "" || w.Confidence < minConfidence {
			continue
		}
		w.Text = text
		out = append(out, w)
	}
	return out
}

// SinglePhrase joins every confident word into one label.
func SinglePhrase(words []Word, minConfidence float64) Phrase {
	kept := FilterByConfidence(words, minConfidence)
	if len(kept) == 0 {
		return Phrase{}
	}
	return join(kept)
}

// Label is SinglePhrase for one ingredient slot. It returns ErrNoText when no
// word clears minConfidence.
func Label(words []Word, minConfidence float64) (string, error) {
	p := SinglePhrase(words, minConfidence)
	if p.Text == "" {
		return "", ErrNoText
	}
	return p.Text, nil
}

// GroupPhrases splits a block of words into separate entries. Words on the
// same text line whose horizontal gap is below gap belong together.
// Phrases come out top to bottom, left to right.
func GroupPhrases(words []Word, minConfidence float64, gap int) []Phrase {
	kept := FilterByConfidence(words, minConfidence)
	if len(kept) == 0 {
		return nil
	}

	var phrases []Phrase
	for _, line := range lines(kept) {
		current := []Word{line[0]}
		for _, w := range line[1:] {
			prev := current[len(current)-1]
			if w.Box.Min.X-prev.Box.Max.X < gap {
				current = append(current, w)
				continue
			}
			phrases = append(phrases, join(current))
			current = []Word{w}
		}
		phrases = append(phrases, join(current))
	}
	return phrases
}

// lines clusters words whose vertical centre falls inside an existing
// line's span, then orders lines by top edge and words by left edge.
func lines(words []Word) [][]Word {
	sorted := append([]Word(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Box.Min.Y < sorted[j].Box.Min.Y })

	type span struct {
		top, bottom int
		words       []Word
	}
	var spans []*span
	for _, w := range sorted {
		cy := (w.Box.Min.Y + w.Box.Max.Y) / 2
		var target *span
		for _, s := range spans {
			if cy >= s.top && cy <= s.bottom {
				target = s
				break
			}
		}
		if target == nil {
			target = &span{top: w.Box.Min.Y, bottom: w.Box.Max.Y}
			spans = append(spans, target)
		}
		target.words = append(target.words, w)
		if w.Box.Max.Y > target.bottom {
			target.bottom = w.Box.Max.Y
		}
	}

	out := make([][]Word, 0, len(spans))
	for _, s := range spans {
		sort.SliceStable(s.words, func(i, j int) bool { return s.words[i].Box.Min.X < s.words[j].Box.Min.X })
		out = append(out, s.words)
	}
	return out
}

func join(words []Word) Phrase {
	texts := make([]string, len(words))
	var sum float64
	for i, w := range words {
		texts[i] = w.Text
		sum += w.Confidence
	}
	return Phrase{Text: strings.Join(texts, " "), Confidence: sum / float64(len(words))}
}

// Texts returns the text of each phrase.
func Texts(phrases []Phrase) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		out[i] = p.Text
	}
	return out
}
