// Package recorder captures a human playing an order and stores it as
// replayable mapper fixtures.
package recorder

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"csd2-bot/src/recipe"
)

const maxDirStem = 30

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// Page is one ingredient page as seen during recording.
type Page struct {
	Available []string
	Keys      []string
}

// Session accumulates the pages of one recorded order.
type Session struct {
	Recipe recipe.RecipeData
	Pages  []Page
}

func NewSession(data recipe.RecipeData, firstPage []string) *Session {
	return &Session{Recipe: data, Pages: []Page{{Available: firstPage}}}
}

// AddKey records a key pressed on the current page. Only single character
// keys count as ingredient input.
func (s *Session) AddKey(name string) bool {
	if len([]rune(name)) != 1 {
		return false
	}
	cur := &s.Pages[len(s.Pages)-1]
	cur.Keys = append(cur.Keys, strings.ToUpper(name))
	return true
}

// TurnPage starts a new page with the labels read after the turn.
func (s *Session) TurnPage(available []string) {
	s.Pages = append(s.Pages, Page{Available: available})
}

// Fixtures converts the session to one fixture per recorded page. Overflow
// steps are attached to the last recorded page.
func (s *Session) Fixtures(name string) []recipe.Fixture {
	out := make([]recipe.Fixture, len(s.Pages))
	for i, p := range s.Pages {
		var steps []string
		if i < recipe.PageCount {
			steps = append(steps, s.Recipe[i]...)
		}
		if i == len(s.Pages)-1 {
			steps = append(steps, s.Recipe.Extra()...)
		}
		out[i] = recipe.Fixture{
			Description: fmt.Sprintf("Recorded %s, page %d", name, i+1),
			Input:       recipe.FixtureInput{RecipeSteps: steps, AvailableOnPage: p.Available},
			Expected:    recipe.FixtureExpected{KeysToPress: p.Keys},
		}
	}
	return out
}

// FirstStep is the first step on any page, used to name the recording.
func (s *Session) FirstStep() string {
	for _, steps := range s.Recipe {
		if len(steps) > 0 {
			return steps[0]
		}
	}
	return ""
}

// DirName builds "<step>_<yyyymmdd>_<hhmmss>" from the first recipe step.
func DirName(firstStep string, t time.Time) string {
	stem := strings.Trim(nonWord.ReplaceAllString(strings.ToLower(firstStep), "_"), "_")
	if len(stem) > maxDirStem {
		stem = strings.TrimRight(stem[:maxDirStem], "_")
	}
	if stem == "" {
		stem = "recipe"
	}
	return stem + "_" + t.Format("20060102_150405")
}

// Save writes test_page_N.json files into a new directory below root and
// returns that directory.
func (s *Session) Save(root string, now time.Time) (string, error) {
	name := DirName(s.FirstStep(), now)
	dir := filepath.Join(root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create fixture dir: %w", err)
	}
	for i, f := range s.Fixtures(name) {
		path := filepath.Join(dir, fmt.Sprintf("test_page_%d.json", i+1))
		if err := recipe.WriteFixture(path, f); err != nil {
			return "", fmt.Errorf("write %s: %w", path, err)
		}
	}
	return dir, nil
}
