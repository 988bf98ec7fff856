package recipe

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Fixture is one recorded page of play: what OCR saw and which keys the
// player pressed.
type Fixture struct {
	Description string          `json:"description"`
	Input       FixtureInput    `json:"input"`
	Expected    FixtureExpected `json:"expected"`

	// Path is set by LoadFixtures.
	Path string `json:"-"`
}

type FixtureInput struct {
	RecipeSteps     []string `json:"recipe_steps"`
	AvailableOnPage []string `json:"available_on_page"`
}

type FixtureExpected struct {
	// An empty list is meaningful: the bot must not press anything.
	KeysToPress []string `json:"keys_to_press"`
}

// LoadFixtures reads every *.json fixture below dir, sorted by path.
func LoadFixtures(dir string) ([]Fixture, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".json") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk fixtures %s: %w", dir, err)
	}
	sort.Strings(paths)

	fixtures := make([]Fixture, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read fixture: %w", err)
		}
		var f Fixture
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse fixture %s: %w", path, err)
		}
		f.Path = path
		fixtures = append(fixtures, f)
	}
	return fixtures, nil
}

// WriteFixture stores f as indented JSON at path.
func WriteFixture(path string, f Fixture) error {
	if f.Input.RecipeSteps == nil {
		f.Input.RecipeSteps = []string{}
	}
	if f.Input.AvailableOnPage == nil {
		f.Input.AvailableOnPage = []string{}
	}
	if f.Expected.KeysToPress == nil {
		f.Expected.KeysToPress = []string{}
	}
	data, err := json.MarshalIndent(f, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Replay runs every fixture through m and returns those whose keys differ.
func Replay(m *Mapper, fixtures []Fixture) []Mismatch {
	var out []Mismatch
	for _, f := range fixtures {
		got := m.Map(f.Input.RecipeSteps, f.Input.AvailableOnPage).Keys
		if !equalKeys(got, f.Expected.KeysToPress) {
			out = append(out, Mismatch{Fixture: f, Got: got})
		}
	}
	return out
}

// Mismatch is a fixture whose recorded keys were not reproduced.
type Mismatch struct {
	Fixture Fixture
	Got     []string
}

func equalKeys(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}
