package recipe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStep(t *testing.T) {
	tests := []struct {
		step   string
		action string
		count  int
	}{
		{"Nuggets (4)", "Nuggets", 4},
		{"Cut eight times", "Cut", 8},
		{"Lettuce", "Lettuce", 1},
		{"Roll twice", "Roll", 2},
		{"Stir thrice", "Stir", 3},
		{"Flip once", "Flip", 1},
		{"Chop Ten Times", "Chop", 10},
		{"Wings {12}", "Wings", 12},
		{"Fries(2)", "Fries", 2},
		{"Often", "Often", 1},
		{"Two Buns", "Two Buns", 1},

		// Stripping would leave nothing behind.
		{"(4)", "(4)", 1},
		{"twice", "twice", 1},
		{"eight times", "eight times", 1},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			got := ParseStep(tt.step)
			assert.Equal(t, tt.action, got.Action)
			assert.Equal(t, tt.count, got.Count)
		})
	}
}

func TestExpandSteps(t *testing.T) {
	tests := []struct {
		name      string
		steps     []string
		threshold int
		want      []string
	}{
		{
			name:      "short step with commas is kept",
			steps:     []string{"Lettuce, Tomato, Bun"},
			threshold: 20,
			want:      []string{"Lettuce, Tomato, Bun"},
		},
		{
			name:      "long step without separators is kept",
			steps:     []string{"Add the Lettuce on top now"},
			threshold: 20,
			want:      []string{"Add the Lettuce on top now"},
		},
		{
			name:      "long step split on and",
			steps:     []string{"Add Lettuce and Tomato slices"},
			threshold: 20,
			want:      []string{"Add Lettuce", "Tomato slices"},
		},
		{
			name:      "counts survive the split",
			steps:     []string{"Nuggets (4), Fries and Sauce!"},
			threshold: 20,
			want:      []string{"Nuggets (4)", "Fries", "Sauce"},
		},
		{
			name:      "order and empty steps",
			steps:     []string{"", "Beef", "Cut eight times, add Cheese", "Buns"},
			threshold: 20,
			want:      []string{"Beef", "Cut eight times", "add Cheese", "Buns"},
		},
		{
			name:      "nil input",
			steps:     nil,
			threshold: 20,
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandSteps(tt.steps, tt.threshold))
		})
	}
}
