package ui

import (
	"os"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestInitColors(t *testing.T) {
	t.Run("with NO_COLOR", func(t *testing.T) {
		t.Setenv("NO_COLOR", "1")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("with TERM=dumb", func(t *testing.T) {
		t.Setenv("TERM", "dumb")

		color.NoColor = false
		InitColors()

		assert.True(t, color.NoColor)
	})

	t.Run("normal terminal", func(_ *testing.T) {
		os.Unsetenv("NO_COLOR")
		os.Unsetenv("TERM")

		// Just ensure it doesn't panic
		InitColors()
		// Can't assert on color.NoColor as it depends on terminal detection
	})
}

func TestColorizeFamily(t *testing.T) {
	DisableColors()

	tests := []struct {
		family string
	}{
		{"binary"},
		{"pkg-config"},
		{"python-module"},
		{"vague"},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			// With colors disabled the text passes through unchanged.
			assert.Equal(t, tt.family, ColorizeFamily(tt.family))
		})
	}
}

func TestFilterFuzzy(t *testing.T) {
	items := []string{"zlib1g-dev", "libssl-dev", "zlib1g", "python3-yaml"}

	t.Run("empty query keeps everything", func(t *testing.T) {
		assert.Equal(t, items, FilterFuzzy("", items))
	})

	t.Run("filters to matches", func(t *testing.T) {
		got := FilterFuzzy("zlib", items)
		assert.ElementsMatch(t, []string{"zlib1g-dev", "zlib1g"}, got)
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, FilterFuzzy("rust", items))
	})
}

func TestValidateNonEmpty(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"Empty", "", true},
		{"NonEmpty", "test", false},
		{"Whitespace", "  ", false}, // Whitespace is considered non-empty by ValidateNonEmpty
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNonEmpty(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNonEmpty(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
