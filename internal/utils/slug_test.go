package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Tenis Retro Runner":      "tenis-retro-runner",
		"Edición Límitada Ñandú":  "edicion-limitada-nandu",
		"  Tenis   --  Clásicos ": "tenis-clasicos",
		"2024 Drop #3":            "2024-drop-3",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), "input: %q", in)
	}
}
