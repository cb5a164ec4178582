package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmsim/racersim/internal/geom"
)

func TestLoadArena(t *testing.T) {
	a, err := LoadArena("testdata/arena.yaml")
	require.NoError(t, err)

	assert.Equal(t, geom.Vector3{X: 10, Y: 10, Z: 1}, a.Size)
	assert.Equal(t, []string{"mycntrl", "scripted"}, a.Controllers.IDs())

	scripted, ok := a.Controllers.Get("scripted")
	require.True(t, ok)
	assert.Equal(t, "wander.lua", scripted.Params.StringOr("script", ""))

	require.Len(t, a.Entities, 2)
	assert.Equal(t, "deepracer", a.Entities[0].Type)
	assert.Equal(t, "dr1", a.Entities[1].Node.StringOr("id", ""))
	assert.True(t, a.Entities[1].Node.HasChild("battery"))
}

func TestParseArenaErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"entity without type", "entities:\n  - id: dr0\n"},
		{"duplicate controller", "controllers:\n  - {id: a, type: idle_controller}\n  - {id: a, type: idle_controller}\n"},
		{"bad size", "arena: {size: \"1,2\"}\n"},
		{"not a mapping", "- a\n- b\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArena([]byte(tt.src))
			assert.Error(t, err)
		})
	}

	_, err := LoadArena("testdata/missing.yaml")
	assert.Error(t, err)
}
