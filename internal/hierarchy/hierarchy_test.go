package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fridayops/crossing/internal/model"
)

func TestRootFollowsDiscoveredChain(t *testing.T) {
	h := Build([]model.ExceptionParent{
		{Child: "ValidationError", Parent: "ValueError"},
	})
	assert.Equal(t, "ValueError", h.Root("ValidationError"))
	assert.Equal(t, "ValueError", h.Root("ValueError")) // no further discovered parent
}

func TestDescendantsTransitive(t *testing.T) {
	h := Build([]model.ExceptionParent{
		{Child: "B", Parent: "A"},
		{Child: "C", Parent: "B"},
	})
	desc := h.Descendants("A")
	assert.Contains(t, desc, "B")
	assert.Contains(t, desc, "C")
}

func TestMatchesExactAndDescendant(t *testing.T) {
	h := Build([]model.ExceptionParent{{Child: "ValidationError", Parent: "ValueError"}})
	assert.True(t, h.Matches("ValueError", "ValueError"))
	assert.True(t, h.Matches("ValueError", "ValidationError"))
	assert.False(t, h.Matches("ValidationError", "ValueError"))
}

func TestIsAncestorExcludesSelf(t *testing.T) {
	h := Build(nil)
	assert.False(t, h.IsAncestor("ValueError", "ValueError"))
}

func TestIsBuiltinException(t *testing.T) {
	assert.True(t, IsBuiltinException("ValueError"))
	assert.True(t, IsBuiltinException("KeyError"))
	assert.False(t, IsBuiltinException("TotallyMadeUpError"))
}
