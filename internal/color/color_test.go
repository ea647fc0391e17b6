package color

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApply(t *testing.T) {
	prev := Enabled()
	defer SetEnabled(prev)

	SetEnabled(false)
	assert.Equal(t, "plain", Apply(Red, "plain"))

	SetEnabled(true)
	got := Apply(Red, "red")
	assert.NotEqual(t, "red", got)
	assert.Contains(t, got, "red")
}

func TestByIndex(t *testing.T) {
	assert.Same(t, Cycle[0], ByIndex(0))
	assert.Same(t, Cycle[1], ByIndex(len(Cycle)+1))
}
