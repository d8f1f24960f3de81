package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedTokenGenerator(t *testing.T) {
	gen := NewFixedTokenGenerator("cycle-0001")
	assert.Equal(t, "cycle-0001", gen.Generate())
	assert.Equal(t, "cycle-0001", gen.Generate())
}

func TestFixedTokenGeneratorDefault(t *testing.T) {
	gen := NewFixedTokenGenerator("")
	assert.Equal(t, "test-cycle-token", gen.Generate())
}
