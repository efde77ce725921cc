package xasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsBSOLocal(t *testing.T) {
	assert.True(t, isBSOLocal("10$"))
	assert.False(t, isBSOLocal("$10"))
	assert.False(t, isBSOLocal("A$"))
	assert.False(t, isBSOLocal("$"))
}

func TestIsLocalIdentifier(t *testing.T) {
	assert.True(t, isLocalIdentifier(".loop"))
	assert.True(t, isLocalIdentifier("_loop"))
	assert.True(t, isLocalIdentifier("5$"))
	assert.False(t, isLocalIdentifier("LOOP"))
}
