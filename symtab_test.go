package xasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbolTableDefineAndLookup(t *testing.T) {
	syms := NewSymbolTable(false)
	sym, err := syms.Define("LOOP", 0x1000, DefPosition, 10, true, false)
	require.NoError(t, err)
	assert.Equal(t, 0x1000, sym.Address)

	got, ok := syms.Lookup("loop")
	require.True(t, ok, "a table built case-insensitive must fold case on lookup")
	assert.Same(t, sym, got)
}

func TestSymbolTableCaseSensitive(t *testing.T) {
	syms := NewSymbolTable(true)
	_, err := syms.Define("Loop", 0x1000, DefPosition, 1, true, false)
	require.NoError(t, err)
	_, ok := syms.Lookup("loop")
	assert.False(t, ok, "case-sensitive table must not fold case")
}

func TestSymbolTablePass1RedefinitionIsFatal(t *testing.T) {
	syms := NewSymbolTable(false)
	_, err := syms.Define("X", 1, DefAssign, 1, true, false)
	require.NoError(t, err)
	_, err = syms.Define("X", 2, DefAssign, 2, true, false)
	require.Error(t, err)
}

func TestSymbolTableIntermediatePassTracksConvergence(t *testing.T) {
	syms := NewSymbolTable(false)
	_, err := syms.Define("LOOP", 0x1000, DefPosition, 1, true, false)
	require.NoError(t, err)

	syms.BeginPass()
	_, err = syms.Define("LOOP", 0x1002, DefPosition, 1, false, false)
	require.NoError(t, err, "a position redefinition mid-pipeline should be tracked, not fatal")
	assert.Equal(t, 1, syms.Changed())
}

func TestSymbolTableFinalPassChangeIsFatal(t *testing.T) {
	syms := NewSymbolTable(false)
	_, err := syms.Define("LOOP", 0x1000, DefPosition, 1, true, false)
	require.NoError(t, err)

	syms.BeginPass()
	_, err = syms.Define("LOOP", 0x1002, DefPosition, 1, false, true)
	require.Error(t, err, "a symbol changing address on the final pass is a phase-convergence error")
}

func TestSymbolTableLockedSymbolIgnoresRedefinition(t *testing.T) {
	syms := NewSymbolTable(false)
	sym, err := syms.Define("VERSION", 2, DefAssign, 1, true, false)
	require.NoError(t, err)
	sym.Locked = true

	_, err = syms.Define("VERSION", 3, DefAssign, 2, false, false)
	require.NoError(t, err)
	assert.Equal(t, 2, sym.Address, "a CLI-locked symbol must not be overwritten by source")
}

func TestQualifyIdentifierScoping(t *testing.T) {
	assert.Equal(t, "MOD.local", qualifyIdentifier(".local", "MOD"))
	assert.Equal(t, "MOD_10$", qualifyIdentifier("10$", "MOD"))
	assert.Equal(t, "GLOBAL", qualifyIdentifier("GLOBAL", "MOD"))
	assert.Equal(t, ".local", qualifyIdentifier(".local", ""))
}
