package xasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroDefineAndExpand(t *testing.T) {
	table := NewMacroTable()
	err := table.Define("LDXY", []string{"XVAL", "YVAL"}, []string{
		"LDX #XVAL",
		"LDY #YVAL",
	}, 1)
	require.NoError(t, err)

	m, ok := table.Lookup("LDXY")
	require.True(t, ok)

	lines, err := Expand(m, []string{"$01", "$02"})
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "LDX #$01", lines[0])
	assert.Equal(t, "LDY #$02", lines[1])
}

func TestMacroDuplicateDefinitionRejected(t *testing.T) {
	table := NewMacroTable()
	require.NoError(t, table.Define("M", nil, nil, 1))
	err := table.Define("M", nil, nil, 2)
	require.Error(t, err)
}

func TestMacroTooManyParams(t *testing.T) {
	table := NewMacroTable()
	params := make([]string, maxMacroArgs+1)
	for i := range params {
		params[i] = string(rune('A' + i))
	}
	err := table.Define("BIG", params, nil, 1)
	require.Error(t, err)
}

func TestSplitMacroArgsRespectsNestingAndQuotes(t *testing.T) {
	args := SplitMacroArgs(`1, (2,3), "a,b"`)
	require.Len(t, args, 3)
	assert.Equal(t, "1", args[0])
	assert.Equal(t, "(2,3)", args[1])
	assert.Equal(t, `"a,b"`, args[2])
}
