package xasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceReaderIncludeStack(t *testing.T) {
	r := NewSourceReader(memOpener(map[string]string{
		"main.asm": "line1\n.INCLUDE \"lib.asm\"\nline3",
		"lib.asm":  "libA\nlibB",
	}))
	require.NoError(t, r.PushFile("main.asm"))

	var got []string
	for {
		_, _, text, ok := r.NextLine()
		if !ok {
			break
		}
		got = append(got, text)
		if text == ".INCLUDE \"lib.asm\"" {
			require.NoError(t, r.PushFile("lib.asm"))
		}
	}
	assert.Equal(t, []string{"line1", ".INCLUDE \"lib.asm\"", "libA", "libB", "line3"}, got)
}

func TestSourceReaderMissingFile(t *testing.T) {
	r := NewSourceReader(memOpener(map[string]string{}))
	err := r.PushFile("nope.asm")
	require.Error(t, err)
}

func TestSourceReaderIncludeDepthLimit(t *testing.T) {
	files := map[string]string{"a.asm": "x"}
	r := NewSourceReader(memOpener(files))
	for i := 0; i < maxIncludeDepth; i++ {
		require.NoError(t, r.PushFile("a.asm"))
	}
	require.Error(t, r.PushFile("a.asm"))
}

func TestStripHexListingColumns(t *testing.T) {
	line := stripHexListingColumns("1000 A9 42       LDA #$42", CPU6502)
	assert.Equal(t, "LDA #$42", line)
}

func TestStripHexListingColumnsWithLineNumber(t *testing.T) {
	line := stripHexListingColumns("12 1000 60 RTS", CPU6502)
	assert.Equal(t, "RTS", line)
}
