package xasm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPseudoByteStringAndNumeric(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.BYTE \"AB\",$10,10\n", Options{})
	got := a.image.Slice(0x1000, 4)
	assert.Equal(t, []byte{'A', 'B', 0x10, 10}, got)
}

func TestPseudoWordAndBigWord(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.WORD $1234\n\t.BIGW $1234\n", Options{})
	got := a.image.Slice(0x1000, 4)
	assert.Equal(t, []byte{0x34, 0x12, 0x12, 0x34}, got)
}

func TestPseudoHex4AndDec4(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.HEX4 $00FF\n\t.DEC4 7\n", Options{})
	got := a.image.Slice(0x1000, 8)
	assert.Equal(t, "00FF0007", string(got))
}

func TestPseudoQuad(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.QUAD $01020304\n", Options{})
	got := a.image.Slice(0x1000, 4)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, got)
}

func TestPseudoFillDefaultAndExplicitByte(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.FILL 3\n\t.FILL 2,$FF\n", Options{FillByte: 0xEA})
	got := a.image.Slice(0x1000, 5)
	assert.Equal(t, []byte{0xEA, 0xEA, 0xEA, 0xFF, 0xFF}, got)
}

func TestPseudoBits(t *testing.T) {
	a := assembleSource(t, "*= $1000\n\t.BITS 1,0,1,0,1,0,1,0\n", Options{})
	got := a.image.Slice(0x1000, 1)
	assert.Equal(t, []byte{0xAA}, got)
}

func TestPseudoBSSOrgAndSize(t *testing.T) {
	src := strings.Join([]string{
		"&= $C000",
		"COUNTER:\t.BSS 2",
		"FLAG:\t.BSS 1",
	}, "\n")
	a := assembleSource(t, src, Options{})
	counter, ok := a.syms.Lookup("COUNTER")
	assert.True(t, ok)
	assert.Equal(t, 0xC000, counter.Address)
	flag, ok := a.syms.Lookup("FLAG")
	assert.True(t, ok)
	assert.Equal(t, 0xC002, flag.Address)
}

func TestPseudoBSSWithoutOrgIsNotFatal(t *testing.T) {
	opts := Options{
		Open: memOpener(map[string]string{"main.asm": "*= $1000\n\t.BSS 2\n"}),
	}
	opts.InputFile = "main.asm"
	opts.CPU = CPU6502
	a := NewAssembler(opts)
	_, fatal := a.Assemble()
	assert.NoError(t, fatal)
}

func TestPseudoCaseToggle(t *testing.T) {
	src := strings.Join([]string{
		".CASE +",
		"*= $1000",
		"loop:",
		"\tNOP",
		"\tJMP loop",
		"\tJMP LOOP",
	}, "\n")
	opts := Options{
		Open: memOpener(map[string]string{"main.asm": src}),
	}
	opts.InputFile = "main.asm"
	opts.CPU = CPU6502
	a := NewAssembler(opts)
	errs, fatal := a.Assemble()
	assert.NoError(t, fatal)
	assert.NotEmpty(t, errs, "with case-sensitivity on, LOOP must not resolve to loop")
}

func TestPseudoCaseDefaultIsSensitive(t *testing.T) {
	src := strings.Join([]string{
		"*= $1000",
		"loop:",
		"\tNOP",
		"\tJMP LOOP",
	}, "\n")
	opts := Options{
		Open: memOpener(map[string]string{"main.asm": src}),
	}
	opts.InputFile = "main.asm"
	opts.CPU = CPU6502
	a := NewAssembler(opts)
	errs, fatal := a.Assemble()
	assert.NoError(t, fatal)
	assert.NotEmpty(t, errs, "symbols are case-sensitive by default")
}

func TestPseudoCaseDashDisablesSensitivity(t *testing.T) {
	src := strings.Join([]string{
		".CASE -",
		"*= $1000",
		"loop:",
		"\tNOP",
		"\tJMP LOOP",
	}, "\n")
	a := assembleSource(t, src, Options{})
	got := a.image.Slice(0x1000, 4)
	assert.Equal(t, []byte{0xEA, 0x4C, 0x00, 0x10}, got)
}

func TestIgnoreCaseOptionDisablesSensitivity(t *testing.T) {
	src := strings.Join([]string{
		"*= $1000",
		"loop:",
		"\tNOP",
		"\tJMP LOOP",
	}, "\n")
	a := assembleSource(t, src, Options{IgnoreCase: true})
	got := a.image.Slice(0x1000, 4)
	assert.Equal(t, []byte{0xEA, 0x4C, 0x00, 0x10}, got)
}

func TestPseudoBaseChangesDirectPageWindow(t *testing.T) {
	src := strings.Join([]string{
		".BASE $D000",
		"*= $1000",
		"\tLDA $D020",
	}, "\n")
	a := assembleSource(t, src, Options{})
	got := a.image.Slice(0x1000, 2)
	assert.Equal(t, []byte{0xA5, 0x20}, got)
}

func TestPseudoCPUSwitchMidFile(t *testing.T) {
	src := strings.Join([]string{
		"*= $1000",
		"\tNOP",
		".CPU 65C02",
		"\tPHX",
	}, "\n")
	a := assembleSource(t, src, Options{})
	got := a.image.Slice(0x1000, 2)
	assert.Equal(t, []byte{0xEA, 0xDA}, got)
}

func TestPseudoModuleScopesLocalLabels(t *testing.T) {
	src := strings.Join([]string{
		"*= $1000",
		"MODULE ALPHA",
		".loop:",
		"\tDEX",
		"\tBNE .loop",
		"ENDMOD",
		"\tRTS",
	}, "\n")
	a := assembleSource(t, src, Options{})
	got := a.image.Slice(0x1000, 3)
	assert.Equal(t, []byte{0xCA, 0xD0, 0xFD}, got)
	_, ok := a.syms.Lookup("ALPHA.loop")
	assert.True(t, ok)
}

func TestPseudoEndStopsCurrentFileOnly(t *testing.T) {
	src := strings.Join([]string{
		"*= $1000",
		".INCLUDE \"lib.asm\"",
		"\tRTS",
	}, "\n")
	opts := Options{
		Open: memOpener(map[string]string{
			"main.asm": src,
			"lib.asm":  "\tLDA #$01\n.END\n\tLDA #$FF\n",
		}),
	}
	opts.InputFile = "main.asm"
	opts.CPU = CPU6502
	a := NewAssembler(opts)
	errs, fatal := a.Assemble()
	assert.NoError(t, fatal)
	assert.Empty(t, errs)
	got := a.image.Slice(0x1000, 3)
	assert.Equal(t, []byte{0xA9, 0x01, 0x60}, got)
}

func TestPseudoLoadWithoutStoreIsANoop(t *testing.T) {
	opts := Options{
		Open: memOpener(map[string]string{"main.asm": "*= $1000\n.LOAD\n"}),
	}
	opts.InputFile = "main.asm"
	opts.CPU = CPU6502
	a := NewAssembler(opts)
	_, fatal := a.Assemble()
	assert.NoError(t, fatal)
	assert.Empty(t, a.stores)
}

func TestPseudoStoreWithoutPriorLoadOmitsPrefix(t *testing.T) {
	src := strings.Join([]string{
		"*= $2000",
		"\tLDA #$AA",
		".STORE $2000,2,\"out.bin\"",
	}, "\n")
	a := assembleSource(t, src, Options{})
	require.Len(t, a.stores, 1)
	assert.False(t, a.stores[0].Load)
}

func TestPseudoLoadAffectsOnlySubsequentStores(t *testing.T) {
	src := strings.Join([]string{
		"*= $2000",
		"\tLDA #$AA",
		".STORE $2000,2,\"first.bin\"",
		".LOAD",
		".STORE $2000,2,\"second.bin\"",
	}, "\n")
	a := assembleSource(t, src, Options{})
	require.Len(t, a.stores, 2)
	assert.False(t, a.stores[0].Load)
	assert.True(t, a.stores[1].Load)
}
