package xasm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyOperandModes(t *testing.T) {
	cases := []struct {
		mnemonic string
		operand  string
		cpu      CPU
		want     AddrMode
	}{
		{"LDA", "", CPU6502, ModeImplied},
		{"ROL", "A", CPU6502, ModeAccumulator},
		{"LDA", "#$42", CPU6502, ModeImmediate},
		{"LDA", "$20", CPU6502, ModeAbsolute},
		{"LDA", "$20,X", CPU6502, ModeAbsoluteX},
		{"LDA", "$20,Y", CPU6502, ModeAbsoluteY},
		{"LDA", "($20,X)", CPU6502, ModeIndirectX},
		{"LDA", "($20),Y", CPU6502, ModeIndirectY},
		{"LDA", "($20)", CPU65C02, ModeIndirect},
		{"JMP", "($1234)", CPU6502, ModeIndirect},
		{"BNE", "LOOP", CPU6502, ModeRelative},
		{"LDA", "($20)", CPU45GS02, ModeIndirectZ},
		{"JMP", "($1234)", CPU45GS02, ModeIndirect},
		{"LDA", "($20),Z", CPU45GS02, ModeIndirectZ},
		{"LDA", "[$20],Z", CPU45GS02, ModeIndirect32},
	}
	for _, c := range cases {
		got, err := classifyOperand(c.mnemonic, c.operand, c.cpu)
		require.NoError(t, err, "%s %s", c.mnemonic, c.operand)
		assert.Equal(t, c.want, got.Mode, "%s %s", c.mnemonic, c.operand)
	}
}

func TestClassifyOperandTestBitBranch(t *testing.T) {
	got, err := classifyOperand("BBR3", "$20,LOOP", CPU65C02)
	require.NoError(t, err)
	assert.Equal(t, ModeTestBitBranch, got.Mode)
	assert.Equal(t, "$20", got.Expr)
	assert.Equal(t, "LOOP", got.Expr2)
}

func TestClassifyOperandForceWide(t *testing.T) {
	got, err := classifyOperand("LDA", "`$20", CPU6502)
	require.NoError(t, err)
	assert.True(t, got.ForceWide)
	assert.Equal(t, "$20", got.Expr)
}

func TestClassifyOperandRejectsUnmatchedBracket(t *testing.T) {
	_, err := classifyOperand("LDA", "($20", CPU6502)
	require.Error(t, err)
}
