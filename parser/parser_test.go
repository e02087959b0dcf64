package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinymachines/sovereign/parser"
)

func TestParse_EmptySource(t *testing.T) {
	prog, err := parser.NewParser().Parse("")
	require.NoError(t, err)
	assert.Empty(t, prog.Instructions)
	assert.Empty(t, prog.Labels)
}

func TestParse_SimpleInstruction(t *testing.T) {
	prog, err := parser.NewParser().Parse("PUSH #42\nHALT")
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 2)

	assert.Equal(t, "PUSH", prog.Instructions[0].Opcode)
	require.Len(t, prog.Instructions[0].Operands, 1)
	assert.Equal(t, parser.OperandImmediate, prog.Instructions[0].Operands[0].Kind)
	assert.Equal(t, int64(42), prog.Instructions[0].Operands[0].Imm)
}

func TestParse_CaseInsensitiveOpcode(t *testing.T) {
	prog, err := parser.NewParser().Parse("push #1")
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 1)
	assert.Equal(t, "PUSH", prog.Instructions[0].Opcode)
}

func TestParse_LabelAtEndOfFile(t *testing.T) {
	prog, err := parser.NewParser().Parse("PUSH #1\nend:")
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 1)
	idx, ok := prog.ResolveLabel("end")
	require.True(t, ok)
	assert.Equal(t, len(prog.Instructions), idx)
}

func TestParse_DuplicateLabel(t *testing.T) {
	_, err := parser.NewParser().Parse("a:\nPUSH #1\na:\nHALT")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate label")
}

func TestParse_CommentsAndBlankLinesIgnored(t *testing.T) {
	src := "; a comment\n\nPUSH #1 ; trailing comment\n\nHALT\n"
	prog, err := parser.NewParser().Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 2)
}

func TestParse_OperandForms(t *testing.T) {
	prog, err := parser.NewParser().Parse(`PUSH r3 #-7 @ff00 "hi\n" loop`)
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 1)
	ops := prog.Instructions[0].Operands
	require.Len(t, ops, 5)

	assert.Equal(t, parser.OperandRegister, ops[0].Kind)
	assert.Equal(t, uint32(3), ops[0].Reg)

	assert.Equal(t, parser.OperandImmediate, ops[1].Kind)
	assert.Equal(t, int64(-7), ops[1].Imm)

	assert.Equal(t, parser.OperandAddress, ops[2].Kind)
	assert.Equal(t, "ff00", ops[2].Addr)

	assert.Equal(t, parser.OperandString, ops[3].Kind)
	assert.Equal(t, "hi\n", ops[3].Str)

	assert.Equal(t, parser.OperandLabelRef, ops[4].Kind)
	assert.Equal(t, "loop", ops[4].Label)
}

func TestParse_MalformedImmediate(t *testing.T) {
	_, err := parser.NewParser().Parse("PUSH #abc")
	require.Error(t, err)
}

func TestParse_UnterminatedString(t *testing.T) {
	_, err := parser.NewParser().Parse(`PUSH "unterminated`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unterminated string")
}

func TestParseInstruction_Single(t *testing.T) {
	inst, err := parser.NewParser().ParseInstruction("ADD")
	require.NoError(t, err)
	assert.Equal(t, "ADD", inst.Opcode)
	assert.Empty(t, inst.Operands)
}

func TestParseInstruction_RejectsLabel(t *testing.T) {
	_, err := parser.NewParser().ParseInstruction("loop:")
	require.Error(t, err)
}

func TestValidateSyntax(t *testing.T) {
	assert.True(t, parser.NewParser().ValidateSyntax("PUSH #1\nHALT"))
	assert.False(t, parser.NewParser().ValidateSyntax("PUSH #abc"))
}

func TestOperandRoundTrip(t *testing.T) {
	operands := []parser.Operand{
		{Kind: parser.OperandRegister, Reg: 7},
		{Kind: parser.OperandImmediate, Imm: -100},
		{Kind: parser.OperandAddress, Addr: "1a2b"},
		{Kind: parser.OperandString, Str: "line\nbreak"},
		{Kind: parser.OperandLabelRef, Label: "fn"},
	}

	for _, o := range operands {
		inst, err := parser.NewParser().ParseInstruction("PUSH " + o.String())
		require.NoError(t, err)
		require.Len(t, inst.Operands, 1)
		assert.Equal(t, o, inst.Operands[0])
	}
}

func TestParse_JumpProgram(t *testing.T) {
	src := "PUSH #1\nJMP end\nPUSH #2\nend:\nPUSH #3\nHALT"
	prog, err := parser.NewParser().Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Instructions, 5)
	idx, ok := prog.ResolveLabel("end")
	require.True(t, ok)
	assert.Equal(t, 3, idx)
}
