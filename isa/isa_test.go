package isa_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tinymachines/sovereign/isa"
)

func newCtx() (*isa.ExecutionContext, *[]isa.Value, *[]isa.Value) {
	data := []isa.Value{}
	control := []isa.Value{}
	return &isa.ExecutionContext{
		DataStack:    &data,
		ControlStack: &control,
		Memory:       make(map[string]isa.Value),
		Registers:    make(map[string]isa.Value),
		Ctx:          context.Background(),
		Hooks:        isa.NoopHooks{},
	}, &data, &control
}

func mustOp(t *testing.T, table *isa.Table, name string) isa.Op {
	t.Helper()
	op, ok := table.Lookup(name)
	require.True(t, ok, "opcode %s should be registered", name)
	return op
}

func TestTable_AllThirtyTwoOpcodesRegistered(t *testing.T) {
	table := isa.NewTable()
	names := []string{
		"PUSH", "POP", "DUP", "SWAP", "ROT", "OVER", "DROP", "CLEAR",
		"ADD", "SUB", "MUL", "DIV", "AND", "OR", "XOR", "NOT",
		"JMP", "JZ", "JNZ", "CALL", "RET", "FORK", "JOIN", "HALT",
		"LOAD", "STORE", "FOPEN", "FREAD", "FWRITE", "FCLOSE", "LLMGEN", "EVOLVE",
	}
	assert.Len(t, names, 32)
	for _, n := range names {
		mustOp(t, table, n)
	}
	assert.Len(t, table.ListAll(), 32)
}

func TestTable_LookupCaseInsensitive(t *testing.T) {
	table := isa.NewTable()
	_, ok := table.Lookup("push")
	assert.True(t, ok)
}

func TestTable_ListByCategory(t *testing.T) {
	table := isa.NewTable()
	categories := []isa.Category{
		isa.CategoryStack, isa.CategoryArithmetic, isa.CategoryControl, isa.CategoryMemory,
	}
	for _, cat := range categories {
		assert.Len(t, table.List(cat), 8, "category %s should have 8 opcodes", cat)
	}
}

func TestStackOps_PushPopDup(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()

	require.NoError(t, mustOp(t, table, "PUSH").Execute(ctx, []isa.Value{isa.Int64(5)}))
	require.NoError(t, mustOp(t, table, "DUP").Execute(ctx, nil))
	assert.Equal(t, []isa.Value{isa.Int64(5), isa.Int64(5)}, *data)

	require.NoError(t, mustOp(t, table, "POP").Execute(ctx, nil))
	assert.Equal(t, []isa.Value{isa.Int64(5)}, *data)
}

func TestStackOps_PopUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, _, _ := newCtx()
	err := mustOp(t, table, "POP").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrStackUnderflow)
}

func TestStackOps_Swap(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.Int64(2)}
	require.NoError(t, mustOp(t, table, "SWAP").Execute(ctx, nil))
	assert.Equal(t, []isa.Value{isa.Int64(2), isa.Int64(1)}, *data)
}

func TestStackOps_Rot(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	// bottom-to-top: 1, 2, 3(top). a=pop()=3, b=pop()=2, c=pop()=1;
	// result is extend([a, c, b]) = [3, 1, 2].
	*data = []isa.Value{isa.Int64(1), isa.Int64(2), isa.Int64(3)}
	require.NoError(t, mustOp(t, table, "ROT").Execute(ctx, nil))
	assert.Equal(t, []isa.Value{isa.Int64(3), isa.Int64(1), isa.Int64(2)}, *data)
}

func TestStackOps_Over(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.Int64(2)}
	require.NoError(t, mustOp(t, table, "OVER").Execute(ctx, nil))
	assert.Equal(t, []isa.Value{isa.Int64(1), isa.Int64(2), isa.Int64(1)}, *data)
}

func TestStackOps_SwapUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1)}
	err := mustOp(t, table, "SWAP").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrNotEnoughToSwap)
}

func TestStackOps_RotUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.Int64(2)}
	err := mustOp(t, table, "ROT").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrNotEnoughToRot)
}

func TestStackOps_OverUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1)}
	err := mustOp(t, table, "OVER").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrNotEnoughForOver)
}

func TestStackOps_Clear(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.Int64(2)}
	require.NoError(t, mustOp(t, table, "CLEAR").Execute(ctx, nil))
	assert.Empty(t, *data)
}

func TestArithmeticOps(t *testing.T) {
	table := isa.NewTable()

	tests := []struct {
		name   string
		op     string
		a, b   int64
		result int64
	}{
		{"add", "ADD", 2, 3, 5},
		{"sub", "SUB", 5, 3, 2},
		{"mul", "MUL", 4, 3, 12},
		{"div positive", "DIV", 7, 2, 3},
		{"div floor negative", "DIV", -7, 2, -4},
		{"and", "AND", 0b1100, 0b1010, 0b1000},
		{"or", "OR", 0b1100, 0b1010, 0b1110},
		{"xor", "XOR", 0b1100, 0b1010, 0b0110},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, data, _ := newCtx()
			*data = []isa.Value{isa.Int64(tt.a), isa.Int64(tt.b)}
			require.NoError(t, mustOp(t, table, tt.op).Execute(ctx, nil))
			require.Len(t, *data, 1)
			assert.Equal(t, tt.result, (*data)[0].Int)
		})
	}
}

func TestArithmeticOps_DivisionByZero(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.Int64(0)}
	err := mustOp(t, table, "DIV").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrDivisionByZero)
}

func TestArithmeticOps_TypeMismatch(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(1), isa.String("nope")}
	err := mustOp(t, table, "ADD").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrTypeMismatch)
}

func TestArithmeticOps_Not(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(0)}
	require.NoError(t, mustOp(t, table, "NOT").Execute(ctx, nil))
	assert.Equal(t, int64(-1), (*data)[0].Int)
}

func TestArithmeticOps_NotUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, _, _ := newCtx()
	err := mustOp(t, table, "NOT").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrStackEmptyForNot)
}

func TestArithmeticOps_Underflow(t *testing.T) {
	table := isa.NewTable()

	tests := []struct {
		op  string
		err error
	}{
		{"ADD", isa.ErrNotEnoughForAddition},
		{"SUB", isa.ErrNotEnoughForSubtraction},
		{"MUL", isa.ErrNotEnoughForMultiplication},
		{"DIV", isa.ErrNotEnoughForDivision},
		{"AND", isa.ErrNotEnoughForAnd},
		{"OR", isa.ErrNotEnoughForOr},
		{"XOR", isa.ErrNotEnoughForXor},
	}

	for _, tt := range tests {
		t.Run(tt.op, func(t *testing.T) {
			ctx, data, _ := newCtx()
			*data = []isa.Value{isa.Int64(1)}
			err := mustOp(t, table, tt.op).Execute(ctx, nil)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestControlOps_Jmp(t *testing.T) {
	table := isa.NewTable()
	ctx, _, _ := newCtx()
	ctx.ProgramCounter = 0
	require.NoError(t, mustOp(t, table, "JMP").Execute(ctx, []isa.Value{isa.AddrVal(5)}))
	assert.Equal(t, 4, ctx.ProgramCounter) // target-1, loop increments after
}

func TestControlOps_JzTakenWhenZero(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(0)}
	require.NoError(t, mustOp(t, table, "JZ").Execute(ctx, []isa.Value{isa.AddrVal(10)}))
	assert.Equal(t, 9, ctx.ProgramCounter)
	assert.Len(t, *data, 1, "JZ must not consume the tested value")
}

func TestControlOps_JzNotTakenWhenNonZero(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	*data = []isa.Value{isa.Int64(7)}
	ctx.ProgramCounter = 3
	require.NoError(t, mustOp(t, table, "JZ").Execute(ctx, []isa.Value{isa.AddrVal(10)}))
	assert.Equal(t, 3, ctx.ProgramCounter)
}

func TestControlOps_CallAndRet(t *testing.T) {
	table := isa.NewTable()
	ctx, _, control := newCtx()
	ctx.ProgramCounter = 2

	require.NoError(t, mustOp(t, table, "CALL").Execute(ctx, []isa.Value{isa.AddrVal(10)}))
	assert.Equal(t, 9, ctx.ProgramCounter)
	require.Len(t, *control, 1)
	assert.Equal(t, 3, (*control)[0].Addr)

	require.NoError(t, mustOp(t, table, "RET").Execute(ctx, nil))
	assert.Equal(t, 2, ctx.ProgramCounter)
	assert.Empty(t, *control)
}

func TestControlOps_RetUnderflow(t *testing.T) {
	table := isa.NewTable()
	ctx, _, _ := newCtx()
	err := mustOp(t, table, "RET").Execute(ctx, nil)
	assert.ErrorIs(t, err, isa.ErrControlStackUnderflow)
}

func TestControlOps_ForkJoinAreNoops(t *testing.T) {
	table := isa.NewTable()
	ctx, data, control := newCtx()
	require.NoError(t, mustOp(t, table, "FORK").Execute(ctx, []isa.Value{isa.AddrVal(1)}))
	require.NoError(t, mustOp(t, table, "JOIN").Execute(ctx, nil))
	assert.Empty(t, *data)
	assert.Empty(t, *control)
}

func TestMemoryOps_LoadStore(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()

	*data = []isa.Value{isa.Int64(99)}
	require.NoError(t, mustOp(t, table, "STORE").Execute(ctx, []isa.Value{isa.String("x")}))
	assert.Empty(t, *data)

	require.NoError(t, mustOp(t, table, "LOAD").Execute(ctx, []isa.Value{isa.String("x")}))
	assert.Equal(t, isa.Int64(99), (*data)[0])
}

func TestMemoryOps_LoadUnsetAddressDefaultsZero(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	require.NoError(t, mustOp(t, table, "LOAD").Execute(ctx, []isa.Value{isa.String("missing")}))
	assert.Equal(t, isa.Int64(0), (*data)[0])
}

type stubHooks struct {
	genErr error
}

func (s stubHooks) Generate(_ context.Context, prompt string) (string, error) {
	if s.genErr != nil {
		return "", s.genErr
	}
	return "generated:" + prompt, nil
}

func (s stubHooks) Evolve(_ context.Context, code, errMsg string) (isa.EvolutionResult, error) {
	return isa.EvolutionResult{Success: true, FixedCode: code + "-fixed-for-" + errMsg}, nil
}

func TestMemoryOps_LLMGenSuccess(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	ctx.Hooks = stubHooks{}

	require.NoError(t, mustOp(t, table, "LLMGEN").Execute(ctx, []isa.Value{isa.String("write a function")}))
	require.Len(t, *data, 1)
	assert.Equal(t, "generated:write a function", (*data)[0].Str)
}

func TestMemoryOps_LLMGenFailureProducesSentinel(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	ctx.Hooks = stubHooks{genErr: errors.New("model unavailable")}

	require.NoError(t, mustOp(t, table, "LLMGEN").Execute(ctx, []isa.Value{isa.String("prompt")}))
	require.Len(t, *data, 1)
	assert.Contains(t, (*data)[0].Str, "LLMGEN_ERROR:")
}

func TestMemoryOps_EvolveSuccess(t *testing.T) {
	table := isa.NewTable()
	ctx, data, _ := newCtx()
	ctx.Hooks = stubHooks{}
	*data = []isa.Value{isa.String("buggy code")}

	require.NoError(t, mustOp(t, table, "EVOLVE").Execute(ctx, []isa.Value{isa.String("NPE at line 3")}))
	require.Len(t, *data, 1)
	assert.Contains(t, (*data)[0].Str, "buggy code-fixed-for-NPE at line 3")
}

func TestNoopHooks_AlwaysErrors(t *testing.T) {
	h := isa.NoopHooks{}
	_, err := h.Generate(context.Background(), "x")
	assert.Error(t, err)
	_, err = h.Evolve(context.Background(), "x", "y")
	assert.Error(t, err)
}
