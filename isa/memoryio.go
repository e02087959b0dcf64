package isa

import "fmt"

// memoryOps returns the 8 memory/IO opcodes: LOAD STORE FOPEN FREAD
// FWRITE FCLOSE LLMGEN EVOLVE. The file operations are validated but left
// as reserved no-ops — no file descriptor table exists yet in this
// instruction set. LLMGEN and EVOLVE are the two hook-backed opcodes: a
// hook failure is converted to a sentinel string pushed onto the data
// stack rather than aborting execution, so a program can inspect and
// react to it.
func memoryOps() []Op {
	return []Op{
		funcOp{
			name: "LOAD", category: CategoryMemory,
			description: "Read from memory address",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				addr, err := addressOf(args[0])
				if err != nil {
					return err
				}
				v, ok := ctx.Memory[addr]
				if !ok {
					v = Int64(0)
				}
				ctx.PushData(v)
				return nil
			},
		},
		funcOp{
			name: "STORE", category: CategoryMemory,
			description: "Write to memory address",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				addr, err := addressOf(args[0])
				if err != nil {
					return err
				}
				v, err := ctx.PopData()
				if err != nil {
					return ErrStackEmpty
				}
				ctx.Memory[addr] = v
				return nil
			},
		},
		funcOp{
			name: "FOPEN", category: CategoryMemory,
			description: "Open file (reserved, no-op)",
			validate:    argCountAtLeast(1),
			execute: func(_ *ExecutionContext, _ []Value) error { return nil },
		},
		funcOp{
			name: "FREAD", category: CategoryMemory,
			description: "Read from file (reserved, no-op)",
			validate:    argCount(0),
			execute: func(_ *ExecutionContext, _ []Value) error { return nil },
		},
		funcOp{
			name: "FWRITE", category: CategoryMemory,
			description: "Write to file (reserved, no-op)",
			validate:    argCount(0),
			execute: func(_ *ExecutionContext, _ []Value) error { return nil },
		},
		funcOp{
			name: "FCLOSE", category: CategoryMemory,
			description: "Close file (reserved, no-op)",
			validate:    argCount(0),
			execute: func(_ *ExecutionContext, _ []Value) error { return nil },
		},
		funcOp{
			name: "LLMGEN", category: CategoryMemory,
			description: "Generate via local LLM",
			validate: func(args []Value) bool {
				return len(args) == 1 && args[0].Kind == KindString
			},
			execute: func(ctx *ExecutionContext, args []Value) error {
				hooks := ctx.Hooks
				if hooks == nil {
					hooks = NoopHooks{}
				}
				result, err := hooks.Generate(ctx.Ctx, args[0].Str)
				if err != nil {
					ctx.PushData(String(fmt.Sprintf("LLMGEN_ERROR: %v", err)))
					return nil
				}
				ctx.PushData(String(result))
				return nil
			},
		},
		funcOp{
			name: "EVOLVE", category: CategoryMemory,
			description: "Trigger self-improvement",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				hooks := ctx.Hooks
				if hooks == nil {
					hooks = NoopHooks{}
				}
				code, err := ctx.PopData()
				if err != nil {
					return ErrStackEmpty
				}
				result, err := hooks.Evolve(ctx.Ctx, code.String(), args[0].String())
				if err != nil {
					ctx.PushData(String(fmt.Sprintf("EVOLVE_FAILED: %v", err)))
					return nil
				}
				ctx.PushData(String(result.FixedCode))
				return nil
			},
		},
	}
}

func addressOf(v Value) (string, error) {
	switch v.Kind {
	case KindString:
		return v.Str, nil
	case KindAddr:
		return fmt.Sprintf("%d", v.Addr), nil
	default:
		return "", ErrTypeMismatch
	}
}
