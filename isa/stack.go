package isa

// stackOps returns the 8 stack-manipulation opcodes: PUSH POP DUP SWAP
// ROT OVER DROP CLEAR.
func stackOps() []Op {
	return []Op{
		funcOp{
			name: "PUSH", category: CategoryStack,
			description: "Load value onto data stack",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				ctx.PushData(args[0])
				return nil
			},
		},
		funcOp{
			name: "POP", category: CategoryStack,
			description: "Remove top stack value",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				_, err := ctx.PopData()
				return err
			},
		},
		funcOp{
			name: "DUP", category: CategoryStack,
			description: "Duplicate stack top",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				top, err := ctx.PeekData()
				if err != nil {
					return ErrStackEmpty
				}
				ctx.PushData(top)
				return nil
			},
		},
		funcOp{
			name: "SWAP", category: CategoryStack,
			description: "Swap top two values",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				s := *ctx.DataStack
				if len(s) < 2 {
					return ErrNotEnoughToSwap
				}
				n := len(s)
				s[n-1], s[n-2] = s[n-2], s[n-1]
				return nil
			},
		},
		funcOp{
			name: "ROT", category: CategoryStack,
			description: "Rotate top three values: abc -> bca",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				s := *ctx.DataStack
				if len(s) < 3 {
					return ErrNotEnoughToRot
				}
				n := len(s)
				a, b, c := s[n-1], s[n-2], s[n-3]
				s[n-3], s[n-2], s[n-1] = a, c, b
				return nil
			},
		},
		funcOp{
			name: "OVER", category: CategoryStack,
			description: "Copy second value over top: ab -> aba",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				s := *ctx.DataStack
				if len(s) < 2 {
					return ErrNotEnoughForOver
				}
				ctx.PushData(s[len(s)-2])
				return nil
			},
		},
		funcOp{
			name: "DROP", category: CategoryStack,
			description: "Remove top value",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				_, err := ctx.PopData()
				if err != nil {
					return ErrStackEmpty
				}
				return nil
			},
		},
		funcOp{
			name: "CLEAR", category: CategoryStack,
			description: "Clear data stack",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				*ctx.DataStack = (*ctx.DataStack)[:0]
				return nil
			},
		},
	}
}
