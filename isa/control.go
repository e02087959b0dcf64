package isa

// controlOps returns the 8 control-flow opcodes: JMP JZ JNZ CALL RET FORK
// JOIN HALT. Jump targets write ProgramCounter = target-1 because the
// VM's fetch loop increments PC after every dispatched instruction. FORK
// and JOIN are validated but intentionally no-ops — true concurrency
// primitives are out of scope for this instruction set. HALT is handled
// specially by the VM's Execute loop before dispatch, so its Execute is not
// reached there; it is registered so lookups and validation still work, and
// a single HALT run through VM.ExecuteInstruction executes it as a no-op.
func controlOps() []Op {
	jumpTarget := func(args []Value) (int, error) {
		if args[0].Kind != KindAddr && args[0].Kind != KindInt {
			return 0, ErrTypeMismatch
		}
		if args[0].Kind == KindAddr {
			return args[0].Addr, nil
		}
		return int(args[0].Int), nil
	}

	return []Op{
		funcOp{
			name: "JMP", category: CategoryControl,
			description: "Unconditional jump",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				target, err := jumpTarget(args)
				if err != nil {
					return err
				}
				ctx.ProgramCounter = target - 1
				return nil
			},
		},
		funcOp{
			name: "JZ", category: CategoryControl,
			description: "Jump if top of stack is zero",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				top, err := ctx.PeekData()
				if err != nil {
					return ErrStackEmpty
				}
				if !top.IsZero() {
					return nil
				}
				target, err := jumpTarget(args)
				if err != nil {
					return err
				}
				ctx.ProgramCounter = target - 1
				return nil
			},
		},
		funcOp{
			name: "JNZ", category: CategoryControl,
			description: "Jump if top of stack is not zero",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				top, err := ctx.PeekData()
				if err != nil {
					return ErrStackEmpty
				}
				if top.IsZero() {
					return nil
				}
				target, err := jumpTarget(args)
				if err != nil {
					return err
				}
				ctx.ProgramCounter = target - 1
				return nil
			},
		},
		funcOp{
			name: "CALL", category: CategoryControl,
			description: "Function invocation",
			validate:    argCount(1),
			execute: func(ctx *ExecutionContext, args []Value) error {
				target, err := jumpTarget(args)
				if err != nil {
					return err
				}
				ctx.PushControl(AddrVal(ctx.ProgramCounter + 1))
				ctx.ProgramCounter = target - 1
				return nil
			},
		},
		funcOp{
			name: "RET", category: CategoryControl,
			description: "Return from function",
			validate:    argCount(0),
			execute: func(ctx *ExecutionContext, _ []Value) error {
				ret, err := ctx.PopControl()
				if err != nil {
					return err
				}
				ctx.ProgramCounter = ret.Addr - 1
				return nil
			},
		},
		funcOp{
			name: "FORK", category: CategoryControl,
			description: "Parallel execution split (reserved, no-op)",
			validate:    argCount(1),
			execute: func(_ *ExecutionContext, _ []Value) error {
				return nil
			},
		},
		funcOp{
			name: "JOIN", category: CategoryControl,
			description: "Wait for forked paths (reserved, no-op)",
			validate:    argCount(0),
			execute: func(_ *ExecutionContext, _ []Value) error {
				return nil
			},
		},
		funcOp{
			name: "HALT", category: CategoryControl,
			description: "Stop execution",
			validate:    argCount(0),
			execute: func(_ *ExecutionContext, _ []Value) error {
				return nil
			},
		},
	}
}
