package vm

import (
	"context"
	"fmt"

	"github.com/tinymachines/sovereign/isa"
	"github.com/tinymachines/sovereign/parser"
)

// VM is a single Sovereign execution: its own stacks, memory, registers,
// and resource-accounting counters. Multiple VMs share nothing and are
// safe to run on separate goroutines.
type VM struct {
	State   *State
	Config  Config
	Table   *isa.Table
	Hooks   isa.Hooks
	Program *parser.Program
}

// NewVM constructs a VM bound to cfg's resource bounds. A nil hooks value
// is replaced with isa.NoopHooks{} so LLMGEN/EVOLVE never see a nil
// interface.
func NewVM(cfg Config, hooks isa.Hooks) *VM {
	if hooks == nil {
		hooks = isa.NoopHooks{}
	}
	return &VM{
		State:  NewState(),
		Config: cfg,
		Table:  isa.NewTable(),
		Hooks:  hooks,
	}
}

// PushData pushes directly onto the data stack, honoring the stack-size
// and memory-usage bounds.
func (v *VM) PushData(val isa.Value) error {
	if len(v.State.DataStack)+1 > v.Config.MaxStackSize {
		return newError("PUSH", fmt.Sprintf("Data stack push would exceed maximum (max: %d)", v.Config.MaxStackSize))
	}
	if v.State.MemoryUsage+v.cost(val) > v.Config.MaxMemorySize {
		return newError("PUSH", fmt.Sprintf("Memory usage exceeded maximum (max: %d bytes)", v.Config.MaxMemorySize))
	}
	v.State.DataStack = append(v.State.DataStack, val)
	v.State.MemoryUsage += v.cost(val)
	return nil
}

// PopData pops the top of the data stack.
func (v *VM) PopData() (isa.Value, error) {
	n := len(v.State.DataStack)
	if n == 0 {
		return isa.Value{}, newError("POP", "Data stack underflow")
	}
	val := v.State.DataStack[n-1]
	v.State.DataStack = v.State.DataStack[:n-1]
	v.State.MemoryUsage -= v.cost(val)
	return val, nil
}

// PeekData returns the top of the data stack without removing it.
func (v *VM) PeekData() (isa.Value, error) {
	n := len(v.State.DataStack)
	if n == 0 {
		return isa.Value{}, newError("PEEK", "Data stack empty")
	}
	return v.State.DataStack[n-1], nil
}

// PushControl pushes directly onto the control stack, honoring the
// stack-size and call-depth bounds.
func (v *VM) PushControl(val isa.Value) error {
	if len(v.State.ControlStack)+1 > v.Config.MaxStackSize {
		return newError("CALL", fmt.Sprintf("Control stack push would exceed maximum (max: %d)", v.Config.MaxStackSize))
	}
	if len(v.State.ControlStack)+1 > v.Config.MaxCallDepth {
		return newError("CALL", fmt.Sprintf("Call depth would exceed maximum (max: %d)", v.Config.MaxCallDepth))
	}
	v.State.ControlStack = append(v.State.ControlStack, val)
	v.State.MemoryUsage += v.cost(val)
	return nil
}

// PopControl pops the top of the control stack.
func (v *VM) PopControl() (isa.Value, error) {
	n := len(v.State.ControlStack)
	if n == 0 {
		return isa.Value{}, newError("RET", "Control stack underflow")
	}
	val := v.State.ControlStack[n-1]
	v.State.ControlStack = v.State.ControlStack[:n-1]
	v.State.MemoryUsage -= v.cost(val)
	return val, nil
}

// SetMemory writes addr in the VM's memory map, honoring the memory-usage
// bound and adjusting the running usage counter by the net delta (so
// overwriting a key with a smaller value frees the difference).
func (v *VM) SetMemory(addr string, val isa.Value) error {
	oldCost := 0
	if old, ok := v.State.Memory[addr]; ok {
		oldCost = v.cost(old)
	}
	newTotal := v.State.MemoryUsage - oldCost + v.cost(val)
	if newTotal > v.Config.MaxMemorySize {
		return newError("STORE", fmt.Sprintf("Memory usage exceeded maximum (max: %d bytes)", v.Config.MaxMemorySize))
	}
	v.State.Memory[addr] = val
	v.State.MemoryUsage = newTotal
	return nil
}

// GetMemory reads addr, defaulting to Int64(0) when unset.
func (v *VM) GetMemory(addr string) isa.Value {
	if val, ok := v.State.Memory[addr]; ok {
		return val
	}
	return isa.Int64(0)
}

func (v *VM) cost(val isa.Value) int {
	if v.Config.RealisticMemoryAccounting {
		return val.RealisticMemoryCost()
	}
	return val.MemoryCost()
}

// LoadProgram installs program into the VM and resets execution state,
// rejecting any instruction whose opcode isn't registered in the table.
func (v *VM) LoadProgram(program *parser.Program) error {
	for _, inst := range program.Instructions {
		if _, ok := v.Table.Lookup(inst.Opcode); !ok {
			return newError(inst.Opcode, fmt.Sprintf("Unknown opcode: %s", inst.Opcode))
		}
	}

	v.Program = program
	v.State.ProgramCounter = 0
	v.State.Running = false
	v.State.ErrorState = ""
	return nil
}

// Execute loads and runs program to completion: HALT, falling off the end
// of the instruction stream, or a runtime error.
func (v *VM) Execute(ctx context.Context, program *parser.Program) error {
	if err := v.LoadProgram(program); err != nil {
		return err
	}

	v.State.Running = true
	v.State.ProgramCounter = 0

	for v.State.Running && v.State.ProgramCounter < len(v.Program.Instructions) {
		inst := v.Program.Instructions[v.State.ProgramCounter]
		if inst.Opcode == "HALT" {
			v.State.Running = false
			break
		}

		if v.State.ExecutionSteps >= v.Config.MaxExecutionSteps {
			err := newError(inst.Opcode, fmt.Sprintf("Execution exceeded maximum steps (max: %d)", v.Config.MaxExecutionSteps))
			v.fail(err)
			return err
		}
		v.State.ExecutionSteps++

		if err := v.executeInstruction(ctx, inst); err != nil {
			v.fail(err)
			return err
		}

		v.State.ProgramCounter++
	}

	return nil
}

// ExecuteInstruction runs a single instruction against the VM's current
// state, without advancing through a loaded program — used for one-shot
// (REPL-style) execution by the interpreter facade.
func (v *VM) ExecuteInstruction(ctx context.Context, inst parser.Instruction) error {
	if err := v.executeInstruction(ctx, inst); err != nil {
		v.fail(err)
		return err
	}
	return nil
}

func (v *VM) fail(err error) {
	v.State.Running = false
	v.State.ErrorState = err.Error()
}

func (v *VM) executeInstruction(ctx context.Context, inst parser.Instruction) error {
	op, ok := v.Table.Lookup(inst.Opcode)
	if !ok {
		return newError(inst.Opcode, fmt.Sprintf("Unknown opcode: %s", inst.Opcode))
	}

	args := make([]isa.Value, len(inst.Operands))
	for i, operand := range inst.Operands {
		val, err := v.resolveOperand(operand)
		if err != nil {
			return err
		}
		args[i] = val
	}

	if !op.ValidateArgs(args) {
		return newError(inst.Opcode, fmt.Sprintf("Invalid arguments for %s", inst.Opcode))
	}

	execCtx := &isa.ExecutionContext{
		DataStack:      &v.State.DataStack,
		ControlStack:   &v.State.ControlStack,
		Memory:         v.State.Memory,
		Registers:      v.State.Registers,
		ProgramCounter: v.State.ProgramCounter,
		Ctx:            ctx,
		Hooks:          v.Hooks,
	}

	if err := op.Execute(execCtx, args); err != nil {
		return newError(inst.Opcode, err.Error())
	}

	v.State.ProgramCounter = execCtx.ProgramCounter

	if err := v.enforceBoundsAfterExecute(inst.Opcode); err != nil {
		return err
	}

	return nil
}

// enforceBoundsAfterExecute is the dispatch-loop counterpart to the bound
// checks on the VM's direct PushData/PushControl/SetMemory accessors: an
// opcode's Execute mutates the shared stacks/memory directly (through
// ExecutionContext's borrowed references, not through those accessors),
// so growth is checked and the running memory-usage counter recomputed
// once execution returns, rather than before each individual mutation.
func (v *VM) enforceBoundsAfterExecute(opcode string) error {
	if len(v.State.DataStack) > v.Config.MaxStackSize {
		return newError(opcode, fmt.Sprintf("Data stack push would exceed maximum (max: %d)", v.Config.MaxStackSize))
	}
	if len(v.State.ControlStack) > v.Config.MaxStackSize {
		return newError(opcode, fmt.Sprintf("Control stack push would exceed maximum (max: %d)", v.Config.MaxStackSize))
	}
	if len(v.State.ControlStack) > v.Config.MaxCallDepth {
		return newError(opcode, fmt.Sprintf("Call depth would exceed maximum (max: %d)", v.Config.MaxCallDepth))
	}

	total := 0
	for _, val := range v.State.DataStack {
		total += v.cost(val)
	}
	for _, val := range v.State.ControlStack {
		total += v.cost(val)
	}
	for _, val := range v.State.Memory {
		total += v.cost(val)
	}
	if total > v.Config.MaxMemorySize {
		return newError(opcode, fmt.Sprintf("Memory usage exceeded maximum (max: %d bytes)", v.Config.MaxMemorySize))
	}
	v.State.MemoryUsage = total

	return nil
}

// resolveOperand converts a parsed Operand into the tagged Value the
// opcode table operates on: immediates and strings pass through directly,
// registers read the current register file, addresses become string
// memory keys, and label references resolve through the program's label
// table into an instruction-index address.
func (v *VM) resolveOperand(operand parser.Operand) (isa.Value, error) {
	switch operand.Kind {
	case parser.OperandImmediate:
		return isa.Int64(operand.Imm), nil
	case parser.OperandString:
		return isa.String(operand.Str), nil
	case parser.OperandAddress:
		return isa.String(operand.Addr), nil
	case parser.OperandRegister:
		name := fmt.Sprintf("r%d", operand.Reg)
		if val, ok := v.State.Registers[name]; ok {
			return val, nil
		}
		return isa.Int64(0), nil
	case parser.OperandLabelRef:
		if v.Program == nil {
			return isa.Value{}, newError("", fmt.Sprintf("Undefined label: %s", operand.Label))
		}
		idx, ok := v.Program.ResolveLabel(operand.Label)
		if !ok {
			return isa.Value{}, newError("", fmt.Sprintf("Undefined label: %s", operand.Label))
		}
		return isa.AddrVal(idx), nil
	default:
		return isa.Value{}, newError("", "unknown operand kind")
	}
}

// Reset returns the VM to a fresh, empty state, discarding the loaded
// program.
func (v *VM) Reset() {
	v.State = NewState()
	v.Program = nil
}

// DumpState returns a copied snapshot of the VM's current state, safe to
// retain without aliasing live execution data.
func (v *VM) DumpState() Snapshot {
	return v.State.snapshot(v.Config)
}
