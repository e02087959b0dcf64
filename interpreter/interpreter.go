// Package interpreter composes the parser and VM into the single facade
// an embedder talks to: source in, state or an error out.
package interpreter

import (
	"context"
	"fmt"
	"os"

	"github.com/tinymachines/sovereign/isa"
	"github.com/tinymachines/sovereign/parser"
	"github.com/tinymachines/sovereign/vm"
)

// Interpreter is a parser plus a bound VM. The parser is stateless, so a
// single *parser.Parser is reused across Run calls.
type Interpreter struct {
	parser *parser.Parser
	vm     *vm.VM
}

// New returns an Interpreter whose VM is configured with cfg and hooks.
func New(cfg vm.Config, hooks isa.Hooks) *Interpreter {
	return &Interpreter{
		parser: parser.NewParser(),
		vm:     vm.NewVM(cfg, hooks),
	}
}

// Run parses source into a program and executes it to completion. Parse
// and runtime failures are returned unchanged, as *parser.Error and
// *vm.Error respectively.
func (it *Interpreter) Run(ctx context.Context, source string) error {
	program, err := it.parser.Parse(source)
	if err != nil {
		return err
	}
	if err := it.vm.Execute(ctx, program); err != nil {
		return err
	}
	return nil
}

// RunFile reads and parses path, then executes it to completion.
func (it *Interpreter) RunFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read %s: %w", path, err)
	}
	program, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	if err := it.vm.Execute(ctx, program); err != nil {
		return err
	}
	return nil
}

// ExecuteSingle parses and runs one instruction against the VM's current
// state, without loading a program — the facade's REPL-mode entry point.
func (it *Interpreter) ExecuteSingle(ctx context.Context, line string) error {
	inst, err := it.parser.ParseInstruction(line)
	if err != nil {
		return err
	}
	if err := it.vm.ExecuteInstruction(ctx, *inst); err != nil {
		return err
	}
	return nil
}

// DumpState returns a snapshot of the underlying VM's state.
func (it *Interpreter) DumpState() vm.Snapshot {
	return it.vm.DumpState()
}

// Reset returns the underlying VM to a fresh, empty state.
func (it *Interpreter) Reset() {
	it.vm.Reset()
}
