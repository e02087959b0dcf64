package isa

import "strings"

// Category groups the 32 opcodes into the four families the instruction
// set is organized around.
type Category int

const (
	CategoryStack Category = iota
	CategoryArithmetic
	CategoryControl
	CategoryMemory
)

func (c Category) String() string {
	switch c {
	case CategoryStack:
		return "stack"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryControl:
		return "control"
	case CategoryMemory:
		return "memory"
	default:
		return "unknown"
	}
}

// Op is a single opcode's behavior: argument validation plus execution
// against an ExecutionContext.
type Op interface {
	Name() string
	Category() Category
	Description() string
	ValidateArgs(args []Value) bool
	Execute(ctx *ExecutionContext, args []Value) error
}

// Table is a name-keyed registry of Ops. It holds no execution state, so
// a single Table could be shared across VM instances, though NewVM builds
// its own for simplicity.
type Table struct {
	ops map[string]Op
}

// NewTable returns a Table pre-populated with the 32 built-in opcodes.
func NewTable() *Table {
	t := &Table{ops: make(map[string]Op, 32)}
	for _, op := range builtinOps() {
		t.Register(op)
	}
	return t
}

// Register adds or replaces an Op by name (case-insensitive).
func (t *Table) Register(op Op) {
	t.ops[strings.ToUpper(op.Name())] = op
}

// Lookup returns the Op bound to name, if any.
func (t *Table) Lookup(name string) (Op, bool) {
	op, ok := t.ops[strings.ToUpper(name)]
	return op, ok
}

// List returns every registered Op in the given category. Use ListAll for
// every Op regardless of category.
func (t *Table) List(cat Category) []Op {
	var out []Op
	for _, op := range t.ops {
		if op.Category() == cat {
			out = append(out, op)
		}
	}
	return out
}

// ListAll returns every registered Op.
func (t *Table) ListAll() []Op {
	out := make([]Op, 0, len(t.ops))
	for _, op := range t.ops {
		out = append(out, op)
	}
	return out
}

func builtinOps() []Op {
	ops := make([]Op, 0, 32)
	ops = append(ops, stackOps()...)
	ops = append(ops, arithmeticOps()...)
	ops = append(ops, controlOps()...)
	ops = append(ops, memoryOps()...)
	return ops
}
