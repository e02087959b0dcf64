package parser

import "fmt"

// OperandKind identifies which of the five operand forms a parsed Operand is.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandAddress
	OperandString
	OperandLabelRef
)

func (k OperandKind) String() string {
	switch k {
	case OperandRegister:
		return "register"
	case OperandImmediate:
		return "immediate"
	case OperandAddress:
		return "address"
	case OperandString:
		return "string"
	case OperandLabelRef:
		return "label_ref"
	default:
		return "unknown"
	}
}

// Operand is a single AST leaf: a register, immediate, address, string
// literal, or label reference. Exactly one of the fields is meaningful,
// selected by Kind.
type Operand struct {
	Kind   OperandKind
	Reg    uint32 // OperandRegister
	Imm    int64  // OperandImmediate
	Addr   string // OperandAddress: hex text, no leading '@'
	Str    string // OperandString: unescaped contents, no quotes
	Label  string // OperandLabelRef
}

// String renders the operand back in surface syntax (round-trips with the
// lexer/parser: parsing Operand.String() yields an equal Operand).
func (o Operand) String() string {
	switch o.Kind {
	case OperandRegister:
		return fmt.Sprintf("r%d", o.Reg)
	case OperandImmediate:
		return fmt.Sprintf("#%d", o.Imm)
	case OperandAddress:
		return "@" + o.Addr
	case OperandString:
		return `"` + EscapeString(o.Str) + `"`
	case OperandLabelRef:
		return o.Label
	default:
		return "<invalid operand>"
	}
}
