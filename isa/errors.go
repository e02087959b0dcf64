package isa

import "errors"

var (
	ErrStackUnderflow        = errors.New("Data stack underflow")
	ErrStackEmpty            = errors.New("Data stack empty")
	ErrControlStackUnderflow = errors.New("Control stack underflow")
	ErrDivisionByZero        = errors.New("Division by zero")
	ErrTypeMismatch          = errors.New("Operand type mismatch")
	ErrWrongArgCount         = errors.New("Wrong number of arguments")

	// ErrNotEnoughToSwap, ErrNotEnoughToRot, and ErrNotEnoughForOver give
	// SWAP/ROT/OVER's underflow checks the same per-operation wording as
	// the rest of the arithmetic/stack error taxonomy.
	ErrNotEnoughToSwap  = errors.New("Not enough values on stack to swap")
	ErrNotEnoughToRot   = errors.New("Not enough values on stack to rotate")
	ErrNotEnoughForOver = errors.New("Not enough values on stack for over")

	// Per-operation underflow messages for the binary arithmetic/bitwise
	// ops, each naming the operation it guards rather than a generic
	// stack-underflow message.
	ErrNotEnoughForAddition       = errors.New("Not enough values on stack for addition")
	ErrNotEnoughForSubtraction    = errors.New("Not enough values on stack for subtraction")
	ErrNotEnoughForMultiplication = errors.New("Not enough values on stack for multiplication")
	ErrNotEnoughForDivision       = errors.New("Not enough values on stack for division")
	ErrNotEnoughForAnd            = errors.New("Not enough values on stack for AND")
	ErrNotEnoughForOr             = errors.New("Not enough values on stack for OR")
	ErrNotEnoughForXor            = errors.New("Not enough values on stack for XOR")
	ErrStackEmptyForNot           = errors.New("Data stack empty for NOT")

	errHooksNotConfigured = errors.New("no hooks configured")
)
