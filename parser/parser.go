package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	identPattern     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	registerPattern  = regexp.MustCompile(`^[rR]([0-9]+)$`)
	immediatePattern = regexp.MustCompile(`^#([+-]?[0-9]+)$`)
	addressPattern   = regexp.MustCompile(`^@([a-fA-F0-9]+)$`)
)

// Parser turns Sovereign assembly source into a Program. It holds no
// state between calls — Parse, ParseInstruction, and ValidateSyntax are
// all independently usable entry points.
type Parser struct{}

// NewParser returns a ready-to-use Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse consumes a complete program: a sequence of instruction and label
// statements, one per source line, comments and blank lines ignored. An
// empty source produces a Program with zero instructions and no labels.
func (p *Parser) Parse(source string) (*Program, error) {
	prog := NewProgram()

	for i, line := range splitLines(source) {
		lineNo := i + 1
		tokens, err := lexLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		if len(tokens) == 0 {
			continue
		}

		if isLabelStatement(tokens) {
			name := tokens[0].Text
			if _, exists := prog.Labels[name]; exists {
				return nil, NewErrorWithContext(tokens[0].Pos, "duplicate label: "+name, line)
			}
			prog.Labels[name] = len(prog.Instructions)
			continue
		}

		inst, err := parseInstructionTokens(tokens, line)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, *inst)
	}

	return prog, nil
}

// ParseInstruction parses a single instruction line (no label definition).
func (p *Parser) ParseInstruction(line string) (*Instruction, error) {
	tokens, err := lexLine(line, 1)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, NewError(Position{Line: 1, Column: 1}, "empty instruction")
	}
	if isLabelStatement(tokens) {
		return nil, NewError(tokens[0].Pos, "expected instruction, found label definition")
	}
	return parseInstructionTokens(tokens, line)
}

// ValidateSyntax reports whether source parses cleanly, without
// constructing (or returning) the resulting Program.
func (p *Parser) ValidateSyntax(source string) bool {
	_, err := p.Parse(source)
	return err == nil
}

func isLabelStatement(tokens []Token) bool {
	return len(tokens) == 2 &&
		tokens[0].Type == TokenWord &&
		tokens[1].Type == TokenColon &&
		identPattern.MatchString(tokens[0].Text)
}

func parseInstructionTokens(tokens []Token, rawLine string) (*Instruction, error) {
	opTok := tokens[0]
	if opTok.Type != TokenWord || !identPattern.MatchString(opTok.Text) {
		return nil, NewErrorWithContext(opTok.Pos, "invalid opcode: "+opTok.Text, rawLine)
	}

	inst := &Instruction{
		Opcode: strings.ToUpper(opTok.Text),
		Pos:    opTok.Pos,
	}

	for _, tok := range tokens[1:] {
		operand, err := parseOperandToken(tok, rawLine)
		if err != nil {
			return nil, err
		}
		inst.Operands = append(inst.Operands, operand)
	}

	return inst, nil
}

func parseOperandToken(tok Token, rawLine string) (Operand, error) {
	switch tok.Type {
	case TokenColon:
		return Operand{}, NewErrorWithContext(tok.Pos, "unexpected ':'", rawLine)

	case TokenString:
		// tok.Text still carries the surrounding quotes from the lexer.
		inner := tok.Text[1 : len(tok.Text)-1]
		return Operand{Kind: OperandString, Str: ProcessEscapeSequences(inner)}, nil

	case TokenWord:
		text := tok.Text

		if m := registerPattern.FindStringSubmatch(text); m != nil {
			n, err := strconv.ParseUint(m[1], 10, 32)
			if err != nil {
				return Operand{}, NewErrorWithContext(tok.Pos, "invalid register: "+text, rawLine)
			}
			return Operand{Kind: OperandRegister, Reg: uint32(n)}, nil
		}

		if m := immediatePattern.FindStringSubmatch(text); m != nil {
			v, err := strconv.ParseInt(m[1], 10, 64)
			if err != nil {
				return Operand{}, NewErrorWithContext(tok.Pos, "invalid immediate: "+text, rawLine)
			}
			return Operand{Kind: OperandImmediate, Imm: v}, nil
		}

		if m := addressPattern.FindStringSubmatch(text); m != nil {
			return Operand{Kind: OperandAddress, Addr: strings.ToLower(m[1])}, nil
		}

		if strings.HasPrefix(text, "#") {
			return Operand{}, NewErrorWithContext(tok.Pos, "malformed immediate operand: "+text, rawLine)
		}
		if strings.HasPrefix(text, "@") {
			return Operand{}, NewErrorWithContext(tok.Pos, "malformed address operand: "+text, rawLine)
		}

		if identPattern.MatchString(text) {
			return Operand{Kind: OperandLabelRef, Label: text}, nil
		}

		return Operand{}, NewErrorWithContext(tok.Pos, "malformed operand: "+text, rawLine)

	default:
		return Operand{}, NewErrorWithContext(tok.Pos, "malformed operand: "+tok.Text, rawLine)
	}
}
