// Package asm implements the translator: a lexer/parser (lexer.go) and a
// multi-pass resolver (this file) that compile source text into the machine
// artifact from isa.Program, resolving labels, interrupt vectors, immediate
// encodings and operand-type validity along the way.
package asm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mlatimer/cisc3/internal/isa"
	"github.com/mlatimer/cisc3/internal/log"
)

type section int

const (
	sectionNone section = iota
	sectionText
	sectionData
)

// pendingVector is a vector-table write recorded during allocation and
// resolved once every label is known.
type pendingVector struct {
	index int32
	addr  string // literal or label, resolved in step 6
	line  int
}

// Translator carries state across the translation pipeline described in
// spec section 4.2. Construct one with NewTranslator and call Translate.
type Translator struct {
	log *log.Logger
}

// NewTranslator returns a Translator that logs progress to the given logger.
// If logger is nil, the package default is used.
func NewTranslator(logger *log.Logger) *Translator {
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return &Translator{log: logger}
}

// Translate runs the full seven-step pipeline over source text and returns
// the resolved program artifact, or the first ParseError, ShapeError or
// LinkError encountered.
func (t *Translator) Translate(src io.Reader) (*isa.Program, error) {
	terms, err := Lex(src)
	if err != nil {
		return nil, err
	}

	t.log.Debug("lexed source", "terms", len(terms))

	symbols := map[string]int32{}

	var (
		words     []int32
		vectors   []pendingVector
		instrs    []Term
		textAddr  int32
		dataAddr  = int32(isa.Device)
		cur       section
	)

	// Step 2: allocate labels and data in source order.
	for _, term := range terms {
		switch term.Kind {
		case TermSectionText:
			cur = sectionText
		case TermSectionData:
			cur = sectionData
		case TermLabel:
			if _, dup := symbols[term.Name]; dup {
				return nil, &LinkError{Line: term.Line, Symbol: term.Name, Err: errDuplicateLabel}
			}

			if cur == sectionText {
				symbols[term.Name] = textAddr
			} else {
				symbols[term.Name] = dataAddr
			}
		case TermWord:
			if cur != sectionData {
				return nil, &ParseError{Line: term.Line, Text: term.Text, Err: errBadSection}
			}

			words = append(words, term.Value)
			dataAddr++
		case TermVector:
			if cur != sectionData {
				return nil, &ParseError{Line: term.Line, Text: term.Text, Err: errBadSection}
			}

			vectors = append(vectors, pendingVector{index: term.VecIndex, addr: term.VecAddr, line: term.Line})
		case TermInstr:
			if cur != sectionText {
				return nil, &ParseError{Line: term.Line, Text: term.Text, Err: errBadSection}
			}

			instrs = append(instrs, term)
			textAddr++
		}
	}

	t.log.Debug("allocated", "labels", len(symbols), "words", len(words), "instructions", len(instrs))

	// Steps 3-5: validate instruction shapes and resolve references.
	code := make([]isa.Instruction, len(instrs))

	for i, term := range instrs {
		in, err := t.resolveInstruction(term, symbols)
		if err != nil {
			return nil, err
		}

		code[i] = in
	}

	// Step 6: emit the data vector -- V zero cells overwritten at vector
	// indices, followed by declared words in declaration order.
	data := make([]int32, isa.Device+len(words))

	for _, v := range vectors {
		if v.index < 0 || int(v.index) >= isa.Device {
			return nil, &ParseError{Line: v.line, Text: v.addr, Err: errBadLiteral}
		}

		val, err := t.resolveValue(v.addr, symbols)
		if err != nil {
			return nil, &LinkError{Line: v.line, Symbol: v.addr, Err: err}
		}

		data[v.index] = val
	}

	copy(data[isa.Device:], words)

	t.log.Info("translated program", "code", len(code), "data", len(data))

	// Step 7: code is already in source order.
	return &isa.Program{Code: code, Data: data}, nil
}

// resolveInstruction validates a term's shape against isa.ArityTable and
// resolves its operands (steps 3-5 combined).
func (t *Translator) resolveInstruction(term Term, symbols map[string]int32) (isa.Instruction, error) {
	op, ok := isa.LookupOpcode(term.Name)
	if !ok {
		return isa.Instruction{}, &ParseError{Line: term.Line, Text: term.Text, Err: errUnknownMnemonic}
	}

	arity, ok := isa.ArityTable[op]
	if !ok {
		return isa.Instruction{}, &ParseError{Line: term.Line, Text: term.Text, Err: errUnknownMnemonic}
	}

	want := 0
	if arity.Out {
		want++
	}

	if arity.Arg1 {
		want++
	}

	if arity.Arg2 {
		want++
	}

	if len(term.Operands) != want {
		return isa.Instruction{}, &ShapeError{Line: term.Line, Text: term.Text, Err: errWrongArity}
	}

	in := isa.Instruction{Opcode: op}
	idx := 0

	if arity.Out {
		reg, ok := isa.LookupRegister(strings.ToLower(term.Operands[idx]))
		if !ok {
			return isa.Instruction{}, &ShapeError{Line: term.Line, Text: term.Text, Err: errWantRegister}
		}

		if !reg.Writable() {
			return isa.Instruction{}, &ShapeError{Line: term.Line, Text: term.Text, Err: errWantWritable}
		}

		in.HasOut = true
		in.Out = reg
		idx++
	}

	if arity.Arg1 {
		reg, ok := isa.LookupRegister(strings.ToLower(term.Operands[idx]))
		if !ok {
			return isa.Instruction{}, &ShapeError{Line: term.Line, Text: term.Text, Err: errWantRegister}
		}

		in.HasArg1 = true
		in.Arg1 = reg
		idx++
	}

	if arity.Arg2 {
		typ, val, err := t.resolveOperand(term.Operands[idx], symbols)
		if err != nil {
			if le, ok := err.(*LinkError); ok {
				le.Line = term.Line
			}

			return isa.Instruction{}, err
		}

		if !arity.Arg2Any && typ == isa.TypeConst {
			return isa.Instruction{}, &ShapeError{Line: term.Line, Text: term.Text, Err: errWantRegister}
		}

		in.HasArg2 = true
		in.Arg2 = val
		in.Arg2Type = typ
	}

	return in, nil
}

// resolveOperand resolves a bare operand token to a register ID or a
// constant (label reference, character literal or decimal literal).
func (t *Translator) resolveOperand(tok string, symbols map[string]int32) (isa.OperandType, int32, error) {
	if reg, ok := isa.LookupRegister(strings.ToLower(tok)); ok {
		return isa.TypeRegister, int32(reg), nil
	}

	val, err := t.resolveValue(tok, symbols)
	if err != nil {
		return isa.TypeNone, 0, &LinkError{Symbol: tok, Err: err}
	}

	return isa.TypeConst, val, nil
}

// resolveValue resolves a token to a constant: a character literal, a
// decimal literal, or a label reference.
func (t *Translator) resolveValue(tok string, symbols map[string]int32) (int32, error) {
	if strings.HasPrefix(tok, "'") {
		return parseCharLiteral(tok)
	}

	if v, err := strconv.ParseInt(tok, 10, 64); err == nil {
		if v < -(1<<31) || v > (1<<31)-1 {
			return 0, errBadLiteral
		}

		return int32(v), nil
	}

	addr, ok := symbols[tok]
	if !ok {
		return 0, fmt.Errorf("%w: %s", errUndefinedLabel, tok)
	}

	return addr, nil
}

// Translate is a package-level convenience that wraps NewTranslator(nil).Translate,
// mirroring the teacher's asm.go top-level helpers.
func Translate(src io.Reader) (*isa.Program, error) {
	return NewTranslator(nil).Translate(src)
}
