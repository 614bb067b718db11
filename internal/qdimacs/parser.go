// Package qdimacs reads the QDIMACS input format: DIMACS CNF extended with
// quantifier-block lines ("e ..." / "a ..." before the clauses), as
// described in spec §6.1. No Go library in the reference corpus
// understands quantifier lines (github.com/rhartert/dimacs, the nearest
// match, is plain-SAT DIMACS only), so this parser is hand-rolled in the
// scanning style of that package's sibling dimacs reader.
package qdimacs

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/arkenfold/qbfsolver/internal/qbf"
)

// Formula is the store-shaped destination a Parser writes into. *qbf.Store
// satisfies it directly.
type Formula interface {
	AddVariable(kind qbf.QuantifierKind, block int) int
	AddClause(lits []qbf.Literal) error
}

// PrefixWriter is the subset of *qbf.Store the parser uses to build up the
// quantifier prefix as it reads quantifier-block lines.
type PrefixWriter interface {
	Formula
	AppendBlock(kind qbf.QuantifierKind) int
	InnermostExistentialBlock() int
}

// storePrefixWriter adapts *qbf.Store (whose prefix lives on an exported
// field) to PrefixWriter.
type storePrefixWriter struct{ *qbf.Store }

func (w storePrefixWriter) AppendBlock(kind qbf.QuantifierKind) int {
	return w.Prefix.AppendBlock(kind)
}

func (w storePrefixWriter) InnermostExistentialBlock() int {
	return w.Prefix.InnermostExistentialBlock()
}

// ParseError reports a problem with the QDIMACS text itself, as opposed to
// an I/O failure opening the file.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("qdimacs: line %d: %s", e.Line, e.Msg)
}

// Parse reads a plain (uncompressed) QDIMACS instance from r into store,
// which must be empty. ParseFile handles gzip-compressed files.
func Parse(r io.Reader, store *qbf.Store) error {
	p := &parser{
		store:   storePrefixWriter{store},
		varIDs:  map[int]int{},
		scanner: bufio.NewScanner(r),
	}
	return p.run()
}

// ParseFile opens filename (optionally gzip-compressed, detected by a
// ".gz" suffix) and parses it into store.
func ParseFile(filename string, store *qbf.Store) error {
	f, err := os.Open(filename)
	if err != nil {
		return errors.Wrapf(err, "qdimacs: opening %q", filename)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(filename, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, "qdimacs: opening gzip stream in %q", filename)
		}
		defer gz.Close()
		r = gz
	}

	if err := Parse(r, store); err != nil {
		return errors.Wrapf(err, "qdimacs: parsing %q", filename)
	}
	return nil
}

type parser struct {
	store   PrefixWriter
	scanner *bufio.Scanner
	lineNo  int

	nVars    int
	nClauses int

	// varIDs maps a 1-based QDIMACS variable ID to its internal qbf.Store
	// variable ID, once declared (by a quantifier line, or lazily by first
	// use in a clause).
	varIDs map[int]int

	// One-line lookahead, used by parsePrefix to find where the quantifier
	// block lines end without consuming the first clause line.
	pending    string
	pendingOK  bool
	pendingSet bool

	errs *multierror.Error
}

func (p *parser) run() error {
	if err := p.parseHeader(); err != nil {
		return err
	}
	if err := p.parsePrefix(); err != nil {
		return err
	}
	if err := p.parseClauses(); err != nil {
		return err
	}
	return p.errs.ErrorOrNil()
}

func (p *parser) nextLine() (string, bool) {
	for p.scanner.Scan() {
		p.lineNo++
		line := strings.TrimSpace(p.scanner.Text())
		if line == "" || line[0] == 'c' {
			continue
		}
		return line, true
	}
	return "", false
}

func (p *parser) parseHeader() error {
	line, ok := p.nextLine()
	if !ok {
		return &ParseError{Line: p.lineNo, Msg: "missing problem line"}
	}
	parts := strings.Fields(line)
	if len(parts) != 4 || parts[0] != "p" || parts[1] != "cnf" {
		return &ParseError{Line: p.lineNo, Msg: fmt.Sprintf("malformed problem line %q", line)}
	}
	nVars, err := strconv.Atoi(parts[2])
	if err != nil {
		return &ParseError{Line: p.lineNo, Msg: "non-integer variable count"}
	}
	nClauses, err := strconv.Atoi(parts[3])
	if err != nil {
		return &ParseError{Line: p.lineNo, Msg: "non-integer clause count"}
	}
	p.nVars, p.nClauses = nVars, nClauses
	return nil
}

// parsePrefix consumes consecutive quantifier-block lines ("e"/"a" ... 0)
// and pushes its own lookahead line back via p.pending when it encounters
// the first clause line.
func (p *parser) parsePrefix() error {
	for {
		line, ok := p.peekLine()
		if !ok {
			return nil
		}
		kind, isQuant := quantifierKind(line)
		if !isQuant {
			return nil
		}
		p.consumePeeked()

		ids, err := parseIntLine(strings.Fields(line)[1:])
		if err != nil {
			return &ParseError{Line: p.lineNo, Msg: err.Error()}
		}

		block := p.store.AppendBlock(kind)
		for _, id := range ids {
			if id == 0 {
				continue // trailing terminator
			}
			if _, exists := p.varIDs[id]; exists {
				p.errs = multierror.Append(p.errs, &ParseError{
					Line: p.lineNo,
					Msg:  fmt.Sprintf("variable %d declared more than once", id),
				})
				continue
			}
			p.varIDs[id] = p.store.AddVariable(kind, block)
		}
	}
}

func quantifierKind(line string) (qbf.QuantifierKind, bool) {
	switch {
	case strings.HasPrefix(line, "e "):
		return qbf.Existential, true
	case strings.HasPrefix(line, "a "):
		return qbf.Universal, true
	default:
		return 0, false
	}
}

func (p *parser) parseClauses() error {
	litBuf := make([]qbf.Literal, 0, 32)

	for {
		line, ok := p.nextLineUsingPeek()
		if !ok {
			break
		}

		ids, err := parseIntLine(strings.Fields(line))
		if err != nil {
			return &ParseError{Line: p.lineNo, Msg: err.Error()}
		}

		litBuf = litBuf[:0]
		for _, id := range ids {
			if id == 0 {
				continue
			}
			if id > p.nVars || -id > p.nVars {
				p.errs = multierror.Append(p.errs, &ParseError{
					Line: p.lineNo,
					Msg:  fmt.Sprintf("literal %d exceeds the declared variable count %d", id, p.nVars),
				})
				continue
			}
			litBuf = append(litBuf, p.literalFor(id))
		}

		if err := p.store.AddClause(litBuf); err != nil {
			return &ParseError{Line: p.lineNo, Msg: err.Error()}
		}
	}

	return nil
}

// literalFor returns the internal literal for a signed 1-based QDIMACS
// variable ID, declaring the variable as an implicitly existential,
// innermost-block variable on first use if it never appeared in a
// quantifier line (spec §6.1: "variables never mentioned in a quantifier
// line are implicitly existential").
func (p *parser) literalFor(id int) qbf.Literal {
	v := id
	if v < 0 {
		v = -v
	}
	internal, ok := p.varIDs[v]
	if !ok {
		internal = p.store.AddVariable(qbf.Existential, p.store.InnermostExistentialBlock())
		p.varIDs[v] = internal
	}
	if id < 0 {
		return qbf.NegLit(internal)
	}
	return qbf.PosLit(internal)
}

// --- one-line-of-lookahead plumbing -------------------------------------

func (p *parser) peekLine() (string, bool) {
	if p.pendingSet {
		return p.pending, p.pendingOK
	}
	p.pending, p.pendingOK = p.nextLine()
	p.pendingSet = true
	return p.pending, p.pendingOK
}

func (p *parser) consumePeeked() {
	p.pendingSet = false
}

func (p *parser) nextLineUsingPeek() (string, bool) {
	if p.pendingSet {
		p.pendingSet = false
		return p.pending, p.pendingOK
	}
	return p.nextLine()
}

func parseIntLine(fields []string) ([]int, error) {
	ids := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("non-integer token %q", f)
		}
		ids = append(ids, n)
	}
	return ids, nil
}
