// Package parser turns constructor-call text such as
// "BestOfDicePool(Die(6), pool_size=4, select=3)" into dice descriptors.
//
// The grammar is a small data-only call language:
//
//	call    := Name "(" [arg {"," arg} [","]] ")"
//	arg     := [name "="] value
//	value   := int | tuple | mapping | call
//	tuple   := "(" [int {"," int} [","]] ")"
//	mapping := "{" [int ":" int {"," int ":" int} [","]] "}"
//	int     := ["-" | "+"] digits
//
// Nothing is evaluated; the only names are the known constructors and
// their parameters.
package parser

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Sumatoshi-tech/dicetables/pkg/dicetables"
	"github.com/Sumatoshi-tech/dicetables/pkg/limiter"
	"github.com/Sumatoshi-tech/dicetables/pkg/poolmath"
)

// Parser errors.
var (
	ErrSyntax      = errors.New("syntax error")
	ErrUnknownName = errors.New("unknown constructor")
	ErrArguments   = errors.New("invalid arguments")
	ErrLimit       = errors.New("limit exceeded")
)

// Option configures a Parser.
type Option func(*Parser)

// WithLimiter makes the parser reject requests the limiter refuses.
// Checks run before expensive distributions are built.
func WithLimiter(l *limiter.Limiter) Option {
	return func(p *Parser) {
		p.limiter = l
	}
}

// WithCache shares pool distributions through c.
func WithCache(c *poolmath.Cache) Option {
	return func(p *Parser) {
		p.cache = c
	}
}

// Parser builds descriptors and tables from text. A Parser is safe for
// concurrent use when its limiter and cache are.
type Parser struct {
	limiter *limiter.Limiter
	cache   *poolmath.Cache
}

// New returns a parser. Without WithLimiter no limits are enforced.
func New(opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Parse parses text with a parser that has no limiter and no cache.
func Parse(text string) (dicetables.Descriptor, error) {
	return New().Parse(text)
}

// Parse parses a single constructor call.
func (p *Parser) Parse(text string) (dicetables.Descriptor, error) {
	s, err := newState(p, text)
	if err != nil {
		return nil, err
	}

	d, err := s.parseCall()
	if err != nil {
		return nil, err
	}

	if err := s.expectEOF(); err != nil {
		return nil, err
	}

	return d, nil
}

// ParseTable parses a sum of dice such as "3*Die(6) + ModDie(4, 1)" into a
// table. A term without a count adds one die. The limiter sees the whole
// record before anything is combined.
func (p *Parser) ParseTable(text string) (*dicetables.DiceTable, error) {
	s, err := newState(p, text)
	if err != nil {
		return nil, err
	}

	var entries []dicetables.RecordEntry

	for {
		entry, err := s.parseTerm()
		if err != nil {
			return nil, err
		}

		entries = append(entries, entry)

		if !s.acceptPunct("+") {
			break
		}
	}

	if err := s.expectEOF(); err != nil {
		return nil, err
	}

	record, err := dicetables.RecordFrom(entries...)
	if err != nil {
		return nil, err
	}

	if err := p.check(func(l *limiter.Limiter) error { return l.CheckTable(record.Entries()) }); err != nil {
		return nil, err
	}

	table := dicetables.NewDiceTable()

	for _, entry := range record.Entries() {
		table, err = table.AddDie(entry.Count, entry.Die)
		if err != nil {
			return nil, err
		}
	}

	return table, nil
}

func (p *Parser) check(run func(*limiter.Limiter) error) error {
	if p.limiter == nil {
		return nil
	}

	if err := run(p.limiter); err != nil {
		return fmt.Errorf("%w: %w", ErrLimit, err)
	}

	return nil
}

func (p *Parser) poolOptions() []dicetables.PoolOption {
	if p.cache == nil {
		return nil
	}

	return []dicetables.PoolOption{dicetables.WithCache(p.cache)}
}

// state walks the token stream of one input.
type state struct {
	parser *Parser
	tokens []token
	pos    int
}

func newState(p *Parser, text string) (*state, error) {
	tokens, err := lex(text)
	if err != nil {
		return nil, err
	}

	return &state{parser: p, tokens: tokens}, nil
}

func (s *state) peek() token {
	return s.tokens[s.pos]
}

func (s *state) peekAt(offset int) token {
	idx := s.pos + offset
	if idx >= len(s.tokens) {
		return s.tokens[len(s.tokens)-1]
	}

	return s.tokens[idx]
}

func (s *state) next() token {
	tok := s.tokens[s.pos]
	if tok.kind != tokEOF {
		s.pos++
	}

	return tok
}

func (s *state) isPunct(text string) bool {
	tok := s.peek()

	return tok.kind == tokPunct && tok.text == text
}

func (s *state) acceptPunct(text string) bool {
	if s.isPunct(text) {
		s.pos++

		return true
	}

	return false
}

func (s *state) expectPunct(text string) error {
	if s.acceptPunct(text) {
		return nil
	}

	tok := s.peek()

	return syntaxError(tok.pos, "expected %q, found %s", text, tok)
}

func (s *state) expectEOF() error {
	tok := s.peek()
	if tok.kind != tokEOF {
		return syntaxError(tok.pos, "unexpected %s after expression", tok)
	}

	return nil
}

// parseTerm reads [count "*"] call.
func (s *state) parseTerm() (dicetables.RecordEntry, error) {
	count := 1

	if s.peek().kind == tokInt {
		n, _, err := s.parseInt()
		if err != nil {
			return dicetables.RecordEntry{}, err
		}

		if err := s.expectPunct("*"); err != nil {
			return dicetables.RecordEntry{}, err
		}

		count = n
	}

	d, err := s.parseCall()
	if err != nil {
		return dicetables.RecordEntry{}, err
	}

	return dicetables.RecordEntry{Die: d, Count: count}, nil
}

func (s *state) parseCall() (dicetables.Descriptor, error) {
	nameTok := s.next()
	if nameTok.kind != tokIdent {
		return nil, syntaxError(nameTok.pos, "expected constructor name, found %s", nameTok)
	}

	ctor, ok := constructors[nameTok.text]
	if !ok {
		return nil, fmt.Errorf("%w: %q at position %d", ErrUnknownName, nameTok.text, nameTok.pos)
	}

	if err := s.expectPunct("("); err != nil {
		return nil, err
	}

	var args []argument

	for !s.isPunct(")") {
		arg, err := s.parseArgument()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if !s.acceptPunct(",") {
			break
		}
	}

	if err := s.expectPunct(")"); err != nil {
		return nil, err
	}

	values, err := ctor.bind(nameTok.text, args)
	if err != nil {
		return nil, err
	}

	d, err := ctor.build(s.parser, values)
	if err != nil {
		if errors.Is(err, ErrLimit) || errors.Is(err, ErrArguments) {
			return nil, err
		}

		return nil, fmt.Errorf("%s at position %d: %w", nameTok.text, nameTok.pos, err)
	}

	return d, nil
}

func (s *state) parseArgument() (argument, error) {
	tok := s.peek()

	if tok.kind == tokIdent && s.peekAt(1).kind == tokPunct && s.peekAt(1).text == "=" {
		s.pos += 2

		v, err := s.parseValue()
		if err != nil {
			return argument{}, err
		}

		return argument{name: tok.text, value: v, pos: tok.pos}, nil
	}

	v, err := s.parseValue()
	if err != nil {
		return argument{}, err
	}

	return argument{value: v, pos: tok.pos}, nil
}

func (s *state) parseValue() (value, error) {
	tok := s.peek()

	switch {
	case tok.kind == tokIdent:
		d, err := s.parseCall()
		if err != nil {
			return value{}, err
		}

		return value{kind: kindDie, die: d, pos: tok.pos}, nil
	case s.isPunct("("):
		tuple, err := s.parseTuple()
		if err != nil {
			return value{}, err
		}

		return value{kind: kindTuple, tuple: tuple, pos: tok.pos}, nil
	case s.isPunct("{"):
		mapping, err := s.parseMapping()
		if err != nil {
			return value{}, err
		}

		return value{kind: kindMapping, mapping: mapping, pos: tok.pos}, nil
	case tok.kind == tokInt || s.isPunct("-") || s.isPunct("+"):
		n, pos, err := s.parseInt()
		if err != nil {
			return value{}, err
		}

		return value{kind: kindInt, integer: n, pos: pos}, nil
	default:
		return value{}, syntaxError(tok.pos, "expected value, found %s", tok)
	}
}

func (s *state) parseInt() (int, int, error) {
	start := s.peek().pos
	negative := false

	if s.acceptPunct("-") {
		negative = true
	} else {
		s.acceptPunct("+")
	}

	tok := s.next()
	if tok.kind != tokInt {
		return 0, start, syntaxError(tok.pos, "expected integer, found %s", tok)
	}

	text := tok.text
	if negative {
		text = "-" + text
	}

	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, start, syntaxError(tok.pos, "integer %s out of range", text)
	}

	return n, start, nil
}

func (s *state) parseTuple() ([]int, error) {
	if err := s.expectPunct("("); err != nil {
		return nil, err
	}

	var items []int

	for !s.isPunct(")") {
		n, _, err := s.parseInt()
		if err != nil {
			return nil, err
		}

		items = append(items, n)

		if !s.acceptPunct(",") {
			break
		}
	}

	if err := s.expectPunct(")"); err != nil {
		return nil, err
	}

	return items, nil
}

func (s *state) parseMapping() (map[int]int, error) {
	if err := s.expectPunct("{"); err != nil {
		return nil, err
	}

	mapping := make(map[int]int)

	for !s.isPunct("}") {
		keyPos := s.peek().pos

		key, _, err := s.parseInt()
		if err != nil {
			return nil, err
		}

		if err := s.expectPunct(":"); err != nil {
			return nil, err
		}

		val, _, err := s.parseInt()
		if err != nil {
			return nil, err
		}

		if _, dup := mapping[key]; dup {
			return nil, syntaxError(keyPos, "duplicate key %d", key)
		}

		mapping[key] = val

		if !s.acceptPunct(",") {
			break
		}
	}

	if err := s.expectPunct("}"); err != nil {
		return nil, err
	}

	return mapping, nil
}

func syntaxError(pos int, format string, args ...any) error {
	return fmt.Errorf("%w at position %d: %s", ErrSyntax, pos, fmt.Sprintf(format, args...))
}
