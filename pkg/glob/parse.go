package glob

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Errors returned by Parse.
var (
	ErrEmptyParam     = errors.New("parameter without a name")
	ErrRestNotLast    = errors.New("* must be the last segment")
	ErrBareStar       = errors.New("* must be a whole segment")
	ErrDuplicateParam = errors.New("duplicate parameter name")
)

// Parse parses a pattern.
func Parse(s string) (Pattern, error) {
	var segs []Segment
	names := map[string]bool{}
	p := &parser{s, 0, 0}

	for {
		// Repeated slashes collapse into one, and a trailing one is dropped.
		for p.next() == '/' {
		}
		p.backup()
		if p.peek() == eof {
			break
		}
		if len(segs) > 0 {
			if _, ok := segs[len(segs)-1].(Rest); ok {
				return Pattern{}, fmt.Errorf("%q: %w", s, ErrRestNotLast)
			}
		}

		seg, err := p.segment()
		if err != nil {
			return Pattern{}, fmt.Errorf("%q: %w", s, err)
		}
		if param, ok := seg.(Param); ok {
			if names[param.Name] {
				return Pattern{}, fmt.Errorf("%q: %w: %s", s, ErrDuplicateParam, param.Name)
			}
			names[param.Name] = true
		}
		segs = append(segs, seg)
	}
	return Pattern{segs}, nil
}

// MustParse is like Parse, but panics on errors. It is meant for patterns
// that are known at compile time.
func MustParse(s string) Pattern {
	p, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return p
}

// segment parses one segment. The parser must not be at a slash or EOF.
func (p *parser) segment() (Segment, error) {
	switch p.next() {
	case ':':
		var name strings.Builder
		for r := p.next(); r != '/' && r != eof; r = p.next() {
			name.WriteRune(r)
		}
		p.backup()
		if name.Len() == 0 {
			return nil, ErrEmptyParam
		}
		return Param{name.String()}, nil
	case '*':
		if r := p.peek(); r != '/' && r != eof {
			return nil, ErrBareStar
		}
		return Rest{}, nil
	}
	p.backup()

	var literal strings.Builder
	for r := p.next(); r != '/' && r != eof; r = p.next() {
		switch r {
		case '\\':
			r = p.next()
			if r == eof {
				// A trailing backslash stands for itself.
				literal.WriteRune('\\')
				continue
			}
			literal.WriteRune(r)
		case '*':
			return nil, ErrBareStar
		default:
			literal.WriteRune(r)
		}
	}
	p.backup()
	return Literal{literal.String()}, nil
}

type parser struct {
	src     string
	pos     int
	overEOF int
}

const eof rune = -1

func (ps *parser) next() rune {
	if ps.pos == len(ps.src) {
		ps.overEOF++
		return eof
	}
	r, s := utf8.DecodeRuneInString(ps.src[ps.pos:])
	ps.pos += s
	return r
}

func (ps *parser) backup() {
	if ps.overEOF > 0 {
		ps.overEOF--
		return
	}
	_, s := utf8.DecodeLastRuneInString(ps.src[:ps.pos])
	ps.pos -= s
}

func (ps *parser) peek() rune {
	r := ps.next()
	ps.backup()
	return r
}
