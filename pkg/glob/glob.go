// Package glob implements the path patterns used by routes.
//
// A pattern is a sequence of segments separated by slashes:
//
//   - A literal segment matches itself. A backslash escapes the next
//     character, so \:x and \* are literals.
//   - A segment of the form :name matches any one non-empty path segment and
//     captures it under name.
//   - A segment consisting of * can only appear last. It matches the rest of
//     the path, possibly empty.
//
// Repeated slashes are collapsed and a trailing slash is not significant,
// both in patterns and in matched paths.
package glob

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Pattern is a parsed pattern.
type Pattern struct {
	Segments []Segment
}

// Segment is the building block of Pattern.
type Segment interface {
	isSegment()
}

// Literal is a segment that matches itself.
type Literal struct {
	Data string
}

// Param is a segment that matches one path segment and captures it.
type Param struct {
	Name string
}

// Rest is the segment that matches the remainder of the path.
type Rest struct{}

func (Literal) isSegment() {}
func (Param) isSegment()   {}
func (Rest) isSegment()    {}

// Captures holds what a pattern captured from a path.
type Captures struct {
	// Parameters, path-unescaped.
	Params map[string]string
	// Remainder matched by *, without leading or trailing slashes. It is kept
	// escaped.
	Rest string
}

// Errors returned by Expand.
var (
	ErrMissingParam = errors.New("missing parameter")
	ErrEmptyValue   = errors.New("empty parameter value")
)

// Split splits a path into its non-empty segments.
func Split(path string) []string {
	var elems []string
	for _, elem := range strings.Split(path, "/") {
		if elem != "" {
			elems = append(elems, elem)
		}
	}
	return elems
}

// Match matches a path against the pattern. The path must not contain a query
// string or fragment.
func (p Pattern) Match(path string) (Captures, bool) {
	elems := Split(path)
	caps := Captures{Params: map[string]string{}}
	for i, seg := range p.Segments {
		switch seg := seg.(type) {
		case Rest:
			caps.Rest = strings.Join(elems[min(i, len(elems)):], "/")
			return caps, true
		case Literal:
			if i >= len(elems) {
				return Captures{}, false
			}
			if elem, err := url.PathUnescape(elems[i]); err != nil || elem != seg.Data {
				return Captures{}, false
			}
		case Param:
			if i >= len(elems) {
				return Captures{}, false
			}
			elem, err := url.PathUnescape(elems[i])
			if err != nil {
				return Captures{}, false
			}
			caps.Params[seg.Name] = elem
		}
	}
	if len(elems) != len(p.Segments) {
		return Captures{}, false
	}
	return caps, true
}

// Expand is the inverse of Match: it builds a path that p matches, with the
// given parameters and remainder. The result always starts with a slash.
func (p Pattern) Expand(params map[string]string, rest string) (string, error) {
	var sb strings.Builder
	for _, seg := range p.Segments {
		switch seg := seg.(type) {
		case Literal:
			sb.WriteByte('/')
			sb.WriteString(url.PathEscape(seg.Data))
		case Param:
			v, ok := params[seg.Name]
			if !ok {
				return "", fmt.Errorf("%w: %s", ErrMissingParam, seg.Name)
			}
			if v == "" {
				return "", fmt.Errorf("%w: %s", ErrEmptyValue, seg.Name)
			}
			sb.WriteByte('/')
			sb.WriteString(url.PathEscape(v))
		case Rest:
			if elems := Split(rest); len(elems) > 0 {
				sb.WriteByte('/')
				sb.WriteString(strings.Join(elems, "/"))
			}
		}
	}
	if sb.Len() == 0 {
		return "/", nil
	}
	return sb.String(), nil
}

// Params returns the names of the parameters of the pattern, in order.
func (p Pattern) Params() []string {
	var names []string
	for _, seg := range p.Segments {
		if param, ok := seg.(Param); ok {
			names = append(names, param.Name)
		}
	}
	return names
}

// String returns the canonical form of the pattern.
func (p Pattern) String() string {
	var sb strings.Builder
	for _, seg := range p.Segments {
		sb.WriteByte('/')
		switch seg := seg.(type) {
		case Literal:
			sb.WriteString(escapeLiteral(seg.Data))
		case Param:
			sb.WriteString(":" + seg.Name)
		case Rest:
			sb.WriteByte('*')
		}
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

func escapeLiteral(s string) string {
	var sb strings.Builder
	for i, r := range s {
		if r == '\\' || r == '*' || r == '/' || (i == 0 && r == ':') {
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
