package witconv

import (
	"strings"

	"github.com/wippyai/typeconv/errors"
	"go.bytecodealliance.org/wit"
)

// ParseType parses a WIT type expression built from primitives and the
// anonymous type constructors list<T>, option<T> and tuple<T, ...>.
// Named types such as records and enums need a resolve; see Lookup.
func ParseType(s string) (wit.Type, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '<')
	if open < 0 {
		t, err := wit.ParseType(s)
		if err != nil {
			return nil, errors.Load("parse type "+s, err)
		}
		return t, nil
	}
	if !strings.HasSuffix(s, ">") {
		return nil, errors.Load("unbalanced type expression "+s, nil)
	}

	ctor := strings.TrimSpace(s[:open])
	args := splitArgs(s[open+1 : len(s)-1])
	elems := make([]wit.Type, len(args))
	for i, a := range args {
		t, err := ParseType(a)
		if err != nil {
			return nil, err
		}
		elems[i] = t
	}

	switch ctor {
	case "list":
		if len(elems) != 1 {
			return nil, errors.Load("list takes one type argument: "+s, nil)
		}
		return &wit.TypeDef{Kind: &wit.List{Type: elems[0]}}, nil
	case "option":
		if len(elems) != 1 {
			return nil, errors.Load("option takes one type argument: "+s, nil)
		}
		return &wit.TypeDef{Kind: &wit.Option{Type: elems[0]}}, nil
	case "tuple":
		if len(elems) == 0 {
			return nil, errors.Load("tuple needs at least one type: "+s, nil)
		}
		return &wit.TypeDef{Kind: &wit.Tuple{Types: elems}}, nil
	}
	return nil, errors.Load("unknown type constructor "+ctor, nil)
}

// splitArgs splits a type argument list on top-level commas.
func splitArgs(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '<':
			depth++
			current.WriteRune(ch)
		case '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}
