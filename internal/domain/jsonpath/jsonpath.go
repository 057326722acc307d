// Package jsonpath checks JSONPath expressions for syntax errors that the
// store would reject. Evaluation stays on the server.
package jsonpath

import (
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/domain"
)

// Root is the JSONPath root selector.
const Root = "$"

// IsPath reports whether s is meant as a JSONPath rather than a field alias.
func IsPath(s string) bool {
	return strings.HasPrefix(s, Root)
}

// Validate checks that path is rooted at $ and that brackets, parentheses
// and quotes are balanced and properly nested. Any failure is an *domain.InvalidJSONPathError.
func Validate(path string) error {
	if path == "" {
		return invalid(path, "empty path")
	}
	if path[0] != '$' {
		return invalid(path, "must start with $")
	}
	if len(path) > 1 && path[1] != '.' && path[1] != '[' {
		return invalid(path, "root must be followed by . or [")
	}

	var (
		open  []byte // unclosed [ and ( in nesting order
		quote byte
		prev  byte = '$'
	)
	for i := 1; i < len(path); i++ {
		c := path[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			prev = c
			continue
		}

		switch c {
		case '\'', '"':
			if len(open) == 0 {
				return invalid(path, "quoted name outside brackets")
			}
			quote = c
		case '[':
			open = append(open, '[')
		case ']':
			if len(open) == 0 {
				return invalid(path, "unbalanced ]")
			}
			if open[len(open)-1] != '[' {
				return invalid(path, "mismatched ]")
			}
			if prev == '[' {
				return invalid(path, "empty brackets")
			}
			open = open[:len(open)-1]
		case '(':
			if len(open) == 0 {
				return invalid(path, "expression outside brackets")
			}
			open = append(open, '(')
		case ')':
			if len(open) == 0 {
				return invalid(path, "unbalanced )")
			}
			if open[len(open)-1] != '(' {
				return invalid(path, "mismatched )")
			}
			open = open[:len(open)-1]
		case '.':
			if len(open) == 0 && prev == '.' && i >= 2 && path[i-2] == '.' {
				return invalid(path, "empty segment")
			}
		case ' ', '\t', '\n', '\r':
			if len(open) == 0 {
				return invalid(path, "whitespace outside brackets")
			}
		}
		prev = c
	}

	switch {
	case quote != 0:
		return invalid(path, "unclosed quote")
	case len(open) > 0 && open[len(open)-1] == '[':
		return invalid(path, "unbalanced [")
	case len(open) > 0:
		return invalid(path, "unbalanced (")
	case prev == '.':
		return invalid(path, "trailing dot")
	}
	return nil
}

func invalid(path, reason string) error {
	return &domain.InvalidJSONPathError{Path: path, Reason: reason}
}
