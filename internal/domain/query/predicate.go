package query

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/jsonidx/internal/domain"
	"github.com/kailas-cloud/jsonidx/internal/domain/schema"
)

// FieldRef is one @alias reference found in a predicate or filter expression.
type FieldRef struct {
	Alias string
	// Op is the first non-blank byte after "@alias:", or 0 when there is none.
	Op       byte
	HasColon bool
	Pos      int
}

// ScanFields returns every @alias reference in expr, skipping quoted phrases,
// escaped characters and tag value lists. A multi-field reference such as
// @name|location:(x) yields one FieldRef per alias, all sharing Pos and Op.
func ScanFields(expr string) []FieldRef {
	var (
		refs   []FieldRef
		quote  byte
		braces int
	)
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c == '\\' {
			i++
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}

		switch c {
		case '"', '\'':
			// Apostrophes inside a term (Bob's) are text, not phrase delimiters.
			if i == 0 || isTermBoundary(expr[i-1]) {
				quote = c
			}
		case '{':
			braces++
		case '}':
			if braces > 0 {
				braces--
			}
		case '@':
			if braces > 0 {
				continue
			}
			aliases, j := scanAliasList(expr, i+1)
			if len(aliases) == 0 {
				continue
			}
			var (
				op       byte
				hasColon bool
			)
			if j < len(expr) && expr[j] == ':' {
				hasColon = true
				k := j + 1
				for k < len(expr) && expr[k] == ' ' {
					k++
				}
				if k < len(expr) {
					op = expr[k]
				}
			}
			for _, a := range aliases {
				refs = append(refs, FieldRef{Alias: a, Op: op, HasColon: hasColon, Pos: i})
			}
			i = j - 1
		}
	}
	return refs
}

// scanAliasList reads alias(|alias)* starting at from and returns the aliases
// and the index just past the last one.
func scanAliasList(expr string, from int) ([]string, int) {
	var aliases []string
	i := from
	for {
		j := i
		for j < len(expr) && isAliasByte(expr[j]) {
			j++
		}
		if j == i {
			return aliases, i
		}
		aliases = append(aliases, expr[i:j])
		if j+1 < len(expr) && expr[j] == '|' && isAliasByte(expr[j+1]) {
			i = j + 1
			continue
		}
		return aliases, j
	}
}

func isTermBoundary(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '(', '|', '-', '~', ':', '=', '!', ',':
		return true
	}
	return false
}

func isAliasByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// CheckRef verifies that ref names a field of def and that the operator
// fits the field kind: { for TAG, [ for NUMERIC, a term for TEXT.
func CheckRef(def schema.Definition, ref FieldRef, where string) error {
	kind, ok := def.Kind(ref.Alias)
	if !ok {
		return &domain.UnknownFieldError{Field: ref.Alias, Where: where}
	}
	if !ref.HasColon {
		return &domain.FieldKindMismatchError{Field: ref.Alias, Kind: kind.String(), Operator: "bare reference"}
	}

	op := operatorName(ref.Op)
	switch kind {
	case schema.Tag:
		if ref.Op != '{' {
			return &domain.FieldKindMismatchError{Field: ref.Alias, Kind: kind.String(), Operator: op}
		}
	case schema.Numeric:
		if ref.Op != '[' {
			return &domain.FieldKindMismatchError{Field: ref.Alias, Kind: kind.String(), Operator: op}
		}
	case schema.Text:
		if ref.Op == '{' || ref.Op == '[' || ref.Op == 0 {
			return &domain.FieldKindMismatchError{Field: ref.Alias, Kind: kind.String(), Operator: op}
		}
	}
	return nil
}

func operatorName(op byte) string {
	switch op {
	case '{':
		return "tag match {...}"
	case '[':
		return "numeric range [...]"
	case 0:
		return "empty term"
	default:
		return "text match"
	}
}

// --- Predicate helpers ---

// TagMatch renders @alias:{v1 | v2}; values are escaped.
func TagMatch(alias string, values ...string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeTag(v)
	}
	return "@" + alias + ":{" + strings.Join(escaped, " | ") + "}"
}

// TagPrefix renders @alias:{prefix*}.
func TagPrefix(alias, prefix string) string {
	return "@" + alias + ":{" + EscapeTag(prefix) + "*}"
}

// NumericRange renders @alias:[min max]. Use Bound, Exclusive, NegInf and
// PosInf to build the bounds.
func NumericRange(alias, minBound, maxBound string) string {
	return "@" + alias + ":[" + minBound + " " + maxBound + "]"
}

const (
	NegInf = "-inf"
	PosInf = "+inf"
)

// Bound formats an inclusive numeric bound with two decimals.
func Bound(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Exclusive formats an exclusive numeric bound.
func Exclusive(v float64) string {
	return "(" + Bound(v)
}

// TextMatch renders @alias:(terms). Terms keep their query syntax.
func TextMatch(alias, terms string) string {
	return "@" + alias + ":(" + terms + ")"
}

// Not negates a clause.
func Not(clause string) string {
	return "-" + clause
}

// And joins clauses with the implicit intersection operator.
func And(clauses ...string) string {
	return strings.Join(clauses, " ")
}

// Or joins clauses into a union group.
func Or(clauses ...string) string {
	return "(" + strings.Join(clauses, " | ") + ")"
}

// EscapeTag escapes a single tag value.
func EscapeTag(s string) string {
	return tagEscaper.Replace(s)
}

// EscapeText escapes user input for use as literal text terms.
func EscapeText(s string) string {
	return queryEscaper.Replace(s)
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)
