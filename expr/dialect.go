// Package expr implements the typed SQL expression tree and dialect-aware
// renderer described in spec §4.6: a tagged algebraic tree lowered to
// dialect-specific placeholder/operator forms for PostgreSQL, MySQL, and
// SQLite.
package expr

import (
	"strconv"
	"strings"
)

// Dialect selects the placeholder style and operator lowering rules used
// when rendering an Expr to SQL text.
type Dialect int

const (
	Postgres Dialect = iota
	Sqlite
	Mysql
)

func (d Dialect) String() string {
	switch d {
	case Postgres:
		return "Postgres"
	case Sqlite:
		return "Sqlite"
	case Mysql:
		return "Mysql"
	default:
		return "Unknown"
	}
}

// Placeholder renders a positional parameter placeholder for the given
// 1-based index. Postgres uses $N, SQLite uses ?N, MySQL uses a bare ?.
func (d Dialect) Placeholder(index int) string {
	switch d {
	case Postgres:
		return "$" + strconv.Itoa(index)
	case Sqlite:
		return "?" + strconv.Itoa(index)
	case Mysql:
		return "?"
	default:
		return "?"
	}
}

// ConcatOp returns the infix string-concatenation operator for dialects
// that have one; MySQL has none (it lowers Concat to a CONCAT() call, see
// BinaryOp.Concat handling in render.go).
func (d Dialect) ConcatOp() string {
	switch d {
	case Postgres, Sqlite:
		return "||"
	default:
		return ""
	}
}

// SupportsILike reports whether the dialect has a native ILIKE operator.
func (d Dialect) SupportsILike() bool { return d == Postgres }

// QuoteIdent double-quote-wraps an identifier, doubling embedded quotes,
// matching the rendering convention used across every dialect here (spec
// §9 "Identifier escaping" — the expression renderer always double-quotes,
// even on MySQL, since callers are expected to run ANSI_QUOTES-equivalent
// SQL modes; callers targeting raw MySQL identifier quoting use Expr.Raw).
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
