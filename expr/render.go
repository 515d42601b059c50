package expr

import (
	"strconv"
	"strings"

	"github.com/sqlmodel-go/sqlmodel"
)

// Build renders the expression as PostgreSQL SQL, appending encoded
// literals to params and returning the rendered text. It is a convenience
// wrapper around BuildWithDialect(Postgres, ...).
func (e Expr) Build(params *[]sqlmodel.Value, offset int) string {
	return e.BuildWithDialect(Postgres, params, offset)
}

// BuildWithDialect recursively renders the expression to dialect-specific
// SQL text, appending encoded literal parameters to params in the order
// they're bound. A literal's placeholder index is offset plus its position
// in params, so offset lets callers compose sub-expressions rendered into
// separate parameter vectors (e.g. a WHERE clause rendered into its own
// params after SET clauses already took the first offset placeholders);
// when sub-expressions share one params vector, pass offset 0.
func (e Expr) BuildWithDialect(dialect Dialect, params *[]sqlmodel.Value, offset int) string {
	switch e.k {
	case kColumn:
		if e.table != "" {
			return QuoteIdent(e.table) + "." + QuoteIdent(e.name)
		}
		return QuoteIdent(e.name)

	case kLiteral:
		*params = append(*params, e.lit)
		return dialect.Placeholder(offset + len(*params))

	case kPlaceholder:
		return dialect.Placeholder(e.placeholder)

	case kBinary:
		leftSQL := e.left.BuildWithDialect(dialect, params, offset)
		rightSQL := e.right.BuildWithDialect(dialect, params, offset)
		if e.binOp == OpConcat && dialect == Mysql {
			return "CONCAT(" + leftSQL + ", " + rightSQL + ")"
		}
		return leftSQL + " " + e.binOp.String() + " " + rightSQL

	case kUnary:
		operandSQL := e.operand.BuildWithDialect(dialect, params, offset)
		switch e.unOp {
		case OpNot:
			return "NOT " + operandSQL
		case OpNeg:
			return "-" + operandSQL
		case OpBitNot:
			return "~" + operandSQL
		}
		return operandSQL

	case kFunction:
		args := make([]string, len(e.args))
		for i, a := range e.args {
			args[i] = a.BuildWithDialect(dialect, params, offset)
		}
		return e.fname + "(" + strings.Join(args, ", ") + ")"

	case kCase:
		var b strings.Builder
		b.WriteString("CASE")
		for _, w := range e.whens {
			condSQL := w.cond.BuildWithDialect(dialect, params, offset)
			resultSQL := w.result.BuildWithDialect(dialect, params, offset)
			b.WriteString(" WHEN ")
			b.WriteString(condSQL)
			b.WriteString(" THEN ")
			b.WriteString(resultSQL)
		}
		if e.els != nil {
			b.WriteString(" ELSE ")
			b.WriteString(e.els.BuildWithDialect(dialect, params, offset))
		}
		b.WriteString(" END")
		return b.String()

	case kIn:
		operandSQL := e.operand.BuildWithDialect(dialect, params, offset)
		values := make([]string, len(e.inValues))
		for i, v := range e.inValues {
			values[i] = v.BuildWithDialect(dialect, params, offset)
		}
		not := ""
		if e.negated {
			not = "NOT "
		}
		return operandSQL + " " + not + "IN (" + strings.Join(values, ", ") + ")"

	case kBetween:
		operandSQL := e.operand.BuildWithDialect(dialect, params, offset)
		lowSQL := e.left.BuildWithDialect(dialect, params, offset)
		highSQL := e.right.BuildWithDialect(dialect, params, offset)
		not := ""
		if e.negated {
			not = "NOT "
		}
		return operandSQL + " " + not + "BETWEEN " + lowSQL + " AND " + highSQL

	case kIsNull:
		operandSQL := e.operand.BuildWithDialect(dialect, params, offset)
		if e.negated {
			return operandSQL + " IS NOT NULL"
		}
		return operandSQL + " IS NULL"

	case kLike:
		operandSQL := e.operand.BuildWithDialect(dialect, params, offset)
		*params = append(*params, sqlmodel.NewText(e.pattern))
		param := dialect.Placeholder(offset + len(*params))
		not := ""
		if e.negated {
			not = "NOT "
		}
		if e.caseInsensitive {
			if dialect.SupportsILike() {
				return operandSQL + " " + not + "ILIKE " + param
			}
			return "LOWER(" + operandSQL + ") " + not + "LIKE LOWER(" + param + ")"
		}
		return operandSQL + " " + not + "LIKE " + param

	case kSubquery:
		return "(" + e.raw + ")"

	case kRaw:
		return e.raw

	case kParen:
		return "(" + e.operand.BuildWithDialect(dialect, params, offset) + ")"

	case kCountStar:
		return "COUNT(*)"

	default:
		return ""
	}
}

// BuildOrderBy renders an ORDER BY item's expression plus direction and
// optional NULLS placement.
func (ob OrderBy) BuildOrderBy(dialect Dialect, params *[]sqlmodel.Value, offset int) string {
	sql := ob.Expr.BuildWithDialect(dialect, params, offset) + " " + ob.Direction.String()
	switch ob.Nulls {
	case NullsFirst:
		sql += " NULLS FIRST"
	case NullsLast:
		sql += " NULLS LAST"
	}
	return sql
}

// BuildDistinct renders "DISTINCT expr1, expr2, ..." for use inside a
// SELECT list or an aggregate function's argument list (e.g.
// COUNT(DISTINCT col)); callers wrap the result in the surrounding
// function call themselves.
func (d Distinct) BuildDistinct(dialect Dialect, params *[]sqlmodel.Value, offset int) string {
	parts := make([]string, len(d.Exprs))
	for i, e := range d.Exprs {
		parts[i] = e.BuildWithDialect(dialect, params, offset)
	}
	return "DISTINCT " + strings.Join(parts, ", ")
}

// placeholderCount is a small helper exercised by tests asserting the
// rendered-placeholder-count invariant (spec §8.1): for a literal-only
// expression it equals the number of non-null parameters bound.
func placeholderCount(sql string, dialect Dialect) int {
	switch dialect {
	case Mysql:
		return strings.Count(sql, "?")
	default:
		n := 0
		for i := 0; i < len(sql); i++ {
			if sql[i] == '$' || sql[i] == '?' {
				j := i + 1
				for j < len(sql) && sql[j] >= '0' && sql[j] <= '9' {
					j++
				}
				if j > i+1 {
					if _, err := strconv.Atoi(sql[i+1 : j]); err == nil {
						n++
					}
				}
			}
		}
		return n
	}
}
