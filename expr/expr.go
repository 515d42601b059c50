package expr

import "github.com/sqlmodel-go/sqlmodel"

// BinaryOp enumerates the binary operators an Expr tree can compose.
type BinaryOp int

const (
	OpEq BinaryOp = iota
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpConcat
)

func (op BinaryOp) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNe:
		return "<>"
	case OpLt:
		return "<"
	case OpLe:
		return "<="
	case OpGt:
		return ">"
	case OpGe:
		return ">="
	case OpAnd:
		return "AND"
	case OpOr:
		return "OR"
	case OpAdd:
		return "+"
	case OpSub:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	case OpBitAnd:
		return "&"
	case OpBitOr:
		return "|"
	case OpBitXor:
		return "^"
	case OpConcat:
		return "||"
	default:
		return "?"
	}
}

// UnaryOp enumerates the unary operators an Expr tree can compose.
type UnaryOp int

const (
	OpNot UnaryOp = iota
	OpNeg
	OpBitNot
)

func (op UnaryOp) String() string {
	switch op {
	case OpNot:
		return "NOT"
	case OpNeg:
		return "-"
	case OpBitNot:
		return "~"
	default:
		return "?"
	}
}

// kind discriminates the Expr tagged tree's variants.
type kind int

const (
	kColumn kind = iota
	kLiteral
	kPlaceholder
	kBinary
	kUnary
	kFunction
	kCase
	kIn
	kBetween
	kIsNull
	kLike
	kSubquery
	kRaw
	kParen
	kCountStar
	kDistinct
)

// whenClause is one WHEN ... THEN ... arm of a Case expression.
type whenClause struct {
	cond   Expr
	result Expr
}

// Expr is the tagged algebraic tree of spec §4.6. Only the fields
// matching kind are meaningful; zero value is never a valid Expr on its
// own (use the constructors below).
type Expr struct {
	k kind

	table string
	name  string

	lit sqlmodel.Value

	placeholder int

	left  *Expr
	right *Expr
	binOp BinaryOp

	unOp UnaryOp
	operand *Expr

	fname string
	args  []Expr

	whens []whenClause
	els   *Expr

	inValues []Expr
	negated  bool

	pattern          string
	caseInsensitive  bool

	raw string
}

// Col creates an unqualified column reference.
func Col(name string) Expr { return Expr{k: kColumn, name: name} }

// Qualified creates a table-qualified column reference (table.column).
func Qualified(table, column string) Expr { return Expr{k: kColumn, table: table, name: column} }

// Lit creates a parameterized literal expression; it is never inlined.
func Lit(v sqlmodel.Value) Expr { return Expr{k: kLiteral, lit: v} }

// NullLit creates a NULL literal.
func NullLit() Expr { return Lit(sqlmodel.Null()) }

// Raw creates a raw SQL escape hatch, inlined verbatim into the rendered
// SQL with no parameterization.
func Raw(sql string) Expr { return Expr{k: kRaw, raw: sql} }

// Placeholder creates an explicit numbered placeholder, rendered via the
// dialect's placeholder style without consuming a slot in the params
// slice (the caller is responsible for keeping params aligned).
func Placeholder(index int) Expr { return Expr{k: kPlaceholder, placeholder: index} }

// Subquery wraps a raw SQL string as a parenthesized subquery.
func Subquery(sql string) Expr { return Expr{k: kSubquery, raw: sql} }

// CountStar builds COUNT(*).
func CountStar() Expr { return Expr{k: kCountStar} }

func binary(left Expr, op BinaryOp, right Expr) Expr {
	return Expr{k: kBinary, left: &left, binOp: op, right: &right}
}

func (e Expr) Eq(other Expr) Expr { return binary(e, OpEq, other) }
func (e Expr) Ne(other Expr) Expr { return binary(e, OpNe, other) }
func (e Expr) Lt(other Expr) Expr { return binary(e, OpLt, other) }
func (e Expr) Le(other Expr) Expr { return binary(e, OpLe, other) }
func (e Expr) Gt(other Expr) Expr { return binary(e, OpGt, other) }
func (e Expr) Ge(other Expr) Expr { return binary(e, OpGe, other) }
func (e Expr) And(other Expr) Expr { return binary(e, OpAnd, other) }
func (e Expr) Or(other Expr) Expr  { return binary(e, OpOr, other) }
func (e Expr) Add(other Expr) Expr { return binary(e, OpAdd, other) }
func (e Expr) Sub(other Expr) Expr { return binary(e, OpSub, other) }
func (e Expr) Mul(other Expr) Expr { return binary(e, OpMul, other) }
func (e Expr) Div(other Expr) Expr { return binary(e, OpDiv, other) }
func (e Expr) Mod(other Expr) Expr { return binary(e, OpMod, other) }
func (e Expr) BitAnd(other Expr) Expr { return binary(e, OpBitAnd, other) }
func (e Expr) BitOr(other Expr) Expr  { return binary(e, OpBitOr, other) }
func (e Expr) BitXor(other Expr) Expr { return binary(e, OpBitXor, other) }
func (e Expr) Concat(other Expr) Expr { return binary(e, OpConcat, other) }

func (e Expr) Not() Expr { return Expr{k: kUnary, unOp: OpNot, operand: &e} }
func (e Expr) Neg() Expr { return Expr{k: kUnary, unOp: OpNeg, operand: &e} }
func (e Expr) BitNot() Expr { return Expr{k: kUnary, unOp: OpBitNot, operand: &e} }

func (e Expr) IsNull() Expr    { return Expr{k: kIsNull, operand: &e, negated: false} }
func (e Expr) IsNotNull() Expr { return Expr{k: kIsNull, operand: &e, negated: true} }

func (e Expr) Like(pattern string) Expr {
	return Expr{k: kLike, operand: &e, pattern: pattern}
}

func (e Expr) NotLike(pattern string) Expr {
	return Expr{k: kLike, operand: &e, pattern: pattern, negated: true}
}

func (e Expr) ILike(pattern string) Expr {
	return Expr{k: kLike, operand: &e, pattern: pattern, caseInsensitive: true}
}

func (e Expr) NotILike(pattern string) Expr {
	return Expr{k: kLike, operand: &e, pattern: pattern, negated: true, caseInsensitive: true}
}

func (e Expr) In(values ...Expr) Expr {
	return Expr{k: kIn, operand: &e, inValues: values}
}

func (e Expr) NotIn(values ...Expr) Expr {
	return Expr{k: kIn, operand: &e, inValues: values, negated: true}
}

func (e Expr) Between(low, high Expr) Expr {
	return Expr{k: kBetween, operand: &e, left: &low, right: &high}
}

func (e Expr) NotBetween(low, high Expr) Expr {
	return Expr{k: kBetween, operand: &e, left: &low, right: &high, negated: true}
}

// Paren wraps the expression in explicit parentheses; the renderer never
// inserts parentheses on its own (spec §4.6 — operator precedence is not
// enforced, callers opt in explicitly).
func (e Expr) Paren() Expr { return Expr{k: kParen, operand: &e} }

// Function builds a generic function-call expression, e.g. Function("UPPER", Col("name")).
func Function(name string, args ...Expr) Expr {
	return Expr{k: kFunction, fname: name, args: args}
}

func (e Expr) Count() Expr { return Function("COUNT", e) }
func (e Expr) Sum() Expr   { return Function("SUM", e) }
func (e Expr) Avg() Expr   { return Function("AVG", e) }
func (e Expr) Min() Expr   { return Function("MIN", e) }
func (e Expr) Max() Expr   { return Function("MAX", e) }

// CaseBuilder accumulates WHEN/THEN arms for a CASE expression.
type CaseBuilder struct {
	whens []whenClause
}

// Case starts a CASE WHEN ... END builder.
func Case() *CaseBuilder { return &CaseBuilder{} }

func (b *CaseBuilder) When(cond, result Expr) *CaseBuilder {
	b.whens = append(b.whens, whenClause{cond: cond, result: result})
	return b
}

// Else finalizes the CASE expression with an ELSE clause.
func (b *CaseBuilder) Else(result Expr) Expr {
	return Expr{k: kCase, whens: b.whens, els: &result}
}

// End finalizes the CASE expression with no ELSE clause.
func (b *CaseBuilder) End() Expr {
	return Expr{k: kCase, whens: b.whens}
}

// OrderDirection is the sort direction of an OrderBy clause.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

func (d OrderDirection) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// NullsOrder places NULLs first or last in an OrderBy clause; zero value
// means "dialect default" and is omitted from the rendered SQL.
type NullsOrder int

const (
	NullsDefault NullsOrder = iota
	NullsFirst
	NullsLast
)

// OrderBy pairs an expression with a sort direction and optional NULLS
// placement, as generated by Expr.Asc()/Expr.Desc().
type OrderBy struct {
	Expr      Expr
	Direction OrderDirection
	Nulls     NullsOrder
}

func (e Expr) Asc() OrderBy  { return OrderBy{Expr: e, Direction: Asc} }
func (e Expr) Desc() OrderBy { return OrderBy{Expr: e, Direction: Desc} }

// NullsFirstOrder returns a copy of ob with NULLs ordered first.
func (ob OrderBy) NullsFirstOrder() OrderBy { ob.Nulls = NullsFirst; return ob }

// NullsLastOrder returns a copy of ob with NULLs ordered last.
func (ob OrderBy) NullsLastOrder() OrderBy { ob.Nulls = NullsLast; return ob }

// Distinct wraps an expression list in DISTINCT, as used by SELECT DISTINCT
// and COUNT(DISTINCT ...).
type Distinct struct {
	Exprs []Expr
}

// DistinctOf builds a DISTINCT wrapper over one or more expressions.
func DistinctOf(exprs ...Expr) Distinct { return Distinct{Exprs: exprs} }
