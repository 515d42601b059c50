package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestBuildWithDialect_Placeholders(t *testing.T) {
	for _, dialect := range []Dialect{Postgres, Sqlite, Mysql} {
		e := Col("age").Gt(Lit(sqlmodel.NewInt(18))).And(Col("status").Eq(Lit(sqlmodel.NewText("active"))))
		var params []sqlmodel.Value
		sql := e.BuildWithDialect(dialect, &params, 0)
		require.Len(t, params, 2)
		assert.Equal(t, 2, placeholderCount(sql, dialect))
	}
}

func TestBuildWithDialect_QualifiedColumn(t *testing.T) {
	var params []sqlmodel.Value
	sql := Qualified("users", "id").BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, `"users"."id"`, sql)
	assert.Empty(t, params)
}

func TestBuildWithDialect_Concat(t *testing.T) {
	e := Col("first_name").Concat(Col("last_name"))
	var params []sqlmodel.Value

	pg := e.BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, `"first_name" || "last_name"`, pg)

	params = nil
	mysql := e.BuildWithDialect(Mysql, &params, 0)
	assert.Equal(t, `CONCAT("first_name", "last_name")`, mysql)
}

func TestBuildWithDialect_ILike(t *testing.T) {
	e := Col("name").ILike("%bob%")

	var pgParams []sqlmodel.Value
	pg := e.BuildWithDialect(Postgres, &pgParams, 0)
	assert.Equal(t, `"name" ILIKE $1`, pg)

	var sqliteParams []sqlmodel.Value
	sqlite := e.BuildWithDialect(Sqlite, &sqliteParams, 0)
	assert.Equal(t, `LOWER("name") LIKE LOWER(?1)`, sqlite)
}

func TestBuildWithDialect_InNotIn(t *testing.T) {
	e := Col("id").In(Lit(sqlmodel.NewInt(1)), Lit(sqlmodel.NewInt(2)))
	var params []sqlmodel.Value
	sql := e.BuildWithDialect(Mysql, &params, 0)
	assert.Equal(t, `"id" IN (?, ?)`, sql)
	assert.Len(t, params, 2)
}

func TestBuildWithDialect_Between(t *testing.T) {
	e := Col("age").Between(Lit(sqlmodel.NewInt(1)), Lit(sqlmodel.NewInt(99))).Not()
	var params []sqlmodel.Value
	sql := e.BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, `NOT "age" BETWEEN $1 AND $2`, sql)
}

func TestBuildWithDialect_CaseExpr(t *testing.T) {
	e := Case().
		When(Col("status").Eq(Lit(sqlmodel.NewText("active"))), Lit(sqlmodel.NewText("Yes"))).
		When(Col("status").Eq(Lit(sqlmodel.NewText("pending"))), Lit(sqlmodel.NewText("Maybe"))).
		Else(Lit(sqlmodel.NewText("No")))
	var params []sqlmodel.Value
	sql := e.BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, `CASE WHEN "status" = $1 THEN $2 WHEN "status" = $3 THEN $4 ELSE $5 END`, sql)
	assert.Len(t, params, 5)
}

func TestBuildWithDialect_RawNotParameterized(t *testing.T) {
	e := Raw("NOW()")
	var params []sqlmodel.Value
	sql := e.BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, "NOW()", sql)
	assert.Empty(t, params)
}

func TestBuildWithDialect_ParenAndCountStar(t *testing.T) {
	var params []sqlmodel.Value
	sql := CountStar().BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, "COUNT(*)", sql)

	paren := Col("a").Eq(Lit(sqlmodel.NewInt(1))).Or(Col("b").Eq(Lit(sqlmodel.NewInt(2)))).Paren()
	params = nil
	sql = paren.BuildWithDialect(Postgres, &params, 0)
	assert.Equal(t, `("a" = $1 OR "b" = $2)`, sql)
}

func TestBuildWithDialect_Offset(t *testing.T) {
	e := Col("x").Eq(Lit(sqlmodel.NewInt(1)))
	var params []sqlmodel.Value
	sql := e.BuildWithDialect(Postgres, &params, 3)
	assert.Equal(t, `"x" = $4`, sql)
}

func TestOrderBy_NullsPlacement(t *testing.T) {
	ob := Col("created_at").Desc().NullsLastOrder()
	var params []sqlmodel.Value
	sql := ob.BuildOrderBy(Postgres, &params, 0)
	assert.Equal(t, `"created_at" DESC NULLS LAST`, sql)
}

func TestDistinct_Build(t *testing.T) {
	d := DistinctOf(Col("email"))
	var params []sqlmodel.Value
	sql := d.BuildDistinct(Postgres, &params, 0)
	assert.Equal(t, `DISTINCT "email"`, sql)
}

func TestSubquery(t *testing.T) {
	e := Subquery("SELECT 1")
	var params []sqlmodel.Value
	assert.Equal(t, "(SELECT 1)", e.BuildWithDialect(Postgres, &params, 0))
}
