package postgres

import (
	"testing"

	"github.com/sqlmodel-go/sqlmodel"
)

func TestSQLStateMapping(t *testing.T) {
	cases := []struct {
		sqlstate string
		wantKind sqlmodel.ErrorKind
	}{
		{"08006", sqlmodel.KindErrConnection},
		{"28P01", sqlmodel.KindErrConnection},
		{"42601", sqlmodel.KindErrQuery},
		{"23505", sqlmodel.KindErrQuery},
		{"40001", sqlmodel.KindErrQuery},
		{"40P01", sqlmodel.KindErrQuery},
		{"57014", sqlmodel.KindErrQuery},
		{"57P03", sqlmodel.KindErrQuery},
		{"XX000", sqlmodel.KindErrQuery},
	}
	for _, c := range cases {
		r := buildErrorResponsePayload(c.sqlstate, "boom")
		cn := &conn{}
		err := cn.decodeError(r)
		se, ok := err.(*sqlmodel.Error)
		if !ok {
			t.Fatalf("sqlstate %s: not a *sqlmodel.Error", c.sqlstate)
		}
		if se.Kind != c.wantKind {
			t.Errorf("sqlstate %s: kind = %v, want %v", c.sqlstate, se.Kind, c.wantKind)
		}
	}
}

func TestSQLStateQuerySubKinds(t *testing.T) {
	cases := map[string]sqlmodel.QuerySubKind{
		"42601": sqlmodel.QuerySyntax,
		"23505": sqlmodel.QueryConstraint,
		"40001": sqlmodel.QuerySerialization,
		"40P01": sqlmodel.QueryDeadlock,
		"57014": sqlmodel.QueryCancelled,
		"57P03": sqlmodel.QueryTimeout,
		"XX000": sqlmodel.QueryDatabase,
	}
	for sqlstate, want := range cases {
		if got := sqlstateToQuerySubKind(sqlstate); got != want {
			t.Errorf("sqlstate %s: subkind = %v, want %v", sqlstate, got, want)
		}
	}
}

func buildErrorResponsePayload(sqlstate, message string) readBuf {
	var b []byte
	b = append(b, 'C')
	b = append(b, sqlstate...)
	b = append(b, 0)
	b = append(b, 'M')
	b = append(b, message...)
	b = append(b, 0)
	b = append(b, 0) // terminator
	return readBuf(b)
}
