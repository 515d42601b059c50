package model

import (
	"reflect"

	"github.com/sqlmodel-go/sqlmodel/internal/naming"
)

// TableNamer lets a model type override its derived table name (spec
// §4.5 point 1, "Explicit override takes precedence").
type TableNamer interface {
	TableName() string
}

// deriveTableName implements spec §4.5 point 1: snake_case the type name,
// then pluralize, unless the type implements TableNamer.
func deriveTableName(t reflect.Type, zero any) string {
	if namer, ok := zero.(TableNamer); ok {
		if name := namer.TableName(); name != "" {
			return name
		}
	}
	return naming.TableName(t.Name())
}
