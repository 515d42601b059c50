package model

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sqlmodel-go/sqlmodel/internal/naming"
)

// tagParts splits a struct tag value on commas into key[=value] pairs,
// trimming whitespace, the way TheBlackhowling-typedb's splitTag does for
// its "load" tag (reflect.go), generalized to carry an optional value.
func tagParts(tag string) map[string]string {
	out := make(map[string]string)
	if tag == "" {
		return out
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if i := strings.IndexByte(part, '='); i >= 0 {
			out[part[:i]] = part[i+1:]
		} else {
			out[part] = ""
		}
	}
	return out
}

func has(m map[string]string, key string) bool {
	_, ok := m[key]
	return ok
}

// compileFieldTags fills in the flag/constraint portion of a FieldInfo
// from the "model" struct tag (spec §3.5 FieldInfo flags/FK/default/check/
// comment/precision-scale/alias list).
func compileFieldTags(f *FieldInfo, tag string) {
	parts := tagParts(tag)

	f.PrimaryKey = has(parts, "pk")
	f.AutoIncrement = has(parts, "auto")
	f.Unique = has(parts, "unique")
	f.Computed = has(parts, "computed")
	f.Excluded = has(parts, "exclude")
	f.Discriminator = has(parts, "discriminator")

	if v, ok := parts["sql"]; ok {
		f.SQLType = v
	}
	if v, ok := parts["fk"]; ok {
		if i := strings.LastIndexByte(v, '.'); i >= 0 {
			f.ForeignKeyTable = v[:i]
			f.ForeignKeyColumn = v[i+1:]
		}
	}
	if v, ok := parts["onDelete"]; ok {
		f.OnDelete = v
	}
	if v, ok := parts["onUpdate"]; ok {
		f.OnUpdate = v
	}
	if v, ok := parts["default"]; ok {
		f.Default = v
	}
	if v, ok := parts["check"]; ok {
		f.Checks = append(f.Checks, v)
	}
	if v, ok := parts["comment"]; ok {
		f.Comment = v
	}
	if v, ok := parts["precision"]; ok {
		f.Precision, _ = strconv.Atoi(v)
	}
	if v, ok := parts["scale"]; ok {
		f.Scale, _ = strconv.Atoi(v)
	}
	if v, ok := parts["column"]; ok {
		f.ColumnName = v
	}
	if v, ok := parts["alias"]; ok {
		segs := strings.SplitN(v, ":", 3)
		if len(segs) > 0 {
			f.AliasGeneral = segs[0]
		}
		if len(segs) > 1 {
			f.AliasInput = segs[1]
		}
		if len(segs) > 2 {
			f.AliasOutput = segs[2]
		}
	}
}

// compileRelationshipTag fills in a RelationshipInfo from the "rel" tag
// (spec §3.5: "related table name, kind, optional local/remote key
// columns, optional link-table descriptor, back-reference name, loading
// strategy, cascade policy, passive-deletes policy").
func compileRelationshipTag(r *RelationshipInfo, tag string) {
	parts := tagParts(tag)

	if v, ok := parts["table"]; ok {
		r.RelatedTable = v
	}
	switch parts["kind"] {
	case "one_to_one":
		r.Kind = OneToOne
	case "many_to_one":
		r.Kind = ManyToOne
	case "one_to_many":
		r.Kind = OneToMany
	case "many_to_many":
		r.Kind = ManyToMany
	}
	if v, ok := parts["local"]; ok {
		r.LocalKey = v
	}
	if v, ok := parts["remote"]; ok {
		r.RemoteKey = v
	}
	if v, ok := parts["link"]; ok {
		segs := strings.Split(v, ":")
		if len(segs) == 3 {
			r.LinkTable = &LinkTableInfo{Table: segs[0], LocalColumn: segs[1], RemoteColumn: segs[2]}
			// A link table descriptor makes this relationship many-to-many
			// regardless of the declared kind (spec §4.5 point 4).
			r.Kind = ManyToMany
		}
	}
	if v, ok := parts["back"]; ok {
		r.BackRef = v
	}
	if parts["loading"] == "eager" {
		r.Loading = LoadEager
	}
	switch parts["cascade"] {
	case "all":
		r.Cascade = CascadeAll
	case "delete":
		r.Cascade = CascadeDelete
	case "save_update":
		r.Cascade = CascadeSaveUpdate
	}
	r.PassiveDeletes = has(parts, "passive_deletes")
}

// relationshipWrapperKind reports whether t is one of the Related[T]/
// RelatedMany[T]/Lazy[T] generic wrappers in this package, and which.
func relationshipWrapperKind(t reflect.Type) (isRelationship bool, many bool) {
	if t.Kind() != reflect.Struct || t.PkgPath() != reflectTagsPkgPath {
		return false, false
	}
	name := t.Name()
	switch {
	case strings.HasPrefix(name, "Related["):
		return true, false
	case strings.HasPrefix(name, "RelatedMany["):
		return true, true
	case strings.HasPrefix(name, "Lazy["):
		return true, false
	default:
		return false, false
	}
}

var reflectTagsPkgPath = reflect.TypeOf(Related[struct{}]{}).PkgPath()

// relatedElemType extracts T from Related[T]/RelatedMany[T]/Lazy[T] by
// inspecting the wrapper's first field: *T in Related, []T in RelatedMany,
// and the Loader[T] func (returning *T) in Lazy.
func relatedElemType(t reflect.Type) reflect.Type {
	if t.NumField() == 0 {
		return nil
	}
	ft := t.Field(0).Type
	switch ft.Kind() {
	case reflect.Ptr, reflect.Slice:
		return ft.Elem()
	case reflect.Func:
		// Lazy[T] declares loader first (loader, value, loaded), and
		// reflect field order follows declaration order.
		if ft.NumOut() > 0 {
			return ft.Out(0).Elem()
		}
	}
	return nil
}

// inferSQLType maps a Go runtime type to a default SQL type name (spec
// §4.5 point 3), absent an explicit "sql=" override.
func inferSQLType(t reflect.Type) (sqlType string, nullable bool) {
	if t.Kind() == reflect.Ptr {
		nullable = true
		t = t.Elem()
	}
	switch {
	case t == reflect.TypeOf(uuid.UUID{}):
		return "UUID", nullable
	case t == reflect.TypeOf(decimal.Decimal{}):
		return "DECIMAL", nullable
	case t.PkgPath() == "time" && t.Name() == "Time":
		return "TIMESTAMP", nullable
	}
	switch t.Kind() {
	case reflect.Bool:
		return "BOOLEAN", nullable
	case reflect.Int8:
		return "TINYINT", nullable
	case reflect.Int16:
		return "SMALLINT", nullable
	case reflect.Int32, reflect.Int:
		return "INTEGER", nullable
	case reflect.Int64:
		return "BIGINT", nullable
	case reflect.Float32:
		return "FLOAT", nullable
	case reflect.Float64:
		return "DOUBLE", nullable
	case reflect.String:
		return "TEXT", nullable
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return "BYTEA", nullable
		}
		return "JSON", nullable
	case reflect.Map, reflect.Struct:
		return "JSON", nullable
	default:
		return "TEXT", nullable
	}
}

// columnNameFor derives a field's column name absent an override: the
// snake_case of the Go field name.
func columnNameFor(fieldName string) string {
	return naming.ToSnakeCase(fieldName)
}
