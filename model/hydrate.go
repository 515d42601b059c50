package model

import (
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sqlmodel-go/sqlmodel"
)

// ToRow emits (column_name, Value) pairs for every persistable field of
// instance (spec §4.5 "Serialization glue"), skipping computed and
// excluded fields. For a single-inheritance child it always includes the
// discriminator pair, even when the struct has no explicit discriminator
// field, the way the parent/child table is shared.
func ToRow(instance any) ([]string, []sqlmodel.Value, error) {
	info, err := Compile(instance)
	if err != nil {
		return nil, nil, err
	}

	v := reflect.ValueOf(instance)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	var names []string
	var values []sqlmodel.Value

	for _, f := range info.Fields {
		if f.Computed || f.Excluded {
			continue
		}
		if f.FieldName == "_discriminator" {
			names = append(names, f.ColumnName)
			values = append(values, sqlmodel.NewText(info.Inheritance.DiscriminatorValue))
			continue
		}
		fv := fieldByIndex(v, f.structIndex)
		if !fv.IsValid() {
			continue
		}
		val, err := goToValue(fv)
		if err != nil {
			return nil, nil, fmt.Errorf("model: field %s: %w", f.FieldName, err)
		}
		names = append(names, f.ColumnName)
		values = append(values, val)
	}

	if info.IsSingleChild() {
		hasDiscriminator := false
		for _, n := range names {
			if n == info.Inheritance.DiscriminatorColumn {
				hasDiscriminator = true
				break
			}
		}
		if !hasDiscriminator {
			names = append(names, info.Inheritance.DiscriminatorColumn)
			values = append(values, sqlmodel.NewText(info.Inheritance.DiscriminatorValue))
		}
	}

	return names, values, nil
}

// FromRow hydrates dest (a pointer to a model struct) from row's named
// columns (spec §4.5 "Serialization glue"). Option/pointer fields
// tolerate an absent column; required (non-pointer) fields propagate a
// lookup failure. Embedded parent fields for joined-inheritance children
// are hydrated by recursing on row.SubsetByPrefix(parentTable).
func FromRow(row sqlmodel.Row, dest any) error {
	info, err := Compile(dest)
	if err != nil {
		return err
	}

	v := reflect.ValueOf(dest)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return fmt.Errorf("model: FromRow requires a non-nil pointer, got %T", dest)
	}
	v = v.Elem()

	for _, f := range info.Fields {
		if f.FieldName == "_discriminator" {
			continue
		}
		if !row.Has(f.ColumnName) {
			if f.Nullable || isPointerOrOptional(f.goType) {
				continue
			}
			return sqlmodel.NewQueryError(sqlmodel.QueryNotFound,
				fmt.Sprintf("model: required column %q missing from row", f.ColumnName), nil)
		}
		val, err := row.Get(f.ColumnName)
		if err != nil {
			return err
		}
		fv := fieldByIndex(v, f.structIndex)
		if !fv.IsValid() || !fv.CanSet() {
			continue
		}
		if err := setGoValue(fv, val); err != nil {
			return fmt.Errorf("model: field %s: %w", f.FieldName, err)
		}
	}

	if info.IsJoinedChild() && info.Inheritance.ParentTable != "" {
		parentRow := row.SubsetByPrefix(info.Inheritance.ParentTable)
		parentField := findEmbeddedParentField(v, info.Inheritance.ParentType)
		if parentField.IsValid() && parentField.CanAddr() {
			if err := FromRow(parentRow, parentField.Addr().Interface()); err != nil {
				return err
			}
		}
	}

	return nil
}

func findEmbeddedParentField(v reflect.Value, parentType reflect.Type) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous {
			ft := f.Type
			if ft.Kind() == reflect.Ptr {
				ft = ft.Elem()
			}
			if ft == parentType {
				return v.Field(i)
			}
		}
	}
	return reflect.Value{}
}

func isPointerOrOptional(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Ptr
}

// goToValue converts a Go struct field's reflect.Value to a sqlmodel.Value.
func goToValue(fv reflect.Value) (sqlmodel.Value, error) {
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			return sqlmodel.Null(), nil
		}
		fv = fv.Elem()
	}

	switch iv := fv.Interface().(type) {
	case uuid.UUID:
		return sqlmodel.NewUUID(iv), nil
	case decimal.Decimal:
		return sqlmodel.NewDecimalFromDecimal(iv), nil
	case time.Time:
		return sqlmodel.NewTimestampTz(iv.UTC().UnixMicro()), nil
	}

	switch fv.Kind() {
	case reflect.Bool:
		return sqlmodel.NewBool(fv.Bool()), nil
	case reflect.Int8:
		return sqlmodel.NewTinyInt(int8(fv.Int())), nil
	case reflect.Int16:
		return sqlmodel.NewSmallInt(int16(fv.Int())), nil
	case reflect.Int32, reflect.Int:
		return sqlmodel.NewInt(int32(fv.Int())), nil
	case reflect.Int64:
		return sqlmodel.NewBigInt(fv.Int()), nil
	case reflect.Float32:
		return sqlmodel.NewFloat(float32(fv.Float())), nil
	case reflect.Float64:
		return sqlmodel.NewDouble(fv.Float()), nil
	case reflect.String:
		return sqlmodel.NewText(fv.String()), nil
	case reflect.Slice:
		if fv.Type().Elem().Kind() == reflect.Uint8 {
			return sqlmodel.NewBytes(fv.Bytes()), nil
		}
		return sqlmodel.NewJSON(fv.Interface()), nil
	case reflect.Map, reflect.Struct:
		return sqlmodel.NewJSON(fv.Interface()), nil
	default:
		return sqlmodel.Value{}, fmt.Errorf("unsupported field kind %s", fv.Kind())
	}
}

// setGoValue assigns a decoded sqlmodel.Value into a struct field,
// allocating through a pointer for nullable/Option fields.
func setGoValue(fv reflect.Value, val sqlmodel.Value) error {
	target := fv
	if fv.Kind() == reflect.Ptr {
		if val.IsNull() {
			fv.Set(reflect.Zero(fv.Type()))
			return nil
		}
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		target = fv.Elem()
	} else if val.IsNull() {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}

	switch target.Interface().(type) {
	case uuid.UUID:
		u, err := val.UUID()
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(u))
		return nil
	case decimal.Decimal:
		d, err := val.Decimal()
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(d))
		return nil
	case time.Time:
		micros, err := val.Timestamp()
		if err != nil {
			return err
		}
		target.Set(reflect.ValueOf(time.UnixMicro(micros).UTC()))
		return nil
	}

	switch target.Kind() {
	case reflect.Bool:
		b, err := val.Bool()
		if err != nil {
			return err
		}
		target.SetBool(b)
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int, reflect.Int64:
		n, err := val.Int64()
		if err != nil {
			return err
		}
		target.SetInt(n)
	case reflect.Float32:
		f, err := val.Float32()
		if err != nil {
			return err
		}
		target.SetFloat(float64(f))
	case reflect.Float64:
		f, err := val.Float64()
		if err != nil {
			return err
		}
		target.SetFloat(f)
	case reflect.String:
		s, err := val.Text()
		if err != nil {
			return err
		}
		target.SetString(s)
	case reflect.Slice:
		if target.Type().Elem().Kind() == reflect.Uint8 {
			b, err := val.Bytes()
			if err != nil {
				return err
			}
			target.SetBytes(b)
			return nil
		}
		j, err := val.JSON()
		if err != nil {
			return err
		}
		if j != nil {
			target.Set(reflect.ValueOf(j))
		}
	default:
		return fmt.Errorf("unsupported target kind %s", target.Kind())
	}
	return nil
}
