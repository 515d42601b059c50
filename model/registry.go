package model

import (
	"fmt"
	"reflect"
	"sync"
)

// registry caches compiled ModelInfo by Go type, grounded on
// TheBlackhowling-typedb's registeredModels/registerMutex pattern
// (registry.go), generalized from a validate-only registry to one that
// also caches the full compiled metadata so repeated Compile calls for
// the same type are free.
var (
	registryMu sync.RWMutex
	registry   = map[reflect.Type]*ModelInfo{}
)

// RegisterModel compiles and caches T's metadata, panicking on failure
// the way typedb's RegisterModel does (spec models are expected to be
// registered from an init() function, which cannot return an error).
func RegisterModel[T any]() *ModelInfo {
	var zero T
	info, err := Compile(zero)
	if err != nil {
		panic(fmt.Errorf("model: registration failed for %T: %w", zero, err))
	}
	return info
}

// Compile derives a ModelInfo for the given instance's type, consulting
// and populating the registry cache.
func Compile(instance any) (*ModelInfo, error) {
	t := reflect.TypeOf(instance)
	if t == nil {
		return nil, fmt.Errorf("model: cannot compile nil instance")
	}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("model: %s is not a struct", t)
	}

	registryMu.RLock()
	if info, ok := registry[t]; ok {
		registryMu.RUnlock()
		return info, nil
	}
	registryMu.RUnlock()

	info, err := compileType(t, instance)
	if err != nil {
		return nil, err
	}

	registryMu.Lock()
	registry[t] = info
	registryMu.Unlock()
	return info, nil
}

// MustCompile is Compile but panics on error, for use in package-level
// var initializers.
func MustCompile(instance any) *ModelInfo {
	info, err := Compile(instance)
	if err != nil {
		panic(err)
	}
	return info
}

// Lookup returns the cached ModelInfo for t if it has already been
// compiled, without compiling it.
func Lookup(t reflect.Type) (*ModelInfo, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	info, ok := registry[t]
	return info, ok
}

// ClearRegistry clears all cached model metadata; intended for tests.
func ClearRegistry() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = map[reflect.Type]*ModelInfo{}
}

func compileType(t reflect.Type, zero any) (*ModelInfo, error) {
	info := &ModelInfo{GoType: t}
	info.TableName = deriveTableName(t, zero)

	if err := walkFields(t, nil, info, true); err != nil {
		return nil, err
	}

	if len(info.PrimaryKey) == 0 {
		if f := info.FieldByName("ID"); f != nil {
			info.PrimaryKey = []string{f.ColumnName}
		}
	}

	if info.Inheritance.Strategy == InheritanceSingle && info.Inheritance.ParentType != nil {
		found := false
		for _, f := range info.Fields {
			if f.Discriminator {
				found = true
				break
			}
		}
		if !found && info.Inheritance.DiscriminatorColumn != "" {
			info.Fields = append(info.Fields, &FieldInfo{
				FieldName:     "_discriminator",
				ColumnName:    info.Inheritance.DiscriminatorColumn,
				SQLType:       "TEXT",
				Discriminator: true,
			})
		}
	}

	return info, nil
}

// walkFields recursively walks t's fields, appending FieldInfo/
// RelationshipInfo entries to info and recognizing an anonymous embedded
// parent-model field tagged "inherits" (spec §3.5/§9).
func walkFields(t reflect.Type, indexPrefix []int, info *ModelInfo, top bool) error {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		idx := append(append([]int{}, indexPrefix...), i)

		if !field.IsExported() {
			continue
		}

		modelTag := field.Tag.Get("model")
		modelParts := tagParts(modelTag)

		if field.Anonymous && has(modelParts, "inherits") {
			parentType := field.Type
			if parentType.Kind() == reflect.Ptr {
				parentType = parentType.Elem()
			}
			parentZero := reflect.New(parentType).Elem().Interface()
			parentInfo, err := Compile(parentZero)
			if err != nil {
				return fmt.Errorf("model: compiling embedded parent %s: %w", parentType, err)
			}
			info.Inheritance.ParentType = parentType
			info.Inheritance.ParentTable = parentInfo.TableName
			info.Inheritance.DiscriminatorColumn = parentInfo.Inheritance.DiscriminatorColumn
			if info.Inheritance.DiscriminatorColumn == "" {
				info.Inheritance.DiscriminatorColumn = "type"
			}
			if has(modelParts, "concrete") {
				info.Inheritance.Strategy = InheritanceConcrete
				// Concrete inheritance duplicates the parent's columns
				// into this model's own table rather than embedding a
				// join, so recurse into the parent's fields directly.
				if err := walkFields(parentType, idx, info, false); err != nil {
					return err
				}
				continue
			}
			if v, ok := modelParts["discriminator"]; ok {
				info.Inheritance.Strategy = InheritanceSingle
				info.Inheritance.DiscriminatorValue = v
				// Single-table inheritance shares one table with the
				// parent, so the parent's own columns are flattened in
				// here too (spec §3.5 "Single (shared table with
				// discriminator column)").
				if err := walkFields(parentType, idx, info, false); err != nil {
					return err
				}
			} else {
				info.Inheritance.Strategy = InheritanceJoined
				// Joined inheritance keeps the parent's columns in the
				// parent's own table; FromRow recurses into the embedded
				// field via row.SubsetByPrefix instead of flattening here.
				// The child's own table still needs its join column(s),
				// so the parent's primary-key field(s) are copied in.
				for _, pf := range parentInfo.Fields {
					if pf.PrimaryKey {
						joinField := *pf
						joinField.structIndex = append(append([]int{}, idx...), pf.structIndex...)
						info.Fields = append(info.Fields, &joinField)
						info.PrimaryKey = append(info.PrimaryKey, joinField.ColumnName)
					}
				}
			}
			continue
		}

		if field.Anonymous && field.Type.Kind() == reflect.Struct && !has(modelParts, "inherits") {
			// Plain embedding (not inheritance) flattens fields in place,
			// the way an embedded mixin contributes columns.
			if err := walkFields(field.Type, idx, info, false); err != nil {
				return err
			}
			continue
		}

		if isRel, many := relationshipWrapperKind(field.Type); isRel {
			rel := &RelationshipInfo{
				FieldName:   field.Name,
				RelatedType: relatedElemType(field.Type),
				structIndex: idx,
			}
			if many {
				rel.Kind = OneToMany
			} else {
				rel.Kind = ManyToOne
			}
			relTag := field.Tag.Get("rel")
			compileRelationshipTag(rel, relTag)
			if rel.RelatedTable == "" && rel.RelatedType != nil {
				rel.RelatedTable = deriveTableName(rel.RelatedType, reflect.New(rel.RelatedType).Elem().Interface())
			}
			info.Relationships = append(info.Relationships, rel)
			continue
		}

		dbTag, hasDB := field.Tag.Lookup("db")
		if dbTag == "-" {
			continue
		}

		fi := &FieldInfo{
			FieldName:   field.Name,
			ColumnName:  columnNameFor(field.Name),
			structIndex: idx,
			goType:      field.Type,
		}
		if hasDB && dbTag != "" {
			fi.ColumnName = dbTag
		}
		fi.SQLType, fi.Nullable = inferSQLType(field.Type)
		compileFieldTags(fi, modelTag)
		if fi.SQLType == "" {
			fi.SQLType, _ = inferSQLType(field.Type)
		}

		if validateTag, ok := field.Tag.Lookup("validate"); ok {
			rules, custom := parseValidateTag(validateTag)
			fi.ValidateRules = rules
			fi.CustomValidator = custom
		}

		if fi.PrimaryKey {
			info.PrimaryKey = append(info.PrimaryKey, fi.ColumnName)
		}
		if has(modelParts, "shard") {
			info.ShardKey = fi.ColumnName
		}

		info.Fields = append(info.Fields, fi)
	}
	return nil
}
