package compose

import (
	"context"
	"fmt"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/vk/pipecomposer/internal/ctxlog"
)

// UnknownFieldMode selects how Validate treats tree keys the schema does not
// declare. The policy is an integrator choice, not a constant of the engine.
type UnknownFieldMode int

const (
	// AllowUnknownFields silently ignores undeclared keys. The default.
	AllowUnknownFields UnknownFieldMode = iota
	// RejectUnknownFields fails validation with an UnknownFieldError.
	RejectUnknownFields
)

// Field is one declared schema field: a name, the cty type a value must
// convert to, and an optional default used when the tree has no value.
type Field struct {
	Name    string
	Type    cty.Type
	Default *cty.Value
}

// Required declares a field with no default; validation fails with a
// MissingFieldError when the merged tree has no value for it.
func Required(name string, ty cty.Type) Field {
	return Field{Name: name, Type: ty}
}

// Optional declares a field whose default fills in when the merged tree has
// no value for it.
func Optional(name string, ty cty.Type, def cty.Value) Field {
	return Field{Name: name, Type: ty, Default: &def}
}

// Schema is an external structural description of a configuration: field
// names, declared types and optional defaults. A Schema is immutable once
// built and safe to share across composers.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from the given fields. Declaring the same field
// name twice is a programmer error and panics.
func NewSchema(fields ...Field) *Schema {
	s := &Schema{
		fields: append([]Field(nil), fields...),
		index:  make(map[string]int, len(fields)),
	}
	for i, f := range s.fields {
		if _, dup := s.index[f.Name]; dup {
			panic(fmt.Sprintf("compose: schema field %q declared twice", f.Name))
		}
		s.index[f.Name] = i
	}
	return s
}

// Fields returns the declared fields in declaration order.
func (s *Schema) Fields() []Field {
	return append([]Field(nil), s.fields...)
}

// DefaultsTree renders the schema's defaults as a configuration tree, the
// lowest layer of the three-way merge (defaults < files < overrides).
func (s *Schema) DefaultsTree() (map[string]any, error) {
	tree := make(map[string]any, len(s.fields))
	for _, f := range s.fields {
		if f.Default == nil {
			continue
		}
		value, err := ctyToGo(*f.Default)
		if err != nil {
			return nil, fmt.Errorf("default for field %q: %w", f.Name, err)
		}
		tree[f.Name] = value
	}
	return tree, nil
}

// Instance is a merged tree projected onto a schema: every declared field
// bound to a value of its declared type.
type Instance struct {
	schema *Schema
	values map[string]cty.Value
}

// Value returns the typed value bound to a declared field.
func (i *Instance) Value(name string) (cty.Value, bool) {
	v, ok := i.values[name]
	return v, ok
}

// AsMap flattens the instance back into a plain key-to-value mapping, one
// entry per declared field, for uniform downstream consumption.
func (i *Instance) AsMap() (map[string]any, error) {
	out := make(map[string]any, len(i.values))
	for name, value := range i.values {
		native, err := ctyToGo(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = native
	}
	return out, nil
}

// Validate projects a merged configuration tree onto the schema.
//
// Each declared field is matched against the corresponding top-level key and
// converted to its declared type; a conversion failure is a
// TypeMismatchError naming the field, the expected type and the actual
// value. A missing field takes its default, or fails with a
// MissingFieldError when it has none. Tree keys the schema does not declare
// are handled per mode.
func (s *Schema) Validate(ctx context.Context, tree map[string]any, mode UnknownFieldMode) (*Instance, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Validating configuration against schema.", "fields", len(s.fields))

	if mode == RejectUnknownFields {
		// Deterministic order so the same input always reports the same key.
		keys := make([]string, 0, len(tree))
		for key := range tree {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			if _, declared := s.index[key]; !declared {
				return nil, &UnknownFieldError{Field: key}
			}
		}
	}

	values := make(map[string]cty.Value, len(s.fields))
	for _, f := range s.fields {
		raw, present := tree[f.Name]
		if !present {
			if f.Default == nil {
				return nil, &MissingFieldError{Field: f.Name}
			}
			values[f.Name] = *f.Default
			continue
		}

		value, err := goToCty(raw)
		if err != nil {
			return nil, &TypeMismatchError{Field: f.Name, Want: f.Type.FriendlyName(), Got: raw}
		}
		converted, err := convert.Convert(value, f.Type)
		if err != nil {
			return nil, &TypeMismatchError{Field: f.Name, Want: f.Type.FriendlyName(), Got: raw}
		}
		values[f.Name] = converted
	}

	logger.Debug("Schema validation passed.")
	return &Instance{schema: s, values: values}, nil
}
