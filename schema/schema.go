// Package schema defines per-(type, subtype) structural definitions for
// entity attribute payloads.
//
// Rather than trusting caller-supplied shapes, the engine validates an
// entity's CustomProperties against the registered definition at write
// time. This keeps "one store, many domains" flexibility while giving most
// of the safety of a fixed schema.
package schema

import (
	"fmt"
	"time"

	"github.com/xraph/fabric/id"
)

// Kind is the structural type of one attribute field.
type Kind string

const (
	KindString Kind = "string"
	KindNumber Kind = "number"
	KindBool   Kind = "bool"
	KindObject Kind = "object"
	KindList   Kind = "list"
)

// Valid reports whether k is a known field kind.
func (k Kind) Valid() bool {
	switch k {
	case KindString, KindNumber, KindBool, KindObject, KindList:
		return true
	default:
		return false
	}
}

// FieldDef describes one attribute field of a (type, subtype) definition.
type FieldDef struct {
	Name     string `json:"name"`
	Kind     Kind   `json:"kind"`
	Required bool   `json:"required,omitempty"`
}

// Definition is the registered structural definition for one
// (type, subtype) pair. Entity creation is rejected for combinations
// without a definition.
type Definition struct {
	ID          id.SchemaID    `json:"id" db:"id"`
	Type        string         `json:"type" db:"type"`
	Subtype     string         `json:"subtype" db:"subtype"`
	Description string         `json:"description,omitempty" db:"description"`
	Fields      []FieldDef     `json:"fields" db:"-"`
	Metadata    map[string]any `json:"metadata,omitempty" db:"metadata"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// Validate checks an attribute payload against the definition. Unknown
// fields are rejected, required fields must be present, and each value must
// match its declared kind. Nested shapes inside object/list fields are the
// owning feature's concern.
func (d *Definition) Validate(props map[string]any) error {
	byName := make(map[string]FieldDef, len(d.Fields))
	for _, f := range d.Fields {
		byName[f.Name] = f
	}

	for name := range props {
		if _, ok := byName[name]; !ok {
			return fmt.Errorf("schema %s/%s: unknown field %q", d.Type, d.Subtype, name)
		}
	}

	for _, f := range d.Fields {
		v, present := props[f.Name]
		if !present || v == nil {
			if f.Required {
				return fmt.Errorf("schema %s/%s: missing required field %q", d.Type, d.Subtype, f.Name)
			}
			continue
		}
		if !kindMatches(f.Kind, v) {
			return fmt.Errorf("schema %s/%s: field %q: expected %s, got %T", d.Type, d.Subtype, f.Name, f.Kind, v)
		}
	}

	return nil
}

func kindMatches(k Kind, v any) bool {
	switch k {
	case KindString:
		_, ok := v.(string)
		return ok
	case KindNumber:
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	case KindBool:
		_, ok := v.(bool)
		return ok
	case KindObject:
		_, ok := v.(map[string]any)
		return ok
	case KindList:
		_, ok := v.([]any)
		return ok
	default:
		return false
	}
}

// ListFilter contains filters for listing schema definitions.
type ListFilter struct {
	Type   string `json:"type,omitempty"`
	Search string `json:"search,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}
