// Package schema builds JSON Schema parameter definitions for tools.
//
// Builders produce the raw map[string]any a Tool returns from
// ParameterSchema; Compile checks that a built schema is actually valid
// JSON Schema, which is worth doing once in a test for every tool you
// ship:
//
//	params := schema.Object(map[string]*schema.Property{
//	    "query": schema.String("Search query"),
//	    "limit": schema.Integer("Max results").Min(1).Max(100).Default(10),
//	}, "query")
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Compile checks that raw is a valid JSON Schema document and returns the
// compiled form. A nil map compiles to nil.
func Compile(raw map[string]any) (*jsonschema.Schema, error) {
	if raw == nil {
		return nil, nil
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("tool.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("tool.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return compiled, nil
}

// MustCompile is like Compile but panics on error. Use for schemas defined
// at init time.
func MustCompile(raw map[string]any) *jsonschema.Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Object builds an object schema from named properties. Trailing string
// arguments mark properties as required.
func Object(properties map[string]*Property, required ...string) map[string]any {
	props := make(map[string]any, len(properties))
	for name, prop := range properties {
		props[name] = prop.build()
	}
	out := map[string]any{
		"type":       "object",
		"properties": props,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// Property is one property of an object schema, configured through
// chainable setters.
type Property struct {
	fields map[string]any
}

func newProperty(typ, description string) *Property {
	p := &Property{fields: map[string]any{"type": typ}}
	if description != "" {
		p.fields["description"] = description
	}
	return p
}

func (p *Property) build() map[string]any {
	return p.fields
}

// String builds a string property.
func String(description string) *Property {
	return newProperty("string", description)
}

// Integer builds an integer property.
func Integer(description string) *Property {
	return newProperty("integer", description)
}

// Number builds a floating-point property.
func Number(description string) *Property {
	return newProperty("number", description)
}

// Boolean builds a boolean property.
func Boolean(description string) *Property {
	return newProperty("boolean", description)
}

// Array builds an array property with the given item schema, e.g.
// Array("tags", map[string]any{"type": "string"}).
func Array(description string, items map[string]any) *Property {
	p := newProperty("array", description)
	p.fields["items"] = items
	return p
}

// Enum restricts the property to the given values.
func (p *Property) Enum(values ...any) *Property {
	p.fields["enum"] = values
	return p
}

// Format sets a string format such as "email", "uri", or "date-time".
func (p *Property) Format(format string) *Property {
	p.fields["format"] = format
	return p
}

// Min sets the minimum value for numeric properties.
func (p *Property) Min(min float64) *Property {
	p.fields["minimum"] = min
	return p
}

// Max sets the maximum value for numeric properties.
func (p *Property) Max(max float64) *Property {
	p.fields["maximum"] = max
	return p
}

// MinLength sets the minimum length for string properties.
func (p *Property) MinLength(n int) *Property {
	p.fields["minLength"] = n
	return p
}

// MaxLength sets the maximum length for string properties.
func (p *Property) MaxLength(n int) *Property {
	p.fields["maxLength"] = n
	return p
}

// Pattern sets a regex pattern for string properties.
func (p *Property) Pattern(pattern string) *Property {
	p.fields["pattern"] = pattern
	return p
}

// Default sets the property's default value.
func (p *Property) Default(value any) *Property {
	p.fields["default"] = value
	return p
}
