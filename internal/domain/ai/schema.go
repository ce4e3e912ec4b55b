package ai

// Type is a primitive schema type.
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeBoolean Type = "boolean"
)

// Schema is a provider-neutral description of the JSON shape a model must
// emit. Adapters translate it into their own dialect. Only structure and
// required-ness are expressed; there are no range, length or enum constraints.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// Order lists property names in the order they should be emitted.
	Order    []string
	Items    *Schema
	Required []string
}

// Object builds an object schema whose properties are all required, in the
// order given.
func Object(description string, props ...Property) *Schema {
	s := &Schema{
		Type:        TypeObject,
		Description: description,
		Properties:  make(map[string]*Schema, len(props)),
	}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.Order = append(s.Order, p.Name)
		s.Required = append(s.Required, p.Name)
	}
	return s
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

// Prop is a shorthand for Property{name, schema}.
func Prop(name string, s *Schema) Property { return Property{Name: name, Schema: s} }

// String builds a string schema.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

// Boolean builds a boolean schema.
func Boolean(description string) *Schema {
	return &Schema{Type: TypeBoolean, Description: description}
}

// ArrayOf builds an array schema.
func ArrayOf(description string, items *Schema) *Schema {
	return &Schema{Type: TypeArray, Description: description, Items: items}
}
