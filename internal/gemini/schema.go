package gemini

// Schema types understood by the responseSchema field
const (
	TypeObject  = "OBJECT"
	TypeArray   = "ARRAY"
	TypeString  = "STRING"
	TypeNumber  = "NUMBER"
	TypeInteger = "INTEGER"
	TypeBoolean = "BOOLEAN"
)

// Schema is the OpenAPI subset accepted as generationConfig.responseSchema
type Schema struct {
	Type             string             `json:"type"`
	Description      string             `json:"description,omitempty"`
	Properties       map[string]*Schema `json:"properties,omitempty"`
	PropertyOrdering []string           `json:"propertyOrdering,omitempty"`
	Items            *Schema            `json:"items,omitempty"`
	Required         []string           `json:"required,omitempty"`
}

// String returns a STRING schema
func String() *Schema {
	return &Schema{Type: TypeString}
}

// ArrayOf returns an ARRAY schema with the given item schema
func ArrayOf(items *Schema) *Schema {
	return &Schema{Type: TypeArray, Items: items}
}

// Object returns an OBJECT schema. The order of props is kept as
// propertyOrdering so the model emits fields in a stable order.
func Object(required []string, props ...Property) *Schema {
	s := &Schema{
		Type:       TypeObject,
		Properties: make(map[string]*Schema, len(props)),
		Required:   required,
	}
	for _, p := range props {
		s.Properties[p.Name] = p.Schema
		s.PropertyOrdering = append(s.PropertyOrdering, p.Name)
	}
	return s
}

// Property a named object member
type Property struct {
	Name   string
	Schema *Schema
}

// Prop shorthand for Property
func Prop(name string, schema *Schema) Property {
	return Property{Name: name, Schema: schema}
}
