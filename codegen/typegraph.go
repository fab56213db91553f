package codegen

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// TypeID addresses one OutputType within a single type graph. IDs follow
// allocation order and are never reused across graphs.
type TypeID int

// Qualifier is one step of a field's nullability/list structure, ordered
// outermost first. `[Cat!]!` flattens to Required, List, Required.
type Qualifier uint8

const (
	QualifierRequired Qualifier = iota
	QualifierOptional
	QualifierList
)

func (q Qualifier) String() string {
	switch q {
	case QualifierRequired:
		return "Required"
	case QualifierOptional:
		return "Optional"
	case QualifierList:
		return "List"
	}
	return "Unknown"
}

// QualifiersOf flattens a gqlparser type into its qualifier sequence.
func QualifiersOf(t *ast.Type) []Qualifier {
	qualifiers := make([]Qualifier, 0, 2)
	for t != nil {
		if t.NonNull {
			qualifiers = append(qualifiers, QualifierRequired)
		} else {
			qualifiers = append(qualifiers, QualifierOptional)
		}
		if t.NamedType != "" {
			break
		}
		qualifiers = append(qualifiers, QualifierList)
		t = t.Elem
	}
	return qualifiers
}

// OutputType is one generated record. A new one is allocated for every
// object/interface/union selection encountered during the walk, even if it
// is structurally identical to another: each corresponds to a distinct
// selection path, and hence a distinct generated name.
type OutputType struct {
	ID         TypeID
	Name       string
	SchemaType *ast.Definition
}

// OutputField is one member of a generated record. WireName is the GraphQL
// alias used for (de)serialization; Name is the Go member name. Embed marks
// a fragment spread whose fields are merged into the owning record at decode
// time instead of being nested.
type OutputField struct {
	Owner             TypeID
	WireName          string
	Name              string
	TypeName          string
	Qualifiers        []Qualifier
	Embed             bool
	Deprecated        bool
	DeprecationReason string
}

// OutputVariant is one arm of the discriminated member attached to a type
// that selects on an interface or union. TypeName is empty when the concrete
// type is representable but the selection carries no data for it. Fallback
// marks the synthesized arm covering concrete types the schema gains after
// generation.
type OutputVariant struct {
	Owner    TypeID
	TagName  string
	TypeName string
	Fallback bool
}

// typeGraph accumulates the flat output of one selection walk. It is owned
// by exactly one Render call and consumed once by emit.
type typeGraph struct {
	schema   *ast.Schema
	opts     *Options
	types    []OutputType
	fields   []OutputField
	variants []OutputVariant
}

func newTypeGraph(schema *ast.Schema, opts *Options) *typeGraph {
	return &typeGraph{
		schema: schema,
		opts:   opts,
		types:  make([]OutputType, 0, 8),
	}
}

func (g *typeGraph) pushType(name string, schemaType *ast.Definition) TypeID {
	id := TypeID(len(g.types))
	g.types = append(g.types, OutputType{ID: id, Name: name, SchemaType: schemaType})
	return id
}

// pushField appends a field to its owner, keeping generated names unique
// among siblings. Selecting the same wire field twice merges silently, per
// GraphQL field-merging semantics; two distinct wire names mapping to the
// same Go member are reported so the caller can alias one of them.
func (g *typeGraph) pushField(field OutputField, path string) error {
	for _, existing := range g.fields {
		if existing.Owner != field.Owner || existing.Name != field.Name {
			continue
		}
		if existing.WireName == field.WireName && existing.TypeName == field.TypeName {
			return nil
		}
		return &NameCollisionError{
			TypeName:       g.types[field.Owner].Name,
			FieldName:      field.Name,
			FirstWireName:  existing.WireName,
			SecondWireName: field.WireName,
			Path:           path,
		}
	}
	g.fields = append(g.fields, field)
	return nil
}

func (g *typeGraph) pushVariant(variant OutputVariant) {
	g.variants = append(g.variants, variant)
}

func (g *typeGraph) fieldsOf(id TypeID) []OutputField {
	fields := make([]OutputField, 0, len(g.fields))
	for _, field := range g.fields {
		if field.Owner == id {
			fields = append(fields, field)
		}
	}
	return fields
}

func (g *typeGraph) variantsOf(id TypeID) []OutputVariant {
	variants := make([]OutputVariant, 0, len(g.variants))
	for _, variant := range g.variants {
		if variant.Owner == id {
			variants = append(variants, variant)
		}
	}
	return variants
}
