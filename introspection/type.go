// Package introspection models the standard GraphQL introspection query and
// converts its response back into a schema document, so a remote endpoint
// can serve as a schema source.
package introspection

type TypeKind string

const (
	TypeKindScalar      TypeKind = "SCALAR"
	TypeKindObject      TypeKind = "OBJECT"
	TypeKindInterface   TypeKind = "INTERFACE"
	TypeKindUnion       TypeKind = "UNION"
	TypeKindEnum        TypeKind = "ENUM"
	TypeKindInputObject TypeKind = "INPUT_OBJECT"
	TypeKindList        TypeKind = "LIST"
	TypeKindNonNull     TypeKind = "NON_NULL"
)

// Query is the response shape of the Introspection query constant.
type Query struct {
	Schema struct {
		QueryType        RootTypeRef      `json:"queryType"`
		MutationType     *RootTypeRef     `json:"mutationType"`
		SubscriptionType *RootTypeRef     `json:"subscriptionType"`
		Types            FullTypes        `json:"types"`
		Directives       []*FullDirective `json:"directives"`
	} `json:"__schema"`
}

type RootTypeRef struct {
	Name *string `json:"name"`
}

type FullTypes []*FullType

type FullType struct {
	Kind          TypeKind      `json:"kind"`
	Name          *string       `json:"name"`
	Description   *string       `json:"description"`
	Fields        []*FieldValue `json:"fields"`
	InputFields   []*InputValue `json:"inputFields"`
	Interfaces    []*TypeRef    `json:"interfaces"`
	EnumValues    []*EnumValue  `json:"enumValues"`
	PossibleTypes []*TypeRef    `json:"possibleTypes"`
}

type FieldValue struct {
	Name              string        `json:"name"`
	Description       *string       `json:"description"`
	Args              []*InputValue `json:"args"`
	Type              TypeRef       `json:"type"`
	IsDeprecated      bool          `json:"isDeprecated"`
	DeprecationReason *string       `json:"deprecationReason"`
}

type InputValue struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Type         TypeRef `json:"type"`
	DefaultValue *string `json:"defaultValue"`
}

type EnumValue struct {
	Name              string  `json:"name"`
	Description       *string `json:"description"`
	IsDeprecated      bool    `json:"isDeprecated"`
	DeprecationReason *string `json:"deprecationReason"`
}

// TypeRef is a possibly wrapped type reference. For LIST and NON_NULL kinds
// the referenced type is in OfType; otherwise Name is set.
type TypeRef struct {
	Kind   TypeKind `json:"kind"`
	Name   *string  `json:"name"`
	OfType *TypeRef `json:"ofType"`
}

type FullDirective struct {
	Name        string        `json:"name"`
	Description *string       `json:"description"`
	Locations   []string      `json:"locations"`
	Args        []*InputValue `json:"args"`
}
