package codegen

// Decl is one generated type declaration. The builder produces declarations
// in a stable order: each record immediately precedes the discriminated
// member declaration it owns, if any.
type Decl interface {
	DeclName() string
	declNode()
}

// TypeExpr is the Go type of a generated member, built by wrapping a named
// base type in pointer and slice layers according to the field's
// nullability/list qualifiers.
type TypeExpr interface {
	String() string
	exprNode()
}

type NamedExpr struct {
	Name string
}

type PointerExpr struct {
	Elem TypeExpr
}

type SliceExpr struct {
	Elem TypeExpr
}

func (e NamedExpr) String() string   { return e.Name }
func (e PointerExpr) String() string { return "*" + e.Elem.String() }
func (e SliceExpr) String() string   { return "[]" + e.Elem.String() }

func (NamedExpr) exprNode()   {}
func (PointerExpr) exprNode() {}
func (SliceExpr) exprNode()   {}

// FieldDecl is one member of a StructDecl. WireName is the JSON key the
// member decodes from; it is retained even when it matches Name so renderers
// never have to re-derive it. Embedded members carry their type name as Name
// and are excluded from keyed decoding.
type FieldDecl struct {
	Name              string
	Type              TypeExpr
	WireName          string
	Embed             bool
	Deprecated        bool
	DeprecationReason string
}

// StructDecl is a generated record. GraphQLName is the schema type the
// selection was made on.
type StructDecl struct {
	Name        string
	GraphQLName string
	Fields      []FieldDecl
	Derives     []string
}

func (d *StructDecl) DeclName() string { return d.Name }
func (*StructDecl) declNode()          {}

// VariantDecl is one arm of a UnionDecl. TagName is the concrete GraphQL
// type name carried by __typename; Type names the payload record, or is
// empty for an arm that carries no selected data.
type VariantDecl struct {
	TagName string
	Name    string
	Type    string
}

// UnionDecl is the discriminated member type emitted alongside a record
// whose selection targeted an interface or union. Exactly one arm matches
// any response, chosen by __typename.
type UnionDecl struct {
	Name        string
	GraphQLName string
	Variants    []VariantDecl
	Derives     []string
}

func (d *UnionDecl) DeclName() string { return d.Name }
func (*UnionDecl) declNode()          {}
