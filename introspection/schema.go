package introspection

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// SchemaFromIntrospection rebuilds a schema document from an introspection
// response. The document declares everything the endpoint reported,
// including built-in scalars and directives, so it validates on its own
// without a prelude. endpoint only labels source positions in later error
// messages.
func SchemaFromIntrospection(endpoint string, query Query) *ast.SchemaDocument {
	position := &ast.Position{Src: &ast.Source{Name: endpoint}}

	document := &ast.SchemaDocument{}

	schemaDefinition := &ast.SchemaDefinition{Position: position}
	if name := query.Schema.QueryType.Name; name != nil {
		schemaDefinition.OperationTypes = append(schemaDefinition.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Query,
			Type:      *name,
			Position:  position,
		})
	}
	if mutation := query.Schema.MutationType; mutation != nil && mutation.Name != nil {
		schemaDefinition.OperationTypes = append(schemaDefinition.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Mutation,
			Type:      *mutation.Name,
			Position:  position,
		})
	}
	if subscription := query.Schema.SubscriptionType; subscription != nil && subscription.Name != nil {
		schemaDefinition.OperationTypes = append(schemaDefinition.OperationTypes, &ast.OperationTypeDefinition{
			Operation: ast.Subscription,
			Type:      *subscription.Name,
			Position:  position,
		})
	}
	document.Schema = append(document.Schema, schemaDefinition)

	for _, fullType := range query.Schema.Types {
		// "__" prefixed types are the introspection machinery itself.
		if fullType.Name == nil || strings.HasPrefix(*fullType.Name, "__") {
			continue
		}
		document.Definitions = append(document.Definitions, typeDefinition(position, fullType))
	}

	for _, directive := range query.Schema.Directives {
		document.Directives = append(document.Directives, directiveDefinition(position, directive))
	}

	return document
}

func typeDefinition(position *ast.Position, fullType *FullType) *ast.Definition {
	definition := &ast.Definition{
		Kind:        definitionKind(fullType.Kind),
		Name:        *fullType.Name,
		Description: stringValue(fullType.Description),
		Position:    position,
	}

	for _, field := range fullType.Fields {
		definition.Fields = append(definition.Fields, fieldDefinition(position, field))
	}
	for _, inputField := range fullType.InputFields {
		definition.Fields = append(definition.Fields, inputFieldDefinition(position, inputField))
	}
	for _, implemented := range fullType.Interfaces {
		if implemented.Name != nil {
			definition.Interfaces = append(definition.Interfaces, *implemented.Name)
		}
	}
	for _, enumValue := range fullType.EnumValues {
		definition.EnumValues = append(definition.EnumValues, &ast.EnumValueDefinition{
			Name:        enumValue.Name,
			Description: stringValue(enumValue.Description),
			Directives:  deprecatedDirectives(position, enumValue.IsDeprecated, enumValue.DeprecationReason),
			Position:    position,
		})
	}
	if definition.Kind == ast.Union {
		for _, possibleType := range fullType.PossibleTypes {
			if possibleType.Name != nil {
				definition.Types = append(definition.Types, *possibleType.Name)
			}
		}
	}

	return definition
}

func definitionKind(kind TypeKind) ast.DefinitionKind {
	switch kind {
	case TypeKindObject:
		return ast.Object
	case TypeKindInterface:
		return ast.Interface
	case TypeKindUnion:
		return ast.Union
	case TypeKindEnum:
		return ast.Enum
	case TypeKindInputObject:
		return ast.InputObject
	default:
		return ast.Scalar
	}
}

func fieldDefinition(position *ast.Position, field *FieldValue) *ast.FieldDefinition {
	definition := &ast.FieldDefinition{
		Name:        field.Name,
		Description: stringValue(field.Description),
		Type:        astType(position, &field.Type),
		Directives:  deprecatedDirectives(position, field.IsDeprecated, field.DeprecationReason),
		Position:    position,
	}
	for _, arg := range field.Args {
		definition.Arguments = append(definition.Arguments, &ast.ArgumentDefinition{
			Name:        arg.Name,
			Description: stringValue(arg.Description),
			Type:        astType(position, &arg.Type),
			Position:    position,
		})
	}

	return definition
}

func inputFieldDefinition(position *ast.Position, input *InputValue) *ast.FieldDefinition {
	return &ast.FieldDefinition{
		Name:        input.Name,
		Description: stringValue(input.Description),
		Type:        astType(position, &input.Type),
		Position:    position,
	}
}

// astType unwraps introspection's outside-in LIST/NON_NULL nesting into
// gqlparser's representation.
func astType(position *ast.Position, ref *TypeRef) *ast.Type {
	if ref == nil {
		return &ast.Type{Position: position}
	}
	switch ref.Kind {
	case TypeKindNonNull:
		inner := astType(position, ref.OfType)
		inner.NonNull = true
		return inner
	case TypeKindList:
		return &ast.Type{Elem: astType(position, ref.OfType), Position: position}
	default:
		return &ast.Type{NamedType: stringValue(ref.Name), Position: position}
	}
}

func deprecatedDirectives(position *ast.Position, isDeprecated bool, reason *string) ast.DirectiveList {
	if !isDeprecated {
		return nil
	}
	directive := &ast.Directive{Name: "deprecated", Position: position}
	if reason != nil {
		directive.Arguments = ast.ArgumentList{&ast.Argument{
			Name:     "reason",
			Value:    &ast.Value{Raw: *reason, Kind: ast.StringValue, Position: position},
			Position: position,
		}}
	}

	return ast.DirectiveList{directive}
}

func directiveDefinition(position *ast.Position, directive *FullDirective) *ast.DirectiveDefinition {
	definition := &ast.DirectiveDefinition{
		Name:        directive.Name,
		Description: stringValue(directive.Description),
		Position:    position,
	}
	for _, location := range directive.Locations {
		definition.Locations = append(definition.Locations, ast.DirectiveLocation(location))
	}
	for _, arg := range directive.Args {
		definition.Arguments = append(definition.Arguments, &ast.ArgumentDefinition{
			Name:        arg.Name,
			Description: stringValue(arg.Description),
			Type:        astType(position, &arg.Type),
			Position:    position,
		})
	}

	return definition
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
