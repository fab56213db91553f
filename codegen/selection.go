// Package codegen turns validated GraphQL selections into the graph of Go
// types their responses decode into. Every object selection becomes a
// struct; every interface or union selection additionally becomes a
// discriminated member with one arm per concrete type the schema allows.
// The walk is pure: it reads the schema and the documents and returns
// declarations, leaving rendering to the caller.
package codegen

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2/ast"
)

const (
	typenameField   = "__typename"
	fallbackVariant = "Other"
)

// DeprecationStrategy picks what happens to fields the schema marks
// @deprecated.
type DeprecationStrategy string

const (
	// DeprecationAllow generates deprecated fields like any other.
	DeprecationAllow DeprecationStrategy = "allow"
	// DeprecationWarn generates them with a Deprecated doc comment.
	DeprecationWarn DeprecationStrategy = "warn"
	// DeprecationOmit drops them from the generated types entirely.
	DeprecationOmit DeprecationStrategy = "omit"
)

// Options carries the generator-wide knobs the shape builder consults.
type Options struct {
	// ExportTypes capitalizes the root of every generated type name.
	ExportTypes bool
	// Deprecation defaults to DeprecationAllow when empty.
	Deprecation DeprecationStrategy
}

// RenderOperationTypes computes the declarations backing one operation's
// response. derives is attached verbatim to every declaration for the
// renderer to interpret.
func RenderOperationTypes(schema *ast.Schema, operation *ast.OperationDefinition, derives []string, opts Options) ([]Decl, error) {
	root, err := operationRootType(schema, operation)
	if err != nil {
		return nil, fmt.Errorf("operation %s: %w", operation.Name, err)
	}
	graph := newTypeGraph(schema, &opts)
	name := operationTypeName(operation.Name, opts.ExportTypes)
	id := graph.pushType(name, root)
	if err := graph.calculateSelection(operation.SelectionSet, id, root, name); err != nil {
		return nil, fmt.Errorf("operation %s: %w", operation.Name, err)
	}
	return graph.emit(derives)
}

// RenderFragmentTypes computes the declarations backing one named fragment.
// Fragments are rendered once, on their own, and referenced by embedding
// from every spread site.
func RenderFragmentTypes(schema *ast.Schema, fragment *ast.FragmentDefinition, derives []string, opts Options) ([]Decl, error) {
	root := schema.Types[fragment.TypeCondition]
	if root == nil {
		return nil, fmt.Errorf("fragment %s: schema has no type %s", fragment.Name, fragment.TypeCondition)
	}
	graph := newTypeGraph(schema, &opts)
	name := fragmentTypeName(fragment.Name, opts.ExportTypes)
	id := graph.pushType(name, root)
	if err := graph.calculateSelection(fragment.SelectionSet, id, root, name); err != nil {
		return nil, fmt.Errorf("fragment %s: %w", fragment.Name, err)
	}
	return graph.emit(derives)
}

func operationRootType(schema *ast.Schema, operation *ast.OperationDefinition) (*ast.Definition, error) {
	switch operation.Operation {
	case ast.Query:
		if schema.Query == nil {
			return nil, fmt.Errorf("schema does not define a query root")
		}
		return schema.Query, nil
	case ast.Mutation:
		if schema.Mutation == nil {
			return nil, fmt.Errorf("schema does not define a mutation root")
		}
		return schema.Mutation, nil
	case ast.Subscription:
		if schema.Subscription == nil {
			return nil, fmt.Errorf("schema does not define a subscription root")
		}
		return schema.Subscription, nil
	}
	return nil, fmt.Errorf("unknown operation kind %q", operation.Operation)
}

// calculateSelection records everything one selection set contributes to
// the record identified by owner. onType is the schema type the set selects
// on; path is the generated name of the owner, which doubles as the
// selection path in error reports.
func (g *typeGraph) calculateSelection(selectionSet ast.SelectionSet, owner TypeID, onType *ast.Definition, path string) error {
	if onType.Kind == ast.Interface || onType.Kind == ast.Union {
		if err := g.expandVariants(selectionSet, owner, onType, path); err != nil {
			return err
		}
	}
	return g.walkFields(selectionSet, owner, onType, path)
}

// walkFields handles the parts of a selection set that land on the owning
// record itself: plain fields, fragments restating the current type, and
// spreads the current type satisfies. Inline fragments that apply directly
// are flattened first and re-selections of the same response key are merged
// per GraphQL field merging, so `viewer { name } viewer { login }`
// contributes one field backed by one child record. Typed fragments under
// an abstract owner were already routed to variants by expandVariants and
// are skipped here.
func (g *typeGraph) walkFields(selectionSet ast.SelectionSet, owner TypeID, onType *ast.Definition, path string) error {
	selectionSet = mergeFieldSelections(flattenDirectFragments(selectionSet, onType))
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Name == typenameField {
				continue
			}
			if err := g.selectField(sel, owner, path); err != nil {
				return err
			}
		case *ast.FragmentSpread:
			if !g.spreadAppliesTo(sel.Definition, onType) {
				continue
			}
			if err := g.spreadField(sel, owner, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// mergeFieldSelections merges fields sharing one response key into a single
// field carrying the concatenated nested selections. Without the merge a
// composite field selected twice would allocate a second record under the
// same name. The merged field is a copy; the parsed documents stay
// untouched.
func mergeFieldSelections(selectionSet ast.SelectionSet) ast.SelectionSet {
	merged := make(ast.SelectionSet, 0, len(selectionSet))
	fieldByKey := make(map[string]*ast.Field, len(selectionSet))
	for _, selection := range selectionSet {
		field, ok := selection.(*ast.Field)
		if !ok {
			merged = append(merged, selection)
			continue
		}
		key := field.Alias
		if key == "" {
			key = field.Name
		}
		if existing, ok := fieldByKey[key]; ok {
			if len(field.SelectionSet) > 0 {
				existing.SelectionSet = append(slices.Clip(existing.SelectionSet), field.SelectionSet...)
			}
			continue
		}
		copied := *field
		fieldByKey[key] = &copied
		merged = append(merged, &copied)
	}
	return merged
}

// appliesDirectly reports whether an inline fragment's condition keeps its
// fields on the current record. On a concrete object every reachable
// condition does; on an abstract type only a restatement of the type itself
// (or no condition at all) stays, everything else belongs to a variant.
func appliesDirectly(condition string, onType *ast.Definition) bool {
	if condition == "" || condition == onType.Name {
		return true
	}
	return onType.Kind == ast.Object
}

// spreadAppliesTo reports whether a named fragment's fields merge into the
// current record. Exact matches always do. On a concrete object, fragments
// declared on an interface it implements or a union it belongs to do too.
func (g *typeGraph) spreadAppliesTo(fragment *ast.FragmentDefinition, onType *ast.Definition) bool {
	if fragment.TypeCondition == onType.Name {
		return true
	}
	if onType.Kind != ast.Object {
		return false
	}
	condition := g.schema.Types[fragment.TypeCondition]
	if condition == nil {
		return false
	}
	for _, member := range g.schema.GetPossibleTypes(condition) {
		if member.Name == onType.Name {
			return true
		}
	}
	return false
}

// selectField records one plain field. Scalar and enum fields close the
// recursion; composite fields allocate a child record named after the
// selection path and descend into it.
func (g *typeGraph) selectField(field *ast.Field, owner TypeID, path string) error {
	definition := field.Definition
	if definition == nil {
		return fmt.Errorf("field %s at %s has no schema definition; document was not validated", field.Name, path)
	}

	reason, deprecated := fieldDeprecation(definition)
	if deprecated && g.opts.Deprecation == DeprecationOmit {
		return nil
	}

	wireName := field.Alias
	if wireName == "" {
		wireName = field.Name
	}

	baseType := g.schema.Types[definition.Type.Name()]
	if baseType == nil {
		return fmt.Errorf("field %s at %s has unknown type %s", wireName, path, definition.Type.Name())
	}

	outputField := OutputField{
		Owner:             owner,
		WireName:          wireName,
		Name:              GoMemberName(wireName),
		Qualifiers:        QualifiersOf(definition.Type),
		Deprecated:        deprecated,
		DeprecationReason: reason,
	}

	switch baseType.Kind {
	case ast.Scalar, ast.Enum:
		outputField.TypeName = baseType.Name
		return g.pushField(outputField, path)
	case ast.Object, ast.Interface, ast.Union:
		childName := childTypeName(path, wireName)
		outputField.TypeName = childName
		if err := g.pushField(outputField, path); err != nil {
			return err
		}
		childID := g.pushType(childName, baseType)
		return g.calculateSelection(field.SelectionSet, childID, baseType, childName)
	case ast.InputObject:
		return &InputTypeSelectionError{TypeName: baseType.Name, FieldName: wireName, Path: path}
	}
	return fmt.Errorf("field %s at %s has unexpected kind %s", wireName, path, baseType.Kind)
}

// spreadField records a named fragment spread as an embedded member. The
// fragment's own record is rendered by a separate RenderFragmentTypes call,
// so every spread site shares a single declaration.
func (g *typeGraph) spreadField(spread *ast.FragmentSpread, owner TypeID, path string) error {
	return g.pushField(OutputField{
		Owner:      owner,
		WireName:   spread.Name,
		Name:       GoMemberName(spread.Name),
		TypeName:   fragmentTypeName(spread.Name, g.opts.ExportTypes),
		Qualifiers: []Qualifier{QualifierRequired},
		Embed:      true,
	}, path)
}

// expandVariants turns a selection on an interface or union into one
// variant per concrete member type the schema knows, in schema order. A
// member mentioned by inline fragments or spreads gets a payload record
// collecting those selections in document order; an unmentioned member gets
// a bare tag. A trailing fallback arm absorbs concrete types the schema
// gains after this code is generated.
func (g *typeGraph) expandVariants(selectionSet ast.SelectionSet, owner TypeID, onType *ast.Definition, path string) error {
	selectionSet = flattenDirectFragments(selectionSet, onType)
	members := g.schema.GetPossibleTypes(onType)
	memberNames := make(map[string]bool, len(members))
	for _, member := range members {
		memberNames[member.Name] = true
	}

	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.InlineFragment:
			if appliesDirectly(sel.TypeCondition, onType) || memberNames[sel.TypeCondition] {
				continue
			}
			return &UnsupportedVariantSelectionError{TargetType: sel.TypeCondition, OnType: onType.Name, Path: path}
		case *ast.FragmentSpread:
			target := sel.Definition.TypeCondition
			if target == onType.Name || memberNames[target] {
				continue
			}
			return &UnsupportedVariantSelectionError{SelectionName: sel.Name, TargetType: target, OnType: onType.Name, Path: path}
		}
	}

	for _, member := range members {
		var memberSelections ast.SelectionSet
		for _, selection := range selectionSet {
			switch sel := selection.(type) {
			case *ast.InlineFragment:
				if sel.TypeCondition == member.Name {
					memberSelections = append(memberSelections, sel.SelectionSet...)
				}
			case *ast.FragmentSpread:
				if sel.Definition.TypeCondition == member.Name {
					memberSelections = append(memberSelections, sel)
				}
			}
		}
		if len(memberSelections) == 0 {
			g.pushVariant(OutputVariant{Owner: owner, TagName: member.Name})
			continue
		}
		payloadName := childTypeName(path, member.Name)
		g.pushVariant(OutputVariant{Owner: owner, TagName: member.Name, TypeName: payloadName})
		payloadID := g.pushType(payloadName, member)
		if err := g.calculateSelection(memberSelections, payloadID, member, payloadName); err != nil {
			return err
		}
	}

	g.pushVariant(OutputVariant{Owner: owner, TagName: fallbackVariant, Fallback: true})
	return nil
}

// flattenDirectFragments inlines fragments whose condition keeps their
// fields on the current record, so selections nested inside them are
// scanned just like top-level ones. On an abstract type that means
// restatements of the type itself; member conditions stay put for the
// variant scan.
func flattenDirectFragments(selectionSet ast.SelectionSet, onType *ast.Definition) ast.SelectionSet {
	flattened := make(ast.SelectionSet, 0, len(selectionSet))
	for _, selection := range selectionSet {
		if fragment, ok := selection.(*ast.InlineFragment); ok && appliesDirectly(fragment.TypeCondition, onType) {
			flattened = append(flattened, flattenDirectFragments(fragment.SelectionSet, onType)...)
			continue
		}
		flattened = append(flattened, selection)
	}
	return flattened
}

func fieldDeprecation(definition *ast.FieldDefinition) (string, bool) {
	directive := definition.Directives.ForName("deprecated")
	if directive == nil {
		return "", false
	}
	if arg := directive.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		return arg.Value.Raw, true
	}
	return "No longer supported", true
}
