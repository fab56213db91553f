package codegen

import (
	"fmt"
	"go/token"
	"go/types"
	"unicode"

	"github.com/99designs/gqlgen/codegen/templates"
)

// Generated type names are underscore-joined selection paths rooted at the
// operation or fragment name: UserQuery_Articles_Comments. The underscore
// keeps sibling paths from running together, so two distinct paths can never
// produce the same name unless their aliases already collide (which
// pushField reports).

func operationTypeName(operationName string, export bool) string {
	return GoTypeName(operationName, export)
}

func fragmentTypeName(fragmentName string, export bool) string {
	return GoTypeName(fragmentName, export)
}

// GoTypeName converts a GraphQL name into a top-level Go type name,
// lowercasing the first rune when export is false and stepping around Go
// keywords and predeclared identifiers.
func GoTypeName(name string, export bool) string {
	name = templates.ToGo(name)
	if !export {
		name = firstLower(name)
	}
	return keywordSafe(name)
}

// childTypeName derives the record name for a nested selection from its
// parent's name and the element (field alias or concrete type name) that
// introduced it.
func childTypeName(parent, element string) string {
	return fmt.Sprintf("%s_%s", parent, templates.ToGo(element))
}

// GoMemberName converts a GraphQL alias or type name into a Go member name.
func GoMemberName(name string) string {
	return templates.ToGo(name)
}

// keywordSafe suffixes names that Go reserves. Only unexported roots can
// hit this; ToGo output never collides with a keyword.
func keywordSafe(name string) string {
	if token.IsKeyword(name) || types.Universe.Lookup(name) != nil {
		return name + "_"
	}
	return name
}

func firstLower(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	return string(runes)
}
