// Package queryparser loads GraphQL operation documents from disk, merges
// them into a single validated document, and splits them back into
// self-contained per-operation documents for printing and sending.
package queryparser

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// LoadQuerySources reads every file matched by the given glob patterns.
// Patterns that match nothing are reported rather than silently skipped,
// since they usually mean a typo in the config.
func LoadQuerySources(patterns []string) ([]*ast.Source, error) {
	var paths []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("query path %s matched no files", pattern)
		}
		for _, match := range matches {
			if seen[match] {
				continue
			}
			seen[match] = true
			paths = append(paths, match)
		}
	}

	sources := make([]*ast.Source, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read query %s: %w", path, err)
		}
		sources = append(sources, &ast.Source{Name: path, Input: string(content)})
	}

	return sources, nil
}

// QueryDocument parses every source into one merged document and validates
// it against the schema. Validation binds each field and fragment spread to
// its schema definition; everything downstream relies on those bindings.
func QueryDocument(schema *ast.Schema, sources []*ast.Source) (*ast.QueryDocument, error) {
	document := &ast.QueryDocument{}
	for _, source := range sources {
		doc, err := parser.ParseQuery(source)
		if err != nil {
			return nil, fmt.Errorf("parse query %s: %w", source.Name, err)
		}
		document.Operations = append(document.Operations, doc.Operations...)
		document.Fragments = append(document.Fragments, doc.Fragments...)
	}

	for _, operation := range document.Operations {
		if operation.Name == "" {
			return nil, errors.New("anonymous operations are not supported: name every query, mutation, and subscription")
		}
	}

	if errs := validator.Validate(schema, document); len(errs) > 0 {
		return nil, fmt.Errorf("validate queries: %w", errs)
	}

	return document, nil
}

// OperationQueryDocuments splits a merged document into one standalone
// document per operation, each carrying exactly the fragments the operation
// spreads, directly or through other fragments. Every document is validated
// again so it is usable on its own.
func OperationQueryDocuments(schema *ast.Schema, operations ast.OperationList) ([]*ast.QueryDocument, error) {
	documents := make([]*ast.QueryDocument, 0, len(operations))
	for _, operation := range operations {
		fragments, err := operationFragments(operation)
		if err != nil {
			return nil, fmt.Errorf("operation %s: %w", operation.Name, err)
		}

		document := &ast.QueryDocument{
			Operations: ast.OperationList{operation},
			Fragments:  fragments,
		}
		if errs := validator.Validate(schema, document); len(errs) > 0 {
			return nil, fmt.Errorf("validate operation %s: %w", operation.Name, errs)
		}

		documents = append(documents, document)
	}

	return documents, nil
}

// TypesFromQueryDocuments reports every named schema type the documents
// reference: variable types plus the input types reachable from them, the
// type behind every selected field, and fragment type conditions. Callers
// filter the result by kind.
func TypesFromQueryDocuments(schema *ast.Schema, documents []*ast.QueryDocument) map[string]bool {
	used := make(map[string]bool)
	for _, document := range documents {
		for _, operation := range document.Operations {
			for _, definition := range operation.VariableDefinitions {
				collectInputTypes(schema, definition.Type.Name(), used)
			}
			collectSelectionTypes(operation.SelectionSet, used)
		}
		for _, fragment := range document.Fragments {
			used[fragment.TypeCondition] = true
			collectSelectionTypes(fragment.SelectionSet, used)
		}
	}

	return used
}

func collectInputTypes(schema *ast.Schema, name string, used map[string]bool) {
	if used[name] {
		return
	}
	used[name] = true

	def := schema.Types[name]
	if def == nil || def.Kind != ast.InputObject {
		return
	}
	for _, field := range def.Fields {
		collectInputTypes(schema, field.Type.Name(), used)
	}
}

func collectSelectionTypes(selectionSet ast.SelectionSet, used map[string]bool) {
	for _, selection := range selectionSet {
		switch sel := selection.(type) {
		case *ast.Field:
			if sel.Definition != nil {
				used[sel.Definition.Type.Name()] = true
			}
			collectSelectionTypes(sel.SelectionSet, used)
		case *ast.InlineFragment:
			used[sel.TypeCondition] = true
			collectSelectionTypes(sel.SelectionSet, used)
		case *ast.FragmentSpread:
			// fragment bodies are walked once from the document's fragment list
		}
	}
}

// operationFragments collects the fragments an operation depends on, in
// first-use order, following spreads inside fragments transitively.
func operationFragments(operation *ast.OperationDefinition) (ast.FragmentDefinitionList, error) {
	var fragments ast.FragmentDefinitionList
	seen := make(map[string]bool)

	var collect func(selectionSet ast.SelectionSet) error
	collect = func(selectionSet ast.SelectionSet) error {
		for _, selection := range selectionSet {
			switch sel := selection.(type) {
			case *ast.Field:
				if err := collect(sel.SelectionSet); err != nil {
					return err
				}
			case *ast.InlineFragment:
				if err := collect(sel.SelectionSet); err != nil {
					return err
				}
			case *ast.FragmentSpread:
				if seen[sel.Name] {
					continue
				}
				seen[sel.Name] = true
				if sel.Definition == nil {
					return fmt.Errorf("fragment %s is not defined", sel.Name)
				}
				fragments = append(fragments, sel.Definition)
				if err := collect(sel.Definition.SelectionSet); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := collect(operation.SelectionSet); err != nil {
		return nil, err
	}

	return fragments, nil
}
