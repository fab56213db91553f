package codegen

import "fmt"

// InputTypeSelectionError reports a field whose declared type is an input
// object. Validated queries cannot produce one, so hitting this means the
// document or schema handed to the builder is corrupt.
type InputTypeSelectionError struct {
	TypeName  string
	FieldName string
	Path      string
}

func (e *InputTypeSelectionError) Error() string {
	return fmt.Sprintf("field %q at %s has input object type %s: input types cannot appear in a response", e.FieldName, e.Path, e.TypeName)
}

// UnsupportedVariantSelectionError reports a fragment inside an
// interface/union selection whose type condition is neither the abstract
// type itself nor one of its concrete member types. Such fragments would
// have to be flattened across several variants, which the builder does not
// do. SelectionName is empty when the fragment was inline.
type UnsupportedVariantSelectionError struct {
	SelectionName string
	TargetType    string
	OnType        string
	Path          string
}

func (e *UnsupportedVariantSelectionError) Error() string {
	name := "inline fragment"
	if e.SelectionName != "" {
		name = fmt.Sprintf("fragment %q", e.SelectionName)
	}
	return fmt.Sprintf("%s on %s at %s: %s is neither %s nor one of its member types", name, e.TargetType, e.Path, e.TargetType, e.OnType)
}

// NameCollisionError reports two selections on one record that map to the
// same Go member name. The fix is an alias on one of them.
type NameCollisionError struct {
	TypeName       string
	FieldName      string
	FirstWireName  string
	SecondWireName string
	Path           string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("selections %q and %q at %s both become member %s of %s: alias one of them", e.FirstWireName, e.SecondWireName, e.Path, e.FieldName, e.TypeName)
}
