package codegen

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecorate(t *testing.T) {
	t.Parallel()

	base := NamedExpr{Name: "Cat"}

	tests := []struct {
		name       string
		qualifiers []Qualifier
		want       TypeExpr
		wantString string
	}{
		{
			name:       "必須はベース型をそのまま返す",
			qualifiers: []Qualifier{QualifierRequired},
			want:       NamedExpr{Name: "Cat"},
			wantString: "Cat",
		},
		{
			name:       "nullableはポインタになる",
			qualifiers: []Qualifier{QualifierOptional},
			want:       PointerExpr{Elem: NamedExpr{Name: "Cat"}},
			wantString: "*Cat",
		},
		{
			name:       "非null要素の非nullリストはスライスになる",
			qualifiers: []Qualifier{QualifierRequired, QualifierList, QualifierRequired},
			want:       SliceExpr{Elem: NamedExpr{Name: "Cat"}},
			wantString: "[]Cat",
		},
		{
			name:       "nullable要素のnullableリストは両側がポインタになる",
			qualifiers: []Qualifier{QualifierOptional, QualifierList, QualifierOptional},
			want:       PointerExpr{Elem: SliceExpr{Elem: PointerExpr{Elem: NamedExpr{Name: "Cat"}}}},
			wantString: "*[]*Cat",
		},
		{
			name:       "非nullリストのnullableリストも外側から順に包まれる",
			qualifiers: []Qualifier{QualifierRequired, QualifierList, QualifierOptional, QualifierList, QualifierRequired},
			want:       SliceExpr{Elem: PointerExpr{Elem: SliceExpr{Elem: NamedExpr{Name: "Cat"}}}},
			wantString: "[]*[]Cat",
		},
		{
			name:       "qualifierが空ならnullable扱いになる",
			qualifiers: nil,
			want:       PointerExpr{Elem: NamedExpr{Name: "Cat"}},
			wantString: "*Cat",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Decorate(base, tt.qualifiers)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("diff(-want +got): %s", diff)
			}
			if got.String() != tt.wantString {
				t.Errorf("String() = %q, want %q", got.String(), tt.wantString)
			}
		})
	}
}
