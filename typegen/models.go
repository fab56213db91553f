package typegen

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/gqlgo/gqlshape/codegen"
	"github.com/gqlgo/gqlshape/queryparser"
)

// writeModels はクエリが参照する enum と input object の宣言を書き出す。
// スキーマ全体ではなくクエリ文書が届く型だけを対象にし、名前順で並べる。
// 非推奨の値やフィールドも落とさない。サーバーがまだ返しうる値だからである。
func (f *fileWriter) writeModels(documents []*ast.QueryDocument) {
	used := queryparser.TypesFromQueryDocuments(f.schema, documents)
	for _, name := range slices.Sorted(maps.Keys(used)) {
		def, ok := f.schema.Types[name]
		if !ok {
			continue
		}
		switch def.Kind {
		case ast.Enum:
			f.writeEnum(def)
		case ast.InputObject:
			f.writeInput(def)
		}
	}
}

func (f *fileWriter) writeEnum(def *ast.Definition) {
	name := codegen.GoTypeName(def.Name, f.export)
	if def.Description != "" {
		f.buf.WriteString(docComment(def.Description) + "\n")
	}
	fmt.Fprintf(&f.buf, "type %s string\n\n", name)

	if len(def.EnumValues) == 0 {
		return
	}
	f.buf.WriteString("const (\n")
	for _, value := range def.EnumValues {
		fmt.Fprintf(&f.buf, "\t%s%s %s = %q\n", name, codegen.GoMemberName(value.Name), name, value.Name)
	}
	f.buf.WriteString(")\n\n")
}

func (f *fileWriter) writeInput(def *ast.Definition) {
	fields := make([]goField, 0, len(def.Fields))
	for _, field := range def.Fields {
		wire := field.Name
		if !field.Type.NonNull {
			wire += ",omitzero"
		}
		fields = append(fields, goField{
			name: codegen.GoMemberName(field.Name),
			typ:  f.astGoType(field.Type),
			tag:  fmt.Sprintf("`json:%s`", strconv.Quote(wire)),
		})
	}

	var doc string
	if def.Description != "" {
		doc = docComment(def.Description)
	}
	f.writeStructType(codegen.GoTypeName(def.Name, f.export), doc, fields)
}

// docComment は複数行の説明文を // コメントに整形する。
func docComment(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = "//"
			continue
		}
		lines[i] = "// " + line
	}

	return strings.Join(lines, "\n")
}
