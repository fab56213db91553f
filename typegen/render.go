package typegen

import (
	"bytes"
	"fmt"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/gqlgo/gqlshape/codegen"
)

const generatedHeader = "// Code generated by github.com/gqlgo/gqlshape, DO NOT EDIT.\n\n"

// fileWriter は生成ファイル 1 つ分の本文と import を貯める。
// 本文を書き終えてから bytes でヘッダ・package・import ブロックと結合する。
type fileWriter struct {
	buf     strings.Builder
	imports map[string]struct{}
	schema  *ast.Schema
	scalars map[string]string
	export  bool
}

func newFileWriter(schema *ast.Schema, scalars map[string]string, export bool) *fileWriter {
	return &fileWriter{
		imports: make(map[string]struct{}),
		schema:  schema,
		scalars: scalars,
		export:  export,
	}
}

func (f *fileWriter) addImport(importPath string) {
	f.imports[importPath] = struct{}{}
}

func (f *fileWriter) bytes(packageName string) []byte {
	var out bytes.Buffer
	out.WriteString(generatedHeader)
	out.WriteString("package " + packageName + "\n\n")
	if len(f.imports) > 0 {
		out.WriteString("import (\n")
		for _, importPath := range slices.Sorted(maps.Keys(f.imports)) {
			fmt.Fprintf(&out, "\t%q\n", importPath)
		}
		out.WriteString(")\n\n")
	}
	out.WriteString(f.buf.String())

	return out.Bytes()
}

// goField は Go の型名解決まで済んだ構造体メンバー 1 つ分。
type goField struct {
	name        string
	typ         string
	tag         string
	deprecation string
	embed       bool
}

// writeDecls は 1 つの selection から得られた宣言列を書き出す。record の直後に
// その record が所有する union が続く並びを前提に、union を record の
// UnmarshalJSON 生成へ渡す。
func (f *fileWriter) writeDecls(decls []codegen.Decl) {
	for i := 0; i < len(decls); i++ {
		switch decl := decls[i].(type) {
		case *codegen.StructDecl:
			var union *codegen.UnionDecl
			if i+1 < len(decls) {
				if u, ok := decls[i+1].(*codegen.UnionDecl); ok {
					union = u
				}
			}
			f.writeStruct(decl, union)
		case *codegen.UnionDecl:
			f.writeUnion(decl)
		}
	}
}

func (f *fileWriter) writeStruct(decl *codegen.StructDecl, union *codegen.UnionDecl) {
	fields := make([]goField, 0, len(decl.Fields))
	for _, field := range decl.Fields {
		fields = append(fields, f.structField(field))
	}
	f.writeStructType(decl.Name, "", fields)

	if slices.Contains(decl.Derives, deriveJSON) && needsUnmarshal(decl) {
		f.addImport("github.com/go-json-experiment/json")
		for _, field := range decl.Fields {
			if !field.Embed {
				// the raw map the method decodes into
				f.addImport("github.com/go-json-experiment/json/jsontext")
				break
			}
		}
		f.writeUnmarshalMethod(decl.Name, buildUnmarshalStatements(decl, union))
	}
	if slices.Contains(decl.Derives, deriveGetters) {
		f.writeGetters(decl.Name, fields)
	}
}

func (f *fileWriter) writeUnion(decl *codegen.UnionDecl) {
	fields := make([]goField, 0, len(decl.Variants)+1)
	fields = append(fields, goField{name: unionTagMember, typ: "string", tag: "`json:\"__typename\"`"})
	var bare []string
	for _, variant := range decl.Variants {
		if variant.Type == "" {
			bare = append(bare, variant.TagName)
			continue
		}
		fields = append(fields, goField{name: variant.Name, typ: "*" + variant.Type, tag: "`json:\"-\"`"})
	}

	doc := fmt.Sprintf("// %s discriminates a %s selection by __typename, which is kept in\n// %s. The member matching the concrete type is set, the others stay nil.",
		decl.Name, decl.GraphQLName, unionTagMember)
	if len(bare) > 0 {
		doc += fmt.Sprintf("\n// Type names without selected fields (%s) and type names this build\n// does not know only set %s.", strings.Join(bare, ", "), unionTagMember)
	} else {
		doc += fmt.Sprintf("\n// Type names this build does not know only set %s.", unionTagMember)
	}
	f.writeStructType(decl.Name, doc, fields)

	if slices.Contains(decl.Derives, deriveGetters) {
		f.writeGetters(decl.Name, fields)
	}
}

func (f *fileWriter) structField(field codegen.FieldDecl) goField {
	out := goField{name: field.Name, embed: field.Embed}
	switch {
	case field.Embed:
		out.tag = "`json:\"-\"`"
	case field.WireName == typenameKey:
		// the On member, filled by UnmarshalJSON rather than by key
		out.typ = f.exprType(field.Type)
		out.tag = "`json:\"-\"`"
	default:
		out.typ = f.exprType(field.Type)
		out.tag = fmt.Sprintf("`json:%s`", strconv.Quote(field.WireName))
	}
	if field.Deprecated {
		out.deprecation = field.DeprecationReason
	}

	return out
}

func (f *fileWriter) writeStructType(name, doc string, fields []goField) {
	if doc != "" {
		f.buf.WriteString(doc + "\n")
	}
	fmt.Fprintf(&f.buf, "type %s struct {\n", name)
	for _, field := range fields {
		if field.deprecation != "" {
			fmt.Fprintf(&f.buf, "\t// Deprecated: %s\n", field.deprecation)
		}
		switch {
		case field.embed:
			fmt.Fprintf(&f.buf, "\t%s %s\n", field.name, field.tag)
		case field.tag != "":
			fmt.Fprintf(&f.buf, "\t%s %s %s\n", field.name, field.typ, field.tag)
		default:
			fmt.Fprintf(&f.buf, "\t%s %s\n", field.name, field.typ)
		}
	}
	f.buf.WriteString("}\n\n")
}

// writeUnmarshalMethod は組み立て済みステートメントを UnmarshalJSON メソッドに整形する。
func (f *fileWriter) writeUnmarshalMethod(typeName string, body []Statement) {
	fmt.Fprintf(&f.buf, "func (t *%s) UnmarshalJSON(data []byte) error {\n", typeName)
	for _, stmt := range body {
		f.buf.WriteString("\t")
		f.buf.WriteString(stmt.String(1))
		f.buf.WriteString("\n")
	}
	f.buf.WriteString("}\n\n")
}

// exprType は宣言の型式を Go の型表記に変換する。葉のスカラー・enum は
// スキーマ経由で Go 型に割り当て、生成レコード名はそのまま使う。
func (f *fileWriter) exprType(expr codegen.TypeExpr) string {
	switch e := expr.(type) {
	case codegen.NamedExpr:
		if def, ok := f.schema.Types[e.Name]; ok && (def.Kind == ast.Scalar || def.Kind == ast.Enum) {
			return f.leafType(def)
		}
		return e.Name
	case codegen.PointerExpr:
		return "*" + f.exprType(e.Elem)
	case codegen.SliceExpr:
		return "[]" + f.exprType(e.Elem)
	}

	return ""
}

// astGoType は変数定義や input フィールドのスキーマ型を Go の型表記に変換する。
func (f *fileWriter) astGoType(t *ast.Type) string {
	base := "string"
	if def, ok := f.schema.Types[t.Name()]; ok {
		base = f.leafType(def)
	}

	return f.exprType(codegen.Decorate(codegen.NamedExpr{Name: base}, codegen.QualifiersOf(t)))
}

// leafType はスカラー・enum・input object の Go 型名を返す。
// 未設定のカスタムスカラーは jsontext.Value として生のまま保持する。
func (f *fileWriter) leafType(def *ast.Definition) string {
	switch def.Kind {
	case ast.Enum, ast.InputObject:
		return codegen.GoTypeName(def.Name, f.export)
	case ast.Scalar:
		if mapped, ok := f.scalars[def.Name]; ok {
			return f.mappedScalar(mapped)
		}
		switch def.Name {
		case "Int":
			return "int"
		case "Float":
			return "float64"
		case "String", "ID":
			return "string"
		case "Boolean":
			return "bool"
		}
		f.addImport("github.com/go-json-experiment/json/jsontext")
		return "jsontext.Value"
	}

	return codegen.GoTypeName(def.Name, f.export)
}

// mappedScalar は設定の scalar 割り当て（例: github.com/google/uuid.UUID や
// time.Time、ドットなしなら int64 のような組み込み型）を解決する。
func (f *fileWriter) mappedScalar(mapped string) string {
	idx := strings.LastIndex(mapped, ".")
	if idx < 0 {
		return mapped
	}
	importPath := mapped[:idx]
	f.addImport(importPath)

	return path.Base(importPath) + "." + mapped[idx+1:]
}

// writeOperationDocument はオペレーションと、そのオペレーションが参照する
// fragment だけを含むクエリ文書を定数として書き出す。
func (f *fileWriter) writeOperationDocument(constName string, doc *ast.QueryDocument) {
	var source strings.Builder
	formatter.NewFormatter(&source).FormatQueryDocument(doc)

	text := source.String()
	if strings.Contains(text, "`") {
		fmt.Fprintf(&f.buf, "const %s = %s\n\n", constName, strconv.Quote(text))
		return
	}
	fmt.Fprintf(&f.buf, "const %s = `%s`\n\n", constName, text)
}

// writeVariables はオペレーションの変数定義から variables レコードを書き出す。
// null を許す変数は omitzero でリクエストから落とせるようにする。
func (f *fileWriter) writeVariables(name string, definitions ast.VariableDefinitionList) {
	if len(definitions) == 0 {
		return
	}

	fields := make([]goField, 0, len(definitions))
	for _, definition := range definitions {
		tag := fmt.Sprintf("`json:%s`", strconv.Quote(definition.Variable))
		if !definition.Type.NonNull {
			tag = fmt.Sprintf("`json:%s`", strconv.Quote(definition.Variable+",omitzero"))
		}
		fields = append(fields, goField{
			name: codegen.GoMemberName(definition.Variable),
			typ:  f.astGoType(definition.Type),
			tag:  tag,
		})
	}
	f.writeStructType(name, "", fields)
}
