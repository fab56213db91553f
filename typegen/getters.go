package typegen

import "fmt"

// writeGetters は getters ディレクティブ用の nil セーフな getter メソッドを書き出す。
// レシーバが nil でもゼロ値を返すので、レスポンスの深い参照を連鎖できる。
func (f *fileWriter) writeGetters(typeName string, fields []goField) {
	for _, field := range fields {
		typ := field.typ
		if field.embed {
			typ = field.name
		}
		if field.deprecation != "" {
			fmt.Fprintf(&f.buf, "// Deprecated: %s\n", field.deprecation)
		}
		fmt.Fprintf(&f.buf, "func (t *%s) Get%s() %s {\n", typeName, field.name, typ)
		f.buf.WriteString("\tif t == nil {\n")
		fmt.Fprintf(&f.buf, "\t\tt = &%s{}\n", typeName)
		f.buf.WriteString("\t}\n")
		fmt.Fprintf(&f.buf, "\treturn t.%s\n", field.name)
		f.buf.WriteString("}\n\n")
	}
}
