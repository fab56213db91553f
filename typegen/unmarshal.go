package typegen

import (
	"fmt"
	"strconv"

	"github.com/gqlgo/gqlshape/codegen"
)

const (
	deriveJSON    = "json"
	deriveGetters = "getters"

	// typenameKey はレスポンスオブジェクトが具象型名を運ぶ予約キー。
	typenameKey = "__typename"
	// onMember は union を所有するレコードの判別メンバー名。
	onMember = "On"
	// unionTagMember は union レコードが生の型名を保持するメンバー名。
	unionTagMember = "TypeName"
)

// needsUnmarshal はレコードが独自の UnmarshalJSON を必要とするかを返す。
// fragment spread の埋め込みと union の判別は json タグだけでは表現できないため、
// どちらかを持つレコードにはメソッドを生成する。
func needsUnmarshal(decl *codegen.StructDecl) bool {
	for _, field := range decl.Fields {
		if field.Embed || field.WireName == typenameKey {
			return true
		}
	}
	return false
}

// buildUnmarshalStatements はレコード 1 つ分の UnmarshalJSON メソッド本体を組み立てる。
//
// キー付きメンバーは raw マップから個別に取り出し、埋め込みは同じオブジェクト全体を
// 渡して埋め込み側のデコードに委譲する。埋め込み型が自前の UnmarshalJSON を持つ場合でも
// 親がこのメソッドを持つことでメソッド昇格による乗っ取りを防ぐ。union を所有する
// レコードは __typename で分岐し、一致した variant の payload を初期化する。
func buildUnmarshalStatements(decl *codegen.StructDecl, union *codegen.UnionDecl) []Statement {
	var keyed, embeds []codegen.FieldDecl
	hasOn := false
	for _, field := range decl.Fields {
		switch {
		case field.Embed:
			embeds = append(embeds, field)
		case field.WireName == typenameKey:
			hasOn = true
		default:
			keyed = append(keyed, field)
		}
	}

	var statements []Statement
	if len(keyed) > 0 || hasOn {
		statements = append(statements,
			&VariableDecl{Name: "raw", Type: "map[string]jsontext.Value"},
			errCheck("json.Unmarshal(data, &raw)"),
		)
	}

	for _, field := range keyed {
		statements = append(statements, &IfStatement{
			Condition: fmt.Sprintf("value, ok := raw[%s]; ok", strconv.Quote(field.WireName)),
			Body: []Statement{
				errCheck(fmt.Sprintf("json.Unmarshal(value, &t.%s)", field.Name)),
			},
		})
	}

	for _, field := range embeds {
		statements = append(statements, errCheck(fmt.Sprintf("json.Unmarshal(data, &t.%s)", field.Name)))
	}

	if hasOn && union != nil {
		statements = append(statements, unionStatements(union)...)
	}

	return append(statements, &ReturnStatement{Value: "nil"})
}

// unionStatements は __typename の取り出しと variant ごとの payload デコードを組み立てる。
// __typename がレスポンスにない場合は判別メンバーを空のまま残す。
func unionStatements(union *codegen.UnionDecl) []Statement {
	statements := []Statement{
		&VariableDecl{Name: "typeName", Type: "string"},
		&IfStatement{
			Condition: fmt.Sprintf("value, ok := raw[%q]; ok", typenameKey),
			Body: []Statement{
				errCheck("json.Unmarshal(value, &typeName)"),
			},
		},
		&Assignment{
			Target: "t." + onMember,
			Value:  fmt.Sprintf("%s{%s: typeName}", union.Name, unionTagMember),
		},
	}

	var cases []SwitchCase
	for _, variant := range union.Variants {
		if variant.Type == "" {
			continue
		}
		member := fmt.Sprintf("t.%s.%s", onMember, variant.Name)
		cases = append(cases, SwitchCase{
			Value: variant.TagName,
			Body: []Statement{
				&Assignment{Target: member, Value: "&" + variant.Type + "{}"},
				errCheck(fmt.Sprintf("json.Unmarshal(data, %s)", member)),
			},
		})
	}
	if len(cases) > 0 {
		statements = append(statements, &SwitchStatement{Expr: "typeName", Cases: cases})
	}

	return statements
}

func errCheck(expr string) Statement {
	return &ErrorCheckStatement{
		ErrorExpr: expr,
		Body:      []Statement{&ReturnStatement{Value: "err"}},
	}
}
