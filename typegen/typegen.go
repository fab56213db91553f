// Package typegen はクエリ文書から Go の型宣言とクエリ定数を生成する。
//
// 生成されるファイルは models（enum と input object）、fragment のレコード、
// オペレーションごとのクエリ定数・variables・レスポンスレコードの順に並ぶ。
// レコードの形の計算は codegen パッケージが行い、このパッケージはその宣言を
// Go のソーステキストへ書き下すことに専念する。
package typegen

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"

	"github.com/gqlgo/gqlshape/codegen"
	"github.com/gqlgo/gqlshape/config"
)

// Generate は設定に従って 1 つの Go ファイルを生成する。
// PrepareSchema 済みの設定を前提とする。
func Generate(cfg *config.Config) error {
	shape := cfg.GQLShapeConfig
	derives := shape.Derives
	if len(derives) == 0 {
		derives = []string{deriveJSON}
	}
	opts := codegen.Options{
		ExportTypes: shape.ExportTypes,
		Deprecation: deprecationStrategy(shape.Deprecation),
	}

	schema := cfg.GQLGenConfig.Schema
	f := newFileWriter(schema, shape.Scalars, shape.ExportTypes)

	f.writeModels(shape.OperationQueryDocuments)

	for _, fragment := range shape.QueryDocument.Fragments {
		decls, err := codegen.RenderFragmentTypes(schema, fragment, derives, opts)
		if err != nil {
			return fmt.Errorf("fragment %s: %w", fragment.Name, err)
		}
		f.writeDecls(decls)
	}

	for i, operation := range shape.QueryDocument.Operations {
		base := codegen.GoTypeName(operation.Name, shape.ExportTypes)
		f.writeOperationDocument(base+"Document", shape.OperationQueryDocuments[i])
		f.writeVariables(base+"Variables", operation.VariableDefinitions)

		decls, err := codegen.RenderOperationTypes(schema, operation, derives, opts)
		if err != nil {
			return fmt.Errorf("operation %s: %w", operation.Name, err)
		}
		f.writeDecls(decls)
	}

	return writeFile(shape.TypeGen.Filename, f.bytes(packageName(shape.TypeGen.Filename, shape.TypeGen.Package)))
}

func deprecationStrategy(policy string) codegen.DeprecationStrategy {
	switch policy {
	case "warn":
		return codegen.DeprecationWarn
	case "omit":
		return codegen.DeprecationOmit
	default:
		return codegen.DeprecationAllow
	}
}

func packageName(filename, configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Base(filepath.Dir(filename))
}

// writeFile は goimports をかけてから書き出す。整形に失敗した場合も原因を
// 調べられるように未整形のソースを残す。
func writeFile(filename string, src []byte) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	formatted, err := imports.Process(filename, src, nil)
	if err != nil {
		if writeErr := os.WriteFile(filename, src, 0o644); writeErr != nil {
			return fmt.Errorf("write %s: %w", filename, writeErr)
		}
		return fmt.Errorf("go imports %s: %w", filename, err)
	}

	if err := os.WriteFile(filename, formatted, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}

	return nil
}
