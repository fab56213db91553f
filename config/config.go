package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"

	gqlgenconfig "github.com/99designs/gqlgen/codegen/config"
	"github.com/99designs/gqlgen/plugin/federation"

	"github.com/gqlgo/gqlshape/queryparser"

	"github.com/vektah/gqlparser/v2/ast"
)

// Config represents the config file.
type Config struct {
	GQLShapeConfig *GQLShapeConfig      `yaml:"gqlshape"`
	GQLGenConfig   *gqlgenconfig.Config `yaml:"gqlgen"`
}

// LoadConfig loads and parses the gqlshape config file.
func LoadConfig(configFilename string) (*Config, error) {
	configContent, err := os.ReadFile(configFilename)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}

	var c Config

	yamlDecoder := yaml.NewDecoder(bytes.NewReader([]byte(os.ExpandEnv(string(configContent)))), yaml.DisallowUnknownField())
	if err := yamlDecoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	// validation
	if c.GQLShapeConfig == nil || c.GQLGenConfig == nil {
		return nil, errors.New("config must define both a 'gqlshape' and a 'gqlgen' section")
	}

	if c.GQLGenConfig.SchemaFilename != nil && c.GQLShapeConfig.Endpoint != nil {
		return nil, errors.New("'schema' and 'endpoint' both specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	if c.GQLGenConfig.SchemaFilename == nil && c.GQLShapeConfig.Endpoint == nil {
		return nil, errors.New("neither 'schema' nor 'endpoint' specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	if !c.GQLShapeConfig.TypeGen.IsDefined() {
		return nil, errors.New("'typegen' must be set: it names the file and package the generated types go to")
	}

	if err := c.GQLShapeConfig.TypeGen.Check(); err != nil {
		return nil, fmt.Errorf("typegen: %w", err)
	}

	if len(c.GQLShapeConfig.Query) == 0 {
		return nil, errors.New("'query' must list at least one GraphQL document path or glob")
	}

	switch c.GQLShapeConfig.Deprecation {
	case "", "allow", "warn", "omit":
	default:
		return nil, fmt.Errorf("unknown deprecation policy %q (want allow, warn, or omit)", c.GQLShapeConfig.Deprecation)
	}

	for scalar, goType := range c.GQLShapeConfig.Scalars {
		if goType == "" {
			return nil, fmt.Errorf("scalar %s maps to an empty Go type", scalar)
		}
	}

	///////////////////////////////////////////////////////////////////////////////////////////////////////////////////
	// gqlgen

	// Fill gqlgen config fields
	// https://github.com/99designs/gqlgen/blob/3a31a752df764738b1f6e99408df3b169d514784/codegen/config/config.go#L120
	schemaFilename, err := schemaFilenames(c.GQLGenConfig.SchemaFilename)
	if err != nil {
		return nil, err
	}

	c.GQLGenConfig.SchemaFilename = schemaFilename

	sources, err := schemaFileSources(c.GQLGenConfig.SchemaFilename)
	if err != nil {
		return nil, err
	}

	if c.GQLGenConfig.Federation.Version != 0 {
		fedPlugin, err := federation.New(c.GQLGenConfig.Federation.Version, c.GQLGenConfig)
		if err != nil {
			return nil, fmt.Errorf("failed to create federation plugin: %w", err)
		}

		federationSources, err := fedPlugin.InjectSourcesEarly()
		if err != nil {
			return nil, fmt.Errorf("failed to inject federation directives: %w", err)
		}

		sources = append(sources, federationSources...)
	}

	c.GQLGenConfig.Sources = sources

	return &c, nil
}

// PrepareSchema loads the schema from its configured source, normalizes it,
// and then loads and validates the query documents against it. It must run
// once before generation.
func (c *Config) PrepareSchema(ctx context.Context) error {
	switch {
	case c.GQLGenConfig.SchemaFilename != nil:
		if err := c.GQLGenConfig.LoadSchema(); err != nil {
			return fmt.Errorf("load local schema failed: %w", err)
		}
	case c.GQLShapeConfig.Endpoint != nil:
		httpClient := c.GQLShapeConfig.Endpoint.Client
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		schema, err := introspectionSchema(ctx, httpClient, c.GQLShapeConfig.Endpoint.URL, c.GQLShapeConfig.Endpoint.Headers)
		if err != nil {
			return fmt.Errorf("introspect schema failed: %w", err)
		}
		c.GQLGenConfig.Schema = schema
	default:
		return errors.New("neither 'schema' nor 'endpoint' specified. Use schema to load from a local file, use endpoint to load from a remote server (using introspection)")
	}

	// Interface and union member order depends on where the schema came
	// from (file order vs. whatever the introspection endpoint returned),
	// so normalize it before anything derives output from it.
	for _, implements := range c.GQLGenConfig.Schema.Implements {
		slices.SortFunc(implements, func(a, b *ast.Definition) int {
			return strings.Compare(a.Name, b.Name)
		})
	}
	for _, possibleTypes := range c.GQLGenConfig.Schema.PossibleTypes {
		slices.SortFunc(possibleTypes, func(a, b *ast.Definition) int {
			return strings.Compare(a.Name, b.Name)
		})
	}

	if err := c.GQLShapeConfig.LoadQuery(c.GQLGenConfig.Schema); err != nil {
		return err
	}

	return nil
}

type GQLShapeConfig struct {
	TypeGen                 gqlgenconfig.PackageConfig `yaml:"typegen"`
	Endpoint                *EndPointConfig            `yaml:"endpoint,omitempty"`
	Query                   []string                   `yaml:"query"`
	ExportTypes             bool                       `yaml:"export_types,omitempty"`
	Derives                 []string                   `yaml:"derives,omitempty"`
	Deprecation             string                     `yaml:"deprecation,omitempty"`
	Scalars                 map[string]string          `yaml:"scalars,omitempty"`
	QueryDocument           *ast.QueryDocument         `yaml:"-"`
	OperationQueryDocuments []*ast.QueryDocument       `yaml:"-"`
}

func (c *GQLShapeConfig) LoadQuery(schema *ast.Schema) error {
	querySources, err := queryparser.LoadQuerySources(c.Query)
	if err != nil {
		return fmt.Errorf("load query sources failed: %w", err)
	}

	queryDocument, err := queryparser.QueryDocument(schema, querySources)
	if err != nil {
		return fmt.Errorf("load query document failed: %w", err)
	}

	operationQueryDocuments, err := queryparser.OperationQueryDocuments(schema, queryDocument.Operations)
	if err != nil {
		return fmt.Errorf("split operation documents failed: %w", err)
	}

	c.QueryDocument = queryDocument
	c.OperationQueryDocuments = operationQueryDocuments

	return nil
}

// EndPointConfig are the allowed options for the 'endpoint' config.
type EndPointConfig struct {
	Headers http.Header  `yaml:"headers,omitempty"`
	URL     string       `yaml:"url"`
	Client  *http.Client `yaml:"-"`
}

// FindConfigFile looks for one of the candidate file names in dir and then
// in each parent directory, returning the first match.
func FindConfigFile(dir string, names []string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}

	for {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no config file found (looked for %s here and in parent directories)", strings.Join(names, ", "))
		}
		dir = parent
	}
}

func schemaFilenames(patterns gqlgenconfig.StringList) (gqlgenconfig.StringList, error) {
	if patterns == nil {
		return nil, nil
	}

	var filenames gqlgenconfig.StringList
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob schema filename %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("schema path %s matched no files", pattern)
		}
		for _, match := range matches {
			if slices.Contains(filenames, match) {
				continue
			}
			filenames = append(filenames, match)
		}
	}

	return filenames, nil
}

func schemaFileSources(filenames gqlgenconfig.StringList) ([]*ast.Source, error) {
	sources := make([]*ast.Source, 0, len(filenames))
	for _, filename := range filenames {
		filename = filepath.ToSlash(filename)
		content, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("unable to open schema %s: %w", filename, err)
		}
		sources = append(sources, &ast.Source{Name: filename, Input: string(content)})
	}

	return sources, nil
}
