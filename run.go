package main

import (
	"context"
	"fmt"

	"github.com/gqlgo/gqlshape/config"
	"github.com/gqlgo/gqlshape/typegen"
)

func run(ctx context.Context) error {
	cfgFile, err := config.FindConfigFile(".", []string{".gqlshape.yml", "gqlshape.yml", ".gqlshape.yaml", "gqlshape.yaml"})
	if err != nil {
		return fmt.Errorf("failed to find config file: %w", err)
	}

	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.PrepareSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare schema: %w", err)
	}

	if err := typegen.Generate(cfg); err != nil {
		return fmt.Errorf("failed to generate types: %w", err)
	}

	return nil
}
