package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"github.com/ethpandaops/schedeck/pkg/engine"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// LoadCLIConfig loads the engine configuration from a YAML file. A missing
// file yields the defaults. A non-empty deck overrides the configured path.
func LoadCLIConfig(path, deck string) (*engine.Config, error) {
	if path == "" {
		path = "config.yaml"
	}

	config := &engine.Config{}

	if err := defaults.Set(config); err != nil {
		return nil, err
	}

	yamlFile, err := os.ReadFile(path) //nolint:gosec // User-provided config file path
	switch {
	case err == nil:
		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, err
	}

	if deck != "" {
		config.Deck = deck
	}

	return config, nil
}

// loadEngine builds an engine from the CLI configuration and loads its deck
func loadEngine(cmd *cobra.Command) (*engine.Service, error) {
	// Silence usage on error
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cfg, err := LoadCLIConfig(cfgFile, deckFile)
	if err != nil {
		return nil, err
	}

	if !cmd.Flags().Changed("log-level") {
		if level, parseErr := logrus.ParseLevel(cfg.Logging); parseErr == nil {
			logger.SetLevel(level)
		}
	}

	svc, err := engine.NewService(logger, cfg, nil)
	if err != nil {
		return nil, err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := svc.Load(ctx); err != nil {
		_ = svc.Stop()
		return nil, err
	}

	return svc, nil
}

// closeEngine releases the tracker of a CLI engine. The servers were never
// started, so Stop only closes the tracker.
func closeEngine(svc *engine.Service) {
	if err := svc.Stop(); err != nil {
		logger.WithError(err).Error("Failed to stop engine")
	}
}
