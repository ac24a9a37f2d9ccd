// Package engine loads a deck, builds its schedule and evaluates the
// ACTIONX blocks registered along it
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action/state"
	"github.com/ethpandaops/schedeck/pkg/api"
	"github.com/ethpandaops/schedeck/pkg/deck"
	"github.com/ethpandaops/schedeck/pkg/schedule"
)

var (
	// ErrDeckRequired is returned when no deck path is configured
	ErrDeckRequired = errors.New("deck path is required")
	// ErrRestartTimeRequired is returned when a restart step is given without a restart time
	ErrRestartTimeRequired = errors.New("restart time is required when restarting")
	// ErrInvalidRestartTime is returned for a restart time in an unknown layout
	ErrInvalidRestartTime = errors.New("invalid restart time")
	// ErrNegativeRestartStep is returned for a negative restart report step
	ErrNegativeRestartStep = errors.New("restart report step must be non-negative")
)

//nolint:gochecknoglobals // Accepted restart time layouts
var restartTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", time.DateOnly}

// Config represents the complete engine configuration
type Config struct {
	// Core settings
	Logging         string `yaml:"logging" default:"info" validate:"oneof=panic fatal warn info debug trace"`
	MetricsAddr     string `yaml:"metricsAddr" default:":9091"`
	HealthCheckAddr string `yaml:"healthCheckAddr"`

	// Deck is the path of the YAML keyword deck
	Deck string `yaml:"deck"`
	// WatchDeck reloads the deck while serving whenever the file changes
	WatchDeck bool `yaml:"watchDeck"`

	// Restart describes where a restarted run resumes
	Restart RestartConfig `yaml:"restart"`

	// State selects where ACTIONX run bookkeeping is kept
	State state.Config `yaml:"state"`

	// API service configuration
	API api.Config `yaml:"api"`
}

// RestartConfig describes a restarted run. With FromDeck the report step
// and SKIPREST flag are read from the RESTART and SKIPREST keywords and only
// the time is taken from here.
type RestartConfig struct {
	Time       string `yaml:"time"`
	ReportStep int    `yaml:"reportStep"`
	SkipRest   bool   `yaml:"skipRest"`
	FromDeck   bool   `yaml:"fromDeck"`
}

// Validate validates the restart configuration
func (c *RestartConfig) Validate() error {
	if c.ReportStep < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeRestartStep, c.ReportStep)
	}

	if c.Time == "" {
		if c.ReportStep > 0 {
			return ErrRestartTimeRequired
		}

		return nil
	}

	_, err := c.time()

	return err
}

func (c *RestartConfig) time() (time.Time, error) {
	if c.Time == "" {
		return time.Time{}, nil
	}

	for _, layout := range restartTimeLayouts {
		if t, err := time.Parse(layout, c.Time); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidRestartTime, c.Time)
}

// Info resolves the restart information for d
func (c *RestartConfig) Info(d *deck.Deck) (schedule.RestartInfo, error) {
	t, err := c.time()
	if err != nil {
		return schedule.RestartInfo{}, err
	}

	if c.FromDeck {
		info, err := schedule.RestartInfoFromDeck(d, t)
		if err != nil {
			return schedule.RestartInfo{}, err
		}

		if info.IsRestart() && t.IsZero() {
			return schedule.RestartInfo{}, ErrRestartTimeRequired
		}

		return info, nil
	}

	return schedule.RestartInfo{Time: t, ReportStep: c.ReportStep, SkipRest: c.SkipRest}, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Deck == "" {
		return ErrDeckRequired
	}

	if err := c.Restart.Validate(); err != nil {
		return err
	}

	if err := c.State.Validate(); err != nil {
		return err
	}

	return c.API.Validate()
}
