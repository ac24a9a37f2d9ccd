// Package state keeps the run bookkeeping of ACTIONX blocks: how often an
// action has run, when it ran last and which wells it matched.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	r "github.com/ethpandaops/schedeck/pkg/redis"
	"github.com/sirupsen/logrus"
)

// Backend names
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendBolt   = "bolt"
)

// Define static errors
var (
	ErrUnknownBackend      = errors.New("unknown state backend")
	ErrRedisConfigRequired = errors.New("redis configuration is required for the redis backend")
	ErrBoltPathRequired    = errors.New("bolt file path is required for the bolt backend")
)

// Tracker stores the run state of actions within one simulation run
type Tracker interface {
	// Get returns the run state of an action
	// Returns the zero state if the action has never run
	Get(ctx context.Context, name string) (action.RunState, error)

	// Record registers a run of an action at simTime with the matched wells
	Record(ctx context.Context, name string, simTime time.Time, wells []string) (action.RunState, error)

	// Reset forgets all runs of an action
	Reset(ctx context.Context, name string) error

	// All returns the run state of every action that has run
	All(ctx context.Context) (map[string]action.RunState, error)

	// Close releases resources held by the tracker
	Close() error
}

// Config selects and configures the tracker backend
type Config struct {
	Backend string    `yaml:"backend" default:"memory"`
	Redis   *r.Config `yaml:"redis"`
	// BoltPath is the database file of the bolt backend
	BoltPath string `yaml:"boltPath"`
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}

	switch c.Backend {
	case BackendMemory:
		return nil
	case BackendRedis:
		if c.Redis == nil {
			return ErrRedisConfigRequired
		}

		if err := c.Redis.Validate(); err != nil {
			return fmt.Errorf("invalid redis configuration: %w", err)
		}

		return nil
	case BackendBolt:
		if c.BoltPath == "" {
			return ErrBoltPathRequired
		}

		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownBackend, c.Backend)
	}
}

// NewTracker creates the tracker selected by cfg. Redis keys and bolt
// buckets are namespaced by runID so concurrent runs do not share bookkeeping.
func NewTracker(log logrus.FieldLogger, cfg *Config, runID string) (Tracker, error) {
	switch cfg.Backend {
	case BackendMemory, "":
		return NewMemoryTracker(), nil
	case BackendRedis:
		if cfg.Redis == nil {
			return nil, ErrRedisConfigRequired
		}

		client, err := cfg.Redis.NewClient()
		if err != nil {
			return nil, err
		}

		return NewRedisTracker(log, client, cfg.Redis, runID), nil
	case BackendBolt:
		if cfg.BoltPath == "" {
			return nil, ErrBoltPathRequired
		}

		return NewBoltTracker(log, cfg.BoltPath, runID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}
