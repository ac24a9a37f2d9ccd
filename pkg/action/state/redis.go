package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	r "github.com/ethpandaops/schedeck/pkg/redis"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Hash fields of one action run entry.
// Full key pattern: {prefix}:run:{runID}:action:{name}
// Example: schedeck:run:4b9c...:action:ACT_WCUT
const (
	fieldCount    = "count"
	fieldLastTime = "last_time"
	fieldWells    = "wells"
)

// RedisTracker persists run state in one Redis hash per action
type RedisTracker struct {
	log    logrus.FieldLogger
	redis  *redis.Client
	prefix string
}

// NewRedisTracker creates a Redis-backed tracker for the run runID
func NewRedisTracker(log logrus.FieldLogger, client *redis.Client, cfg *r.Config, runID string) *RedisTracker {
	return &RedisTracker{
		log:    log.WithFields(logrus.Fields{"component": "action_tracker", "run_id": runID}),
		redis:  client,
		prefix: cfg.PrefixKey("run:" + runID + ":action:"),
	}
}

func (t *RedisTracker) key(name string) string {
	return t.prefix + name
}

// Get returns the run state of an action
func (t *RedisTracker) Get(ctx context.Context, name string) (action.RunState, error) {
	fields, err := t.redis.HGetAll(ctx, t.key(name)).Result()
	if err != nil {
		t.log.WithError(err).WithField("action", name).Error("Failed to get run state from Redis")
		return action.RunState{}, fmt.Errorf("failed to get run state for action %s: %w", name, err)
	}

	if len(fields) == 0 {
		t.log.WithField("action", name).Debug("No runs recorded for action")
		return action.RunState{}, nil
	}

	run, err := decodeRun(fields)
	if err != nil {
		t.log.WithError(err).
			WithFields(logrus.Fields{
				"action":    name,
				"raw_value": fields,
			}).
			Error("Failed to decode run state")
		return action.RunState{}, fmt.Errorf("failed to decode run state for action %s: %w", name, err)
	}

	return run, nil
}

// Record registers a run of an action
func (t *RedisTracker) Record(ctx context.Context, name string, simTime time.Time, wells []string) (action.RunState, error) {
	key := t.key(name)

	var count *redis.IntCmd

	_, err := t.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		count = pipe.HIncrBy(ctx, key, fieldCount, 1)
		pipe.HSet(ctx, key,
			fieldLastTime, simTime.UTC().Format(time.RFC3339),
			fieldWells, strings.Join(wells, ","),
		)

		return nil
	})
	if err != nil {
		t.log.WithError(err).
			WithFields(logrus.Fields{
				"action":   name,
				"sim_time": simTime,
			}).
			Error("Failed to record action run in Redis")
		return action.RunState{}, fmt.Errorf("failed to record run for action %s: %w", name, err)
	}

	run := action.RunState{
		Count:    int(count.Val()),
		LastTime: simTime.UTC(),
		Wells:    splitWells(strings.Join(wells, ",")),
	}

	t.log.WithFields(logrus.Fields{
		"action": name,
		"count":  run.Count,
	}).Debug("Recorded action run")

	return run, nil
}

// Reset forgets all runs of an action
func (t *RedisTracker) Reset(ctx context.Context, name string) error {
	if err := t.redis.Del(ctx, t.key(name)).Err(); err != nil {
		t.log.WithError(err).WithField("action", name).Error("Failed to delete run state from Redis")
		return fmt.Errorf("failed to reset action %s: %w", name, err)
	}

	t.log.WithField("action", name).Debug("Reset action run state")

	return nil
}

// All returns the run state of every action that has run
func (t *RedisTracker) All(ctx context.Context) (map[string]action.RunState, error) {
	const scanBatchSize = 100

	runs := make(map[string]action.RunState)

	iter := t.redis.Scan(ctx, 0, t.prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		name := iter.Val()[len(t.prefix):]

		run, err := t.Get(ctx, name)
		if err != nil {
			return nil, err
		}

		runs[name] = run
	}

	if err := iter.Err(); err != nil {
		t.log.WithError(err).Error("Failed to scan action run state from Redis")
		return nil, fmt.Errorf("failed to scan action run state: %w", err)
	}

	t.log.WithField("count", len(runs)).Debug("Retrieved all action run states")

	return runs, nil
}

// Close releases the Redis client
func (t *RedisTracker) Close() error {
	if t.redis != nil {
		return t.redis.Close()
	}

	return nil
}

func decodeRun(fields map[string]string) (action.RunState, error) {
	var run action.RunState

	if raw, ok := fields[fieldCount]; ok {
		count, err := strconv.Atoi(raw)
		if err != nil {
			return run, fmt.Errorf("invalid run count %q: %w", raw, err)
		}

		run.Count = count
	}

	if raw, ok := fields[fieldLastTime]; ok {
		last, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return run, fmt.Errorf("invalid last run time %q: %w", raw, err)
		}

		run.LastTime = last
	}

	run.Wells = splitWells(fields[fieldWells])

	return run, nil
}

func splitWells(raw string) []string {
	if raw == "" {
		return nil
	}

	return strings.Split(raw, ",")
}

// Verify interface compliance at compile time
var _ Tracker = (*RedisTracker)(nil)
