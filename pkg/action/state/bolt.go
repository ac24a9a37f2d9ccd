package state

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/ethpandaops/schedeck/pkg/action"
	"github.com/sirupsen/logrus"
	bolt "go.etcd.io/bbolt"
)

const boltOpenTimeout = time.Second

// BoltTracker keeps run state in a local bolt database. Each run gets its
// own bucket keyed by action name, so one file holds the history of every
// run made against it.
type BoltTracker struct {
	log    logrus.FieldLogger
	db     *bolt.DB
	bucket []byte
}

// NewBoltTracker opens (or creates) the database at path for the run runID
func NewBoltTracker(log logrus.FieldLogger, path, runID string) (*BoltTracker, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: boltOpenTimeout})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database %s: %w", path, err)
	}

	t := &BoltTracker{
		log:    log.WithFields(logrus.Fields{"component": "action_tracker", "run_id": runID}),
		db:     db,
		bucket: []byte("run:" + runID),
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(t.bucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket for run %s: %w", runID, err)
	}

	return t, nil
}

// Get returns the run state of an action
func (t *BoltTracker) Get(_ context.Context, name string) (action.RunState, error) {
	var run action.RunState

	err := t.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(t.bucket).Get([]byte(name))
		if raw == nil {
			return nil
		}

		return json.Unmarshal(raw, &run)
	})
	if err != nil {
		t.log.WithError(err).WithField("action", name).Error("Failed to read run state")
		return action.RunState{}, fmt.Errorf("failed to get run state for action %s: %w", name, err)
	}

	return run, nil
}

// Record registers a run of an action
func (t *BoltTracker) Record(_ context.Context, name string, simTime time.Time, wells []string) (action.RunState, error) {
	var run action.RunState

	err := t.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(t.bucket)

		if raw := b.Get([]byte(name)); raw != nil {
			if err := json.Unmarshal(raw, &run); err != nil {
				return err
			}
		}

		run.Count++
		run.LastTime = simTime.UTC()
		run.Wells = slices.Clone(wells)

		encoded, err := json.Marshal(run)
		if err != nil {
			return err
		}

		return b.Put([]byte(name), encoded)
	})
	if err != nil {
		t.log.WithError(err).
			WithFields(logrus.Fields{
				"action":   name,
				"sim_time": simTime,
			}).
			Error("Failed to record action run")
		return action.RunState{}, fmt.Errorf("failed to record run for action %s: %w", name, err)
	}

	t.log.WithFields(logrus.Fields{
		"action": name,
		"count":  run.Count,
	}).Debug("Recorded action run")

	return run, nil
}

// Reset forgets all runs of an action
func (t *BoltTracker) Reset(_ context.Context, name string) error {
	if err := t.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(t.bucket).Delete([]byte(name))
	}); err != nil {
		return fmt.Errorf("failed to reset action %s: %w", name, err)
	}

	return nil
}

// All returns the run state of every action that has run
func (t *BoltTracker) All(_ context.Context) (map[string]action.RunState, error) {
	runs := make(map[string]action.RunState)

	err := t.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(t.bucket).ForEach(func(k, v []byte) error {
			var run action.RunState
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("invalid run state for action %s: %w", k, err)
			}

			runs[string(k)] = run

			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read action run state: %w", err)
	}

	return runs, nil
}

// Close closes the database file
func (t *BoltTracker) Close() error {
	return t.db.Close()
}

var _ Tracker = (*BoltTracker)(nil)
