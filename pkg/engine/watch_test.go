package engine

import (
	"context"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethpandaops/schedeck/internal/testutil"
	"github.com/ethpandaops/schedeck/pkg/action/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeckWatcher_ReloadsOnWrite(t *testing.T) {
	svc := loadedService(t, state.NewMemoryTracker())
	require.Equal(t, 4, svc.Schedule().Size())

	watcher, err := newDeckWatcher(newTestLogger(), svc.config.Deck, 20*time.Millisecond, svc.Load)
	require.NoError(t, err)

	watcher.Start(context.Background())
	defer func() { require.NoError(t, watcher.Stop()) }()

	single := strings.Replace(testutil.SampleDeck, `"2*10"`, `"10"`, 1)
	require.NoError(t, os.WriteFile(svc.config.Deck, []byte(single), 0o600))

	require.Eventually(t, func() bool {
		return svc.Schedule().Size() == 3
	}, 5*time.Second, 20*time.Millisecond)

	step, ok := svc.ActionStep("GAS_LIMIT")
	require.True(t, ok)
	assert.Equal(t, 1, step)
}

func TestDeckWatcher_IgnoresOtherFiles(t *testing.T) {
	path := testutil.WriteSampleDeck(t)

	var reloads atomic.Int32

	watcher, err := newDeckWatcher(newTestLogger(), path, 10*time.Millisecond, func(context.Context) error {
		reloads.Add(1)
		return nil
	})
	require.NoError(t, err)

	watcher.Start(context.Background())

	require.NoError(t, os.WriteFile(path+".bak", []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), reloads.Load())

	require.NoError(t, os.WriteFile(path, []byte(testutil.SampleDeck), 0o600))
	require.Eventually(t, func() bool {
		return reloads.Load() == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, watcher.Stop())
}

func TestDeckWatcher_KeepsScheduleOnInvalidDeck(t *testing.T) {
	svc := loadedService(t, state.NewMemoryTracker())

	var attempts atomic.Int32

	watcher, err := newDeckWatcher(newTestLogger(), svc.config.Deck, 10*time.Millisecond, func(ctx context.Context) error {
		defer attempts.Add(1)
		return svc.Load(ctx)
	})
	require.NoError(t, err)

	watcher.Start(context.Background())
	defer func() { require.NoError(t, watcher.Stop()) }()

	require.NoError(t, os.WriteFile(svc.config.Deck, []byte("keywords: [unclosed"), 0o600))

	require.Eventually(t, func() bool {
		return attempts.Load() >= 1
	}, 5*time.Second, 10*time.Millisecond)

	assert.Equal(t, 4, svc.Schedule().Size())
}
