package schedule

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/scheduleterp/internal/profile"
	"github.com/hrygo/scheduleterp/server/internal/observability"
	"github.com/hrygo/scheduleterp/store"
	"github.com/hrygo/scheduleterp/store/db/sqlite"
)

func TestBuildingCode(t *testing.T) {
	assert.Equal(t, "IRB", BuildingCode("IRB 0324"))
	assert.Equal(t, "CSIC", BuildingCode("  CSIC 2117"))
	assert.Equal(t, "ONLINE", BuildingCode("ONLINE"))
	assert.Equal(t, "", BuildingCode(""))
}

func TestTravelTimeOracle_CachesWithinWindow(t *testing.T) {
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	source := &fakeSource{minutes: map[string]int{"IRB|CSIC": 12}}
	metrics := observability.NewMetrics(10)
	oracle := NewTravelTimeOracle(source, 100, 12*time.Hour, WithMetrics(metrics), WithOracleClock(clock))
	ctx := context.Background()

	m1, ok1 := oracle.TravelMinutes(ctx, "IRB 0324", "CSIC 2117")
	m2, ok2 := oracle.TravelMinutes(ctx, "IRB 1116", "CSIC 3117")
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, 12, m1)
	assert.Equal(t, m1, m2)
	assert.Equal(t, int32(1), source.calls.Load(), "second call within the window must not refetch")

	snap := metrics.Snapshot()
	assert.Equal(t, int64(1), snap.OracleHits)
	assert.Equal(t, int64(1), snap.OracleMisses)

	now = now.Add(12 * time.Hour)
	_, ok := oracle.TravelMinutes(ctx, "IRB 0324", "CSIC 2117")
	assert.True(t, ok)
	assert.Equal(t, int32(2), source.calls.Load(), "expired entry is refetched")
}

func TestTravelTimeOracle_ConcurrentMissesShareFetch(t *testing.T) {
	source := &fakeSource{minutes: map[string]int{"IRB|CSIC": 12}}
	oracle := NewTravelTimeOracle(source, 100, time.Hour, WithMetrics(observability.NewMetrics(10)))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m, ok := oracle.TravelMinutes(context.Background(), "IRB 0324", "CSIC 2117")
			assert.True(t, ok)
			assert.Equal(t, 12, m)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, source.calls.Load(), int32(16))
	assert.GreaterOrEqual(t, source.calls.Load(), int32(1))
}

func TestTravelTimeOracle_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	source := &fakeSource{minutes: map[string]int{"IRB|ESJ": 12}, release: make(chan struct{})}
	metrics := observability.NewMetrics(10)
	oracle := NewTravelTimeOracle(source, 100, time.Hour, WithMetrics(metrics))

	type result struct {
		minutes int
		ok      bool
	}

	var logs bytes.Buffer
	reqCtx := observability.NewRequestContextWithID(slog.New(slog.NewJSONHandler(&logs, nil)), "req-a", "classify")
	ctxA, cancelA := context.WithCancel(observability.WithRequestContext(t.Context(), reqCtx))
	first := make(chan result, 1)
	go func() {
		m, ok := oracle.TravelMinutes(ctxA, "IRB 0324", "ESJ 0202")
		first <- result{m, ok}
	}()
	require.Eventually(t, func() bool { return source.calls.Load() == 1 }, time.Second, time.Millisecond)

	cancelA()
	select {
	case r := <-first:
		assert.Equal(t, result{0, false}, r)
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting on the shared fetch")
	}
	assert.Contains(t, logs.String(), `"error_code":"CONTEXT_CANCELED"`)

	second := make(chan result, 1)
	go func() {
		m, ok := oracle.TravelMinutes(t.Context(), "IRB 1116", "ESJ 2204")
		second <- result{m, ok}
	}()
	require.Eventually(t, func() bool { return metrics.Snapshot().OracleMisses == 2 }, time.Second, time.Millisecond)

	close(source.release)
	select {
	case r := <-second:
		assert.Equal(t, result{12, true}, r)
	case <-time.After(time.Second):
		t.Fatal("live caller never got the shared answer")
	}
	assert.Zero(t, metrics.Snapshot().OracleFailures)

	m, ok := oracle.TravelMinutes(context.Background(), "IRB 0324", "ESJ 0202")
	assert.True(t, ok)
	assert.Equal(t, 12, m)
}

func TestTravelTimeOracle_UnknownPairIsCached(t *testing.T) {
	source := &fakeSource{minutes: map[string]int{}}
	metrics := observability.NewMetrics(10)
	oracle := NewTravelTimeOracle(source, 100, time.Hour, WithMetrics(metrics))

	_, ok := oracle.TravelMinutes(context.Background(), "ABC 1", "XYZ 2")
	assert.False(t, ok)
	_, ok = oracle.TravelMinutes(context.Background(), "ABC 1", "XYZ 2")
	assert.False(t, ok)
	assert.Equal(t, int32(1), source.calls.Load())
	assert.Equal(t, int64(1), metrics.Snapshot().OracleFailures)
}

func TestTravelTimeOracle_TransportErrorNotCached(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	oracle := NewTravelTimeOracle(source, 100, time.Hour, WithMetrics(observability.NewMetrics(10)))

	_, ok := oracle.TravelMinutes(context.Background(), "IRB 0324", "CSIC 2117")
	assert.False(t, ok)

	source.err = nil
	source.minutes = map[string]int{"IRB|CSIC": 12}
	m, ok := oracle.TravelMinutes(context.Background(), "IRB 0324", "CSIC 2117")
	assert.True(t, ok)
	assert.Equal(t, 12, m)
	assert.Equal(t, int32(2), source.calls.Load())
}

func TestTravelTimeOracle_EmptyLocation(t *testing.T) {
	source := &fakeSource{}
	oracle := NewTravelTimeOracle(source, 100, time.Hour)

	_, ok := oracle.TravelMinutes(context.Background(), "", "CSIC 2117")
	assert.False(t, ok)
	assert.Zero(t, source.calls.Load())
}

func TestTravelTimeOracle_PersistentStore(t *testing.T) {
	ctx := context.Background()
	p := &profile.Profile{Mode: "dev", Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "oracle.db")}
	driver, err := sqlite.NewDB(p)
	require.NoError(t, err)
	s := store.New(driver, p)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(ctx))

	source := &fakeSource{minutes: map[string]int{"IRB|CSIC": 12}}
	first := NewTravelTimeOracle(source, 100, time.Hour, WithStore(s), WithMetrics(observability.NewMetrics(10)))
	m, ok := first.TravelMinutes(ctx, "IRB 0324", "CSIC 2117")
	require.True(t, ok)
	assert.Equal(t, 12, m)

	// A fresh oracle, as after a restart, is served from the store.
	second := NewTravelTimeOracle(source, 100, time.Hour, WithStore(s), WithMetrics(observability.NewMetrics(10)))
	m, ok = second.TravelMinutes(ctx, "IRB 0324", "CSIC 2117")
	require.True(t, ok)
	assert.Equal(t, 12, m)
	assert.Equal(t, int32(1), source.calls.Load())

	later := NewTravelTimeOracle(source, 100, time.Hour, WithStore(s),
		WithOracleClock(func() time.Time { return time.Now().Add(2 * time.Hour) }))
	removed, err := later.PurgeStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
}
