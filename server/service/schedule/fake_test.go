package schedule

import (
	"context"
	"sync"
	"sync/atomic"
)

// fakeSource is a TravelTimeSource backed by a map of "FROM|TO" pairs.
// When release is set, lookups block until it is closed or ctx ends.
type fakeSource struct {
	mu      sync.Mutex
	minutes map[string]int
	err     error
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeSource) TravelTime(ctx context.Context, from, to string) (int, bool, error) {
	f.calls.Add(1)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return 0, false, ctx.Err()
		}
	}
	if f.err != nil {
		return 0, false, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.minutes[from+"|"+to]
	return m, ok, nil
}

// fakeOracle is a TravelOracle keyed by building pair that records queries.
type fakeOracle struct {
	mu      sync.Mutex
	minutes map[string]int
	queries []string
}

func (f *fakeOracle) TravelMinutes(_ context.Context, from, to string) (int, bool) {
	key := BuildingCode(from) + "|" + BuildingCode(to)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, key)
	m, ok := f.minutes[key]
	return m, ok
}

func (f *fakeOracle) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}
