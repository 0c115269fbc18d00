package schedule

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/hrygo/scheduleterp/server/internal/errors"
	"github.com/hrygo/scheduleterp/server/internal/observability"
	"github.com/hrygo/scheduleterp/store"
	"github.com/hrygo/scheduleterp/store/cache"
)

// TravelTimeSource answers walking-time questions between two building codes.
// ok is false when the source has no estimate for the pair; err is set when
// the source could not be reached at all.
type TravelTimeSource interface {
	TravelTime(ctx context.Context, fromBuilding, toBuilding string) (minutes int, ok bool, err error)
}

// TravelOracle estimates travel minutes between two meeting locations.
// A false result means there is no evidence either way.
type TravelOracle interface {
	TravelMinutes(ctx context.Context, fromLocation, toLocation string) (int, bool)
}

// BuildingCode returns the building part of a location such as "IRB 0324".
func BuildingCode(location string) string {
	location = strings.TrimSpace(location)
	code, _, _ := strings.Cut(location, " ")
	return code
}

type travelKey struct {
	from, to string
}

// travelAnswer is a cached source answer. Definitive "no estimate" answers
// are cached too so unknown pairs are not re-fetched.
type travelAnswer struct {
	minutes int
	ok      bool
}

// TravelTimeOracle caches a TravelTimeSource by building pair. An optional
// persistent store sits between the in-memory cache and the source.
type TravelTimeOracle struct {
	source  TravelTimeSource
	cache   *cache.LRU[travelKey, travelAnswer]
	ttl     time.Duration
	store   *store.Store
	metrics *observability.Metrics
	now     func() time.Time

	inflight singleflight.Group
}

// OracleOption configures a TravelTimeOracle.
type OracleOption func(*TravelTimeOracle)

// WithStore enables the persistent travel-time store.
func WithStore(s *store.Store) OracleOption {
	return func(o *TravelTimeOracle) {
		o.store = s
	}
}

// WithMetrics records cache and failure counters into m.
func WithMetrics(m *observability.Metrics) OracleOption {
	return func(o *TravelTimeOracle) {
		o.metrics = m
	}
}

// WithOracleClock replaces time.Now for cache freshness decisions.
func WithOracleClock(now func() time.Time) OracleOption {
	return func(o *TravelTimeOracle) {
		o.now = now
	}
}

// NewTravelTimeOracle creates an oracle whose cache holds at most capacity
// building pairs, each fresh for ttl.
func NewTravelTimeOracle(source TravelTimeSource, capacity int, ttl time.Duration, opts ...OracleOption) *TravelTimeOracle {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	o := &TravelTimeOracle{
		source:  source,
		ttl:     ttl,
		metrics: observability.GlobalMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.cache = cache.NewLRU[travelKey, travelAnswer](capacity, ttl, cache.WithClock(o.now))
	return o
}

// TravelMinutes returns the estimated walking minutes from one location's
// building to the other's.
func (o *TravelTimeOracle) TravelMinutes(ctx context.Context, fromLocation, toLocation string) (int, bool) {
	key := travelKey{from: BuildingCode(fromLocation), to: BuildingCode(toLocation)}
	if key.from == "" || key.to == "" {
		return 0, false
	}

	if answer, ok := o.cache.Get(key); ok {
		o.metrics.RecordOracleHit()
		return answer.minutes, answer.ok
	}
	o.metrics.RecordOracleMiss()

	// The shared fetch is detached from the caller that started it; each
	// caller only stops waiting when its own context ends.
	ch := o.inflight.DoChan(key.from+"|"+key.to, func() (any, error) {
		return o.lookup(context.WithoutCancel(ctx), key)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		res.Err = errors.ContextCanceled(ctx.Err())
	}
	if res.Err != nil {
		code := errors.GetCodeFromError(res.Err, errors.ErrCodeOracleUnavailable)
		if code != errors.ErrCodeContextCanceled {
			o.metrics.RecordOracleFailure()
		}
		observability.LoggerFromContext(ctx).Warn("travel time unavailable",
			slog.String("from", key.from),
			slog.String("to", key.to),
			slog.String(observability.LogFieldErrorCode, string(code)),
			slog.String("error", res.Err.Error()),
		)
		return 0, false
	}

	answer := res.Val.(travelAnswer)
	if !answer.ok {
		o.metrics.RecordOracleFailure()
	}
	return answer.minutes, answer.ok
}

// lookup consults the persistent store, then the source, and fills the caches.
func (o *TravelTimeOracle) lookup(ctx context.Context, key travelKey) (travelAnswer, error) {
	if answer, ok := o.lookupStore(ctx, key); ok {
		o.cache.Set(key, answer)
		return answer, nil
	}

	minutes, ok, err := o.source.TravelTime(ctx, key.from, key.to)
	if err != nil {
		return travelAnswer{}, errors.OracleUnavailable("travel-time lookup failed", err).
			WithContext("from", key.from).
			WithContext("to", key.to)
	}

	answer := travelAnswer{minutes: minutes, ok: ok}
	o.cache.Set(key, answer)
	if ok {
		o.saveStore(ctx, key, minutes)
	}
	return answer, nil
}

func (o *TravelTimeOracle) lookupStore(ctx context.Context, key travelKey) (travelAnswer, bool) {
	if o.store == nil {
		return travelAnswer{}, false
	}
	tt, err := o.store.GetTravelTime(ctx, &store.FindTravelTime{
		FromBuilding: key.from,
		ToBuilding:   key.to,
		MinUpdatedTs: o.now().Add(-o.ttl).Unix(),
	})
	if err != nil {
		slog.Warn("failed to read stored travel time",
			slog.String(observability.LogFieldErrorCode, string(errors.ErrCodeStoreUnavailable)),
			slog.String("error", err.Error()),
		)
		return travelAnswer{}, false
	}
	if tt == nil {
		return travelAnswer{}, false
	}
	return travelAnswer{minutes: int(tt.Minutes), ok: true}, true
}

func (o *TravelTimeOracle) saveStore(ctx context.Context, key travelKey, minutes int) {
	if o.store == nil {
		return
	}
	if _, err := o.store.UpsertTravelTime(ctx, &store.UpsertTravelTime{
		FromBuilding: key.from,
		ToBuilding:   key.to,
		Minutes:      int32(minutes),
		UpdatedTs:    o.now().Unix(),
	}); err != nil {
		slog.Warn("failed to store travel time",
			slog.String(observability.LogFieldErrorCode, string(errors.ErrCodeStoreUnavailable)),
			slog.String("error", err.Error()),
		)
	}
}

// PurgeStale removes in-memory and stored estimates older than the freshness window.
func (o *TravelTimeOracle) PurgeStale(ctx context.Context) (int, error) {
	removed := o.cache.CleanupExpired()
	if o.store == nil {
		return removed, nil
	}
	n, err := o.store.DeleteTravelTimes(ctx, &store.DeleteTravelTime{OlderThanTs: o.now().Add(-o.ttl).Unix()})
	if err != nil {
		return removed, errors.StoreUnavailable("failed to purge stale travel times", err)
	}
	return removed + int(n), nil
}
