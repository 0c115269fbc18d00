package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// TravelTime model related methods.
	GetTravelTime(ctx context.Context, find *FindTravelTime) (*TravelTime, error)
	UpsertTravelTime(ctx context.Context, upsert *UpsertTravelTime) (*TravelTime, error)
	DeleteTravelTimes(ctx context.Context, delete *DeleteTravelTime) (int64, error)
}
