package store

import (
	"context"

	"github.com/hrygo/scheduleterp/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// GetTravelTime returns the stored estimate, or nil when none is stored.
func (s *Store) GetTravelTime(ctx context.Context, find *FindTravelTime) (*TravelTime, error) {
	return s.driver.GetTravelTime(ctx, find)
}

func (s *Store) UpsertTravelTime(ctx context.Context, upsert *UpsertTravelTime) (*TravelTime, error) {
	return s.driver.UpsertTravelTime(ctx, upsert)
}

func (s *Store) DeleteTravelTimes(ctx context.Context, delete *DeleteTravelTime) (int64, error) {
	return s.driver.DeleteTravelTimes(ctx, delete)
}
