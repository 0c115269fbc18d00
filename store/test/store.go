// Package test runs the travel-time store against every supported driver.
package test

import (
	"context"
	"testing"

	"github.com/hrygo/scheduleterp/internal/profile"
	"github.com/hrygo/scheduleterp/store"
	"github.com/hrygo/scheduleterp/store/db"
)

// NewTestingStore opens and migrates a store for driver ("sqlite" or "postgres").
func NewTestingStore(ctx context.Context, t *testing.T, driver string) *store.Store {
	t.Helper()
	p := &profile.Profile{Mode: "dev", Driver: driver}
	switch driver {
	case "sqlite":
		p.Data = t.TempDir()
	case "postgres":
		p.DSN = GetPostgresDSN(t)
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		t.Fatalf("failed to validate profile: %v", err)
	}

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	s := store.New(dbDriver, p)
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}
