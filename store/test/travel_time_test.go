package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/scheduleterp/store"
)

var drivers = []string{"sqlite", "postgres"}

func TestTravelTimeStore(t *testing.T) {
	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			ctx := context.Background()
			ts := NewTestingStore(ctx, t, driver)

			got, err := ts.GetTravelTime(ctx, &store.FindTravelTime{FromBuilding: "ESJ", ToBuilding: "IRB"})
			require.NoError(t, err)
			assert.Nil(t, got)

			upserted, err := ts.UpsertTravelTime(ctx, &store.UpsertTravelTime{FromBuilding: "ESJ", ToBuilding: "IRB", Minutes: 8, UpdatedTs: 1000})
			require.NoError(t, err)
			assert.Equal(t, int32(8), upserted.Minutes)

			upserted, err = ts.UpsertTravelTime(ctx, &store.UpsertTravelTime{FromBuilding: "ESJ", ToBuilding: "IRB", Minutes: 11, UpdatedTs: 2000})
			require.NoError(t, err)
			assert.Equal(t, int32(11), upserted.Minutes)
			assert.Equal(t, int64(2000), upserted.UpdatedTs)

			_, err = ts.UpsertTravelTime(ctx, &store.UpsertTravelTime{FromBuilding: "IRB", ToBuilding: "ESJ", Minutes: 9, UpdatedTs: 500})
			require.NoError(t, err)

			got, err = ts.GetTravelTime(ctx, &store.FindTravelTime{FromBuilding: "ESJ", ToBuilding: "IRB", MinUpdatedTs: 1500})
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, int32(11), got.Minutes)

			n, err := ts.DeleteTravelTimes(ctx, &store.DeleteTravelTime{OlderThanTs: 1000})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			got, err = ts.GetTravelTime(ctx, &store.FindTravelTime{FromBuilding: "IRB", ToBuilding: "ESJ"})
			require.NoError(t, err)
			assert.Nil(t, got)

			// Migrating twice leaves data intact.
			require.NoError(t, ts.Migrate(ctx))
			got, err = ts.GetTravelTime(ctx, &store.FindTravelTime{FromBuilding: "ESJ", ToBuilding: "IRB"})
			require.NoError(t, err)
			assert.NotNil(t, got)
		})
	}
}
