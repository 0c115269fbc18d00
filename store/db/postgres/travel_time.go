package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hrygo/scheduleterp/store"
)

func (d *DB) GetTravelTime(ctx context.Context, find *store.FindTravelTime) (*store.TravelTime, error) {
	query := `
		SELECT from_building, to_building, minutes, updated_ts
		FROM travel_time
		WHERE from_building = $1 AND to_building = $2 AND updated_ts >= $3`

	tt := &store.TravelTime{}
	if err := d.db.QueryRowContext(ctx, query, find.FromBuilding, find.ToBuilding, find.MinUpdatedTs).Scan(
		&tt.FromBuilding,
		&tt.ToBuilding,
		&tt.Minutes,
		&tt.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get travel time: %w", err)
	}
	return tt, nil
}

func (d *DB) UpsertTravelTime(ctx context.Context, upsert *store.UpsertTravelTime) (*store.TravelTime, error) {
	stmt := `
		INSERT INTO travel_time (from_building, to_building, minutes, updated_ts)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_building, to_building) DO UPDATE SET
			minutes = EXCLUDED.minutes,
			updated_ts = EXCLUDED.updated_ts
		RETURNING from_building, to_building, minutes, updated_ts`

	tt := &store.TravelTime{}
	if err := d.db.QueryRowContext(ctx, stmt, upsert.FromBuilding, upsert.ToBuilding, upsert.Minutes, upsert.UpdatedTs).Scan(
		&tt.FromBuilding,
		&tt.ToBuilding,
		&tt.Minutes,
		&tt.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert travel time: %w", err)
	}
	return tt, nil
}

func (d *DB) DeleteTravelTimes(ctx context.Context, delete *store.DeleteTravelTime) (int64, error) {
	result, err := d.db.ExecContext(ctx, `DELETE FROM travel_time WHERE updated_ts < $1`, delete.OlderThanTs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete travel times: %w", err)
	}
	return result.RowsAffected()
}
