package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"trip-tracker/internal/domain/geo"
	"trip-tracker/internal/ports"
)

// LocationHistoryRepo archives accepted fixes per trip.
type LocationHistoryRepo struct {
	pool *pgxpool.Pool
}

// NewLocationHistoryRepo constructs a new LocationHistoryRepo.
func NewLocationHistoryRepo(pool *pgxpool.Pool) ports.LocationHistoryRepository {
	return &LocationHistoryRepo{pool: pool}
}

// Archive inserts one trip_location_history row.
func (repo *LocationHistoryRepo) Archive(ctx context.Context, tripID string, fix geo.Fix) error {
	if err := fix.Validate(); err != nil {
		return err
	}

	_, err := querier(ctx, repo.pool).Exec(ctx, `
		INSERT INTO trip_location_history (
			trip_id, latitude, longitude,
			accuracy_meters, speed_kmh, heading_degrees, recorded_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		tripID,
		fix.Latitude,
		fix.Longitude,
		fix.AccuracyMeters,
		fix.SpeedKMH,
		fix.HeadingDegrees,
		fix.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("archive location: %w", err)
	}
	return nil
}

// Recent returns up to limit fixes of tripID, newest first.
func (repo *LocationHistoryRepo) Recent(ctx context.Context, tripID string, limit int) ([]geo.Fix, error) {
	rows, err := querier(ctx, repo.pool).Query(ctx, `
		SELECT latitude, longitude, accuracy_meters, speed_kmh, heading_degrees, recorded_at
		FROM trip_location_history
		WHERE trip_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, tripID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent locations: %w", err)
	}
	defer rows.Close()

	fixes := make([]geo.Fix, 0, limit)
	for rows.Next() {
		var fix geo.Fix
		if err := rows.Scan(
			&fix.Latitude,
			&fix.Longitude,
			&fix.AccuracyMeters,
			&fix.SpeedKMH,
			&fix.HeadingDegrees,
			&fix.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		fixes = append(fixes, fix)
	}
	return fixes, rows.Err()
}
