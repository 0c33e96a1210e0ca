package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/akureroute/internal/core/domain"
)

// PlaceRepo implements ports.PlaceRepository with pgx.
type PlaceRepo struct {
	db *DB
}

// NewPlaceRepo creates a new PlaceRepo.
func NewPlaceRepo(db *DB) *PlaceRepo {
	return &PlaceRepo{db: db}
}

// UpsertBatch writes places using pgx.Batch. Slice order becomes the
// gazetteer order.
func (r *PlaceRepo) UpsertBatch(ctx context.Context, places []domain.Place) error {
	batch := &pgx.Batch{}
	for i, p := range places {
		batch.Queue(`
			INSERT INTO places (position, name, region, country, location)
			VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography)
			ON CONFLICT (name) DO UPDATE
			SET position = EXCLUDED.position, region = EXCLUDED.region,
			    country = EXCLUDED.country, location = EXCLUDED.location
		`, i, p.Name, p.Region, p.Country, p.Coordinate.Lng, p.Coordinate.Lat)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range places {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// List returns every place in gazetteer order.
func (r *PlaceRepo) List(ctx context.Context) ([]domain.Place, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT name, COALESCE(region, ''), COALESCE(country, ''),
		       ST_Y(location::geometry) AS lat,
		       ST_X(location::geometry) AS lng
		FROM places
		ORDER BY position, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []domain.Place
	for rows.Next() {
		p := domain.Place{Source: domain.SourceLocal}
		if err := rows.Scan(&p.Name, &p.Region, &p.Country, &p.Coordinate.Lat, &p.Coordinate.Lng); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}
