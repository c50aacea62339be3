// Package pgcatalog is the Postgres catalog source: a vehicles table that the
// dealership back office writes and campus-api reads.
package pgcatalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

// Storage is a catalog.Source: the refresher calls Load on its schedule and
// campus-api swaps in the validated result. Writes come from the back office.
type Storage struct {
	db *pgxpool.Pool
}

// New opens the pool and creates the vehicles table and its index when they
// are missing. Seeding is left to the caller (see SeedIfEmpty).
func New(ctx context.Context, connString string) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, errors.Wrap(err, "parse pg config")
	}

	db, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "connect pg")
	}

	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Name shows up in refresher stats and the catalog snapshot source.
func (s *Storage) Name() string {
	return "postgres"
}

func (s *Storage) Close() {
	if s.db != nil {
		s.db.Close()
	}
}
