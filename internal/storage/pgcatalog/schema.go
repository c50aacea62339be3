package pgcatalog

import (
	"context"

	"github.com/pkg/errors"
)

func (s *Storage) initSchema(ctx context.Context) error {
	stmts := []string{
		`
CREATE TABLE IF NOT EXISTS vehicles (
  id BIGINT PRIMARY KEY,
  position INT NOT NULL DEFAULT 0,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INT NOT NULL,
  price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
  mileage INT NOT NULL CHECK (mileage >= 0),
  body_type TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  engine TEXT NULL,
  drivetrain TEXT NULL,
  transmission TEXT NULL,
  horsepower INT NULL,
  torque INT NULL,
  listed BOOLEAN NOT NULL DEFAULT TRUE,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_listed_position ON vehicles(listed, position, id)`,
	}

	for _, q := range stmts {
		if _, err := s.db.Exec(ctx, q); err != nil {
			return errors.Wrap(err, "init schema")
		}
	}
	return nil
}
