package pgcatalog

import (
	"context"

	"github.com/BearBump/CampusCars/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
)

// Load returns listed vehicles in catalog order (position, then id).
func (s *Storage) Load(ctx context.Context) ([]models.Vehicle, error) {
	rows, err := s.db.Query(ctx, `
SELECT
  id, make, model, year, price::float8, mileage, body_type, image,
  engine, drivetrain, transmission, horsepower, torque
FROM vehicles
WHERE listed
ORDER BY position, id
`)
	if err != nil {
		return nil, errors.Wrap(err, "select vehicles")
	}
	defer rows.Close()

	out := make([]models.Vehicle, 0, 32)
	for rows.Next() {
		var v models.Vehicle
		var bodyType string
		if err := rows.Scan(
			&v.ID, &v.Make, &v.Model, &v.Year, &v.Price, &v.Mileage, &bodyType, &v.Image,
			&v.Engine, &v.Drivetrain, &v.Transmission, &v.Horsepower, &v.Torque,
		); err != nil {
			return nil, errors.Wrap(err, "scan vehicle")
		}
		v.Type = models.BodyType(bodyType)
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows vehicles")
	}
	return out, nil
}

// UpsertVehicles writes vehicles in one transaction; slice order becomes
// catalog order.
func (s *Storage) UpsertVehicles(ctx context.Context, vs []models.Vehicle) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for i, v := range vs {
		batch.Queue(`
INSERT INTO vehicles (
  id, position, make, model, year, price, mileage, body_type, image,
  engine, drivetrain, transmission, horsepower, torque, listed, updated_at
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,TRUE,now())
ON CONFLICT (id) DO UPDATE SET
  position = EXCLUDED.position,
  make = EXCLUDED.make,
  model = EXCLUDED.model,
  year = EXCLUDED.year,
  price = EXCLUDED.price,
  mileage = EXCLUDED.mileage,
  body_type = EXCLUDED.body_type,
  image = EXCLUDED.image,
  engine = EXCLUDED.engine,
  drivetrain = EXCLUDED.drivetrain,
  transmission = EXCLUDED.transmission,
  horsepower = EXCLUDED.horsepower,
  torque = EXCLUDED.torque,
  listed = TRUE,
  updated_at = now()
`, v.ID, i, v.Make, v.Model, v.Year, v.Price, v.Mileage, string(v.Type), v.Image,
			v.Engine, v.Drivetrain, v.Transmission, v.Horsepower, v.Torque)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "upsert vehicles")
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrap(err, "commit tx")
	}
	return nil
}

// Unlist hides a sold vehicle without deleting its row.
func (s *Storage) Unlist(ctx context.Context, id int64) (bool, error) {
	tag, err := s.db.Exec(ctx, `UPDATE vehicles SET listed = FALSE, updated_at = now() WHERE id = $1 AND listed`, id)
	if err != nil {
		return false, errors.Wrap(err, "unlist vehicle")
	}
	return tag.RowsAffected() == 1, nil
}

// SeedIfEmpty writes vs only when the table has no rows at all.
func (s *Storage) SeedIfEmpty(ctx context.Context, vs []models.Vehicle) (bool, error) {
	var n int64
	if err := s.db.QueryRow(ctx, `SELECT count(*) FROM vehicles`).Scan(&n); err != nil {
		return false, errors.Wrap(err, "count vehicles")
	}
	if n > 0 {
		return false, nil
	}
	if err := s.UpsertVehicles(ctx, vs); err != nil {
		return false, err
	}
	return true, nil
}
