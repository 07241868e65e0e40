package care

import (
	"context"
	"database/sql"
)

// PostgresDirectory serves caregiver availability from the caregivers
// table, exposing only scheduling-safe columns.
type PostgresDirectory struct {
	db *sql.DB
}

func NewPostgresDirectory(db *sql.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) AvailableCaregivers(ctx context.Context, location string, limit int) ([]Caregiver, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, name, specialty, location
		FROM caregivers
		WHERE is_available
		  AND ($1 = '' OR location = $1)
		ORDER BY name
		LIMIT $2`, location, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var caregivers []Caregiver
	for rows.Next() {
		var c Caregiver
		if err := rows.Scan(&c.ID, &c.Name, &c.Specialty, &c.Location); err != nil {
			return nil, err
		}
		caregivers = append(caregivers, c)
	}
	return caregivers, rows.Err()
}
