package care

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	// CreatePathways inserts the whole batch in one transaction: a partial
	// pathway set must never be presented to the user, so any failure
	// aborts all of them.
	CreatePathways(ctx context.Context, pathways []Pathway) error
	ListPathways(ctx context.Context, assessmentID, profileID uuid.UUID) ([]Pathway, error)
}

type postgresRepo struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) CreatePathways(ctx context.Context, pathways []Pathway) error {
	if len(pathways) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO care_pathways
			(id, assessment_id, profile_id, pathway_type, provider_type, priority_level,
			 notes, estimated_wait_time, cost_estimate, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for i := range pathways {
		p := &pathways[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		if p.Status == "" {
			p.Status = StatusRecommended
		}
		p.CreatedAt = now

		var providerType sql.NullString
		if p.ProviderType != "" {
			providerType = sql.NullString{String: p.ProviderType, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			p.ID, p.AssessmentID, p.ProfileID, p.PathwayType, providerType, p.PriorityLevel,
			p.Notes, p.EstimatedWaitTime, p.CostEstimate, p.Status, p.CreatedAt); err != nil {
			return fmt.Errorf("failed to insert care pathway: %w", err)
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) ListPathways(ctx context.Context, assessmentID, profileID uuid.UUID) ([]Pathway, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, assessment_id, profile_id, pathway_type, provider_type, priority_level,
		       notes, estimated_wait_time, cost_estimate, status, created_at
		FROM care_pathways
		WHERE assessment_id = $1 AND profile_id = $2
		ORDER BY created_at, id`, assessmentID, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pathways []Pathway
	for rows.Next() {
		var p Pathway
		var providerType sql.NullString
		if err := rows.Scan(&p.ID, &p.AssessmentID, &p.ProfileID, &p.PathwayType, &providerType,
			&p.PriorityLevel, &p.Notes, &p.EstimatedWaitTime, &p.CostEstimate, &p.Status,
			&p.CreatedAt); err != nil {
			return nil, err
		}
		p.ProviderType = providerType.String
		pathways = append(pathways, p)
	}
	return pathways, rows.Err()
}
