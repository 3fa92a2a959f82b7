package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

type ContradictionStore struct {
	db *pgxpool.Pool
}

func NewContradictionStore(db *pgxpool.Pool) *ContradictionStore {
	return &ContradictionStore{db: db}
}

// Log appends one contradiction record. The log is write-once: entries are
// read back to build revision context and never mutated.
func (s *ContradictionStore) Log(ctx context.Context, beliefID uuid.UUID, interactionID *uuid.UUID, evidence string, tensionDelta float64) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO contradiction_log (belief_id, interaction_id, evidence, tension_delta)
		 VALUES ($1, $2, $3, $4)`,
		beliefID, interactionID, evidence, tensionDelta,
	)
	return err
}

func (s *ContradictionStore) Recent(ctx context.Context, beliefID uuid.UUID, limit int) ([]domain.ContradictionEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, belief_id, interaction_id, evidence, tension_delta, created_at
		 FROM contradiction_log
		 WHERE belief_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		beliefID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ContradictionEntry
	for rows.Next() {
		var e domain.ContradictionEntry
		if err := rows.Scan(&e.ID, &e.BeliefID, &e.InteractionID, &e.Evidence,
			&e.TensionDelta, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
