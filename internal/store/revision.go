package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

type RevisionStore struct {
	db *pgxpool.Pool
}

func NewRevisionStore(db *pgxpool.Pool) *RevisionStore {
	return &RevisionStore{db: db}
}

// Apply runs the supersession sequence in a single transaction: insert the
// successor belief, deactivate the predecessor, relink every neighbor to the
// successor as a default supports edge, and write the audit record. A failure
// at any step rolls the whole batch back.
func (s *RevisionStore) Apply(ctx context.Context, p domain.ApplyRevisionParams) (*domain.ApplyRevisionResult, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin revision tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	result := &domain.ApplyRevisionResult{}
	nb := &result.NewBelief

	// Successor keeps domain and importance; tension resets to zero.
	err = tx.QueryRow(ctx,
		`INSERT INTO beliefs (content, domain, confidence, importance)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+beliefColumns,
		p.NewContent, p.Old.Domain, domain.Clamp01(p.NewConfidence), p.Old.Importance,
	).Scan(&nb.ID, &nb.Content, &nb.Domain, &nb.Confidence, &nb.Tension,
		&nb.Importance, &nb.ReinforcementCount, &nb.IsActive, &nb.SupersededBy,
		&nb.CreatedAt, &nb.LastReinforced, &nb.LastChallenged, &nb.RevisedAt)
	if err != nil {
		return nil, fmt.Errorf("insert successor belief: %w", err)
	}

	tag, err := tx.Exec(ctx,
		`UPDATE beliefs SET
		     is_active = false,
		     superseded_by = $2,
		     revised_at = NOW()
		 WHERE id = $1 AND is_active = true`,
		p.Old.ID, nb.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("supersede belief: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	// Preserve connectivity across the identity change.
	for _, neighborID := range p.NeighborIDs {
		_, err = tx.Exec(ctx,
			`INSERT INTO belief_connections (belief_a, belief_b, relation, strength, method)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (belief_a, belief_b) DO UPDATE
			 SET relation = EXCLUDED.relation, strength = EXCLUDED.strength, method = EXCLUDED.method`,
			nb.ID, neighborID, domain.RelationSupports, 0.5, domain.ConnectionMethodRelink,
		)
		if err != nil {
			return nil, fmt.Errorf("relink neighbor %s: %w", neighborID, err)
		}
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO revisions (old_belief_id, new_belief_id, trigger_tension, evidence_summary, cascaded_beliefs, reasoning)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		p.Old.ID, nb.ID, p.Old.Tension, p.EvidenceSummary, []uuid.UUID{}, p.Reasoning,
	).Scan(&result.RevisionID)
	if err != nil {
		return nil, fmt.Errorf("insert revision record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit revision tx: %w", err)
	}
	return result, nil
}

// SetCascaded records which connected beliefs this revision ended up
// cascading into. Written after the cascade completes, since the set is not
// known at supersession time.
func (s *RevisionStore) SetCascaded(ctx context.Context, revisionID uuid.UUID, beliefIDs []uuid.UUID) error {
	if beliefIDs == nil {
		beliefIDs = []uuid.UUID{}
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE revisions SET cascaded_beliefs = $2 WHERE id = $1`,
		revisionID, beliefIDs,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RevisionStore) Recent(ctx context.Context, limit int) ([]domain.Revision, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.Query(ctx,
		`SELECT r.id, r.old_belief_id, r.new_belief_id, r.trigger_tension,
		        r.evidence_summary, r.cascaded_beliefs, r.reasoning, r.created_at,
		        old.content, new.content
		 FROM revisions r
		 JOIN beliefs old ON r.old_belief_id = old.id
		 JOIN beliefs new ON r.new_belief_id = new.id
		 ORDER BY r.created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revisions []domain.Revision
	for rows.Next() {
		var r domain.Revision
		if err := rows.Scan(&r.ID, &r.OldBeliefID, &r.NewBeliefID, &r.TriggerTension,
			&r.EvidenceSummary, &r.CascadedBeliefs, &r.Reasoning, &r.CreatedAt,
			&r.OldContent, &r.NewContent); err != nil {
			return nil, err
		}
		revisions = append(revisions, r)
	}
	return revisions, rows.Err()
}
