package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	pgvector "github.com/pgvector/pgvector-go"
)

const beliefColumns = `id, content, domain, confidence, tension, importance,
	reinforcement_count, is_active, superseded_by, created_at,
	last_reinforced, last_challenged, revised_at`

type BeliefStore struct {
	db *pgxpool.Pool
}

func NewBeliefStore(db *pgxpool.Pool) *BeliefStore {
	return &BeliefStore{db: db}
}

func scanBelief(row pgx.Row, b *domain.Belief) error {
	return row.Scan(&b.ID, &b.Content, &b.Domain, &b.Confidence, &b.Tension,
		&b.Importance, &b.ReinforcementCount, &b.IsActive, &b.SupersededBy,
		&b.CreatedAt, &b.LastReinforced, &b.LastChallenged, &b.RevisedAt)
}

func collectBeliefs(rows pgx.Rows) ([]domain.Belief, error) {
	defer rows.Close()

	var beliefs []domain.Belief
	for rows.Next() {
		var b domain.Belief
		if err := scanBelief(rows, &b); err != nil {
			return nil, err
		}
		beliefs = append(beliefs, b)
	}
	return beliefs, rows.Err()
}

func (s *BeliefStore) Create(ctx context.Context, b *domain.Belief) error {
	if b.Domain == "" {
		b.Domain = "self"
	}
	b.Confidence = domain.Clamp01(b.Confidence)
	b.Importance = domain.Clamp01(b.Importance)

	// Tension starts at zero; a new belief carries no contradiction pressure.
	return s.db.QueryRow(ctx,
		`INSERT INTO beliefs (content, domain, confidence, importance)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+beliefColumns,
		b.Content, b.Domain, b.Confidence, b.Importance,
	).Scan(&b.ID, &b.Content, &b.Domain, &b.Confidence, &b.Tension,
		&b.Importance, &b.ReinforcementCount, &b.IsActive, &b.SupersededBy,
		&b.CreatedAt, &b.LastReinforced, &b.LastChallenged, &b.RevisedAt)
}

func (s *BeliefStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Belief, error) {
	b := &domain.Belief{}
	err := scanBelief(s.db.QueryRow(ctx,
		`SELECT `+beliefColumns+` FROM beliefs WHERE id = $1`, id), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BeliefStore) ListActive(ctx context.Context, beliefDomain string) ([]domain.Belief, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if beliefDomain != "" {
		rows, err = s.db.Query(ctx,
			`SELECT `+beliefColumns+` FROM beliefs
			 WHERE is_active = true AND domain = $1
			 ORDER BY importance DESC`,
			beliefDomain,
		)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT `+beliefColumns+` FROM beliefs
			 WHERE is_active = true
			 ORDER BY importance DESC`,
		)
	}
	if err != nil {
		return nil, err
	}
	return collectBeliefs(rows)
}

func (s *BeliefStore) ListAboveTension(ctx context.Context, threshold float64) ([]domain.Belief, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+beliefColumns+` FROM beliefs
		 WHERE is_active = true AND tension >= $1
		 ORDER BY tension DESC`,
		threshold,
	)
	if err != nil {
		return nil, err
	}
	return collectBeliefs(rows)
}

// Reinforce increases confidence with diminishing returns:
// confidence += (1 - confidence) * increment.
func (s *BeliefStore) Reinforce(ctx context.Context, id uuid.UUID, increment float64) (*domain.Belief, error) {
	b := &domain.Belief{}
	err := scanBelief(s.db.QueryRow(ctx,
		`UPDATE beliefs SET
		     confidence = LEAST(1.0, confidence + (1.0 - confidence) * $2),
		     reinforcement_count = reinforcement_count + 1,
		     last_reinforced = NOW()
		 WHERE id = $1 AND is_active = true
		 RETURNING `+beliefColumns,
		id, increment), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// AddTension increases tension linearly, with no diminishing returns. The single
// UPDATE ... RETURNING makes add-then-threshold-check atomic: the returned
// tension is exactly what this delta produced, regardless of concurrent
// writers.
func (s *BeliefStore) AddTension(ctx context.Context, id uuid.UUID, delta float64) (*domain.Belief, error) {
	b := &domain.Belief{}
	err := scanBelief(s.db.QueryRow(ctx,
		`UPDATE beliefs SET
		     tension = LEAST(1.0, tension + $2),
		     last_challenged = NOW()
		 WHERE id = $1 AND is_active = true
		 RETURNING `+beliefColumns,
		id, delta), b)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

// Supersede deactivates old and records its successor. The is_active guard
// rejects double supersession.
func (s *BeliefStore) Supersede(ctx context.Context, oldID, newID uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET
		     is_active = false,
		     superseded_by = $2,
		     revised_at = NOW()
		 WHERE id = $1 AND is_active = true`,
		oldID, newID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TensionProfile returns every active belief with the count of edges touching
// it in either direction.
func (s *BeliefStore) TensionProfile(ctx context.Context) ([]domain.TensionWeight, error) {
	rows, err := s.db.Query(ctx,
		`SELECT b.id, b.content, b.domain, b.tension, b.confidence, b.importance,
		        COUNT(c.belief_a) AS connections
		 FROM beliefs b
		 LEFT JOIN belief_connections c ON (c.belief_a = b.id OR c.belief_b = b.id)
		 WHERE b.is_active = true
		 GROUP BY b.id
		 ORDER BY b.tension * b.importance * (COUNT(c.belief_a) + 1) DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profile []domain.TensionWeight
	for rows.Next() {
		var w domain.TensionWeight
		var connections int64
		if err := rows.Scan(&w.BeliefID, &w.Content, &w.Domain, &w.Tension,
			&w.Confidence, &w.Importance, &connections); err != nil {
			return nil, err
		}
		w.Connections = int(connections)
		profile = append(profile, w)
	}
	return profile, rows.Err()
}

func (s *BeliefStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM beliefs WHERE is_active = true`).Scan(&count)
	return count, err
}

func (s *BeliefStore) UpdateEmbedding(ctx context.Context, id uuid.UUID, embedding []float32) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE beliefs SET embedding = $2 WHERE id = $1`,
		id, pgvector.NewVector(embedding),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BeliefStore) FindSimilar(ctx context.Context, embedding []float32, threshold float64, limit int) ([]domain.Belief, error) {
	if limit <= 0 {
		limit = 10
	}
	vec := pgvector.NewVector(embedding)

	rows, err := s.db.Query(ctx,
		`SELECT `+beliefColumns+` FROM beliefs
		 WHERE is_active = true AND embedding IS NOT NULL
		   AND 1 - (embedding <=> $1) >= $2
		 ORDER BY embedding <=> $1
		 LIMIT $3`,
		vec, threshold, limit,
	)
	if err != nil {
		return nil, err
	}
	return collectBeliefs(rows)
}
