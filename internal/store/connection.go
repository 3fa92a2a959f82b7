package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

type ConnectionStore struct {
	db *pgxpool.Pool
}

func NewConnectionStore(db *pgxpool.Pool) *ConnectionStore {
	return &ConnectionStore{db: db}
}

// Upsert writes the edge for the ordered pair (belief_a, belief_b).
// Re-connecting the same pair overwrites relation and strength instead of
// duplicating the edge.
func (s *ConnectionStore) Upsert(ctx context.Context, c *domain.Connection) error {
	if !domain.ValidRelationType(string(c.Relation)) {
		c.Relation = domain.RelationSupports
	}
	c.Strength = domain.Clamp01(c.Strength)

	_, err := s.db.Exec(ctx,
		`INSERT INTO belief_connections (belief_a, belief_b, relation, strength, method, reasoning)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (belief_a, belief_b) DO UPDATE
		 SET relation = EXCLUDED.relation,
		     strength = EXCLUDED.strength,
		     method = EXCLUDED.method,
		     reasoning = EXCLUDED.reasoning`,
		c.BeliefA, c.BeliefB, c.Relation, c.Strength, c.Method, c.Reasoning,
	)
	return err
}

// Connected returns active beliefs within hops edges of id, either direction,
// excluding id itself. Bounded frontier expansion via recursive CTE, not full
// transitive closure.
func (s *ConnectionStore) Connected(ctx context.Context, id uuid.UUID, hops int) ([]domain.Belief, error) {
	if hops <= 0 {
		hops = 1
	}

	if hops == 1 {
		rows, err := s.db.Query(ctx,
			`SELECT DISTINCT b.id, b.content, b.domain, b.confidence, b.tension, b.importance,
			        b.reinforcement_count, b.is_active, b.superseded_by, b.created_at,
			        b.last_reinforced, b.last_challenged, b.revised_at
			 FROM beliefs b
			 JOIN belief_connections c ON (c.belief_b = b.id OR c.belief_a = b.id)
			 WHERE (c.belief_a = $1 OR c.belief_b = $1)
			   AND b.id != $1
			   AND b.is_active = true`,
			id,
		)
		if err != nil {
			return nil, err
		}
		return collectBeliefs(rows)
	}

	rows, err := s.db.Query(ctx,
		`WITH RECURSIVE connected AS (
		     SELECT CASE WHEN belief_a = $1 THEN belief_b ELSE belief_a END AS bid, 1 AS depth
		     FROM belief_connections
		     WHERE belief_a = $1 OR belief_b = $1
		     UNION
		     SELECT CASE WHEN bc.belief_a = c.bid THEN bc.belief_b ELSE bc.belief_a END, c.depth + 1
		     FROM belief_connections bc
		     JOIN connected c ON (bc.belief_a = c.bid OR bc.belief_b = c.bid)
		     WHERE c.depth < $2
		 )
		 SELECT DISTINCT b.id, b.content, b.domain, b.confidence, b.tension, b.importance,
		        b.reinforcement_count, b.is_active, b.superseded_by, b.created_at,
		        b.last_reinforced, b.last_challenged, b.revised_at
		 FROM beliefs b
		 JOIN connected c ON b.id = c.bid
		 WHERE b.id != $1 AND b.is_active = true`,
		id, hops,
	)
	if err != nil {
		return nil, err
	}
	return collectBeliefs(rows)
}
