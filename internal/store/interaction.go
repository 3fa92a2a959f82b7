package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

type InteractionStore struct {
	db *pgxpool.Pool
}

func NewInteractionStore(db *pgxpool.Pool) *InteractionStore {
	return &InteractionStore{db: db}
}

func (s *InteractionStore) Create(ctx context.Context, i *domain.Interaction) error {
	claims := i.ExtractedClaims
	if claims == nil {
		claims = []domain.Evidence{}
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return fmt.Errorf("marshal extracted claims: %w", err)
	}

	return s.db.QueryRow(ctx,
		`INSERT INTO interactions (session_id, user_message, assistant_response, extracted_claims, dissatisfaction_at_time)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		i.SessionID, i.UserMessage, i.AssistantResponse, claimsJSON, i.DissatisfactionThen,
	).Scan(&i.ID, &i.CreatedAt)
}

func (s *InteractionStore) MarkRevisionTriggered(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE interactions SET revision_triggered = true WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
