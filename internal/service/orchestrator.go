package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/reasoner"
	"go.uber.org/zap"
)

// urgentDissatisfaction is the level above which already-triggered beliefs
// are revised before the response is generated, so the reply reflects the
// post-revision self-model.
const urgentDissatisfaction = 0.6

// recentRevisionContext is how many recent revisions feed the system prompt.
const recentRevisionContext = 3

// Orchestrator runs the full interaction pipeline: respond under the
// belief-aware system prompt, extract evidence, accumulate tension, revise
// whatever triggered. Revision is synchronous; the caller gets the final
// state of the graph, not a snapshot racing the cascades.
type Orchestrator struct {
	beliefs         domain.BeliefStore
	revisions       domain.RevisionStore
	interactions    domain.InteractionStore
	reasonerClient  domain.ReasonerClient
	tension         *TensionService
	engine          *RevisionEngine
	dissatisfaction *DissatisfactionService
	logger          *zap.Logger

	revisionThreshold float64
}

func NewOrchestrator(
	bs domain.BeliefStore,
	rs domain.RevisionStore,
	is domain.InteractionStore,
	rc domain.ReasonerClient,
	ts *TensionService,
	engine *RevisionEngine,
	ds *DissatisfactionService,
	revisionThreshold float64,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		beliefs:           bs,
		revisions:         rs,
		interactions:      is,
		reasonerClient:    rc,
		tension:           ts,
		engine:            engine,
		dissatisfaction:   ds,
		logger:            logger,
		revisionThreshold: revisionThreshold,
	}
}

// InteractionResult is the upstream pipeline contract: the reply plus the
// belief-state bookkeeping around it.
type InteractionResult struct {
	Response        string            `json:"response"`
	Dissatisfaction float64           `json:"dissatisfaction"`
	State           string            `json:"state"`
	EvidenceCount   int               `json:"evidence_count"`
	PreRevisions    []*RevisionResult `json:"pre_revisions,omitempty"`
	PostRevisions   []*RevisionResult `json:"post_revisions,omitempty"`
	ActiveBeliefs   int               `json:"active_beliefs"`
}

// ProcessInteraction handles one user message end to end.
func (o *Orchestrator) ProcessInteraction(ctx context.Context, sessionID, userMessage string) (*InteractionResult, error) {
	dissatisfaction, err := o.dissatisfaction.Global(ctx)
	if err != nil {
		return nil, fmt.Errorf("dissatisfaction snapshot: %w", err)
	}

	// Urgent pass: when the graph is already anxious and beliefs sit above
	// threshold, revise before answering so the reply reflects the revised
	// self-model rather than the one about to be replaced.
	var preRevisions []*RevisionResult
	if dissatisfaction > urgentDissatisfaction {
		urgent, err := o.beliefs.ListAboveTension(ctx, o.revisionThreshold)
		if err != nil {
			o.logger.Warn("urgent belief listing failed", zap.Error(err))
		} else if len(urgent) > 0 {
			o.logger.Info("urgent pre-response revision pass",
				zap.Int("candidates", len(urgent)),
				zap.Float64("dissatisfaction", dissatisfaction))
			preRevisions = o.engine.ReviseAllTriggered(ctx, urgent)
			if dissatisfaction, err = o.dissatisfaction.Global(ctx); err != nil {
				return nil, fmt.Errorf("dissatisfaction snapshot after urgent pass: %w", err)
			}
		}
	}

	active, err := o.beliefs.ListActive(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list active beliefs: %w", err)
	}

	system := reasoner.SystemPrompt(
		reasoner.FormatBeliefs(active),
		dissatisfaction,
		o.recentRevisionSummary(ctx),
	)

	response, err := o.reasonerClient.Respond(ctx, system, userMessage)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	// Extraction failure degrades to an evidence-free interaction.
	evidence, err := o.reasonerClient.ExtractEvidence(ctx, userMessage, response, active)
	if err != nil {
		o.logger.Warn("evidence extraction failed, proceeding without evidence", zap.Error(err))
		evidence = nil
	}

	interaction := &domain.Interaction{
		SessionID:           sessionID,
		UserMessage:         userMessage,
		AssistantResponse:   response,
		ExtractedClaims:     evidence,
		DissatisfactionThen: dissatisfaction,
	}
	var interactionID *uuid.UUID
	if err := o.interactions.Create(ctx, interaction); err != nil {
		o.logger.Warn("interaction not persisted", zap.Error(err))
	} else {
		interactionID = &interaction.ID
	}

	candidates, err := o.tension.Accumulate(ctx, evidence, interactionID)
	if err != nil {
		return nil, fmt.Errorf("accumulate evidence: %w", err)
	}

	postRevisions := o.engine.ReviseAllTriggered(ctx, candidates)

	if interactionID != nil && (len(preRevisions) > 0 || len(postRevisions) > 0) {
		if err := o.interactions.MarkRevisionTriggered(ctx, *interactionID); err != nil {
			o.logger.Warn("interaction revision flag not set", zap.Error(err))
		}
	}

	final, err := o.dissatisfaction.Global(ctx)
	if err != nil {
		return nil, fmt.Errorf("final dissatisfaction snapshot: %w", err)
	}
	count, err := o.beliefs.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count beliefs: %w", err)
	}

	return &InteractionResult{
		Response:        response,
		Dissatisfaction: final,
		State:           DescribeState(final),
		EvidenceCount:   len(evidence),
		PreRevisions:    preRevisions,
		PostRevisions:   postRevisions,
		ActiveBeliefs:   count,
	}, nil
}

// SubmitEvidence applies externally-supplied evidence directly, bypassing
// response generation. Returns the revision results the batch triggered.
func (o *Orchestrator) SubmitEvidence(ctx context.Context, evidence []domain.Evidence) ([]*RevisionResult, error) {
	candidates, err := o.tension.Accumulate(ctx, evidence, nil)
	if err != nil {
		return nil, fmt.Errorf("accumulate evidence: %w", err)
	}
	return o.engine.ReviseAllTriggered(ctx, candidates), nil
}

func (o *Orchestrator) recentRevisionSummary(ctx context.Context) string {
	recent, err := o.revisions.Recent(ctx, recentRevisionContext)
	if err != nil {
		o.logger.Warn("recent revision lookup failed", zap.Error(err))
		return ""
	}
	if len(recent) == 0 {
		return ""
	}

	lines := make([]string, 0, len(recent))
	for _, r := range recent {
		lines = append(lines, fmt.Sprintf("- %q became %q", r.OldContent, r.NewContent))
	}
	return strings.Join(lines, "\n")
}
