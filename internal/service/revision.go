package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juan-cardona/anxious-intelligence/internal/domain"
	"github.com/juan-cardona/anxious-intelligence/internal/store"
	"go.uber.org/zap"
)

// RevisionStatus is the terminal state of one belief's revision attempt.
type RevisionStatus string

const (
	StatusRevised        RevisionStatus = "revised"
	StatusCascadeLimited RevisionStatus = "cascade_limited"
	StatusFailed         RevisionStatus = "failed"
)

const (
	// contradictionContextLimit bounds how many log entries feed the
	// reconstruction prompt.
	contradictionContextLimit = 50
	// evidenceSummaryLimit bounds the evidence summary stored on the audit
	// record, and reasoning stored on discovered connections.
	evidenceSummaryLimit = 500
	// sweepFraction of the threshold marks a neighbor as worth re-checking
	// even without an explicit cascade request against it.
	sweepFraction = 0.8
)

// RevisionResult reports one belief's journey through the revision state
// machine, including nested cascade outcomes.
type RevisionResult struct {
	Status      RevisionStatus `json:"status"`
	BeliefID    uuid.UUID      `json:"belief_id"`
	Depth       int            `json:"depth"`
	OldContent  string         `json:"old_content,omitempty"`
	NewContent  string         `json:"new_content,omitempty"`
	NewBeliefID uuid.UUID      `json:"new_belief_id,omitempty"`

	StoredConnections     int                           `json:"stored_connections"`
	DiscoveredConnections int                           `json:"discovered_connections"`
	Discovered            []domain.DiscoveredConnection `json:"discovered,omitempty"`
	Analysis              string                        `json:"analysis,omitempty"`
	Reasoning             string                        `json:"reasoning,omitempty"`
	BehavioralChanges     []string                      `json:"behavioral_changes,omitempty"`
	Cascades              []*RevisionResult             `json:"cascades,omitempty"`
	Error                 string                        `json:"error,omitempty"`
}

// RevisionEvent is emitted on the engine's channel once per completed
// revision attempt, for whatever presentation layer is listening.
type RevisionEvent struct {
	Result *RevisionResult
	At     time.Time
}

// RevisionEngine runs the cascading revision state machine. Cascades execute
// on an explicit depth-tagged worklist rather than call-stack recursion, so
// depth is bounded and a branch's steps stay strictly sequential.
type RevisionEngine struct {
	beliefs        domain.BeliefStore
	connections    domain.ConnectionStore
	contradictions domain.ContradictionStore
	revisions      domain.RevisionStore
	reasoner       domain.ReasonerClient
	logger         *zap.Logger

	revisionThreshold float64
	cascadeDepthLimit int
	reasonerTimeout   time.Duration

	events chan RevisionEvent
	locks  sync.Map // uuid.UUID -> *sync.Mutex
}

func NewRevisionEngine(
	bs domain.BeliefStore,
	cs domain.ConnectionStore,
	xs domain.ContradictionStore,
	rs domain.RevisionStore,
	rc domain.ReasonerClient,
	revisionThreshold float64,
	cascadeDepthLimit int,
	reasonerTimeout time.Duration,
	logger *zap.Logger,
) *RevisionEngine {
	return &RevisionEngine{
		beliefs:           bs,
		connections:       cs,
		contradictions:    xs,
		revisions:         rs,
		reasoner:          rc,
		logger:            logger,
		revisionThreshold: revisionThreshold,
		cascadeDepthLimit: cascadeDepthLimit,
		reasonerTimeout:   reasonerTimeout,
		events:            make(chan RevisionEvent, 64),
	}
}

// Events exposes the completed-revision event stream. The channel is
// buffered; events are dropped rather than blocking the engine when nobody
// is draining it.
func (e *RevisionEngine) Events() <-chan RevisionEvent {
	return e.events
}

func (e *RevisionEngine) emit(r *RevisionResult) {
	select {
	case e.events <- RevisionEvent{Result: r, At: time.Now()}:
	default:
		e.logger.Debug("revision event dropped, channel full")
	}
}

func (e *RevisionEngine) lockFor(id uuid.UUID) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// workItem is one pending revision on the cascade worklist.
type workItem struct {
	beliefID uuid.UUID
	depth    int
	parent   *RevisionResult
}

// Revise runs the full cascading revision for one triggered belief and
// returns the root result with nested cascade outcomes attached.
func (e *RevisionEngine) Revise(ctx context.Context, beliefID uuid.UUID) (*RevisionResult, error) {
	var root *RevisionResult

	// LIFO keeps cascade branches depth-first and strictly sequential.
	stack := []workItem{{beliefID: beliefID, depth: 0}}
	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		result, followups := e.reviseOne(ctx, item.beliefID, item.depth)
		if result == nil {
			// Belief was no longer eligible by the time its turn came.
			continue
		}

		if item.parent == nil {
			root = result
		} else {
			item.parent.Cascades = append(item.parent.Cascades, result)
		}
		e.emit(result)

		for i := len(followups) - 1; i >= 0; i-- {
			stack = append(stack, workItem{
				beliefID: followups[i],
				depth:    item.depth + 1,
				parent:   result,
			})
		}
	}

	if root == nil {
		return nil, fmt.Errorf("belief %s no longer eligible for revision", beliefID)
	}
	return root, nil
}

// ReviseAllTriggered sequentially revises each candidate, re-fetching its
// persisted state immediately before acting. A candidate already revised or
// deactivated by an earlier candidate's cascade is skipped.
func (e *RevisionEngine) ReviseAllTriggered(ctx context.Context, candidates []domain.Belief) []*RevisionResult {
	results := make([]*RevisionResult, 0, len(candidates))
	for _, c := range candidates {
		current, err := e.beliefs.GetByID(ctx, c.ID)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				e.logger.Warn("candidate re-fetch failed", zap.String("belief_id", c.ID.String()), zap.Error(err))
			}
			continue
		}
		if !current.IsActive || current.Tension < e.revisionThreshold {
			continue
		}

		result, err := e.Revise(ctx, current.ID)
		if err != nil {
			e.logger.Warn("revision aborted", zap.String("belief_id", c.ID.String()), zap.Error(err))
			continue
		}
		results = append(results, result)
	}
	return results
}

// reviseOne takes a single belief through steps of the state machine under
// its per-belief lock. It returns the terminal result plus the belief ids
// that must be revisited at depth+1, or (nil, nil) when the belief is no
// longer eligible.
func (e *RevisionEngine) reviseOne(ctx context.Context, beliefID uuid.UUID, depth int) (*RevisionResult, []uuid.UUID) {
	if depth >= e.cascadeDepthLimit {
		e.logger.Info("cascade depth limit reached", zap.String("belief_id", beliefID.String()), zap.Int("depth", depth))
		return &RevisionResult{
			Status:   StatusCascadeLimited,
			BeliefID: beliefID,
			Depth:    depth,
		}, nil
	}

	mu := e.lockFor(beliefID)
	mu.Lock()
	defer mu.Unlock()

	belief, err := e.beliefs.GetByID(ctx, beliefID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return e.failed(beliefID, depth, "", fmt.Errorf("fetch belief: %w", err)), nil
	}
	if !belief.IsActive || belief.Tension < e.revisionThreshold {
		return nil, nil
	}

	e.logger.Info("revision started",
		zap.String("belief_id", beliefID.String()),
		zap.Float64("tension", belief.Tension),
		zap.Int("depth", depth))

	// Contradiction context.
	entries, err := e.contradictions.Recent(ctx, beliefID, contradictionContextLimit)
	if err != nil {
		return e.failed(beliefID, depth, belief.Content, fmt.Errorf("fetch contradictions: %w", err)), nil
	}
	contradictionTexts := make([]string, 0, len(entries))
	for _, entry := range entries {
		contradictionTexts = append(contradictionTexts, entry.Evidence)
	}

	// Stored neighbors, fast path.
	stored, err := e.connections.Connected(ctx, beliefID, 1)
	if err != nil {
		return e.failed(beliefID, depth, belief.Content, fmt.Errorf("fetch neighbors: %w", err)), nil
	}

	// Discovery pass. Failure degrades to stored connections only.
	discovered := e.discover(ctx, *belief)

	// Union of stored and discovered neighbors, deduplicated by id. The
	// pressure sweep filters on persisted tension, so a discovered-only
	// neighbor needs its full row, not just the id and text the reasoner
	// echoed back.
	union := make(map[uuid.UUID]domain.Belief, len(stored)+len(discovered))
	for _, n := range stored {
		union[n.ID] = n
	}
	for _, d := range discovered {
		if _, ok := union[d.BeliefID]; ok {
			continue
		}
		if full, err := e.beliefs.GetByID(ctx, d.BeliefID); err == nil {
			union[d.BeliefID] = *full
		} else {
			union[d.BeliefID] = domain.Belief{ID: d.BeliefID, Content: d.Content}
		}
	}

	// Reconstruction call, typically the expensive model.
	reconstruction, err := e.reconstruct(ctx, *belief, contradictionTexts, stored, discovered)
	if err != nil {
		return e.failed(beliefID, depth, belief.Content, err), nil
	}

	// Atomic supersession: successor created, predecessor deactivated,
	// neighbors relinked, audit written, all in one transaction.
	neighborIDs := make([]uuid.UUID, 0, len(union))
	for id := range union {
		neighborIDs = append(neighborIDs, id)
	}
	sort.Slice(neighborIDs, func(i, j int) bool {
		return neighborIDs[i].String() < neighborIDs[j].String()
	})

	applied, err := e.revisions.Apply(ctx, domain.ApplyRevisionParams{
		Old:             *belief,
		NewContent:      reconstruction.RevisedBelief,
		NewConfidence:   reconstruction.Confidence,
		NeighborIDs:     neighborIDs,
		EvidenceSummary: truncate(strings.Join(contradictionTexts, "; "), evidenceSummaryLimit),
		Reasoning:       reconstruction.Reasoning,
	})
	if err != nil {
		return e.failed(beliefID, depth, belief.Content, fmt.Errorf("apply revision: %w", err)), nil
	}

	e.logger.Info("belief revised",
		zap.String("old_belief_id", beliefID.String()),
		zap.String("new_belief_id", applied.NewBelief.ID.String()),
		zap.Int("stored_connections", len(stored)),
		zap.Int("discovered_connections", len(discovered)))

	// Edges the reconstruction surfaced between existing beliefs.
	e.applyProposedConnections(ctx, reconstruction.NewConnections, union, applied.NewBelief)

	// Cascade application plus pressure sweep over the union neighbors.
	cascaded, followups := e.cascade(ctx, reconstruction.CascadeUpdates, union)

	if len(cascaded) > 0 {
		if err := e.revisions.SetCascaded(ctx, applied.RevisionID, cascaded); err != nil {
			e.logger.Warn("cascaded belief ids not recorded", zap.Error(err))
		}
	}

	return &RevisionResult{
		Status:                StatusRevised,
		BeliefID:              beliefID,
		Depth:                 depth,
		OldContent:            belief.Content,
		NewContent:            applied.NewBelief.Content,
		NewBeliefID:           applied.NewBelief.ID,
		StoredConnections:     len(stored),
		DiscoveredConnections: len(discovered),
		Discovered:            discovered,
		Analysis:              reconstruction.Analysis,
		Reasoning:             reconstruction.Reasoning,
		BehavioralChanges:     reconstruction.BehavioralChanges,
	}, followups
}

func (e *RevisionEngine) failed(beliefID uuid.UUID, depth int, content string, err error) *RevisionResult {
	e.logger.Warn("revision failed",
		zap.String("belief_id", beliefID.String()),
		zap.Int("depth", depth),
		zap.Error(err))
	return &RevisionResult{
		Status:     StatusFailed,
		BeliefID:   beliefID,
		Depth:      depth,
		OldContent: content,
		Error:      err.Error(),
	}
}

// discover asks the reasoner for newly-perceived relations between the
// triggered belief and the rest of the active graph, and persists each
// accepted one immediately. Failure degrades to an empty set.
func (e *RevisionEngine) discover(ctx context.Context, belief domain.Belief) []domain.DiscoveredConnection {
	active, err := e.beliefs.ListActive(ctx, "")
	if err != nil {
		e.logger.Warn("active belief listing failed, skipping discovery", zap.Error(err))
		return nil
	}

	others := make([]domain.Belief, 0, len(active))
	for _, b := range active {
		if b.ID != belief.ID {
			others = append(others, b)
		}
	}
	if len(others) == 0 {
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, e.reasonerTimeout)
	defer cancel()

	discovered, err := e.reasoner.DiscoverConnections(callCtx, belief, others)
	if err != nil {
		e.logger.Warn("connection discovery failed, continuing with stored connections", zap.Error(err))
		return nil
	}

	kept := make([]domain.DiscoveredConnection, 0, len(discovered))
	for _, d := range discovered {
		conn := &domain.Connection{
			BeliefA:   belief.ID,
			BeliefB:   d.BeliefID,
			Relation:  d.Relation,
			Strength:  d.Strength,
			Method:    domain.ConnectionMethodDiscovery,
			Reasoning: truncate(d.Reasoning, evidenceSummaryLimit),
		}
		if err := e.connections.Upsert(ctx, conn); err != nil {
			e.logger.Warn("discovered connection not persisted", zap.Error(err))
			continue
		}
		kept = append(kept, d)
	}

	if len(kept) > 0 {
		e.logger.Info("connections discovered under pressure",
			zap.String("belief_id", belief.ID.String()),
			zap.Int("count", len(kept)))
	}
	return kept
}

func (e *RevisionEngine) reconstruct(ctx context.Context, belief domain.Belief, contradictions []string, stored []domain.Belief, discovered []domain.DiscoveredConnection) (*domain.Reconstruction, error) {
	storedDescs := make([]string, 0, len(stored))
	for _, n := range stored {
		storedDescs = append(storedDescs, fmt.Sprintf("%q (tension=%.2f)", n.Content, n.Tension))
	}
	discoveredDescs := make([]string, 0, len(discovered))
	for _, d := range discovered {
		discoveredDescs = append(discoveredDescs, fmt.Sprintf("%q (%s, strength=%.2f): %s", d.Content, d.Relation, d.Strength, d.Reasoning))
	}

	callCtx, cancel := context.WithTimeout(ctx, e.reasonerTimeout)
	defer cancel()

	reconstruction, err := e.reasoner.Reconstruct(callCtx, domain.ReconstructionInput{
		Belief:                belief,
		Contradictions:        contradictions,
		StoredConnections:     storedDescs,
		DiscoveredConnections: discoveredDescs,
	})
	if err != nil {
		return nil, fmt.Errorf("reconstruction: %w", err)
	}
	return reconstruction, nil
}

// applyProposedConnections resolves reconstruction-surfaced edges by text
// against the union neighbors plus the successor belief, and upserts the
// ones whose endpoints both resolve. Unresolvable proposals are dropped.
func (e *RevisionEngine) applyProposedConnections(ctx context.Context, proposals []domain.ProposedConnection, union map[uuid.UUID]domain.Belief, successor domain.Belief) {
	if len(proposals) == 0 {
		return
	}

	pool := make(map[uuid.UUID]domain.Belief, len(union)+1)
	for id, n := range union {
		pool[id] = n
	}
	pool[successor.ID] = successor

	for _, p := range proposals {
		from, okFrom := matchCascadeTarget(p.FromBelief, pool)
		to, okTo := matchCascadeTarget(p.ToBelief, pool)
		if !okFrom || !okTo || from == to {
			continue
		}

		relation := p.Relation
		if !domain.ValidRelationType(relation) {
			relation = string(domain.RelationSupports)
		}

		conn := &domain.Connection{
			BeliefA:   from,
			BeliefB:   to,
			Relation:  domain.RelationType(relation),
			Strength:  0.5,
			Method:    domain.ConnectionMethodDiscovery,
			Reasoning: truncate(p.Reasoning, evidenceSummaryLimit),
		}
		if err := e.connections.Upsert(ctx, conn); err != nil {
			e.logger.Warn("proposed connection not persisted", zap.Error(err))
		}
	}
}

// cascade applies requested tension deltas to matched neighbors and sweeps
// the rest for pressure accumulated outside this revision. It returns the
// neighbor ids touched and the ids that now need their own revision pass.
func (e *RevisionEngine) cascade(ctx context.Context, updates []domain.CascadeUpdate, union map[uuid.UUID]domain.Belief) (cascaded, followups []uuid.UUID) {
	queued := make(map[uuid.UUID]bool)

	for _, cu := range updates {
		target, ok := matchCascadeTarget(cu.Belief, union)
		if !ok {
			e.logger.Debug("cascade update matched no neighbor", zap.String("text", truncate(cu.Belief, 80)))
			continue
		}

		delta := cu.TensionDelta
		if delta < 0 {
			delta = 0
		}

		updated, err := e.beliefs.AddTension(ctx, target, delta)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				e.logger.Warn("cascade tension add failed", zap.String("belief_id", target.String()), zap.Error(err))
			}
			continue
		}
		cascaded = append(cascaded, target)

		e.logger.Info("tension cascaded",
			zap.String("belief_id", target.String()),
			zap.Float64("delta", delta),
			zap.Float64("tension", updated.Tension))

		if updated.Tension >= e.revisionThreshold && !queued[target] {
			queued[target] = true
			followups = append(followups, target)
		}
	}

	// Pressure sweep: neighbors already near the threshold may have crossed
	// it through deltas applied outside this revision.
	sweep := make([]domain.Belief, 0, len(union))
	for _, n := range union {
		sweep = append(sweep, n)
	}
	sort.Slice(sweep, func(i, j int) bool { return sweep[i].ID.String() < sweep[j].ID.String() })

	for _, n := range sweep {
		if queued[n.ID] || n.Tension < sweepFraction*e.revisionThreshold {
			continue
		}
		current, err := e.beliefs.GetByID(ctx, n.ID)
		if err != nil {
			continue
		}
		if current.IsActive && current.Tension >= e.revisionThreshold {
			queued[n.ID] = true
			followups = append(followups, n.ID)
		}
	}

	return cascaded, followups
}

// matchCascadeTarget resolves a cascade update's free-text belief reference
// to a union neighbor by mutual substring containment. Ambiguous matches
// resolve deterministically to the lowest id.
func matchCascadeTarget(text string, union map[uuid.UUID]domain.Belief) (uuid.UUID, bool) {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return uuid.Nil, false
	}

	matches := make([]uuid.UUID, 0, 1)
	for id, n := range union {
		content := strings.ToLower(n.Content)
		if content == "" {
			continue
		}
		if strings.Contains(content, needle) || strings.Contains(needle, content) {
			matches = append(matches, id)
		}
	}
	if len(matches) == 0 {
		return uuid.Nil, false
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].String() < matches[j].String() })
	return matches[0], true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
