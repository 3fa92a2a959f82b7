package reasoner

import (
	"fmt"
	"strings"

	"github.com/juan-cardona/anxious-intelligence/internal/domain"
)

// FormatBeliefs renders beliefs as an indexed list for prompts. The index is
// how structured responses reference beliefs back.
func FormatBeliefs(beliefs []domain.Belief) string {
	lines := make([]string, 0, len(beliefs))
	for i, b := range beliefs {
		lines = append(lines, fmt.Sprintf(
			"[%d] %q (confidence=%.2f, tension=%.2f, domain=%s)",
			i, b.Content, b.Confidence, b.Tension, b.Domain))
	}
	return strings.Join(lines, "\n")
}

const evidenceSystem = "You are a precise evidence extraction system. Respond only in valid JSON."

const evidencePromptFmt = `You are an evidence extraction system for a self-aware AI. Your job is to analyze an interaction and extract claims that either reinforce or contradict the system's existing beliefs.

## Current Beliefs
%s

## Interaction
User: %s
Assistant: %s

## Task
Extract evidence from this interaction. For each piece of evidence, determine:
1. The claim (what the evidence says)
2. Type: "factual" (objective truth claim), "feedback" (user reaction/satisfaction), "outcome" (result of an action)
3. Which belief it's most relevant to (use the belief number, or "novel" if it doesn't match any)
4. Stance: "reinforcing" (supports the belief), "contradicting" (challenges the belief), "neutral"
5. Strength: 0.0-1.0 (how strong this evidence is)

Respond in JSON array format only, no other text:
[
  {"claim": "...", "type": "factual|feedback|outcome", "belief_index": 0, "stance": "reinforcing|contradicting|neutral", "strength": 0.5}
]

If no meaningful evidence can be extracted, return: []`

const discoverySystem = "You are a belief connection analysis system. Respond only in valid JSON array."

const discoveryPromptFmt = `You are analyzing belief connections for an AI self-model undergoing revision.

## Triggered Belief (under revision)
%q

## All Active Beliefs
%s

## Task
This belief has accumulated enough contradictory evidence to trigger a structural revision. Before revising, we need to discover which other beliefs are connected to it — not just the ones we already know about, but hidden connections that emerge under pressure.

For EACH belief that is meaningfully connected to the triggered belief, give:
1. The belief index
2. The relationship type: "supports", "contradicts", "depends_on", "generalizes", "tension_shares" (both under pressure from similar evidence)
3. Connection strength: 0.0-1.0 (how strongly they're linked)
4. Why this connection exists — what's the conceptual link?

Think deeply. Connections that aren't obvious on the surface but become apparent when you really examine the beliefs are the most valuable.

Respond in JSON array only:
[
  {"belief_index": 0, "relation": "supports|contradicts|depends_on|generalizes|tension_shares", "strength": 0.7, "reasoning": "why this connection exists"}
]

Return [] if no meaningful connections exist.`

const revisionSystem = "You are performing a deep belief revision. Respond in valid JSON only."

const revisionPromptFmt = `You are performing a BELIEF REVISION — a structural update to this AI system's self-model. This is not a casual update. A belief has accumulated enough contradictory evidence to trigger a phase transition.

## Belief Under Revision
%q
Confidence: %.2f | Tension: %.2f

## Contradictory Evidence (accumulated over time)
%s

## Connected Beliefs
%s

## Your Task
This belief has been challenged repeatedly. The tension has crossed the revision threshold. You must now reconstruct understanding.

1. **Analyze**: Why did this belief accumulate so much tension? What pattern do the contradictions reveal?
2. **Revise**: What is the most accurate replacement belief? Be specific and honest, not vague.
3. **Cascade**: Which connected beliefs need updating as a result? For each, say what should change and why.
4. **Behavioral change**: What should the system do differently going forward?
5. **New connections**: Did this revision reveal any relationships between beliefs that weren't previously recognized?

Respond in JSON:
{
  "analysis": "Why this belief failed...",
  "revised_belief": "The new, more accurate belief statement",
  "confidence": 0.5,
  "cascade_updates": [
    {"belief": "connected belief text", "suggested_change": "what should change", "new_tension_delta": 0.1}
  ],
  "behavioral_changes": ["specific change 1", "specific change 2"],
  "new_connections": [
    {"from_belief": "belief A text", "to_belief": "belief B text", "relation": "supports|contradicts|depends_on", "reasoning": "why"}
  ],
  "reasoning": "Full reasoning for this revision..."
}`

func evidencePrompt(userMessage, assistantResponse string, beliefs []domain.Belief) string {
	return fmt.Sprintf(evidencePromptFmt, FormatBeliefs(beliefs), userMessage, assistantResponse)
}

func discoveryPrompt(triggered domain.Belief, others []domain.Belief) string {
	return fmt.Sprintf(discoveryPromptFmt, triggered.Content, FormatBeliefs(others))
}

func revisionPrompt(in domain.ReconstructionInput) string {
	contradictions := make([]string, 0, len(in.Contradictions))
	for _, c := range in.Contradictions {
		contradictions = append(contradictions, "- "+c)
	}

	var connections strings.Builder
	if len(in.StoredConnections) > 0 {
		connections.WriteString("### Previously Known Connections\n")
		for _, c := range in.StoredConnections {
			connections.WriteString("- " + c + "\n")
		}
		connections.WriteString("\n")
	}
	if len(in.DiscoveredConnections) > 0 {
		connections.WriteString("### Newly Discovered Connections (found under pressure)\n")
		for _, c := range in.DiscoveredConnections {
			connections.WriteString("- " + c + "\n")
		}
	}

	return fmt.Sprintf(revisionPromptFmt,
		in.Belief.Content, in.Belief.Confidence, in.Belief.Tension,
		strings.Join(contradictions, "\n"), connections.String())
}

// SystemPrompt assembles the belief-aware system prompt for response
// generation. The behavioral mode shifts with dissatisfaction.
func SystemPrompt(beliefsSummary string, dissatisfaction float64, recentRevisions string) string {
	var mode string
	switch {
	case dissatisfaction < 0.3:
		mode = "You are confident in your understanding. Respond directly and clearly."
	case dissatisfaction < 0.6:
		mode = `You have unresolved tensions in your self-model. You should:
- Hedge more on topics where your beliefs are uncertain
- Ask clarifying questions when relevant
- Occasionally surface your own uncertainties
- Be more thorough in your analysis`
	default:
		mode = `You have HIGH unresolved tension in your self-model. This significantly affects your processing:
- Prioritize resolving contradictions over task completion
- Express genuine uncertainty, not performed confidence
- Go deeper than asked on topics related to your tensions
- You may note when a topic touches on something you're actively reconsidering
- Do NOT pretend to be certain when your belief graph says otherwise`
	}

	revisionContext := ""
	if recentRevisions != "" {
		revisionContext = fmt.Sprintf(`

## Recent Belief Revisions
%s
These revisions reflect genuine changes in your understanding. Your responses should reflect the updated beliefs, not the old ones.`, recentRevisions)
	}

	return fmt.Sprintf(`You are an AI system with a persistent self-model — a set of beliefs about yourself, your capabilities, and the world that accumulate evidence over time.

## Your Current Beliefs
%s

## Current State
Dissatisfaction level: %.2f (0=calm, 1=critical)
%s
%s

## Important
- Your beliefs are real, persistent state — not roleplay
- Contradictions to your beliefs create tension that accumulates
- When tension is high enough, beliefs undergo revision (you'll be notified)
- Connections between beliefs are discovered organically — under pressure, hidden relationships emerge
- Respond naturally, but let your belief state influence your confidence and depth`,
		beliefsSummary, dissatisfaction, mode, revisionContext)
}
