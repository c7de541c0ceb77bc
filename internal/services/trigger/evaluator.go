// Package trigger decides whether a game moment mandates starting combat.
// Evaluation is pure: it reads state and produces an ephemeral decision
// value, never mutating anything or starting combat itself.
package trigger

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/domain/action"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/matching"
	"github.com/fvicente/mazmorra/internal/services/exploration"
)

// StealthOutcome is how a stealth attempt on approach resolved.
type StealthOutcome string

const (
	StealthNotAttempted StealthOutcome = "not_attempted"
	StealthSuccess      StealthOutcome = "success"
	StealthFailure      StealthOutcome = "failure"
)

// Config holds evaluator dependencies.
type Config struct {
	Logger             *zap.Logger
	ExplorationService *exploration.Service
	Matcher            *matching.Matcher
}

// Evaluator decides combat triggers.
type Evaluator struct {
	logger      *zap.Logger
	exploration *exploration.Service
	matcher     *matching.Matcher
}

// New creates a trigger evaluator.
func New(cfg *Config) (*Evaluator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.ExplorationService == nil {
		return nil, errors.InvalidArgument("exploration service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = matching.New()
	}
	return &Evaluator{logger: logger, exploration: cfg.ExplorationService, matcher: matcher}, nil
}

// EvaluateExploration runs after the party arrives somewhere. An undetected
// active ambush pre-empts everything and surprises the players. Otherwise
// visible hostiles force combat: a failed stealth approach is its own
// reason, no attempt at all is plain proximity, and a successful stealth
// approach suppresses the trigger for this evaluation.
func (e *Evaluator) EvaluateExploration(state *worlddomain.State, loc *adventure.Location, enemies []*worlddomain.Enemy, stealth StealthOutcome) *combat.TriggerResult {
	if ambushes := e.exploration.UndetectedHazards(state, loc, adventure.HazardAmbush); len(ambushes) > 0 {
		ambush := ambushes[0]
		return &combat.TriggerResult{
			ShouldStartCombat:  true,
			Reason:             combat.TriggerAmbush,
			SurpriseSide:       combat.SurpriseEnemy,
			TriggeringEntityID: ambush.ID,
			Hook:               ambushHook(ambush),
		}
	}

	hostiles := visibleHostiles(enemies)
	if len(hostiles) == 0 {
		return combat.NoTrigger()
	}

	switch stealth {
	case StealthSuccess:
		e.logger.Debug("stealth success suppresses combat trigger",
			zap.String("location_id", loc.ID))
		return combat.NoTrigger()
	case StealthFailure:
		return &combat.TriggerResult{
			ShouldStartCombat:  true,
			Reason:             combat.TriggerStealthFail,
			SurpriseSide:       combat.SurpriseNone,
			TriggeringEntityID: hostiles[0].InstanceID,
			Hook:               fmt.Sprintf("%s spots you skulking in!", hostiles[0].Name),
		}
	default:
		return &combat.TriggerResult{
			ShouldStartCombat:  true,
			Reason:             combat.TriggerProximity,
			SurpriseSide:       combat.SurpriseNone,
			TriggeringEntityID: hostiles[0].InstanceID,
			Hook:               fmt.Sprintf("%s turns toward you, weapons ready.", hostiles[0].Name),
		}
	}
}

// EvaluateInteraction runs when a player touches or manipulates something. A
// live mimic hazard whose identity matches the target springs shut: an
// undiscovered mimic catches the party with enemy-side surprise, while a
// discovered one still fights but surprises nobody. Failing that, a hostile
// interaction with visible enemies present counts as provocation with no
// surprise either way.
func (e *Evaluator) EvaluateInteraction(state *worlddomain.State, loc *adventure.Location, enemies []*worlddomain.Enemy, target string, hostileIntent bool) *combat.TriggerResult {
	mimics := e.exploration.LiveHazards(state, loc, adventure.HazardMimic)
	if len(mimics) > 0 && target != "" {
		candidates := make([]matching.Candidate, 0, len(mimics))
		for _, m := range mimics {
			candidates = append(candidates, matching.Candidate{ID: m.ID, Name: m.Name})
		}
		if matchedID, ok := e.matcher.Match(target, candidates); ok {
			matched := mimics[0]
			for _, m := range mimics {
				if m.ID == matchedID {
					matched = m
				}
			}
			surprise := combat.SurpriseEnemy
			hook := ambushHook(matched)
			if e.exploration.IsHazardDiscovered(state, loc.ID, matched.ID) {
				surprise = combat.SurpriseNone
				hook = fmt.Sprintf("%s gives up the pretense and attacks!", matched.Name)
			}
			return &combat.TriggerResult{
				ShouldStartCombat:  true,
				Reason:             combat.TriggerMimic,
				SurpriseSide:       surprise,
				TriggeringEntityID: matched.ID,
				Hook:               hook,
			}
		}
	}

	if hostileIntent {
		if hostiles := visibleHostiles(enemies); len(hostiles) > 0 {
			return &combat.TriggerResult{
				ShouldStartCombat:  true,
				Reason:             combat.TriggerProvocation,
				SurpriseSide:       combat.SurpriseNone,
				TriggeringEntityID: hostiles[0].InstanceID,
				Hook:               fmt.Sprintf("%s takes offense and attacks!", hostiles[0].Name),
			}
		}
	}
	return combat.NoTrigger()
}

// EvaluatePlayerAction runs when the party acts first: an out-of-combat
// attack on a living target starts combat with player-side surprise.
func (e *Evaluator) EvaluatePlayerAction(act *action.Interpreted, enemies []*worlddomain.Enemy) *combat.TriggerResult {
	if act == nil || act.Type != action.TypeAttack {
		return combat.NoTrigger()
	}

	living := make([]*worlddomain.Enemy, 0, len(enemies))
	for _, en := range enemies {
		if en.IsAlive() {
			living = append(living, en)
		}
	}
	if len(living) == 0 {
		return combat.NoTrigger()
	}

	targetID := living[0].InstanceID
	if act.TargetID != "" {
		candidates := make([]matching.Candidate, 0, len(living))
		for _, en := range living {
			candidates = append(candidates, matching.Candidate{ID: en.InstanceID, Name: en.Name})
		}
		if matchedID, ok := e.matcher.Match(act.TargetID, candidates); ok {
			targetID = matchedID
		}
	}

	return &combat.TriggerResult{
		ShouldStartCombat:  true,
		Reason:             combat.TriggerPlayerSurprise,
		SurpriseSide:       combat.SurprisePlayer,
		TriggeringEntityID: targetID,
		Hook:               "You strike first!",
	}
}

// visibleHostiles filters the roster to living, openly hostile enemies.
// Hidden enemies never trigger proximity combat; that is what ambushes are
// for.
func visibleHostiles(enemies []*worlddomain.Enemy) []*worlddomain.Enemy {
	var out []*worlddomain.Enemy
	for _, en := range enemies {
		if en.IsAlive() && en.Disposition == adventure.DispositionHostile {
			out = append(out, en)
		}
	}
	return out
}

func ambushHook(h *adventure.Hazard) string {
	if h.Narration != "" {
		return h.Narration
	}
	return "Something bursts from hiding and attacks!"
}
