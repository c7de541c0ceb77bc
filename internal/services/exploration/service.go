// Package exploration maintains fog of war and resolves hazard perception,
// both the passive kind that happens on arrival and deliberate searches.
package exploration

import (
	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/rules"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
)

// PerceptionResult lists hazards noticed by a perception pass.
type PerceptionResult struct {
	Checked  bool // false when the location had nothing to perceive
	Score    int  // passive score or active roll total used
	Detected []*adventure.Hazard
}

// Config holds service dependencies.
type Config struct {
	Logger       *zap.Logger
	WorldService *worldsvc.Service
}

// Service tracks what the party has seen and noticed.
type Service struct {
	logger *zap.Logger
	world  *worldsvc.Service
}

// New creates an exploration service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.WorldService == nil {
		return nil, errors.InvalidArgument("world service is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, world: cfg.WorldService}, nil
}

// UpdateExplorationState promotes fog of war after the party enters a
// location: the location itself becomes visited, neighbors behind open
// connections become seen, and every other neighbor gets an unknown record.
// Statuses never regress.
func (s *Service) UpdateExplorationState(adv *adventure.Adventure, state *worlddomain.State, locationID string, turn int) error {
	loc := adv.Location(locationID)
	if loc == nil {
		return errors.NotFoundf("location %s not found", locationID)
	}

	s.world.RegisterVisit(state, locationID, turn)

	for _, conn := range loc.Edges() {
		if adv.Location(conn.TargetID) == nil {
			continue
		}
		if conn.Visibility == adventure.VisibilityRestricted {
			state.PromoteVisitStatus(conn.TargetID, worlddomain.VisitUnknown)
			continue
		}
		state.PromoteVisitStatus(conn.TargetID, worlddomain.VisitSeen)
	}
	return nil
}

// CheckPassivePerception compares the party's best passive perception to the
// location's live hazards. Safe locations and locations without hazards are
// skipped entirely.
func (s *Service) CheckPassivePerception(adv *adventure.Adventure, state *worlddomain.State, locationID string, party []*character.Character) (*PerceptionResult, error) {
	loc := adv.Location(locationID)
	if loc == nil {
		return nil, errors.NotFoundf("location %s not found", locationID)
	}
	if loc.Mode == adventure.ModeSafe || len(loc.ActiveHazards("")) == 0 {
		return &PerceptionResult{}, nil
	}

	score := rules.BestPassivePerception(party)
	detected := s.undetectedHazardsAtOrBelow(state, loc, score)

	if len(detected) > 0 {
		s.logger.Debug("passive perception detected hazards",
			zap.String("location_id", locationID),
			zap.Int("score", score),
			zap.Int("count", len(detected)))
	}
	return &PerceptionResult{Checked: true, Score: score, Detected: detected}, nil
}

// PerformActiveSearch resolves a deliberate search against a rolled total.
func (s *Service) PerformActiveSearch(adv *adventure.Adventure, state *worlddomain.State, locationID string, rollTotal int) (*PerceptionResult, error) {
	loc := adv.Location(locationID)
	if loc == nil {
		return nil, errors.NotFoundf("location %s not found", locationID)
	}
	detected := s.undetectedHazardsAtOrBelow(state, loc, rollTotal)
	return &PerceptionResult{Checked: true, Score: rollTotal, Detected: detected}, nil
}

// MarkHazardsDiscovered records hazards as found. Idempotent.
func (s *Service) MarkHazardsDiscovered(state *worlddomain.State, locationID string, hazards []*adventure.Hazard) {
	if len(hazards) == 0 {
		return
	}
	ls := s.world.GetOrCreateLocationState(state, locationID)
	for _, h := range hazards {
		ls.DiscoveredSecrets[h.ID] = true
	}
}

// UndetectedHazards returns the location's active hazards the party has not
// yet discovered or cleared.
func (s *Service) UndetectedHazards(state *worlddomain.State, loc *adventure.Location, hazardType adventure.HazardType) []*adventure.Hazard {
	ls := s.world.GetOrCreateLocationState(state, loc.ID)
	var out []*adventure.Hazard
	for _, h := range loc.ActiveHazards(hazardType) {
		if ls.DiscoveredSecrets[h.ID] || ls.ClearedHazards[h.ID] {
			continue
		}
		out = append(out, h)
	}
	return out
}

// LiveHazards returns the location's active hazards that have not been
// cleared, discovered or not. A discovered mimic is still a mimic.
func (s *Service) LiveHazards(state *worlddomain.State, loc *adventure.Location, hazardType adventure.HazardType) []*adventure.Hazard {
	ls := s.world.GetOrCreateLocationState(state, loc.ID)
	var out []*adventure.Hazard
	for _, h := range loc.ActiveHazards(hazardType) {
		if ls.ClearedHazards[h.ID] {
			continue
		}
		out = append(out, h)
	}
	return out
}

// IsHazardDiscovered reports whether the party already found a hazard.
func (s *Service) IsHazardDiscovered(state *worlddomain.State, locationID, hazardID string) bool {
	if ls, ok := state.Locations[locationID]; ok {
		return ls.DiscoveredSecrets[hazardID]
	}
	return false
}

func (s *Service) undetectedHazardsAtOrBelow(state *worlddomain.State, loc *adventure.Location, score int) []*adventure.Hazard {
	var detected []*adventure.Hazard
	for _, h := range s.UndetectedHazards(state, loc, "") {
		if h.DetectionDC <= score {
			detected = append(detected, h)
		}
	}
	return detected
}
