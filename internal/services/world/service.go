// Package world provides the service that mediates all access to mutable
// per-location session state. Location state records are created lazily and
// the dynamic enemy roster becomes ground truth once a location is visited.
package world

import (
	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/uuid"
)

// EffectiveLocation is a static location merged with its session state: the
// roster of enemy instances actually present right now.
type EffectiveLocation struct {
	Location *adventure.Location
	State    *world.LocationState
	Enemies  []*world.Enemy
	Visited  bool
}

// Config holds service dependencies.
type Config struct {
	Logger        *zap.Logger
	UUIDGenerator uuid.Generator
}

// Service owns reads and writes of mutable world state.
type Service struct {
	logger *zap.Logger
	uuid   uuid.Generator
}

// New creates a world state service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.UUIDGenerator == nil {
		return nil, errors.InvalidArgument("uuid generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, uuid: cfg.UUIDGenerator}, nil
}

// GetOrCreateLocationState returns the mutable record for a location,
// creating an empty one on first access. Idempotent.
func (s *Service) GetOrCreateLocationState(state *world.State, locationID string) *world.LocationState {
	if ls, ok := state.Locations[locationID]; ok {
		return ls
	}
	ls := world.NewLocationState()
	state.Locations[locationID] = ls
	return ls
}

// RegisterVisit records that the party entered a location on the given turn.
// The first-visit turn is set exactly once; the visit count and last-visit
// turn always advance.
func (s *Service) RegisterVisit(state *world.State, locationID string, turn int) *world.LocationState {
	ls := s.GetOrCreateLocationState(state, locationID)
	if !ls.Visited {
		ls.Visited = true
		ls.FirstVisitTurn = turn
	}
	ls.VisitCount++
	ls.LastVisitTurn = turn
	state.PromoteVisitStatus(locationID, world.VisitVisited)

	s.logger.Debug("registered visit",
		zap.String("location_id", locationID),
		zap.Int("turn", turn),
		zap.Int("visit_count", ls.VisitCount))
	return ls
}

// ReplaceEnemies overwrites a location's dynamic enemy roster. Passing an
// empty slice records a cleared room.
func (s *Service) ReplaceEnemies(state *world.State, locationID string, enemies []*world.Enemy) {
	ls := s.GetOrCreateLocationState(state, locationID)
	ls.Enemies = enemies
}

// UpdateConnection applies a partial door-state update for the connection
// from a location toward a target. A missing record is created with the
// defaults open, unlocked and unblocked before the merge.
func (s *Service) UpdateConnection(state *world.State, locationID, targetID string, update world.ConnectionUpdate) *world.ConnectionState {
	ls := s.GetOrCreateLocationState(state, locationID)
	cs, ok := ls.Connections[targetID]
	if !ok {
		cs = &world.ConnectionState{IsOpen: true}
		ls.Connections[targetID] = cs
	}
	if update.IsOpen != nil {
		cs.IsOpen = *update.IsOpen
	}
	if update.IsLocked != nil {
		cs.IsLocked = *update.IsLocked
	}
	if update.IsBlocked != nil {
		cs.IsBlocked = *update.IsBlocked
	}
	return cs
}

// EffectiveLocation merges a static location with its session state. Once a
// roster exists it is ground truth, even when empty (a cleared room stays
// cleared). A nil roster means the location was never instantiated: enemy
// instances are synthesized from the static entity list with full HP and
// fresh instance ids, and recorded so repeat calls see the same instances.
func (s *Service) EffectiveLocation(adv *adventure.Adventure, state *world.State, locationID string) (*EffectiveLocation, error) {
	loc := adv.Location(locationID)
	if loc == nil {
		return nil, errors.NotFoundf("location %s not found", locationID)
	}

	ls := s.GetOrCreateLocationState(state, locationID)
	if ls.Enemies == nil {
		ls.Enemies = s.spawnEnemies(adv, loc)
	}
	return &EffectiveLocation{Location: loc, State: ls, Enemies: ls.Enemies, Visited: ls.Visited}, nil
}

// spawnEnemies instantiates a location's static entity templates. Templates
// without stats keep zero max HP; combat initiation hydrates those from the
// SRD ref.
func (s *Service) spawnEnemies(adv *adventure.Adventure, loc *adventure.Location) []*world.Enemy {
	enemies := make([]*world.Enemy, 0, len(loc.EntitiesPresent))
	for _, templateID := range loc.EntitiesPresent {
		tpl := adv.Entity(templateID)
		if tpl == nil {
			s.logger.Warn("skipping unknown entity template",
				zap.String("location_id", loc.ID),
				zap.String("template_id", templateID))
			continue
		}
		maxHP := tpl.MaxHP()
		enemies = append(enemies, &world.Enemy{
			InstanceID:  s.uuid.New(),
			TemplateID:  tpl.ID,
			Name:        tpl.Name,
			HP:          world.HitPoints{Current: maxHP, Max: maxHP},
			AC:          tpl.ArmorClass(),
			Disposition: tpl.Disposition,
			Status:      world.EnemyStatusActive,
		})
	}
	return enemies
}
