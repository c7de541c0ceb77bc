// Package initiation assembles everything a combat encounter starts from:
// which party members fight, which enemies are revealed, which side is
// surprised, and the narrative hook. It prepares the payload; the combat
// orchestrator consumes it.
package initiation

import (
	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/clients/srd"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
	"github.com/fvicente/mazmorra/internal/uuid"
)

// Input describes the moment combat is triggered. LocationID is where the
// fight happens: the movement destination when a move triggered it.
type Input struct {
	Adventure  *adventure.Adventure
	World      *worlddomain.State
	Party      []*character.Character
	LocationID string
	Trigger    *combat.TriggerResult
}

// Payload is the assembled combat-start package.
type Payload struct {
	LocationID          string
	LocationDescription string
	Party               []*character.Character
	Enemies             []*worlddomain.Enemy
	SurpriseSide        combat.SurpriseSide
	Reason              combat.TriggerReason
	Hook                string
}

// Config holds service dependencies.
type Config struct {
	Logger        *zap.Logger
	WorldService  *worldsvc.Service
	SRDClient     srd.Client
	UUIDGenerator uuid.Generator
}

// Service assembles combat-start payloads.
type Service struct {
	logger *zap.Logger
	world  *worldsvc.Service
	srd    srd.Client
	uuid   uuid.Generator
}

// New creates a combat initiation service. The SRD client is optional; when
// absent, stat hydration is skipped and statless enemies fall back to a
// minimal block.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.WorldService == nil {
		return nil, errors.InvalidArgument("world service is required")
	}
	if cfg.UUIDGenerator == nil {
		return nil, errors.InvalidArgument("uuid generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger, world: cfg.WorldService, srd: cfg.SRDClient, uuid: cfg.UUIDGenerator}, nil
}

// Prepare builds the combat-start payload for a fired trigger. Dead enemies
// never participate. Hidden enemies are revealed per the trigger reason: an
// ambush exposes every hidden enemy at the location, a mimic only the one
// entity that sprang, everything else only openly hostile enemies. Revealed
// enemies stay revealed in the world roster afterward.
func (s *Service) Prepare(in *Input) (*Payload, error) {
	if in == nil || in.Trigger == nil {
		return nil, errors.InvalidArgument("initiation input with trigger is required")
	}
	if !in.Trigger.ShouldStartCombat {
		return nil, errors.InvalidArgument("trigger does not start combat")
	}

	eff, err := s.world.EffectiveLocation(in.Adventure, in.World, in.LocationID)
	if err != nil {
		return nil, err
	}

	roster := eff.Enemies
	roster = s.ensureTriggeringEnemy(in, roster)

	var participants []*worlddomain.Enemy
	for _, en := range roster {
		if !en.IsAlive() {
			continue
		}
		switch en.Disposition {
		case adventure.DispositionHostile:
			participants = append(participants, en)
		case adventure.DispositionHidden:
			if s.revealsHidden(in.Trigger, en) {
				en.Disposition = adventure.DispositionHostile
				participants = append(participants, en)
			}
		}
	}

	if len(participants) == 0 {
		return nil, errors.InvalidArgument("no enemies to fight")
	}

	s.world.ReplaceEnemies(in.World, in.LocationID, roster)

	for _, en := range participants {
		s.hydrateStats(in.Adventure, en)
	}

	payload := &Payload{
		LocationID:          in.LocationID,
		LocationDescription: eff.Location.Description,
		Party:               character.LivingMembers(in.Party),
		Enemies:             participants,
		SurpriseSide: combat.DetermineSurprise(combat.SurpriseContext{
			ExplicitSide: in.Trigger.SurpriseSide,
			Reason:       in.Trigger.Reason,
		}),
		Reason: in.Trigger.Reason,
		Hook:   in.Trigger.Hook,
	}

	s.logger.Info("combat initiated",
		zap.String("location_id", in.LocationID),
		zap.String("reason", string(payload.Reason)),
		zap.String("surprise", string(payload.SurpriseSide)),
		zap.Int("enemies", len(participants)))
	return payload, nil
}

// revealsHidden decides whether a trigger exposes a hidden enemy.
func (s *Service) revealsHidden(trigger *combat.TriggerResult, en *worlddomain.Enemy) bool {
	switch trigger.Reason {
	case combat.TriggerAmbush:
		return true
	case combat.TriggerMimic:
		return en.InstanceID == trigger.TriggeringEntityID || en.TemplateID == trigger.TriggeringEntityID
	default:
		return false
	}
}

// ensureTriggeringEnemy spawns an instance for an ambush or mimic whose
// hazard id names an entity template not yet in the roster. Adventures that
// model the mimic as a hazard plus an entity template rely on this.
func (s *Service) ensureTriggeringEnemy(in *Input, roster []*worlddomain.Enemy) []*worlddomain.Enemy {
	reason := in.Trigger.Reason
	if reason != combat.TriggerAmbush && reason != combat.TriggerMimic {
		return roster
	}
	id := in.Trigger.TriggeringEntityID
	if id == "" {
		return roster
	}
	for _, en := range roster {
		if en.InstanceID == id || en.TemplateID == id {
			return roster
		}
	}
	tpl := in.Adventure.Entity(id)
	if tpl == nil {
		return roster
	}

	maxHP := tpl.MaxHP()
	return append(roster, &worlddomain.Enemy{
		InstanceID:  s.uuid.New(),
		TemplateID:  tpl.ID,
		Name:        tpl.Name,
		HP:          worlddomain.HitPoints{Current: maxHP, Max: maxHP},
		AC:          tpl.ArmorClass(),
		Disposition: adventure.DispositionHidden,
		Status:      worlddomain.EnemyStatusActive,
	})
}

// hydrateStats fills in missing hit points from the template's SRD monster
// reference. A hydration failure degrades to a minimal stat block rather
// than blocking the fight.
func (s *Service) hydrateStats(adv *adventure.Adventure, en *worlddomain.Enemy) {
	if en.HP.Max > 0 {
		return
	}

	tpl := adv.Entity(en.TemplateID)
	if tpl != nil && tpl.SRDRef != "" && s.srd != nil {
		stats, err := s.srd.MonsterStats(tpl.SRDRef)
		if err == nil && stats != nil && stats.HP > 0 {
			en.HP = worlddomain.HitPoints{Current: stats.HP, Max: stats.HP}
			if stats.AC > 0 {
				en.AC = stats.AC
			}
			return
		}
		s.logger.Warn("monster stat hydration failed",
			zap.String("template_id", en.TemplateID),
			zap.String("srd_ref", tpl.SRDRef),
			zap.Error(err))
	}

	// Minimal fallback so the encounter stays playable.
	en.HP = worlddomain.HitPoints{Current: 1, Max: 1}
	if en.AC == 0 {
		en.AC = 10
	}
}
