// Package narrative runs the exploration game loop: one player input in, one
// narrated turn out. It sequences movement, companion reactions, fog of war,
// perception, combat triggers and the narrator call, and hands off a combat
// payload when a trigger fires.
package narrative

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fvicente/mazmorra/internal/clients/narrator"
	"github.com/fvicente/mazmorra/internal/clients/tactician"
	"github.com/fvicente/mazmorra/internal/domain/action"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	worlddomain "github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/matching"
	"github.com/fvicente/mazmorra/internal/repositories/sessions"
	"github.com/fvicente/mazmorra/internal/services/exploration"
	"github.com/fvicente/mazmorra/internal/services/initiation"
	"github.com/fvicente/mazmorra/internal/services/navigation"
	"github.com/fvicente/mazmorra/internal/services/trigger"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
)

// TurnInput is one player turn to resolve.
type TurnInput struct {
	Adventure *adventure.Adventure
	Session   *sessions.Snapshot
	Action    *action.Interpreted
	// SecondaryAction carries the interaction half of a hybrid
	// "move somewhere and do something" input.
	SecondaryAction *action.Interpreted
	RawInput        string
	// AdventureStart marks the opening turn: companions stay quiet and the
	// party starts at the adventure's start location.
	AdventureStart bool
	Stealth        trigger.StealthOutcome
}

// TurnResult is everything the caller needs to present the turn and decide
// what happens next.
type TurnResult struct {
	LocationID    string
	Narration     string
	Movement      *navigation.MovementResult
	PreReactions  []*tactician.Reaction
	PostReactions []*tactician.Reaction
	Trigger       *combat.TriggerResult
	CombatPayload *initiation.Payload
}

// Config holds manager dependencies.
type Config struct {
	Logger      *zap.Logger
	Navigation  *navigation.Service
	World       *worldsvc.Service
	Exploration *exploration.Service
	Trigger     *trigger.Evaluator
	Initiation  *initiation.Service
	Narrator    narrator.Narrator
	Reactor     tactician.CompanionReactor
	Matcher     *matching.Matcher
}

// Manager resolves exploration turns.
type Manager struct {
	logger      *zap.Logger
	navigation  *navigation.Service
	world       *worldsvc.Service
	exploration *exploration.Service
	trigger     *trigger.Evaluator
	initiation  *initiation.Service
	narrator    narrator.Narrator
	reactor     tactician.CompanionReactor
	matcher     *matching.Matcher
}

// New creates a narrative turn manager.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.Navigation == nil || cfg.World == nil || cfg.Exploration == nil ||
		cfg.Trigger == nil || cfg.Initiation == nil {
		return nil, errors.InvalidArgument("all engine services are required")
	}
	if cfg.Narrator == nil {
		return nil, errors.InvalidArgument("narrator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = matching.New()
	}
	return &Manager{
		logger:      logger,
		navigation:  cfg.Navigation,
		world:       cfg.World,
		exploration: cfg.Exploration,
		trigger:     cfg.Trigger,
		initiation:  cfg.Initiation,
		narrator:    cfg.Narrator,
		reactor:     cfg.Reactor,
		matcher:     matcher,
	}, nil
}

// TakeTurn resolves one player input end to end. When the returned result
// carries a combat payload, the caller switches to the combat orchestrator
// before taking further narrative turns.
func (m *Manager) TakeTurn(ctx context.Context, in *TurnInput) (*TurnResult, error) {
	if in == nil || in.Session == nil || in.Adventure == nil {
		return nil, errors.InvalidArgument("turn input with session and adventure is required")
	}
	act := in.Action
	if act == nil {
		act = &action.Interpreted{Type: action.TypeNarrate, Raw: in.RawInput}
	}

	state := in.Session.World
	if state == nil {
		state = worlddomain.NewState()
		in.Session.World = state
	}
	state.Turn++

	locationID := in.Session.CurrentLocationID
	if locationID == "" {
		locationID = in.Adventure.StartLocationID
	}

	result := &TurnResult{LocationID: locationID}

	// Movement first: everything downstream happens at the destination. A
	// journey that failed mid-route still moved the party as far as the bad
	// hop, so apply whatever ground and time were actually covered.
	if act.Type == action.TypeMove && act.TargetID != "" {
		movement := m.resolveMovement(in, act, locationID)
		result.Movement = movement
		if movement.ReachedID != "" && movement.ReachedID != locationID {
			locationID = movement.ReachedID
			in.Session.CurrentLocationID = locationID
			result.LocationID = locationID
			m.navigation.AdvanceWorldTime(state, movement.TravelTime)
		}
	}
	in.Session.CurrentLocationID = locationID

	// Companions chime in before the narration, but never on the opening
	// turn and only for actions worth reacting to.
	if !in.AdventureStart && act.IsSignificant() {
		result.PreReactions = m.companionReactions(ctx, in, "")
	}

	if err := m.exploration.UpdateExplorationState(in.Adventure, state, locationID, state.Turn); err != nil {
		return nil, err
	}

	perception, err := m.exploration.CheckPassivePerception(in.Adventure, state, locationID, in.Session.Party)
	if err != nil {
		return nil, err
	}
	if len(perception.Detected) > 0 {
		m.exploration.MarkHazardsDiscovered(state, locationID, perception.Detected)
	}

	eff, err := m.world.EffectiveLocation(in.Adventure, state, locationID)
	if err != nil {
		return nil, err
	}

	result.Trigger = m.evaluateTrigger(in, act, state, eff)
	if result.Trigger.ShouldStartCombat {
		payload, err := m.initiation.Prepare(&initiation.Input{
			Adventure:  in.Adventure,
			World:      state,
			Party:      in.Session.Party,
			LocationID: locationID,
			Trigger:    result.Trigger,
		})
		if err != nil {
			// A trigger that cannot produce a fight (say, the roster died
			// since evaluation) degrades to a quiet turn.
			m.logger.Warn("combat initiation failed, continuing narration",
				zap.String("reason", string(result.Trigger.Reason)),
				zap.Error(err))
			result.Trigger = combat.NoTrigger()
		} else {
			result.CombatPayload = payload
		}
	}

	narration, err := m.narrate(ctx, in, act, eff, perception, result)
	if err != nil {
		return nil, err
	}
	result.Narration = narration

	if !in.AdventureStart && act.IsSignificant() {
		result.PostReactions = m.companionReactions(ctx, in, narration)
	}

	in.Session.AppendTranscript("> " + in.RawInput)
	in.Session.AppendTranscript(narration)
	return result, nil
}

// resolveMovement maps the action's free-text destination onto a location
// and runs navigation.
func (m *Manager) resolveMovement(in *TurnInput, act *action.Interpreted, fromID string) *navigation.MovementResult {
	candidates := make([]matching.Candidate, 0, len(in.Adventure.Locations))
	for id, loc := range in.Adventure.Locations {
		candidates = append(candidates, matching.Candidate{ID: id, Name: loc.Title})
	}

	targetID, ok := m.matcher.Match(act.TargetID, candidates)
	if !ok {
		return &navigation.MovementResult{
			FromID:    fromID,
			ReachedID: fromID,
			TargetID:  act.TargetID,
			Failure:   navigation.FailureNoPath,
			Reason:    "you do not know the way to " + act.TargetID,
		}
	}

	movement, err := m.navigation.ResolveMovement(in.Adventure, in.Session.World, in.Session.Party, fromID, targetID)
	if err != nil {
		m.logger.Warn("movement resolution failed",
			zap.String("from", fromID),
			zap.String("target", targetID),
			zap.Error(err))
		return &navigation.MovementResult{
			FromID:    fromID,
			ReachedID: fromID,
			TargetID:  targetID,
			Failure:   navigation.FailureNoPath,
			Reason:    "the way eludes you",
		}
	}
	return movement
}

// evaluateTrigger picks the evaluation matching what the player did this
// turn: arrival checks, interaction checks, or a first strike.
func (m *Manager) evaluateTrigger(in *TurnInput, act *action.Interpreted, state *worlddomain.State, eff *worldsvc.EffectiveLocation) *combat.TriggerResult {
	switch act.Type {
	case action.TypeAttack:
		return m.trigger.EvaluatePlayerAction(act, eff.Enemies)
	case action.TypeInteract:
		return m.trigger.EvaluateInteraction(state, eff.Location, eff.Enemies, act.TargetID, false)
	default:
		res := m.trigger.EvaluateExploration(state, eff.Location, eff.Enemies, in.Stealth)
		if !res.ShouldStartCombat && in.SecondaryAction != nil && in.SecondaryAction.Type == action.TypeInteract {
			return m.trigger.EvaluateInteraction(state, eff.Location, eff.Enemies, in.SecondaryAction.TargetID, false)
		}
		return res
	}
}

// narrate builds the narrator request and executes it. A hybrid turn (move
// plus interact) fans the two narration halves out concurrently and joins
// them in input order.
func (m *Manager) narrate(ctx context.Context, in *TurnInput, act *action.Interpreted, eff *worldsvc.EffectiveLocation, perception *exploration.PerceptionResult, result *TurnResult) (string, error) {
	bundle := m.locationBundle(in, eff, result)

	primary := &narrator.Request{
		RawInput:   in.RawInput,
		Action:     act,
		Location:   bundle,
		Transcript: in.Session.Transcript,
	}

	if in.SecondaryAction == nil {
		res, err := m.callNarrator(ctx, primary)
		if err != nil {
			return "", err
		}
		m.applyStatUpdates(in.Session.Party, res)
		return m.composeNarration(res.Narration, perception, result), nil
	}

	secondary := &narrator.Request{
		RawInput:   in.RawInput,
		Action:     in.SecondaryAction,
		Location:   bundle,
		Transcript: in.Session.Transcript,
	}

	var primaryRes, secondaryRes *narrator.Result
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := m.callNarrator(gctx, primary)
		primaryRes = res
		return err
	})
	g.Go(func() error {
		res, err := m.callNarrator(gctx, secondary)
		secondaryRes = res
		return err
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	m.applyStatUpdates(in.Session.Party, primaryRes)
	m.applyStatUpdates(in.Session.Party, secondaryRes)
	joined := strings.TrimSpace(primaryRes.Narration + "\n\n" + secondaryRes.Narration)
	return m.composeNarration(joined, perception, result), nil
}

func (m *Manager) callNarrator(ctx context.Context, req *narrator.Request) (*narrator.Result, error) {
	res, err := m.narrator.Narrate(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "narration failed")
	}
	return res, nil
}

// locationBundle assembles the scene the narrator may describe. An imminent
// ambush keeps enemy identities out of the scene entirely.
func (m *Manager) locationBundle(in *TurnInput, eff *worldsvc.EffectiveLocation, result *TurnResult) *narrator.LocationBundle {
	bundle := &narrator.LocationBundle{
		Location:           eff.Location,
		VisibleConnections: m.visibleConnections(in, eff, result),
	}

	if result.Trigger != nil && result.Trigger.Reason == combat.TriggerAmbush {
		bundle.SuppressEnemyNames = true
		return bundle
	}

	for _, en := range eff.Enemies {
		if en.Disposition == adventure.DispositionHidden {
			continue
		}
		bundle.Enemies = append(bundle.Enemies, en)
	}
	return bundle
}

// visibleConnections lists where the party could go next: open-visibility
// edges, excluding the one they just arrived through. Unvisited destinations
// show as unexplored rather than by title.
func (m *Manager) visibleConnections(in *TurnInput, eff *worldsvc.EffectiveLocation, result *TurnResult) []string {
	arrivalFrom := ""
	if result.Movement != nil && result.Movement.Moved {
		arrivalFrom = result.Movement.FromID
		if n := len(result.Movement.Path); n > 1 {
			arrivalFrom = result.Movement.Path[n-2]
		}
	}

	var out []string
	for _, conn := range eff.Location.Edges() {
		if conn.TargetID == arrivalFrom {
			continue
		}
		if conn.Visibility == adventure.VisibilityRestricted {
			continue
		}
		target := in.Adventure.Location(conn.TargetID)
		if target == nil {
			continue
		}

		label := "an unexplored path"
		if in.Session.World.VisitStatusOf(conn.TargetID).AtLeast(worlddomain.VisitSeen) {
			label = target.Title
		}
		if conn.Direction != "" {
			label += " (" + conn.Direction + ")"
		}
		out = append(out, label)
	}
	return out
}

// composeNarration prefixes movement and perception fragments and appends
// the combat hook when a fight is starting.
func (m *Manager) composeNarration(prose string, perception *exploration.PerceptionResult, result *TurnResult) string {
	var parts []string

	if result.Movement != nil {
		if result.Movement.Moved {
			parts = append(parts, result.Movement.Narration)
		} else if result.Movement.Reason != "" {
			parts = append(parts, result.Movement.Reason)
		}
	}
	for _, h := range perception.Detected {
		if h.Narration != "" {
			parts = append(parts, h.Narration)
		}
	}
	parts = append(parts, prose)
	if result.CombatPayload != nil && result.Trigger.Hook != "" {
		parts = append(parts, result.Trigger.Hook)
	}

	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, "\n\n")
}

// companionReactions collects short in-character lines from AI-controlled
// party members. A failed or silent reactor is simply skipped; reactions
// never block a turn.
func (m *Manager) companionReactions(ctx context.Context, in *TurnInput, narration string) []*tactician.Reaction {
	if m.reactor == nil {
		return nil
	}

	var reactions []*tactician.Reaction
	for _, member := range in.Session.Party {
		if member.Controller != character.ControllerAI || !member.IsConscious() {
			continue
		}
		reaction, err := m.reactor.React(ctx, &tactician.ReactionInput{
			CharacterID:   member.ID,
			CharacterName: member.Name,
			PlayerInput:   in.RawInput,
			Narration:     narration,
			Transcript:    in.Session.Transcript,
		})
		if err != nil {
			m.logger.Warn("companion reaction failed",
				zap.String("character", member.Name),
				zap.Error(err))
			continue
		}
		if reaction != nil {
			reactions = append(reactions, reaction)
		}
	}
	return reactions
}

// applyStatUpdates applies the narrator's optional partial stat updates to
// the party. Unparseable payloads are discarded with a warning; HP writes
// clamp to [0, max].
func (m *Manager) applyStatUpdates(party []*character.Character, res *narrator.Result) {
	if res == nil || res.StatUpdateJSON == "" {
		return
	}
	updates, ok := res.StatUpdates()
	if !ok {
		m.logger.Warn("discarding unparseable stat update", zap.String("payload", res.StatUpdateJSON))
		return
	}

	for _, member := range party {
		raw, ok := updates[member.ID]
		if !ok {
			continue
		}
		fields, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if hp, ok := fields["hp"].(float64); ok {
			next := int(hp)
			if next < 0 {
				next = 0
			}
			if next > member.HP.Max {
				next = member.HP.Max
			}
			member.HP.Current = next
		}
	}
}
