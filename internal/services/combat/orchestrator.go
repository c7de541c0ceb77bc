// Package combat drives the per-turn combat state machine: initiative setup,
// turn advancement with surprise and down-state skips, player suspension,
// tactician-driven enemy turns, and end-of-combat detection.
package combat

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/clients/tactician"
	"github.com/fvicente/mazmorra/internal/dice"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/combat"
	"github.com/fvicente/mazmorra/internal/errors"
	"github.com/fvicente/mazmorra/internal/services/initiation"
	"github.com/fvicente/mazmorra/internal/uuid"
)

// PlayerAction is a player combatant's chosen action for their turn.
type PlayerAction struct {
	Kind      string // "attack", "heal", "effect", "pass"
	TargetID  string
	Notation  string // damage or healing notation, e.g. "1d8+3"
	Narration string
}

// StepResult reports what one orchestrator step did.
type StepResult struct {
	Phase              combat.Phase
	ActorID            string
	ActorName          string
	Narration          string
	AwaitingPlayer     bool
	MoreAITurnsPending bool
	CombatEnded        bool
	Winner             combat.Side
}

// Config holds orchestrator dependencies.
type Config struct {
	Logger        *zap.Logger
	Roller        dice.Roller
	Tactician     tactician.Tactician
	UUIDGenerator uuid.Generator
}

// Orchestrator runs combat encounters. It never loops on its own: the caller
// drives it step by step so AI turns can be paced and player turns suspend.
type Orchestrator struct {
	logger    *zap.Logger
	roller    dice.Roller
	tactician tactician.Tactician
	uuid      uuid.Generator
}

// New creates a combat orchestrator.
func New(cfg *Config) (*Orchestrator, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if cfg.Roller == nil {
		return nil, errors.InvalidArgument("roller is required")
	}
	if cfg.UUIDGenerator == nil {
		return nil, errors.InvalidArgument("uuid generator is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		logger:    logger,
		roller:    cfg.Roller,
		tactician: cfg.Tactician,
		uuid:      cfg.UUIDGenerator,
	}, nil
}

// Setup rolls initiative for everyone in the payload and produces a ready
// combat state at round 1, turn index 0. Initiative is d20 + DEX modifier;
// ties break toward the higher modifier, then stable input order. Surprise
// tags are applied to the side opposite the surprising one.
func (o *Orchestrator) Setup(payload *initiation.Payload) (*combat.State, error) {
	if payload == nil {
		return nil, errors.InvalidArgument("payload is required")
	}
	if len(payload.Party) == 0 {
		return nil, errors.InvalidArgument("no living party members")
	}
	if len(payload.Enemies) == 0 {
		return nil, errors.InvalidArgument("no enemies")
	}

	var order []*combat.Combatant
	for _, member := range payload.Party {
		c, err := o.rollIntoOrder(&combat.Combatant{
			ID:              o.uuid.New(),
			Name:            member.Name,
			Side:            combat.SidePlayers,
			Controller:      member.Controller,
			InitiativeBonus: member.AbilityModifier(character.AttributeDexterity),
			CurrentHP:       member.HP.Current,
			MaxHP:           member.HP.Max,
			AC:              member.AC,
			Status:          combat.StatusActive,
			Spells:          member.Spells,
			CharacterID:     member.ID,
		})
		if err != nil {
			return nil, err
		}
		order = append(order, c)
	}
	for _, enemy := range payload.Enemies {
		c, err := o.rollIntoOrder(&combat.Combatant{
			ID:              o.uuid.New(),
			Name:            enemy.Name,
			Side:            combat.SideEnemies,
			Controller:      character.ControllerAI,
			CurrentHP:       enemy.HP.Current,
			MaxHP:           enemy.HP.Max,
			AC:              enemy.AC,
			Status:          combat.StatusActive,
			EnemyInstanceID: enemy.InstanceID,
		})
		if err != nil {
			return nil, err
		}
		order = append(order, c)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Initiative != order[j].Initiative {
			return order[i].Initiative > order[j].Initiative
		}
		return order[i].InitiativeBonus > order[j].InitiativeBonus
	})

	combat.MarkCombatantsSurprised(order, payload.SurpriseSide)

	state := &combat.State{
		ID:                  o.uuid.New(),
		LocationID:          payload.LocationID,
		LocationDescription: payload.LocationDescription,
		Phase:               combat.PhaseTurnStart,
		Round:               1,
		Turn:                0,
		Order:               order,
		Hook:                payload.Hook,
		StartedAt:           time.Now(),
	}
	state.AddLogEntry(fmt.Sprintf("combat begins with %d combatants", len(order)))

	o.logger.Info("combat setup complete",
		zap.String("combat_id", state.ID),
		zap.String("location_id", state.LocationID),
		zap.Int("combatants", len(order)),
		zap.String("first", order[0].Name))
	return state, nil
}

// Step advances combat by one turn. Dead, unconscious and surprised
// combatants are skipped at turn start (surprise clearing on the skip, so it
// costs exactly one turn). A player turn suspends and returns control; an AI
// turn consults the tactician and resolves immediately, reporting whether
// more AI turns follow so the caller can pace auto-advance.
func (o *Orchestrator) Step(ctx context.Context, state *combat.State) (*StepResult, error) {
	if state == nil {
		return nil, errors.InvalidArgument("combat state is required")
	}
	if state.Phase == combat.PhaseCombatEnd {
		return &StepResult{Phase: state.Phase, CombatEnded: true, Winner: state.Winner}, nil
	}

	actor, skipped := o.advanceToActor(state)
	if actor == nil {
		// Everyone on one side went down during the skips.
		over, winner := state.CheckEnd()
		if over {
			state.End(winner)
			return &StepResult{Phase: state.Phase, CombatEnded: true, Winner: winner}, nil
		}
		return nil, errors.Internalf("no actable combatant but combat not over")
	}

	state.Phase = combat.PhaseWaitingForAction
	if actor.Controller == character.ControllerPlayer {
		return &StepResult{
			Phase:          state.Phase,
			ActorID:        actor.ID,
			ActorName:      actor.Name,
			Narration:      skipped,
			AwaitingPlayer: true,
		}, nil
	}

	narration := o.resolveAITurn(ctx, state, actor)
	return o.finishTurn(state, actor, skipped+narration)
}

// SubmitPlayerAction resolves the suspended player turn with the player's
// chosen action and advances past it.
func (o *Orchestrator) SubmitPlayerAction(state *combat.State, act *PlayerAction) (*StepResult, error) {
	if state == nil || state.Phase != combat.PhaseWaitingForAction {
		return nil, errors.InvalidArgument("combat is not waiting for a player action")
	}
	actor := state.Current()
	if actor == nil || actor.Controller != character.ControllerPlayer {
		return nil, errors.InvalidArgument("current combatant is not player-controlled")
	}
	if act == nil {
		act = &PlayerAction{Kind: "pass"}
	}

	state.Phase = combat.PhaseProcessingAction
	narration := o.resolvePlayerAction(state, actor, act)
	return o.finishTurn(state, actor, narration)
}

// advanceToActor walks the order from the current index, skipping combatants
// that cannot act and burning surprise flags, until it finds the turn's
// actor. Returns nil when a full pass finds nobody able to act.
func (o *Orchestrator) advanceToActor(state *combat.State) (*combat.Combatant, string) {
	var skipped string
	for i := 0; i < len(state.Order); i++ {
		state.Phase = combat.PhaseTurnStart
		actor := state.Current()

		if !actor.CanAct() {
			o.wrapTurn(state)
			continue
		}
		if actor.Surprised {
			combat.ClearSurprise(actor)
			state.AddLogEntry(fmt.Sprintf("%s is surprised and loses the turn", actor.Name))
			skipped += fmt.Sprintf("%s is caught off guard and hesitates. ", actor.Name)
			o.wrapTurn(state)
			continue
		}
		return actor, skipped
	}
	return nil, skipped
}

// resolveAITurn asks the tactician for a decision and processes it. Any
// failure or malformed output degrades to a harmless "does nothing" turn;
// the combat loop never crashes on a collaborator.
func (o *Orchestrator) resolveAITurn(ctx context.Context, state *combat.State, actor *combat.Combatant) string {
	state.Phase = combat.PhaseProcessingAction

	decision := o.decideOrDefault(ctx, state, actor)
	if decision.TargetID == "" && len(decision.Rolls) > 0 {
		// Rolls without a target cannot be applied.
		decision = doNothingDecision(actor)
	}

	narration := decision.Narration
	if len(decision.Rolls) == 0 {
		state.AddLogEntry(fmt.Sprintf("%s does nothing", actor.Name))
		return narration
	}

	target := state.Combatant(decision.TargetID)
	if target == nil {
		state.AddLogEntry(fmt.Sprintf("%s swings at nothing", actor.Name))
		return fmt.Sprintf("%s lashes out at empty air.", actor.Name)
	}

	outcome := o.applyRolls(state, actor, target, decision.Rolls)
	if narration != "" {
		return narration + " " + outcome
	}
	return outcome
}

// decideOrDefault wraps the tactician call with the safe default.
func (o *Orchestrator) decideOrDefault(ctx context.Context, state *combat.State, actor *combat.Combatant) *tactician.Decision {
	if o.tactician == nil {
		return doNothingDecision(actor)
	}

	decision, err := o.tactician.DecideAction(ctx, o.buildTurnContext(state, actor))
	if err != nil || decision == nil {
		o.logger.Warn("tactician failed, defaulting to no action",
			zap.String("actor", actor.Name),
			zap.Error(err))
		return doNothingDecision(actor)
	}
	return decision
}

// applyRolls executes the decision's roll sequence. An attack is exactly two
// rolls, to-hit then damage, compared against the target's AC. A single roll
// is a save-based effect or heal applied directly. An attack missing its
// damage roll is malformed and resolves as a wasted turn rather than an
// unconditional effect.
func (o *Orchestrator) applyRolls(state *combat.State, actor, target *combat.Combatant, rolls []tactician.RollRequest) string {
	first := rolls[0]

	if first.Kind == tactician.RollAttack {
		if len(rolls) < 2 {
			state.AddLogEntry(fmt.Sprintf("%s fumbles an incomplete attack", actor.Name))
			return fmt.Sprintf("%s hesitates and does nothing.", actor.Name)
		}
		attackTotal, _, err := dice.RollNotation(o.roller, first.Notation)
		if err != nil {
			state.AddLogEntry(fmt.Sprintf("%s fumbles an invalid attack", actor.Name))
			return fmt.Sprintf("%s hesitates, the attack never landing.", actor.Name)
		}
		if attackTotal < target.AC {
			state.AddLogEntry(fmt.Sprintf("%s misses %s (%d vs AC %d)", actor.Name, target.Name, attackTotal, target.AC))
			return fmt.Sprintf("%s attacks %s but misses.", actor.Name, target.Name)
		}

		damage, _, err := dice.RollNotation(o.roller, rolls[1].Notation)
		if err != nil {
			damage = 1
		}
		target.ApplyDamage(damage)
		state.AddLogEntry(fmt.Sprintf("%s hits %s for %d (%d/%d HP)", actor.Name, target.Name, damage, target.CurrentHP, target.MaxHP))

		if target.Status == combat.StatusDead {
			return fmt.Sprintf("%s strikes %s for %d damage, and %s falls dead.", actor.Name, target.Name, damage, target.Name)
		}
		if target.Status == combat.StatusUnconscious {
			return fmt.Sprintf("%s strikes %s for %d damage, and %s collapses unconscious.", actor.Name, target.Name, damage, target.Name)
		}
		return fmt.Sprintf("%s hits %s for %d damage.", actor.Name, target.Name, damage)
	}

	// Single-roll effect: healing when actor and target share a side,
	// otherwise direct damage (save-based effects resolve to their total).
	total, _, err := dice.RollNotation(o.roller, first.Notation)
	if err != nil {
		state.AddLogEntry(fmt.Sprintf("%s fumbles an invalid effect", actor.Name))
		return fmt.Sprintf("%s's attempt fizzles.", actor.Name)
	}

	if actor.Side == target.Side {
		target.Heal(total)
		state.AddLogEntry(fmt.Sprintf("%s heals %s for %d (%d/%d HP)", actor.Name, target.Name, total, target.CurrentHP, target.MaxHP))
		return fmt.Sprintf("%s restores %d hit points to %s.", actor.Name, total, target.Name)
	}

	target.ApplyDamage(total)
	state.AddLogEntry(fmt.Sprintf("%s afflicts %s for %d (%d/%d HP)", actor.Name, target.Name, total, target.CurrentHP, target.MaxHP))
	if !target.CanAct() {
		return fmt.Sprintf("%s's effect tears through %s for %d damage, dropping them.", actor.Name, target.Name, total)
	}
	return fmt.Sprintf("%s's effect hits %s for %d damage.", actor.Name, target.Name, total)
}

// resolvePlayerAction maps a player action onto the same roll machinery.
func (o *Orchestrator) resolvePlayerAction(state *combat.State, actor *combat.Combatant, act *PlayerAction) string {
	switch act.Kind {
	case "attack":
		target := state.Combatant(act.TargetID)
		if target == nil {
			state.AddLogEntry(fmt.Sprintf("%s attacks a target that is not there", actor.Name))
			return "Your attack finds no target."
		}
		notation := act.Notation
		if notation == "" {
			notation = "1d6"
		}
		rolls := []tactician.RollRequest{
			{Kind: tactician.RollAttack, Notation: fmt.Sprintf("1d20+%d", actor.InitiativeBonus)},
			{Kind: tactician.RollDamage, Notation: notation},
		}
		return o.applyRolls(state, actor, target, rolls)

	case "heal":
		target := state.Combatant(act.TargetID)
		if target == nil {
			target = actor
		}
		rolls := []tactician.RollRequest{{Kind: tactician.RollEffect, Notation: act.Notation}}
		return o.applyRolls(state, actor, target, rolls)

	default:
		state.AddLogEntry(fmt.Sprintf("%s holds position", actor.Name))
		if act.Narration != "" {
			return act.Narration
		}
		return fmt.Sprintf("%s holds position, watching for an opening.", actor.Name)
	}
}

// finishTurn runs ACTION_RESOLVED and TURN_END: log the outcome, advance the
// index with round wrap, and check both end conditions.
func (o *Orchestrator) finishTurn(state *combat.State, actor *combat.Combatant, narration string) (*StepResult, error) {
	state.Phase = combat.PhaseActionResolved

	result := &StepResult{
		Phase:     combat.PhaseActionResolved,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		Narration: narration,
	}

	state.Phase = combat.PhaseTurnEnd
	if over, winner := state.CheckEnd(); over {
		state.End(winner)
		state.AddLogEntry(fmt.Sprintf("combat ends, %s win", winner))
		result.Phase = combat.PhaseCombatEnd
		result.CombatEnded = true
		result.Winner = winner
		o.logger.Info("combat ended",
			zap.String("combat_id", state.ID),
			zap.String("winner", string(winner)))
		return result, nil
	}

	o.wrapTurn(state)
	state.Phase = combat.PhaseTurnStart
	result.MoreAITurnsPending = o.nextActorIsAI(state)
	return result, nil
}

// wrapTurn advances the turn index, rolling into the next round at the end
// of the order.
func (o *Orchestrator) wrapTurn(state *combat.State) {
	state.Turn++
	if state.Turn >= len(state.Order) {
		state.Turn = 0
		state.Round++
	}
}

// nextActorIsAI reports whether the next actable combatant is AI-controlled,
// so the caller knows to keep stepping.
func (o *Orchestrator) nextActorIsAI(state *combat.State) bool {
	idx := state.Turn
	for i := 0; i < len(state.Order); i++ {
		c := state.Order[(idx+i)%len(state.Order)]
		if !c.CanAct() {
			continue
		}
		// A surprised combatant's skip resolves within the next Step call,
		// which then lands on whoever follows; treat it as AI-driveable.
		if c.Surprised {
			return true
		}
		return c.Controller == character.ControllerAI
	}
	return false
}

// buildTurnContext projects combat state into the tactician's view.
func (o *Orchestrator) buildTurnContext(state *combat.State, actor *combat.Combatant) *tactician.TurnContext {
	tc := &tactician.TurnContext{
		Actor:               combatantView(actor),
		LocationDescription: state.LocationDescription,
		Spells:              actor.Spells,
		Round:               state.Round,
	}
	for _, c := range state.Order {
		if c.ID == actor.ID || c.Status == combat.StatusDead {
			continue
		}
		if c.Side == actor.Side {
			tc.Allies = append(tc.Allies, combatantView(c))
		} else {
			tc.Opponents = append(tc.Opponents, combatantView(c))
		}
	}
	if n := len(state.Log); n > 0 {
		start := n - 5
		if start < 0 {
			start = 0
		}
		tc.Transcript = state.Log[start:]
	}
	return tc
}

func combatantView(c *combat.Combatant) tactician.CombatantView {
	return tactician.CombatantView{
		ID:        c.ID,
		Name:      c.Name,
		CurrentHP: c.CurrentHP,
		MaxHP:     c.MaxHP,
		AC:        c.AC,
		Status:    string(c.Status),
	}
}

func doNothingDecision(actor *combat.Combatant) *tactician.Decision {
	return &tactician.Decision{
		Narration: fmt.Sprintf("%s hesitates and does nothing.", actor.Name),
	}
}

// rollIntoOrder rolls initiative for one combatant.
func (o *Orchestrator) rollIntoOrder(c *combat.Combatant) (*combat.Combatant, error) {
	result, err := o.roller.RollD20(dice.ModeNormal)
	if err != nil {
		return nil, errors.Wrap(err, "failed to roll initiative")
	}
	c.Initiative = result.Kept + c.InitiativeBonus
	return c, nil
}
