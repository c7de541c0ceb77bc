package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/fvicente/mazmorra/internal/clients/narrator"
	"github.com/fvicente/mazmorra/internal/clients/srd"
	"github.com/fvicente/mazmorra/internal/clients/tactician"
	"github.com/fvicente/mazmorra/internal/config"
	"github.com/fvicente/mazmorra/internal/dice"
	"github.com/fvicente/mazmorra/internal/domain/action"
	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	combatdomain "github.com/fvicente/mazmorra/internal/domain/combat"
	"github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/matching"
	"github.com/fvicente/mazmorra/internal/observability"
	"github.com/fvicente/mazmorra/internal/repositories/sessions"
	combatsvc "github.com/fvicente/mazmorra/internal/services/combat"
	"github.com/fvicente/mazmorra/internal/services/exploration"
	"github.com/fvicente/mazmorra/internal/services/initiation"
	"github.com/fvicente/mazmorra/internal/services/narrative"
	"github.com/fvicente/mazmorra/internal/services/navigation"
	triggersvc "github.com/fvicente/mazmorra/internal/services/trigger"
	worldsvc "github.com/fvicente/mazmorra/internal/services/world"
	"github.com/fvicente/mazmorra/internal/uuid"
)

// aiTurnPause keeps back-to-back AI combat turns readable at the terminal.
const aiTurnPause = 1200 * time.Millisecond

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	adv, err := adventure.Load(cfg.Adventure.Path)
	if err != nil {
		log.Fatalf("Failed to load adventure %s: %v", cfg.Adventure.Path, err)
	}

	// Try to connect to Redis if URL is provided; fall back to in-memory.
	repo := sessions.NewInMemoryRepository()
	if cfg.Redis.URL != "" {
		opts, parseErr := redis.ParseURL(cfg.Redis.URL)
		if parseErr != nil {
			log.Printf("Failed to parse Redis URL: %v", parseErr)
			log.Println("Falling back to in-memory persistence")
		} else {
			redisClient := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			pingErr := redisClient.Ping(ctx).Err()
			cancel()
			if pingErr != nil {
				log.Printf("Failed to connect to Redis: %v", pingErr)
				log.Println("Falling back to in-memory persistence")
			} else {
				redisRepo, repoErr := sessions.NewRedisRepository(&sessions.RedisRepoConfig{Client: redisClient})
				if repoErr != nil {
					log.Fatalf("Failed to create Redis repository: %v", repoErr)
				}
				repo = redisRepo
				log.Println("Using Redis for persistence")
			}
		}
	}

	srdClient, err := srd.New(&srd.Config{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	})
	if err != nil {
		log.Fatalf("Failed to create SRD client: %v", err)
	}

	narr, err := narrator.NewOpenAINarrator(&narrator.OpenAIConfig{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.NarratorModel,
	})
	if err != nil {
		log.Fatalf("Failed to create narrator: %v", err)
	}
	tact, err := tactician.NewOpenAITactician(&tactician.OpenAIConfig{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.TacticianModel,
	})
	if err != nil {
		log.Fatalf("Failed to create tactician: %v", err)
	}

	uuidGen := uuid.NewGoogleUUIDGenerator()
	matcher := matching.New()

	worldService, err := worldsvc.New(&worldsvc.Config{Logger: logger, UUIDGenerator: uuidGen})
	if err != nil {
		log.Fatalf("Failed to create world service: %v", err)
	}
	navService, err := navigation.New(&navigation.Config{Logger: logger})
	if err != nil {
		log.Fatalf("Failed to create navigation service: %v", err)
	}
	expService, err := exploration.New(&exploration.Config{Logger: logger, WorldService: worldService})
	if err != nil {
		log.Fatalf("Failed to create exploration service: %v", err)
	}
	trigEvaluator, err := triggersvc.New(&triggersvc.Config{
		Logger:             logger,
		ExplorationService: expService,
		Matcher:            matcher,
	})
	if err != nil {
		log.Fatalf("Failed to create trigger evaluator: %v", err)
	}
	initService, err := initiation.New(&initiation.Config{
		Logger:        logger,
		WorldService:  worldService,
		SRDClient:     srdClient,
		UUIDGenerator: uuidGen,
	})
	if err != nil {
		log.Fatalf("Failed to create initiation service: %v", err)
	}
	manager, err := narrative.New(&narrative.Config{
		Logger:      logger,
		Navigation:  navService,
		World:       worldService,
		Exploration: expService,
		Trigger:     trigEvaluator,
		Initiation:  initService,
		Narrator:    narr,
		Reactor:     tact,
		Matcher:     matcher,
	})
	if err != nil {
		log.Fatalf("Failed to create narrative manager: %v", err)
	}
	orchestrator, err := combatsvc.New(&combatsvc.Config{
		Logger:        logger,
		Roller:        dice.NewRoller(),
		Tactician:     tact,
		UUIDGenerator: uuidGen,
	})
	if err != nil {
		log.Fatalf("Failed to create combat orchestrator: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	snap := newSession(uuidGen, adv)
	if err := repo.Create(ctx, snap); err != nil {
		log.Fatalf("Failed to create session: %v", err)
	}

	g := &game{
		adventure:    adv,
		manager:      manager,
		orchestrator: orchestrator,
		matcher:      matcher,
		repo:         repo,
		snap:         snap,
		in:           bufio.NewScanner(os.Stdin),
	}
	if err := g.run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("game loop ended with error")
		log.Fatalf("%v", err)
	}
	fmt.Println("\nFarewell, adventurer.")
}

// newSession creates a fresh snapshot with the sample party at the
// adventure's start.
func newSession(gen uuid.Generator, adv *adventure.Adventure) *sessions.Snapshot {
	return &sessions.Snapshot{
		ID:                gen.New(),
		AdventureTitle:    adv.Title,
		Party:             defaultParty(),
		CurrentLocationID: adv.StartLocationID,
		World:             world.NewState(),
	}
}

func intPtr(v int) *int { return &v }

// defaultParty is the built-in hero-and-companion pair used until character
// creation lands.
//
// TODO: replace with a party loaded from a character file once the sheet
// format settles.
func defaultParty() []*character.Character {
	return []*character.Character{
		{
			ID:               "hero",
			Name:             "Kaelen",
			Controller:       character.ControllerPlayer,
			Level:            3,
			ProficiencyBonus: 2,
			Status:           character.StatusActive,
			Attributes: map[character.Attribute]*character.AbilityScore{
				character.AttributeStrength:     {Score: 16, Bonus: intPtr(3)},
				character.AttributeDexterity:    {Score: 14, Bonus: intPtr(2)},
				character.AttributeConstitution: {Score: 15, Bonus: intPtr(2)},
				character.AttributeIntelligence: {Score: 10, Bonus: intPtr(0)},
				character.AttributeWisdom:       {Score: 13, Bonus: intPtr(1)},
				character.AttributeCharisma:     {Score: 12, Bonus: intPtr(1)},
			},
			Skills: []*character.Skill{
				{Name: "Athletics", Proficient: true},
				{Name: "Perception", Proficient: true},
			},
			HP: character.HitPoints{Current: 28, Max: 28},
			AC: 16,
		},
		{
			ID:               "companion",
			Name:             "Mirena",
			Controller:       character.ControllerAI,
			Level:            3,
			ProficiencyBonus: 2,
			Status:           character.StatusActive,
			Attributes: map[character.Attribute]*character.AbilityScore{
				character.AttributeStrength:     {Score: 10, Bonus: intPtr(0)},
				character.AttributeDexterity:    {Score: 16, Bonus: intPtr(3)},
				character.AttributeConstitution: {Score: 12, Bonus: intPtr(1)},
				character.AttributeIntelligence: {Score: 13, Bonus: intPtr(1)},
				character.AttributeWisdom:       {Score: 14, Bonus: intPtr(2)},
				character.AttributeCharisma:     {Score: 11, Bonus: intPtr(0)},
			},
			Skills: []*character.Skill{
				{Name: "Stealth", Proficient: true},
				{Name: "Perception", Proficient: true},
			},
			HP:     character.HitPoints{Current: 21, Max: 21},
			AC:     14,
			Spells: []string{"cure wounds", "faerie fire"},
		},
	}
}

type game struct {
	adventure    *adventure.Adventure
	manager      *narrative.Manager
	orchestrator *combatsvc.Orchestrator
	matcher      *matching.Matcher
	repo         sessions.Repository
	snap         *sessions.Snapshot
	in           *bufio.Scanner
}

func (g *game) run(ctx context.Context) error {
	fmt.Printf("=== %s ===\n\n", g.adventure.Title)

	// Opening turn: describe the start location before the first prompt.
	result, err := g.manager.TakeTurn(ctx, &narrative.TurnInput{
		Adventure:      g.adventure,
		Session:        g.snap,
		Action:         &action.Interpreted{Type: action.TypeNarrate},
		RawInput:       "The party arrives.",
		AdventureStart: true,
	})
	if err != nil {
		return err
	}
	fmt.Println(wrap(result.Narration))
	if err := g.afterTurn(ctx, result); err != nil {
		return err
	}

	for {
		fmt.Print("\n> ")
		if !g.in.Scan() {
			return g.in.Err()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		input := strings.TrimSpace(g.in.Text())
		if input == "" {
			continue
		}
		switch strings.ToLower(input) {
		case "quit", "exit", "salir":
			return nil
		}

		result, err := g.manager.TakeTurn(ctx, &narrative.TurnInput{
			Adventure: g.adventure,
			Session:   g.snap,
			Action:    interpret(input),
			RawInput:  input,
		})
		if err != nil {
			fmt.Printf("Something goes wrong: %v\n", err)
			continue
		}
		printReactions(result.PreReactions)
		fmt.Println(wrap(result.Narration))
		printReactions(result.PostReactions)

		if err := g.afterTurn(ctx, result); err != nil {
			return err
		}
	}
}

// afterTurn persists the session and, when the turn triggered combat, runs
// the encounter to completion before returning control to exploration.
func (g *game) afterTurn(ctx context.Context, result *narrative.TurnResult) error {
	if result.CombatPayload != nil {
		if err := g.runCombat(ctx, result.CombatPayload); err != nil {
			return err
		}
	}
	return g.repo.Update(ctx, g.snap)
}

func (g *game) runCombat(ctx context.Context, payload *initiation.Payload) error {
	state, err := g.orchestrator.Setup(payload)
	if err != nil {
		return err
	}
	g.snap.InCombat = true
	g.snap.Combat = state

	fmt.Println("\n--- Combat! ---")
	if state.Hook != "" {
		fmt.Println(wrap(state.Hook))
	}

	for ctx.Err() == nil {
		res, err := g.orchestrator.Step(ctx, state)
		if err != nil {
			return err
		}
		if res.Narration != "" {
			fmt.Println(wrap(res.Narration))
		}
		if res.CombatEnded {
			break
		}
		if res.AwaitingPlayer {
			res, err = g.promptPlayerAction(state, res.ActorName)
			if err != nil {
				return err
			}
			if res.Narration != "" {
				fmt.Println(wrap(res.Narration))
			}
			if res.CombatEnded {
				break
			}
		} else if res.MoreAITurnsPending {
			time.Sleep(aiTurnPause)
		}
	}

	switch state.Winner {
	case combatdomain.SidePlayers:
		fmt.Println("--- Victory! ---")
	case combatdomain.SideEnemies:
		fmt.Println("--- The party falls... ---")
	}

	for _, entry := range state.Log {
		g.snap.AppendDiceLog(entry)
	}
	g.snap.InCombat = false
	g.snap.Combat = state
	return ctx.Err()
}

// promptPlayerAction reads and resolves one player combat action. Input it
// cannot parse is re-prompted rather than wasted on a pass.
func (g *game) promptPlayerAction(state *combatdomain.State, actorName string) (*combatsvc.StepResult, error) {
	for {
		fmt.Printf("[%s] attack <target> [dice] | heal <ally> [dice] | pass: ", actorName)
		if !g.in.Scan() {
			return nil, g.in.Err()
		}
		act, ok := g.parseCombatInput(state, strings.TrimSpace(g.in.Text()))
		if !ok {
			fmt.Println("I don't know that target.")
			continue
		}
		return g.orchestrator.SubmitPlayerAction(state, act)
	}
}

func (g *game) parseCombatInput(state *combatdomain.State, input string) (*combatsvc.PlayerAction, bool) {
	fields := strings.Fields(strings.ToLower(input))
	if len(fields) == 0 {
		return &combatsvc.PlayerAction{Kind: "pass"}, true
	}

	kind := fields[0]
	switch kind {
	case "pass", "wait":
		return &combatsvc.PlayerAction{Kind: "pass"}, true
	case "attack", "hit", "strike":
		kind = "attack"
	case "heal", "cure":
		kind = "heal"
	default:
		// Treat bare input as an attack on the named target.
		fields = append([]string{"attack"}, fields...)
		kind = "attack"
	}

	args := fields[1:]
	notation := ""
	if n := len(args); n > 0 && strings.Contains(args[n-1], "d") && strings.ContainsAny(args[n-1], "0123456789") {
		notation = args[n-1]
		args = args[:n-1]
	}

	targetID, ok := g.resolveCombatTarget(state, strings.Join(args, " "))
	if !ok {
		return nil, false
	}
	return &combatsvc.PlayerAction{Kind: kind, TargetID: targetID, Notation: notation}, true
}

func (g *game) resolveCombatTarget(state *combatdomain.State, query string) (string, bool) {
	candidates := make([]matching.Candidate, 0, len(state.Order))
	for _, c := range state.Order {
		if c.Status == combatdomain.StatusDead {
			continue
		}
		candidates = append(candidates, matching.Candidate{ID: c.ID, Name: c.Name})
	}
	return g.matcher.Match(query, candidates)
}

// interpret is a keyword fallback for turning raw input into a typed action.
// The narrative manager handles target resolution; this only picks a verb.
func interpret(input string) *action.Interpreted {
	lowered := strings.ToLower(input)
	first, rest, _ := strings.Cut(lowered, " ")

	switch first {
	case "go", "move", "travel", "head", "walk", "enter", "ir", "viajar":
		return &action.Interpreted{Type: action.TypeMove, TargetID: strings.TrimSpace(rest), Raw: input}
	case "attack", "fight", "charge", "atacar":
		return &action.Interpreted{Type: action.TypeAttack, TargetID: strings.TrimSpace(rest), Raw: input}
	case "search", "examine", "inspect", "open", "use", "take", "touch", "abrir", "usar", "registrar":
		return &action.Interpreted{Type: action.TypeInteract, TargetID: strings.TrimSpace(rest), Raw: input}
	case "say", "tell", "ask", "shout":
		return &action.Interpreted{Type: action.TypeNarrate, Raw: input}
	}
	return &action.Interpreted{Type: action.TypeNarrate, Raw: input}
}

func printReactions(reactions []*tactician.Reaction) {
	for _, r := range reactions {
		if r == nil || r.Line == "" {
			continue
		}
		fmt.Printf("%s: %q\n", r.CharacterName, r.Line)
	}
}

// wrap is a no-op hook kept so output formatting stays in one place.
func wrap(s string) string {
	return strings.TrimSpace(s)
}
