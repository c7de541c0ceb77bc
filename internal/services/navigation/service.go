// Package navigation resolves party movement through the adventure's location
// graph: pathfinding, door and lock validation hop by hop, and in-world
// travel time accounting.
package navigation

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/character"
	"github.com/fvicente/mazmorra/internal/domain/world"
	"github.com/fvicente/mazmorra/internal/errors"
)

// FailureReason tags why a movement could not complete.
type FailureReason string

const (
	FailureNone    FailureReason = ""
	FailureNoPath  FailureReason = "no_known_path"
	FailureBlocked FailureReason = "blocked"
	FailureLocked  FailureReason = "locked"
	FailureClosed  FailureReason = "closed"
)

// MovementResult reports the outcome of a movement attempt. On failure,
// ReachedID is how far the party actually got.
type MovementResult struct {
	Moved      bool
	FromID     string
	ReachedID  string
	TargetID   string
	Path       []string // location ids traversed, excluding origin
	TravelTime world.GameTime
	Narration  string
	Failure    FailureReason
	Reason     string // human-readable failure detail
}

// Config holds service dependencies.
type Config struct {
	Logger *zap.Logger
}

// Service resolves movement over the adventure graph.
type Service struct {
	logger *zap.Logger
}

// New creates a navigation service.
func New(cfg *Config) (*Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{logger: logger}, nil
}

// ResolveMovement moves the party from its current location toward a target.
// Movement within the same region skips pathfinding and costs a fixed few
// minutes. Otherwise the shortest path is walked hop by hop; the first
// blocked, locked or closed hop aborts with partial progress.
func (s *Service) ResolveMovement(adv *adventure.Adventure, state *world.State, party []*character.Character, fromID, targetID string) (*MovementResult, error) {
	from := adv.Location(fromID)
	if from == nil {
		return nil, errors.NotFoundf("location %s not found", fromID)
	}
	target := adv.Location(targetID)
	if target == nil {
		return nil, errors.NotFoundf("location %s not found", targetID)
	}

	if fromID == targetID {
		return &MovementResult{Moved: true, FromID: fromID, ReachedID: fromID, TargetID: targetID,
			Narration: "You are already there."}, nil
	}

	// Adjacent same-region moves are everyday movement, not a journey.
	if from.Region != "" && from.Region == target.Region && directEdge(from, targetID) != nil {
		conn := directEdge(from, targetID)
		if res := s.validateHop(state, from, conn, party); res != nil {
			res.FromID = fromID
			res.ReachedID = fromID
			res.TargetID = targetID
			return res, nil
		}
		return &MovementResult{
			Moved:      true,
			FromID:     fromID,
			ReachedID:  targetID,
			TargetID:   targetID,
			Path:       []string{targetID},
			TravelTime: world.GameTime{Minutes: 5},
			Narration:  hopNarration(conn, target),
		}, nil
	}

	path := shortestPath(adv, fromID, targetID)
	if path == nil {
		return &MovementResult{
			FromID:    fromID,
			ReachedID: fromID,
			TargetID:  targetID,
			Failure:   FailureNoPath,
			Reason:    fmt.Sprintf("no known path from %s to %s", from.Title, target.Title),
		}, nil
	}

	var (
		total     world.GameTime
		traversed []string
		fragments []string
		current   = from
	)
	for _, nextID := range path {
		conn := directEdge(current, nextID)
		next := adv.Location(nextID)
		if conn == nil || next == nil {
			// Path came from Edges(); a missing edge here is a graph bug.
			return nil, errors.Internalf("path hop %s -> %s has no edge", current.ID, nextID)
		}

		if res := s.validateHop(state, current, conn, party); res != nil {
			res.FromID = fromID
			res.ReachedID = current.ID
			res.TargetID = targetID
			res.Path = traversed
			res.TravelTime = total
			return res, nil
		}

		total = total.Add(hopTravelTime(conn, current, next))
		traversed = append(traversed, nextID)
		fragments = append(fragments, hopNarration(conn, next))
		current = next
	}

	narration := fragments[len(fragments)-1]
	if len(fragments) > 1 {
		narration = journeyNarration(target, fragments)
	}

	s.logger.Debug("movement resolved",
		zap.String("from", fromID),
		zap.String("to", targetID),
		zap.Int("hops", len(traversed)))

	return &MovementResult{
		Moved:      true,
		FromID:     fromID,
		ReachedID:  targetID,
		TargetID:   targetID,
		Path:       traversed,
		TravelTime: total,
		Narration:  narration,
	}, nil
}

// AdvanceWorldTime adds elapsed travel time to the session clock.
func (s *Service) AdvanceWorldTime(state *world.State, delta world.GameTime) {
	if delta.IsZero() {
		return
	}
	state.Time = state.Time.Add(delta)
}

// validateHop checks one edge in order: hard blocks first, then locks, then
// door state. A runtime connection override replaces the static flags
// wholesale, so clearing a rubble pile or unlocking a door at play time
// sticks. Returns nil when the hop is passable.
func (s *Service) validateHop(state *world.State, from *adventure.Location, conn *adventure.Connection, party []*character.Character) *MovementResult {
	override := connectionOverride(state, from.ID, conn.TargetID)

	blocked := conn.IsBlocked
	if override != nil {
		blocked = override.IsBlocked
	}
	if blocked {
		reason := conn.BlockedReason
		if reason == "" {
			reason = "the way is blocked"
		}
		return &MovementResult{Failure: FailureBlocked, Reason: reason}
	}

	locked := conn.IsLocked
	if override != nil {
		locked = override.IsLocked
	}
	if locked {
		if conn.RequiredKeyID == "" || !character.PartyHasItem(party, conn.RequiredKeyID) {
			return &MovementResult{Failure: FailureLocked, Reason: "the way is locked"}
		}
	}

	if !doorOpen(override, conn) {
		return &MovementResult{Failure: FailureClosed, Reason: "the way is closed"}
	}
	return nil
}

// connectionOverride returns the runtime state recorded for an edge, or nil
// when the edge has never been touched at play time.
func connectionOverride(state *world.State, fromID, targetID string) *world.ConnectionState {
	if ls, ok := state.Locations[fromID]; ok {
		return ls.Connections[targetID]
	}
	return nil
}

// doorOpen resolves door state with the runtime override taking precedence
// over the static definition; restricted visibility defaults to closed.
func doorOpen(override *world.ConnectionState, conn *adventure.Connection) bool {
	if override != nil {
		return override.IsOpen
	}
	if conn.IsOpen != nil {
		return *conn.IsOpen
	}
	return conn.Visibility != adventure.VisibilityRestricted
}

// directEdge returns the edge from a location to a target, or nil.
func directEdge(loc *adventure.Location, targetID string) *adventure.Connection {
	for _, conn := range loc.Edges() {
		if conn.TargetID == targetID {
			return conn
		}
	}
	return nil
}

// shortestPath runs a breadth-first search over the merged edge lists and
// returns the hop sequence excluding the origin, or nil when unreachable.
func shortestPath(adv *adventure.Adventure, fromID, targetID string) []string {
	visited := map[string]bool{fromID: true}
	parent := make(map[string]string)
	queue := []string{fromID}

	for len(queue) > 0 {
		currentID := queue[0]
		queue = queue[1:]

		if currentID == targetID {
			var path []string
			for id := targetID; id != fromID; id = parent[id] {
				path = append([]string{id}, path...)
			}
			return path
		}

		loc := adv.Location(currentID)
		if loc == nil {
			continue
		}
		for _, conn := range loc.Edges() {
			if visited[conn.TargetID] || adv.Location(conn.TargetID) == nil {
				continue
			}
			visited[conn.TargetID] = true
			parent[conn.TargetID] = currentID
			queue = append(queue, conn.TargetID)
		}
	}
	return nil
}

// hopNarration describes a single hop, preferring the edge's own description.
func hopNarration(conn *adventure.Connection, next *adventure.Location) string {
	if conn.Description != "" {
		return conn.Description
	}
	return fmt.Sprintf("You head toward %s.", next.Title)
}

// journeyNarration frames a multi-hop trip.
func journeyNarration(target *adventure.Location, fragments []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The journey to %s takes you through several places. ", target.Title)
	b.WriteString(strings.Join(fragments, " "))
	return b.String()
}
