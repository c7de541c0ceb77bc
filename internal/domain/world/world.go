// Package world holds the mutable, session-scoped record of per-location
// dynamic facts: live enemies, door state, visitation and fog of war. It is
// the single mutable authority; the static adventure definition is consulted
// only for initial instantiation.
package world

import "github.com/fvicente/mazmorra/internal/domain/adventure"

// EnemyStatus is an enemy instance's combat life state.
type EnemyStatus string

const (
	EnemyStatusActive      EnemyStatus = "active"
	EnemyStatusUnconscious EnemyStatus = "unconscious"
	EnemyStatusDead        EnemyStatus = "dead"
)

// HitPoints is the canonical current/max HP shape.
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Enemy is a live instance spawned from an adventure entity template.
// Multiple instances of the same template have distinct instance ids.
// Dead enemies stay in the roster for narrative consistency.
type Enemy struct {
	InstanceID  string                `json:"instanceId"`
	TemplateID  string                `json:"templateId"`
	Name        string                `json:"name"`
	HP          HitPoints             `json:"hp"`
	AC          int                   `json:"ac"`
	Disposition adventure.Disposition `json:"disposition"`
	Status      EnemyStatus           `json:"status"`
}

// IsAlive reports whether the enemy can still fight.
func (e *Enemy) IsAlive() bool {
	return e.Status == EnemyStatusActive && e.HP.Current > 0
}

// ConnectionState is the per-session override for one connection's door.
type ConnectionState struct {
	IsOpen    bool `json:"isOpen"`
	IsLocked  bool `json:"isLocked"`
	IsBlocked bool `json:"isBlocked"`
}

// ConnectionUpdate is a partial update; nil fields are left untouched.
type ConnectionUpdate struct {
	IsOpen    *bool
	IsLocked  *bool
	IsBlocked *bool
}

// LocationState is the mutable companion to a static location. Created
// lazily on first access, persisted for the session.
type LocationState struct {
	Visited           bool                        `json:"visited"`
	VisitCount        int                         `json:"visitCount"`
	FirstVisitTurn    int                         `json:"firstVisitTurn"`
	LastVisitTurn     int                         `json:"lastVisitTurn"`
	Enemies           []*Enemy                    `json:"enemies,omitempty"`
	Connections       map[string]*ConnectionState `json:"connections,omitempty"`
	DiscoveredSecrets map[string]bool             `json:"discoveredSecrets,omitempty"`
	ClearedHazards    map[string]bool             `json:"clearedHazards,omitempty"`
}

// NewLocationState creates a location state with all-false/empty defaults.
func NewLocationState() *LocationState {
	return &LocationState{
		Connections:       make(map[string]*ConnectionState),
		DiscoveredSecrets: make(map[string]bool),
		ClearedHazards:    make(map[string]bool),
	}
}

// VisitStatus is the fog-of-war tri-state for a location.
type VisitStatus string

const (
	VisitUnknown VisitStatus = "unknown"
	VisitSeen    VisitStatus = "seen"
	VisitVisited VisitStatus = "visited"
)

// rank orders visit statuses; fog of war never regresses.
func (s VisitStatus) rank() int {
	switch s {
	case VisitSeen:
		return 1
	case VisitVisited:
		return 2
	default:
		return 0
	}
}

// AtLeast reports whether s is at or above other in the fog-of-war order.
func (s VisitStatus) AtLeast(other VisitStatus) bool {
	return s.rank() >= other.rank()
}

// GameTime is elapsed in-world time.
type GameTime struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Add returns the sum of two game times with minute and hour carrying.
func (t GameTime) Add(delta GameTime) GameTime {
	minutes := t.Minutes + delta.Minutes
	hours := t.Hours + delta.Hours + minutes/60
	days := t.Days + delta.Days + hours/24
	return GameTime{Days: days, Hours: hours % 24, Minutes: minutes % 60}
}

// IsZero reports whether no time has elapsed.
func (t GameTime) IsZero() bool {
	return t.Days == 0 && t.Hours == 0 && t.Minutes == 0
}

// State is the session-scoped world state.
type State struct {
	Locations map[string]*LocationState `json:"locations"`
	Fog       map[string]VisitStatus    `json:"fog"`
	Time      GameTime                  `json:"time"`
	Turn      int                       `json:"turn"`
}

// NewState creates an empty world state.
func NewState() *State {
	return &State{
		Locations: make(map[string]*LocationState),
		Fog:       make(map[string]VisitStatus),
	}
}

// VisitStatusOf returns the fog-of-war status for a location.
func (s *State) VisitStatusOf(locationID string) VisitStatus {
	if status, ok := s.Fog[locationID]; ok {
		return status
	}
	return VisitUnknown
}

// PromoteVisitStatus raises a location's fog-of-war status. Demotions are
// ignored: the status is monotonically non-decreasing.
func (s *State) PromoteVisitStatus(locationID string, status VisitStatus) {
	if status.rank() > s.VisitStatusOf(locationID).rank() {
		s.Fog[locationID] = status
	} else if _, ok := s.Fog[locationID]; !ok {
		s.Fog[locationID] = status
	}
}
