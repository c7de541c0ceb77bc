// Package adventure models the immutable adventure definition: the location
// graph, its hazards and interactables, and the entity templates enemies are
// spawned from. Data is read-only after load except for load-time
// sanitization of broken references.
package adventure

// Visibility controls whether a connection can be seen into from outside.
type Visibility string

const (
	VisibilityOpen       Visibility = "open"
	VisibilityRestricted Visibility = "restricted"
)

// ExplorationMode tags how a location is explored.
type ExplorationMode string

const (
	ModeSafe       ExplorationMode = "safe"
	ModeDungeon    ExplorationMode = "dungeon"
	ModeWilderness ExplorationMode = "wilderness"
)

// Disposition is an entity's narrative stance, distinct from combat status.
type Disposition string

const (
	DispositionHostile  Disposition = "hostile"
	DispositionHidden   Disposition = "hidden"
	DispositionFriendly Disposition = "friendly"
	DispositionNeutral  Disposition = "neutral"
)

// HazardType classifies a location hazard.
type HazardType string

const (
	HazardAmbush HazardType = "ambush"
	HazardMimic  HazardType = "mimic"
	HazardTrap   HazardType = "trap"
)

// Connection is an edge in the location graph.
type Connection struct {
	TargetID      string     `json:"targetId"`
	Direction     string     `json:"direction,omitempty"`
	Description   string     `json:"description,omitempty"`
	Visibility    Visibility `json:"visibility,omitempty"`
	IsOpen        *bool      `json:"isOpen,omitempty"`
	IsLocked      bool       `json:"isLocked,omitempty"`
	IsBlocked     bool       `json:"isBlocked,omitempty"`
	BlockedReason string     `json:"blockedReason,omitempty"`
	RequiredKeyID string     `json:"requiredKeyId,omitempty"`
	TravelTime    string     `json:"travelTime,omitempty"` // free-text hint, e.g. "30 minutos"
}

// Hazard is a latent threat in a location.
type Hazard struct {
	ID          string     `json:"id"`
	Name        string     `json:"name,omitempty"`
	Type        HazardType `json:"type"`
	Active      bool       `json:"active"`
	DetectionDC int        `json:"detectionDC"`
	Narration   string     `json:"narration,omitempty"` // shown when the hazard triggers
}

// Interactable is an object players can examine or use.
type Interactable struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// HitPoints mirrors the canonical current/max shape used for live enemies.
type HitPoints struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// Entity is a template for a combat-capable non-player entity. Instances
// spawned from it get their own ids. Stats carries the legacy flat shape
// (e.g. stats.hp) still found in older adventure files; SRDRef points at an
// external monster entry used to hydrate missing stats.
type Entity struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Disposition Disposition    `json:"disposition,omitempty"`
	HP          *HitPoints     `json:"hp,omitempty"`
	AC          int            `json:"ac,omitempty"`
	Stats       map[string]int `json:"stats,omitempty"`
	SRDRef      string         `json:"srdRef,omitempty"`
}

// MaxHP resolves the template's hit points: the canonical shape wins, then
// the legacy stats.hp field, then stats.maxHp. Zero means unknown and is
// left for SRD hydration at combat initiation.
func (e *Entity) MaxHP() int {
	if e.HP != nil && e.HP.Max > 0 {
		return e.HP.Max
	}
	if hp, ok := e.Stats["hp"]; ok && hp > 0 {
		return hp
	}
	if hp, ok := e.Stats["maxHp"]; ok && hp > 0 {
		return hp
	}
	return 0
}

// ArmorClass resolves the template's AC, falling back to the legacy stats
// shape, then a baseline of 10.
func (e *Entity) ArmorClass() int {
	if e.AC > 0 {
		return e.AC
	}
	if ac, ok := e.Stats["ac"]; ok && ac > 0 {
		return ac
	}
	return 10
}

// Location is a static node in the adventure graph.
type Location struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Region          string          `json:"region,omitempty"`
	Mode            ExplorationMode `json:"mode,omitempty"`
	LightLevel      string          `json:"lightLevel,omitempty"`
	Connections     []*Connection   `json:"connections,omitempty"`
	Exits           []string        `json:"exits,omitempty"` // legacy flat edge list
	Hazards         []*Hazard       `json:"hazards,omitempty"`
	Interactables   []*Interactable `json:"interactables,omitempty"`
	EntitiesPresent []string        `json:"entitiesPresent,omitempty"`
}

// Adventure is the full static definition loaded from JSON.
type Adventure struct {
	Title           string               `json:"title"`
	StartLocationID string               `json:"startLocationId"`
	Locations       map[string]*Location `json:"locations"`
	Entities        map[string]*Entity   `json:"entities,omitempty"`
}

// Location returns the location with the given id, or nil.
func (a *Adventure) Location(id string) *Location {
	if a == nil {
		return nil
	}
	return a.Locations[id]
}

// Entity returns the entity template with the given id, or nil.
func (a *Adventure) Entity(id string) *Entity {
	if a == nil {
		return nil
	}
	return a.Entities[id]
}

// Edges returns the location's outgoing connections merged with its legacy
// exits, de-duplicated by target. Legacy exits become plain open edges.
func (l *Location) Edges() []*Connection {
	seen := make(map[string]bool, len(l.Connections)+len(l.Exits))
	edges := make([]*Connection, 0, len(l.Connections)+len(l.Exits))

	for _, conn := range l.Connections {
		if conn == nil || conn.TargetID == "" || seen[conn.TargetID] {
			continue
		}
		seen[conn.TargetID] = true
		edges = append(edges, conn)
	}
	for _, target := range l.Exits {
		if target == "" || seen[target] {
			continue
		}
		seen[target] = true
		edges = append(edges, &Connection{TargetID: target, Visibility: VisibilityOpen})
	}
	return edges
}

// ActiveHazards returns the location's active hazards of the given type;
// an empty type matches all.
func (l *Location) ActiveHazards(hazardType HazardType) []*Hazard {
	var active []*Hazard
	for _, h := range l.Hazards {
		if !h.Active {
			continue
		}
		if hazardType != "" && h.Type != hazardType {
			continue
		}
		active = append(active, h)
	}
	return active
}
