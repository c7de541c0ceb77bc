package adventure

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fvicente/mazmorra/internal/errors"
)

// Load reads an adventure definition from a JSON file, validates it and
// sanitizes recoverable content problems.
func Load(path string) (*Adventure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read adventure file %q", path)
	}
	return Parse(data)
}

// Parse decodes, validates and sanitizes an adventure definition.
// Validation failures are aggregated: the returned error lists every issue
// found rather than stopping at the first. Dangling connection references
// are not errors; they are sanitized into flavor-text interactables.
func Parse(data []byte) (*Adventure, error) {
	var adv Adventure
	if err := json.Unmarshal(data, &adv); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeValidation, "failed to decode adventure JSON")
	}

	if issues := validate(&adv); issues.HasIssues() {
		return nil, issues
	}

	sanitize(&adv)
	return &adv, nil
}

func validate(adv *Adventure) *errors.ValidationErrors {
	issues := &errors.ValidationErrors{}

	if adv.StartLocationID == "" {
		issues.Add("startLocationId", "start location is required", "missing_id")
	} else if _, ok := adv.Locations[adv.StartLocationID]; !ok {
		issues.Add("startLocationId", fmt.Sprintf("start location %q does not exist", adv.StartLocationID), "broken_ref")
	}

	if len(adv.Locations) == 0 {
		issues.Add("locations", "at least one location is required", "empty")
	}

	for key, loc := range adv.Locations {
		path := fmt.Sprintf("locations.%s", key)
		if loc == nil {
			issues.Add(path, "location is null", "missing_value")
			continue
		}
		if loc.ID == "" {
			issues.Add(path+".id", "location id is required", "missing_id")
		} else if loc.ID != key {
			issues.Add(path+".id", fmt.Sprintf("location id %q does not match its key", loc.ID), "id_mismatch")
		}

		hazardIDs := make(map[string]bool)
		for i, h := range loc.Hazards {
			hazardPath := fmt.Sprintf("%s.hazards[%d]", path, i)
			if h.ID == "" {
				issues.Add(hazardPath+".id", "hazard id is required", "missing_id")
				continue
			}
			if hazardIDs[h.ID] {
				issues.Add(hazardPath+".id", fmt.Sprintf("duplicate hazard id %q", h.ID), "duplicate_id")
			}
			hazardIDs[h.ID] = true
		}

		for i, entityID := range loc.EntitiesPresent {
			if _, ok := adv.Entities[entityID]; !ok {
				issues.Add(fmt.Sprintf("%s.entitiesPresent[%d]", path, i),
					fmt.Sprintf("entity %q is not defined", entityID), "broken_ref")
			}
		}
	}

	for key, entity := range adv.Entities {
		path := fmt.Sprintf("entities.%s", key)
		if entity == nil {
			issues.Add(path, "entity is null", "missing_value")
			continue
		}
		if entity.ID == "" {
			issues.Add(path+".id", "entity id is required", "missing_id")
		}
		if entity.Name == "" {
			issues.Add(path+".name", "entity name is required", "missing_value")
		}
	}

	return issues
}

// sanitize converts dangling connection references into harmless flavor
// interactables (a bricked-up archway, a collapsed tunnel) instead of
// leaving edges into locations that do not exist.
func sanitize(adv *Adventure) {
	for _, loc := range adv.Locations {
		kept := loc.Connections[:0]
		for _, conn := range loc.Connections {
			if _, ok := adv.Locations[conn.TargetID]; ok {
				kept = append(kept, conn)
				continue
			}
			loc.Interactables = append(loc.Interactables, &Interactable{
				ID:          fmt.Sprintf("blocked-path-%s", conn.TargetID),
				Name:        "blocked passage",
				Description: blockedPathDescription(conn),
			})
		}
		loc.Connections = kept

		keptExits := loc.Exits[:0]
		for _, target := range loc.Exits {
			if _, ok := adv.Locations[target]; ok {
				keptExits = append(keptExits, target)
			}
		}
		loc.Exits = keptExits
	}
}

func blockedPathDescription(conn *Connection) string {
	if conn.Description != "" {
		return conn.Description
	}
	if conn.Direction != "" {
		return fmt.Sprintf("A passage to the %s ends abruptly in rubble.", conn.Direction)
	}
	return "A passage here ends abruptly in rubble."
}
