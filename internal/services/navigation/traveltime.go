package navigation

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/fvicente/mazmorra/internal/domain/adventure"
	"github.com/fvicente/mazmorra/internal/domain/world"
)

// Travel time defaults by edge character when no hint is present.
const (
	urbanMinutes    = 15
	overlandMinutes = 4 * 60
	directMinutes   = 1
)

// durationHint matches free-text time hints in Spanish or English, e.g.
// "30 minutos", "2 horas", "1 día", "45 min", "3 hours".
var durationHint = regexp.MustCompile(`(?i)(\d+)\s*(minutos?|minutes?|mins?|horas?|hours?|hrs?|d[ií]as?|days?)`)

// hopTravelTime resolves how long one hop takes. An explicit hint on the
// edge wins; otherwise the edge's character decides: crossing regions is
// overland travel, moves within a region are urban, and edges with no region
// information at all count as direct passage.
func hopTravelTime(conn *adventure.Connection, from, to *adventure.Location) world.GameTime {
	if t, ok := parseTravelTime(conn.TravelTime); ok {
		return t
	}

	switch {
	case from.Region == "" && to.Region == "":
		return minutesToGameTime(directMinutes)
	case from.Region == to.Region:
		return minutesToGameTime(urbanMinutes)
	default:
		return minutesToGameTime(overlandMinutes)
	}
}

// parseTravelTime extracts a duration from a free-text hint, summing every
// quantity it finds ("1 hora 30 minutos").
func parseTravelTime(hint string) (world.GameTime, bool) {
	if strings.TrimSpace(hint) == "" {
		return world.GameTime{}, false
	}

	matches := durationHint.FindAllStringSubmatch(hint, -1)
	if len(matches) == 0 {
		return world.GameTime{}, false
	}

	minutes := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		unit := strings.ToLower(m[2])
		switch {
		case strings.HasPrefix(unit, "min"):
			minutes += n
		case strings.HasPrefix(unit, "hora"), strings.HasPrefix(unit, "hour"), strings.HasPrefix(unit, "hr"):
			minutes += n * 60
		default: // días/days
			minutes += n * 24 * 60
		}
	}
	if minutes == 0 {
		return world.GameTime{}, false
	}
	return minutesToGameTime(minutes), true
}

// minutesToGameTime normalizes a total minute count into days/hours/minutes.
func minutesToGameTime(minutes int) world.GameTime {
	return world.GameTime{}.Add(world.GameTime{Minutes: minutes})
}
