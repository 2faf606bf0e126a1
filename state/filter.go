package state

import (
	"strings"

	"parking-cli/api"
)

// Criteria selects spots. A nil Floor or Occupied means "no filter".
type Criteria struct {
	Query    string
	Floor    *int
	Occupied *bool
}

func FloorFilter(floor int) *int { return &floor }

func StateFilter(occupied bool) *bool { return &occupied }

func (c Criteria) Match(spot api.Spot) bool {
	if !strings.Contains(spot.Number, c.Query) {
		return false
	}
	if c.Floor != nil && *c.Floor != spot.Floor {
		return false
	}
	if c.Occupied != nil && *c.Occupied != spot.Occupied {
		return false
	}
	return true
}

// Filter returns the spots matching c, keeping their relative order.
// The input is never modified.
func Filter(spots []api.Spot, c Criteria) []api.Spot {
	filtered := make([]api.Spot, 0, len(spots))
	for _, spot := range spots {
		if c.Match(spot) {
			filtered = append(filtered, spot)
		}
	}
	return filtered
}
