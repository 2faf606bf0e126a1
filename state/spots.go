package state

import (
	"sort"

	"parking-cli/api"
)

type SpotStore struct {
	spots  []api.Spot
	floors []int
}

func NewSpotStore() *SpotStore {
	return &SpotStore{}
}

// Spots returns a copy of the stored spots in their original order.
func (s *SpotStore) Spots() []api.Spot {
	out := make([]api.Spot, len(s.spots))
	copy(out, s.spots)
	return out
}

// Floors returns the sorted distinct floors of the stored spots.
func (s *SpotStore) Floors() []int {
	out := make([]int, len(s.floors))
	copy(out, s.floors)
	return out
}

// Spot looks a spot up by number.
func (s *SpotStore) Spot(number string) (api.Spot, bool) {
	for _, spot := range s.spots {
		if spot.Number == number {
			return spot, true
		}
	}
	return api.Spot{}, false
}

// Resolve finds the stored counterpart of spot, first by its API key (the
// server id, or the number when there is none) and then by number.
func (s *SpotStore) Resolve(spot api.Spot) (api.Spot, bool) {
	key := spot.Key()
	for _, stored := range s.spots {
		if stored.Key() == key {
			return stored, true
		}
	}
	return s.Spot(spot.Number)
}

// SetParkingSpots replaces the collection. An empty list leaves the store as is.
func (s *SpotStore) SetParkingSpots(spots []api.Spot) {
	if len(spots) == 0 {
		return
	}
	s.spots = make([]api.Spot, len(spots))
	copy(s.spots, spots)
	s.floors = distinctFloors(s.spots)
}

// ChangeSpotState flips the occupancy of the stored spot with the same number.
// Unknown numbers are ignored.
func (s *SpotStore) ChangeSpotState(spot api.Spot) {
	for i := range s.spots {
		if s.spots[i].Number == spot.Number {
			s.spots[i].Occupied = !s.spots[i].Occupied
			return
		}
	}
}

func distinctFloors(spots []api.Spot) []int {
	set := map[int]struct{}{}
	for _, spot := range spots {
		set[spot.Floor] = struct{}{}
	}
	floors := make([]int, 0, len(set))
	for floor := range set {
		floors = append(floors, floor)
	}
	sort.Ints(floors)
	return floors
}
