package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"parking-cli/api"
)

func TestFilterNoCriteriaIsIdentity(t *testing.T) {
	spots := sampleSpots()
	assert.Equal(t, spots, Filter(spots, Criteria{}))
}

func TestFilterByFloor(t *testing.T) {
	spots := []api.Spot{
		{Number: "1", Floor: 0},
		{Number: "2", Floor: 1},
		{Number: "3", Floor: 2},
		{Number: "4", Floor: 1, Occupied: true},
	}

	got := Filter(spots, Criteria{Floor: FloorFilter(1)})
	assert.Equal(t, []api.Spot{spots[1], spots[3]}, got)
}

func TestFilterByState(t *testing.T) {
	spots := sampleSpots()

	free := Filter(spots, Criteria{Occupied: StateFilter(false)})
	for _, spot := range free {
		assert.False(t, spot.Occupied)
	}
	assert.Len(t, free, 4)

	occupied := Filter(spots, Criteria{Occupied: StateFilter(true)})
	assert.Equal(t, []api.Spot{spots[1], spots[3]}, occupied)
}

func TestFilterByQueryIsSubstring(t *testing.T) {
	spots := sampleSpots()

	got := Filter(spots, Criteria{Query: "A1"})
	assert.Equal(t, []api.Spot{spots[0], spots[5]}, got)

	assert.Empty(t, Filter(spots, Criteria{Query: "a1"}))
}

func TestFilterCombinesPredicates(t *testing.T) {
	spots := sampleSpots()

	got := Filter(spots, Criteria{Query: "A", Floor: FloorFilter(1), Occupied: StateFilter(true)})
	assert.Equal(t, []api.Spot{{Number: "A2", Floor: 1, Occupied: true}}, got)
}

func TestFilterNegativeFloor(t *testing.T) {
	got := Filter(sampleSpots(), Criteria{Floor: FloorFilter(-1)})
	assert.Equal(t, []api.Spot{{Number: "P-1", Floor: -1}}, got)
}

func TestFilterIsIdempotent(t *testing.T) {
	criteria := Criteria{Query: "A", Occupied: StateFilter(false)}
	once := Filter(sampleSpots(), criteria)
	twice := Filter(once, criteria)
	assert.Equal(t, once, twice)
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	spots := sampleSpots()
	_ = Filter(spots, Criteria{Floor: FloorFilter(2)})
	assert.Equal(t, sampleSpots(), spots)
}
