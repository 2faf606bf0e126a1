// Package state holds the two client-side stores (identity and spots) and
// the pure projections computed from them.
package state

import "time"

// State composes the identity and spot stores. A single State is built at
// startup and handed to whatever needs it.
type State struct {
	User    *IdentityStore
	Parking *SpotStore
}

func New() *State {
	return &State{
		User:    NewIdentityStore(time.Now),
		Parking: NewSpotStore(),
	}
}
