package state

import (
	"time"

	"parking-cli/api"
)

type SpotStatus string

const (
	StatusFree     SpotStatus = "free"
	StatusReserved SpotStatus = "reserved"
	StatusOccupied SpotStatus = "occupied"
)

// StatusOf labels a spot from the point of view of the holder of reservation.
func StatusOf(spot api.Spot, reservation *Reservation) SpotStatus {
	if !spot.Occupied {
		return StatusFree
	}
	if reservation != nil && reservation.Spot.Number == spot.Number {
		return StatusReserved
	}
	return StatusOccupied
}

// CanBook reports whether booking spot is offered: the spot is free and the
// user holds no reservation.
func CanBook(spot api.Spot, reservation *Reservation) bool {
	return !spot.Occupied && reservation == nil
}

func FormatReservationDate(t time.Time) string {
	return t.Local().Format("Mon 2 Jan 2006 at 15:04")
}
