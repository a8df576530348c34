package model

import "time"

// ItineraryItem is one day of a trip's schedule. Within a trip, day values
// always form the contiguous sequence 1..N with no gaps or duplicates.
type ItineraryItem struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	Day       int       `json:"day"`
	Location  string    `json:"location"`
	Activity  string    `json:"activity"`
	TimeLabel string    `json:"time"`
	CreatedAt time.Time `json:"created_at"`
}
