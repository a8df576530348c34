package model

import "time"

// TripShare grants read-only access to a trip via an opaque token.
type TripShare struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
}

// SharedTrip is the full read-only aggregate served to share-link visitors.
type SharedTrip struct {
	Trip              Trip               `json:"trip"`
	Participants      []Participant      `json:"participants"`
	Itinerary         []ItineraryItem    `json:"itinerary"`
	GearItems         []TripGearItem     `json:"gear_items"`
	EmergencyContacts []EmergencyContact `json:"emergency_contacts"`
	Documents         []TripDocument     `json:"documents"`
}
