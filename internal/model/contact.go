package model

import "time"

// Emergency contact types.
const (
	ContactTypeRescue         = "Rescue"
	ContactTypeLocalAuthority = "Local Authority"
	ContactTypeEmbassy        = "Embassy"
	ContactTypeGuide          = "Guide"
)

type EmergencyContact struct {
	ID            int64     `json:"id"`
	TripID        int64     `json:"trip_id"`
	Name          string    `json:"name"`
	ContactNumber string    `json:"contact_number"`
	Type          string    `json:"type"`
	CreatedAt     time.Time `json:"created_at"`
}

// ValidContactType reports whether s is a recognized contact type.
func ValidContactType(s string) bool {
	switch s {
	case ContactTypeRescue, ContactTypeLocalAuthority, ContactTypeEmbassy, ContactTypeGuide:
		return true
	}
	return false
}
