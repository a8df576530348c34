package model

import "time"

type Trip struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Location     string    `json:"location"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	LastEditedBy string    `json:"last_edited_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TripWithStats is a Trip plus the aggregate counts the dashboard shows.
type TripWithStats struct {
	Trip
	GearTotal        int `json:"gear_total"`
	GearPacked       int `json:"gear_packed"`
	ParticipantCount int `json:"participant_count"`
}
