package model

import "time"

// TripDocument is a stored file attached to a trip. FilePath is the blob
// store key, not a local path.
type TripDocument struct {
	ID        int64     `json:"id"`
	TripID    int64     `json:"trip_id"`
	Name      string    `json:"name"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}
