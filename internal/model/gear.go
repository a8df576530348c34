package model

import "time"

// Gear condition values.
const (
	ConditionGood        = "Good"
	ConditionNeedsRepair = "Needs Repair"
	ConditionDispose     = "Dispose"
)

// Trip gear item status values.
const (
	GearStatusPending = "Pending"
	GearStatusPacked  = "Packed"
)

// Unassigned is the reserved assigned_to value meaning "no participant".
// It is a real string, distinct from NULL, so checklist rows can exist
// before anyone claims them.
const Unassigned = "unassigned"

// Gear is a shared inventory item, not owned by any trip.
type Gear struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Quantity     int       `json:"quantity"`
	Available    int       `json:"available"`
	Condition    string    `json:"condition"`
	PhotoKey     string    `json:"photo_key,omitempty"`
	PhotoURL     string    `json:"photo_url,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	LastEditedBy string    `json:"last_edited_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TripGearItem is one row of a trip's packing checklist. It references the
// shared inventory by id and a participant by display name (assigned_to),
// with Unassigned as the no-owner sentinel.
type TripGearItem struct {
	ID         int64     `json:"id"`
	TripID     int64     `json:"trip_id"`
	GearID     int64     `json:"gear_id"`
	Status     string    `json:"status"`
	AssignedTo string    `json:"assigned_to"`
	CreatedAt  time.Time `json:"created_at"`
	Gear       *Gear     `json:"gear,omitempty"`
}

// ValidCondition reports whether s is a recognized gear condition.
func ValidCondition(s string) bool {
	return s == ConditionGood || s == ConditionNeedsRepair || s == ConditionDispose
}

// ValidGearStatus reports whether s is a recognized checklist status.
func ValidGearStatus(s string) bool {
	return s == GearStatusPending || s == GearStatusPacked
}
