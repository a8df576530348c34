package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/fittra/trailstack/internal/model"
)

type GearStore struct {
	db *sql.DB
}

func NewGearStore(db *sql.DB) *GearStore {
	return &GearStore{db: db}
}

// --- Inventory methods ---

func scanGear(scanner interface{ Scan(...any) error }) (*model.Gear, error) {
	var g model.Gear
	err := scanner.Scan(
		&g.ID, &g.Name, &g.Type, &g.Quantity, &g.Available, &g.Condition,
		&g.PhotoKey, &g.Notes, &g.LastEditedBy, &g.CreatedAt, &g.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

const gearCols = `id, name, type, quantity, available, condition, photo_key, notes, last_edited_by, created_at, updated_at`

func (s *GearStore) GetByID(id int64) (*model.Gear, error) {
	row := s.db.QueryRow(`SELECT `+gearCols+` FROM gear WHERE id = ?`, id)
	g, err := scanGear(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get gear: %w", err)
	}
	return g, nil
}

func (s *GearStore) List() ([]model.Gear, error) {
	rows, err := s.db.Query(`SELECT ` + gearCols + ` FROM gear ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list gear: %w", err)
	}
	defer rows.Close()

	var gear []model.Gear
	for rows.Next() {
		g, err := scanGear(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gear: %w", err)
		}
		gear = append(gear, *g)
	}
	return gear, rows.Err()
}

func (s *GearStore) Create(name, gearType string, quantity, available int, condition, notes, editedBy string) (*model.Gear, error) {
	result, err := s.db.Exec(
		`INSERT INTO gear (name, type, quantity, available, condition, notes, last_edited_by) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, gearType, quantity, available, condition, notes, editedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert gear: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *GearStore) Update(id int64, name, gearType string, quantity, available int, condition, notes, editedBy string) (*model.Gear, error) {
	_, err := s.db.Exec(
		`UPDATE gear SET name = ?, type = ?, quantity = ?, available = ?, condition = ?, notes = ?, last_edited_by = ?, updated_at = ? WHERE id = ?`,
		name, gearType, quantity, available, condition, notes, editedBy, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update gear: %w", err)
	}
	return s.GetByID(id)
}

func (s *GearStore) SetPhotoKey(id int64, key string) (*model.Gear, error) {
	_, err := s.db.Exec(
		`UPDATE gear SET photo_key = ?, updated_at = ? WHERE id = ?`,
		key, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("set gear photo: %w", err)
	}
	return s.GetByID(id)
}

func (s *GearStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM gear WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete gear: %w", err)
	}
	return nil
}

// --- Trip checklist methods ---

func scanTripGearItem(scanner interface{ Scan(...any) error }) (*model.TripGearItem, error) {
	var item model.TripGearItem
	err := scanner.Scan(&item.ID, &item.TripID, &item.GearID, &item.Status, &item.AssignedTo, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const tripGearCols = `id, trip_id, gear_id, status, assigned_to, created_at`

func (s *GearStore) GetItemByID(id int64) (*model.TripGearItem, error) {
	row := s.db.QueryRow(`SELECT `+tripGearCols+` FROM trip_gear_items WHERE id = ?`, id)
	item, err := scanTripGearItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip gear item: %w", err)
	}
	return item, nil
}

// ListItemsByTrip returns a trip's checklist with the referenced inventory
// row joined onto each item.
func (s *GearStore) ListItemsByTrip(tripID int64) ([]model.TripGearItem, error) {
	rows, err := s.db.Query(
		`SELECT i.id, i.trip_id, i.gear_id, i.status, i.assigned_to, i.created_at,
		        g.id, g.name, g.type, g.quantity, g.available, g.condition,
		        g.photo_key, g.notes, g.last_edited_by, g.created_at, g.updated_at
		 FROM trip_gear_items i
		 JOIN gear g ON g.id = i.gear_id
		 WHERE i.trip_id = ?
		 ORDER BY i.created_at ASC, i.id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list trip gear: %w", err)
	}
	defer rows.Close()

	var items []model.TripGearItem
	for rows.Next() {
		var item model.TripGearItem
		var g model.Gear
		err := rows.Scan(
			&item.ID, &item.TripID, &item.GearID, &item.Status, &item.AssignedTo, &item.CreatedAt,
			&g.ID, &g.Name, &g.Type, &g.Quantity, &g.Available, &g.Condition,
			&g.PhotoKey, &g.Notes, &g.LastEditedBy, &g.CreatedAt, &g.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip gear item: %w", err)
		}
		item.Gear = &g
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *GearStore) CreateItem(tripID, gearID int64, assignedTo string) (*model.TripGearItem, error) {
	if assignedTo == "" {
		assignedTo = model.Unassigned
	}
	result, err := s.db.Exec(
		`INSERT INTO trip_gear_items (trip_id, gear_id, status, assigned_to) VALUES (?, ?, ?, ?)`,
		tripID, gearID, model.GearStatusPending, assignedTo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip gear item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GearStore) UpdateItem(id int64, status, assignedTo string) (*model.TripGearItem, error) {
	if assignedTo == "" {
		assignedTo = model.Unassigned
	}
	_, err := s.db.Exec(
		`UPDATE trip_gear_items SET status = ?, assigned_to = ? WHERE id = ?`,
		status, assignedTo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip gear item: %w", err)
	}
	return s.GetItemByID(id)
}

func (s *GearStore) DeleteItem(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trip_gear_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip gear item: %w", err)
	}
	return nil
}

// CountsByTrip returns the packed/total checklist counts for a trip summary.
func (s *GearStore) CountsByTrip(tripID int64) (packed, total int, err error) {
	err = s.db.QueryRow(
		`SELECT COALESCE(SUM(CASE WHEN status = 'Packed' THEN 1 ELSE 0 END), 0), COUNT(*)
		 FROM trip_gear_items WHERE trip_id = ?`,
		tripID,
	).Scan(&packed, &total)
	if err != nil {
		return 0, 0, fmt.Errorf("count trip gear: %w", err)
	}
	return packed, total, nil
}

// InsertItemCopiesTx batch-inserts checklist copies for a new trip within an
// enclosing transaction. Status is always reset to Pending: packing progress
// never carries over to a duplicated trip. Empty input issues no statements.
func (s *GearStore) InsertItemCopiesTx(tx *sql.Tx, tripID int64, items []model.TripGearItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(
		`INSERT INTO trip_gear_items (trip_id, gear_id, status, assigned_to) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare trip gear copy: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(tripID, item.GearID, model.GearStatusPending, item.AssignedTo); err != nil {
			return fmt.Errorf("copy trip gear item: %w", err)
		}
	}
	return nil
}
