package store

import (
	"database/sql"
	"fmt"

	"github.com/fittra/trailstack/internal/model"
)

type ItineraryStore struct {
	db *sql.DB
}

func NewItineraryStore(db *sql.DB) *ItineraryStore {
	return &ItineraryStore{db: db}
}

func scanItineraryItem(scanner interface{ Scan(...any) error }) (*model.ItineraryItem, error) {
	var item model.ItineraryItem
	err := scanner.Scan(
		&item.ID, &item.TripID, &item.Day, &item.Location,
		&item.Activity, &item.TimeLabel, &item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

const itineraryCols = `id, trip_id, day, location, activity, time_label, created_at`

func (s *ItineraryStore) GetByID(id int64) (*model.ItineraryItem, error) {
	row := s.db.QueryRow(`SELECT `+itineraryCols+` FROM itinerary_items WHERE id = ?`, id)
	item, err := scanItineraryItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get itinerary item: %w", err)
	}
	return item, nil
}

// ListByTrip returns a trip's itinerary in day order.
func (s *ItineraryStore) ListByTrip(tripID int64) ([]model.ItineraryItem, error) {
	rows, err := s.db.Query(
		`SELECT `+itineraryCols+` FROM itinerary_items WHERE trip_id = ? ORDER BY day ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list itinerary: %w", err)
	}
	defer rows.Close()

	var items []model.ItineraryItem
	for rows.Next() {
		item, err := scanItineraryItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan itinerary item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// AddDay appends a blank day to the trip's schedule. The new day number is
// one past the current maximum, so even a sparse set like {1, 5} yields 6.
// Appending at the end never disturbs the density of existing days.
func (s *ItineraryStore) AddDay(tripID int64) (*model.ItineraryItem, error) {
	var next int
	err := s.db.QueryRow(
		`SELECT COALESCE(MAX(day), 0) + 1 FROM itinerary_items WHERE trip_id = ?`,
		tripID,
	).Scan(&next)
	if err != nil {
		return nil, fmt.Errorf("next day number: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO itinerary_items (trip_id, day) VALUES (?, ?)`,
		tripID, next,
	)
	if err != nil {
		return nil, fmt.Errorf("insert itinerary item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItineraryStore) Update(id int64, location, activity, timeLabel string) (*model.ItineraryItem, error) {
	_, err := s.db.Exec(
		`UPDATE itinerary_items SET location = ?, activity = ?, time_label = ? WHERE id = ?`,
		location, activity, timeLabel, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update itinerary item: %w", err)
	}
	return s.GetByID(id)
}

// RemoveDay deletes an itinerary item and closes the gap it leaves: every
// remaining day of the same trip numbered above the removed one shifts down
// by one, so the trip's days stay exactly {1..N}. Delete and renumber run in
// a single transaction; if either fails, nothing changes. Returns the
// renumbered itinerary, or the unchanged one if the item no longer exists.
func (s *ItineraryStore) RemoveDay(id int64) ([]model.ItineraryItem, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		// Already gone, nothing to renumber.
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin renumber: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM itinerary_items WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete itinerary item: %w", err)
	}

	// Removing the highest day matches zero rows here, which is fine.
	if _, err := tx.Exec(
		`UPDATE itinerary_items SET day = day - 1 WHERE trip_id = ? AND day > ?`,
		item.TripID, item.Day,
	); err != nil {
		return nil, fmt.Errorf("renumber days: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit renumber: %w", err)
	}

	return s.ListByTrip(item.TripID)
}

// InsertCopiesTx batch-inserts copies of the given items for a new trip as
// part of an enclosing transaction. Ids and timestamps are not carried over.
// Empty input issues no statements at all.
func (s *ItineraryStore) InsertCopiesTx(tx *sql.Tx, tripID int64, items []model.ItineraryItem) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(
		`INSERT INTO itinerary_items (trip_id, day, location, activity, time_label) VALUES (?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare itinerary copy: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.Exec(tripID, item.Day, item.Location, item.Activity, item.TimeLabel); err != nil {
			return fmt.Errorf("copy itinerary item: %w", err)
		}
	}
	return nil
}
