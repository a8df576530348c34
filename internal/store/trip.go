package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/fittra/trailstack/internal/model"
)

type TripStore struct {
	db *sql.DB
}

func NewTripStore(db *sql.DB) *TripStore {
	return &TripStore{db: db}
}

func scanTrip(scanner interface{ Scan(...any) error }) (*model.Trip, error) {
	var t model.Trip
	err := scanner.Scan(
		&t.ID, &t.Title, &t.Location, &t.StartDate, &t.EndDate,
		&t.LastEditedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const tripCols = `id, title, location, start_date, end_date, last_edited_by, created_at, updated_at`

func (s *TripStore) GetByID(id int64) (*model.Trip, error) {
	row := s.db.QueryRow(`SELECT `+tripCols+` FROM trips WHERE id = ?`, id)
	t, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get trip: %w", err)
	}
	return t, nil
}

func (s *TripStore) Create(title, location string, startDate, endDate time.Time, editedBy string) (*model.Trip, error) {
	result, err := s.db.Exec(
		`INSERT INTO trips (title, location, start_date, end_date, last_edited_by) VALUES (?, ?, ?, ?, ?)`,
		title, location, startDate.UTC(), endDate.UTC(), editedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("insert trip: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TripStore) Update(id int64, title, location string, startDate, endDate time.Time, editedBy string) (*model.Trip, error) {
	_, err := s.db.Exec(
		`UPDATE trips SET title = ?, location = ?, start_date = ?, end_date = ?, last_edited_by = ?, updated_at = ? WHERE id = ?`,
		title, location, startDate.UTC(), endDate.UTC(), editedBy, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return s.GetByID(id)
}

// Delete removes a trip. Child collections go with it via foreign key cascade.
func (s *TripStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trips WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	return nil
}

const tripStatsQuery = `
	SELECT t.id, t.title, t.location, t.start_date, t.end_date, t.last_edited_by, t.created_at, t.updated_at,
	       COUNT(g.id),
	       COALESCE(SUM(CASE WHEN g.status = 'Packed' THEN 1 ELSE 0 END), 0),
	       (SELECT COUNT(*) FROM trip_participants p WHERE p.trip_id = t.id)
	FROM trips t
	LEFT JOIN trip_gear_items g ON g.trip_id = t.id
	WHERE t.end_date %s ?
	GROUP BY t.id
	ORDER BY t.start_date %s`

// ListUpcomingWithStats returns trips that have not yet ended, soonest first,
// each with its gear and participant counts.
func (s *TripStore) ListUpcomingWithStats(now time.Time) ([]model.TripWithStats, error) {
	return s.listWithStats(fmt.Sprintf(tripStatsQuery, ">=", "ASC"), now.UTC())
}

// ListPastWithStats returns trips that have already ended, most recent first.
func (s *TripStore) ListPastWithStats(now time.Time) ([]model.TripWithStats, error) {
	return s.listWithStats(fmt.Sprintf(tripStatsQuery, "<", "DESC"), now.UTC())
}

// ListAllWithStats returns every trip, soonest start first.
func (s *TripStore) ListAllWithStats() ([]model.TripWithStats, error) {
	query := strings.Replace(fmt.Sprintf(tripStatsQuery, ">=", "ASC"), "WHERE t.end_date >= ?", "", 1)
	return s.listWithStats(query)
}

func (s *TripStore) listWithStats(query string, args ...any) ([]model.TripWithStats, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips with stats: %w", err)
	}
	defer rows.Close()

	var trips []model.TripWithStats
	for rows.Next() {
		var t model.TripWithStats
		err := rows.Scan(
			&t.ID, &t.Title, &t.Location, &t.StartDate, &t.EndDate,
			&t.LastEditedBy, &t.CreatedAt, &t.UpdatedAt,
			&t.GearTotal, &t.GearPacked, &t.ParticipantCount,
		)
		if err != nil {
			return nil, fmt.Errorf("scan trip stats: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, rows.Err()
}

// ListStartingBetween returns trips whose start date falls in [from, to),
// used by the departure reminder scheduler.
func (s *TripStore) ListStartingBetween(from, to time.Time) ([]model.Trip, error) {
	rows, err := s.db.Query(
		`SELECT `+tripCols+` FROM trips WHERE start_date >= ? AND start_date < ? ORDER BY start_date ASC`,
		from.UTC(), to.UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("list trips starting between: %w", err)
	}
	defer rows.Close()

	var trips []model.Trip
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}
