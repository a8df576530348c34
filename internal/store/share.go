package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/fittra/trailstack/internal/model"
)

type ShareStore struct {
	db *sql.DB
}

func NewShareStore(db *sql.DB) *ShareStore {
	return &ShareStore{db: db}
}

func scanShare(scanner interface{ Scan(...any) error }) (*model.TripShare, error) {
	var sh model.TripShare
	err := scanner.Scan(&sh.ID, &sh.TripID, &sh.Token, &sh.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &sh, nil
}

const shareCols = `id, trip_id, token, created_at`

// GetOrCreate returns the trip's share link, minting a token on first use.
// Tokens are stable: sharing the same trip twice hands out the same URL.
func (s *ShareStore) GetOrCreate(tripID int64) (*model.TripShare, error) {
	existing, err := s.GetByTripID(tripID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	token := uuid.NewString()
	result, err := s.db.Exec(
		`INSERT INTO trip_shares (trip_id, token) VALUES (?, ?)`,
		tripID, token,
	)
	if err != nil {
		return nil, fmt.Errorf("insert share: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+shareCols+` FROM trip_shares WHERE id = ?`, id)
	sh, err := scanShare(row)
	if err != nil {
		return nil, fmt.Errorf("get share: %w", err)
	}
	return sh, nil
}

func (s *ShareStore) GetByTripID(tripID int64) (*model.TripShare, error) {
	row := s.db.QueryRow(`SELECT `+shareCols+` FROM trip_shares WHERE trip_id = ?`, tripID)
	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get share by trip: %w", err)
	}
	return sh, nil
}

func (s *ShareStore) GetByToken(token string) (*model.TripShare, error) {
	row := s.db.QueryRow(`SELECT `+shareCols+` FROM trip_shares WHERE token = ?`, token)
	sh, err := scanShare(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get share by token: %w", err)
	}
	return sh, nil
}

func (s *ShareStore) Delete(tripID int64) error {
	_, err := s.db.Exec(`DELETE FROM trip_shares WHERE trip_id = ?`, tripID)
	if err != nil {
		return fmt.Errorf("delete share: %w", err)
	}
	return nil
}
