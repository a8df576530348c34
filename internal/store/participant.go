package store

import (
	"database/sql"
	"fmt"

	"github.com/fittra/trailstack/internal/model"
)

type ParticipantStore struct {
	db *sql.DB
}

func NewParticipantStore(db *sql.DB) *ParticipantStore {
	return &ParticipantStore{db: db}
}

func scanParticipant(scanner interface{ Scan(...any) error }) (*model.Participant, error) {
	var p model.Participant
	err := scanner.Scan(&p.ID, &p.TripID, &p.Name, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const participantCols = `id, trip_id, name, role, created_at`

func (s *ParticipantStore) GetByID(id int64) (*model.Participant, error) {
	row := s.db.QueryRow(`SELECT `+participantCols+` FROM trip_participants WHERE id = ?`, id)
	p, err := scanParticipant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get participant: %w", err)
	}
	return p, nil
}

func (s *ParticipantStore) ListByTrip(tripID int64) ([]model.Participant, error) {
	rows, err := s.db.Query(
		`SELECT `+participantCols+` FROM trip_participants WHERE trip_id = ? ORDER BY created_at ASC, id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, *p)
	}
	return participants, rows.Err()
}

func (s *ParticipantStore) Create(tripID int64, name, role string) (*model.Participant, error) {
	result, err := s.db.Exec(
		`INSERT INTO trip_participants (trip_id, name, role) VALUES (?, ?, ?)`,
		tripID, name, role,
	)
	if err != nil {
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// Update renames a participant and updates their role. Gear assignments
// reference participants by display name, so when the name changes the
// trip's matching trip_gear_items rows are re-pointed in the same
// transaction, before the participant row itself. A failure anywhere rolls
// back both, never leaving assignments orphaned on the old name.
func (s *ParticipantStore) Update(id int64, name, role string) (*model.Participant, error) {
	existing, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin rename: %w", err)
	}
	defer tx.Rollback()

	if name != existing.Name {
		if _, err := tx.Exec(
			`UPDATE trip_gear_items SET assigned_to = ? WHERE trip_id = ? AND assigned_to = ?`,
			name, existing.TripID, existing.Name,
		); err != nil {
			return nil, fmt.Errorf("reassign gear on rename: %w", err)
		}
	}

	if _, err := tx.Exec(
		`UPDATE trip_participants SET name = ?, role = ? WHERE id = ?`,
		name, role, id,
	); err != nil {
		return nil, fmt.Errorf("update participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit rename: %w", err)
	}

	return s.GetByID(id)
}

// Delete removes a participant, first handing their gear back to the
// "unassigned" sentinel. Reassignment and deletion share a transaction, so
// if the reassignment cannot be applied the participant row survives.
func (s *ParticipantStore) Delete(id int64) error {
	existing, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin remove: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`UPDATE trip_gear_items SET assigned_to = ? WHERE trip_id = ? AND assigned_to = ?`,
		model.Unassigned, existing.TripID, existing.Name,
	); err != nil {
		return fmt.Errorf("reassign gear on remove: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM trip_participants WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit remove: %w", err)
	}
	return nil
}

// InsertCopiesTx batch-inserts copies of the given participants for a new
// trip within an enclosing transaction. Empty input issues no statements.
func (s *ParticipantStore) InsertCopiesTx(tx *sql.Tx, tripID int64, participants []model.Participant) error {
	if len(participants) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(`INSERT INTO trip_participants (trip_id, name, role) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare participant copy: %w", err)
	}
	defer stmt.Close()

	for _, p := range participants {
		if _, err := stmt.Exec(tripID, p.Name, p.Role); err != nil {
			return fmt.Errorf("copy participant: %w", err)
		}
	}
	return nil
}
