package store

import (
	"database/sql"
	"fmt"

	"github.com/fittra/trailstack/internal/model"
)

type ContactStore struct {
	db *sql.DB
}

func NewContactStore(db *sql.DB) *ContactStore {
	return &ContactStore{db: db}
}

func scanContact(scanner interface{ Scan(...any) error }) (*model.EmergencyContact, error) {
	var c model.EmergencyContact
	err := scanner.Scan(&c.ID, &c.TripID, &c.Name, &c.ContactNumber, &c.Type, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const contactCols = `id, trip_id, name, contact_number, type, created_at`

func (s *ContactStore) GetByID(id int64) (*model.EmergencyContact, error) {
	row := s.db.QueryRow(`SELECT `+contactCols+` FROM emergency_contacts WHERE id = ?`, id)
	c, err := scanContact(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

func (s *ContactStore) ListByTrip(tripID int64) ([]model.EmergencyContact, error) {
	rows, err := s.db.Query(
		`SELECT `+contactCols+` FROM emergency_contacts WHERE trip_id = ? ORDER BY created_at ASC, id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var contacts []model.EmergencyContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, *c)
	}
	return contacts, rows.Err()
}

func (s *ContactStore) Create(tripID int64, name, number, contactType string) (*model.EmergencyContact, error) {
	result, err := s.db.Exec(
		`INSERT INTO emergency_contacts (trip_id, name, contact_number, type) VALUES (?, ?, ?, ?)`,
		tripID, name, number, contactType,
	)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ContactStore) Update(id int64, name, number, contactType string) (*model.EmergencyContact, error) {
	_, err := s.db.Exec(
		`UPDATE emergency_contacts SET name = ?, contact_number = ?, type = ? WHERE id = ?`,
		name, number, contactType, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return s.GetByID(id)
}

func (s *ContactStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM emergency_contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}

// InsertCopiesTx batch-inserts contact copies for a new trip within an
// enclosing transaction. Empty input issues no statements.
func (s *ContactStore) InsertCopiesTx(tx *sql.Tx, tripID int64, contacts []model.EmergencyContact) error {
	if len(contacts) == 0 {
		return nil
	}
	stmt, err := tx.Prepare(
		`INSERT INTO emergency_contacts (trip_id, name, contact_number, type) VALUES (?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("prepare contact copy: %w", err)
	}
	defer stmt.Close()

	for _, c := range contacts {
		if _, err := stmt.Exec(tripID, c.Name, c.ContactNumber, c.Type); err != nil {
			return fmt.Errorf("copy contact: %w", err)
		}
	}
	return nil
}
