package store

import (
	"database/sql"
	"fmt"

	"github.com/fittra/trailstack/internal/model"
)

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func scanDocument(scanner interface{ Scan(...any) error }) (*model.TripDocument, error) {
	var d model.TripDocument
	err := scanner.Scan(&d.ID, &d.TripID, &d.Name, &d.FilePath, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

const documentCols = `id, trip_id, name, file_path, created_at`

func (s *DocumentStore) GetByID(id int64) (*model.TripDocument, error) {
	row := s.db.QueryRow(`SELECT `+documentCols+` FROM trip_documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) ListByTrip(tripID int64) ([]model.TripDocument, error) {
	rows, err := s.db.Query(
		`SELECT `+documentCols+` FROM trip_documents WHERE trip_id = ? ORDER BY created_at ASC, id ASC`,
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []model.TripDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

func (s *DocumentStore) Create(tripID int64, name, filePath string) (*model.TripDocument, error) {
	result, err := s.db.Exec(
		`INSERT INTO trip_documents (trip_id, name, file_path) VALUES (?, ?, ?)`,
		tripID, name, filePath,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DocumentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM trip_documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// InsertBatch inserts document rows for a trip in one statement batch.
// Empty input issues no statements. Used after duplication has copied the
// underlying blobs, so only rows whose copies succeeded are passed in.
func (s *DocumentStore) InsertBatch(tripID int64, docs []model.TripDocument) error {
	if len(docs) == 0 {
		return nil
	}
	stmt, err := s.db.Prepare(`INSERT INTO trip_documents (trip_id, name, file_path) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare document batch: %w", err)
	}
	defer stmt.Close()

	for _, d := range docs {
		if _, err := stmt.Exec(tripID, d.Name, d.FilePath); err != nil {
			return fmt.Errorf("insert document batch: %w", err)
		}
	}
	return nil
}
