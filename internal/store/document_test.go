package store

import (
	"testing"

	"github.com/fittra/trailstack/internal/database"
	"github.com/fittra/trailstack/internal/model"
)

func setupDocumentTestDB(t *testing.T) (*DocumentStore, *TripStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewDocumentStore(db), NewTripStore(db)
}

func TestDocumentCRUD(t *testing.T) {
	ds, ts := setupDocumentTestDB(t)
	trip := makeTestTrip(t, ts)

	doc, err := ds.Create(trip.ID, "Permit", "trips/1/1693000000-permit.pdf")
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	if doc.Name != "Permit" {
		t.Errorf("name = %q", doc.Name)
	}
	if doc.FilePath != "trips/1/1693000000-permit.pdf" {
		t.Errorf("file_path = %q", doc.FilePath)
	}

	list, _ := ds.ListByTrip(trip.ID)
	if len(list) != 1 {
		t.Fatalf("expected 1 document, got %d", len(list))
	}

	if err := ds.Delete(doc.ID); err != nil {
		t.Fatalf("delete document: %v", err)
	}
	got, _ := ds.GetByID(doc.ID)
	if got != nil {
		t.Error("expected document gone after delete")
	}
}

func TestDocumentInsertBatch(t *testing.T) {
	ds, ts := setupDocumentTestDB(t)
	trip := makeTestTrip(t, ts)

	// Empty batch is a no-op, not an error.
	if err := ds.InsertBatch(trip.ID, nil); err != nil {
		t.Fatalf("insert empty batch: %v", err)
	}

	docs := []model.TripDocument{
		{Name: "Permit", FilePath: "trips/9/1-permit.pdf"},
		{Name: "Topo Map", FilePath: "trips/9/2-map.pdf"},
	}
	if err := ds.InsertBatch(trip.ID, docs); err != nil {
		t.Fatalf("insert batch: %v", err)
	}

	list, _ := ds.ListByTrip(trip.ID)
	if len(list) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(list))
	}
	for _, d := range list {
		if d.TripID != trip.ID {
			t.Errorf("trip_id = %d, want %d", d.TripID, trip.ID)
		}
	}
}
