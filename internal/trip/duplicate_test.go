package trip

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/fittra/trailstack/internal/blob"
	"github.com/fittra/trailstack/internal/database"
	"github.com/fittra/trailstack/internal/metrics"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
)

type fixture struct {
	dup          *Duplicator
	trips        *store.TripStore
	participants *store.ParticipantStore
	itinerary    *store.ItineraryStore
	gear         *store.GearStore
	contacts     *store.ContactStore
	documents    *store.DocumentStore
	blobs        *blob.MemoryStore
}

func setupDuplicator(t *testing.T) *fixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		trips:        store.NewTripStore(db),
		participants: store.NewParticipantStore(db),
		itinerary:    store.NewItineraryStore(db),
		gear:         store.NewGearStore(db),
		contacts:     store.NewContactStore(db),
		documents:    store.NewDocumentStore(db),
		blobs:        blob.NewMemory(),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.dup = NewDuplicator(
		db, f.trips, f.participants, f.itinerary, f.gear,
		f.contacts, f.documents, f.blobs, metrics.New(), logger,
	)
	return f
}

func (f *fixture) seedTrip(t *testing.T) *model.Trip {
	t.Helper()
	start := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)
	trip, err := f.trips.Create("Wonderland Trail", "Mount Rainier", start, start.AddDate(0, 0, 9), "Quartermaster")
	if err != nil {
		t.Fatalf("create trip: %v", err)
	}

	f.participants.Create(trip.ID, "Whittaker", "Lead")
	f.participants.Create(trip.ID, "Gombu", "")

	for i := 0; i < 3; i++ {
		item, err := f.itinerary.AddDay(trip.ID)
		if err != nil {
			t.Fatalf("add day: %v", err)
		}
		f.itinerary.Update(item.ID, "Camp", "Hike", "08:00")
	}

	tent, _ := f.gear.Create("Tent", "Shelter", 2, 2, model.ConditionGood, "", "")
	stove, _ := f.gear.Create("Stove", "Cooking", 1, 1, model.ConditionGood, "", "")
	a, _ := f.gear.CreateItem(trip.ID, tent.ID, "Whittaker")
	f.gear.CreateItem(trip.ID, stove.ID, "")
	// Source trip has packing progress; the copy must not inherit it.
	f.gear.UpdateItem(a.ID, model.GearStatusPacked, "Whittaker")

	f.contacts.Create(trip.ID, "Rainier Rangers", "+1 360 569 2211", model.ContactTypeRescue)

	key := DocumentKey(trip.ID, time.Now(), "permit.pdf")
	if err := f.blobs.Put(context.Background(), key, strings.NewReader("permit body"), "application/pdf"); err != nil {
		t.Fatalf("seed blob: %v", err)
	}
	f.documents.Create(trip.ID, "Permit", key)

	return trip
}

func TestDuplicateCopiesAggregate(t *testing.T) {
	f := setupDuplicator(t)
	src := f.seedTrip(t)

	newID, err := f.dup.Duplicate(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}
	if newID == src.ID {
		t.Fatal("expected a new trip id")
	}

	copyTrip, err := f.trips.GetByID(newID)
	if err != nil || copyTrip == nil {
		t.Fatalf("get copy: %v", err)
	}
	if copyTrip.Title != "Wonderland Trail (Copy)" {
		t.Errorf("title = %q", copyTrip.Title)
	}
	if !copyTrip.StartDate.Equal(src.StartDate) || !copyTrip.EndDate.Equal(src.EndDate) {
		t.Errorf("dates changed: %v - %v", copyTrip.StartDate, copyTrip.EndDate)
	}

	participants, _ := f.participants.ListByTrip(newID)
	if len(participants) != 2 {
		t.Errorf("participants = %d, want 2", len(participants))
	}
	itinerary, _ := f.itinerary.ListByTrip(newID)
	if len(itinerary) != 3 {
		t.Errorf("itinerary = %d, want 3", len(itinerary))
	}
	for i, item := range itinerary {
		if item.Day != i+1 {
			t.Errorf("itinerary days not contiguous: day[%d] = %d", i, item.Day)
		}
	}
	contacts, _ := f.contacts.ListByTrip(newID)
	if len(contacts) != 1 {
		t.Errorf("contacts = %d, want 1", len(contacts))
	}
	documents, _ := f.documents.ListByTrip(newID)
	if len(documents) != 1 {
		t.Errorf("documents = %d, want 1", len(documents))
	}
}

func TestDuplicateResetsGearStatus(t *testing.T) {
	f := setupDuplicator(t)
	src := f.seedTrip(t)

	newID, err := f.dup.Duplicate(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	items, _ := f.gear.ListItemsByTrip(newID)
	if len(items) != 2 {
		t.Fatalf("gear items = %d, want 2", len(items))
	}
	for _, item := range items {
		if item.Status != model.GearStatusPending {
			t.Errorf("item %d status = %q, want %q", item.ID, item.Status, model.GearStatusPending)
		}
	}

	// Assignments carry over even though status resets.
	assigned := map[string]bool{}
	for _, item := range items {
		assigned[item.AssignedTo] = true
	}
	if !assigned["Whittaker"] || !assigned[model.Unassigned] {
		t.Errorf("assignments = %v", assigned)
	}
}

func TestDuplicateLeavesSourceUntouched(t *testing.T) {
	f := setupDuplicator(t)
	src := f.seedTrip(t)

	if _, err := f.dup.Duplicate(context.Background(), src.ID); err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	after, _ := f.trips.GetByID(src.ID)
	if after.Title != "Wonderland Trail" {
		t.Errorf("source title changed: %q", after.Title)
	}
	items, _ := f.gear.ListItemsByTrip(src.ID)
	packed := 0
	for _, item := range items {
		if item.Status == model.GearStatusPacked {
			packed++
		}
	}
	if packed != 1 {
		t.Errorf("source packing progress changed: %d packed", packed)
	}
}

func TestDuplicateEmptyTrip(t *testing.T) {
	f := setupDuplicator(t)
	start := time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)
	src, _ := f.trips.Create("Bare", "Nowhere", start, start.AddDate(0, 0, 1), "")

	newID, err := f.dup.Duplicate(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("duplicate empty trip: %v", err)
	}

	copyTrip, _ := f.trips.GetByID(newID)
	if copyTrip == nil || copyTrip.Title != "Bare (Copy)" {
		t.Fatalf("copy = %+v", copyTrip)
	}
	participants, _ := f.participants.ListByTrip(newID)
	if len(participants) != 0 {
		t.Errorf("participants = %d, want 0", len(participants))
	}
}

func TestDuplicateMissingTrip(t *testing.T) {
	f := setupDuplicator(t)

	_, err := f.dup.Duplicate(context.Background(), 404)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDuplicateSkipsFailedDocumentCopies(t *testing.T) {
	f := setupDuplicator(t)
	src := f.seedTrip(t)
	f.dup.now = func() time.Time { return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC) }

	goodKey := DocumentKey(src.ID, time.Now(), "map.pdf")
	f.blobs.Put(context.Background(), goodKey, strings.NewReader("map body"), "application/pdf")
	f.documents.Create(src.ID, "Topo Map", goodKey)

	badKey := DocumentKey(src.ID, time.Now(), "broken.pdf")
	f.blobs.Put(context.Background(), badKey, strings.NewReader("x"), "application/pdf")
	f.documents.Create(src.ID, "Broken", badKey)
	f.blobs.FailCopy[badKey] = errors.New("storage unavailable")

	newID, err := f.dup.Duplicate(context.Background(), src.ID)
	if err != nil {
		t.Fatalf("duplicate: %v", err)
	}

	docs, _ := f.documents.ListByTrip(newID)
	if len(docs) != 2 {
		t.Fatalf("documents = %d, want 2 (failed copy skipped)", len(docs))
	}
	for _, d := range docs {
		if d.Name == "Broken" {
			t.Error("failed document row should not exist")
		}
		if body, err := f.blobs.Get(context.Background(), d.FilePath); err != nil {
			t.Errorf("copied blob %q missing: %v", d.FilePath, err)
		} else {
			body.Close()
		}
	}
}

func TestDocumentKeyFormat(t *testing.T) {
	ts := time.UnixMilli(1757635200000)
	key := DocumentKey(12, ts, "permit.pdf")
	if key != "trips/12/1757635200000-permit.pdf" {
		t.Errorf("key = %q", key)
	}
}
