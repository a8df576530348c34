package store

import (
	"testing"

	"github.com/fittra/trailstack/internal/database"
	"github.com/fittra/trailstack/internal/model"
)

func setupParticipantTestDB(t *testing.T) (*ParticipantStore, *TripStore, *GearStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewParticipantStore(db), NewTripStore(db), NewGearStore(db)
}

func assignedNames(t *testing.T, gs *GearStore, tripID int64) []string {
	t.Helper()
	items, err := gs.ListItemsByTrip(tripID)
	if err != nil {
		t.Fatalf("list gear items: %v", err)
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.AssignedTo
	}
	return names
}

func TestParticipantCRUD(t *testing.T) {
	ps, ts, _ := setupParticipantTestDB(t)
	trip := makeTestTrip(t, ts)

	p, err := ps.Create(trip.ID, "Mallory", "Lead")
	if err != nil {
		t.Fatalf("create participant: %v", err)
	}
	if p.Name != "Mallory" || p.Role != "Lead" {
		t.Errorf("participant = %+v", p)
	}

	list, err := ps.ListByTrip(trip.ID)
	if err != nil {
		t.Fatalf("list participants: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(list))
	}

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete participant: %v", err)
	}
	got, err := ps.GetByID(p.ID)
	if err != nil {
		t.Fatalf("get participant: %v", err)
	}
	if got != nil {
		t.Error("expected participant gone after delete")
	}
}

func TestRenameCascadesToGearAssignments(t *testing.T) {
	ps, ts, gs := setupParticipantTestDB(t)
	trip := makeTestTrip(t, ts)

	p, _ := ps.Create(trip.ID, "Irvine", "")
	tent, _ := gs.Create("Tent", "Shelter", 2, 2, model.ConditionGood, "", "Quartermaster")
	stove, _ := gs.Create("Stove", "Cooking", 1, 1, model.ConditionGood, "", "Quartermaster")

	gs.CreateItem(trip.ID, tent.ID, "Irvine")
	gs.CreateItem(trip.ID, stove.ID, "")

	renamed, err := ps.Update(p.ID, "Sandy Irvine", "")
	if err != nil {
		t.Fatalf("rename participant: %v", err)
	}
	if renamed.Name != "Sandy Irvine" {
		t.Errorf("name = %q, want %q", renamed.Name, "Sandy Irvine")
	}

	names := assignedNames(t, gs, trip.ID)
	for _, n := range names {
		if n == "Irvine" {
			t.Errorf("old name still assigned: %v", names)
		}
	}
	foundNew := false
	for _, n := range names {
		if n == "Sandy Irvine" {
			foundNew = true
		}
	}
	if !foundNew {
		t.Errorf("renamed assignment missing: %v", names)
	}
}

func TestRenameMatchesExactNameOnly(t *testing.T) {
	ps, ts, gs := setupParticipantTestDB(t)
	trip := makeTestTrip(t, ts)

	a, _ := ps.Create(trip.ID, "Sam", "")
	ps.Create(trip.ID, "Samantha", "")

	tent, _ := gs.Create("Tent", "Shelter", 1, 1, model.ConditionGood, "", "Quartermaster")
	rope, _ := gs.Create("Rope", "Climbing", 1, 1, model.ConditionGood, "", "Quartermaster")
	gs.CreateItem(trip.ID, tent.ID, "Sam")
	gs.CreateItem(trip.ID, rope.ID, "Samantha")

	if _, err := ps.Update(a.ID, "Samuel", ""); err != nil {
		t.Fatalf("rename participant: %v", err)
	}

	names := assignedNames(t, gs, trip.ID)
	gotSamantha := false
	for _, n := range names {
		if n == "Samantha" {
			gotSamantha = true
		}
		if n == "Sam" {
			t.Errorf("exact match not renamed: %v", names)
		}
	}
	if !gotSamantha {
		t.Errorf("prefix-similar name was clobbered: %v", names)
	}
}

func TestRenameScopedToTrip(t *testing.T) {
	ps, ts, gs := setupParticipantTestDB(t)
	tripA := makeTestTrip(t, ts)
	tripB := makeTestTrip(t, ts)

	a, _ := ps.Create(tripA.ID, "Alex", "")
	ps.Create(tripB.ID, "Alex", "")

	tent, _ := gs.Create("Tent", "Shelter", 2, 2, model.ConditionGood, "", "Quartermaster")
	gs.CreateItem(tripA.ID, tent.ID, "Alex")
	gs.CreateItem(tripB.ID, tent.ID, "Alex")

	if _, err := ps.Update(a.ID, "Alexandra", ""); err != nil {
		t.Fatalf("rename participant: %v", err)
	}

	if names := assignedNames(t, gs, tripA.ID); names[0] != "Alexandra" {
		t.Errorf("trip A assignment = %q, want %q", names[0], "Alexandra")
	}
	if names := assignedNames(t, gs, tripB.ID); names[0] != "Alex" {
		t.Errorf("trip B assignment changed: %q", names[0])
	}
}

func TestDeleteReassignsGearToUnassigned(t *testing.T) {
	ps, ts, gs := setupParticipantTestDB(t)
	trip := makeTestTrip(t, ts)

	p, _ := ps.Create(trip.ID, "Norton", "")
	tent, _ := gs.Create("Tent", "Shelter", 1, 1, model.ConditionGood, "", "Quartermaster")
	item, _ := gs.CreateItem(trip.ID, tent.ID, "Norton")
	gs.UpdateItem(item.ID, model.GearStatusPacked, "Norton")

	if err := ps.Delete(p.ID); err != nil {
		t.Fatalf("delete participant: %v", err)
	}

	items, _ := gs.ListItemsByTrip(trip.ID)
	if len(items) != 1 {
		t.Fatalf("checklist row should survive, got %d items", len(items))
	}
	if items[0].AssignedTo != model.Unassigned {
		t.Errorf("assigned_to = %q, want %q", items[0].AssignedTo, model.Unassigned)
	}
	if items[0].Status != model.GearStatusPacked {
		t.Errorf("status changed on reassignment: %q", items[0].Status)
	}
}

func TestUpdateMissingParticipant(t *testing.T) {
	ps, ts, _ := setupParticipantTestDB(t)
	makeTestTrip(t, ts)

	p, err := ps.Update(12345, "Ghost", "")
	if err != nil {
		t.Fatalf("update missing participant: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil for missing participant, got %+v", p)
	}
}
