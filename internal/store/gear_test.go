package store

import (
	"testing"

	"github.com/fittra/trailstack/internal/database"
	"github.com/fittra/trailstack/internal/model"
)

func setupGearTestDB(t *testing.T) (*GearStore, *TripStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewGearStore(db), NewTripStore(db)
}

func TestGearInventoryCRUD(t *testing.T) {
	gs, _ := setupGearTestDB(t)

	g, err := gs.Create("MSR WhisperLite", "Stove", 3, 2, model.ConditionGood, "one needs a pump rebuild", "Quartermaster")
	if err != nil {
		t.Fatalf("create gear: %v", err)
	}
	if g.Quantity != 3 || g.Available != 2 {
		t.Errorf("quantity/available = %d/%d", g.Quantity, g.Available)
	}
	if g.Condition != model.ConditionGood {
		t.Errorf("condition = %q", g.Condition)
	}

	updated, err := gs.Update(g.ID, g.Name, g.Type, 3, 1, model.ConditionNeedsRepair, g.Notes, "Assistant Quartermaster")
	if err != nil {
		t.Fatalf("update gear: %v", err)
	}
	if updated.Condition != model.ConditionNeedsRepair {
		t.Errorf("condition = %q", updated.Condition)
	}
	if updated.LastEditedBy != "Assistant Quartermaster" {
		t.Errorf("last_edited_by = %q", updated.LastEditedBy)
	}

	if err := gs.Delete(g.ID); err != nil {
		t.Fatalf("delete gear: %v", err)
	}
	got, _ := gs.GetByID(g.ID)
	if got != nil {
		t.Error("expected gear gone after delete")
	}
}

func TestGearPhotoKey(t *testing.T) {
	gs, _ := setupGearTestDB(t)

	g, _ := gs.Create("Tent", "Shelter", 1, 1, model.ConditionGood, "", "")
	withPhoto, err := gs.SetPhotoKey(g.ID, "gear/1/12345-tent.jpg")
	if err != nil {
		t.Fatalf("set photo key: %v", err)
	}
	if withPhoto.PhotoKey != "gear/1/12345-tent.jpg" {
		t.Errorf("photo_key = %q", withPhoto.PhotoKey)
	}

	cleared, err := gs.SetPhotoKey(g.ID, "")
	if err != nil {
		t.Fatalf("clear photo key: %v", err)
	}
	if cleared.PhotoKey != "" {
		t.Errorf("photo_key not cleared: %q", cleared.PhotoKey)
	}
}

func TestCreateItemStartsPending(t *testing.T) {
	gs, ts := setupGearTestDB(t)
	trip := makeTestTrip(t, ts)

	g, _ := gs.Create("Rope", "Climbing", 1, 1, model.ConditionGood, "", "")
	item, err := gs.CreateItem(trip.ID, g.ID, "")
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Status != model.GearStatusPending {
		t.Errorf("status = %q, want %q", item.Status, model.GearStatusPending)
	}
	if item.AssignedTo != model.Unassigned {
		t.Errorf("assigned_to = %q, want %q", item.AssignedTo, model.Unassigned)
	}
}

func TestListItemsJoinsGear(t *testing.T) {
	gs, ts := setupGearTestDB(t)
	trip := makeTestTrip(t, ts)

	g, _ := gs.Create("Water Filter", "Hydration", 2, 2, model.ConditionGood, "", "")
	gs.CreateItem(trip.ID, g.ID, "Carter")

	items, err := gs.ListItemsByTrip(trip.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Gear == nil {
		t.Fatal("expected joined gear details")
	}
	if items[0].Gear.Name != "Water Filter" {
		t.Errorf("gear name = %q", items[0].Gear.Name)
	}
	if items[0].AssignedTo != "Carter" {
		t.Errorf("assigned_to = %q", items[0].AssignedTo)
	}
}

func TestUpdateItemTogglesStatus(t *testing.T) {
	gs, ts := setupGearTestDB(t)
	trip := makeTestTrip(t, ts)

	g, _ := gs.Create("Headlamp", "Lighting", 4, 4, model.ConditionGood, "", "")
	item, _ := gs.CreateItem(trip.ID, g.ID, "")

	packed, err := gs.UpdateItem(item.ID, model.GearStatusPacked, "Odell")
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if packed.Status != model.GearStatusPacked || packed.AssignedTo != "Odell" {
		t.Errorf("item = %+v", packed)
	}
}

func TestCountsByTrip(t *testing.T) {
	gs, ts := setupGearTestDB(t)
	trip := makeTestTrip(t, ts)

	packed, total, err := gs.CountsByTrip(trip.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if packed != 0 || total != 0 {
		t.Errorf("empty trip counts = %d/%d", packed, total)
	}

	g, _ := gs.Create("Tent", "Shelter", 2, 2, model.ConditionGood, "", "")
	a, _ := gs.CreateItem(trip.ID, g.ID, "")
	gs.CreateItem(trip.ID, g.ID, "")
	gs.UpdateItem(a.ID, model.GearStatusPacked, model.Unassigned)

	packed, total, err = gs.CountsByTrip(trip.ID)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if packed != 1 || total != 2 {
		t.Errorf("counts = %d/%d, want 1/2", packed, total)
	}
}

func TestDeleteGearRemovesChecklistRows(t *testing.T) {
	gs, ts := setupGearTestDB(t)
	trip := makeTestTrip(t, ts)

	g, _ := gs.Create("Crampons", "Climbing", 1, 1, model.ConditionDispose, "", "")
	gs.CreateItem(trip.ID, g.ID, "")

	if err := gs.Delete(g.ID); err != nil {
		t.Fatalf("delete gear: %v", err)
	}

	items, _ := gs.ListItemsByTrip(trip.ID)
	if len(items) != 0 {
		t.Errorf("checklist rows survived gear delete: %d", len(items))
	}
}
