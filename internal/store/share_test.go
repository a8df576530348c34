package store

import (
	"testing"

	"github.com/fittra/trailstack/internal/database"
)

func setupShareTestDB(t *testing.T) (*ShareStore, *TripStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewShareStore(db), NewTripStore(db)
}

func TestShareGetOrCreateIsStable(t *testing.T) {
	ss, ts := setupShareTestDB(t)
	trip := makeTestTrip(t, ts)

	first, err := ss.GetOrCreate(trip.ID)
	if err != nil {
		t.Fatalf("create share: %v", err)
	}
	if first.Token == "" {
		t.Fatal("expected non-empty token")
	}

	second, err := ss.GetOrCreate(trip.ID)
	if err != nil {
		t.Fatalf("get share: %v", err)
	}
	if second.Token != first.Token {
		t.Errorf("token changed: %q -> %q", first.Token, second.Token)
	}
}

func TestShareByToken(t *testing.T) {
	ss, ts := setupShareTestDB(t)
	trip := makeTestTrip(t, ts)

	share, _ := ss.GetOrCreate(trip.ID)

	found, err := ss.GetByToken(share.Token)
	if err != nil {
		t.Fatalf("get by token: %v", err)
	}
	if found == nil || found.TripID != trip.ID {
		t.Fatalf("share = %+v", found)
	}

	missing, _ := ss.GetByToken("not-a-token")
	if missing != nil {
		t.Error("expected nil for unknown token")
	}
}

func TestShareTokensDifferPerTrip(t *testing.T) {
	ss, ts := setupShareTestDB(t)
	tripA := makeTestTrip(t, ts)
	tripB := makeTestTrip(t, ts)

	a, _ := ss.GetOrCreate(tripA.ID)
	b, _ := ss.GetOrCreate(tripB.ID)
	if a.Token == b.Token {
		t.Error("expected distinct tokens per trip")
	}
}

func TestShareRevoke(t *testing.T) {
	ss, ts := setupShareTestDB(t)
	trip := makeTestTrip(t, ts)

	share, _ := ss.GetOrCreate(trip.ID)
	if err := ss.Delete(trip.ID); err != nil {
		t.Fatalf("delete share: %v", err)
	}

	found, _ := ss.GetByToken(share.Token)
	if found != nil {
		t.Error("expected share gone after revoke")
	}

	// A new share gets a fresh token.
	fresh, _ := ss.GetOrCreate(trip.ID)
	if fresh.Token == share.Token {
		t.Error("expected new token after revoke")
	}
}
