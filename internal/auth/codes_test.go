package auth

import (
	"context"
	"fmt"
	"testing"
)

func testRegistry(t *testing.T, codes map[string]string) *Registry {
	t.Helper()
	var entries string
	for code, role := range codes {
		hash, err := HashCode(code)
		if err != nil {
			t.Fatalf("hash code: %v", err)
		}
		if entries != "" {
			entries += ","
		}
		entries += fmt.Sprintf(`{"role": %q, "code_hash": %q}`, role, hash)
	}
	r, err := ParseRegistry([]byte("[" + entries + "]"))
	if err != nil {
		t.Fatalf("parse registry: %v", err)
	}
	return r
}

func TestAuthenticate(t *testing.T) {
	r := testRegistry(t, map[string]string{
		"trail-2026": "Quartermaster",
		"scout-pass": "Scout",
	})
	if r.Len() != 2 {
		t.Fatalf("len = %d, want 2", r.Len())
	}

	role, ok := r.Authenticate("trail-2026")
	if !ok || role != "Quartermaster" {
		t.Errorf("Authenticate(trail-2026) = %q, %v", role, ok)
	}
	role, ok = r.Authenticate("scout-pass")
	if !ok || role != "Scout" {
		t.Errorf("Authenticate(scout-pass) = %q, %v", role, ok)
	}
	if _, ok := r.Authenticate("wrong"); ok {
		t.Error("wrong code authenticated")
	}
	if _, ok := r.Authenticate(""); ok {
		t.Error("empty code authenticated")
	}
	// Codes are trimmed before comparison.
	if role, ok := r.Authenticate("  trail-2026  "); !ok || role != "Quartermaster" {
		t.Errorf("trimmed code = %q, %v", role, ok)
	}
}

func TestParseRegistryRejectsIncomplete(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing role", `[{"code_hash": "x"}]`},
		{"blank role", `[{"role": "  ", "code_hash": "x"}]`},
		{"missing hash", `[{"role": "Scout"}]`},
		{"invalid json", `{not json`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseRegistry([]byte(tc.data)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCanManageGear(t *testing.T) {
	cases := []struct {
		role string
		want bool
	}{
		{"Developer", true},
		{"Quartermaster", true},
		{"Assistant Quartermaster", true},
		{"Scout", false},
		{"", false},
	}
	for _, tc := range cases {
		ctx := WithAuth(context.Background(), AuthContext{Role: tc.role})
		if got := CanManageGear(ctx); got != tc.want {
			t.Errorf("CanManageGear(%q) = %v, want %v", tc.role, got, tc.want)
		}
	}
	if CanManageGear(context.Background()) {
		t.Error("unauthenticated context can manage gear")
	}
}

func TestRoleFromContext(t *testing.T) {
	if Role(context.Background()) != "" {
		t.Error("expected empty role for bare context")
	}
	ctx := WithAuth(context.Background(), AuthContext{Role: "Scout", SessionID: 7})
	if Role(ctx) != "Scout" {
		t.Errorf("Role = %q", Role(ctx))
	}
	ac, ok := FromContext(ctx)
	if !ok || ac.SessionID != 7 {
		t.Errorf("FromContext = %+v, %v", ac, ok)
	}
}
