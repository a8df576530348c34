package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestMemoryPutGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	if err := m.Put(ctx, "gear/1/photo.jpg", strings.NewReader("jpeg bytes"), "image/jpeg"); err != nil {
		t.Fatalf("put: %v", err)
	}
	body, err := m.Get(ctx, "gear/1/photo.jpg")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "jpeg bytes" {
		t.Errorf("body = %q", data)
	}
	if m.Len() != 1 {
		t.Errorf("len = %d", m.Len())
	}
}

func TestMemoryGetMissing(t *testing.T) {
	m := NewMemory()
	if _, err := m.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryCopy(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Put(ctx, "src", strings.NewReader("payload"), "text/plain")

	if err := m.Copy(ctx, "src", "dst"); err != nil {
		t.Fatalf("copy: %v", err)
	}
	body, err := m.Get(ctx, "dst")
	if err != nil {
		t.Fatalf("get copy: %v", err)
	}
	defer body.Close()
	data, _ := io.ReadAll(body)
	if string(data) != "payload" {
		t.Errorf("copy body = %q", data)
	}

	if err := m.Copy(ctx, "missing", "dst2"); !errors.Is(err, ErrNotFound) {
		t.Errorf("copy missing = %v, want ErrNotFound", err)
	}
}

func TestMemoryRemove(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	m.Put(ctx, "a", strings.NewReader("1"), "text/plain")
	m.Put(ctx, "b", strings.NewReader("2"), "text/plain")

	if err := m.Remove(ctx, "a", "b", "never-existed"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("len after remove = %d", m.Len())
	}
}

func TestMemoryFaultInjection(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	boom := errors.New("boom")

	m.FailPut["bad"] = boom
	if err := m.Put(ctx, "bad", strings.NewReader("x"), "text/plain"); !errors.Is(err, boom) {
		t.Errorf("put = %v, want injected error", err)
	}

	m.Put(ctx, "src", strings.NewReader("x"), "text/plain")
	m.FailCopy["src"] = boom
	if err := m.Copy(ctx, "src", "dst"); !errors.Is(err, boom) {
		t.Errorf("copy = %v, want injected error", err)
	}
	if m.Len() != 1 {
		t.Errorf("failed copy stored an object: len = %d", m.Len())
	}
}
