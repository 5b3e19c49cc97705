package storage

import (
	"context"
	"testing"
)

func TestMemoryAdapter(t *testing.T) {
	ctx := context.Background()
	adapter := NewMemoryAdapter()

	if _, ok, _ := adapter.Get(ctx, "users"); ok {
		t.Fatal("expected empty store")
	}

	adapter.Set(ctx, "users", `[{"email":"a@b.c"}]`)
	val, ok, err := adapter.Get(ctx, "users")
	if err != nil || !ok {
		t.Fatalf("expected value, got ok=%v err=%v", ok, err)
	}
	if val != `[{"email":"a@b.c"}]` {
		t.Errorf("unexpected value %q", val)
	}

	adapter.Delete(ctx, "users")
	if _, ok, _ := adapter.Get(ctx, "users"); ok {
		t.Error("expected value to be deleted")
	}

	if err := adapter.Ping(ctx); err != nil {
		t.Errorf("unexpected ping error: %v", err)
	}
}
