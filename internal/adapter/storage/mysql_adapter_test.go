package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/smartpos?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func newTestMySQLAdapter(t *testing.T, db *sql.DB) *MySQLAdapter {
	ctx := context.Background()
	adapter := NewMySQLAdapter(db, "test_")
	if err := adapter.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema failed: %v", err)
	}
	db.ExecContext(ctx, `DELETE FROM collections WHERE name LIKE 'test\_%'`)
	return adapter
}

func TestMySQLSetAndGet(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := newTestMySQLAdapter(t, db)

	if err := adapter.Set(ctx, "products", `[{"id":"p1"}]`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	val, ok, err := adapter.Get(ctx, "products")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected collection to exist")
	}
	if val != `[{"id":"p1"}]` {
		t.Errorf("unexpected payload %q", val)
	}
}

func TestMySQLGet_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := newTestMySQLAdapter(t, db)

	_, ok, err := adapter.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected missing collection")
	}
}

func TestMySQLSet_BumpsVersion(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := newTestMySQLAdapter(t, db)

	adapter.Set(ctx, "sales", "[]")
	adapter.Set(ctx, "sales", `[{"productId":"p1"}]`)

	version, err := adapter.Version(ctx, "sales")
	if err != nil {
		t.Fatalf("Version failed: %v", err)
	}
	if version != 2 {
		t.Errorf("expected version 2, got %d", version)
	}

	val, _, _ := adapter.Get(ctx, "sales")
	if val != `[{"productId":"p1"}]` {
		t.Errorf("expected last write to win, got %q", val)
	}
}

func TestMySQLDelete(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := newTestMySQLAdapter(t, db)

	adapter.Set(ctx, "current_user", `{"id":"u1"}`)
	if err := adapter.Delete(ctx, "current_user"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, ok, _ := adapter.Get(ctx, "current_user")
	if ok {
		t.Error("expected collection to be deleted")
	}

	version, _ := adapter.Version(ctx, "current_user")
	if version != 0 {
		t.Errorf("expected version 0 for deleted collection, got %d", version)
	}
}
