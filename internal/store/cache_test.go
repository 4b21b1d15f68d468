package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupCache(t *testing.T, maxAge time.Duration) *Cache {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	c := NewCache(db, maxAge)
	if err := c.Migrate(); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCache_SetGet(t *testing.T) {
	c := setupCache(t, time.Hour)

	if _, ok := c.Get("climate:1.0,2.0"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set("climate:1.0,2.0", []byte(`{"daily":{}}`)); err != nil {
		t.Fatal(err)
	}

	body, ok := c.Get("climate:1.0,2.0")
	if !ok {
		t.Fatal("expected hit")
	}
	if string(body) != `{"daily":{}}` {
		t.Errorf("body %q", body)
	}
}

func TestCache_Replace(t *testing.T) {
	c := setupCache(t, time.Hour)

	c.Set("k", []byte("old"))
	c.Set("k", []byte("new"))

	body, ok := c.Get("k")
	if !ok || string(body) != "new" {
		t.Errorf("got %q ok=%v, want new", body, ok)
	}
}

func TestCache_Expiry(t *testing.T) {
	// A zero-ish max age makes everything immediately stale.
	c := setupCache(t, time.Nanosecond)

	c.Set("k", []byte("v"))
	time.Sleep(time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expected stale entry to miss")
	}
}

func TestCache_Prune(t *testing.T) {
	c := setupCache(t, time.Nanosecond)

	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))
	time.Sleep(time.Millisecond)

	n, err := c.Prune()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("pruned %d rows, want 2", n)
	}
}
