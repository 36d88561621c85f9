package token

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
)

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	return NewRedisStore(mr.Addr(), "", "bookshelf:token")
}

func TestRedisStoreAbsentKeyLoadsEmpty(t *testing.T) {
	store := newRedisStore(t)
	tok, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q, want empty", tok)
	}
}

func TestRedisStoreSaveLoadClear(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "abc"); err != nil {
		t.Fatalf("save: %v", err)
	}
	tok, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tok != "abc" {
		t.Fatalf("token = %q, want abc", tok)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	tok, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("load after clear: %v", err)
	}
	if tok != "" {
		t.Fatalf("token = %q after clear, want empty", tok)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
}
