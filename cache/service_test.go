package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfig_ValidateRejectsZeroTTL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TTL = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for zero TTL")
	}
}

func TestNewStore_Contract(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.TTL = time.Minute
	store, err := NewStore(cfg)
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}

	keys := NewDefaultKeySerializer()
	blogKey := keys.SerializeKey("blog", "/blogs")
	adminKey := keys.SerializeKey("admin", "/admin/all-admins")

	_ = store.Set(ctx, blogKey, []byte("blogs"))
	_ = store.Set(ctx, adminKey, []byte("admins"))

	if got := store.Size(); got != 2 {
		t.Fatalf("Size() = %d, want 2", got)
	}

	var blogKeys []string
	for _, k := range store.Keys(ctx) {
		if strings.HasPrefix(k, TagPrefix("blog")) {
			blogKeys = append(blogKeys, k)
		}
	}
	if err := store.InvalidateKeys(ctx, blogKeys); err != nil {
		t.Fatalf("InvalidateKeys() failed: %v", err)
	}

	if _, ok := store.Get(ctx, blogKey); ok {
		t.Error("blog payload should be gone")
	}
	if got, ok := store.Get(ctx, adminKey); !ok || string(got) != "admins" {
		t.Errorf("admin payload should survive, got %q (ok=%v)", got, ok)
	}
}

func TestNewStore_InvalidConfig(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Fatal("expected error for empty config")
	}
}
