package cacheinfra

import (
	"context"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Capacity != 2048 {
		t.Errorf("expected Capacity to be 2048, got %d", cfg.Capacity)
	}

	if cfg.NumShards != 64 {
		t.Errorf("expected NumShards to be 64, got %d", cfg.NumShards)
	}

	if cfg.TTL != 5*time.Minute {
		t.Errorf("expected TTL to be 5 minutes, got %v", cfg.TTL)
	}

	if cfg.EvictionPercentage != 10 {
		t.Errorf("expected EvictionPercentage to be 10, got %d", cfg.EvictionPercentage)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Capacity: 100, NumShards: 4, TTL: time.Minute, EvictionPercentage: 10}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		wantField string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero capacity", mutate: func(c *Config) { c.Capacity = 0 }, wantField: "Capacity"},
		{name: "zero shards", mutate: func(c *Config) { c.NumShards = 0 }, wantField: "NumShards"},
		{name: "more shards than capacity", mutate: func(c *Config) { c.NumShards = 101 }, wantField: "NumShards"},
		{name: "zero ttl", mutate: func(c *Config) { c.TTL = 0 }, wantField: "TTL"},
		{name: "eviction too low", mutate: func(c *Config) { c.EvictionPercentage = 0 }, wantField: "EvictionPercentage"},
		{name: "eviction too high", mutate: func(c *Config) { c.EvictionPercentage = 101 }, wantField: "EvictionPercentage"},
		{name: "negative interval", mutate: func(c *Config) { c.EvictionInterval = -time.Second }, wantField: "EvictionInterval"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no validation error, got %v", err)
				}
				return
			}

			cfgErr, ok := err.(*ConfigError)
			if !ok {
				t.Fatalf("expected *ConfigError, got %T (%v)", err, err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %q", tt.wantField, cfgErr.Field)
			}
		})
	}
}

func TestConfig_ToSturdycOptions(t *testing.T) {
	cfg := DefaultConfig()
	if got := len(cfg.ToSturdycOptions()); got != 0 {
		t.Errorf("expected no options for default config, got %d", got)
	}

	cfg.EvictionInterval = time.Second
	if got := len(cfg.ToSturdycOptions()); got != 1 {
		t.Errorf("expected one option with eviction interval, got %d", got)
	}
}

func TestConfigError_Error(t *testing.T) {
	err := &ConfigError{Field: "TTL", Message: "must be greater than 0"}
	want := "config error in field TTL: must be greater than 0"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNewSturdycStore_InvalidConfig(t *testing.T) {
	store, err := NewSturdycStore(Config{})
	if err == nil {
		t.Fatal("expected error for zero config")
	}
	if store != nil {
		t.Error("expected nil store on error")
	}
}

func newTestStore(t *testing.T) *SturdycStore {
	t.Helper()
	store, err := NewSturdycStore(Config{Capacity: 100, NumShards: 4, TTL: time.Minute, EvictionPercentage: 10})
	if err != nil {
		t.Fatalf("NewSturdycStore() failed: %v", err)
	}
	return store
}

func TestSturdycStore_SetGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, ok := store.Get(ctx, "blog::/blogs"); ok {
		t.Fatal("expected miss on empty store")
	}

	payload := []byte(`{"data":[]}`)
	if err := store.Set(ctx, "blog::/blogs", payload); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}

	// mutating the caller's buffer must not leak into the store
	payload[0] = 'X'

	got, ok := store.Get(ctx, "blog::/blogs")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if string(got) != `{"data":[]}` {
		t.Errorf("Get() = %q", got)
	}

	got[0] = 'Y'
	again, _ := store.Get(ctx, "blog::/blogs")
	if string(again) != `{"data":[]}` {
		t.Errorf("stored payload changed through returned slice: %q", again)
	}

	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}

func TestSturdycStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	_ = store.Set(ctx, "admin::/admin/all-admins", []byte("a"))
	if err := store.Delete(ctx, "admin::/admin/all-admins"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, ok := store.Get(ctx, "admin::/admin/all-admins"); ok {
		t.Error("expected miss after Delete")
	}

	// deleting a missing key is not an error
	if err := store.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() on missing key failed: %v", err)
	}
}

func TestSturdycStore_InvalidateKeys(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, k := range []string{"a", "b", "c"} {
		_ = store.Set(ctx, k, []byte(k))
	}

	if err := store.InvalidateKeys(ctx, []string{"a", "c", "missing"}); err != nil {
		t.Fatalf("InvalidateKeys() failed: %v", err)
	}

	if _, ok := store.Get(ctx, "b"); !ok {
		t.Error("expected b to survive")
	}
	if store.Size() != 1 {
		t.Errorf("Size() = %d, want 1", store.Size())
	}
}
