package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmylchreest/postersort/internal/colour"
)

func TestCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	poster := writePoster(t, dir, "Red.png", red)

	cache, err := OpenCache(filepath.Join(dir, "state", "cache.db"))
	if err != nil {
		t.Fatalf("OpenCache() error: %v", err)
	}
	defer cache.Close()

	ctx := context.Background()
	key, err := NewCacheKey(colour.StrategyAverage, "settings", poster, "-")
	if err != nil {
		t.Fatalf("NewCacheKey() error: %v", err)
	}

	if _, ok, err := cache.Get(ctx, key); err != nil || ok {
		t.Fatalf("Expected empty cache, got ok=%v err=%v", ok, err)
	}

	want := colour.NewColor(0.25, 0.5, 0.75)
	if err := cache.Put(ctx, key, want); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	got, ok, err := cache.Get(ctx, key)
	if err != nil || !ok {
		t.Fatalf("Expected hit, got ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// Absent results are cached too.
	absentKey := key
	absentKey.Strategy = colour.StrategyHistogramPeak
	if err := cache.Put(ctx, absentKey, colour.Absent); err != nil {
		t.Fatal(err)
	}
	if got, ok, _ := cache.Get(ctx, absentKey); !ok || !got.IsAbsent() {
		t.Errorf("Expected cached absent, got %v (ok=%v)", got, ok)
	}

	otherSettings := key
	otherSettings.Settings = "changed"
	if _, ok, err := cache.Get(ctx, otherSettings); err != nil || ok {
		t.Errorf("Expected miss for different settings, got ok=%v err=%v", ok, err)
	}
}

func TestCacheKeyTracksModification(t *testing.T) {
	dir := t.TempDir()
	poster := writePoster(t, dir, "Red.png", red)

	before, err := NewCacheKey(colour.StrategyAverage, "settings", poster, "-")
	if err != nil {
		t.Fatal(err)
	}
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(poster, later, later); err != nil {
		t.Fatal(err)
	}
	after, err := NewCacheKey(colour.StrategyAverage, "settings", poster, "-")
	if err != nil {
		t.Fatal(err)
	}
	if before == after {
		t.Error("Expected a new key after the poster changed")
	}

	if _, err := NewCacheKey(colour.StrategyAverage, "settings", filepath.Join(dir, "missing.png"), "-"); err == nil {
		t.Error("Expected error for a missing file")
	}
}

func TestDefaultCachePath(t *testing.T) {
	cacheHome := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", cacheHome)

	got, err := DefaultCachePath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(cacheHome, "postersort", "colours.db"); got != want {
		t.Errorf("Expected %s, got %s", want, got)
	}
}
