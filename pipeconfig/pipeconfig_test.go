package pipeconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFillsZeroFieldsFromDefaults(t *testing.T) {
	partial := PipelineConfig{DecodeWorkers: 8}
	resolved := partial.Resolve()

	defaults := Defaults()
	if resolved.AtlasMinSide != defaults.AtlasMinSide {
		t.Fatalf("AtlasMinSide = %d, want default %d", resolved.AtlasMinSide, defaults.AtlasMinSide)
	}
	if resolved.AtlasMaxSide != defaults.AtlasMaxSide {
		t.Fatalf("AtlasMaxSide = %d, want default %d", resolved.AtlasMaxSide, defaults.AtlasMaxSide)
	}
	if resolved.DecodeWorkers != 8 {
		t.Fatalf("DecodeWorkers = %d, want 8 (overridden)", resolved.DecodeWorkers)
	}
}

func TestResolvePreservesExplicitFalseForBooleanField(t *testing.T) {
	// CreateMipsByDefault has no "unset" sentinel distinct from false, so
	// Resolve always takes the caller's value for it rather than treating
	// false as "use the default."
	cfg := PipelineConfig{CreateMipsByDefault: false}.Resolve()
	if cfg.CreateMipsByDefault {
		t.Fatalf("expected CreateMipsByDefault to stay false")
	}
}

func TestLoadParsesTOMLAndResolves(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	contents := "decode_workers = 2\natlas_max_side = 2048\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DecodeWorkers != 2 {
		t.Fatalf("DecodeWorkers = %d, want 2", cfg.DecodeWorkers)
	}
	if cfg.AtlasMaxSide != 2048 {
		t.Fatalf("AtlasMaxSide = %d, want 2048", cfg.AtlasMaxSide)
	}
	if cfg.SDFSpread != Defaults().SDFSpread {
		t.Fatalf("SDFSpread = %v, want default %v (not set in file)", cfg.SDFSpread, Defaults().SDFSpread)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestStoreGetReturnsCurrentSnapshot(t *testing.T) {
	store := NewStore(Defaults())
	if got := store.Get(); got.AtlasMinSide != Defaults().AtlasMinSide {
		t.Fatalf("Get() = %+v, want defaults", got)
	}

	updated := Defaults()
	updated.DecodeWorkers = 16
	store.value.Store(&updated)
	if got := store.Get(); got.DecodeWorkers != 16 {
		t.Fatalf("Get().DecodeWorkers = %d, want 16", got.DecodeWorkers)
	}
}

func TestWatchFileKeepsLoadedSnapshotBeforeAnyChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.toml")
	if err := os.WriteFile(path, []byte("decode_workers = 1\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := NewStore(Defaults())
	initial, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	store.value.Store(&initial)

	stop, err := store.WatchFile(path)
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer stop()

	if got := store.Get().DecodeWorkers; got != 1 {
		t.Fatalf("DecodeWorkers = %d, want 1 before any reload", got)
	}
}
