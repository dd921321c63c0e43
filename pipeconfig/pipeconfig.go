// Package pipeconfig holds the process-wide tunables for the atlas and
// image pipelines: atlas size bounds, SDF spread, default mip policy, and
// worker pool size (§10). A zero-value PipelineConfig is valid; Resolve
// fills in the constants named throughout the component design.
package pipeconfig

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

// PipelineConfig holds the tunables a PipelineConfig file may override.
// Every field is optional; a zero field resolves to its documented default.
type PipelineConfig struct {
	// AtlasMinSide is the minimum atlas side in pixels (default 256, §4.J
	// step 4).
	AtlasMinSide uint32 `toml:"atlas_min_side"`

	// AtlasMaxSide is the maximum atlas side in pixels (default 4096).
	AtlasMaxSide uint32 `toml:"atlas_max_side"`

	// SDFSpread is the clamp bound used by the SDF transform's
	// negation-and-quantization step (default 13.5, §4.G step 5).
	SDFSpread float64 `toml:"sdf_spread"`

	// SRGBGamutArea is the sRGB gamut-triangle area threshold used by the
	// wide-gamut test (default 0.0982, §4.K step 3).
	SRGBGamutArea float64 `toml:"srgb_gamut_area"`

	// CreateMipsByDefault is the mip policy for shared-texture uploads
	// (default false, §4.L). No package in this module reads it:
	// upload.ToShared takes createMips as an explicit argument, and the
	// atlas builder always passes false.
	CreateMipsByDefault bool `toml:"create_mips_by_default"`

	// DecodeWorkers bounds the concurrent decode pool's fan-out
	// (default 4, §5 "concurrent pool").
	DecodeWorkers int `toml:"decode_workers"`
}

// Defaults returns the PipelineConfig the spec's constants describe.
func Defaults() PipelineConfig {
	return PipelineConfig{
		AtlasMinSide:        256,
		AtlasMaxSide:        4096,
		SDFSpread:           13.5,
		SRGBGamutArea:       0.0982,
		CreateMipsByDefault: false,
		DecodeWorkers:       4,
	}
}

// Resolve overlays non-zero fields of c onto Defaults(), so a partially
// populated config (e.g. decoded from a file that only sets DecodeWorkers)
// still has sane values everywhere else.
func (c PipelineConfig) Resolve() PipelineConfig {
	d := Defaults()
	if c.AtlasMinSide != 0 {
		d.AtlasMinSide = c.AtlasMinSide
	}
	if c.AtlasMaxSide != 0 {
		d.AtlasMaxSide = c.AtlasMaxSide
	}
	if c.SDFSpread != 0 {
		d.SDFSpread = c.SDFSpread
	}
	if c.SRGBGamutArea != 0 {
		d.SRGBGamutArea = c.SRGBGamutArea
	}
	if c.DecodeWorkers != 0 {
		d.DecodeWorkers = c.DecodeWorkers
	}
	d.CreateMipsByDefault = c.CreateMipsByDefault
	return d
}

// Load decodes a PipelineConfig from a TOML file at path and resolves it
// against Defaults().
func Load(path string) (PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("pipeconfig: read %s: %w", path, err)
	}
	var c PipelineConfig
	if err := toml.Unmarshal(data, &c); err != nil {
		return PipelineConfig{}, fmt.Errorf("pipeconfig: parse %s: %w", path, err)
	}
	return c.Resolve(), nil
}

// Store holds the current PipelineConfig behind an atomic pointer, so
// readers never observe a partially-updated config during a hot reload.
type Store struct {
	value atomic.Pointer[PipelineConfig]
}

// NewStore creates a Store seeded with initial.
func NewStore(initial PipelineConfig) *Store {
	s := &Store{}
	s.value.Store(&initial)
	return s
}

// Get returns the current config snapshot.
func (s *Store) Get() PipelineConfig {
	return *s.value.Load()
}

// WatchFile reloads path into the store whenever it changes on disk,
// mirroring the fsnotify-driven hot reload pattern used elsewhere in the
// retrieved example set. The returned stop func closes the watcher; it is
// safe to call at most once.
func (s *Store) WatchFile(path string) (stop func() error, err error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("pipeconfig: new watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("pipeconfig: watch %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if cfg, loadErr := Load(path); loadErr == nil {
					s.value.Store(&cfg)
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				return
			}
		}
	}()

	return func() error {
		close(done)
		return watcher.Close()
	}, nil
}
