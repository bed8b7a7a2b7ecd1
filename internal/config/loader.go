package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /etc/joystick
}

func (p Paths) DefaultPath() string {
	return filepath.Join(p.BaseDir, "default.yaml")
}
func (p Paths) ProfilePath(profile string) string {
	return filepath.Join(p.BaseDir, "profiles", profile+".yaml")
}

// Loader reads YAML configs and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: profile name, "" for default only
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// Files lists the files LoadMerged reads for profile, in merge order.
func (l *Loader) Files(profile string) []string {
	files := []string{l.paths.DefaultPath()}
	if profile != "" {
		files = append(files, l.paths.ProfilePath(profile))
	}
	return files
}

// LoadMerged loads and merges default → profile (profile optional).
// It returns the merged RawConfig without defaults applied. Missing files
// are treated as empty.
func (l *Loader) LoadMerged(profile string) (RawConfig, error) {
	l.mu.RLock()
	if cfg, ok := l.cache[profile]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if profile != "" {
		profCfg, err := readYAML(l.paths.ProfilePath(profile))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read profile %s: %w", profile, err)
		}
		merged = mergeRaw(merged, profCfg)
	}

	l.mu.Lock()
	l.cache[""] = defCfg
	l.cache[profile] = merged
	l.mu.Unlock()

	return merged, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: every field set in b wins.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// sync
	overlay(&out.Sync.HistorySize, b.Sync.HistorySize)
	overlay(&out.Sync.CaptureInterval, b.Sync.CaptureInterval)
	overlay(&out.Sync.UploadInterval, b.Sync.UploadInterval)
	overlay(&out.Sync.MinUploadSpacing, b.Sync.MinUploadSpacing)
	overlay(&out.Sync.RequestTimeout, b.Sync.RequestTimeout)
	overlay(&out.Sync.Realtime, b.Sync.Realtime)

	// store / server
	overlay(&out.Store.Address, b.Store.Address)
	overlay(&out.Store.MaxRecords, b.Store.MaxRecords)
	overlay(&out.Server.GRPCAddr, b.Server.GRPCAddr)
	overlay(&out.Server.HTTPAddr, b.Server.HTTPAddr)

	// control
	switch {
	case out.Control == nil && b.Control != nil:
		c := *b.Control
		out.Control = &c
	case out.Control != nil && b.Control != nil:
		c := *out.Control
		overlay(&c.Radius, b.Control.Radius)
		out.Control = &c
	}

	return out
}

func overlay[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}
