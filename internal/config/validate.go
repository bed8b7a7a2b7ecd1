package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// sync.history_size
	if cfg.Sync.HistorySize != nil && *cfg.Sync.HistorySize <= 0 {
		errs = append(errs, "sync.history_size must be >= 1")
	}

	// durations
	durations := []struct {
		name string
		val  *string
	}{
		{"sync.capture_interval", cfg.Sync.CaptureInterval},
		{"sync.upload_interval", cfg.Sync.UploadInterval},
		{"sync.min_upload_spacing", cfg.Sync.MinUploadSpacing},
		{"sync.request_timeout", cfg.Sync.RequestTimeout},
	}
	parsed := make(map[string]time.Duration)
	for _, d := range durations {
		if d.val == nil {
			continue
		}
		v, err := time.ParseDuration(*d.val)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("%s: invalid duration %q", d.name, *d.val))
		case v <= 0:
			errs = append(errs, fmt.Sprintf("%s must be > 0", d.name))
		default:
			parsed[d.name] = v
		}
	}
	// a spacing far beyond the interval skips most upload ticks
	if up, ok := parsed["sync.upload_interval"]; ok {
		if sp, ok := parsed["sync.min_upload_spacing"]; ok && sp > 4*up {
			errs = append(errs, "sync.min_upload_spacing must be <= 4 * sync.upload_interval")
		}
	}

	// store
	if cfg.Store.Address != nil && strings.TrimSpace(*cfg.Store.Address) == "" {
		errs = append(errs, "store.address must not be empty")
	}
	if cfg.Store.MaxRecords != nil && *cfg.Store.MaxRecords < 0 {
		errs = append(errs, "store.max_records must be >= 0 (0 means unbounded)")
	}

	// server
	if cfg.Server.GRPCAddr != nil && *cfg.Server.GRPCAddr == "" {
		errs = append(errs, "server.grpc_addr must not be empty")
	}

	// control (optional)
	if cfg.Control != nil && cfg.Control.Radius != nil && *cfg.Control.Radius < 2 {
		errs = append(errs, "control.radius must be >= 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
