// resolve.go
package config

import "time"

// built-in defaults, used when neither file nor flag sets a value
const (
	defaultHistorySize      = 100
	defaultCaptureInterval  = 10 * time.Millisecond
	defaultUploadInterval   = 50 * time.Millisecond
	defaultMinUploadSpacing = 50 * time.Millisecond
	defaultRequestTimeout   = 2 * time.Second
	defaultStoreAddr        = "localhost:50051"
	defaultMaxRecords       = 100
	defaultGRPCAddr         = ":50051"
	defaultHTTPAddr         = ":8080"
	defaultControlRadius    = 10
)

// Overrides carries command-line values; nil means "not given".
type Overrides struct {
	StoreAddr  *string
	Realtime   *bool
	MaxRecords *int
	GRPCAddr   *string
	HTTPAddr   *string
}

// Resolve applies defaults → cfg → overrides and validates the result.
func Resolve(cfg RawConfig, o Overrides) (Params, error) {
	overlay(&cfg.Store.Address, o.StoreAddr)
	overlay(&cfg.Sync.Realtime, o.Realtime)
	overlay(&cfg.Store.MaxRecords, o.MaxRecords)
	overlay(&cfg.Server.GRPCAddr, o.GRPCAddr)
	overlay(&cfg.Server.HTTPAddr, o.HTTPAddr)

	if err := ValidateRaw(cfg); err != nil {
		return Params{}, err
	}

	p := Params{
		HistorySize:      orDefault(cfg.Sync.HistorySize, defaultHistorySize),
		CaptureInterval:  durationOr(cfg.Sync.CaptureInterval, defaultCaptureInterval),
		UploadInterval:   durationOr(cfg.Sync.UploadInterval, defaultUploadInterval),
		MinUploadSpacing: durationOr(cfg.Sync.MinUploadSpacing, defaultMinUploadSpacing),
		RequestTimeout:   durationOr(cfg.Sync.RequestTimeout, defaultRequestTimeout),
		Realtime:         orDefault(cfg.Sync.Realtime, false),
		StoreAddr:        orDefault(cfg.Store.Address, defaultStoreAddr),
		MaxRecords:       orDefault(cfg.Store.MaxRecords, defaultMaxRecords),
		GRPCAddr:         orDefault(cfg.Server.GRPCAddr, defaultGRPCAddr),
		HTTPAddr:         orDefault(cfg.Server.HTTPAddr, defaultHTTPAddr),
		ControlRadius:    defaultControlRadius,
		Version:          cfg.Version,
	}
	if cfg.Control != nil {
		p.ControlRadius = orDefault(cfg.Control.Radius, defaultControlRadius)
	}
	return p, nil
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

// durationOr assumes ValidateRaw already accepted the string.
func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}
