// types.go
package config

import "time"

// Raw config loaded from YAML. Pointer fields distinguish "unset" from zero.
type RawConfig struct {
	Version string         `yaml:"version"`
	Sync    SyncConfig     `yaml:"sync"`
	Store   StoreConfig    `yaml:"store"`
	Server  ServerConfig   `yaml:"server"`
	Control *ControlConfig `yaml:"control,omitempty"`
	Notes   string         `yaml:"notes,omitempty"`
}

type SyncConfig struct {
	HistorySize      *int    `yaml:"history_size"`
	CaptureInterval  *string `yaml:"capture_interval"`   // e.g. "10ms"
	UploadInterval   *string `yaml:"upload_interval"`    // e.g. "50ms"
	MinUploadSpacing *string `yaml:"min_upload_spacing"` // guard between uploads
	RequestTimeout   *string `yaml:"request_timeout"`
	Realtime         *bool   `yaml:"realtime"`
}

type StoreConfig struct {
	Address    *string `yaml:"address"`     // client side: where the position store listens
	MaxRecords *int    `yaml:"max_records"` // server side: hard bound on the table
}

type ServerConfig struct {
	GRPCAddr *string `yaml:"grpc_addr"`
	HTTPAddr *string `yaml:"http_addr"`
}

type ControlConfig struct {
	Radius *int `yaml:"radius"` // terminal cells
}

// Params are the normalized settings used by the commands.
type Params struct {
	HistorySize      int
	CaptureInterval  time.Duration
	UploadInterval   time.Duration
	MinUploadSpacing time.Duration
	RequestTimeout   time.Duration
	Realtime         bool

	StoreAddr  string
	MaxRecords int

	GRPCAddr string
	HTTPAddr string

	ControlRadius int
	Version       string // effective config version for logs
}
