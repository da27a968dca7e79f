// Package source loads the village dataset from wherever it lives: a JSON
// or CSV file, a Postgres or SQLite table, a MongoDB collection or a remote
// backend speaking the /api/villages envelope.
package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/schema"
	"go.uber.org/zap"
)

// Sentinel errors.
var (
	ErrUnknownDriver = errors.New("source: unknown driver")
	ErrMissingOption = errors.New("source: missing driver option")
	ErrBackend       = errors.New("source: backend reported failure")
)

// Driver names.
const (
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
	DriverHTTP     = "http"
)

// Drivers lists the supported driver names.
var Drivers = []string{DriverFile, DriverPostgres, DriverSQLite, DriverMongo, DriverHTTP}

// Source yields the full village row set. Implementations are safe for
// concurrent use.
type Source interface {
	Villages(ctx context.Context) ([]engine.VillageRecord, error)
	Close() error
}

// Config selects and configures a driver.
type Config struct {
	Driver          string        `mapstructure:"driver" json:"driver"`
	Path            string        `mapstructure:"path" json:"path,omitempty"`
	DSN             string        `mapstructure:"dsn" json:"-"`
	Table           string        `mapstructure:"table" json:"table,omitempty"`
	MongoURI        string        `mapstructure:"mongo_uri" json:"-"`
	MongoDatabase   string        `mapstructure:"mongo_database" json:"mongoDatabase,omitempty"`
	MongoCollection string        `mapstructure:"mongo_collection" json:"mongoCollection,omitempty"`
	BaseURL         string        `mapstructure:"base_url" json:"baseUrl,omitempty"`
	Timeout         time.Duration `mapstructure:"timeout" json:"timeout"`
}

// Validate checks that the driver is known and its options are set.
func (c Config) Validate() error {
	missing := func(opt string) error {
		return fmt.Errorf("%w: %s requires %s", ErrMissingOption, c.Driver, opt)
	}
	switch c.Driver {
	case DriverFile:
		if c.Path == "" {
			return missing("path")
		}
	case DriverPostgres, DriverSQLite:
		if c.DSN == "" {
			return missing("dsn")
		}
		if c.Table == "" {
			return missing("table")
		}
	case DriverMongo:
		if c.MongoURI == "" {
			return missing("mongo_uri")
		}
		if c.MongoDatabase == "" || c.MongoCollection == "" {
			return missing("mongo_database and mongo_collection")
		}
	case DriverHTTP:
		if c.BaseURL == "" {
			return missing("base_url")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
	return nil
}

// New opens the configured source. reg is used by the CSV file driver to
// type columns; it may be nil.
func New(ctx context.Context, cfg Config, reg *schema.Registry, logger *zap.Logger) (Source, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger.Info("Opening village source", zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case DriverFile:
		return NewFile(cfg.Path, reg), nil
	case DriverPostgres:
		return OpenSQL(ctx, "postgres", cfg.DSN, cfg.Table)
	case DriverSQLite:
		return OpenSQL(ctx, "sqlite", cfg.DSN, cfg.Table)
	case DriverMongo:
		return OpenMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, cfg.Timeout)
	case DriverHTTP:
		return NewHTTP(cfg.BaseURL, cfg.Timeout), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}

// ============================================================================
// ENVELOPE — /api/villages wire format
// ============================================================================

// Envelope is the {success, data, count} body of /api/villages.
type Envelope struct {
	Success bool                   `json:"success"`
	Data    []engine.VillageRecord `json:"data"`
	Count   int                    `json:"count"`
	Error   string                 `json:"error,omitempty"`
}

// NewEnvelope wraps rows in a success envelope.
func NewEnvelope(rows []engine.VillageRecord) Envelope {
	if rows == nil {
		rows = []engine.VillageRecord{}
	}
	return Envelope{Success: true, Data: rows, Count: len(rows)}
}

// DecodeVillagesJSON reads either an envelope or a bare array of rows.
func DecodeVillagesJSON(data []byte) ([]engine.VillageRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("decode villages: empty document")
	}

	if trimmed[0] == '[' {
		var rows []engine.VillageRecord
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode villages: %w", err)
		}
		return rows, nil
	}

	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("decode villages: %w", err)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "success=false"
		}
		return nil, fmt.Errorf("%w: %s", ErrBackend, msg)
	}
	if env.Data == nil {
		return []engine.VillageRecord{}, nil
	}
	return env.Data, nil
}
