package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/podes/engine"
	"github.com/spektr-org/podes/helpers"
	"github.com/spektr-org/podes/schema"
)

// FileSource reads a JSON or CSV export on every call.
type FileSource struct {
	path string
	reg  *schema.Registry
}

// NewFile returns a source reading path. Files ending in .csv are parsed as
// PODES exports; everything else as JSON.
func NewFile(path string, reg *schema.Registry) *FileSource {
	return &FileSource{path: path, reg: reg}
}

// Villages implements Source.
func (f *FileSource) Villages(ctx context.Context) ([]engine.VillageRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read villages file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(f.path), ".csv") {
		rows, _, err := helpers.ParseVillagesCSV(data, f.reg)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f.path, err)
		}
		return rows, nil
	}
	return DecodeVillagesJSON(data)
}

// Close implements Source.
func (f *FileSource) Close() error { return nil }
