package source

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/podes/engine"
)

// tableName accepts "villages" or "schema.villages".
var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// SQLSource scans a whole table, one village per row. Column names become
// field keys.
type SQLSource struct {
	db    *sql.DB
	table string
}

// OpenSQL opens driverName ("postgres" or "sqlite") and pings it.
func OpenSQL(ctx context.Context, driverName, dsn, table string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}
	return &SQLSource{db: db, table: table}, nil
}

// NewSQL wraps an already open database.
func NewSQL(db *sql.DB, table string) (*SQLSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLSource{db: db, table: table}, nil
}

// Villages implements Source.
func (s *SQLSource) Villages(ctx context.Context) ([]engine.VillageRecord, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+s.table)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types: %w", err)
	}
	numeric := make([]bool, len(types))
	names := make([]string, len(types))
	for i, ct := range types {
		names[i] = strings.ToLower(ct.Name())
		numeric[i] = isNumericColumn(ct.DatabaseTypeName())
	}

	var out []engine.VillageRecord
	cells := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range cells {
		ptrs[i] = &cells[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		rec := engine.NewVillageRecord("", "", "", nil)
		for i, raw := range cells {
			if v := sqlValue(raw, numeric[i]); !v.IsAbsent() {
				rec.Set(names[i], v)
			}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", s.table, err)
	}
	return out, nil
}

// Close implements Source.
func (s *SQLSource) Close() error { return s.db.Close() }

func isNumericColumn(dbType string) bool {
	switch strings.ToUpper(dbType) {
	case "NUMERIC", "DECIMAL", "REAL", "FLOAT", "FLOAT4", "FLOAT8", "DOUBLE",
		"INT", "INT2", "INT4", "INT8", "INTEGER", "BIGINT", "SMALLINT":
		return true
	}
	return false
}

// sqlValue converts a scanned cell. Drivers return NUMERIC as []byte.
func sqlValue(raw any, numeric bool) engine.Value {
	switch x := raw.(type) {
	case []byte:
		if numeric {
			return engine.ParseNumber(string(x))
		}
		return engine.ParseString(string(x))
	case string:
		if numeric {
			return engine.ParseNumber(x)
		}
		return engine.ParseString(x)
	case time.Time:
		return engine.Text(x.Format("2006-01-02"))
	}
	return engine.ParseValue(raw)
}
