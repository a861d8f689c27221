// Package library keeps uploaded scores so they survive a restart. It runs
// on SQLite by default and on Postgres through pgx.
package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jsphweid/practice/model"
	_ "modernc.org/sqlite"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var ErrUnknownDriver = errors.New("unknown library driver")

type Library struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS uploaded_scores (
	filename TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	uploaded_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_uploaded_scores_uploaded_at ON uploaded_scores(uploaded_at);
`

// Open connects to the library. For SQLite the dsn is a file path whose
// directory is created if needed.
func Open(driver string, dsn string) (*Library, error) {
	switch driver {
	case DriverSQLite:
		if dir := filepath.Dir(dsn); dsn != ":memory:" && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create library directory: %w", err)
			}
		}
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open library: %w", err)
	}
	if driver == DriverSQLite {
		// one writer; also keeps ":memory:" to a single database
		db.SetMaxOpenConns(1)
	}
	return &Library{db: db, driver: driver, now: time.Now}, nil
}

func (l *Library) Close() error {
	return l.db.Close()
}

func (l *Library) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := l.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate library: %w", err)
		}
	}
	return nil
}

// rebind turns ? placeholders into $n for Postgres.
func (l *Library) rebind(query string) string {
	if l.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n += 1
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Save stores score, replacing any earlier upload with the same filename.
func (l *Library) Save(ctx context.Context, score model.UploadedScore) error {
	if score.Filename == "" {
		return errors.New("uploaded score needs a filename")
	}
	query := l.rebind(`
		INSERT INTO uploaded_scores (filename, content, uploaded_at) VALUES (?, ?, ?)
		ON CONFLICT (filename) DO UPDATE SET content = excluded.content, uploaded_at = excluded.uploaded_at`)
	if _, err := l.db.ExecContext(ctx, query, score.Filename, score.Content, l.now().UnixNano()); err != nil {
		return fmt.Errorf("failed to save %v: %w", score.Filename, err)
	}
	return nil
}

// All returns every stored upload, oldest first.
func (l *Library) All(ctx context.Context) ([]model.UploadedScore, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT filename, content FROM uploaded_scores ORDER BY uploaded_at, filename`)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	defer rows.Close()

	var res []model.UploadedScore
	for rows.Next() {
		var s model.UploadedScore
		if err := rows.Scan(&s.Filename, &s.Content); err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		res = append(res, s)
	}
	return res, rows.Err()
}
