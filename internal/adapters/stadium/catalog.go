// Package stadium keeps the stadium-name to diagram-URL catalog in SQLite.
package stadium

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	_ "github.com/glebarez/go-sqlite" // registers the "sqlite" driver

	"github.com/dingerzone/seatfinder/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS stadiums (
    name      TEXT PRIMARY KEY,
    home_link TEXT NOT NULL DEFAULT '',
    img_link  TEXT NOT NULL DEFAULT ''
);`

// Stadium is one catalog row.
type Stadium struct {
	Name     string `json:"name"`
	HomeLink string `json:"home_link,omitempty"`
	ImgLink  string `json:"img_link,omitempty"`
}

// Catalog is a SQLite-backed stadium list.
type Catalog struct {
	db  *sql.DB
	log logger.Logger
}

// Open opens (creating if needed) the catalog at path. Use ":memory:" for tests.
func Open(ctx context.Context, path string) (*Catalog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create catalog schema: %w", err)
	}
	return &Catalog{db: db, log: logger.Get().Named("catalog")}, nil
}

// Close releases the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Upsert inserts or replaces one stadium.
func (c *Catalog) Upsert(ctx context.Context, s Stadium) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO stadiums (name, home_link, img_link) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET home_link = excluded.home_link, img_link = excluded.img_link`,
		s.Name, s.HomeLink, s.ImgLink)
	if err != nil {
		return fmt.Errorf("upsert stadium %q: %w", s.Name, err)
	}
	return nil
}

// ImportCSV loads rows with header stadium,home_link,img_link in one
// transaction and returns how many were written. Rows without a name are skipped.
func (c *Catalog) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("%w: header: %v", ErrBadCSV, err)
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	nameCol, ok := idx["stadium"]
	if !ok {
		return 0, fmt.Errorf("%w: missing stadium column", ErrBadCSV)
	}
	imgCol, ok := idx["img_link"]
	if !ok {
		return 0, fmt.Errorf("%w: missing img_link column", ErrBadCSV)
	}
	homeCol, hasHome := idx["home_link"]

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO stadiums (name, home_link, img_link) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET home_link = excluded.home_link, img_link = excluded.img_link`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	n := 0
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrBadCSV, err)
		}
		s := Stadium{Name: cell(rec, nameCol), ImgLink: cell(rec, imgCol)}
		if hasHome {
			s.HomeLink = cell(rec, homeCol)
		}
		if s.Name == "" {
			continue
		}
		if _, err := stmt.ExecContext(ctx, s.Name, s.HomeLink, s.ImgLink); err != nil {
			return 0, fmt.Errorf("import stadium %q: %w", s.Name, err)
		}
		n++
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	c.log.Info(ctx, "stadium catalog imported", logger.Int("rows", n))
	return n, nil
}

// Resolve returns the diagram URL for a stadium name. Unknown names and rows
// without an image link yield ErrUnknownStadium.
func (c *Catalog) Resolve(ctx context.Context, name string) (string, error) {
	var img string
	err := c.db.QueryRowContext(ctx, `SELECT img_link FROM stadiums WHERE name = ?`, strings.TrimSpace(name)).Scan(&img)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", ErrUnknownStadium, name)
	}
	if err != nil {
		return "", fmt.Errorf("resolve stadium %q: %w", name, err)
	}
	if img == "" {
		return "", fmt.Errorf("%w: %q has no image", ErrUnknownStadium, name)
	}
	return img, nil
}

// List returns every stadium that has an image, ordered by name.
func (c *Catalog) List(ctx context.Context) ([]Stadium, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, home_link, img_link FROM stadiums WHERE img_link <> '' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list stadiums: %w", err)
	}
	defer rows.Close()

	var out []Stadium
	for rows.Next() {
		var s Stadium
		if err := rows.Scan(&s.Name, &s.HomeLink, &s.ImgLink); err != nil {
			return nil, fmt.Errorf("scan stadium: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func cell(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
