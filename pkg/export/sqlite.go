package export

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/snapview/pkg/geometry"
	"github.com/vanderheijden86/snapview/pkg/metrics"
	"github.com/vanderheijden86/snapview/pkg/props"
	"github.com/vanderheijden86/snapview/pkg/snapshot"

	_ "modernc.org/sqlite"
)

// SchemaVersion is stored in export_meta.
const SchemaVersion = 1

// SQLiteExporter dumps a snapshot's element tree and property bags.
type SQLiteExporter struct {
	Snapshot *snapshot.Snapshot
	Store    *props.Store

	now func() time.Time
}

// NewSQLiteExporter returns an exporter for snap. A nil store decodes bags
// on demand.
func NewSQLiteExporter(snap *snapshot.Snapshot, store *props.Store) *SQLiteExporter {
	if store == nil {
		store = props.NewStore()
	}
	return &SQLiteExporter{Snapshot: snap, Store: store, now: time.Now}
}

// Export writes the database to path, replacing any existing file.
func (e *SQLiteExporter) Export(path string) error {
	defer metrics.Timer(metrics.Export)()

	if e.Snapshot == nil || e.Snapshot.Tree == nil {
		return ErrNoSnapshot
	}
	if path == "" {
		return fmt.Errorf("output path is required")
	}
	if err := ensureParent(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	dbClosed := false
	defer func() {
		if !dbClosed {
			db.Close()
		}
	}()

	if err := CreateSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := e.insertNodes(db); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	if err := e.insertMeta(db); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	dbClosed = true
	if err := db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// CreateSchema creates the export tables and indexes.
func CreateSchema(db *sql.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"nodes table", `
			CREATE TABLE IF NOT EXISTS nodes (
				id INTEGER PRIMARY KEY,
				parent_id INTEGER,
				depth INTEGER NOT NULL,
				position INTEGER NOT NULL,
				label TEXT NOT NULL,
				x INTEGER,
				y INTEGER,
				width INTEGER,
				height INTEGER,
				raw_source TEXT,
				FOREIGN KEY (parent_id) REFERENCES nodes(id)
			)`},
		{"properties table", `
			CREATE TABLE IF NOT EXISTS properties (
				node_id INTEGER NOT NULL,
				position INTEGER NOT NULL,
				key TEXT NOT NULL,
				kind TEXT NOT NULL,
				value TEXT,
				PRIMARY KEY (node_id, key),
				FOREIGN KEY (node_id) REFERENCES nodes(id)
			)`},
		{"export_meta table", `
			CREATE TABLE IF NOT EXISTS export_meta (
				key TEXT PRIMARY KEY,
				value TEXT
			)`},
		{"parent index", `CREATE INDEX IF NOT EXISTS idx_nodes_parent ON nodes(parent_id)`},
		{"key index", `CREATE INDEX IF NOT EXISTS idx_properties_key ON properties(key, value)`},
	}
	for _, s := range stmts {
		if _, err := db.Exec(s.sql); err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

func (e *SQLiteExporter) insertNodes(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	nodeStmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent_id, depth, position, label, x, y, width, height, raw_source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer nodeStmt.Close()

	propStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO properties (node_id, position, key, kind, value)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer propStmt.Close()

	for i, n := range e.Snapshot.Tree.Nodes() {
		bag := e.Store.Get(n)

		var parentID *int
		if p := n.Parent(); p != nil {
			parentID = &p.ID
		}
		var x, y, w, h *int
		if r, ok := geometry.RectOf(bag); ok {
			x, y, w, h = &r.X, &r.Y, &r.Width, &r.Height
		}

		if _, err := nodeStmt.Exec(n.ID, parentID, n.Depth(), i, n.Label, x, y, w, h, n.RawSource); err != nil {
			return fmt.Errorf("insert node %d: %w", n.ID, err)
		}

		for j, entry := range bag.Entries() {
			var value *string
			if entry.Value.Kind != props.Null {
				v := entry.Value.Text
				value = &v
			}
			if _, err := propStmt.Exec(n.ID, j, entry.Key, kindName(entry.Value.Kind), value); err != nil {
				return fmt.Errorf("insert property %s of node %d: %w", entry.Key, n.ID, err)
			}
		}
	}

	return tx.Commit()
}

func (e *SQLiteExporter) insertMeta(db *sql.DB) error {
	snap := e.Snapshot
	meta := map[string]string{
		"schema_version":    strconv.Itoa(SchemaVersion),
		"exported_at":       e.now().UTC().Format(time.RFC3339),
		"snapshot":          snap.Name,
		"node_count":        strconv.Itoa(snap.Tree.Len()),
		"screenshot_width":  strconv.Itoa(snap.Natural.Width),
		"screenshot_height": strconv.Itoa(snap.Natural.Height),
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO export_meta (key, value) VALUES (?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for k, v := range meta {
		if _, err := stmt.Exec(k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}
	return tx.Commit()
}

