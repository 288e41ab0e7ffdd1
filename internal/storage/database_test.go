package storage

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	db, err := New(filepath.Join(t.TempDir(), "manualrag.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if got := db.Stats().MaxOpenConnections; got != 25 {
		t.Errorf("MaxOpenConnections = %d, want 25", got)
	}
	var fk int
	if err := db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil || fk != 1 {
		t.Errorf("foreign_keys = %d (err %v), want 1", fk, err)
	}

	if db, err := New("/nonexistent/dir/manualrag.db"); err == nil {
		_ = db.Close()
		t.Error("New() should fail when the directory does not exist")
	}
}

func TestMigrate_Schema(t *testing.T) {
	db := newTestDB(t)

	// A second run must be a no-op.
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() second run error = %v", err)
	}

	want := map[string][]string{
		"documents": {"id", "title", "content", "author", "created_at", "updated_at"},
		"uploads":   {"id", "title", "num_chunks", "files", "created_at"},
	}
	for table, cols := range want {
		rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
		if err != nil {
			t.Fatalf("table_info(%s): %v", table, err)
		}
		var got []string
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				t.Fatal(err)
			}
			got = append(got, name)
		}
		_ = rows.Close()

		if strings.Join(got, ",") != strings.Join(cols, ",") {
			t.Errorf("%s columns = %v, want %v", table, got, cols)
		}
	}
}

func TestMigrate_DocumentDefaults(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Exec(`INSERT INTO documents (id, title, content) VALUES ('d1', 'T', 'C')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	var author, created string
	if err := db.QueryRow(`SELECT author, created_at FROM documents WHERE id = 'd1'`).Scan(&author, &created); err != nil {
		t.Fatal(err)
	}
	if author != "" {
		t.Errorf("default author = %q, want empty", author)
	}
	if _, err := parseTimestamp(created); err != nil {
		t.Errorf("default created_at %q not parseable: %v", created, err)
	}
}

func TestMigrate_CreatesUploadsTitleIndex(t *testing.T) {
	db := newTestDB(t)

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_uploads_title'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to check index: %v", err)
	}
	if count != 1 {
		t.Error("Migrate() did not create idx_uploads_title")
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{in: "2024-05-01 12:30:00"},
		{in: "2024-05-01T12:30:00Z"},
		{in: "2024-05-01T12:30:00.123456789Z"},
		{in: "yesterday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseTimestamp(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if !tt.wantErr && (got.Year() != 2024 || got.Minute() != 30) {
			t.Errorf("parseTimestamp(%q) = %v", tt.in, got)
		}
	}
}

// newTestDB opens a migrated database in a temp dir.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := Migrate(db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return db
}
