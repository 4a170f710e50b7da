package publish

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openDB(t *testing.T, data []byte) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "products.sqlite")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBuildSQLiteDynamicColumns(t *testing.T) {
	records := []map[string]any{
		{
			"mfr": "Acme", "model": "A1", "weight": "32kg",
			"variants": []any{
				map[string]any{"pmax_w": "600", "vmp_v": "34.1"},
				map[string]any{"pmax_w": "605", "vmp_v": "34.3"},
			},
		},
		{
			"mfr": "Acme", "model": "A2", "frame": "anodized",
		},
	}
	data, err := BuildSQLite(records, "db_release_20260501_120000Z", "1.0.0", time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	db := openDB(t, data)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM modules`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("modules = %d", n)
	}

	// frame exists only on the second record; the first gets the TEXT default
	var frame string
	if err := db.QueryRow(`SELECT "frame" FROM modules WHERE "key" = 'Acme::A1'`).Scan(&frame); err != nil {
		t.Fatal(err)
	}
	if frame != "" {
		t.Errorf("frame default = %q", frame)
	}

	var weight string
	if err := db.QueryRow(`SELECT "weight" FROM modules WHERE "key" = 'Acme::A1'`).Scan(&weight); err != nil {
		t.Fatal(err)
	}
	if weight != "32kg" {
		t.Errorf("weight = %q", weight)
	}

	if err := db.QueryRow(`SELECT COUNT(*) FROM module_variants WHERE module_key = 'Acme::A1'`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("variants = %d", n)
	}

	var releaseID string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'release_id'`).Scan(&releaseID); err != nil {
		t.Fatal(err)
	}
	if releaseID != "db_release_20260501_120000Z" {
		t.Errorf("release_id = %q", releaseID)
	}
}

func TestBuildSQLiteUpsertByKey(t *testing.T) {
	records := []map[string]any{
		{"mfr": "Acme", "model": "A1", "weight": "30kg"},
		{"mfr": "Acme", "model": "A1", "weight": "32kg"},
	}
	data, err := BuildSQLite(records, "r", "1.0.0", time.Now())
	if err != nil {
		t.Fatal(err)
	}
	db := openDB(t, data)

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM modules`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("modules = %d, want 1 after upsert", n)
	}
	var weight string
	if err := db.QueryRow(`SELECT "weight" FROM modules`).Scan(&weight); err != nil {
		t.Fatal(err)
	}
	if weight != "32kg" {
		t.Errorf("weight = %q, want last write", weight)
	}
}

func TestToText(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{true, "true"},
		{float64(34.5), "34.5"},
		{map[string]any{"a": "b"}, `{"a":"b"}`},
	}
	for _, tt := range tests {
		if got := toText(tt.in); got != tt.want {
			t.Errorf("toText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`we"ird`); got != `"we""ird"` {
		t.Errorf("quoteIdent = %s", got)
	}
}
