package publish

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// The product database schema is dynamic: every master record field becomes
// a TEXT column, added on first sight. Consumers discover columns through
// PRAGMA table_info rather than a fixed contract.

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func toText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(b)
	}
}

func tableColumns(db *sql.DB, table string) (map[string]struct{}, error) {
	rows, err := db.Query(`PRAGMA table_info(` + quoteIdent(table) + `)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]struct{})
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols[name] = struct{}{}
	}
	return cols, rows.Err()
}

func ensureColumns(db *sql.DB, table string, wanted []string) error {
	existing, err := tableColumns(db, table)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", table, err)
	}
	for _, col := range wanted {
		if _, ok := existing[col]; ok {
			continue
		}
		stmt := `ALTER TABLE ` + quoteIdent(table) + ` ADD COLUMN ` + quoteIdent(col) + ` TEXT DEFAULT ''`
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, col, err)
		}
		existing[col] = struct{}{}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func upsert(db *sql.DB, table string, keyCols []string, values map[string]string) error {
	cols := sortedKeys(values)
	if err := ensureColumns(db, table, cols); err != nil {
		return err
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	var updates []string
	keySet := make(map[string]struct{}, len(keyCols))
	for _, k := range keyCols {
		keySet[k] = struct{}{}
	}
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		placeholders[i] = "?"
		args[i] = values[c]
		if _, isKey := keySet[c]; !isKey {
			updates = append(updates, quoteIdent(c)+` = excluded.`+quoteIdent(c))
		}
	}

	quotedKeys := make([]string, len(keyCols))
	for i, k := range keyCols {
		quotedKeys[i] = quoteIdent(k)
	}

	stmt := `INSERT INTO ` + quoteIdent(table) +
		` (` + strings.Join(quoted, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)` +
		` ON CONFLICT(` + strings.Join(quotedKeys, ", ") + `) DO UPDATE SET ` +
		strings.Join(updates, ", ")
	if len(updates) == 0 {
		stmt = `INSERT OR IGNORE INTO ` + quoteIdent(table) +
			` (` + strings.Join(quoted, ", ") + `) VALUES (` + strings.Join(placeholders, ", ") + `)`
	}
	if _, err := db.Exec(stmt, args...); err != nil {
		return fmt.Errorf("upsert into %s: %w", table, err)
	}
	return nil
}

// BuildSQLite compiles master records into a single-file product database
// and returns its bytes. Modules are keyed by "mfr::model", variants by the
// module key plus their pmax_w value.
func BuildSQLite(records []map[string]any, releaseID, schemaVersion string, builtAt time.Time) ([]byte, error) {
	dir, err := os.MkdirTemp("", "product-db-*")
	if err != nil {
		return nil, fmt.Errorf("temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "products.sqlite")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	ddl := []string{
		`CREATE TABLE modules (key TEXT PRIMARY KEY)`,
		`CREATE TABLE module_variants (module_key TEXT NOT NULL, variant_key TEXT NOT NULL,
			PRIMARY KEY (module_key, variant_key))`,
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create tables: %w", err)
		}
	}

	for _, rec := range records {
		mfr := toText(rec["mfr"])
		model := toText(rec["model"])
		moduleKey := mfr + "::" + model

		row := map[string]string{"key": moduleKey}
		for k, v := range rec {
			if k == "variants" {
				continue
			}
			row[k] = toText(v)
		}
		if err := upsert(db, "modules", []string{"key"}, row); err != nil {
			db.Close()
			return nil, err
		}

		variants, _ := rec["variants"].([]any)
		for _, raw := range variants {
			variant, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			vrow := map[string]string{
				"module_key":  moduleKey,
				"variant_key": toText(variant["pmax_w"]),
			}
			for k, v := range variant {
				vrow[k] = toText(v)
			}
			if err := upsert(db, "module_variants", []string{"module_key", "variant_key"}, vrow); err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	metaRows := map[string]string{
		"release_id":     releaseID,
		"schema_version": schemaVersion,
		"built_at":       builtAt.UTC().Format(time.RFC3339),
		"module_count":   strconv.Itoa(len(records)),
	}
	for _, k := range sortedKeys(metaRows) {
		if err := upsert(db, "meta", []string{"key"}, map[string]string{"key": k, "value": metaRows[k]}); err != nil {
			db.Close()
			return nil, err
		}
	}

	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("close sqlite: %w", err)
	}
	return os.ReadFile(path)
}
