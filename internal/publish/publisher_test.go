package publish

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
)

func testPublishConfig() common.PublishConfig {
	return common.PublishConfig{
		MasterRoot:    "03_masterdata/modules",
		StandardsRoot: "02_databases/standards",
		ReleaseRoot:   "04_releases",
		ActiveObject:  "04_releases/ACTIVE",
		SchemaVersion: "1.0.0",
		ProductDBName: "module_products.sqlite",
	}
}

func newTestPublisher(t *testing.T) (*Publisher, *blob.FSStore) {
	t.Helper()
	store, err := blob.NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p := NewPublisher(store, testPublishConfig(), slog.New(slog.DiscardHandler))
	p.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return p, store
}

func seedMaster(t *testing.T, store blob.Store) {
	t.Helper()
	ctx := context.Background()
	if err := blob.WriteJSON(ctx, store, "03_masterdata/modules/acme/a1.json", map[string]any{
		"mfr": "Acme", "model": "A1", "weight": "32kg",
		"variants": []any{map[string]any{"pmax_w": "600"}},
	}); err != nil {
		t.Fatal(err)
	}
	// missing model, rejected by the schema
	if err := blob.WriteJSON(ctx, store, "03_masterdata/modules/acme/broken.json", map[string]any{
		"mfr": "Acme",
	}); err != nil {
		t.Fatal(err)
	}
	if err := store.Write(ctx, "02_databases/standards/iec_61215.yaml", []byte("standard: IEC 61215"), ""); err != nil {
		t.Fatal(err)
	}
}

func TestPublishDryRun(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPublisher(t)
	seedMaster(t, store)

	res, err := p.Publish(ctx, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if res.Records != 2 || res.Valid != 1 || res.Invalid != 1 {
		t.Errorf("counts = %+v", res)
	}
	if len(res.Outputs) != 0 {
		t.Errorf("dry run produced outputs: %v", res.Outputs)
	}

	releases, err := store.List(ctx, "04_releases/")
	if err != nil {
		t.Fatal(err)
	}
	if len(releases) != 0 {
		t.Errorf("dry run wrote objects: %v", releases)
	}
}

func TestPublish(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPublisher(t)
	seedMaster(t, store)

	res, err := p.Publish(ctx, "first cut", false)
	if err != nil {
		t.Fatal(err)
	}
	if res.ReleaseID != "db_release_20260501_120000Z" {
		t.Errorf("release id = %q", res.ReleaseID)
	}

	dbData, err := store.Read(ctx, "04_releases/db_release_20260501_120000Z/compiled/module_products.sqlite")
	if err != nil {
		t.Fatal(err)
	}
	db := openDB(t, dbData)
	var weight string
	if err := db.QueryRow(`SELECT "weight" FROM modules WHERE "key" = 'Acme::A1'`).Scan(&weight); err != nil {
		t.Fatal(err)
	}
	if weight != "32kg" {
		t.Errorf("weight = %q", weight)
	}

	for _, obj := range []string{
		"04_releases/db_release_20260501_120000Z/schema_version.json",
		"04_releases/db_release_20260501_120000Z/release_notes.md",
		"04_releases/db_release_20260501_120000Z/manifest.json",
		"04_releases/db_release_20260501_120000Z/iec_61215.yaml",
	} {
		ok, err := store.Exists(ctx, obj)
		if err != nil || !ok {
			t.Errorf("missing release output %s", obj)
		}
	}

	ptr, err := p.Active(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ptr.ReleaseID != res.ReleaseID {
		t.Errorf("active = %q, want %q", ptr.ReleaseID, res.ReleaseID)
	}

	notes, err := store.Read(ctx, "04_releases/db_release_20260501_120000Z/release_notes.md")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"first cut", "Modules: 1", "Invalid records skipped: 1"} {
		if !strings.Contains(string(notes), want) {
			t.Errorf("release notes missing %q:\n%s", want, notes)
		}
	}
}

func TestPublishNoValidRecords(t *testing.T) {
	p, _ := newTestPublisher(t)
	_, err := p.Publish(context.Background(), "", false)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestValidateMaster(t *testing.T) {
	if err := ValidateMaster(map[string]any{"mfr": "Acme", "model": "A1"}); err != nil {
		t.Errorf("valid record rejected: %v", err)
	}
	if err := ValidateMaster(map[string]any{"mfr": "Acme"}); err == nil {
		t.Error("missing model accepted")
	}
	if err := ValidateMaster(map[string]any{"mfr": "", "model": "A1"}); err == nil {
		t.Error("empty mfr accepted")
	}
}
