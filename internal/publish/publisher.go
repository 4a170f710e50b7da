// Package publish compiles approved master data into versioned releases.
package publish

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/brahma-hq/datasheet-tracker/internal/blob"
	"github.com/brahma-hq/datasheet-tracker/internal/common"
)

// Publisher builds product database releases from the master prefix.
type Publisher struct {
	Store  blob.Store
	Logger *slog.Logger
	Cfg    common.PublishConfig
	now    func() time.Time
}

func NewPublisher(store blob.Store, cfg common.PublishConfig, logger *slog.Logger) *Publisher {
	return &Publisher{
		Store:  store,
		Logger: logger,
		Cfg:    cfg,
		now:    time.Now,
	}
}

// Result summarizes one publish run.
type Result struct {
	ReleaseID string   `json:"release_id"`
	Records   int      `json:"records"`
	Valid     int      `json:"valid"`
	Invalid   int      `json:"invalid"`
	DryRun    bool     `json:"dry_run"`
	Outputs   []string `json:"outputs,omitempty"`
}

// ActivePointer is the content of the ACTIVE object.
type ActivePointer struct {
	ReleaseID   string `json:"release_id"`
	ActivatedAt string `json:"activated_at"`
}

// Publish validates every master record and compiles the valid ones into a
// new release. With dryRun set, nothing is written; the result reports what
// a real run would include.
func (p *Publisher) Publish(ctx context.Context, notes string, dryRun bool) (*Result, error) {
	paths, err := p.Store.List(ctx, p.Cfg.MasterRoot+"/")
	if err != nil {
		return nil, fmt.Errorf("list master data: %w", err)
	}

	var records []map[string]any
	res := &Result{DryRun: dryRun}
	for _, mp := range paths {
		if !strings.HasSuffix(mp, ".json") {
			continue
		}
		res.Records++
		var doc map[string]any
		if err := blob.ReadJSON(ctx, p.Store, mp, &doc); err != nil {
			return nil, fmt.Errorf("read master record %s: %w", mp, err)
		}
		if err := ValidateMaster(doc); err != nil {
			p.Logger.Warn("publish.invalid_record", "path", mp, "error", err)
			res.Invalid++
			continue
		}
		res.Valid++
		records = append(records, doc)
	}
	if res.Valid == 0 {
		return nil, common.NewAppError("PUBLISH_EMPTY", "no valid master records to publish", common.ErrInvalidInput)
	}

	at := p.now().UTC()
	res.ReleaseID = "db_release_" + at.Format("20060102_150405Z")
	if dryRun {
		p.Logger.Info("publish.dry_run", "release_id", res.ReleaseID, "valid", res.Valid, "invalid", res.Invalid)
		return res, nil
	}

	dbBytes, err := BuildSQLite(records, res.ReleaseID, p.Cfg.SchemaVersion, at)
	if err != nil {
		return nil, fmt.Errorf("build product database: %w", err)
	}

	releaseDir := path.Join(p.Cfg.ReleaseRoot, res.ReleaseID)

	dbPath := path.Join(releaseDir, "compiled", p.Cfg.ProductDBName)
	if err := p.Store.Write(ctx, dbPath, dbBytes, "application/vnd.sqlite3"); err != nil {
		return nil, fmt.Errorf("write product database: %w", err)
	}
	res.Outputs = append(res.Outputs, dbPath)

	versionPath := path.Join(releaseDir, "schema_version.json")
	if err := blob.WriteJSON(ctx, p.Store, versionPath, map[string]string{
		"schema_version": p.Cfg.SchemaVersion,
		"release_id":     res.ReleaseID,
	}); err != nil {
		return nil, fmt.Errorf("write schema version: %w", err)
	}
	res.Outputs = append(res.Outputs, versionPath)

	notesPath := path.Join(releaseDir, "release_notes.md")
	if err := p.Store.Write(ctx, notesPath, []byte(p.renderNotes(res, notes, at)), "text/markdown"); err != nil {
		return nil, fmt.Errorf("write release notes: %w", err)
	}
	res.Outputs = append(res.Outputs, notesPath)

	copied, err := p.copyStandards(ctx, releaseDir)
	if err != nil {
		return nil, err
	}
	res.Outputs = append(res.Outputs, copied...)

	manifestPath := path.Join(releaseDir, "manifest.json")
	if err := blob.WriteJSON(ctx, p.Store, manifestPath, map[string]any{
		"release_id":     res.ReleaseID,
		"schema_version": p.Cfg.SchemaVersion,
		"built_at":       at.Format(time.RFC3339),
		"module_count":   res.Valid,
		"invalid_count":  res.Invalid,
		"outputs":        res.Outputs,
	}); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}
	res.Outputs = append(res.Outputs, manifestPath)

	if err := blob.WriteJSON(ctx, p.Store, p.Cfg.ActiveObject, ActivePointer{
		ReleaseID:   res.ReleaseID,
		ActivatedAt: at.Format(time.RFC3339),
	}); err != nil {
		return nil, fmt.Errorf("write active pointer: %w", err)
	}

	p.Logger.Info("publish.ok",
		"release_id", res.ReleaseID,
		"modules", res.Valid,
		"invalid", res.Invalid,
		"outputs", len(res.Outputs))
	return res, nil
}

// Active resolves the currently active release.
func (p *Publisher) Active(ctx context.Context) (*ActivePointer, error) {
	var ptr ActivePointer
	if err := blob.ReadJSON(ctx, p.Store, p.Cfg.ActiveObject, &ptr); err != nil {
		return nil, err
	}
	return &ptr, nil
}

func (p *Publisher) copyStandards(ctx context.Context, releaseDir string) ([]string, error) {
	if p.Cfg.StandardsRoot == "" {
		return nil, nil
	}
	paths, err := p.Store.List(ctx, p.Cfg.StandardsRoot+"/")
	if err != nil {
		return nil, fmt.Errorf("list standards: %w", err)
	}
	var copied []string
	for _, sp := range paths {
		dst := path.Join(releaseDir, path.Base(sp))
		if err := p.Store.Copy(ctx, sp, dst); err != nil {
			return nil, fmt.Errorf("copy standard %s: %w", sp, err)
		}
		copied = append(copied, dst)
	}
	return copied, nil
}

func (p *Publisher) renderNotes(res *Result, notes string, at time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Release %s\n\n", res.ReleaseID)
	fmt.Fprintf(&b, "Built at %s.\n\n", at.Format(time.RFC3339))
	fmt.Fprintf(&b, "- Modules: %d\n- Invalid records skipped: %d\n- Schema version: %s\n",
		res.Valid, res.Invalid, p.Cfg.SchemaVersion)
	if strings.TrimSpace(notes) != "" {
		fmt.Fprintf(&b, "\n%s\n", strings.TrimSpace(notes))
	}
	return b.String()
}
