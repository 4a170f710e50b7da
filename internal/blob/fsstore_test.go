package blob

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func newTestStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	path := "01_raw_catalogues/modules/acme/20260101_000000Z_sheet.pdf"
	if err := s.Write(ctx, path, []byte("pdf-bytes"), "application/pdf"); err != nil {
		t.Fatal(err)
	}

	got, err := s.Read(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "pdf-bytes" {
		t.Errorf("Read = %q", got)
	}

	ok, err := s.Exists(ctx, path)
	if err != nil || !ok {
		t.Errorf("Exists = %v, %v", ok, err)
	}
	ok, err = s.Exists(ctx, "nope/missing.pdf")
	if err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v", ok, err)
	}
}

func TestFSStoreReadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Read(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestFSStoreList(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, p := range []string{
		"02_candidates/modules/b.json",
		"02_candidates/modules/a.json",
		"03_masterdata/modules/c.json",
	} {
		if err := s.Write(ctx, p, []byte("{}"), ""); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.List(ctx, "02_candidates/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"02_candidates/modules/a.json", "02_candidates/modules/b.json"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestFSStoreCopy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.Write(ctx, "a/x.yaml", []byte("k: v"), ""); err != nil {
		t.Fatal(err)
	}
	if err := s.Copy(ctx, "a/x.yaml", "b/x.yaml"); err != nil {
		t.Fatal(err)
	}
	got, err := s.Read(ctx, "b/x.yaml")
	if err != nil || string(got) != "k: v" {
		t.Errorf("copied object = %q, %v", got, err)
	}
}

func TestFSStoreRejectsEscapingPaths(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Write(ctx, "../outside.txt", []byte("x"), ""); err == nil {
		t.Error("expected error for path escaping the root")
	}
	if _, err := s.Read(ctx, "/etc/passwd"); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	in := map[string]any{"mfr": "Acme", "model": "AC-600"}
	if err := WriteJSON(ctx, s, "03_masterdata/modules/acme/ac-600.json", in); err != nil {
		t.Fatal(err)
	}
	var out map[string]any
	if err := ReadJSON(ctx, s, "03_masterdata/modules/acme/ac-600.json", &out); err != nil {
		t.Fatal(err)
	}
	if out["mfr"] != "Acme" || out["model"] != "AC-600" {
		t.Errorf("round trip = %v", out)
	}

	if err := s.Write(ctx, "bad.json", []byte("{nope"), ""); err != nil {
		t.Fatal(err)
	}
	if err := ReadJSON(ctx, s, "bad.json", &out); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
