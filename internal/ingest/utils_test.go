package ingest

import (
	"strings"
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Trina Solar", "trina_solar"},
		{"  JA Solar (JAM72)  ", "ja_solar_jam72"},
		{"LONGi", "longi"},
		{"***", "unknown"},
		{"", "unknown"},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSafeFilename(t *testing.T) {
	got := SafeFilename("/tmp/Vertex N 600W (EN).PDF")
	if got != "vertex_n_600w_en.pdf" {
		t.Errorf("SafeFilename = %q", got)
	}
}

func TestBuildObjectPath(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	got := BuildObjectPath(Metadata{Mfr: "Trina Solar", Model: "TSM-600"}, "/in/sheet.pdf", at)
	want := "01_raw_catalogues/modules/trina_solar/20260314_092653Z_sheet.pdf"
	if got != want {
		t.Errorf("BuildObjectPath = %q, want %q", got, want)
	}
}

func TestMetadataObjectPath(t *testing.T) {
	got := MetadataObjectPath("01_raw_catalogues/modules/acme/x.pdf")
	if !strings.HasSuffix(got, "/x_metadata.json") {
		t.Errorf("MetadataObjectPath = %q", got)
	}
}

func TestAllowedExt(t *testing.T) {
	if !AllowedExt(".PDF") {
		t.Error("pdf should be allowed")
	}
	if AllowedExt("png") {
		t.Error("png should not be allowed")
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/a/.git") || IsHidden("/a/b.pdf") {
		t.Error("IsHidden mismatch")
	}
}
