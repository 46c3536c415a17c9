package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

const pinsManifest = `{
  "action": "sanding",
  "tag": "wood",
  "pins": [
    {
      "status": "ready",
      "video_url": "https://cdn.example.com/clips/oak.mp4?sig=abc",
      "title": "Sanding oak",
      "description": "How to sand oak. Start with coarse grit.",
      "alt": "Use a sanding block",
      "destination": {"url": "https://shop.example.com/paper"}
    },
    {"status": "draft", "video_url": "https://cdn.example.com/clips/pine.mp4", "title": "Pine"},
    {"status": "ready", "title": "no url, skipped"}
  ]
}`

func TestReadFile_PinsFormat(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "wood.json", pinsManifest)

	items, err := ReadFile(filepath.Join(dir, "wood.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2 (pin without url skipped)", len(items))
	}

	it := items[0]
	if it.Manifest != "wood.json" {
		t.Errorf("Manifest = %q", it.Manifest)
	}
	if it.Action != "sanding" || it.Tag != "wood" {
		t.Errorf("Action/Tag = %q/%q", it.Action, it.Tag)
	}
	if it.Filename != "oak.mp4" {
		t.Errorf("Filename = %q, want inferred oak.mp4", it.Filename)
	}
	if it.DestinationURL != "https://shop.example.com/paper" {
		t.Errorf("DestinationURL = %q", it.DestinationURL)
	}
	if !it.Ready() {
		t.Error("Ready() = false for status ready")
	}
	if items[1].Ready() {
		t.Error("Ready() = true for status draft")
	}
}

func TestReadFile_LegacyItemsFormat(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "old.json", `{
  "items": [
    {"video_url": "https://cdn.example.com/a.mp4", "title": "A", "description": "d"}
  ]
}`)

	items, err := ReadFile(filepath.Join(dir, "old.json"))
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("len(items) = %d, want 1", len(items))
	}
	if items[0].Title != "A" || items[0].Filename != "a.mp4" {
		t.Errorf("item = %+v", items[0])
	}
	if !items[0].Ready() {
		t.Error("legacy items have no status and must count as ready")
	}
}

func TestReadFile_WrongShape(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "bad.json", `{"videos": []}`)

	_, err := ReadFile(filepath.Join(dir, "bad.json"))
	if err == nil || !strings.Contains(err.Error(), "pins") {
		t.Errorf("ReadFile() error = %v, want pins/items shape error", err)
	}
}

func TestReadDir_OrderAndExtras(t *testing.T) {
	dir := t.TempDir()
	one := `{"pins": [{"video_url": "https://x/%s.mp4", "title": "t"}]}`
	writeManifest(t, dir, "metal.json", strings.ReplaceAll(one, "%s", "metal"))
	writeManifest(t, dir, "wood.json", strings.ReplaceAll(one, "%s", "wood"))
	writeManifest(t, dir, "zz-extra.json", strings.ReplaceAll(one, "%s", "extra"))
	writeManifest(t, dir, "aa-extra.json", strings.ReplaceAll(one, "%s", "aaextra"))

	items, err := ReadDir(dir, []string{"wood.json", "drywall.json", "metal.json"})
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}

	var got []string
	for _, it := range items {
		got = append(got, it.Manifest)
	}
	want := []string{"wood.json", "metal.json", "aa-extra.json", "zz-extra.json"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestReadDir_MissingDir(t *testing.T) {
	items, err := ReadDir(filepath.Join(t.TempDir(), "nope"), nil)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if items != nil {
		t.Errorf("items = %v, want nil", items)
	}
}

func TestInferFilename(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/clips/oak.mp4?sig=abc", "oak.mp4"},
		{"https://cdn.example.com/clips/oak.mp4#t=1", "oak.mp4"},
		{"https://cdn.example.com/clips/", "clips"},
		{"https://host/", "host"},
		{"", "video.mp4"},
	}
	for _, tt := range tests {
		if got := InferFilename(tt.url); got != tt.want {
			t.Errorf("InferFilename(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}
