package dto

import (
	"encoding/json"
	"slices"
	"testing"
)

func TestRecordDecoding(t *testing.T) {
	line := `{"title":"Song","webpage_url":"https://www.youtube.com/watch?v=a","url":"a",
		"uploader":"","channel":"Chan","duration":212.6,"view_count":1500,
		"subtitles":{"en":[{"ext":"vtt"}],"de":[{"ext":"vtt"}],"fr":[]},
		"thumbnails":[{"url":"t1","width":120},{"url":"t2"}]}`

	var rec Record
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if got := rec.SourceURL(); got != "https://www.youtube.com/watch?v=a" {
		t.Errorf("SourceURL() = %q", got)
	}
	if got := rec.DurationSeconds(); got != 213 {
		t.Errorf("DurationSeconds() = %d, want 213", got)
	}
	if rec.NeedsDetail() {
		t.Error("NeedsDetail() = true with duration present")
	}
	if got := rec.Views(); got != 1500 {
		t.Errorf("Views() = %d", got)
	}
	if got := rec.UploaderName(); got != "Chan" {
		t.Errorf("UploaderName() = %q, want channel fallback", got)
	}
	langs := rec.SubtitleLanguages()
	slices.Sort(langs)
	if !slices.Equal(langs, []string{"de", "en"}) {
		t.Errorf("SubtitleLanguages() = %v", langs)
	}
	if rec.Thumbnails[1].Width != nil {
		t.Error("missing width decoded as non-nil")
	}
}

func TestRecordDefaults(t *testing.T) {
	var rec Record
	if err := json.Unmarshal([]byte(`{"url":"https://youtu.be/x","duration":null}`), &rec); err != nil {
		t.Fatal(err)
	}
	if rec.DisplayTitle() != "Untitled" {
		t.Errorf("DisplayTitle() = %q", rec.DisplayTitle())
	}
	if rec.SourceURL() != "https://youtu.be/x" {
		t.Errorf("SourceURL() = %q", rec.SourceURL())
	}
	if !rec.NeedsDetail() {
		t.Error("NeedsDetail() = false with null duration")
	}
	if rec.DurationSeconds() != 0 || rec.Views() != 0 {
		t.Error("absent numbers not zero")
	}
}

func TestRecordUnavailable(t *testing.T) {
	tests := map[string]bool{
		"[Deleted video]":     true,
		"[private video]":     true,
		"[Unavailable video]": true,
		"Private video":       false,
		"My [Private video]":  false,
	}
	for title, want := range tests {
		rec := Record{Title: title}
		if got := rec.Unavailable(); got != want {
			t.Errorf("Unavailable(%q) = %v, want %v", title, got, want)
		}
	}
}
