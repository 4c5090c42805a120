package audio

import (
	"strings"
	"testing"
)

func testEntries() []PlaylistEntry {
	return []PlaylistEntry{
		{File: "01 - track1.mp3", Title: "track1", Artist: "Channel", DurationSeconds: 180},
		{File: "02 - track2.mp3", Title: "track2"},
	}
}

func TestPlaylistCreator_M3U(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, false).CreatePlaylist("Mix", testEntries())

	if content != "01 - track1.mp3\n02 - track2.mp3\n" {
		t.Errorf("M3U content = %q", content)
	}
}

func TestPlaylistCreator_M3UExtended(t *testing.T) {
	content := NewPlaylistCreator(FormatM3U, true).CreatePlaylist("Mix", testEntries())

	if !strings.HasPrefix(content, "#EXTM3U\n") {
		t.Error("Extended M3U should start with #EXTM3U")
	}
	if !strings.Contains(content, "#EXTINF:180,Channel - track1\n01 - track1.mp3\n") {
		t.Errorf("missing EXTINF for track1:\n%s", content)
	}
	if !strings.Contains(content, "#EXTINF:-1,track2\n") {
		t.Errorf("unknown duration should be -1:\n%s", content)
	}
}

func TestPlaylistCreator_PLS(t *testing.T) {
	content := NewPlaylistCreator(FormatPLS, false).CreatePlaylist("Mix", testEntries())

	for _, want := range []string{"[playlist]\n", "X-Title=Mix\n", "File1=01 - track1.mp3\n", "Length2=-1\n", "NumberOfEntries=2\n", "Version=2\n"} {
		if !strings.Contains(content, want) {
			t.Errorf("PLS missing %q:\n%s", want, content)
		}
	}
}

func TestParsePlaylistFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    PlaylistFormat
		wantErr bool
	}{
		{"", FormatM3U, false},
		{"M3U", FormatM3U, false},
		{"pls", FormatPLS, false},
		{"wpl", FormatM3U, true},
	}
	for _, tt := range tests {
		got, err := ParsePlaylistFormat(tt.input)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParsePlaylistFormat(%q) = %v, %v", tt.input, got, err)
		}
	}
	if FormatPLS.Extension() != ".pls" || FormatM3U.Extension() != ".m3u" {
		t.Error("Extension() mismatch")
	}
}
