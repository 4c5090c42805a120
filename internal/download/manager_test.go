package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/handiism/skylark-downloader/internal/audio"
	"github.com/handiism/skylark-downloader/internal/config"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/process"
	"github.com/handiism/skylark-downloader/internal/status"
)

// listRunner serves flat listings and answers fetch jobs with success.
type listRunner struct {
	fakeRunner
	listings map[string][]string
}

func (l *listRunner) Stream(_ context.Context, _ string, args []string, _ time.Duration, onLine func([]byte)) (process.Result, error) {
	lines, ok := l.listings[args[len(args)-1]]
	if !ok {
		return process.Result{ExitCode: 1, Stderr: []byte("ERROR: Unsupported URL\n")}, nil
	}
	for _, line := range lines {
		onLine([]byte(line))
	}
	return process.Result{}, nil
}

func TestParseInputURLs(t *testing.T) {
	got := ParseInputURLs(" https://youtu.be/a,https://youtu.be/b\nhttps://youtu.be/c\r\n\n")
	want := []string{"https://youtu.be/a", "https://youtu.be/b", "https://youtu.be/c"}
	if !slices.Equal(got, want) {
		t.Errorf("ParseInputURLs = %v, want %v", got, want)
	}
}

func TestManagerEndToEnd(t *testing.T) {
	runner := &listRunner{listings: map[string][]string{
		"https://www.youtube.com/playlist?list=PL1": {
			`{"title":"One","url":"https://youtu.be/one","playlist_title":"Mix","duration":61,"uploader":"Chan"}`,
			`{"title":"[Private video]","url":"https://youtu.be/private"}`,
			`{"title":"Two","url":"https://youtu.be/two","playlist_title":"Mix","duration":62,"uploader":"Chan"}`,
		},
	}}
	settings := config.DefaultSettings()
	settings.CreatePlaylistFolder = true
	settings.CreatePlaylistFile = true
	settings.AddNumbering = true

	m := NewManager(settings, WithRunner(runner))
	defer m.Close()

	summary, err := m.Initialize(context.Background(), "https://www.youtube.com/playlist?list=PL1")
	if err != nil {
		t.Fatalf("Initialize error = %v", err)
	}
	if summary.Added != 2 || summary.Skipped != 1 {
		t.Fatalf("summary = %+v, want 2 added 1 skipped", summary)
	}

	dir := t.TempDir()
	report, finished, err := m.StartDownloads(context.Background(), dir)
	if err != nil {
		t.Fatalf("StartDownloads error = %v", err)
	}
	if report.Succeeded != 2 {
		t.Errorf("succeeded = %d, want 2", report.Succeeded)
	}
	if m.Store().Len() != 0 {
		t.Errorf("queue length after batch = %d, want 0", m.Store().Len())
	}
	want := filepath.Join(dir, "Mix", "Mix.m3u")
	if len(finished.Playlists) != 1 || finished.Playlists[0] != want {
		t.Errorf("playlists = %v, want [%s]", finished.Playlists, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("playlist file: %v", err)
	}
}

func TestManagerInitializeKeepsGoing(t *testing.T) {
	runner := &listRunner{listings: map[string][]string{
		"https://youtu.be/ok": {`{"title":"Ok","webpage_url":"https://youtu.be/ok","duration":5}`},
	}}
	m := NewManager(config.DefaultSettings(), WithRunner(runner))
	defer m.Close()

	summary, err := m.Initialize(context.Background(), "https://youtu.be/broken\nnot-a-url\nhttps://youtu.be/ok")
	if summary.Added != 1 {
		t.Errorf("added = %d, want 1", summary.Added)
	}
	if !errors.Is(err, model.ErrResolution) || !errors.Is(err, model.ErrInvalidURL) {
		t.Errorf("error = %v, want resolution and validation failures", err)
	}
}

func TestManagerEmptyQueue(t *testing.T) {
	m := NewManager(config.DefaultSettings(), WithRunner(&listRunner{}))
	defer m.Close()

	if _, _, err := m.StartDownloads(context.Background(), t.TempDir()); !errors.Is(err, model.ErrEmptyBatch) {
		t.Fatalf("error = %v, want ErrEmptyBatch", err)
	}
}

func TestManagerOutputDir(t *testing.T) {
	settings := config.DefaultSettings()
	m := NewManager(settings, WithRunner(&listRunner{}))
	defer m.Close()

	if _, err := m.OutputDir(""); !errors.Is(err, ErrNoOutputDir) {
		t.Errorf("error = %v, want ErrNoOutputDir", err)
	}
	if dir, _ := m.OutputDir("/tmp/x"); dir != "/tmp/x" {
		t.Errorf("override = %q", dir)
	}

	saved := t.TempDir()
	settings.UseDefaultPath = true
	settings.DefaultSavePath = saved
	if dir, err := m.OutputDir(""); err != nil || dir != saved {
		t.Errorf("OutputDir = %q, %v, want %q", dir, err, saved)
	}
}

func TestManagerUnknownPlaylistFormatFallsBack(t *testing.T) {
	settings := config.DefaultSettings()
	settings.CreatePlaylistFile = true
	settings.PlaylistFormat = "xspf"

	rec := &recorder{}
	m := NewManager(settings, WithRunner(&listRunner{}), WithEvents(rec))
	defer m.Close()

	warnings := rec.kind(status.KindMessage)
	if len(warnings) != 1 || warnings[0].Level != status.LevelWarning {
		t.Fatalf("events = %+v, want one warning", warnings)
	}
	if got := m.finisher.creator.Format(); got != audio.FormatM3U {
		t.Errorf("playlist format = %v, want m3u", got)
	}
}
