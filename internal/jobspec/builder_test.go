package jobspec

import (
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/handiism/skylark-downloader/internal/model"
)

func videoConfig() model.JobConfig {
	return model.JobConfig{
		OutputDir:    "/out",
		Format:       model.FormatVideo,
		Quality:      model.Quality720p,
		AudioBitrate: "192K",
		Concurrency:  3,
	}
}

func TestBuildVideo(t *testing.T) {
	item := model.NewQueueItem("https://youtu.be/v", "My Song", "", 1)
	spec := Build(item, videoConfig(), 1)

	wantTemplate := filepath.Join("/out", "My Song - 720p.%(ext)s")
	want := []string{
		"-f", "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720]",
		"--merge-output-format", "mp4",
		"--no-progress", "--no-warnings",
		"-o", wantTemplate,
		"https://youtu.be/v",
	}
	if !slices.Equal(spec.Args, want) {
		t.Errorf("Args =\n%q\nwant\n%q", spec.Args, want)
	}
	if spec.OutputTemplate != wantTemplate || spec.OutputDir != "/out" || spec.Position != 1 {
		t.Errorf("spec = %+v", spec)
	}
}

func TestBuildAudio(t *testing.T) {
	cfg := videoConfig()
	cfg.Format = model.FormatAudio
	cfg.AudioBitrate = "320K"
	cfg.EmbedThumbnail = true
	cfg.EmbedMetadata = true
	cfg.Subtitles = model.SubtitleOptions{Enabled: true, AllLanguages: true}

	item := model.NewQueueItem("https://youtu.be/a", "Track", "", 1)
	spec := Build(item, cfg, 1)

	want := []string{
		"-x", "--audio-format", "mp3", "-f", "bestaudio", "--audio-quality", "320K",
		"--embed-thumbnail",
		"--add-metadata",
		"--no-progress", "--no-warnings",
		"-o", filepath.Join("/out", "Track.%(ext)s"),
		"https://youtu.be/a",
	}
	if !slices.Equal(spec.Args, want) {
		t.Errorf("Args =\n%q\nwant\n%q", spec.Args, want)
	}
}

func TestQualitySelectors(t *testing.T) {
	tests := []struct {
		quality model.Quality
		want    string
	}{
		{model.QualityHighest, "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"},
		{model.Quality1080p, "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080]"},
		{model.Quality480p, "bestvideo[height<=480][ext=mp4]+bestaudio[ext=m4a]/best[height<=480]"},
		{model.QualityLowest, "worstvideo[ext=mp4]+worstaudio[ext=m4a]/worst"},
		{model.Quality(42), "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best"},
	}
	for _, tt := range tests {
		if got := StreamSelector(tt.quality); got != tt.want {
			t.Errorf("StreamSelector(%v) = %q, want %q", tt.quality, got, tt.want)
		}
	}
	if got := QualityTag(model.QualityLowest); got != "Lowest" {
		t.Errorf("QualityTag(Lowest) = %q", got)
	}
}

func TestFileNameNumberingAndPrefix(t *testing.T) {
	cfg := videoConfig()
	cfg.Numbering = true
	cfg.FilenamePrefix = `Sky:lark`
	item := model.NewQueueItem("u", `AC/DC - "Live"?`, "", 7)

	tests := []struct {
		position int
		want     string
	}{
		{1, "01 - [Skylark] ACDC - Live - 720p"},
		{9, "09 - [Skylark] ACDC - Live - 720p"},
		{12, "12 - [Skylark] ACDC - Live - 720p"},
	}
	for _, tt := range tests {
		if got := FileName(item, cfg, tt.position); got != tt.want {
			t.Errorf("FileName(position %d) = %q, want %q", tt.position, got, tt.want)
		}
	}
}

func TestFileNameEscapesTemplateSyntax(t *testing.T) {
	cfg := videoConfig()
	cfg.Format = model.FormatAudio
	item := model.NewQueueItem("u", "100% Hits", "", 1)

	spec := Build(item, cfg, 1)
	if !strings.HasSuffix(spec.OutputTemplate, "100%% Hits.%(ext)s") {
		t.Errorf("OutputTemplate = %q", spec.OutputTemplate)
	}
	if got := OutputPath(spec.OutputTemplate, "mp3"); got != filepath.Join("/out", "100% Hits.mp3") {
		t.Errorf("OutputPath = %q", got)
	}
}

func TestFileNameFallsBackToExecutorTitle(t *testing.T) {
	cfg := videoConfig()
	cfg.Format = model.FormatAudio
	item := model.NewQueueItem("u", `???`, "", 1)

	spec := Build(item, cfg, 1)
	if !strings.HasSuffix(spec.OutputTemplate, "%(title)s.%(ext)s") {
		t.Errorf("OutputTemplate = %q", spec.OutputTemplate)
	}
	if got := OutputPath(spec.OutputTemplate, "mp3"); got != "" {
		t.Errorf("OutputPath = %q, want empty", got)
	}
}

func TestBuildUnknownFormatUsesVideoNaming(t *testing.T) {
	cfg := videoConfig()
	cfg.Format = model.Format(7)
	item := model.NewQueueItem("https://youtu.be/v", "My Song", "", 1)
	spec := Build(item, cfg, 1)

	if !slices.Contains(spec.Args, "--merge-output-format") {
		t.Errorf("args = %v, want video arguments", spec.Args)
	}
	if want := filepath.Join("/out", "My Song - 720p.%(ext)s"); spec.OutputTemplate != want {
		t.Errorf("template = %q, want %q", spec.OutputTemplate, want)
	}
}

func TestOutputDir(t *testing.T) {
	cfg := videoConfig()
	withPlaylist := model.NewQueueItem("u", "t", `Best of: 2024/25`, 1)
	without := model.NewQueueItem("u", "t", "", 1)

	if got := OutputDir(withPlaylist, cfg); got != "/out" {
		t.Errorf("OutputDir with subfolder off = %q", got)
	}
	cfg.PlaylistSubfolder = true
	if got := OutputDir(withPlaylist, cfg); got != filepath.Join("/out", "Best of 202425") {
		t.Errorf("OutputDir = %q", got)
	}
	if got := OutputDir(without, cfg); got != "/out" {
		t.Errorf("OutputDir without playlist = %q", got)
	}
	illegalOnly := model.NewQueueItem("u", "t", `<>|`, 1)
	if got := OutputDir(illegalOnly, cfg); got != "/out" {
		t.Errorf("OutputDir for empty sanitized playlist = %q", got)
	}
	for _, title := range []string{"..", ".", "...", " .. "} {
		item := model.NewQueueItem("https://youtu.be/x", "Song", title, 1)
		if got := OutputDir(item, cfg); got != "/out" {
			t.Errorf("OutputDir for playlist %q = %q, want /out", title, got)
		}
		spec := Build(item, cfg, 1)
		if spec.OutputDir != "/out" || filepath.Dir(spec.OutputTemplate) != "/out" {
			t.Errorf("Build for playlist %q: dir %q, template %q", title, spec.OutputDir, spec.OutputTemplate)
		}
	}
}

func TestSubtitleArgs(t *testing.T) {
	tests := []struct {
		name string
		opts model.SubtitleOptions
		want []string
	}{
		{"disabled", model.SubtitleOptions{AllLanguages: true}, nil},
		{"all", model.SubtitleOptions{Enabled: true, AllLanguages: true, Language: "en"},
			[]string{"--write-subs", "--sub-langs", "all", "--convert-subs", "srt", "--embed-subs"}},
		{"label", model.SubtitleOptions{Enabled: true, Language: "German (de)"},
			[]string{"--write-subs", "--sub-langs", "de", "--convert-subs", "srt", "--embed-subs"}},
		{"bare code", model.SubtitleOptions{Enabled: true, Language: "ja"},
			[]string{"--write-subs", "--sub-langs", "ja", "--convert-subs", "srt", "--embed-subs"}},
		{"no language", model.SubtitleOptions{Enabled: true}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subtitleArgs(tt.opts); !slices.Equal(got, tt.want) {
				t.Errorf("subtitleArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubtitlesIgnoredForAudio(t *testing.T) {
	cfg := videoConfig()
	cfg.Format = model.FormatAudio
	cfg.Subtitles = model.SubtitleOptions{Enabled: true, Language: "en"}

	spec := Build(model.NewQueueItem("u", "t", "", 1), cfg, 1)
	if slices.Contains(spec.Args, "--write-subs") {
		t.Errorf("audio args contain subtitle flags: %q", spec.Args)
	}
}

func TestParseLanguageLabel(t *testing.T) {
	tests := map[string]string{
		"English (en)":       "en",
		"Portuguese (pt-BR)": "pt-BR",
		" de ":               "de",
		"":                   "",
		"Odd (x) (fr)":       "fr",
	}
	for input, want := range tests {
		if got := ParseLanguageLabel(input); got != want {
			t.Errorf("ParseLanguageLabel(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := videoConfig()
	cfg.Numbering = true
	cfg.FilenamePrefix = "P"
	cfg.EmbedMetadata = true
	cfg.PlaylistSubfolder = true
	cfg.Subtitles = model.SubtitleOptions{Enabled: true, Language: "English (en)"}
	item := model.NewQueueItem("https://youtu.be/d", "Title", "List", 4)

	first := Build(item, cfg, 4)
	for range 20 {
		again := Build(item.Clone(), cfg, 4)
		if !slices.Equal(first.Args, again.Args) {
			t.Fatalf("Build not deterministic:\n%q\n%q", first.Args, again.Args)
		}
	}
}

func TestBuildAllNumbersByRank(t *testing.T) {
	cfg := videoConfig()
	cfg.Numbering = true
	items := []*model.QueueItem{
		model.NewQueueItem("a", "A", "", 2),
		model.NewQueueItem("b", "B", "", 5),
	}

	specs := BuildAll(items, cfg)
	if len(specs) != 2 {
		t.Fatalf("len = %d", len(specs))
	}
	for i, spec := range specs {
		if spec.Position != i+1 {
			t.Errorf("specs[%d].Position = %d", i, spec.Position)
		}
	}
	if !strings.Contains(specs[1].OutputTemplate, "02 - B") {
		t.Errorf("template = %q", specs[1].OutputTemplate)
	}
}
