package jobspec

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	ioutils "github.com/handiism/skylark-downloader/internal/io"
	"github.com/handiism/skylark-downloader/internal/model"
)

// extPlaceholder is expanded by the executor to the final file extension.
const extPlaceholder = "%(ext)s"

// titlePlaceholder lets the executor fill in the title when the item has
// none that survives sanitizing.
const titlePlaceholder = "%(title)s"

var selectors = map[model.Quality]string{
	model.QualityHighest: "bestvideo[ext=mp4]+bestaudio[ext=m4a]/best[ext=mp4]/best",
	model.Quality1080p:   "bestvideo[height<=1080][ext=mp4]+bestaudio[ext=m4a]/best[height<=1080]",
	model.Quality720p:    "bestvideo[height<=720][ext=mp4]+bestaudio[ext=m4a]/best[height<=720]",
	model.Quality480p:    "bestvideo[height<=480][ext=mp4]+bestaudio[ext=m4a]/best[height<=480]",
	model.QualityLowest:  "worstvideo[ext=mp4]+worstaudio[ext=m4a]/worst",
}

// StreamSelector returns the executor format selector for a quality tier.
// Unknown tiers select like QualityHighest.
func StreamSelector(q model.Quality) string {
	if s, ok := selectors[q]; ok {
		return s
	}
	return selectors[model.QualityHighest]
}

// QualityTag is the human-readable tag appended to video filenames.
func QualityTag(q model.Quality) string {
	if _, ok := selectors[q]; !ok {
		q = model.QualityHighest
	}
	return q.String()
}

var labelCode = regexp.MustCompile(`\(([^()]+)\)\s*$`)

// ParseLanguageLabel extracts the language code from a "Name (code)" label.
// A bare code is returned trimmed; blank input yields "".
//
// Example:
//
//	ParseLanguageLabel("English (en)")       // "en"
//	ParseLanguageLabel("Portuguese (pt-BR)") // "pt-BR"
//	ParseLanguageLabel(" de ")               // "de"
func ParseLanguageLabel(label string) string {
	label = strings.TrimSpace(label)
	if m := labelCode.FindStringSubmatch(label); m != nil {
		return strings.TrimSpace(m[1])
	}
	return label
}

// OutputDir returns the directory an item is written to: the configured
// base, or a sanitized playlist subfolder of it.
func OutputDir(item *model.QueueItem, cfg model.JobConfig) string {
	if cfg.PlaylistSubfolder && item.HasPlaylist() {
		if folder := ioutils.SanitizeSegment(item.PlaylistTitle); folder != "" {
			return filepath.Join(cfg.OutputDir, folder)
		}
	}
	return cfg.OutputDir
}

// FileName returns the output file name without extension, in executor
// template syntax.
func FileName(item *model.QueueItem, cfg model.JobConfig, position int) string {
	var b strings.Builder
	if cfg.Numbering {
		fmt.Fprintf(&b, "%02d - ", position)
	}
	if prefix := ioutils.SanitizeSegment(cfg.FilenamePrefix); prefix != "" {
		b.WriteString("[" + escape(prefix) + "] ")
	}
	if title := ioutils.SanitizeSegment(item.Title); title != "" {
		b.WriteString(escape(title))
	} else {
		b.WriteString(titlePlaceholder)
	}
	if cfg.Format != model.FormatAudio {
		b.WriteString(" - " + QualityTag(cfg.Quality))
	}
	return b.String()
}

// escape protects literal text from executor template expansion.
func escape(s string) string {
	return strings.ReplaceAll(s, "%", "%%")
}

// Build returns the JobSpec for item at the given 1-based position.
func Build(item *model.QueueItem, cfg model.JobConfig, position int) model.JobSpec {
	dir := OutputDir(item, cfg)
	template := filepath.Join(dir, FileName(item, cfg, position)+"."+extPlaceholder)

	var args []string
	switch cfg.Format {
	case model.FormatAudio:
		args = append(args, "-x", "--audio-format", "mp3", "-f", "bestaudio", "--audio-quality", cfg.AudioBitrate)
		if cfg.EmbedThumbnail {
			args = append(args, "--embed-thumbnail")
		}
	default:
		args = append(args, "-f", StreamSelector(cfg.Quality), "--merge-output-format", "mp4")
		args = append(args, subtitleArgs(cfg.Subtitles)...)
	}
	if cfg.EmbedMetadata {
		args = append(args, "--add-metadata")
	}
	args = append(args, "--no-progress", "--no-warnings", "-o", template, item.URL)

	return model.JobSpec{
		Item:           item,
		Position:       position,
		OutputDir:      dir,
		OutputTemplate: template,
		Args:           args,
	}
}

func subtitleArgs(opts model.SubtitleOptions) []string {
	if !opts.Enabled {
		return nil
	}
	langs := "all"
	if !opts.AllLanguages {
		langs = ParseLanguageLabel(opts.Language)
		if langs == "" {
			return nil
		}
	}
	return []string{"--write-subs", "--sub-langs", langs, "--convert-subs", "srt", "--embed-subs"}
}

// BuildAll builds one JobSpec per item. Items are numbered by their rank in
// items, starting at 1.
func BuildAll(items []*model.QueueItem, cfg model.JobConfig) []model.JobSpec {
	specs := make([]model.JobSpec, len(items))
	for i, item := range items {
		specs[i] = Build(item, cfg, i+1)
	}
	return specs
}

// OutputPath expands an output template for a known extension. It returns
// "" when the file name is left to the executor.
func OutputPath(template, ext string) string {
	if strings.Contains(template, titlePlaceholder) {
		return ""
	}
	base := strings.TrimSuffix(template, extPlaceholder)
	return strings.ReplaceAll(base, "%%", "%") + ext
}
