package download

import (
	"cmp"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/handiism/skylark-downloader/internal/audio"
	ioutils "github.com/handiism/skylark-downloader/internal/io"
	"github.com/handiism/skylark-downloader/internal/jobspec"
	"github.com/handiism/skylark-downloader/internal/logging"
	"github.com/handiism/skylark-downloader/internal/model"
	"github.com/handiism/skylark-downloader/internal/status"
)

// Finisher post-processes the successful results of a batch.
type Finisher struct {
	tagger    *audio.Tagger
	creator   *audio.PlaylistCreator
	tagAudio  bool
	playlists bool
	sink      status.Sink
	logger    *slog.Logger
}

// FinishOption configures a Finisher.
type FinishOption func(*Finisher)

// WithTagging enables ID3 tagging of audio outputs.
func WithTagging(enabled bool) FinishOption {
	return func(f *Finisher) { f.tagAudio = enabled }
}

// WithPlaylists enables playlist files in the given format.
func WithPlaylists(format audio.PlaylistFormat) FinishOption {
	return func(f *Finisher) {
		f.playlists = true
		f.creator = audio.NewPlaylistCreator(format, true)
	}
}

// WithFinishSink sets the status sink.
func WithFinishSink(sink status.Sink) FinishOption {
	return func(f *Finisher) {
		if sink != nil {
			f.sink = sink
		}
	}
}

// WithFinishLogger sets the logger.
func WithFinishLogger(logger *slog.Logger) FinishOption {
	return func(f *Finisher) { f.logger = logging.OrNop(logger) }
}

// NewFinisher creates a Finisher. Without options it does nothing.
func NewFinisher(opts ...FinishOption) *Finisher {
	f := &Finisher{
		tagger: audio.NewTagger(),
		sink:   status.Discard,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FinishSummary reports what a Finish call wrote.
type FinishSummary struct {
	Tagged    int
	Playlists []string
	Failures  int
}

// Finish tags audio outputs and writes one playlist file per playlist
// subfolder. Failures are logged and reported as warnings; they never
// change job results.
func (f *Finisher) Finish(report BatchReport, cfg model.JobConfig) FinishSummary {
	var summary FinishSummary
	ext := "mp4"
	if cfg.Format == model.FormatAudio {
		ext = "mp3"
	}

	groups := make(map[string][]model.JobResult)
	for _, res := range report.Results {
		if !res.Success || res.Item == nil {
			continue
		}
		path := jobspec.OutputPath(res.OutputTemplate, ext)
		if path == "" {
			continue
		}
		if f.tagAudio && cfg.Format == model.FormatAudio {
			if err := f.tagger.SaveTags(path, tagsFor(res)); err != nil {
				summary.Failures++
				f.warn("tagging failed", path, err)
			} else {
				summary.Tagged++
			}
		}
		if f.playlists && cfg.PlaylistSubfolder && res.Item.HasPlaylist() {
			groups[res.Item.PlaylistTitle] = append(groups[res.Item.PlaylistTitle], res)
		}
	}

	titles := make([]string, 0, len(groups))
	for title := range groups {
		titles = append(titles, title)
	}
	slices.Sort(titles)

	for _, title := range titles {
		results := groups[title]
		slices.SortFunc(results, func(a, b model.JobResult) int {
			return cmp.Compare(a.Position, b.Position)
		})
		entries := make([]audio.PlaylistEntry, 0, len(results))
		for _, res := range results {
			entries = append(entries, audio.PlaylistEntry{
				File:            filepath.Base(jobspec.OutputPath(res.OutputTemplate, ext)),
				Title:           res.Item.Title,
				Artist:          uploader(res.Item),
				DurationSeconds: res.Item.DurationSeconds,
			})
		}
		name := ioutils.SanitizeSegment(title)
		if name == "" {
			name = "playlist"
		}
		path := filepath.Join(results[0].OutputDir, name+f.creator.Format().Extension())
		if err := ioutils.WriteFile(path, []byte(f.creator.CreatePlaylist(title, entries))); err != nil {
			summary.Failures++
			f.warn("playlist write failed", path, err)
			continue
		}
		summary.Playlists = append(summary.Playlists, path)
		status.Message(f.sink, status.LevelVerbose, "Wrote playlist %s", path)
	}
	return summary
}

func (f *Finisher) warn(msg, path string, err error) {
	f.logger.Warn(msg, slog.String("path", path), slog.Any("error", err))
	f.sink.Publish(status.Event{
		Kind:    status.KindMessage,
		Level:   status.LevelWarning,
		Message: fmt.Sprintf("%s: %s: %v", msg, filepath.Base(path), err),
	})
}

func tagsFor(res model.JobResult) audio.Tags {
	return audio.Tags{
		Title:  res.Item.Title,
		Artist: uploader(res.Item),
		Album:  res.Item.PlaylistTitle,
		Track:  res.Position,
	}
}

func uploader(item *model.QueueItem) string {
	if item.UploaderName == model.UnknownUploader {
		return ""
	}
	return item.UploaderName
}
