package model

import (
	"fmt"
	"strings"
	"time"
)

// Format selects what a batch produces.
type Format int

const (
	// FormatVideo merges the best matching video and audio streams into MP4.
	FormatVideo Format = iota

	// FormatAudio extracts audio only and converts it to MP3.
	FormatAudio
)

// String returns the canonical configuration label for the format.
func (f Format) String() string {
	switch f {
	case FormatVideo:
		return "video"
	case FormatAudio:
		return "audio"
	default:
		return fmt.Sprintf("format(%d)", int(f))
	}
}

// ParseFormat converts a configuration label into a Format.
//
// Accepted values are "video" and "audio" (case-insensitive) as well as the
// selector labels "MP4 - Video" and "MP3 - Audio Only". Anything else is
// rejected.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video", "mp4", "mp4 - video":
		return FormatVideo, nil
	case "audio", "mp3", "mp3 - audio only":
		return FormatAudio, nil
	default:
		return FormatVideo, fmt.Errorf("unrecognized format %q", s)
	}
}

// Quality is the symbolic video quality tier.
type Quality int

const (
	QualityHighest Quality = iota
	Quality1080p
	Quality720p
	Quality480p
	QualityLowest
)

var qualityLabels = map[Quality]string{
	QualityHighest: "Highest",
	Quality1080p:   "1080p",
	Quality720p:    "720p",
	Quality480p:    "480p",
	QualityLowest:  "Lowest",
}

// String returns the human-readable tier label, e.g. "720p".
func (q Quality) String() string {
	if label, ok := qualityLabels[q]; ok {
		return label
	}
	return fmt.Sprintf("quality(%d)", int(q))
}

// MaxHeight returns the height bound of the tier, or 0 when unbounded.
func (q Quality) MaxHeight() int {
	switch q {
	case Quality1080p:
		return 1080
	case Quality720p:
		return 720
	case Quality480p:
		return 480
	default:
		return 0
	}
}

// ParseQuality converts a tier label into a Quality. Labels are matched
// case-insensitively; unknown labels are an error.
func ParseQuality(s string) (Quality, error) {
	trimmed := strings.TrimSpace(s)
	for q, label := range qualityLabels {
		if strings.EqualFold(label, trimmed) {
			return q, nil
		}
	}
	return QualityHighest, fmt.Errorf("unrecognized video quality %q", s)
}

// AudioBitrates lists the accepted audio bitrate labels in ascending order.
var AudioBitrates = []string{"128K", "192K", "256K", "320K"}

// ParseAudioBitrate normalises a bitrate label such as "192k" to "192K".
func ParseAudioBitrate(s string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, b := range AudioBitrates {
		if b == upper {
			return b, nil
		}
	}
	return "", fmt.Errorf("unrecognized audio bitrate %q", s)
}

// Concurrency bounds for a batch.
const (
	MinConcurrency = 1
	MaxConcurrency = 5
)

// ClampConcurrency forces n into [MinConcurrency, MaxConcurrency].
func ClampConcurrency(n int) int {
	return min(max(n, MinConcurrency), MaxConcurrency)
}

// SubtitleOptions controls subtitle handling for video batches.
type SubtitleOptions struct {
	// Enabled requests subtitles at all.
	Enabled bool

	// AllLanguages requests every available language instead of Language.
	AllLanguages bool

	// Language is either a bare code ("en") or a "Name (code)" label.
	Language string
}

// JobConfig is the immutable configuration snapshot taken at batch start.
type JobConfig struct {
	OutputDir         string
	Format            Format
	Quality           Quality
	AudioBitrate      string
	FilenamePrefix    string
	Numbering         bool
	PlaylistSubfolder bool
	EmbedMetadata     bool
	EmbedThumbnail    bool
	Subtitles         SubtitleOptions
	Concurrency       int
}

// JobSpec is the fully-resolved description of one fetch operation.
//
// A JobSpec is produced once per item per batch and never mutated. Args does
// not include the executor binary; the orchestrator supplies it.
type JobSpec struct {
	// Item is a snapshot of the queue item the job fetches.
	Item *QueueItem

	// Position is the 1-based number the job was built with.
	Position int

	// OutputDir is the directory the output lands in.
	OutputDir string

	// OutputTemplate is the executor output path template, including
	// the "%(ext)s" placeholder.
	OutputTemplate string

	// Args is the ordered argument sequence for the fetch executor.
	Args []string
}

// JobErrorKind classifies a failed job.
type JobErrorKind int

const (
	// JobErrorNone is the kind of a successful job.
	JobErrorNone JobErrorKind = iota

	// JobErrorMissingDependency means the executor reported a missing codec or tool.
	JobErrorMissingDependency

	// JobErrorProcessFailure means a non-zero exit for any other reason,
	// including timeouts and cancellation.
	JobErrorProcessFailure

	// JobErrorUnknown means the executor could not be run or reported
	// failure without an exit status.
	JobErrorUnknown
)

// String returns a human-readable label for the kind.
func (k JobErrorKind) String() string {
	switch k {
	case JobErrorNone:
		return "none"
	case JobErrorMissingDependency:
		return "missing dependency"
	case JobErrorProcessFailure:
		return "process failure"
	case JobErrorUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// JobResult is the outcome of one JobSpec.
type JobResult struct {
	Item           *QueueItem
	Position       int
	OutputDir      string
	OutputTemplate string
	Success        bool
	ErrorKind      JobErrorKind
	TimedOut       bool
	ExitCode       int
	Diagnostic     string
	Elapsed        time.Duration
}
