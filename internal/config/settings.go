package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/handiism/skylark-downloader/internal/model"
)

// Settings holds all configuration options.
type Settings struct {
	// Batch settings
	ConcurrentDownloads int    `json:"concurrent_downloads" toml:"concurrent_downloads"`
	Format              string `json:"format" toml:"format"`
	VideoQuality        string `json:"video_quality" toml:"video_quality"`
	AudioBitrate        string `json:"audio_bitrate" toml:"audio_bitrate"`

	// File naming
	PrefixText           string `json:"prefix_text" toml:"prefix_text"`
	AddNumbering         bool   `json:"add_numbering" toml:"add_numbering"`
	DefaultSavePath      string `json:"default_save_path" toml:"default_save_path"`
	UseDefaultPath       bool   `json:"use_default_path" toml:"use_default_path"`
	CreatePlaylistFolder bool   `json:"create_playlist_folder" toml:"create_playlist_folder"`

	// Post-processing
	EmbedMetadata      bool   `json:"embed_metadata" toml:"embed_metadata"`
	EmbedThumbnail     bool   `json:"embed_thumbnail" toml:"embed_thumbnail"`
	CreatePlaylistFile bool   `json:"create_playlist_file" toml:"create_playlist_file"`
	PlaylistFormat     string `json:"playlist_format" toml:"playlist_format"`
	TagAudio           bool   `json:"tag_audio" toml:"tag_audio"`

	// Subtitles
	DownloadSubtitles bool   `json:"download_subtitles" toml:"download_subtitles"`
	AllSubtitles      bool   `json:"all_subtitles" toml:"all_subtitles"`
	SubtitleLanguage  string `json:"subtitle_language" toml:"subtitle_language"`

	// External tools
	ResolverBinary          string `json:"resolver_binary" toml:"resolver_binary"`
	ExecutorBinary          string `json:"executor_binary" toml:"executor_binary"`
	ProcessTimeoutSeconds   int    `json:"process_timeout_seconds" toml:"process_timeout_seconds"`
	DetailTimeoutSeconds    int    `json:"detail_timeout_seconds" toml:"detail_timeout_seconds"`
	DetailConcurrency       int    `json:"detail_concurrency" toml:"detail_concurrency"`
	ThumbnailTimeoutSeconds int    `json:"thumbnail_timeout_seconds" toml:"thumbnail_timeout_seconds"`

	// Logging
	LogLevel  string `json:"log_level" toml:"log_level"`
	LogFormat string `json:"log_format" toml:"log_format"`
	LogFile   string `json:"log_file" toml:"log_file"`
}

// DefaultBinary is the resolver and executor used when none is configured.
const DefaultBinary = "yt-dlp"

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		ConcurrentDownloads: 3,
		Format:              model.FormatVideo.String(),
		VideoQuality:        model.QualityHighest.String(),
		AudioBitrate:        "192K",

		PrefixText: "Skylark Downloader",

		PlaylistFormat: "m3u",

		SubtitleLanguage: "en",

		ResolverBinary:          DefaultBinary,
		ExecutorBinary:          DefaultBinary,
		ProcessTimeoutSeconds:   3600,
		DetailTimeoutSeconds:    120,
		DetailConcurrency:       8,
		ThumbnailTimeoutSeconds: 10,

		LogLevel:  "info",
		LogFormat: "auto",
	}
}

// DefaultPath returns the settings file location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "skylark-downloader", "settings.json")
}

// Validate checks every enumerated value and numeric bound.
func (s *Settings) Validate() error {
	if s.ConcurrentDownloads < model.MinConcurrency || s.ConcurrentDownloads > model.MaxConcurrency {
		return fmt.Errorf("concurrent_downloads must be between %d and %d, got %d",
			model.MinConcurrency, model.MaxConcurrency, s.ConcurrentDownloads)
	}
	if _, err := model.ParseFormat(s.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if _, err := model.ParseQuality(s.VideoQuality); err != nil {
		return fmt.Errorf("video_quality: %w", err)
	}
	if _, err := model.ParseAudioBitrate(s.AudioBitrate); err != nil {
		return fmt.Errorf("audio_bitrate: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(s.PlaylistFormat)) {
	case "", "m3u", "pls":
	default:
		return fmt.Errorf("playlist_format: unrecognized value %q", s.PlaylistFormat)
	}
	switch strings.ToLower(strings.TrimSpace(s.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log_level: unrecognized value %q", s.LogLevel)
	}
	switch strings.ToLower(strings.TrimSpace(s.LogFormat)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("log_format: unrecognized value %q", s.LogFormat)
	}
	if s.ProcessTimeoutSeconds < 0 || s.DetailTimeoutSeconds < 0 || s.ThumbnailTimeoutSeconds < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if s.DetailConcurrency < 0 {
		return fmt.Errorf("detail_concurrency must not be negative")
	}
	return nil
}

// SavePath returns the configured default save path when it is enabled and
// exists as a directory, and "" otherwise.
func (s *Settings) SavePath() string {
	if !s.UseDefaultPath || strings.TrimSpace(s.DefaultSavePath) == "" {
		return ""
	}
	info, err := os.Stat(s.DefaultSavePath)
	if err != nil || !info.IsDir() {
		return ""
	}
	return s.DefaultSavePath
}

// ToJobConfig validates the settings and converts them into the snapshot a
// batch runs with.
func (s *Settings) ToJobConfig(outputDir string) (model.JobConfig, error) {
	if err := s.Validate(); err != nil {
		return model.JobConfig{}, err
	}
	format, _ := model.ParseFormat(s.Format)
	quality, _ := model.ParseQuality(s.VideoQuality)
	bitrate, _ := model.ParseAudioBitrate(s.AudioBitrate)

	return model.JobConfig{
		OutputDir:         outputDir,
		Format:            format,
		Quality:           quality,
		AudioBitrate:      bitrate,
		FilenamePrefix:    s.PrefixText,
		Numbering:         s.AddNumbering,
		PlaylistSubfolder: s.CreatePlaylistFolder,
		EmbedMetadata:     s.EmbedMetadata,
		EmbedThumbnail:    s.EmbedThumbnail,
		Subtitles: model.SubtitleOptions{
			Enabled:      s.DownloadSubtitles,
			AllLanguages: s.AllSubtitles,
			Language:     s.SubtitleLanguage,
		},
		Concurrency: model.ClampConcurrency(s.ConcurrentDownloads),
	}, nil
}

// ProcessTimeout is the limit for resolver listings and executor jobs.
func (s *Settings) ProcessTimeout() time.Duration {
	return seconds(s.ProcessTimeoutSeconds)
}

// DetailTimeout is the limit for one detail fetch.
func (s *Settings) DetailTimeout() time.Duration {
	return seconds(s.DetailTimeoutSeconds)
}

// ThumbnailTimeout is the limit for one thumbnail download.
func (s *Settings) ThumbnailTimeout() time.Duration {
	return seconds(s.ThumbnailTimeoutSeconds)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

// Resolver returns the resolver binary, falling back to DefaultBinary.
func (s *Settings) Resolver() string {
	if b := strings.TrimSpace(s.ResolverBinary); b != "" {
		return b
	}
	return DefaultBinary
}

// Executor returns the executor binary, falling back to DefaultBinary.
func (s *Settings) Executor() string {
	if b := strings.TrimSpace(s.ExecutorBinary); b != "" {
		return b
	}
	return DefaultBinary
}
