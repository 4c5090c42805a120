package dto

import (
	"encoding/json"
	"math"
	"strings"
)

// unavailableTitles mark listing entries that cannot be fetched.
var unavailableTitles = []string{
	"[Deleted video]",
	"[Private video]",
	"[Unavailable video]",
}

// Record is one JSON line printed by the resolver, either from a flat
// playlist listing or from a single-item detail query. Every field is
// optional.
type Record struct {
	Title         string                     `json:"title"`
	URL           string                     `json:"url"`
	WebpageURL    string                     `json:"webpage_url"`
	PlaylistTitle string                     `json:"playlist_title"`
	Uploader      string                     `json:"uploader"`
	Channel       string                     `json:"channel"`
	Duration      *float64                   `json:"duration"`
	ViewCount     *int64                     `json:"view_count"`
	Subtitles     map[string]json.RawMessage `json:"subtitles"`
	Thumbnails    []Thumbnail                `json:"thumbnails"`
}

// Thumbnail is one thumbnail candidate. Width is nil when unknown.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  *int   `json:"width"`
	Height *int   `json:"height"`
}

// SourceURL returns webpage_url, falling back to url.
func (r *Record) SourceURL() string {
	if u := strings.TrimSpace(r.WebpageURL); u != "" {
		return u
	}
	return strings.TrimSpace(r.URL)
}

// DisplayTitle returns the title, or "Untitled" when it is blank.
func (r *Record) DisplayTitle() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	return "Untitled"
}

// Unavailable reports whether the title marks removed or private content.
func (r *Record) Unavailable() bool {
	title := strings.TrimSpace(r.Title)
	for _, marker := range unavailableTitles {
		if strings.EqualFold(title, marker) {
			return true
		}
	}
	return false
}

// NeedsDetail reports whether the record lacks full detail, which the
// resolver signals by omitting duration.
func (r *Record) NeedsDetail() bool {
	return r.Duration == nil
}

// DurationSeconds returns the rounded duration, or 0 when absent.
func (r *Record) DurationSeconds() int {
	if r.Duration == nil || *r.Duration < 0 {
		return 0
	}
	return int(math.Round(*r.Duration))
}

// Views returns the view count, or 0 when absent.
func (r *Record) Views() int64 {
	if r.ViewCount == nil || *r.ViewCount < 0 {
		return 0
	}
	return *r.ViewCount
}

// UploaderName returns the uploader, falling back to the channel name.
func (r *Record) UploaderName() string {
	if u := strings.TrimSpace(r.Uploader); u != "" {
		return u
	}
	return strings.TrimSpace(r.Channel)
}

// SubtitleLanguages returns the language codes with at least one track.
func (r *Record) SubtitleLanguages() []string {
	codes := make([]string, 0, len(r.Subtitles))
	for code, tracks := range r.Subtitles {
		var list []json.RawMessage
		if err := json.Unmarshal(tracks, &list); err == nil && len(list) == 0 {
			continue
		}
		codes = append(codes, code)
	}
	return codes
}
