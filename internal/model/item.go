package model

import (
	"slices"
)

// UnknownUploader is the uploader name shown until a detail fetch resolves it.
const UnknownUploader = "unknown"

// DetailStatus tracks how far metadata resolution has progressed for a QueueItem.
//
// Items start as DetailPending (or DetailResolved when the flat listing
// already carried full details), move to DetailFetching while a detail fetch
// is in flight, and finish as DetailResolved or DetailFailed.
type DetailStatus int

const (
	// DetailPending means the item only carries flat-listing data.
	DetailPending DetailStatus = iota

	// DetailFetching means a detail fetch is running for the item.
	DetailFetching

	// DetailResolved means the item carries full metadata.
	DetailResolved

	// DetailFailed means the detail fetch failed. Flat-listing data is kept.
	DetailFailed
)

// String returns a human-readable label for the status.
func (s DetailStatus) String() string {
	switch s {
	case DetailPending:
		return "pending"
	case DetailFetching:
		return "fetching"
	case DetailResolved:
		return "resolved"
	case DetailFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ThumbnailState describes whether preview bytes are available for an item.
type ThumbnailState int

const (
	// ThumbnailNone means the item has no thumbnail candidates.
	ThumbnailNone ThumbnailState = iota

	// ThumbnailPending means a thumbnail URL is known but not fetched yet.
	ThumbnailPending

	// ThumbnailLoaded means Thumbnail holds JPEG preview bytes.
	ThumbnailLoaded

	// ThumbnailPlaceholder means fetching or decoding failed and the
	// presentation layer should draw a placeholder instead.
	ThumbnailPlaceholder
)

// String returns a human-readable label for the state.
func (s ThumbnailState) String() string {
	switch s {
	case ThumbnailNone:
		return "none"
	case ThumbnailPending:
		return "pending"
	case ThumbnailLoaded:
		return "loaded"
	case ThumbnailPlaceholder:
		return "placeholder"
	default:
		return "unknown"
	}
}

// QueueItem represents one media source waiting in the queue.
//
// QueueItem starts with the data from a flat listing (title and URL, maybe a
// playlist title) and is progressively filled in by detail and thumbnail
// fetches. URL is the unique key within a queue.
//
// Position is assigned once at insertion and never changes. It fixes the
// display order of the queue and is independent of when detail resolution or
// a batch job completes.
//
// Example:
//
//	item := model.NewQueueItem("https://youtu.be/abc", "Song", "Mix", 3)
//	fmt.Println(item.UploaderName) // "unknown"
//	fmt.Println(item.DetailStatus) // "pending"
type QueueItem struct {
	// URL is the source URL handed to the resolver and the fetch executor.
	URL string

	// Title is the source title. Defaults to "Untitled".
	Title string

	// UploaderName is the channel or uploader. UnknownUploader until resolved.
	UploaderName string

	// PlaylistTitle is the title of the playlist the item came from.
	// Empty string means the item did not come from a playlist.
	PlaylistTitle string

	// DurationSeconds is the media length. Zero until resolved.
	DurationSeconds int

	// ViewCount is the view counter reported by the source. Zero until resolved.
	ViewCount int64

	// SubtitleLanguages is the sorted set of available subtitle language codes.
	SubtitleLanguages []string

	// ThumbnailURL is the selected thumbnail candidate, if any.
	ThumbnailURL string

	// Thumbnail holds JPEG preview bytes when ThumbnailState is ThumbnailLoaded.
	Thumbnail []byte

	// ThumbnailState reports the thumbnail fetch outcome.
	ThumbnailState ThumbnailState

	// DetailStatus reports how far metadata resolution has progressed.
	DetailStatus DetailStatus

	// Position is the insertion sequence number (1-based) within the queue.
	Position int
}

// NewQueueItem creates a QueueItem populated with flat-listing data.
//
// The uploader defaults to UnknownUploader and the detail status to
// DetailPending.
func NewQueueItem(url, title, playlistTitle string, position int) *QueueItem {
	if title == "" {
		title = "Untitled"
	}
	return &QueueItem{
		URL:           url,
		Title:         title,
		UploaderName:  UnknownUploader,
		PlaylistTitle: playlistTitle,
		Position:      position,
		DetailStatus:  DetailPending,
	}
}

// HasPlaylist reports whether the item came from a playlist.
func (q *QueueItem) HasPlaylist() bool {
	return q.PlaylistTitle != ""
}

// HasSubtitle reports whether the given language code is available.
func (q *QueueItem) HasSubtitle(code string) bool {
	_, found := slices.BinarySearch(q.SubtitleLanguages, code)
	return found
}

// Clone returns a deep copy of the item.
//
// Snapshots hand out clones so callers never share mutable state with the
// queue store.
func (q *QueueItem) Clone() *QueueItem {
	if q == nil {
		return nil
	}
	c := *q
	c.SubtitleLanguages = slices.Clone(q.SubtitleLanguages)
	c.Thumbnail = slices.Clone(q.Thumbnail)
	return &c
}

// Details carries the fields a detail fetch resolves for an item.
type Details struct {
	UploaderName      string
	DurationSeconds   int
	ViewCount         int64
	SubtitleLanguages []string
	ThumbnailURL      string
}

// ApplyDetails merges resolved details into the item and marks it resolved.
//
// Empty uploader names keep the current value; the subtitle set is
// normalised into sorted, de-duplicated order.
func (q *QueueItem) ApplyDetails(d Details) {
	if d.UploaderName != "" {
		q.UploaderName = d.UploaderName
	}
	if d.DurationSeconds > 0 {
		q.DurationSeconds = d.DurationSeconds
	}
	if d.ViewCount > 0 {
		q.ViewCount = d.ViewCount
	}
	q.SubtitleLanguages = NormalizeLanguages(d.SubtitleLanguages)
	if d.ThumbnailURL != "" {
		q.ThumbnailURL = d.ThumbnailURL
		if q.ThumbnailState == ThumbnailNone {
			q.ThumbnailState = ThumbnailPending
		}
	}
	q.DetailStatus = DetailResolved
}

// NormalizeLanguages returns a sorted copy of codes without duplicates or blanks.
func NormalizeLanguages(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
