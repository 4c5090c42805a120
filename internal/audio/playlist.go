package audio

import (
	"fmt"
	"strings"
)

// PlaylistFormat selects the playlist file written next to a playlist folder.
type PlaylistFormat int

const (
	// FormatM3U writes .m3u, optionally with #EXTINF metadata lines.
	FormatM3U PlaylistFormat = iota

	// FormatPLS writes .pls with numbered File/Title/Length keys.
	FormatPLS
)

// ParsePlaylistFormat converts "m3u" or "pls" into a PlaylistFormat.
func ParsePlaylistFormat(s string) (PlaylistFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "m3u":
		return FormatM3U, nil
	case "pls":
		return FormatPLS, nil
	default:
		return FormatM3U, fmt.Errorf("unrecognized playlist format %q", s)
	}
}

// Extension returns the file extension including the dot.
func (f PlaylistFormat) Extension() string {
	if f == FormatPLS {
		return ".pls"
	}
	return ".m3u"
}

// PlaylistEntry is one file listed in a playlist.
type PlaylistEntry struct {
	// File is the path relative to the playlist file.
	File            string
	Title           string
	Artist          string
	DurationSeconds int
}

// PlaylistCreator generates playlist files.
//
// Example:
//
//	creator := NewPlaylistCreator(FormatM3U, true)
//	content := creator.CreatePlaylist("Mix", entries)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:180,Channel - Song Title
//	// 01 - Song Title.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // M3U only
}

// NewPlaylistCreator creates a new PlaylistCreator. extended only affects M3U.
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// Format returns the playlist format.
func (p *PlaylistCreator) Format() PlaylistFormat {
	return p.format
}

// CreatePlaylist generates playlist content listing entries in order.
func (p *PlaylistCreator) CreatePlaylist(title string, entries []PlaylistEntry) string {
	if p.format == FormatPLS {
		return p.createPLS(title, entries)
	}
	return p.createM3U(entries)
}

// createM3U generates an M3U playlist.
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:180,Artist - Title
//	filename1.mp3
func (p *PlaylistCreator) createM3U(entries []PlaylistEntry) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}
	for _, e := range entries {
		if p.extended {
			fmt.Fprintf(&sb, "#EXTINF:%d,%s\n", extinfDuration(e.DurationSeconds), displayName(e))
		}
		sb.WriteString(e.File + "\n")
	}
	return sb.String()
}

// createPLS generates a PLS playlist.
//
//	[playlist]
//	X-Title=Mix
//	File1=filename1.mp3
//	Title1=Song Title
//	Length1=180
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(title string, entries []PlaylistEntry) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")
	if title != "" {
		fmt.Fprintf(&sb, "X-Title=%s\n", title)
	}
	for i, e := range entries {
		idx := i + 1
		fmt.Fprintf(&sb, "File%d=%s\n", idx, e.File)
		fmt.Fprintf(&sb, "Title%d=%s\n", idx, displayName(e))
		fmt.Fprintf(&sb, "Length%d=%d\n", idx, extinfDuration(e.DurationSeconds))
	}
	fmt.Fprintf(&sb, "NumberOfEntries=%d\n", len(entries))
	sb.WriteString("Version=2\n")
	return sb.String()
}

// extinfDuration maps an unknown duration to -1.
func extinfDuration(seconds int) int {
	if seconds <= 0 {
		return -1
	}
	return seconds
}

func displayName(e PlaylistEntry) string {
	if e.Artist == "" {
		return e.Title
	}
	return e.Artist + " - " + e.Title
}
