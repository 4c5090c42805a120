package resolver

import "github.com/handiism/skylark-downloader/internal/resolver/dto"

// MaxThumbnailWidth is the widest candidate SelectThumbnail prefers.
const MaxThumbnailWidth = 480

// SelectThumbnail picks the widest candidate no wider than
// MaxThumbnailWidth. Candidates with unknown width never qualify; on equal
// widths the later candidate wins. When nothing qualifies the last candidate
// is used, and an empty list yields "".
func SelectThumbnail(candidates []dto.Thumbnail) string {
	best, bestWidth := "", -1
	for _, c := range candidates {
		if c.URL == "" || c.Width == nil || *c.Width > MaxThumbnailWidth {
			continue
		}
		if *c.Width >= bestWidth {
			best, bestWidth = c.URL, *c.Width
		}
	}
	if best != "" {
		return best
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[len(candidates)-1].URL
}
