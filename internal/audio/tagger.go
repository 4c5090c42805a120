package audio

import (
	"strconv"

	"github.com/bogem/id3v2"
)

// Tags are the frames written to a finished MP3.
type Tags struct {
	// Title is written to TIT2.
	Title string
	// Artist is written to TPE1. Empty leaves the frame untouched.
	Artist string
	// Album is written to TALB. Empty leaves the frame untouched.
	Album string
	// Track is written to TRCK when positive.
	Track int
}

// Tagger writes ID3 tags to MP3 files.
//
// The executor already embeds source metadata when asked to; Tagger adds
// what only the queue knows: the playlist as album and the queue position
// as track number.
type Tagger struct{}

// NewTagger creates a new Tagger.
func NewTagger() *Tagger {
	return &Tagger{}
}

// SaveTags writes tags to the MP3 file at path, keeping every other frame.
//
// Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, tags Tags) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	if tags.Title != "" {
		tag.SetTitle(tags.Title)
	}
	if tags.Artist != "" {
		tag.SetArtist(tags.Artist)
	}
	if tags.Album != "" {
		tag.SetAlbum(tags.Album)
	}
	if tags.Track > 0 {
		tag.DeleteFrames("TRCK")
		tag.AddTextFrame("TRCK", id3v2.EncodingUTF8, strconv.Itoa(tags.Track))
	}

	return tag.Save()
}
