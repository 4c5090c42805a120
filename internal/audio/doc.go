// Package audio post-processes finished batch outputs: ID3 tagging of MP3
// files and playlist files for playlist subfolders.
//
// # ID3 Tagging
//
//	tagger := audio.NewTagger()
//	err := tagger.SaveTags("/music/Mix/01 - Song.mp3", audio.Tags{
//	    Title:  "Song",
//	    Artist: "Channel",
//	    Album:  "Mix",
//	    Track:  1,
//	})
//
// # Playlist Generation
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist("Mix", entries)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
package audio
