// Command skylark-dl queues videos and playlists and fetches them as MP4 or
// MP3 through yt-dlp.
//
// Usage:
//
//	skylark-dl fetch <URL>... [-o DIR] [--format audio] [--concurrency N]
//	skylark-dl deps
//	skylark-dl update
//	skylark-dl config init|show|validate
//
// For interactive mode, use skylark-tui.
package main
