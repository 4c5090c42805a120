// Package model defines the core data structures shared by the queue,
// resolver, job builder and orchestrator.
//
// # QueueItem
//
// QueueItem is one media source waiting in the queue. It is created from a
// flat-listing record and progressively filled in by detail and thumbnail
// fetches:
//
//	item := model.NewQueueItem(url, "Song Title", "My Playlist", 1)
//	item.ApplyDetails(model.Details{UploaderName: "Channel", DurationSeconds: 215})
//	fmt.Println(item.DetailStatus) // "resolved"
//
// # Jobs
//
// JobConfig is the immutable configuration snapshot taken when a batch
// starts. JobSpec is the executor-ready description of one fetch and
// JobResult its outcome:
//
//	cfg := model.JobConfig{OutputDir: "/music", Format: model.FormatAudio, AudioBitrate: "192K"}
//
// Symbolic settings (Format, Quality, audio bitrate) are closed enumerations.
// The Parse* helpers reject unrecognized labels instead of falling back.
//
// # Errors
//
// errors.go holds the error taxonomy as sentinel markers. Use errors.Is to
// classify:
//
//	if errors.Is(err, model.ErrDuplicate) {
//	    // URL already queued
//	}
package model
