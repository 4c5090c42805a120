// Package resolver turns submitted URLs into queue items.
//
// Resolution happens in two phases. FastList runs the external resolver with
// playlists flattened and streams one JSON record per line; each record is
// queued as soon as its line is read, so large playlists appear
// incrementally. Records without a duration only carry flat-listing data and
// get an asynchronous detail fetch that fills in uploader, duration, view
// count, subtitle languages and the thumbnail.
//
// Detail and thumbnail fetches run in background goroutines bounded by a
// weighted semaphore. They never fail an Add: a failed detail fetch marks the
// item DetailFailed, a failed thumbnail leaves a placeholder.
//
// Example:
//
//	r := resolver.New(store, process.NewExec(logger),
//	    resolver.WithSink(reporter),
//	    resolver.WithThumbnails(http.NewClient(0), ioutils.NewImageService()),
//	)
//	defer r.Close()
//
//	summary, err := r.Add(ctx, "https://www.youtube.com/playlist?list=PL123")
//	if err != nil {
//	    // model.ErrValidation or model.ErrResolution
//	}
//	fmt.Printf("added %d, skipped %d\n", summary.Added, summary.Skipped)
package resolver
