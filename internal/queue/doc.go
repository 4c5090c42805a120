// Package queue holds the ordered, de-duplicated set of queued items.
//
// Store is the single owner of every QueueItem. All mutation goes through
// its methods, which serialize on one lock, so adds from the resolver,
// removals from the user and asynchronous detail callbacks may arrive from
// any goroutine.
//
// Late results are safe: Update identifies an item by URL and insertion
// position, so a detail fetch that completes after its item was removed (or
// after the queue was cleared and the URL queued again) is discarded instead
// of being re-inserted or applied to the new item.
//
//	store := queue.New(queue.WithSink(reporter))
//	item, err := store.Add("https://youtu.be/dQw4w9WgXcQ")
//	if errors.Is(err, model.ErrDuplicate) {
//	    // already queued
//	}
//	batch := store.Snapshot()
package queue
