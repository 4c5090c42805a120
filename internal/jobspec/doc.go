// Package jobspec maps a queue item and a batch configuration to the exact
// executor invocation that fetches it.
//
// Build is pure: it performs no I/O, and identical inputs always produce
// byte-identical argument lists. Filenames are derived from the item's
// position, never from completion order, so numbering is stable however
// the batch schedules its jobs.
//
// A video item at position 3 with numbering, prefix "Mix" and quality 720p
// is written to
//
//	<dir>/03 - [Mix] Title - 720p.%(ext)s
package jobspec
