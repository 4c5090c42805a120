// Package deps checks for and updates the external binaries the downloader
// drives: the resolver, the fetch executor and ffmpeg.
//
// The capability check runs once at startup. A missing resolver or executor
// is fatal (model.ErrFatalDependency); a missing ffmpeg is reported but
// optional, since only merges, conversions and embeds need it.
package deps
