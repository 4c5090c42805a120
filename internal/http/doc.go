// Package http provides the small HTTP client used for thumbnail downloads.
//
// Every request carries a User-Agent header and is bounded by the client
// timeout and by the caller's context, whichever expires first.
package http
