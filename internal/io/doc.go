// Package ioutils provides filename, file and image helpers.
//
// # Filename Segments
//
// SanitizeSegment strips the characters that are illegal in file and folder
// names on common filesystems from one path segment:
//
//	ioutils.SanitizeSegment(`AC/DC: "Live"?`) // "ACDC Live"
//
// # Thumbnails
//
// ImageService turns fetched thumbnail bytes (JPEG, PNG or WebP) into a small
// JPEG preview:
//
//	svc := ioutils.NewImageService()
//	preview, err := svc.Thumbnail(data, 160, 90)
package ioutils
