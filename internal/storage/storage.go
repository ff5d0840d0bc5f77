// Package storage abstracts where uploaded binaries end up. The core only
// ever sees the returned path.
package storage

import "io"

// FileStore persists an uploaded file and returns the path it can later be
// served from.
type FileStore interface {
	Store(r io.Reader, destinationHint string) (string, error)
}
