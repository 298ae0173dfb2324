// Package storage holds project attachments: object path rules and the
// object store uploads are written to.
package storage

import (
	"context"
	"errors"
	"io"
	"regexp"
)

var ErrNotFound = errors.New("object not found")

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Sanitize replaces every character outside [A-Za-z0-9._-] with an
// underscore. Applying it twice changes nothing.
func Sanitize(name string) string {
	return unsafeChars.ReplaceAllString(name, "_")
}

// ObjectPath is where a file uploaded for project is stored.
func ObjectPath(project, file string) string {
	return Sanitize(project) + "/" + Sanitize(file)
}

// Uploader writes objects and reports their public URL. Upload overwrites an
// existing object at the same path.
type Uploader interface {
	Upload(ctx context.Context, path string, body io.Reader) error
	PublicURL(path string) string
}
