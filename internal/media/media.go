// Package media stores uploaded files on a remote image host and returns
// their permanent URLs.
package media

import (
	"context"
	"errors"
	"io"
)

// ErrUpload is returned for any transport or host failure.  It aborts the
// create or update that needed the file.
var ErrUpload = errors.New("media upload failed")

// Kind selects the resource type on the host.
type Kind string

const KindImage Kind = "image"

// File is one uploaded part, usually a multipart form file.
type File struct {
	Name   string
	Reader io.Reader
	Kind   Kind
}

type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}
