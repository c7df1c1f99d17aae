// Package storage provides blob-style object storage for the task runner.
//
// Objects live in named containers and are addressed by a slash-separated
// name, the way a cloud blob store addresses them. FileStore implements the
// interface over a local directory, which is how a worker reads a mounted
// storage account.
package storage

import (
	"context"
)

// Store is an object store.
//
//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store
type Store interface {
	// DownloadToFile copies an object to a local file, creating parent
	// directories as needed.
	DownloadToFile(ctx context.Context, container, name, localPath string) error

	// DownloadToString returns the content of an object.
	DownloadToString(ctx context.Context, container, name string) (string, error)

	// UploadFromFile stores the content of a local file as an object. Unless
	// overwrite is set, an existing object yields ErrAlreadyExists.
	UploadFromFile(ctx context.Context, container, name, localPath string, overwrite bool) error

	// UploadFromString stores content as an object.
	UploadFromString(ctx context.Context, container, name, content string, overwrite bool) error

	// List returns the names of the objects in a container that start with
	// prefix, sorted.
	List(ctx context.Context, container, prefix string) ([]string, error)

	// Exists reports whether an object exists.
	Exists(ctx context.Context, container, name string) (bool, error)
}
