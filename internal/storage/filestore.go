package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
)

// FileStore is a Store backed by a directory. Each container is a
// sub-directory of the root; object names map to relative paths.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

// NewFileStore returns a FileStore rooted at root. The directory must exist.
func NewFileStore(root string) (*FileStore, error) {
	info, err := os.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "storage root %s", root)
		}
		return nil, errors.Wrapf(err, "failed to stat storage root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("storage root %s is not a directory", root)
	}
	return &FileStore{root: root}, nil
}

// Root returns the backing directory.
func (s *FileStore) Root() string {
	return s.root
}

// objectPath maps a container and object name to a local path. Names that
// would escape the container are rejected.
func (s *FileStore) objectPath(container, name string) (string, error) {
	if container == "" || strings.ContainsAny(container, `/\`) || container == "." || container == ".." {
		return "", errors.Newf("invalid container name %q", container)
	}
	clean := path.Clean("/" + strings.ReplaceAll(name, `\`, "/"))
	if name == "" || clean == "/" {
		return "", errors.Newf("invalid object name %q", name)
	}
	return filepath.Join(s.root, container, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// DownloadToFile implements Store.
func (s *FileStore) DownloadToFile(ctx context.Context, container, name, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := s.objectPath(container, name)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return notFoundOr(err, container, name)
	}
	defer in.Close()

	if err := copyToFile(in, localPath); err != nil {
		return errors.Wrapf(err, "download %s/%s", container, name)
	}

	logging.Debugw("Downloaded blob", "container", container, "name", name, "local_path", localPath)
	return nil
}

// DownloadToString implements Store.
func (s *FileStore) DownloadToString(ctx context.Context, container, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	src, err := s.objectPath(container, name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return "", notFoundOr(err, container, name)
	}
	return string(data), nil
}

// UploadFromFile implements Store.
func (s *FileStore) UploadFromFile(ctx context.Context, container, name, localPath string, overwrite bool) error {
	in, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", localPath)
	}
	defer in.Close()

	return s.upload(ctx, container, name, in, overwrite)
}

// UploadFromString implements Store.
func (s *FileStore) UploadFromString(ctx context.Context, container, name, content string, overwrite bool) error {
	return s.upload(ctx, container, name, strings.NewReader(content), overwrite)
}

func (s *FileStore) upload(ctx context.Context, container, name string, r io.Reader, overwrite bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dst, err := s.objectPath(container, name)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(dst); err == nil {
			return errors.Wrapf(errors.ErrAlreadyExists, "blob %s/%s", container, name)
		}
	}

	if err := copyToFile(r, dst); err != nil {
		return errors.Wrapf(err, "upload %s/%s", container, name)
	}

	logging.Debugw("Uploaded blob", "container", container, "name", name)
	return nil
}

// List implements Store.
func (s *FileStore) List(ctx context.Context, container, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base, err := s.objectPath(container, "x")
	if err != nil {
		return nil, err
	}
	base = filepath.Dir(base)

	names := make([]string, 0)
	err = filepath.WalkDir(base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".tmp-") {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "container %s", container)
		}
		return nil, errors.Wrapf(err, "list %s", container)
	}

	sort.Strings(names)
	return names, nil
}

// Exists implements Store.
func (s *FileStore) Exists(ctx context.Context, container, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p, err := s.objectPath(container, name)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "stat %s/%s", container, name)
	}
	return !info.IsDir(), nil
}

// copyToFile writes r to dst through a temporary file in the same directory,
// so readers never see a partial object.
func copyToFile(r io.Reader, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dst)
}

func notFoundOr(err error, container, name string) error {
	if os.IsNotExist(err) {
		return errors.Wrapf(errors.ErrNotFound, "blob %s/%s", container, name)
	}
	return errors.Wrapf(err, "read %s/%s", container, name)
}
