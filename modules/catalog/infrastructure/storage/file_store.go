package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
)

// FileStore keeps uploaded artifacts under a single directory. Artifacts are named
// by a random id plus the extension of the original file name.
type FileStore struct {
	root string
}

func NewFileStore(root string) (*FileStore, error) {
	if !filepath.IsAbs(root) {
		workDir, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		root = filepath.Join(workDir, root)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, gerrors.Wrapf(err, "create uploads dir %s", root)
	}
	return &FileStore{root: root}, nil
}

func (s *FileStore) Root() string {
	return s.root
}

// Save copies r into a new artifact and returns its path.
func (s *FileStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := uuid.NewString() + filepath.Ext(filepath.Base(originalName))
	path := filepath.Join(s.root, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return "", gerrors.Wrap(err, "create artifact")
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", gerrors.Wrap(err, "write artifact")
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", gerrors.Wrap(err, "close artifact")
	}
	return path, nil
}

func (s *FileStore) Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gerrors.Wrap(err, "open artifact")
	}
	return f, nil
}

// Remove deletes the artifact. A missing artifact is not an error.
func (s *FileStore) Remove(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return gerrors.Wrapf(err, "remove artifact %s", filepath.Base(path))
	}
	return nil
}
