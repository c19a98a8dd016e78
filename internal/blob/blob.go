// Package blob stores encrypted file content on disk. Blob names are
// opaque and minted by the caller; content is written atomically.
package blob

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"blockvault/internal/domain"
)

// DiskStore keeps blobs as flat files under a storage directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates the storage directory if needed.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) path(name string) (string, error) {
	// Blob names are uuid-derived; reject anything that could escape the
	// storage dir.
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", errors.New("invalid blob name")
	}
	return filepath.Join(s.dir, name), nil
}

func (s *DiskStore) WriteBlob(name string, data []byte) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	f, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Chmod(0o600); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *DiskStore) ReadBlob(name string) ([]byte, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, domain.ErrBlobMissing
	}
	return b, err
}

func (s *DiskStore) DeleteBlob(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *DiskStore) HasBlob(name string) bool {
	path, err := s.path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Compile-time assertion that DiskStore implements domain.BlobStore.
var _ domain.BlobStore = (*DiskStore)(nil)
