// Package clientsession is the client-side mirror of the authenticated
// user: a single cached profile persisted across restarts and kept in sync
// with the server's session event stream.
package clientsession

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage persists the cached profile between runs.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
	Clear() error
}

// ErrEmpty is returned by Load when nothing has been stored yet.
var ErrEmpty = errors.New("no stored session")

// FileStorage keeps the cache in a single file.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return data, nil
}

func (s *FileStorage) Save(data []byte) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
