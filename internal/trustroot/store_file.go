package trustroot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"ownidp/pkg/sentinel"
)

// FileStore keeps one file per trusted URL under dir. The file name is the
// canonical token, the file body is the original URL, so Items recovers the
// displayable URL without decoding the name. Filesystem create/unlink gives
// the atomicity the Store contract asks for.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("trustroot: create store dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(url string) (string, error) {
	token, err := Token(url)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.dir, token), nil
}

func (s *FileStore) Add(_ context.Context, url string) error {
	path, err := s.path(url)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(url), 0o600); err != nil {
		return fmt.Errorf("trustroot: add %q: %w", url, err)
	}
	return nil
}

func (s *FileStore) Check(_ context.Context, url string) (bool, error) {
	path, err := s.path(url)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("trustroot: check %q: %w", url, err)
	}
	return true, nil
}

func (s *FileStore) Delete(_ context.Context, url string) error {
	path, err := s.path(url)
	if err != nil {
		return err
	}
	err = os.Remove(path)
	if os.IsNotExist(err) {
		return fmt.Errorf("trustroot: delete %q: %w", url, sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("trustroot: delete %q: %w", url, err)
	}
	return nil
}

func (s *FileStore) Items(_ context.Context) ([]Entry, error) {
	dirents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("trustroot: list: %w", err)
	}

	var entries []Entry
	for _, d := range dirents {
		if d.IsDir() {
			continue
		}
		body, err := os.ReadFile(filepath.Join(s.dir, d.Name()))
		if err != nil {
			return nil, fmt.Errorf("trustroot: read %q: %w", d.Name(), err)
		}
		entries = append(entries, Entry{Token: d.Name(), URL: string(body)})
	}
	return entries, nil
}
