// Package blobstore keeps image blobs on a filesystem, one directory per
// bucket and one file per key.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/lehmann314159/recipes/internal/store"
)

type Store struct {
	fs      afero.Fs
	baseURL string
}

// New returns a store rooted at fs. baseURL is the path prefix under which
// the server exposes blobs, e.g. "/images".
func New(fs afero.Fs, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// NewOnDisk roots the store at dir on the OS filesystem.
func NewOnDisk(dir, baseURL string) (*Store, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create blob directory: %w", err)
	}
	return New(afero.NewBasePathFs(fs, dir), baseURL), nil
}

func (s *Store) Upload(_ context.Context, bucket, key string, data []byte, _ string) error {
	p, err := objectPath(bucket, key)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(bucket, 0755); err != nil {
		return fmt.Errorf("create bucket %s: %w", bucket, err)
	}
	if exists, _ := afero.Exists(s.fs, p); exists {
		return fmt.Errorf("upload %s: object already exists", p)
	}
	if err := afero.WriteFile(s.fs, p, data, 0644); err != nil {
		return fmt.Errorf("upload %s: %w", p, err)
	}
	return nil
}

func (s *Store) Remove(_ context.Context, bucket string, keys []string) error {
	for _, key := range keys {
		p, err := objectPath(bucket, key)
		if err != nil {
			return err
		}
		if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func (s *Store) Open(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	p, err := objectPath(bucket, key)
	if err != nil {
		return nil, err
	}
	f, err := s.fs.Open(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, store.ErrNotFound
	}
	return f, err
}

// URL ignores the bucket: the server mounts a single bucket under baseURL.
func (s *Store) URL(_, key string) string {
	return s.baseURL + "/" + key
}

func objectPath(bucket, key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return path.Join(bucket, key), nil
}
