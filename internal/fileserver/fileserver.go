// Package fileserver stores blobs on a local volume.
package fileserver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	directoryPerms = 0o755
	filePerms      = 0o644
)

var ErrPathEscapesBase = errors.New("path escapes base directory")

type FileServer struct {
	baseDir   string
	host      string
	urlPrefix string
}

// New creates a file server rooted at baseDir. Stored files are expected to
// be served at host + urlPrefix.
func New(baseDir, host, urlPrefix string) *FileServer {
	prefix := strings.Trim(urlPrefix, "/")
	if prefix != "" {
		prefix = "/" + prefix
	}
	return &FileServer{
		baseDir:   baseDir,
		host:      strings.TrimRight(host, "/"),
		urlPrefix: prefix,
	}
}

func (f *FileServer) BaseDirectory() string {
	return f.baseDir
}

func (f *FileServer) URLPrefix() string {
	return f.urlPrefix
}

// cleanPath resolves path under baseDir, rejecting anything outside it.
func cleanPath(baseDir, path string) (string, error) {
	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("resolving base directory: %w", err)
	}
	full := filepath.Join(absBase, filepath.FromSlash(path))
	rel, err := filepath.Rel(absBase, full)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q: %w", path, ErrPathEscapesBase)
	}
	return full, nil
}

func (f *FileServer) Put(ctx context.Context, key, contentType string, data []byte) error {
	fullpath, err := cleanPath(f.baseDir, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(fullpath), directoryPerms); err != nil {
		return fmt.Errorf("creating parent directories: %w", err)
	}
	if err := os.WriteFile(fullpath, data, filePerms); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}
	return nil
}

func (f *FileServer) URL(ctx context.Context, key string) (string, error) {
	if _, err := cleanPath(f.baseDir, key); err != nil {
		return "", err
	}
	return f.host + f.urlPrefix + "/" + strings.TrimLeft(filepath.ToSlash(key), "/"), nil
}

func (f *FileServer) Delete(ctx context.Context, key string) error {
	fullpath, err := cleanPath(f.baseDir, key)
	if err != nil {
		return err
	}
	if err := os.Remove(fullpath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing file: %w", err)
	}
	return nil
}

func (f *FileServer) Exists(key string) (bool, error) {
	fullpath, err := cleanPath(f.baseDir, key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullpath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}
