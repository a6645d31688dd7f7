package filesystem

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrFileNotFound = fmt.Errorf("filesystem: file not found")
	ErrNotAFile     = fmt.Errorf("filesystem: not a regular file")
	ErrInvalidPath  = fmt.Errorf("filesystem: invalid path")
)

type Filesystem interface {
	ReadFile(path string) ([]byte, error)
	// WriteFile replaces the file atomically, creating parent directories.
	WriteFile(path string, content []byte) error

	FileExists(path string) (bool, error)
	IsFile(path string) (bool, error)
	CreateDirectory(path string) error

	// Resolve maps path to the location on disk it refers to.
	Resolve(path string) (string, error)
}

type localFileSystem struct {
	// root is empty for an unrooted filesystem.
	root string
}

func NewLocalFileSystem() Filesystem {
	return &localFileSystem{}
}

// NewRootedFileSystem confines every path below root. Paths are taken
// relative to root even when they start with '/', and paths whose cleaned
// form escapes root are rejected with ErrInvalidPath.
func NewRootedFileSystem(root string) (Filesystem, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return &localFileSystem{root: abs}, nil
}

func (filesystem *localFileSystem) Resolve(path string) (string, error) {
	if path == "" || strings.ContainsRune(path, 0) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	if filesystem.root == "" {
		return path, nil
	}

	joined := filepath.Join(filesystem.root, filepath.FromSlash(path))
	rel, err := filepath.Rel(filesystem.root, joined)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q escapes %s", ErrInvalidPath, path, filesystem.root)
	}

	return joined, nil
}

func (filesystem *localFileSystem) ReadFile(path string) ([]byte, error) {
	resolved, err := filesystem.Resolve(path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	return os.ReadFile(resolved)
}

func (filesystem *localFileSystem) WriteFile(path string, content []byte) error {
	resolved, err := filesystem.Resolve(path)
	if err != nil {
		return err
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(resolved)+".*")
	if err != nil {
		return err
	}
	defer func() {
		// No-op once the rename succeeded.
		if err := os.Remove(tmp.Name()); err != nil && !os.IsNotExist(err) {
			slog.Error("removing temporary file error", "error", err)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), resolved)
}

func (filesystem *localFileSystem) FileExists(path string) (bool, error) {
	resolved, err := filesystem.Resolve(path)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, err
	}

	return true, nil
}

func (filesystem *localFileSystem) IsFile(path string) (bool, error) {
	resolved, err := filesystem.Resolve(path)
	if err != nil {
		return false, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Mode().IsRegular(), nil
}

func (filesystem *localFileSystem) CreateDirectory(path string) error {
	resolved, err := filesystem.Resolve(path)
	if err != nil {
		return err
	}

	return os.MkdirAll(resolved, 0770)
}
