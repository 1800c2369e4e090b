// Package osfilesystem provides a filesystem implementation using the os package.
package osfilesystem

import (
	"os"
	"path/filepath"

	"github.com/user/thumbnailer/pkg/ports"
)

// FileSystem implements ports.FileSystem using the os package.
type FileSystem struct {
	// Perm is the mode of written files (default 0644).
	Perm os.FileMode
}

// New creates a new FileSystem.
func New() *FileSystem {
	return &FileSystem{Perm: 0644}
}

// WriteFile writes data to a hidden temporary file next to path and renames
// it over path. The temporary file is removed on every failure.
func (fs *FileSystem) WriteFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Chmod(fs.perm()); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (fs *FileSystem) perm() os.FileMode {
	if fs.Perm == 0 {
		return 0644
	}
	return fs.Perm
}

var _ ports.FileSystem = (*FileSystem)(nil)
