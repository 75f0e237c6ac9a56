package asyncfs

import (
	"io/fs"
	"os"
	"path/filepath"
)

// osFS is the operating-system backed FileSystem
type osFS struct {
	root string
}

// NewOSFS returns a FileSystem backed by the operating system. If root is
// non-empty, all paths resolve relative to it.
func NewOSFS(root string) FileSystem {
	return &osFS{root: root}
}

func (ofs *osFS) resolve(name string) string {
	if ofs.root == "" {
		return name
	}
	return filepath.Join(ofs.root, name)
}

func (ofs *osFS) Open(name string) (File, error) {
	return os.Open(ofs.resolve(name))
}

func (ofs *osFS) Create(name string) (File, error) {
	return os.Create(ofs.resolve(name))
}

func (ofs *osFS) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(ofs.resolve(name))
}
