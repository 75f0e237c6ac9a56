package asyncfs

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// normalizePath normalizes a path for consistent storage/lookup
// It removes leading slashes and cleans the path
func normalizePath(name string) string {
	name = filepath.Clean(name)
	name = strings.TrimPrefix(name, "/")
	name = strings.TrimPrefix(name, string(filepath.Separator))
	if name == "" || name == "." {
		name = "."
	}
	return name
}

// MemFS is a simple in-memory filesystem for testing. Besides the
// FileSystem surface it offers a per-operation delay (to simulate a slow
// disk) and per-path fault injection.
type MemFS struct {
	files map[string][]byte
	fail  map[string]error
	delay time.Duration
	mu    sync.RWMutex
}

// NewMemFS creates a new in-memory filesystem
func NewMemFS() *MemFS {
	return &MemFS{
		files: make(map[string][]byte),
		fail:  make(map[string]error),
	}
}

// SetDelay makes every Open and Create sleep for d before proceeding
func (mfs *MemFS) SetDelay(d time.Duration) {
	mfs.mu.Lock()
	mfs.delay = d
	mfs.mu.Unlock()
}

// FailPath injects err into Open and Create calls for name
func (mfs *MemFS) FailPath(name string, err error) {
	mfs.mu.Lock()
	mfs.fail[normalizePath(name)] = err
	mfs.mu.Unlock()
}

// Contents returns the stored bytes for name, if present
func (mfs *MemFS) Contents(name string) ([]byte, bool) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()
	data, ok := mfs.files[normalizePath(name)]
	return data, ok
}

// Put stores data under name directly, bypassing the File surface
func (mfs *MemFS) Put(name string, data []byte) {
	mfs.mu.Lock()
	mfs.files[normalizePath(name)] = append([]byte(nil), data...)
	mfs.mu.Unlock()
}

func (mfs *MemFS) enter(name string) (string, error) {
	mfs.mu.RLock()
	delay := mfs.delay
	err := mfs.fail[name]
	mfs.mu.RUnlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return name, err
}

func (mfs *MemFS) Open(name string) (File, error) {
	name, err := mfs.enter(normalizePath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}

	mfs.mu.RLock()
	data, exists := mfs.files[name]
	mfs.mu.RUnlock()
	if !exists {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	// snapshot for this handle
	return &memFile{
		mfs:     mfs,
		name:    name,
		data:    data,
		modTime: time.Now(),
	}, nil
}

func (mfs *MemFS) Create(name string) (File, error) {
	name, err := mfs.enter(normalizePath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "create", Path: name, Err: err}
	}

	return &memFile{
		mfs:     mfs,
		name:    name,
		writing: true,
		modTime: time.Now(),
	}, nil
}

func (mfs *MemFS) Stat(name string) (fs.FileInfo, error) {
	name = normalizePath(name)
	mfs.mu.RLock()
	data, exists := mfs.files[name]
	mfs.mu.RUnlock()
	if !exists {
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
	return &memFileInfo{name: name, size: int64(len(data)), modTime: time.Now()}, nil
}

// memFile is a handle over a MemFS entry. Read handles carry a snapshot of
// the data taken at open; write handles buffer locally and commit on Close,
// replacing any previous contents (truncate semantics).
type memFile struct {
	mfs     *MemFS
	name    string
	data    []byte
	pos     int
	writing bool
	wbuf    []byte
	modTime time.Time
	closed  bool
}

func (mf *memFile) Read(p []byte) (int, error) {
	if mf.writing {
		return 0, &fs.PathError{Op: "read", Path: mf.name, Err: fs.ErrInvalid}
	}
	if mf.pos >= len(mf.data) {
		return 0, io.EOF
	}
	n := copy(p, mf.data[mf.pos:])
	mf.pos += n
	return n, nil
}

func (mf *memFile) Write(p []byte) (int, error) {
	if !mf.writing {
		return 0, &fs.PathError{Op: "write", Path: mf.name, Err: fs.ErrInvalid}
	}
	mf.wbuf = append(mf.wbuf, p...)
	return len(p), nil
}

func (mf *memFile) Close() error {
	if mf.closed {
		return &fs.PathError{Op: "close", Path: mf.name, Err: fs.ErrClosed}
	}
	mf.closed = true
	if mf.writing {
		mf.mfs.mu.Lock()
		mf.mfs.files[mf.name] = mf.wbuf
		mf.mfs.mu.Unlock()
	}
	return nil
}

func (mf *memFile) Stat() (fs.FileInfo, error) {
	size := int64(len(mf.data))
	if mf.writing {
		size = int64(len(mf.wbuf))
	}
	return &memFileInfo{name: mf.name, size: size, modTime: mf.modTime}, nil
}

// memFileInfo implements fs.FileInfo for MemFS entries
type memFileInfo struct {
	name    string
	size    int64
	modTime time.Time
}

func (fi *memFileInfo) Name() string       { return filepath.Base(fi.name) }
func (fi *memFileInfo) Size() int64        { return fi.size }
func (fi *memFileInfo) Mode() fs.FileMode  { return 0666 }
func (fi *memFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *memFileInfo) IsDir() bool        { return false }
func (fi *memFileInfo) Sys() any           { return nil }
