package asyncfs

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Algorithm represents a compression algorithm
type Algorithm string

const (
	AlgorithmLZ4    Algorithm = "lz4"
	AlgorithmSnappy Algorithm = "snappy"
	AlgorithmZstd   Algorithm = "zstd"
	AlgorithmBrotli Algorithm = "brotli"
	AlgorithmGzip   Algorithm = "gzip"
)

// MaxPathLen bounds the length of submitted paths.
const MaxPathLen = 1024

// Config holds async filesystem configuration
type Config struct {
	// Algorithm to use for compressed requests that don't name one
	// (default: lz4)
	Algorithm Algorithm

	// Compression level (algorithm-specific)
	// lz4: 0 (fast) or 1-9 (HC)
	// snappy: ignored (no levels)
	// zstd: 1-22 (3 default)
	// brotli: 1-11 (6 default)
	// gzip: 1-9 (6 default)
	Level int

	// Capacity of each stage queue. Submission blocks while the target
	// queue is full. Must be >= 1 (default: 16)
	QueueCapacity int

	// Logger for codec warnings and stage lifecycle
	// (default: slog.Default())
	Logger *slog.Logger
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmLZ4,
		Level:         0,
		QueueCapacity: 16,
	}
}

// Stats holds pipeline statistics
type Stats struct {
	FilesRead         int64
	FilesWritten      int64
	FilesCompressed   int64
	FilesDecompressed int64

	BytesRead         int64
	BytesWritten      int64
	BytesCompressed   int64
	BytesDecompressed int64

	Errors int64

	AlgorithmCounts sync.Map // map[Algorithm]int64
}

// GetAlgorithmCount returns the count for a specific algorithm
func (s *Stats) GetAlgorithmCount(algo Algorithm) int64 {
	if val, ok := s.AlgorithmCounts.Load(algo); ok {
		return val.(int64)
	}
	return 0
}

// IncrementAlgorithmCount increments the count for a specific algorithm
func (s *Stats) IncrementAlgorithmCount(algo Algorithm) {
	val, _ := s.AlgorithmCounts.LoadOrStore(algo, int64(0))
	s.AlgorithmCounts.Store(algo, val.(int64)+1)
}

// CompressionRatio returns compressed bytes over raw bytes for the write path
func (s *Stats) CompressionRatio() float64 {
	if s.BytesWritten == 0 {
		return 0
	}
	return float64(s.BytesCompressed) / float64(s.BytesWritten)
}

// DecompressionRatio returns raw file bytes over decoded bytes for the read path
func (s *Stats) DecompressionRatio() float64 {
	if s.BytesDecompressed == 0 {
		return 0
	}
	return float64(s.BytesRead) / float64(s.BytesDecompressed)
}

var (
	ErrUnsupportedAlgorithm = errors.New("asyncfs: unsupported compression algorithm")
	ErrInvalidLevel         = errors.New("asyncfs: invalid compression level")
	ErrQueueCapacity        = errors.New("asyncfs: queue capacity must be at least 1")
	ErrEmptyPath            = errors.New("asyncfs: empty path")
	ErrPathTooLong          = errors.New("asyncfs: path exceeds maximum length")
	ErrClosed               = errors.New("asyncfs: filesystem closed")
	ErrNilWork              = errors.New("asyncfs: nil work handle")
	ErrCorruptedData        = errors.New("asyncfs: corrupted compressed data")
	ErrBufferTooSmall       = errors.New("asyncfs: destination buffer too small")
)

// FileSystem is the backing store the I/O stage operates on
type FileSystem interface {
	Open(name string) (File, error)
	Create(name string) (File, error)
	Stat(name string) (fs.FileInfo, error)
}

// File is the per-file surface the I/O stage needs
type File interface {
	io.Reader
	io.Writer
	io.Closer
	Stat() (fs.FileInfo, error)
}

// incrementStat atomically increments a stat counter
func incrementStat(counter *int64) {
	atomic.AddInt64(counter, 1)
}

// addBytes atomically adds to a byte counter
func addBytes(counter *int64, n int64) {
	atomic.AddInt64(counter, n)
}
