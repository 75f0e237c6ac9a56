package asyncfs

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func newTestFS(t *testing.T, config *Config) (*FS, *MemFS) {
	t.Helper()
	base := NewMemFS()
	afs, err := New(base, config)
	if err != nil {
		t.Fatalf("Failed to create asyncfs: %v", err)
	}
	t.Cleanup(func() { afs.Close() })
	return afs, base
}

func testPayload(size int) []byte {
	payload := make([]byte, size)
	for i := range payload {
		payload[i] = byte('a' + (i/7)%16)
	}
	return payload
}

func TestNewAsyncFS(t *testing.T) {
	afs, _ := newTestFS(t, nil)
	if afs == nil {
		t.Fatal("Expected non-nil asyncfs")
	}
}

func TestNewInvalidQueueCapacity(t *testing.T) {
	_, err := New(NewMemFS(), &Config{QueueCapacity: -1})
	if !errors.Is(err, ErrQueueCapacity) {
		t.Fatalf("Expected ErrQueueCapacity, got %v", err)
	}
}

func TestNewUnsupportedAlgorithm(t *testing.T) {
	_, err := New(NewMemFS(), &Config{Algorithm: "xz"})
	if !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestRequestLevelFallsBackToConfig(t *testing.T) {
	afs, err := New(NewMemFS(), &Config{Algorithm: AlgorithmLZ4, Level: 4})
	if err != nil {
		t.Fatalf("Failed to create asyncfs: %v", err)
	}
	defer afs.Close()

	// naming the configured algorithm with a zero level keeps the
	// configured level
	var w Work
	if err := afs.resolveCodec(&w, AlgorithmLZ4, 0); err != nil {
		t.Fatalf("Failed to resolve codec: %v", err)
	}
	if c, ok := w.codec.(*lz4Codec); !ok || c.hc == nil {
		t.Fatalf("Expected the configured high-compression level, got %#v", w.codec)
	}

	// an empty algorithm inherits both the algorithm and the level
	var w2 Work
	if err := afs.resolveCodec(&w2, "", 0); err != nil {
		t.Fatalf("Failed to resolve default codec: %v", err)
	}
	if c, ok := w2.codec.(*lz4Codec); !ok || c.hc == nil {
		t.Fatalf("Expected the configured defaults, got %#v", w2.codec)
	}

	// naming a different algorithm with a zero level gets that codec's
	// default, not the configured level
	var w3 Work
	if err := afs.resolveCodec(&w3, AlgorithmSnappy, 0); err != nil {
		t.Fatalf("Failed to resolve snappy codec: %v", err)
	}
	if _, ok := w3.codec.(snappyCodec); !ok {
		t.Fatalf("Expected a snappy codec, got %#v", w3.codec)
	}

	// an explicit request level still wins over the configured one
	var w4 Work
	if err := afs.resolveCodec(&w4, AlgorithmLZ4, 10); !errors.Is(err, ErrInvalidLevel) {
		t.Fatalf("Expected ErrInvalidLevel for an explicit out-of-range level, got %v", err)
	}
}

func TestUncompressedRoundTrip(t *testing.T) {
	afs, base := newTestFS(t, nil)

	payload := []byte("Hello, async world!")
	w, err := afs.Write("test.txt", payload, WriteOptions{})
	if err != nil {
		t.Fatalf("Failed to submit write: %v", err)
	}
	if err := w.Err(); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if w.Size() != len(payload) {
		t.Fatalf("Expected written size %d, got %d", len(payload), w.Size())
	}

	// bytes on disk are the payload verbatim
	stored, ok := base.Contents("test.txt")
	if !ok {
		t.Fatal("File not found in base filesystem")
	}
	if !bytes.Equal(stored, payload) {
		t.Fatalf("Stored bytes differ from payload")
	}

	r, err := afs.Read("test.txt", ReadOptions{})
	if err != nil {
		t.Fatalf("Failed to submit read: %v", err)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(r.Bytes(), payload) {
		t.Fatalf("Read data does not match written data.\nExpected: %q\nGot: %q", payload, r.Bytes())
	}
}

func TestCompressedRoundTripSizes(t *testing.T) {
	for _, size := range []int{0, 1, 4095, 1_000_000} {
		afs, _ := newTestFS(t, nil)

		payload := testPayload(size)
		w, err := afs.Write("data.bin", payload, WriteOptions{Compress: true})
		if err != nil {
			t.Fatalf("size %d: failed to submit write: %v", size, err)
		}
		if err := w.Err(); err != nil {
			t.Fatalf("size %d: write failed: %v", size, err)
		}

		r, err := afs.Read("data.bin", ReadOptions{Compressed: true})
		if err != nil {
			t.Fatalf("size %d: failed to submit read: %v", size, err)
		}
		if err := r.Err(); err != nil {
			t.Fatalf("size %d: read failed: %v", size, err)
		}
		if r.Size() != size {
			t.Fatalf("size %d: got decoded size %d", size, r.Size())
		}
		if !bytes.Equal(r.Bytes(), payload) {
			t.Fatalf("size %d: decoded bytes differ from payload", size)
		}
		afs.Close()
	}
}

func TestCompressedRoundTripAlgorithms(t *testing.T) {
	payload := []byte(strings.Repeat("Compression is the process of encoding information. ", 64))

	for _, algo := range []Algorithm{AlgorithmLZ4, AlgorithmSnappy, AlgorithmZstd, AlgorithmBrotli, AlgorithmGzip} {
		afs, _ := newTestFS(t, &Config{Algorithm: algo})

		if err := WriteFile(afs, "data.bin", payload, WriteOptions{Compress: true}); err != nil {
			t.Fatalf("%s: write failed: %v", algo, err)
		}
		got, err := ReadFile(afs, "data.bin", ReadOptions{Compressed: true})
		if err != nil {
			t.Fatalf("%s: read failed: %v", algo, err)
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("%s: decoded bytes differ from payload", algo)
		}
		afs.Close()
	}
}

func TestPerRequestAlgorithmOverride(t *testing.T) {
	// service default is lz4; the request asks for zstd
	afs, _ := newTestFS(t, nil)

	payload := []byte(strings.Repeat("override me ", 100))
	if err := WriteFile(afs, "z.bin", payload, WriteOptions{Compress: true, Algorithm: AlgorithmZstd}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	got, err := ReadFile(afs, "z.bin", ReadOptions{Compressed: true, Algorithm: AlgorithmZstd})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatal("Decoded bytes differ from payload")
	}
}

func TestNullTermination(t *testing.T) {
	afs, _ := newTestFS(t, nil)

	payload := []byte("terminated")

	// uncompressed path
	if err := WriteFile(afs, "plain.txt", payload, WriteOptions{}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	r, err := afs.Read("plain.txt", ReadOptions{NullTerminate: true})
	if err != nil {
		t.Fatalf("Failed to submit read: %v", err)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	buf := r.Bytes()
	if len(buf) != r.Size()+1 {
		t.Fatalf("Expected buffer of %d bytes, got %d", r.Size()+1, len(buf))
	}
	if buf[r.Size()] != 0 {
		t.Fatalf("Expected NUL at offset %d, got %#x", r.Size(), buf[r.Size()])
	}
	if !bytes.Equal(buf[:r.Size()], payload) {
		t.Fatal("Payload bytes differ")
	}

	// compressed path
	if err := WriteFile(afs, "comp.bin", payload, WriteOptions{Compress: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	r, err = afs.Read("comp.bin", ReadOptions{NullTerminate: true, Compressed: true})
	if err != nil {
		t.Fatalf("Failed to submit read: %v", err)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	buf = r.Bytes()
	if len(buf) != r.Size()+1 || buf[r.Size()] != 0 {
		t.Fatalf("Expected NUL-terminated buffer, size %d len %d", r.Size(), len(buf))
	}
	if !bytes.Equal(buf[:r.Size()], payload) {
		t.Fatal("Payload bytes differ")
	}
}

func TestCompressedFrameOnDisk(t *testing.T) {
	afs, base := newTestFS(t, nil)

	payload := []byte("hello world")
	if err := WriteFile(afs, "t.bin", payload, WriteOptions{Compress: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	stored, ok := base.Contents("t.bin")
	if !ok {
		t.Fatal("File not found in base filesystem")
	}
	if !bytes.HasPrefix(stored, []byte("11\n")) {
		t.Fatalf("Expected frame to start with %q, got %q", "11\n", stored[:min(len(stored), 8)])
	}

	// the block after the header is a valid LZ4 block of the payload
	decoded, err := DecompressFrame(stored, AlgorithmLZ4)
	if err != nil {
		t.Fatalf("Failed to decode frame: %v", err)
	}
	if !bytes.Equal(decoded, payload) {
		t.Fatalf("Expected %q, got %q", payload, decoded)
	}

	got, err := ReadFile(afs, "t.bin", ReadOptions{Compressed: true})
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(got) != 11 || string(got) != "hello world" {
		t.Fatalf("Expected 11 bytes %q, got %d bytes %q", "hello world", len(got), got)
	}
}

func TestReadMissingFile(t *testing.T) {
	afs, _ := newTestFS(t, nil)

	r, err := afs.Read("nope.txt", ReadOptions{})
	if err != nil {
		t.Fatalf("Failed to submit read: %v", err)
	}
	if err := r.Err(); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
	if r.Bytes() != nil {
		t.Fatal("Expected no buffer for a failed read")
	}
}

func TestCompressedReadOpenFailureCompletes(t *testing.T) {
	// an open failure must complete on the I/O stage, never hang waiting
	// for a decode that will not happen
	afs, _ := newTestFS(t, nil)

	r, err := afs.Read("missing.bin", ReadOptions{Compressed: true})
	if err != nil {
		t.Fatalf("Failed to submit read: %v", err)
	}
	if err := r.Err(); err == nil {
		t.Fatal("Expected an error for a missing file")
	}
}

func TestPathValidation(t *testing.T) {
	afs, _ := newTestFS(t, nil)

	if _, err := afs.Read("", ReadOptions{}); !errors.Is(err, ErrEmptyPath) {
		t.Fatalf("Expected ErrEmptyPath, got %v", err)
	}
	long := strings.Repeat("p", MaxPathLen+1)
	if _, err := afs.Write(long, nil, WriteOptions{}); !errors.Is(err, ErrPathTooLong) {
		t.Fatalf("Expected ErrPathTooLong, got %v", err)
	}
}

func TestSubmitUnsupportedAlgorithm(t *testing.T) {
	afs, _ := newTestFS(t, nil)

	if _, err := afs.Write("x", nil, WriteOptions{Compress: true, Algorithm: "xz"}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
	if _, err := afs.Read("x", ReadOptions{Compressed: true, Algorithm: "xz"}); !errors.Is(err, ErrUnsupportedAlgorithm) {
		t.Fatalf("Expected ErrUnsupportedAlgorithm, got %v", err)
	}
}

func TestStats(t *testing.T) {
	afs, _ := newTestFS(t, nil)

	payload := []byte(strings.Repeat("stats ", 200))
	if err := WriteFile(afs, "s.bin", payload, WriteOptions{Compress: true}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := ReadFile(afs, "s.bin", ReadOptions{Compressed: true}); err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	stats := afs.GetStats()
	if stats.FilesWritten != 1 || stats.FilesCompressed != 1 {
		t.Fatalf("Expected 1 write and 1 compression, got %d/%d", stats.FilesWritten, stats.FilesCompressed)
	}
	if stats.FilesRead != 1 || stats.FilesDecompressed != 1 {
		t.Fatalf("Expected 1 read and 1 decompression, got %d/%d", stats.FilesRead, stats.FilesDecompressed)
	}
	if stats.BytesWritten != int64(len(payload)) {
		t.Fatalf("Expected %d bytes written, got %d", len(payload), stats.BytesWritten)
	}
	if stats.BytesDecompressed != int64(len(payload)) {
		t.Fatalf("Expected %d bytes decompressed, got %d", len(payload), stats.BytesDecompressed)
	}
	if stats.BytesCompressed <= 0 {
		t.Fatal("Expected nonzero compressed bytes")
	}
	if ratio := stats.CompressionRatio(); ratio <= 0 || ratio >= 1 {
		t.Fatalf("Expected a compressing ratio for repetitive data, got %f", ratio)
	}
}
