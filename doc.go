// Package asyncfs provides asynchronous, optionally-compressing file I/O.
//
// Reads and writes are performed off the calling goroutine by a two-stage
// pipeline: a disk I/O worker and a compression worker, each draining its own
// bounded queue. Submitting work returns a Work handle immediately; the
// handle can be polled, waited on, and queried for its result and buffer
// once the pipeline has finished with it.
//
// # Features
//
//   - Non-blocking read/write submission with completion handles
//   - 5 compression algorithms: lz4, snappy, zstd, brotli, gzip
//   - Configurable compression levels
//   - Bounded queues with producer backpressure
//   - Pluggable backing filesystem (OS or in-memory)
//   - Statistics tracking
//
// # Quick Start
//
//	afs, _ := asyncfs.New(asyncfs.NewOSFS(""), nil)
//	defer afs.Close()
//
//	// Submit a compressed write; returns immediately.
//	w, _ := afs.Write("data.bin", payload, asyncfs.WriteOptions{Compress: true})
//
//	// ... do other work ...
//
//	if err := w.Err(); err != nil {
//	    log.Fatal(err)
//	}
//
//	// Read it back, decompressing on the pipeline.
//	r, _ := afs.Read("data.bin", asyncfs.ReadOptions{Compressed: true})
//	data := r.Bytes()
//
// # Pipeline Shape
//
// A read always enters the I/O stage first (raw bytes must exist before they
// can be decompressed); if the read is compressed, the I/O stage hands the
// item to the compression stage, which decodes and signals completion. A
// compressed write enters the compression stage first and is forwarded to
// the I/O stage for persisting; an uncompressed write goes straight to the
// I/O stage. Items on the same queue complete in FIFO order; there is no
// completion order across the two queues.
//
// # On-Disk Format
//
// Compressed files are framed as the decimal ASCII decompressed size, a
// newline, then the compressed block:
//
//	<size>\n<block>
//
// There is no magic number and no codec identifier; the reader must request
// the algorithm the file was written with. LZ4 is the default.
//
// # Algorithm Selection Guide
//
//   - General Purpose: LZ4 - very fast, moderate compression (default)
//   - Best Ratio: Zstd (level 3) or Brotli (level 9-11) for static content
//   - Maximum Compatibility: Gzip
//   - CPU-Constrained: Snappy
package asyncfs
