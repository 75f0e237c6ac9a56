package asyncfs

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// FS performs file reads and writes asynchronously on a two-stage pipeline:
// an I/O worker draining ioQueue and a compression worker draining
// codecQueue. Both queues are bounded; submission blocks while the target
// queue is full.
type FS struct {
	base   FileSystem
	config *Config
	log    *slog.Logger
	stats  Stats

	ioQueue    chan *Work
	codecQueue chan *Work

	quit      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// New creates an asynchronous filesystem over base and starts both stage
// workers. A nil config uses DefaultConfig.
func New(base FileSystem, config *Config) (*FS, error) {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmLZ4
	}
	if cfg.QueueCapacity == 0 {
		cfg.QueueCapacity = 16
	}
	if cfg.QueueCapacity < 1 {
		return nil, ErrQueueCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	// fail fast on an unusable default codec
	if _, err := newCodec(cfg.Algorithm, cfg.Level); err != nil {
		return nil, err
	}

	afs := &FS{
		base:       base,
		config:     &cfg,
		log:        cfg.Logger,
		ioQueue:    make(chan *Work, cfg.QueueCapacity),
		codecQueue: make(chan *Work, cfg.QueueCapacity),
		quit:       make(chan struct{}),
	}
	afs.wg.Add(2)
	go afs.ioWorker()
	go afs.codecWorker()
	return afs, nil
}

// Close stops both stage workers and waits for them to exit. An item being
// processed when Close is called is finished first; items still queued are
// never serviced and their handles never signal. Callers should wait on all
// outstanding work before closing. Close is idempotent.
func (afs *FS) Close() error {
	afs.closeOnce.Do(func() {
		close(afs.quit)
		afs.wg.Wait()
	})
	return nil
}

// ReadOptions configures a Read request
type ReadOptions struct {
	// NullTerminate appends a zero byte after the payload
	NullTerminate bool

	// Compressed decodes the file through the compression stage
	Compressed bool

	// Algorithm and Level override the Config defaults when set. A zero
	// Level uses the Config level while the algorithm matches the Config's,
	// otherwise the named codec's default
	Algorithm Algorithm
	Level     int
}

// WriteOptions configures a Write request
type WriteOptions struct {
	// Compress encodes the payload through the compression stage
	Compress bool

	// Algorithm and Level override the Config defaults when set. A zero
	// Level uses the Config level while the algorithm matches the Config's,
	// otherwise the named codec's default
	Algorithm Algorithm
	Level     int
}

// Read submits an asynchronous read of path and returns its handle
// immediately. It blocks only while the I/O queue is full, never on the read
// itself.
func (afs *FS) Read(path string, opts ReadOptions) (*Work, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	w := &Work{
		op:            opRead,
		path:          path,
		nullTerminate: opts.NullTerminate,
		compressed:    opts.Compressed,
		done:          make(chan struct{}),
	}
	if opts.Compressed {
		if err := afs.resolveCodec(w, opts.Algorithm, opts.Level); err != nil {
			return nil, err
		}
	}
	// raw bytes must be fetched before they can be decompressed, so every
	// read enters at the I/O stage
	if err := afs.submit(afs.ioQueue, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Write submits an asynchronous write of data to path and returns its handle
// immediately. The caller retains ownership of data but must not mutate it
// until the request completes; the pipeline only reads it.
func (afs *FS) Write(path string, data []byte, opts WriteOptions) (*Work, error) {
	if err := checkPath(path); err != nil {
		return nil, err
	}
	w := &Work{
		op:         opWrite,
		path:       path,
		compressed: opts.Compress,
		buffer:     data,
		size:       len(data),
		done:       make(chan struct{}),
	}
	if !opts.Compress {
		if err := afs.submit(afs.ioQueue, w); err != nil {
			return nil, err
		}
		return w, nil
	}
	if err := afs.resolveCodec(w, opts.Algorithm, opts.Level); err != nil {
		return nil, err
	}
	// compressed writes must encode before they can be persisted
	if err := afs.submit(afs.codecQueue, w); err != nil {
		return nil, err
	}
	return w, nil
}

// GetStats returns a copy of the current pipeline statistics
func (afs *FS) GetStats() *Stats {
	return &Stats{
		FilesRead:         atomic.LoadInt64(&afs.stats.FilesRead),
		FilesWritten:      atomic.LoadInt64(&afs.stats.FilesWritten),
		FilesCompressed:   atomic.LoadInt64(&afs.stats.FilesCompressed),
		FilesDecompressed: atomic.LoadInt64(&afs.stats.FilesDecompressed),
		BytesRead:         atomic.LoadInt64(&afs.stats.BytesRead),
		BytesWritten:      atomic.LoadInt64(&afs.stats.BytesWritten),
		BytesCompressed:   atomic.LoadInt64(&afs.stats.BytesCompressed),
		BytesDecompressed: atomic.LoadInt64(&afs.stats.BytesDecompressed),
		Errors:            atomic.LoadInt64(&afs.stats.Errors),
	}
}

// resolveCodec picks the request's algorithm and instantiates its codec.
// Resolution happens at submission time so an unsupported algorithm or level
// fails in the caller, not on the pipeline.
func (afs *FS) resolveCodec(w *Work, algo Algorithm, level int) error {
	if algo == "" {
		algo = afs.config.Algorithm
	}
	// the configured level only makes sense for the configured algorithm;
	// naming a different one with a zero level gets that codec's default
	if level == 0 && algo == afs.config.Algorithm {
		level = afs.config.Level
	}
	codec, err := newCodec(algo, level)
	if err != nil {
		return err
	}
	w.algo = algo
	w.codec = codec
	return nil
}

// submit enqueues w, blocking while the queue is full (backpressure)
func (afs *FS) submit(q chan *Work, w *Work) error {
	select {
	case <-afs.quit:
		return ErrClosed
	default:
	}
	select {
	case q <- w:
		return nil
	case <-afs.quit:
		return ErrClosed
	}
}

// finish records the result and signals completion. Only the stage that
// last touches an item calls this, exactly once.
func (afs *FS) finish(w *Work, err error) {
	if err != nil {
		w.err = err
		incrementStat(&afs.stats.Errors)
	}
	close(w.done)
}

func checkPath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLen {
		return ErrPathTooLong
	}
	return nil
}
