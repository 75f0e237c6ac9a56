package asyncfs

// Preset configurations for common use cases

// FastestConfig returns a configuration optimized for speed
func FastestConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmLZ4,
		Level:         0,
		QueueCapacity: 32,
	}
}

// RecommendedConfig returns the recommended configuration for general use
// Uses Zstd level 3 which provides excellent compression with good speed
func RecommendedConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmZstd,
		Level:         3,
		QueueCapacity: 16,
	}
}

// BestCompressionConfig returns a configuration optimized for maximum
// compression. Use for static content or write-once/read-many scenarios
func BestCompressionConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmBrotli,
		Level:         11,
		QueueCapacity: 8,
	}
}

// CompatibleConfig returns a configuration using gzip for maximum compatibility
func CompatibleConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmGzip,
		Level:         6,
		QueueCapacity: 16,
	}
}

// LowCPUConfig returns a configuration optimized for low CPU usage
func LowCPUConfig() *Config {
	return &Config{
		Algorithm:     AlgorithmSnappy,
		Level:         0, // Snappy has no levels
		QueueCapacity: 16,
	}
}

// NewWithRecommendedConfig creates an asynchronous filesystem with recommended settings
func NewWithRecommendedConfig(base FileSystem) (*FS, error) {
	return New(base, RecommendedConfig())
}

// NewWithFastestConfig creates an asynchronous filesystem optimized for speed
func NewWithFastestConfig(base FileSystem) (*FS, error) {
	return New(base, FastestConfig())
}

// CompressFrame compresses data into a framed buffer using the specified
// algorithm and level, without going through a pipeline. The result is
// byte-compatible with what a compressed Write persists.
func CompressFrame(data []byte, algo Algorithm, level int) ([]byte, error) {
	codec, err := newCodec(algo, level)
	if err != nil {
		return nil, err
	}
	headerLen := frameHeaderLen(len(data))
	frame := make([]byte, headerLen+codec.Bound(len(data)))
	putFrameHeader(frame, len(data))
	n, err := codec.Compress(frame[headerLen:], data)
	if err != nil {
		return nil, err
	}
	return frame[:headerLen+n], nil
}

// DecompressFrame decodes a framed buffer produced by CompressFrame or by a
// compressed Write.
func DecompressFrame(frame []byte, algo Algorithm) ([]byte, error) {
	codec, err := newCodec(algo, 0)
	if err != nil {
		return nil, err
	}
	size, block, err := parseFrame(frame)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	n, err := codec.Decompress(out, block)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// ReadFile submits a read and waits for it, returning the payload
func ReadFile(afs *FS, path string, opts ReadOptions) ([]byte, error) {
	w, err := afs.Read(path, opts)
	if err != nil {
		return nil, err
	}
	if err := w.Err(); err != nil {
		w.Close()
		return nil, err
	}
	data := w.Bytes()
	w.Close()
	return data, nil
}

// WriteFile submits a write and waits for it
func WriteFile(afs *FS, path string, data []byte, opts WriteOptions) error {
	w, err := afs.Write(path, data, opts)
	if err != nil {
		return err
	}
	err = w.Err()
	w.Close()
	return err
}

// GetCompressionRatio calculates the compression ratio for given original and compressed sizes
// Returns a value between 0 and 1, where lower is better
// E.g., 0.5 means the compressed size is 50% of the original
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the compression percentage
// Returns the percentage of space saved (0-100)
// E.g., 50 means 50% space savings
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
