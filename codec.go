package asyncfs

import (
	"bytes"
	"compress/gzip"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec is a block compression primitive. Bound returns the worst-case
// compressed size for an input of n bytes; Compress and Decompress write
// into dst and report the number of bytes produced. Implementations are not
// safe for concurrent use; the pipeline resolves a fresh codec per request.
type Codec interface {
	Bound(n int) int
	Compress(dst, src []byte) (int, error)
	Decompress(dst, src []byte) (int, error)
}

// newCodec creates a codec for the specified algorithm and level
func newCodec(algo Algorithm, level int) (Codec, error) {
	switch algo {
	case AlgorithmLZ4:
		return newLZ4Codec(level)
	case AlgorithmSnappy:
		return snappyCodec{}, nil
	case AlgorithmZstd:
		return newZstdCodec(level)
	case AlgorithmBrotli:
		return newBrotliCodec(level)
	case AlgorithmGzip:
		return newGzipCodec(level)
	default:
		return nil, ErrUnsupportedAlgorithm
	}
}

// LZ4 block implementation using github.com/pierrec/lz4/v4

var lz4Levels = [...]lz4.CompressionLevel{
	lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
	lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
}

type lz4Codec struct {
	fast *lz4.Compressor
	hc   *lz4.CompressorHC
}

func newLZ4Codec(level int) (Codec, error) {
	switch {
	case level == 0:
		return &lz4Codec{fast: &lz4.Compressor{}}, nil
	case level >= 1 && level <= len(lz4Levels):
		return &lz4Codec{hc: &lz4.CompressorHC{Level: lz4Levels[level-1]}}, nil
	default:
		return nil, ErrInvalidLevel
	}
}

func (c *lz4Codec) Bound(n int) int {
	return lz4.CompressBlockBound(n)
}

func (c *lz4Codec) Compress(dst, src []byte) (int, error) {
	var n int
	var err error
	if c.hc != nil {
		n, err = c.hc.CompressBlock(src, dst)
	} else {
		n, err = c.fast.CompressBlock(src, dst)
	}
	if err != nil {
		return 0, err
	}
	if n == 0 {
		// Incompressible input: the library reports zero bytes. Store the
		// input as a single literal-only sequence so the block still
		// round-trips through UncompressBlock.
		return lz4LiteralBlock(dst, src)
	}
	return n, nil
}

func (c *lz4Codec) Decompress(dst, src []byte) (int, error) {
	return lz4.UncompressBlock(src, dst)
}

// lz4LiteralBlock encodes src as one literal-only LZ4 sequence: a token with
// the literal length (15 marks extension bytes) followed by the raw bytes.
func lz4LiteralBlock(dst, src []byte) (int, error) {
	n := len(src)
	i := 1
	if n < 15 {
		if len(dst) < 1+n {
			return 0, ErrBufferTooSmall
		}
		dst[0] = byte(n) << 4
	} else {
		ext := (n - 15) / 255
		if len(dst) < 2+ext+n {
			return 0, ErrBufferTooSmall
		}
		dst[0] = 0xF0
		for r := n - 15; ; {
			if r >= 255 {
				dst[i] = 255
				i++
				r -= 255
			} else {
				dst[i] = byte(r)
				i++
				break
			}
		}
	}
	copy(dst[i:], src)
	return i + n, nil
}

// Snappy block implementation using github.com/golang/snappy

type snappyCodec struct{}

func (snappyCodec) Bound(n int) int {
	return snappy.MaxEncodedLen(n)
}

func (snappyCodec) Compress(dst, src []byte) (int, error) {
	out := snappy.Encode(dst, src)
	if len(out) > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, out), nil
}

func (snappyCodec) Decompress(dst, src []byte) (int, error) {
	out, err := snappy.Decode(dst, src)
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, out), nil
}

// Zstd block implementation using github.com/klauspost/compress/zstd

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec(level int) (Codec, error) {
	if level == 0 {
		level = 3
	}
	if level < 1 || level > 22 {
		return nil, ErrInvalidLevel
	}
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)),
		zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Bound(n int) int {
	// frame header + per-block overhead
	return n + n>>8 + 256
}

func (c *zstdCodec) Compress(dst, src []byte) (int, error) {
	out := c.enc.EncodeAll(src, dst[:0])
	if len(out) > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, out), nil
}

func (c *zstdCodec) Decompress(dst, src []byte) (int, error) {
	out, err := c.dec.DecodeAll(src, dst[:0])
	if err != nil {
		return 0, err
	}
	if len(out) > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, out), nil
}

// Brotli and gzip expose stream APIs; streamCodec adapts them to the block
// contract through a scratch buffer.

type streamCodec struct {
	bound     func(n int) int
	newWriter func(w io.Writer) (io.WriteCloser, error)
	newReader func(r io.Reader) (io.ReadCloser, error)
}

func newBrotliCodec(level int) (Codec, error) {
	if level == 0 {
		level = 6
	}
	if level < 1 || level > 11 {
		return nil, ErrInvalidLevel
	}
	return &streamCodec{
		bound: func(n int) int { return n + n>>2 + 512 },
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return brotli.NewWriterLevel(w, level), nil
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return io.NopCloser(brotli.NewReader(r)), nil
		},
	}, nil
}

func newGzipCodec(level int) (Codec, error) {
	if level == 0 {
		level = gzip.DefaultCompression
	}
	if level != gzip.DefaultCompression && (level < gzip.BestSpeed || level > gzip.BestCompression) {
		return nil, ErrInvalidLevel
	}
	return &streamCodec{
		bound: func(n int) int { return n + n>>8 + 64 },
		newWriter: func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, level)
		},
		newReader: func(r io.Reader) (io.ReadCloser, error) {
			return gzip.NewReader(r)
		},
	}, nil
}

func (c *streamCodec) Bound(n int) int {
	return c.bound(n)
}

func (c *streamCodec) Compress(dst, src []byte) (int, error) {
	var buf bytes.Buffer
	buf.Grow(len(dst))
	w, err := c.newWriter(&buf)
	if err != nil {
		return 0, err
	}
	if _, err := w.Write(src); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	if buf.Len() > len(dst) {
		return 0, ErrBufferTooSmall
	}
	return copy(dst, buf.Bytes()), nil
}

func (c *streamCodec) Decompress(dst, src []byte) (int, error) {
	r, err := c.newReader(bytes.NewReader(src))
	if err != nil {
		return 0, err
	}
	defer r.Close()
	n, err := io.ReadFull(r, dst)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		// stream ended early; n reflects the actual decoded length
		return n, nil
	}
	if err != nil {
		return 0, err
	}
	// dst is full; anything left in the stream means it was undersized
	var tail [1]byte
	if m, _ := r.Read(tail[:]); m > 0 {
		return 0, ErrBufferTooSmall
	}
	return n, nil
}
