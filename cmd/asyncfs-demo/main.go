// Command asyncfs-demo round-trips a compressed payload through the
// asynchronous pipeline against a temporary directory and dumps the stats.
package main

import (
	"bytes"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/absfs/asyncfs"
)

func main() {
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.TimeOnly,
	})))

	dir, err := os.MkdirTemp("", "asyncfs-demo")
	if err != nil {
		slog.Error("mkdtemp", "err", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	afs, err := asyncfs.New(asyncfs.NewOSFS(dir), asyncfs.DefaultConfig())
	if err != nil {
		slog.Error("create", "err", err)
		os.Exit(1)
	}
	defer afs.Close()

	payload := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog\n", 1024))

	w, err := afs.Write("demo.bin", payload, asyncfs.WriteOptions{Compress: true})
	if err != nil {
		slog.Error("submit write", "err", err)
		os.Exit(1)
	}
	if err := w.Err(); err != nil {
		slog.Error("write", "err", err)
		os.Exit(1)
	}
	w.Close()

	r, err := afs.Read("demo.bin", asyncfs.ReadOptions{Compressed: true})
	if err != nil {
		slog.Error("submit read", "err", err)
		os.Exit(1)
	}
	if err := r.Err(); err != nil {
		slog.Error("read", "err", err)
		os.Exit(1)
	}
	if !bytes.Equal(r.Bytes(), payload) {
		slog.Error("round trip mismatch", "want", len(payload), "got", r.Size())
		os.Exit(1)
	}
	r.Close()

	stats := afs.GetStats()
	slog.Info("round trip ok",
		"payload", len(payload),
		"on_disk", stats.BytesCompressed,
		"ratio", stats.CompressionRatio(),
	)
}
