package asyncfs

// codecWorker is the compression stage: it drains the compression queue,
// decoding reads and encoding writes. Like the I/O stage it exits only on
// shutdown, and like the I/O stage it parks outbound handoffs in a local
// FIFO rather than blocking on a full peer queue.
func (afs *FS) codecWorker() {
	defer afs.wg.Done()
	var pending []*Work
	for {
		var handoff chan *Work
		var head *Work
		if len(pending) > 0 {
			handoff = afs.ioQueue
			head = pending[0]
		}
		select {
		case <-afs.quit:
			return
		case handoff <- head:
			pending = pending[1:]
		case w := <-afs.codecQueue:
			switch w.op {
			case opRead:
				afs.decode(w)
			case opWrite:
				if fw := afs.encode(w); fw != nil {
					pending = append(pending, fw)
				}
			}
		}
	}
}

// decode turns the raw framed bytes of a compressed read into the decoded
// payload. The read pipeline always terminates here: success or failure, the
// item is signaled.
func (afs *FS) decode(w *Work) {
	raw := w.buffer
	w.staging = raw

	dsize, block, err := parseFrame(raw)
	if err != nil {
		afs.log.Warn("asyncfs: bad compressed frame", "path", w.path, "err", err)
		afs.finish(w, err)
		return
	}

	extra := 0
	if w.nullTerminate {
		extra = 1
	}
	out := make([]byte, dsize+extra)

	n, err := w.codec.Decompress(out[:dsize], block)
	if err != nil {
		// the raw frame bytes stay in place on the handle
		afs.log.Warn("asyncfs: decompression failed",
			"path", w.path, "algorithm", w.algo, "err", err)
		afs.finish(w, err)
		return
	}

	w.buffer = out[:n+extra]
	w.size = n
	incrementStat(&afs.stats.FilesDecompressed)
	addBytes(&afs.stats.BytesDecompressed, int64(n))
	afs.stats.IncrementAlgorithmCount(w.algo)
	afs.finish(w, nil)
}

// encode compresses a write's payload into a freshly framed staging buffer
// and returns the item for handoff to the I/O stage, which persists it and
// signals. A codec failure fails the item here and nothing is written.
func (afs *FS) encode(w *Work) *Work {
	headerLen := frameHeaderLen(len(w.buffer))
	staging := make([]byte, headerLen+w.codec.Bound(len(w.buffer)))
	putFrameHeader(staging, len(w.buffer))

	n, err := w.codec.Compress(staging[headerLen:], w.buffer)
	if err != nil {
		afs.log.Warn("asyncfs: compression failed",
			"path", w.path, "algorithm", w.algo, "err", err)
		afs.finish(w, err)
		return nil
	}

	w.staging = staging[:headerLen+n]
	incrementStat(&afs.stats.FilesCompressed)
	addBytes(&afs.stats.BytesCompressed, int64(headerLen+n))
	afs.stats.IncrementAlgorithmCount(w.algo)
	return w
}
