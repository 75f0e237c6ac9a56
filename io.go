package asyncfs

import (
	"io"
)

// ioWorker is the I/O stage: it drains the I/O queue and performs the raw
// filesystem calls. It exits only on shutdown; individual item failures are
// recorded on the item and never stop the loop.
//
// Items bound for the compression stage wait in a local FIFO and are sent
// from the same select that receives new work, so the worker never blocks
// solely on a handoff. The two stages forward into each other; if each
// blocked on a full peer queue they would deadlock.
func (afs *FS) ioWorker() {
	defer afs.wg.Done()
	var pending []*Work
	for {
		var handoff chan *Work
		var head *Work
		if len(pending) > 0 {
			handoff = afs.codecQueue
			head = pending[0]
		}
		select {
		case <-afs.quit:
			return
		case handoff <- head:
			pending = pending[1:]
		case w := <-afs.ioQueue:
			switch w.op {
			case opRead:
				if fw := afs.readFile(w); fw != nil {
					pending = append(pending, fw)
				}
			case opWrite:
				afs.writeFile(w)
			}
		}
	}
}

// readFile fetches the raw bytes for a read request. Uncompressed reads are
// completed here; compressed reads are returned for handoff to the
// compression stage, which owns their final signal.
func (afs *FS) readFile(w *Work) *Work {
	f, err := afs.base.Open(w.path)
	if err != nil {
		// a compressed read that fails to open never reaches the
		// compression stage; it must still be marked done here
		afs.finish(w, err)
		return nil
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		afs.finish(w, err)
		return nil
	}
	size := int(info.Size())

	// the raw bytes of a compressed read become the staging input for the
	// decoder; only an uncompressed read needs room for the NUL here
	extra := 0
	if w.nullTerminate && !w.compressed {
		extra = 1
	}
	buf := make([]byte, size+extra)

	n, err := io.ReadFull(f, buf[:size])
	f.Close()
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		afs.finish(w, err)
		return nil
	}

	// a short read is reported through the size, not as an error; the
	// trailing byte of a null-terminated buffer is already zero
	w.buffer = buf[:n+extra]
	w.size = n
	incrementStat(&afs.stats.FilesRead)
	addBytes(&afs.stats.BytesRead, int64(n))

	if w.compressed {
		return w
	}
	afs.finish(w, nil)
	return nil
}

// writeFile persists a write request, truncating any existing file. The I/O
// stage is always the final stage for writes: items arriving here either
// skipped compression or already carry their encoded staging buffer.
func (afs *FS) writeFile(w *Work) {
	src := w.buffer
	if w.compressed {
		src = w.staging
	}

	f, err := afs.base.Create(w.path)
	if err != nil {
		afs.finish(w, err)
		return
	}

	n, err := f.Write(src)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if !w.compressed {
		w.size = n
	}
	if err != nil {
		afs.finish(w, err)
		return
	}

	incrementStat(&afs.stats.FilesWritten)
	addBytes(&afs.stats.BytesWritten, int64(len(w.buffer)))
	afs.finish(w, nil)
}
