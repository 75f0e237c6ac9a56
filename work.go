package asyncfs

// opKind selects the pipeline operation for a work item
type opKind int

const (
	opRead opKind = iota
	opWrite
)

// Work is the handle for one asynchronous read or write request.
//
// While the request is in flight its buffers are owned exclusively by the
// pipeline stage currently holding it; ownership moves with the item at each
// queue handoff. Callers interact only through the accessor methods below,
// all of which (except IsDone) block until the request has completed.
//
// All methods are safe on a nil handle: a nil Work is considered complete,
// with no buffer and an ErrNilWork result.
type Work struct {
	op            opKind
	path          string
	nullTerminate bool
	compressed    bool
	algo          Algorithm
	codec         Codec

	// buffer holds the caller-visible payload: the decoded bytes for a
	// read, the caller's bytes for a write (not owned). staging holds the
	// compressed representation while one exists.
	buffer  []byte
	staging []byte
	size    int
	err     error

	// closed exactly once, by whichever stage finishes the item
	done chan struct{}
}

// IsDone reports whether the request has completed, without blocking.
func (w *Work) IsDone() bool {
	if w == nil {
		return true
	}
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the request has completed.
func (w *Work) Wait() {
	if w != nil {
		<-w.done
	}
}

// Err waits for completion and returns the request's result: nil on
// success, the platform or codec error otherwise.
func (w *Work) Err() error {
	if w == nil {
		return ErrNilWork
	}
	<-w.done
	return w.err
}

// Bytes waits for completion and returns the primary buffer: the decoded
// payload for a read (including the trailing NUL byte when null termination
// was requested), the caller's payload for a write.
func (w *Work) Bytes() []byte {
	if w == nil {
		return nil
	}
	<-w.done
	return w.buffer
}

// Size waits for completion and returns the payload size in bytes. For a
// null-terminated read this excludes the trailing NUL.
func (w *Work) Size() int {
	if w == nil {
		return 0
	}
	<-w.done
	return w.size
}

// Close waits for completion, releases the staging buffer, and returns the
// request's result. Close is idempotent.
func (w *Work) Close() error {
	if w == nil {
		return nil
	}
	<-w.done
	w.staging = nil
	return w.err
}
