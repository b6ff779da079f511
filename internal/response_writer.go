package internal

import (
	"bytes"
	"net/http"
	"slices"
	"sync"
)

// ResponseWriter buffers the response body until the dispatcher commits it.
// Headers go straight to the underlying writer's header map. Reset rolls them
// back to the last Checkpoint but keeps every cookie set during the request.
type ResponseWriter struct {
	http.ResponseWriter
	base      http.Header
	body      bytes.Buffer
	status    int
	written   bool
	committed bool
	mu        sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader records the status code. Only the first call counts.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return
	}
	w.written = true
	w.status = code
}

// Write appends to the buffered body.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.written = true
	return w.body.Write(b)
}

// Status returns the HTTP status code of the response.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of bytes buffered so far.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return int64(w.body.Len())
}

// Written returns true if a status or body has been produced.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Body returns a copy of the buffered body.
func (w *ResponseWriter) Body() []byte {
	w.mu.Lock()
	defer w.mu.Unlock()
	return bytes.Clone(w.body.Bytes())
}

// Checkpoint records the current headers as the state Reset returns to.
func (w *ResponseWriter) Checkpoint() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.base = w.ResponseWriter.Header().Clone()
}

// Reset discards the buffered body and status, and every header added since
// the last Checkpoint except Set-Cookie.
func (w *ResponseWriter) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.body.Reset()
	w.status = http.StatusOK
	w.written = false

	h := w.ResponseWriter.Header()
	cookies := h.Values("Set-Cookie")
	clear(h)
	for k, v := range w.base {
		if k != "Set-Cookie" {
			h[k] = slices.Clone(v)
		}
	}
	if len(cookies) > 0 {
		h["Set-Cookie"] = cookies
	}
}

// Commit sends the status and body to the client. Later calls are no-ops.
func (w *ResponseWriter) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.committed {
		return nil
	}
	w.committed = true

	w.ResponseWriter.WriteHeader(w.status)
	if w.body.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.body.Bytes())
	return err
}

// Committed reports whether Commit has run.
func (w *ResponseWriter) Committed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.committed
}

// Unwrap returns the underlying ResponseWriter.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
