package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestResponseWriter_Buffers(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.WriteHeader(http.StatusNotFound)
	if _, err := rw.Write([]byte("missing")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if rw.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusNotFound)
	}
	if w.Body.Len() != 0 {
		t.Errorf("underlying body written before commit: %q", w.Body.String())
	}
	if !rw.Written() {
		t.Error("Written() = false, want true")
	}
	if rw.Size() != 7 {
		t.Errorf("Size() = %d, want 7", rw.Size())
	}

	if err := rw.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if w.Code != http.StatusNotFound {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusNotFound)
	}
	if w.Body.String() != "missing" {
		t.Errorf("underlying body = %q, want %q", w.Body.String(), "missing")
	}
	if !rw.Committed() {
		t.Error("Committed() = false, want true")
	}
}

func TestResponseWriter_WriteHeader_OnlyOnce(t *testing.T) {
	rw := NewResponseWriter(httptest.NewRecorder())

	rw.WriteHeader(http.StatusCreated)
	rw.WriteHeader(http.StatusInternalServerError)

	if rw.Status() != http.StatusCreated {
		t.Errorf("Status() = %d, want %d", rw.Status(), http.StatusCreated)
	}
}

func TestResponseWriter_ImplicitOK(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	_, _ = rw.Write([]byte("hello"))
	_ = rw.Commit()

	if w.Code != http.StatusOK {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestResponseWriter_Reset(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.Header().Set("Set-Cookie", "session=1")
	rw.WriteHeader(http.StatusAccepted)
	_, _ = rw.Write([]byte("partial output"))

	rw.Reset()

	if rw.Written() {
		t.Error("Written() = true after Reset, want false")
	}
	if len(rw.Body()) != 0 {
		t.Errorf("Body() = %q after Reset, want empty", rw.Body())
	}
	if rw.Status() != http.StatusOK {
		t.Errorf("Status() = %d after Reset, want %d", rw.Status(), http.StatusOK)
	}

	rw.WriteHeader(http.StatusForbidden)
	_, _ = rw.Write([]byte("denied"))
	_ = rw.Commit()

	if w.Code != http.StatusForbidden {
		t.Errorf("underlying status = %d, want %d", w.Code, http.StatusForbidden)
	}
	if w.Body.String() != "denied" {
		t.Errorf("underlying body = %q, want %q", w.Body.String(), "denied")
	}
	if w.Header().Get("Set-Cookie") != "session=1" {
		t.Error("header set before Reset was lost")
	}
}

func TestResponseWriter_ResetHeaders(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.Header().Set("X-Request-ID", "req-1")
	rw.Checkpoint()

	rw.Header().Set("Location", "/elsewhere")
	rw.Header().Set("Content-Type", "application/json")
	rw.Header().Add("Set-Cookie", "session=1")
	rw.Header().Set("X-Request-ID", "overwritten")

	rw.Reset()

	if got := w.Header().Get("Location"); got != "" {
		t.Errorf("Location = %q after Reset, want empty", got)
	}
	if got := w.Header().Get("Content-Type"); got != "" {
		t.Errorf("Content-Type = %q after Reset, want empty", got)
	}
	if got := w.Header().Get("X-Request-ID"); got != "req-1" {
		t.Errorf("X-Request-ID = %q after Reset, want %q", got, "req-1")
	}
	if got := w.Header().Values("Set-Cookie"); len(got) != 1 || got[0] != "session=1" {
		t.Errorf("Set-Cookie = %v after Reset, want [session=1]", got)
	}
}

func TestResponseWriter_ResetWithoutCheckpoint(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	rw.Header().Set("Cache-Control", "no-store")
	rw.Header().Add("Set-Cookie", "a=1")
	rw.Header().Add("Set-Cookie", "b=2")

	rw.Reset()

	if got := w.Header().Get("Cache-Control"); got != "" {
		t.Errorf("Cache-Control = %q after Reset, want empty", got)
	}
	if got := w.Header().Values("Set-Cookie"); len(got) != 2 {
		t.Errorf("Set-Cookie = %v after Reset, want both cookies", got)
	}
}

func TestResponseWriter_CommitOnce(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	_, _ = rw.Write([]byte("a"))
	_ = rw.Commit()
	_, _ = rw.Write([]byte("b"))
	_ = rw.Commit()

	if w.Body.String() != "a" {
		t.Errorf("underlying body = %q, want %q", w.Body.String(), "a")
	}
}

func TestResponseWriter_Unwrap(t *testing.T) {
	w := httptest.NewRecorder()
	rw := NewResponseWriter(w)

	if rw.Unwrap() != w {
		t.Error("Unwrap() did not return the underlying writer")
	}
}
