// Package mockhttp implements a small programmable mock HTTP server and a
// client for its control protocol. Tests point the application under test
// at the server, register canned responses, and later retrieve every
// request the server observed.
package mockhttp

import "sync"

// CapturedRequest is one request observed by the mock server.
type CapturedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        []byte
}

// Recorder is an ordered, append-only log of captured requests. Handlers
// run concurrently, so access is mutex-guarded. The zero value is ready
// to use.
type Recorder struct {
	mu       sync.Mutex
	requests []CapturedRequest
}

// Record appends req to the log.
func (r *Recorder) Record(req CapturedRequest) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
}

// All returns the captured requests in arrival order. The returned slice
// is a copy; mutating it does not affect the recorder.
func (r *Recorder) All() []CapturedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CapturedRequest, len(r.requests))
	copy(out, r.requests)
	return out
}

// Len reports how many requests have been captured.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// Reset clears the log. Safe to call with no prior state.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = nil
}
