// Package uploader drives the admin tool's file uploads against the API.
// Every file gets its own session that walks idle → uploading →
// done/error, and can be cancelled at any point before done.
package uploader

import (
	"context"
	"sync"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusError     Status = "error"
	StatusCancelled Status = "cancelled"
)

// Result is what the store reports for an accepted upload.
type Result struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Session is one in-flight file transfer. All fields behind mu, the
// status check under the same lock is what keeps completion callbacks
// from racing a cancel.
type Session struct {
	ID       string
	Filename string

	mu       sync.Mutex
	status   Status
	progress int
	err      error
	result   *Result
	cancel   context.CancelFunc

	data        []byte
	contentType string
}

func newSession(filename, contentType string, data []byte) *Session {
	id, _ := gonanoid.New(10)

	return &Session{
		ID:          id,
		Filename:    filename,
		status:      StatusIdle,
		data:        data,
		contentType: contentType,
	}
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Progress returns the upload percentage, 100 once done.
func (s *Session) Progress() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Result returns the stored reference once the session is done, nil
// otherwise.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusDone {
		return nil
	}
	return s.result
}

func (s *Session) setProgress(p int) {
	s.mu.Lock()
	if s.status == StatusUploading {
		s.progress = p
	}
	s.mu.Unlock()
}
