package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"time"

	"lumenfolio/portfolio-api/security"
)

const defaultStagger = 150 * time.Millisecond

// Manager owns the upload sessions of one admin form. Starts are
// staggered so selecting a whole folder of photos doesn't slam the
// transfer layer at once.
type Manager struct {
	BaseURL      string
	Client       *http.Client
	Stagger      time.Duration
	SessionToken string

	mu       sync.Mutex
	sessions []*Session
}

func NewManager(baseURL, sessionToken string) *Manager {
	return &Manager{
		BaseURL:      baseURL,
		Client:       &http.Client{},
		Stagger:      defaultStagger,
		SessionToken: sessionToken,
	}
}

// Add registers a file and schedules its upload after the stagger delay
// for its position in the batch.
func (m *Manager) Add(filename, contentType string, data []byte) *Session {
	s := newSession(filename, contentType, data)

	m.mu.Lock()
	position := len(m.sessions)
	m.sessions = append(m.sessions, s)
	m.mu.Unlock()

	delay := m.Stagger
	if delay == 0 {
		delay = defaultStagger
	}

	time.AfterFunc(time.Duration(position)*delay, func() {
		m.start(s)
	})

	return s
}

func (m *Manager) start(s *Session) {
	s.mu.Lock()
	if s.status != StatusIdle {
		// Cancelled before it ever started
		s.mu.Unlock()
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.status = StatusUploading
	s.cancel = cancel
	s.mu.Unlock()

	go m.run(ctx, s)
}

func (m *Manager) run(ctx context.Context, s *Session) {
	res, err := m.doUpload(ctx, s)

	s.mu.Lock()
	if s.status == StatusCancelled {
		s.mu.Unlock()

		// The store already accepted the object, take it back
		if res != nil && res.PublicID != "" {
			m.compensate(res.PublicID)
		}
		return
	}

	if err != nil {
		s.status = StatusError
		s.err = err
	} else {
		s.status = StatusDone
		s.result = res
		s.progress = 100
	}
	s.mu.Unlock()
}

// Cancel aborts the transfer if still active. When the store has already
// accepted the object a compensating delete keeps it from leaking.
func (m *Manager) Cancel(s *Session) {
	s.mu.Lock()

	switch s.status {
	case StatusDone:
		s.status = StatusCancelled
		var pid string
		if s.result != nil {
			pid = s.result.PublicID
		}
		s.mu.Unlock()

		if pid != "" {
			m.compensate(pid)
		}
		return

	case StatusIdle, StatusUploading:
		s.status = StatusCancelled
		cancel := s.cancel
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		return
	}

	s.mu.Unlock()
}

// CanSubmit reports whether the form may be submitted, which requires at
// least one finished upload.
func (m *Manager) CanSubmit() bool {
	return len(m.Completed()) > 0
}

// Completed returns the accumulated results of all done sessions, in the
// order the files were added. Errored and cancelled sessions don't
// contribute.
func (m *Manager) Completed() []Result {
	m.mu.Lock()
	sessions := make([]*Session, len(m.sessions))
	copy(sessions, m.sessions)
	m.mu.Unlock()

	results := []Result{}
	for _, s := range sessions {
		if r := s.Result(); r != nil {
			results = append(results, *r)
		}
	}

	return results
}

type uploadResponse struct {
	OK       bool   `json:"ok"`
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Error    string `json:"error"`
}

func (m *Manager) doUpload(ctx context.Context, s *Session) (*Result, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, s.Filename))
	ct := s.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(s.data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.BaseURL+"/api/upload-image", &progressReader{
		r:     &body,
		total: int64(body.Len()),
		s:     s,
	})
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", mw.FormDataContentType())
	m.attachSession(req)

	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("malformed upload response, %w", err)
	}

	if resp.StatusCode != http.StatusOK || !parsed.OK {
		msg := parsed.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("upload rejected, %s", msg)
	}

	return &Result{URL: parsed.URL, PublicID: parsed.PublicID}, nil
}

// compensate deletes an object the store accepted for a session the user
// no longer wants. Best-effort, a failure just leaves an orphan behind.
func (m *Manager) compensate(publicID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	payload, _ := json.Marshal(map[string]string{"public_id": publicID})

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, m.BaseURL+"/api/upload-image", bytes.NewReader(payload))
	if err != nil {
		return
	}

	req.Header.Set("Content-Type", "application/json")
	m.attachSession(req)

	resp, err := m.Client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func (m *Manager) attachSession(req *http.Request) {
	if m.SessionToken != "" {
		req.AddCookie(&http.Cookie{Name: security.CookieName, Value: m.SessionToken})
	}
}

// progressReader feeds the request body while keeping the session's
// percentage current.
type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	s     *Session
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)

	if p.total > 0 {
		p.s.setProgress(int(p.read * 100 / p.total))
	}

	return n, err
}
