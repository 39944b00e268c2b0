// Package platformtest provides an in-process fake of the review platform API
// for tests. It keeps sessions in memory and emits naive UTC timestamps the
// way the real server does.
package platformtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hay-kot/reviewdesk/pkg/kv"
)

// NaiveLayout is the timestamp format the platform emits: UTC without a zone.
const NaiveLayout = "2006-01-02T15:04:05.000000"

// Comment is a stored comment in wire shape.
type Comment struct {
	File      string `json:"file"`
	LineRange string `json:"line_range"`
	Type      string `json:"type"`
	Severity  string `json:"severity"`
	Text      string `json:"text"`
}

// Session is a stored session.
type Session struct {
	ID               int64
	CandidateName    string
	ReviewerName     string
	MRPackage        string
	MRIDs            []string
	Status           string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	CandidateReadyAt *time.Time
	DeletedAt        *time.Time
	AccessToken      string
	Comments         []Comment
	Diff             string
	Report           string
	PRURL            string
	PRComments       []Comment
}

// Request is a request the server received.
type Request struct {
	Method string
	Path   string
	Body   string
}

type failure struct {
	code int
	body string
}

// Server is a fake platform. The exported fields may be changed before the
// first request.
type Server struct {
	*httptest.Server

	// Now is the server clock.
	Now func() time.Time
	// SessionTTL is the lifetime of a new session.
	SessionTTL time.Duration
	// ExtendBy is added on every extend call.
	ExtendBy time.Duration
	// JobSteps is the status sequence a job walks through, one step per poll.
	JobSteps []string
	// GiteaEnabled makes new sessions carry gitea metadata.
	GiteaEnabled bool

	omitExtendExpiry atomic.Bool

	sessions *kv.Store[int64, *Session]
	tokens   *kv.Store[string, int64]
	jobs     *kv.Store[string, *job]
	failures *kv.Store[string, failure]

	nextID atomic.Int64

	mu       sync.Mutex
	requests []Request
}

type job struct {
	sessionID int64
	step      int
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Now:        time.Now,
		SessionTTL: 2 * time.Hour,
		ExtendBy:   30 * time.Minute,
		JobSteps:   []string{"queued", "started", "finished"},
		sessions:   kv.New[int64, *Session](),
		tokens:     kv.New[string, int64](),
		jobs:       kv.New[string, *job](),
		failures:   kv.New[string, failure](),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)
	r.Use(s.inject)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/reviewer/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Delete("/", s.handleDelete)
				r.Post("/finish", s.handleFinish)
				r.Put("/mrs", s.handleAssign)
				r.Get("/report/pdf", s.handlePDF)
				r.Post("/gitea/create-pr", s.handleCreatePR)
				r.Get("/gitea/pr", s.handleGetPR)
				r.Post("/gitea/sync-comments", s.handleSync)
				r.Post("/gitea/sync-comments-from-gitea", s.handleSync)
			})
		})

		r.Post("/sessions/{id}/extend", s.handleExtend)
		r.Post("/sessions/{id}/comments", s.handleReviewerComment)
		r.Get("/sessions/{id}/evaluate", s.handleEvaluate)
		r.Get("/jobs/{jobID}", s.handleJob)
		r.Get("/artifacts/{name}", s.handleArtifact)
		r.Post("/upload-mr", s.handleUpload)

		r.Route("/candidate/sessions/{token}", func(r chi.Router) {
			r.Get("/", s.handleCandidateGet)
			r.Get("/diff", s.handleCandidateDiff)
			r.Post("/comments", s.handleCandidateComment)
			r.Post("/ready", s.handleReady)
		})

		r.Get("/mr/list", s.handleMRList)
		r.Get("/mr/recommend", s.handleMRRecommend)
	})

	return r
}

// record stores every request with its body.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, Body: string(body)})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

// inject replies with a queued failure for the request, once.
func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		if f, ok := s.failures.Get(key); ok {
			s.failures.Delete(key)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.code)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// FailNext makes the next request matching method and path fail with code.
// path is the full request path including the /api prefix.
func (s *Server) FailNext(method, path string, code int, detail string) {
	body, _ := json.Marshal(map[string]string{"detail": detail})
	s.failures.Set(method+" "+path, failure{code: code, body: string(body)})
}

// OmitExtendExpiry makes extend replies lack expires_at.
func (s *Server) OmitExtendExpiry(v bool) {
	s.omitExtendExpiry.Store(v)
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Seed stores a session directly and returns it. Zero fields get defaults.
func (s *Server) Seed(sess Session) *Session {
	now := s.Now().UTC()
	if sess.ID == 0 {
		sess.ID = s.nextID.Add(1)
	} else if sess.ID > s.nextID.Load() {
		s.nextID.Store(sess.ID)
	}
	if sess.Status == "" {
		sess.Status = "active"
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	if sess.ExpiresAt.IsZero() {
		sess.ExpiresAt = sess.CreatedAt.Add(s.SessionTTL)
	}
	if sess.AccessToken == "" {
		sess.AccessToken = fmt.Sprintf("tok-%d", sess.ID)
	}
	if sess.ReviewerName == "" {
		sess.ReviewerName = "Reviewer"
	}
	if sess.Diff == "" {
		sess.Diff = sampleDiff
	}
	if sess.Comments == nil {
		sess.Comments = []Comment{}
	}
	if s.GiteaEnabled && sess.PRURL == "" {
		sess.PRURL = fmt.Sprintf("%s/gitea/review/session-%d/pulls/1", s.URL, sess.ID)
	}

	stored := sess
	s.sessions.Set(stored.ID, &stored)
	s.tokens.Set(stored.AccessToken, stored.ID)
	return &stored
}

// Session returns a copy of a stored session.
func (s *Server) Session(id int64) (Session, bool) {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return Session{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return *sess, true
}

// SetExpiry moves a session's expiry.
func (s *Server) SetExpiry(id int64, at time.Time) {
	s.withSession(id, func(sess *Session) { sess.ExpiresAt = at })
}

func (s *Server) withSession(id int64, fn func(*Session)) bool {
	sess, ok := s.sessions.Get(id)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(sess)
	return true
}

func naive(t time.Time) string {
	return t.UTC().Format(NaiveLayout)
}

func naivePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return naive(*t)
}

func (s *Server) wire(sess *Session) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := sess.Status
	if sess.DeletedAt != nil {
		status = "deleted"
	}

	out := map[string]any{
		"id":                 sess.ID,
		"candidate_name":     sess.CandidateName,
		"reviewer_name":      sess.ReviewerName,
		"mr_package":         sess.MRPackage,
		"status":             status,
		"created_at":         naive(sess.CreatedAt),
		"expires_at":         naive(sess.ExpiresAt),
		"candidate_ready_at": naivePtr(sess.CandidateReadyAt),
		"deleted_at":         naivePtr(sess.DeletedAt),
		"access_token":       sess.AccessToken,
		"comments":           append([]Comment{}, sess.Comments...),
	}
	if len(sess.MRIDs) > 0 {
		out["mr_id"] = sess.MRIDs[0]
	}
	if sess.PRURL != "" || s.GiteaEnabled {
		out["gitea"] = map[string]any{
			"enabled": true,
			"user":    "candidate",
			"repo":    fmt.Sprintf("session-%d", sess.ID),
			"pr_id":   1,
			"pr_url":  sess.PRURL,
			"web_url": sess.PRURL,
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid session id")
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}

func (s *Server) lookupToken(w http.ResponseWriter, r *http.Request) (*Session, bool) {
	id, ok := s.tokens.Get(chi.URLParam(r, "token"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	sess, ok := s.sessions.Get(id)
	if !ok || sess.DeletedAt != nil {
		writeDetail(w, http.StatusNotFound, "Session not found")
		return nil, false
	}
	return sess, true
}
