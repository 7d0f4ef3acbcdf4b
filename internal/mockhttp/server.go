package mockhttp

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zhammer/scribly/internal/logging"
)

// RequestMatcher selects requests by method and path. An empty method
// matches any method.
type RequestMatcher struct {
	Method string `json:"method,omitempty"`
	Path   string `json:"path"`
}

// ResponseStub is the canned response served for a matched request.
type ResponseStub struct {
	StatusCode int                 `json:"statusCode,omitempty"`
	Headers    map[string][]string `json:"headers,omitempty"`
	Body       string              `json:"body,omitempty"`
}

// RetrievedBody carries a captured request body over the wire. A request
// sent as application/json surfaces parsed under JSON; anything else is
// passed through as a raw string.
type RetrievedBody struct {
	String string          `json:"string,omitempty"`
	JSON   json.RawMessage `json:"json,omitempty"`
}

// RetrievedRequest is the wire shape of one captured request.
type RetrievedRequest struct {
	Method string        `json:"method"`
	Path   string        `json:"path"`
	Body   RetrievedBody `json:"body"`
}

type expectationPayload struct {
	HTTPRequest  RequestMatcher `json:"httpRequest"`
	HTTPResponse ResponseStub   `json:"httpResponse"`
}

type expectation struct {
	id       string
	matcher  RequestMatcher
	response ResponseStub
}

// Server is a programmable mock HTTP server. Control endpoints live under
// /mockserver/; every other request is matched against the registered
// expectations and recorded.
type Server struct {
	mu           sync.Mutex
	expectations []expectation
	recorder     *Recorder
	logger       logging.Logger
}

func NewServer(logger logging.Logger) *Server {
	return &Server{recorder: &Recorder{}, logger: logger}
}

// Recorder exposes the capture log for in-process assertions.
func (s *Server) Recorder() *Recorder {
	return s.recorder
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/mockserver/") {
		s.control(w, r)
		return
	}
	s.dispatch(w, r)
}

func (s *Server) control(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "control endpoints accept PUT only", http.StatusMethodNotAllowed)
		return
	}

	switch r.URL.Path {
	case "/mockserver/reset":
		s.reset(r)
		w.WriteHeader(http.StatusOK)

	case "/mockserver/expectation":
		s.addExpectation(w, r)

	case "/mockserver/retrieve":
		s.retrieve(w, r)

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) reset(r *http.Request) {
	s.mu.Lock()
	s.expectations = nil
	s.mu.Unlock()
	s.recorder.Reset()
	s.logger.Info(r.Context(), "mock server reset")
}

func (s *Server) addExpectation(w http.ResponseWriter, r *http.Request) {
	var payload expectationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "malformed expectation: "+err.Error(), http.StatusBadRequest)
		return
	}
	if payload.HTTPRequest.Path == "" {
		http.Error(w, "expectation requires httpRequest.path", http.StatusBadRequest)
		return
	}
	if payload.HTTPResponse.StatusCode == 0 {
		payload.HTTPResponse.StatusCode = http.StatusOK
	}

	exp := expectation{
		id:       uuid.NewString(),
		matcher:  payload.HTTPRequest,
		response: payload.HTTPResponse,
	}

	s.mu.Lock()
	s.expectations = append(s.expectations, exp)
	s.mu.Unlock()

	s.logger.Info(r.Context(), "expectation registered",
		"id", exp.id,
		"method", exp.matcher.Method,
		"path", exp.matcher.Path,
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"id": exp.id})
}

func (s *Server) retrieve(w http.ResponseWriter, r *http.Request) {
	if kind := r.URL.Query().Get("type"); kind != "REQUESTS" {
		http.Error(w, "unsupported retrieve type", http.StatusBadRequest)
		return
	}

	captured := s.recorder.All()
	out := make([]RetrievedRequest, 0, len(captured))
	for _, req := range captured {
		out = append(out, RetrievedRequest{
			Method: req.Method,
			Path:   req.Path,
			Body:   shapeBody(req),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

// shapeBody decides how a captured body travels over the wire: JSON
// requests surface parsed, everything else as a raw string.
func shapeBody(req CapturedRequest) RetrievedBody {
	if strings.Contains(req.ContentType, "application/json") && json.Valid(req.Body) {
		return RetrievedBody{JSON: json.RawMessage(req.Body)}
	}
	return RetrievedBody{String: string(req.Body)}
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}

	s.recorder.Record(CapturedRequest{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        body,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, exp := range s.expectations {
		if exp.matcher.Path != r.URL.Path {
			continue
		}
		if exp.matcher.Method != "" && exp.matcher.Method != r.Method {
			continue
		}

		for key, values := range exp.response.Headers {
			for _, value := range values {
				w.Header().Add(key, value)
			}
		}
		w.WriteHeader(exp.response.StatusCode)
		_, _ = io.WriteString(w, exp.response.Body)
		return
	}

	s.logger.Warn(r.Context(), "no expectation matched", "method", r.Method, "path", r.URL.Path)
	http.NotFound(w, r)
}
