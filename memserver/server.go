// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memserver

import (
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-gl2api/restdata"
	"github.com/diffeo/go-gl2api/schema"
	"github.com/gorilla/mux"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// doc is a JSON object as stored and served.
type doc = map[string]interface{}

// Server holds the state of a fake Graylog server.  All of its state
// is guarded by a single mutex; every request holds it for its
// duration.
type Server struct {
	// Username and Password, if Username is non-empty, are the
	// only accepted HTTP basic authentication.
	Username string
	Password string

	// Clock provides creation times and the "now" of relative
	// searches.
	Clock clock.Clock

	// Logger, if non-nil, receives one line per request.
	Logger logrus.FieldLogger

	lock       sync.Mutex
	inputs     map[string]doc
	inputTypes map[string]doc
	extractors map[string]map[string]doc
	indexSets  map[string]doc
	retention  []doc
	rotation   []doc
	ldap       doc
	streams    map[string]doc
	ruleTypes  []doc
	rules      map[string]map[string]doc
	roles      map[string]doc
	messages   []doc

	defaultStream string
}

// DefaultIndexSetTitle and DefaultStreamTitle are the titles of the
// objects a new server starts with.
const (
	DefaultIndexSetTitle = "Default index set"
	DefaultStreamTitle   = "All messages"
)

// New creates a server seeded the way a fresh Graylog installation
// is: a default index set, the "All messages" stream, the built-in
// roles, and the standard input types and index strategies.
func New() *Server {
	s := &Server{
		Clock:      clock.New(),
		inputs:     make(map[string]doc),
		inputTypes: make(map[string]doc),
		extractors: make(map[string]map[string]doc),
		indexSets:  make(map[string]doc),
		streams:    make(map[string]doc),
		rules:      make(map[string]map[string]doc),
		roles:      make(map[string]doc),
	}
	s.seed()
	return s
}

// newID returns a fresh 24-hex-digit object id, the shape of a MongoDB
// ObjectId.
func newID() string {
	return hex.EncodeToString(uuid.NewV4().Bytes()[:12])
}

func (s *Server) now() string {
	return s.Clock.Now().UTC().Format(schema.TimeFormat)
}

// Handler returns an HTTP handler serving the API under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(notFound)
	s.PopulateRouter(r.PathPrefix("/api").Subrouter())

	n := negroni.New()
	n.Use(negroni.HandlerFunc(s.recovery))
	if s.Logger != nil {
		l := negroni.NewLogger()
		l.ALogger = s.Logger
		n.Use(l)
	}
	if s.Username != "" {
		n.Use(negroni.HandlerFunc(s.authenticate))
	}
	n.UseHandler(r)
	return n
}

// PopulateRouter adds all of the API paths to an existing router,
// which should be rooted at the API root.
func (s *Server) PopulateRouter(r *mux.Router) {
	s.populateInputs(r)
	s.populateIndices(r)
	s.populateLDAP(r)
	s.populateStreams(r)
	s.populateRoles(r)
	s.populateSearch(r)
	r.NotFoundHandler = http.HandlerFunc(notFound)
}

func notFound(w http.ResponseWriter, req *http.Request) {
	writeError(w, http.StatusNotFound, restdata.ErrorResponse{
		Type:    "ApiError",
		Message: "HTTP 404 Not Found",
	})
}

// recovery turns a panic anywhere below it into a 500 error document.
func (s *Server) recovery(w http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	defer func() {
		if recovered := recover(); recovered != nil {
			resp := restdata.ErrorResponse{}
			resp.FromPanic(recovered)
			if s.Logger != nil {
				s.Logger.WithFields(logrus.Fields{
					"method": req.Method,
					"url":    req.URL.String(),
					"err":    resp.Message,
				}).Error("Panic serving request")
			}
			writeError(w, http.StatusInternalServerError, resp)
		}
	}()
	next(w, req)
}

func (s *Server) authenticate(w http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	username, password, ok := req.BasicAuth()
	if !ok || username != s.Username || password != s.Password {
		w.Header().Set("WWW-Authenticate", `Basic realm="Graylog Server"`)
		writeError(w, http.StatusUnauthorized, restdata.ErrorResponse{
			Type:    "ApiError",
			Message: "Failed to authenticate",
		})
		return
	}
	next(w, req)
}

func writeError(w http.ResponseWriter, status int, resp restdata.ErrorResponse) {
	w.Header().Set("Content-Type", restdata.JSONMediaType)
	w.WriteHeader(status)
	_ = restdata.Encode(w, resp)
}
