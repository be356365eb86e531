// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/diffeo/go-gl2api/restclient"
	"github.com/diffeo/go-gl2api/restdata"
	"github.com/diffeo/go-gl2api/retry"
	"github.com/diffeo/go-gl2api/schema"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

// widget is a small entity living under a parent.
type widget struct {
	schema.Object
	ID       string
	Title    string
	ParentID string
}

func (w *widget) Fields() schema.Fields {
	return schema.Fields{
		schema.String("id", &w.ID).LoadOnly(),
		schema.String("title", &w.Title),
		schema.String("parent_id", &w.ParentID),
	}
}

var widgetResource = &schema.Resource{
	Name: "widgets",
	Path: "parents/{parent_id}/widgets",
	Operations: []schema.Operation{
		{Name: schema.OpList, Method: "GET", Shape: schema.Keyed, Field: "widgets"},
		{Name: schema.OpGet, Method: "GET", Path: "parents/{parent_id}/widgets/{id}"},
		{
			Name:     schema.OpAdd,
			Method:   "POST",
			Exclude:  []string{"parent_id"},
			GetAttrs: map[string]string{"widget_id": "id"},
		},
		{
			Name:    schema.OpUpdate,
			Method:  "PUT",
			Path:    "parents/{parent_id}/widgets/{id}",
			Exclude: []string{"parent_id", "id"},
		},
		{Name: schema.OpDelete, Method: "DELETE", Path: "parents/{parent_id}/widgets/{id}"},
		{Name: "touch", Method: "POST", Path: "parents/{parent_id}/widgets/{id}/touch", NoGet: true},
	},
}

// exchange records one request the fake server saw.
type exchange struct {
	Method string
	Path   string
	Query  string
	Body   map[string]interface{}
	Accept string
	User   string
}

// reply is a canned response.
type reply struct {
	Status int
	Body   string
}

// fakeServer answers requests from a fixed routing table, keyed by
// "METHOD /path", and records everything it sees.
type fakeServer struct {
	*assert.Assertions
	*httptest.Server
	Client *restclient.Client
	Hook   *test.Hook

	lock   sync.Mutex
	routes map[string]reply
	seen   []exchange
}

func newFakeServer(t *testing.T, routes map[string]reply) *fakeServer {
	f := &fakeServer{
		Assertions: assert.New(t),
		routes:     routes,
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	client, err := restclient.New(restclient.Config{
		URL:      f.Server.URL + "/api",
		Username: "admin",
		Password: "secret",
	})
	if err != nil {
		panic(err)
	}
	logger, hook := test.NewNullLogger()
	client.Logger = logger
	client.Retry = retry.Policy{Logger: logger}
	f.Client = client
	f.Hook = hook
	return f
}

func (f *fakeServer) serve(w http.ResponseWriter, r *http.Request) {
	ex := exchange{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Accept: r.Header.Get("Accept"),
	}
	ex.User, _, _ = r.BasicAuth()
	if r.ContentLength != 0 {
		var body map[string]interface{}
		if err := restdata.Decode(r.Header.Get("Content-Type"), r.Body, &body); err == nil {
			ex.Body = body
		}
	}

	f.lock.Lock()
	f.seen = append(f.seen, ex)
	rep, present := f.routes[r.Method+" "+strings.TrimPrefix(r.URL.Path, "/api")]
	f.lock.Unlock()

	if !present {
		rep = reply{http.StatusNotFound, `{"type":"ApiError","message":"no route"}`}
	}
	w.Header().Set("Content-Type", restdata.JSONMediaType)
	w.WriteHeader(rep.Status)
	_, _ = w.Write([]byte(rep.Body))
}

// Seen returns the method and path of every request, in order.
func (f *fakeServer) Seen() []string {
	f.lock.Lock()
	defer f.lock.Unlock()
	out := make([]string, len(f.seen))
	for i, ex := range f.seen {
		out[i] = ex.Method + " " + ex.Path
	}
	return out
}

// Exchange returns the i'th recorded request.
func (f *fakeServer) Exchange(i int) exchange {
	f.lock.Lock()
	defer f.lock.Unlock()
	if i >= len(f.seen) {
		return exchange{}
	}
	return f.seen[i]
}

// Widgets binds an endpoint for widgetResource.
func (f *fakeServer) Widgets() *restclient.Endpoint[widget, *widget] {
	ep, err := restclient.NewEndpoint[widget](f.Client, widgetResource)
	if err != nil {
		panic(err)
	}
	return ep
}

// loaded builds a widget the way a read would.
func loaded(id, parent, title string) *widget {
	w, err := schema.Load[widget](map[string]interface{}{
		"id":        id,
		"parent_id": parent,
		"title":     title,
	})
	if err != nil {
		panic(err)
	}
	return w
}
