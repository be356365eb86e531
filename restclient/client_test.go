// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient_test

import (
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/diffeo/go-gl2api/restclient"
	"github.com/diffeo/go-gl2api/retry"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v2"
)

func TestEmptyURL(t *testing.T) {
	_, err := restclient.New(restclient.Config{})
	if err == nil {
		t.Fatal("Expected error when given empty URL.")
	}
	assert.Equal(t, restclient.ErrNoURL, err)
}

func TestRelativeURL(t *testing.T) {
	_, err := restclient.New(restclient.Config{URL: "graylog/api"})
	assert.Error(t, err)
}

func TestNewDefaults(t *testing.T) {
	c, err := restclient.New(restclient.Config{URL: "http://graylog.example.com:9000/api"})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "http://graylog.example.com:9000/api/", c.Root().String())
	assert.Equal(t, restclient.DefaultTimeout, c.HTTPClient.Timeout)
	assert.Equal(t, retry.DefaultAttempts, c.Retry.Attempts)
	assert.Equal(t, retry.DefaultBackoffs, c.Retry.Backoffs)
	assert.Equal(t, retry.DefaultDelay, c.Retry.Delay)
	assert.Empty(t, c.Registry.Names())
}

func TestConfigFromYAML(t *testing.T) {
	text := `
url: http://graylog.example.com:9000/api/
username: admin
password: hunter2
timeout: 30s
retry_delay: 1s
`
	var m map[string]interface{}
	if !assert.NoError(t, yaml.Unmarshal([]byte(text), &m)) {
		return
	}
	cfg, err := restclient.ConfigFromMap(m)
	if assert.NoError(t, err) {
		assert.Equal(t, restclient.Config{
			URL:        "http://graylog.example.com:9000/api/",
			Username:   "admin",
			Password:   "hunter2",
			Timeout:    30 * time.Second,
			RetryDelay: time.Second,
		}, cfg)
	}

	c, err := restclient.New(cfg)
	if assert.NoError(t, err) {
		assert.Equal(t, 30*time.Second, c.HTTPClient.Timeout)
		assert.Equal(t, time.Second, c.Retry.Delay)
	}

	_, err = restclient.ConfigFromMap(map[string]interface{}{"timeout": "soon"})
	assert.Error(t, err)
}

func TestTemplate(t *testing.T) {
	c, err := restclient.New(restclient.Config{URL: "http://localhost:9000/api"})
	if !assert.NoError(t, err) {
		return
	}

	u, err := c.Template("roles/{name}", restclient.Vars{"name": "Reader Role"}, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, "http://localhost:9000/api/roles/Reader%20Role", u.String())
	}

	u, err = c.Template("search/universal/relative", nil, url.Values{
		"query": {"source:web AND level:3"},
		"range": {"300"},
	})
	if assert.NoError(t, err) {
		assert.Equal(t, "/api/search/universal/relative", u.Path)
		assert.Equal(t, "300", u.Query().Get("range"))
		assert.Equal(t, "source:web AND level:3", u.Query().Get("query"))
	}

	u, err = c.Template("streams/{stream_id}/rules/{id}", restclient.Vars{"stream_id": "s1", "id": 7}, nil)
	if assert.NoError(t, err) {
		assert.Equal(t, "/api/streams/s1/rules/7", u.Path)
	}

	_, err = c.Template("streams/{stream_id}/rules/{id}", restclient.Vars{"stream_id": "s1", "id": nil}, nil)
	assert.Equal(t, restclient.ErrMissingPathVar{Path: "streams/{stream_id}/rules/{id}", Name: "id"}, err)
}

// TestConnectionRefused checks that an unreachable server is retried
// and then reported.
func TestConnectionRefused(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if !assert.NoError(t, err) {
		return
	}
	addr := listener.Addr().String()
	assert.NoError(t, listener.Close())

	c, err := restclient.New(restclient.Config{URL: "http://" + addr + "/api"})
	if !assert.NoError(t, err) {
		return
	}
	logger, hook := test.NewNullLogger()
	c.Logger = logger
	c.Retry.Logger = logger
	c.Retry.Delay = time.Millisecond

	ep, err := restclient.NewEndpoint[widget](c, widgetResource)
	if !assert.NoError(t, err) {
		return
	}
	_, err = ep.List(ctx, restclient.Vars{"parent_id": "p1"}, nil)
	assert.Error(t, err)
	assert.True(t, retry.IsConnectionError(err))

	levels := make(map[logrus.Level]int)
	for _, entry := range hook.AllEntries() {
		levels[entry.Level]++
	}
	assert.Equal(t, map[logrus.Level]int{
		logrus.WarnLevel:  retry.DefaultBackoffs,
		logrus.ErrorLevel: 1,
	}, levels)
}

func TestFetch(t *testing.T) {
	f := newFakeServer(t, map[string]reply{
		"GET /parents/p1/widgets": {200, `{"total": 1, "widgets": [` + widgetW1 + `]}`},
	})
	defer f.Close()
	f.Widgets()

	body, err := f.Client.Fetch(ctx, "widgets", "list", restclient.Vars{"parent_id": "p1"}, nil)
	if f.NoError(err) && f.IsType(map[string]interface{}{}, body) {
		f.Equal(int64(1), body.(map[string]interface{})["total"])
	}

	_, err = f.Client.Fetch(ctx, "widgets", "delete", nil, nil)
	f.IsType(restclient.ErrUnknownOperation{}, err)

	_, err = f.Client.Fetch(ctx, "sprockets", "list", nil, nil)
	f.IsType(restclient.ErrUnknownOperation{}, err)

	_, err = f.Client.Fetch(ctx, "widgets", "get", restclient.Vars{"parent_id": "p1", "id": "zz"}, nil)
	f.IsType(restclient.ErrorHTTP{}, err)
}
