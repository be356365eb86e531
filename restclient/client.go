// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package restclient dispatches schema-described operations against a
// Graylog REST API.  Call New() with the configuration of the
// service; for instance,
//
//     c, err := restclient.New(restclient.Config{
//         URL:      "http://localhost:9000/api",
//         Username: "admin",
//         Password: "admin",
//     })
//
// and then bind an Endpoint to each resource:
//
//     streams, err := restclient.NewEndpoint[graylog.Stream](c, graylog.StreamResource)
//     all, err := streams.List(ctx, nil, nil)
//
// Path placeholders such as {stream_id} are filled from the object
// being written and from caller-supplied Vars.  Every HTTP exchange
// goes through the retry package, so a briefly unreachable server is
// retried with a fixed delay.
package restclient

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/diffeo/go-gl2api/retry"
	"github.com/diffeo/go-gl2api/schema"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the per-request timeout if Config does not set
// one.
const DefaultTimeout = 10 * time.Second

// Config describes how to reach a Graylog server.
type Config struct {
	// URL is the root of the REST API, usually ending in "/api".
	URL string `mapstructure:"url" yaml:"url"`

	// Username and Password are sent as HTTP basic
	// authentication if Username is non-empty.
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`

	// Timeout bounds each HTTP request.  If zero, uses
	// DefaultTimeout.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// RetryDelay is how long to wait after a connection failure.
	// If zero, uses retry.DefaultDelay.
	RetryDelay time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`
}

// ConfigFromMap decodes a configuration from a generic map, such as
// one section of a YAML file.  Durations may be given as strings,
// "30s".
func ConfigFromMap(m map[string]interface{}) (Config, error) {
	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return cfg, err
	}
	err = decoder.Decode(m)
	return cfg, err
}

// ErrNoURL is returned from New if the configuration has no URL.
var ErrNoURL = errors.New("no Graylog API URL configured")

// Client holds the connection settings shared by every endpoint.  A
// Client is safe for concurrent use once its exported fields are set.
type Client struct {
	// HTTPClient performs the requests.  New sets one with the
	// configured timeout.
	HTTPClient *http.Client

	// Retry is the policy applied to every request.
	Retry retry.Policy

	// Logger receives request and failure logging.
	Logger logrus.FieldLogger

	// Registry holds every resource bound to an endpoint on this
	// client.
	Registry *schema.Registry

	root     *url.URL
	username string
	password string
}

// New creates a new client that speaks to a Graylog REST server.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, ErrNoURL
	}
	root, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, err
	}
	if root.Scheme == "" || root.Host == "" {
		return nil, fmt.Errorf("not an absolute URL: %q", cfg.URL)
	}
	if !strings.HasSuffix(root.Path, "/") {
		root.Path += "/"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	policy := retry.DefaultPolicy()
	if cfg.RetryDelay != 0 {
		policy.Delay = cfg.RetryDelay
	}
	logger := logrus.StandardLogger()
	policy.Logger = logger

	return &Client{
		HTTPClient: &http.Client{Timeout: timeout},
		Retry:      policy,
		Logger:     logger,
		Registry:   schema.NewRegistry(),
		root:       root,
		username:   cfg.Username,
		password:   cfg.Password,
	}, nil
}

// Root returns a copy of the API root URL.
func (c *Client) Root() *url.URL {
	u := *c.root
	return &u
}
