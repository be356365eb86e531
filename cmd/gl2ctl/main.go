// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package gl2ctl is a command-line client for the Graylog REST API.
// Connection settings come from a YAML file named by --config, with
// individual flags overriding it:
//
//     url: http://localhost:9000/api
//     username: admin
//     password: admin
//     timeout: 30s
//
// Results are printed as YAML.
package main

import (
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/diffeo/go-gl2api/graylog"
	"github.com/diffeo/go-gl2api/restclient"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"
)

type tool struct {
	API *graylog.API
	Out io.Writer
}

var gl2 = tool{Out: os.Stdout}

func (t *tool) print(v interface{}) error {
	bytes, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = t.Out.Write(bytes)
	return err
}

// parseVars turns repeated --var name=value flags into path variables.
func parseVars(pairs []string) (restclient.Vars, error) {
	vars := restclient.Vars{}
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid --var %q, want name=value", pair)
		}
		vars[parts[0]] = parts[1]
	}
	return vars, nil
}

var varFlag = cli.StringSliceFlag{
	Name:  "var",
	Usage: "name=value for a path placeholder, such as stream_id=...",
}

func fetch(c *cli.Context, opName string) error {
	if c.NArg() != 1 {
		return cli.NewExitError("expected exactly one resource name", 2)
	}
	vars, err := parseVars(c.StringSlice("var"))
	if err != nil {
		return cli.NewExitError(err.Error(), 2)
	}
	body, err := gl2.API.Client.Fetch(context.Background(), c.Args().First(), opName, vars, nil)
	if err != nil {
		return err
	}
	return gl2.print(body)
}

var listCmd = cli.Command{
	Name:      "list",
	Usage:     "list the objects of a resource",
	ArgsUsage: "RESOURCE",
	Flags:     []cli.Flag{varFlag},
	Action: func(c *cli.Context) error {
		return fetch(c, "list")
	},
}

var getCmd = cli.Command{
	Name:      "get",
	Usage:     "fetch one object of a resource",
	ArgsUsage: "RESOURCE",
	Flags:     []cli.Flag{varFlag},
	Action: func(c *cli.Context) error {
		return fetch(c, "get")
	},
}

// describe flattens a resource descriptor for printing.
func describe(name string) map[string]interface{} {
	r, _ := gl2.API.Client.Registry.Resource(name)
	ops := make([]map[string]interface{}, 0, len(r.Operations))
	for _, op := range r.Operations {
		d := map[string]interface{}{
			"name":   op.Name,
			"method": op.Method,
			"path":   r.PathOf(op),
		}
		if op.Method == "GET" {
			d["shape"] = op.Shape.String()
		}
		if op.Field != "" {
			d["field"] = op.Field
		}
		if len(op.Exclude) > 0 {
			d["exclude"] = op.Exclude
		}
		if op.NoGet {
			d["no_get"] = true
		}
		ops = append(ops, d)
	}
	return map[string]interface{}{"path": r.Path, "operations": ops}
}

var resourcesCmd = cli.Command{
	Name:  "resources",
	Usage: "describe every known resource",
	Action: func(c *cli.Context) error {
		out := make(map[string]interface{})
		for _, name := range gl2.API.Client.Registry.Names() {
			out[name] = describe(name)
		}
		return gl2.print(out)
	},
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, s)
}

var searchCmd = cli.Command{
	Name:      "search",
	Usage:     "search messages, relative to now or between two times",
	ArgsUsage: "QUERY",
	Flags: []cli.Flag{
		cli.DurationFlag{
			Name:  "range",
			Value: 5 * time.Minute,
			Usage: "search this far back from now",
		},
		cli.StringFlag{
			Name:  "from",
			Usage: "RFC 3339 start of an absolute search",
		},
		cli.StringFlag{
			Name:  "to",
			Usage: "RFC 3339 end of an absolute search",
		},
		cli.IntFlag{
			Name:  "limit",
			Value: 50,
			Usage: "return at most this many messages",
		},
		cli.StringFlag{
			Name:  "sort",
			Usage: "field:asc or field:desc",
		},
		cli.StringFlag{
			Name:  "stream",
			Usage: "only search this stream id",
		},
	},
	Action: func(c *cli.Context) error {
		q := graylog.SearchQuery{
			Query: "*",
			Range: c.Duration("range"),
			Limit: c.Int("limit"),
			Sort:  c.String("sort"),
		}
		if c.NArg() > 0 {
			q.Query = strings.Join(c.Args(), " ")
		}
		if stream := c.String("stream"); stream != "" {
			q.Filter = "streams:" + stream
		}
		var err error
		if q.From, err = parseTime(c.String("from")); err != nil {
			return cli.NewExitError(err.Error(), 2)
		}
		if q.To, err = parseTime(c.String("to")); err != nil {
			return cli.NewExitError(err.Error(), 2)
		}

		ctx := context.Background()
		var results *graylog.SearchResults
		if c.IsSet("from") || c.IsSet("to") {
			results, err = gl2.API.SearchAbsolute(ctx, q)
		} else {
			results, err = gl2.API.SearchRelative(ctx, q)
		}
		if err != nil {
			return err
		}
		messages := make([]map[string]interface{}, len(results.Messages))
		for i, m := range results.Messages {
			messages[i] = m.Message
		}
		return gl2.print(map[string]interface{}{
			"total_results": results.TotalResults,
			"from":          results.From.Format(time.RFC3339),
			"to":            results.To.Format(time.RFC3339),
			"messages":      messages,
		})
	},
}

func streamAction(do func(*graylog.API, context.Context, string) error) func(*cli.Context) error {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return cli.NewExitError("expected exactly one stream id", 2)
		}
		return do(gl2.API, context.Background(), c.Args().First())
	}
}

var streamCmd = cli.Command{
	Name:  "stream",
	Usage: "control streams",
	Subcommands: []cli.Command{
		{
			Name:      "resume",
			Usage:     "start routing messages into a stream",
			ArgsUsage: "ID",
			Action:    streamAction((*graylog.API).ResumeStream),
		},
		{
			Name:      "pause",
			Usage:     "stop routing messages into a stream",
			ArgsUsage: "ID",
			Action:    streamAction((*graylog.API).PauseStream),
		},
		{
			Name:      "find",
			Usage:     "find a stream by title",
			ArgsUsage: "TITLE",
			Action: func(c *cli.Context) error {
				s, err := gl2.API.StreamByName(context.Background(), strings.Join(c.Args(), " "))
				if err != nil {
					return err
				}
				return gl2.print(map[string]interface{}{
					"id":           s.ID,
					"title":        s.Title,
					"disabled":     s.Disabled,
					"index_set_id": s.IndexSetID,
					"rules":        s.Rules,
				})
			},
		},
	},
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

// config builds the client configuration from the file, if any, and
// then from explicitly set flags.
func config(c *cli.Context) (restclient.Config, error) {
	settings := make(map[string]interface{})
	if filename := c.GlobalString("config"); filename != "" {
		file, err := loadConfigYaml(filename)
		if err != nil {
			return restclient.Config{}, err
		}
		for k, v := range file {
			settings[k] = v
		}
	}
	for _, name := range []string{"url", "username", "password", "timeout"} {
		if c.GlobalIsSet(name) || settings[name] == nil {
			if v := c.GlobalString(name); v != "" {
				settings[name] = v
			}
		}
	}
	return restclient.ConfigFromMap(settings)
}

func main() {
	app := cli.NewApp()
	app.Name = "gl2ctl"
	app.Usage = "inspect and control a Graylog server"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config",
			Usage: "YAML file with url, username, password, timeout",
		},
		cli.StringFlag{
			Name:   "url",
			Value:  "http://localhost:9000/api",
			Usage:  "root of the Graylog REST API",
			EnvVar: "GL2_URL",
		},
		cli.StringFlag{
			Name:   "username",
			Usage:  "HTTP basic authentication user",
			EnvVar: "GL2_USERNAME",
		},
		cli.StringFlag{
			Name:   "password",
			Usage:  "HTTP basic authentication password",
			EnvVar: "GL2_PASSWORD",
		},
		cli.StringFlag{
			Name:  "timeout",
			Usage: "per-request timeout, such as 30s",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "log every request",
		},
	}
	app.Commands = []cli.Command{
		listCmd,
		getCmd,
		resourcesCmd,
		searchCmd,
		streamCmd,
	}
	app.Before = func(c *cli.Context) error {
		if c.GlobalBool("verbose") {
			logrus.SetLevel(logrus.DebugLevel)
		}
		cfg, err := config(c)
		if err != nil {
			return err
		}
		client, err := restclient.New(cfg)
		if err != nil {
			return err
		}
		gl2.API, err = graylog.New(client)
		return err
	}
	if err := app.Run(os.Args); err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("gl2ctl failed")
	}
}
