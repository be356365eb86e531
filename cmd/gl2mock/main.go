// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package gl2mock runs an in-memory imitation of a Graylog server.
// The REST API is served under /api and Prometheus metrics under
// /metrics.  A YAML file named by -seed can add input types and
// searchable messages beyond the built-in defaults:
//
//     input_types:
//       - type: org.graylog2.inputs.raw.tcp.RawTCPInput
//         name: Raw/Plaintext TCP
//         requested_configuration: {}
//     messages:
//       - message: hello world
//         source: web
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"net/http"

	"github.com/diffeo/go-gl2api/memserver"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// seedFile is the layout of the -seed file.
type seedFile struct {
	InputTypes []map[string]interface{} `yaml:"input_types"`
	Messages   []map[string]interface{} `yaml:"messages"`
}

func main() {
	httpBind := flag.String("http", ":9000", "[ip]:port for HTTP REST interface")
	username := flag.String("username", "", "require this HTTP basic authentication user")
	password := flag.String("password", "", "password for -username")
	seed := flag.String("seed", "", "YAML file of extra input types and messages")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	flag.Parse()

	server := memserver.New()
	server.Username = *username
	server.Password = *password
	if *logRequests {
		server.Logger = logrus.StandardLogger()
	}

	if *seed != "" {
		extra, err := loadSeedYaml(*seed)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err":  err,
				"file": *seed,
			}).Fatal("Could not load seed file")
			return
		}
		for _, t := range extra.InputTypes {
			server.AddInputType(t)
		}
		for _, m := range extra.Messages {
			server.AddMessage(m)
		}
		logrus.WithFields(logrus.Fields{
			"input_types": len(extra.InputTypes),
			"messages":    len(extra.Messages),
		}).Info("Loaded seed file")
	}

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.PathPrefix("/").Handler(server.Handler())
	logrus.WithFields(logrus.Fields{
		"http": *httpBind,
	}).Info("Serving fake Graylog API")
	err := http.ListenAndServe(*httpBind, r)
	logrus.WithFields(logrus.Fields{
		"err": err,
	}).Fatal("HTTP server stopped")
}

// loadSeedYaml reads a seed file.  YAML decodes nested objects with
// interface{} keys, so they are converted to string keys to look like
// JSON documents.
func loadSeedYaml(filename string) (*seedFile, error) {
	var result seedFile
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	if err != nil {
		return nil, err
	}
	for i, t := range result.InputTypes {
		result.InputTypes[i] = stringKeys(t).(map[string]interface{})
	}
	for i, m := range result.Messages {
		result.Messages[i] = stringKeys(m).(map[string]interface{})
	}
	return &result, nil
}

func stringKeys(v interface{}) interface{} {
	switch x := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[fmt.Sprint(k)] = stringKeys(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(x))
		for k, item := range x {
			out[k] = stringKeys(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(x))
		for i, item := range x {
			out[i] = stringKeys(item)
		}
		return out
	}
	return v
}
