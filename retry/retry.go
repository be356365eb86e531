// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package retry runs an operation again when it fails because the
// remote service could not be reached.  Only a small, fixed number of
// failures are slept through: a Graylog server that is restarting
// comes back within a few seconds, and one that does not is better
// reported than waited on.
package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Policy describes how an operation is retried.  The zero value runs
// the operation exactly once; DefaultPolicy returns the usual
// settings.
type Policy struct {
	// Attempts is an upper bound on the number of times the
	// operation is run.  If zero, it is run once.
	Attempts int

	// Backoffs is the number of retryable failures that are
	// slept through.  The next retryable failure is logged and
	// returned.
	Backoffs int

	// Delay is how long to sleep after a retryable failure.
	Delay time.Duration

	// Clock defines the time source for sleeping.  Only test code
	// should need to set this.  If unset, uses a time source
	// backed by real wall-clock time.
	Clock clock.Clock

	// Logger receives a warning for every retried failure and an
	// error when giving up.  If unset, uses the logrus standard
	// logger.
	Logger logrus.FieldLogger

	// Retryable decides whether an error is worth retrying.  If
	// unset, uses IsConnectionError.
	Retryable func(error) bool
}

// Defaults for DefaultPolicy.
const (
	DefaultAttempts = 12
	DefaultBackoffs = 2
	DefaultDelay    = 10 * time.Second
)

// DefaultPolicy returns a policy that sleeps through two connection
// failures, ten seconds apart.
func DefaultPolicy() Policy {
	return Policy{
		Attempts: DefaultAttempts,
		Backoffs: DefaultBackoffs,
		Delay:    DefaultDelay,
	}
}

// setDefaults fills in any Policy fields that are uninitialized.
func (p *Policy) setDefaults() {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	if p.Clock == nil {
		p.Clock = clock.New()
	}
	if p.Logger == nil {
		p.Logger = logrus.StandardLogger()
	}
	if p.Retryable == nil {
		p.Retryable = IsConnectionError
	}
}

// Do runs f until it succeeds, fails with an error the policy does
// not retry, or exhausts the policy.  It returns f's last result.  If
// ctx is cancelled while sleeping, returns the context's error.
func Do[V any](ctx context.Context, p Policy, f func() (V, error)) (V, error) {
	p.setDefaults()
	var (
		v   V
		err error
	)
	for i := 0; i < p.Attempts; i++ {
		v, err = f()
		if err == nil || !p.Retryable(err) {
			return v, err
		}
		if i >= p.Backoffs || i == p.Attempts-1 {
			break
		}
		p.Logger.WithFields(logrus.Fields{
			"err":     err,
			"attempt": i + 1,
			"delay":   p.Delay,
		}).Warn("Connection failed, retrying")
		select {
		case <-ctx.Done():
			return v, ctx.Err()
		case <-p.Clock.After(p.Delay):
		}
	}
	p.Logger.WithFields(logrus.Fields{"err": err}).Error("Unable to connect")
	return v, err
}

// IsConnectionError decides whether err means the remote service
// could not be reached, or dropped the connection without replying.
// Timeouts and context cancellation are not connection errors.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
