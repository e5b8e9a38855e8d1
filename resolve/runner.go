// Package resolve is the resolution engine: the ten components that turn a
// Go module source tree plus a request into a dependency manifest, without
// ever touching a serializer, a CLI flag parser, or a hosting provider API.
package resolve

import (
	"context"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/forgecode/gomod-prefetch/domain"
)

// DefaultDownloadMaxTries matches the toolchain's own default retry budget
// for network operations that can flake against a proxy.
const DefaultDownloadMaxTries = 5

// Runner executes toolchain commands through an injected domain.Exec and
// classifies their outcome. It owns the retry policy for network-touching
// subcommands; plain invocations run exactly once.
type Runner struct {
	exec             domain.Exec
	downloadMaxTries int
	initialDelay     time.Duration
}

// NewRunner builds a Runner. maxTries <= 0 falls back to
// DefaultDownloadMaxTries.
func NewRunner(exec domain.Exec, maxTries int) *Runner {
	if maxTries <= 0 {
		maxTries = DefaultDownloadMaxTries
	}
	return &Runner{exec: exec, downloadMaxTries: maxTries, initialDelay: time.Second}
}

func (r *Runner) delay() time.Duration {
	if r.initialDelay <= 0 {
		return time.Second
	}
	return r.initialDelay
}

// Run executes cmd once and turns a nonzero exit into a *domain.GoModFailure.
func (r *Runner) Run(ctx context.Context, cmd []string, params domain.ExecParams) (string, error) {
	out, code, err := r.exec(ctx, cmd, params)
	if err != nil {
		return "", err
	}
	if code != 0 {
		return out, &domain.GoModFailure{Command: cmd, ExitCode: code}
	}
	return out, nil
}

// RunDownload executes cmd with exponential, non-jittered backoff (1s, 2s,
// 4s, ...) between attempts, up to the Runner's configured try budget. Only
// command failures (nonzero exit) are retried; an error that prevented the
// command from starting at all propagates immediately.
func (r *Runner) RunDownload(ctx context.Context, cmd []string, params domain.ExecParams) (string, error) {
	var lastErr error
	delay := r.delay()

	for attempt := 1; attempt <= r.downloadMaxTries; attempt++ {
		out, code, err := r.exec(ctx, cmd, params)
		if err != nil {
			return "", err
		}
		if code == 0 {
			return out, nil
		}

		lastErr = &domain.GoModFailure{Command: cmd, ExitCode: code}
		if attempt == r.downloadMaxTries {
			break
		}

		logger.Warnf("command %v failed (attempt %d/%d), retrying in %s", cmd, attempt, r.downloadMaxTries, delay)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", &domain.GoModFailure{
		Command:  cmd,
		ExitCode: -1,
		Message:  lastErr.Error() + " (exhausted retries)",
	}
}
