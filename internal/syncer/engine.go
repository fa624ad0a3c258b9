// Package syncer orchestrates a synchronization run: one transfer
// subprocess per shared element, per target host and direction, with a
// bounded number of concurrent transfers per (host, direction) pair.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sshsync/sshsync/internal/config"
	"github.com/sshsync/sshsync/internal/hosts"
)

// DefaultJobs is the default number of concurrent transfers per
// (host, direction) pair.
const DefaultJobs = 6

// Options are the run flags controlling one synchronization invocation.
// When neither Up nor Down is set, both directions run.
type Options struct {
	Up       bool
	Down     bool
	DryRun   bool
	Delete   bool
	Excludes []string
	Jobs     int
}

// Engine drives a full synchronization run against the resolved host set.
type Engine struct {
	cfg     *config.Config
	hosts   *hosts.Set
	opts    Options
	builder *CommandBuilder
	runner  Runner
	log     *slog.Logger
}

func New(cfg *config.Config, hostSet *hosts.Set, opts Options, log *slog.Logger) (*Engine, error) {
	if opts.Jobs < 0 {
		return nil, errors.New("concurrency limit must not be negative")
	}
	if opts.Jobs == 0 {
		opts.Jobs = DefaultJobs
	}

	builder, err := NewCommandBuilder(opts.Excludes, opts.DryRun, opts.Delete)
	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	return &Engine{
		cfg:     cfg,
		hosts:   hostSet,
		opts:    opts,
		builder: builder,
		runner:  ShellRunner{},
		log:     log,
	}, nil
}

// Run performs the whole synchronization: the preflight probe once, then
// the requested directions against every target host in order. It reports
// whether every host completed without errors.
func (e *Engine) Run(ctx context.Context) bool {
	e.preflight(ctx)

	up, down := e.opts.Up, e.opts.Down
	if up == down {
		up, down = true, true
	}

	allOK := true
	for _, target := range e.hosts.Targets {
		e.log.Debug("starting synchronization", "local", e.hosts.Local, "target", target)

		successUp, successDown := true, true
		if up {
			e.log.Info(fmt.Sprintf("Started upload '%s' --> '%s'", e.hosts.Local, target))
			successUp = e.runDirection(ctx, target, DirectionUp)
		}
		if down {
			e.log.Info(fmt.Sprintf("Started download '%s' --> '%s'", target, e.hosts.Local))
			successDown = e.runDirection(ctx, target, DirectionDown)
		}

		prefix := "Completed"
		if e.opts.DryRun {
			prefix = "Simulated"
		}
		if successUp && successDown {
			e.log.Info(fmt.Sprintf("%s synchronization between '%s' and '%s'", prefix, e.hosts.Local, target))
		} else {
			e.log.Warn(fmt.Sprintf("%s synchronization between '%s' and '%s' with error(s)", prefix, e.hosts.Local, target))
			allOK = false
		}
		e.log.Info("")
	}

	return allOK
}

// preflight runs the health-check command once. Its output is only
// logged; it never gates the run.
func (e *Engine) preflight(ctx context.Context) {
	e.log.Debug("performing preflight command", "command", PreflightCommand)
	stdout, stderr, err := e.runner.Run(ctx, PreflightCommand)
	if err != nil {
		e.log.Error("preflight command failed", "error", err)
		return
	}
	if stdout != "" {
		e.log.Info(strings.Trim(stdout, "\n"))
	}
	if stderr != "" {
		e.log.Error(strings.Trim(stderr, "\n"))
	}
	e.log.Info("")
}
