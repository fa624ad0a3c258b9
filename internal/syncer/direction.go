package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/semaphore"
)

// Result is the drained output of one transfer task.
type Result struct {
	Task   *Task
	Stdout string
	Stderr string
	Err    error
}

// runDirection synchronizes every shared element with one target host in
// one direction. Tasks run concurrently, but at most opts.Jobs transfer
// subprocesses for this (host, direction) pair run at once.
//
// Results are classified as they arrive. A fatal (connection-level)
// stderr verdict fails the phase immediately and cancels admission of
// not-yet-started sibling tasks; tasks already running finish on their
// own but their results are discarded. Advisory stderr fails the phase
// only after every task has been drained.
func (e *Engine) runDirection(ctx context.Context, target string, direction Direction) bool {
	phase := direction.Phase()

	tasks, err := e.buildTasks(target, direction)
	if err != nil {
		e.log.Error(fmt.Sprintf("    %s: cannot build transfer tasks", phase), "error", err)
		return false
	}
	if len(tasks) == 0 {
		e.log.Info(fmt.Sprintf("    %s: the two hosts do not share common elements", phase))
		return true
	}

	admit, cancel := context.WithCancel(ctx)
	defer cancel()

	sem := semaphore.NewWeighted(int64(e.opts.Jobs))
	results := make(chan *Result, len(tasks))
	for _, task := range tasks {
		go func(task *Task) {
			if err := sem.Acquire(admit, 1); err != nil {
				results <- &Result{Task: task, Err: err}
				return
			}
			defer sem.Release(1)
			e.log.Debug("performing command", "command", task.Command)
			// The subprocess runs under the outer context: a fatal verdict
			// on a sibling stops admission, not transfers already going.
			stdout, stderr, err := e.runner.Run(ctx, task.Command)
			results <- &Result{Task: task, Stdout: stdout, Stderr: stderr, Err: err}
		}(task)
	}

	seen := mapset.NewSet[string]()
	success := true
	for range tasks {
		res := <-results
		if res.Err != nil {
			// Only the outer context can be cancelled while this loop is
			// draining; the post-fatal discard path returned already. An
			// interrupted phase is a failed phase.
			if errors.Is(res.Err, context.Canceled) {
				e.log.Error(fmt.Sprintf("    %s: aborted", phase), "error", res.Err)
				return false
			}
			e.log.Error(fmt.Sprintf("    %s: transfer failed", phase), "element", res.Task.Element, "error", res.Err)
			success = false
			continue
		}

		if res.Stdout != "" {
			e.log.Debug(res.Stdout)
		}
		for _, event := range ClassifyStdout(res.Stdout, res.Task.Src, res.Task.Dest, e.opts.DryRun).ToSlice() {
			// Parallel tasks touching a shared parent can report the same
			// effect twice; log each event once per phase.
			if seen.Add(event) {
				e.log.Info("    " + event)
			}
		}

		switch ClassifyStderr(res.Stderr) {
		case StderrFatal:
			e.log.Error(fmt.Sprintf("    %s: cannot connect to host '%s'", phase, target))
			cancel()
			return false
		case StderrAdvisory:
			e.log.Warn(" " + strings.ReplaceAll(strings.Trim(res.Stderr, "\n"), "\n", "; "))
			success = false
		}
	}

	return success
}

// buildTasks returns one task per element shared by the local host and
// the target, in the local host's element order.
func (e *Engine) buildTasks(target string, direction Direction) ([]*Task, error) {
	targetElements := mapset.NewSet(e.cfg.ElementsOf(target)...)

	var tasks []*Task
	for _, element := range e.cfg.ElementsOf(e.hosts.Local) {
		if !targetElements.Contains(element) {
			continue
		}
		task, err := e.buildTask(target, element, direction)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
