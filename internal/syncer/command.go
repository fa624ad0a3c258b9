package syncer

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

const (
	// transferCommand is the base transfer invocation shared by all tasks.
	transferCommand = "rsync -auP"

	// PreflightCommand probes SSH reachability once per run. It is a no-op
	// when the checkssh helper is not installed.
	PreflightCommand = `if command -v "checkssh" >/dev/null 2>&1; then checkssh; fi`

	// defaultExclude keeps editor swap files out of every transfer.
	defaultExclude = "*.swp"
)

// CommandBuilder renders the final transfer command for one src/dest
// pair. The exclude, dry-run and delete flags are fixed at construction
// and shared by every task of the run.
type CommandBuilder struct {
	template string
}

func NewCommandBuilder(excludes []string, dryRun, delete bool) (*CommandBuilder, error) {
	var b strings.Builder
	b.WriteString(transferCommand)

	for _, pattern := range append([]string{defaultExclude}, excludes...) {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern '%s'", pattern)
		}
		fmt.Fprintf(&b, " --exclude=%q", pattern)
	}

	if dryRun {
		b.WriteString(" -n")
	}
	if delete {
		b.WriteString(" --delete")
	}

	return &CommandBuilder{template: b.String()}, nil
}

// Command returns the full shell command transferring src to dest.
func (c *CommandBuilder) Command(src, dest string) string {
	return c.template + " " + src + " " + dest
}
