package syncer

import (
	"fmt"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// StderrVerdict classifies transfer-tool stderr output.
type StderrVerdict int

const (
	// StderrClean means the transfer produced no stderr output.
	StderrClean StderrVerdict = iota
	// StderrAdvisory is non-connection stderr output; the phase is marked
	// failed but keeps running.
	StderrAdvisory
	// StderrFatal is a connection-level failure; the phase aborts.
	StderrFatal
)

// Connection-level failures as rsync/ssh report them.
var fatalStderrMarkers = []string{
	"Connection refused",
	"Could not resolve hostname",
}

// ClassifyStderr sorts raw stderr output into clean, advisory or fatal.
func ClassifyStderr(text string) StderrVerdict {
	if text == "" {
		return StderrClean
	}
	for _, marker := range fatalStderrMarkers {
		if strings.Contains(text, marker) {
			return StderrFatal
		}
	}
	return StderrAdvisory
}

const (
	createdDirMarker = "created directory "
	deletingMarker   = "deleting "
)

// ClassifyStdout turns raw transfer-tool stdout into a deduplicated set of
// human-readable events. The first line is the tool's header; progress
// lines (carriage returns), bare directory markers and transfer summaries
// are dropped. src and dest are the transfer endpoints of the task that
// produced the output, used to reconstruct full paths for relative names.
func ClassifyStdout(out, src, dest string, dryRun bool) mapset.Set[string] {
	events := mapset.NewSet[string]()

	lines := strings.Split(out, "\n")
	if len(lines) > 0 {
		lines = lines[1:]
	}

	for _, line := range lines {
		if line == "" || line == "./" ||
			strings.Contains(line, "\r") ||
			strings.HasPrefix(line, "sent ") ||
			strings.HasPrefix(line, "total size is") {
			continue
		}

		if idx := strings.Index(line, createdDirMarker); idx >= 0 {
			name := line[idx+len(createdDirMarker):]
			if dryRun {
				events.Add(fmt.Sprintf("Would create directory '%s'", name))
			} else {
				events.Add(fmt.Sprintf("Created directory '%s'", name))
			}
			continue
		}

		if name, ok := strings.CutPrefix(line, deletingMarker); ok {
			if dryRun {
				events.Add(fmt.Sprintf("Would delete '%s'", joinIfDir(dest, name)))
			} else {
				events.Add(fmt.Sprintf("Deleted '%s'", joinIfDir(dest, name)))
			}
			continue
		}

		// Anything else is a moved/copied path relative to the endpoints.
		if dryRun {
			events.Add(fmt.Sprintf("Would move '%s' to '%s'", joinIfDir(src, line), joinIfDir(dest, line)))
		} else {
			events.Add(fmt.Sprintf("Successfully moved '%s' to '%s'", joinIfDir(src, line), joinIfDir(dest, line)))
		}
	}

	return events
}

// joinIfDir appends name to base only when base is a directory endpoint
// (ends with a separator); otherwise base already names the final path.
func joinIfDir(base, name string) string {
	if strings.HasSuffix(base, "/") {
		return base + name
	}
	return base
}
