package syncer

import (
	"testing"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestClassifyStderr(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		verdict StderrVerdict
	}{
		{"empty", "", StderrClean},
		{"connection refused", "ssh: connect to host host2 port 22: Connection refused", StderrFatal},
		{"unresolved hostname", "ssh: Could not resolve hostname host2: Name or service not known", StderrFatal},
		{"advisory", "rsync: some warning", StderrAdvisory},
		{"multiline advisory", "rsync: failed to set times\nrsync error: some errors\n", StderrAdvisory},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.verdict, ClassifyStderr(tc.text))
		})
	}
}

const rsyncOutput = "sending incremental file list\n" +
	"./\n" +
	"created directory /home/user/notes\n" +
	"foo.txt\n" +
	"deleting old.txt\n" +
	"\rfoo.txt 45% 1.2MB/s\n" +
	"\n" +
	"sent 1,234 bytes  received 35 bytes  2,538.00 bytes/sec\n" +
	"total size is 1,199  speedup is 0.94\n"

func TestClassifyStdout(t *testing.T) {
	events := ClassifyStdout(rsyncOutput, "/home/user/notes/", "host2:./notes/", false)

	assert.True(t, events.Equal(mapset.NewSet(
		"Created directory '/home/user/notes'",
		"Successfully moved '/home/user/notes/foo.txt' to 'host2:./notes/foo.txt'",
		"Deleted 'host2:./notes/old.txt'",
	)), "got %v", events)
}

func TestClassifyStdout_DryRunWording(t *testing.T) {
	events := ClassifyStdout(rsyncOutput, "/home/user/notes/", "host2:./notes/", true)

	assert.True(t, events.Equal(mapset.NewSet(
		"Would create directory '/home/user/notes'",
		"Would move '/home/user/notes/foo.txt' to 'host2:./notes/foo.txt'",
		"Would delete 'host2:./notes/old.txt'",
	)), "got %v", events)
}

func TestClassifyStdout_FileEndpoints(t *testing.T) {
	// No trailing separator: the endpoints already name the final paths.
	out := "sending incremental file list\nfile1\n"
	events := ClassifyStdout(out, "/home/user/file1", "host2:./file1", false)

	assert.True(t, events.Equal(mapset.NewSet(
		"Successfully moved '/home/user/file1' to 'host2:./file1'",
	)), "got %v", events)
}

func TestClassifyStdout_DeduplicatesRepeatedLines(t *testing.T) {
	out := "sending incremental file list\n" +
		"created directory .config\n" +
		"created directory .config\n"
	events := ClassifyStdout(out, "/src/", "/dst/", false)

	assert.Equal(t, 1, events.Cardinality())
	assert.True(t, events.Contains("Created directory '.config'"))
}

func TestClassifyStdout_HeaderOnly(t *testing.T) {
	assert.Equal(t, 0, ClassifyStdout("sending incremental file list\n", "/s/", "/d/", false).Cardinality())
	assert.Equal(t, 0, ClassifyStdout("", "/s/", "/d/", false).Cardinality())
}
