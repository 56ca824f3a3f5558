// Package runlog manages the per-run log files written by the knives
// pipeline: the exact commands run, the stderr of each stage, and a run
// summary.
package runlog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/vertgenlab/gonomics/fileio"
)

// TimeFormat is the run timestamp embedded in log and report file names.
const TimeFormat = "2006-01-02_15:04:05"

// Logs bundles the three per-run loggers. Cmds records each argv before it
// is started, Stderr collects the diagnostic output of each stage, and
// Summary records run-level events.
type Logs struct {
	Cmds    *log.Logger
	Stderr  *log.Logger
	Summary *log.Logger

	files []io.Closer
}

// New creates the cmds, stderrs and summary log files in dir, named
// prefix_{cmds,stderrs,summary}_timestamp.log. The directory must already
// exist. When logStderr is false no stderrs file is created and stage
// stderr is discarded.
func New(dir, prefix, timestamp string, logStderr bool) (*Logs, error) {
	fi, err := os.Stat(dir)
	if err != nil || !fi.IsDir() {
		return nil, fmt.Errorf("log directory not found: %s", dir)
	}

	l := new(Logs)
	l.Cmds = l.open(dir, prefix+"_cmds_"+timestamp+".log")
	l.Summary = l.open(dir, prefix+"_summary_"+timestamp+".log")
	if logStderr {
		l.Stderr = l.open(dir, prefix+"_stderrs_"+timestamp+".log")
	} else {
		l.Stderr = log.New(io.Discard, "", 0)
	}
	return l, nil
}

// Discard returns Logs that write nowhere, for use in tests.
func Discard() *Logs {
	return &Logs{
		Cmds:    log.New(io.Discard, "", 0),
		Stderr:  log.New(io.Discard, "", 0),
		Summary: log.New(io.Discard, "", 0),
	}
}

func (l *Logs) open(dir, name string) *log.Logger {
	fh := fileio.EasyCreate(filepath.Join(dir, name))
	l.files = append(l.files, fh)
	return log.New(fh, "", log.LstdFlags)
}

// Close closes all log files, returning the first error encountered.
func (l *Logs) Close() error {
	var firstErr error
	for _, fh := range l.files {
		if err := fh.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.files = nil
	return firstErr
}
