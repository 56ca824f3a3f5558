// Package pipeline chains the external read-cleaning tools into a single
// streaming process pipeline, with a named-pipe side channel collecting
// unpaired reads.
package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kdm9/knives/runlog"
)

// Result reports how one stage of the pipeline fared.
type Result struct {
	Name    string
	Elapsed time.Duration // from stage start to stage exit
	Stderr  string
	Err     error
}

// Run executes the stages as one streaming pipeline: each stage's stdout is
// connected to the next stage's stdin through an anonymous pipe. All stages
// are started up front; the parent then closes its copies of every pipe end
// so that EOF and broken-pipe propagate between the stages themselves — a
// stage that exits early cannot leave its neighbours blocked on a pipe the
// parent still holds open. The first stage reads no stdin and the last
// stage's stdout is discarded; both ends of the knives chain do their own
// file IO.
//
// Each stage's argv is written to logs.Cmds before starting, its captured
// stderr to logs.Stderr after it exits, and its exit status and timing to
// logs.Summary. Stages are waited for concurrently so each Result's Elapsed
// is that stage's own lifetime, then reported in pipeline order. All stages
// are always waited for, even after a failure, so no processes are left
// behind. The returned error is the first stage failure in pipeline order.
func Run(stages []Stage, logs *runlog.Logs) ([]Result, error) {
	if len(stages) == 0 {
		return nil, errors.New("empty pipeline")
	}

	cmds := make([]*exec.Cmd, len(stages))
	errBufs := make([]*bytes.Buffer, len(stages))
	pipeEnds := make([]*os.File, 0, 2*(len(stages)-1))

	var prev *os.File
	for i := range stages {
		cmd := exec.Command(stages[i].Path, stages[i].Args...)
		errBufs[i] = new(bytes.Buffer)
		cmd.Stderr = errBufs[i]
		if prev != nil {
			cmd.Stdin = prev
		}
		if i < len(stages)-1 {
			pr, pw, err := os.Pipe()
			if err != nil {
				closeAll(pipeEnds)
				return nil, fmt.Errorf("creating pipe: %w", err)
			}
			cmd.Stdout = pw
			pipeEnds = append(pipeEnds, pr, pw)
			prev = pr
		}
		cmds[i] = cmd
	}

	startTimes := make([]time.Time, len(stages))
	for i, cmd := range cmds {
		logs.Cmds.Println(stages[i].String())
		startTimes[i] = time.Now()
		if err := cmd.Start(); err != nil {
			closeAll(pipeEnds)
			for j := 0; j < i; j++ {
				cmds[j].Wait()
			}
			return nil, fmt.Errorf("starting stage %s: %w", stages[i].Name, err)
		}
	}
	// every stage holds its own dups of the pipe fds now
	closeAll(pipeEnds)

	results := make([]Result, len(stages))
	wg := new(sync.WaitGroup)
	for i := range cmds {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := cmds[i].Wait()
			results[i] = Result{
				Name:    stages[i].Name,
				Elapsed: time.Since(startTimes[i]),
				Err:     err,
			}
		}(i)
	}
	wg.Wait()

	var firstErr error
	for i := range results {
		results[i].Stderr = errBufs[i].String()
		logStderr(logs, stages[i].Name, results[i].Stderr)
		if results[i].Err != nil {
			logs.Summary.Printf("stage %s failed after %v: %v", stages[i].Name, results[i].Elapsed, results[i].Err)
			if firstErr == nil {
				firstErr = fmt.Errorf("stage %s: %w", stages[i].Name, results[i].Err)
			}
		} else {
			logs.Summary.Printf("stage %s exited ok after %v", stages[i].Name, results[i].Elapsed)
		}
	}
	return results, firstErr
}

func logStderr(logs *runlog.Logs, name, stderr string) {
	for _, line := range strings.Split(stderr, "\n") {
		if line != "" {
			logs.Stderr.Printf("[%s] %s", name, line)
		}
	}
}

func closeAll(files []*os.File) {
	for _, fh := range files {
		fh.Close()
	}
}
