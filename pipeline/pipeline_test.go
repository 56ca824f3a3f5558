package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/kdm9/knives/runlog"
)

func TestRunChain(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	stages := []Stage{
		{Name: "produce", Path: "sh", Args: []string{"-c", "printf 'a\\nb\\n'"}},
		{Name: "upper", Path: "tr", Args: []string{"a-z", "A-Z"}},
		{Name: "save", Path: "sh", Args: []string{"-c", "cat > " + out}},
	}

	results, err := Run(stages, runlog.Discard())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, r := range results {
		if r.Err != nil {
			t.Errorf("stage %s failed: %v", r.Name, r.Err)
		}
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "A\nB\n" {
		t.Errorf("pipeline output = %q, want %q", got, "A\nB\n")
	}
}

func TestRunStageFailure(t *testing.T) {
	stages := []Stage{
		{Name: "produce", Path: "sh", Args: []string{"-c", "printf 'a\\n'"}},
		{Name: "explode", Path: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}},
		{Name: "drain", Path: "cat", Args: nil},
	}

	results, err := Run(stages, runlog.Discard())
	if err == nil {
		t.Fatal("Run succeeded with a failing stage")
	}
	if !strings.Contains(err.Error(), "explode") {
		t.Errorf("error does not name the failed stage: %v", err)
	}
	if !strings.Contains(results[1].Stderr, "oops") {
		t.Errorf("stage stderr not captured, got %q", results[1].Stderr)
	}
	// downstream stages still get waited for
	if results[2].Err != nil {
		t.Errorf("drain stage failed: %v", results[2].Err)
	}
}

func TestRunPerStageElapsed(t *testing.T) {
	stages := []Stage{
		{Name: "lingering", Path: "sh", Args: []string{"-c", "printf 'a\\n'; sleep 0.4"}},
		{Name: "quick", Path: "head", Args: []string{"-c", "2"}},
	}

	results, err := Run(stages, runlog.Discard())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// quick exits as soon as its two bytes arrive; its Elapsed must be its
	// own lifetime, not the wall time of the whole pipeline
	if results[1].Elapsed >= 200*time.Millisecond {
		t.Errorf("quick stage Elapsed = %v, want well under the lingering stage's 400ms", results[1].Elapsed)
	}
	if results[0].Elapsed < 300*time.Millisecond {
		t.Errorf("lingering stage Elapsed = %v, want at least ~400ms", results[0].Elapsed)
	}
}

func TestRunEarlyConsumerExit(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	stages := []Stage{
		{Name: "spam", Path: "sh", Args: []string{"-c", "yes"}},
		{Name: "limit", Path: "head", Args: []string{"-n", "1"}},
		{Name: "save", Path: "sh", Args: []string{"-c", "cat > " + out}},
	}

	// yes is killed by SIGPIPE once head exits; that must surface as a
	// stage error without wedging the rest of the pipeline
	results, err := Run(stages, runlog.Discard())
	if err == nil {
		t.Fatal("Run reported success for a SIGPIPE-killed stage")
	}
	if !strings.Contains(err.Error(), "spam") {
		t.Errorf("error does not name the killed stage: %v", err)
	}
	if results[1].Err != nil || results[2].Err != nil {
		t.Errorf("downstream stages failed: %v, %v", results[1].Err, results[2].Err)
	}

	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(b); got != "y\n" {
		t.Errorf("pipeline output = %q, want %q", got, "y\n")
	}
}

func TestRunStartFailure(t *testing.T) {
	stages := []Stage{
		{Name: "produce", Path: "sh", Args: []string{"-c", "printf 'a\\n'"}},
		{Name: "missing", Path: "/nonexistent/knives-no-such-tool", Args: nil},
	}

	if _, err := Run(stages, runlog.Discard()); err == nil {
		t.Fatal("Run succeeded with an unstartable stage")
	}
}

func TestRunEmpty(t *testing.T) {
	if _, err := Run(nil, runlog.Discard()); err == nil {
		t.Error("Run accepted an empty pipeline")
	}
}

func TestRunLogsCommands(t *testing.T) {
	dir := t.TempDir()
	ts := "2020-01-01_00:00:00"
	logs, err := runlog.New(dir, "test", ts, true)
	if err != nil {
		t.Fatal(err)
	}

	stages := []Stage{
		{Name: "produce", Path: "sh", Args: []string{"-c", "echo hi; echo warn >&2"}},
		{Name: "drain", Path: "cat", Args: nil},
	}
	if _, err := Run(stages, logs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if err := logs.Close(); err != nil {
		t.Fatal(err)
	}

	cmds, err := os.ReadFile(filepath.Join(dir, "test_cmds_"+ts+".log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(cmds), "sh -c echo hi; echo warn >&2") {
		t.Errorf("cmds log missing argv:\n%s", cmds)
	}

	stderrs, err := os.ReadFile(filepath.Join(dir, "test_stderrs_"+ts+".log"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(stderrs), "[produce] warn") {
		t.Errorf("stderr log missing stage output:\n%s", stderrs)
	}
}
