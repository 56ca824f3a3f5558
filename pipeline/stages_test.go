package pipeline

import (
	"reflect"
	"strings"
	"testing"

	"github.com/kdm9/knives/tools"
)

func testConfig() Config {
	return Config{
		Tools: tools.Set{
			Sickle: "/opt/bin/sickle",
			Scythe: "/opt/bin/scythe",
			Seqqs:  "/opt/bin/seqqs",
			Pairs:  "/opt/bin/pairs",
		},
		In1:       "r1.fq",
		In2:       "r2.fq",
		Out1:      "out1.fq",
		Out2:      "out2.fq",
		Adaptors:  "adaptors.fa",
		Prior:     "0.3",
		Encoding:  "sanger",
		MinQual:   20,
		MinLen:    40,
		Prefix:    "myrun",
		Timestamp: "2020-01-01_00:00:00",
	}
}

func stageNames(st []Stage) []string {
	names := make([]string, len(st))
	for i := range st {
		names[i] = st[i].Name
	}
	return names
}

func TestStagesFullChain(t *testing.T) {
	cfg := testConfig()
	st := cfg.Stages("/tmp/fifo")

	want := []string{"interleave", "qc-initial", "scythe", "qc-noadapt", "sickle", "qc-qualtrim", "deinterleave"}
	if got := stageNames(st); !reflect.DeepEqual(got, want) {
		t.Errorf("stage order = %v, want %v", got, want)
	}

	if got := st[0].Args; !reflect.DeepEqual(got, []string{"join", "-t", "r1.fq", "r2.fq"}) {
		t.Errorf("interleave args = %v", got)
	}
	if got := st[1].Args; !reflect.DeepEqual(got, []string{"-i", "-e", "-q", "sanger", "-p", "myrun_initial_2020-01-01_00:00:00", "-"}) {
		t.Errorf("qc-initial args = %v", got)
	}
	if got := st[2].Args; !reflect.DeepEqual(got, []string{"-q", "sanger", "-p", "0.3", "-a", "adaptors.fa", "-M", "0", "-"}) {
		t.Errorf("scythe args = %v", got)
	}
	if got := st[4].Args; !reflect.DeepEqual(got, []string{
		"pe", "-t", "sanger", "-c", "/dev/stdin", "-m", "/dev/stdout",
		"-s", "/tmp/fifo", "-q", "20", "-l", "40",
	}) {
		t.Errorf("sickle args = %v", got)
	}
	if got := st[6].Args; !reflect.DeepEqual(got, []string{"split", "-1", "out1.fq", "-2", "out2.fq", "-u", "/tmp/fifo", "-"}) {
		t.Errorf("deinterleave args = %v", got)
	}
}

func TestStagesDropNs(t *testing.T) {
	cfg := testConfig()
	cfg.DropNs = true
	st := cfg.Stages("/tmp/fifo")

	for _, s := range st {
		if s.Name == "sickle" {
			if s.Args[len(s.Args)-1] != "-n" {
				t.Errorf("sickle args missing -n: %v", s.Args)
			}
			return
		}
	}
	t.Fatal("no sickle stage built")
}

func TestStagesSkip(t *testing.T) {
	tests := []struct {
		skip []string
		want []string
	}{
		{[]string{"seqqs"}, []string{"interleave", "scythe", "sickle", "deinterleave"}},
		{[]string{"scythe"}, []string{"interleave", "qc-initial", "sickle", "qc-qualtrim", "deinterleave"}},
		{[]string{"sickle"}, []string{"interleave", "qc-initial", "scythe", "qc-noadapt", "deinterleave"}},
		{[]string{"scythe", "sickle"}, []string{"interleave", "qc-initial", "deinterleave"}},
		{[]string{"scythe", "sickle", "seqqs"}, []string{"interleave", "deinterleave"}},
	}

	for _, test := range tests {
		cfg := testConfig()
		cfg.Skip = test.skip
		if got := stageNames(cfg.Stages("/tmp/fifo")); !reflect.DeepEqual(got, test.want) {
			t.Errorf("skip %v: stage order = %v, want %v", test.skip, got, test.want)
		}
	}
}

func TestValidateSkips(t *testing.T) {
	if err := ValidateSkips([]string{"scythe", "sickle", "seqqs"}); err != nil {
		t.Errorf("ValidateSkips rejected valid names: %v", err)
	}
	err := ValidateSkips([]string{"scythe", "bogus"})
	if err == nil {
		t.Fatal("ValidateSkips accepted an unknown name")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error does not name the bad stage: %v", err)
	}
}

func TestStageString(t *testing.T) {
	s := Stage{Name: "interleave", Path: "/opt/bin/pairs", Args: []string{"join", "-t", "r1.fq", "r2.fq"}}
	if got := s.String(); got != "/opt/bin/pairs join -t r1.fq r2.fq" {
		t.Errorf("String() = %q", got)
	}
}
