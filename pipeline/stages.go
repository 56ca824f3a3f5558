package pipeline

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kdm9/knives/tools"
	"golang.org/x/exp/slices"
)

// Config fully describes one run of the read-cleaning chain.
type Config struct {
	Tools tools.Set

	In1, In2   string // input R1/R2 FASTQ
	Out1, Out2 string // output R1/R2 FASTQ
	Adaptors   string // adaptor FASTA for scythe
	Prior      string // adaptor contamination prior for scythe

	Encoding string // quality score encoding: sanger, solexa or illumina
	MinQual  int    // minimum windowed quality for sickle
	MinLen   int    // minimum read length after trimming
	DropNs   bool   // remove reads containing Ns

	Skip []string // stage names to leave out: scythe, sickle, seqqs

	Prefix    string // prefix for seqqs report files
	Timestamp string // run timestamp shared with the log files
}

// Stage is one external process in the chain.
type Stage struct {
	Name string
	Path string
	Args []string
}

func (s Stage) String() string {
	return s.Path + " " + strings.Join(s.Args, " ")
}

// Skippable lists the stage names accepted by Config.Skip. Skipping seqqs
// removes all three QC reporting stages. The interleave and deinterleave
// stages can never be skipped.
var Skippable = []string{"scythe", "sickle", "seqqs"}

// ValidateSkips checks that every name is a known skippable stage.
func ValidateSkips(skip []string) error {
	for _, name := range skip {
		if !slices.Contains(Skippable, name) {
			return fmt.Errorf("unknown stage in skip list: %q (must be one of %s)",
				name, strings.Join(Skippable, ", "))
		}
	}
	return nil
}

// Stages builds the process chain for cfg. fifo is the named pipe path that
// collects unpaired reads from sickle and from the deinterleave stage.
//
// The QC reports after adaptor and quality trimming are only produced when
// the corresponding trimming stage runs; with both trimmers skipped they
// would just duplicate the initial report.
func (cfg Config) Stages(fifo string) []Stage {
	skip := func(name string) bool { return slices.Contains(cfg.Skip, name) }

	st := []Stage{{
		Name: "interleave",
		Path: cfg.Tools.Pairs,
		Args: []string{"join", "-t", cfg.In1, cfg.In2},
	}}

	if !skip("seqqs") {
		st = append(st, cfg.seqqsStage("initial"))
	}
	if !skip("scythe") {
		st = append(st, Stage{
			Name: "scythe",
			Path: cfg.Tools.Scythe,
			Args: []string{
				"-q", cfg.Encoding,
				"-p", cfg.Prior,
				"-a", cfg.Adaptors,
				"-M", "0", // leave read discarding to the deinterleaver
				"-",
			},
		})
		if !skip("seqqs") {
			st = append(st, cfg.seqqsStage("noadapt"))
		}
	}
	if !skip("sickle") {
		args := []string{
			"pe",
			"-t", cfg.Encoding,
			"-c", "/dev/stdin",
			"-m", "/dev/stdout",
			"-s", fifo,
			"-q", strconv.Itoa(cfg.MinQual),
			"-l", strconv.Itoa(cfg.MinLen),
		}
		if cfg.DropNs {
			args = append(args, "-n")
		}
		st = append(st, Stage{Name: "sickle", Path: cfg.Tools.Sickle, Args: args})
		if !skip("seqqs") {
			st = append(st, cfg.seqqsStage("qualtrim"))
		}
	}

	st = append(st, Stage{
		Name: "deinterleave",
		Path: cfg.Tools.Pairs,
		Args: []string{"split", "-1", cfg.Out1, "-2", cfg.Out2, "-u", fifo, "-"},
	})
	return st
}

// ReportPrefix returns the seqqs report file prefix for one QC stage label.
func (cfg Config) ReportPrefix(label string) string {
	return cfg.Prefix + "_" + label + "_" + cfg.Timestamp
}

func (cfg Config) seqqsStage(label string) Stage {
	return Stage{
		Name: "qc-" + label,
		Path: cfg.Tools.Seqqs,
		Args: []string{"-i", "-e", "-q", cfg.Encoding, "-p", cfg.ReportPrefix(label), "-"},
	}
}
