package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kdm9/knives/pipeline"
	"github.com/kdm9/knives/qual"
	"github.com/kdm9/knives/runlog"
	"github.com/kdm9/knives/tools"
	"github.com/pkg/profile"
	"github.com/vertgenlab/gonomics/exception"
)

func runUsage(runFlags *flag.FlagSet) {
	fmt.Print(
		"run - QC, adaptor-trim and quality-trim paired-end FASTQ files\n\n" +
			"Interleaves the input pair with pairs, streams the reads through\n" +
			"seqqs QC reports, scythe adaptor trimming and sickle quality\n" +
			"trimming, then de-interleaves into the output pair. Reads whose\n" +
			"mate is discarded are collected through a named pipe into the\n" +
			"unpaired output file.\n\n" +
			"Usage:\n" +
			"  knives run [options] -a adaptors.fa -i r1.fq -I r2.fq -o out1.fq -O out2.fq -u unpaired.fq.gz -p prefix -r 0.3\n\n" +
			"Options:\n")
	runFlags.PrintDefaults()
}

func runRun(args []string) {
	var err error
	runFlags := flag.NewFlagSet("run", flag.ExitOnError)

	sicklePath := runFlags.String("K", "", "Path to the sickle executable. Searches $PATH when empty.")
	scythePath := runFlags.String("C", "", "Path to the scythe executable. Searches $PATH when empty.")
	seqqsPath := runFlags.String("E", "", "Path to the seqqs executable. Searches $PATH when empty.")
	pairsPath := runFlags.String("P", "", "Path to the pairs executable. Searches $PATH when empty.")
	minQual := runFlags.Int("q", 20, "Minimum quality score for windowed quality trimming.")
	encoding := runFlags.String("t", qual.Sanger, "Quality score encoding. One of phred, sanger, solexa or illumina, or auto to detect from the input.")
	minLen := runFlags.Int("l", 40, "Minimum length of sequence remaining after trimming.")
	skipList := runFlags.String("s", "", "Skip steps. Comma separated list of one or more of: scythe, sickle, seqqs.")
	noStderrLog := runFlags.Bool("S", false, "Don't log stderr of the wrapped programs.")
	dropNs := runFlags.Bool("n", false, "Remove any sequence with Ns.")
	logDir := runFlags.String("L", ".", "Directory to store logs. Must exist.")
	adaptors := runFlags.String("a", "", "Fasta file containing adaptor sequences, for scythe.")
	in1 := runFlags.String("i", "", "Input R1 file.")
	in2 := runFlags.String("I", "", "Input R2 file.")
	out1 := runFlags.String("o", "", "Output R1 file.")
	out2 := runFlags.String("O", "", "Output R2 file.")
	unpaired := runFlags.String("u", "", "Unpaired output file. Gzipped when the name ends in .gz.")
	prefix := runFlags.String("p", "", "Prefix of output files, including seqqs reports and log files.")
	prior := runFlags.String("r", "", "Prior probability of adaptor contamination. See scythe docs.")
	cpuprofile := runFlags.Bool("cpuprofile", false, "Write a cpu profile to the current directory.")
	memprofile := runFlags.Bool("memprofile", false, "Write a memory profile to the current directory.")

	err = runFlags.Parse(args)
	exception.PanicOnErr(err)
	runFlags.Usage = func() { runUsage(runFlags) }

	if *in1 == "" || *in2 == "" || *out1 == "" || *out2 == "" || *unpaired == "" ||
		*adaptors == "" || *prefix == "" || *prior == "" {
		runFlags.Usage()
		errExit("\nERROR: must have inputs for -a, -i, -I, -o, -O, -u, -p and -r")
	}

	if *memprofile && *cpuprofile {
		runFlags.Usage()
		log.Fatal("ERROR: -memprofile and -cpuprofile are mutually exclusive.")
	}
	if *memprofile {
		defer profile.Start(profile.MemProfile).Stop()
	}
	if *cpuprofile {
		defer profile.Start(profile.CPUProfile).Stop()
	}

	var skip []string
	if *skipList != "" {
		skip = strings.Split(*skipList, ",")
	}
	if err = pipeline.ValidateSkips(skip); err != nil {
		log.Fatalf("ERROR: %v", err)
	}
	if *encoding != qual.Auto && !qual.Valid(*encoding) {
		log.Fatalf("ERROR: unknown quality encoding %q", *encoding)
	}

	cfg := pipeline.Config{
		In1:       *in1,
		In2:       *in2,
		Out1:      *out1,
		Out2:      *out2,
		Adaptors:  *adaptors,
		Prior:     *prior,
		Encoding:  *encoding,
		MinQual:   *minQual,
		MinLen:    *minLen,
		DropNs:    *dropNs,
		Skip:      skip,
		Prefix:    *prefix,
		Timestamp: time.Now().Format(runlog.TimeFormat),
	}

	cfg.Tools, err = tools.Find(*sicklePath, *scythePath, *seqqsPath, *pairsPath)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	knivesRun(cfg, *logDir, *unpaired, !*noStderrLog)
}

func knivesRun(cfg pipeline.Config, logDir, unpaired string, logStderr bool) {
	logs, err := runlog.New(logDir, cfg.Prefix, cfg.Timestamp, logStderr)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	if cfg.Encoding == qual.Auto {
		cfg.Encoding, err = qual.DetectFile(cfg.In1, qual.DefaultPeekRecords)
		if err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		logs.Summary.Printf("detected quality encoding: %s", cfg.Encoding)
		log.Printf("detected quality encoding: %s", cfg.Encoding)
	}

	fifo, err := pipeline.NewFifo(unpaired)
	if err != nil {
		log.Fatalf("ERROR: %v", err)
	}

	results, runErr := pipeline.Run(cfg.Stages(fifo.Path), logs)
	fifoErr := fifo.Close()

	for _, r := range results {
		log.Printf("%s finished after %v", r.Name, r.Elapsed.Round(time.Millisecond))
	}

	logsErr := logs.Close()
	if runErr != nil {
		log.Fatalf("ERROR: %v", runErr)
	}
	if fifoErr != nil {
		log.Fatalf("ERROR: collecting unpaired reads: %v", fifoErr)
	}
	exception.PanicOnErr(logsErr)
}
