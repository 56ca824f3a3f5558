package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/kdm9/knives/report"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fastq"
)

func reportUsage(reportFlags *flag.FlagSet) {
	fmt.Print(
		"report - summarize the seqqs reports from a pipeline run\n\n" +
			"Each argument is a seqqs report prefix as logged by knives run,\n" +
			"e.g. myrun_initial_2026-08-25_10:00:00. Prints read counts,\n" +
			"length statistics and a terminal plot of mean quality by\n" +
			"position for each stage.\n\n" +
			"Usage:\n" +
			"  knives report [options] prefix [prefix ...]\n\n" +
			"Options:\n")
	reportFlags.PrintDefaults()
}

func runReport(args []string) {
	var err error
	reportFlags := flag.NewFlagSet("report", flag.ExitOnError)

	pngOut := reportFlags.String("png", "", "Write a plot of mean quality by position to this image file.")
	count1 := reportFlags.String("1", "", "Count read pairs in this output R1 file (requires -2).")
	count2 := reportFlags.String("2", "", "Count read pairs in this output R2 file (requires -1).")

	err = reportFlags.Parse(args)
	exception.PanicOnErr(err)
	reportFlags.Usage = func() { reportUsage(reportFlags) }

	if reportFlags.NArg() == 0 && (*count1 == "" || *count2 == "") {
		reportFlags.Usage()
		errExit("\nERROR: must give at least one report prefix, or -1 and -2")
	}
	if (*count1 == "") != (*count2 == "") {
		errExit("ERROR: -1 and -2 must be given together")
	}

	var summaries []*report.Summary
	for _, prefix := range reportFlags.Args() {
		if _, err = os.Stat(prefix + report.QualSuffix); err != nil {
			log.Fatalf("ERROR: no seqqs reports for prefix %q: %v", prefix, err)
		}
		s := report.Load(prefix)
		summaries = append(summaries, s)
		fmt.Println(s.Render())
	}

	if *pngOut != "" {
		if err = report.PlotMeanQual(*pngOut, summaries); err != nil {
			log.Fatalf("ERROR: %v", err)
		}
		log.Printf("wrote %s", *pngOut)
	}

	if *count1 != "" {
		fmt.Printf("output pairs: %d\n", countPairs(*count1, *count2))
	}
}

func countPairs(r1, r2 string) int {
	readPairs := make(chan fastq.PairedEnd, 1000)
	go fastq.PairedEndToChan(r1, r2, readPairs)
	n := 0
	for range readPairs {
		n++
	}
	return n
}
