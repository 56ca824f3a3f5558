package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/kdm9/knives/tools"
	"github.com/vertgenlab/gonomics/exception"
)

func checkUsage(checkFlags *flag.FlagSet) {
	fmt.Print(
		"check - check that the required external tools are installed\n\n" +
			"Looks for each program on $PATH, or at an explicitly given path,\n" +
			"exactly as knives run would. Exits non-zero when any is missing.\n\n" +
			"Usage:\n" +
			"  knives check [options]\n\n" +
			"Options:\n")
	checkFlags.PrintDefaults()
}

func runCheck(args []string) {
	var err error
	checkFlags := flag.NewFlagSet("check", flag.ExitOnError)

	sicklePath := checkFlags.String("K", "", "Path to the sickle executable. Searches $PATH when empty.")
	scythePath := checkFlags.String("C", "", "Path to the scythe executable. Searches $PATH when empty.")
	seqqsPath := checkFlags.String("E", "", "Path to the seqqs executable. Searches $PATH when empty.")
	pairsPath := checkFlags.String("P", "", "Path to the pairs executable. Searches $PATH when empty.")

	err = checkFlags.Parse(args)
	exception.PanicOnErr(err)
	checkFlags.Usage = func() { checkUsage(checkFlags) }

	table, missing := checkTable(*sicklePath, *scythePath, *seqqsPath, *pairsPath)
	fmt.Print(table)
	if missing > 0 {
		errExit(fmt.Sprintf("ERROR: %d required program(s) not found", missing))
	}
	fmt.Println("all required programs found")
}

// checkTable resolves every required program the same way a run would and
// renders the result table. knives is only a driver and does none of the
// interleaving, QC or trimming itself.
func checkTable(sicklePath, scythePath, seqqsPath, pairsPath string) (string, int) {
	explicit := map[string]string{
		tools.Sickle: sicklePath,
		tools.Scythe: scythePath,
		tools.Seqqs:  seqqsPath,
		tools.Pairs:  pairsPath,
	}

	b := new(strings.Builder)
	b.WriteString("knives drives the following programs, all required:\n\n")
	missing := 0
	for _, name := range tools.Names {
		path, err := tools.Resolve(name, explicit[name])
		if err != nil {
			missing++
			fmt.Fprintf(b, "  [ ] %s\n", name)
		} else {
			fmt.Fprintf(b, "  [Y] %s (%s)\n", name, path)
		}
	}
	b.WriteString("\ngzip is not required: the unpaired output is compressed in-process\n\n")
	return b.String(), missing
}
