// Package qual detects the quality score encoding of FASTQ files.
package qual

import (
	"errors"
	"fmt"

	"github.com/vertgenlab/gonomics/fastq"
	"golang.org/x/exp/slices"
)

// Encoding names accepted by the wrapped tools.
const (
	Sanger   = "sanger"
	Solexa   = "solexa"
	Illumina = "illumina"
	Phred    = "phred"
)

// Auto requests encoding detection instead of a fixed encoding.
const Auto = "auto"

// DefaultPeekRecords is how many records DetectFile inspects.
const DefaultPeekRecords = 2000

var encodings = []string{Sanger, Solexa, Illumina, Phred}

// Valid reports whether name is an encoding the wrapped tools understand.
func Valid(name string) bool {
	return slices.Contains(encodings, name)
}

// Detect classifies the quality encoding from a stream of records, looking
// at no more than maxRecords of them. Quality values arrive with the
// phred+33 offset already removed, so the classic cutoffs shift down by 33:
// any value below 26 (ASCII < 59) can only be sanger/phred+33, values never
// dipping below 31 (ASCII >= 64) indicate illumina phred+64, and anything
// between is solexa.
func Detect(reads <-chan fastq.Fastq, maxRecords int) (string, error) {
	var min uint8 = 255
	n := 0
	for fq := range reads {
		if len(fq.Qual) == 0 {
			return "", fmt.Errorf("record %s has no quality scores", fq.Name)
		}
		for _, q := range fq.Qual {
			if q < min {
				min = q
			}
		}
		n++
		if n >= maxRecords {
			// the producer feeding reads is abandoned here, still holding
			// its file handle; it is reclaimed when the process exits
			break
		}
	}
	if n == 0 {
		return "", errors.New("no records to detect quality encoding from")
	}
	switch {
	case min < 26:
		return Sanger, nil
	case min >= 31:
		return Illumina, nil
	default:
		return Solexa, nil
	}
}

// DetectFile peeks at the first maxRecords records of a FASTQ file (gzipped
// or plain) and returns the detected encoding name.
func DetectFile(file string, maxRecords int) (string, error) {
	enc, err := Detect(fastq.GoReadToChan(file), maxRecords)
	if err != nil {
		return "", fmt.Errorf("detecting quality encoding of %s: %w", file, err)
	}
	return enc, nil
}
