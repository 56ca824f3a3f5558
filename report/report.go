// Package report parses and summarizes the per-stage report files written
// by seqqs: the per-position quality count matrix, the per-position
// nucleotide counts and the read length histogram.
package report

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/guptarohit/asciigraph"
	"github.com/vertgenlab/gonomics/exception"
	"github.com/vertgenlab/gonomics/fileio"
	"gonum.org/v1/gonum/stat"
)

// Suffixes of the files seqqs writes for each report prefix.
const (
	QualSuffix = "_qual.txt"
	NuclSuffix = "_nucl.txt"
	LenSuffix  = "_len.txt"
)

// QualMatrix holds per-position quality score counts. Counts[p][q] is the
// number of bases at read position p observed with quality score q.
type QualMatrix struct {
	Counts [][]float64
}

// ReadQualMatrix parses a seqqs quality report. One whitespace-separated
// row per read position.
func ReadQualMatrix(file string) *QualMatrix {
	m := new(QualMatrix)
	for line := range lines(file) {
		m.Counts = append(m.Counts, parseRow(line))
	}
	return m
}

// MeanByPosition returns the count-weighted mean quality score at each read
// position. Positions with no observations report zero.
func (m *QualMatrix) MeanByPosition() []float64 {
	means := make([]float64, len(m.Counts))
	for p, row := range m.Counts {
		scores := make([]float64, len(row))
		var total float64
		for q := range row {
			scores[q] = float64(q)
			total += row[q]
		}
		if total > 0 {
			means[p] = stat.Mean(scores, row)
		}
	}
	return means
}

// LengthHist is a read length histogram: Counts[i] reads of length
// Lengths[i].
type LengthHist struct {
	Lengths []float64
	Counts  []float64
}

// ReadLengthHist parses a seqqs length report of "length count" lines.
func ReadLengthHist(file string) *LengthHist {
	h := new(LengthHist)
	for line := range lines(file) {
		words := strings.Fields(line)
		if len(words) != 2 {
			log.Panicf("malformed length report line in %s: %q", file, line)
		}
		length, err := strconv.ParseFloat(words[0], 64)
		exception.PanicOnErr(err)
		count, err := strconv.ParseFloat(words[1], 64)
		exception.PanicOnErr(err)
		h.Lengths = append(h.Lengths, length)
		h.Counts = append(h.Counts, count)
	}
	return h
}

// Total returns the number of reads in the histogram.
func (h *LengthHist) Total() float64 {
	var n float64
	for _, c := range h.Counts {
		n += c
	}
	return n
}

// Mean returns the count-weighted mean read length.
func (h *LengthHist) Mean() float64 {
	return stat.Mean(h.Lengths, h.Counts)
}

// StdDev returns the count-weighted standard deviation of read length.
func (h *LengthHist) StdDev() float64 {
	return stat.StdDev(h.Lengths, h.Counts)
}

// Summary holds the parsed reports for one pipeline QC stage.
type Summary struct {
	Prefix string
	Qual   *QualMatrix
	Len    *LengthHist
}

// Load reads the quality and length reports for one seqqs prefix.
func Load(prefix string) *Summary {
	return &Summary{
		Prefix: prefix,
		Qual:   ReadQualMatrix(prefix + QualSuffix),
		Len:    ReadLengthHist(prefix + LenSuffix),
	}
}

// Render returns a terminal summary of one stage: read count, length
// statistics and an ascii plot of mean quality by position.
func (s *Summary) Render() string {
	b := new(strings.Builder)
	fmt.Fprintf(b, "%s\n", s.Prefix)
	fmt.Fprintf(b, "  reads: %.0f  length mean: %.1f  sd: %.1f\n\n",
		s.Len.Total(), s.Len.Mean(), s.Len.StdDev())
	b.WriteString(asciigraph.Plot(s.Qual.MeanByPosition(),
		asciigraph.Height(10),
		asciigraph.Precision(0),
		asciigraph.Caption("mean quality by position")))
	b.WriteString("\n")
	return b.String()
}

// lines streams the non-empty lines of a report file.
func lines(file string) <-chan string {
	out := make(chan string, 100)
	go func() {
		in := fileio.EasyOpen(file)
		var line string
		var done bool
		for line, done = fileio.EasyNextRealLine(in); !done; line, done = fileio.EasyNextRealLine(in) {
			out <- line
		}
		err := in.Close()
		exception.PanicOnErr(err)
		close(out)
	}()
	return out
}

func parseRow(line string) []float64 {
	words := strings.Fields(line)
	row := make([]float64, len(words))
	var err error
	for i := range words {
		row[i], err = strconv.ParseFloat(words[i], 64)
		exception.PanicOnErr(err)
	}
	return row
}
