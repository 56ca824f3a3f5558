package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/vertgenlab/gonomics/fileio"
	"golang.org/x/sys/unix"
)

// Fifo is the named-pipe side channel that collects unpaired reads from the
// trimming and de-interleaving stages and streams them into the (gzipped)
// unpaired output file without touching disk in between.
type Fifo struct {
	// Path of the named pipe, passed to sickle -s and pairs split -u.
	Path string

	w    *os.File // parent write end, held open until Close
	out  *fileio.EasyWriter
	done chan error
}

// NewFifo creates a named pipe in the system temp directory and starts a
// goroutine copying everything written to it into unpaired (gzipped when
// the name ends in .gz).
//
// EOF protocol: the copier opens the read end first, blocking until a
// writer appears; the parent then opens and holds a write end for the whole
// run. The copier therefore sees EOF only once Close releases the parent's
// end after all stages have exited, regardless of the order in which the
// producing stages open and close theirs.
//
// The pipe merges bytes, not records, so writers must not write
// concurrently. In the knives chain this holds: sickle's pe mode diverts
// every orphaned read itself, leaving the downstream deinterleaver's -u
// stream empty, so at most one producer is ever writing.
func NewFifo(unpaired string) (*Fifo, error) {
	path := filepath.Join(os.TempDir(), "knives_unpaired_"+uuid.New().String())
	if err := unix.Mkfifo(path, 0600); err != nil {
		return nil, fmt.Errorf("creating fifo %s: %w", path, err)
	}

	f := &Fifo{
		Path: path,
		out:  fileio.EasyCreate(unpaired),
		done: make(chan error, 1),
	}
	go f.copy()

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("opening fifo %s: %w", path, err)
	}
	f.w = w
	return f, nil
}

func (f *Fifo) copy() {
	r, err := os.OpenFile(f.Path, os.O_RDONLY, 0)
	if err != nil {
		f.done <- err
		return
	}
	_, err = io.Copy(f.out, r)
	r.Close()
	f.done <- err
}

// Close releases the parent's write end, waits for the copier to drain the
// pipe, closes the unpaired output file and unlinks the fifo. Call only
// after every pipeline stage has been waited for.
func (f *Fifo) Close() error {
	f.w.Close()
	copyErr := <-f.done
	outErr := f.out.Close()
	rmErr := os.Remove(f.Path)

	if copyErr != nil {
		return fmt.Errorf("draining fifo %s: %w", f.Path, copyErr)
	}
	if outErr != nil {
		return outErr
	}
	return rmErr
}
