// Package tools locates the external executables driven by the knives pipeline.
package tools

import (
	"fmt"
	"os"
	"os/exec"
)

// Names of the external programs knives drives.
const (
	Sickle = "sickle"
	Scythe = "scythe"
	Seqqs  = "seqqs"
	Pairs  = "pairs"
)

// Names lists all required programs in pipeline order.
var Names = []string{Pairs, Seqqs, Scythe, Sickle}

// Set holds resolved executable paths for all external programs.
type Set struct {
	Sickle string
	Scythe string
	Seqqs  string
	Pairs  string
}

// Find resolves each tool, preferring the explicit path when non-empty and
// falling back to a $PATH lookup. Explicit paths are validated the same way
// as discovered ones.
func Find(sicklePath, scythePath, seqqsPath, pairsPath string) (Set, error) {
	var s Set
	var err error
	if s.Sickle, err = Resolve(Sickle, sicklePath); err != nil {
		return s, err
	}
	if s.Scythe, err = Resolve(Scythe, scythePath); err != nil {
		return s, err
	}
	if s.Seqqs, err = Resolve(Seqqs, seqqsPath); err != nil {
		return s, err
	}
	if s.Pairs, err = Resolve(Pairs, pairsPath); err != nil {
		return s, err
	}
	return s, nil
}

// Resolve returns a validated executable path for name. When explicit is
// empty the program is searched for on $PATH.
func Resolve(name, explicit string) (string, error) {
	path := explicit
	if path == "" {
		var err error
		path, err = exec.LookPath(name)
		if err != nil {
			return "", fmt.Errorf("can't find %s: %w", name, err)
		}
	}
	if err := checkExecutable(path); err != nil {
		return "", fmt.Errorf("can't find %s: %w", name, err)
	}
	return path, nil
}

func checkExecutable(path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !fi.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", path)
	}
	if fi.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("%s is not executable", path)
	}
	return nil
}
