// Package fastadb inspects protein sequence databases in FASTA format
package fastadb

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// DefaultDecoyTag is appended to the accession of decoy proteins by FastaCLI
const DefaultDecoyTag = "_REVERSED"

// Stats counts the entries of a FASTA database
type Stats struct {
	Entries  int // Total number of sequences
	Decoys   int // Sequences with the decoy tag in their identifier
	Residues int // Total sequence length
}

// Targets returns the number of non-decoy entries
func (s Stats) Targets() int {
	return s.Entries - s.Decoys
}

// HasDecoys reports whether the database already contains decoys
func (s Stats) HasDecoys() bool {
	return s.Decoys > 0
}

// IsTargetDecoy reports whether every target has exactly one decoy
func (s Stats) IsTargetDecoy() bool {
	return s.Entries > 0 && s.Decoys*2 == s.Entries
}

// Inspect reads the FASTA file at path and counts entries and decoys
func Inspect(path, decoyTag string) (Stats, error) {
	var st Stats
	f, err := os.Open(path)
	if err != nil {
		return st, err
	}
	defer f.Close()

	t := linear.NewSeq("", nil, alphabet.Protein)
	sc := seqio.NewScanner(fasta.NewReader(f, t))
	for sc.Next() {
		s := sc.Seq()
		st.Entries++
		st.Residues += s.Len()
		if decoyTag != "" && strings.Contains(s.Name(), decoyTag) {
			st.Decoys++
		}
	}
	if err := sc.Error(); err != nil {
		return st, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}

// DecoyPath returns the file name FastaCLI uses for the concatenated
// target/decoy database generated from path
func DecoyPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_concatenated_target_decoy" + ext
}
