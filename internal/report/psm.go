// Package report handles the PSM report exported by PeptideShaker
package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Column names in the Default PSM Report
const (
	colProteins      = "Protein(s)"
	colSequence      = "Sequence"
	colModSequence   = "Modified Sequence"
	colSpectrumFile  = "Spectrum File"
	colSpectrumTitle = "Spectrum Title"
	colMz            = "m/z"
	colCharge        = "Identification Charge"
	colChargeOld     = "Charge"
	colPrecursorErr  = "Precursor m/z Error [ppm]"
	colConfidence    = "Confidence [%]"
	colValidation    = "Validation"
	colDecoy         = "Decoy"
)

// Validation levels used by PeptideShaker
const (
	Confident    = "Confident"
	Doubtful     = "Doubtful"
	NotValidated = "Not Validated"
)

// ErrMissingColumn means a required column is absent from the report header
var ErrMissingColumn = errors.New("report: missing column")

// PSM is one row of the PSM report
type PSM struct {
	Proteins       string
	Sequence       string
	ModSequence    string
	SpectrumFile   string
	SpectrumTitle  string
	Mz             float64
	Charge         int
	PrecursorError float64 // ppm, NaN when not reported
	Confidence     float64
	Validation     string
	Decoy          bool
}

type columns map[string]int

func (c columns) get(rec []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return rec[i]
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nan
	}
	return v
}

// parseCharge accepts "2", "2+" and "+2"
func parseCharge(s string) int {
	s = strings.Trim(strings.TrimSpace(s), "+")
	c, _ := strconv.Atoi(s)
	return c
}

// isDecoyProteins reports whether all accessions in a protein list carry
// the decoy tag
func isDecoyProteins(proteins, decoyTag string) bool {
	if proteins == "" || decoyTag == "" {
		return false
	}
	for _, acc := range strings.Split(proteins, ",") {
		if !strings.Contains(acc, decoyTag) {
			return false
		}
	}
	return true
}

// ReadPSMs reads a tab separated PSM report. Columns are located by the
// names in the header line; only Sequence and Spectrum Title are required.
// Without a Decoy column, a PSM is a decoy when all its proteins carry
// decoyTag.
func ReadPSMs(r io.Reader, decoyTag string) ([]PSM, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("empty report: %w", ErrMissingColumn)
		}
		return nil, err
	}
	cols := make(columns, len(header))
	for i, h := range header {
		cols[strings.TrimSpace(h)] = i
	}
	for _, req := range []string{colSequence, colSpectrumTitle} {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("%q: %w", req, ErrMissingColumn)
		}
	}
	chargeCol := colCharge
	if _, ok := cols[chargeCol]; !ok {
		chargeCol = colChargeOld
	}
	_, hasDecoy := cols[colDecoy]

	var psms []PSM
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return psms, err
		}
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		p := PSM{
			Proteins:       cols.get(rec, colProteins),
			Sequence:       cols.get(rec, colSequence),
			ModSequence:    cols.get(rec, colModSequence),
			SpectrumFile:   cols.get(rec, colSpectrumFile),
			SpectrumTitle:  cols.get(rec, colSpectrumTitle),
			Mz:             parseFloat(cols.get(rec, colMz)),
			Charge:         parseCharge(cols.get(rec, chargeCol)),
			PrecursorError: parseFloat(cols.get(rec, colPrecursorErr)),
			Confidence:     parseFloat(cols.get(rec, colConfidence)),
			Validation:     cols.get(rec, colValidation),
		}
		if hasDecoy {
			p.Decoy = cols.get(rec, colDecoy) == "1"
		} else {
			p.Decoy = isDecoyProteins(p.Proteins, decoyTag)
		}
		psms = append(psms, p)
	}
	return psms, nil
}
