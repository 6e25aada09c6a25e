package report

import (
	"encoding/json"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var nan = math.NaN()

// ErrorStats describes the distribution of precursor mass errors
type ErrorStats struct {
	N      int
	Mean   float64
	StdDev float64
	Median float64
	Q1     float64
	Q3     float64
	IQR    float64
}

// Summary describes the PSMs of a run
type Summary struct {
	PSMs           int
	Confident      int
	Doubtful       int
	NotValidated   int
	Decoys         int
	Peptides       int // Distinct sequences of validated target PSMs
	Spectra        int // Distinct spectra with a validated target PSM
	ByCharge       map[int]int
	ByFile         map[string]int
	PrecursorError ErrorStats // Of validated target PSMs
}

func validated(p *PSM) bool {
	return p.Validation == Confident || p.Validation == Doubtful
}

// Summarize counts PSMs and computes the precursor error statistics
func Summarize(psms []PSM) Summary {
	s := Summary{
		ByCharge: make(map[int]int),
		ByFile:   make(map[string]int),
	}
	peptides := make(map[string]bool)
	spectra := make(map[string]bool)
	var errs []float64
	for i := range psms {
		p := &psms[i]
		s.PSMs++
		switch p.Validation {
		case Confident:
			s.Confident++
		case Doubtful:
			s.Doubtful++
		default:
			s.NotValidated++
		}
		if p.Decoy {
			s.Decoys++
			continue
		}
		if !validated(p) {
			continue
		}
		s.ByCharge[p.Charge]++
		s.ByFile[p.SpectrumFile]++
		peptides[p.Sequence] = true
		spectra[p.SpectrumFile+"\x00"+p.SpectrumTitle] = true
		if !math.IsNaN(p.PrecursorError) {
			errs = append(errs, p.PrecursorError)
		}
	}
	s.Peptides = len(peptides)
	s.Spectra = len(spectra)
	s.PrecursorError = errorStats(errs)
	return s
}

func errorStats(x []float64) ErrorStats {
	es := ErrorStats{N: len(x)}
	if len(x) == 0 {
		return es
	}
	sort.Float64s(x)
	es.Mean = stat.Mean(x, nil)
	if len(x) > 1 {
		es.StdDev = stat.StdDev(x, nil)
	}
	es.Median = stat.Quantile(0.5, stat.Empirical, x, nil)
	es.Q1 = stat.Quantile(0.25, stat.Empirical, x, nil)
	es.Q3 = stat.Quantile(0.75, stat.Empirical, x, nil)
	es.IQR = es.Q3 - es.Q1
	return es
}

// WriteJSON writes v to path as indented JSON
func WriteJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	e := json.NewEncoder(f)
	e.SetIndent(``, `  `)
	if err := e.Encode(v); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
