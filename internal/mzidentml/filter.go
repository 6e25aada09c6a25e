package mzidentml

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"github.com/524D/pepsearch/internal/ranges"
)

// DefaultScoreFilter accepts PSMs with a PeptideShaker PSM confidence of
// at least 95%, or a PeptideShaker PSM score of at least 0.99 for older
// exports that lack the confidence term
const DefaultScoreFilter = "MS:1002467(95:)MS:1002466(0.99:)"

type scoreRange struct {
	minScore float64 // Minimum score to accept
	maxScore float64 // Maximum score to accept
	priority int     // Priority of the score, lowest is best
}

// ScoreFilter selects identifications on CV score terms. Keys are CV
// accessions or CV names.
type ScoreFilter map[string]scoreRange

var scoreFilterRe = regexp.MustCompile(`([^\(]+)\(([^\)]*)\)`)

// ParseScoreFilter parses a filter like
// <CVterm1|scorename1>([<minscore1>]:[<maxscore1>])...
// When several terms match an identification, the first one listed wins.
func ParseScoreFilter(s string) (ScoreFilter, error) {
	scoreFilt := make(ScoreFilter)
	for n, matched := range scoreFilterRe.FindAllStringSubmatch(s, -1) {
		scoreName := matched[1]
		if _, ok := scoreFilt[scoreName]; ok {
			return nil, errors.New(scoreName + ` defined more than once`)
		}
		minScore, maxScore, err := ranges.ParseFloat64(matched[2],
			-math.MaxFloat64, math.MaxFloat64)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", scoreName, err)
		}
		scoreFilt[scoreName] = scoreRange{minScore: minScore, maxScore: maxScore, priority: n}
	}
	if len(scoreFilt) == 0 && s != "" {
		return nil, fmt.Errorf("score filter %q: %w", s, ranges.ErrRangeSpec)
	}
	return scoreFilt, nil
}

// Accept reports whether the highest priority score of ident that occurs
// in the filter is inside its range. An identification without any
// matching score is not accepted.
func (f ScoreFilter) Accept(ident Identification) (bool, error) {
	accepted := false
	curPrio := math.MaxInt32
	for _, cv := range ident.Cv {
		filt, ok := f[cv.Accession]
		if !ok {
			filt, ok = f[cv.Name]
		}
		if !ok || filt.priority >= curPrio {
			continue
		}
		score, err := strconv.ParseFloat(cv.Value, 64)
		if err != nil {
			return false, fmt.Errorf("invalid score value %q for %s", cv.Value, ident.PepID)
		}
		curPrio = filt.priority
		accepted = score >= filt.minScore && score <= filt.maxScore
	}
	return accepted, nil
}

// Summary counts the identifications of an mzIdentML file
type Summary struct {
	Identifications int
	PassThreshold   int
	Accepted        int
	Spectra         int // Distinct spectra with an accepted identification
	Peptides        int // Distinct sequences with an accepted identification
	ByCharge        map[int]int
}

// Summarize counts all identifications in m and those accepted by filt
func Summarize(m *MzIdentML, filt ScoreFilter) (Summary, error) {
	s := Summary{ByCharge: make(map[int]int)}
	spectra := make(map[string]bool)
	peptides := make(map[string]bool)
	for i := 0; i < m.NumIdents(); i++ {
		ident, err := m.Ident(i)
		if err != nil {
			return s, err
		}
		s.Identifications++
		if ident.PassThreshold {
			s.PassThreshold++
		}
		ok, err := filt.Accept(ident)
		if err != nil {
			return s, err
		}
		if !ok {
			continue
		}
		s.Accepted++
		s.ByCharge[ident.Charge]++
		// Spectrum ids are only unique within one input file
		spectra[ident.SpectraDataRef+"\x00"+ident.SpecID] = true
		peptides[ident.PepSeq] = true
	}
	s.Spectra = len(spectra)
	s.Peptides = len(peptides)
	return s, nil
}
