package mgf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Reader provides streaming access to the spectra of an MGF file
type Reader struct {
	scanner *bufio.Scanner
	lineNr  int
	current *Spectrum
	err     error
}

// NewReader creates a new MGF reader
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{scanner: s}
}

// Next advances to the next spectrum. It returns false at the end of the
// input or on error; Err tells which.
func (r *Reader) Next() bool {
	r.current = nil
	if r.err != nil {
		return false
	}
	spec, err := r.readSpectrum()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}
	r.current = spec
	return true
}

// Spectrum returns the current spectrum
func (r *Reader) Spectrum() *Spectrum {
	return r.current
}

// Err returns the first error encountered while reading
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) readSpectrum() (*Spectrum, error) {
	var spec *Spectrum
	for r.scanner.Scan() {
		r.lineNr++
		line := strings.TrimSpace(r.scanner.Text())
		if spec == nil {
			// Skip everything between blocks
			if line == beginIons {
				spec = &Spectrum{}
			}
			continue
		}
		switch {
		case line == beginIons:
			return nil, fmt.Errorf("line %d: %w", r.lineNr, ErrNestedBlock)
		case line == endIons:
			return spec, nil
		case line == "":
		default:
			if _, isPeak := leadingNumber(line); isPeak {
				p, err := parsePeak(line)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", r.lineNr, err)
				}
				spec.Peaks = append(spec.Peaks, p)
			} else if k, v, ok := strings.Cut(line, "="); ok {
				spec.Headers = append(spec.Headers, Header{Key: k, Value: v})
			}
		}
	}
	if err := r.scanner.Err(); err != nil {
		return nil, err
	}
	if spec != nil {
		return nil, ErrUnterminatedBlock
	}
	return nil, io.EOF
}

func parsePeak(line string) (Peak, error) {
	var p Peak
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return p, ErrInvalidPeak
	}
	var err error
	p.Mz, err = strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return p, ErrInvalidPeak
	}
	p.Intens, err = strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return p, ErrInvalidPeak
	}
	if len(fields) > 2 {
		p.Charge = fields[2]
	}
	return p, nil
}
