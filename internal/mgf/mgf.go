// Package mgf reads, writes and rewrites peak lists in Mascot Generic Format.
//
// Most functions here are single-pass line filters: they copy their input
// to their output line by line and only touch the lines they are about.
package mgf

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"
)

const (
	beginIons = "BEGIN IONS"
	endIons   = "END IONS"
	titleKey  = "TITLE"
)

var (
	// ErrNestedBlock means a BEGIN IONS was found inside a spectrum block
	ErrNestedBlock = errors.New("mgf: BEGIN IONS inside spectrum block")
	// ErrUnterminatedBlock means the input ended inside a spectrum block
	ErrUnterminatedBlock = errors.New("mgf: missing END IONS")
	// ErrInvalidPeak means a peak line inside a block could not be parsed
	ErrInvalidPeak = errors.New("mgf: invalid peak line")
)

// Peak is a single m/z, intensity pair. Charge is kept as text because
// MGF writes it as e.g. "2+".
type Peak struct {
	Mz     float64
	Intens float64
	Charge string
}

// Header is a KEY=VALUE line of a spectrum block
type Header struct {
	Key   string
	Value string
}

// Spectrum is one BEGIN IONS ... END IONS block
type Spectrum struct {
	Headers []Header
	Peaks   []Peak
}

// Get returns the value of the first header with the given key
func (s *Spectrum) Get(key string) string {
	for _, h := range s.Headers {
		if h.Key == key {
			return h.Value
		}
	}
	return ""
}

// Set replaces the value of header key, or appends it
func (s *Spectrum) Set(key, value string) {
	for i, h := range s.Headers {
		if h.Key == key {
			s.Headers[i].Value = value
			return
		}
	}
	s.Headers = append(s.Headers, Header{Key: key, Value: value})
}

// Title returns the TITLE header
func (s *Spectrum) Title() string {
	return s.Get(titleKey)
}

// Range is a closed interval of m/z values
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies in [Min, Max]
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// leadingNumber returns the value of the first field of a line if that
// field is a number. Lines like "PEPMASS=..." or "END IONS" return false.
func leadingNumber(line string) (float64, bool) {
	s := strings.TrimLeft(line, " \t")
	if s == "" {
		return 0, false
	}
	switch c := s[0]; {
	case c >= '0' && c <= '9', c == '.', c == '-', c == '+':
	default:
		return 0, false
	}
	end := strings.IndexAny(s, " \t\r\n")
	if end >= 0 {
		s = s[:end]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// splitEOL separates the line terminator from a line as returned by
// bufio.Reader.ReadString, so it can be written back unchanged
func splitEOL(line string) (string, string) {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2], "\r\n"
	}
	if strings.HasSuffix(line, "\n") {
		return line[:len(line)-1], "\n"
	}
	return line, ""
}

// eachLine calls fn for every line of r, terminator included.
// The last line may lack a terminator.
func eachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			if fnErr := fn(line); fnErr != nil {
				return fnErr
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
