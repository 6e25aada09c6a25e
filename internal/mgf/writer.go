package mgf

import (
	"bufio"
	"io"
	"strconv"
)

// Writer writes spectra in MGF format
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer. Flush must be called when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write writes a single spectrum block
func (w *Writer) Write(s *Spectrum) error {
	w.w.WriteString(beginIons + "\n")
	for _, h := range s.Headers {
		w.w.WriteString(h.Key + "=" + h.Value + "\n")
	}
	for _, p := range s.Peaks {
		w.w.WriteString(strconv.FormatFloat(p.Mz, 'f', -1, 64))
		w.w.WriteByte(' ')
		w.w.WriteString(strconv.FormatFloat(p.Intens, 'f', -1, 64))
		if p.Charge != "" {
			w.w.WriteByte(' ')
			w.w.WriteString(p.Charge)
		}
		w.w.WriteByte('\n')
	}
	_, err := w.w.WriteString(endIons + "\n\n")
	return err
}

// Flush writes buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.w.Flush()
}
