package mgf

import (
	"bufio"
	"io"
)

// FilterPeaks copies an MGF stream from r to w, dropping every line whose
// leading number lies outside the closed range rng. Lines that do not start
// with a number (headers, BEGIN/END IONS, blank lines) are always kept.
func FilterPeaks(r io.Reader, w io.Writer, rng Range) (kept int, dropped int, err error) {
	bw := bufio.NewWriter(w)
	err = eachLine(r, func(line string) error {
		if v, isPeak := leadingNumber(line); isPeak {
			if !rng.Contains(v) {
				dropped++
				return nil
			}
			kept++
		}
		_, err := bw.WriteString(line)
		return err
	})
	if err != nil {
		return kept, dropped, err
	}
	return kept, dropped, bw.Flush()
}
