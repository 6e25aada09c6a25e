package mgf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// FormatTitle returns the title given to spectrum index (1-based)
// of a file with the given prefix
func FormatTitle(prefix string, index int) string {
	if prefix == "" {
		return strconv.Itoa(index)
	}
	return prefix + "." + strconv.Itoa(index)
}

// RewriteTitles copies an MGF stream from r to w, replacing the TITLE of
// every spectrum by prefix.<n>, where n counts the spectra of this stream
// starting at 1. Spectra without a TITLE get one, inserted before the first
// peak line. Extra TITLE lines in a block are dropped. All other lines are
// copied unchanged. It returns the number of spectra.
func RewriteTitles(r io.Reader, w io.Writer, prefix string) (int, error) {
	bw := bufio.NewWriter(w)
	index := 0
	inBlock := false
	titled := false
	lineNr := 0

	err := eachLine(r, func(line string) error {
		lineNr++
		content, eol := splitEOL(line)
		trimmed := strings.TrimSpace(content)
		if eol == "" {
			eol = "\n"
		}
		writeTitle := func() {
			bw.WriteString(titleKey + "=" + FormatTitle(prefix, index) + eol)
			titled = true
		}

		switch {
		case trimmed == beginIons:
			if inBlock {
				return fmt.Errorf("line %d: %w", lineNr, ErrNestedBlock)
			}
			index++
			inBlock = true
			titled = false
		case !inBlock:
			// Outside a block, nothing is rewritten
		case strings.HasPrefix(trimmed, titleKey+"="):
			if !titled {
				writeTitle()
			}
			return nil
		case trimmed == endIons:
			if !titled {
				writeTitle()
			}
			inBlock = false
		default:
			if _, isPeak := leadingNumber(trimmed); isPeak && !titled {
				writeTitle()
			}
		}
		_, err := bw.WriteString(line)
		return err
	})
	if err != nil {
		return index, err
	}
	if err := bw.Flush(); err != nil {
		return index, err
	}
	if inBlock {
		return index, ErrUnterminatedBlock
	}
	return index, nil
}
