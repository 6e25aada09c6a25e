package mgf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/pgzip"
)

// Extensions of peak list files that are accepted as input
var extensions = []string{".mgf", ".mgf.gz"}

// IsPeakList reports whether name looks like an MGF file, compressed or not
func IsPeakList(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Stem returns the file name without directory and without the
// .mgf or .mgf.gz extension
func Stem(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, ext := range []string{".mgf.gz", ".mgf", ".gz"} {
		if strings.HasSuffix(lower, ext) {
			return base[:len(base)-len(ext)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type gzipFile struct {
	*pgzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	g.Reader.Close()
	return g.f.Close()
}

// Open opens a peak list for reading. Files ending in .gz are
// decompressed on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}
	z, err := pgzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return gzipFile{Reader: z, f: f}, nil
}

// ListFiles returns the peak list files in dir, sorted by name
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && IsPeakList(e.Name()) {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// PrepareOptions controls PrepareFile
type PrepareOptions struct {
	// Prefix for rewritten titles; the file stem if empty
	Prefix string
	// Peaks outside this range are removed; nil keeps all peaks
	Filter *Range
}

// PrepareResult describes a prepared peak list
type PrepareResult struct {
	Source       string
	Output       string
	Spectra      int
	PeaksKept    int
	PeaksDropped int
}

// PrepareFile rewrites the titles of src and optionally filters its peaks,
// writing the result as <stem>.mgf in dstDir. The output only appears
// once it is complete.
func PrepareFile(src, dstDir string, opts PrepareOptions) (PrepareResult, error) {
	stem := Stem(src)
	res := PrepareResult{
		Source: src,
		Output: filepath.Join(dstDir, stem+".mgf"),
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = stem
	}

	in, err := Open(src)
	if err != nil {
		return res, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(dstDir, stem+".*.tmp")
	if err != nil {
		return res, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if opts.Filter == nil {
		res.Spectra, err = RewriteTitles(in, tmp, prefix)
	} else {
		// Titles are rewritten into a pipe that the peak filter reads from
		pr, pw := io.Pipe()
		nSpecs := make(chan int, 1)
		go func() {
			n, rwErr := RewriteTitles(in, pw, prefix)
			pw.CloseWithError(rwErr)
			nSpecs <- n
		}()
		res.PeaksKept, res.PeaksDropped, err = FilterPeaks(pr, tmp, *opts.Filter)
		pr.CloseWithError(err)
		res.Spectra = <-nSpecs
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w", src, err)
	}
	if err = tmp.Close(); err != nil {
		return res, err
	}
	if err = os.Rename(tmp.Name(), res.Output); err != nil {
		return res, err
	}
	return res, nil
}

// FileStats describes the contents of a peak list
type FileStats struct {
	Path     string
	Spectra  int
	Peaks    int
	ByCharge map[string]int `json:",omitempty"` // Spectra per CHARGE header value
}

// Inspect reads the peak list at path and counts its spectra and peaks
func Inspect(path string) (FileStats, error) {
	st := FileStats{Path: path, ByCharge: make(map[string]int)}
	in, err := Open(path)
	if err != nil {
		return st, err
	}
	defer in.Close()
	rd := NewReader(in)
	for rd.Next() {
		spec := rd.Spectrum()
		st.Spectra++
		st.Peaks += len(spec.Peaks)
		if z := spec.Get("CHARGE"); z != "" {
			st.ByCharge[z]++
		}
	}
	if err := rd.Err(); err != nil {
		return st, fmt.Errorf("%s: %w", path, err)
	}
	return st, nil
}
