package mzml

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/524D/pepsearch/internal/mgf"
)

// Spectrum converts spectrum scanIndex into an MGF spectrum. Only the first
// selected ion is used for PEPMASS and CHARGE. ok is false for spectra
// without a precursor, which cannot be searched.
func (f *MzML) Spectrum(scanIndex int) (spec mgf.Spectrum, ok bool, err error) {
	precursors, err := f.Precursors(scanIndex)
	if err != nil || len(precursors) == 0 {
		return spec, false, err
	}
	prec := precursors[0]
	id, err := f.ScanID(scanIndex)
	if err != nil {
		return spec, false, err
	}
	spec.Set("TITLE", id)
	pepMass := strconv.FormatFloat(prec.Mz, 'f', -1, 64)
	if prec.Intens > 0 {
		pepMass += " " + strconv.FormatFloat(prec.Intens, 'f', -1, 64)
	}
	spec.Set("PEPMASS", pepMass)
	if prec.Charge > 0 {
		spec.Set("CHARGE", strconv.Itoa(prec.Charge)+"+")
	}
	rt, err := f.RetentionTime(scanIndex)
	if err != nil {
		return spec, false, err
	}
	if rt >= 0 {
		spec.Set("RTINSECONDS", strconv.FormatFloat(rt, 'f', -1, 64))
	}
	if s := scanNumber(id); s != "" {
		spec.Set("SCANS", s)
	}

	peaks, err := f.ReadScan(scanIndex)
	if err != nil {
		return spec, false, err
	}
	spec.Peaks = make([]mgf.Peak, len(peaks))
	for i, p := range peaks {
		spec.Peaks[i] = mgf.Peak{Mz: p.Mz, Intens: p.Intens}
	}
	return spec, true, nil
}

// scanNumber extracts the value of "scan=" from a native spectrum id like
// "controllerType=0 controllerNumber=1 scan=43"
func scanNumber(id string) string {
	for _, field := range strings.Fields(id) {
		if v, ok := strings.CutPrefix(field, "scan="); ok {
			return v
		}
	}
	return ""
}

// ConvertStats counts the spectra handled by WriteMGF
type ConvertStats struct {
	Written     int // Spectra written to the MGF file
	NoPrecursor int // Spectra skipped for lack of a precursor
	Profile     int // Written spectra that are not centroided
}

// WriteMGF writes all spectra of the given MS level to w.
// Spectra at that level without a precursor are skipped.
func (f *MzML) WriteMGF(w io.Writer, msLevel int) (ConvertStats, error) {
	var st ConvertStats
	mw := mgf.NewWriter(w)
	for i := 0; i < f.NumSpecs(); i++ {
		level, err := f.MSLevel(i)
		if err != nil {
			return st, err
		}
		if level != msLevel {
			continue
		}
		spec, ok, err := f.Spectrum(i)
		if err != nil {
			return st, err
		}
		if !ok {
			st.NoPrecursor++
			continue
		}
		centroid, err := f.Centroid(i)
		if err != nil {
			return st, err
		}
		if !centroid {
			st.Profile++
		}
		if err := mw.Write(&spec); err != nil {
			return st, err
		}
		st.Written++
	}
	return st, mw.Flush()
}

// IsMzML reports whether name has an mzML extension
func IsMzML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".mzML")
}

// ConvertFile reads mzML file src and writes its MSn spectra of the given
// level as <stem>.mgf into dstDir. It returns the path of the MGF file.
func ConvertFile(src, dstDir string, msLevel int) (string, ConvertStats, error) {
	var st ConvertStats
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dstDir, stem+".mgf")

	in, err := os.Open(src)
	if err != nil {
		return dst, st, err
	}
	defer in.Close()
	mzML, err := Read(in)
	if err != nil {
		return dst, st, fmt.Errorf("%s: %w", src, err)
	}

	tmp, err := os.CreateTemp(dstDir, stem+".*.tmp")
	if err != nil {
		return dst, st, err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()
	st, err = mzML.WriteMGF(tmp, msLevel)
	if err != nil {
		return dst, st, fmt.Errorf("%s: %w", src, err)
	}
	if st.Written == 0 {
		return dst, st, fmt.Errorf("%s: MS%d: %w", src, msLevel, ErrNoSpectra)
	}
	if err = tmp.Close(); err != nil {
		return dst, st, err
	}
	return dst, st, os.Rename(tmp.Name(), dst)
}
