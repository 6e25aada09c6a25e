package mzml

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"
)

// CV terms used when reading spectra
const (
	cvMSLevel          = "MS:1000511"
	cvCentroid         = "MS:1000127"
	cvScanStartTime    = "MS:1000016"
	cvSelectedIonMz    = "MS:1000744"
	cvChargeState      = "MS:1000041"
	cvPeakIntensity    = "MS:1000042"
	cvUnitMinute       = "UO:0000031"
	cvUnitMinuteLegacy = "MS:1000038"
)

// Read reads mzML file from an io.Reader
func Read(reader io.Reader) (MzML, error) {
	var mzML MzML

	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel

	// Only the mzML element matters, indexedmzML and everything
	// around it is skipped
	found := false
	for {
		t, tokenErr := d.Token()
		if tokenErr != nil {
			if tokenErr == io.EOF {
				break
			}
			return mzML, tokenErr
		}
		if t, ok := t.(xml.StartElement); ok && t.Name.Local == "mzML" {
			if err := d.DecodeElement(&mzML.content, &t); err != nil {
				return mzML, err
			}
			found = true
			break
		}
	}
	if !found {
		return mzML, ErrNoSpectra
	}
	err := mzML.traverseScan()
	return mzML, err
}

// binaryDataPars decodes the CV terms in a mzML binarydata section
//
// CV Terms for binary data compression
// MS:1000574 zlib compression
// MS:1000576 No Compression
// MS:1002312 .. MS:1002314, MS:1002746 .. MS:1002748 MS-Numpress variants
//
// CV Terms for binary data array types
// MS:1000514 m/z array
// MS:1000515 intensity array
//
// CV Terms for binary-data-type
// MS:1000521 32-bit float
// MS:1000523 64-bit float
func binaryDataPars(b *binaryDataArray) (zlibCompression, bits64, mzArray, intensityArray bool, err error) {
	for _, cvParam := range b.CvPar {
		switch cvParam.Accession {
		case `MS:1000574`:
			zlibCompression = true
		case `MS:1000514`:
			mzArray = true
		case `MS:1000515`:
			intensityArray = true
		case `MS:1000523`:
			bits64 = true
		case `MS:1002312`, `MS:1002313`, `MS:1002314`,
			`MS:1002746`, `MS:1002747`, `MS:1002748`:
			err = fmt.Errorf("CV term %s: %w", cvParam.Accession, ErrUnsupportedCompression)
		}
	}
	return
}

func fillScan(p []Peak, b *binaryDataArray) ([]Peak, error) {
	zlibCompression, bits64, mzArray, intensityArray, err := binaryDataPars(b)
	if err != nil {
		return nil, err
	}
	if !mzArray && !intensityArray {
		return p, nil
	}
	data, err := base64.StdEncoding.DecodeString(b.Binary)
	if err != nil {
		return nil, err
	}
	if zlibCompression {
		z, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer z.Close()
		data, err = io.ReadAll(z)
		if err != nil {
			return nil, err
		}
	}
	size := 4
	if bits64 {
		size = 8
	}
	cnt := len(data) / size
	if cnt > len(p) {
		cnt = len(p)
	}
	for i := 0; i < cnt; i++ {
		var v float64
		if bits64 {
			v = math.Float64frombits(binary.LittleEndian.Uint64(data[i*8:]))
		} else {
			v = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
		}
		if mzArray {
			p[i].Mz = v
		} else {
			p[i].Intens = v
		}
	}
	return p, nil
}

// NumSpecs returns the number of spectra
func (f *MzML) NumSpecs() int {
	return len(f.content.Run.SpectrumList.Spectrum)
}

// RetentionTime returns the retention time of a spectrum in seconds,
// or -1 if the spectrum has none
func (f *MzML) RetentionTime(scanIndex int) (float64, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0.0, ErrInvalidScanIndex
	}
	for _, scan := range f.content.Run.SpectrumList.Spectrum[scanIndex].ScanList.Scan {
		for _, cvParam := range scan.CvPar {
			if cvParam.Accession == cvScanStartTime {
				retentionTime, err := strconv.ParseFloat(cvParam.Value, 64)
				// Check if the retention time is in minutes, otherwise assume it's seconds
				if cvParam.UnitAccession == cvUnitMinute ||
					cvParam.UnitAccession == cvUnitMinuteLegacy {
					retentionTime *= 60
				}
				return retentionTime, err
			}
		}
	}
	return -1.0, nil
}

// ReadScan reads the peaks of a single scan.
// scanIndex is the sequence number of the scan in the mzML file.
func (f *MzML) ReadScan(scanIndex int) ([]Peak, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return nil, ErrInvalidScanIndex
	}
	spec := &f.content.Run.SpectrumList.Spectrum[scanIndex]
	p := make([]Peak, spec.DefaultArrayLength)
	var err error
	for i := range spec.BinaryDataArrayList.BinaryDataArray {
		p, err = fillScan(p, &spec.BinaryDataArrayList.BinaryDataArray[i])
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Centroid returns true is the spectrum contains centroid peaks
func (f *MzML) Centroid(scanIndex int) (bool, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return false, ErrInvalidScanIndex
	}
	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[scanIndex].CvPar {
		if cvParam.Accession == cvCentroid {
			return true, nil
		}
	}
	return false, nil
}

// MSLevel returns the MS level of a scan
func (f *MzML) MSLevel(scanIndex int) (int, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return 0, ErrInvalidScanIndex
	}
	for _, cvParam := range f.content.Run.SpectrumList.Spectrum[scanIndex].CvPar {
		if cvParam.Accession == cvMSLevel {
			msLevel, err := strconv.Atoi(cvParam.Value)
			return msLevel, err
		}
	}
	return 1, nil // If nothing else, guess it's MS1
}

// Precursors returns the selected ions of the first precursor list of a scan
func (f *MzML) Precursors(scanIndex int) ([]Precursor, error) {
	if scanIndex < 0 || scanIndex >= f.NumSpecs() {
		return nil, ErrInvalidScanIndex
	}
	spec := &f.content.Run.SpectrumList.Spectrum[scanIndex]
	if len(spec.PrecursorList) == 0 {
		return nil, nil
	}
	var precursors []Precursor
	for _, xp := range spec.PrecursorList[0].Precursor {
		for _, ion := range xp.SelectedIonList.SelectedIon {
			var p Precursor
			for _, cvParam := range ion.CvPar {
				var err error
				switch cvParam.Accession {
				case cvSelectedIonMz:
					p.Mz, err = strconv.ParseFloat(cvParam.Value, 64)
				case cvPeakIntensity:
					p.Intens, err = strconv.ParseFloat(cvParam.Value, 64)
				case cvChargeState:
					p.Charge, err = strconv.Atoi(cvParam.Value)
				}
				if err != nil {
					return nil, fmt.Errorf("spectrum %d, %s: %w", scanIndex, cvParam.Accession, err)
				}
			}
			precursors = append(precursors, p)
		}
	}
	return precursors, nil
}

// traverseScan fills f.index2id and checks that spectra are stored in
// index order
func (f *MzML) traverseScan() error {
	f.index2id = make([]string, f.NumSpecs())
	for i, spec := range f.content.Run.SpectrumList.Spectrum {
		if i != spec.Index {
			return ErrInvalidScanIndex
		}
		f.index2id[i] = spec.ID
	}
	return nil
}

// ScanID converts a scan index (used to access the scan data) into a scan id
// (used in the mzML file)
func (f *MzML) ScanID(scanIndex int) (string, error) {
	if scanIndex >= 0 && scanIndex < f.NumSpecs() {
		return f.index2id[scanIndex], nil
	}
	return "", ErrInvalidScanIndex
}
