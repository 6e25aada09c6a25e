package mzidentml

import (
	"encoding/xml"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Read reads mzIdentML content from io.reader
func Read(reader io.Reader) (MzIdentML, error) {
	var mzIdentML MzIdentML
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	err := d.Decode(&mzIdentML.content)
	if err != nil {
		return mzIdentML, err
	}
	mzIdentML.buildPepIndex()
	mzIdentML.buildIdentList()
	return mzIdentML, nil
}

func (m *MzIdentML) buildPepIndex() {
	m.pepID2Idx = make(map[string]int, len(m.content.Peptide))
	for i, p := range m.content.Peptide {
		m.pepID2Idx[p.ID] = i
	}
}

func (m *MzIdentML) buildIdentList() {
	for i := range m.content.SpectrumIdentificationResult {
		for j := range m.content.SpectrumIdentificationResult[i].SpectrumIdentificationItem {
			m.identList = append(m.identList, identRef{specResultIdx: i, itemIdx: j})
		}
	}
}

// NumIdents returns the total number of identifications in the mzIdentML file.
// Some spectra have more than one identification.
func (m *MzIdentML) NumIdents() int {
	return len(m.identList)
}

// Ident returns identification i, 0 <= i < NumIdents()
func (m *MzIdentML) Ident(i int) (Identification, error) {
	var ident Identification

	if i < 0 || i >= len(m.identList) {
		return ident, ErrInvalidIdentIndex
	}
	result := &m.content.SpectrumIdentificationResult[m.identList[i].specResultIdx]
	item := &result.SpectrumIdentificationItem[m.identList[i].itemIdx]

	pepIdx, ok := m.pep2Idx(item.PeptideRef)
	if !ok {
		return ident, fmt.Errorf("%s: %w", item.PeptideRef, ErrUnknownPeptide)
	}
	pep := &m.content.Peptide[pepIdx]
	ident.PepSeq = pep.PeptideSequence
	ident.PepID = pep.ID
	for _, mod := range pep.Modification {
		ident.ModMass += mod.MonoisotopicMassDelta
	}
	ident.Charge = item.ChargeState
	ident.Rank = item.Rank
	ident.PassThreshold = item.PassThreshold
	ident.ExperimentalMz = item.ExperimentalMz
	ident.CalculatedMz = item.CalculatedMz
	ident.SpecID = result.SpectrumID
	ident.SpectraDataRef = result.SpectraDataRef
	ident.Cv = append(ident.Cv, item.CvPar...)
	return ident, nil
}

func (m *MzIdentML) pep2Idx(ref string) (int, bool) {
	i, ok := m.pepID2Idx[ref]
	return i, ok
}
