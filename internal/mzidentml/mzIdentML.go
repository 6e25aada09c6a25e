package mzidentml

import (
	"encoding/xml"
	"errors"
)

// Types for parsing mzIdentML as exported by PeptideShaker

// MzIdentML holds only the part of mzIdentML files
// in which we are interested
type MzIdentML struct {
	pepID2Idx map[string]int
	identList []identRef
	content   mzIdentMLContent
}

type identRef struct {
	specResultIdx int // Index into SpectrumIdentificationResult
	itemIdx       int // Index into SpectrumIdentificationItem
}

// Identification is a single PSM
type Identification struct {
	PepSeq         string
	PepID          string
	Charge         int
	Rank           int
	PassThreshold  bool
	ExperimentalMz float64
	CalculatedMz   float64
	ModMass        float64
	SpecID         string
	SpectraDataRef string // Input file of the spectrum
	Cv             []CVParam
}

type mzIdentMLContent struct {
	XMLName                      xml.Name                       `xml:"MzIdentML"`
	Peptide                      []peptide                      `xml:"SequenceCollection>Peptide"`
	SpectrumIdentificationResult []spectrumIdentificationResult `xml:"DataCollection>AnalysisData>SpectrumIdentificationList>SpectrumIdentificationResult"`
}

type peptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	// monoisotopicMassDelta is optional according to the schema, but
	// other ways to find the mass shift need the unimod tables
	MonoisotopicMassDelta float64 `xml:"monoisotopicMassDelta,attr"`
}

type spectrumIdentificationResult struct {
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectraDataRef             string `xml:"spectraData_ref,attr"`
	SpectrumIdentificationItem []spectrumIdentificationItem
}

type spectrumIdentificationItem struct {
	ChargeState    int       `xml:"chargeState,attr"`
	ExperimentalMz float64   `xml:"experimentalMassToCharge,attr"`
	CalculatedMz   float64   `xml:"calculatedMassToCharge,attr"`
	PeptideRef     string    `xml:"peptide_ref,attr"`
	Rank           int       `xml:"rank,attr"`
	PassThreshold  bool      `xml:"passThreshold,attr"`
	CvPar          []CVParam `xml:"cvParam"`
}

// CVParam is a controlled vocabulary term with its value
type CVParam struct {
	Accession string `xml:"accession,attr"`
	Name      string `xml:"name,attr"`
	Value     string `xml:"value,attr"`
}

var (
	// ErrInvalidIdentIndex means an identification index is out of range
	ErrInvalidIdentIndex = errors.New("mzIdentML: invalid identification index")
	// ErrUnknownPeptide means a PSM refers to a peptide that is not in the file
	ErrUnknownPeptide = errors.New("mzIdentML: unknown peptide reference")
)
