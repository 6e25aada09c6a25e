// Package peptideshaker builds the command lines of the PeptideShaker
// command line tools and finds the files they export
package peptideshaker

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/524D/pepsearch/internal/config"
	"github.com/524D/pepsearch/internal/javatool"
)

// Main classes in the PeptideShaker jar
const (
	ShakerClass = "eu.isas.peptideshaker.cmd.PeptideShakerCLI"
	MzidClass   = "eu.isas.peptideshaker.cmd.MzidCLI"
)

// Report numbers understood by the -reports option
const (
	CertificateReport = 0
	ProteinReport     = 1
	PeptideReport     = 2
	PSMReport         = 3
)

// reportPatterns are the file name patterns of exported reports
var reportPatterns = map[int]string{
	CertificateReport: "*Certificate_of_Analysis*.txt",
	ProteinReport:     "*Default_Protein_Report*.txt",
	PeptideReport:     "*Default_Peptide_Report*.txt",
	PSMReport:         "*Default_PSM_Report*.txt",
}

// Tool returns the PeptideShaker tool for running class
func Tool(cfg *config.Config, class, logDir string) javatool.Tool {
	return javatool.Tool{
		Name:      "PeptideShaker",
		Java:      cfg.Java,
		Jar:       cfg.PeptideShakerJar,
		MainClass: class,
		MaxHeapMB: cfg.MaxHeapMB,
		LogDir:    logDir,
	}
}

// Project is a single PeptideShakerCLI invocation
type Project struct {
	Reference       string   // Project reference, also the base of report names
	Identifications string   // SearchGUI result zip
	Spectra         []string // MGF files
	Fasta           string
	Params          string
	Output          string // psdb file
	Threads         int
	ReportDir       string
	Reports         []int
}

// Args returns the PeptideShakerCLI arguments
func (p Project) Args() []string {
	args := []string{
		"-reference", p.Reference,
		"-identification_files", p.Identifications,
		"-spectrum_files", strings.Join(p.Spectra, ","),
		"-fasta_file", p.Fasta,
		"-id_params", p.Params,
		"-out", p.Output,
		"-threads", strconv.Itoa(p.Threads),
	}
	if p.ReportDir != "" && len(p.Reports) > 0 {
		nums := make([]string, len(p.Reports))
		for i, r := range p.Reports {
			nums[i] = strconv.Itoa(r)
		}
		args = append(args,
			"-reports", strings.Join(nums, ","),
			"-report_output_folder", p.ReportDir)
	}
	return args
}

// MzidArgs returns the MzidCLI arguments for exporting psdb to mzidFile
func MzidArgs(psdb, mzidFile string, c config.Contact) []string {
	return []string{
		"-in", psdb,
		"-output_file", mzidFile,
		"-contact_first_name", c.FirstName,
		"-contact_last_name", c.LastName,
		"-contact_email", c.Email,
		"-contact_address", c.Address,
		"-organization_name", c.OrgName,
		"-organization_email", c.OrgEmail,
		"-organization_address", c.OrgAddress,
	}
}

// FindReport returns the exported report of the given kind in dir. When
// more files match, e.g. a report that includes non-validated matches,
// the one with the shortest name is returned.
func FindReport(dir string, kind int) (string, error) {
	pattern, ok := reportPatterns[kind]
	if !ok {
		return "", fmt.Errorf("unknown report kind %d", kind)
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("%s in %s: %w", pattern, dir, javatool.ErrMissingOutput)
	}
	sort.Slice(matches, func(i, j int) bool {
		if len(matches[i]) != len(matches[j]) {
			return len(matches[i]) < len(matches[j])
		}
		return matches[i] < matches[j]
	})
	return matches[0], nil
}
