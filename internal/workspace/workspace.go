// Package workspace lays out the output directory of a search run
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Subdirectories of a workspace
const (
	SpectraDir       = "spectra"
	DatabaseDir      = "database"
	ParamsDir        = "params"
	SearchGUIDir     = "searchgui"
	PeptideShakerDir = "peptideshaker"
	ReportsDir       = "peptideshaker/reports"
	LogsDir          = "logs"
)

var dirs = []string{SpectraDir, DatabaseDir, ParamsDir, SearchGUIDir, PeptideShakerDir, ReportsDir, LogsDir}

// intermediates are removed by Cleanup
var intermediates = []string{SpectraDir, DatabaseDir, SearchGUIDir, PeptideShakerDir}

// ErrInvalidName means the run name cannot be used in file names
var ErrInvalidName = errors.New("invalid run name")

var nameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidName reports whether name can be used as a run name
func ValidName(name string) bool {
	return nameRe.MatchString(name)
}

// Workspace is the directory tree of one run
type Workspace struct {
	Root  string
	Name  string // Run name, base of all result file names
	RunID string
}

// New creates the workspace directories below root. Existing directories
// are reused, so later stages can continue in the workspace of earlier ones.
func New(root, name string) (*Workspace, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	ws := &Workspace{Root: root, Name: name, RunID: uuid.New().String()}
	for _, d := range dirs {
		if err := os.MkdirAll(ws.path(d), 0o755); err != nil {
			return nil, err
		}
	}
	log.WithFields(log.Fields{"root": root, "run": ws.RunID}).Debug("workspace ready")
	return ws, nil
}

func (ws *Workspace) path(elem ...string) string {
	return filepath.Join(append([]string{ws.Root}, elem...)...)
}

// Dir returns the path of subdirectory d
func (ws *Workspace) Dir(d string) string {
	return ws.path(d)
}

// Spectra returns the prepared MGF files, sorted by name
func (ws *Workspace) Spectra() ([]string, error) {
	files, err := filepath.Glob(ws.path(SpectraDir, "*.mgf"))
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no spectra in %s", ws.path(SpectraDir))
	}
	return files, nil
}

// ResetSpectra empties the spectra directory, so that peak lists of an
// earlier run in the same workspace are not searched again
func (ws *Workspace) ResetSpectra() error {
	d := ws.path(SpectraDir)
	if err := os.RemoveAll(d); err != nil {
		return err
	}
	return os.MkdirAll(d, 0o755)
}

// Database returns the location of the target/decoy database
func (ws *Workspace) Database() string {
	return ws.path(DatabaseDir, ws.Name+"_concatenated_target_decoy.fasta")
}

// Params returns the location of the identification parameters file
func (ws *Workspace) Params() string {
	return ws.path(ParamsDir, ws.Name+".par")
}

// SearchResult returns the location of the SearchGUI output zip
func (ws *Workspace) SearchResult() string {
	return ws.path(SearchGUIDir, ws.Name+".zip")
}

// Project returns the location of the PeptideShaker project
func (ws *Workspace) Project() string {
	return ws.path(PeptideShakerDir, ws.Name+".psdb")
}

// MzIdentML returns the location of the mzIdentML export
func (ws *Workspace) MzIdentML() string {
	return ws.path(ws.Name + ".mzid")
}

// PSMReport returns the location of the extracted PSM report
func (ws *Workspace) PSMReport(compressed bool) string {
	p := ws.path(ws.Name + "_psm_report.tsv")
	if compressed {
		p += ".gz"
	}
	return p
}

// Summary returns the location of the run summary
func (ws *Workspace) Summary() string {
	return ws.path(ws.Name + "_summary.json")
}

// Config returns the location of the settings used for the run
func (ws *Workspace) Config() string {
	return ws.path(ws.Name + "_config.yaml")
}

// Cleanup removes the intermediate files. Results, the summary, the
// parameters and the logs are kept.
func (ws *Workspace) Cleanup() error {
	for _, d := range intermediates {
		if err := os.RemoveAll(ws.path(d)); err != nil {
			return err
		}
	}
	return nil
}
