// Package searchgui builds the command lines of the SearchGUI command
// line tools
package searchgui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/524D/pepsearch/internal/config"
	"github.com/524D/pepsearch/internal/javatool"
)

// Main classes in the SearchGUI jar
const (
	FastaClass  = "eu.isas.searchgui.cmd.FastaCLI"
	ParamsClass = "eu.isas.searchgui.cmd.IdentificationParametersCLI"
	SearchClass = "eu.isas.searchgui.cmd.SearchCLI"
)

// ErrUnknownEngine is returned for search engine names SearchGUI doesn't know
var ErrUnknownEngine = errors.New("unknown search engine")

// Engines lists the search engine switches of SearchCLI in the order
// SearchCLI documents them
var Engines = []string{
	"xtandem",
	"myrimatch",
	"ms_amanda",
	"msgf",
	"omssa",
	"comet",
	"tide",
	"andromeda",
	"meta_morpheus",
	"sage",
	"novor",
	"directag",
}

// ValidateEngines checks that all names are known engines
func ValidateEngines(names []string) error {
	if len(names) == 0 {
		return fmt.Errorf("no engine selected: %w", ErrUnknownEngine)
	}
	for _, n := range names {
		if !isEngine(n) {
			return fmt.Errorf("%q: %w", n, ErrUnknownEngine)
		}
	}
	return nil
}

func isEngine(name string) bool {
	for _, e := range Engines {
		if e == name {
			return true
		}
	}
	return false
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func float(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Tool returns the SearchGUI tool for running class
func Tool(cfg *config.Config, class, logDir string) javatool.Tool {
	return javatool.Tool{
		Name:      "SearchGUI",
		Java:      cfg.Java,
		Jar:       cfg.SearchGUIJar,
		MainClass: class,
		MaxHeapMB: cfg.MaxHeapMB,
		LogDir:    logDir,
	}
}

// FastaArgs returns the FastaCLI arguments for appending decoys to fasta
func FastaArgs(fasta string) []string {
	return []string{"-in", fasta, "-decoy"}
}

// ParamsArgs returns the IdentificationParametersCLI arguments that
// write the search settings to parFile
func ParamsArgs(s config.Search, parFile string) []string {
	args := []string{
		"-out", parFile,
		"-prec_tol", float(s.PrecursorTol),
		"-prec_ppm", boolFlag(s.PrecursorPPM),
		"-frag_tol", float(s.FragmentTol),
		"-frag_ppm", boolFlag(s.FragmentPPM),
		"-enzyme", s.Enzyme,
		"-mc", strconv.Itoa(s.MissedCleavages),
		"-min_charge", strconv.Itoa(s.MinCharge),
		"-max_charge", strconv.Itoa(s.MaxCharge),
		"-fi", "b",
		"-ri", "y",
	}
	if len(s.FixedMods) > 0 {
		args = append(args, "-fixed_mods", strings.Join(s.FixedMods, ","))
	}
	if len(s.VariableMods) > 0 {
		args = append(args, "-variable_mods", strings.Join(s.VariableMods, ","))
	}
	return args
}

// Search is a single SearchCLI invocation
type Search struct {
	Spectra    []string // MGF files
	Fasta      string   // Target/decoy database
	Params     string   // Identification parameters file
	OutputDir  string
	OutputName string // Name of the result zip, without extension
	Threads    int
	Engines    []string
}

// Output returns the path of the zip file SearchCLI writes
func (s Search) Output() string {
	return filepath.Join(s.OutputDir, s.OutputName+".zip")
}

// Args returns the SearchCLI arguments
func (s Search) Args() ([]string, error) {
	if err := ValidateEngines(s.Engines); err != nil {
		return nil, err
	}
	args := []string{
		"-spectrum_files", strings.Join(s.Spectra, ","),
		"-fasta_file", s.Fasta,
		"-output_folder", s.OutputDir,
		"-id_params", s.Params,
		"-threads", strconv.Itoa(s.Threads),
		"-output_default_name", s.OutputName,
		"-output_option", "0",
	}
	selected := make(map[string]bool, len(s.Engines))
	for _, e := range s.Engines {
		selected[e] = true
	}
	for _, e := range Engines {
		args = append(args, "-"+e, boolFlag(selected[e]))
	}
	return args, nil
}
