// Package config holds the settings of a search run. Settings are read
// from a YAML file; command line flags override them.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"runtime"

	"github.com/klauspost/cpuid"
	"gopkg.in/yaml.v3"

	"github.com/524D/pepsearch/internal/fastadb"
	"github.com/524D/pepsearch/internal/javatool"
	"github.com/524D/pepsearch/internal/mzidentml"
	"github.com/524D/pepsearch/internal/ranges"
)

// ErrInvalidConfig is wrapped by all validation errors
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete configuration of a run
type Config struct {
	Java             string  `yaml:"java"`
	SearchGUIJar     string  `yaml:"searchgui_jar"`
	PeptideShakerJar string  `yaml:"peptideshaker_jar"`
	Threads          int     `yaml:"threads"`
	MaxHeapMB        int     `yaml:"max_heap_mb"`
	Spectra          Spectra `yaml:"spectra"`
	Search           Search  `yaml:"search"`
	Report           Report  `yaml:"report"`
	Contact          Contact `yaml:"contact"`
}

// Spectra controls the preparation of the input peak lists
type Spectra struct {
	TitlePrefix string `yaml:"title_prefix"` // Empty means the file name stem
	PeakRange   string `yaml:"peak_range"`   // m/z range "min:max", empty for no filtering
	MSLevel     int    `yaml:"ms_level"`     // MS level taken from mzML input
}

// Search holds the identification parameters
type Search struct {
	PrecursorTol    float64  `yaml:"precursor_tolerance"`
	PrecursorPPM    bool     `yaml:"precursor_ppm"`
	FragmentTol     float64  `yaml:"fragment_tolerance"`
	FragmentPPM     bool     `yaml:"fragment_ppm"`
	Enzyme          string   `yaml:"enzyme"`
	MissedCleavages int      `yaml:"missed_cleavages"`
	FixedMods       []string `yaml:"fixed_mods"`
	VariableMods    []string `yaml:"variable_mods"`
	MinCharge       int      `yaml:"min_charge"`
	MaxCharge       int      `yaml:"max_charge"`
	Engines         []string `yaml:"engines"`
	DecoyTag        string   `yaml:"decoy_tag"`
}

// Report controls post-processing output
type Report struct {
	Gzip             bool   `yaml:"gzip"`
	MzIdentML        bool   `yaml:"mzidentml"`
	ScoreFilter      string `yaml:"score_filter"`
	KeepIntermediate bool   `yaml:"keep_intermediate"`
}

// Contact is written into the mzIdentML export
type Contact struct {
	FirstName  string `yaml:"first_name"`
	LastName   string `yaml:"last_name"`
	Email      string `yaml:"email"`
	Address    string `yaml:"address"`
	OrgName    string `yaml:"organization"`
	OrgEmail   string `yaml:"organization_email"`
	OrgAddress string `yaml:"organization_address"`
}

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Java:      "java",
		Threads:   DefaultThreads(),
		MaxHeapMB: javatool.DefaultMaxHeapMB(),
		Spectra: Spectra{
			MSLevel: 2,
		},
		Search: Search{
			PrecursorTol:    10,
			PrecursorPPM:    true,
			FragmentTol:     0.02,
			FragmentPPM:     false,
			Enzyme:          "Trypsin",
			MissedCleavages: 2,
			FixedMods:       []string{"Carbamidomethylation of C"},
			VariableMods:    []string{"Oxidation of M"},
			MinCharge:       2,
			MaxCharge:       4,
			Engines:         []string{"xtandem", "msgf"},
			DecoyTag:        fastadb.DefaultDecoyTag,
		},
		Report: Report{
			ScoreFilter: mzidentml.DefaultScoreFilter,
		},
		Contact: Contact{
			FirstName:  "Unknown",
			LastName:   "Unknown",
			Email:      "unknown@example.org",
			Address:    "Unknown",
			OrgName:    "Unknown",
			OrgEmail:   "unknown@example.org",
			OrgAddress: "Unknown",
		},
	}
}

// DefaultThreads returns the number of physical cores
func DefaultThreads() int {
	ncpu := runtime.NumCPU()
	if cpuid.CPU.ThreadsPerCore > 1 {
		if cores := ncpu / cpuid.CPU.ThreadsPerCore; cores > 0 {
			return cores
		}
	}
	return ncpu
}

// Load reads the YAML file at path on top of the defaults
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	if err := cfg.Decode(f); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode overwrites the fields of cfg present in YAML document r.
// Unknown keys are an error.
func (cfg *Config) Decode(r io.Reader) error {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Write writes cfg as YAML, so a run can be repeated with the same settings
func (cfg *Config) Write(path string) error {
	var buf bytes.Buffer
	e := yaml.NewEncoder(&buf)
	e.SetIndent(2)
	if err := e.Encode(cfg); err != nil {
		return err
	}
	if err := e.Close(); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// ParsedPeakRange returns the m/z range for peak filtering. ok is false
// when no filtering is configured.
func (s Spectra) ParsedPeakRange() (lo, hi float64, ok bool, err error) {
	if s.PeakRange == "" {
		return 0, 0, false, nil
	}
	lo, hi, err = ranges.ParseFloat64(s.PeakRange, 0, math.MaxFloat64)
	return lo, hi, err == nil, err
}

// Validate checks that all settings are usable
func (cfg *Config) Validate() error {
	switch {
	case cfg.Threads < 1:
		return fmt.Errorf("threads %d: %w", cfg.Threads, ErrInvalidConfig)
	case cfg.MaxHeapMB < 0:
		return fmt.Errorf("max_heap_mb %d: %w", cfg.MaxHeapMB, ErrInvalidConfig)
	case cfg.Spectra.MSLevel < 1:
		return fmt.Errorf("ms_level %d: %w", cfg.Spectra.MSLevel, ErrInvalidConfig)
	case cfg.Search.PrecursorTol <= 0:
		return fmt.Errorf("precursor_tolerance %v: %w", cfg.Search.PrecursorTol, ErrInvalidConfig)
	case cfg.Search.FragmentTol <= 0:
		return fmt.Errorf("fragment_tolerance %v: %w", cfg.Search.FragmentTol, ErrInvalidConfig)
	case cfg.Search.MissedCleavages < 0:
		return fmt.Errorf("missed_cleavages %d: %w", cfg.Search.MissedCleavages, ErrInvalidConfig)
	case cfg.Search.MinCharge < 1 || cfg.Search.MaxCharge < cfg.Search.MinCharge:
		return fmt.Errorf("charge range %d:%d: %w", cfg.Search.MinCharge, cfg.Search.MaxCharge, ErrInvalidConfig)
	case cfg.Search.Enzyme == "":
		return fmt.Errorf("no enzyme: %w", ErrInvalidConfig)
	case len(cfg.Search.Engines) == 0:
		return fmt.Errorf("no search engines: %w", ErrInvalidConfig)
	}
	if _, _, _, err := cfg.Spectra.ParsedPeakRange(); err != nil {
		return fmt.Errorf("peak_range %q: %v: %w", cfg.Spectra.PeakRange, err, ErrInvalidConfig)
	}
	if cfg.Report.MzIdentML {
		if _, err := mzidentml.ParseScoreFilter(cfg.Report.ScoreFilter); err != nil {
			return fmt.Errorf("score_filter: %v: %w", err, ErrInvalidConfig)
		}
	}
	return nil
}
