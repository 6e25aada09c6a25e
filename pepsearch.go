// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"

	"github.com/524D/pepsearch/internal/config"
	"github.com/524D/pepsearch/internal/mgf"
	"github.com/524D/pepsearch/internal/searchgui"
	"github.com/524D/pepsearch/internal/workspace"
)

// Program name and version, written to the run summary
const progName = "pepsearch"

var progVersion = `Unknown`

// Format of the summary, if it ever changes we should still be able to
// parse output from old versions
const outputFormatVersion = "1.0"

const (
	infoDefault = iota
	infoSilent
	infoVerbose
)

// Pipeline stages selected with -stage
const (
	stageAll = iota
	stageSpectra
	stageSearch
	stagePostProcess
)

// Command line parameters after checking and merging with the
// configuration file
type params struct {
	stage     int           // Stages to run (stageAll...)
	cfg       config.Config // Settings from file, defaults and flags
	fasta     string        // Protein database
	outDir    string        // Workspace root
	name      string        // Run name
	inputs    []string      // Peak list files and directories
	verbosity int           // Verbosity of progress messages (infoDefault...)
}

// Flag values, kept separate so that only flags that were set on the
// command line override the configuration file
type flags struct {
	stage         *int
	config        *string
	fasta         *string
	outDir        *string
	name          *string
	java          *string
	searchGUI     *string
	peptideShaker *string
	threads       *int
	heap          *int
	titlePrefix   *string
	mzRange       *string
	msLevel       *int
	engines       *string
	gzip          *bool
	mzid          *bool
	scoreFilter   *string
	keep          *bool
}

var errUsage = errors.New("usage error")

func usageErrorf(format string, a ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{errUsage}, a...)...)
}

// applyFlags copies the flags that were set explicitly into cfg
func applyFlags(fs *flag.FlagSet, fl *flags, cfg *config.Config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "java":
			cfg.Java = *fl.java
		case "searchgui":
			cfg.SearchGUIJar = *fl.searchGUI
		case "peptideshaker":
			cfg.PeptideShakerJar = *fl.peptideShaker
		case "threads":
			cfg.Threads = *fl.threads
		case "heap":
			cfg.MaxHeapMB = *fl.heap
		case "prefix":
			cfg.Spectra.TitlePrefix = *fl.titlePrefix
		case "mz":
			cfg.Spectra.PeakRange = *fl.mzRange
		case "mslevel":
			cfg.Spectra.MSLevel = *fl.msLevel
		case "engines":
			cfg.Search.Engines = splitList(*fl.engines)
		case "gzip":
			cfg.Report.Gzip = *fl.gzip
		case "mzid":
			cfg.Report.MzIdentML = *fl.mzid
		case "scorefilter":
			cfg.Report.ScoreFilter = *fl.scoreFilter
		case "keep":
			cfg.Report.KeepIntermediate = *fl.keep
		}
	})
}

func splitList(s string) []string {
	var l []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			l = append(l, f)
		}
	}
	return l
}

var unsafeNameRe = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// runName turns a file or directory name into a usable run name
func runName(s string) string {
	s = unsafeNameRe.ReplaceAllString(s, "_")
	s = strings.TrimLeft(s, "._-")
	if s == "" {
		return progName
	}
	return s
}

// sanitizeParams checks the parameters, merges them with the configuration
// file and fills in missing names where possible
func sanitizeParams(fs *flag.FlagSet, fl *flags) (params, error) {
	par := params{
		stage:  *fl.stage,
		fasta:  *fl.fasta,
		outDir: *fl.outDir,
		name:   *fl.name,
		inputs: fs.Args(),
	}
	if par.stage < stageAll || par.stage > stagePostProcess {
		return par, usageErrorf("invalid stage %d", par.stage)
	}

	par.cfg = config.Default()
	if *fl.config != "" {
		var err error
		if par.cfg, err = config.Load(*fl.config); err != nil {
			return par, usageErrorf("%v", err)
		}
	}
	applyFlags(fs, fl, &par.cfg)
	if err := par.cfg.Validate(); err != nil {
		return par, usageErrorf("%v", err)
	}

	needSpectra := par.stage == stageAll || par.stage == stageSpectra
	needSearch := par.stage == stageAll || par.stage == stageSearch
	needPost := par.stage == stageAll || par.stage == stagePostProcess
	if needSpectra && len(par.inputs) == 0 {
		return par, usageErrorf("no peak list files given")
	}
	if needSearch && par.fasta == "" {
		return par, usageErrorf("no protein database given (-fasta)")
	}
	if needSearch {
		if par.cfg.SearchGUIJar == "" {
			return par, usageErrorf("location of SearchGUI jar not set (-searchgui)")
		}
		if err := searchgui.ValidateEngines(par.cfg.Search.Engines); err != nil {
			return par, usageErrorf("%v", err)
		}
	}
	if needPost && par.cfg.PeptideShakerJar == "" {
		return par, usageErrorf("location of PeptideShaker jar not set (-peptideshaker)")
	}

	switch {
	case par.name != "":
		if !workspace.ValidName(par.name) {
			return par, usageErrorf("run name %q: use letters, digits, '.', '_' and '-' only", par.name)
		}
	case len(par.inputs) == 1:
		par.name = runName(mgf.Stem(par.inputs[0]))
	case par.outDir != "":
		par.name = runName(filepath.Base(par.outDir))
	default:
		par.name = progName
	}
	if par.outDir == "" {
		par.outDir = par.name
	}
	return par, nil
}

// setupLogging configures logrus for the chosen verbosity
func setupLogging(verbosity int) {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	switch verbosity {
	case infoSilent:
		log.SetLevel(log.ErrorLevel)
	case infoVerbose:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}
}

// banner announces a pipeline step on stderr
func banner(verbosity int, format string, a ...interface{}) {
	if verbosity == infoSilent {
		return
	}
	color.New(color.FgCyan, color.Bold).Fprintf(os.Stderr, "==> "+format+"\n", a...)
}

func usage() {
	exeName := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr,
		`USAGE:
  %s [options] -fasta <database> <peaklist>...

  This program runs a proteomics database search on MGF or mzML peak lists.
  The peak lists are prepared (titles rewritten, peaks filtered), a
  target/decoy database is generated, the spectra are searched with
  SearchGUI and the results are validated with PeptideShaker. The
  resulting PSM report and a JSON summary are written to the output
  directory.

  A peak list argument can be an .mgf, .mgf.gz or .mzML file, or a
  directory, in which case all such files in the directory are used.

OPTIONS:
`, exeName)
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr,
		`
SEARCH ENGINES:
  %s

ENVIRONMENT VARIABLES:
  When environment variable PEPSEARCH_DEBUG=1, intermediate files are kept
  and the output of all tools is shown.

OUTPUT:
  <outdir>/<name>_psm_report.tsv[.gz]  PeptideShaker Default PSM Report
  <outdir>/<name>_summary.json         Run summary
  <outdir>/<name>.mzid                 mzIdentML export (with -mzid)
  <outdir>/<name>_config.yaml          Settings used for the run
  <outdir>/logs/                       Output of each tool invocation

USAGE EXAMPLES:
  %s -searchgui SearchGUI.jar -peptideshaker PeptideShaker.jar \
      -fasta human.fasta yeast.mgf
    Search yeast.mgf against human.fasta plus decoys with default settings.
    Results are written to directory yeast.

  %s -config run.yaml -mz 150:2000 -engines xtandem,comet -fasta human.fasta spectra/
    Use settings from run.yaml, drop peaks outside m/z 150-2000 and search
    all peak lists in directory spectra with X!Tandem and Comet.

  %s -stage 3 -peptideshaker PeptideShaker.jar -o yeast
    Redo post-processing of an earlier search in directory yeast.
`, strings.Join(searchgui.Engines, ", "), exeName, exeName, exeName)
}

func defineFlags(fs *flag.FlagSet) *flags {
	var fl flags
	fl.stage = fs.Int("stage", 0,
		`0 (default): run all stages
1: only prepare the peak lists
2: generate the decoy database, write parameters and search
3: post-process, extract the report and summarize`)
	fl.config = fs.String("config", "",
		"YAML configuration `file`. Flags override values from the file.")
	fl.fasta = fs.String("fasta", "",
		"protein database `file` (FASTA)")
	fl.outDir = fs.String("o", "",
		"output `directory`. Default is the run name.")
	fl.name = fs.String("name", "",
		"run `name`"+`, used for all output file names. Default is the name of
the peak list when there is only one, otherwise the name of the output
directory.`)
	fl.java = fs.String("java", "java",
		"Java `executable`")
	fl.searchGUI = fs.String("searchgui", "",
		"SearchGUI jar `file`")
	fl.peptideShaker = fs.String("peptideshaker", "",
		"PeptideShaker jar `file`")
	fl.threads = fs.Int("threads", config.DefaultThreads(),
		"number of threads for the search tools")
	fl.heap = fs.Int("heap", 0,
		"maximum Java heap in `MiB`. Default is 3/4 of the physical memory.")
	fl.titlePrefix = fs.String("prefix", "",
		"prefix for spectrum titles. Default is the peak list file name.")
	fl.mzRange = fs.String("mz", "",
		"m/z `range`"+` of peaks to keep (e.g. 150:2000).
Default is to keep all peaks.`)
	fl.msLevel = fs.Int("mslevel", 2,
		"MS level of spectra taken from mzML input")
	fl.engines = fs.String("engines", "xtandem,msgf",
		"comma separated `list` of search engines")
	fl.gzip = fs.Bool("gzip", false,
		"compress the PSM report")
	fl.mzid = fs.Bool("mzid", false,
		"also export identifications as mzIdentML and add them to the summary")
	fl.scoreFilter = fs.String("scorefilter", "MS:1002467(95:)MS:1002466(0.99:)",
		`filter for PSM scores used in the mzIdentML summary. Format:
<CVterm1|scorename1>([<minscore1>]:[<maxscore1>])...
When multiple score names/CV terms are specified, the first one on the list
that matches a score in the input file will be used.
  MS:1002467 (PeptideShaker PSM confidence)
  MS:1002466 (PeptideShaker PSM score)
 `)
	fl.keep = fs.Bool("keep", false,
		"keep intermediate files (prepared spectra, database, search results)")
	return &fl
}

func main() {
	fl := defineFlags(flag.CommandLine)
	version := flag.Bool("version", false,
		`Show software version`)
	verbose := flag.Bool("verbose", false,
		`Print more verbose progress information, including tool output`)
	quiet := flag.Bool("quiet", false,
		`Don't print any output except for errors`)
	flag.Usage = usage
	flag.Parse()
	if *version {
		if progVersion == `Unknown` {
			progVersion = `Unknown
Please build this program with script 'build.sh' so that the git version is shown here.`
		}
		fmt.Fprintf(os.Stderr, "%s version %s\n", progName, progVersion)
		return
	}

	par, err := sanitizeParams(flag.CommandLine, fl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\nType %s --help for usage\n",
			err, filepath.Base(os.Args[0]))
		os.Exit(2)
	}
	if *verbose {
		par.verbosity = infoVerbose
	}
	if *quiet {
		par.verbosity = infoSilent
	}
	// Keep intermediate files and log everything when PEPSEARCH_DEBUG=1
	if os.Getenv("PEPSEARCH_DEBUG") == `1` {
		par.cfg.Report.KeepIntermediate = true
		par.verbosity = infoVerbose
	}
	setupLogging(par.verbosity)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, par); err != nil {
		stop()
		log.Fatalf("run: error return %v", err)
	}
}
