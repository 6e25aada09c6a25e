package main

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/524D/pepsearch/internal/config"
	"github.com/524D/pepsearch/internal/javatool"
	"github.com/524D/pepsearch/internal/mgf"
	"github.com/524D/pepsearch/internal/ranges"
	"github.com/524D/pepsearch/internal/report"
)

const testMGF = `BEGIN IONS
TITLE=controllerType=0 controllerNumber=1 scan=101
PEPMASS=365.21
CHARGE=2+
110.07 500
365.20 1200
1500.3 10
END IONS

BEGIN IONS
PEPMASS=313.17
CHARGE=3+
120.08 300
END IONS
`

const testFASTA = `>sp|P69905|HBA_HUMAN Hemoglobin subunit alpha
MVLSPADKTNVKAAWGKVGAHAGEYGAEALERMFLSFPTTKTYFPHF
>sp|P68871|HBB_HUMAN Hemoglobin subunit beta
MVHLTPEEKSAVTALWGKVNVDEVGGEALGRLLVVYPWTQRFFESFGDLST
`

const testPSMReport = "\tProtein(s)\tSequence\tSpectrum File\tSpectrum Title\tIdentification Charge\tPrecursor m/z Error [ppm]\tConfidence [%]\tValidation\n" +
	"1\tP69905\tVLSPADK\tsample.mgf\tsample.1\t2+\t1.0\t100.0\tConfident\n" +
	"2\tP68871_REVERSED\tKEEPTLHV\tsample.mgf\tsample.2\t3+\t7.0\t1.0\tNot Validated\n"

const testMzid = `<?xml version="1.0" encoding="UTF-8"?>
<MzIdentML id="PeptideShaker" version="1.2.0">
  <SequenceCollection>
    <Peptide id="PEP1"><PeptideSequence>VLSPADK</PeptideSequence></Peptide>
  </SequenceCollection>
  <DataCollection><AnalysisData><SpectrumIdentificationList id="SIL_1">
    <SpectrumIdentificationResult id="SIR_1" spectrumID="index=0">
      <SpectrumIdentificationItem id="SII_1" chargeState="2" experimentalMassToCharge="365.21" calculatedMassToCharge="365.2" peptide_ref="PEP1" rank="1" passThreshold="true">
        <cvParam accession="MS:1002467" name="PeptideShaker PSM confidence" value="100"/>
      </SpectrumIdentificationItem>
    </SpectrumIdentificationResult>
  </SpectrumIdentificationList></AnalysisData></DataCollection>
</MzIdentML>
`

// fakeJava writes a script that behaves like the SearchGUI and
// PeptideShaker command line tools, creating only the output files.
// searchHook is inserted before SearchCLI writes its output.
func fakeJava(t *testing.T, searchHook string) string {
	t.Helper()
	return fakeJavaReport(t, searchHook, testPSMReport)
}

// fakeJavaReport is fakeJava with PeptideShaker exporting psmReport
func fakeJavaReport(t *testing.T, searchHook, psmReportText string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake java needs a POSIX shell")
	}
	dir := t.TempDir()
	psmReport := filepath.Join(dir, "report.txt")
	mzid := filepath.Join(dir, "export.mzid")
	os.WriteFile(psmReport, []byte(psmReportText), 0o644)
	os.WriteFile(mzid, []byte(testMzid), 0o644)

	script := fmt.Sprintf(`#!/bin/sh
while [ "$1" != "-cp" ]; do shift; done
shift 2
class=$1
shift
while [ $# -gt 0 ]; do
	case "$1" in
	-in) in=$2 ;;
	-out) out=$2 ;;
	-output_folder) folder=$2 ;;
	-output_default_name) name=$2 ;;
	-reference) ref=$2 ;;
	-report_output_folder) reports=$2 ;;
	-output_file) outfile=$2 ;;
	esac
	shift
done
echo "running $class"
case "$class" in
*.FastaCLI)
	decoy="${in%%.fasta}_concatenated_target_decoy.fasta"
	cat "$in" > "$decoy"
	sed 's/^>\([^ ]*\)/>\1_REVERSED/' "$in" >> "$decoy" ;;
*.IdentificationParametersCLI)
	echo params > "$out" ;;
*.SearchCLI)
	%s
	echo zip > "$folder/$name.zip" ;;
*.PeptideShakerCLI)
	echo psdb > "$out"
	cp '%s' "$reports/${ref}_Default_PSM_Report.txt" ;;
*.MzidCLI)
	cp '%s' "$outfile" ;;
esac
`, searchHook, psmReport, mzid)
	java := filepath.Join(dir, "java")
	if err := os.WriteFile(java, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return java
}

// testParams returns parameters for a run on a small MGF file and database
func testParams(t *testing.T, java string) params {
	t.Helper()
	in := t.TempDir()
	mgfFile := filepath.Join(in, "sample.mgf")
	fasta := filepath.Join(in, "hb.fasta")
	os.WriteFile(mgfFile, []byte(testMGF), 0o644)
	os.WriteFile(fasta, []byte(testFASTA), 0o644)

	cfg := config.Default()
	cfg.Java = java
	cfg.SearchGUIJar = "SearchGUI.jar"
	cfg.PeptideShakerJar = "PeptideShaker.jar"
	cfg.MaxHeapMB = 0
	cfg.Threads = 1
	cfg.Spectra.PeakRange = "100:1000"
	cfg.Report.MzIdentML = true
	return params{
		stage:     stageAll,
		cfg:       cfg,
		fasta:     fasta,
		outDir:    filepath.Join(t.TempDir(), "out"),
		name:      "sample",
		inputs:    []string{mgfFile},
		verbosity: infoSilent,
	}
}

func TestRun(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run: error return %v", err)
	}

	b, err := os.ReadFile(filepath.Join(par.outDir, "sample_psm_report.tsv"))
	if err != nil {
		t.Fatalf("PSM report: %v", err)
	}
	if string(b) != testPSMReport {
		t.Errorf("PSM report content differs")
	}

	f, err := os.Open(filepath.Join(par.outDir, "sample_summary.json"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	defer f.Close()
	var summary runSummary
	if err := json.NewDecoder(f).Decode(&summary); err != nil {
		t.Fatalf("summary decode: error return %v", err)
	}
	if summary.PSMs.PSMs != 2 || summary.PSMs.Confident != 1 || summary.PSMs.Decoys != 1 {
		t.Errorf("unexpected PSM summary %+v", summary.PSMs)
	}
	if summary.Database.Entries != 4 || summary.Database.Decoys != 2 {
		t.Errorf("unexpected database summary %+v", summary.Database)
	}
	if summary.MzIdentML == nil || summary.MzIdentML.Accepted != 1 {
		t.Errorf("unexpected mzIdentML summary %+v", summary.MzIdentML)
	}
	if len(summary.Spectra) != 1 || summary.Spectra[0].Spectra != 2 ||
		summary.Spectra[0].PeaksKept != 3 || summary.Spectra[0].PeaksDropped != 1 {
		t.Errorf("unexpected spectra summary %+v", summary.Spectra)
	}
	wantSearched := []mgf.FileStats{{Path: "sample.mgf", Spectra: 2, Peaks: 3, ByCharge: map[string]int{"2+": 1, "3+": 1}}}
	if diff := cmp.Diff(wantSearched, summary.Searched); diff != "" {
		t.Errorf("searched peak lists mismatch (-want +got):\n%s", diff)
	}

	// Intermediate files are removed, logs are kept
	if _, err := os.Stat(filepath.Join(par.outDir, "spectra")); !os.IsNotExist(err) {
		t.Errorf("intermediate spectra not removed")
	}
	logText, err := os.ReadFile(filepath.Join(par.outDir, "logs", "search.log"))
	if err != nil {
		t.Fatalf("search log: %v", err)
	}
	if !strings.Contains(string(logText), "running eu.isas.searchgui.cmd.SearchCLI") {
		t.Errorf("search log does not contain tool output:\n%s", logText)
	}
}

func TestRunStages(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	for _, stage := range []int{stageSpectra, stageSearch, stagePostProcess} {
		par.stage = stage
		if err := run(context.Background(), par); err != nil {
			t.Fatalf("run stage %d: error return %v", stage, err)
		}
		if stage == stageSpectra {
			b, err := os.ReadFile(filepath.Join(par.outDir, "spectra", "sample.mgf"))
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(string(b), "TITLE=sample.1\n") ||
				!strings.Contains(string(b), "TITLE=sample.2\n") ||
				strings.Contains(string(b), "1500.3") {
				t.Errorf("prepared peak list:\n%s", b)
			}
		}
	}
	// Stages run separately keep their intermediate files
	if _, err := os.Stat(filepath.Join(par.outDir, "searchgui", "sample.zip")); err != nil {
		t.Errorf("search result removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "sample_summary.json")); err != nil {
		t.Errorf("no summary: %v", err)
	}
}

// readSummary decodes the run summary in dir
func readSummary(t *testing.T, dir, name string) runSummary {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, name+"_summary.json"))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	defer f.Close()
	var summary runSummary
	if err := json.NewDecoder(f).Decode(&summary); err != nil {
		t.Fatalf("summary decode: error return %v", err)
	}
	return summary
}

func TestRunRepeatedSpectraStage(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	sample := par.inputs[0]
	other := filepath.Join(filepath.Dir(sample), "other.mgf")
	if err := os.WriteFile(other, []byte(testMGF), 0o644); err != nil {
		t.Fatal(err)
	}

	par.stage = stageSpectra
	par.inputs = []string{sample, other}
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run stage %d: error return %v", par.stage, err)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "spectra", "other.mgf")); err != nil {
		t.Fatalf("other.mgf not prepared: %v", err)
	}

	// A full run in the same directory only searches its own inputs
	par.stage = stageAll
	par.inputs = []string{sample}
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run: error return %v", err)
	}
	logText, err := os.ReadFile(filepath.Join(par.outDir, "logs", "search.log"))
	if err != nil {
		t.Fatalf("search log: %v", err)
	}
	if strings.Contains(string(logText), "other.mgf") {
		t.Errorf("peak list of earlier run searched:\n%s", logText)
	}
	if !strings.Contains(string(logText), "sample.mgf") {
		t.Errorf("sample.mgf not searched:\n%s", logText)
	}
	if s := readSummary(t, par.outDir, "sample"); len(s.Searched) != 1 {
		t.Errorf("searched peak lists %+v, expected only sample.mgf", s.Searched)
	}
}

func TestRunDecoyTag(t *testing.T) {
	setupLogging(infoSilent)
	psmReport := strings.Replace(testPSMReport, "P68871_REVERSED", "DECOY_P68871", 1)
	par := testParams(t, fakeJavaReport(t, "", psmReport))
	par.cfg.Search.DecoyTag = "DECOY_"
	par.cfg.Report.MzIdentML = false
	// The database already has decoys, so FastaCLI is not run
	fasta := testFASTA + ">DECOY_P69905\nFHPFYTKTTPFSLFMRELAEGYEGAHAGVKGWAAKVNTKDAPSLVM\n"
	if err := os.WriteFile(par.fasta, []byte(fasta), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run: error return %v", err)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "logs", "database.log")); !os.IsNotExist(err) {
		t.Errorf("FastaCLI run on a database with decoys")
	}
	summary := readSummary(t, par.outDir, "sample")
	if summary.Database.Entries != 3 || summary.Database.Decoys != 1 {
		t.Errorf("unexpected database summary %+v", summary.Database)
	}
	if summary.PSMs.Decoys != 1 || summary.PSMs.Confident != 1 {
		t.Errorf("unexpected PSM summary %+v", summary.PSMs)
	}
}

func TestRunGzipReport(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	par.cfg.Report.Gzip = true
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run: error return %v", err)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "sample_psm_report.tsv")); !os.IsNotExist(err) {
		t.Errorf("uncompressed PSM report written")
	}
	rc, err := report.Open(filepath.Join(par.outDir, "sample_psm_report.tsv.gz"))
	if err != nil {
		t.Fatalf("report.Open: error return %v", err)
	}
	b, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		t.Fatalf("ReadAll: error return %v", err)
	}
	if string(b) != testPSMReport {
		t.Errorf("compressed PSM report content differs")
	}
	if s := readSummary(t, par.outDir, "sample"); s.PSMs.PSMs != 2 || s.PSMs.Decoys != 1 {
		t.Errorf("unexpected PSM summary %+v", s.PSMs)
	}
}

// float64Array encodes vals as an uncompressed mzML binary array
func float64Array(vals ...float64) string {
	var raw []byte
	for _, v := range vals {
		raw = binary.LittleEndian.AppendUint64(raw, math.Float64bits(v))
	}
	return base64.StdEncoding.EncodeToString(raw)
}

const testMzMLTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<indexedmzML xmlns="http://psi.hupo.org/ms/mzml">
<mzML xmlns="http://psi.hupo.org/ms/mzml" version="1.1.0">
<run id="run">
<spectrumList count="1">
<spectrum index="0" id="controllerType=0 controllerNumber=1 scan=7" defaultArrayLength="3">
  <cvParam cvRef="MS" accession="MS:1000511" name="ms level" value="2"/>
  <cvParam cvRef="MS" accession="MS:1000127" name="centroid spectrum" value=""/>
  <scanList count="1"><scan>
    <cvParam cvRef="MS" accession="MS:1000016" name="scan start time" value="0.5" unitAccession="UO:0000031"/>
  </scan></scanList>
  <precursorList count="1"><precursor><selectedIonList count="1"><selectedIon>
    <cvParam cvRef="MS" accession="MS:1000744" name="selected ion m/z" value="365.21"/>
    <cvParam cvRef="MS" accession="MS:1000041" name="charge state" value="2"/>
  </selectedIon></selectedIonList></precursor></precursorList>
  <binaryDataArrayList count="2">
    <binaryDataArray>
      <cvParam cvRef="MS" accession="MS:1000523" name="64-bit float" value=""/>
      <cvParam cvRef="MS" accession="MS:1000576" name="no compression" value=""/>
      <cvParam cvRef="MS" accession="MS:1000514" name="m/z array" value=""/>
      <binary>%s</binary>
    </binaryDataArray>
    <binaryDataArray>
      <cvParam cvRef="MS" accession="MS:1000523" name="64-bit float" value=""/>
      <cvParam cvRef="MS" accession="MS:1000576" name="no compression" value=""/>
      <cvParam cvRef="MS" accession="MS:1000515" name="intensity array" value=""/>
      <binary>%s</binary>
    </binaryDataArray>
  </binaryDataArrayList>
</spectrum>
</spectrumList>
</run>
</mzML>
</indexedmzML>
`

func TestRunMzMLDirectory(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	in := t.TempDir()
	mzML := fmt.Sprintf(testMzMLTemplate, float64Array(150.1, 250.2, 1200), float64Array(40, 80, 5))
	// Extensions of mzML files are matched case insensitively
	if err := os.WriteFile(filepath.Join(in, "run.mzml"), []byte(mzML), 0o644); err != nil {
		t.Fatal(err)
	}
	os.WriteFile(filepath.Join(in, "notes.txt"), []byte("x"), 0o644)
	par.inputs = []string{in}
	if err := run(context.Background(), par); err != nil {
		t.Fatalf("run: error return %v", err)
	}

	summary := readSummary(t, par.outDir, "sample")
	want := []mgf.PrepareResult{{
		Source:       filepath.Join(in, "run.mzml"),
		Output:       filepath.Join(par.outDir, "spectra", "run.mgf"),
		Spectra:      1,
		PeaksKept:    2,
		PeaksDropped: 1,
	}}
	if diff := cmp.Diff(want, summary.Spectra); diff != "" {
		t.Errorf("spectra summary mismatch (-want +got):\n%s", diff)
	}
	wantSearched := []mgf.FileStats{{Path: "run.mgf", Spectra: 1, Peaks: 2, ByCharge: map[string]int{"2+": 1}}}
	if diff := cmp.Diff(wantSearched, summary.Searched); diff != "" {
		t.Errorf("searched peak lists mismatch (-want +got):\n%s", diff)
	}
	// The converted MGF is not left next to the prepared one
	if _, err := os.Stat(filepath.Join(par.outDir, "spectra")); !os.IsNotExist(err) {
		t.Errorf("intermediate spectra not removed")
	}
}

func TestRunToolFailure(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, "exit 7"))
	err := run(context.Background(), par)
	var exitErr *javatool.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("run: error return %v, should be *javatool.ExitError", err)
	}
	want := &javatool.ExitError{
		Step: "search",
		Code: 7,
		Log:  filepath.Join(par.outDir, "logs", "search.log"),
	}
	if diff := cmp.Diff(want, exitErr); diff != "" {
		t.Errorf("ExitError mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "sample_psm_report.tsv")); !os.IsNotExist(err) {
		t.Errorf("report written after failed search")
	}
}

func TestRunMissingOutput(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, "exit 0"))
	err := run(context.Background(), par)
	if !errors.Is(err, javatool.ErrMissingOutput) {
		t.Errorf("run: error return %v, should be ErrMissingOutput", err)
	}
}

func TestRunInvalidPeakRange(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	par.cfg.Spectra.PeakRange = "150-2000"
	if err := run(context.Background(), par); !errors.Is(err, ranges.ErrRangeSpec) {
		t.Errorf("run: error return %v, should be ErrRangeSpec", err)
	}
	if _, err := os.Stat(filepath.Join(par.outDir, "spectra", "sample.mgf")); !os.IsNotExist(err) {
		t.Errorf("peak list prepared without a valid peak range")
	}
}

func TestRunCancelled(t *testing.T) {
	setupLogging(infoSilent)
	par := testParams(t, fakeJava(t, ""))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := run(ctx, par); !errors.Is(err, context.Canceled) {
		t.Errorf("run: error return %v, should be context.Canceled", err)
	}
}

func TestSanitizeParams(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fl := defineFlags(fs)
	err := fs.Parse([]string{
		"-searchgui", "SearchGUI.jar",
		"-peptideshaker", "PeptideShaker.jar",
		"-fasta", "db.fasta",
		"-mz", "150:2000",
		"-engines", "comet, xtandem",
		filepath.Join("data", "run1.mgf.gz"),
	})
	if err != nil {
		t.Fatal(err)
	}
	par, err := sanitizeParams(fs, fl)
	if err != nil {
		t.Fatalf("sanitizeParams: error return %v", err)
	}
	if par.name != "run1" || par.outDir != "run1" {
		t.Errorf("name %q, outDir %q, expected run1", par.name, par.outDir)
	}
	if par.cfg.Spectra.PeakRange != "150:2000" {
		t.Errorf("peak range is %q", par.cfg.Spectra.PeakRange)
	}
	if diff := cmp.Diff([]string{"comet", "xtandem"}, par.cfg.Search.Engines); diff != "" {
		t.Errorf("engines mismatch (-want +got):\n%s", diff)
	}
	if par.cfg.Java != "java" {
		t.Errorf("java is %q", par.cfg.Java)
	}
}

func TestSanitizeParamsDefaultName(t *testing.T) {
	tests := []struct {
		args []string
		name string
	}{
		{[]string{"my sample.mgf"}, "my_sample"},
		{[]string{filepath.Join("data", ".hidden.mgf")}, "hidden"},
		{[]string{"-o", ".", "a.mgf", "b.mgf"}, progName},
		{[]string{"-o", filepath.Join("runs", "day 2"), "a.mgf", "b.mgf"}, "day_2"},
	}
	for _, tc := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fl := defineFlags(fs)
		args := append([]string{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta"}, tc.args...)
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		par, err := sanitizeParams(fs, fl)
		if err != nil {
			t.Errorf("sanitizeParams(%q): error return %v", tc.args, err)
			continue
		}
		if par.name != tc.name {
			t.Errorf("sanitizeParams(%q): name %q, expected %q", tc.args, par.name, tc.name)
		}
	}
}

func TestSanitizeParamsConfigFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "run.yaml")
	os.WriteFile(cfgFile, []byte("searchgui_jar: sg.jar\npeptideshaker_jar: ps.jar\nthreads: 2\n"), 0o644)
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fl := defineFlags(fs)
	if err := fs.Parse([]string{"-config", cfgFile, "-threads", "6", "-fasta", "db.fasta", "a.mgf"}); err != nil {
		t.Fatal(err)
	}
	par, err := sanitizeParams(fs, fl)
	if err != nil {
		t.Fatalf("sanitizeParams: error return %v", err)
	}
	if par.cfg.SearchGUIJar != "sg.jar" || par.cfg.Threads != 6 {
		t.Errorf("config file not merged with flags: %+v", par.cfg)
	}
}

func TestSanitizeParamsErrors(t *testing.T) {
	tests := [][]string{
		{"-stage", "5", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-engines", "mascot", "a.mgf"},
		{"-peptideshaker", "p.jar", "-fasta", "db.fasta", "a.mgf"},
		{"-stage", "3"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-mz", "900:100", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-mz", "150-2000", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-mz", "abc", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-mz", "150", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-name", "a b", "a.mgf"},
		{"-searchgui", "s.jar", "-peptideshaker", "p.jar", "-fasta", "db.fasta", "-name", "..", "a.mgf"},
	}
	for _, args := range tests {
		fs := flag.NewFlagSet("test", flag.ContinueOnError)
		fl := defineFlags(fs)
		if err := fs.Parse(args); err != nil {
			t.Fatal(err)
		}
		if _, err := sanitizeParams(fs, fl); !errors.Is(err, errUsage) {
			t.Errorf("sanitizeParams(%q): error return %v, should be a usage error", args, err)
		}
	}
}
