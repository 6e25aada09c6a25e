// Copyright 2018 Rob Marissen.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/524D/pepsearch/internal/fastadb"
	"github.com/524D/pepsearch/internal/javatool"
	"github.com/524D/pepsearch/internal/mgf"
	"github.com/524D/pepsearch/internal/mzidentml"
	"github.com/524D/pepsearch/internal/mzml"
	"github.com/524D/pepsearch/internal/peptideshaker"
	"github.com/524D/pepsearch/internal/report"
	"github.com/524D/pepsearch/internal/searchgui"
	"github.com/524D/pepsearch/internal/workspace"
)

// runSummary is written as JSON at the end of a run
type runSummary struct {
	Program             string
	Version             string
	OutputFormatVersion string
	RunID               string
	Name                string
	Started             time.Time
	Finished            time.Time
	Spectra             []mgf.PrepareResult `json:",omitempty"`
	Searched            []mgf.FileStats     `json:",omitempty"`
	Database            fastadb.Stats
	PSMs                report.Summary
	MzIdentML           *mzidentml.Summary `json:",omitempty"`
}

type step struct {
	name  string
	title string
	fn    func(ctx context.Context) error
}

type pipeline struct {
	par     params
	ws      *workspace.Workspace
	summary runSummary
}

// run executes the stages selected in par, one step at a time
func run(ctx context.Context, par params) error {
	ws, err := workspace.New(par.outDir, par.name)
	if err != nil {
		return err
	}
	p := &pipeline{par: par, ws: ws}
	p.summary = runSummary{
		Program:             progName,
		Version:             progVersion,
		OutputFormatVersion: outputFormatVersion,
		RunID:               ws.RunID,
		Name:                par.name,
		Started:             time.Now(),
	}
	if err := par.cfg.Write(ws.Config()); err != nil {
		return err
	}

	for _, s := range p.steps() {
		if err := ctx.Err(); err != nil {
			return err
		}
		banner(par.verbosity, "%s", s.title)
		t := time.Now()
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
		if par.verbosity == infoVerbose {
			fmt.Fprintf(os.Stderr, "%s done in %v\n", s.title, time.Since(t).Round(time.Millisecond))
		}
	}

	if par.stage == stageAll && !par.cfg.Report.KeepIntermediate {
		log.Debug("removing intermediate files")
		return ws.Cleanup()
	}
	return nil
}

func (p *pipeline) steps() []step {
	prepare := []step{
		{"spectra", "Preparing peak lists", p.prepareSpectra},
	}
	search := []step{
		{"database", "Generating target/decoy database", p.decoyDatabase},
		{"params", "Writing identification parameters", p.writeParams},
		{"search", "Searching with SearchGUI", p.search},
	}
	post := []step{
		{"peptideshaker", "Post-processing with PeptideShaker", p.postProcess},
		{"report", "Extracting PSM report", p.extractReport},
	}
	if p.par.cfg.Report.MzIdentML {
		post = append(post, step{"mzid", "Exporting mzIdentML", p.exportMzid})
	}
	post = append(post, step{"summary", "Writing summary", p.writeSummary})

	switch p.par.stage {
	case stageSpectra:
		return prepare
	case stageSearch:
		return search
	case stagePostProcess:
		return post
	}
	all := append(prepare, search...)
	return append(all, post...)
}

func (p *pipeline) searchGUI(class string) javatool.Tool {
	t := searchgui.Tool(&p.par.cfg, class, p.ws.Dir(workspace.LogsDir))
	if p.par.verbosity == infoVerbose {
		t.Echo = os.Stderr
	}
	return t
}

func (p *pipeline) peptideShaker(class string) javatool.Tool {
	t := peptideshaker.Tool(&p.par.cfg, class, p.ws.Dir(workspace.LogsDir))
	if p.par.verbosity == infoVerbose {
		t.Echo = os.Stderr
	}
	return t
}

// inputFiles expands directories in the input list into the peak lists
// they contain
func inputFiles(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		fi, err := os.Stat(in)
		if err != nil {
			return nil, err
		}
		if !fi.IsDir() {
			files = append(files, in)
			continue
		}
		peakLists, err := mgf.ListFiles(in)
		if err != nil {
			return nil, err
		}
		entries, err := os.ReadDir(in)
		if err != nil {
			return nil, err
		}
		files = append(files, peakLists...)
		for _, e := range entries {
			if e.Type().IsRegular() && mzml.IsMzML(e.Name()) {
				files = append(files, filepath.Join(in, e.Name()))
			}
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no peak lists found in %v", inputs)
	}
	return files, nil
}

func (p *pipeline) prepareSpectra(ctx context.Context) error {
	files, err := inputFiles(p.par.inputs)
	if err != nil {
		return err
	}
	opts := mgf.PrepareOptions{Prefix: p.par.cfg.Spectra.TitlePrefix}
	lo, hi, ok, err := p.par.cfg.Spectra.ParsedPeakRange()
	if err != nil {
		return fmt.Errorf("peak range %q: %w", p.par.cfg.Spectra.PeakRange, err)
	}
	if ok {
		opts.Filter = &mgf.Range{Min: lo, Max: hi}
	}
	// Peak lists of an earlier run in this workspace must not be searched
	if err := p.ws.ResetSpectra(); err != nil {
		return err
	}
	dstDir := p.ws.Dir(workspace.SpectraDir)
	stems := make(map[string]string, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		stem := mgf.Stem(f)
		if prev, ok := stems[stem]; ok {
			return fmt.Errorf("%s and %s both map to %s.mgf", prev, f, stem)
		}
		stems[stem] = f

		src := f
		if mzml.IsMzML(f) {
			tmpDir, err := os.MkdirTemp(dstDir, ".mzml")
			if err != nil {
				return err
			}
			defer os.RemoveAll(tmpDir)
			var st mzml.ConvertStats
			src, st, err = mzml.ConvertFile(f, tmpDir, p.par.cfg.Spectra.MSLevel)
			if err != nil {
				return err
			}
			fields := log.Fields{"file": f, "skipped": st.NoPrecursor}
			log.WithFields(fields).Debugf("converted %d spectra from mzML", st.Written)
			if st.Profile > 0 {
				log.WithFields(fields).Warnf("%d of %d spectra are profile data, search engines expect centroided peaks",
					st.Profile, st.Written)
			}
		} else if !mgf.IsPeakList(f) {
			return fmt.Errorf("%s: not an MGF or mzML file", f)
		}
		res, err := mgf.PrepareFile(src, dstDir, opts)
		if err != nil {
			return err
		}
		res.Source = f
		log.WithFields(log.Fields{
			"file":    f,
			"spectra": res.Spectra,
			"kept":    res.PeaksKept,
			"dropped": res.PeaksDropped,
		}).Info("prepared peak list")
		p.summary.Spectra = append(p.summary.Spectra, res)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func (p *pipeline) decoyDatabase(ctx context.Context) error {
	tag := p.par.cfg.Search.DecoyTag
	st, err := fastadb.Inspect(p.par.fasta, tag)
	if err != nil {
		return err
	}
	dst := p.ws.Database()
	if st.HasDecoys() {
		log.WithField("decoys", st.Decoys).Info("database already contains decoys")
		return copyFile(p.par.fasta, dst)
	}

	// FastaCLI writes the target/decoy database next to its input
	target := filepath.Join(p.ws.Dir(workspace.DatabaseDir), p.par.name+".fasta")
	if err := copyFile(p.par.fasta, target); err != nil {
		return err
	}
	if fastadb.DecoyPath(target) != dst {
		return fmt.Errorf("unexpected decoy database name %s", fastadb.DecoyPath(target))
	}
	tool := p.searchGUI(searchgui.FastaClass)
	if err := tool.Run(ctx, "database", searchgui.FastaArgs(target)...); err != nil {
		return err
	}
	if err := javatool.CheckOutput(dst); err != nil {
		return err
	}
	st, err = fastadb.Inspect(dst, tag)
	if err != nil {
		return err
	}
	if !st.IsTargetDecoy() {
		log.WithFields(log.Fields{"entries": st.Entries, "decoys": st.Decoys}).
			Warn("decoy count does not match target count")
	}
	return nil
}

func (p *pipeline) writeParams(ctx context.Context) error {
	tool := p.searchGUI(searchgui.ParamsClass)
	if err := tool.Run(ctx, "params", searchgui.ParamsArgs(p.par.cfg.Search, p.ws.Params())...); err != nil {
		return err
	}
	return javatool.CheckOutput(p.ws.Params())
}

func (p *pipeline) search(ctx context.Context) error {
	spectra, err := p.ws.Spectra()
	if err != nil {
		return err
	}
	s := searchgui.Search{
		Spectra:    spectra,
		Fasta:      p.ws.Database(),
		Params:     p.ws.Params(),
		OutputDir:  p.ws.Dir(workspace.SearchGUIDir),
		OutputName: p.par.name,
		Threads:    p.par.cfg.Threads,
		Engines:    p.par.cfg.Search.Engines,
	}
	args, err := s.Args()
	if err != nil {
		return err
	}
	if err := p.searchGUI(searchgui.SearchClass).Run(ctx, "search", args...); err != nil {
		return err
	}
	return javatool.CheckOutput(s.Output())
}

func (p *pipeline) postProcess(ctx context.Context) error {
	for _, f := range []string{p.ws.SearchResult(), p.ws.Database(), p.ws.Params()} {
		if err := javatool.CheckOutput(f); err != nil {
			return fmt.Errorf("results of earlier stage: %w", err)
		}
	}
	spectra, err := p.ws.Spectra()
	if err != nil {
		return err
	}
	proj := peptideshaker.Project{
		Reference:       p.par.name,
		Identifications: p.ws.SearchResult(),
		Spectra:         spectra,
		Fasta:           p.ws.Database(),
		Params:          p.ws.Params(),
		Output:          p.ws.Project(),
		Threads:         p.par.cfg.Threads,
		ReportDir:       p.ws.Dir(workspace.ReportsDir),
		Reports:         []int{peptideshaker.PSMReport},
	}
	if err := p.peptideShaker(peptideshaker.ShakerClass).Run(ctx, "peptideshaker", proj.Args()...); err != nil {
		return err
	}
	return javatool.CheckOutput(p.ws.Project())
}

func (p *pipeline) extractReport(ctx context.Context) error {
	src, err := peptideshaker.FindReport(p.ws.Dir(workspace.ReportsDir), peptideshaker.PSMReport)
	if err != nil {
		return err
	}
	gz := p.par.cfg.Report.Gzip
	if err := report.Extract(src, p.ws.PSMReport(gz), gz); err != nil {
		return err
	}
	log.WithField("file", p.ws.PSMReport(gz)).Info("PSM report written")
	return nil
}

func (p *pipeline) exportMzid(ctx context.Context) error {
	args := peptideshaker.MzidArgs(p.ws.Project(), p.ws.MzIdentML(), p.par.cfg.Contact)
	if err := p.peptideShaker(peptideshaker.MzidClass).Run(ctx, "mzid", args...); err != nil {
		return err
	}
	return javatool.CheckOutput(p.ws.MzIdentML())
}

func (p *pipeline) summarizeMzid() (*mzidentml.Summary, error) {
	filt, err := mzidentml.ParseScoreFilter(p.par.cfg.Report.ScoreFilter)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p.ws.MzIdentML())
	if err != nil {
		return nil, err
	}
	defer f.Close()
	mzIdentML, err := mzidentml.Read(f)
	if err != nil {
		return nil, fmt.Errorf("mzidentml.Read: %w", err)
	}
	s, err := mzidentml.Summarize(&mzIdentML, filt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (p *pipeline) writeSummary(ctx context.Context) error {
	var err error
	p.summary.Database, err = fastadb.Inspect(p.ws.Database(), p.par.cfg.Search.DecoyTag)
	if err != nil {
		return err
	}
	spectra, err := p.ws.Spectra()
	if err != nil {
		return err
	}
	for _, f := range spectra {
		st, err := mgf.Inspect(f)
		if err != nil {
			return err
		}
		st.Path = filepath.Base(f)
		p.summary.Searched = append(p.summary.Searched, st)
	}

	rc, err := report.Open(p.ws.PSMReport(p.par.cfg.Report.Gzip))
	if err != nil {
		return err
	}
	psms, err := report.ReadPSMs(rc, p.par.cfg.Search.DecoyTag)
	rc.Close()
	if err != nil {
		return err
	}
	p.summary.PSMs = report.Summarize(psms)

	if p.par.cfg.Report.MzIdentML {
		if p.summary.MzIdentML, err = p.summarizeMzid(); err != nil {
			return err
		}
	}
	p.summary.Finished = time.Now()
	if err := report.WriteJSON(p.ws.Summary(), p.summary); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"psms":      p.summary.PSMs.PSMs,
		"confident": p.summary.PSMs.Confident,
		"peptides":  p.summary.PSMs.Peptides,
	}).Info("summary written")
	return nil
}
