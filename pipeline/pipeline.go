package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/codectx/codectx/ignore"
	"github.com/codectx/codectx/processor"
	"github.com/codectx/codectx/providers/contracts"
	"github.com/codectx/codectx/scanner"
	"github.com/codectx/codectx/scheduler"
	"github.com/codectx/codectx/summary"
)

// Options configures a run.
type Options struct {
	Root           string
	OutputFile     string // relative to Root unless absolute
	Mode           processor.Mode
	ScanAll        bool // reprocess unchanged files too
	TokenThreshold int
	MaxFileSize    int64
	Concurrency    int
	Retry          scheduler.RetryPolicy
	Timeout        time.Duration // per attempt
	IgnorePatterns []string
	Provider       contracts.ISummaryProvider
	Now            func() time.Time

	// Warnf receives non-fatal notices (malformed patterns, skipped
	// files, per-file failures). Nil means silent.
	Warnf func(format string, args ...interface{})
}

// Report summarizes what a run did.
type Report struct {
	Total       int
	Updated     int
	Unchanged   int
	Deleted     int
	Failed      int
	FailedFiles []string
	Skipped     int
	OutputFile  string
}

// Status describes pending work without processing anything.
type Status struct {
	New       []string
	Modified  []string
	Unchanged []string
	Deleted   []string
	Skipped   []scanner.SkippedFile
}

func (o *Options) warnf(format string, args ...interface{}) {
	if o.Warnf != nil {
		o.Warnf(format, args...)
	}
}

func (o *Options) outputPath() string {
	if filepath.IsAbs(o.OutputFile) {
		return o.OutputFile
	}
	return filepath.Join(o.Root, o.OutputFile)
}

func (o *Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// discover runs the matcher and scanner and loads the prior document.
func (o *Options) discover() (*scanner.Result, map[string]summary.Entry, error) {
	patterns := append([]string{}, o.IgnorePatterns...)
	patterns = append(patterns, filepath.ToSlash(o.OutputFile))

	matcher, err := ignore.NewMatcher(o.Root, patterns)
	if err != nil {
		return nil, nil, fmt.Errorf("loading ignore patterns: %w", err)
	}
	for _, p := range matcher.Malformed {
		o.warnf("ignoring malformed pattern %q", p)
	}

	scan, err := scanner.Scan(o.Root, matcher, o.MaxFileSize)
	if err != nil {
		return nil, nil, fmt.Errorf("scanning %s: %w", o.Root, err)
	}
	for _, s := range scan.Skipped {
		o.warnf("skipped %s: %s", s.Path, s.Reason)
	}

	prior, err := summary.Load(o.outputPath())
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", o.OutputFile, err)
	}
	return scan, prior, nil
}

// Run executes a full update: scan, classify, process what changed,
// merge and save. Per-file failures are reported, not fatal; a
// cancelled context aborts without touching the output file.
func Run(ctx context.Context, opts Options) (*Report, error) {
	scan, prior, err := opts.discover()
	if err != nil {
		return nil, err
	}

	cs := summary.Classify(scan.Records, prior, opts.ScanAll)
	jobs := append([]scanner.FileRecord{}, cs.New...)
	jobs = append(jobs, cs.Modified...)

	proc := &processor.Processor{
		Mode:      opts.Mode,
		Threshold: opts.TokenThreshold,
		Provider:  opts.Provider,
		Now:       opts.Now,
	}

	results, err := scheduler.Run(ctx, jobs, proc.Process, opts.Concurrency, opts.Retry, opts.Timeout)
	if err != nil {
		return nil, err
	}

	fresh := make(map[string]summary.Entry, len(results))
	report := &Report{
		Total:      len(scan.Records),
		Unchanged:  len(cs.Unchanged),
		Deleted:    len(cs.Deleted),
		Skipped:    len(scan.Skipped),
		OutputFile: opts.outputPath(),
	}
	for _, res := range results {
		if res.Err != nil {
			report.Failed++
			report.FailedFiles = append(report.FailedFiles, res.Path)
			opts.warnf("failed %s: %v", res.Path, res.Err)
			continue
		}
		fresh[res.Path] = res.Entry
		report.Updated++
	}

	merged := summary.Merge(prior, cs, fresh)
	if err := summary.Save(opts.outputPath(), merged, opts.now()); err != nil {
		return nil, fmt.Errorf("saving %s: %w", opts.OutputFile, err)
	}
	return report, nil
}

// Inspect reports pending work without processing or writing anything.
func Inspect(opts Options) (*Status, error) {
	scan, prior, err := opts.discover()
	if err != nil {
		return nil, err
	}

	cs := summary.Classify(scan.Records, prior, opts.ScanAll)
	status := &Status{
		Deleted: cs.Deleted,
		Skipped: scan.Skipped,
	}
	for _, rec := range cs.New {
		status.New = append(status.New, rec.Path)
	}
	for _, rec := range cs.Modified {
		status.Modified = append(status.Modified, rec.Path)
	}
	for _, rec := range cs.Unchanged {
		status.Unchanged = append(status.Unchanged, rec.Path)
	}
	return status, nil
}
