// =============================================================================
// Sales Batch Processor - File Pipeline
// =============================================================================
//
// This module runs the processor over local batch files. It orchestrates the
// whole pipeline for a single file, and fans out over many files with a
// bounded number of workers.
//
// PIPELINE:
//   1. Read the input file
//   2. Process it into a Result or a Failure document
//   3. Write the document as JSON or YAML
//   4. Optionally render the Result as an XLSX workbook
//   5. Optionally write a plain text validation error log
//   6. Optionally archive the input file
//
// A Failure document is still an output: the file counts as processed and
// the document records why the batch could not be used.
//
// CONCURRENCY:
//   RunAll processes files in parallel, at most MaxConcurrency at a time.
//   The Processor is safe for concurrent use; nothing else is shared.
//
// =============================================================================

package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/processor"
	"github.com/ginjaninja78/sales-batch-processor/internal/validation"
	"github.com/ginjaninja78/sales-batch-processor/internal/xlsxreport"
	"github.com/ginjaninja78/sales-batch-processor/pkg/utils"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of processing a single file.
type Result struct {
	// FilePath is the path to the input file that was processed.
	FilePath string

	// OutputFile is the path to the written document. Empty on failure or
	// in a dry run.
	OutputFile string

	// ReportFile is the path to the XLSX rendering, if one was written.
	ReportFile string

	// ErrorLogFile is the path to the validation error log, if one was written.
	ErrorLogFile string

	// ArchivePath is where the input file was moved, if it was archived.
	ArchivePath string

	// Success indicates the document was produced (and written, unless dry run).
	Success bool

	// Error contains the error if processing failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// BatchID is the batch identifier of a processed batch.
	BatchID string

	// Failure is the error kind of a Failure document, empty for a Result.
	Failure string

	// Counters are the processor's transaction counters.
	Counters processor.Counters

	// ProcessingTime is the time taken to process the file.
	ProcessingTime time.Duration
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options control what the pipeline writes.
type Options struct {
	OutputDir        string
	OutputFormat     string
	OutputNameFormat string
	XLSXReport       bool
	WriteErrorLog    bool
	ArchiveInput     bool
	ArchiveByDate    bool
	InputArchiveDir  string
	DryRun           bool
	MaxConcurrency   int
	ContinueOnError  bool
}

// OptionsFromConfig copies the file processing settings from cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		OutputDir:        cfg.OutputDir,
		OutputFormat:     cfg.OutputFormat,
		OutputNameFormat: cfg.OutputNameFormat,
		XLSXReport:       cfg.XLSXReport,
		WriteErrorLog:    cfg.WriteErrorLog,
		ArchiveInput:     cfg.ArchiveInput,
		ArchiveByDate:    cfg.ArchiveByDate,
		InputArchiveDir:  cfg.InputArchiveDir,
		MaxConcurrency:   cfg.MaxConcurrency,
		ContinueOnError:  cfg.ContinueOnError,
	}
}

// =============================================================================
// PIPELINE
// =============================================================================

// Pipeline processes local batch files.
type Pipeline struct {
	opts   Options
	proc   *processor.Processor
	files  *utils.FileManager
	now    func() time.Time
	logger *zap.SugaredLogger
}

// Option configures a Pipeline.
type Option func(p *Pipeline)

// WithClock replaces the wall clock used for output names.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithProcessor replaces the default processor.
func WithProcessor(proc *processor.Processor) Option {
	return func(p *Pipeline) { p.proc = proc }
}

// New creates a Pipeline.
func New(opts Options, options ...Option) *Pipeline {
	if opts.OutputFormat == "" {
		opts.OutputFormat = FormatJSON
	}
	if opts.OutputNameFormat == "" {
		opts.OutputNameFormat = "processed_{stem}_{timestamp}"
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = 1
	}

	p := &Pipeline{
		opts:   opts,
		now:    time.Now,
		logger: logging.Named("pipeline"),
	}
	for _, o := range options {
		o(p)
	}
	if p.proc == nil {
		p.proc = processor.New()
	}
	p.files = utils.NewFileManager("", opts.OutputDir, opts.InputArchiveDir)
	p.files.Now = p.now
	p.files.UseTimestampSubdirs = opts.ArchiveByDate
	return p
}

// Run executes the pipeline for one file.
func (p *Pipeline) Run(path string) (result Result) {
	start := p.now()
	result.FilePath = path

	defer func() {
		if r := recover(); r != nil {
			logging.Errorw("panic recovered", "source", "pipeline", "file", path, "panic", r)
			result.Success = false
			result.Error = errors.Newf("panic while processing %s: %v", path, r)
		}
	}()

	p.logger.Infow("Processing file", "file", path)

	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	data, err := os.ReadFile(path)
	if err != nil {
		result.Error = errors.Wrapf(err, "failed to read %s", path)
		return result
	}

	// =========================================================================
	// STEP 2: PROCESS
	// =========================================================================

	outcome := p.proc.Process(data)
	result.Stats.Counters = outcome.Counters
	if outcome.OK() {
		result.Stats.BatchID = outcome.Result.BatchID
	} else {
		result.Stats.Failure = outcome.Failure.Error
		p.logger.Warnw("Batch produced a failure document",
			"file", path, "error", outcome.Failure.Error, "details", outcome.Failure.Details)
	}

	if p.opts.DryRun {
		result.Success = true
		result.Stats.ProcessingTime = p.now().Sub(start)
		return result
	}

	// =========================================================================
	// STEP 3: WRITE DOCUMENT
	// =========================================================================

	ext := "." + p.opts.OutputFormat
	name := utils.GenerateOutputFileName(p.opts.OutputNameFormat,
		map[string]string{"stem": utils.Stem(path)}, ext, p.now())
	outputPath := filepath.Join(p.opts.OutputDir, name)
	base := strings.TrimSuffix(outputPath, ext)

	if err := writeDocument(outputPath, p.opts.OutputFormat, outcome); err != nil {
		result.Error = err
		return result
	}
	result.OutputFile = outputPath
	p.logger.Infow("Wrote output", "file", outputPath)

	// =========================================================================
	// STEP 4: XLSX REPORT
	// =========================================================================

	if p.opts.XLSXReport && outcome.OK() {
		reportPath := base + ".xlsx"
		if err := xlsxreport.Write(outcome.Result, reportPath); err != nil {
			result.Error = err
			return result
		}
		result.ReportFile = reportPath
	}

	// =========================================================================
	// STEP 5: VALIDATION ERROR LOG
	// =========================================================================

	if p.opts.WriteErrorLog && outcome.OK() && len(outcome.Result.Validation.ValidationErrors) > 0 {
		logPath := base + "_errors.txt"
		if err := validation.WriteErrorLog(outcome.Result.Validation.ValidationErrors, logPath); err != nil {
			result.Error = err
			return result
		}
		result.ErrorLogFile = logPath
	}

	// =========================================================================
	// STEP 6: ARCHIVE INPUT
	// =========================================================================

	if p.opts.ArchiveInput {
		archived, err := p.files.ArchiveInputFile(path)
		if err != nil {
			// The output is already written; keep the input where it is.
			p.logger.Warnw("Failed to archive input", "file", path, "error", err)
		} else {
			result.ArchivePath = archived
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = p.now().Sub(start)
	return result
}

// RunAll processes paths concurrently and returns one Result per path, in
// the same order. Unless ContinueOnError is set, files not yet started when
// a file fails are reported as skipped.
func (p *Pipeline) RunAll(ctx context.Context, paths []string) []Result {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]Result, len(paths))
	sem := make(chan struct{}, p.opts.MaxConcurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			results[i] = skipped(path, ctx.Err())
			continue
		}
		if err := ctx.Err(); err != nil {
			<-sem
			results[i] = skipped(path, err)
			continue
		}

		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = p.Run(path)
			if !results[i].Success && !p.opts.ContinueOnError {
				cancel()
			}
		}(i, path)
	}

	wg.Wait()
	return results
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func skipped(path string, cause error) Result {
	return Result{FilePath: path, Error: errors.Wrap(cause, "skipped")}
}

func writeDocument(path, format string, outcome processor.Outcome) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(outcome)
	case FormatJSON:
		data, err = json.MarshalIndent(outcome, "", "  ")
	default:
		return errors.Newf("unsupported output format %q", format)
	}
	if err != nil {
		return errors.Wrap(err, "failed to encode document")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, "failed to create output directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}
