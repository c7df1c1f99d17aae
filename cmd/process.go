// =============================================================================
// Sales Batch Processor - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the processor over
// local batch files.
//
// COMMAND USAGE:
//   processor process [path...] [flags]
//
//   Each path may be a file or a directory. Directories are scanned for
//   *.json files. With no path and no --file, the configured input
//   directory is scanned.
//
// FLAGS:
//   --file        : Path to a single file to process
//   --output-dir  : Directory for result documents (overrides output_dir)
//   --format      : json or yaml (overrides output_format)
//   --xlsx        : Also write an XLSX report per result
//   --error-log   : Also write a text log of rejected transactions
//   --archive     : Move inputs to the archive directory when done
//   --dry-run     : Process without writing anything
//   --summary-log : Write a run summary file to the output directory
//   --recursive   : Also scan sub-directories of directory arguments
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/pipeline"
	"github.com/ginjaninja78/sales-batch-processor/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var (
	processFile       string
	processOutputDir  string
	processFormat     string
	processXLSX       bool
	processErrorLog   bool
	processArchive    bool
	processDryRun     bool
	processSummaryLog bool
	processRecursive  bool
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process [path...]",
	Short: "Process local batch files",
	Long: `The process command runs every given batch file through validation,
aggregation and anomaly detection, and writes one result document per file.

Files are processed concurrently, at most max_concurrency at a time. A batch
that cannot be parsed still produces a document describing the failure.

On success:
  - The result document is placed in the output directory
  - The input is moved to the archive directory when --archive is set

On error:
  - The input stays where it is
  - Other files keep processing unless continue_on_error is false`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyProcessFlags(cmd, appConfig)
		return runProcess(cmd.Context(), appConfig, args)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&processFile, "file", "", "Path to a single file to process")
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "", "Directory for result documents")
	processCmd.Flags().StringVar(&processFormat, "format", "", "Output format: json or yaml")
	processCmd.Flags().BoolVar(&processXLSX, "xlsx", false, "Also write an XLSX report per result")
	processCmd.Flags().BoolVar(&processErrorLog, "error-log", false, "Also write a text log of rejected transactions")
	processCmd.Flags().BoolVar(&processArchive, "archive", false, "Move inputs to the archive directory when done")
	processCmd.Flags().BoolVar(&processDryRun, "dry-run", false, "Process without writing any files")
	processCmd.Flags().BoolVar(&processSummaryLog, "summary-log", false, "Write a run summary file to the output directory")
	processCmd.Flags().BoolVarP(&processRecursive, "recursive", "r", false, "Also scan sub-directories of directory arguments")
}

// applyProcessFlags lets explicit flags override the loaded configuration.
func applyProcessFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = processOutputDir
	}
	if flags.Changed("format") {
		cfg.OutputFormat = processFormat
	}
	if flags.Changed("xlsx") {
		cfg.XLSXReport = processXLSX
	}
	if flags.Changed("error-log") {
		cfg.WriteErrorLog = processErrorLog
	}
	if flags.Changed("archive") {
		cfg.ArchiveInput = processArchive
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context, cfg *config.Config, args []string) error {
	if cfg.OutputFormat != pipeline.FormatJSON && cfg.OutputFormat != pipeline.FormatYAML {
		return errors.NewInvalidConfig("output format must be json or yaml, got %q", cfg.OutputFormat)
	}

	var summary utils.ProcessingSummary
	summary.StartTime = time.Now()

	// =========================================================================
	// STEP 1: DISCOVER INPUT FILES
	// =========================================================================

	inputs, err := collectInputs(cfg, args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		pterm.Warning.Println("No batch files found.")
		return nil
	}

	if !processDryRun {
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create output directory %s", cfg.OutputDir)
		}
	}

	pterm.Info.Printfln("Processing %d file(s) with up to %d worker(s)", len(inputs), cfg.MaxConcurrency)

	// =========================================================================
	// STEP 2: PROCESS FILES CONCURRENTLY
	// =========================================================================

	opts := pipeline.OptionsFromConfig(cfg)
	opts.DryRun = processDryRun
	results := pipeline.New(opts).RunAll(ctx, inputs)

	// =========================================================================
	// STEP 3: COLLECT RESULTS
	// =========================================================================

	rows := pterm.TableData{{"File", "Batch", "Total", "Valid", "Invalid", "Output"}}
	for _, res := range results {
		info := utils.ProcessedFileInfo{
			InputFile:    res.FilePath,
			OutputFile:   res.OutputFile,
			ArchivePath:  res.ArchivePath,
			BatchID:      res.Stats.BatchID,
			Transactions: res.Stats.Counters.TotalTransactions,
			Valid:        res.Stats.Counters.ValidTransactions,
			Invalid:      res.Stats.Counters.InvalidTransactions,
			ProcessTime:  res.Stats.ProcessingTime,
		}
		summary.Add(info, res.Error)

		if res.Error != nil {
			rows = append(rows, []string{filepath.Base(res.FilePath), "-", "-", "-", "-", pterm.Red(res.Error.Error())})
			continue
		}

		batch := res.Stats.BatchID
		if res.Stats.Failure != "" {
			batch = pterm.Yellow(res.Stats.Failure)
		}
		output := res.OutputFile
		if processDryRun {
			output = "(dry run)"
		}
		rows = append(rows, []string{
			filepath.Base(res.FilePath),
			batch,
			fmt.Sprint(info.Transactions),
			fmt.Sprint(info.Valid),
			fmt.Sprint(info.Invalid),
			output,
		})
	}
	summary.EndTime = time.Now()

	// =========================================================================
	// STEP 4: PRINT SUMMARY
	// =========================================================================

	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		return errors.Wrap(err, "failed to render summary")
	}

	pterm.Printfln("Files: %d  Successful: %d  Failed: %d  Transactions: %d (valid %d, invalid %d)  Time: %s",
		summary.TotalFiles, summary.SuccessfulFiles, summary.FailedFiles,
		summary.TotalTransactions, summary.ValidTransactions, summary.InvalidTransactions,
		summary.EndTime.Sub(summary.StartTime).Round(time.Millisecond))

	if processSummaryLog && !processDryRun {
		path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
		if err != nil {
			return err
		}
		pterm.Info.Printfln("Summary written to %s", path)
	}

	if summary.FailedFiles > 0 {
		return errors.Newf("%d of %d file(s) failed", summary.FailedFiles, summary.TotalFiles)
	}
	pterm.Success.Println("Processing complete")
	return nil
}

// collectInputs resolves the files to process from --file, the arguments,
// or the configured input directory.
func collectInputs(cfg *config.Config, args []string) ([]string, error) {
	if processFile != "" {
		args = append([]string{processFile}, args...)
	}
	if len(args) == 0 {
		args = []string{cfg.InputDir}
	}

	var inputs []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read %s", arg)
		}
		if !info.IsDir() {
			inputs = append(inputs, arg)
			continue
		}

		fm := utils.NewFileManager(arg, cfg.OutputDir, cfg.InputArchiveDir)
		var files []string
		if processRecursive {
			files, err = fm.DiscoverInputFilesRecursive(filepath.Ext(utils.DefaultPattern))
		} else {
			files, err = fm.DiscoverInputFiles(utils.DefaultPattern)
		}
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, files...)
	}
	return inputs, nil
}
