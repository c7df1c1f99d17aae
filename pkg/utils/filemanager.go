// =============================================================================
// Sales Batch Processor - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for local processing:
//   - Batch file discovery
//   - Input archival (moving processed files)
//   - Output file naming
//   - Run summary logs
//
// ARCHIVAL STRATEGY:
//   - Input files are moved to the input archive after their result is written
//   - Files whose processing failed stay where they are
//   - With UseTimestampSubdirs, archives are split into YYYY/MM/DD folders
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
)

// DefaultPattern matches batch documents.
const DefaultPattern = "*.json"

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for local processing.
type FileManager struct {
	// InputDir is the directory where batch files are placed.
	InputDir string

	// OutputDir is the directory where result files are placed.
	OutputDir string

	// InputArchiveDir is the directory for archived input files.
	InputArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: input_archive/2024/01/15/batch.json
	UseTimestampSubdirs bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(inputDir, outputDir, inputArchiveDir string) *FileManager {
	return &FileManager{
		InputDir:        inputDir,
		OutputDir:       outputDir,
		InputArchiveDir: inputArchiveDir,
		Now:             time.Now,
	}
}

func (fm *FileManager) now() time.Time {
	if fm.Now == nil {
		return time.Now()
	}
	return fm.Now()
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverInputFiles returns the files in the input directory that match
// pattern (DefaultPattern when empty), sorted by name.
func (fm *FileManager) DiscoverInputFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}

	files, err := filepath.Glob(filepath.Join(fm.InputDir, pattern))
	if err != nil {
		return nil, errors.Wrap(err, "failed to scan input directory")
	}

	result := make([]string, 0, len(files))
	for _, file := range files {
		info, err := os.Stat(file)
		if err != nil || info.IsDir() {
			continue
		}
		result = append(result, file)
	}

	sort.Strings(result)
	return result, nil
}

// DiscoverInputFilesRecursive walks the input directory and returns every
// file with the given extension (case-insensitive), sorted by path.
func (fm *FileManager) DiscoverInputFilesRecursive(extension string) ([]string, error) {
	var files []string

	err := filepath.Walk(fm.InputDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if extension == "" || strings.HasSuffix(strings.ToLower(path), strings.ToLower(extension)) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk input directory")
	}

	sort.Strings(files)
	return files, nil
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory and returns
// its new path. An existing archived file of the same name is replaced.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	archivePath := fm.archivePath(filePath)

	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return "", errors.Wrap(err, "failed to create archive directory")
	}

	if err := os.Rename(filePath, archivePath); err != nil {
		// Cross-device moves fall back to copy and delete.
		if err := copyFile(filePath, archivePath); err != nil {
			return "", errors.Wrap(err, "failed to copy file to archive")
		}
		if err := os.Remove(filePath); err != nil {
			return "", errors.Wrap(err, "failed to remove original file")
		}
	}

	return archivePath, nil
}

func (fm *FileManager) archivePath(filePath string) string {
	fileName := filepath.Base(filePath)

	if fm.UseTimestampSubdirs {
		now := fm.now()
		return filepath.Join(
			fm.InputArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName,
		)
	}

	return filepath.Join(fm.InputArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// Stem returns the file name without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// GenerateOutputFileName builds an output file name from a format.
//
// PARAMETERS:
//   - format: The name format. Placeholders:
//       {uuid}      - A random UUID
//       {timestamp} - Current UTC time (YYYYMMDD_HHMMSS)
//       {date}      - Current UTC date (YYYYMMDD)
//       {time}      - Current UTC time (HHMMSS)
//     plus one {key} for every entry of params.
//   - params: Extra placeholder values, such as "stem".
//   - ext: The extension to ensure, including the dot.
//   - now: The time to stamp.
//
// EXAMPLE:
//   format: "processed_{stem}_{timestamp}"
//   params: {"stem": "batch_001"}
//   output: "processed_batch_001_20240115_143022.json"
func GenerateOutputFileName(format string, params map[string]string, ext string, now time.Time) string {
	utc := now.UTC()
	replacements := map[string]string{
		"{timestamp}": utc.Format("20060102_150405"),
		"{date}":      utc.Format("20060102"),
		"{time}":      utc.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	if strings.Contains(result, "{uuid}") {
		result = strings.ReplaceAll(result, "{uuid}", uuid.New().String())
	}
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}
	return result
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime           time.Time
	EndTime             time.Time
	TotalFiles          int
	SuccessfulFiles     int
	FailedFiles         int
	TotalTransactions   int
	ValidTransactions   int
	InvalidTransactions int
	ProcessedFiles      []ProcessedFileInfo
	FailedFilesList     []FailedFileInfo
}

// ProcessedFileInfo contains information about a successfully processed file.
type ProcessedFileInfo struct {
	InputFile    string
	OutputFile   string
	ArchivePath  string
	BatchID      string
	Transactions int
	Valid        int
	Invalid      int
	ProcessTime  time.Duration
}

// FailedFileInfo contains information about a failed file.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// Add records one file outcome.
func (s *ProcessingSummary) Add(info ProcessedFileInfo, err error) {
	s.TotalFiles++
	if err != nil {
		s.FailedFiles++
		s.FailedFilesList = append(s.FailedFilesList, FailedFileInfo{
			InputFile:    info.InputFile,
			ErrorMessage: err.Error(),
		})
		return
	}
	s.SuccessfulFiles++
	s.TotalTransactions += info.Transactions
	s.ValidTransactions += info.Valid
	s.InvalidTransactions += info.Invalid
	s.ProcessedFiles = append(s.ProcessedFiles, info)
}

// WriteSummaryLog writes a processing summary to a text file in outputDir
// and returns its path.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir,
		fmt.Sprintf("processing_summary_%s.txt", summary.EndTime.UTC().Format("20060102_150405")))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", errors.Wrap(err, "failed to create summary file")
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	rule := strings.Repeat("=", 80) + "\n"

	fmt.Fprintf(writer, "Sales Batch Processor - Processing Summary\n%s\n", rule)
	fmt.Fprintf(writer, "Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String())
	fmt.Fprintf(writer, "Statistics:\n"+
		"  Total Files:          %d\n"+
		"  Successful:           %d\n"+
		"  Failed:               %d\n"+
		"  Total Transactions:   %d\n"+
		"  Valid Transactions:   %d\n"+
		"  Invalid Transactions: %d\n\n",
		summary.TotalFiles,
		summary.SuccessfulFiles,
		summary.FailedFiles,
		summary.TotalTransactions,
		summary.ValidTransactions,
		summary.InvalidTransactions)

	if len(summary.ProcessedFiles) > 0 {
		fmt.Fprintf(writer, "Successful Files:\n%s", strings.Repeat("-", 80)+"\n")
		for _, pf := range summary.ProcessedFiles {
			fmt.Fprintf(writer, "  Input:        %s\n", pf.InputFile)
			fmt.Fprintf(writer, "  Output:       %s\n", pf.OutputFile)
			fmt.Fprintf(writer, "  Batch:        %s\n", pf.BatchID)
			fmt.Fprintf(writer, "  Transactions: %d (valid %d, invalid %d)\n", pf.Transactions, pf.Valid, pf.Invalid)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		fmt.Fprintf(writer, "Failed Files:\n%s", strings.Repeat("-", 80)+"\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	fmt.Fprintf(writer, "%sEnd of Summary\n", rule)

	if err := writer.Flush(); err != nil {
		return "", errors.Wrap(err, "failed to flush summary file")
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func copyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
