package utils_test

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/pkg/utils"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.json"))
	touch(t, filepath.Join(dir, "a.json"))
	touch(t, filepath.Join(dir, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "dir.json"), 0755))
	touch(t, filepath.Join(dir, "nested", "c.json"))

	fm := utils.NewFileManager(dir, "", "")

	files, err := fm.DiscoverInputFiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")}, files)

	all, err := fm.DiscoverInputFilesRecursive(".JSON")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "nested", "c.json"),
	}, all)
}

func TestArchiveInputFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in", "batch.json")
	touch(t, src)

	fm := utils.NewFileManager(filepath.Join(dir, "in"), "", filepath.Join(dir, "archive"))
	fm.UseTimestampSubdirs = true
	fm.Now = func() time.Time { return time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC) }

	archived, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "archive", "2024", "01", "05", "batch.json"), archived)
	assert.False(t, utils.FileExists(src))
	assert.True(t, utils.FileExists(archived))
}

func TestGenerateOutputFileName(t *testing.T) {
	now := time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

	tests := []struct {
		name   string
		format string
		ext    string
		want   string
	}{
		{name: "default", format: "processed_{stem}_{timestamp}", ext: ".json", want: "processed_batch_001_20240115_143022.json"},
		{name: "date and time", format: "{date}/{time}_{stem}", ext: ".yaml", want: "20240115/143022_batch_001.yaml"},
		{name: "extension kept", format: "{stem}.json", ext: ".json", want: "batch_001.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := utils.GenerateOutputFileName(tt.format, map[string]string{"stem": "batch_001"}, tt.ext, now)
			assert.Equal(t, tt.want, got)
		})
	}

	withID := utils.GenerateOutputFileName("{stem}_{uuid}", map[string]string{"stem": "b"}, ".json", now)
	assert.Regexp(t, regexp.MustCompile(`^b_[0-9a-f-]{36}\.json$`), withID)
}

func TestStem(t *testing.T) {
	assert.Equal(t, "batch_001", utils.Stem("/data/in/batch_001.json"))
	assert.Equal(t, "noext", utils.Stem("noext"))
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	var summary utils.ProcessingSummary
	summary.StartTime = start
	summary.EndTime = start.Add(3 * time.Second)
	summary.Add(utils.ProcessedFileInfo{
		InputFile:    "a.json",
		OutputFile:   "processed_a.json",
		BatchID:      "B-1",
		Transactions: 10,
		Valid:        8,
		Invalid:      2,
	}, nil)
	summary.Add(utils.ProcessedFileInfo{InputFile: "b.json"}, errors.New("permission denied"))

	assert.Equal(t, 2, summary.TotalFiles)
	assert.Equal(t, 1, summary.SuccessfulFiles)
	assert.Equal(t, 1, summary.FailedFiles)
	assert.Equal(t, 8, summary.ValidTransactions)

	path, err := utils.WriteSummaryLog(summary, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processing_summary_20240115_100003.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "Total Files:          2")
	assert.Contains(t, text, "Transactions: 10 (valid 8, invalid 2)")
	assert.Contains(t, text, "Error: permission denied")
	assert.Contains(t, text, "Duration:       3s")
}
