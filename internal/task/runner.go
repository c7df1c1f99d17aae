// =============================================================================
// Sales Batch Processor - Task Runner
// =============================================================================
//
// This module runs one batch task the way a pool worker does:
//   1. Download the input blob into the working directory.
//   2. Process it and tag the document with the task metadata.
//   3. Save the document locally and upload it to the output container.
//   4. Upload an execution summary to the logs container.
//   5. Publish the summary.
//
// On any failure an error summary is uploaded to the logs container (best
// effort) and the error is returned, which the CLI turns into exit code 1.
//
// =============================================================================

package task

import (
	"context"
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ginjaninja78/sales-batch-processor/internal/analytics"
	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/notify"
	"github.com/ginjaninja78/sales-batch-processor/internal/processor"
	"github.com/ginjaninja78/sales-batch-processor/internal/storage"
	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

const (
	// StatusSuccess and StatusFailed are the values of Summary.Status.
	StatusSuccess = "success"
	StatusFailed  = "failed"

	// BlobTimestampLayout stamps output and log blob names.
	BlobTimestampLayout = "20060102_150405"

	inputFileName  = "input.json"
	outputFileName = "output.json"
)

// Summary is the execution summary uploaded to the logs container and
// published on completion.
type Summary struct {
	JobID                 string  `json:"job_id"`
	TaskID                string  `json:"task_id"`
	InputBlob             string  `json:"input_blob"`
	OutputBlob            string  `json:"output_blob"`
	StartTime             string  `json:"start_time"`
	EndTime               string  `json:"end_time"`
	ExecutionTimeSeconds  float64 `json:"execution_time_seconds"`
	Status                string  `json:"status"`
	TransactionsProcessed int     `json:"transactions_processed"`
	ValidTransactions     int     `json:"valid_transactions"`
	InvalidTransactions   int     `json:"invalid_transactions"`
}

// ErrorSummary is uploaded when the task fails.
type ErrorSummary struct {
	JobID     string `json:"job_id"`
	TaskID    string `json:"task_id"`
	Status    string `json:"status"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// Runner executes one task.
type Runner struct {
	cfg       config.TaskConfig
	store     storage.Store
	publisher notify.Publisher
	proc      *processor.Processor
	now       func() time.Time
	logger    *zap.SugaredLogger
}

// Option configures a Runner.
type Option func(r *Runner)

// WithClock replaces the wall clock used for blob names and timing.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// WithProcessor replaces the default processor.
func WithProcessor(p *processor.Processor) Option {
	return func(r *Runner) { r.proc = p }
}

// NewRunner creates a Runner. A nil publisher means no events are sent.
func NewRunner(cfg config.TaskConfig, store storage.Store, publisher notify.Publisher, opts ...Option) *Runner {
	if publisher == nil {
		publisher = notify.NopPublisher{}
	}
	r := &Runner{
		cfg:       cfg,
		store:     store,
		publisher: publisher,
		now:       time.Now,
		logger:    logging.Named("task"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.proc == nil {
		r.proc = processor.New(processor.WithClock(r.now))
	}
	return r
}

// Run executes the task. The returned Summary is nil when err is not nil.
func (r *Runner) Run(ctx context.Context) (summary *Summary, err error) {
	defer logging.RecoverToError("task runner", &err)

	r.logger.Infow("Batch task starting",
		"job_id", r.cfg.JobID,
		"task_id", r.cfg.TaskID,
		"input_container", r.cfg.InputContainer,
		"output_container", r.cfg.OutputContainer,
		"input_blob", r.cfg.InputBlobName,
	)

	summary, err = r.run(ctx)
	if err != nil {
		r.logger.Errorw("Batch task failed", "error", err)
		r.uploadErrorLog(ctx, err)
		return nil, err
	}

	r.logger.Infow("Batch task completed",
		"output_blob", summary.OutputBlob,
		"transactions", summary.TransactionsProcessed,
		"valid", summary.ValidTransactions,
		"invalid", summary.InvalidTransactions,
		"seconds", summary.ExecutionTimeSeconds,
	)
	return summary, nil
}

func (r *Runner) run(ctx context.Context) (*Summary, error) {
	start := r.now()

	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.cfg.WorkDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create work dir %s", r.cfg.WorkDir)
	}

	inputPath := filepath.Join(r.cfg.WorkDir, inputFileName)
	if err := r.store.DownloadToFile(ctx, r.cfg.InputContainer, r.cfg.InputBlobName, inputPath); err != nil {
		return nil, errors.Wrap(err, "failed to download input file from storage")
	}

	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", inputPath)
	}
	r.logger.Infow("Downloaded input file", "path", inputPath, "bytes", len(data))

	outcome := r.proc.Process(data)
	doc := outcome.Document()
	doc.SetTaskMetadata(&types.TaskMetadata{
		JobID:           r.cfg.JobID,
		TaskID:          r.cfg.TaskID,
		InputBlob:       r.cfg.InputBlobName,
		InputContainer:  r.cfg.InputContainer,
		OutputContainer: r.cfg.OutputContainer,
	})

	stamp := r.now().Format(BlobTimestampLayout)
	outputBlob := OutputBlobName(r.cfg.InputBlobName, stamp)

	outputPath := filepath.Join(r.cfg.WorkDir, outputFileName)
	if err := writeJSON(outputPath, doc); err != nil {
		return nil, err
	}
	if err := r.store.UploadFromFile(ctx, r.cfg.OutputContainer, outputBlob, outputPath, true); err != nil {
		return nil, errors.Wrap(err, "failed to upload result to storage")
	}

	end := r.now()
	summary := &Summary{
		JobID:                 r.cfg.JobID,
		TaskID:                r.cfg.TaskID,
		InputBlob:             r.cfg.InputBlobName,
		OutputBlob:            outputBlob,
		StartTime:             start.UTC().Format(processor.TimestampLayout),
		EndTime:               end.UTC().Format(processor.TimestampLayout),
		ExecutionTimeSeconds:  analytics.Round2(end.Sub(start).Seconds()),
		Status:                StatusSuccess,
		TransactionsProcessed: outcome.Counters.TotalTransactions,
		ValidTransactions:     outcome.Counters.ValidTransactions,
		InvalidTransactions:   outcome.Counters.InvalidTransactions,
	}

	if r.cfg.LogsContainer != "" {
		logBlob := path.Join("logs", r.cfg.JobID, r.cfg.TaskID+"_"+stamp+".json")
		if err := r.uploadJSON(ctx, logBlob, summary); err != nil {
			r.logger.Warnw("Failed to upload execution log", "blob", logBlob, "error", err)
		}
	}

	if err := r.publisher.Publish(ctx, r.cfg.JobID+"/"+r.cfg.TaskID, summary); err != nil {
		r.logger.Warnw("Failed to publish execution summary", "error", err)
	}

	return summary, nil
}

// uploadErrorLog records a failed run in the logs container. Failures here
// are logged only.
func (r *Runner) uploadErrorLog(ctx context.Context, cause error) {
	if r.cfg.LogsContainer == "" || r.store == nil {
		return
	}

	jobID := orDefault(r.cfg.JobID, types.UnknownLower)
	taskID := orDefault(r.cfg.TaskID, types.UnknownLower)
	logBlob := path.Join("logs", "errors", jobID, taskID+"_error.json")

	errSummary := ErrorSummary{
		JobID:     jobID,
		TaskID:    taskID,
		Status:    StatusFailed,
		Error:     cause.Error(),
		Timestamp: r.now().UTC().Format(processor.TimestampLayout),
	}
	if err := r.uploadJSON(ctx, logBlob, errSummary); err != nil {
		r.logger.Errorw("Failed to upload error log", "blob", logBlob, "error", err)
		return
	}
	r.logger.Infow("Uploaded error log", "blob", logBlob)
}

func (r *Runner) uploadJSON(ctx context.Context, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode log")
	}
	return r.store.UploadFromString(ctx, r.cfg.LogsContainer, name, string(data), true)
}

// OutputBlobName names the uploaded result after the input blob's stem.
func OutputBlobName(inputBlob, stamp string) string {
	base := path.Base(strings.ReplaceAll(inputBlob, `\`, "/"))
	stem := strings.TrimSuffix(base, path.Ext(base))
	return "processed_" + stem + "_" + stamp + ".json"
}

func writeJSON(p string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode result")
	}
	if err := os.WriteFile(p, data, 0644); err != nil {
		return errors.Wrapf(err, "failed to write %s", p)
	}
	return nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
