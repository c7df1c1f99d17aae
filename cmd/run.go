// =============================================================================
// Sales Batch Processor - Run Command
// =============================================================================
//
// This file defines the 'run' command, the entry point of a batch worker.
// The task is described by the environment:
//
//   STORAGE_ROOT or STORAGE_ACCOUNT_NAME  where the containers live
//   INPUT_BLOB_NAME                       the batch to process (required)
//   INPUT_CONTAINER / OUTPUT_CONTAINER    default batch-input / batch-output
//   LOGS_CONTAINER                        default batch-logs
//   JOB_ID / TASK_ID                      identify the task in logs
//   KAFKA_BROKERS / KAFKA_TOPIC           optional completion events
//
// The process exits with status 1 when the task fails.
//
// =============================================================================

package cmd

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/notify"
	"github.com/ginjaninja78/sales-batch-processor/internal/storage"
	"github.com/ginjaninja78/sales-batch-processor/internal/task"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one batch task configured by the environment",
	Long: `The run command executes one batch task: it downloads the input blob,
processes it, uploads the result document to the output container and an
execution summary to the logs container.

On failure an error summary is uploaded to the logs container and the
command exits with status 1.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runTask(cmd, appConfig)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runTask(cmd *cobra.Command, cfg *config.Config) error {
	if err := cfg.Task.Validate(); err != nil {
		return err
	}

	root := cfg.Task.ResolvedStorageRoot()
	store, err := storage.NewFileStore(root)
	if err != nil {
		return errors.WithHint(err, "mount the storage account or set STORAGE_ROOT to an existing directory")
	}

	publisher, err := notify.New(cfg.Kafka)
	if err != nil {
		return err
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logging.Warnw("Failed to close publisher", "error", err)
		}
	}()

	summary, err := task.NewRunner(cfg.Task, store, publisher).Run(cmd.Context())
	if err != nil {
		return errors.Wrapf(err, "task %s/%s failed", cfg.Task.JobID, cfg.Task.TaskID)
	}

	pterm.Success.Printfln("Task %s/%s: %d transactions (valid %d, invalid %d) -> %s in %.2fs",
		summary.JobID, summary.TaskID,
		summary.TransactionsProcessed, summary.ValidTransactions, summary.InvalidTransactions,
		summary.OutputBlob, summary.ExecutionTimeSeconds)
	return nil
}
