// =============================================================================
// Sales Batch Processor - Main Entry Point
// =============================================================================
//
// USAGE:
//   processor process   - Process local batch files
//   processor run       - Run one batch task configured by the environment
//   processor watch     - Process batch files as they arrive
//   processor generate  - Write synthetic batches
//   processor config    - Print the effective configuration
//   processor version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Validation, analytics, anomaly detection and the
//                  storage, task, pipeline and notification layers around them
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-batch-processor/cmd"
)

func main() {
	cmd.Execute()
}
