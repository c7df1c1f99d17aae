// =============================================================================
// Sales Batch Processor - Version Command
// =============================================================================
//
// OUTPUT:
//   Sales Batch Processor
//   Version:           1.0.0
//   Processor Version: 1.0.0
//   Build Date:        2024-01-01
//   Go Version:        go1.24.0
//
// Version and BuildDate are set at build time:
//   go build -ldflags "-X 'github.com/ginjaninja78/sales-batch-processor/cmd.Version=1.0.0'"
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-batch-processor/internal/types"
)

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, the result document version, build date and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Sales Batch Processor")
		fmt.Fprintf(out, "Version:           %s\n", Version)
		fmt.Fprintf(out, "Processor Version: %s\n", types.ProcessorVersion)
		fmt.Fprintf(out, "Build Date:        %s\n", BuildDate)
		fmt.Fprintf(out, "Go Version:        %s\n", runtime.Version())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
