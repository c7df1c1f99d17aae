package cmd

import (
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sales-batch-processor/internal/config"
	"github.com/ginjaninja78/sales-batch-processor/internal/errors"
	"github.com/ginjaninja78/sales-batch-processor/internal/logging"
	"github.com/ginjaninja78/sales-batch-processor/internal/pipeline"
	"github.com/ginjaninja78/sales-batch-processor/internal/watcher"
	"github.com/ginjaninja78/sales-batch-processor/pkg/utils"
)

var watchExisting bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process batch files as they arrive in the input directory",
	Long: `The watch command watches the input directory and processes every *.json
file that is created or written there, once it has been quiet for
watch_debounce. Files are processed one at a time. Stop with Ctrl+C.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd, appConfig)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Process files already in the input directory first")
}

func runWatch(cmd *cobra.Command, cfg *config.Config) error {
	in, _ := filepath.Abs(cfg.InputDir)
	out, _ := filepath.Abs(cfg.OutputDir)
	if in == out {
		return errors.WithHint(
			errors.NewInvalidConfig("input_dir and output_dir must differ in watch mode"),
			"results written to the watched directory would be processed again",
		)
	}
	if err := cfg.EnsureDirs(); err != nil {
		return err
	}

	p := pipeline.New(pipeline.OptionsFromConfig(cfg))
	handle := func(path string) {
		res := p.Run(path)
		if res.Error != nil {
			pterm.Error.Printfln("%s: %v", filepath.Base(path), res.Error)
			return
		}
		pterm.Success.Printfln("%s -> %s (valid %d, invalid %d)", filepath.Base(path), res.OutputFile,
			res.Stats.Counters.ValidTransactions, res.Stats.Counters.InvalidTransactions)
	}

	w, err := watcher.New(cfg.InputDir, cfg.WatchDebounce, handle)
	if err != nil {
		return err
	}

	if watchExisting {
		files, err := utils.NewFileManager(cfg.InputDir, cfg.OutputDir, cfg.InputArchiveDir).DiscoverInputFiles(utils.DefaultPattern)
		if err != nil {
			return err
		}
		for _, f := range files {
			handle(f)
		}
	}

	pterm.Info.Printfln("Watching %s (Ctrl+C to stop)", cfg.InputDir)
	err = w.Run(cmd.Context())
	logging.Infow("Watcher stopped")
	return err
}
