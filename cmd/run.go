package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/armoucar-neon/dspy-memory-leak-repro/app"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the measurement loop against a completion API",
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, err := cmd.Flags().GetString("config")
		if err != nil {
			panic(fmt.Sprintf("failed to parse config flag; %v", err))
		}

		cfg, err := app.LoadConfig(cfgPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		applyRunFlags(cmd, &cfg)

		runHarness(cfg)
	},
}

func initRunCmdFlags() {
	f := runCmd.Flags()
	f.StringP("config", "c", "", "Path to a YAML config file")
	f.StringP("module", "m", "", "Pipeline module kind: predict or chainofthought")
	f.String("model", "", "Model name sent with every request")
	f.String("base-url", "", "Override the completion API base URL")
	f.IntP("iterations", "n", 0, "Number of iterations, 0 runs until interrupted")
	f.Int("calls", 0, "Requests issued per iteration")
	f.Bool("parallel", false, "Issue the per-iteration requests concurrently")
	f.Bool("no-gc", false, "Do not force garbage collection between iterations")
	f.Bool("heap-profile", false, "Summarize a heap profile after every iteration")
	f.Duration("delay", 0, "Delay between iterations")
	f.String("log", "", "Growth log path")
}

// applyRunFlags overlays explicitly set flags on top of file and environment
// values.
func applyRunFlags(cmd *cobra.Command, cfg *app.Config) {
	f := cmd.Flags()
	if f.Changed("module") {
		cfg.Module, _ = f.GetString("module")
	}
	if f.Changed("model") {
		cfg.Model, _ = f.GetString("model")
	}
	if f.Changed("base-url") {
		cfg.BaseURL, _ = f.GetString("base-url")
	}
	if f.Changed("iterations") {
		cfg.Iterations, _ = f.GetInt("iterations")
	}
	if f.Changed("calls") {
		cfg.CallsPerIteration, _ = f.GetInt("calls")
	}
	if f.Changed("parallel") {
		cfg.Parallel, _ = f.GetBool("parallel")
	}
	if f.Changed("no-gc") {
		noGC, _ := f.GetBool("no-gc")
		cfg.ForceGC = !noGC
	}
	if f.Changed("heap-profile") {
		cfg.HeapProfile, _ = f.GetBool("heap-profile")
	}
	if f.Changed("delay") {
		var d time.Duration
		d, _ = f.GetDuration("delay")
		cfg.Delay = app.Duration(d)
	}
	if f.Changed("log") {
		cfg.LogPath, _ = f.GetString("log")
	}
}

func runHarness(cfg app.Config) {
	if cfg.APIKey == "" {
		fmt.Fprintln(os.Stderr, "ERROR: OPENAI_API_KEY environment variable is required")
		fmt.Fprintln(os.Stderr, "Set your API key and run again, e.g.:")
		fmt.Fprintln(os.Stderr, "  OPENAI_API_KEY='your-key-here' leakrepro run")
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, _ := signal.NotifyContext(context.Background(), os.Kill, os.Interrupt)
	if _, err = application.Run(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
