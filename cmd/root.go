package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "leakrepro",
	Short: "Leakrepro measures memory growth of repeatedly instantiated LLM pipeline modules",
}

func init() {
	rootCmd.AddCommand(versionCmd)
	initRunCmdFlags()
	rootCmd.AddCommand(runCmd)
	initMockLLMCmdFlags()
	rootCmd.AddCommand(mockLLMCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
