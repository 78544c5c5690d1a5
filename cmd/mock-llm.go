package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/armoucar-neon/dspy-memory-leak-repro/pkg/mockllm"
)

const defaultMockLLMAddr = "127.0.0.1:11000"

var mockLLMCmd = &cobra.Command{
	Use:   "mock-llm",
	Short: "Run a local mock completion API to be used for testing the harness",
	Run: func(cmd *cobra.Command, args []string) {
		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			panic(fmt.Sprintf("failed to parse mock server addr; %v", err))
		}

		if addr == "" {
			addr = defaultMockLLMAddr
		}

		ctx, _ := signal.NotifyContext(context.Background(), os.Kill, os.Interrupt)
		bound, err := mockllm.Listen(ctx, addr)
		if err != nil {
			panic(fmt.Sprintf("failed to run mock completion server; %v", err))
		}
		fmt.Printf("Mock completion server is running on %s\n", bound)

		<-ctx.Done()
	},
}

func initMockLLMCmdFlags() {
	mockLLMCmd.Flags().StringP("addr", "a", "", "Address to be exposed for clients")
}
