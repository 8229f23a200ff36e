package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/peter-xbs/FSM/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "relex",
		Short: "relex extracts trigger-chain relations from parsed clinical text",
		Long: `relex reads dependency parsed sentences in CoNLL format and links the
entities governed by trigger verb chains such as 诊断 ... 给予.`,
		SilenceUsage: true,
	}
	rootCmd.AddCommand(newExtractCmd(), newStatesCmd())
	return rootCmd
}

func main() {
	_ = godotenv.Load()
	logger.SetupLogging()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
