package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ragctl",
	Short: "Operator tooling for the RAG chatbot backend",
}

func main() {
	rootCmd.AddCommand(smokeCmd, tailCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
