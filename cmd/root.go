package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat assistant that answers questions about your uploaded documents",
	Long: `docchat indexes uploaded text files into a per-user search namespace
and answers natural-language questions by retrieving the most relevant
chunks and forwarding them to a locally hosted language model.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	settingDefaultConfig()
}
