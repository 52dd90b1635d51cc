package cli

import (
	"os"

	"github.com/spf13/cobra"
)

const appName = "studyclock"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "studyclock",
	Short: "Chain study and break countdowns from the terminal",
}

// Execute runs the root command. Exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log every elapsed tick")
}
