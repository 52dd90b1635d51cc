package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studyclock/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent chains",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := history.Open(historyPath())
		if err != nil {
			return err
		}
		defer store.Close()

		chains, err := store.RecentChains(historyLimit)
		if err != nil {
			return err
		}
		if len(chains) == 0 {
			fmt.Println("No chains recorded yet.")
			return nil
		}

		for _, chain := range chains {
			status := "halted"
			if chain.CompletedAt != nil {
				status = "completed " + chain.CompletedAt.Format(time.RFC3339)
			}
			fmt.Printf("%s  %s  study=%s break=%s sessions=%d  %s\n",
				chain.StartedAt.Format(time.RFC3339),
				chain.ChainID,
				chain.StudyLimit,
				chain.BreakLimit,
				chain.Sessions,
				status)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum chains to list")
	rootCmd.AddCommand(historyCmd)
}
