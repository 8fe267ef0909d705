package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/forkline/cmd/forkline/output"
	"github.com/marshallshelly/forkline/pkg/store"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Rewrite NULL order amounts to zero",
	Long: `Apply the one data-cleaning rule: every order with a NULL total_amount is
set to zero. Running it again is a no-op, so it is safe to reissue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		st := store.New(db)
		touched, err := st.NormalizeAmounts(ctx)
		if err != nil {
			return err
		}
		output.Success("Normalized %d order amounts", touched)

		if verbose {
			counts, err := st.Counts(ctx)
			if err != nil {
				return err
			}
			for table, n := range counts {
				output.Muted("%s: %d rows", table, n)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}
