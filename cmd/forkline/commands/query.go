package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/forkline/cmd/forkline/output"
	"github.com/marshallshelly/forkline/pkg/analytics"
	"github.com/marshallshelly/forkline/pkg/runtime"
)

var listReports bool

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query [name]",
	Short: "Run one report by name",
	Long: `Run a single report and print its result table.

Examples:
  forkline query top-dishes            # rank the nominal customer's dishes
  forkline query city-revenue --json   # machine-readable output
  forkline query --list                # list all report names`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if listReports || len(args) == 0 {
			return runQueryList()
		}
		return runQuery(args[0])
	},
}

// reportCmd runs every registered report in order
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run all twenty reports",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		lib := analytics.New(db)
		for _, r := range analytics.Reports {
			table, err := r.Run(ctx, lib)
			if err != nil {
				output.Error("%s: %v", r.Name, err)
				continue
			}
			output.Section(r.Description)
			fmt.Print(output.RenderTable(table))
		}
		return nil
	},
}

func runQueryList() error {
	for _, r := range analytics.Reports {
		output.Primary("%s", r.Name)
		output.Muted("  %s", r.Description)
	}
	return nil
}

func runQuery(name string) error {
	report, ok := analytics.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s (try --list)", runtime.ErrUnknownReport, name)
	}

	ctx := context.Background()
	db, err := connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	table, err := report.Run(ctx, analytics.New(db))
	if err != nil {
		return err
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(table)
	}

	output.Section(report.Description)
	fmt.Print(output.RenderTable(table))
	if len(table.Rows) == 0 {
		output.Muted("(no rows)")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(queryCmd, reportCmd)
	queryCmd.Flags().BoolVar(&listReports, "list", false, "List available reports")
}
