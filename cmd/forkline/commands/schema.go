package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/forkline/cmd/forkline/output"
	"github.com/marshallshelly/forkline/pkg/schema"
)

// schemaCmd represents the schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create or drop the dataset tables",
	Long: `Manage the five dataset tables.

Subcommands:
  create  - Create all tables in dependency order (idempotent)
  drop    - Drop all tables in reverse dependency order`,
}

// schemaCreateCmd creates the five tables
var schemaCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the five tables in dependency order",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := schema.Create(ctx, db); err != nil {
			return err
		}
		output.Success("Schema created (%d tables)", len(schema.Tables))
		return nil
	},
}

// schemaDropCmd drops the five tables
var schemaDropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Drop the five tables and all their data",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := connect(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := schema.Drop(ctx, db); err != nil {
			return err
		}
		output.Warning("Schema dropped (%d tables)", len(schema.Tables))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.AddCommand(schemaCreateCmd, schemaDropCmd)
}
