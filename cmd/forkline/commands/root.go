package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/forkline/pkg/runtime"
)

var (
	// Global flags
	dbURL      string
	dbHost     string
	dbPort     int
	dbName     string
	dbUser     string
	dbPassword string
	dbSSLMode  string
	verbose    bool
	jsonOutput bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "forkline",
	Short: "Forkline - food-delivery analytics over PostgreSQL",
	Long: `Forkline manages a five-table food-delivery dataset (customers,
restaurants, riders, orders, deliveries) and runs twenty analytical reports
over it.

Workflow:
  forkline schema create   # create the five tables
  (load records through the store API)
  forkline clean           # rewrite NULL order amounts to zero
  forkline query <name>    # run one report
  forkline report          # run all twenty
  forkline browse          # interactive report browser`,
	Version: "1.2.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := runtime.DefaultConfig()
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (falls back to DATABASE_URL, then the discrete connection flags)")
	rootCmd.PersistentFlags().StringVar(&dbHost, "host", defaults.Host, "Database host")
	rootCmd.PersistentFlags().IntVar(&dbPort, "port", defaults.Port, "Database port")
	rootCmd.PersistentFlags().StringVar(&dbName, "dbname", defaults.Database, "Database name")
	rootCmd.PersistentFlags().StringVar(&dbUser, "user", defaults.User, "Database user")
	rootCmd.PersistentFlags().StringVar(&dbPassword, "password", defaults.Password, "Database password")
	rootCmd.PersistentFlags().StringVar(&dbSSLMode, "sslmode", defaults.SSLMode, "Database SSL mode")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// connectionURL resolves the database URL from the --db flag or environment.
// An empty result means the discrete connection flags apply instead.
func connectionURL() string {
	if dbURL != "" {
		return dbURL
	}
	return os.Getenv("DATABASE_URL")
}

// connectionConfig builds a connection config from the discrete flags.
func connectionConfig() *runtime.Config {
	cfg := runtime.DefaultConfig()
	cfg.Host = dbHost
	cfg.Port = dbPort
	cfg.Database = dbName
	cfg.User = dbUser
	cfg.Password = dbPassword
	cfg.SSLMode = dbSSLMode
	return cfg
}

// connect opens a pooled connection for one command invocation. A connection
// URL takes precedence; without one the discrete flags are used.
func connect(ctx context.Context) (*runtime.DB, error) {
	var db *runtime.DB
	var err error
	if url := connectionURL(); url != "" {
		db, err = runtime.ConnectWithURL(ctx, url)
	} else {
		db, err = runtime.Connect(ctx, connectionConfig())
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
