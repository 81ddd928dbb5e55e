// Package main implements the tagger CLI: batch theme tagging, single verse
// classification, theme-to-verse mapping, corpus import and export.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/everyday-christian-tagger/internal/config"
	"github.com/everyday-christian-tagger/internal/logging"
	"github.com/everyday-christian-tagger/internal/repository/sqlstore"
	"github.com/everyday-christian-tagger/internal/themes"
	dbconfig "github.com/everyday-christian-tagger/pkg/schema/config"
	"github.com/everyday-christian-tagger/pkg/schema/db"
)

var (
	// Global flags
	verbose      bool
	keywordsPath string
	dbPath       string

	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tagger",
	Short: "Keyword-based theme tagger for Bible verses",
	Long: `tagger assigns up to three themes to each verse from a fixed vocabulary
and ranks candidate verses for the devotional mapping themes.

Classification is deterministic: the same keyword table and verse text
always produce the same themes.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(config.GetConfig().LogLevel, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&keywordsPath, "keywords", "", "Keyword table YAML (default: embedded table)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")

	rootCmd.AddCommand(
		tagCmd,
		classifyCmd,
		mapCmd,
		coverageCmd,
		importCmd,
		exportCmd,
	)
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadTable loads the keyword table from --keywords, TAGGER_KEYWORDS_PATH or
// the embedded default
func loadTable() (*themes.Table, error) {
	path := keywordsPath
	if path == "" {
		path = config.GetConfig().KeywordsPath
	}
	table, err := themes.LoadTable(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load keyword table: %w", err)
	}
	return table, nil
}

func loadClassifier() (*themes.Classifier, error) {
	table, err := loadTable()
	if err != nil {
		return nil, err
	}
	policy, err := themes.ParseOverridePolicy(config.GetConfig().OverridePolicy)
	if err != nil {
		return nil, err
	}
	return themes.NewClassifier(table, policy), nil
}

// openStore opens the verse database; the returned func closes it
func openStore(ctx context.Context) (*sqlstore.Store, func(), error) {
	cfg := *dbconfig.GetConfig()
	if dbPath != "" {
		cfg.DBPath = dbPath
	}

	conn, err := db.Open(ctx, &cfg)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Opened verse database", zap.String("driver", cfg.Driver), zap.String("path", cfg.DBPath))
	return sqlstore.NewStore(conn), func() { conn.Close() }, nil
}
