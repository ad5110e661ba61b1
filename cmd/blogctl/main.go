// blogctl is the operator CLI: schema migrations, role grants and counter
// maintenance against the service database.
package main

import (
	"os"

	"github.com/devnovate-blog-api/internal/config"
	"github.com/devnovate-blog-api/internal/database"
	"github.com/devnovate-blog-api/internal/repository"
	"github.com/devnovate-blog-api/internal/service"
	"github.com/devnovate-blog-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// env is opened once per invocation by the root command
type env struct {
	cfg      *config.Config
	log      zerolog.Logger
	db       *database.DB
	services *service.Services
}

var (
	app env

	logLevel string

	rootCmd = &cobra.Command{
		Use:           "blogctl",
		Short:         "Operate the Devnovate blog API database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			app.cfg = cfg
			app.log = logger.New(logLevel, true)

			db, err := database.New(&cfg.Database, app.log)
			if err != nil {
				return err
			}
			app.db = db
			// operator actions emit no events
			app.services = service.NewServices(repository.New(db), nil, cfg, app.log)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.db != nil {
				app.db.Close()
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(newMigrateCmd(), newRoleCmd(), newCountersCmd(), newStatsCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l := logger.New("error", true)
		l.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
