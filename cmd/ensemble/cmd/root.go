package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ensembleops/ensemble/internal/config"
	"github.com/ensembleops/ensemble/internal/logging"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "ensemble",
	Short: "Ensemble ops portal server",
	Long: `Ensemble is the operations portal for team turnovers, availability
scorecards and the shared link directory. Access is derived from directory
group memberships at sign-in.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v := viper.GetViper()
		if configFile != "" {
			v.SetConfigFile(configFile)
		}

		var err error
		cfg, err = config.LoadFrom(v)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		logger, err = logging.New(cfg.Debug)
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default: ./ensemble.yaml or /etc/ensemble/ensemble.yaml)")
	flags.String("db-url", "", "Database connection URL (env: ENSEMBLE_DATABASE_URL)")
	flags.String("server-addr", "", "Server bind address (env: ENSEMBLE_SERVER_ADDR)")
	flags.Bool("debug", false, "Enable debug logging (env: ENSEMBLE_DEBUG)")

	_ = viper.BindPFlag("database_url", flags.Lookup("db-url"))
	_ = viper.BindPFlag("server_addr", flags.Lookup("server-addr"))
	_ = viper.BindPFlag("debug", flags.Lookup("debug"))
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
