package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Declyn50s/Traine-Savates/pkg/config"
	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/store"
	"github.com/Declyn50s/Traine-Savates/pkg/store/boltstore"
	"github.com/Declyn50s/Traine-Savates/pkg/store/sqlitestore"
)

const programName = "traine-savates"

var globalFlags = struct {
	envFile string
	debug   bool
}{}

// loadConfig reads the optional .env file, then the environment.
func loadConfig() (config.Config, error) {
	if err := godotenv.Load(globalFlags.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return config.Config{}, fmt.Errorf("failed to load %s: %w", globalFlags.envFile, err)
	}
	cfg, err := config.FromEnv()
	if err != nil {
		return cfg, err
	}
	logger.SetLogLevelFromString(cfg.LogLevel)
	if globalFlags.debug {
		logger.SetLogLevel(logger.DebugLevel)
	}
	return cfg, nil
}

func openStore(cfg config.StoreConfig) (store.DB, error) {
	switch cfg.Driver {
	case "bolt":
		return boltstore.Open(cfg.Path)
	case "sqlite":
		return sqlitestore.Open(cfg.Path)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Site and back office of the Traîne-Savates race association",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&globalFlags.envFile, "env-file", ".env", "dotenv file read before the environment")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(seedCommand())
	rootCmd.AddCommand(backupCommand())
	rootCmd.AddCommand(hashPasswordCommand())

	if err := rootCmd.Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
