package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Declyn50s/Traine-Savates/pkg/logger"
	"github.com/Declyn50s/Traine-Savates/pkg/seed"
)

func seedCommand() *cobra.Command {
	var opts seed.Options
	cmd := &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Import editions and site content from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := openStore(cfg.Store)
			if err != nil {
				return fmt.Errorf("failed to open content store: %w", err)
			}
			defer db.Close()

			sum, err := seed.Load(cmd.Context(), db, f, opts)
			if err != nil {
				return fmt.Errorf("seed %s: %w", args[0], err)
			}
			tables := make([]string, 0, len(sum))
			for t := range sum {
				tables = append(tables, t)
			}
			sort.Strings(tables)
			for _, t := range tables {
				logger.Info("Imported %d rows into %s", sum[t], t)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.Reset, "reset", false, "delete existing site content before importing")
	return cmd
}
