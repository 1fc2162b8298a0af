package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"yashubustudio/advisor/artifactstore"
)

func newFetchCmd(a *app) *cobra.Command {
	var source string
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the trained artifacts into the artifacts directory",
		Example: `  advisor-cli fetch --source s3://complaint-models/v3
  advisor-cli fetch --source azblob://models/prod`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if s := strings.TrimSpace(source); s != "" {
				cfg.Artifacts.Source = s
			}
			if cfg.Artifacts.Source == "" {
				return errors.New("no artifact source: set artifacts.source or pass --source")
			}
			store, err := artifactstore.New(artifactstore.Config{
				Region:                cfg.Store.Region,
				AzureConnectionString: cfg.Store.AzureConnectionString,
				Retries:               cfg.Store.Retries,
				RetryBase:             time.Duration(cfg.Store.RetryBaseMs) * time.Millisecond,
			}, a.logger)
			if err != nil {
				return fmt.Errorf("init artifact store: %w", err)
			}
			files := cfg.Artifacts.Files()
			if err := store.FetchAll(cmd.Context(), cfg.Artifacts.Source, files, cfg.Artifacts.Dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "fetched %d artifacts from %s into %s\n", len(files), cfg.Artifacts.Source, cfg.Artifacts.Dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Remote prefix to download from (overrides artifacts.source)")
	return cmd
}
