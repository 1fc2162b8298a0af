package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"yashubustudio/advisor/advisor"
)

func newFeaturesCmd(a *app) *cobra.Command {
	var (
		input     string
		output    string
		outputDir string
		workers   int
		columns   columnFlags
	)
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Extract sentiment training features from a labelled complaints export",
		Long: `features computes the sentiment features of every labelled complaint and
writes them with the company response and the dispute flag, ready for
training the escalation model.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return errors.New("missing required --input file")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Workers
			}
			records, err := advisor.ParseComplaintRecords(input, columns.opts, cfg.Columns)
			if err != nil {
				return fmt.Errorf("read input records: %w", err)
			}
			rows, err := advisor.BuildFeatureRows(cmd.Context(), advisor.NewDefaultExtractor(), records, workers, a.logger)
			if err != nil {
				return fmt.Errorf("extract features: %w", err)
			}
			if len(rows) == 0 {
				return errors.New("no labelled records with usable narratives")
			}
			path, err := resolveOutputPath(strings.TrimSpace(output), strings.TrimSpace(outputDir), "features")
			if err != nil {
				return err
			}
			if err := writeCSVFile(path, func(w io.Writer) error {
				return advisor.WriteFeatureRowsCSV(w, rows)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d feature rows to %s\n", len(rows), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV/TSV file with narratives, responses and dispute flags")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write features (default uses --output-dir/features_*.csv)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "csv", "Directory where feature CSVs are written when --output is omitted")
	cmd.Flags().IntVar(&workers, "workers", 0, "Parallel extraction workers (default: workers from config)")
	columns.register(cmd)
	return cmd
}
