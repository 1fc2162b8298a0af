package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"yashubustudio/advisor/advisor"
)

type columnFlags struct {
	opts advisor.RecordParseOptions
}

func (c *columnFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&c.opts.IndexColumn, "index-column", "", "Column name or #index for the record index")
	f.StringVar(&c.opts.NarrativeColumn, "narrative-column", "", "Column name or #index for the complaint narrative")
	f.StringVar(&c.opts.ResponseColumn, "response-column", "", "Column name or #index for the company response")
	f.StringVar(&c.opts.DisputedColumn, "disputed-column", "", "Column name or #index for the consumer disputed flag")
	f.StringVar(&c.opts.ProductColumn, "product-column", "", "Column name or #index for the product")
}

func newBatchCmd(a *app) *cobra.Command {
	var (
		input     string
		output    string
		outputDir string
		summary   bool
		columns   columnFlags
	)
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Predict every narrative in a CSV/TSV/text file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			input = strings.TrimSpace(input)
			if input == "" {
				return errors.New("missing required --input file")
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			records, err := advisor.ParseComplaintRecords(input, columns.opts, cfg.Columns)
			if err != nil {
				return fmt.Errorf("read input records: %w", err)
			}
			if len(records) == 0 {
				return errors.New("input file does not contain any narratives")
			}
			// One chart per batch is meaningless.
			cfg.Render.Enabled = false
			svc, err := a.openService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			narratives := make([]string, len(records))
			for i, rec := range records {
				narratives[i] = rec.Narrative
			}
			results, err := svc.PredictAll(cmd.Context(), narratives, func(done, total int) {
				if done%100 == 0 || done == total {
					a.logger.Info("progress", "done", done, "total", total)
				}
			})
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}

			path, err := resolveOutputPath(strings.TrimSpace(output), strings.TrimSpace(outputDir), "predictions")
			if err != nil {
				return err
			}
			if err := writeCSVFile(path, func(w io.Writer) error {
				return advisor.WritePredictionsCSV(w, svc.Schema(), records, results)
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d predictions to %s\n", len(results), path)
			if summary {
				printSummary(cmd.OutOrStdout(), records, results)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "CSV/TSV/text file containing complaint narratives")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file to write results (default uses --output-dir/predictions_*.csv)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "csv", "Directory where result CSVs are written when --output is omitted")
	cmd.Flags().BoolVar(&summary, "stdout", false, "Print a summary of the results")
	columns.register(cmd)
	return cmd
}

func resolveOutputPath(path, dir, prefix string) (string, error) {
	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("resolve output path: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
		return absPath, nil
	}
	if dir == "" {
		dir = "csv"
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve output dir: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	filename := fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format("20060102150405"))
	return filepath.Join(absDir, filename), nil
}

func writeCSVFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create result file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close result file: %w", err)
	}
	return nil
}

func printSummary(w io.Writer, records []advisor.ComplaintRecord, results []advisor.PredictionResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "==== prediction preview ====")
	for i, rec := range records {
		res := results[i]
		fmt.Fprintf(w, "%d. %s\n", i+1, summarizeRecord(rec))
		if res.Err != nil {
			fmt.Fprintf(w, "    error: %v\n", res.Err)
			continue
		}
		p := res.Prediction
		fmt.Fprintf(w, "    product: %s\n", p.Product)
		fmt.Fprintf(w, "    recommended: %s", p.RecommendedLabel)
		for _, row := range p.Escalation {
			if row.Response == p.Recommended {
				fmt.Fprintf(w, " (p=%.3f)", row.Probability)
			}
		}
		fmt.Fprintln(w)
	}
}

func summarizeRecord(rec advisor.ComplaintRecord) string {
	prefix := ""
	if idx := strings.TrimSpace(rec.Index); idx != "" {
		prefix = "#" + idx + " "
	}
	text := strings.Join(strings.Fields(rec.Narrative), " ")
	if text == "" {
		return prefix + "(empty narrative)"
	}
	runeText := []rune(text)
	if len(runeText) > 60 {
		return prefix + string(runeText[:60]) + "…"
	}
	return prefix + text
}
