package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"yashubustudio/advisor/advisor"
)

func newPredictCmd(a *app) *cobra.Command {
	var (
		narrative string
		file      string
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   "predict [narrative]",
		Short: "Analyse a single complaint narrative",
		Example: `  advisor-cli predict "I was charged a late fee twice."
  advisor-cli predict --file complaint.txt --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readNarrative(narrative, file, args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			svc, err := a.openService(cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			pred, err := svc.Predict(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(pred)
			}
			printPrediction(out, pred)
			return nil
		},
	}
	cmd.Flags().StringVarP(&narrative, "narrative", "n", "", "Complaint narrative text")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read the narrative from a file ('-' for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the prediction as JSON")
	return cmd
}

func readNarrative(narrative, file string, args []string, stdin io.Reader) (string, error) {
	switch {
	case strings.TrimSpace(narrative) != "":
		return narrative, nil
	case file == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read narrative: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	}
	return "", errors.New("no narrative given: pass it as an argument, --narrative or --file")
}

func printPrediction(w io.Writer, pred advisor.Prediction) {
	fmt.Fprintf(w, "product:      %s\n", pred.Product)
	fmt.Fprintf(w, "sentiment:    sum=%.4f words=%d sentences=%d negative_ratio=%.3f most_negative=%.4f\n",
		pred.Features.CorpusScoreSum, pred.Features.WordNum, pred.Features.SentenceNum,
		pred.Features.NegativeRatio, pred.Features.MostNegativeScore)
	fmt.Fprintln(w, "dispute probability by response:")
	for _, row := range pred.Escalation {
		mark := " "
		if row.Response == pred.Recommended {
			mark = "*"
		}
		note := ""
		if row.Escalates {
			note = "  (likely escalates)"
		}
		fmt.Fprintf(w, "  %s %-34s %.3f%s\n", mark, row.Response, row.Probability, note)
	}
	fmt.Fprintf(w, "recommended:  %s\n", pred.RecommendedLabel)
	if pred.ChartPath != "" {
		fmt.Fprintf(w, "chart:        %s\n", pred.ChartPath)
	}
}
