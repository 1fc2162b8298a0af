package advisor

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ComplaintRecord is one row of a complaints export.
type ComplaintRecord struct {
	Index     string `json:"index,omitempty"`
	Narrative string `json:"narrative"`
	Response  string `json:"response,omitempty"`
	Disputed  string `json:"disputed,omitempty"`
	Product   string `json:"product,omitempty"`
}

// RecordParseOptions lets callers choose which columns map to record fields.
// Values are header names or 1-based "#n" positions; empty means auto-detect.
type RecordParseOptions struct {
	IndexColumn     string
	NarrativeColumn string
	ResponseColumn  string
	DisputedColumn  string
	ProductColumn   string
}

// ParseComplaintRecords reads a CSV, TSV or plain text file (one narrative per line).
// Rows without a narrative are skipped.
func ParseComplaintRecords(path string, opts RecordParseOptions, candidates ColumnCandidates) ([]ComplaintRecord, error) {
	candidates = candidates.withDefaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return parseDelimitedRecords(path, ',', opts, candidates)
	case ".tsv":
		return parseDelimitedRecords(path, '\t', opts, candidates)
	default:
		return parsePlainTextRecords(path)
	}
}

func parsePlainTextRecords(path string) ([]ComplaintRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open text file: %w", err)
	}
	defer f.Close()
	var out []ComplaintRecord
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := cleanCell(scanner.Text())
		if text == "" {
			continue
		}
		out = append(out, ComplaintRecord{Index: strconv.Itoa(line), Narrative: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan text file: %w", err)
	}
	return out, nil
}

func parseDelimitedRecords(path string, comma rune, opts RecordParseOptions, candidates ColumnCandidates) ([]ComplaintRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()
	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(rows) == 0 {
		return nil, errors.New("empty file")
	}
	header := make([]string, len(rows[0]))
	for i, cell := range rows[0] {
		header[i] = cleanCell(cell)
	}
	cols, skipHeader, err := resolveRecordColumns(header, opts, candidates)
	if err != nil {
		return nil, err
	}
	start := 0
	if skipHeader {
		start = 1
	}
	records := make([]ComplaintRecord, 0, len(rows)-start)
	for i, row := range rows[start:] {
		rec := ComplaintRecord{
			Index:     cellAt(row, cols.Index),
			Narrative: cellAt(row, cols.Narrative),
			Response:  cellAt(row, cols.Response),
			Disputed:  cellAt(row, cols.Disputed),
			Product:   cellAt(row, cols.Product),
		}
		if rec.Narrative == "" {
			continue
		}
		if rec.Index == "" {
			rec.Index = strconv.Itoa(start + i + 1)
		}
		records = append(records, rec)
	}
	return records, nil
}

type recordColumns struct {
	Index     int
	Narrative int
	Response  int
	Disputed  int
	Product   int
}

func resolveRecordColumns(header []string, opts RecordParseOptions, candidates ColumnCandidates) (recordColumns, bool, error) {
	var cols recordColumns
	fromHeader := false
	pick := func(dst *int, explicit string, names []string) error {
		idx, matched, err := pickColumn(header, explicit, names)
		if err != nil {
			return err
		}
		*dst = idx
		fromHeader = fromHeader || matched
		return nil
	}
	if err := pick(&cols.Index, opts.IndexColumn, candidates.Index); err != nil {
		return cols, false, err
	}
	if err := pick(&cols.Narrative, opts.NarrativeColumn, candidates.Narrative); err != nil {
		return cols, false, err
	}
	if err := pick(&cols.Response, opts.ResponseColumn, candidates.Response); err != nil {
		return cols, false, err
	}
	if err := pick(&cols.Disputed, opts.DisputedColumn, candidates.Disputed); err != nil {
		return cols, false, err
	}
	if err := pick(&cols.Product, opts.ProductColumn, candidates.Product); err != nil {
		return cols, false, err
	}
	// Headerless files: the first column is the narrative.
	if !fromHeader && cols.Narrative < 0 && len(header) > 0 {
		cols.Narrative = 0
	}
	if cols.Narrative < 0 {
		return cols, false, errors.New("no narrative column found")
	}
	return cols, fromHeader, nil
}

func pickColumn(header []string, explicit string, candidates []string) (int, bool, error) {
	if strings.TrimSpace(explicit) != "" {
		return matchExplicitColumn(header, explicit)
	}
	if idx := findColumn(header, candidates); idx >= 0 {
		return idx, true, nil
	}
	return -1, false, nil
}

func findColumn(header []string, candidates []string) int {
	for _, cand := range candidates {
		for i, col := range header {
			if strings.EqualFold(col, cand) {
				return i
			}
		}
	}
	return -1
}

func matchExplicitColumn(header []string, explicit string) (int, bool, error) {
	trimmed := strings.TrimSpace(explicit)
	for i, col := range header {
		if strings.EqualFold(col, trimmed) {
			return i, true, nil
		}
	}
	if strings.HasPrefix(trimmed, "#") {
		idx, err := parseColumnIndex(trimmed)
		if err != nil {
			return -1, false, err
		}
		if idx >= len(header) {
			return -1, false, fmt.Errorf("column index %s is out of range", trimmed)
		}
		return idx, false, nil
	}
	return -1, false, fmt.Errorf("column %q not found", explicit)
}

func parseColumnIndex(token string) (int, error) {
	trimmed := strings.TrimSpace(strings.TrimPrefix(token, "#"))
	idx, err := strconv.Atoi(trimmed)
	if err != nil {
		return -1, fmt.Errorf("invalid column index %q", token)
	}
	if idx <= 0 {
		return -1, fmt.Errorf("column indices are 1-based: %q", token)
	}
	return idx - 1, nil
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return cleanCell(row[idx])
}

func cleanCell(v string) string {
	v = strings.TrimSpace(v)
	return strings.TrimPrefix(v, "\ufeff")
}

// FeatureRow is one training example: sentiment features plus the response
// the company gave and whether the consumer disputed it.
type FeatureRow struct {
	Index    string
	Features SentimentFeatures
	Response string
	Dispute  int
}

// BuildFeatureRows computes training features for labelled records. Records
// with no dispute label are dropped; records whose narrative has no sentences
// are skipped with a warning.
func BuildFeatureRows(ctx context.Context, extractor *Extractor, records []ComplaintRecord, workers int, logger *slog.Logger) ([]FeatureRow, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	labelled := make([]ComplaintRecord, 0, len(records))
	for _, rec := range records {
		if rec.Disputed == "" {
			continue
		}
		labelled = append(labelled, rec)
	}
	if dropped := len(records) - len(labelled); dropped > 0 {
		logger.Info("dropped records without dispute label", "count", dropped)
	}
	narratives := make([]string, len(labelled))
	for i, rec := range labelled {
		narratives[i] = rec.Narrative
	}
	results, err := extractor.ExtractAll(ctx, narratives, workers)
	if err != nil {
		return nil, err
	}
	rows := make([]FeatureRow, 0, len(labelled))
	for i, res := range results {
		rec := labelled[i]
		if res.Err != nil {
			logger.Warn("skipping record", "index", rec.Index, "error", res.Err)
			continue
		}
		rows = append(rows, FeatureRow{
			Index:    rec.Index,
			Features: res.Features,
			Response: rec.Response,
			Dispute:  disputeLabel(rec.Disputed),
		})
	}
	return rows, nil
}

func disputeLabel(v string) int {
	if strings.EqualFold(strings.TrimSpace(v), "yes") {
		return 1
	}
	return 0
}

// WriteFeatureRowsCSV writes training rows with the numeric feature names as headers.
func WriteFeatureRowsCSV(w io.Writer, rows []FeatureRow) error {
	writer := csv.NewWriter(w)
	header := []string{"index", FeatureCorpusScoreSum, FeatureWordNum, FeatureSentenceNum,
		FeatureNegativeRatio, FeatureMostNegativeScore, "company_response", "dispute"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range rows {
		f := row.Features
		record := []string{
			row.Index,
			formatFloat(f.CorpusScoreSum),
			strconv.Itoa(f.WordNum),
			strconv.Itoa(f.SentenceNum),
			formatFloat(f.NegativeRatio),
			formatFloat(f.MostNegativeScore),
			row.Response,
			strconv.Itoa(row.Dispute),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush features: %w", err)
	}
	return nil
}

// WritePredictionsCSV writes one line per record with the product, the
// recommendation and the dispute probability of every response type.
func WritePredictionsCSV(w io.Writer, schema FeatureSchema, records []ComplaintRecord, results []PredictionResult) error {
	if len(records) != len(results) {
		return fmt.Errorf("records/results length mismatch: %d vs %d", len(records), len(results))
	}
	writer := csv.NewWriter(w)
	header := []string{"index", "product", "recommended", "recommended_label"}
	for _, r := range schema.ResponseTypes {
		header = append(header, "p_"+string(r))
	}
	header = append(header, "error")
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range records {
		res := results[i]
		row := make([]string, 0, len(header))
		row = append(row, rec.Index)
		if res.Err != nil {
			row = append(row, "", "", "")
			for range schema.ResponseTypes {
				row = append(row, "")
			}
			row = append(row, res.Err.Error())
		} else {
			p := res.Prediction
			row = append(row, string(p.Product), string(p.Recommended), p.RecommendedLabel)
			for _, entry := range p.Escalation {
				row = append(row, formatFloat(entry.Probability))
			}
			row = append(row, "")
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush predictions: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
