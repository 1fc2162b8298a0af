package app

import (
	"fmt"
	"strings"

	"yashubustudio/advisor/advisor"
)

type resultRow struct {
	Index  string
	Text   string
	Result advisor.PredictionResult
}

type tableColumn struct {
	Title  string
	Width  float32
	Render func(resultRow) string
}

func makeColumns(responses []advisor.ResponseType) []tableColumn {
	cols := []tableColumn{
		{Title: "#", Width: 48, Render: func(r resultRow) string { return r.Index }},
		{Title: "本文", Width: 320, Render: func(r resultRow) string { return truncateText(r.Text, 120) }},
		{Title: "製品", Width: 200, Render: func(r resultRow) string {
			if r.Result.Err != nil {
				return ""
			}
			return string(r.Result.Prediction.Product)
		}},
		{Title: "推奨対応", Width: 170, Render: func(r resultRow) string {
			if r.Result.Err != nil {
				return "エラー: " + r.Result.Err.Error()
			}
			return r.Result.Prediction.RecommendedLabel
		}},
	}
	for i, resp := range responses {
		idx := i
		cols = append(cols, tableColumn{
			Title:  advisor.DisplayLabel(resp),
			Width:  120,
			Render: func(r resultRow) string { return formatProbabilityAt(r, idx) },
		})
	}
	return cols
}

// formatProbabilityAt marks escalating responses with ▲ and the recommended one with ★.
func formatProbabilityAt(r resultRow, idx int) string {
	if r.Result.Err != nil {
		return ""
	}
	table := r.Result.Prediction.Escalation
	if idx < 0 || idx >= len(table) {
		return ""
	}
	entry := table[idx]
	text := fmt.Sprintf("%.3f", entry.Probability)
	if entry.Response == r.Result.Prediction.Recommended {
		text += " ★"
	}
	if entry.Escalates {
		text += " ▲"
	}
	return text
}

func describePrediction(p advisor.Prediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\n", p.ID)
	fmt.Fprintf(&b, "製品: %s\n", p.Product)
	fmt.Fprintf(&b, "推奨対応: %s (%s)\n", p.RecommendedLabel, p.Recommended)
	f := p.Features
	fmt.Fprintf(&b, "感情スコア合計: %.4f\n", f.CorpusScoreSum)
	fmt.Fprintf(&b, "単語数: %d / 文数: %d\n", f.WordNum, f.SentenceNum)
	fmt.Fprintf(&b, "否定文の割合: %.3f\n", f.NegativeRatio)
	fmt.Fprintf(&b, "最も否定的な文: %.4f\n", f.MostNegativeScore)
	return b.String()
}

func splitNonEmptyLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "…"
}
