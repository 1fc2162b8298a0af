package advisor

// ColumnCandidates defines possible header names for auto-detecting CSV/TSV columns.
// Matching is case-insensitive and the first header that matches any candidate wins.
type ColumnCandidates struct {
	Narrative []string `json:"narrative" mapstructure:"narrative"`
	Response  []string `json:"response" mapstructure:"response"`
	Disputed  []string `json:"disputed" mapstructure:"disputed"`
	Index     []string `json:"index" mapstructure:"index"`
	Product   []string `json:"product" mapstructure:"product"`
}

func defaultColumnCandidates() ColumnCandidates {
	return ColumnCandidates{
		Narrative: []string{"Consumer complaint narrative", "consumer_complaint_narrative", "narrative", "complaint", "text"},
		Response:  []string{"Company response to consumer", "company_response_to_consumer", "company_response", "response"},
		Disputed:  []string{"Consumer disputed?", "consumer_disputed", "disputed", "dispute"},
		Index:     []string{"Complaint ID", "complaint_id", "id", "index"},
		Product:   []string{"Product", "product"},
	}
}

// DefaultColumnCandidates returns the built-in column detection candidates.
func DefaultColumnCandidates() ColumnCandidates {
	return defaultColumnCandidates()
}

// withDefaults fills nil fields from the built-in candidates so callers can
// override only the columns they care about.
func (c ColumnCandidates) withDefaults() ColumnCandidates {
	defaults := defaultColumnCandidates()
	return ColumnCandidates{
		Narrative: pickStrings(c.Narrative, defaults.Narrative),
		Response:  pickStrings(c.Response, defaults.Response),
		Disputed:  pickStrings(c.Disputed, defaults.Disputed),
		Index:     pickStrings(c.Index, defaults.Index),
		Product:   pickStrings(c.Product, defaults.Product),
	}
}

func pickStrings(custom, fallback []string) []string {
	if len(custom) == 0 {
		return cloneStrings(fallback)
	}
	return cloneStrings(custom)
}

func cloneStrings(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
