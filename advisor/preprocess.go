package advisor

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Preprocessor turns a narrative into the token stream the vectorizer was fitted on:
// normalised, lower-cased, word-tokenized, with punctuation and stop words removed.
type Preprocessor struct {
	tokenizer WordTokenizer
	stopWords map[string]struct{}
	keepCase  bool
}

// NewPreprocessor builds a preprocessor. Empty StopWords disables stop word removal.
func NewPreprocessor(cfg PreprocessConfig, tokenizer WordTokenizer) *Preprocessor {
	stop := make(map[string]struct{}, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stop[strings.ToLower(strings.TrimSpace(w))] = struct{}{}
	}
	return &Preprocessor{tokenizer: tokenizer, stopWords: stop, keepCase: cfg.KeepCase}
}

// PreProcess returns the cleaned tokens of narrative. It is deterministic.
func (p *Preprocessor) PreProcess(narrative string) []string {
	text := NormalizeText(narrative)
	if !p.keepCase {
		// cases.Caser keeps state between calls, so one is built per call.
		text = cases.Lower(language.English).String(text)
	}
	raw := p.tokenizer.Tokenize(text)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		if !hasWordRune(tok) {
			continue
		}
		key := tok
		if p.keepCase {
			key = strings.ToLower(tok)
		}
		if _, stop := p.stopWords[key]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// Text joins the cleaned tokens with single spaces.
func (p *Preprocessor) Text(narrative string) string {
	return strings.Join(p.PreProcess(narrative), " ")
}

func hasWordRune(tok string) bool {
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
