package advisor

import (
	"strings"
	"sync"

	"github.com/jdkato/prose/tokenize"
	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

var punktPool = sync.Pool{
	New: func() any { return tokenize.NewPunktSentenceTokenizer() },
}

// SplitSentences segments text with the pretrained English Punkt model, so
// abbreviations such as "Mr." or "U.S." do not end a sentence. Segments are
// trimmed and empty ones dropped.
func SplitSentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	punkt := punktPool.Get().(*tokenize.PunktSentenceTokenizer)
	defer punktPool.Put(punkt)

	var out []string
	for _, sent := range punkt.Tokenize(text) {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		out = append(out, sent)
	}
	return out
}

// WordTokenizer splits a sentence into word tokens.
type WordTokenizer interface {
	Tokenize(text string) []string
}

// TreebankWordTokenizer splits a sentence into Penn Treebank tokens:
// contractions become two tokens ("do", "n't"), punctuation is isolated and
// decimals like "19.00" stay whole. It is safe for concurrent use.
type TreebankWordTokenizer struct {
	tb *tokenize.TreebankWordTokenizer
}

// NewTreebankWordTokenizer compiles the Treebank rules.
func NewTreebankWordTokenizer() *TreebankWordTokenizer {
	return &TreebankWordTokenizer{tb: tokenize.NewTreebankWordTokenizer()}
}

// Tokenize returns the Treebank tokens of text.
func (t *TreebankWordTokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	raw := t.tb.Tokenize(text)
	out := raw[:0]
	for _, tok := range raw {
		if strings.TrimSpace(tok) == "" {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// BertWordTokenizer splits on whitespace and isolates punctuation, the same
// pre-tokenization a BERT tokenizer applies before word pieces.
type BertWordTokenizer struct {
	pre *pretokenizer.BertPreTokenizer
}

// NewBertWordTokenizer returns a tokenizer safe for concurrent use.
func NewBertWordTokenizer() *BertWordTokenizer {
	return &BertWordTokenizer{pre: pretokenizer.NewBertPreTokenizer()}
}

// Tokenize returns the pre-tokenized words of text.
func (b *BertWordTokenizer) Tokenize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	pts, err := b.pre.PreTokenize(tokenizer.NewPreTokenizedString(text))
	if err != nil {
		return strings.Fields(text)
	}
	splits := pts.GetSplits(normalizer.OriginalTarget, tokenizer.Byte)
	out := make([]string, 0, len(splits))
	for _, split := range splits {
		if split.Value == "" {
			continue
		}
		out = append(out, split.Value)
	}
	return out
}
