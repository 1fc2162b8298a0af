package advisor

// Numeric feature names as they appear in the feature schema and the training export.
const (
	FeatureCorpusScoreSum    = "corpus_score_sum"
	FeatureWordNum           = "word_num"
	FeatureSentenceNum       = "sentence_num"
	FeatureNegativeRatio     = "negative_ratio"
	FeatureMostNegativeScore = "most_negative_score"
)

// DefaultResponseTypes returns the response categories in the column order
// produced by one-hot encoding the training data (lexical order).
func DefaultResponseTypes() []ResponseType {
	return []ResponseType{
		"Closed",
		"Closed with explanation",
		"Closed with monetary relief",
		"Closed with non-monetary relief",
		"Closed with relief",
		"Closed without relief",
		"Untimely response",
	}
}

// DefaultProductLabels returns the CFPB product categories in label-encoder order.
func DefaultProductLabels() []ProductLabel {
	return []ProductLabel{
		"Bank account or service",
		"Checking or savings account",
		"Consumer Loan",
		"Credit card",
		"Credit card or prepaid card",
		"Credit reporting",
		"Credit reporting, credit repair services, or other personal consumer reports",
		"Debt collection",
		"Money transfer, virtual currency, or money service",
		"Money transfers",
		"Mortgage",
		"Other financial service",
		"Payday loan",
		"Payday loan, title loan, or personal loan",
		"Prepaid card",
		"Student loan",
		"Vehicle loan or lease",
		"Virtual currency",
	}
}

// DefaultNumericSlots returns the numeric block of the combined feature vector.
// Only the two count features were fitted by the min-max scaler.
func DefaultNumericSlots() []NumericSlot {
	return []NumericSlot{
		{Name: FeatureCorpusScoreSum},
		{Name: FeatureWordNum, Scaled: true},
		{Name: FeatureSentenceNum, Scaled: true},
		{Name: FeatureNegativeRatio},
		{Name: FeatureMostNegativeScore},
	}
}

// DefaultStopWords returns the NLTK English stop word list.
func DefaultStopWords() []string {
	return []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "you're",
		"you've", "you'll", "you'd", "your", "yours", "yourself", "yourselves", "he",
		"him", "his", "himself", "she", "she's", "her", "hers", "herself", "it", "it's",
		"its", "itself", "they", "them", "their", "theirs", "themselves", "what", "which",
		"who", "whom", "this", "that", "that'll", "these", "those", "am", "is", "are",
		"was", "were", "be", "been", "being", "have", "has", "had", "having", "do",
		"does", "did", "doing", "a", "an", "the", "and", "but", "if", "or", "because",
		"as", "until", "while", "of", "at", "by", "for", "with", "about", "against",
		"between", "into", "through", "during", "before", "after", "above", "below",
		"to", "from", "up", "down", "in", "out", "on", "off", "over", "under", "again",
		"further", "then", "once", "here", "there", "when", "where", "why", "how", "all",
		"any", "both", "each", "few", "more", "most", "other", "some", "such", "no",
		"nor", "not", "only", "own", "same", "so", "than", "too", "very", "s", "t", "can",
		"will", "just", "don", "don't", "should", "should've", "now", "d", "ll", "m", "o",
		"re", "ve", "y", "ain", "aren", "aren't", "couldn", "couldn't", "didn", "didn't",
		"doesn", "doesn't", "hadn", "hadn't", "hasn", "hasn't", "haven", "haven't", "isn",
		"isn't", "ma", "mightn", "mightn't", "mustn", "mustn't", "needn", "needn't", "shan",
		"shan't", "shouldn", "shouldn't", "wasn", "wasn't", "weren", "weren't", "won",
		"won't", "wouldn", "wouldn't",
	}
}
