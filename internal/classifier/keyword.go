package classifier

import (
	"context"
	"strings"
	"unicode"
)

var keywordTable = map[int][]string{
	CategoryHardware: {"printer", "monitor", "keyboard", "mouse", "laptop", "screen", "battery", "disk", "hardware", "cable"},
	CategorySoftware: {"install", "update", "crash", "error", "excel", "outlook", "license", "application", "software", "bug"},
	CategoryNetwork:  {"vpn", "wifi", "wi-fi", "network", "internet", "dns", "proxy", "connection", "ethernet", "latency"},
	CategoryAccount:  {"password", "login", "account", "locked", "access", "permission", "mfa", "2fa", "reset", "username"},
}

// KeywordClassifier scores title and description against fixed keyword lists.
// Title hits weigh double. Ties resolve to the lower category id and a text
// with no hits is classified as software.
type KeywordClassifier struct{}

// NewKeywordClassifier returns the in-process model.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{}
}

// Predict implements Classifier.
func (k *KeywordClassifier) Predict(ctx context.Context, title, description string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	scores := make(map[int]int, len(keywordTable))
	for _, word := range tokenize(title) {
		addHits(scores, word, 2)
	}
	for _, word := range tokenize(description) {
		addHits(scores, word, 1)
	}

	best, bestScore := CategorySoftware, 0
	for id := CategoryHardware; id <= CategoryAccount; id++ {
		if scores[id] > bestScore {
			best, bestScore = id, scores[id]
		}
	}
	return best, nil
}

func addHits(scores map[int]int, word string, weight int) {
	for id, keywords := range keywordTable {
		for _, kw := range keywords {
			if word == kw {
				scores[id] += weight
			}
		}
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})
}
