package generator

import "strings"

// DefaultSiteKeywords are matched case-insensitively against the prompt.
var DefaultSiteKeywords = []string{"clone", "website", "site", "html"}

// Classifier decides whether a prompt asks for a whole site (full document
// template plus structural validation) or a single component.
type Classifier interface {
	IsSiteRequest(prompt string) bool
}

// ClassifierFunc adapts a plain function to Classifier.
type ClassifierFunc func(prompt string) bool

func (f ClassifierFunc) IsSiteRequest(prompt string) bool { return f(prompt) }

// KeywordClassifier is a naive substring policy.
type KeywordClassifier struct {
	Keywords []string
}

func NewKeywordClassifier(keywords []string) KeywordClassifier {
	if len(keywords) == 0 {
		keywords = DefaultSiteKeywords
	}
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			lowered = append(lowered, k)
		}
	}
	return KeywordClassifier{Keywords: lowered}
}

func (k KeywordClassifier) IsSiteRequest(prompt string) bool {
	p := strings.ToLower(prompt)
	for _, kw := range k.Keywords {
		if strings.Contains(p, kw) {
			return true
		}
	}
	return false
}
