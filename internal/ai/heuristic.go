package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "amazing": true,
	"awesome": true, "fantastic": true, "wonderful": true, "love": true,
	"loved": true, "best": true, "friendly": true, "fast": true,
	"delicious": true, "clean": true, "helpful": true, "nice": true,
	"perfect": true, "recommend": true, "tasty": true, "fresh": true,
	"happy": true, "pleasant": true, "professional": true, "quick": true,
}

var negativeWords = map[string]bool{
	"bad": true, "terrible": true, "awful": true, "horrible": true,
	"worst": true, "slow": true, "rude": true, "dirty": true,
	"cold": true, "expensive": true, "disappointing": true, "disappointed": true,
	"poor": true, "hate": true, "hated": true, "unfriendly": true,
	"stale": true, "broken": true, "wait": true, "waiting": true,
	"never": true, "unprofessional": true, "overpriced": true,
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"is": true, "was": true, "were": true, "are": true, "it": true, "its": true,
	"i": true, "we": true, "they": true, "this": true, "that": true, "at": true,
	"to": true, "of": true, "in": true, "on": true, "for": true, "with": true,
	"my": true, "our": true, "had": true, "have": true, "has": true, "very": true,
	"so": true, "not": true, "there": true, "here": true, "you": true,
}

// HeuristicEnhancer is the deterministic local strategy: a template rewrite
// keyed off a lexical sentiment count. Lower quality than the remote strategy,
// but always available.
type HeuristicEnhancer struct{}

func NewHeuristicEnhancer() *HeuristicEnhancer {
	return &HeuristicEnhancer{}
}

func (h *HeuristicEnhancer) Enhance(ctx context.Context, req Request) (*Result, error) {
	sentiment := DetectSentiment(req.Text, req.Rating)
	enhanced := h.rewrite(req, sentiment)

	return &Result{
		EnhancedText: enhanced,
		Confidence:   scoreConfidence(req.Text, enhanced),
		Sentiment:    sentiment,
		Keywords:     ExtractKeywords(req.Text, 5),
		Provider:     "fallback",
	}, nil
}

func (h *HeuristicEnhancer) rewrite(req Request, sentiment string) string {
	feedback := strings.TrimSpace(req.Text)
	feedback = strings.TrimRight(feedback, ".!?")

	place := strings.TrimSpace(req.BusinessName)
	if place == "" {
		place = "this place"
	}

	var enhanced string
	switch sentiment {
	case "positive":
		enhanced = fmt.Sprintf("I had a great experience at %s. %s. Would definitely recommend it!", place, capitalizeFirst(feedback))
	case "negative":
		enhanced = fmt.Sprintf("My visit to %s left room for improvement. %s.", place, capitalizeFirst(feedback))
	default:
		enhanced = fmt.Sprintf("I visited %s recently. %s.", place, capitalizeFirst(feedback))
	}
	return enhanced
}

// DetectSentiment counts lexicon hits; a strong star rating breaks ties.
func DetectSentiment(text string, rating int) string {
	pos, neg := 0, 0
	for _, w := range tokenize(text) {
		if positiveWords[w] {
			pos++
		}
		if negativeWords[w] {
			neg++
		}
	}

	switch {
	case pos > neg:
		return "positive"
	case neg > pos:
		return "negative"
	case rating >= 4:
		return "positive"
	case rating > 0 && rating <= 2:
		return "negative"
	default:
		return "neutral"
	}
}

// ExtractKeywords picks up to max salient words: lexicon hits first, then the
// longest remaining non-stopwords. Deterministic for a given input.
func ExtractKeywords(text string, max int) []string {
	seen := make(map[string]bool)
	var lexicon, rest []string

	for _, w := range tokenize(text) {
		if len(w) < 3 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		if positiveWords[w] || negativeWords[w] {
			lexicon = append(lexicon, w)
		} else {
			rest = append(rest, w)
		}
	}

	sort.SliceStable(rest, func(i, j int) bool { return len(rest[i]) > len(rest[j]) })

	keywords := append(lexicon, rest...)
	if len(keywords) > max {
		keywords = keywords[:max]
	}
	return keywords
}

func tokenize(text string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == ' ' || r == '\'' {
			return r
		}
		return ' '
	}, strings.ToLower(text))
	return strings.Fields(cleaned)
}

func capitalizeFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
