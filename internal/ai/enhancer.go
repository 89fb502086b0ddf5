package ai

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Prathmesh125/reviewsystem/internal/logger"
)

// ErrInvalidContent means the raw text failed quality validation. The external
// service is never called for such input.
var ErrInvalidContent = errors.New("content failed quality validation")

const minContentLength = 10

// Request carries the raw customer text plus the business context embedded in
// the prompt.
type Request struct {
	Text         string
	Rating       int
	BusinessName string
	BusinessType string
}

// Result is the contract both strategies satisfy.
type Result struct {
	EnhancedText string
	Confidence   float64
	Sentiment    string
	Keywords     []string
	Provider     string
}

// Enhancer turns raw customer feedback into polished review text.
type Enhancer interface {
	Enhance(ctx context.Context, req Request) (*Result, error)
}

// Resolver composes a primary (remote) strategy with the deterministic local
// fallback so callers always receive some enhanced text. The external AI
// service is a best-effort accelerator, not a hard dependency: review
// collection never blocks on third-party availability.
type Resolver struct {
	primary  Enhancer
	fallback Enhancer
}

// NewResolver builds the adapter. primary may be nil (no API key configured),
// in which case every request takes the fallback path.
func NewResolver(primary Enhancer) *Resolver {
	return &Resolver{
		primary:  primary,
		fallback: NewHeuristicEnhancer(),
	}
}

func (r *Resolver) Enhance(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateContent(req.Text); err != nil {
		return nil, err
	}

	if r.primary != nil {
		result, err := r.primary.Enhance(ctx, req)
		if err == nil && result != nil && strings.TrimSpace(result.EnhancedText) != "" {
			return result, nil
		}
		if err != nil {
			// Degradation is recovered locally and never surfaced to the
			// end user.
			logger.CtxWarn(ctx, "remote enhancement failed, using fallback", "error", err.Error())
		}
	}

	return r.fallback.Enhance(ctx, req)
}

// ValidateContent rejects empty, too-short, or pure-noise input before any
// external call is made.
func ValidateContent(text string) error {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minContentLength {
		return ErrInvalidContent
	}

	letters := 0
	vowels := 0
	for _, r := range trimmed {
		if unicode.IsLetter(r) {
			letters++
			if strings.ContainsRune("aeiouAEIOU", r) {
				vowels++
			}
		}
	}
	// Keyboard mashing and symbol spam have almost no letters or no vowels.
	if letters < len(trimmed)/2 || vowels == 0 {
		return ErrInvalidContent
	}

	// A single character repeated past any natural frequency is noise.
	counts := make(map[rune]int)
	runes := []rune(strings.ToLower(trimmed))
	for _, r := range runes {
		counts[r]++
	}
	for _, n := range counts {
		if n > len(runes)*2/3 {
			return ErrInvalidContent
		}
	}

	return nil
}

// scoreConfidence applies the shared heuristic: base 0.7, +0.1 when the
// enhanced length stays within [1x,2x] of the original, +0.1 when the result
// is capitalized and punctuated, capped at 1.0.
func scoreConfidence(original, enhanced string) float64 {
	confidence := 0.7

	ol := len(strings.TrimSpace(original))
	el := len(strings.TrimSpace(enhanced))
	if ol > 0 && el >= ol && el <= 2*ol {
		confidence += 0.1
	}

	trimmed := strings.TrimSpace(enhanced)
	if trimmed != "" {
		first, _ := utf8.DecodeRuneInString(trimmed)
		last := trimmed[len(trimmed)-1]
		if unicode.IsUpper(first) && (last == '.' || last == '!' || last == '?') {
			confidence += 0.1
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
