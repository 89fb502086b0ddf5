package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Prathmesh125/reviewsystem/internal/logger"
)

// OpenAIEnhancer is the primary strategy: one chat completion for the rewrite
// and a second lightweight call for sentiment/keywords. Both calls share a
// bounded timeout; insight extraction degrades to the local heuristic rather
// than failing the enhancement.
type OpenAIEnhancer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAIEnhancer(apiKey, model, baseURL string, timeout time.Duration) *OpenAIEnhancer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIEnhancer{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (e *OpenAIEnhancer) Enhance(ctx context.Context, req Request) (*Result, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	enhanced, err := e.rewrite(callCtx, req)
	if err != nil {
		return nil, err
	}

	sentiment, keywords := e.extractInsights(callCtx, req, enhanced)

	return &Result{
		EnhancedText: enhanced,
		Confidence:   scoreConfidence(req.Text, enhanced),
		Sentiment:    sentiment,
		Keywords:     keywords,
		Provider:     "openai",
	}, nil
}

func (e *OpenAIEnhancer) rewrite(ctx context.Context, req Request) (string, error) {
	prompt := buildPrompt(req)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You rewrite short customer feedback into a polished, natural-sounding " +
					"review written in first person. Keep the customer's meaning and tone. " +
					"Reply with the rewritten review only.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}

	enhanced := strings.TrimSpace(resp.Choices[0].Message.Content)
	if enhanced == "" {
		return "", errors.New("blank completion content")
	}
	return enhanced, nil
}

// extractInsights runs the analytics side call. Any failure defaults to the
// local heuristic; it never aborts the enhancement.
func (e *OpenAIEnhancer) extractInsights(ctx context.Context, req Request, enhanced string) (string, []string) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "Classify the sentiment of the review as exactly one of: positive, " +
					"negative, neutral. Then list up to five lowercase keywords. " +
					"Format: sentiment on the first line, comma-separated keywords on the second.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: req.Text,
			},
		},
		MaxTokens:   60,
		Temperature: 0,
	})
	if err != nil || len(resp.Choices) == 0 {
		if err != nil {
			logger.CtxDebug(ctx, "insight extraction failed, using heuristic", "error", err.Error())
		}
		return DetectSentiment(req.Text, req.Rating), ExtractKeywords(req.Text, 5)
	}

	sentiment, keywords := parseInsights(resp.Choices[0].Message.Content)
	if sentiment == "" {
		sentiment = DetectSentiment(req.Text, req.Rating)
	}
	if len(keywords) == 0 {
		keywords = ExtractKeywords(req.Text, 5)
	}
	return sentiment, keywords
}

func buildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Business: %s", req.BusinessName)
	if req.BusinessType != "" {
		fmt.Fprintf(&b, " (%s)", req.BusinessType)
	}
	fmt.Fprintf(&b, "\nStar rating: %d/5\n", req.Rating)
	fmt.Fprintf(&b, "Customer feedback: %s", req.Text)
	return b.String()
}

func parseInsights(content string) (string, []string) {
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) == 0 {
		return "", nil
	}

	sentiment := strings.ToLower(strings.TrimSpace(lines[0]))
	switch sentiment {
	case "positive", "negative", "neutral":
	default:
		sentiment = ""
	}

	var keywords []string
	if len(lines) > 1 {
		for _, kw := range strings.Split(lines[1], ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				keywords = append(keywords, kw)
			}
		}
		if len(keywords) > 5 {
			keywords = keywords[:5]
		}
	}
	return sentiment, keywords
}
