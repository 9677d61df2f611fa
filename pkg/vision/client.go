// Package vision provides the image-comparison collaborator used for
// cross-validating keyword-sourced comps against the item's own photos.
package vision

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/relist-ai/comps-cli/internal/resilience"
)

// maxItemImages caps how many item photos accompany each comparison.
const maxItemImages = 3

// comparePrompt instructs the model to compare product photos.
const comparePrompt = `You are comparing product photos for a marketplace listing. The first images show the item being valued; the final image shows a candidate comparable listing. Judge whether they depict the same product (same brand, model, and variant — ignore lighting, angle, and background).

Respond with ONLY valid JSON, no other text:
{"similarity_score": 0.0, "is_same_product": false, "reasoning": "brief explanation"}`

// Comparison is the verdict for one item-vs-comp image comparison.
type Comparison struct {
	SimilarityScore float64 `json:"similarity_score"`
	IsSameProduct   bool    `json:"is_same_product"`
	Reasoning       string  `json:"reasoning"`
}

// Client compares a comp listing's photo against the item's photos.
type Client interface {
	CompareImages(ctx context.Context, itemImageURLs []string, compImageURL string) (*Comparison, error)
}

// claudeClient implements Client using the official anthropic-sdk-go.
type claudeClient struct {
	client  sdk.Client
	model   string
	limiter *rate.Limiter
}

// NewClient creates a vision client backed by the SDK. ratePerSecond bounds
// outbound request rate; zero or negative disables limiting.
func NewClient(apiKey, model string, ratePerSecond float64) Client {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}
	return &claudeClient{
		client:  sdk.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (c *claudeClient) CompareImages(ctx context.Context, itemImageURLs []string, compImageURL string) (*Comparison, error) {
	if len(itemImageURLs) == 0 {
		return nil, eris.New("vision: no item images to compare against")
	}
	if compImageURL == "" {
		return nil, eris.New("vision: comp has no image")
	}

	if len(itemImageURLs) > maxItemImages {
		itemImageURLs = itemImageURLs[:maxItemImages]
	}

	blocks := make([]sdk.ContentBlockParamUnion, 0, len(itemImageURLs)+2)
	for _, u := range itemImageURLs {
		blocks = append(blocks, sdk.NewImageBlock(sdk.URLImageSourceParam{URL: u}))
	}
	blocks = append(blocks, sdk.NewImageBlock(sdk.URLImageSourceParam{URL: compImageURL}))
	blocks = append(blocks, sdk.NewTextBlock("Compare the candidate listing photo (last image) against the item photos."))

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: 512,
		System:    []sdk.TextBlockParam{{Text: comparePrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(blocks...)},
	}

	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.ShouldRetry = retryableAPIError
	retryCfg.OnRetry = resilience.RetryLogger("vision", "compare_images")

	msg, err := resilience.Do(ctx, retryCfg, func(ctx context.Context) (*sdk.Message, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return c.client.Messages.New(ctx, params)
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: compare images")
	}

	return parseComparison(messageText(msg))
}

// retryableAPIError treats rate limits and server-side failures as transient.
func retryableAPIError(err error) bool {
	var apierr *sdk.Error
	if errors.As(err, &apierr) {
		return resilience.IsTransientHTTPStatus(apierr.StatusCode)
	}
	return resilience.IsTransient(err)
}

func messageText(msg *sdk.Message) string {
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text
		}
	}
	return ""
}

// parseComparison extracts the JSON verdict from the model response, which
// may carry surrounding text.
func parseComparison(text string) (*Comparison, error) {
	if text == "" {
		return nil, eris.New("vision: empty response")
	}

	jsonStart := strings.Index(text, "{")
	jsonEnd := strings.LastIndex(text, "}")
	if jsonStart < 0 || jsonEnd < 0 || jsonEnd <= jsonStart {
		return nil, eris.Errorf("vision: no JSON in response: %s", text)
	}

	var result Comparison
	if err := json.Unmarshal([]byte(text[jsonStart:jsonEnd+1]), &result); err != nil {
		return nil, eris.Wrap(err, "vision: parse response JSON")
	}

	if result.SimilarityScore < 0 {
		result.SimilarityScore = 0
	}
	if result.SimilarityScore > 1 {
		result.SimilarityScore = 1
	}

	return &result, nil
}
