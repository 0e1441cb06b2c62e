package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/AndreiCalugar/FertiHub/internal/config"
)

const extractionSystemPrompt = `You are an expert at extracting structured quote/quotation data from emails and documents.
Extract the following information:
- product_name: The name or model of the product being quoted
- unit_price: Price per unit (number only, no currency symbols)
- total_price: Total price (number only, no currency symbols)
- currency: Currency code (USD, EUR, GBP, etc.)
- lead_time_days: Delivery/lead time in days (extract number only)
- validity_period: How long the quote is valid (text format, e.g. "30 days")
- notes: Any additional important information

Return ONLY a JSON object with these exact fields. If a field cannot be determined, use null.
Also include a "confidence" field (0.0 to 1.0) indicating how confident you are in the extraction.`

// ParsedQuote is the structured extraction produced from raw quotation text.
type ParsedQuote struct {
	ProductName     *string  `json:"product_name"`
	UnitPrice       *float64 `json:"unit_price"`
	TotalPrice      *float64 `json:"total_price"`
	Currency        string   `json:"currency"`
	LeadTimeDays    *int     `json:"lead_time_days"`
	ValidityPeriod  *string  `json:"validity_period"`
	Notes           *string  `json:"notes"`
	ConfidenceScore float64  `json:"confidence_score"`
	NeedsReview     bool     `json:"needs_review"`
}

// rawExtraction mirrors the JSON shape the model is asked to produce.
// json.Number fields tolerate the model quoting numeric values.
type rawExtraction struct {
	ProductName    *string      `json:"product_name"`
	UnitPrice      *json.Number `json:"unit_price"`
	TotalPrice     *json.Number `json:"total_price"`
	Currency       *string      `json:"currency"`
	LeadTimeDays   *json.Number `json:"lead_time_days"`
	ValidityPeriod *string      `json:"validity_period"`
	Notes          *string      `json:"notes"`
	Confidence     *json.Number `json:"confidence"`
}

// chatCompleter is the slice of the OpenAI client the parser needs.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// IQuoteParser extracts structured quote data from free-form text.
type IQuoteParser interface {
	ParseQuoteFromText(ctx context.Context, text string) (*ParsedQuote, error)
}

type quoteParser struct {
	client    chatCompleter
	model     string
	threshold float64
}

// NewQuoteParser builds a parser backed by the OpenAI chat completions API.
// Returns an error when no API key is configured.
func NewQuoteParser(cfg *config.Config) (IQuoteParser, error) {
	if cfg.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}
	return &quoteParser{
		client:    openai.NewClient(cfg.OpenAIAPIKey),
		model:     cfg.OpenAIModel,
		threshold: cfg.AIConfidenceThreshold,
	}, nil
}

func (p *quoteParser) ParseQuoteFromText(ctx context.Context, text string) (*ParsedQuote, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Extract quote data from this text:\n\n%s", text)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse quote: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("failed to parse quote: empty completion")
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse quote: invalid JSON from model: %w", err)
	}
	return normalize(&raw, p.threshold), nil
}

// normalize applies the review rules to a raw model extraction: a missing
// confidence defaults to 0.5, a missing currency to USD, and the quote is
// flagged for human review when confidence is below the threshold or no
// total price was found.
func normalize(raw *rawExtraction, threshold float64) *ParsedQuote {
	confidence := 0.5
	if raw.Confidence != nil {
		if v, err := raw.Confidence.Float64(); err == nil {
			confidence = v
		}
	}

	out := &ParsedQuote{
		ProductName:     raw.ProductName,
		Currency:        "USD",
		ValidityPeriod:  raw.ValidityPeriod,
		Notes:           raw.Notes,
		ConfidenceScore: confidence,
	}
	if raw.UnitPrice != nil {
		if v, err := raw.UnitPrice.Float64(); err == nil {
			out.UnitPrice = &v
		}
	}
	if raw.TotalPrice != nil {
		if v, err := raw.TotalPrice.Float64(); err == nil {
			out.TotalPrice = &v
		}
	}
	if raw.Currency != nil && *raw.Currency != "" {
		out.Currency = strings.ToUpper(*raw.Currency)
	}
	if raw.LeadTimeDays != nil {
		if v, err := raw.LeadTimeDays.Int64(); err == nil {
			days := int(v)
			out.LeadTimeDays = &days
		}
	}

	out.NeedsReview = confidence < threshold || out.TotalPrice == nil
	return out
}
