// Package ai exposes the classification and extraction capabilities behind a
// narrow surface so the pipeline never depends on a model vendor's wire
// format. GeminiClient is the network-backed implementation; tests use
// deterministic fakes.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wishcdp/internal/domain"
)

const geminiDefaultTimeout = 30 * time.Second

// Options controls how the Gemini client is configured.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// GeminiClient calls the Gemini generateContent API for classification and
// extraction. Both calls request a JSON response body and decode it into the
// closed domain schema.
type GeminiClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	CandidateCount   int     `json:"candidateCount,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient validates the options and builds a client.
func NewGeminiClient(opts Options) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-1.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	return &GeminiClient{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
	}, nil
}

// Classify asks the model for the probability that text describes a
// purchasable ecommerce product.
func (g *GeminiClient) Classify(ctx context.Context, text string) (domain.Classification, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Classification{}, domain.ErrEmptyInput
	}

	prompt := "You are an expert ecommerce-data classification assistant.\n" +
		"Classify the provided page text as either an ecommerce product or not.\n" +
		"Respond with a JSON object of the form {\"probability\": <number between 0 and 1>}\n" +
		"indicating your confidence that the content is an ecommerce product.\n\n" +
		"Page text:\n" + text

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return domain.Classification{}, err
	}

	var result domain.Classification
	if err := json.Unmarshal(raw, &result); err != nil {
		return domain.Classification{}, fmt.Errorf("%w: decode classification: %v", domain.ErrProviderFailure, err)
	}
	if result.Probability < 0 || result.Probability > 1 {
		return domain.Classification{}, fmt.Errorf("%w: probability %v out of range", domain.ErrProviderFailure, result.Probability)
	}
	return result, nil
}

// Extract asks the model for the structured product fields and validates the
// response against the closed schema.
func (g *GeminiClient) Extract(ctx context.Context, text string) (domain.ExtractedProduct, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ExtractedProduct{}, domain.ErrEmptyInput
	}

	prompt := "You are an expert ecommerce-data extraction assistant.\n" +
		"Extract the product information from the provided page text.\n" +
		"Respond with a JSON object with these fields:\n" +
		`  "title" (string, required), "category" (one of Footwear, Apparel,` + "\n" +
		`  Accessories, Electronics, Home, Beauty, Sports, Toys, Other),` + "\n" +
		`  "price" (number, 0 when unknown), "currency" (ISO 4217 code or null),` + "\n" +
		`  "description" (string or null), "brand" (string or null),` + "\n" +
		`  "image_url" (string or null).` + "\n\n" +
		"Page text:\n" + text

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return domain.ExtractedProduct{}, err
	}

	var product domain.ExtractedProduct
	if err := json.Unmarshal(raw, &product); err != nil {
		return domain.ExtractedProduct{}, fmt.Errorf("%w: decode extraction: %v", domain.ErrProviderFailure, err)
	}
	if err := product.Validate(); err != nil {
		return domain.ExtractedProduct{}, err
	}
	return product, nil
}

// ExtractDetailed runs the non-lite extraction pass and returns the model's
// freeform JSON object untouched; callers persist it as an opaque blob.
func (g *GeminiClient) ExtractDetailed(ctx context.Context, text string) (json.RawMessage, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyInput
	}

	prompt := "You are an expert ecommerce-data extraction assistant.\n" +
		"Extract all relevant information from the provided page text, including\n" +
		"variants, options, availability, shipping and any other product details.\n" +
		"Respond with a single JSON object.\n\n" +
		"Page text:\n" + text

	raw, err := g.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("%w: detailed extraction is not valid JSON", domain.ErrProviderFailure)
	}
	return raw, nil
}

func (g *GeminiClient) generate(ctx context.Context, prompt string) (json.RawMessage, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			CandidateCount:   1,
			ResponseMimeType: "application/json",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal gemini request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, g.model, url.QueryEscape(g.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build gemini request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini call: %v", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode gemini response: %v", domain.ErrProviderFailure, err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", domain.ErrProviderFailure)
	}
	return json.RawMessage(decoded.Candidates[0].Content.Parts[0].Text), nil
}
