// Package pipeline implements the item-processing workflow: normalize raw
// product-page markup, gate it through classification, extract structured
// fields, persist them, and enrich the record best-effort. Every attempt ends
// in a structured Result; no durable product survives an attempt that did not
// succeed.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"wishcdp/internal/config"
	"wishcdp/internal/content"
	"wishcdp/internal/domain"
)

// Failure reasons reported on error results. The dispatch layer treats them
// as opaque; they exist for logs and for callers inspecting result payloads.
const (
	ReasonEmptyMarkup    = "Empty HTML content"
	ReasonEmptyItemID    = "Empty item ID"
	ReasonClassification = "Classification failed"
	ReasonExtraction     = "Processing failed"
	ReasonPersistence    = "Persistence failed"
	ReasonUnexpected     = "Unexpected processing error"
)

// Classifier estimates the probability that text describes a purchasable
// ecommerce product.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// Extractor pulls structured product fields out of normalized page text.
type Extractor interface {
	Extract(ctx context.Context, text string) (domain.ExtractedProduct, error)
}

// ImageFinder is the secondary image lookup used when the page's own image
// candidate fails validation.
type ImageFinder interface {
	FindImage(ctx context.Context, title, brand string, category domain.Category) (string, error)
}

// ImageValidator checks that a URL actually serves image content.
type ImageValidator interface {
	IsImage(ctx context.Context, url string) bool
}

// Enricher runs the best-effort secondary extraction after persistence.
type Enricher interface {
	Enrich(ctx context.Context, text, itemID string) error
}

// Deps wires the pipeline's collaborators.
type Deps struct {
	Classifier Classifier
	Extractor  Extractor
	Products   domain.ProductRepository
	Images     ImageFinder
	Validator  ImageValidator
	Enricher   Enricher
	Policy     config.Policy
	Logger     zerolog.Logger
}

// Pipeline orchestrates one work item through the stage chain. Stages run
// strictly in sequence; there is no intra-pipeline parallelism and no
// mid-flight cancellation. The same item may be processed again under retry:
// persistence is an upsert and the compensating delete removes partial state
// before an attempt concludes, so re-runs are safe.
type Pipeline struct {
	classifier Classifier
	extractor  Extractor
	products   domain.ProductRepository
	images     ImageFinder
	validator  ImageValidator
	enricher   Enricher
	policy     config.Policy
	logger     zerolog.Logger
}

// New constructs the orchestrator.
func New(deps Deps) *Pipeline {
	return &Pipeline{
		classifier: deps.Classifier,
		extractor:  deps.Extractor,
		products:   deps.Products,
		images:     deps.Images,
		validator:  deps.Validator,
		enricher:   deps.Enricher,
		policy:     deps.Policy,
		logger:     deps.Logger,
	}
}

// Process runs one attempt for the work item and always returns a structured
// Result. Reaching a rejected or error outcome after any durable write
// triggers a compensating delete of the product (and, by cascade, its price
// history) before the attempt concludes.
func (p *Pipeline) Process(ctx context.Context, item domain.WorkItem) (result Result) {
	if strings.TrimSpace(item.RawMarkup) == "" {
		p.logger.Error().Str("item_id", item.ItemID).Msg("pipeline: empty markup")
		return errorResult(item.ItemID, ReasonEmptyMarkup, "")
	}
	if strings.TrimSpace(item.ItemID) == "" {
		p.logger.Error().Msg("pipeline: empty item id")
		return errorResult("", ReasonEmptyItemID, "")
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			p.logger.Error().Str("item_id", item.ItemID).Interface("panic", recovered).
				Msg("pipeline: recovered from panic")
			result = errorResult(item.ItemID, ReasonUnexpected, fmt.Sprint(recovered))
			p.compensate(ctx, item.ItemID)
		}
	}()

	result = p.run(ctx, item)
	if result.Status != StatusSuccess {
		p.compensate(ctx, item.ItemID)
	}
	return result
}

func (p *Pipeline) run(ctx context.Context, item domain.WorkItem) Result {
	logger := p.logger.With().Str("item_id", item.ItemID).Logger()

	normalized := content.Normalize(item.RawMarkup, item.SourceURL, p.policy.TextCap)
	if normalized.ImageURL != "" {
		logger.Info().Str("image_url", normalized.ImageURL).Msg("pipeline: found image candidate")
	}

	classification, err := p.classifier.Classify(ctx, normalized.Text)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: classification failed")
		return errorResult(item.ItemID, ReasonClassification, err.Error())
	}
	logger.Info().Float64("probability", classification.Probability).Msg("pipeline: classified")

	if classification.Probability < p.policy.ClassificationThreshold {
		logger.Info().Float64("probability", classification.Probability).
			Msg("pipeline: rejected below threshold")
		return rejectedResult(item.ItemID, classification.Probability)
	}

	candidate, err := p.extractor.Extract(ctx, normalized.Text)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline: extraction failed")
		return errorResult(item.ItemID, ReasonExtraction, err.Error())
	}

	// The page's own image candidate takes precedence over whatever URL the
	// model extracted.
	if normalized.ImageURL != "" {
		candidate.ImageURL = normalized.ImageURL
	}

	imageURL := p.resolveImage(ctx, logger, candidate)
	if err := p.products.UpsertProduct(ctx, item.ItemID, candidate, imageURL); err != nil {
		logger.Error().Err(err).Msg("pipeline: persist failed")
		return errorResult(item.ItemID, ReasonPersistence, err.Error())
	}

	if candidate.HasPrice() {
		currency := candidate.Currency
		if currency == "" {
			currency = "USD"
		}
		record := domain.PriceRecord{
			ProductID: item.ItemID,
			Amount:    candidate.Price,
			Currency:  currency,
		}
		// Price history is best-effort relative to the core record.
		if err := p.products.InsertPrice(ctx, record); err != nil {
			logger.Warn().Err(err).Msg("pipeline: price insert failed, continuing")
		}
	}

	p.enrich(ctx, logger, normalized.Text, item.ItemID)

	logger.Info().Msg("pipeline: item processed")
	return successResult(item.ItemID, classification.Probability, imageURL != "")
}

// resolveImage applies the image policy in order: the candidate URL when it
// validates, then the secondary lookup, then no image. Failures here are
// never fatal to the record.
func (p *Pipeline) resolveImage(ctx context.Context, logger zerolog.Logger, candidate domain.ExtractedProduct) string {
	if candidate.ImageURL != "" && p.validator.IsImage(ctx, candidate.ImageURL) {
		return candidate.ImageURL
	}
	if candidate.ImageURL != "" {
		logger.Warn().Str("image_url", candidate.ImageURL).Msg("pipeline: image candidate invalid, trying fallback")
	}
	if p.images == nil {
		return ""
	}
	fallback, err := p.images.FindImage(ctx, candidate.Title, candidate.Brand, candidate.Category)
	if err != nil {
		logger.Warn().Err(err).Msg("pipeline: image fallback lookup failed")
		return ""
	}
	return fallback
}

// enrich runs the best-effort secondary pass. Any failure, including a panic,
// is contained here so it can never change the pipeline's reported outcome.
func (p *Pipeline) enrich(ctx context.Context, logger zerolog.Logger, text, itemID string) {
	if p.enricher == nil {
		return
	}
	defer func() {
		if recovered := recover(); recovered != nil {
			logger.Warn().Interface("panic", recovered).Msg("pipeline: enrichment panicked, continuing")
		}
	}()
	if err := p.enricher.Enrich(ctx, text, itemID); err != nil {
		logger.Warn().Err(err).Msg("pipeline: enrichment failed, continuing")
	}
}

// compensate removes any durable state the attempt may have produced. Its own
// failure is logged but never masks the original outcome.
func (p *Pipeline) compensate(ctx context.Context, itemID string) {
	if itemID == "" {
		return
	}
	if err := p.products.DeleteProduct(ctx, itemID); err != nil {
		p.logger.Error().Err(err).Str("item_id", itemID).Msg("pipeline: compensating delete failed")
	}
}
