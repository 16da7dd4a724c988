// Package enrichment runs the best-effort secondary pass after a product is
// durable: a detailed extraction stored as an opaque blob, optionally joined
// with competitor search results. It only ever adds to an existing product
// and never creates one.
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"wishcdp/internal/domain"
	"wishcdp/internal/providers/search"
)

const competitorResultLimit = 10

// DetailedExtractor is the non-lite extraction capability.
type DetailedExtractor interface {
	ExtractDetailed(ctx context.Context, text string) (json.RawMessage, error)
}

// Searcher runs competitor web searches. Optional.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]search.Result, error)
}

// Service implements the enrichment stage.
type Service struct {
	extractor DetailedExtractor
	searcher  Searcher
	products  domain.ProductRepository
	logger    zerolog.Logger
}

// NewService wires the enrichment collaborators. searcher may be nil when
// competitor research is not configured.
func NewService(extractor DetailedExtractor, searcher Searcher, products domain.ProductRepository, logger zerolog.Logger) *Service {
	return &Service{
		extractor: extractor,
		searcher:  searcher,
		products:  products,
		logger:    logger,
	}
}

type detailsBlob struct {
	Data        json.RawMessage `json:"data"`
	Competitors []search.Result `json:"competitors,omitempty"`
	Query       string          `json:"query,omitempty"`
}

// Enrich extracts detailed product data from text and attaches it to the
// product identified by itemID. Competitor search failures degrade the blob
// rather than failing the call; extraction or storage failures surface as an
// error for the caller to log and swallow.
func (s *Service) Enrich(ctx context.Context, text, itemID string) error {
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyInput
	}
	if strings.TrimSpace(itemID) == "" {
		return errors.New("enrichment: item id is required")
	}

	detailed, err := s.extractor.ExtractDetailed(ctx, text)
	if err != nil {
		return fmt.Errorf("detailed extraction: %w", err)
	}

	blob := detailsBlob{Data: detailed}
	if s.searcher != nil {
		if query := competitorQuery(detailed); query != "" {
			results, err := s.searcher.Search(ctx, query, competitorResultLimit)
			if err != nil {
				s.logger.Warn().Err(err).Str("item_id", itemID).Msg("enrichment: competitor search failed")
			} else {
				blob.Competitors = results
				blob.Query = query
			}
		}
	}

	encoded, err := json.Marshal(blob)
	if err != nil {
		return fmt.Errorf("encode details: %w", err)
	}
	if err := s.products.UpsertDetails(ctx, itemID, encoded); err != nil {
		return fmt.Errorf("store details: %w", err)
	}

	s.logger.Info().Str("item_id", itemID).Msg("enrichment: details stored")
	return nil
}

// competitorQuery assembles a search query from whatever descriptors the
// detailed extraction happened to produce.
func competitorQuery(detailed json.RawMessage) string {
	var fields struct {
		Title string `json:"title"`
		Brand string `json:"brand"`
	}
	if err := json.Unmarshal(detailed, &fields); err != nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if t := strings.TrimSpace(fields.Title); t != "" {
		parts = append(parts, t)
	}
	if b := strings.TrimSpace(fields.Brand); b != "" {
		parts = append(parts, b)
	}
	return strings.Join(parts, " ")
}
