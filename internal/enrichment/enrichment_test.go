package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"wishcdp/internal/domain"
	"wishcdp/internal/providers/search"
)

type fakeDetailedExtractor struct {
	raw json.RawMessage
	err error
}

func (f *fakeDetailedExtractor) ExtractDetailed(ctx context.Context, text string) (json.RawMessage, error) {
	return f.raw, f.err
}

type fakeSearcher struct {
	results []search.Result
	err     error
	query   string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]search.Result, error) {
	f.query = query
	return f.results, f.err
}

type fakeDetailsStore struct {
	domain.ProductRepository
	details map[string][]byte
	err     error
}

func (f *fakeDetailsStore) UpsertDetails(ctx context.Context, itemID string, details []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.details == nil {
		f.details = map[string][]byte{}
	}
	f.details[itemID] = details
	return nil
}

func TestEnrichStoresDetailsWithCompetitors(t *testing.T) {
	extractor := &fakeDetailedExtractor{raw: json.RawMessage(`{"title":"Widget","brand":"Acme","variants":[]}`)}
	searcher := &fakeSearcher{results: []search.Result{{Title: "Shop A", Link: "https://a.test"}}}
	store := &fakeDetailsStore{}
	svc := NewService(extractor, searcher, store, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "widget page text", "abc123"); err != nil {
		t.Fatalf("Enrich: %v", err)
	}

	if searcher.query != "Widget Acme" {
		t.Fatalf("competitor query = %q", searcher.query)
	}

	var blob struct {
		Data        json.RawMessage `json:"data"`
		Competitors []search.Result `json:"competitors"`
	}
	if err := json.Unmarshal(store.details["abc123"], &blob); err != nil {
		t.Fatalf("decode blob: %v", err)
	}
	if len(blob.Competitors) != 1 || blob.Competitors[0].Link != "https://a.test" {
		t.Fatalf("competitors = %#v", blob.Competitors)
	}
}

func TestEnrichSearchFailureDegradesGracefully(t *testing.T) {
	extractor := &fakeDetailedExtractor{raw: json.RawMessage(`{"title":"Widget"}`)}
	searcher := &fakeSearcher{err: errors.New("quota exhausted")}
	store := &fakeDetailsStore{}
	svc := NewService(extractor, searcher, store, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "text", "abc123"); err != nil {
		t.Fatalf("Enrich must not fail on search errors: %v", err)
	}
	if _, ok := store.details["abc123"]; !ok {
		t.Fatal("details must be stored without competitors")
	}
}

func TestEnrichNilSearcher(t *testing.T) {
	extractor := &fakeDetailedExtractor{raw: json.RawMessage(`{"title":"Widget"}`)}
	store := &fakeDetailsStore{}
	svc := NewService(extractor, nil, store, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "text", "abc123"); err != nil {
		t.Fatalf("Enrich: %v", err)
	}
}

func TestEnrichExtractionFailure(t *testing.T) {
	extractor := &fakeDetailedExtractor{err: errors.New("model down")}
	store := &fakeDetailsStore{}
	svc := NewService(extractor, nil, store, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "text", "abc123"); err == nil {
		t.Fatal("expected error when extraction fails")
	}
	if len(store.details) != 0 {
		t.Fatal("nothing may be stored on extraction failure")
	}
}

func TestEnrichStorageFailure(t *testing.T) {
	extractor := &fakeDetailedExtractor{raw: json.RawMessage(`{"title":"Widget"}`)}
	store := &fakeDetailsStore{err: errors.New("table missing")}
	svc := NewService(extractor, nil, store, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "text", "abc123"); err == nil {
		t.Fatal("expected storage error to surface")
	}
}

func TestEnrichValidatesInput(t *testing.T) {
	svc := NewService(&fakeDetailedExtractor{}, nil, &fakeDetailsStore{}, zerolog.Nop())

	if err := svc.Enrich(context.Background(), "  ", "abc123"); err == nil {
		t.Fatal("expected error for empty text")
	}
	if err := svc.Enrich(context.Background(), "text", ""); err == nil {
		t.Fatal("expected error for empty item id")
	}
}
