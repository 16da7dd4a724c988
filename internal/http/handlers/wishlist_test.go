package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wishcdp/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type fakeJobs struct {
	enqueued []*domain.Job
	err      error
}

func (f *fakeJobs) Enqueue(ctx context.Context, job *domain.Job) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, job)
	return nil
}

func (f *fakeJobs) Claim(ctx context.Context) (*domain.Job, error) {
	return nil, domain.ErrNoJobAvailable
}

func (f *fakeJobs) Complete(ctx context.Context, jobID string, status domain.JobStatus, resultJSON []byte) error {
	return nil
}

func (f *fakeJobs) Requeue(ctx context.Context, jobID string, resultJSON []byte) error {
	return nil
}

type fakeProducts struct {
	product *domain.Product
	err     error
}

func (f *fakeProducts) UpsertProduct(ctx context.Context, itemID string, candidate domain.ExtractedProduct, imageURL string) error {
	return nil
}

func (f *fakeProducts) InsertPrice(ctx context.Context, record domain.PriceRecord) error {
	return nil
}

func (f *fakeProducts) DeleteProduct(ctx context.Context, itemID string) error { return nil }

func (f *fakeProducts) UpsertDetails(ctx context.Context, itemID string, details []byte) error {
	return nil
}

func (f *fakeProducts) GetProduct(ctx context.Context, itemID string) (*domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.product == nil {
		return nil, domain.ErrNotFound
	}
	return f.product, nil
}

func newTestApp(jobs *fakeJobs, products *fakeProducts) *App {
	return NewApp(jobs, products, zerolog.Nop())
}

func newTestRouter(app *App) http.Handler {
	r := chi.NewRouter()
	r.Post("/wishlist/add", app.AddItem)
	r.Get("/wishlist/{item_id}", app.GetItem)
	r.Post("/wishlist/{item_id}/delete", app.DeleteItem)
	return r
}

func TestAddItemAccepted(t *testing.T) {
	jobs := &fakeJobs{}
	router := newTestRouter(newTestApp(jobs, &fakeProducts{}))

	body := `{"item_id":"abc123","page_html":"<html><body>x</body></html>","source_url":"https://shop.test/p/1"}`
	req := httptest.NewRequest(http.MethodPost, "/wishlist/add", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "Item accepted for processing." {
		t.Fatalf("message = %q", resp["message"])
	}

	if len(jobs.enqueued) != 1 {
		t.Fatalf("enqueued = %d jobs, want 1", len(jobs.enqueued))
	}
	job := jobs.enqueued[0]
	if job.Type != domain.JobTypeProcessItem {
		t.Fatalf("job type = %q", job.Type)
	}
	if job.ItemID != "abc123" {
		t.Fatalf("job item id = %q", job.ItemID)
	}
	if job.ID == "" {
		t.Fatal("job id must be set")
	}

	var payload domain.ProcessPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.ItemID != "abc123" || payload.RawMarkup == "" || payload.SourceURL != "https://shop.test/p/1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestAddItemValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "malformed json", body: `{"item_id":`, want: http.StatusBadRequest},
		{name: "missing item id", body: `{"page_html":"<p>x</p>"}`, want: http.StatusUnprocessableEntity},
		{name: "blank item id", body: `{"item_id":"   ","page_html":"<p>x</p>"}`, want: http.StatusUnprocessableEntity},
		{name: "missing page html", body: `{"item_id":"abc123"}`, want: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &fakeJobs{}
			router := newTestRouter(newTestApp(jobs, &fakeProducts{}))

			req := httptest.NewRequest(http.MethodPost, "/wishlist/add", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if len(jobs.enqueued) != 0 {
				t.Fatalf("no job must be enqueued, got %d", len(jobs.enqueued))
			}
		})
	}
}

func TestAddItemEnqueueFailure(t *testing.T) {
	jobs := &fakeJobs{err: errors.New("db down")}
	router := newTestRouter(newTestApp(jobs, &fakeProducts{}))

	body := `{"item_id":"abc123","page_html":"<p>x</p>"}`
	req := httptest.NewRequest(http.MethodPost, "/wishlist/add", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestDeleteItemQueued(t *testing.T) {
	jobs := &fakeJobs{}
	router := newTestRouter(newTestApp(jobs, &fakeProducts{}))

	req := httptest.NewRequest(http.MethodPost, "/wishlist/abc123/delete", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusAccepted)
	}
	if len(jobs.enqueued) != 1 {
		t.Fatalf("enqueued = %d jobs, want 1", len(jobs.enqueued))
	}
	if jobs.enqueued[0].Type != domain.JobTypeDeleteItem {
		t.Fatalf("job type = %q", jobs.enqueued[0].Type)
	}
	if jobs.enqueued[0].ItemID != "abc123" {
		t.Fatalf("job item id = %q", jobs.enqueued[0].ItemID)
	}
}

func TestGetItemFound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	products := &fakeProducts{product: &domain.Product{
		ID:        "abc123",
		Title:     "Widget",
		Category:  domain.CategoryElectronics,
		Brand:     "Acme",
		ImageURL:  "https://cdn.test/w.png",
		CreatedAt: now,
		UpdatedAt: now,
	}}
	router := newTestRouter(newTestApp(&fakeJobs{}, products))

	req := httptest.NewRequest(http.MethodGet, "/wishlist/abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp productResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != "abc123" || resp.Title != "Widget" || resp.Brand != "Acme" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestGetItemNotFound(t *testing.T) {
	router := newTestRouter(newTestApp(&fakeJobs{}, &fakeProducts{}))

	req := httptest.NewRequest(http.MethodGet, "/wishlist/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
