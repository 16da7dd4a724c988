package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wishcdp/internal/domain"
	"wishcdp/internal/http/handlers"
	"wishcdp/internal/infra"
	"wishcdp/internal/middleware"

	"github.com/rs/zerolog"
)

type nopJobs struct{}

func (nopJobs) Enqueue(ctx context.Context, job *domain.Job) error { return nil }
func (nopJobs) Claim(ctx context.Context) (*domain.Job, error) {
	return nil, domain.ErrNoJobAvailable
}
func (nopJobs) Complete(ctx context.Context, jobID string, status domain.JobStatus, resultJSON []byte) error {
	return nil
}
func (nopJobs) Requeue(ctx context.Context, jobID string, resultJSON []byte) error { return nil }

type nopProducts struct{}

func (nopProducts) UpsertProduct(ctx context.Context, itemID string, candidate domain.ExtractedProduct, imageURL string) error {
	return nil
}
func (nopProducts) InsertPrice(ctx context.Context, record domain.PriceRecord) error { return nil }
func (nopProducts) DeleteProduct(ctx context.Context, itemID string) error           { return nil }
func (nopProducts) UpsertDetails(ctx context.Context, itemID string, details []byte) error {
	return nil
}
func (nopProducts) GetProduct(ctx context.Context, itemID string) (*domain.Product, error) {
	return nil, domain.ErrNotFound
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &infra.Config{
		JWTSecret:       "router-test-secret",
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: 100,
	}
	app := handlers.NewApp(nopJobs{}, nopProducts{}, zerolog.Nop())
	return NewRouter(app, cfg, zerolog.Nop())
}

func TestHealthzIsOpen(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestWishlistRequiresAuth(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/wishlist/abc123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestWishlistWithToken(t *testing.T) {
	router := testRouter(t)

	token, err := middleware.SignJWT("router-test-secret", middleware.TokenClaims{
		Sub: "user-1",
		Exp: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/wishlist/abc123", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
