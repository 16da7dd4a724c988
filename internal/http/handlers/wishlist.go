package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"wishcdp/internal/domain"
	"wishcdp/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/oklog/ulid/v2"
)

const acceptedMessage = "Item accepted for processing."

type addItemRequest struct {
	ItemID    string `json:"item_id"`
	PageHTML  string `json:"page_html"`
	SourceURL string `json:"source_url"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    string    `json:"category"`
	Description string    `json:"description,omitempty"`
	Brand       string    `json:"brand,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// AddItem accepts a captured product page and queues it for asynchronous
// processing. The response never waits on the pipeline itself.
func (a *App) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.jsonError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.ItemID) == "" {
		a.jsonError(w, http.StatusUnprocessableEntity, "item_id is required")
		return
	}
	if strings.TrimSpace(req.PageHTML) == "" {
		a.jsonError(w, http.StatusUnprocessableEntity, "page_html is required")
		return
	}

	payload, err := json.Marshal(domain.ProcessPayload{
		ItemID:    req.ItemID,
		RawMarkup: req.PageHTML,
		SourceURL: req.SourceURL,
	})
	if err != nil {
		a.jsonError(w, http.StatusInternalServerError, "failed to encode job payload")
		return
	}

	job := &domain.Job{
		ID:      ulid.Make().String(),
		Type:    domain.JobTypeProcessItem,
		Status:  domain.JobStatusQueued,
		ItemID:  req.ItemID,
		Payload: payload,
	}
	if err := a.Jobs.Enqueue(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Str("item_id", req.ItemID).Msg("enqueue process job")
		a.jsonError(w, http.StatusInternalServerError, "failed to queue item")
		return
	}

	a.Logger.Info().Str("job_id", job.ID).Str("item_id", req.ItemID).
		Str("user_id", middleware.UserIDFromContext(r.Context())).Msg("item queued")
	a.json(w, http.StatusAccepted, map[string]string{"message": acceptedMessage})
}

// DeleteItem queues removal of a stored product and its price history.
func (a *App) DeleteItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if strings.TrimSpace(itemID) == "" {
		a.jsonError(w, http.StatusUnprocessableEntity, "item_id is required")
		return
	}

	payload, err := json.Marshal(map[string]string{"item_id": itemID})
	if err != nil {
		a.jsonError(w, http.StatusInternalServerError, "failed to encode job payload")
		return
	}

	job := &domain.Job{
		ID:      ulid.Make().String(),
		Type:    domain.JobTypeDeleteItem,
		Status:  domain.JobStatusQueued,
		ItemID:  itemID,
		Payload: payload,
	}
	if err := a.Jobs.Enqueue(r.Context(), job); err != nil {
		a.Logger.Error().Err(err).Str("item_id", itemID).Msg("enqueue delete job")
		a.jsonError(w, http.StatusInternalServerError, "failed to queue deletion")
		return
	}

	a.json(w, http.StatusAccepted, map[string]string{"message": "Item scheduled for deletion."})
}

// GetItem returns the stored product for an item ID, if processing has
// produced one.
func (a *App) GetItem(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "item_id")
	if strings.TrimSpace(itemID) == "" {
		a.jsonError(w, http.StatusUnprocessableEntity, "item_id is required")
		return
	}

	product, err := a.Products.GetProduct(r.Context(), itemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.jsonError(w, http.StatusNotFound, "item not found")
			return
		}
		a.Logger.Error().Err(err).Str("item_id", itemID).Msg("load product")
		a.jsonError(w, http.StatusInternalServerError, "failed to load item")
		return
	}

	a.json(w, http.StatusOK, productResponse{
		ID:          product.ID,
		Title:       product.Title,
		Category:    string(product.Category),
		Description: product.Description,
		Brand:       product.Brand,
		ImageURL:    product.ImageURL,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	})
}
