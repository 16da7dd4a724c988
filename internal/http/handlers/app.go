package handlers

import (
	"encoding/json"
	"net/http"

	"wishcdp/internal/domain"

	"github.com/rs/zerolog"
)

type App struct {
	Jobs     domain.JobRepository
	Products domain.ProductRepository
	Logger   zerolog.Logger
}

func NewApp(jobs domain.JobRepository, products domain.ProductRepository, logger zerolog.Logger) *App {
	return &App{Jobs: jobs, Products: products, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) jsonError(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}
