// Package handlers implements the HTTP surface of the API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"adforge-server/internal/domain"
	"adforge-server/internal/infra"
	"adforge-server/internal/middleware"
	"adforge-server/internal/service"
	"adforge-server/internal/storage"
)

type App struct {
	Config     *infra.Config
	Log        zerolog.Logger
	Store      domain.TxStore
	Generation *service.GenerationService
	Credits    *service.CreditService
	Objects    storage.ObjectStore

	validate *validator.Validate
	fetch    *http.Client
}

func NewApp(cfg *infra.Config, log zerolog.Logger, store domain.TxStore, generation *service.GenerationService, credits *service.CreditService, objects storage.ObjectStore) *App {
	return &App{
		Config:     cfg,
		Log:        log,
		Store:      store,
		Generation: generation,
		Credits:    credits,
		Objects:    objects,
		validate:   validator.New(),
		fetch:      &http.Client{},
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]string{"error": message})
}

func (a *App) currentUserID(r *http.Request) string {
	return middleware.UserIDFromContext(r.Context())
}
