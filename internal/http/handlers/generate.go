package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"adforge-server/internal/domain"
	"adforge-server/internal/middleware"
	"adforge-server/internal/service"
)

type generateRequest struct {
	Params json.RawMessage `json:"params" validate:"required"`
}

type jobView struct {
	ID           string     `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	Provider     string     `json:"provider,omitempty"`
	ResultURL    string     `json:"result_url,omitempty"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreditsUsed  int        `json:"credits_used"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

func toJobView(job *domain.Job) jobView {
	return jobView{
		ID:           job.ID,
		Type:         string(job.Type),
		Status:       string(job.Status),
		Provider:     string(job.Provider),
		ResultURL:    job.ResultURL,
		ThumbnailURL: job.ThumbnailURL,
		ErrorMessage: job.ErrorMessage,
		CreditsUsed:  job.CreditsUsed,
		CreatedAt:    job.CreatedAt,
		UpdatedAt:    job.UpdatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// Generate accepts a generation request for the job type in the path and
// returns the queued job.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	jobType := domain.JobType(chi.URLParam(r, "type"))
	if !jobType.Valid() {
		a.error(w, http.StatusBadRequest, "unsupported job type")
		return
	}
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "params object is required")
		return
	}

	job, err := a.Generation.Submit(r.Context(), service.SubmitInput{
		OwnerID: userID,
		Type:    jobType,
		Params:  req.Params,
		Country: middleware.CountryFromContext(r.Context()),
	})
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, toJobView(job))
}
