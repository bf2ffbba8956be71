package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"adforge-server/internal/domain"
	"adforge-server/internal/middleware"
)

type profileSyncRequest struct {
	Name string `json:"name"`
}

type profileView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email,omitempty"`
	Name      string    `json:"name,omitempty"`
	Plan      string    `json:"plan"`
	Credits   int       `json:"credits"`
	CreatedAt time.Time `json:"created_at"`
}

func toProfileView(p *domain.Profile) profileView {
	return profileView{
		ID:        p.ID,
		Email:     p.Email,
		Name:      p.Name,
		Plan:      string(p.Plan),
		Credits:   p.Credits,
		CreatedAt: p.CreatedAt,
	}
}

// SyncProfile provisions the caller's profile row on first login and grants
// the signup bonus exactly once. Subsequent calls just refresh the name.
func (a *App) SyncProfile(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	var req profileSyncRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	email := middleware.UserEmailFromContext(r.Context())
	profile, err := a.Credits.EnsureProfile(r.Context(), userID, email, req.Name)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toProfileView(profile))
}
