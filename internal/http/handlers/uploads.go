package handlers

import (
	"encoding/json"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"

	"adforge-server/internal/storage"
)

type presignRequest struct {
	Filename    string `json:"filename" validate:"required"`
	ContentType string `json:"content_type" validate:"required"`
}

// PresignUpload hands the client a presigned PUT URL for a reference asset
// (product shot, voice sample). Keys are namespaced per user.
func (a *App) PresignUpload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "filename and content_type are required")
		return
	}

	key := path.Join(a.Config.UploadKeyPrefix, userID, uuid.NewString()+"-"+sanitizeFilename(req.Filename))
	url, err := a.Objects.PresignPut(r.Context(), key, req.ContentType, a.Config.PresignExpiry)
	if err != nil {
		a.Log.Error().Err(err).Msg("presign failed")
		a.error(w, http.StatusInternalServerError, "could not presign upload")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"upload_url": url,
		"key":        key,
		"expires_in": int(a.Config.PresignExpiry.Seconds()),
	})
}

type confirmUploadRequest struct {
	Key string `json:"key" validate:"required"`
}

// ConfirmUpload validates a completed upload key and returns the URL the
// client may reference in generation params. Keys outside the caller's
// upload namespace are rejected.
func (a *App) ConfirmUpload(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	var req confirmUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := a.validate.Struct(req); err != nil {
		a.error(w, http.StatusBadRequest, "key is required")
		return
	}

	userPrefix := path.Join(a.Config.UploadKeyPrefix, userID)
	if !storage.KeyWithinPrefix(req.Key, userPrefix) {
		a.error(w, http.StatusForbidden, "key outside upload namespace")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"key": req.Key,
		"url": a.Objects.PublicURL(strings.TrimLeft(req.Key, "/")),
	})
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		return "upload"
	}
	return name
}
