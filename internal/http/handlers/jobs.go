package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adforge-server/pkg/zip"
)

func (a *App) GetJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	job, err := a.Generation.Get(r.Context(), userID, chi.URLParam(r, "job_id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobView(job))
}

func (a *App) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	jobs, err := a.Generation.List(r.Context(), userID, limit)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]jobView, 0, len(jobs))
	for i := range jobs {
		items = append(items, toJobView(&jobs[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) DeleteJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	if err := a.Generation.Delete(r.Context(), userID, chi.URLParam(r, "job_id")); err != nil {
		a.domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) RetryJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	job, err := a.Generation.Retry(r.Context(), userID, chi.URLParam(r, "job_id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, toJobView(job))
}

func (a *App) CancelJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	job, err := a.Generation.Cancel(r.Context(), userID, chi.URLParam(r, "job_id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, toJobView(job))
}

// ArchiveJob streams the job's stored assets as a zip download.
func (a *App) ArchiveJob(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "missing user context")
		return
	}
	jobID := chi.URLParam(r, "job_id")
	job, err := a.Generation.Get(r.Context(), userID, jobID)
	if err != nil {
		a.domainError(w, err)
		return
	}
	if job.ResultURL == "" {
		a.error(w, http.StatusConflict, "job has no stored result")
		return
	}

	var assets []zip.Asset
	if data, mime := a.fetchAsset(r, job.ResultURL); data != nil {
		assets = append(assets, zip.Asset{Filename: jobID + "-result", MIME: mime, Data: data})
	}
	if job.ThumbnailURL != "" {
		if data, mime := a.fetchAsset(r, job.ThumbnailURL); data != nil {
			assets = append(assets, zip.Asset{Filename: jobID + "-thumbnail", MIME: mime, Data: data})
		}
	}
	if len(assets) == 0 {
		a.error(w, http.StatusInternalServerError, "assets unavailable")
		return
	}

	archive := zip.ArchiveAssets(assets)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=job-%s.zip", jobID))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(archive)
}

func (a *App) fetchAsset(r *http.Request, url string) ([]byte, string) {
	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, url, nil)
	if err != nil {
		return nil, ""
	}
	resp, err := a.fetch.Do(req)
	if err != nil {
		a.Log.Warn().Str("url", url).Err(err).Msg("asset fetch failed")
		return nil, ""
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, ""
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ""
	}
	return data, resp.Header.Get("Content-Type")
}
