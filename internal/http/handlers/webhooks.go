package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adforge-server/internal/domain"
	"adforge-server/internal/providers/byteplus"
	"adforge-server/internal/providers/elevenlabs"
	"adforge-server/internal/providers/fal"
	"adforge-server/internal/providers/gemini"
	"adforge-server/internal/providers/kie"
	"adforge-server/internal/providers/wavespeed"
)

// ProviderWebhook ingests vendor push notifications. The response is always
// 200 so vendors stop retrying; failures on our side are logged and the
// poll loop picks the job up later.
func (a *App) ProviderWebhook(w http.ResponseWriter, r *http.Request) {
	providerID := domain.ProviderID(chi.URLParam(r, "provider"))
	if !providerID.Valid() {
		a.error(w, http.StatusNotFound, "unknown provider")
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		a.json(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	note, err := parseWebhook(providerID, body)
	if err != nil {
		a.Log.Warn().Str("provider", string(providerID)).Err(err).Msg("unparsable webhook ignored")
		a.json(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}
	eventID := r.Header.Get("X-Webhook-Event-Id")
	if eventID == "" {
		eventID = note.eventID
	}
	if eventID == "" {
		// Deterministic fallback so duplicate deliveries still collapse.
		sum := sha256.Sum256(body)
		eventID = hex.EncodeToString(sum[:16])
	}

	err = a.Generation.HandleWebhook(r.Context(),
		domain.TaskRef{Provider: providerID, TaskID: note.taskID},
		eventID, body, note.status, note.detail)
	if err != nil {
		a.Log.Error().Str("provider", string(providerID)).Str("task_id", note.taskID).Err(err).Msg("webhook handling failed")
	}
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type webhookNote struct {
	taskID  string
	eventID string
	status  domain.JobStatus
	detail  string
}

// parseWebhook normalizes the per-vendor callback payloads down to a task
// reference and a mapped status.
func parseWebhook(provider domain.ProviderID, body []byte) (webhookNote, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return webhookNote{}, err
	}
	// kie nests the useful part under data.
	if data, ok := fields["data"].(map[string]any); ok {
		for k, v := range data {
			if _, exists := fields[k]; !exists {
				fields[k] = v
			}
		}
	}

	note := webhookNote{
		taskID:  firstString(fields, "taskId", "task_id", "request_id", "id", "name", "project_id"),
		eventID: firstString(fields, "event_id", "eventId", "delivery_id"),
		detail:  firstString(fields, "failMsg", "fail_msg", "error", "detail", "message"),
	}
	rawStatus := firstString(fields, "state", "status")

	var (
		status domain.JobStatus
		err    error
	)
	switch provider {
	case domain.ProviderKie:
		status, err = kie.MapStatus(rawStatus)
	case domain.ProviderFal:
		status, err = fal.MapStatus(rawStatus)
	case domain.ProviderBytePlus:
		status, err = byteplus.MapStatus(rawStatus)
	case domain.ProviderWaveSpeed:
		status, err = wavespeed.MapStatus(rawStatus)
	case domain.ProviderElevenLabs:
		status, err = elevenlabs.MapStatus(rawStatus)
	case domain.ProviderGemini:
		done, _ := fields["done"].(bool)
		_, failed := fields["error"]
		status = gemini.MapOperation(done, failed)
	default:
		return webhookNote{}, domain.ErrValidation
	}
	if err != nil {
		return webhookNote{}, err
	}
	note.status = status
	return note, nil
}

func firstString(fields map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := fields[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
