package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"demoreel/internal/httpkit"
	"demoreel/internal/jobs"
	"demoreel/internal/media"
	"demoreel/internal/pkg/errors"
	"demoreel/internal/playback"
	"demoreel/internal/studio"
)

// MaxTargetSeconds caps a requested video length.
const MaxTargetSeconds = 600

type CreateJobRequest struct {
	Name          string `json:"name"`
	SourceURL     string `json:"source_url"`
	NarrationText string `json:"narration_text"`
	TargetSeconds int    `json:"target_seconds"`
	Voice         string `json:"voice"`
	Profile       string `json:"profile"`
}

// Record validates the request and builds a queued record.
func (req CreateJobRequest) Record(id string) (*jobs.Record, error) {
	rec := &jobs.Record{
		ID:            id,
		Name:          strings.TrimSpace(req.Name),
		Status:        jobs.StatusQueued,
		SourceURL:     strings.TrimSpace(req.SourceURL),
		NarrationText: req.NarrationText,
		TargetSeconds: req.TargetSeconds,
		Voice:         strings.TrimSpace(req.Voice),
		Profile:       strings.ToLower(strings.TrimSpace(req.Profile)),
	}
	if rec.TargetSeconds == 0 {
		rec.TargetSeconds = int(studio.DefaultTargetDuration / time.Second)
	}

	if strings.TrimSpace(rec.NarrationText) == "" {
		return nil, errors.ValidationField("narration_text", "is required")
	}
	if rec.TargetSeconds < 0 || rec.TargetSeconds > MaxTargetSeconds {
		return nil, errors.ValidationField("target_seconds", "must be between 1 and "+strconv.Itoa(MaxTargetSeconds))
	}
	if rec.Voice != "" && !media.IsVoiceName(rec.Voice) {
		return nil, errors.ValidationField("voice", "must be a voice or sample name, not a path")
	}
	if _, err := playback.ProfileByName(rec.Profile); err != nil {
		return nil, errors.ValidationField("profile", err.Error())
	}
	if err := rec.Job("", jobs.NarrationFileName).Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var req CreateJobRequest
	if err := httpkit.DecodeJSON(w, r, &req); err != nil {
		return err
	}
	rec, err := req.Record(h.newID())
	if err != nil {
		return err
	}

	if err := h.jobs.Create(ctx, rec); err != nil {
		return err
	}
	if err := h.queue.Push(ctx, rec.ID); err != nil {
		_ = h.jobs.MarkFailed(ctx, rec.ID, "queue push failed: "+err.Error())
		return errors.WrapWithCode(err, errors.CodeUnavailable, "api.PostJob", "queue push failed")
	}

	h.log.FromContext(ctx).Info("job queued", "job_id", rec.ID, "source", rec.SourceURL)
	httpkit.WriteJSON(w, http.StatusCreated, map[string]any{"job": rec})
	return nil
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) error {
	q := r.URL.Query()

	status := jobs.Status(strings.ToUpper(strings.TrimSpace(q.Get("status"))))
	if status != "" && !status.Valid() {
		return errors.ValidationField("status", "must be QUEUED, RUNNING, DONE or FAILED")
	}

	limit := 50
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 200 {
			limit = v
		}
	}

	list, err := h.jobs.List(r.Context(), status, limit)
	if err != nil {
		return err
	}
	// Listings omit the narration body.
	for i := range list {
		list[i].NarrationText = ""
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": list})
	return nil
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) error {
	rec, err := h.jobs.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"job": rec})
	return nil
}

// GetVideo redirects to the provider's link for a finished video, or
// streams it when the provider has none.
func (h *Handler) GetVideo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	rec, err := h.jobs.Get(ctx, chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	if rec.Status != jobs.StatusDone || rec.OutputKey == "" {
		return errors.New(errors.CodeConflict, "video not ready").
			WithField("job_id", rec.ID).
			WithField("status", string(rec.Status))
	}

	signed, err := h.sp.GetSignedURL(ctx, rec.OutputKey, 30*time.Minute)
	if err != nil {
		return err
	}
	if signed.URL != "" {
		http.Redirect(w, r, signed.URL, http.StatusFound)
		return nil
	}

	rc, ct, size, err := h.sp.GetObject(ctx, rec.OutputKey)
	if err != nil {
		return err
	}
	defer rc.Close()

	if ct == "" {
		ct = "video/mp4"
	}
	w.Header().Set("Content-Type", ct)
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	_, _ = io.Copy(w, rc)
	return nil
}
