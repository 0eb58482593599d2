// Package handler exposes the tutorial generation API over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"repotutor/internal/job"
	"repotutor/internal/tutorial"
	"repotutor/internal/util/jsonutil"
)

// buildTimeout bounds one whole generation pipeline run.
const buildTimeout = 5 * time.Minute

// Builder is the slice of the tutorial package the handler drives.
type Builder interface {
	Build(ctx context.Context, owner, repo string, report func(tutorial.Stage)) (*tutorial.Tutorial, error)
}

type Handler struct {
	jobs    *job.Manager
	builder Builder
}

func New(jobs *job.Manager, builder Builder) *Handler {
	return &Handler{jobs: jobs, builder: builder}
}

// Register wires the API routes onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tutorials", h.createTutorial)
	mux.HandleFunc("GET /api/tutorials/{id}", h.getTutorial)
	mux.HandleFunc("GET /api/tutorials/{id}/ws", h.watchTutorial)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

type createRequest struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (h *Handler) createTutorial(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	owner := strings.TrimSpace(req.Owner)
	repo := strings.TrimSpace(req.Repo)
	if owner == "" || repo == "" {
		httpError(w, http.StatusBadRequest, "owner and repo are required")
		return
	}

	j := h.jobs.Create(owner, repo)
	go h.run(j.ID, owner, repo)
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": j.ID})
}

func (h *Handler) getTutorial(w http.ResponseWriter, r *http.Request) {
	j, err := h.jobs.Get(r.PathValue("id"))
	if errors.Is(err, job.ErrNotFound) {
		httpError(w, http.StatusNotFound, "unknown job id")
		return
	}
	writeJSON(w, http.StatusOK, j)
}

// run executes the pipeline for one job in the background. The request
// context is deliberately not used: the job outlives the spawning request.
func (h *Handler) run(jobID, owner, repo string) {
	ctx, cancel := context.WithTimeout(context.Background(), buildTimeout)
	defer cancel()

	report := func(s tutorial.Stage) {
		switch s {
		case tutorial.StageFetching:
			h.jobs.SetStatus(jobID, job.StatusFetching)
		case tutorial.StageGenerating:
			h.jobs.SetStatus(jobID, job.StatusGenerating)
		case tutorial.StageResolving:
			h.jobs.SetStatus(jobID, job.StatusResolving)
		}
	}

	tut, err := h.builder.Build(ctx, owner, repo, report)
	if err != nil {
		var malformed *jsonutil.MalformedResponseError
		if errors.As(err, &malformed) {
			// Keep the raw text out of the user-facing error; size is
			// enough for the server log to correlate.
			log.Printf("job %s: malformed model response (%d bytes raw)", jobID, len(malformed.Raw))
			h.jobs.SetError(jobID, errors.New("the model returned an incomplete or invalid tutorial; please retry"))
			return
		}
		log.Printf("job %s: build failed: %v", jobID, err)
		h.jobs.SetError(jobID, err)
		return
	}
	h.jobs.SetResult(jobID, tut)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func httpError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
