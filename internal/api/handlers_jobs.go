package api

import (
	"net/http"

	"github.com/dgallion1/paperdigest/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted, pipeline.StatusCached:
	case pipeline.StatusFailed:
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"job_id": snap.ID,
			"status": snap.Status,
			"phase":  snap.Phase,
			"errors": snap.Progress.Errors,
		})
		return
	default:
		writeJSON(w, http.StatusConflict, map[string]any{
			"job_id":   snap.ID,
			"status":   snap.Status,
			"progress": snap.Progress,
		})
		return
	}

	res := job.Result()
	writeJSON(w, http.StatusOK, map[string]any{
		"job_id":    snap.ID,
		"doc_id":    snap.DocID,
		"status":    snap.Status,
		"title":     res.Title,
		"summary":   res.Summary,
		"key_info":  res.KeyInfo,
		"chunks":    res.Chunks,
		"pages":     res.Pages,
		"truncated": res.Truncated,
	})
}
