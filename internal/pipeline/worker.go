package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgallion1/paperdigest/internal/digest"
	"github.com/dgallion1/paperdigest/internal/extract"
	"github.com/dgallion1/paperdigest/internal/parser"
)

// Worker processes a single summarization job.
type Worker struct {
	svc  *digest.Service
	jobs *JobStore
	log  *slog.Logger
}

func NewWorker(svc *digest.Service, jobs *JobStore, log *slog.Logger) *Worker {
	return &Worker{svc: svc, jobs: jobs, log: log}
}

// Process runs the full pipeline for a job and records the outcome on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "filename", job.Filename)

	if prev := w.jobs.FindCompleted(job.ContentHash, job.ID); prev != nil {
		log.Info("identical document already summarized", "cached_from", prev.ID)
		res := *prev.Result()
		if job.Title != "" {
			res.Title = job.Title
		}
		job.setResult(&res, prev.ID)
		job.SetStatus(StatusCached, "done")
		return
	}

	res, err := w.svc.Run(ctx, digest.Input{
		Data:        job.FileData(),
		Filename:    job.Filename,
		Title:       job.Title,
		MaxWords:    job.Options.MaxWords,
		MaxCombined: job.Options.MaxCombined,
		SkipExtract: job.Options.SkipExtract,
	}, digest.Hooks{
		OnPhase: func(p digest.Phase) {
			job.SetStatus(statusFor(p), string(p))
		},
		OnChunks:   job.SetTotalChunks,
		OnChunk:    func(done, _ int) { job.SetChunksProcessed(done) },
		OnProgress: job.SetMessage,
	})
	if err != nil {
		phase := "parsing"
		switch {
		case errors.Is(err, digest.ErrNoText):
			phase = "chunking"
		case errors.Is(err, parser.ErrNotPDF):
			err = fmt.Errorf("invalid pdf: %w", err)
		}
		log.Error("summarization failed", "phase", phase, "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, phase)
		return
	}

	// Any note here also keeps the result out of the cache.
	if res.Summary == "" {
		job.AddError("summary generation produced no output")
	}
	if !job.Options.SkipExtract {
		info := res.KeyInfo.Map()
		for _, a := range extract.Aspects {
			if info[a.Key] == "" {
				job.AddError(a.Key + " extraction produced no output")
			}
		}
	}
	job.setResult(res, "")
	job.SetStatus(StatusCompleted, "done")
	log.Info("job completed",
		"chunks", res.Chunks,
		"pages", res.Pages,
		"duration_ms", res.Duration.Milliseconds(),
	)
}

func statusFor(p digest.Phase) JobStatus {
	switch p {
	case digest.PhaseParsing:
		return StatusParsing
	case digest.PhaseChunking:
		return StatusChunking
	case digest.PhaseSummarizing:
		return StatusSummarizing
	case digest.PhaseExtracting:
		return StatusExtracting
	}
	return StatusQueued
}
