package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/paperdigest/internal/parser"
	"github.com/dgallion1/paperdigest/internal/pipeline"
)

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := jobOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, data, code, err := s.readUpload(file, header.Filename)
	if err != nil {
		jsonError(w, err.Error(), code)
		return
	}

	job := pipeline.NewJob(filename, strings.TrimSpace(r.FormValue("title")), data, opts)
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, acceptedBody(job))
}

func (s *Server) handleBatchSummarize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := jobOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		name := sanitizeFilename(fh.Filename)
		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{"filename": name, "error": "failed to open file"})
			continue
		}
		filename, data, _, err := s.readUpload(f, fh.Filename)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{"filename": name, "error": err.Error()})
			continue
		}

		job := pipeline.NewJob(filename, "", data, opts)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		body := acceptedBody(job)
		body["filename"] = filename
		results = append(results, body)
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// readUpload sanitizes the name, enforces the size limit and checks the
// format. On error it also returns the status code to answer with.
func (s *Server) readUpload(f multipart.File, rawName string) (string, []byte, int, error) {
	filename := sanitizeFilename(rawName)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("unsupported file type: %q", filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(f, s.opts.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, http.StatusInternalServerError, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.opts.MaxUploadBytes {
		return filename, nil, http.StatusRequestEntityTooLarge, fmt.Errorf("file exceeds max size (%d bytes)", s.opts.MaxUploadBytes)
	}
	if strings.EqualFold(filepath.Ext(filename), ".pdf") && !parser.ValidatePDF(data) {
		return filename, nil, http.StatusBadRequest, fmt.Errorf("invalid pdf file")
	}
	return filename, data, 0, nil
}

// jobOptions reads max_words, max_combined and extract form fields.
func jobOptions(r *http.Request) (pipeline.JobOptions, error) {
	var opts pipeline.JobOptions
	var err error
	if opts.MaxWords, err = positiveInt(r.FormValue("max_words")); err != nil {
		return opts, fmt.Errorf("max_words: %w", err)
	}
	if opts.MaxCombined, err = positiveInt(r.FormValue("max_combined")); err != nil {
		return opts, fmt.Errorf("max_combined: %w", err)
	}
	if v := r.FormValue("extract"); v != "" {
		extract, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("extract: must be true or false")
		}
		opts.SkipExtract = !extract
	}
	return opts, nil
}

func positiveInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func acceptedBody(job *pipeline.Job) map[string]any {
	snap := job.Snapshot()
	return map[string]any{
		"job_id":   snap.ID,
		"doc_id":   snap.DocID,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/jobs/%s/status", snap.ID),
	}
}

func sanitizeFilename(name string) string {
	// Keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
