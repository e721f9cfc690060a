package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Maroua-Bm/PDF-project/internal/parser"
	"github.com/Maroua-Bm/PDF-project/internal/pipeline"
	"github.com/google/uuid"
)

// upload is a PDF received in a multipart form and stored in the upload dir.
type upload struct {
	Path     string
	Filename string
}

func (u *upload) remove() {
	os.Remove(u.Path)
}

type uploadError struct {
	msg    string
	status int
}

func (e *uploadError) Error() string { return e.msg }

// saveUpload stores the "pdf" form file under a fresh name. The caller must
// call remove on the result.
func (s *Server) saveUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
		}
		return nil, &uploadError{"invalid multipart form: " + err.Error(), http.StatusBadRequest}
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		return nil, &uploadError{"pdf file is required", http.StatusBadRequest}
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, &uploadError{"failed to read file", http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, &uploadError{fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge}
	}
	if !parser.IsSupportedExtension(filename) && !parser.LooksLikePDF(data) {
		return nil, &uploadError{fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest}
	}

	if err := os.MkdirAll(s.cfg.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	path := filepath.Join(s.cfg.UploadDir, uuid.New().String()+".pdf")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}
	return &upload{Path: path, Filename: filename}, nil
}

func (s *Server) uploadFailed(w http.ResponseWriter, err error) {
	var ue *uploadError
	if errors.As(err, &ue) {
		jsonError(w, ue.msg, codeBadRequest, ue.status)
		return
	}
	s.log.Error("upload failed", "error", err)
	jsonError(w, "failed to store upload", pipeline.KindGeneric, http.StatusInternalServerError)
}

// Error codes for failures that happen before the pipeline runs.
const (
	codeBadRequest   pipeline.Kind = "bad_request"
	codeUnauthorized pipeline.Kind = "unauthorized"
	codeUnavailable  pipeline.Kind = "unavailable"
)

func jsonError(w http.ResponseWriter, msg string, code pipeline.Kind, status int) {
	writeJSONStatus(w, pipeline.ErrorOutput{Error: msg, Code: code}, status)
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, v, http.StatusOK)
}

func writeJSONStatus(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
