package http

import (
	"io"
	"net/http"
	"path/filepath"

	"srm-agent-portal/internal/domain"
	"srm-agent-portal/internal/logger"
	"srm-agent-portal/internal/service"
)

// FileHandler handles uploads and downloads of booking flow files
type FileHandler struct {
	files       service.FileService
	flows       service.BookingFlowService
	downloadURL func(key string) string
}

// NewFileHandler creates a new file handler. downloadURL renders the link returned for an upload.
func NewFileHandler(files service.FileService, flows service.BookingFlowService, downloadURL func(key string) string) *FileHandler {
	return &FileHandler{
		files:       files,
		flows:       flows,
		downloadURL: downloadURL,
	}
}

type uploadResponse struct {
	Path string             `json:"path"`
	URL  string             `json:"url"`
	File *domain.StoredFile `json:"file"`
}

// Upload handles PUT ?flow_id=&name= with the raw file as body
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return
	}

	q := r.URL.Query()
	flowID := q.Get("flow_id")
	if flowID == "" {
		writeProblem(w, http.StatusBadRequest, "bad_request", "missing flow_id parameter")
		return
	}

	// The flow must exist before anything is written to storage.
	if _, err := h.flows.State(r.Context(), agentID, flowID); err != nil {
		writeError(w, err)
		return
	}

	file, err := h.files.Upload(r.Context(), agentID, flowID, q.Get("name"), r.Header.Get("Content-Type"), r.Body)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.flows.TrackUpload(r.Context(), agentID, flowID, file.Path); err != nil {
		if relErr := h.files.ReleaseStoredFiles(r.Context(), []string{file.Path}); relErr != nil {
			logger.Error("Failed to release orphaned upload", "path", file.Path, "error", relErr)
		}
		writeError(w, err)
		return
	}

	resp := uploadResponse{Path: file.Path, File: file}
	if h.downloadURL != nil {
		resp.URL = h.downloadURL(file.Path)
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Download streams the file stored under ?key=
func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	agentID, ok := AgentIDFromContext(r.Context())
	if !ok {
		writeProblem(w, http.StatusUnauthorized, "unauthenticated", "agent is not authenticated")
		return
	}

	key := r.URL.Query().Get("key")
	if key == "" {
		writeProblem(w, http.StatusBadRequest, "bad_request", "missing key parameter")
		return
	}

	body, file, err := h.files.Open(r.Context(), agentID, key)
	if err != nil {
		writeError(w, err)
		return
	}
	defer body.Close()

	contentType := file.MimeType
	if contentType == "" {
		contentType = contentTypeFor(key)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, body); err != nil {
		logger.Warn("File download interrupted", "path", key, "error", err)
	}
}

// contentTypeFor determines content type from file extension
func contentTypeFor(key string) string {
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
