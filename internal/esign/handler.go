package esign

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quillsign/quill/pkg/handlers"
	"github.com/quillsign/quill/pkg/pagination"
	"github.com/quillsign/quill/pkg/routes"
)

// Handler provides HTTP endpoints for e-signature workflow operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, pagination
// config, and upload size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "esign"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for e-signature endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/esign",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/documents", Handler: h.List},
			{Method: "GET", Pattern: "/documents/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/documents/{id}/preview", Handler: h.Preview},
			{Method: "POST", Pattern: "/documents", Handler: h.Upload},
			{Method: "POST", Pattern: "/documents/batch", Handler: h.UploadBatch},
			{Method: "POST", Pattern: "/documents/{id}/tags", Handler: h.Tag},
			{Method: "POST", Pattern: "/documents/{id}/submit", Handler: h.Submit},
			{Method: "POST", Pattern: "/webhooks", Handler: h.Webhook},
		},
	}
}

// Upload processes a multipart form upload containing a single PDF under the
// "file" field. Non-PDF content is rejected before the workflow sees it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrFileRequired)
		return
	}
	defer file.Close()

	cmd, err := buildIngestCommand(h.logger, file, header)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	doc, err := h.sys.Ingest(r.Context(), *cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, doc)
}

// UploadBatch processes a multipart form upload with one or more PDFs under
// the repeated "files" field, reporting a per-file result for each.
func (h *Handler) UploadBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrFileRequired)
		return
	}

	fileHeaders := r.MultipartForm.File["files"]
	results := make([]BatchResult, 0, len(fileHeaders))
	cmds := make([]IngestCommand, 0, len(fileHeaders))

	for _, header := range fileHeaders {
		cmd, err := openIngestCommand(h.logger, header)
		if err != nil {
			results = append(results, BatchResult{Filename: header.Filename, Error: err.Error()})
			continue
		}
		cmds = append(cmds, *cmd)
	}

	results = append(results, h.sys.IngestBatch(r.Context(), cmds)...)
	handlers.RespondJSON(w, http.StatusOK, results)
}

// Tag accepts a JSON body with a widgets list and attaches it to the document.
func (h *Handler) Tag(w http.ResponseWriter, r *http.Request) {
	var tags Tags
	if err := json.NewDecoder(r.Body).Decode(&tags); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidTags)
		return
	}

	doc, err := h.sys.Tag(r.Context(), r.PathValue("id"), tags)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Submit accepts the signer role assignments and submits the document to the
// signing provider.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var signers Signers
	if err := json.NewDecoder(r.Body).Decode(&signers); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrSignerRequired)
		return
	}

	result, err := h.sys.Submit(r.Context(), r.PathValue("id"), signers)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Webhook decodes a provider event and reconciles it into local state. The
// response is always an acknowledgement with status 200; failing here would
// only provoke provider-side retry storms.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	var event WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.logger.Warn("malformed webhook payload ignored", "error", err)
		handlers.RespondJSON(w, http.StatusOK, Ack{Received: true, Message: "ignored: malformed payload"})
		return
	}

	handlers.RespondJSON(w, http.StatusOK, h.sys.Reconcile(r.Context(), event))
}

// Find returns the current workflow state for a document.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	doc, err := h.sys.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, doc)
}

// List returns a paginated document listing with optional status filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Preview streams the stored PDF inline for client-side rendering.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	rc, doc, err := h.sys.Download(r.Context(), r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalName))
	w.WriteHeader(http.StatusOK)
	io.Copy(w, rc)
}

func buildIngestCommand(logger *slog.Logger, file multipart.File, header *multipart.FileHeader) (*IngestCommand, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, ErrInvalidFile
	}

	if len(data) == 0 {
		return nil, ErrFileRequired
	}

	if detectContentType(header.Header.Get("Content-Type"), data) != "application/pdf" {
		return nil, ErrInvalidFile
	}

	return &IngestCommand{
		Data:         data,
		OriginalName: header.Filename,
		PageCount:    extractPDFPageCount(logger, data),
	}, nil
}

func openIngestCommand(logger *slog.Logger, header *multipart.FileHeader) (*IngestCommand, error) {
	file, err := header.Open()
	if err != nil {
		return nil, ErrInvalidFile
	}
	defer file.Close()

	return buildIngestCommand(logger, file, header)
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte) *int {
	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
