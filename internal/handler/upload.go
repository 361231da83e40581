package handler

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/passforge/passforge-go/internal/crypto"
	"github.com/passforge/passforge-go/internal/model"
	"github.com/passforge/passforge-go/internal/service"
)

var errNotMultipart = errors.New("request must be multipart/form-data")

// UploadHandler handles HTTP requests for file uploads.
type UploadHandler struct {
	service  *service.UploadService
	renderer *Renderer
	flashes  *Flashes
	maxBytes int64
}

// NewUploadHandler creates a new UploadHandler. maxBytes caps the request body.
func NewUploadHandler(svc *service.UploadService, renderer *Renderer, flashes *Flashes, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		service:  svc,
		renderer: renderer,
		flashes:  flashes,
		maxBytes: maxBytes,
	}
}

type uploadPage struct {
	Flashes []crypto.FlashMessage
	Uploads []model.Upload
}

// HandleUploadPage handles GET /upload requests.
func (h *UploadHandler) HandleUploadPage(w http.ResponseWriter, r *http.Request) {
	page := uploadPage{Flashes: h.flashes.Pop(w, r)}

	uploads, err := h.service.ListRecent(r.Context(), service.DefaultRecentLimit)
	if err != nil {
		slog.Error("failed to list uploads", "error", err)
	} else {
		page.Uploads = uploads
	}

	h.renderer.Render(w, http.StatusOK, "upload.html", page)
}

// HandleUploadForm handles POST /upload form submissions.
func (h *UploadHandler) HandleUploadForm(w http.ResponseWriter, r *http.Request) {
	upload, err := h.receive(w, r)
	if err != nil {
		switch {
		case service.IsUploadValidationError(err):
			h.flashes.Add(w, r, flashError, err.Error())
		case errors.Is(err, errNotMultipart):
			h.flashes.Add(w, r, flashError, service.ErrNoFile.Error())
		case isTooLarge(err):
			h.flashes.Add(w, r, flashError, "file too large")
		default:
			slog.Error("upload failed", "error", err)
			h.flashes.Add(w, r, flashError, "upload failed")
		}
	} else {
		h.flashes.Add(w, r, flashSuccess, "uploaded "+upload.OriginalName)
	}

	http.Redirect(w, r, "/upload", http.StatusSeeOther)
}

// HandleCreateUpload handles POST /api/v1/uploads requests.
func (h *UploadHandler) HandleCreateUpload(w http.ResponseWriter, r *http.Request) {
	upload, err := h.receive(w, r)
	if err != nil {
		switch {
		case service.IsUploadValidationError(err), errors.Is(err, errNotMultipart):
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
		case isTooLarge(err):
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
		default:
			slog.Error("upload failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		}
		return
	}

	writeJSON(w, http.StatusCreated, upload)
}

// HandleListUploads handles GET /api/v1/uploads requests.
func (h *UploadHandler) HandleListUploads(w http.ResponseWriter, r *http.Request) {
	uploads, err := h.service.ListRecent(r.Context(), service.DefaultRecentLimit)
	if err != nil {
		slog.Error("failed to list uploads", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, model.UploadListResponse{Uploads: uploads})
}

// HandleDownload handles GET /uploads/{id} requests.
func (h *UploadHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	upload, f, err := h.service.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrUploadNotFound) {
			http.NotFound(w, r)
			return
		}
		slog.Error("failed to open upload", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", upload.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": upload.OriginalName}))
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, upload.OriginalName, upload.CreatedAt, f)
}

// receive streams the first non-empty "file" part of a multipart body into
// the upload service.
func (h *UploadHandler) receive(w http.ResponseWriter, r *http.Request) (model.Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	defer r.Body.Close()

	mr, err := r.MultipartReader()
	if err != nil {
		return model.Upload{}, errNotMultipart
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return model.Upload{}, service.ErrNoFile
		}
		if err != nil {
			return model.Upload{}, err
		}

		if part.FormName() != "file" || part.FileName() == "" {
			part.Close()
			continue
		}

		upload, err := h.service.Upload(r.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
		part.Close()
		return upload, err
	}
}
