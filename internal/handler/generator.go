package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/passforge/passforge-go/internal/crypto"
	"github.com/passforge/passforge-go/internal/model"
	"github.com/passforge/passforge-go/internal/service"
)

// GeneratorHandler handles HTTP requests for password generation.
type GeneratorHandler struct {
	service  *service.GeneratorService
	renderer *Renderer
}

// NewGeneratorHandler creates a new GeneratorHandler.
func NewGeneratorHandler(svc *service.GeneratorService, renderer *Renderer) *GeneratorHandler {
	return &GeneratorHandler{service: svc, renderer: renderer}
}

type generatorPage struct {
	Flashes   []crypto.FlashMessage
	Password  string
	Error     string
	Length    string
	Numbers   bool
	Symbols   bool
	MinLength int
	MaxLength int
}

func newGeneratorPage() generatorPage {
	return generatorPage{
		Length:    "12",
		MinLength: crypto.MinLength,
		MaxLength: crypto.MaxLength,
	}
}

// HandleIndex handles GET / requests.
func (h *GeneratorHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, http.StatusOK, "index.html", newGeneratorPage())
}

// HandleIndexSubmit handles POST / form submissions.
func (h *GeneratorHandler) HandleIndexSubmit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB

	page := newGeneratorPage()
	if err := r.ParseForm(); err != nil {
		page.Error = "invalid form submission"
		h.renderer.Render(w, http.StatusBadRequest, "index.html", page)
		return
	}

	page.Length = r.PostForm.Get("length")
	page.Numbers = r.PostForm.Has("numbers")
	page.Symbols = r.PostForm.Has("symbols")

	resp, err := h.service.GenerateForm(page.Length, page.Numbers, page.Symbols)
	if err != nil {
		if service.IsValidationError(err) {
			page.Error = err.Error()
			h.renderer.Render(w, http.StatusBadRequest, "index.html", page)
			return
		}
		page.Error = "could not generate a password, please try again"
		h.renderer.Render(w, http.StatusInternalServerError, "index.html", page)
		return
	}

	page.Password = resp.Password
	h.renderer.Render(w, http.StatusOK, "index.html", page)
}

// HandleGenerate handles POST /api/v1/generate requests.
func (h *GeneratorHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateRequest
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			if isTooLarge(err) {
				writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse("request body too large"))
				return
			}
			writeJSON(w, http.StatusBadRequest, errorResponse("invalid request body"))
			return
		}
	}

	resp, err := h.service.Generate(req)
	if err != nil {
		if service.IsValidationError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse(err.Error()))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse("internal server error"))
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func errorResponse(msg string) map[string]string {
	return map[string]string{"error": msg}
}
