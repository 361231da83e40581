package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/passforge/passforge-go/internal/model"
	"github.com/passforge/passforge-go/internal/repository"
	"github.com/passforge/passforge-go/internal/service"
)

type memoryUploadStore struct {
	uploads []model.Upload
}

func (m *memoryUploadStore) Create(_ context.Context, u *model.Upload) error {
	m.uploads = append(m.uploads, *u)
	return nil
}

func (m *memoryUploadStore) GetByID(_ context.Context, id string) (*model.Upload, error) {
	for i := range m.uploads {
		if m.uploads[i].ID == id {
			u := m.uploads[i]
			return &u, nil
		}
	}
	return nil, repository.ErrUploadNotFound
}

func (m *memoryUploadStore) ListRecent(_ context.Context, limit int) ([]model.Upload, error) {
	var out []model.Upload
	for i := len(m.uploads) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.uploads[i])
	}
	return out, nil
}

type uploadFixture struct {
	handler *UploadHandler
	store   *memoryUploadStore
	dir     string
}

func newUploadFixture(t *testing.T, maxBytes int64) uploadFixture {
	t.Helper()

	dir := t.TempDir()
	files, err := repository.NewFileStore(dir)
	require.NoError(t, err)
	renderer, err := NewRenderer()
	require.NoError(t, err)

	store := &memoryUploadStore{}
	svc := service.NewUploadService(files, store, nil)
	flashes := NewFlashes([]byte("test-secret"), false)

	return uploadFixture{
		handler: NewUploadHandler(svc, renderer, flashes, maxBytes),
		store:   store,
		dir:     dir,
	}
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func flashCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			return c
		}
	}
	t.Fatal("response did not set a flash cookie")
	return nil
}

// followRedirect renders the upload page with the flash cookie set by rec.
func (f uploadFixture) followRedirect(t *testing.T, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	req.AddCookie(flashCookieFrom(t, rec))
	page := httptest.NewRecorder()
	f.handler.HandleUploadPage(page, req)
	return page
}

func TestHandleUploadForm_Success(t *testing.T) {
	f := newUploadFixture(t, 1<<20)

	body, contentType := multipartBody(t, "file", "notes.txt", "remember the milk")
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.HandleUploadForm(rec, req)

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/upload", rec.Header().Get("Location"))

	require.Len(t, f.store.uploads, 1)
	stored, err := os.ReadFile(filepath.Join(f.dir, f.store.uploads[0].StoredName))
	require.NoError(t, err)
	require.Equal(t, "remember the milk", string(stored))

	page := f.followRedirect(t, rec)
	require.Equal(t, http.StatusOK, page.Code)
	require.Contains(t, page.Body.String(), "uploaded notes.txt")
	require.Contains(t, page.Body.String(), ">notes.txt</a></td>")

	cleared := flashCookieFrom(t, page)
	require.Equal(t, -1, cleared.MaxAge)
}

func TestHandleUploadForm_Errors(t *testing.T) {
	tests := []struct {
		name     string
		maxBytes int64
		build    func(t *testing.T) (*bytes.Buffer, string)
		message  string
	}{
		{
			name:     "no file selected",
			maxBytes: 1 << 20,
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "file", "", "")
			},
			message: "no file selected",
		},
		{
			name:     "wrong field",
			maxBytes: 1 << 20,
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "attachment", "a.txt", "data")
			},
			message: "no file selected",
		},
		{
			name:     "not multipart",
			maxBytes: 1 << 20,
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString("a=b"), "application/x-www-form-urlencoded"
			},
			message: "no file selected",
		},
		{
			name:     "unusable file name",
			maxBytes: 1 << 20,
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "file", "???", "data")
			},
			message: "invalid file name",
		},
		{
			name:     "too large",
			maxBytes: 1024,
			build: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "file", "big.bin", strings.Repeat("x", 4096))
			},
			message: "file too large",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(t, tt.maxBytes)

			body, contentType := tt.build(t)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.HandleUploadForm(rec, req)

			require.Equal(t, http.StatusSeeOther, rec.Code)
			require.Empty(t, f.store.uploads)

			entries, err := os.ReadDir(f.dir)
			require.NoError(t, err)
			require.Empty(t, entries)

			page := f.followRedirect(t, rec)
			require.Contains(t, page.Body.String(), `class="flash error"`)
			require.Contains(t, page.Body.String(), tt.message)
		})
	}
}

func TestHandleUploadPage_TamperedFlash(t *testing.T) {
	f := newUploadFixture(t, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/upload", nil)
	req.AddCookie(&http.Cookie{Name: flashCookie, Value: "forged.token.value"})
	rec := httptest.NewRecorder()
	f.handler.HandleUploadPage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotContains(t, rec.Body.String(), `class="flash`)
}

func TestHandleCreateUpload(t *testing.T) {
	f := newUploadFixture(t, 1<<20)

	body, contentType := multipartBody(t, "file", "photo.png", "not really a png")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.HandleCreateUpload(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var upload model.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))
	require.Equal(t, "photo.png", upload.OriginalName)
	require.Equal(t, int64(len("not really a png")), upload.Size)
	require.Len(t, upload.Digest, 64)
	require.NotEmpty(t, upload.ID)
}

func TestHandleCreateUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		maxBytes   int64
		body       func(t *testing.T) (*bytes.Buffer, string)
		wantStatus int
	}{
		{
			name:     "not multipart",
			maxBytes: 1 << 20,
			body: func(t *testing.T) (*bytes.Buffer, string) {
				return bytes.NewBufferString(`{"file":"x"}`), "application/json"
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "no file",
			maxBytes: 1 << 20,
			body: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "other", "a.txt", "x")
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:     "too large",
			maxBytes: 512,
			body: func(t *testing.T) (*bytes.Buffer, string) {
				return multipartBody(t, "file", "a.txt", strings.Repeat("y", 2048))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newUploadFixture(t, tt.maxBytes)

			body, contentType := tt.body(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			f.handler.HandleCreateUpload(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			var errResp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
			require.NotEmpty(t, errResp["error"])
		})
	}
}

func TestHandleListUploads(t *testing.T) {
	f := newUploadFixture(t, 1<<20)

	for _, name := range []string{"first.txt", "second.txt"} {
		body, contentType := multipartBody(t, "file", name, name)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		f.handler.HandleCreateUpload(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := httptest.NewRecorder()
	f.handler.HandleListUploads(rec, httptest.NewRequest(http.MethodGet, "/api/v1/uploads", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.UploadListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Uploads, 2)
	require.Equal(t, "second.txt", resp.Uploads[0].OriginalName)
	require.Equal(t, "first.txt", resp.Uploads[1].OriginalName)
}

func TestHandleDownload(t *testing.T) {
	f := newUploadFixture(t, 1<<20)

	body, contentType := multipartBody(t, "file", "report.csv", "a,b\n1,2\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	f.handler.HandleCreateUpload(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var upload model.Upload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &upload))

	r := chi.NewRouter()
	r.Get("/uploads/{id}", f.handler.HandleDownload)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/"+upload.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "a,b\n1,2\n", rec.Body.String())
	require.Equal(t, `attachment; filename=report.csv`, rec.Header().Get("Content-Disposition"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/does-not-exist", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
