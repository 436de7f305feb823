package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-gateway/pkg/gateway"
)

const (
	multipartMemory   = 8 << 20
	multipartOverhead = 1 << 20
)

// ImageHandler serves the image resource
type ImageHandler struct {
	service *gateway.ImageService
	rs      *Responder
	logger  *slog.Logger
	maxSize int64
}

// NewImageHandler caps upload bodies at maxSize plus multipart overhead.
func NewImageHandler(service *gateway.ImageService, rs *Responder, maxSize int64) *ImageHandler {
	return &ImageHandler{service: service, rs: rs, logger: rs.logger, maxSize: maxSize}
}

// Routes returns the router for image endpoints
func (h *ImageHandler) Routes() chi.Router {
	r := chi.NewRouter()
	limit := RequestSizeLimitMiddleware(h.maxSize + multipartOverhead)

	r.Get("/", h.List)
	r.With(limit).Post("/", h.Upload)
	r.Get("/{key}", h.Fetch)
	r.With(limit).Put("/{key}", h.Replace)
	r.Delete("/{key}", h.Delete)
	return r
}

func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	images, err := h.service.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, "list images", err)
		return
	}
	h.rs.RespondList(w, r, "Images fetched successfully", images, len(images))
}

func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, cleanup, err := h.readFile(r)
	if err != nil {
		h.rs.Error(w, r, "upload image", err)
		return
	}
	defer cleanup()

	uploaded, err := h.service.Upload(r.Context(), file)
	if err != nil {
		h.rs.Error(w, r, "upload image", err)
		return
	}
	h.rs.Respond(w, r, http.StatusCreated, "Image uploaded successfully", uploaded)
}

// Fetch streams the raw object rather than an envelope.
func (h *ImageHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	blob, err := h.service.Fetch(r.Context(), keyParam(r))
	if err != nil {
		h.rs.Error(w, r, "fetch image", err)
		return
	}
	defer blob.Body.Close()

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if blob.ETag != "" {
		w.Header().Set("ETag", strconv.Quote(blob.ETag))
	}
	if blob.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(blob.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, blob.Body); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to stream image", "key", blob.Key, "error", err)
	}
}

func (h *ImageHandler) Replace(w http.ResponseWriter, r *http.Request) {
	file, cleanup, err := h.readFile(r)
	if err != nil {
		h.rs.Error(w, r, "replace image", err)
		return
	}
	defer cleanup()

	key, err := h.service.Replace(r.Context(), keyParam(r), file)
	if err != nil {
		h.rs.Error(w, r, "replace image", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "Image replaced successfully", map[string]string{"key": key})
}

func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), keyParam(r)); err != nil {
		h.rs.Error(w, r, "delete image", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "Image deleted successfully", nil)
}

// readFile extracts the "file" part. A request without one yields a nil file
// so the service reports it with the other upload rules.
func (h *ImageHandler) readFile(r *http.Request) (*gateway.ImageFile, func(), error) {
	noop := func() {}
	if r.ContentLength > h.maxSize+multipartOverhead {
		return nil, noop, h.tooLarge()
	}

	err := r.ParseMultipartForm(multipartMemory)
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return nil, noop, h.tooLarge()
	case errors.Is(err, http.ErrNotMultipart):
		return nil, noop, nil
	case err != nil:
		return nil, noop, &gateway.ValidationError{Field: "file", Message: "Malformed multipart body"}
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		h.removeForm(r)
		if errors.Is(err, http.ErrMissingFile) {
			return nil, noop, nil
		}
		return nil, noop, &gateway.ValidationError{Field: "file", Message: "Malformed multipart body"}
	}

	file := &gateway.ImageFile{
		Name:        header.Filename,
		ContentType: partContentType(header),
		Size:        header.Size,
		Content:     f,
	}
	cleanup := func() {
		f.Close()
		h.removeForm(r)
	}
	return file, cleanup, nil
}

func (h *ImageHandler) tooLarge() error {
	return &gateway.ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("File size exceeds the %s limit", humanize.IBytes(uint64(h.maxSize))),
	}
}

func (h *ImageHandler) removeForm(r *http.Request) {
	if r.MultipartForm == nil {
		return
	}
	if err := r.MultipartForm.RemoveAll(); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to remove multipart files", "error", err)
	}
}

func partContentType(header *multipart.FileHeader) string {
	raw := header.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(raw)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(raw))
	}
	return mediaType
}

// keyParam returns the key segment with exactly one layer of escaping. chi
// matches on RawPath when the request carried escapes the default encoding
// would not produce, and on the decoded Path otherwise.
func keyParam(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	if r.URL.RawPath == "" {
		return url.PathEscape(raw)
	}
	return raw
}
