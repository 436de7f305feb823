package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/validation"
)

// NewsRules are checked on create and update, in order.
var NewsRules = validation.Rules{
	validation.RequiredString("title", "Title is required"),
	validation.RequiredString("content", "Content is required"),
}

// NewsHandler serves the news resource
type NewsHandler struct {
	service *gateway.NewsService
	rs      *Responder
}

func NewNewsHandler(service *gateway.NewsService, rs *Responder) *NewsHandler {
	return &NewsHandler{service: service, rs: rs}
}

// Routes returns the router for news endpoints
func (h *NewsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	validate := ValidateBody(h.rs, NewsRules)

	r.Get("/", h.List)
	r.With(validate).Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.With(validate).Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.rs.Error(w, r, "fetch news", err)
		return
	}
	h.rs.RespondList(w, r, "News fetched successfully", records, len(records))
}

func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, "fetch news", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "News fetched successfully", record)
}

func (h *NewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Create(r.Context(), recordInput(r))
	if err != nil {
		h.rs.Error(w, r, "create news", err)
		return
	}
	h.rs.Respond(w, r, http.StatusCreated, "News created successfully", record)
}

func (h *NewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), recordInput(r))
	if err != nil {
		h.rs.Error(w, r, "update news", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "News updated successfully", record)
}

func (h *NewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.rs.Error(w, r, "delete news", err)
		return
	}
	h.rs.Respond(w, r, http.StatusOK, "News deleted successfully", map[string]int64{"id": id})
}

func recordInput(r *http.Request) gateway.RecordInput {
	body := ValidatedBody(r)
	return gateway.RecordInput{
		Title:   validation.String(body, "title"),
		Content: validation.String(body, "content"),
	}
}
