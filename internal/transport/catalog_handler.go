package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"shoe-storefront/internal/middleware"
	"shoe-storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CatalogHandler serves the public storefront reads.
type CatalogHandler struct {
	products   service.ProductService
	categories service.CategoryService
	content    service.ContentService
	logger     *zap.Logger
}

func NewCatalogHandler(
	products service.ProductService,
	categories service.CategoryService,
	content service.ContentService,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		products:   products,
		categories: categories,
		content:    content,
		logger:     logger,
	}
}

func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/categories", h.ListCategories)
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Get("/{id}", h.GetProduct)
		r.Get("/{id}/variant", h.GetVariant)
	})
	r.Get("/api/content/homepage", h.Homepage)
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r.URL.Query())
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.products.List(r.Context(), query)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.products.Get(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, view)
}

// GetVariant resolves the family member of product {id} with ?color=<code>.
func (h *CatalogHandler) GetVariant(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	code := r.URL.Query().Get("color")
	if code == "" {
		middleware.RespondWithError(w, http.StatusBadRequest, "color is required")
		return
	}

	product, err := h.products.VariantByColor(r.Context(), id, code)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) Homepage(w http.ResponseWriter, r *http.Request) {
	homepage, err := h.content.Homepage(r.Context(), false)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, homepage)
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseProductQuery(values url.Values) (service.ProductQuery, error) {
	q := service.ProductQuery{
		Category:  values.Get("category"),
		Search:    values.Get("search"),
		SortBy:    values.Get("sortBy"),
		SortOrder: values.Get("sortOrder"),
	}

	var err error
	if q.Page, err = optionalInt(values, "page"); err != nil {
		return q, err
	}
	if q.PageSize, err = optionalInt(values, "pageSize"); err != nil {
		return q, err
	}
	if q.IsNew, err = optionalBool(values, "isNew"); err != nil {
		return q, err
	}
	if q.Sale, err = optionalBool(values, "sale"); err != nil {
		return q, err
	}
	return q, nil
}

func optionalInt(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, queryError("invalid " + key)
	}
	return n, nil
}

func optionalBool(values url.Values, key string) (*bool, error) {
	raw := values.Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, queryError("invalid " + key)
	}
	return &b, nil
}
