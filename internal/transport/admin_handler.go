package transport

import (
	"errors"
	"net/http"

	"shoe-storefront/internal/middleware"
	"shoe-storefront/internal/service"
	"shoe-storefront/internal/storage"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// multipartOverhead is allowed on top of the file limit for form boundaries
// and headers.
const multipartOverhead = 1 << 20

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

type BulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=500"`
}

// HeroBannersRequest replaces the whole banner list.
type HeroBannersRequest struct {
	Banners []service.HeroBannerInput `json:"banners" validate:"dive"`
}

type BulkDeleteResponse struct {
	Deleted int `json:"deleted"`
}

// AdminHandler serves the back-office catalog, attribute and content editors.
type AdminHandler struct {
	products    service.ProductService
	colors      service.ColorService
	sizes       service.SizeService
	categories  service.CategoryService
	content     service.ContentService
	storage     storage.Storage
	uploadLimit int64
	logger      *zap.Logger
}

func NewAdminHandler(
	products service.ProductService,
	colors service.ColorService,
	sizes service.SizeService,
	categories service.CategoryService,
	content service.ContentService,
	store storage.Storage,
	uploadLimit int64,
	logger *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		products:    products,
		colors:      colors,
		sizes:       sizes,
		categories:  categories,
		content:     content,
		storage:     store,
		uploadLimit: uploadLimit,
		logger:      logger,
	}
}

// RegisterRoutes mounts the editors under an admin router.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Post("/bulk-delete", h.BulkDeleteProducts)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
		r.Patch("/{id}/active", h.SetProductActive)
	})

	r.Route("/colors", func(r chi.Router) {
		r.Get("/", h.ListColors)
		r.Post("/", h.CreateColor)
		r.Put("/{id}", h.UpdateColor)
		r.Delete("/{id}", h.DeleteColor)
	})

	r.Route("/sizes", func(r chi.Router) {
		r.Get("/", h.ListSizes)
		r.Post("/", h.CreateSize)
		r.Put("/{id}", h.UpdateSize)
		r.Delete("/{id}", h.DeleteSize)
	})

	r.Post("/categories", h.CreateCategory)

	r.Route("/content", func(r chi.Router) {
		r.Get("/", h.GetContent)
		r.Put("/hero-banners", h.ReplaceHeroBanners)
		r.Put("/category-media/{categoryId}", h.SetCategoryMedia)
		r.Delete("/category-media/{categoryId}", h.RemoveCategoryMedia)
		r.Put("/attitude", h.UpdateAttitude)
	})

	r.Post("/uploads", h.Upload)
}

func (h *AdminHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductQuery(r.URL.Query())
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	query.Admin = true

	page, err := h.products.List(r.Context(), query)
	h.respond(w, r, http.StatusOK, page, err)
}

func (h *AdminHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	view, err := h.products.GetForAdmin(r.Context(), id)
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *AdminHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.ProductInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	view, err := h.products.Create(r.Context(), req)
	if err == nil {
		h.logger.Info("Product created",
			zap.String("product_id", view.Product.ID.String()),
			zap.Int("variants", len(view.Variants)),
		)
	}
	h.respond(w, r, http.StatusCreated, view, err)
}

func (h *AdminHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.ProductInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	view, err := h.products.Update(r.Context(), id, req)
	h.respond(w, r, http.StatusOK, view, err)
}

func (h *AdminHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) SetProductActive(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req SetActiveRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	if err := h.products.SetActive(r.Context(), id, *req.IsActive); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) BulkDeleteProducts(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	deleted, err := h.products.DeleteMany(r.Context(), req.IDs)
	if err == nil {
		h.logger.Info("Products deleted", zap.Int("requested", len(req.IDs)), zap.Int("deleted", deleted))
	}
	h.respond(w, r, http.StatusOK, BulkDeleteResponse{Deleted: deleted}, err)
}

func (h *AdminHandler) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := h.colors.List(r.Context(), false)
	h.respond(w, r, http.StatusOK, colors, err)
}

func (h *AdminHandler) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req service.ColorInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	color, err := h.colors.Create(r.Context(), req)
	h.respond(w, r, http.StatusCreated, color, err)
}

func (h *AdminHandler) UpdateColor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.ColorInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	color, err := h.colors.Update(r.Context(), id, req)
	h.respond(w, r, http.StatusOK, color, err)
}

func (h *AdminHandler) DeleteColor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.colors.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) ListSizes(w http.ResponseWriter, r *http.Request) {
	sizes, err := h.sizes.List(r.Context(), false)
	h.respond(w, r, http.StatusOK, sizes, err)
}

func (h *AdminHandler) CreateSize(w http.ResponseWriter, r *http.Request) {
	var req service.SizeInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	size, err := h.sizes.Create(r.Context(), req)
	h.respond(w, r, http.StatusCreated, size, err)
}

func (h *AdminHandler) UpdateSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req service.SizeInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	size, err := h.sizes.Update(r.Context(), id, req)
	h.respond(w, r, http.StatusOK, size, err)
}

func (h *AdminHandler) DeleteSize(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.sizes.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req service.CategoryInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	category, err := h.categories.Create(r.Context(), req)
	h.respond(w, r, http.StatusCreated, category, err)
}

// GetContent returns the homepage with inactive banners included.
func (h *AdminHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	homepage, err := h.content.Homepage(r.Context(), true)
	h.respond(w, r, http.StatusOK, homepage, err)
}

func (h *AdminHandler) ReplaceHeroBanners(w http.ResponseWriter, r *http.Request) {
	var req HeroBannersRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	banners, err := h.content.ReplaceHeroBanners(r.Context(), req.Banners)
	h.respond(w, r, http.StatusOK, banners, err)
}

func (h *AdminHandler) SetCategoryMedia(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	var req service.CategoryMediaInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	media, err := h.content.SetCategoryMedia(r.Context(), categoryID, req)
	h.respond(w, r, http.StatusOK, media, err)
}

func (h *AdminHandler) RemoveCategoryMedia(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := pathID(w, r, "categoryId")
	if !ok {
		return
	}

	if err := h.content.RemoveCategoryMedia(r.Context(), categoryID); err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UpdateAttitude(w http.ResponseWriter, r *http.Request) {
	var req service.AttitudeInput
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	attitude, err := h.content.UpdateAttitude(r.Context(), req)
	h.respond(w, r, http.StatusOK, attitude, err)
}

// Upload stores the multipart field "file" and returns its public URL.
func (h *AdminHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h.uploadLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit+multipartOverhead)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithServiceError(w, r, h.logger, storage.ErrUploadTooLarge)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	obj, err := h.storage.Upload(r.Context(), file)
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("Media uploaded",
		zap.String("filename", header.Filename),
		zap.String("url", obj.URL),
		zap.String("content_type", obj.ContentType),
		zap.Int64("size", obj.Size),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, obj)
}

func (h *AdminHandler) respond(w http.ResponseWriter, r *http.Request, status int, body interface{}, err error) {
	if err != nil {
		respondWithServiceError(w, r, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, status, body)
}
