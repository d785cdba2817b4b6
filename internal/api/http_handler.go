package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"catalog-dashboard/internal/cart"
	"catalog-dashboard/internal/catalog"
	"catalog-dashboard/internal/dashboard"
	"catalog-dashboard/internal/domain"
	"catalog-dashboard/internal/logger"
	"catalog-dashboard/internal/query"
	"catalog-dashboard/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	fetcher  catalog.Fetcher
	cart     *cart.Service
	prefs    *store.Prefs
	pageSize int
	validate *validator.Validate
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(fetcher catalog.Fetcher, cartSvc *cart.Service, prefs *store.Prefs) *HTTPHandler {
	return &HTTPHandler{
		fetcher:  fetcher,
		cart:     cartSvc,
		prefs:    prefs,
		pageSize: dashboard.DefaultPageSize,
		validate: validator.New(),
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.L().Error("failed to encode JSON response", zap.Error(err))
		}
	}
}

// upstreamStatus maps catalog client errors onto response codes: a missing
// product is the caller's 404, anything else is a bad gateway.
func upstreamStatus(err error) int {
	if errors.Is(err, catalog.ErrProductNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

// --- Selection parsing ---

// applySelection parses the filter/sort/page query parameters onto a freshly
// loaded view. Every parameter is optional; a malformed or non-whitelisted
// value is a 400. Returns false after writing the error response.
func (h *HTTPHandler) applySelection(w http.ResponseWriter, r *http.Request, view *dashboard.View) bool {
	qParams := r.URL.Query()

	if q := qParams.Get("q"); q != "" {
		view.SetSearchTerm(q)
	}
	if category := qParams.Get("category"); category != "" {
		view.SetCategory(category)
	}

	defaults := view.Selection()
	minPrice, maxPrice := defaults.MinPrice, defaults.MaxPrice
	rangeSet := false
	if priceStr := qParams.Get("min_price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid min_price format")
			return false
		}
		minPrice, rangeSet = price, true
	}
	if priceStr := qParams.Get("max_price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil || price < 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid max_price format")
			return false
		}
		maxPrice, rangeSet = price, true
	}
	if rangeSet {
		// Inverted bounds are passed through and simply match nothing;
		// that mirrors the price filter's documented behavior.
		view.SetPriceRange(minPrice, maxPrice)
	}

	sortKey, err := query.ParseSortKey(qParams.Get("sort"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid sort value. Allowed: default, price-asc, price-desc, rating-desc")
		return false
	}
	if sortKey != query.SortDefault {
		view.SetSort(sortKey)
	}

	// Page last: every setter above resets it to 1.
	if pageStr := qParams.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid page: must be a positive integer")
			return false
		}
		view.SetPage(page)
	}
	return true
}

// loadView builds a view for this request's page size and runs the eager
// catalog load. Returns nil after writing the error response.
func (h *HTTPHandler) loadView(w http.ResponseWriter, r *http.Request) *dashboard.View {
	pageSize := h.pageSize
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit: must be a positive integer")
			return nil
		}
		if limit > 100 {
			limit = 100
		}
		pageSize = limit
	}

	view := dashboard.NewView(h.fetcher, pageSize)
	if err := view.Load(r.Context()); err != nil {
		logger.L().Error("dashboard load failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to load catalog")
		return nil
	}
	return view
}

// --- Dashboard ---

// DashboardResponse is the full presentation payload for one dashboard
// render: catalog-wide stats, the category universe, the active selection and
// the derived visible page.
type DashboardResponse struct {
	Stats            dashboard.Stats     `json:"stats"`
	Categories       []string            `json:"categories"`
	Selection        dashboard.Selection `json:"selection"`
	HasActiveFilters bool                `json:"hasActiveFilters"`
	Page             dashboard.Page      `json:"page"`
}

func (h *HTTPHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view := h.loadView(w, r)
	if view == nil {
		return
	}
	if !h.applySelection(w, r, view) {
		return
	}

	respondWithJSON(w, http.StatusOK, DashboardResponse{
		Stats:            view.Stats(),
		Categories:       view.Categories(),
		Selection:        view.Selection(),
		HasActiveFilters: view.HasActiveFilters(),
		Page:             view.VisiblePage(),
	})
}

// --- Products ---

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	view := h.loadView(w, r)
	if view == nil {
		return
	}
	if !h.applySelection(w, r, view) {
		return
	}

	page := view.VisiblePage()

	// Matches the pagination envelope shape of our other list APIs.
	response := struct {
		Data       []domain.Product `json:"data"`
		Pagination struct {
			Page       int `json:"page"`
			Limit      int `json:"limit"`
			TotalItems int `json:"total_items"`
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
	}{Data: page.Items}
	response.Pagination.Page = page.Page
	response.Pagination.Limit = page.PageSize
	response.Pagination.TotalItems = page.TotalItems
	response.Pagination.TotalPages = page.TotalPages

	respondWithJSON(w, http.StatusOK, response)
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	detail := dashboard.NewDetail(h.fetcher)
	product, err := detail.Load(r.Context(), productID)
	if err != nil {
		logger.L().Warn("product detail load failed", zap.Int64("productId", productID), zap.Error(err))
		respondWithError(w, upstreamStatus(err), err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

func (h *HTTPHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.fetcher.FetchCategories(r.Context())
	if err != nil {
		logger.L().Error("categories fetch failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "Failed to retrieve categories")
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondWithJSON(w, http.StatusOK, categories)
}

// --- Cart ---

// CartAddInput defines the expected input for adding a product to the cart.
type CartAddInput struct {
	ProductID int64 `json:"product_id" validate:"required,gt=0"`
}

func (h *HTTPHandler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var input CartAddInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	// The cart stores a product snapshot, so resolve the id upstream first.
	product, err := h.fetcher.FetchProductByID(r.Context(), input.ProductID)
	if err != nil {
		respondWithError(w, upstreamStatus(err), err.Error())
		return
	}

	line, err := h.cart.Add(*product)
	if err != nil {
		logger.L().Error("cart write failed", zap.Int64("productId", input.ProductID), zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to update cart")
		return
	}
	respondWithJSON(w, http.StatusCreated, line)
}

func (h *HTTPHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.cart.Items()
	if err != nil {
		logger.L().Error("cart read failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to read cart")
		return
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *HTTPHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.cart.Clear(); err != nil {
		logger.L().Error("cart clear failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to clear cart")
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// --- Preferences ---

// ThemeInput defines the expected input for setting the theme preference.
// DarkMode is a pointer so an absent field is distinguishable from false.
type ThemeInput struct {
	DarkMode *bool `json:"darkMode" validate:"required"`
}

type themeResponse struct {
	DarkMode bool `json:"darkMode"`
}

func (h *HTTPHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	dark, err := h.prefs.DarkMode()
	if err != nil {
		logger.L().Error("theme read failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to read theme preference")
		return
	}
	respondWithJSON(w, http.StatusOK, themeResponse{DarkMode: dark})
}

func (h *HTTPHandler) PutTheme(w http.ResponseWriter, r *http.Request) {
	var input ThemeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	if err := h.prefs.SetDarkMode(*input.DarkMode); err != nil {
		logger.L().Error("theme write failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to save theme preference")
		return
	}
	respondWithJSON(w, http.StatusOK, themeResponse{DarkMode: *input.DarkMode})
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/dashboard", h.GetDashboard)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/{productId}", h.GetProductByID)
		})

		r.Get("/categories", h.ListCategories)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
		})

		r.Route("/preferences/theme", func(r chi.Router) {
			r.Get("/", h.GetTheme)
			r.Put("/", h.PutTheme)
		})
	})
}
