package controller

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"ar-model-dashboard/models"
	"ar-model-dashboard/service"
)

// CatalogController serves the normalized catalog
type CatalogController struct {
	catalogService  service.CatalogServiceInterface
	defaultPage     int
	defaultPageSize int
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService service.CatalogServiceInterface, defaultPage, defaultPageSize int) *CatalogController {
	if defaultPage <= 0 {
		defaultPage = 1
	}
	if defaultPageSize <= 0 {
		defaultPageSize = 100
	}
	return &CatalogController{
		catalogService:  catalogService,
		defaultPage:     defaultPage,
		defaultPageSize: defaultPageSize,
	}
}

// GetCatalog handles GET /catalog?page=1&pageSize=100
func (c *CatalogController) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GetCatalog", r)
		return
	}

	page, err := positiveQueryInt(r, "page", c.defaultPage)
	if err != nil {
		writeServiceError(w, "GetCatalog", err)
		return
	}
	pageSize, err := positiveQueryInt(r, "pageSize", c.defaultPageSize)
	if err != nil {
		writeServiceError(w, "GetCatalog", err)
		return
	}

	log.Printf("📥 GetCatalog: page=%d pageSize=%d", page, pageSize)

	catalog, err := c.catalogService.GetCatalog(r.Context(), page, pageSize)
	if err != nil {
		writeServiceError(w, "GetCatalog", err)
		return
	}

	log.Printf("✅ GetCatalog: returning %d groups", len(catalog.Data))
	writeJSON(w, http.StatusOK, catalog)
}

// positiveQueryInt reads an optional positive integer query parameter
func positiveQueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, models.NewValidationError(name, "must be a positive integer, got %q", raw)
	}
	return n, nil
}
