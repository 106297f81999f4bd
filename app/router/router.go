package router

import (
	"net/http"

	"ar-model-dashboard/app/controller"
)

type Controllers struct {
	Catalog *controller.CatalogController
	Variant *controller.VariantController
}

// pingHandler handles GET /ping
func pingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func SetupRoutes(mux *http.ServeMux, controllers *Controllers) {
	// Ping endpoint
	mux.HandleFunc("/ping", pingHandler)

	// Normalized catalog page
	mux.HandleFunc("/catalog", controllers.Catalog.GetCatalog)

	// Curated state lookup - handles both GET (?ids=) and POST (body)
	mux.HandleFunc("/variant-state", controllers.Variant.GetState)

	// Reconcile catalog asset urls into the store
	mux.HandleFunc("/variant-sync", controllers.Variant.Sync)

	// Curated field updates
	mux.HandleFunc("/variant-update", controllers.Variant.Update)
}
