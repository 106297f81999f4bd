package controller

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"ar-model-dashboard/models"
	"ar-model-dashboard/repository"
	"ar-model-dashboard/service"
	"ar-model-dashboard/utils"
)

// VariantController handles the variant state endpoints
type VariantController struct {
	repository  repository.VariantStateRepositoryInterface
	syncService service.SyncServiceInterface
}

// NewVariantController creates a new VariantController
func NewVariantController(repo repository.VariantStateRepositoryInterface, syncService service.SyncServiceInterface) *VariantController {
	return &VariantController{
		repository:  repo,
		syncService: syncService,
	}
}

// GetState handles GET /variant-state?ids=1,2,3 and POST /variant-state {"variantIds": [...]}
// Returns the curated state of every requested variant that has a row.
func (c *VariantController) GetState(w http.ResponseWriter, r *http.Request) {
	var ids []int64

	switch r.Method {
	case http.MethodGet:
		raw, ok := r.URL.Query()["ids"]
		if !ok || len(raw) == 0 || raw[0] == "" {
			writeServiceError(w, "GetState", models.NewValidationError("ids", "query parameter is required"))
			return
		}
		ids = utils.ParseIDList(raw[0])
	case http.MethodPost:
		var req models.VariantStateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeServiceError(w, "GetState", models.NewValidationError("body", "invalid JSON: %v", err))
			return
		}
		if len(req.VariantIDs) == 0 {
			writeServiceError(w, "GetState", models.NewValidationError("variantIds", "must be a non-empty list"))
			return
		}
		ids = utils.UniqueIDs(req.VariantIDs)
	default:
		methodNotAllowed(w, "GetState", r)
		return
	}

	response := make(map[string]models.VariantStateView, len(ids))
	if len(ids) == 0 {
		writeJSON(w, http.StatusOK, response)
		return
	}

	states, err := c.repository.GetBatch(r.Context(), ids)
	if err != nil {
		writeServiceError(w, "GetState", err)
		return
	}

	for id, state := range states {
		response[strconv.FormatInt(id, 10)] = state.View()
	}

	log.Printf("✅ GetState: %d of %d variants have state", len(response), len(ids))
	writeJSON(w, http.StatusOK, response)
}

// Sync handles POST /variant-sync {"data": CatalogGroup[]}
func (c *VariantController) Sync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "Sync", r)
		return
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		writeServiceError(w, "Sync", models.NewValidationError("body", "invalid JSON: %v", err))
		return
	}

	var groups []models.CatalogGroup
	if len(envelope.Data) == 0 || envelope.Data[0] != '[' {
		writeServiceError(w, "Sync", models.NewValidationError("data", "must be a list of catalog groups"))
		return
	}
	if err := json.Unmarshal(envelope.Data, &groups); err != nil {
		writeServiceError(w, "Sync", models.NewValidationError("data", "invalid catalog groups: %v", err))
		return
	}

	log.Printf("📥 Sync: received %d groups", len(groups))

	stats, err := c.syncService.SyncCatalog(r.Context(), groups)
	if err != nil {
		writeServiceError(w, "Sync", err)
		return
	}

	writeJSON(w, http.StatusOK, models.OKResponse{OK: true, Stats: &stats})
}

// Update handles PATCH /variant-update {"variantId", "humanVerified"?, "manualIncorrect"?, "notes"?}
// Fields left out of the body are not touched.
func (c *VariantController) Update(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		methodNotAllowed(w, "Update", r)
		return
	}

	var req models.VariantUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeServiceError(w, "Update", models.NewValidationError("body", "invalid JSON: %v", err))
		return
	}

	if err := validateUpdate(req); err != nil {
		writeServiceError(w, "Update", err)
		return
	}

	ctx := r.Context()
	variantID := *req.VariantID
	log.Printf("📋 Update: variant_id=%d", variantID)

	// false first, so the true flag's statement has the last word on the pair
	if req.HumanVerified != nil && !*req.HumanVerified {
		if err := c.repository.SetHumanVerified(ctx, variantID, false); err != nil {
			writeServiceError(w, "Update", err)
			return
		}
	}
	if req.ManualIncorrect != nil {
		if err := c.repository.SetManualIncorrect(ctx, variantID, *req.ManualIncorrect); err != nil {
			writeServiceError(w, "Update", err)
			return
		}
	}
	if req.HumanVerified != nil && *req.HumanVerified {
		if err := c.repository.SetHumanVerified(ctx, variantID, true); err != nil {
			writeServiceError(w, "Update", err)
			return
		}
	}
	if req.Notes != nil {
		if err := c.repository.SetNotes(ctx, variantID, *req.Notes); err != nil {
			writeServiceError(w, "Update", err)
			return
		}
	}

	writeJSON(w, http.StatusOK, models.OKResponse{OK: true})
}

func validateUpdate(req models.VariantUpdateRequest) error {
	if req.VariantID == nil || *req.VariantID <= 0 {
		return models.NewValidationError("variantId", "must be a positive integer")
	}
	if req.HumanVerified != nil && req.ManualIncorrect != nil && *req.HumanVerified && *req.ManualIncorrect {
		return models.NewValidationError("", "humanVerified and manualIncorrect cannot both be true")
	}
	return nil
}
