package models

// VariantSyncRequest is the body of POST /variant-sync
type VariantSyncRequest struct {
	Data []CatalogGroup `json:"data"`
}

// VariantStateRequest is the body form of the batch state lookup
type VariantStateRequest struct {
	VariantIDs []int64 `json:"variantIds"`
}

// VariantUpdateRequest is the body of PATCH /variant-update.
// Nil fields are left untouched.
// Example: {
//   "variantId": 812,
//   "manualIncorrect": true,
//   "humanVerified": false
// }
type VariantUpdateRequest struct {
	VariantID       *int64  `json:"variantId"`
	HumanVerified   *bool   `json:"humanVerified,omitempty"`
	ManualIncorrect *bool   `json:"manualIncorrect,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// OKResponse is the success body of mutating endpoints
type OKResponse struct {
	OK    bool       `json:"ok"`
	Stats *SyncStats `json:"stats,omitempty"`
}

// ErrorResponse is the JSON error body of every endpoint
type ErrorResponse struct {
	Error string `json:"error"`
}
