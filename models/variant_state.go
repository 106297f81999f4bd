package models

import "time"

/*
 Table "variant_states"
      Column       |   Type      | Nullable | Default
 ------------------+-------------+----------+---------
 id                | bigserial   | not null |
 variant_id        | integer     | not null |          (unique)
 group_id          | integer     | not null |
 ios_asset_url     | text        |          |
 android_asset_url | text        |          |
 human_verified    | boolean     | not null | false
 manual_incorrect  | boolean     | not null | false
 notes             | text        |          |
 created_at        | timestamptz |          | now()
 updated_at        | timestamptz |          | now()
*/

// VariantState is the persisted, human-curated state of a catalog variant.
// HumanVerified and ManualIncorrect are never both true.
type VariantState struct {
	VariantID       int64     `json:"variantId"`
	GroupID         int64     `json:"groupId"`
	IOSAssetURL     *string   `json:"iosAssetUrl"`
	AndroidAssetURL *string   `json:"androidAssetUrl"`
	HumanVerified   bool      `json:"humanVerified"`
	ManualIncorrect bool      `json:"manualIncorrect"`
	Notes           *string   `json:"notes"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// VariantStateView is the projection of VariantState served by GET /variant-state
type VariantStateView struct {
	HumanVerified   bool    `json:"humanVerified"`
	ManualIncorrect bool    `json:"manualIncorrect"`
	Notes           *string `json:"notes"`
}

// View projects the curated fields of the row
func (s VariantState) View() VariantStateView {
	return VariantStateView{
		HumanVerified:   s.HumanVerified,
		ManualIncorrect: s.ManualIncorrect,
		Notes:           s.Notes,
	}
}

// SyncStats summarizes one synchronization pass
type SyncStats struct {
	RunID     string `json:"runId"`
	Total     int    `json:"total"`
	Inserted  int    `json:"inserted"`
	Updated   int    `json:"updated"`
	Unchanged int    `json:"unchanged"`
	Skipped   int    `json:"skipped"` // Variants without a usable id
}
