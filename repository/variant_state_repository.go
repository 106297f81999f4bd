package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"ar-model-dashboard/db"
	"ar-model-dashboard/models"
)

// batchChunkSize bounds the number of ids in a single IN list
const batchChunkSize = 500

const variantStateColumns = `variant_id, group_id, ios_asset_url, android_asset_url,
		       human_verified, manual_incorrect, notes, created_at, updated_at`

// VariantStateRepository handles database operations for variant curated state
// Implements VariantStateRepositoryInterface
type VariantStateRepository struct {
	db      *sql.DB
	dialect db.Dialect
	now     func() time.Time

	schemaMu    sync.Mutex
	schemaReady bool
}

// NewVariantStateRepository creates a new VariantStateRepository over an open connection.
// Call EnsureSchema once at startup.
func NewVariantStateRepository(conn *sql.DB, dialect db.Dialect) *VariantStateRepository {
	return &VariantStateRepository{
		db:      conn,
		dialect: dialect,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Ensure VariantStateRepository implements VariantStateRepositoryInterface
var _ VariantStateRepositoryInterface = (*VariantStateRepository)(nil)

// EnsureSchema creates the variant_states table and its indexes if missing.
// Safe to run on every process start.
func (r *VariantStateRepository) EnsureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()

	if r.schemaReady {
		return nil
	}

	for _, stmt := range schemaStatements(r.dialect) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			log.Printf("❌ Error initializing variant_states schema: %v", err)
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}

	r.schemaReady = true
	log.Printf("✓ variant_states schema ready (%s)", r.dialect)
	return nil
}

// ready retries schema initialization when it failed at startup
func (r *VariantStateRepository) ready(ctx context.Context) error {
	r.schemaMu.Lock()
	done := r.schemaReady
	r.schemaMu.Unlock()
	if done {
		return nil
	}
	return r.EnsureSchema(ctx)
}

// GetByVariantID returns the row of a variant, or nil when none exists
func (r *VariantStateRepository) GetByVariantID(ctx context.Context, variantID int64) (*models.VariantState, error) {
	if err := r.ready(ctx); err != nil {
		return nil, err
	}

	query := `SELECT ` + variantStateColumns + ` FROM variant_states WHERE variant_id = $1`

	state, err := scanVariantState(r.db.QueryRowContext(ctx, query, variantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		log.Printf("❌ Error fetching variant state %d: %v", variantID, err)
		return nil, fmt.Errorf("failed to get variant state: %w", err)
	}
	return &state, nil
}

// GetBatch returns the rows that exist for variantIDs, keyed by variant id.
// Ids without a row are absent from the result.
func (r *VariantStateRepository) GetBatch(ctx context.Context, variantIDs []int64) (map[int64]models.VariantState, error) {
	result := make(map[int64]models.VariantState, len(variantIDs))
	ids := uniqueIDs(variantIDs)
	if len(ids) == 0 {
		return result, nil
	}

	if err := r.ready(ctx); err != nil {
		return nil, err
	}

	for start := 0; start < len(ids); start += batchChunkSize {
		end := start + batchChunkSize
		if end > len(ids) {
			end = len(ids)
		}
		if err := r.getChunk(ctx, ids[start:end], result); err != nil {
			return nil, err
		}
	}

	log.Printf("🔍 GetBatch: %d of %d requested variants have state", len(result), len(ids))
	return result, nil
}

func (r *VariantStateRepository) getChunk(ctx context.Context, ids []int64, into map[int64]models.VariantState) error {
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT ` + variantStateColumns + ` FROM variant_states WHERE variant_id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ Error fetching variant states batch: %v", err)
		return fmt.Errorf("failed to get variant states: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		state, err := scanVariantState(rows)
		if err != nil {
			return fmt.Errorf("failed to scan variant state: %w", err)
		}
		into[state.VariantID] = state
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate variant states: %w", err)
	}
	return nil
}

// UpsertOnFirstSeen inserts a row for a variant not seen before.
// The ON CONFLICT branch only fires when a concurrent pass inserted the same variant first,
// and only rewrites the row when the asset urls actually differ.
func (r *VariantStateRepository) UpsertOnFirstSeen(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) (bool, error) {
	if err := r.ready(ctx); err != nil {
		return false, err
	}

	query := `
		INSERT INTO variant_states (
			variant_id, group_id, ios_asset_url, android_asset_url,
			human_verified, manual_incorrect, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, FALSE, FALSE, NULL, $5, $5)
		ON CONFLICT (variant_id) DO UPDATE SET
			group_id = excluded.group_id,
			ios_asset_url = excluded.ios_asset_url,
			android_asset_url = excluded.android_asset_url,
			updated_at = excluded.updated_at
		WHERE variant_states.ios_asset_url IS DISTINCT FROM excluded.ios_asset_url
		   OR variant_states.android_asset_url IS DISTINCT FROM excluded.android_asset_url
	`

	result, err := r.db.ExecContext(ctx, query, variantID, groupID, nullString(iosURL), nullString(androidURL), r.now())
	if err != nil {
		log.Printf("❌ Database UPSERT error for variant_id %d: %v", variantID, err)
		return false, fmt.Errorf("failed to upsert variant state: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
		return true, nil
	}
	return rowsAffected > 0, nil
}

// UpdateAssets overwrites the group and asset urls of an existing variant.
// Callers decide beforehand that the urls changed.
func (r *VariantStateRepository) UpdateAssets(ctx context.Context, variantID, groupID int64, iosURL, androidURL string) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	query := `
		UPDATE variant_states
		SET group_id = $1, ios_asset_url = $2, android_asset_url = $3, updated_at = $4
		WHERE variant_id = $5
	`

	result, err := r.db.ExecContext(ctx, query, groupID, nullString(iosURL), nullString(androidURL), r.now(), variantID)
	if err != nil {
		log.Printf("❌ Error updating assets of variant %d: %v", variantID, err)
		return fmt.Errorf("failed to update variant assets: %w", err)
	}

	logNoRows(result, "UpdateAssets", variantID)
	return nil
}

// SetHumanVerified sets human_verified. Verifying a variant clears manual_incorrect
// in the same statement.
func (r *VariantStateRepository) SetHumanVerified(ctx context.Context, variantID int64, verified bool) error {
	query := `
		UPDATE variant_states
		SET human_verified = $1,
		    manual_incorrect = (manual_incorrect AND NOT $1),
		    updated_at = $2
		WHERE variant_id = $3
	`
	return r.updateCurated(ctx, "SetHumanVerified", query, variantID, verified, r.now(), variantID)
}

// SetManualIncorrect sets manual_incorrect. Flagging a variant as incorrect clears
// human_verified in the same statement.
func (r *VariantStateRepository) SetManualIncorrect(ctx context.Context, variantID int64, incorrect bool) error {
	query := `
		UPDATE variant_states
		SET manual_incorrect = $1,
		    human_verified = (human_verified AND NOT $1),
		    updated_at = $2
		WHERE variant_id = $3
	`
	return r.updateCurated(ctx, "SetManualIncorrect", query, variantID, incorrect, r.now(), variantID)
}

// SetNotes stores operator notes. An empty string clears them (NULL).
func (r *VariantStateRepository) SetNotes(ctx context.Context, variantID int64, notes string) error {
	query := `UPDATE variant_states SET notes = $1, updated_at = $2 WHERE variant_id = $3`
	return r.updateCurated(ctx, "SetNotes", query, variantID, nullString(notes), r.now(), variantID)
}

func (r *VariantStateRepository) updateCurated(ctx context.Context, op, query string, variantID int64, args ...interface{}) error {
	if err := r.ready(ctx); err != nil {
		return err
	}

	log.Printf("🔄 %s: variant_id=%d", op, variantID)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Printf("❌ %s: error updating variant %d: %v", op, variantID, err)
		return fmt.Errorf("failed to update variant state: %w", err)
	}

	logNoRows(result, op, variantID)
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVariantState(row rowScanner) (models.VariantState, error) {
	var (
		state     models.VariantState
		ios       sql.NullString
		android   sql.NullString
		notes     sql.NullString
		createdAt sql.NullTime
		updatedAt sql.NullTime
	)

	err := row.Scan(
		&state.VariantID,
		&state.GroupID,
		&ios,
		&android,
		&state.HumanVerified,
		&state.ManualIncorrect,
		&notes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.VariantState{}, err
	}

	state.IOSAssetURL = stringPtr(ios)
	state.AndroidAssetURL = stringPtr(android)
	state.Notes = stringPtr(notes)
	state.CreatedAt = createdAt.Time
	state.UpdatedAt = updatedAt.Time
	return state, nil
}

func logNoRows(result sql.Result, op string, variantID int64) {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("⚠️  Warning: Could not get rows affected: %v", err)
		return
	}
	if rowsAffected == 0 {
		log.Printf("⚠️  %s: no row for variant_id %d (not synchronized yet)", op, variantID)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
