package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"ar-model-dashboard/models"
)

const (
	// NotesDebounce is the silence required after the last notes edit before it is persisted
	NotesDebounce = 500 * time.Millisecond

	defaultWriteAttempts = 3
	defaultWriteInterval = 200 * time.Millisecond
	defaultWriteTimeout  = 15 * time.Second
)

// VariantWriter persists curated field updates to the backend
type VariantWriter interface {
	UpdateVariant(ctx context.Context, req models.VariantUpdateRequest) error
}

// pendingNotes is one scheduled notes write and the edit it will send
type pendingNotes struct {
	timer *time.Timer
	notes string
}

// StatusCache is the operator-side view of variant statuses.
// Every update is applied locally first; curated fields are then persisted in the
// background at most once per change, with a bounded retry. Failures are logged and
// the local value stands.
type StatusCache struct {
	store  LocalStore
	writer VariantWriter
	now    func() time.Time

	notesDebounce time.Duration
	writeAttempts uint
	writeInterval time.Duration
	writeTimeout  time.Duration

	mu       sync.Mutex
	statuses map[int64]models.ClientVariantStatus
	pending  map[int64]*pendingNotes
	loaded   bool

	// inflight counts scheduled and running writes; idle is signalled when it drops to zero
	inflight int
	idle     *sync.Cond
}

// NewStatusCache creates an empty cache. Call Load to restore the local copy.
func NewStatusCache(store LocalStore, writer VariantWriter) *StatusCache {
	c := &StatusCache{
		store:         store,
		writer:        writer,
		now:           time.Now,
		notesDebounce: NotesDebounce,
		writeAttempts: defaultWriteAttempts,
		writeInterval: defaultWriteInterval,
		writeTimeout:  defaultWriteTimeout,
		statuses:      make(map[int64]models.ClientVariantStatus),
		pending:       make(map[int64]*pendingNotes),
	}
	c.idle = sync.NewCond(&c.mu)
	return c
}

// Load restores the statuses saved by a previous session.
// An unreadable cache is discarded, like a corrupt browser storage entry.
func (c *StatusCache) Load(ctx context.Context) error {
	statuses, err := c.store.Load(ctx)
	if err != nil {
		log.Printf("⚠️  Discarding unreadable status cache: %v", err)
		statuses = map[int64]models.ClientVariantStatus{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = statuses
	c.loaded = true
	log.Printf("💾 Status cache loaded: %d variants", len(statuses))
	return nil
}

// Loaded reports whether Load has completed
func (c *StatusCache) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

// Get returns the status of a variant
func (c *StatusCache) Get(variantID int64) (models.ClientVariantStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.statuses[variantID]
	if !ok {
		return models.ClientVariantStatus{}, false
	}
	return cloneStatus(s), true
}

// All returns a copy of every known status
func (c *StatusCache) All() map[int64]models.ClientVariantStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[int64]models.ClientVariantStatus, len(c.statuses))
	for id, s := range c.statuses {
		out[id] = cloneStatus(s)
	}
	return out
}

// Hydrate overwrites the curated fields with the server's values.
// Client-only test statuses are never touched; unseen ids get a default entry.
func (c *StatusCache) Hydrate(state map[int64]models.VariantStateView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, view := range state {
		s, ok := c.statuses[id]
		if !ok {
			s = models.NewClientVariantStatus(id, now)
		}
		s.HumanVerified = view.HumanVerified
		s.ManualIncorrect = view.ManualIncorrect
		// An unsent local edit is newer than the server's notes
		if _, editing := c.pending[id]; !editing {
			s.Notes = copyString(view.Notes)
		}
		c.statuses[id] = s
	}

	c.saveLocked()
	log.Printf("🔄 Hydrated %d variants from the server", len(state))
}

// UpdateStatus records a manual test result. notes, when non-nil, replaces the local notes.
// Test statuses are client-only and never sent to the server.
func (c *StatusCache) UpdateStatus(variantID int64, platform models.Platform, status models.TestStatus, notes *string) error {
	if !platform.Valid() {
		return models.NewValidationError("platform", "unknown platform %q", platform)
	}
	if !status.Valid() {
		return models.NewValidationError("status", "unknown test status %q", status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.entryLocked(variantID)
	if platform == models.PlatformIOS {
		s.IOSStatus = status
	} else {
		s.AndroidStatus = status
	}
	if notes != nil {
		s.Notes = copyString(notes)
	}
	c.putLocked(s)
	return nil
}

// UpdateAutoStatus records the result of an automatic asset check (client-only)
func (c *StatusCache) UpdateAutoStatus(variantID int64, platform models.Platform, status models.AutoTestStatus) error {
	if !platform.Valid() {
		return models.NewValidationError("platform", "unknown platform %q", platform)
	}
	if !status.Valid() {
		return models.NewValidationError("status", "unknown auto-test status %q", status)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.entryLocked(variantID)
	st := status
	if platform == models.PlatformIOS {
		s.IOSAutoStatus = &st
	} else {
		s.AndroidAutoStatus = &st
	}
	c.putLocked(s)
	return nil
}

// UpdateHumanVerified sets the verified flag. Verifying clears manualIncorrect.
// The change is visible immediately; the server write happens in the background.
func (c *StatusCache) UpdateHumanVerified(variantID int64, verified bool) {
	c.mu.Lock()
	s := c.entryLocked(variantID)
	s.HumanVerified = verified
	if verified {
		s.ManualIncorrect = false
	}
	c.putLocked(s)
	req := flagsRequest(s)
	c.mu.Unlock()

	c.persist("humanVerified", req)
}

// UpdateManualIncorrect sets the incorrect flag. Flagging clears humanVerified.
func (c *StatusCache) UpdateManualIncorrect(variantID int64, incorrect bool) {
	c.mu.Lock()
	s := c.entryLocked(variantID)
	s.ManualIncorrect = incorrect
	if incorrect {
		s.HumanVerified = false
	}
	c.putLocked(s)
	req := flagsRequest(s)
	c.mu.Unlock()

	c.persist("manualIncorrect", req)
}

// UpdateNotes replaces the notes locally at once. The server write is debounced per
// variant: every edit restarts the timer, and the write carries the last edit.
// Hydrate leaves the notes of a variant with a scheduled write alone.
func (c *StatusCache) UpdateNotes(variantID int64, notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.entryLocked(variantID)
	if notes == "" {
		s.Notes = nil
	} else {
		n := notes
		s.Notes = &n
	}
	c.putLocked(s)

	if prev, ok := c.pending[variantID]; ok {
		if prev.timer.Stop() {
			c.doneLocked()
		}
		delete(c.pending, variantID)
	}

	p := &pendingNotes{notes: notes}
	c.inflight++
	p.timer = time.AfterFunc(c.notesDebounce, func() { c.flushNotes(variantID, p) })
	c.pending[variantID] = p
}

func (c *StatusCache) flushNotes(variantID int64, p *pendingNotes) {
	c.mu.Lock()
	if c.pending[variantID] == p {
		delete(c.pending, variantID)
	}
	notes := p.notes
	c.mu.Unlock()

	defer c.done()
	c.write("notes", models.VariantUpdateRequest{VariantID: &variantID, Notes: &notes})
}

// ClearAll forgets every status, locally and in the persistent cache.
// Scheduled notes writes are cancelled; writes already in flight complete.
func (c *StatusCache) ClearAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, p := range c.pending {
		if p.timer.Stop() {
			c.doneLocked()
		}
		delete(c.pending, id)
	}
	c.statuses = make(map[int64]models.ClientVariantStatus)

	if err := c.store.Clear(context.Background()); err != nil {
		log.Printf("❌ Error clearing status cache: %v", err)
		return fmt.Errorf("failed to clear status cache: %w", err)
	}
	log.Printf("🗑️  Status cache cleared")
	return nil
}

// Wait blocks until scheduled notes writes have fired and every background write finished.
// Updates may keep arriving while it waits; it returns the first time nothing is pending.
func (c *StatusCache) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.inflight > 0 {
		c.idle.Wait()
	}
}

// persist sends req in the background
func (c *StatusCache) persist(op string, req models.VariantUpdateRequest) {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()

	go func() {
		defer c.done()
		c.write(op, req)
	}()
}

func (c *StatusCache) done() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.doneLocked()
}

func (c *StatusCache) doneLocked() {
	c.inflight--
	if c.inflight == 0 {
		c.idle.Broadcast()
	}
}

// write sends req with a bounded retry. Validation failures are not retried.
func (c *StatusCache) write(op string, req models.VariantUpdateRequest) {
	if c.writer == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.writeTimeout)
	defer cancel()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.writeInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.writer.UpdateVariant(ctx, req)
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.Permanent() {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(c.writeAttempts))
	if err != nil {
		log.Printf("❌ Persist %s for variant %d failed, keeping local value: %v", op, *req.VariantID, err)
		return
	}
	log.Printf("✅ Persisted %s for variant %d", op, *req.VariantID)
}

// entryLocked returns the status of a variant, or a fresh default one
func (c *StatusCache) entryLocked(variantID int64) models.ClientVariantStatus {
	if s, ok := c.statuses[variantID]; ok {
		return s
	}
	return models.NewClientVariantStatus(variantID, c.now())
}

func (c *StatusCache) putLocked(s models.ClientVariantStatus) {
	s.LastUpdated = c.now()
	c.statuses[s.VariantID] = s
	c.saveLocked()
}

func (c *StatusCache) saveLocked() {
	if err := c.store.Save(context.Background(), c.statuses); err != nil {
		log.Printf("⚠️  Could not save status cache: %v", err)
	}
}

// flagsRequest carries both flags so the server ends in the same state as the cache
func flagsRequest(s models.ClientVariantStatus) models.VariantUpdateRequest {
	id := s.VariantID
	verified := s.HumanVerified
	incorrect := s.ManualIncorrect
	return models.VariantUpdateRequest{VariantID: &id, HumanVerified: &verified, ManualIncorrect: &incorrect}
}

func cloneStatus(s models.ClientVariantStatus) models.ClientVariantStatus {
	out := s
	out.Notes = copyString(s.Notes)
	if s.IOSAutoStatus != nil {
		v := *s.IOSAutoStatus
		out.IOSAutoStatus = &v
	}
	if s.AndroidAutoStatus != nil {
		v := *s.AndroidAutoStatus
		out.AndroidAutoStatus = &v
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
