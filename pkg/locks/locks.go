package locks

import (
	"errors"
	"fmt"
	"time"

	"github.com/agentdocs/agentdocs/pkg/storage"
	"github.com/agentdocs/agentdocs/pkg/types"
)

const (
	// DefaultTTL applies when an acquire or renew request does not name one.
	DefaultTTL = 60 * time.Second
	// MaxTTL caps a requested lease so a crashed editor cannot park a
	// document behind a day-long lock.
	MaxTTL = time.Hour
)

// ErrNoLease is returned by Renew when the document has no live lease to
// extend. The editor should re-acquire instead.
var ErrNoLease = errors.New("no active lock to renew")

// ConflictError reports a lease held by a different editor.
type ConflictError struct {
	Holder    string
	ExpiresAt time.Time
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("document locked by %q until %s", e.Holder, e.ExpiresAt.Format(time.RFC3339))
}

// Manager implements advisory edit leases on top of document storage. Leases
// signal intent only: document updates are never blocked by someone else's
// lock. All decisions happen inside the store's write transaction, so two
// racing acquires cannot both win.
type Manager struct {
	store storage.Store
	now   func() time.Time
}

// NewManager creates a lock manager backed by store.
func NewManager(store storage.Store) *Manager {
	return &Manager{store: store, now: time.Now}
}

func clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return DefaultTTL
	}
	if ttl > MaxTTL {
		return MaxTTL
	}
	return ttl
}

// Acquire takes the edit lease on a document for editor. A free document, an
// expired lease, or the editor's own live lease all succeed; the last case
// re-acquires with a fresh expiry. A live lease held by someone else fails
// with *ConflictError.
func (m *Manager) Acquire(docID, editor string, ttl time.Duration) (*types.Document, error) {
	ttl = clampTTL(ttl)
	return m.store.UpdateDocumentLock(docID, func(doc *types.Document) error {
		now := m.now()
		if holder := doc.LockedLiveBy(now); holder != "" && holder != editor {
			return &ConflictError{Holder: holder, ExpiresAt: *doc.LockExpiresAt}
		}
		doc.SetLock(editor, now, now.Add(ttl))
		return nil
	})
}

// Renew extends the editor's live lease. Renewing an expired or absent lease
// fails with ErrNoLease; renewing someone else's lease fails with
// *ConflictError.
func (m *Manager) Renew(docID, editor string, ttl time.Duration) (*types.Document, error) {
	ttl = clampTTL(ttl)
	return m.store.UpdateDocumentLock(docID, func(doc *types.Document) error {
		now := m.now()
		holder := doc.LockedLiveBy(now)
		if holder == "" {
			return ErrNoLease
		}
		if holder != editor {
			return &ConflictError{Holder: holder, ExpiresAt: *doc.LockExpiresAt}
		}
		expires := now.Add(ttl)
		doc.LockExpiresAt = &expires
		return nil
	})
}

// Release drops the editor's lease. Releasing an unlocked document is a
// no-op, and the editor may clear their own lease even after it expired.
// Releasing a live lease held by someone else fails with *ConflictError.
func (m *Manager) Release(docID, editor string) (*types.Document, error) {
	return m.store.UpdateDocumentLock(docID, func(doc *types.Document) error {
		if doc.LockedBy == nil {
			return nil
		}
		now := m.now()
		if holder := doc.LockedLiveBy(now); holder != "" && holder != editor {
			return &ConflictError{Holder: holder, ExpiresAt: *doc.LockExpiresAt}
		}
		if *doc.LockedBy != editor {
			// Someone else's lease, but already expired: leave it for
			// the next acquire to overwrite.
			return nil
		}
		doc.ClearLock()
		return nil
	})
}
