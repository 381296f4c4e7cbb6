package types

import (
	"time"
)

// DocumentStatus defines the publication state of a document
type DocumentStatus string

const (
	StatusDraft     DocumentStatus = "draft"
	StatusPublished DocumentStatus = "published"
	StatusArchived  DocumentStatus = "archived"
)

// Valid reports whether the status is one of the known states
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Workspace is the tenant boundary: a named collection of documents guarded
// by a single manage key. Only the hash of the key is ever stored.
type Workspace struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ManageKeyHash string    `json:"-"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Document is a Markdown document within a workspace. ContentHTML and
// WordCount are derived from Content and updated in the same mutation.
// The three lock fields are either all set (live lease) or all nil.
type Document struct {
	ID            string         `json:"id"`
	WorkspaceID   string         `json:"workspace_id"`
	Title         string         `json:"title"`
	Slug          string         `json:"slug"`
	Content       string         `json:"content"`
	ContentHTML   string         `json:"content_html"`
	Summary       string         `json:"summary"`
	Tags          []string       `json:"tags"`
	Status        DocumentStatus `json:"status"`
	AuthorName    string         `json:"author_name"`
	WordCount     int            `json:"word_count"`
	LockedBy      *string        `json:"locked_by"`
	LockedAt      *time.Time     `json:"locked_at"`
	LockExpiresAt *time.Time     `json:"lock_expires_at"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// LockedLiveBy returns the current holder of the edit lease, or "" if the
// document is unlocked or the lease has expired.
func (d *Document) LockedLiveBy(now time.Time) string {
	if d.LockedBy == nil || d.LockExpiresAt == nil {
		return ""
	}
	if now.After(*d.LockExpiresAt) {
		return ""
	}
	return *d.LockedBy
}

// ClearLock unsets the lock triple.
func (d *Document) ClearLock() {
	d.LockedBy = nil
	d.LockedAt = nil
	d.LockExpiresAt = nil
}

// SetLock sets the lock triple to a lease held by editor until expires.
func (d *Document) SetLock(editor string, at, expires time.Time) {
	d.LockedBy = &editor
	d.LockedAt = &at
	d.LockExpiresAt = &expires
}

// DocumentVersion is an immutable snapshot of a document's content. Version 1
// is created with the document; every content-changing update appends one
// more, capturing the post-update state.
type DocumentVersion struct {
	ID                string    `json:"id"`
	DocumentID        string    `json:"document_id"`
	VersionNumber     int       `json:"version_number"`
	Content           string    `json:"content"`
	ContentHTML       string    `json:"content_html"`
	Summary           string    `json:"summary"`
	AuthorName        string    `json:"author_name"`
	ChangeDescription string    `json:"change_description"`
	WordCount         int       `json:"word_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// Comment is a threaded note on a document. ParentID points at another
// comment on the same document; deleting a comment removes its whole reply
// subtree.
type Comment struct {
	ID         string    `json:"id"`
	DocumentID string    `json:"document_id"`
	ParentID   *string   `json:"parent_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	Resolved   bool      `json:"resolved"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
