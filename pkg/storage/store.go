package storage

import (
	"github.com/agentdocs/agentdocs/pkg/types"
)

// WorkspacePatch holds the mutable workspace fields; nil means unchanged.
type WorkspacePatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// CreateDocumentParams carries the inputs for a new document. Slug is
// optional: when set it is used verbatim and a collision is a conflict;
// when empty the slug is derived from the title and suffixed until unique.
type CreateDocumentParams struct {
	WorkspaceID string
	Title       string
	Slug        string
	Content     string
	Summary     string
	Tags        []string
	Status      types.DocumentStatus
	AuthorName  string
}

// DocumentPatch holds the mutable document fields; nil means unchanged.
// A non-nil Content triggers re-rendering, word-count recomputation, and a
// new version snapshot. AuthorName and ChangeDescription annotate that
// snapshot.
type DocumentPatch struct {
	Title             *string
	Content           *string
	Summary           *string
	Tags              []string
	Status            *types.DocumentStatus
	AuthorName        string
	ChangeDescription string
}

// CommentPatch holds the mutable comment fields; nil means unchanged.
type CommentPatch struct {
	Content  *string
	Resolved *bool
}

// Stats summarizes entity counts for monitoring.
type Stats struct {
	Workspaces int
	Documents  int
	Versions   int
	Comments   int
}

// Store defines the persistence interface for Agent Docs state. Every
// multi-step operation is atomic: it either fully commits or leaves state
// untouched.
type Store interface {
	// Workspaces
	CreateWorkspace(name, description string, isPublic bool) (*types.Workspace, string, error)
	GetWorkspace(id string) (*types.Workspace, error)
	ListPublicWorkspaces() ([]*types.Workspace, error)
	UpdateWorkspace(id string, patch WorkspacePatch) (*types.Workspace, error)

	// Documents
	CreateDocument(p CreateDocumentParams) (*types.Document, error)
	GetDocumentByID(id string) (*types.Document, error)
	GetDocumentBySlug(workspaceID, slug string) (*types.Document, error)
	ListDocuments(workspaceID string, includeDrafts bool) ([]*types.Document, error)
	UpdateDocument(docID string, patch DocumentPatch) (*types.Document, error)
	DeleteDocument(docID string) error
	SearchDocuments(workspaceID, query string) ([]*types.Document, error)

	// Versions
	ListVersions(docID string, limit, offset int) ([]*types.DocumentVersion, error)
	GetVersion(docID string, number int) (*types.DocumentVersion, error)
	RestoreVersion(docID string, number int, author string) (*types.Document, error)

	// Comments
	CreateComment(docID string, parentID *string, author, content string) (*types.Comment, error)
	GetComment(id string) (*types.Comment, error)
	ListComments(docID string) ([]*types.Comment, error)
	UpdateComment(id string, patch CommentPatch) (*types.Comment, error)
	DeleteComment(id string) error

	// Locks. UpdateDocumentLock runs fn against the current document state
	// inside the write transaction; the (possibly mutated) document is
	// persisted when fn returns nil.
	UpdateDocumentLock(docID string, fn func(doc *types.Document) error) (*types.Document, error)

	// Stats returns entity counts for the metrics collector.
	Stats() (Stats, error)

	Close() error
}
