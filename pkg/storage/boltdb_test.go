package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentdocs/agentdocs/pkg/auth"
	"github.com/agentdocs/agentdocs/pkg/types"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "agentdocs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func mustWorkspace(t *testing.T, store *BoltStore) *types.Workspace {
	t.Helper()
	ws, _, err := store.CreateWorkspace("test workspace", "", false)
	require.NoError(t, err)
	return ws
}

func mustDocument(t *testing.T, store *BoltStore, wsID, title string) *types.Document {
	t.Helper()
	doc, err := store.CreateDocument(CreateDocumentParams{
		WorkspaceID: wsID,
		Title:       title,
		Content:     "# " + title + "\n\nBody text.",
		AuthorName:  "agent-a",
	})
	require.NoError(t, err)
	return doc
}

func strp(s string) *string { return &s }

func TestCreateWorkspace(t *testing.T) {
	store := newTestStore(t)

	ws, key, err := store.CreateWorkspace("  research  ", "shared notes", true)
	require.NoError(t, err)

	assert.Len(t, ws.ID, 32)
	assert.Equal(t, "research", ws.Name)
	assert.Equal(t, "shared notes", ws.Description)
	assert.True(t, ws.IsPublic)
	assert.True(t, strings.HasPrefix(key, "adoc_"))
	assert.True(t, auth.VerifyKey(key, ws.ManageKeyHash))
	assert.False(t, auth.VerifyKey("adoc_wrong", ws.ManageKeyHash))

	// The hash must survive the round trip through the store even though
	// the API type never serializes it.
	got, err := store.GetWorkspace(ws.ID)
	require.NoError(t, err)
	assert.Equal(t, ws.Name, got.Name)
	require.NotEmpty(t, got.ManageKeyHash)
	assert.True(t, auth.VerifyKey(key, got.ManageKeyHash))
}

func TestCreateWorkspaceRequiresName(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.CreateWorkspace("   ", "", false)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestGetWorkspaceNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetWorkspace("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateWorkspace(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	public := true
	got, err := store.UpdateWorkspace(ws.ID, WorkspacePatch{
		Name:     strp("renamed"),
		IsPublic: &public,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
	assert.True(t, got.IsPublic)
	assert.Equal(t, ws.Description, got.Description)

	_, err = store.UpdateWorkspace(ws.ID, WorkspacePatch{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateWorkspace(ws.ID, WorkspacePatch{Name: strp("  ")})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateWorkspace("missing", WorkspacePatch{Name: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPublicWorkspaces(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.CreateWorkspace("private", "", false)
	require.NoError(t, err)
	pub, _, err := store.CreateWorkspace("public", "", true)
	require.NoError(t, err)

	list, err := store.ListPublicWorkspaces()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)
}

func TestCreateDocument(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	doc, err := store.CreateDocument(CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Getting Started",
		Content:     "# Hello\n\nOne two three.",
		Summary:     "intro",
		Tags:        []string{" Guide ", "", "ONBOARDING"},
		AuthorName:  "agent-a",
	})
	require.NoError(t, err)

	assert.Equal(t, "getting-started", doc.Slug)
	assert.Equal(t, types.StatusDraft, doc.Status)
	assert.Contains(t, doc.ContentHTML, "<h1")
	assert.Equal(t, 5, doc.WordCount)
	assert.Equal(t, []string{"guide", "onboarding"}, doc.Tags)
	assert.Nil(t, doc.LockedBy)

	// Version 1 snapshot is created with the document.
	versions, err := store.ListVersions(doc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, doc.Content, versions[0].Content)
	assert.Equal(t, "Initial version", versions[0].ChangeDescription)
	assert.Equal(t, "agent-a", versions[0].AuthorName)
}

func TestCreateDocumentValidation(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	_, err := store.CreateDocument(CreateDocumentParams{WorkspaceID: ws.ID, Title: "  "})
	assert.ErrorIs(t, err, ErrInvalid)

	bad := types.DocumentStatus("live")
	_, err = store.CreateDocument(CreateDocumentParams{WorkspaceID: ws.ID, Title: "x", Status: bad})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.CreateDocument(CreateDocumentParams{WorkspaceID: "missing", Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSlugCollisionSuffixing(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	d1 := mustDocument(t, store, ws.ID, "My Notes")
	d2 := mustDocument(t, store, ws.ID, "My Notes")
	d3 := mustDocument(t, store, ws.ID, "My Notes")

	assert.Equal(t, "my-notes", d1.Slug)
	assert.Equal(t, "my-notes-2", d2.Slug)
	assert.Equal(t, "my-notes-3", d3.Slug)

	// The same slug is free in another workspace.
	ws2 := mustWorkspace(t, store)
	d4 := mustDocument(t, store, ws2.ID, "My Notes")
	assert.Equal(t, "my-notes", d4.Slug)
}

func TestExplicitSlugConflict(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	mustDocument(t, store, ws.ID, "My Notes")

	_, err := store.CreateDocument(CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Other",
		Slug:        "my-notes",
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSlugFallbackForUnsluggableTitle(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	doc := mustDocument(t, store, ws.ID, "!!!")
	assert.True(t, strings.HasPrefix(doc.Slug, "doc-"))
	assert.Len(t, doc.Slug, len("doc-")+8)
}

func TestGetDocumentBySlug(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	got, err := store.GetDocumentBySlug(ws.ID, "my-notes")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)

	_, err = store.GetDocumentBySlug(ws.ID, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateDocumentContentCreatesVersion(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	got, err := store.UpdateDocument(doc.ID, DocumentPatch{
		Content:           strp("# Revised\n\nNew body."),
		AuthorName:        "agent-b",
		ChangeDescription: "rewrote everything",
	})
	require.NoError(t, err)
	assert.Contains(t, got.ContentHTML, "Revised")
	assert.Equal(t, 4, got.WordCount)

	versions, err := store.ListVersions(doc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, versions, 2)

	// Newest first; snapshot captures the post-update state.
	head := versions[0]
	assert.Equal(t, 2, head.VersionNumber)
	assert.Equal(t, "# Revised\n\nNew body.", head.Content)
	assert.Equal(t, "agent-b", head.AuthorName)
	assert.Equal(t, "rewrote everything", head.ChangeDescription)
}

func TestUpdateDocumentTitleOnlyNoVersion(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	got, err := store.UpdateDocument(doc.ID, DocumentPatch{Title: strp("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	// Slug never changes after creation.
	assert.Equal(t, "my-notes", got.Slug)

	versions, err := store.ListVersions(doc.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestUpdateDocumentValidation(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	_, err := store.UpdateDocument(doc.ID, DocumentPatch{})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateDocument(doc.ID, DocumentPatch{Title: strp(" ")})
	assert.ErrorIs(t, err, ErrInvalid)

	bad := types.DocumentStatus("live")
	_, err = store.UpdateDocument(doc.ID, DocumentPatch{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateDocument("missing", DocumentPatch{Title: strp("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDocumentsFiltersDrafts(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	draft := mustDocument(t, store, ws.ID, "Draft Doc")
	pub, err := store.CreateDocument(CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Published Doc",
		Status:      types.StatusPublished,
	})
	require.NoError(t, err)

	list, err := store.ListDocuments(ws.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, pub.ID, list[0].ID)

	list, err = store.ListDocuments(ws.ID, true)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// Most recently updated first.
	_, err = store.UpdateDocument(draft.ID, DocumentPatch{Title: strp("Bumped")})
	require.NoError(t, err)
	list, err = store.ListDocuments(ws.ID, true)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, list[0].ID)
}

func TestSearchDocuments(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)

	_, err := store.CreateDocument(CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Deployment Guide",
		Content:     "How to ship the service.",
		Tags:        []string{"ops"},
	})
	require.NoError(t, err)
	_, err = store.CreateDocument(CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Meeting Notes",
		Content:     "Discussed the roadmap.",
	})
	require.NoError(t, err)

	tests := []struct {
		query string
		want  int
	}{
		{"DEPLOYMENT", 1}, // case-insensitive title match
		{"roadmap", 1},    // content match
		{"ops", 1},        // tag match
		{"e", 2},          // substring present in both
		{"zebra", 0},
		{"   ", 0}, // blank query matches nothing
	}
	for _, tt := range tests {
		got, err := store.SearchDocuments(ws.ID, tt.query)
		require.NoError(t, err)
		assert.Len(t, got, tt.want, "query %q", tt.query)
	}

	// Other workspaces are invisible.
	ws2 := mustWorkspace(t, store)
	got, err := store.SearchDocuments(ws2.ID, "deployment")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDeleteDocumentCascades(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	_, err := store.UpdateDocument(doc.ID, DocumentPatch{Content: strp("v2")})
	require.NoError(t, err)
	_, err = store.CreateComment(doc.ID, nil, "agent-a", "nice")
	require.NoError(t, err)

	require.NoError(t, store.DeleteDocument(doc.ID))

	_, err = store.GetDocumentByID(doc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.ListVersions(doc.ID, 0, 0)
	assert.ErrorIs(t, err, ErrNotFound)

	// The slug is free again.
	fresh := mustDocument(t, store, ws.ID, "My Notes")
	assert.Equal(t, "my-notes", fresh.Slug)

	assert.ErrorIs(t, store.DeleteDocument(doc.ID), ErrNotFound)
}

func TestListVersionsPagination(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	for i := 2; i <= 5; i++ {
		_, err := store.UpdateDocument(doc.ID, DocumentPatch{
			Content: strp(fmt.Sprintf("revision %d", i)),
		})
		require.NoError(t, err)
	}

	all, err := store.ListVersions(doc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, 5, all[0].VersionNumber)
	assert.Equal(t, 1, all[4].VersionNumber)

	page, err := store.ListVersions(doc.ID, 2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, 4, page[0].VersionNumber)
	assert.Equal(t, 3, page[1].VersionNumber)

	empty, err := store.ListVersions(doc.ID, 10, 99)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestGetVersion(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	ver, err := store.GetVersion(doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, ver.Content)

	_, err = store.GetVersion(doc.ID, 99)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.GetVersion("missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestoreVersion(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")
	original := doc.Content

	_, err := store.UpdateDocument(doc.ID, DocumentPatch{Content: strp("ruined")})
	require.NoError(t, err)

	restored, err := store.RestoreVersion(doc.ID, 1, "agent-c")
	require.NoError(t, err)
	assert.Equal(t, original, restored.Content)

	versions, err := store.ListVersions(doc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, "Restored from version 1", versions[0].ChangeDescription)
	assert.Equal(t, "agent-c", versions[0].AuthorName)

	// The restored-from snapshot is untouched.
	v1, err := store.GetVersion(doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, "Initial version", v1.ChangeDescription)

	_, err = store.RestoreVersion(doc.ID, 42, "agent-c")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestComments(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	root, err := store.CreateComment(doc.ID, nil, "agent-a", "looks wrong")
	require.NoError(t, err)
	reply, err := store.CreateComment(doc.ID, &root.ID, "agent-b", "fixed now")
	require.NoError(t, err)
	assert.Equal(t, root.ID, *reply.ParentID)

	list, err := store.ListComments(doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, root.ID, list[0].ID, "oldest first")

	resolved := true
	updated, err := store.UpdateComment(root.ID, CommentPatch{Resolved: &resolved})
	require.NoError(t, err)
	assert.True(t, updated.Resolved)
	assert.Equal(t, "looks wrong", updated.Content)
	assert.True(t, updated.UpdatedAt.After(root.UpdatedAt) || updated.UpdatedAt.Equal(root.UpdatedAt))
}

func TestCommentValidation(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")
	other := mustDocument(t, store, ws.ID, "Other Doc")

	_, err := store.CreateComment(doc.ID, nil, "", "text")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = store.CreateComment(doc.ID, nil, "agent-a", "  ")
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = store.CreateComment("missing", nil, "agent-a", "text")
	assert.ErrorIs(t, err, ErrNotFound)

	ghost := "nope"
	_, err = store.CreateComment(doc.ID, &ghost, "agent-a", "text")
	assert.ErrorIs(t, err, ErrNotFound)

	// Parent must live on the same document.
	foreign, err := store.CreateComment(other.ID, nil, "agent-a", "elsewhere")
	require.NoError(t, err)
	_, err = store.CreateComment(doc.ID, &foreign.ID, "agent-a", "text")
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = store.UpdateComment("missing", CommentPatch{Resolved: new(bool)})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.UpdateComment(foreign.ID, CommentPatch{})
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestDeleteCommentRemovesSubtree(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	root, err := store.CreateComment(doc.ID, nil, "agent-a", "root")
	require.NoError(t, err)
	child, err := store.CreateComment(doc.ID, &root.ID, "agent-b", "child")
	require.NoError(t, err)
	_, err = store.CreateComment(doc.ID, &child.ID, "agent-c", "grandchild")
	require.NoError(t, err)
	sibling, err := store.CreateComment(doc.ID, nil, "agent-d", "unrelated")
	require.NoError(t, err)

	require.NoError(t, store.DeleteComment(root.ID))

	list, err := store.ListComments(doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sibling.ID, list[0].ID)

	assert.ErrorIs(t, store.DeleteComment(root.ID), ErrNotFound)
}

func TestExpiredLockMaskedOnRead(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	_, err := store.UpdateDocumentLock(doc.ID, func(d *types.Document) error {
		d.SetLock("agent-a", time.Now().Add(-2*time.Minute), time.Now().Add(-time.Minute))
		return nil
	})
	require.NoError(t, err)

	got, err := store.GetDocumentByID(doc.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LockedBy)
	assert.Nil(t, got.LockExpiresAt)

	// A live lease is visible.
	_, err = store.UpdateDocumentLock(doc.ID, func(d *types.Document) error {
		d.SetLock("agent-b", time.Now(), time.Now().Add(time.Minute))
		return nil
	})
	require.NoError(t, err)
	got, err = store.GetDocumentByID(doc.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LockedBy)
	assert.Equal(t, "agent-b", *got.LockedBy)
}

func TestUpdateDocumentLockErrors(t *testing.T) {
	store := newTestStore(t)
	ws := mustWorkspace(t, store)
	doc := mustDocument(t, store, ws.ID, "My Notes")

	_, err := store.UpdateDocumentLock("missing", func(d *types.Document) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	boom := fmt.Errorf("%w: held by someone else", ErrConflict)
	_, err = store.UpdateDocumentLock(doc.ID, func(d *types.Document) error { return boom })
	assert.ErrorIs(t, err, ErrConflict)
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agentdocs.db")

	store, err := NewBoltStore(path)
	require.NoError(t, err)
	ws, key, err := store.CreateWorkspace("durable", "", false)
	require.NoError(t, err)
	doc := mustDocument(t, store, ws.ID, "Kept")
	require.NoError(t, store.Close())

	store, err = NewBoltStore(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.GetDocumentByID(doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kept", got.Title)

	// The key hash survives a process restart, so the manage key issued at
	// creation keeps working.
	reopened, err := store.GetWorkspace(ws.ID)
	require.NoError(t, err)
	assert.True(t, auth.VerifyKey(key, reopened.ManageKeyHash))
}
