/*
Package storage provides BoltDB-backed persistence for Agent Docs state.

The storage package implements the Store interface using BoltDB as the
underlying database, providing ACID transactions for workspaces, documents,
version history, and comment threads. All data is serialized as JSON and
stored in separate buckets.

# Architecture

	┌──────────────────── BOLTDB STORAGE ──────────────────────┐
	│                                                           │
	│  ┌────────────────────────────────────────────┐           │
	│  │            BoltStore                       │           │
	│  │  - File: DATABASE_PATH (single file)       │           │
	│  │  - Transactions: ACID with fsync           │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │              Bucket Structure              │           │
	│  │  ┌─────────────────────────────────────┐   │           │
	│  │  │ workspaces  (workspace ID)          │   │           │
	│  │  │ documents   (document ID)           │   │           │
	│  │  │ versions    (docID/00000001)        │   │           │
	│  │  │ comments    (comment ID)            │   │           │
	│  │  │ slugs       (wsID/slug → docID)     │   │           │
	│  │  └─────────────────────────────────────┘   │           │
	│  └──────────────────┬─────────────────────────┘           │
	│                     │                                     │
	│  ┌──────────────────▼─────────────────────────┐           │
	│  │        Transaction Management              │           │
	│  │  - Read: db.View() - concurrent reads      │           │
	│  │  - Write: db.Update() - serialized writes  │           │
	│  │  - Rollback: automatic on error            │           │
	│  └────────────────────────────────────────────┘           │
	└───────────────────────────────────────────────────────────┘

# Bucket Layout

  - workspaces: workspace metadata, keyed by ID. The manage key hash lives
    here; it never leaves the struct via JSON responses.
  - documents: current document state, keyed by ID, lock fields included.
  - versions: immutable snapshots, keyed by "docID/NNNNNNNN" with the
    version number zero-padded so a cursor prefix scan walks them in order.
  - comments: threaded comments, keyed by ID; per-document listing is a
    filtered scan.
  - slugs: "workspaceID/slug" → document ID index enforcing per-workspace
    slug uniqueness inside the write transaction that creates the document.

# Invariants Enforced Here

  - Document creation, its slug index entry, and the version-1 snapshot
    commit in a single transaction.
  - A content-changing update and its version snapshot commit together, so
    version numbers are dense with no gaps.
  - Document deletion cascades to its versions, comments, and slug entry.
  - Comment deletion removes the entire reply subtree.
  - Expired edit leases are masked (reported as unlocked) on every read
    path, but the stored row is only overwritten by the next acquire.

# Usage

	store, err := storage.NewBoltStore("/var/lib/agentdocs/agentdocs.db")
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ws, manageKey, err := store.CreateWorkspace("research", "shared notes", false)

	doc, err := store.CreateDocument(storage.CreateDocumentParams{
		WorkspaceID: ws.ID,
		Title:       "Getting Started",
		Content:     "# Hello\n\nFirst document.",
		AuthorName:  "agent-a",
	})

	content := "# Hello\n\nRevised."
	doc, err = store.UpdateDocument(doc.ID, storage.DocumentPatch{
		Content:           &content,
		AuthorName:        "agent-b",
		ChangeDescription: "tightened the intro",
	})

# See Also

  - pkg/types for all entity definitions
  - pkg/locks for the lease semantics layered on UpdateDocumentLock
  - BoltDB documentation: https://github.com/etcd-io/bbolt
*/
package storage
