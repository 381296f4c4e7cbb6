package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/agentdocs/agentdocs/pkg/auth"
	"github.com/agentdocs/agentdocs/pkg/markdown"
	"github.com/agentdocs/agentdocs/pkg/types"
)

var (
	// Bucket names
	bucketWorkspaces = []byte("workspaces")
	bucketDocuments  = []byte("documents")
	bucketVersions   = []byte("versions")
	bucketComments   = []byte("comments")
	bucketSlugs      = []byte("slugs")
)

// BoltStore implements Store using a single bbolt file. bbolt serializes all
// writers on one transaction, which gives every multi-step operation below
// its atomicity for free.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database file at path and ensures the
// bucket layout exists. Bucket creation is idempotent, so reopening an
// existing file is safe.
func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := [][]byte{
			bucketWorkspaces,
			bucketDocuments,
			bucketVersions,
			bucketComments,
			bucketSlugs,
		}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// newID returns a fresh opaque identifier: a UUID rendered as 32 hex chars.
func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

func putJSON(b *bolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put([]byte(key), data)
}

func slugKey(workspaceID, slug string) []byte {
	return []byte(workspaceID + "/" + slug)
}

func versionKey(docID string, number int) []byte {
	return []byte(fmt.Sprintf("%s/%08d", docID, number))
}

func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// maskExpiredLock hides a lapsed lease from readers. The row itself is left
// untouched; the next acquire overwrites it.
func maskExpiredLock(doc *types.Document) *types.Document {
	if doc.LockExpiresAt != nil && time.Now().After(*doc.LockExpiresAt) {
		doc.ClearLock()
	}
	return doc
}

// --- Workspace operations ---

// workspaceRecord is the bbolt row for a workspace. The API type excludes
// ManageKeyHash from JSON so the hash can never appear in a response; the
// row needs its own shape so the hash is still persisted.
type workspaceRecord struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	ManageKeyHash string    `json:"manage_key_hash"`
	IsPublic      bool      `json:"is_public"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func newWorkspaceRecord(ws *types.Workspace) *workspaceRecord {
	return &workspaceRecord{
		ID:            ws.ID,
		Name:          ws.Name,
		Description:   ws.Description,
		ManageKeyHash: ws.ManageKeyHash,
		IsPublic:      ws.IsPublic,
		CreatedAt:     ws.CreatedAt,
		UpdatedAt:     ws.UpdatedAt,
	}
}

func (r *workspaceRecord) workspace() *types.Workspace {
	return &types.Workspace{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		ManageKeyHash: r.ManageKeyHash,
		IsPublic:      r.IsPublic,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func (s *BoltStore) CreateWorkspace(name, description string, isPublic bool) (*types.Workspace, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", ErrInvalid)
	}

	manageKey := auth.GenerateKey()
	keyHash, err := auth.HashKey(manageKey)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	ws := &types.Workspace{
		ID:            newID(),
		Name:          name,
		Description:   description,
		ManageKeyHash: keyHash,
		IsPublic:      isPublic,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketWorkspaces), ws.ID, newWorkspaceRecord(ws))
	})
	if err != nil {
		return nil, "", err
	}
	return ws, manageKey, nil
}

func (s *BoltStore) GetWorkspace(id string) (*types.Workspace, error) {
	var rec workspaceRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketWorkspaces).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: workspace %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.workspace(), nil
}

func (s *BoltStore) ListPublicWorkspaces() ([]*types.Workspace, error) {
	var workspaces []*types.Workspace
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketWorkspaces).ForEach(func(k, v []byte) error {
			var rec workspaceRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if rec.IsPublic {
				workspaces = append(workspaces, rec.workspace())
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(workspaces, func(i, j int) bool {
		return workspaces[i].CreatedAt.After(workspaces[j].CreatedAt)
	})
	return workspaces, nil
}

func (s *BoltStore) UpdateWorkspace(id string, patch WorkspacePatch) (*types.Workspace, error) {
	if patch.Name == nil && patch.Description == nil && patch.IsPublic == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalid)
	}

	var rec workspaceRecord
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketWorkspaces)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: workspace %s", ErrNotFound, id)
		}
		if err := json.Unmarshal(data, &rec); err != nil {
			return err
		}

		if patch.Name != nil {
			rec.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Description != nil {
			rec.Description = *patch.Description
		}
		if patch.IsPublic != nil {
			rec.IsPublic = *patch.IsPublic
		}
		rec.UpdatedAt = time.Now().UTC()

		return putJSON(b, rec.ID, &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.workspace(), nil
}

// --- Document operations ---

func (s *BoltStore) CreateDocument(p CreateDocumentParams) (*types.Document, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalid)
	}
	if p.Status == "" {
		p.Status = types.StatusDraft
	}
	if !p.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalid, p.Status)
	}

	now := time.Now().UTC()
	doc := &types.Document{
		ID:          newID(),
		WorkspaceID: p.WorkspaceID,
		Title:       p.Title,
		Content:     p.Content,
		ContentHTML: markdown.Render(p.Content),
		Summary:     p.Summary,
		Tags:        normalizeTags(p.Tags),
		Status:      p.Status,
		AuthorName:  p.AuthorName,
		WordCount:   markdown.WordCount(p.Content),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketWorkspaces).Get([]byte(p.WorkspaceID)) == nil {
			return fmt.Errorf("%w: workspace %s", ErrNotFound, p.WorkspaceID)
		}

		slugs := tx.Bucket(bucketSlugs)
		if p.Slug != "" {
			if slugs.Get(slugKey(p.WorkspaceID, p.Slug)) != nil {
				return fmt.Errorf("%w: slug %q already exists", ErrConflict, p.Slug)
			}
			doc.Slug = p.Slug
		} else {
			base := markdown.Slugify(p.Title)
			if base == "" {
				base = "doc-" + doc.ID[:8]
			}
			candidate := base
			for n := 2; slugs.Get(slugKey(p.WorkspaceID, candidate)) != nil; n++ {
				candidate = fmt.Sprintf("%s-%d", base, n)
			}
			doc.Slug = candidate
		}

		if err := putJSON(tx.Bucket(bucketDocuments), doc.ID, doc); err != nil {
			return err
		}
		if err := slugs.Put(slugKey(p.WorkspaceID, doc.Slug), []byte(doc.ID)); err != nil {
			return err
		}

		v1 := &types.DocumentVersion{
			ID:                newID(),
			DocumentID:        doc.ID,
			VersionNumber:     1,
			Content:           doc.Content,
			ContentHTML:       doc.ContentHTML,
			Summary:           doc.Summary,
			AuthorName:        doc.AuthorName,
			ChangeDescription: "Initial version",
			WordCount:         doc.WordCount,
			CreatedAt:         now,
		}
		return putJSON(tx.Bucket(bucketVersions), string(versionKey(doc.ID, 1)), v1)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func getDocument(tx *bolt.Tx, id string) (*types.Document, error) {
	data := tx.Bucket(bucketDocuments).Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("%w: document %s", ErrNotFound, id)
	}
	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *BoltStore) GetDocumentByID(id string) (*types.Document, error) {
	var doc *types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return maskExpiredLock(doc), nil
}

func (s *BoltStore) GetDocumentBySlug(workspaceID, slug string) (*types.Document, error) {
	var doc *types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		docID := tx.Bucket(bucketSlugs).Get(slugKey(workspaceID, slug))
		if docID == nil {
			return fmt.Errorf("%w: document %s/%s", ErrNotFound, workspaceID, slug)
		}
		var err error
		doc, err = getDocument(tx, string(docID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return maskExpiredLock(doc), nil
}

func (s *BoltStore) ListDocuments(workspaceID string, includeDrafts bool) ([]*types.Document, error) {
	var docs []*types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var doc types.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if doc.WorkspaceID != workspaceID {
				return nil
			}
			if !includeDrafts && doc.Status != types.StatusPublished {
				return nil
			}
			docs = append(docs, maskExpiredLock(&doc))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, nil
}

// applyDocumentPatch mutates doc in place and, when content changed, writes
// the next version snapshot capturing the post-update state. Runs inside the
// caller's write transaction.
func applyDocumentPatch(tx *bolt.Tx, doc *types.Document, patch DocumentPatch) error {
	if patch.Title == nil && patch.Content == nil && patch.Summary == nil &&
		patch.Tags == nil && patch.Status == nil {
		return fmt.Errorf("%w: no fields to update", ErrInvalid)
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return fmt.Errorf("%w: title cannot be empty", ErrInvalid)
		}
		// The slug is intentionally not regenerated: URLs stay stable
		// across renames.
		doc.Title = title
	}
	if patch.Summary != nil {
		doc.Summary = *patch.Summary
	}
	if patch.Tags != nil {
		doc.Tags = normalizeTags(patch.Tags)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return fmt.Errorf("%w: unknown status %q", ErrInvalid, *patch.Status)
		}
		doc.Status = *patch.Status
	}

	now := time.Now().UTC()
	if patch.Content != nil {
		doc.Content = *patch.Content
		doc.ContentHTML = markdown.Render(doc.Content)
		doc.WordCount = markdown.WordCount(doc.Content)

		next, err := nextVersionNumber(tx, doc.ID)
		if err != nil {
			return err
		}
		snapshot := &types.DocumentVersion{
			ID:                newID(),
			DocumentID:        doc.ID,
			VersionNumber:     next,
			Content:           doc.Content,
			ContentHTML:       doc.ContentHTML,
			Summary:           doc.Summary,
			AuthorName:        patch.AuthorName,
			ChangeDescription: patch.ChangeDescription,
			WordCount:         doc.WordCount,
			CreatedAt:         now,
		}
		if err := putJSON(tx.Bucket(bucketVersions), string(versionKey(doc.ID, next)), snapshot); err != nil {
			return err
		}
	}
	doc.UpdatedAt = now

	return putJSON(tx.Bucket(bucketDocuments), doc.ID, doc)
}

func nextVersionNumber(tx *bolt.Tx, docID string) (int, error) {
	prefix := []byte(docID + "/")
	c := tx.Bucket(bucketVersions).Cursor()

	max := 0
	for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		var ver types.DocumentVersion
		if err := json.Unmarshal(v, &ver); err != nil {
			return 0, err
		}
		if ver.VersionNumber > max {
			max = ver.VersionNumber
		}
	}
	return max + 1, nil
}

func (s *BoltStore) UpdateDocument(docID string, patch DocumentPatch) (*types.Document, error) {
	var doc *types.Document
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, docID)
		if err != nil {
			return err
		}
		return applyDocumentPatch(tx, doc, patch)
	})
	if err != nil {
		return nil, err
	}
	return maskExpiredLock(doc), nil
}

func (s *BoltStore) DeleteDocument(docID string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		doc, err := getDocument(tx, docID)
		if err != nil {
			return err
		}

		if err := tx.Bucket(bucketDocuments).Delete([]byte(docID)); err != nil {
			return err
		}
		if err := tx.Bucket(bucketSlugs).Delete(slugKey(doc.WorkspaceID, doc.Slug)); err != nil {
			return err
		}

		// Cascade versions.
		prefix := []byte(docID + "/")
		versions := tx.Bucket(bucketVersions)
		c := versions.Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			if err := versions.Delete(k); err != nil {
				return err
			}
		}

		// Cascade comments.
		comments := tx.Bucket(bucketComments)
		var stale [][]byte
		err = comments.ForEach(func(k, v []byte) error {
			var cm types.Comment
			if err := json.Unmarshal(v, &cm); err != nil {
				return err
			}
			if cm.DocumentID == docID {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := comments.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltStore) SearchDocuments(workspaceID, query string) ([]*types.Document, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []*types.Document{}, nil
	}

	var docs []*types.Document
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDocuments).ForEach(func(k, v []byte) error {
			var doc types.Document
			if err := json.Unmarshal(v, &doc); err != nil {
				return err
			}
			if doc.WorkspaceID != workspaceID {
				return nil
			}
			haystack := strings.ToLower(doc.Title + "\n" + doc.Content + "\n" +
				doc.Summary + "\n" + strings.Join(doc.Tags, " "))
			if strings.Contains(haystack, query) {
				docs = append(docs, maskExpiredLock(&doc))
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})
	return docs, nil
}

// --- Version operations ---

func (s *BoltStore) ListVersions(docID string, limit, offset int) ([]*types.DocumentVersion, error) {
	var versions []*types.DocumentVersion
	err := s.db.View(func(tx *bolt.Tx) error {
		if _, err := getDocument(tx, docID); err != nil {
			return err
		}
		prefix := []byte(docID + "/")
		c := tx.Bucket(bucketVersions).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var ver types.DocumentVersion
			if err := json.Unmarshal(v, &ver); err != nil {
				return err
			}
			versions = append(versions, &ver)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first.
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].VersionNumber > versions[j].VersionNumber
	})
	if offset > 0 {
		if offset >= len(versions) {
			return []*types.DocumentVersion{}, nil
		}
		versions = versions[offset:]
	}
	if limit > 0 && limit < len(versions) {
		versions = versions[:limit]
	}
	return versions, nil
}

func getVersion(tx *bolt.Tx, docID string, number int) (*types.DocumentVersion, error) {
	data := tx.Bucket(bucketVersions).Get(versionKey(docID, number))
	if data == nil {
		return nil, fmt.Errorf("%w: version %d of document %s", ErrNotFound, number, docID)
	}
	var ver types.DocumentVersion
	if err := json.Unmarshal(data, &ver); err != nil {
		return nil, err
	}
	return &ver, nil
}

func (s *BoltStore) GetVersion(docID string, number int) (*types.DocumentVersion, error) {
	var ver *types.DocumentVersion
	err := s.db.View(func(tx *bolt.Tx) error {
		if _, err := getDocument(tx, docID); err != nil {
			return err
		}
		var err error
		ver, err = getVersion(tx, docID, number)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ver, nil
}

// RestoreVersion re-applies the content and summary of an old snapshot as a
// regular update, producing a fresh head version. History is append-only:
// the restored-from snapshot is never touched.
func (s *BoltStore) RestoreVersion(docID string, number int, author string) (*types.Document, error) {
	var doc *types.Document
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, docID)
		if err != nil {
			return err
		}
		ver, err := getVersion(tx, docID, number)
		if err != nil {
			return err
		}
		return applyDocumentPatch(tx, doc, DocumentPatch{
			Content:           &ver.Content,
			Summary:           &ver.Summary,
			AuthorName:        author,
			ChangeDescription: fmt.Sprintf("Restored from version %d", number),
		})
	})
	if err != nil {
		return nil, err
	}
	return maskExpiredLock(doc), nil
}

// --- Comment operations ---

func (s *BoltStore) CreateComment(docID string, parentID *string, author, content string) (*types.Comment, error) {
	author = strings.TrimSpace(author)
	content = strings.TrimSpace(content)
	if author == "" {
		return nil, fmt.Errorf("%w: author_name is required", ErrInvalid)
	}
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrInvalid)
	}

	now := time.Now().UTC()
	cm := &types.Comment{
		ID:         newID(),
		DocumentID: docID,
		ParentID:   parentID,
		AuthorName: author,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		if _, err := getDocument(tx, docID); err != nil {
			return err
		}
		if parentID != nil {
			data := tx.Bucket(bucketComments).Get([]byte(*parentID))
			if data == nil {
				return fmt.Errorf("%w: parent comment %s", ErrNotFound, *parentID)
			}
			var parent types.Comment
			if err := json.Unmarshal(data, &parent); err != nil {
				return err
			}
			if parent.DocumentID != docID {
				return fmt.Errorf("%w: parent comment belongs to another document", ErrInvalid)
			}
		}
		return putJSON(tx.Bucket(bucketComments), cm.ID, cm)
	})
	if err != nil {
		return nil, err
	}
	return cm, nil
}

func (s *BoltStore) GetComment(id string) (*types.Comment, error) {
	var cm types.Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketComments).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: comment %s", ErrNotFound, id)
		}
		return json.Unmarshal(data, &cm)
	})
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

func (s *BoltStore) ListComments(docID string) ([]*types.Comment, error) {
	var comments []*types.Comment
	err := s.db.View(func(tx *bolt.Tx) error {
		if _, err := getDocument(tx, docID); err != nil {
			return err
		}
		return tx.Bucket(bucketComments).ForEach(func(k, v []byte) error {
			var cm types.Comment
			if err := json.Unmarshal(v, &cm); err != nil {
				return err
			}
			if cm.DocumentID == docID {
				comments = append(comments, &cm)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

func (s *BoltStore) UpdateComment(id string, patch CommentPatch) (*types.Comment, error) {
	if patch.Content == nil && patch.Resolved == nil {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalid)
	}
	if patch.Content != nil && strings.TrimSpace(*patch.Content) == "" {
		return nil, fmt.Errorf("%w: content cannot be empty", ErrInvalid)
	}

	var cm types.Comment
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComments)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: comment %s", ErrNotFound, id)
		}
		if err := json.Unmarshal(data, &cm); err != nil {
			return err
		}

		if patch.Content != nil {
			cm.Content = strings.TrimSpace(*patch.Content)
		}
		if patch.Resolved != nil {
			cm.Resolved = *patch.Resolved
		}
		// A resolved-only toggle still counts as a mutation.
		cm.UpdatedAt = time.Now().UTC()

		return putJSON(b, cm.ID, &cm)
	})
	if err != nil {
		return nil, err
	}
	return &cm, nil
}

// DeleteComment removes a comment together with its whole reply subtree.
func (s *BoltStore) DeleteComment(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketComments)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: comment %s", ErrNotFound, id)
		}

		// Children by parent, for the transitive walk.
		children := make(map[string][]string)
		err := b.ForEach(func(k, v []byte) error {
			var cm types.Comment
			if err := json.Unmarshal(v, &cm); err != nil {
				return err
			}
			if cm.ParentID != nil {
				children[*cm.ParentID] = append(children[*cm.ParentID], cm.ID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		queue := []string{id}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			queue = append(queue, children[cur]...)
			if err := b.Delete([]byte(cur)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Stats returns entity counts straight from the bucket statistics.
func (s *BoltStore) Stats() (Stats, error) {
	var stats Stats
	err := s.db.View(func(tx *bolt.Tx) error {
		stats.Workspaces = tx.Bucket(bucketWorkspaces).Stats().KeyN
		stats.Documents = tx.Bucket(bucketDocuments).Stats().KeyN
		stats.Versions = tx.Bucket(bucketVersions).Stats().KeyN
		stats.Comments = tx.Bucket(bucketComments).Stats().KeyN
		return nil
	})
	return stats, err
}

// --- Lock operations ---

// UpdateDocumentLock applies fn to the document's current state (including
// any expired lease, which fn is expected to treat as free) inside the write
// transaction, then persists the result.
func (s *BoltStore) UpdateDocumentLock(docID string, fn func(doc *types.Document) error) (*types.Document, error) {
	var doc *types.Document
	err := s.db.Update(func(tx *bolt.Tx) error {
		var err error
		doc, err = getDocument(tx, docID)
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}
		doc.UpdatedAt = time.Now().UTC()
		return putJSON(tx.Bucket(bucketDocuments), doc.ID, doc)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
