package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/agentdocs/agentdocs/pkg/types"
)

// Client is a Go client for the Agent Docs REST API. The zero key is valid
// for unauthenticated calls (creating workspaces, reads, posting comments);
// WithKey returns a client that authenticates mutating workspace requests.
type Client struct {
	baseURL string
	key     string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithKey returns a copy of the client that sends the workspace manage key.
func (c *Client) WithKey(key string) *Client {
	dup := *c
	dup.key = key
	return &dup
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var envelope struct {
			Error struct {
				Code    string         `json:"code"`
				Message string         `json:"message"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.Details = envelope.Error.Details
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// --- Workspaces ---

// CreatedWorkspace is the one response that carries the manage key.
type CreatedWorkspace struct {
	Workspace *types.Workspace `json:"workspace"`
	ManageKey string           `json:"manage_key"`
}

func (c *Client) CreateWorkspace(ctx context.Context, name, description string, isPublic bool) (*CreatedWorkspace, error) {
	var out CreatedWorkspace
	err := c.do(ctx, http.MethodPost, "/api/v1/workspaces", map[string]any{
		"name":        name,
		"description": description,
		"is_public":   isPublic,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetWorkspace(ctx context.Context, id string) (*types.Workspace, error) {
	var ws types.Workspace
	if err := c.do(ctx, http.MethodGet, "/api/v1/workspaces/"+id, nil, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

func (c *Client) ListPublicWorkspaces(ctx context.Context) ([]*types.Workspace, error) {
	var out struct {
		Workspaces []*types.Workspace `json:"workspaces"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/workspaces", nil, &out); err != nil {
		return nil, err
	}
	return out.Workspaces, nil
}

// WorkspaceUpdate names the workspace fields to change; nil leaves a field
// alone.
type WorkspaceUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsPublic    *bool   `json:"is_public,omitempty"`
}

func (c *Client) UpdateWorkspace(ctx context.Context, id string, update WorkspaceUpdate) (*types.Workspace, error) {
	var ws types.Workspace
	if err := c.do(ctx, http.MethodPatch, "/api/v1/workspaces/"+id, update, &ws); err != nil {
		return nil, err
	}
	return &ws, nil
}

// --- Documents ---

// NewDocument carries the inputs for document creation. Title is required.
type NewDocument struct {
	Title      string   `json:"title"`
	Slug       string   `json:"slug,omitempty"`
	Content    string   `json:"content,omitempty"`
	Summary    string   `json:"summary,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Status     string   `json:"status,omitempty"`
	AuthorName string   `json:"author_name,omitempty"`
}

func (c *Client) CreateDocument(ctx context.Context, workspaceID string, doc NewDocument) (*types.Document, error) {
	var out types.Document
	err := c.do(ctx, http.MethodPost, "/api/v1/workspaces/"+workspaceID+"/docs", doc, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetDocument(ctx context.Context, workspaceID, documentID string) (*types.Document, error) {
	var out types.Document
	err := c.do(ctx, http.MethodGet, documentPath(workspaceID, documentID), nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetDocumentBySlug fetches a document by its slug; the server accepts a
// document ID in the same position, so this is an alias of GetDocument.
func (c *Client) GetDocumentBySlug(ctx context.Context, workspaceID, slug string) (*types.Document, error) {
	return c.GetDocument(ctx, workspaceID, slug)
}

// ListDocuments returns the workspace's documents. Without a manage key the
// server lists published documents only; with one, drafts are included.
func (c *Client) ListDocuments(ctx context.Context, workspaceID string) ([]*types.Document, error) {
	path := "/api/v1/workspaces/" + workspaceID + "/docs"
	var out struct {
		Documents []*types.Document `json:"documents"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// DocumentUpdate names the document fields to change. A non-nil Content
// records a new version annotated with AuthorName and ChangeDescription.
type DocumentUpdate struct {
	Title             *string  `json:"title,omitempty"`
	Content           *string  `json:"content,omitempty"`
	Summary           *string  `json:"summary,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	Status            *string  `json:"status,omitempty"`
	AuthorName        string   `json:"author_name,omitempty"`
	ChangeDescription string   `json:"change_description,omitempty"`
}

func (c *Client) UpdateDocument(ctx context.Context, workspaceID, documentID string, update DocumentUpdate) (*types.Document, error) {
	var out types.Document
	err := c.do(ctx, http.MethodPatch, documentPath(workspaceID, documentID), update, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteDocument(ctx context.Context, workspaceID, documentID string) error {
	return c.do(ctx, http.MethodDelete, documentPath(workspaceID, documentID), nil, nil)
}

func (c *Client) SearchDocuments(ctx context.Context, workspaceID, query string) ([]*types.Document, error) {
	path := "/api/v1/workspaces/" + workspaceID + "/search?q=" + url.QueryEscape(query)
	var out struct {
		Results []*types.Document `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

// --- Versions ---

func (c *Client) ListVersions(ctx context.Context, workspaceID, documentID string, limit, offset int) ([]*types.DocumentVersion, error) {
	path := fmt.Sprintf("%s/versions?limit=%d&offset=%d", documentPath(workspaceID, documentID), limit, offset)
	var out struct {
		Versions []*types.DocumentVersion `json:"versions"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

func (c *Client) GetVersion(ctx context.Context, workspaceID, documentID string, number int) (*types.DocumentVersion, error) {
	var out types.DocumentVersion
	path := documentPath(workspaceID, documentID) + "/versions/" + strconv.Itoa(number)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RestoreVersion(ctx context.Context, workspaceID, documentID string, number int, authorName string) (*types.Document, error) {
	var out types.Document
	path := documentPath(workspaceID, documentID) + "/versions/" + strconv.Itoa(number) + "/restore"
	err := c.do(ctx, http.MethodPost, path, map[string]any{"author_name": authorName}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VersionDiff is a unified diff between two stored versions.
type VersionDiff struct {
	DocumentID  string `json:"document_id"`
	FromVersion int    `json:"from_version"`
	ToVersion   int    `json:"to_version"`
	Diff        string `json:"diff"`
	Insertions  int    `json:"insertions"`
	Removals    int    `json:"removals"`
}

func (c *Client) DiffVersions(ctx context.Context, workspaceID, documentID string, from, to int) (*VersionDiff, error) {
	var out VersionDiff
	path := fmt.Sprintf("%s/diff?from=%d&to=%d", documentPath(workspaceID, documentID), from, to)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Locks ---

func (c *Client) AcquireLock(ctx context.Context, workspaceID, documentID, editorName string, ttlSeconds int) (*types.Document, error) {
	var out types.Document
	err := c.do(ctx, http.MethodPost, documentPath(workspaceID, documentID)+"/lock", map[string]any{
		"editor":      editorName,
		"ttl_seconds": ttlSeconds,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenewLock(ctx context.Context, workspaceID, documentID, editorName string, ttlSeconds int) (*types.Document, error) {
	var out types.Document
	err := c.do(ctx, http.MethodPost, documentPath(workspaceID, documentID)+"/lock/renew", map[string]any{
		"editor":      editorName,
		"ttl_seconds": ttlSeconds,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ReleaseLock(ctx context.Context, workspaceID, documentID, editorName string) error {
	path := documentPath(workspaceID, documentID) + "/lock?editor=" + url.QueryEscape(editorName)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// --- Comments ---

func (c *Client) CreateComment(ctx context.Context, workspaceID, documentID, authorName, content string, parentID *string) (*types.Comment, error) {
	var out types.Comment
	err := c.do(ctx, http.MethodPost, documentPath(workspaceID, documentID)+"/comments", map[string]any{
		"author_name": authorName,
		"content":     content,
		"parent_id":   parentID,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComments(ctx context.Context, workspaceID, documentID string) ([]*types.Comment, error) {
	var out struct {
		Comments []*types.Comment `json:"comments"`
	}
	err := c.do(ctx, http.MethodGet, documentPath(workspaceID, documentID)+"/comments", nil, &out)
	if err != nil {
		return nil, err
	}
	return out.Comments, nil
}

// CommentUpdate names the comment fields to change.
type CommentUpdate struct {
	Content  *string `json:"content,omitempty"`
	Resolved *bool   `json:"resolved,omitempty"`
}

func (c *Client) UpdateComment(ctx context.Context, workspaceID, documentID, commentID string, update CommentUpdate) (*types.Comment, error) {
	var out types.Comment
	err := c.do(ctx, http.MethodPatch, documentPath(workspaceID, documentID)+"/comments/"+commentID, update, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteComment(ctx context.Context, workspaceID, documentID, commentID string) error {
	return c.do(ctx, http.MethodDelete, documentPath(workspaceID, documentID)+"/comments/"+commentID, nil, nil)
}

func documentPath(workspaceID, documentID string) string {
	return "/api/v1/workspaces/" + workspaceID + "/docs/" + documentID
}
