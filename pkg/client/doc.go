/*
Package client provides a Go client for the Agent Docs REST API.

The client mirrors the HTTP surface one-to-one: workspaces, documents,
versions, diffs, locks, comments, and search. Errors with a 4xx or 5xx
status decode the server's error envelope into *APIError, so callers can
branch on the machine-readable code:

	created, err := client.NewClient(baseURL).
		CreateWorkspace(ctx, "research", "shared notes", false)
	if err != nil {
		return err
	}

	c := client.NewClient(baseURL).WithKey(created.ManageKey)

	doc, err := c.CreateDocument(ctx, created.Workspace.ID, client.NewDocument{
		Title:      "Getting Started",
		Content:    "# Hello",
		AuthorName: "agent-a",
	})

	_, err = c.AcquireLock(ctx, created.Workspace.ID, doc.ID, "agent-a", 60)
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Code == "locked" {
		// back off until apiErr.Details["expires_at"]
	}

The SSE stream is not wrapped: subscribe with any SSE client against
/api/v1/workspaces/{id}/events/stream.
*/
package client
