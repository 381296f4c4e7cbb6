/*
Package api implements the HTTP surface of Agent Docs.

The server exposes four groups of routes:

  - REST API under /api/v1: workspaces, documents, versions, locks,
    comments, and search. Reads are open to anyone who knows the workspace
    ID; mutations require the workspace manage key. Comment creation is
    deliberately keyless so agents can leave feedback on documents they
    cannot edit.
  - SSE stream at /api/v1/workspaces/{id}/events/stream for live change
    notifications.
  - Service discovery: /openapi.json (machine-readable API description)
    and /llms.txt (plain-text guide aimed at agents), served at the root
    and under /api/v1.
  - Operations: /health, /ready, /health/live, /metrics, plus the optional
    static frontend with index.html fallback when STATIC_DIR is set.

# Request Flow

	client → gin.Recovery → requestLogger → [rate limit | resolveWorkspace → requireManageKey] → handler

resolveWorkspace loads the workspace from the URL once, verifies any
presented key, and stashes both in the request context; handlers never
re-fetch it. Documents and comments named in the URL are always
cross-checked against that workspace, and a mismatch reads as 404 so IDs
cannot be probed across workspaces.

# Error Envelope

Every error response has the shape

	{"error": {"code": "...", "message": "...", "details": {...}}}

with codes bad_request, unauthorized, not_found, conflict, locked, no_lease,
rate_limited, and internal. Lock conflicts carry the current holder and
expiry in details.

# Shutdown

Start blocks on the listener. Shutdown stops the rate-limit janitor, closes
the event bus (which ends every SSE stream), and drains in-flight requests
through http.Server.Shutdown. The server sets no write timeout because SSE
connections are long-lived.
*/
package api
